package cmd

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/powsearch/batch"
	"github.com/spacemeshos/powsearch/coordinator"
	"github.com/spacemeshos/powsearch/persistence"
	"github.com/spacemeshos/powsearch/rpc"
)

var (
	host string
	port int
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search jobs over HTTP",
	Long: `Starts an HTTP server accepting POST requests {"txid", "vout", "threshold"}.
Only one job runs at a time; results are cached by "<txid>:<vout>:<threshold>"
in the cache file and survive restarts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		listen := cfg.ListenAddr
		if cmd.Flags().Changed("host") || cmd.Flags().Changed("port") {
			listen = net.JoinHostPort(host, strconv.Itoa(port))
		}

		e, err := newEngine()
		if err != nil {
			return err
		}

		coord, err := coordinator.New(
			batch.New(e, batch.WithLogger(logger)),
			persistence.Open(cfg.CacheFile, logger),
			coordinator.WithLogger(logger),
			coordinator.WithStartNonce(cfg.StartNonce),
			coordinator.WithWindowSize(cfg.WindowSize),
			coordinator.WithShape(cfg.Shape()),
		)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("starting server",
			zap.String("listen", listen),
			zap.Int("devices", e.NumDevices()),
			zap.String("cache_file", cfg.CacheFile),
			zap.String("version", rootCmd.Version),
		)
		return rpc.NewServer(ctx, coord, logger).ListenAndServe(ctx, listen)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	defHost, defPort, _ := net.SplitHostPort(cfg.ListenAddr)
	p, _ := strconv.Atoi(defPort)

	flags := serveCmd.Flags()
	flags.String("listen", cfg.ListenAddr, "address to listen on")
	flags.StringVar(&host, "host", defHost, "host to listen on (overrides --listen)")
	flags.IntVar(&port, "port", p, "port to listen on (overrides --listen)")
	flags.String("cache-file", cfg.CacheFile, "path of the result cache file")
	flags.Uint64("start", cfg.StartNonce, "first nonce of every job")
	flags.Uint64("count", cfg.WindowSize, "number of nonces per batch")
}
