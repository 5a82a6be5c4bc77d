package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/spacemeshos/powsearch/batch"
	"github.com/spacemeshos/powsearch/engine"
	"github.com/spacemeshos/powsearch/shared"
)

var (
	searchChallenge challengeFlags
	threshold       int
)

// searchCmd represents the search command.
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Scan one window of nonces for a threshold",
	Long: `Scans the nonces [start, start+count) once and prints the best nonce whose
digest has at least threshold leading zero bits, or a null result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		challenge, err := searchChallenge.challenge()
		if err != nil {
			return err
		}

		e, err := newEngine()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		best, err := batch.New(e, batch.WithLogger(logger)).Threshold(ctx, engine.Params{
			Challenge:  []byte(challenge),
			Threshold:  threshold,
			StartNonce: cfg.StartNonce,
			Window:     cfg.WindowSize,
			Shape:      cfg.Shape(),
		})
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), struct {
			Mode      string            `json:"mode"`
			Challenge string            `json:"challenge"`
			Threshold int               `json:"threshold"`
			Result    *shared.Candidate `json:"result"`
		}{"threshold", challenge, threshold, best})
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	flags := searchCmd.Flags()
	searchChallenge.register(searchCmd)
	flags.IntVarP(&threshold, "threshold", "t", 0, "minimum number of leading zero bits")
	flags.Uint64("start", cfg.StartNonce, "first nonce")
	flags.Uint64("count", cfg.WindowSize, "number of nonces to scan")
	_ = searchCmd.MarkFlagRequired("threshold")
}
