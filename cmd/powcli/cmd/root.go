package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spacemeshos/smutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/powsearch/config"
)

const defaultConfigFileName = "config.yaml"

var (
	Version string
	Commit  string

	defaultHomeDir    = filepath.Join(smutil.GetUserHomeDirectory(), ".powcli")
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFileName)

	cfgFile string

	// cfg and logger are set up by rootCmd before any subcommand runs.
	cfg    = config.DefaultConfig()
	logger = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "powcli",
	Short: "Search for double SHA-256 proof-of-work nonces",
	Long: `powcli searches for a nonce such that SHA256(SHA256(challenge || nonce)) has at
least a given number of leading zero bits. The challenge binds the work to a
transaction output "<txid>:<vout>".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		file := cfgFile
		if file == "" {
			if _, err := os.Stat(defaultConfigFile); !errors.Is(err, fs.ErrNotExist) {
				file = defaultConfigFile
			}
		}

		loaded, err := loadConfig(cmd.Flags(), file)
		if err != nil {
			return err
		}
		cfg = loaded

		logger, err = newLogger(cfg)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (%s)", Version, Commit)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	def := config.DefaultConfig()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", fmt.Sprintf("path to a configuration file (toml, yaml or json; default %v if present)", defaultConfigFile))
	flags.String("log-level", def.LogLevel, "log level (debug, info, warn, error)")

	flags.Int("devices", def.Devices, "number of compute providers")
	flags.Int("lanes", def.Lanes, "goroutines per compute provider (0: one per CPU)")
	flags.Int("blocks", def.Blocks, "blocks per dispatch")
	flags.Int("tpb", def.ThreadsPerBlock, "threads per block")
	flags.Int("iters", def.ItersPerThread, "consecutive nonces per thread and grid step")
}

// loadConfig merges the defaults, the config file (if any) and the flags that
// were set, in increasing order of priority.
func loadConfig(flags *pflag.FlagSet, file string) (*config.Config, error) {
	vip := viper.New()
	if file != "" {
		vip.SetConfigFile(file)
		if err := vip.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := vip.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	c := config.DefaultConfig()
	if err := vip.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// newLogger logs to stderr; stdout carries the results.
func newLogger(c *config.Config) (*zap.Logger, error) {
	level, err := c.Level()
	if err != nil {
		return nil, err
	}

	zapCfg := zap.Config{
		Level:    zap.NewAtomicLevelAt(level),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "T",
			LevelKey:       "L",
			NameKey:        "N",
			MessageKey:     "M",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	l, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize zap logger: %w", err)
	}
	return l, nil
}
