package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/spacemeshos/powsearch/batch"
	"github.com/spacemeshos/powsearch/engine"
	"github.com/spacemeshos/powsearch/shared"
)

var (
	streamChallenge challengeFlags
	floor           int
)

// streamCmd represents the stream command.
var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Search continuously and print every improvement",
	Long: `Scans consecutive batches of nonces until interrupted. Every time a nonce
with more leading zero bits than all previous ones is found, one line is
printed and the required number of bits is raised above it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		challenge, err := streamChallenge.challenge()
		if err != nil {
			return err
		}

		e, err := newEngine()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		err = batch.New(e, batch.WithLogger(logger)).Stream(ctx, engine.Params{
			Challenge:  []byte(challenge),
			StartNonce: cfg.StartNonce,
			Window:     cfg.StreamBatch,
			Shape:      cfg.Shape(),
		}, floor, func(ev batch.Event) error {
			return printJSON(out, struct {
				Mode      string           `json:"mode"`
				Challenge string           `json:"challenge"`
				Best      shared.Candidate `json:"best"`
				Baseline  int              `json:"baseline"`
			}{"stream", challenge, ev.Best, ev.Baseline})
		})
		if errors.Is(err, context.Canceled) {
			logger.Info("stream interrupted")
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(streamCmd)

	flags := streamCmd.Flags()
	streamChallenge.register(streamCmd)
	flags.IntVar(&floor, "baseline", 0, "initial number of leading zero bits")
	flags.Uint64("start", cfg.StartNonce, "first nonce")
	flags.Uint64("batch", cfg.StreamBatch, "number of nonces per batch")
}
