package cmd

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/spacemeshos/powsearch/engine"
	"github.com/spacemeshos/powsearch/shared"
)

// challengeFlags are the flags identifying a transaction output.
type challengeFlags struct {
	txid string
	vout int
}

func (f *challengeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.txid, "txid", "", "transaction id (required)")
	cmd.Flags().IntVar(&f.vout, "vout", 0, "output index")
	_ = cmd.MarkFlagRequired("txid")
}

func (f *challengeFlags) challenge() (string, error) {
	if f.vout < 0 {
		return "", errors.New("`vout` must not be negative")
	}
	c := shared.JobParams{TxID: f.txid, Vout: f.vout}.Challenge()
	if err := shared.ValidateChallenge([]byte(c)); err != nil {
		return "", err
	}
	return c, nil
}

func newEngine() (*engine.Engine, error) {
	return engine.NewWithProviders(cfg.Devices, cfg.Lanes, engine.WithLogger(logger))
}

// printJSON writes v as a single line.
func printJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
