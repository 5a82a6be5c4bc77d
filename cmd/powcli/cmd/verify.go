package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spacemeshos/powsearch/hashing"
	"github.com/spacemeshos/powsearch/shared"
)

var (
	verifyChallenge challengeFlags
	nonce           uint64
)

// verifyCmd represents the verify command.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Recompute the digest and score of a nonce",
	RunE: func(cmd *cobra.Command, args []string) error {
		challenge, err := verifyChallenge.challenge()
		if err != nil {
			return err
		}

		c, err := hashing.Verify([]byte(challenge), nonce)
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), struct {
			Challenge string           `json:"challenge"`
			Result    shared.Candidate `json:"result"`
		}{challenge, c})
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyChallenge.register(verifyCmd)
	verifyCmd.Flags().Uint64Var(&nonce, "nonce", 0, "nonce to verify")
}
