package cmd

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/spacemeshos/powsearch/device"
)

var bench bool

// providersCmd represents the providers command.
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Prints the list of compute providers",
	Long: `Prints the compute providers a search is partitioned across.
The number of providers and their lanes are set with --devices and --lanes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, err := device.Discover(cfg.Devices, cfg.Lanes, device.WithLogger(logger))
		if err != nil {
			return err
		}

		header := []string{"id", "model", "type", "lanes"}
		if bench {
			header = append(header, "hashes/s")
		}
		data := make([][]string, 0, len(devices))
		for _, d := range devices {
			p := d.Provider()
			row := []string{
				strconv.FormatUint(uint64(p.ID), 10),
				p.Model,
				p.DeviceType.String(),
				strconv.Itoa(p.Lanes),
			}
			if bench {
				hps, err := device.Benchmark(d, cfg.Shape())
				if err != nil {
					return fmt.Errorf("benchmark provider %d: %w", p.ID, err)
				}
				row = append(row, strconv.Itoa(hps))
			}
			data = append(data, row)
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader(header)
		table.SetBorder(true)
		table.AppendBulk(data)
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)

	providersCmd.Flags().BoolVar(&bench, "bench", false, "measure the hash rate of every provider")
}
