package app

import (
	"fmt"
	"time"

	"github.com/nsistat/udpstat/internal/nsi"
	"github.com/nsistat/udpstat/internal/output"
	"github.com/nsistat/udpstat/internal/pipeline"
	"github.com/nsistat/udpstat/pkg/model"
	"github.com/spf13/cobra"
)

func newStatsCmd(opts *options) *cobra.Command {
	var (
		asJSON bool
		family string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the UDP datagram counters per address family",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := parseFamilyFlag(family)
			if err != nil {
				return err
			}
			p, _, err := opts.provider()
			if err != nil {
				return err
			}

			stats, err := pipeline.ReadStats(p, f)
			if err != nil {
				return err
			}
			if len(stats) == 0 {
				return fmt.Errorf("udp counters: %w", nsi.ErrNotSupported)
			}

			if asJSON {
				out, err := output.ToJSON(pipeline.Snapshot{Taken: time.Now(), Stats: stats})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}

			families := pipeline.Families()
			if f != model.FamilyUnspec {
				families = []model.Family{f}
			}
			output.RenderStats(cmd.OutOrStdout(), families, stats)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().StringVarP(&family, "family", "f", "", "only this address family (4 or 6)")
	return cmd
}
