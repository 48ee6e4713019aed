package app

import (
	"github.com/nsistat/udpstat/internal/tui"
	"github.com/spf13/cobra"
)

func newTUICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Watch UDP endpoints and counters interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, name, err := opts.provider()
			if err != nil {
				return err
			}
			return tui.Start(tui.Options{
				Provider:    p,
				ProcessName: name,
				Refresh:     opts.cfg.TUI.RefreshInterval,
				Version:     versionString(),
			})
		},
	}
}
