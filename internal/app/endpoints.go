package app

import (
	"fmt"

	"github.com/nsistat/udpstat/internal/output"
	"github.com/nsistat/udpstat/internal/pipeline"
	"github.com/nsistat/udpstat/internal/target"
	"github.com/spf13/cobra"
)

func newEndpointsCmd(opts *options) *cobra.Command {
	var (
		asJSON  bool
		tree    bool
		name    string
		exact   bool
		noOwner bool
		family  string
	)

	cmd := &cobra.Command{
		Use:     "endpoints",
		Aliases: []string{"ls"},
		Short:   "List bound UDP endpoints and their owning processes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if tree && asJSON {
				return fmt.Errorf("--tree and --json are mutually exclusive")
			}
			f, err := parseFamilyFlag(family)
			if err != nil {
				return err
			}

			var pids []uint32
			if name != "" {
				pids, err = target.ResolveName(opts.cfg.ProcRoot, name, exact)
				if err != nil {
					return err
				}
			}

			p, procName, err := opts.provider()
			if err != nil {
				return err
			}
			snap, err := pipeline.Analyze(p, pipeline.AnalyzeConfig{
				Family: f,
				PIDs:   pids,
				Owners: (opts.cfg.Owners && !noOwner) || tree,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			color := opts.colorEnabled(w)
			switch {
			case asJSON:
				out, err := output.ToJSON(snap)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, out)
			case tree:
				if procName == nil {
					procName = func(uint32) string { return "" }
				}
				output.PrintTree(w, snap.Endpoints, procName, color)
			default:
				output.RenderShort(w, snap.Endpoints, color)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.BoolVar(&asJSON, "json", false, "print JSON")
	fl.BoolVar(&tree, "tree", false, "group endpoints by owning process")
	fl.StringVarP(&name, "name", "n", "", "only endpoints owned by processes matching this name")
	fl.BoolVarP(&exact, "exact", "x", false, "match --name exactly")
	fl.BoolVar(&noOwner, "no-owner", false, "skip owner lookup")
	fl.StringVarP(&family, "family", "f", "", "only this address family (4 or 6)")
	return cmd
}
