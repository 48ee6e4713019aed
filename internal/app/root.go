// Package app wires the udpstat command line.
package app

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/nsistat/udpstat/internal/config"
	"github.com/nsistat/udpstat/internal/logging"
	"github.com/nsistat/udpstat/internal/nsi"
	"github.com/nsistat/udpstat/internal/proc"
	"github.com/nsistat/udpstat/internal/udp"
	"github.com/nsistat/udpstat/pkg/model"
	"github.com/spf13/cobra"
)

var (
	version   = ""
	commit    = ""
	buildDate = ""
)

func SetVersionBuildCommitString(v, c, d string) {
	version = v
	commit = c
	buildDate = d
}

func versionString() string {
	v := version
	if v == "" {
		v = "dev"
	}
	if commit != "" {
		v += " (" + commit
		if buildDate != "" {
			v += ", " + buildDate
		}
		v += ")"
	}
	return v
}

// options is shared by every subcommand; cfg is filled in before any of
// them runs.
type options struct {
	configPath string
	logLevel   string
	procRoot   string
	noColor    bool

	cfg       *config.Config
	newSource func(proc.Options) proc.Source
}

func newRootCmd(newSource func(proc.Options) proc.Source) *cobra.Command {
	opts := &options{newSource: newSource}

	cmd := &cobra.Command{
		Use:   "udpstat",
		Short: "Inspect UDP counters and endpoints",
		Long: `udpstat reads the UDP statistics tables of the operating system: the
per-family datagram counters and the table of bound UDP endpoints with
their owning processes.`,
		Version:      versionString(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd.ErrOrStderr())
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML configuration file")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level ("+logging.SupportedLevels+")")
	pf.StringVar(&opts.procRoot, "proc-root", "", "procfs mount point (Linux)")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newStatsCmd(opts),
		newEndpointsCmd(opts),
		newTUICmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// load reads the configuration file and lays the flags over it.
func (o *options) load(logOut io.Writer) error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.procRoot != "" {
		cfg.ProcRoot = o.procRoot
	}
	if err := logging.Configure(cfg.LogLevel, logOut); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

// provider builds the UDP tables over the platform source. The returned
// name function is nil when the source cannot name processes.
func (o *options) provider() (*nsi.Provider, func(uint32) string, error) {
	src := o.newSource(proc.Options{ProcRoot: o.cfg.ProcRoot})
	p, err := udp.NewProvider(src)
	if err != nil {
		return nil, nil, err
	}
	var name func(uint32) string
	if n, ok := src.(proc.ProcessNamer); ok {
		name = n.ProcessName
	}
	return p, name, nil
}

func (o *options) colorEnabled(w io.Writer) bool {
	if o.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func parseFamilyFlag(s string) (model.Family, error) {
	if s == "" {
		return model.FamilyUnspec, nil
	}
	f, err := model.ParseFamily(s)
	if err != nil {
		return model.FamilyUnspec, fmt.Errorf("--family: %w", err)
	}
	return f, nil
}

func Execute() {
	if err := newRootCmd(proc.DefaultSource).Execute(); err != nil {
		os.Exit(1)
	}
}
