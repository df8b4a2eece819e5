package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"gcode-inspect/pkg/config"
	"gcode-inspect/pkg/gcode"
	"gcode-inspect/pkg/log"
)

const stdinArg = "-"

// app carries what the persistent pre-run resolves for every subcommand.
type app struct {
	configPath string
	logLevel   string
	analysis   analysisFlags

	cfg config.Config
	log *log.Logger
}

// analysisFlags override the analysis section of the config file when set.
type analysisFlags struct {
	riseThreshold  float64
	groupTolerance float64
	untooledKey    string
}

func addAnalysisFlags(fs *pflag.FlagSet, f *analysisFlags) {
	fs.Float64Var(&f.riseThreshold, "rise-threshold", gcode.DefaultRiseThreshold, "minimum Z rise (mm) that starts a retraction")
	fs.Float64Var(&f.groupTolerance, "group-tolerance", gcode.DefaultGroupTolerance, "height difference (mm) below which retractions merge")
	fs.StringVar(&f.untooledKey, "untooled-key", "", "keep motion before the first tool change under this key")
}

// applyAnalysisFlags copies only the flags the user actually set.
func applyAnalysisFlags(fs *pflag.FlagSet, f analysisFlags, cfg *config.Config) {
	if fs.Changed("rise-threshold") {
		cfg.Analysis.RiseThreshold = f.riseThreshold
	}
	if fs.Changed("group-tolerance") {
		cfg.Analysis.GroupTolerance = f.groupTolerance
	}
	if fs.Changed("untooled-key") {
		cfg.Analysis.UntooledKey = f.untooledKey
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "gcode-inspect",
		Short:        "Inspect tool changes, retractions and tool paths in G-code",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML settings file")
	pf.StringVar(&a.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	addAnalysisFlags(pf, &a.analysis)

	cmd.AddCommand(
		summaryCmd(a),
		toolsCmd(a),
		retractionsCmd(a),
		pathsCmd(a),
		rapidsCmd(a),
		exportCmd(a),
		serveCmd(a),
		configCmd(a),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	applyAnalysisFlags(cmd.Flags(), a.analysis, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.log = log.New("gcode-inspect")
	a.log.SetWriter(cmd.ErrOrStderr())
	cfg.ApplyLog(a.log)
	log.ConfigureFromEnv(a.log)
	if a.logLevel != "" {
		a.log.SetLevel(log.ParseLevel(a.logLevel))
	}
	log.SetDefaultLogger(a.log)
	return nil
}

// open loads the program named by arg, reading stdin for "-", and parses it.
func (a *app) open(cmd *cobra.Command, arg string) (*gcode.Analyzer, string, error) {
	opts := append(a.cfg.AnalysisOptions(), gcode.WithLogger(a.log.WithPrefix("gcode")))

	start := time.Now()
	name := arg
	var an *gcode.Analyzer
	var err error
	if arg == stdinArg {
		name = "<stdin>"
		an, err = gcode.FromReader(cmd.InOrStdin(), name, opts...)
	} else {
		an, err = gcode.Open(arg, opts...)
	}
	if err != nil {
		return nil, name, err
	}
	an.Parse()

	a.log.WithFields(log.Fields{
		"source":       name,
		"lines":        len(an.Lines()),
		"tool_changes": len(an.ToolChanges()),
		"retractions":  len(an.Retractions()),
		"elapsed":      time.Since(start).String(),
	}).Debug("analyzed")
	return an, name, nil
}
