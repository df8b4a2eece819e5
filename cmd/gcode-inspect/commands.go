package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"gcode-inspect/pkg/api"
	"gcode-inspect/pkg/config"
	"gcode-inspect/pkg/export"
	"gcode-inspect/pkg/gcode"
	"gcode-inspect/pkg/metrics"
)

// theme styles listing output. Styles come from a renderer bound to the
// destination writer, so redirected output stays plain.
type theme struct {
	Title lipgloss.Style
	Faint lipgloss.Style
}

func newTheme(w io.Writer) theme {
	r := lipgloss.NewRenderer(w)
	return theme{
		Title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		Faint: r.NewStyle().Faint(true),
	}
}

func summaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <file|->",
		Short: "Print the analysis summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			an, _, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), an.Summarize())
			return err
		},
	}
}

func toolsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tools <file|->",
		Short: "List tool changes in line order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			an, _, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			th := newTheme(w)

			changes := an.ToolChanges()
			if len(changes) == 0 {
				fmt.Fprintln(w, "No tool changes detected.")
				return nil
			}
			fmt.Fprintln(w, th.Title.Render(fmt.Sprintf("Tool changes (%d)", len(changes))))
			for _, tc := range changes {
				fmt.Fprintf(w, "  %s  T%-4s %s\n", th.Faint.Render(fmt.Sprintf("line %-6d", tc.Line)), tc.Tool, tc.Raw)
			}
			return nil
		},
	}
}

func retractionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "retractions <file|->",
		Short: "List grouped retractions and height groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			an, _, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			th := newTheme(w)

			rs := an.Retractions()
			if len(rs) == 0 {
				fmt.Fprintln(w, "No retractions detected.")
				return nil
			}
			fmt.Fprintln(w, th.Title.Render(fmt.Sprintf("Retractions (%d)", len(rs))))
			for _, r := range rs {
				fmt.Fprintf(w, "  Z %8.3f  line %d -> %d", r.Height, r.StartLine, r.EndLine)
				if r.Grouped {
					fmt.Fprintf(w, "  %s", th.Faint.Render(fmt.Sprintf("(group of %d)", r.GroupSize)))
				}
				fmt.Fprintln(w)
			}

			fmt.Fprintln(w)
			fmt.Fprintln(w, th.Title.Render("Height groups"))
			primary, _ := an.PrimaryHeight()
			for _, g := range an.HeightGroups() {
				mark := ""
				if g == primary {
					mark = "  primary"
				}
				fmt.Fprintf(w, "  Z %8.3f  %d retractions, first on line %d%s\n", g.Height, g.Count, g.FirstLine, mark)
			}
			return nil
		},
	}
}

func pathsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "paths <file|->",
		Short: "List the positions visited by each tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			an, _, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			th := newTheme(w)

			paths := an.ToolPaths()
			if len(paths) == 0 {
				fmt.Fprintln(w, "No tool paths.")
				return nil
			}
			for i, key := range sortedToolKeys(paths) {
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintln(w, th.Title.Render(fmt.Sprintf("%s (%d points)", toolLabel(key), len(paths[key]))))
				for _, p := range paths[key] {
					fmt.Fprintf(w, "  %s\n", formatPoint(p))
				}
			}
			return nil
		},
	}
}

func rapidsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rapids <file|->",
		Short: "List rapid moves made by each tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			an, _, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			th := newTheme(w)

			segs := an.RapidSegments()
			if len(segs) == 0 {
				fmt.Fprintln(w, "No rapid moves.")
				return nil
			}
			for i, key := range sortedToolKeys(segs) {
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintln(w, th.Title.Render(fmt.Sprintf("%s (%d rapids)", toolLabel(key), len(segs[key]))))
				for _, s := range segs[key] {
					fmt.Fprintf(w, "  %s -> %s\n", formatPoint(s.From), formatPoint(s.To))
				}
			}
			return nil
		},
	}
}

func exportCmd(a *app) *cobra.Command {
	var (
		format       string
		withGeometry bool
		outPath      string
	)
	c := &cobra.Command{
		Use:   "export <file|->",
		Short: "Write the full report as json, yaml or cbor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			an, name, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			report := export.NewReport(name, an, withGeometry)

			if outPath == "" || outPath == stdinArg {
				return export.Encode(cmd.OutOrStdout(), report, f)
			}
			out, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := export.Encode(out, report, f); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
			a.log.WithField("path", outPath).WithField("format", string(f)).Info("report written")
			return nil
		},
	}
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = string(f)
	}
	c.Flags().StringVarP(&format, "format", "f", string(export.FormatJSON), "output format: "+strings.Join(names, "|"))
	c.Flags().BoolVar(&withGeometry, "geometry", false, "include tool paths and rapid segments")
	c.Flags().StringVarP(&outPath, "output", "o", "", "write to file instead of stdout")
	return c
}

func serveCmd(a *app) *cobra.Command {
	var addr string
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := api.NewServer(cfg, a.log.WithPrefix("api"), metrics.NewAnalysisMetrics())

			rm := config.NewReloadManager(cfg, a.configPath)
			rm.OnReloadComplete(func(next config.Config, results []config.ReloadResult) {
				srv.UpdateConfig(next)
				next.ApplyLog(a.log)
				if fixed := config.NonReloadable(results); len(fixed) > 0 {
					a.log.WithField("sections", fixed).Warn("changes need a restart")
				}
				a.log.WithField("changed", len(results)).Info("config reloaded")
			})
			go reloadOnHangup(ctx, rm, a.log)

			return srv.ListenAndServe(ctx)
		},
	}
	c.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8085)")
	return c
}

func configCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), a.cfg.String())
			return err
		},
	}
}

// sortedToolKeys orders numeric tool keys numerically and any other key
// (the untooled key) first.
func sortedToolKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, ei := strconv.Atoi(keys[i])
		nj, ej := strconv.Atoi(keys[j])
		switch {
		case ei != nil && ej != nil:
			return keys[i] < keys[j]
		case ei != nil:
			return true
		case ej != nil:
			return false
		}
		return ni < nj
	})
	return keys
}

func toolLabel(key string) string {
	if _, err := strconv.Atoi(key); err == nil {
		return "T" + key
	}
	return key
}

func formatPoint(p gcode.PathPoint) string {
	return fmt.Sprintf("(%g, %g, %g)", p[0], p[1], p[2])
}
