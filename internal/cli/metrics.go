package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/imyousuf/javanav/internal/graph"
	"github.com/imyousuf/javanav/internal/metrics"
	"github.com/imyousuf/javanav/internal/navigator"
	"github.com/imyousuf/javanav/internal/render"
)

func newMetricsCmd() *cobra.Command {
	var (
		maxDepth int
		format   string
	)

	cmd := &cobra.Command{
		Use:   "metrics <start-point> <project-dir>",
		Short: "Show size and complexity of every function in a call chain",
		Long: `Measure every function reached from a start point: cyclomatic
complexity, line counts and TODO/FIXME/HACK markers, plus chain totals.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == render.FormatMermaid {
				return fmt.Errorf("format %q is not supported for metrics", f)
			}

			startPoint, projectRoot := args[0], args[1]
			s, err := newSession(cmd, projectRoot, false)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			p, err := s.nav.Load(ctx, projectRoot)
			if err != nil {
				return fmt.Errorf("load project: %w", err)
			}

			_, result := p.Analyze(startPoint, maxDepthFlag(cmd, s.cfg, maxDepth))
			snippets, err := navigator.Extract(result, s.log)
			if err != nil {
				return err
			}
			report := metrics.Chain(result.TargetFunction, snippets)

			out := cmd.OutOrStdout()
			if f != render.FormatText {
				return render.Encode(out, f, report)
			}

			st := render.DefaultStyles()
			fmt.Fprintf(out, "%s\n\n", st.Header.Render("Metrics for "+report.StartPoint))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FUNCTION\tCOMPLEXITY\tLINES\tCODE\tCOMMENT\tTODO")
			for _, m := range report.Methods {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n", m.Function, m.Complexity, m.Lines,
					m.CodeLines, m.CommentLines, m.Todos+m.Fixmes+m.Hacks)
			}
			t := report.Total
			fmt.Fprintf(w, "TOTAL\t%d\t%d\t%d\t%d\t%d\n", t.Complexity, t.Lines,
				t.CodeLines, t.CommentLines, t.Todos+t.Fixmes+t.Hacks)
			if err := w.Flush(); err != nil {
				return err
			}
			if report.MaxComplexity != "" {
				fmt.Fprintf(out, "\n%s %s\n", st.Label.Render("Most complex:"), report.MaxComplexity)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", graph.DefaultMaxDepth, "maximum call-chain depth")
	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatText), "output format: text, json, yaml or toml")

	return cmd
}
