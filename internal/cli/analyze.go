package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/imyousuf/javanav/internal/graph"
	"github.com/imyousuf/javanav/internal/navigator"
	"github.com/imyousuf/javanav/internal/render"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		maxDepth    int
		format      string
		outputFile  string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <start-point> <project-dir>",
		Short: "Render the call chain below a method or REST endpoint",
		Long: `Render the call chain below a start point.

The start point is matched against the project's methods in order:
  Class.method        exact symbol key
  method              any Class.method with that method name
  /api/users/{id}     any REST endpoint whose path contains the text

When several methods match, the first by file and line is analyzed and the
others are listed as alternates; --interactive lets you pick instead.

Formats:
  text      Mermaid diagram followed by a chain summary (default)
  json      structured result with the diagram under "mermaid"
  yaml      same as json, as YAML
  toml      same as json, as TOML
  mermaid   the bare flowchart`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			startPoint, projectRoot := args[0], args[1]
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}

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

			depth := maxDepthFlag(cmd, s.cfg, maxDepth)
			diagram, result := p.Analyze(startPoint, depth)
			if interactive && len(result.Alternates) > 0 {
				picked, err := pickTarget(result)
				if err != nil {
					return err
				}
				diagram, result = p.Analyze(picked, depth)
			}

			out := cmd.OutOrStdout()
			if outputFile != "" {
				fh, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer fh.Close()
				out = fh
			}

			styles := render.DefaultStyles()
			if outputFile != "" {
				styles = render.PlainStyles()
			}
			if err := writeAnalysis(out, f, diagram, result, p.Table(), styles); err != nil {
				return err
			}
			if outputFile != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", outputFile)
			}
			if !result.Found() {
				return errNotFound
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", graph.DefaultMaxDepth, "maximum call-chain depth")
	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatText), "output format: text, json, yaml, toml or mermaid")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "choose among several matching methods")

	return cmd
}

// analysisDoc is the serialized form of an analysis.
type analysisDoc struct {
	Mermaid string `json:"mermaid,omitempty"`
	*navigator.Result
}

// writeAnalysis renders an analysis in format f.
func writeAnalysis(w io.Writer, f render.Format, diagram string, r *navigator.Result, t *graph.SymbolTable, st render.Styles) error {
	switch f {
	case render.FormatText:
		var buf bytes.Buffer
		if !r.Found() {
			fmt.Fprintf(&buf, "%s\n\n", st.Header.Render("Error: "+r.Error))
			fmt.Fprintln(&buf, st.Label.Render("Available functions:"))
			buf.WriteString(render.FunctionIndex(t, false, st))
		} else {
			functions := render.Flatten(r.Chain)
			buf.WriteString(render.Text(r.Chain, functions, st))
			if len(r.Alternates) > 0 {
				fmt.Fprintf(&buf, "\n%s\n", st.Faint.Render("Other matches for "+r.StartPoint+":"))
				for _, alt := range r.Alternates {
					fmt.Fprintf(&buf, "  %s\n", alt)
				}
			}
		}
		_, err := w.Write(buf.Bytes())
		return err
	case render.FormatMermaid:
		if !r.Found() {
			_, err := fmt.Fprintf(w, "%%%% %s\n", r.Error)
			return err
		}
		_, err := fmt.Fprintln(w, diagram)
		return err
	default:
		return render.Encode(w, f, analysisDoc{Mermaid: diagram, Result: r})
	}
}

// pickTarget asks the user to choose among the target and its alternates.
func pickTarget(r *navigator.Result) (string, error) {
	keys := append([]string{r.TargetFunction}, r.Alternates...)
	options := make([]huh.Option[string], len(keys))
	for i, k := range keys {
		options[i] = huh.NewOption(k, k)
	}

	picked := r.TargetFunction
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("%d methods match %q", len(keys), r.StartPoint)).
				Options(options...).
				Value(&picked),
		),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			return "", fmt.Errorf("selection cancelled")
		}
		return "", fmt.Errorf("selection: %w", err)
	}
	return picked, nil
}
