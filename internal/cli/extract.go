package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imyousuf/javanav/internal/graph"
	"github.com/imyousuf/javanav/internal/navigator"
	"github.com/imyousuf/javanav/internal/render"
)

func newExtractCmd() *cobra.Command {
	var (
		maxDepth int
		format   string
	)

	cmd := &cobra.Command{
		Use:   "extract <start-point> <project-dir>",
		Short: "Print the source of every function in a call chain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == render.FormatMermaid {
				return fmt.Errorf("format %q is not supported for extract", f)
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

			out := cmd.OutOrStdout()
			if f != render.FormatText {
				return render.Encode(out, f, snippets)
			}
			st := render.DefaultStyles()
			for i, sn := range snippets {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s %s\n", st.Header.Render("// "+sn.Function),
					st.Faint.Render(fmt.Sprintf("%s:%d-%d", sn.FilePath, sn.StartLine, sn.EndLine)))
				fmt.Fprint(out, sn.CodeContents)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", graph.DefaultMaxDepth, "maximum call-chain depth")
	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatText), "output format: text, json, yaml or toml")

	return cmd
}
