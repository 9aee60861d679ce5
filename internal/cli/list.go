package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imyousuf/javanav/internal/navigator"
	"github.com/imyousuf/javanav/internal/render"
)

func newListCmd() *cobra.Command {
	var (
		restOnly bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "list <project-dir>",
		Short: "List every known function",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectRoot := args[0]
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

			out := cmd.OutOrStdout()
			if asJSON {
				entries := navigator.Available(p.Table())
				if restOnly {
					rest := entries[:0]
					for _, e := range entries {
						if e.Type == navigator.KindREST {
							rest = append(rest, e)
						}
					}
					entries = rest
				}
				return render.Encode(out, render.FormatJSON, entries)
			}

			st := render.DefaultStyles()
			title := "Available functions"
			if restOnly {
				title = "REST endpoints"
			}
			fmt.Fprintf(out, "%s (%d files, %d methods)\n",
				st.Header.Render(title), len(p.Files), p.Table().Len())
			fmt.Fprint(out, render.FunctionIndex(p.Table(), restOnly, st))
			if w := p.Table().Warnings(); len(w) > 0 {
				fmt.Fprintf(out, "\n%s\n", st.Faint.Render(fmt.Sprintf("%d symbol collisions; run with -v for details", len(w))))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&restOnly, "rest", false, "only list REST endpoints")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")

	return cmd
}

func newClassesCmd() *cobra.Command {
	var (
		restOnly bool
		format   string
	)

	cmd := &cobra.Command{
		Use:   "classes <project-dir>",
		Short: "Summarize classes, their endpoints and dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == render.FormatMermaid {
				return fmt.Errorf("format %q is not supported for classes", f)
			}

			projectRoot := args[0]
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

			classes := render.Classes(p.Table())
			if restOnly {
				classes = render.RestControllers(p.Table())
			}
			if f != render.FormatText {
				return render.Encode(cmd.OutOrStdout(), f, classes)
			}
			fmt.Fprint(cmd.OutOrStdout(), render.ClassSummary(classes, render.DefaultStyles()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&restOnly, "rest", false, "only REST controllers")
	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatText), "output format: text, json, yaml or toml")

	return cmd
}
