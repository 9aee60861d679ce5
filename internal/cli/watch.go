package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/imyousuf/javanav/internal/graph"
	"github.com/imyousuf/javanav/internal/navigator"
	"github.com/imyousuf/javanav/internal/render"
	"github.com/imyousuf/javanav/internal/scanner"
	"github.com/imyousuf/javanav/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var (
		maxDepth int
		format   string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <start-point> <project-dir>",
		Short: "Re-run an analysis whenever Java sources change",
		Long: `Analyze a start point, then watch the project's source root and
re-analyze after every batch of .java changes. Only changed files are
re-parsed. Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
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

			depth := maxDepthFlag(cmd, s.cfg, maxDepth)
			out := cmd.OutOrStdout()
			st := render.DefaultStyles()
			report := func() error {
				diagram, result := p.Analyze(startPoint, depth)
				return writeAnalysis(out, f, diagram, result, p.Table(), st)
			}
			if err := report(); err != nil {
				return err
			}

			w := watcher.NewWatcher(watcher.Config{
				Root:       p.SourceRoot,
				Extensions: []string{scanner.JavaExt},
				Matcher:    p.Matcher(),
				Debounce:   debounce,
				Logger:     s.log,
			})
			batches, err := w.Start(ctx)
			if err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			defer w.Close()

			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (%d files)...\n", p.SourceRoot, len(p.Files))
			for batch := range batches {
				if err := refresh(ctx, p, batch, out, st); err != nil {
					if ctx.Err() != nil {
						break
					}
					return err
				}
				if err := report(); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "\nShutting down...")
			return nil
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", graph.DefaultMaxDepth, "maximum call-chain depth")
	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatMermaid), "output format: text, json, yaml, toml or mermaid")
	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "quiet window before re-analyzing")

	return cmd
}

// refresh applies one batch of changes and prints a separator naming them.
func refresh(ctx context.Context, p *navigator.Project, batch watcher.Batch, out io.Writer, st render.Styles) error {
	if err := p.Refresh(ctx, batch.Changes); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s\n", st.Faint.Render(fmt.Sprintf("--- %s: %d file(s) changed ---",
		batch.Time.Format("15:04:05"), len(batch.Changes))))
	return nil
}
