package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/imyousuf/javanav/internal/config"
	"github.com/imyousuf/javanav/internal/graph/embedded"
)

func newIndexCmd() *cobra.Command {
	var noRegister bool

	cmd := &cobra.Command{
		Use:   "index <project-dir>",
		Short: "Parse a project into its on-disk parse cache",
		Long: `Parse every Java source of a project and store the results in the
parse cache, so later commands only re-parse files whose content changed.
Cache entries of files that no longer exist are pruned. The project is
recorded in ~/.javanav.conf.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectRoot, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			s, err := newSession(cmd, projectRoot, true)
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
			pruned, err := s.cache.Prune(p.Files)
			if err != nil {
				return fmt.Errorf("prune parse cache: %w", err)
			}

			out := cmd.OutOrStdout()
			st := p.Index.Stats
			fmt.Fprintf(out, "Indexed %s\n", p.SourceRoot)
			fmt.Fprintf(out, "  Files:    %d (%d parsed, %d cached, %d failed)\n", st.Files, st.Parsed, st.Cached, st.Failed)
			fmt.Fprintf(out, "  Classes:  %d\n", st.Classes)
			fmt.Fprintf(out, "  Methods:  %d\n", st.Methods)
			if len(st.Warnings) > 0 {
				fmt.Fprintf(out, "  Warnings: %d\n", len(st.Warnings))
			}
			for _, e := range st.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "  error: %s\n", e)
			}
			if pruned > 0 {
				fmt.Fprintf(out, "  Pruned:   %d stale cache entries\n", pruned)
			}
			fmt.Fprintf(out, "  Elapsed:  %s\n", st.Elapsed.Round(time.Millisecond))
			fmt.Fprintf(out, "Cache: %s\n", cacheDir(s.cfg, projectRoot))

			if noRegister {
				return nil
			}
			entry := config.ProjectEntry{Root: projectRoot, SourceRoot: p.SourceRoot, Methods: p.Table().Len()}
			verb := "Registered"
			if prev, ok := config.LookupProject(projectRoot); ok && prev.Root == projectRoot {
				entry.Name = prev.Name
				verb = "Updated"
			}
			if err := config.RegisterProject(entry); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to register project in %s: %v\n", config.RegistryPath(), err)
				return nil
			}
			fmt.Fprintf(out, "%s project in %s\n", verb, config.RegistryPath())
			return nil
		},
	}

	cmd.Flags().BoolVar(&noRegister, "no-register", false, "do not record the project in ~/.javanav.conf")

	return cmd
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear a project's parse cache",
		Long: `Inspect or clear a project's parse cache.

Subcommands:
  stats     Show entry count and size
  dump      Print every cached parse result as JSON lines
  clear     Remove every cached parse result`,
	}

	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCacheDumpCmd())
	cmd.AddCommand(newCacheClearCmd())

	return cmd
}

// withCache opens the parse cache of the project at args[0] and runs fn.
func withCache(cmd *cobra.Command, args []string, fn func(c *embedded.Cache, dir string) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	projectRoot, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	dir := cacheDir(cfg, projectRoot)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("no parse cache at %s; run 'javanav index %s' first", dir, args[0])
	}
	c, err := openCache(cfg, projectRoot, true)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c, dir)
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <project-dir>",
		Short: "Show parse cache statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, args, func(c *embedded.Cache, dir string) error {
				stats, err := c.Stats()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Cache:   %s\n", dir)
				fmt.Fprintf(out, "Entries: %d\n", stats.Entries)
				fmt.Fprintf(out, "Size:    %d bytes\n", stats.Bytes)
				return nil
			})
		},
	}
}

func newCacheDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <project-dir>",
		Short: "Print cached parse results as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, args, func(c *embedded.Cache, _ string) error {
				return c.Export(cmd.OutOrStdout())
			})
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <project-dir>",
		Short: "Remove every cached parse result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, args, func(c *embedded.Cache, dir string) error {
				if err := c.Clear(); err != nil {
					return fmt.Errorf("clear parse cache: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", dir)
				return nil
			})
		},
	}
}
