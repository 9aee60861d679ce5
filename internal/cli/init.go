package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/imyousuf/javanav/internal/config"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default .javanav.yaml in the current directory",
		Long: `Write a .javanav.yaml holding every configuration key with its default
value. Environment variables prefixed with JAVANAV_ override the file,
e.g. JAVANAV_ANALYSIS_MAX_DEPTH=5.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			path := filepath.Join(cwd, config.DefaultConfigFile+"."+config.DefaultConfigType)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			if err := config.WriteConfig(config.Default(), path); err != nil {
				return fmt.Errorf("write config file: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %s\n", path)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  1. Set cache.enabled: true to keep parse results between runs")
			fmt.Fprintln(out, "  2. Add .javanav/ to .gitignore")
			fmt.Fprintln(out, "  3. Run 'javanav analyze <start-point> <project-dir>'")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}
