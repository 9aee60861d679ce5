package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/imyousuf/javanav/internal/config"
)

func newProjectsCmd() *cobra.Command {
	var prune bool

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects recorded by the index command",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if prune {
				gone, err := config.PruneProjects()
				if err != nil {
					return fmt.Errorf("prune registry: %w", err)
				}
				for _, e := range gone {
					fmt.Fprintf(out, "Removed %s (%s)\n", e.Name, e.Root)
				}
			}

			entries := config.ListProjects()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No projects registered in %s\n", config.RegistryPath())
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tMETHODS\tINDEXED\tROOT")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", e.Name, e.Methods, e.IndexedAt.Local().Format("2006-01-02 15:04"), e.Root)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&prune, "prune", false, "drop projects whose directory no longer exists")
	return cmd
}
