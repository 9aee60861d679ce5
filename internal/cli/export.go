package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imyousuf/javanav/internal/export"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the resolved call graph",
	}
	cmd.AddCommand(newExportNeo4jCmd())
	return cmd
}

func newExportNeo4jCmd() *cobra.Command {
	var (
		uri       string
		user      string
		password  string
		database  string
		batchSize int
		clean     bool
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "neo4j <project-dir>",
		Short: "Load classes, methods and call edges into Neo4j",
		Long: `Load the project's resolved symbol table into Neo4j as JavaClass and
JavaMethod nodes joined by HAS_METHOD and CALLS relationships. Connection
settings come from the neo4j section of the config, overridable by flags.
--dry-run prints the Cypher statements instead of running them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectRoot := args[0]
			s, err := newSession(cmd, projectRoot, false)
			if err != nil {
				return err
			}
			defer s.Close()

			conn := s.cfg.Neo4j
			if cmd.Flags().Changed("uri") {
				conn.URI = uri
			}
			if cmd.Flags().Changed("user") {
				conn.User = user
			}
			if cmd.Flags().Changed("password") {
				conn.Password = password
			}
			if cmd.Flags().Changed("database") {
				conn.Database = database
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			p, err := s.nav.Load(ctx, projectRoot)
			if err != nil {
				return fmt.Errorf("load project: %w", err)
			}

			opts := []export.Option{export.WithBatchSize(batchSize), export.WithClean(clean), export.WithLogger(s.log)}
			out := cmd.OutOrStdout()
			if dryRun {
				stmts, _ := export.NewExporter(nil, opts...).Statements(p.Table())
				for _, st := range stmts {
					rows := 0
					if batch, ok := st.Params["batch"].([]map[string]any); ok {
						rows = len(batch)
					}
					fmt.Fprintf(out, "%s;\n// rows: %d\n\n", st.Cypher, rows)
				}
				return nil
			}

			if err := conn.Validate(); err != nil {
				return err
			}
			runner, err := export.Connect(ctx, conn.URI, conn.User, conn.Password, conn.Database)
			if err != nil {
				return err
			}
			defer runner.Close(ctx)

			stats, err := export.NewExporter(runner, opts...).Export(ctx, p.Table())
			if err != nil {
				return fmt.Errorf("export to neo4j: %w", err)
			}
			fmt.Fprintf(out, "Exported %d classes, %d methods and %d calls to %s\n",
				stats.Classes, stats.Methods, stats.Calls, conn.URI)
			return nil
		},
	}

	cmd.Flags().StringVar(&uri, "uri", "", "Neo4j URI, e.g. neo4j://localhost:7687")
	cmd.Flags().StringVar(&user, "user", "", "Neo4j user")
	cmd.Flags().StringVar(&password, "password", "", "Neo4j password")
	cmd.Flags().StringVar(&database, "database", "", "Neo4j database")
	cmd.Flags().IntVar(&batchSize, "batch-size", export.DefaultBatchSize, "rows per UNWIND statement")
	cmd.Flags().BoolVar(&clean, "clean", false, "delete previously exported Java nodes first")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the Cypher statements without connecting")

	return cmd
}
