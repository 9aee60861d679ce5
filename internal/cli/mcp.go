package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imyousuf/javanav/internal/logging"
	"github.com/imyousuf/javanav/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	var (
		projectRoot string
		logFile     string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve call-chain analysis as MCP tools over stdio",
		Long: `Start an MCP (Model Context Protocol) server over stdin/stdout.

Tools:
  analyze_call_chain   Mermaid diagram and chain functions for a start point
  list_functions       every indexed method, optionally REST endpoints only
  list_classes         class summary with dependencies
  extract_code         source text of every method in a chain

This command is typically launched by an MCP client, not run directly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, projectRoot, false)
			if err != nil {
				return err
			}
			defer s.Close()

			// stdout carries the protocol; logs go to stderr or --log.
			log := s.log
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if err != nil {
					return fmt.Errorf("open log file %s: %w", logFile, err)
				}
				defer f.Close()
				log = logging.New(logging.Config{Level: s.cfg.Log.Level, Format: "json", Output: f})
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			srv := mcp.NewServer(mcp.Config{
				Navigator:   s.nav,
				DefaultRoot: projectRoot,
				MaxDepth:    s.cfg.Analysis.MaxDepth,
				Version:     Version,
				Logger:      logging.Component(log, "mcp"),
			})
			if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectRoot, "project", ".", "project used when a tool call names none")
	cmd.Flags().StringVar(&logFile, "log", "", "append JSON logs to this file instead of stderr")

	return cmd
}
