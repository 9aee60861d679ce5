// Package cli implements the command-line interface for javanav.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/imyousuf/javanav/internal/config"
	"github.com/imyousuf/javanav/internal/graph/embedded"
	"github.com/imyousuf/javanav/internal/logging"
	"github.com/imyousuf/javanav/internal/navigator"
)

var (
	cfgFile   string
	verbose   bool
	logFormat string
)

// errNotFound makes the process exit non-zero after a not-found report
// has already been printed.
var errNotFound = errors.New("start point not found")

// rootCmd is the base command.
var rootCmd = newRootCmd()

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "javanav",
		Short: "javanav - Java call-chain navigator",
		Long: `javanav indexes the methods of a Java source tree, resolves the calls
between them and renders the call chain below a method or REST endpoint
as a Mermaid flowchart and a structured report.

Commands:
  analyze    Render the call chain below a start point
  list       List known functions
  classes    Summarize classes and their dependencies
  extract    Print the source of every function in a chain
  metrics    Measure every function in a chain
  watch      Re-run an analysis whenever sources change
  index      Fill the parse cache for a project
  projects   List indexed projects
  cache      Inspect or clear the parse cache
  export     Load the call graph into Neo4j
  mcp        Serve analysis tools over MCP
  init       Write a default .javanav.yaml
  completion Generate shell completion scripts`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all subcommands)
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .javanav.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json (default from config)")

	// Bind flags to viper
	bindFlag := func(key, flag string) {
		if err := viper.BindPFlag(key, root.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", flag, err))
		}
	}
	bindFlag("config_file", "config")

	// Add subcommands
	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newClassesCmd())
	root.AddCommand(newExtractCmd())
	root.AddCommand(newMetricsCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newIndexCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newMCPCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newProjectsCmd())
	root.AddCommand(newCompletionCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// loadConfig loads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the stderr logger for a command.
func newLogger(cmd *cobra.Command, cfg *config.Config) zerolog.Logger {
	return logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
}

// cacheDir resolves the configured cache path against projectRoot.
func cacheDir(cfg *config.Config, projectRoot string) string {
	if filepath.IsAbs(cfg.Cache.Path) {
		return cfg.Cache.Path
	}
	return filepath.Join(projectRoot, cfg.Cache.Path)
}

// openCache opens the project's parse cache. force opens it even when the
// cache is disabled in the configuration.
func openCache(cfg *config.Config, projectRoot string, force bool) (*embedded.Cache, error) {
	if !cfg.Cache.Enabled && !force {
		return nil, nil
	}
	c, err := embedded.Open(cacheDir(cfg, projectRoot))
	if err != nil {
		return nil, fmt.Errorf("open parse cache: %w", err)
	}
	return c, nil
}

// session bundles what most commands need to analyze one project.
type session struct {
	cfg   *config.Config
	log   zerolog.Logger
	nav   *navigator.Navigator
	cache *embedded.Cache
}

func (s *session) Close() {
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.log.Warn().Err(err).Msg("close parse cache")
		}
	}
}

// newSession loads config and builds a navigator for projectRoot.
func newSession(cmd *cobra.Command, projectRoot string, forceCache bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := newLogger(cmd, cfg)

	cache, err := openCache(cfg, projectRoot, forceCache)
	if err != nil {
		return nil, err
	}
	opts := navigator.Options{
		Workers:            cfg.Analysis.Workers,
		QualifyClasses:     cfg.Analysis.QualifyClasses,
		MethodSpanFallback: cfg.Analysis.MethodSpanFallback,
		Exclude:            cfg.Scan.Exclude,
		GitIgnore:          cfg.Scan.GitIgnore,
		Logger:             log,
	}
	if cache != nil {
		opts.Cache = cache
	}
	return &session{cfg: cfg, log: log, nav: navigator.New(opts), cache: cache}, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// maxDepthFlag returns the --max-depth value, or the configured default
// when the flag was not set.
func maxDepthFlag(cmd *cobra.Command, cfg *config.Config, value int) int {
	if cmd.Flags().Changed("max-depth") {
		return value
	}
	return cfg.Analysis.MaxDepth
}
