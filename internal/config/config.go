// Package config handles configuration loading and validation for javanav.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigFile is the default configuration file name (without extension).
	DefaultConfigFile = ".javanav"
	// DefaultConfigType is the default configuration file type.
	DefaultConfigType = "yaml"
	// EnvPrefix prefixes every environment variable override.
	EnvPrefix = "JAVANAV"
)

// Config holds all configuration for javanav.
type Config struct {
	// Analysis tunes parsing, resolution and chain walking.
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	// Scan contains source discovery configuration.
	Scan ScanConfig `mapstructure:"scan" yaml:"scan"`
	// Cache contains parse cache configuration.
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`
	// Neo4j holds the connection used by the export command.
	Neo4j Neo4jConfig `mapstructure:"neo4j" yaml:"neo4j"`
	// Log contains logging configuration.
	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// AnalysisConfig holds analysis settings.
type AnalysisConfig struct {
	// MaxDepth is the default call-chain depth.
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
	// Workers bounds parallel parsing; 0 means GOMAXPROCS.
	Workers int `mapstructure:"workers" yaml:"workers"`
	// QualifyClasses keys classes by package-qualified name.
	QualifyClasses bool `mapstructure:"qualify_classes" yaml:"qualify_classes"`
	// MethodSpanFallback is the line span assumed for methods whose braces never balance.
	MethodSpanFallback int `mapstructure:"method_span_fallback" yaml:"method_span_fallback"`
}

// ScanConfig holds source discovery settings.
type ScanConfig struct {
	// Exclude lists gitignore-style patterns to skip, relative to the source root.
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
	// GitIgnore also honors .gitignore files found under the source root.
	GitIgnore bool `mapstructure:"gitignore" yaml:"gitignore"`
}

// CacheConfig holds parse cache settings.
type CacheConfig struct {
	// Enabled turns the on-disk parse cache on.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Path is the cache directory, relative to the project root unless absolute.
	Path string `mapstructure:"path" yaml:"path"`
}

// Neo4jConfig holds the Neo4j connection settings.
type Neo4jConfig struct {
	URI      string `mapstructure:"uri" yaml:"uri"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	Database string `mapstructure:"database" yaml:"database"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`
	// Format is console or json.
	Format string `mapstructure:"format" yaml:"format"`
}

// Load loads configuration from file, environment variables, and defaults.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Check if a specific config file was set via CLI flag (stored in global viper)
	globalViper := viper.GetViper()
	if configFile := globalViper.GetString("config_file"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(DefaultConfigFile)
		v.SetConfigType(DefaultConfigType)
		v.AddConfigPath(".")
	}

	// Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Analysis.MaxDepth < 1 {
		return fmt.Errorf("analysis.max_depth must be at least 1, got %d", c.Analysis.MaxDepth)
	}
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("analysis.workers must not be negative, got %d", c.Analysis.Workers)
	}
	if c.Analysis.MethodSpanFallback < 1 {
		return fmt.Errorf("analysis.method_span_fallback must be at least 1, got %d", c.Analysis.MethodSpanFallback)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'console' or 'json', got %q", c.Log.Format)
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		return fmt.Errorf("cache.path is required when the cache is enabled")
	}
	return nil
}

// Validate checks that a Neo4j connection can be attempted.
func (n Neo4jConfig) Validate() error {
	if n.URI == "" {
		return fmt.Errorf("neo4j.uri is required for export")
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("analysis.max_depth", 10)
	v.SetDefault("analysis.workers", 0)
	v.SetDefault("analysis.qualify_classes", false)
	v.SetDefault("analysis.method_span_fallback", 50)

	v.SetDefault("scan.exclude", []string{})
	v.SetDefault("scan.gitignore", false)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.path", ".javanav/cache")

	v.SetDefault("neo4j.uri", "")
	v.SetDefault("neo4j.user", "neo4j")
	v.SetDefault("neo4j.password", "")
	v.SetDefault("neo4j.database", "neo4j")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}
