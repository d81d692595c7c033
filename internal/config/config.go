// Package config loads the notifyroute configuration file and holds the
// runtime feature flags.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete notifyroute configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Features FeaturesConfig `yaml:"features"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig holds PostgreSQL connection and pool configuration
type DatabaseConfig struct {
	ConnString  string `yaml:"conn_string"`
	MaxConns    int32  `yaml:"max_conns"`
	MinConns    int32  `yaml:"min_conns"`
	AutoMigrate bool   `yaml:"auto_migrate"`

	QueryTimeout   time.Duration `yaml:"-"`
	ConnectTimeout time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	QueryTimeoutRaw   string `yaml:"query_timeout"`
	ConnectTimeoutRaw string `yaml:"connect_timeout"`
}

// FeaturesConfig holds feature flag defaults
type FeaturesConfig struct {
	// EnforceBehaviorGroupNameUnicity defaults to true when unset.
	EnforceBehaviorGroupNameUnicity *bool `yaml:"enforce_behavior_group_name_unicity"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration content, see Load.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that configured values are usable.
func (c *Config) Validate() error {
	if c.Database.MaxConns < 0 || c.Database.MinConns < 0 {
		return fmt.Errorf("database pool sizes must not be negative")
	}
	if c.Database.MaxConns > 0 && c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns must not exceed database.max_conns")
	}

	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}

// NameUnicityEnforced resolves the naming rule default.
func (f FeaturesConfig) NameUnicityEnforced() bool {
	if f.EnforceBehaviorGroupNameUnicity == nil {
		return true
	}
	return *f.EnforceBehaviorGroupNameUnicity
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Database.QueryTimeoutRaw != "" {
		cfg.Database.QueryTimeout, err = time.ParseDuration(cfg.Database.QueryTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing query_timeout %q: %w", cfg.Database.QueryTimeoutRaw, err)
		}
	}

	if cfg.Database.ConnectTimeoutRaw != "" {
		cfg.Database.ConnectTimeout, err = time.ParseDuration(cfg.Database.ConnectTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing connect_timeout %q: %w", cfg.Database.ConnectTimeoutRaw, err)
		}
	}

	return nil
}
