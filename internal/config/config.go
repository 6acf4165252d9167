package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the removal CLI
type Config struct {
	// OrgName is the organization to remove users from
	OrgName string `mapstructure:"org_name"`

	// InputFile is the CSV file listing usernames to remove
	InputFile string `mapstructure:"input_file"`

	// TokenFile is the path to the encrypted access token file
	TokenFile string `mapstructure:"token_file"`

	// EnvToken is the name of an environment variable holding the token
	EnvToken string `mapstructure:"env_token"`

	// LogFormat is the audit log file format (json or csv)
	LogFormat string `mapstructure:"log_format"`

	// LogDir is the directory audit logs are written to
	LogDir string `mapstructure:"log_dir"`

	// Delay is the pause between API calls, in seconds
	Delay float64 `mapstructure:"delay"`

	// BaseURL points at a GitHub Enterprise Server API root (empty for github.com)
	BaseURL string `mapstructure:"base_url"`

	// DryRun validates the batch without removing anyone
	DryRun bool `mapstructure:"dry_run"`

	// Verbose enables debug logging
	Verbose bool `mapstructure:"verbose"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		LogFormat: "json",
		LogDir:    "logs",
		Delay:     1.0,
	}
}

// Load builds the configuration from defaults, an optional config file
// and ORGRM_* environment variables, in that order. Flag overrides are
// applied by the command afterwards.
func Load(configFile string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	v.SetEnvPrefix("ORGRM")
	v.AutomaticEnv()

	v.BindEnv("org_name")
	v.BindEnv("input_file")
	v.BindEnv("token_file")
	v.BindEnv("env_token")
	v.BindEnv("log_format")
	v.BindEnv("log_dir")
	v.BindEnv("delay")
	v.BindEnv("base_url")
	v.BindEnv("verbose")

	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("log_dir", cfg.LogDir)
	v.SetDefault("delay", cfg.Delay)

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv merges a .env file from the working directory into the
// process environment before any flag or environment processing.
// Variables that are already set keep their values.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}

	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	logrus.Debug("Loaded environment from .env")

	return nil
}

// Validate checks the values that do not depend on the selected mode.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "json", "csv":
	default:
		return fmt.Errorf("invalid log format %q, must be one of: json, csv", c.LogFormat)
	}

	if c.Delay < 0 {
		return fmt.Errorf("delay must be non-negative, got %g", c.Delay)
	}

	return nil
}
