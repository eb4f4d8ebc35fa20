// Package config loads application-level settings: where the documents
// live and how output is rendered. Sources, lowest to highest precedence:
// built-in defaults, the XDG config file, QUIVER_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const appName = "quiver"

// Config holds the application settings. These are host-level concerns;
// nothing in here affects resolution semantics.
type Config struct {
	// DataDir is where collections.json and environments.json live.
	DataDir string `mapstructure:"data_dir"`
	// OutputFormat is the default rendering for structured output.
	OutputFormat string `mapstructure:"output_format"`
	// KeyringService is the service name used for stored secrets.
	KeyringService string `mapstructure:"keyring_service"`
}

// Load reads the config file (if present) and applies environment
// overrides. A missing config file is fine; a malformed one is reported.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(xdg.ConfigHome, appName))

	v.SetDefault("data_dir", filepath.Join(xdg.DataHome, appName))
	v.SetDefault("output_format", "text")
	v.SetDefault("keyring_service", appName)

	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if custom := os.Getenv("QUIVER_DATA_DIR"); custom != "" {
		cfg.DataDir = custom
	}

	return &cfg, nil
}

// CollectionsPath returns the collections document location.
func (c *Config) CollectionsPath() string {
	return filepath.Join(c.DataDir, "collections.json")
}

// EnvironmentsPath returns the environments document location.
func (c *Config) EnvironmentsPath() string {
	return filepath.Join(c.DataDir, "environments.json")
}

// HistoryPath returns the resolution history document location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.json")
}
