package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Listen         string `yaml:"listen"`
	DBPath         string `yaml:"db_path"`
	SchemasPath    string `yaml:"schemas_path"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	ErrorLimit     int    `yaml:"error_limit"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:         ":8487",
		DBPath:         "tacklebox.db",
		TimeoutSeconds: 8,
		ErrorLimit:     20,
	}
}

// Load reads configuration from a YAML file. Missing fields keep their
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = Default().TimeoutSeconds
	}
	if cfg.ErrorLimit <= 0 {
		cfg.ErrorLimit = Default().ErrorLimit
	}
	return cfg, nil
}

// Timeout returns the store-call timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
