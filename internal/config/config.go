// Package config loads the service configuration from an optional yaml file
// with environment-variable overrides on top.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// StorageConfig holds the sqlite persistence settings.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// Config is the root configuration document.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
}

// Default returns the configuration used when no file or overrides exist.
func Default() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8080", StaticDir: "web/dist"},
		Storage: StorageConfig{Path: "data/tablero.db"},
	}
}

// Load reads path when it exists, merges it over the defaults and applies
// environment overrides last. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	overrideFromEnv(&cfg)
	return cfg, nil
}

// overrideFromEnv applies TABLERO_* environment variables, which take
// precedence over both defaults and file values.
func overrideFromEnv(cfg *Config) {
	if addr := os.Getenv("TABLERO_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if dir := os.Getenv("TABLERO_STATIC_DIR"); dir != "" {
		cfg.Server.StaticDir = dir
	}
	if path := os.Getenv("TABLERO_DB_PATH"); path != "" {
		cfg.Storage.Path = path
	}
}
