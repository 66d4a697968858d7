package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level application config.
type Config struct {
	Server Server `koanf:"server"`
	RDB    RDB    `koanf:"rdb"`
	Models Models `koanf:"models"`
	UI     UI     `koanf:"ui"`
}

type Server struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

type RDB struct {
	// ReplaceEntries makes re-adding a model under the same name replace the
	// previous entry instead of failing.
	ReplaceEntries bool `koanf:"replace_entries"`
}

type Models struct {
	// Paths lists solved-model result files loaded into the database on start.
	Paths []string `koanf:"paths"`
}

type UI struct {
	// OpenBrowser opens the inspection UI in the local browser after start.
	OpenBrowser bool `koanf:"open_browser"`
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}
	for _, path := range c.Models.Paths {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("models path %q is not accessible: %w", path, err)
		}
	}
	return nil
}

// Load parses config from file + env and validates it.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":         8080,
		"server.host":         "0.0.0.0",
		"server.mode":         "release",
		"rdb.replace_entries": false,
		"ui.open_browser":     false,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("HELIOS_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "HELIOS_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
