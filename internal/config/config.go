// Package config provides configuration management for velum using
// Viper, loading from a .velum.yml file, VELUM_-prefixed environment
// variables, and command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Templates   TemplatesConfig   `yaml:"templates"`
	Static      StaticConfig      `yaml:"static"`
	Development DevelopmentConfig `yaml:"development"`
	Log         LogConfig         `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TemplatesConfig struct {
	Dir string `yaml:"dir"`
}

type StaticConfig struct {
	URLPrefix string `yaml:"url_prefix"`
	Dir       string `yaml:"dir"`
}

type DevelopmentConfig struct {
	HotReload  bool `yaml:"hot_reload"`
	LiveReload bool `yaml:"live_reload"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load builds the configuration from viper's current state and applies
// defaults and validation.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8000
	}
	if config.Templates.Dir == "" {
		config.Templates.Dir = "templates"
	}
	if config.Static.URLPrefix == "" {
		config.Static.URLPrefix = "/static/"
	}
	if config.Static.Dir == "" {
		config.Static.Dir = "static"
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	// Viper's Unmarshal matches field names, not yaml tags; read the
	// underscored and boolean keys explicitly.
	if viper.IsSet("static.url_prefix") {
		config.Static.URLPrefix = viper.GetString("static.url_prefix")
	}
	if viper.IsSet("development.hot_reload") {
		config.Development.HotReload = viper.GetBool("development.hot_reload")
	} else {
		config.Development.HotReload = true
	}
	if viper.IsSet("development.live_reload") {
		config.Development.LiveReload = viper.GetBool("development.live_reload")
	} else {
		config.Development.LiveReload = true
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values for correctness.
func validateConfig(config *Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", config.Server.Port)
	}
	if config.Templates.Dir == "" {
		return fmt.Errorf("templates dir must not be empty")
	}
	if config.Static.Dir == "" {
		return fmt.Errorf("static dir must not be empty")
	}
	if !strings.HasPrefix(config.Static.URLPrefix, "/") {
		return fmt.Errorf("static url_prefix %q must start with /", config.Static.URLPrefix)
	}
	switch config.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", config.Log.Level)
	}
	switch config.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", config.Log.Format)
	}
	return nil
}

// Addr returns the host:port the server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
