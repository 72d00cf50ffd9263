// Package config loads the application configuration from an optional YAML
// file with GWRECAP_-prefixed environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	League  LeagueConfig  `mapstructure:"league"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds the upstream FPL API settings.
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Sleep     time.Duration `mapstructure:"sleep"`
}

// ServerConfig holds the MCP HTTP server settings.
type ServerConfig struct {
	Addr    string `mapstructure:"addr"`
	MCPPath string `mapstructure:"mcp_path"`
}

// StoreConfig selects and configures the snapshot store backend.
type StoreConfig struct {
	Backend   string `mapstructure:"backend"` // "file" or "redis"
	Root      string `mapstructure:"root"`    // file backend root dir
	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`
}

// LeagueConfig holds the default league to report on.
type LeagueConfig struct {
	ID int `mapstructure:"id"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// Load reads configuration from path (optional — defaults apply when empty)
// and the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GWRECAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://fantasy.premierleague.com/api")
	v.SetDefault("api.user_agent", "gwrecap/1.0")
	v.SetDefault("api.timeout", "20s")
	v.SetDefault("api.sleep", "250ms")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mcp_path", "/mcp")

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.root", "data/raw")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_db", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "json")
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	switch c.Store.Backend {
	case "file":
		if c.Store.Root == "" {
			return fmt.Errorf("store.root is required for the file backend")
		}
	case "redis":
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("store.backend must be file or redis, got %q", c.Store.Backend)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn":
	default:
		return fmt.Errorf("logging.level must be debug, info, or warn")
	}
	return nil
}
