// Package config provides dynamic configuration management for kintree.
// It uses Viper to load settings from files, environment variables, and CLI flags.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for kintree.
type Config struct {
	// ── Server ───────────────────────────────────────────────────────────────
	ServerHost string `mapstructure:"server_host"`
	HTTPPort   int    `mapstructure:"http_port"`
	DBPath     string `mapstructure:"db_path"`
	DBDriver   string `mapstructure:"db_driver"` // only "sqlite" for now

	// ── Genealogy ────────────────────────────────────────────────────────────
	// DefaultTree is used when a request carries no ged= parameter.
	DefaultTree string `mapstructure:"default_tree"`
	// ModulesDir is the URL prefix for module assets, with trailing slash.
	ModulesDir string `mapstructure:"modules_dir"`

	// ── Security ──────────────────────────────────────────────────────────────
	// JWTSecret: HS256 signing key for login tokens.
	// Change this in production.
	JWTSecret string `mapstructure:"jwt_secret"`
	// AdminUser / AdminPass seed the first account on startup.
	AdminUser string `mapstructure:"admin_user"`
	AdminPass string `mapstructure:"admin_pass"`
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.HTTPPort)
}

// Load reads config from file (./config.yaml or ~/.kintree/config.yaml)
// and falls back to defaults. Environment variables with prefix KINTREE_
// override file values.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("http_port", 8080)
	v.SetDefault("db_path", "kintree.db")
	v.SetDefault("db_driver", "sqlite")

	v.SetDefault("default_tree", "")
	v.SetDefault("modules_dir", "/modules/")

	v.SetDefault("jwt_secret", "kT9#vQ2!xL7@pR4$wN8^zB3&")
	v.SetDefault("admin_user", "admin")
	v.SetDefault("admin_pass", "admin")

	// --- Config file ---
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.kintree")
	if err := v.ReadInConfig(); err != nil {
		// config file is optional; ignore "not found" errors
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// --- Environment Variables ---
	v.SetEnvPrefix("KINTREE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if cfg.ModulesDir != "" && !strings.HasSuffix(cfg.ModulesDir, "/") {
		cfg.ModulesDir += "/"
	}
	return &cfg, nil
}
