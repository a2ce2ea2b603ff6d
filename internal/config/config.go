// Package config defines the top-level configuration for the faith
// market-data service and provides validation helpers.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by FAITH_* environment variables.
type Config struct {
	Feed     FeedConfig     `toml:"feed"`
	Rates    RatesConfig    `toml:"rates"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	Engine   EngineConfig   `toml:"engine"`
	Server   ServerConfig   `toml:"server"`
	LogLevel string         `toml:"log_level"`
}

// FeedConfig holds the pump-portal feed endpoint.
type FeedConfig struct {
	URL string `toml:"url"`
}

// RatesConfig holds the SOL/USD reference-rate endpoint and refresh cadence.
type RatesConfig struct {
	URL            string `toml:"url"`
	RefreshSeconds int    `toml:"refresh_seconds"`
}

// PostgresConfig holds connection parameters for the tracked-token registry.
// When DSN and Host are both empty, the registry is disabled and the token
// set comes from Engine.Tokens alone.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters for the stats mirror. When
// Addr is empty, mirroring is disabled.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// EngineConfig holds aggregation parameters.
type EngineConfig struct {
	// Tokens is a static token set to track in addition to the registry.
	Tokens []string `toml:"tokens"`
	// TrackNewTokens subscribes to token-creation events and registers
	// newly created tokens.
	TrackNewTokens bool `toml:"track_new_tokens"`
	// RegistryRefreshSeconds controls how often the tracked set is
	// reloaded from the registry.
	RegistryRefreshSeconds int `toml:"registry_refresh_seconds"`
}

// ServerConfig holds HTTP API parameters. Port 0 disables the server.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// Defaults returns the built-in default configuration.
func Defaults() Config {
	return Config{
		Rates: RatesConfig{
			RefreshSeconds: 60,
		},
		Postgres: PostgresConfig{
			SSLMode:      "disable",
			PoolMaxConns: 4,
			PoolMinConns: 1,
		},
		Engine: EngineConfig{
			RegistryRefreshSeconds: 60,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		LogLevel: "info",
	}
}

// Validate checks the configuration for inconsistencies that would only
// surface later at runtime.
func (c *Config) Validate() error {
	var problems []string

	if c.Rates.RefreshSeconds <= 0 {
		problems = append(problems, "rates.refresh_seconds must be positive")
	}
	if c.Engine.RegistryRefreshSeconds <= 0 {
		problems = append(problems, "engine.registry_refresh_seconds must be positive")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if !c.UsesPostgres() && len(c.Engine.Tokens) == 0 && !c.Engine.TrackNewTokens {
		problems = append(problems, "no token source: configure engine.tokens, engine.track_new_tokens, or a postgres registry")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("unknown log_level %q", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// UsesPostgres reports whether a tracked-token registry is configured.
func (c *Config) UsesPostgres() bool {
	return strings.TrimSpace(c.Postgres.DSN) != "" || strings.TrimSpace(c.Postgres.Host) != ""
}

// UsesRedis reports whether the stats mirror is configured.
func (c *Config) UsesRedis() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}
