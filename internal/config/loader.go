package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies FAITH_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load. A missing file is not
// an error when path is empty.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known FAITH_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Feed.URL, "FAITH_FEED_URL")

	setStr(&cfg.Rates.URL, "FAITH_RATES_URL")
	setInt(&cfg.Rates.RefreshSeconds, "FAITH_RATES_REFRESH_SECONDS")

	setStr(&cfg.Postgres.DSN, "FAITH_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "FAITH_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "FAITH_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "FAITH_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "FAITH_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "FAITH_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "FAITH_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "FAITH_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "FAITH_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "FAITH_POSTGRES_RUN_MIGRATIONS")

	setStr(&cfg.Redis.Addr, "FAITH_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "FAITH_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "FAITH_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "FAITH_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "FAITH_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "FAITH_REDIS_TLS_ENABLED")

	setStrSlice(&cfg.Engine.Tokens, "FAITH_ENGINE_TOKENS")
	setBool(&cfg.Engine.TrackNewTokens, "FAITH_ENGINE_TRACK_NEW_TOKENS")
	setInt(&cfg.Engine.RegistryRefreshSeconds, "FAITH_ENGINE_REGISTRY_REFRESH_SECONDS")

	setInt(&cfg.Server.Port, "FAITH_SERVER_PORT")
	setStrSlice(&cfg.Server.CORSOrigins, "FAITH_SERVER_CORS_ORIGINS")

	setStr(&cfg.LogLevel, "FAITH_LOG_LEVEL")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStrSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			*dst = out
		}
	}
}
