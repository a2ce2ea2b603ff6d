package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Rates.RefreshSeconds != 60 {
		t.Errorf("rates.refresh_seconds = %d, want 60", cfg.Rates.RefreshSeconds)
	}
	if cfg.Engine.RegistryRefreshSeconds != 60 {
		t.Errorf("engine.registry_refresh_seconds = %d, want 60", cfg.Engine.RegistryRefreshSeconds)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log_level = %q, want info", cfg.LogLevel)
	}
	if cfg.Postgres.SSLMode != "disable" {
		t.Errorf("postgres.ssl_mode = %q, want disable", cfg.Postgres.SSLMode)
	}
	if cfg.UsesPostgres() || cfg.UsesRedis() {
		t.Error("defaults must not enable postgres or redis")
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
log_level = "debug"

[feed]
url = "wss://example.com/data"

[engine]
tokens = ["mintA", "mintB"]

[redis]
addr = "localhost:6379"

[server]
port = 9090
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	// Env beats file, file beats defaults.
	t.Setenv("FAITH_SERVER_PORT", "7070")
	t.Setenv("FAITH_ENGINE_TOKENS", "mintC, mintD,")
	t.Setenv("FAITH_ENGINE_TRACK_NEW_TOKENS", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Feed.URL != "wss://example.com/data" {
		t.Errorf("feed.url = %q", cfg.Feed.URL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q", cfg.LogLevel)
	}
	if cfg.Redis.Addr != "localhost:6379" || !cfg.UsesRedis() {
		t.Errorf("redis.addr = %q", cfg.Redis.Addr)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("server.port = %d, want env override 7070", cfg.Server.Port)
	}
	if len(cfg.Engine.Tokens) != 2 || cfg.Engine.Tokens[0] != "mintC" || cfg.Engine.Tokens[1] != "mintD" {
		t.Errorf("engine.tokens = %v, want [mintC mintD]", cfg.Engine.Tokens)
	}
	if !cfg.Engine.TrackNewTokens {
		t.Error("engine.track_new_tokens not overridden")
	}
	// Untouched fields keep their defaults.
	if cfg.Rates.RefreshSeconds != 60 {
		t.Errorf("rates.refresh_seconds = %d, want 60", cfg.Rates.RefreshSeconds)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
	// An empty path means "defaults plus env" and is fine.
	if _, err := Load(""); err != nil {
		t.Errorf("Load(\"\") = %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "no token source",
			mutate:  func(c *Config) {},
			wantErr: "no token source",
		},
		{
			name: "bad refresh",
			mutate: func(c *Config) {
				c.Engine.Tokens = []string{"mintA"}
				c.Rates.RefreshSeconds = 0
			},
			wantErr: "rates.refresh_seconds",
		},
		{
			name: "bad port",
			mutate: func(c *Config) {
				c.Engine.Tokens = []string{"mintA"}
				c.Server.Port = 70000
			},
			wantErr: "out of range",
		},
		{
			name: "bad log level",
			mutate: func(c *Config) {
				c.Engine.Tokens = []string{"mintA"}
				c.LogLevel = "verbose"
			},
			wantErr: "log_level",
		},
		{
			name: "registry as token source",
			mutate: func(c *Config) {
				c.Postgres.Host = "localhost"
			},
		},
		{
			name: "new tokens as token source",
			mutate: func(c *Config) {
				c.Engine.TrackNewTokens = true
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}
