package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Addr:               "127.0.0.1",
		Port:               "8081",
		DataBackend:        "sqlite",
		SQLiteDBPath:       "./test.db",
		DataDir:            "data",
		LogLevel:           "info",
		LogFormat:          "text",
		RateLimitPerMinute: 60,
		SummaryCacheTTL:    5 * time.Minute,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid sqlite backend config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "valid memory backend without db path",
			mutate:  func(c *Config) { c.DataBackend = "memory"; c.SQLiteDBPath = "" },
			wantErr: false,
		},
		{
			name:    "localhost address",
			mutate:  func(c *Config) { c.Addr = "localhost" },
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range low",
			mutate:      func(c *Config) { c.Port = "0" },
			wantErr:     true,
			errorString: "invalid port 0: must be between 1 and 65535",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid address",
			mutate:      func(c *Config) { c.Addr = "not an ip" },
			wantErr:     true,
			errorString: "invalid listen address 'not an ip'",
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "postgres" },
			wantErr:     true,
			errorString: "invalid data backend 'postgres': must be one of [memory sqlite]",
		},
		{
			name:        "sqlite backend missing database path",
			mutate:      func(c *Config) { c.SQLiteDBPath = "" },
			wantErr:     true,
			errorString: "SQLite database path cannot be empty when using sqlite backend",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid log level 'verbose'",
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.LogFormat = "xml" },
			wantErr:     true,
			errorString: "invalid log format 'xml'",
		},
		{
			name:        "invalid rate limit - too small",
			mutate:      func(c *Config) { c.RateLimitPerMinute = 0 },
			wantErr:     true,
			errorString: "invalid rate limit 0: must be at least 1 request per minute",
		},
		{
			name:        "invalid rate limit - too large",
			mutate:      func(c *Config) { c.RateLimitPerMinute = 20000 },
			wantErr:     true,
			errorString: "invalid rate limit 20000: must be at most 10000 requests per minute",
		},
		{
			name:        "invalid summary cache TTL - too short",
			mutate:      func(c *Config) { c.SummaryCacheTTL = 500 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid summary cache TTL 500ms: must be at least 1 second",
		},
		{
			name:        "invalid summary cache TTL - too long",
			mutate:      func(c *Config) { c.SummaryCacheTTL = 25 * time.Hour },
			wantErr:     true,
			errorString: "invalid summary cache TTL 25h0m0s: must be at most 24 hours",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.LogFormat = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "invalid port") || !strings.Contains(msg, "invalid log format") {
		t.Errorf("expected both errors in %q", msg)
	}
}

func TestLoad(t *testing.T) {
	for _, key := range []string{
		"WALLET_ADDR", "PORT", "DATA_BACKEND", "SQLITE_DB_PATH", "DATA_DIR",
		"LOG_LEVEL", "LOG_FORMAT", "RATE_LIMIT_PER_MINUTE", "SUMMARY_CACHE_TTL",
	} {
		t.Setenv(key, "")
	}

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.ListenAddr() != "127.0.0.1:8081" {
			t.Errorf("Load() ListenAddr = %v, want 127.0.0.1:8081", cfg.ListenAddr())
		}
		if cfg.DataBackend != "sqlite" {
			t.Errorf("Load() DataBackend = %v, want sqlite", cfg.DataBackend)
		}
		if cfg.SQLiteDBPath != "./data/wallet.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want ./data/wallet.db", cfg.SQLiteDBPath)
		}
		if cfg.RateLimitPerMinute != 60 {
			t.Errorf("Load() RateLimitPerMinute = %v, want 60", cfg.RateLimitPerMinute)
		}
		if cfg.SummaryCacheTTL != 5*time.Minute {
			t.Errorf("Load() SummaryCacheTTL = %v, want 5m", cfg.SummaryCacheTTL)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("DATA_BACKEND", "memory")
		t.Setenv("SQLITE_DB_PATH", "/tmp/test.db")
		t.Setenv("RATE_LIMIT_PER_MINUTE", "120")
		t.Setenv("SUMMARY_CACHE_TTL", "30s")
		t.Setenv("LOG_FORMAT", "json")

		cfg := Load()

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.DataBackend != "memory" {
			t.Errorf("Load() DataBackend = %v, want memory", cfg.DataBackend)
		}
		if cfg.SQLiteDBPath != "/tmp/test.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want /tmp/test.db", cfg.SQLiteDBPath)
		}
		if cfg.RateLimitPerMinute != 120 {
			t.Errorf("Load() RateLimitPerMinute = %v, want 120", cfg.RateLimitPerMinute)
		}
		if cfg.SummaryCacheTTL != 30*time.Second {
			t.Errorf("Load() SummaryCacheTTL = %v, want 30s", cfg.SummaryCacheTTL)
		}
		if cfg.LogFormat != "json" {
			t.Errorf("Load() LogFormat = %v, want json", cfg.LogFormat)
		}
	})

	t.Run("malformed numbers fall back to defaults", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_PER_MINUTE", "lots")
		t.Setenv("SUMMARY_CACHE_TTL", "soon")

		cfg := Load()
		if cfg.RateLimitPerMinute != 60 {
			t.Errorf("Load() RateLimitPerMinute = %v, want 60", cfg.RateLimitPerMinute)
		}
		if cfg.SummaryCacheTTL != 5*time.Minute {
			t.Errorf("Load() SummaryCacheTTL = %v, want 5m", cfg.SummaryCacheTTL)
		}
	})
}
