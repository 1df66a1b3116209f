package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CIRCLEWALLET_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port: expected 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("driver: expected sqlite, got %q", cfg.Database.Driver)
	}
	if cfg.Auth.TokenTTL != 720*time.Hour {
		t.Errorf("token ttl: expected 720h, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level: expected info, got %q", cfg.Log.Level)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 9090
static_path = "/srv/static"

[database]
driver = "postgres"
dsn = "postgres://localhost/circles"

[auth]
token_ttl = "1h"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CIRCLEWALLET_CONFIG", path)
	t.Setenv("CIRCLEWALLET_LOG_LEVEL", "debug")
	t.Setenv("CIRCLEWALLET_AUTH_JWT_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port: expected 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.StaticPath != "/srv/static" {
		t.Errorf("static path: got %q", cfg.Server.StaticPath)
	}
	if cfg.Database.Driver != DriverPostgres || cfg.Database.DSN != "postgres://localhost/circles" {
		t.Errorf("database: got %+v", cfg.Database)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("token ttl: expected 1h, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("jwt secret: expected env override, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level: expected env override, got %q", cfg.Log.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CIRCLEWALLET_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for an explicit config file that does not exist")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Driver: DriverSQLite, Path: "x.db"},
		Auth:     AuthConfig{TokenTTL: time.Hour},
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, true},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = DriverPostgres }, true},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
