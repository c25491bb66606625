package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/conduit-lang/attrkit/internal/store"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })
}

func TestLoad(t *testing.T) {
	// No config file: defaults apply
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg.Store.Driver != store.DriverSQLite {
		t.Errorf("expected default driver %q, got %s", store.DriverSQLite, cfg.Store.Driver)
	}
	if cfg.Store.Table != "attribute_documents" {
		t.Errorf("expected default table 'attribute_documents', got %s", cfg.Store.Table)
	}
	if cfg.Cache.Backend != CacheMemory {
		t.Errorf("expected default cache %q, got %s", CacheMemory, cfg.Cache.Backend)
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("expected default ttl 10m, got %s", cfg.Cache.TTL)
	}
	if cfg.Server.Address() != "localhost:3000" {
		t.Errorf("expected default address 'localhost:3000', got %s", cfg.Server.Address())
	}
	if cfg.Server.JWTSecret != "" || cfg.Server.TokenTTL != 24*time.Hour {
		t.Errorf("unexpected auth defaults: %+v", cfg.Server)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	configContent := `
store:
  driver: pgx
  dsn: postgres://localhost/attrs
  table: docs
cache:
  backend: redis
  redis_addr: cache:6379
  ttl: 30s
server:
  port: 8080
  host: 0.0.0.0
log:
  level: debug
  development: true
reader:
  advance_level: 1
  categories: [Fluid, Heat]
`
	if err := os.WriteFile("attrkit.yaml", []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if cfg.Store.Driver != store.DriverPostgres || cfg.Store.Table != "docs" {
		t.Errorf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisAddr != "cache:6379" {
		t.Errorf("unexpected cache config: %+v", cfg.Cache)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("expected ttl 30s, got %s", cfg.Cache.TTL)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if !cfg.Log.Development {
		t.Error("expected development logging")
	}
	if cfg.Reader.AdvanceLevel != 1 {
		t.Errorf("expected advance level 1, got %d", cfg.Reader.AdvanceLevel)
	}
	if len(cfg.Reader.Categories) != 2 || cfg.Reader.Categories[0] != "Fluid" {
		t.Errorf("unexpected categories: %v", cfg.Reader.Categories)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	chdir(t, t.TempDir())

	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
}

func TestLoadEnvironmentOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ATTRKIT_SERVER_PORT", "4000")
	t.Setenv("ATTRKIT_STORE_TABLE", "from_env")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("expected port 4000 from env, got %d", cfg.Server.Port)
	}
	if cfg.Store.Table != "from_env" {
		t.Errorf("expected table from env, got %s", cfg.Store.Table)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config {
		return Config{
			Store:  StoreConfig{Driver: store.DriverSQLite, DSN: ":memory:", Table: "docs"},
			Cache:  CacheConfig{Backend: CacheNone},
			Server: ServerConfig{Host: "localhost", Port: 3000},
			Log:    LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "mysql" }, wantErr: true},
		{name: "empty dsn", mutate: func(c *Config) { c.Store.DSN = "" }, wantErr: true},
		{name: "empty table", mutate: func(c *Config) { c.Store.Table = "" }, wantErr: true},
		{name: "unknown cache", mutate: func(c *Config) { c.Cache.Backend = "disk" }, wantErr: true},
		{name: "redis without address", mutate: func(c *Config) { c.Cache.Backend = CacheRedis }, wantErr: true},
		{name: "negative ttl", mutate: func(c *Config) { c.Cache.TTL = -time.Second }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: true},
		{name: "secret without ttl", mutate: func(c *Config) { c.Server.JWTSecret = "s" }, wantErr: true},
		{name: "secret with ttl", mutate: func(c *Config) { c.Server.JWTSecret = "s"; c.Server.TokenTTL = time.Hour }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := validateConfig(&cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
