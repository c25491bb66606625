package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conduit-lang/attrkit/internal/store"
)

// Config represents the attrkit configuration
type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Reader ReaderConfig `mapstructure:"reader"`
}

// StoreConfig selects the document database
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Table  string `mapstructure:"table"`
}

// CacheConfig selects the document cache in front of the store
type CacheConfig struct {
	Backend   string        `mapstructure:"backend"`
	RedisAddr string        `mapstructure:"redis_addr"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// ServerConfig represents server configuration. Write routes require a
// bearer token when JWTSecret is set.
type ServerConfig struct {
	Port      int           `mapstructure:"port"`
	Host      string        `mapstructure:"host"`
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// LogConfig configures the zap backend
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// ReaderConfig holds display filters applied when describing resources
type ReaderConfig struct {
	AdvanceLevel uint     `mapstructure:"advance_level"`
	Categories   []string `mapstructure:"categories"`
}

// Address returns host:port for the HTTP server
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Load loads the configuration from attrkit.yaml in the working directory,
// or from path when it is not empty. Environment variables prefixed with
// ATTRKIT_ override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("store.driver", store.DriverSQLite)
	v.SetDefault("store.dsn", "attrkit.db")
	v.SetDefault("store.table", "attribute_documents")
	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.token_ttl", "24h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("reader.advance_level", 0)
	v.SetDefault("reader.categories", []string{})

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("attrkit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("attrkit")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch cfg.Store.Driver {
	case store.DriverSQLite, store.DriverPostgres:
	default:
		return fmt.Errorf("store.driver must be %q or %q, got: %s", store.DriverSQLite, store.DriverPostgres, cfg.Store.Driver)
	}
	if cfg.Store.DSN == "" {
		return fmt.Errorf("store.dsn must not be empty")
	}
	if cfg.Store.Table == "" {
		return fmt.Errorf("store.table must not be empty")
	}

	switch cfg.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if cfg.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis cache")
		}
	default:
		return fmt.Errorf("cache.backend must be one of none, memory, redis, got: %s", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got: %s", cfg.Cache.TTL)
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", cfg.Server.Port)
	}
	if cfg.Server.JWTSecret != "" && cfg.Server.TokenTTL <= 0 {
		return fmt.Errorf("server.token_ttl must be positive when server.jwt_secret is set, got: %s", cfg.Server.TokenTTL)
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got: %s", cfg.Log.Level)
	}
	return nil
}
