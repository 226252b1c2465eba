package storefront

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Storefront/internal/persist"
	"Storefront/pkg/kit"
)

const minJWTSecretLen = 32

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	CatalogURL     string        `env:"CATALOG_URL" envDefault:"https://fakestoreapi.com/products"`
	CatalogTimeout time.Duration `env:"CATALOG_TIMEOUT" envDefault:"10s"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`

	JWTSecret    string `env:"JWT_SECRET"`
	MetricsToken string `env:"METRICS_TOKEN"`

	DedupReads       bool `env:"DEDUP_READS" envDefault:"false"`
	WriteLimitPerMin int  `env:"WRITE_LIMIT_PER_MIN" envDefault:"30"`

	Cache CacheConfig
}

type CacheConfig struct {
	Backend       string `env:"CACHE_BACKEND" envDefault:"sqlite"`
	SQLitePath    string `env:"CACHE_SQLITE_PATH" envDefault:"storefront-cache.db"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"storefront:"`
}

// LoadConfig reads Config from the environment and validates it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := kit.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.CatalogURL == "" {
		errs = append(errs, errors.New("CATALOG_URL is required"))
	}
	if len(c.JWTSecret) < minJWTSecretLen {
		errs = append(errs, fmt.Errorf("JWT_SECRET is required and must be at least %d chars", minJWTSecretLen))
	}
	switch c.Cache.Backend {
	case BackendMemory, BackendSQLite, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend))
	}
	return errors.Join(errs...)
}

// ClosableCache is a PersistentCache that owns a connection or file.
type ClosableCache interface {
	PersistentCache
	Close() error
}

// Open connects the configured persistent cache backend.
func (c CacheConfig) Open(ctx context.Context) (ClosableCache, error) {
	switch c.Backend {
	case BackendMemory:
		return persist.NewMemory(), nil
	case BackendSQLite:
		db, err := persist.OpenSQLite(c.SQLitePath)
		if err != nil {
			return nil, err
		}
		return db, nil
	case BackendRedis:
		rdb, err := persist.NewRedis(ctx, persist.RedisConfig{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			Prefix:   c.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return rdb, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", c.Backend)
	}
}
