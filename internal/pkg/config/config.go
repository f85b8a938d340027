package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"

	devSessionSecret = "dev-secret-change-me"
	maxRetryLimit    = 10
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session      SessionConfig
	Catalog      CatalogConfig
	Retry        RetryConfig
	Mongo        MongoConfig
	Redis        RedisConfig
	AuditWorkers int `env:"AUDIT_WORKERS, default=4"`
}

type SessionConfig struct {
	Secret  string        `env:"SESSION_SECRET,  default=dev-secret-change-me"`
	TTL     time.Duration `env:"SESSION_TTL,     default=24h"`
	Backend string        `env:"SESSION_BACKEND, default=memory"`
}

type CatalogConfig struct {
	CacheTTL time.Duration `env:"PRODUCT_CACHE_TTL, default=5m"`
	Backend  string        `env:"CATALOG_BACKEND,   default=memory"`
}

type RetryConfig struct {
	Max       int           `env:"RETRY_MAX,        default=3"`
	BaseDelay time.Duration `env:"RETRY_BASE_DELAY, default=1s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=vytalle_storefront"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Session.Backend {
	case BackendMemory, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("SESSION_BACKEND must be %q or %q, got %q", BackendMemory, BackendRedis, c.Session.Backend))
	}
	switch c.Catalog.Backend {
	case BackendMemory, BackendMongo:
	default:
		errs = append(errs, fmt.Errorf("CATALOG_BACKEND must be %q or %q, got %q", BackendMemory, BackendMongo, c.Catalog.Backend))
	}
	if c.Session.Secret == "" || (c.IsProduction() && c.Session.Secret == devSessionSecret) {
		errs = append(errs, errors.New("SESSION_SECRET must be set"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Retry.Max < 0 || c.Retry.Max > maxRetryLimit {
		errs = append(errs, fmt.Errorf("RETRY_MAX must be between 0 and %d", maxRetryLimit))
	}
	return errors.Join(errs...)
}

// LoadWith reads configuration through lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}
