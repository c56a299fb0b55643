package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"

	CacheRedis  = "redis"
	CacheMemory = "memory"
	CacheNone   = "none"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth    AuthConfig
	Storage StorageConfig
	Cache   CacheConfig
	Audit   AuditConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

// AuthConfig has no defaults: the service refuses to start without a secret.
type AuthConfig struct {
	JWTSecret     string `env:"JWT_SECRET,      required"`
	JWTTTLSeconds int    `env:"JWT_TTL_SECONDS, required"`
	BcryptCost    int    `env:"BCRYPT_COST,     default=10"`
}

type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER, default=mongo"`
}

type CacheConfig struct {
	Driver      string        `env:"CACHE_DRIVER,       default=redis"`
	IdentityTTL time.Duration `env:"IDENTITY_CACHE_TTL, default=1m"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=task_management"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
	// PoolSize of zero leaves the go-redis default.
	PoolSize int `env:"REDIS_POOL_SIZE, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Development reports whether the service runs in a local environment.
func (c *Config) Development() bool {
	return c.Env == "development"
}

func (c *Config) validate() error {
	if c.Auth.JWTTTLSeconds < 0 {
		return fmt.Errorf("JWT_TTL_SECONDS must not be negative, got %d", c.Auth.JWTTTLSeconds)
	}
	switch c.Storage.Driver {
	case StorageMongo, StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	switch c.Cache.Driver {
	case CacheRedis, CacheMemory, CacheNone:
	default:
		return fmt.Errorf("unknown CACHE_DRIVER %q", c.Cache.Driver)
	}
	return nil
}
