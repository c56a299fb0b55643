package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func required() map[string]string {
	return map[string]string{
		"JWT_SECRET":      "0123456789abcdef0123456789abcdef",
		"JWT_TTL_SECONDS": "3600",
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(required()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Auth.JWTTTLSeconds != 3600 || cfg.Auth.BcryptCost != 10 {
		t.Fatalf("unexpected auth config: %+v", cfg.Auth)
	}
	if cfg.Storage.Driver != StorageMongo || cfg.Cache.Driver != CacheRedis {
		t.Fatalf("unexpected drivers: %s/%s", cfg.Storage.Driver, cfg.Cache.Driver)
	}
	if cfg.Cache.IdentityTTL != time.Minute || cfg.Audit.Workers != 4 {
		t.Fatalf("unexpected cache/audit config: %+v %+v", cfg.Cache, cfg.Audit)
	}
	if cfg.Mongo.Database != "task_management" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected store config: %+v %+v", cfg.Mongo, cfg.Redis)
	}
	if !cfg.Development() {
		t.Fatalf("expected development env")
	}
}

func TestLoadFrom_SecretRequired(t *testing.T) {
	env := required()
	delete(env, "JWT_SECRET")

	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected missing JWT_SECRET error, got %v", err)
	}
}

func TestLoadFrom_TTLRequired(t *testing.T) {
	env := required()
	delete(env, "JWT_TTL_SECONDS")

	if _, err := LoadFrom(context.Background(), envconfig.MapLookuper(env)); err == nil {
		t.Fatalf("expected missing JWT_TTL_SECONDS error")
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"negative ttl":   {"JWT_TTL_SECONDS": "-5"},
		"bad storage":    {"STORAGE_DRIVER": "postgres"},
		"bad cache":      {"CACHE_DRIVER": "memcached"},
		"non-number ttl": {"JWT_TTL_SECONDS": "soon"},
	}

	for name, overrides := range cases {
		t.Run(name, func(t *testing.T) {
			env := required()
			for k, v := range overrides {
				env[k] = v
			}
			if _, err := LoadFrom(context.Background(), envconfig.MapLookuper(env)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadFrom_ZeroTTLAllowed(t *testing.T) {
	env := required()
	env["JWT_TTL_SECONDS"] = "0"
	env["STORAGE_DRIVER"] = "memory"

	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.JWTTTLSeconds != 0 || cfg.Storage.Driver != StorageMemory {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
