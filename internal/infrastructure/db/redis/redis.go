// Package redis holds the Redis connection and the identity cache built on it.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	clientName         = "task-management"
	defaultDialTimeout = 5 * time.Second
	// Cache lookups sit on the request path; a slow Redis must fall back to
	// the store quickly rather than stall authentication.
	defaultIOTimeout = 500 * time.Millisecond
)

// Config captures the settings for the identity cache connection.
type Config struct {
	Addr        string
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
}

// Options turns cfg into client options, filling in defaults.
func Options(cfg Config) *redis.Options {
	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = defaultDialTimeout
	}
	return &redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		ClientName:   clientName,
		DialTimeout:  dial,
		ReadTimeout:  defaultIOTimeout,
		WriteTimeout: defaultIOTimeout,
	}
}

// Connect opens a client and pings it within the dial timeout. The client is
// closed again when the ping fails.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts := Options(cfg)
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Checker returns a readiness check for client.
func Checker(client redis.Cmdable) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
