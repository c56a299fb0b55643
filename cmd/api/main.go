// Command api serves the task management HTTP API.
//
// @title                       Task Management API
// @version                     1.0
// @description                 Task tracker with JWT authentication and role based access.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/ansysan/task-management-system/internal/api"
	"github.com/ansysan/task-management-system/internal/api/metrics"
	"github.com/ansysan/task-management-system/internal/core/auth"
	"github.com/ansysan/task-management-system/internal/core/ports"
	"github.com/ansysan/task-management-system/internal/core/service"
	"github.com/ansysan/task-management-system/internal/infrastructure/cache"
	"github.com/ansysan/task-management-system/internal/infrastructure/config"
	"github.com/ansysan/task-management-system/internal/infrastructure/db/memory"
	mongodb "github.com/ansysan/task-management-system/internal/infrastructure/db/mongo"
	redisdb "github.com/ansysan/task-management-system/internal/infrastructure/db/redis"
	"github.com/ansysan/task-management-system/internal/infrastructure/http/handlers"
	"github.com/ansysan/task-management-system/internal/infrastructure/queue"
	"github.com/ansysan/task-management-system/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	connectAttempts = 5
	connectBackoff  = 500 * time.Millisecond
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Development(),
		Service: "task-management",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("service stopped")
	}
}

// backends are the stores selected by configuration plus what the process
// has to release on exit.
type backends struct {
	users    ports.UserRepository
	tasks    ports.TaskRepository
	comments ports.CommentRepository
	events   ports.AuthEventRepository
	cache    ports.IdentityCache

	checks  map[string]handlers.Checker
	closers []func(context.Context) error
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	codec, err := auth.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.JWTTTLSeconds)
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}
	hasher := &auth.Hasher{Cost: cfg.Auth.BcryptCost}

	b := &backends{checks: map[string]handlers.Checker{}}
	defer b.close(log)
	if err := b.openStorage(ctx, cfg, log); err != nil {
		return err
	}
	if err := b.openCache(ctx, cfg, log); err != nil {
		return err
	}

	audit := queue.NewDispatcher(cfg.Audit.Workers, b.events, logger.Named(log, "audit"), queue.WithDropHook(metrics.AuditEventsDroppedTotal.Inc))
	audit.Start(ctx)

	resolver := service.NewIdentityResolver(b.users, b.cache, logger.Named(log, "identity"))
	router := api.NewRouter(api.Deps{
		Auth:     service.NewAuthService(b.users, hasher, codec, audit, logger.Named(log, "auth")),
		Users:    service.NewUserService(b.users, hasher, resolver, logger.Named(log, "users")),
		Admin:    service.NewAdminService(b.users, resolver, logger.Named(log, "admin")),
		Tasks:    service.NewTaskService(b.tasks, b.comments, b.users, logger.Named(log, "tasks")),
		Comments: service.NewCommentService(b.comments, b.tasks, logger.Named(log, "comments")),
		Tokens:   codec,
		Resolver: resolver,
		Checks:   b.checks,
		Logger:   log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("addr", srv.Addr).
			Str("storage", cfg.Storage.Driver).
			Str("cache", cfg.Cache.Driver).
			Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		if err := audit.Close(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("audit queue not drained before shutdown")
		}
		return nil
	})

	return g.Wait()
}

func (b *backends) openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		repos := memory.NewRepositories()
		b.users, b.tasks, b.comments, b.events = repos.Users, repos.Tasks, repos.Comments, repos.AuthEvents
		log.Warn().Msg("using in-memory storage, data is lost on exit")
		return nil
	}

	type conn struct {
		disconnect func(context.Context) error
		repos      *mongodb.Repositories
		ping       handlers.Checker
	}
	c, err := connectWithRetry(ctx, log, "mongo", func(ctx context.Context) (conn, error) {
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return conn{}, err
		}
		return conn{disconnect: client.Disconnect, repos: mongodb.NewRepositories(db), ping: mongodb.Checker(db)}, nil
	})
	if err != nil {
		return fmt.Errorf("mongo: %w", err)
	}
	b.closers = append(b.closers, c.disconnect)
	b.checks["mongo"] = c.ping

	if err := c.repos.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("mongo: %w", err)
	}
	b.users, b.tasks, b.comments, b.events = c.repos.Users, c.repos.Tasks, c.repos.Comments, c.repos.AuthEvents
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")
	return nil
}

func (b *backends) openCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	switch cfg.Cache.Driver {
	case config.CacheNone:
		return nil
	case config.CacheMemory:
		b.cache = cache.NewIdentityCache(cfg.Cache.IdentityTTL)
		return nil
	}

	client, err := connectWithRetry(ctx, log, "redis", func(ctx context.Context) (*redis.Client, error) {
		return redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
	})
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	b.closers = append(b.closers, func(context.Context) error { return client.Close() })
	b.checks["redis"] = redisdb.Checker(client)
	b.cache = redisdb.NewIdentityCache(client, cfg.Cache.IdentityTTL)
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	return nil
}

func (b *backends) close(log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			log.Warn().Err(err).Msg("close backend")
		}
	}
}

// connectWithRetry retries connect with exponential backoff so the service
// survives dependencies that come up after it.
func connectWithRetry[T any](ctx context.Context, log zerolog.Logger, name string, connect func(context.Context) (T, error)) (T, error) {
	var out T
	backoff := retry.WithMaxRetries(connectAttempts, retry.NewExponential(connectBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		v, err := connect(ctx)
		if err != nil {
			log.Warn().Err(err).Str("dependency", name).Msg("connect failed")
			return retry.RetryableError(err)
		}
		out = v
		return nil
	})
	return out, err
}
