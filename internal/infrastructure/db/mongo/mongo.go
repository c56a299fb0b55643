package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	appName        = "task-management"
	defaultTimeout = 10 * time.Second
	// Keep primary reads fast enough for per-request identity lookups.
	selectionTimeout = 3 * time.Second
)

// Config holds the connection settings for the task store.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// ClientOptions builds the driver options for cfg. Writes are acknowledged by
// a majority so a registered user is visible to the next login.
func ClientOptions(cfg Config) *options.ClientOptions {
	return options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetServerSelectionTimeout(selectionTimeout).
		SetWriteConcern(writeconcern.Majority())
}

// Connect opens the client, pings the primary and returns the task database.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	if cfg.Database == "" {
		return nil, nil, fmt.Errorf("mongo connect: empty database name")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, ClientOptions(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Repositories bundles the collections the service stores its state in.
type Repositories struct {
	Users      *UserRepository
	Tasks      *TaskRepository
	Comments   *CommentRepository
	AuthEvents *AuthEventRepository
}

func NewRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(db),
		Tasks:      NewTaskRepository(db),
		Comments:   NewCommentRepository(db),
		AuthEvents: NewAuthEventRepository(db),
	}
}

// EnsureIndexes creates the indexes of every collection.
func (r *Repositories) EnsureIndexes(ctx context.Context) error {
	if err := r.Users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	if err := r.Tasks.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("tasks indexes: %w", err)
	}
	if err := r.Comments.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("comments indexes: %w", err)
	}
	if err := r.AuthEvents.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("auth_events indexes: %w", err)
	}
	return nil
}

// Checker returns a readiness check for db.
func Checker(db *mongo.Database) func(context.Context) error {
	return func(ctx context.Context) error {
		return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
	}
}
