package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/accounts-backend/pkg/config"
	"github.com/angelmondragon/accounts-backend/pkg/logger"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client wraps the MongoDB connection and the configured database handle.
type Client struct {
	client *mongodriver.Client
	db     *mongodriver.Database
	cfg    config.MongoConfig
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New connects to MongoDB and verifies the primary is reachable.
func New(ctx context.Context, cfg config.MongoConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.URI) == "" {
		return nil, errors.New("mongo uri is required")
	}
	if strings.TrimSpace(cfg.Database) == "" {
		return nil, errors.New("mongo database is required")
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
		opts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	connectCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	client, err := mongodriver.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "database", cfg.Database), "mongo connection established")
	}

	return &Client{client: client, db: client.Database(cfg.Database), cfg: cfg}, nil
}

// Database returns the configured database handle.
func (c *Client) Database() *mongodriver.Database {
	return c.db
}

// UsersCollection returns the collection that stores account records.
func (c *Client) UsersCollection() *mongodriver.Collection {
	name := c.cfg.UsersColl
	if name == "" {
		name = "users"
	}
	return c.db.Collection(name)
}

// Ping verifies the primary is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("mongo client not initialized")
	}
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the underlying client.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}
