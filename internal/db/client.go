// Package db stores the site catalog and rate-limit windows in SurrealDB.
package db

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/contrib/rews"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	"github.com/surrealdb/surrealdb.go/surrealcbor"
)

func init() {
	// WebSocket upgrade fails under HTTP/2, so pin ALPN to http/1.1 for wss://.
	gorillaws.DefaultDialer.TLSClientConfig = &tls.Config{
		NextProtos: []string{"http/1.1"},
	}
}

// Config holds SurrealDB connection configuration.
type Config struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
	AuthLevel string // "root" or "database"

	// Zero values select 5s and 10 reconnect attempts.
	DialTimeout time.Duration
	MaxRetries  int
}

// Client wraps a SurrealDB connection with auto-reconnect.
type Client struct {
	conn   *rews.Connection[*gorillaws.Connection]
	db     *surrealdb.DB
	cfg    Config
	logger logger.Logger
}

// NewClient connects, signs in and selects the namespace and database.
// The connection reconnects with exponential backoff, so a restarted
// SurrealDB does not take the catalog or the rate limiter down for good.
func NewClient(ctx context.Context, cfg Config, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 10
	}

	c := &Client{cfg: cfg, logger: logger.New(log.Handler())}
	c.conn = c.dial()

	c.logger.Info("connecting to SurrealDB", "url", cfg.URL)
	if err := c.conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	db, err := surrealdb.FromConnection(ctx, c.conn)
	if err != nil {
		_ = c.conn.Close(ctx)
		return nil, fmt.Errorf("from connection: %w", err)
	}
	c.db = db

	if err := c.authenticate(ctx); err != nil {
		_ = c.conn.Close(ctx)
		return nil, err
	}

	c.logger.Info("SurrealDB connection established", "namespace", cfg.Namespace, "database", cfg.Database)
	return c, nil
}

func (c *Client) dial() *rews.Connection[*gorillaws.Connection] {
	codec := surrealcbor.New()
	// gorillaws appends /rpc itself.
	baseURL := strings.TrimSuffix(c.cfg.URL, "/rpc")

	conn := rews.New(
		func(ctx context.Context) (*gorillaws.Connection, error) {
			return gorillaws.New(&connection.Config{
				BaseURL:     baseURL,
				Marshaler:   codec,
				Unmarshaler: codec,
				Logger:      c.logger,
			}), nil
		},
		c.cfg.DialTimeout,
		codec,
		c.logger,
	)

	retryer := rews.NewExponentialBackoffRetryer()
	retryer.InitialDelay = time.Second
	retryer.MaxDelay = 30 * time.Second
	retryer.Multiplier = 2.0
	retryer.MaxRetries = c.cfg.MaxRetries
	conn.Retryer = retryer
	return conn
}

// authenticate signs in at the configured level and selects the catalog
// namespace and database.
func (c *Client) authenticate(ctx context.Context) error {
	auth := surrealdb.Auth{Username: c.cfg.Username, Password: c.cfg.Password}
	if c.cfg.AuthLevel == "database" {
		auth.Namespace = c.cfg.Namespace
		auth.Database = c.cfg.Database
	}
	if _, err := c.db.SignIn(ctx, auth); err != nil {
		return fmt.Errorf("signin: %w", err)
	}
	if err := c.db.Use(ctx, c.cfg.Namespace, c.cfg.Database); err != nil {
		return fmt.Errorf("use: %w", err)
	}
	return nil
}

// Ping runs a trivial query to confirm the store answers.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := surrealdb.Query[bool](ctx, c.db, "RETURN true", nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close closes the SurrealDB connection.
func (c *Client) Close(ctx context.Context) error {
	c.logger.Info("closing SurrealDB connection")
	return c.conn.Close(ctx)
}

// InitSchema defines the catalog and rate-limit tables. Safe to run repeatedly.
func (c *Client) InitSchema(ctx context.Context) error {
	c.logger.Info("initializing database schema")
	if _, err := surrealdb.Query[any](ctx, c.db, SchemaSQL, nil); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// WipeData deletes all records while preserving schema. Use for testing only.
func (c *Client) WipeData(ctx context.Context) error {
	c.logger.Warn("wiping all data from database")

	// Episodes reference shows, so they go first.
	for _, table := range []string{"episode", "show", "service", "rate_limit"} {
		if _, err := surrealdb.Query[any](ctx, c.db, "DELETE "+table, nil); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}
