// Package db owns the shared gorm connection used by every repository.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/gocart-backend/pkg/config"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Client struct {
	gdb *gorm.DB
}

// New opens the database described by cfg. useSQLite routes the DSN to the
// sqlite driver for local runs without Postgres.
func New(ctx context.Context, cfg config.DBConfig, useSQLite bool, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database DSN is required")
	}

	dialector := postgres.New(postgres.Config{DSN: cfg.DSN, PreferSimpleProtocol: true})
	if useSQLite {
		dialector = sqlite.Open(cfg.DSN)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 queryLogger(cfg, logg),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialector.Name(), err)
	}

	pool, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		pool.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		pool.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping %s: %w", dialector.Name(), err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"driver":         dialector.Name(),
			"max_open_conns": cfg.MaxOpenConns,
		}), "db.connected")
	}
	return &Client{gdb: gdb}, nil
}

// queryLogger reports only slow queries and driver errors other than
// record-not-found.
func queryLogger(cfg config.DBConfig, logg *logger.Logger) gormlogger.Interface {
	if logg == nil || cfg.SlowQuery <= 0 {
		return gormlogger.Discard
	}
	return gormlogger.New(logg, gormlogger.Config{
		SlowThreshold:             cfg.SlowQuery,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
	})
}

// NewFromConn wraps a connection opened elsewhere, typically by tests.
func NewFromConn(gdb *gorm.DB) *Client {
	return &Client{gdb: gdb}
}

func (c *Client) DB() *gorm.DB {
	return c.gdb
}

func (c *Client) Ping(ctx context.Context) error {
	pool, err := c.gdb.DB()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

func (c *Client) Close() error {
	pool, err := c.gdb.DB()
	if err != nil {
		return err
	}
	return pool.Close()
}

// WithTx runs fn in a transaction that commits when fn returns nil. An error
// or panic inside fn rolls everything back.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.gdb.WithContext(ctx).Transaction(fn)
}
