package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/gocart-backend/pkg/config"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var errNotConnected = errors.New("redis client not initialized")

// commands is the subset of redis.Cmdable used here; tests swap in a map.
type commands interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Incr(context.Context, string) *redis.IntCmd
	Decr(context.Context, string) *redis.IntCmd
	Expire(context.Context, string, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client is the shared Redis handle for sessions, carts, counters and locks.
type Client struct {
	Keyspace

	cmds commands
	conn *redis.Client
}

// IdempotencyStore is what the order idempotency middleware and the webhook
// event guard need.
type IdempotencyStore interface {
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	Del(context.Context, ...string) error
	IdempotencyKey(scope, id string) string
}

// IsMiss reports whether err is the redis "key not found" reply.
func IsMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

// New dials Redis from cfg and fails fast when the server does not answer.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := buildOptions(cfg)
	if err != nil {
		return nil, err
	}
	conn := redis.NewClient(opts)
	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"redis_addr": opts.Addr,
			"redis_db":   opts.DB,
			"pool_size":  opts.PoolSize,
		}), "redis.connected")
	}
	return &Client{cmds: conn, conn: conn}, nil
}

// buildOptions prefers GOCART_REDIS_URL and lets the discrete settings fill
// whatever the URL leaves unset.
func buildOptions(cfg config.RedisConfig) (*redis.Options, error) {
	opts := &redis.Options{Addr: cfg.Address, Password: cfg.Password}
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	case cfg.Address == "":
		return nil, errors.New("redis url or address is required")
	}

	fillInt := func(dst *int, v int) {
		if *dst == 0 {
			*dst = v
		}
	}
	fillDur := func(dst *time.Duration, v time.Duration) {
		if *dst == 0 {
			*dst = v
		}
	}
	fillInt(&opts.DB, cfg.DB)
	fillInt(&opts.PoolSize, cfg.PoolSize)
	fillInt(&opts.MinIdleConns, cfg.MinIdleConns)
	fillDur(&opts.DialTimeout, cfg.DialTimeout)
	fillDur(&opts.ReadTimeout, cfg.ReadTimeout)
	fillDur(&opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func (c *Client) commands() (commands, error) {
	if c == nil || c.cmds == nil {
		return nil, errNotConnected
	}
	return c.cmds, nil
}

func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	cmds, err := c.commands()
	if err != nil {
		return err
	}
	return cmds.Set(ctx, key, value, ttl).Err()
}

// Get returns the value at key; a missing key yields an error for which
// IsMiss is true.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	cmds, err := c.commands()
	if err != nil {
		return "", err
	}
	return cmds.Get(ctx, key).Result()
}

func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	cmds, err := c.commands()
	if err != nil {
		return false, err
	}
	return cmds.SetNX(ctx, key, value, ttl).Result()
}

func (c *Client) Decr(ctx context.Context, key string) (int64, error) {
	cmds, err := c.commands()
	if err != nil {
		return 0, err
	}
	return cmds.Decr(ctx, key).Result()
}

// IncrWithTTL bumps a fixed-window counter. The window starts on the first
// hit, so only that increment sets the expiry.
func (c *Client) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	cmds, err := c.commands()
	if err != nil {
		return 0, err
	}
	count, err := cmds.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 && ttl > 0 {
		if err := cmds.Expire(ctx, key, ttl).Err(); err != nil {
			return count, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return count, nil
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	cmds, err := c.commands()
	if err != nil {
		return err
	}
	return cmds.Del(ctx, keys...).Err()
}

func (c *Client) Ping(ctx context.Context) error {
	cmds, err := c.commands()
	if err != nil {
		return err
	}
	return cmds.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
