package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/gocart-backend/pkg/instance"
	"github.com/angelmondragon/gocart-backend/pkg/redis"
	"github.com/google/uuid"
)

const defaultLockTTL = 10 * time.Minute

// Lock keeps cron cycles from overlapping across worker replicas.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisLock is a SET NX lock. The stored token names this replica so an
// expired lock taken over by another worker is never deleted here.
type RedisLock struct {
	store lockStore
	key   string
	ttl   time.Duration
	token string
	held  bool
}

func NewRedisLock(store lockStore, key string, ttl time.Duration) (*RedisLock, error) {
	switch {
	case store == nil:
		return nil, errors.New("lock store is required")
	case key == "":
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{
		store: store,
		key:   key,
		ttl:   ttl,
		token: instance.GetID() + "/" + uuid.NewString(),
	}, nil
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.store.SetNX(ctx, l.key, l.token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", l.key, err)
	}
	l.held = ok
	return ok, nil
}

func (l *RedisLock) Release(ctx context.Context) error {
	if !l.held {
		return nil
	}
	l.held = false

	holder, err := l.store.Get(ctx, l.key)
	switch {
	case redis.IsMiss(err):
		return nil
	case err != nil:
		return fmt.Errorf("read lock holder: %w", err)
	case holder != l.token:
		return nil
	}
	return l.store.Del(ctx, l.key)
}
