// Package session keeps refresh-token sessions in Redis, keyed by the access
// token id (the JWT jti).
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/gocart-backend/pkg/config"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

var errMissingAccessID = errors.New("access id is required")

// Backend is the Redis surface the manager needs; *redis.Client satisfies it.
type Backend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// AccessSessionChecker is the read-only view used by the auth middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// Manager issues, rotates and revokes refresh sessions. Only a digest of the
// refresh token is stored.
type Manager struct {
	backend Backend
	ttl     time.Duration
}

func NewManager(backend Backend, cfg config.JWTConfig) (*Manager, error) {
	if backend == nil {
		return nil, errors.New("session backend is required")
	}
	refreshTTL := cfg.RefreshTokenTTL()
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	switch {
	case refreshTTL <= 0:
		return nil, errors.New("refresh token ttl must be positive")
	case refreshTTL <= accessTTL:
		return nil, fmt.Errorf("refresh token ttl %s must be longer than access token ttl %s", refreshTTL, accessTTL)
	}
	return &Manager{backend: backend, ttl: refreshTTL}, nil
}

// NewAccessID returns a fresh jti.
func NewAccessID() string {
	return uuid.NewString()
}

// Issue opens a session and returns its access id and the refresh token to
// hand to the client.
func (m *Manager) Issue(ctx context.Context) (accessID, refreshToken string, err error) {
	accessID = NewAccessID()
	refreshToken, err = m.open(ctx, accessID)
	if err != nil {
		return "", "", err
	}
	return accessID, refreshToken, nil
}

// Rotate exchanges a refresh token for a new session. The old session is
// consumed before the new one is written, so a token can be used once.
func (m *Manager) Rotate(ctx context.Context, accessID, refreshToken string) (string, string, error) {
	accessID = strings.TrimSpace(accessID)
	if accessID == "" || strings.TrimSpace(refreshToken) == "" {
		return "", "", ErrInvalidRefreshToken
	}

	key := m.backend.AccessSessionKey(accessID)
	stored, err := m.backend.Get(ctx, key)
	if errors.Is(err, goredis.Nil) {
		return "", "", ErrInvalidRefreshToken
	}
	if err != nil {
		return "", "", fmt.Errorf("load session: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(digest(refreshToken))) != 1 {
		return "", "", ErrInvalidRefreshToken
	}
	if err := m.backend.Del(ctx, key); err != nil {
		return "", "", fmt.Errorf("consume session: %w", err)
	}
	return m.Issue(ctx)
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return errMissingAccessID
	}
	return m.backend.Del(ctx, m.backend.AccessSessionKey(accessID))
}

// HasSession reports whether accessID still maps to a live refresh session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, errMissingAccessID
	}
	_, err := m.backend.Get(ctx, m.backend.AccessSessionKey(accessID))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, goredis.Nil):
		return false, nil
	default:
		return false, err
	}
}

func (m *Manager) open(ctx context.Context, accessID string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	if err := m.backend.Set(ctx, m.backend.AccessSessionKey(accessID), digest(token), m.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
