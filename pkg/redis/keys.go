package redis

import "strings"

const rootNamespace = "gocart"

// Keyspace builds the namespaced keys every Redis consumer shares, so that
// session, cart, lock and limiter records never collide.
type Keyspace struct{}

func (Keyspace) IdempotencyKey(scope, id string) string {
	return join("idempotency", scope, id)
}

func (Keyspace) RateLimitKey(scope string) string {
	return join("rate_limit", scope)
}

// AccessSessionKey maps an access token id to its refresh token.
func (Keyspace) AccessSessionKey(accessID string) string {
	return join("session", "access", accessID)
}

func (Keyspace) CartKey(userID string) string {
	return join("cart", userID)
}

func (Keyspace) LockKey(name string) string {
	return join("lock", name)
}

func join(parts ...string) string {
	var b strings.Builder
	b.WriteString(rootNamespace)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}
