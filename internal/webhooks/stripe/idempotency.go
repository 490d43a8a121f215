package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/gocart-backend/pkg/redis"
)

var errNoEventID = errors.New("stripe event id is required")

// EventLedger remembers which Stripe events have been handled so redeliveries
// are acknowledged without running twice.
type EventLedger struct {
	store redis.IdempotencyStore
	scope string
	ttl   time.Duration
}

// NewEventLedger keeps claims for ttl, which should outlast Stripe's retry
// window. A zero ttl keeps them forever.
func NewEventLedger(store redis.IdempotencyStore, ttl time.Duration, scope string) (*EventLedger, error) {
	switch {
	case store == nil:
		return nil, errors.New("idempotency store is required")
	case ttl < 0:
		return nil, errors.New("ttl must not be negative")
	case strings.TrimSpace(scope) == "":
		return nil, errors.New("scope is required")
	}
	return &EventLedger{store: store, scope: scope, ttl: ttl}, nil
}

// Claim records eventID and reports whether this caller is the first to see
// it. A false result means the event was already handled or is in flight.
func (l *EventLedger) Claim(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errNoEventID
	}
	claimedAt := strconv.FormatInt(time.Now().Unix(), 10)
	fresh, err := l.store.SetNX(ctx, l.key(eventID), claimedAt, l.ttl)
	if err != nil {
		return false, fmt.Errorf("claim stripe event %s: %w", eventID, err)
	}
	return fresh, nil
}

// Forget drops a claim after a failed handler so Stripe's retry is processed.
func (l *EventLedger) Forget(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errNoEventID
	}
	return l.store.Del(ctx, l.key(eventID))
}

func (l *EventLedger) key(eventID string) string {
	return l.store.IdempotencyKey(l.scope, eventID)
}
