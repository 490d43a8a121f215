package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/gocart-backend/api/responses"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
)

const (
	LoginLimitMessage    = "Too many authentication attempts, please try again later."
	RegisterLimitMessage = "Too many accounts created from this IP, please try again later."
)

type windowCounter interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	Decr(context.Context, string) (int64, error)
	RateLimitKey(scope string) string
}

// WindowPolicy describes a fixed-window, per-IP counter kept in Redis.
type WindowPolicy struct {
	Name    string
	Window  time.Duration
	Limit   int
	Message string
	// SkipSuccessful refunds the attempt when the handler answers below 400.
	SkipSuccessful bool
}

func (p WindowPolicy) enabled() bool {
	return p.Window > 0 && p.Limit > 0
}

func (p WindowPolicy) scope(ip string) string {
	name := strings.ToLower(strings.TrimSpace(p.Name))
	if name == "" {
		name = "auth"
	}
	return name + ":" + ip
}

// WindowRateLimit enforces policy against the caller IP.
func WindowRateLimit(policy WindowPolicy, store windowCounter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := clientIP(r)
			key := store.RateLimitKey(policy.scope(ip))

			count, err := store.IncrWithTTL(ctx, key, policy.Window)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}

			remaining := int64(policy.Limit) - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("RateLimit-Limit", strconv.Itoa(policy.Limit))
			w.Header().Set("RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(policy.Limit) {
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"policy":         policy.Name,
						"ip":             ip,
						"attempts":       count,
						"limit":          policy.Limit,
						"window_seconds": int(policy.Window.Seconds()),
					}), "rate_limit.blocked")
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(policy.Window.Seconds())))
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, policy.Message))
				return
			}

			if !policy.SkipSuccessful {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.statusCode() < http.StatusBadRequest {
				if _, err := store.Decr(ctx, key); err != nil && logg != nil {
					logg.Error(ctx, "rate_limit.refund_failed", err)
				}
			}
		})
	}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
