// internal/app/system/ratelimit/ratelimit.go

// Package ratelimit enforces N attempts per identifier per rolling window,
// backed by a persisted attempt log so limits survive restarts and apply
// across instances.
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Defaults observed for login and signup throttling.
const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 900 * time.Second
)

// AttemptStore persists the attempt log. The Mongo implementation lives in
// store/attempts; tests substitute in-memory fakes.
type AttemptStore interface {
	// DeleteBefore removes attempts for identifier older than cutoff.
	// Best-effort cleanup; failures here don't affect correctness.
	DeleteBefore(ctx context.Context, identifier string, cutoff time.Time) error

	// CountSince returns the number of attempts for identifier at or after
	// cutoff.
	CountSince(ctx context.Context, identifier string, cutoff time.Time) (int64, error)

	// Record appends one attempt stamped at the given time.
	Record(ctx context.Context, identifier string, at time.Time) error

	// DeleteAll clears all attempts for identifier.
	DeleteAll(ctx context.Context, identifier string) error
}

// Config tunes a Limiter.
type Config struct {
	MaxAttempts int
	Window      time.Duration

	// FailClosed selects the policy when the attempt store is unreachable:
	// true denies the attempt, false (the default) admits it. Favoring
	// availability is the historical behavior; making it a config choice
	// keeps the trade-off visible instead of hard-coded.
	FailClosed bool
}

// Limiter checks and records attempts against a sliding window.
//
// The count-then-insert sequence is not atomic: concurrent requests for
// the same identifier can both observe a count below the threshold and
// both be admitted, overshooting MaxAttempts under contention. Accepted
// for login throttling; do not reuse this for hard quotas.
type Limiter struct {
	store AttemptStore
	cfg   Config
	now   func() time.Time
	log   *zap.Logger
}

// New constructs a Limiter. Zero config fields fall back to the defaults.
func New(store AttemptStore, cfg Config, logger *zap.Logger) *Limiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	return &Limiter{store: store, cfg: cfg, now: time.Now, log: logger}
}

// SetClock overrides the time source. Test helper only.
func (l *Limiter) SetClock(now func() time.Time) {
	l.now = now
}

// CheckAndRecord reports whether an attempt for identifier is admitted.
// On true the attempt has been recorded; on false nothing was written.
func (l *Limiter) CheckAndRecord(ctx context.Context, identifier string) bool {
	now := l.now()
	windowStart := now.Add(-l.cfg.Window)

	if err := l.store.DeleteBefore(ctx, identifier, windowStart); err != nil {
		// Cleanup only; the count below is already window-scoped.
		l.log.Warn("rate limit cleanup failed", zap.String("identifier", identifier), zap.Error(err))
	}

	count, err := l.store.CountSince(ctx, identifier, windowStart)
	if err != nil {
		l.log.Error("rate limit count failed",
			zap.String("identifier", identifier),
			zap.Bool("fail_closed", l.cfg.FailClosed),
			zap.Error(err))
		return !l.cfg.FailClosed
	}

	if count >= int64(l.cfg.MaxAttempts) {
		return false
	}

	if err := l.store.Record(ctx, identifier, now); err != nil {
		l.log.Error("rate limit record failed", zap.String("identifier", identifier), zap.Error(err))
		return !l.cfg.FailClosed
	}
	return true
}

// Reset clears the attempt log for an identifier.
// Useful after successful authentication to reward good behavior.
func (l *Limiter) Reset(ctx context.Context, identifier string) {
	if err := l.store.DeleteAll(ctx, identifier); err != nil {
		l.log.Warn("rate limit reset failed", zap.String("identifier", identifier), zap.Error(err))
	}
}

// EmailKey normalizes an email into a rate-limit identifier.
func EmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied
// requests), then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// XFF may contain a list; first is original client
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr (strip port)
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}
	return ip
}
