package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/layer-3/sigil/core"
	"github.com/layer-3/sigil/ports"
)

const (
	// ActionChallenge scopes rate limiting for challenge creation.
	ActionChallenge = "challenge"

	// ActionLogin scopes rate limiting for signature verification.
	ActionLogin = "login"

	// DefaultMaxAttempts allowed per scope inside one window.
	DefaultMaxAttempts = 3

	// DefaultWindowSeconds is the window length for both auth actions.
	DefaultWindowSeconds = 60

	// staleEntryAge is how long an entry may sit before the housekeeping
	// sweep removes it.
	staleEntryAge = 24 * time.Hour
)

// RateLimiter bounds attempts per (scope, action) pair inside a window
// that hard-resets once it elapses. State lives entirely in the store so
// the limiter is correct across process instances.
type RateLimiter struct {
	store ports.RateLimitStore
	log   *zap.SugaredLogger
	now   func() time.Time
}

// NewRateLimiter creates a limiter over the given store.
func NewRateLimiter(store ports.RateLimitStore, log *zap.SugaredLogger) *RateLimiter {
	return &RateLimiter{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// CheckAndRecord admits or rejects one attempt for scopeKey/action. The
// attempt is counted only when admitted; once the threshold is reached
// further attempts fail without inflating the count.
func (rl *RateLimiter) CheckAndRecord(ctx context.Context, scopeKey, action string, maxAttempts, windowSeconds int) error {
	now := rl.now()

	// Housekeeping sweep. Best effort: a failure here must not block the
	// request being gated.
	if _, err := rl.store.DeleteEntriesBefore(ctx, now.Add(-staleEntryAge)); err != nil {
		rl.log.Warnw("rate limit housekeeping failed", "error", err)
	}

	identifier := scopeKey + ":" + action

	entry, err := rl.store.GetEntry(ctx, identifier, action)
	if err != nil {
		return fmt.Errorf("get rate limit entry: %w", err)
	}

	if entry == nil {
		entry = &core.RateLimitEntry{
			ID:           uuid.New(),
			Identifier:   identifier,
			ActionType:   action,
			AttemptCount: 1,
			WindowStart:  now,
			LastAttempt:  now,
		}
		if err := rl.store.CreateEntry(ctx, entry); err != nil {
			return fmt.Errorf("create rate limit entry: %w", err)
		}
		return nil
	}

	if now.Sub(entry.WindowStart) > time.Duration(windowSeconds)*time.Second {
		if err := rl.store.ResetEntry(ctx, identifier, action, now); err != nil {
			return fmt.Errorf("reset rate limit entry: %w", err)
		}
		return nil
	}

	if entry.AttemptCount >= maxAttempts {
		return &core.RateLimitError{
			Identifier:    identifier,
			Attempts:      entry.AttemptCount,
			WindowSeconds: windowSeconds,
		}
	}

	if err := rl.store.IncrementEntry(ctx, identifier, action, now); err != nil {
		return fmt.Errorf("increment rate limit entry: %w", err)
	}
	return nil
}
