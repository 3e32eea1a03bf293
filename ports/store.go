package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/layer-3/sigil/core"
)

// ChallengeStore persists one-time authentication challenges.
type ChallengeStore interface {
	// CreateChallenge persists a new challenge record.
	CreateChallenge(ctx context.Context, challenge *core.Challenge) error

	// FindActiveChallenge returns the challenge only when it belongs to
	// address, is unused and has not expired at now. A nil challenge with
	// a nil error means no login is in progress.
	FindActiveChallenge(ctx context.Context, address string, id uuid.UUID, now time.Time) (*core.Challenge, error)

	// ConsumeChallenge transitions used from false to true as a single
	// conditional mutation. It reports false when the challenge was
	// already consumed or does not exist, so concurrent verifications of
	// the same signature cannot both succeed.
	ConsumeChallenge(ctx context.Context, id uuid.UUID) (bool, error)

	// DeleteExpiredChallenges removes every challenge whose expiry has
	// passed and returns the number of rows removed.
	DeleteExpiredChallenges(ctx context.Context, now time.Time) (int64, error)
}

// UserStore persists keypair-based accounts.
type UserStore interface {
	// GetUserByAddress looks a user up by normalized address. A nil user
	// with a nil error means the address has never logged in.
	GetUserByAddress(ctx context.Context, address string) (*core.User, error)

	CreateUser(ctx context.Context, user *core.User) error
}

// RateLimitStore persists per-(scope, action) attempt counters.
type RateLimitStore interface {
	// GetEntry returns nil, nil when no entry exists for the pair.
	GetEntry(ctx context.Context, identifier, action string) (*core.RateLimitEntry, error)

	CreateEntry(ctx context.Context, entry *core.RateLimitEntry) error

	// ResetEntry restarts the window: count back to one, fresh timestamps.
	ResetEntry(ctx context.Context, identifier, action string, now time.Time) error

	// IncrementEntry bumps the attempt count and the last-attempt time in
	// a single storage-level update.
	IncrementEntry(ctx context.Context, identifier, action string, now time.Time) error

	// DeleteEntriesBefore removes entries whose window started before
	// cutoff. Housekeeping, not correctness-critical.
	DeleteEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// EventStore appends security events to the audit log.
type EventStore interface {
	RecordEvent(ctx context.Context, event *core.SecurityEvent) error
}

// RevocationStore is the durable token blacklist. A blacklisted token ID
// is invalid regardless of the token's embedded expiry.
type RevocationStore interface {
	Blacklist(ctx context.Context, entry *core.BlacklistEntry) error
	IsBlacklisted(ctx context.Context, tokenID string) (bool, error)
}
