package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/sigil/core"
)

func newChallenge(address string, ttl time.Duration) *core.Challenge {
	now := time.Now()
	return &core.Challenge{
		ID:        uuid.New(),
		Address:   address,
		Nonce:     "deadbeef",
		Message:   "msg",
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		IssuedAt:  now,
		Domain:    "example.com",
	}
}

func TestChallengeLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	challenge := newChallenge("0xab5801a7d398351b8be11c439e05c5b3259aec9b", 5*time.Minute)

	require.NoError(t, store.CreateChallenge(ctx, challenge))

	found, err := store.FindActiveChallenge(ctx, challenge.Address, challenge.ID, time.Now())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, challenge.Message, found.Message)

	// Wrong address does not match.
	found, err = store.FindActiveChallenge(ctx, "0x0000000000000000000000000000000000000000", challenge.ID, time.Now())
	require.NoError(t, err)
	assert.Nil(t, found)

	// Consume succeeds exactly once.
	ok, err := store.ConsumeChallenge(ctx, challenge.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.ConsumeChallenge(ctx, challenge.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// A consumed challenge never satisfies an active lookup again.
	found, err = store.FindActiveChallenge(ctx, challenge.Address, challenge.ID, time.Now())
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFindActiveChallengeExcludesExpired(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	challenge := newChallenge("0xab5801a7d398351b8be11c439e05c5b3259aec9b", -time.Minute)

	require.NoError(t, store.CreateChallenge(ctx, challenge))

	found, err := store.FindActiveChallenge(ctx, challenge.Address, challenge.ID, time.Now())
	require.NoError(t, err)
	assert.Nil(t, found)

	removed, err := store.DeleteExpiredChallenges(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestRateLimitEntries(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	now := time.Now()

	entry := &core.RateLimitEntry{
		ID:           uuid.New(),
		Identifier:   "10.0.0.1:login",
		ActionType:   "login",
		AttemptCount: 1,
		WindowStart:  now,
		LastAttempt:  now,
	}
	require.NoError(t, store.CreateEntry(ctx, entry))

	require.NoError(t, store.IncrementEntry(ctx, entry.Identifier, entry.ActionType, now.Add(time.Second)))

	got, err := store.GetEntry(ctx, entry.Identifier, entry.ActionType)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.AttemptCount)

	require.NoError(t, store.ResetEntry(ctx, entry.Identifier, entry.ActionType, now.Add(time.Minute)))
	got, err = store.GetEntry(ctx, entry.Identifier, entry.ActionType)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AttemptCount)

	removed, err := store.DeleteEntriesBefore(ctx, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestBlacklist(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	revoked, err := store.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Blacklist(ctx, &core.BlacklistEntry{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		TokenID:       "jti-1",
		IssuedAt:      time.Now(),
		ExpiresAt:     time.Now().Add(time.Hour),
		BlacklistedAt: time.Now(),
		Reason:        "logout",
	}))

	revoked, err = store.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}
