package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/layer-3/sigil/core"
	"github.com/layer-3/sigil/internal/eth"
	"github.com/layer-3/sigil/ports"
)

const nonceBytes = 16

// Stores bundles the persistence handles the service depends on. One
// struct usually implements all of them (postgres.Store, memory.Store).
type Stores struct {
	Challenges  ports.ChallengeStore
	Users       ports.UserStore
	Events      ports.EventStore
	Revocations ports.RevocationStore
}

// ClientInfo is the already-parsed client context handed in by the HTTP
// layer.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// LoginInput is a signature submission against a previously issued
// challenge.
type LoginInput struct {
	ChallengeID uuid.UUID
	Address     string
	Signature   string
	Client      ClientInfo
}

// LoginResult is the outcome of a successful authentication: a full token
// pair or nothing.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // access token lifetime in seconds
	User         *core.User
}

// AuthService orchestrates challenge issuance, signature verification and
// token lifecycle.
type AuthService struct {
	stores    Stores
	tokenizer ports.Tokenizer
	limiter   *RateLimiter
	eventPub  ports.EventPublisher
	log       *zap.SugaredLogger

	domain        string
	challengeTTL  time.Duration
	maxAttempts   int
	windowSeconds int
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	stores Stores,
	tokenizer ports.Tokenizer,
	limiter *RateLimiter,
	eventPub ports.EventPublisher,
	domain string,
	log *zap.SugaredLogger,
) *AuthService {
	return &AuthService{
		stores:        stores,
		tokenizer:     tokenizer,
		limiter:       limiter,
		eventPub:      eventPub,
		log:           log,
		domain:        domain,
		challengeTTL:  5 * time.Minute,
		maxAttempts:   DefaultMaxAttempts,
		windowSeconds: DefaultWindowSeconds,
	}
}

// CreateChallenge generates and persists a new one-time challenge for the
// address and returns it so the message can be displayed for signing.
func (s *AuthService) CreateChallenge(ctx context.Context, address string, client ClientInfo) (*core.Challenge, error) {
	normalized, err := core.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.CheckAndRecord(ctx, client.IP, ActionChallenge, s.maxAttempts, s.windowSeconds); err != nil {
		return nil, err
	}

	s.spawnCleanup()

	nonce := make([]byte, nonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := time.Now().UTC()
	challenge := &core.Challenge{
		ID:        uuid.New(),
		Address:   normalized,
		Nonce:     hex.EncodeToString(nonce),
		ExpiresAt: now.Add(s.challengeTTL),
		CreatedAt: now,
		Domain:    s.domain,
		IssuedAt:  now,
	}
	challenge.Message = core.ChallengeMessage(normalized, s.domain, challenge.Nonce, now)

	if err := s.stores.Challenges.CreateChallenge(ctx, challenge); err != nil {
		return nil, fmt.Errorf("persist challenge: %w", err)
	}

	s.recordEvent(ctx, core.EventChallengeCreated, nil, client, map[string]any{
		"ethereum_address": normalized,
		"challenge_id":     challenge.ID.String(),
	})

	return challenge, nil
}

// Login verifies a signature against an active challenge and, on success,
// consumes the challenge and issues a token pair. The challenge stays
// unconsumed on a rejected signature so the caller may retry until it
// expires or is rate-limited.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	normalized, err := core.NormalizeAddress(input.Address)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.CheckAndRecord(ctx, input.Client.IP, ActionLogin, s.maxAttempts, s.windowSeconds); err != nil {
		return nil, err
	}

	s.spawnCleanup()

	challenge, err := s.stores.Challenges.FindActiveChallenge(ctx, normalized, input.ChallengeID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("find active challenge: %w", err)
	}
	if challenge == nil {
		return nil, core.ErrNoActiveChallenge
	}

	ok, err := eth.VerifySignature(input.Signature, challenge.Message, normalized)
	if err != nil || !ok {
		s.recordEvent(ctx, core.EventFailedLogin, nil, input.Client, map[string]any{
			"ethereum_address": normalized,
			"challenge_id":     challenge.ID.String(),
		})
		if err != nil {
			return nil, err
		}
		return nil, core.ErrInvalidSignature
	}

	consumed, err := s.stores.Challenges.ConsumeChallenge(ctx, challenge.ID)
	if err != nil {
		return nil, fmt.Errorf("consume challenge: %w", err)
	}
	if !consumed {
		// Lost the race against a concurrent submission of the same
		// signature.
		return nil, core.ErrNoActiveChallenge
	}

	s.recordEvent(ctx, core.EventChallengeUsed, nil, input.Client, map[string]any{
		"ethereum_address": normalized,
		"challenge_id":     challenge.ID.String(),
	})

	user, err := s.findOrCreateUser(ctx, normalized)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokenizer.IssuePair(user.ID, user.Address, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue token pair: %w", err)
	}

	s.recordEvent(ctx, core.EventLogin, &user.ID, input.Client, map[string]any{
		"ethereum_address": normalized,
		"user_id":          user.ID.String(),
	})

	if err := s.eventPub.PublishLogin(ctx, user.Address, user.ID.String()); err != nil {
		s.log.Warnw("failed to publish login event", "error", err)
	}

	return &LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(s.tokenizer.AccessTTL() / time.Second),
		User:         user,
	}, nil
}

// Refresh rotates a refresh token: the old token's ID is blacklisted and
// a fresh pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.tokenizer.Validate(refreshToken, core.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	revoked, err := s.stores.Revocations.IsBlacklisted(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return nil, core.ErrTokenRevoked
	}

	if err := s.blacklistClaims(ctx, claims, "rotated"); err != nil {
		return nil, err
	}

	user, err := s.stores.Users.GetUserByAddress(ctx, claims.Address)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, core.ErrInvalidToken
	}

	pair, err := s.tokenizer.IssuePair(user.ID, user.Address, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue token pair: %w", err)
	}

	return &LoginResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(s.tokenizer.AccessTTL() / time.Second),
		User:         user,
	}, nil
}

// Logout revokes a refresh token. Expired tokens are still blacklisted so
// they cannot be replayed against skewed clocks.
func (s *AuthService) Logout(ctx context.Context, refreshToken string, client ClientInfo) error {
	claims, err := s.tokenizer.Peek(refreshToken)
	if err != nil {
		return err
	}
	if claims.Type != core.TokenTypeRefresh {
		return core.ErrWrongTokenType
	}

	if err := s.blacklistClaims(ctx, claims, "logout"); err != nil {
		return err
	}

	s.recordEvent(ctx, core.EventWalletDisconnected, &claims.UserID, client, map[string]any{
		"ethereum_address": claims.Address,
	})

	if err := s.eventPub.PublishLogout(ctx, claims.Address, claims.TokenID); err != nil {
		// The token is already blacklisted, which is the part that
		// matters.
		s.log.Warnw("failed to publish logout event", "error", err)
	}

	return nil
}

// ValidateAccessToken checks an access token's signature, expiry, type
// and revocation status.
func (s *AuthService) ValidateAccessToken(ctx context.Context, accessToken string) (*core.TokenClaims, error) {
	claims, err := s.tokenizer.Validate(accessToken, core.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	revoked, err := s.stores.Revocations.IsBlacklisted(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return nil, core.ErrTokenRevoked
	}

	return claims, nil
}

func (s *AuthService) findOrCreateUser(ctx context.Context, address string) (*core.User, error) {
	user, err := s.stores.Users.GetUserByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	now := time.Now().UTC()
	user = &core.User{
		ID:        uuid.New(),
		Address:   address,
		CreatedAt: now,
		UpdatedAt: now,
		IsActive:  true,
		Metadata:  map[string]any{},
	}
	if err := s.stores.Users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *AuthService) blacklistClaims(ctx context.Context, claims *core.TokenClaims, reason string) error {
	now := time.Now().UTC()
	expiresAt := claims.ExpiresAt
	if expiresAt.Before(now) {
		expiresAt = now.Add(time.Hour)
	}

	err := s.stores.Revocations.Blacklist(ctx, &core.BlacklistEntry{
		ID:            uuid.New(),
		UserID:        claims.UserID,
		TokenID:       claims.TokenID,
		IssuedAt:      claims.IssuedAt,
		ExpiresAt:     expiresAt,
		BlacklistedAt: now,
		Reason:        reason,
	})
	if err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

// recordEvent appends to the audit log inline and best-effort: a storage
// failure is logged, never propagated.
func (s *AuthService) recordEvent(ctx context.Context, eventType core.EventType, userID *uuid.UUID, client ClientInfo, metadata map[string]any) {
	event := &core.SecurityEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		ClientIP:  client.IP,
		UserAgent: client.UserAgent,
		Metadata:  metadata,
	}
	if err := s.stores.Events.RecordEvent(ctx, event); err != nil {
		s.log.Warnw("failed to record security event", "type", eventType, "error", err)
	}
}

// spawnCleanup deletes expired challenges in a detached goroutine. The
// triggering request never waits on it and its failure is swallowed.
func (s *AuthService) spawnCleanup() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		count, err := s.stores.Challenges.DeleteExpiredChallenges(ctx, time.Now().UTC())
		switch {
		case err != nil:
			s.log.Warnw("challenge cleanup failed", "error", err)
		case count > 0:
			s.log.Debugw("removed expired challenges", "count", count)
		}
	}()
}
