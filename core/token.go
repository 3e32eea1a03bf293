package core

import (
	"time"

	"github.com/google/uuid"
)

// TokenType distinguishes the short-lived access token from the
// long-lived refresh token. A token validated against the wrong expected
// type is rejected even when cryptographically well-formed.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// TokenClaims is the decoded payload of an issued token.
type TokenClaims struct {
	UserID    uuid.UUID
	Address   string
	IsAdmin   bool
	TokenID   string // unique per token, used for revocation
	Type      TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenPair is the result of a successful authentication.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// BlacklistEntry makes the token carrying TokenID permanently invalid,
// regardless of its embedded expiry.
type BlacklistEntry struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	TokenID       string
	IssuedAt      time.Time
	ExpiresAt     time.Time
	BlacklistedAt time.Time
	Reason        string
}
