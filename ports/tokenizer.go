package ports

import (
	"time"

	"github.com/google/uuid"

	"github.com/layer-3/sigil/core"
)

// Tokenizer issues and validates signed access/refresh token pairs.
type Tokenizer interface {
	// IssuePair builds two claim sets sharing subject, address and admin
	// flag but with distinct types, token IDs and expiries, and signs
	// both.
	IssuePair(userID uuid.UUID, address string, isAdmin bool) (core.TokenPair, error)

	// Validate verifies signature and expiry first, then asserts the
	// token's type equals expected, failing core.ErrWrongTokenType
	// otherwise.
	Validate(token string, expected core.TokenType) (*core.TokenClaims, error)

	// Peek verifies the signature but skips expiry validation. Used on
	// logout so an already-expired refresh token can still be revoked.
	Peek(token string) (*core.TokenClaims, error)

	// AccessTTL is the access token lifetime, reported to callers as
	// expires_in.
	AccessTTL() time.Duration
}
