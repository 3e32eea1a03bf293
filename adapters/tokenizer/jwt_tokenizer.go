package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/layer-3/sigil/core"
	"github.com/layer-3/sigil/ports"
)

const (
	// DefaultAccessTTL is the default access token lifetime.
	DefaultAccessTTL = 15 * time.Minute

	// DefaultRefreshTTL is the default refresh token lifetime.
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// JWTTokenizer implements the Tokenizer interface with HS256 over a
// shared secret.
type JWTTokenizer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTTokenizer creates a tokenizer with the default lifetimes.
func NewJWTTokenizer(secret []byte) ports.Tokenizer {
	return &JWTTokenizer{
		secret:     secret,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
	}
}

// IssuePair signs an access/refresh pair for the user. Each token gets
// its own JTI so they can be revoked independently.
func (j *JWTTokenizer) IssuePair(userID uuid.UUID, address string, isAdmin bool) (core.TokenPair, error) {
	now := time.Now()

	access, err := j.sign(userID, address, isAdmin, core.TokenTypeAccess, now, now.Add(j.accessTTL))
	if err != nil {
		return core.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := j.sign(userID, address, isAdmin, core.TokenTypeRefresh, now, now.Add(j.refreshTTL))
	if err != nil {
		return core.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return core.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (j *JWTTokenizer) sign(userID uuid.UUID, address string, isAdmin bool, tokenType core.TokenType, issuedAt, expiresAt time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenType: string(tokenType),
		Address:   address,
		IsAdmin:   isAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(j.secret)
}

// Validate verifies signature and expiry, then asserts the token type.
// The type check runs after the cryptographic checks so a well-formed but
// wrong-type token fails core.ErrWrongTokenType, not ErrInvalidToken.
func (j *JWTTokenizer) Validate(tokenStr string, expected core.TokenType) (*core.TokenClaims, error) {
	claims, err := j.parse(tokenStr)
	if err != nil {
		return nil, err
	}

	if claims.Type != expected {
		return nil, fmt.Errorf("expected %s token, got %s: %w", expected, claims.Type, core.ErrWrongTokenType)
	}

	return claims, nil
}

// Peek verifies the signature but not the registered-claim validity, so
// callers can revoke tokens that have already expired.
func (j *JWTTokenizer) Peek(tokenStr string) (*core.TokenClaims, error) {
	return j.parse(tokenStr, jwt.WithoutClaimsValidation())
}

// AccessTTL returns the configured access token lifetime.
func (j *JWTTokenizer) AccessTTL() time.Duration { return j.accessTTL }

func (j *JWTTokenizer) parse(tokenStr string, extra ...jwt.ParserOption) (*core.TokenClaims, error) {
	opts := append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}, extra...)

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, fmt.Errorf("parse token: %w", core.ErrInvalidToken)
	}

	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, core.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", core.ErrInvalidToken)
	}

	out := &core.TokenClaims{
		UserID:  userID,
		Address: claims.Address,
		IsAdmin: claims.IsAdmin,
		TokenID: claims.ID,
		Type:    core.TokenType(claims.TokenType),
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}

	return out, nil
}
