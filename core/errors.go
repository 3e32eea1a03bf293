package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAddress    = errors.New("invalid ethereum address")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrNoActiveChallenge = errors.New("no active challenge")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrTokenExpired      = errors.New("token has expired")
	ErrTokenRevoked      = errors.New("token has been revoked")
	ErrWrongTokenType    = errors.New("wrong token type")
	ErrInvalidToken      = errors.New("invalid token")
)

// RateLimitError carries enough context for a caller to report the
// offending scope and compute a retry-after. It unwraps to ErrRateLimited
// so callers can match it with errors.Is.
type RateLimitError struct {
	Identifier    string
	Attempts      int
	WindowSeconds int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: %d attempts in the last %d seconds",
		e.Identifier, e.Attempts, e.WindowSeconds)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }
