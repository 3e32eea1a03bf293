package core

import (
	"time"

	"github.com/google/uuid"
)

// RateLimitEntry tracks attempt counts for one (scope, action) pair inside
// a rolling window. AttemptCount reflects all attempts since WindowStart;
// once the window elapses the entry is reset to a count of one rather than
// accumulating unbounded.
type RateLimitEntry struct {
	ID           uuid.UUID
	Identifier   string // scope key, "<client-ip>:<action>"
	ActionType   string
	AttemptCount int
	WindowStart  time.Time
	LastAttempt  time.Time
}
