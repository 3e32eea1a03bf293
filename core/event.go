package core

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the security-relevant events recorded in the audit
// log.
type EventType string

const (
	EventLogin              EventType = "login"
	EventFailedLogin        EventType = "failed_login"
	EventChallengeCreated   EventType = "challenge_created"
	EventChallengeUsed      EventType = "challenge_used"
	EventWalletConnected    EventType = "wallet_connected"
	EventWalletDisconnected EventType = "wallet_disconnected"
	EventAccountLocked      EventType = "account_locked"
	EventAccountUnlocked    EventType = "account_unlocked"
)

// SecurityEvent is an append-only audit record. UserID is nil for
// pre-authentication events such as challenge creation.
type SecurityEvent struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	Type      EventType
	Timestamp time.Time
	ClientIP  string
	UserAgent string
	Metadata  map[string]any
}
