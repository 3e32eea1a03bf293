package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Challenge is a one-time, time-boxed message a wallet must sign to prove
// key ownership. A challenge that is used or expired never satisfies an
// active lookup again.
type Challenge struct {
	ID        uuid.UUID
	Address   string // normalized Ethereum address of the user
	Nonce     string // random hex nonce embedded in the message
	Message   string // full text presented to the wallet for signing
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
	Domain    string
	IssuedAt  time.Time // timestamp embedded in the message
}

// IsActive reports whether the challenge can still be consumed at now.
func (c *Challenge) IsActive(now time.Time) bool {
	return !c.Used && c.ExpiresAt.After(now)
}

// ChallengeMessage builds the canonical text a wallet signs. The timestamp
// is rendered in UTC so the message is reproducible across instances.
func ChallengeMessage(address, domain, nonce string, issuedAt time.Time) string {
	return fmt.Sprintf(
		"Sign this message to verify ownership of this address %s: %s. This is a one-time nonce: %s. Timestamp: %s",
		address, domain, nonce, issuedAt.UTC().Format("2006-01-02 15:04:05"),
	)
}
