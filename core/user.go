package core

import (
	"time"

	"github.com/google/uuid"
)

// User is a keypair-based account, created lazily on the first successful
// login for a previously-unseen address.
type User struct {
	ID         uuid.UUID
	Address    string // normalized Ethereum address, unique
	CreatedAt  time.Time
	UpdatedAt  time.Time
	IsActive   bool
	IsAdmin    bool
	IsVerified bool
	Metadata   map[string]any
}
