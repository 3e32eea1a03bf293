package postgres

import (
	"context"
	"fmt"

	"github.com/layer-3/sigil/core"
)

func (s *Store) Blacklist(ctx context.Context, entry *core.BlacklistEntry) error {
	query := `
		INSERT INTO token_blacklist (id, user_id, token_id, issued_at, expires_at, blacklisted_at, reason)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7)
		ON CONFLICT (token_id) DO NOTHING
	`
	_, err := s.pool.Exec(ctx, query,
		entry.ID.String(),
		entry.UserID.String(),
		entry.TokenID,
		entry.IssuedAt,
		entry.ExpiresAt,
		entry.BlacklistedAt,
		entry.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert blacklist entry: %w", err)
	}
	return nil
}

func (s *Store) IsBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE token_id = $1)`
	if err := s.pool.QueryRow(ctx, query, tokenID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return exists, nil
}
