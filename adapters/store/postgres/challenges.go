package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/layer-3/sigil/core"
)

func (s *Store) CreateChallenge(ctx context.Context, challenge *core.Challenge) error {
	query := `
		INSERT INTO auth_challenges (
			id, ethereum_address, nonce, challenge_message,
			expires_at, used, created_at, domain, issued_at
		)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.pool.Exec(ctx, query,
		challenge.ID.String(),
		challenge.Address,
		challenge.Nonce,
		challenge.Message,
		challenge.ExpiresAt,
		challenge.Used,
		challenge.CreatedAt,
		challenge.Domain,
		challenge.IssuedAt,
	)
	if err != nil {
		return fmt.Errorf("insert challenge: %w", err)
	}
	return nil
}

func (s *Store) FindActiveChallenge(ctx context.Context, address string, id uuid.UUID, now time.Time) (*core.Challenge, error) {
	query := `
		SELECT id::text, ethereum_address, nonce, challenge_message,
		       expires_at, used, created_at, domain, issued_at
		FROM auth_challenges
		WHERE ethereum_address = $1
		  AND id = $2::uuid
		  AND used = FALSE
		  AND expires_at > $3
	`
	var (
		challenge core.Challenge
		rawID     string
	)
	err := s.pool.QueryRow(ctx, query, address, id.String(), now).Scan(
		&rawID,
		&challenge.Address,
		&challenge.Nonce,
		&challenge.Message,
		&challenge.ExpiresAt,
		&challenge.Used,
		&challenge.CreatedAt,
		&challenge.Domain,
		&challenge.IssuedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active challenge: %w", err)
	}

	challenge.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse challenge id: %w", err)
	}
	return &challenge, nil
}

// ConsumeChallenge relies on the conditional WHERE used = FALSE so that
// two concurrent verifications of the same challenge cannot both see a
// row updated.
func (s *Store) ConsumeChallenge(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE auth_challenges
		SET used = TRUE
		WHERE id = $1::uuid AND used = FALSE
	`
	tag, err := s.pool.Exec(ctx, query, id.String())
	if err != nil {
		return false, fmt.Errorf("consume challenge: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) DeleteExpiredChallenges(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM auth_challenges WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired challenges: %w", err)
	}
	return tag.RowsAffected(), nil
}
