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

func (s *Store) GetEntry(ctx context.Context, identifier, action string) (*core.RateLimitEntry, error) {
	query := `
		SELECT id::text, identifier, action_type, attempt_count, window_start, last_attempt
		FROM rate_limits
		WHERE identifier = $1 AND action_type = $2
	`
	var (
		entry core.RateLimitEntry
		rawID string
	)
	err := s.pool.QueryRow(ctx, query, identifier, action).Scan(
		&rawID,
		&entry.Identifier,
		&entry.ActionType,
		&entry.AttemptCount,
		&entry.WindowStart,
		&entry.LastAttempt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rate limit entry: %w", err)
	}

	entry.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse rate limit id: %w", err)
	}
	return &entry, nil
}

func (s *Store) CreateEntry(ctx context.Context, entry *core.RateLimitEntry) error {
	query := `
		INSERT INTO rate_limits (id, identifier, action_type, attempt_count, window_start, last_attempt)
		VALUES ($1::uuid, $2, $3, $4, $5, $6)
		ON CONFLICT (identifier, action_type) DO UPDATE
		SET attempt_count = rate_limits.attempt_count + 1, last_attempt = EXCLUDED.last_attempt
	`
	_, err := s.pool.Exec(ctx, query,
		entry.ID.String(),
		entry.Identifier,
		entry.ActionType,
		entry.AttemptCount,
		entry.WindowStart,
		entry.LastAttempt,
	)
	if err != nil {
		return fmt.Errorf("insert rate limit entry: %w", err)
	}
	return nil
}

func (s *Store) ResetEntry(ctx context.Context, identifier, action string, now time.Time) error {
	query := `
		UPDATE rate_limits
		SET attempt_count = 1, window_start = $3, last_attempt = $3
		WHERE identifier = $1 AND action_type = $2
	`
	_, err := s.pool.Exec(ctx, query, identifier, action, now)
	if err != nil {
		return fmt.Errorf("reset rate limit entry: %w", err)
	}
	return nil
}

// IncrementEntry bumps the counter in one atomic update so concurrent
// callers can only overcount, never undercount.
func (s *Store) IncrementEntry(ctx context.Context, identifier, action string, now time.Time) error {
	query := `
		UPDATE rate_limits
		SET attempt_count = attempt_count + 1, last_attempt = $3
		WHERE identifier = $1 AND action_type = $2
	`
	_, err := s.pool.Exec(ctx, query, identifier, action, now)
	if err != nil {
		return fmt.Errorf("increment rate limit entry: %w", err)
	}
	return nil
}

func (s *Store) DeleteEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM rate_limits WHERE window_start < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale rate limit entries: %w", err)
	}
	return tag.RowsAffected(), nil
}
