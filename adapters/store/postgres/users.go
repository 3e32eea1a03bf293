package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/layer-3/sigil/core"
)

func (s *Store) GetUserByAddress(ctx context.Context, address string) (*core.User, error) {
	query := `
		SELECT id::text, ethereum_address, created_at, updated_at,
		       is_active, is_admin, is_verified, metadata
		FROM users
		WHERE ethereum_address = $1
	`
	var (
		user  core.User
		rawID string
	)
	err := s.pool.QueryRow(ctx, query, address).Scan(
		&rawID,
		&user.Address,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.IsActive,
		&user.IsAdmin,
		&user.IsVerified,
		&user.Metadata,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by address: %w", err)
	}

	user.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *core.User) error {
	query := `
		INSERT INTO users (
			id, ethereum_address, created_at, updated_at,
			is_active, is_admin, is_verified, metadata
		)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8)
	`
	metadata := user.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	_, err := s.pool.Exec(ctx, query,
		user.ID.String(),
		user.Address,
		user.CreatedAt,
		user.UpdatedAt,
		user.IsActive,
		user.IsAdmin,
		user.IsVerified,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}
