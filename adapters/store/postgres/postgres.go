// Package postgres persists challenges, users, rate limits, security
// events and the token blacklist in PostgreSQL via pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements the ports store interfaces over a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a store over an existing pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// NewPool connects a pgx pool and verifies the connection.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the auth tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS auth_challenges (
			id UUID PRIMARY KEY,
			ethereum_address TEXT NOT NULL,
			nonce TEXT NOT NULL,
			challenge_message TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			used BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			domain TEXT NOT NULL,
			issued_at TIMESTAMPTZ NOT NULL
		)
		`,
		`CREATE INDEX IF NOT EXISTS auth_challenges_address_idx ON auth_challenges(ethereum_address)`,
		`CREATE INDEX IF NOT EXISTS auth_challenges_expires_at_idx ON auth_challenges(expires_at)`,
		`
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			ethereum_address TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			metadata JSONB NOT NULL DEFAULT '{}'
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS rate_limits (
			id UUID PRIMARY KEY,
			identifier TEXT NOT NULL,
			action_type TEXT NOT NULL,
			attempt_count INT NOT NULL,
			window_start TIMESTAMPTZ NOT NULL,
			last_attempt TIMESTAMPTZ NOT NULL,
			UNIQUE (identifier, action_type)
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS token_blacklist (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			token_id TEXT NOT NULL UNIQUE,
			issued_at TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			blacklisted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			reason TEXT NOT NULL
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS security_events (
			id UUID PRIMARY KEY,
			user_id UUID,
			event_type TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			client_ip TEXT NOT NULL,
			user_agent TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}'
		)
		`,
		`CREATE INDEX IF NOT EXISTS security_events_user_id_idx ON security_events(user_id)`,
	}

	for _, query := range queries {
		if _, err := s.pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
