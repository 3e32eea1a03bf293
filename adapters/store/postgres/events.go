package postgres

import (
	"context"
	"fmt"

	"github.com/layer-3/sigil/core"
)

func (s *Store) RecordEvent(ctx context.Context, event *core.SecurityEvent) error {
	query := `
		INSERT INTO security_events (id, user_id, event_type, timestamp, client_ip, user_agent, metadata)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7)
	`
	var userID *string
	if event.UserID != nil {
		v := event.UserID.String()
		userID = &v
	}
	metadata := event.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	_, err := s.pool.Exec(ctx, query,
		event.ID.String(),
		userID,
		string(event.Type),
		event.Timestamp,
		event.ClientIP,
		event.UserAgent,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("insert security event: %w", err)
	}
	return nil
}
