package ports

import "context"

// EventPublisher notifies other instances about session lifecycle events.
type EventPublisher interface {
	PublishLogin(ctx context.Context, address, userID string) error
	PublishLogout(ctx context.Context, address, tokenID string) error
}
