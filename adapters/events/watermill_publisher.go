package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/layer-3/sigil/ports"
)

// LoginEvent notifies other instances about a successful login.
type LoginEvent struct {
	Address string `json:"address"`
	UserID  string `json:"user_id"`
}

// LogoutEvent notifies other instances about a revoked refresh token.
type LogoutEvent struct {
	Address string `json:"address"`
	TokenID string `json:"token_id"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher   message.Publisher
	loginTopic  string
	logoutTopic string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher:   publisher,
		loginTopic:  "sigil.login",
		logoutTopic: "sigil.logout",
	}
}

// PublishLogin publishes a login event
func (p *WatermillPublisher) PublishLogin(ctx context.Context, address, userID string) error {
	payload, err := json.Marshal(LoginEvent{Address: address, UserID: userID})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.publisher.Publish(p.loginTopic, message.NewMessage(userID, payload)); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// PublishLogout publishes a logout event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, address, tokenID string) error {
	payload, err := json.Marshal(LogoutEvent{Address: address, TokenID: tokenID})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.publisher.Publish(p.logoutTopic, message.NewMessage(tokenID, payload)); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
