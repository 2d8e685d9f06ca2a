// Package events publishes domain events about settled transfers.
package events

import (
	"context"
	"time"
)

// EventType defines the type of a published event.
type EventType string

const (
	// TransferCompleted is published after a transfer settles.
	TransferCompleted EventType = "transfer.completed"
)

// Event represents a generic domain event.
type Event struct {
	Type       EventType   `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// TransferCompletedPayload is the payload of a transfer.completed event.
type TransferCompletedPayload struct {
	TransactionID string `json:"transaction_id"`
	SenderID      string `json:"sender_id"`
	RecipientID   string `json:"recipient_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

// Publisher defines the interface for publishing events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoOpPublisher is a publisher that does nothing. It is used when no broker is configured.
type NoOpPublisher struct{}

// Publish does nothing.
func (p *NoOpPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}
