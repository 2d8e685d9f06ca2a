package events

import (
	"context"
	"fmt"

	"github.com/chris/otp-transfers/pkg/rabbitmq"
)

// RabbitMQPublisher publishes events to a topic exchange, using the event type as routing key.
type RabbitMQPublisher struct {
	publisher rabbitmq.Publisher
	exchange  string
}

// NewRabbitMQPublisher creates a new RabbitMQPublisher.
func NewRabbitMQPublisher(publisher rabbitmq.Publisher, exchange string) *RabbitMQPublisher {
	return &RabbitMQPublisher{publisher: publisher, exchange: exchange}
}

// Make sure we conform to the interface
var _ Publisher = (*RabbitMQPublisher)(nil)

func (p *RabbitMQPublisher) Publish(ctx context.Context, event Event) error {
	if err := p.publisher.Publish(ctx, p.exchange, string(event.Type), event); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}
