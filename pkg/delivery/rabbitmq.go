package delivery

import (
	"context"
	"fmt"
	"strings"

	"github.com/chris/otp-transfers/pkg/rabbitmq"
)

// RabbitMQSender implements the CodeSender interface by publishing to a topic exchange.
// Messages are routed as "otp.<channel>", e.g. "otp.sms".
type RabbitMQSender struct {
	Publisher rabbitmq.Publisher
	Exchange  string
}

// NewRabbitMQSender creates a new RabbitMQSender.
func NewRabbitMQSender(publisher rabbitmq.Publisher, exchange string) *RabbitMQSender {
	return &RabbitMQSender{Publisher: publisher, Exchange: exchange}
}

// Make sure we conform to the interface
var _ CodeSender = (*RabbitMQSender)(nil)

// SendCode publishes the delivery.
func (s *RabbitMQSender) SendCode(ctx context.Context, d *CodeDelivery) error {
	routingKey := "otp." + strings.ToLower(string(d.Channel))
	if err := s.Publisher.Publish(ctx, s.Exchange, routingKey, d); err != nil {
		return fmt.Errorf("failed to publish code delivery: %w", err)
	}
	return nil
}
