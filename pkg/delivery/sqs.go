package delivery

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSAPI is the subset of the SQS client used by SQSSender.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSSender implements the CodeSender interface using AWS SQS.
// A notification worker consuming the queue turns each message into an SMS or email.
type SQSSender struct {
	Client   SQSAPI
	QueueURL string
}

// NewSQSSender creates a new SQSSender.
func NewSQSSender(client SQSAPI, queueURL string) *SQSSender {
	return &SQSSender{
		Client:   client,
		QueueURL: queueURL,
	}
}

// Make sure we conform to the interface
var _ CodeSender = (*SQSSender)(nil)

// SendCode enqueues the delivery on the notification queue.
func (s *SQSSender) SendCode(ctx context.Context, d *CodeDelivery) error {
	body, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal code delivery for SQS: %w", err)
	}

	_, err = s.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.QueueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"channel": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(d.Channel)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send code delivery to SQS: %w", err)
	}

	return nil
}
