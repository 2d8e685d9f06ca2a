package delivery

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

// Dispatcher drains the SQS delivery queue into the notification backend.
type Dispatcher struct {
	Next   CodeSender
	Logger *slog.Logger
	Now    func() time.Time
}

// NewDispatcher creates a Dispatcher forwarding to next.
func NewDispatcher(next CodeSender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		Next:   next,
		Logger: logger,
		Now:    time.Now,
	}
}

// HandleSQSEvent forwards every delivery in the batch. Only messages whose
// forwarding failed are reported back, so SQS retries just those.
func (d *Dispatcher) HandleSQSEvent(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse

	for _, message := range sqsEvent.Records {
		var cd CodeDelivery
		if err := json.Unmarshal([]byte(message.Body), &cd); err != nil {
			// Redelivery cannot fix a malformed body.
			d.Logger.ErrorContext(ctx, "dropping malformed code delivery", "message_id", message.MessageId, "error", err)
			continue
		}

		if !cd.ExpiresAt.IsZero() && !d.Now().Before(cd.ExpiresAt) {
			d.Logger.InfoContext(ctx, "dropping code delivery for expired transfer", "message_id", message.MessageId, "reference", cd.Reference)
			continue
		}

		if err := d.Next.SendCode(ctx, &cd); err != nil {
			d.Logger.ErrorContext(ctx, "failed to forward code delivery", "message_id", message.MessageId, "reference", cd.Reference, "error", err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: message.MessageId})
			continue
		}

		d.Logger.InfoContext(ctx, "forwarded code delivery", "message_id", message.MessageId, "reference", cd.Reference, "channel", string(cd.Channel))
	}

	return resp, nil
}
