package delivery

import (
	"context"
	"log/slog"
)

// LogSender writes codes to the log. It is meant for local development only.
type LogSender struct {
	Logger *slog.Logger
}

// Make sure we conform to the interface
var _ CodeSender = (*LogSender)(nil)

func (s *LogSender) SendCode(ctx context.Context, d *CodeDelivery) error {
	s.Logger.InfoContext(ctx, "confirmation code",
		slog.String("channel", string(d.Channel)),
		slog.String("address", MaskAddress(d.Channel, d.Address)),
		slog.String("code", d.Code),
		slog.String("reference", d.Reference),
	)
	return nil
}
