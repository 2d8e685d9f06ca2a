// Package delivery sends confirmation codes to an account's out-of-band address.
// The drivers only hand the code to a transport; the SMS or email itself is sent downstream.
package delivery

import (
	"context"
	"strings"
	"time"

	"github.com/chris/otp-transfers/pkg/models"
)

// CodeDelivery is a single confirmation code addressed to a sender.
type CodeDelivery struct {
	Channel   models.DeliveryChannel `json:"channel"`
	Address   string                 `json:"address"`
	Code      string                 `json:"code"`
	Amount    string                 `json:"amount"`
	Currency  string                 `json:"currency"`
	ExpiresAt time.Time              `json:"expires_at"`
	// Reference correlates the delivery with its pending transfer without exposing the token.
	Reference string `json:"reference"`
}

// CodeSender defines the interface for a component that delivers confirmation codes.
// A nil error means the transport accepted the delivery.
type CodeSender interface {
	SendCode(ctx context.Context, d *CodeDelivery) error
}

// MaskAddress hides most of an address so it can be echoed back to the client.
func MaskAddress(channel models.DeliveryChannel, address string) string {
	if channel == models.EMAIL {
		at := strings.LastIndex(address, "@")
		switch {
		case at > 1:
			return address[:1] + strings.Repeat("*", at-1) + address[at:]
		case at >= 0:
			return "***" + address[at:]
		}
	}
	if len(address) <= 4 {
		return strings.Repeat("*", len(address))
	}
	return strings.Repeat("*", len(address)-4) + address[len(address)-4:]
}
