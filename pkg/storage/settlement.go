package storage

import (
	"context"

	"github.com/chris/otp-transfers/pkg/models"
)

// SettlementStore defines the privileged interface for settling a transfer.
// Settlement debits the sender, credits the recipient and appends the ledger entry
// in one atomic write. It should only be exposed to the transfer confirmer.
type SettlementStore interface {
	// SettleTransfer commits the settlement or changes nothing.
	// It returns ErrInsufficientFunds if the sender's balance no longer covers the amount,
	// ErrAccountNotFound if either party is missing, ErrDuplicateTransaction if the ledger
	// entry already exists and ErrClaimLost if the pending record is no longer held.
	SettleTransfer(ctx context.Context, settlement *models.Settlement) error
}
