package storage

import (
	"context"

	"github.com/chris/otp-transfers/pkg/models"
)

// LedgerReader defines the interface for reading ledger data.
type LedgerReader interface {
	// GetTransaction retrieves a ledger entry by its transaction ID. It returns ErrNotFound if absent.
	GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error)

	// ListTransactionsByAccount retrieves the most recent entries where the account is sender or recipient.
	ListTransactionsByAccount(ctx context.Context, accountID string, limit int32) ([]models.Transaction, error)
}
