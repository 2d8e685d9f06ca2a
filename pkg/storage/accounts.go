package storage

import (
	"context"

	"github.com/chris/otp-transfers/pkg/models"
)

// AccountReader defines the interface for loading accounts.
// Every method returns ErrAccountNotFound when no account matches.
type AccountReader interface {
	// GetAccount retrieves an account by its ID.
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)

	// FindAccountByPhone resolves a normalised E.164 phone number to an account.
	FindAccountByPhone(ctx context.Context, phone string) (*models.Account, error)

	// FindAccountByEmail resolves a lower-cased email address to an account.
	FindAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

// AccountWriter creates accounts. Accounts are provisioned outside the transfer
// flow; this exists for seeding and local development.
type AccountWriter interface {
	// CreateAccount stores a new account, failing with ErrAlreadyExists if the ID is taken.
	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)
}
