package storage

import (
	"context"
	"time"

	"github.com/chris/otp-transfers/pkg/models"
)

// PendingTransferStore holds pending transfers between initiation and confirmation.
type PendingTransferStore interface {
	// PutPendingTransfer stores a new record. It returns ErrAlreadyExists if the token is taken.
	PutPendingTransfer(ctx context.Context, pt *models.PendingTransfer) error

	// TakePendingTransfer atomically removes and returns the record for token.
	// It returns ErrNotFound if there is no record, and ErrExpired (after removing it)
	// if the record outlived its validity window at now.
	TakePendingTransfer(ctx context.Context, token string, now time.Time) (*models.PendingTransfer, error)

	// DeletePendingTransfer removes a record unconditionally. Missing records are not an error.
	DeletePendingTransfer(ctx context.Context, token string) error
}

// PendingTransferClaimer supports confirming a pending transfer without deleting it up front.
// A claimed record is invisible to other confirmers until its lease lapses or it is released.
type PendingTransferClaimer interface {
	// ClaimPendingTransfer marks a live record as claimed for lease and returns it with a fresh ClaimID.
	// It returns ErrNotFound if there is no claimable record (including one claimed by
	// someone else under a live lease) and ErrExpired if the record outlived its validity window.
	ClaimPendingTransfer(ctx context.Context, token string, now time.Time, lease time.Duration) (*models.PendingTransfer, error)

	// ReleasePendingTransfer returns a claimed record to the live state. When failedAttempt is set
	// the attempt counter is incremented and the record is deleted once it reaches maxAttempts.
	// It returns ErrClaimLost if the record is no longer held under pt.ClaimID.
	ReleasePendingTransfer(ctx context.Context, pt *models.PendingTransfer, failedAttempt bool, maxAttempts int) error
}

// PendingTransferSweeper removes abandoned records.
type PendingTransferSweeper interface {
	// SweepExpiredPendingTransfers deletes every record expired at now and returns how many were removed.
	SweepExpiredPendingTransfers(ctx context.Context, now time.Time) (int, error)
}
