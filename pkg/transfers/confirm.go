package transfers

import (
	"context"
	"errors"
	"time"

	"github.com/chris/otp-transfers/pkg/events"
	"github.com/chris/otp-transfers/pkg/metrics"
	"github.com/chris/otp-transfers/pkg/models"
	"github.com/chris/otp-transfers/pkg/storage"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// ConfirmRequest carries the code the sender received for a pending transfer.
type ConfirmRequest struct {
	SenderID     string
	PendingToken string
	Code         string
}

// ConfirmResult is the settled ledger entry.
type ConfirmResult struct {
	TransactionID string
	Transaction   models.Transaction
}

// Confirm verifies the code for a pending transfer and settles it.
// A token settles at most once, however many confirmations race on it.
func (s *Service) Confirm(ctx context.Context, req ConfirmRequest) (res *ConfirmResult, err error) {
	defer func() {
		metrics.TransfersConfirmed.WithLabelValues(outcome(err)).Inc()
	}()

	if req.SenderID == "" {
		return nil, newError(InvalidArgument, "sender is required", nil)
	}
	if req.PendingToken == "" {
		return nil, newError(InvalidArgument, "pending token is required", nil)
	}
	if !s.wellFormedCode(req.Code) {
		return nil, newError(InvalidArgument, "code must be a numeric one-time code", nil)
	}

	if err := s.checkRateLimit(ctx, scopeConfirm, req.SenderID, s.cfg.ConfirmLimit); err != nil {
		return nil, err
	}

	if s.cfg.Mode == ConfirmClaim {
		return s.confirmClaimed(ctx, req)
	}
	return s.confirmBurned(ctx, req)
}

func (s *Service) wellFormedCode(code string) bool {
	if len(code) != s.otp.Digits() {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// confirmBurned removes the pending transfer first. Every failure after that point burns the token.
func (s *Service) confirmBurned(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	now := s.now()

	pt, err := s.store.TakePendingTransfer(ctx, req.PendingToken, now)
	if err != nil {
		return nil, s.pendingError(ctx, req, err)
	}

	if pt.SenderID != req.SenderID {
		s.logger.WarnContext(ctx, "pending transfer confirmed by another account",
			"sender_id", pt.SenderID, "caller_id", req.SenderID)
		return nil, newError(PermissionDenied, "pending transfer belongs to another account", nil)
	}

	ok, err := s.verifyCode(pt.OTPSecret, req.Code, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newError(PermissionDenied, "invalid code", nil)
	}

	if err := s.recheckBalance(ctx, pt); err != nil {
		return nil, err
	}

	tx, err := s.settle(ctx, &models.Settlement{Transaction: newTransaction(uuid.NewString(), pt, now)})
	if err != nil {
		return nil, err
	}
	return s.completed(ctx, tx), nil
}

// confirmClaimed leases the pending transfer and keeps it until settlement commits,
// so recoverable failures can be retried with the same token until it expires.
func (s *Service) confirmClaimed(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	now := s.now()

	pt, err := s.store.ClaimPendingTransfer(ctx, req.PendingToken, now, s.cfg.ClaimLease)
	if err != nil {
		return nil, s.pendingError(ctx, req, err)
	}

	if pt.SenderID != req.SenderID {
		s.release(ctx, pt, false)
		s.logger.WarnContext(ctx, "pending transfer confirmed by another account",
			"sender_id", pt.SenderID, "caller_id", req.SenderID)
		return nil, newError(PermissionDenied, "pending transfer belongs to another account", nil)
	}

	ok, err := s.verifyCode(pt.OTPSecret, req.Code, now)
	if err != nil {
		s.release(ctx, pt, false)
		return nil, err
	}
	if !ok {
		s.release(ctx, pt, true)
		return nil, newError(PermissionDenied, "invalid code", nil)
	}

	if err := s.recheckBalance(ctx, pt); err != nil {
		s.release(ctx, pt, false)
		return nil, err
	}

	tx, err := s.settle(ctx, &models.Settlement{Transaction: newTransaction(settlementID(pt.Token), pt, now), ClaimID: pt.ClaimID})
	switch {
	case err == nil:
		return s.completed(ctx, tx), nil
	case errors.Is(err, storage.ErrClaimLost):
		// The lease lapsed and another confirmation owns the record now.
		return nil, err
	default:
		s.release(ctx, pt, false)
		return nil, err
	}
}

// pendingError collapses "never existed" and "already consumed" into one answer.
func (s *Service) pendingError(ctx context.Context, req ConfirmRequest, err error) *Error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.logger.InfoContext(ctx, "pending transfer not found or already consumed", "caller_id", req.SenderID)
		return newError(FailedPrecondition, "pending transfer not found", err)
	case errors.Is(err, storage.ErrExpired):
		return newError(Expired, "pending transfer expired, start a new transfer", err)
	default:
		return internalError(err)
	}
}

func (s *Service) recheckBalance(ctx context.Context, pt *models.PendingTransfer) error {
	sender, err := s.store.GetAccount(ctx, pt.SenderID)
	if err != nil {
		return accountError(err, "sender account not found")
	}
	if sender.Balance(pt.Currency) < pt.Amount {
		return newError(FailedPrecondition, "insufficient balance", storage.ErrInsufficientFunds)
	}
	return nil
}

func (s *Service) settle(ctx context.Context, settlement *models.Settlement) (models.Transaction, error) {
	timer := prometheus.NewTimer(metrics.SettlementDuration)
	err := s.store.SettleTransfer(ctx, settlement)
	timer.ObserveDuration()

	switch {
	case err == nil:
		return settlement.Transaction, nil
	case errors.Is(err, storage.ErrDuplicateTransaction):
		return s.committedEarlier(ctx, settlement, err)
	case errors.Is(err, storage.ErrInsufficientFunds):
		return models.Transaction{}, newError(FailedPrecondition, "insufficient balance", err)
	case errors.Is(err, storage.ErrAccountNotFound):
		return models.Transaction{}, newError(NotFound, "account not found", err)
	case errors.Is(err, storage.ErrClaimLost):
		return models.Transaction{}, newError(FailedPrecondition, "pending transfer not found", err)
	default:
		s.logger.ErrorContext(ctx, "settlement failed",
			"transaction_id", settlement.Transaction.TransactionID, "error", err)
		return models.Transaction{}, internalError(err)
	}
}

// committedEarlier resolves a duplicate settlement. An entry written for the same
// pending transfer means an earlier attempt committed and only its response was lost.
func (s *Service) committedEarlier(ctx context.Context, settlement *models.Settlement, dupErr error) (models.Transaction, error) {
	id := settlement.Transaction.TransactionID
	existing, err := s.store.GetTransaction(context.WithoutCancel(ctx), id)
	if err != nil || existing.Token != settlement.Transaction.Token {
		s.logger.ErrorContext(ctx, "duplicate settlement does not match an earlier commit",
			"transaction_id", id, "error", err)
		return models.Transaction{}, internalError(dupErr)
	}
	s.logger.WarnContext(ctx, "settlement already committed", "transaction_id", id)
	return *existing, nil
}

// release returns a claimed pending transfer. Failures only delay a retry until the lease lapses.
func (s *Service) release(ctx context.Context, pt *models.PendingTransfer, failedAttempt bool) {
	err := s.store.ReleasePendingTransfer(context.WithoutCancel(ctx), pt, failedAttempt, s.cfg.MaxConfirmAttempts)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to release pending transfer claim", "claim_id", pt.ClaimID, "error", err)
	}
}

func (s *Service) completed(ctx context.Context, tx models.Transaction) *ConfirmResult {
	s.logger.InfoContext(ctx, "transfer settled",
		"transaction_id", tx.TransactionID,
		"sender_id", tx.SenderID,
		"recipient_id", tx.RecipientID,
		"amount", tx.Amount,
		"currency", tx.Currency,
	)

	event := events.Event{
		Type:       events.TransferCompleted,
		OccurredAt: tx.Timestamp,
		Payload: events.TransferCompletedPayload{
			TransactionID: tx.TransactionID,
			SenderID:      tx.SenderID,
			RecipientID:   tx.RecipientID,
			Amount:        tx.Amount,
			Currency:      tx.Currency,
		},
	}
	if err := s.events.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish transfer event", "transaction_id", tx.TransactionID, "error", err)
	}

	return &ConfirmResult{TransactionID: tx.TransactionID, Transaction: tx}
}

func newTransaction(id string, pt *models.PendingTransfer, now time.Time) models.Transaction {
	return models.Transaction{
		TransactionID: id,
		SenderID:      pt.SenderID,
		RecipientID:   pt.RecipientID,
		Amount:        pt.Amount,
		Currency:      pt.Currency,
		Type:          models.PEER_TRANSFER,
		Status:        models.COMPLETED,
		Token:         pt.Token,
		Timestamp:     now,
	}
}
