package transfers

import (
	"context"
	"errors"
	"time"

	"github.com/chris/otp-transfers/pkg/delivery"
	"github.com/chris/otp-transfers/pkg/metrics"
	"github.com/chris/otp-transfers/pkg/models"
	"github.com/chris/otp-transfers/pkg/money"
	"github.com/chris/otp-transfers/pkg/storage"
)

// InitiateRequest asks to move Amount minor units of Currency from the sender to the recipient.
type InitiateRequest struct {
	SenderID  string
	Recipient string
	Amount    int64
	Currency  string
}

// InitiateResult identifies the pending transfer awaiting confirmation.
type InitiateResult struct {
	PendingToken string
	ExpiresAt    time.Time
	Channel      models.DeliveryChannel
	DeliveredTo  string
}

// Initiate validates a transfer, stores it as pending and sends the sender a confirmation code.
// No balance moves until Confirm.
func (s *Service) Initiate(ctx context.Context, req InitiateRequest) (res *InitiateResult, err error) {
	defer func() {
		metrics.TransfersInitiated.WithLabelValues(outcome(err)).Inc()
	}()

	if req.SenderID == "" {
		return nil, newError(InvalidArgument, "sender is required", nil)
	}
	if req.Amount <= 0 {
		return nil, newError(InvalidArgument, "amount must be greater than zero", money.ErrInvalidAmount)
	}
	currency, err := money.NormalizeCurrency(req.Currency)
	if err != nil {
		return nil, newError(InvalidArgument, "currency must be a three-letter code", err)
	}
	key, err := ParseLookupKey(req.Recipient)
	if err != nil {
		return nil, newError(InvalidArgument, err.Error(), err)
	}

	if err := s.checkRateLimit(ctx, scopeInitiate, req.SenderID, s.cfg.InitiateLimit); err != nil {
		return nil, err
	}

	sender, err := s.store.GetAccount(ctx, req.SenderID)
	if err != nil {
		return nil, accountError(err, "sender account not found")
	}
	// Advisory only; settlement re-checks the balance inside the transaction.
	if sender.Balance(currency) < req.Amount {
		return nil, newError(FailedPrecondition, "insufficient balance", storage.ErrInsufficientFunds)
	}

	recipient, err := s.resolveRecipient(ctx, key)
	if err != nil {
		return nil, accountError(err, "recipient not found")
	}
	if recipient.AccountID == sender.AccountID {
		return nil, newError(InvalidArgument, "cannot transfer to your own account", nil)
	}

	channel, address, ok := sender.DeliveryAddress()
	if !ok {
		return nil, newError(FailedPrecondition, "sender has no registered phone number or email", nil)
	}

	secret, err := s.otp.GenerateSecret()
	if err != nil {
		return nil, internalError(err)
	}
	token, err := s.newToken()
	if err != nil {
		return nil, internalError(err)
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.PendingValidity)
	pt := &models.PendingTransfer{
		Token:       token,
		SenderID:    sender.AccountID,
		RecipientID: recipient.AccountID,
		Amount:      req.Amount,
		Currency:    currency,
		OTPSecret:   secret,
		Status:      models.LIVE,
		CreatedAt:   now,
		ExpiresAt:   expiresAt.Unix(),
	}
	if err := s.store.PutPendingTransfer(ctx, pt); err != nil {
		return nil, internalError(err)
	}

	code, err := s.otp.CodeAt(secret, now)
	if err != nil {
		s.discardPending(ctx, token)
		return nil, internalError(err)
	}

	if err := s.deliver(ctx, &delivery.CodeDelivery{
		Channel:   channel,
		Address:   address,
		Code:      code,
		Amount:    money.FromMinorUnits(req.Amount, currency),
		Currency:  currency,
		ExpiresAt: expiresAt,
		Reference: deliveryReference(token),
	}); err != nil {
		s.discardPending(ctx, token)
		return nil, newError(Internal, "failed to deliver confirmation code", err)
	}

	s.logger.InfoContext(ctx, "transfer initiated",
		"sender_id", sender.AccountID,
		"recipient_id", recipient.AccountID,
		"amount", req.Amount,
		"currency", currency,
		"channel", channel,
	)

	return &InitiateResult{
		PendingToken: token,
		ExpiresAt:    expiresAt,
		Channel:      channel,
		DeliveredTo:  delivery.MaskAddress(channel, address),
	}, nil
}

func (s *Service) resolveRecipient(ctx context.Context, key LookupKey) (*models.Account, error) {
	switch key.Kind {
	case LookupPhone:
		return s.store.FindAccountByPhone(ctx, key.Value)
	case LookupEmail:
		return s.store.FindAccountByEmail(ctx, key.Value)
	default:
		return nil, errors.New("unsupported lookup key")
	}
}

// deliver sends the code within the delivery timeout.
func (s *Service) deliver(ctx context.Context, d *delivery.CodeDelivery) error {
	if s.cfg.DeliveryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.DeliveryTimeout)
		defer cancel()
	}

	// A sender that returned nil has handed the code off, even if the deadline passed since.
	err := s.sender.SendCode(ctx, d)
	result := "ok"
	if err != nil {
		result = "failed"
	}
	metrics.CodeDeliveries.WithLabelValues(string(d.Channel), result).Inc()
	return err
}

// discardPending removes a pending transfer whose code never reached the sender.
// It runs detached from ctx so a cancelled request still cleans up.
func (s *Service) discardPending(ctx context.Context, token string) {
	if err := s.store.DeletePendingTransfer(context.WithoutCancel(ctx), token); err != nil {
		s.logger.ErrorContext(ctx, "failed to discard undelivered pending transfer", "reference", deliveryReference(token), "error", err)
	}
}
