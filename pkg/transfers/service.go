// Package transfers implements the two-phase, code-confirmed peer transfer:
// Initiate reserves nothing and sends a one-time code, Confirm verifies the code
// and settles the transfer atomically.
package transfers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/chris/otp-transfers/pkg/delivery"
	"github.com/chris/otp-transfers/pkg/events"
	"github.com/chris/otp-transfers/pkg/otp"
	"github.com/chris/otp-transfers/pkg/ratelimit"
	"github.com/chris/otp-transfers/pkg/storage"
)

// ConfirmMode selects how Confirm consumes a pending transfer.
type ConfirmMode string

const (
	// ConfirmBurn removes the pending transfer before settling; any failure after that forces re-initiation.
	ConfirmBurn ConfirmMode = "burn"
	// ConfirmClaim leases the pending transfer and deletes it in the settlement transaction.
	ConfirmClaim ConfirmMode = "claim"
)

const (
	scopeInitiate = "initiate"
	scopeConfirm  = "confirm"
)

// Store is the storage surface the service needs.
type Store interface {
	storage.AccountReader
	storage.LedgerReader
	storage.PendingTransferStore
	storage.PendingTransferClaimer
	storage.SettlementStore
}

// Config holds the tunables of the transfer protocol.
type Config struct {
	PendingValidity    time.Duration
	DeliveryTimeout    time.Duration
	Mode               ConfirmMode
	MaxConfirmAttempts int
	ClaimLease         time.Duration

	InitiateLimit   int
	ConfirmLimit    int
	RateLimitWindow time.Duration
}

// DefaultConfig returns the protocol defaults.
func DefaultConfig() Config {
	return Config{
		PendingValidity:    5 * time.Minute,
		DeliveryTimeout:    10 * time.Second,
		Mode:               ConfirmBurn,
		MaxConfirmAttempts: 5,
		ClaimLease:         30 * time.Second,
	}
}

// Service coordinates accounts, pending transfers, codes and settlement.
type Service struct {
	store   Store
	otp     *otp.Engine
	sender  delivery.CodeSender
	events  events.Publisher
	limiter ratelimit.Limiter
	logger  *slog.Logger
	cfg     Config

	now      func() time.Time
	newToken func() (string, error)
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTokenGenerator replaces the pending token generator.
func WithTokenGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.newToken = gen }
}

// WithRateLimiter enables per-sender rate limits for both operations.
func WithRateLimiter(limiter ratelimit.Limiter) Option {
	return func(s *Service) { s.limiter = limiter }
}

// NewService creates a new Service. A nil publisher disables events.
func NewService(store Store, engine *otp.Engine, sender delivery.CodeSender, publisher events.Publisher, logger *slog.Logger, cfg Config, opts ...Option) *Service {
	if publisher == nil {
		publisher = &events.NoOpPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Mode == "" {
		cfg.Mode = ConfirmBurn
	}
	s := &Service{
		store:    store,
		otp:      engine,
		sender:   sender,
		events:   publisher,
		logger:   logger,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		newToken: newPendingToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// checkRateLimit fails open: an unavailable limiter never blocks a transfer.
func (s *Service) checkRateLimit(ctx context.Context, scope, senderID string, limit int) error {
	if s.limiter == nil || limit <= 0 {
		return nil
	}
	count, retryAfter, err := s.limiter.Consume(ctx, scope, senderID, limit, s.cfg.RateLimitWindow)
	if err != nil {
		s.logger.WarnContext(ctx, "rate limiter unavailable", "scope", scope, "error", err)
		return nil
	}
	if count > limit {
		return &Error{Kind: RateLimited, Message: "too many requests, try again later", RetryAfter: retryAfter}
	}
	return nil
}

// verifyCode maps the engine's errors onto transfer errors.
func (s *Service) verifyCode(secret, code string, now time.Time) (bool, error) {
	ok, err := s.otp.Verify(secret, code, now)
	if err != nil {
		if errors.Is(err, otp.ErrInvalidSecret) {
			return false, newError(InvalidArgument, "invalid code secret", err)
		}
		return false, internalError(err)
	}
	return ok, nil
}

func accountError(err error, message string) *Error {
	if errors.Is(err, storage.ErrAccountNotFound) {
		return newError(NotFound, message, err)
	}
	return internalError(err)
}
