package transfers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/chris/otp-transfers/pkg/delivery"
	deliverymocks "github.com/chris/otp-transfers/pkg/delivery/mocks"
	"github.com/chris/otp-transfers/pkg/events"
	eventmocks "github.com/chris/otp-transfers/pkg/events/mocks"
	"github.com/chris/otp-transfers/pkg/models"
	"github.com/chris/otp-transfers/pkg/otp"
	ratelimitmocks "github.com/chris/otp-transfers/pkg/ratelimit/mocks"
	"github.com/chris/otp-transfers/pkg/storage"
	"github.com/chris/otp-transfers/pkg/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	alicePhone = "+639171234567"
	bobPhone   = "+639181112222"
	bobEmail   = "bob@example.com"
)

type fixture struct {
	store     *memory.Store
	sender    *deliverymocks.CodeSender
	publisher *eventmocks.Publisher
	svc       *Service
	now       time.Time

	mu    sync.Mutex
	codes []*delivery.CodeDelivery
}

func newFixture(t *testing.T, mode ConfirmMode, aliceBalance int64, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		store:     memory.New(),
		sender:    deliverymocks.NewCodeSender(t),
		publisher: eventmocks.NewPublisher(t),
		now:       time.Unix(1_700_000_000, 0).UTC(),
	}
	_, err := f.store.CreateAccount(ctx, &models.Account{AccountID: "alice", PhoneNumber: alicePhone, Balances: map[string]int64{"PHP": aliceBalance}})
	require.NoError(t, err)
	_, err = f.store.CreateAccount(ctx, &models.Account{AccountID: "bob", PhoneNumber: bobPhone, Email: bobEmail, Balances: map[string]int64{}})
	require.NoError(t, err)

	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	cfg := DefaultConfig()
	cfg.Mode = mode
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{WithClock(func() time.Time { return f.now })}, opts...)
	f.svc = NewService(f.store, otp.NewEngine(otp.Config{}), f.sender, f.publisher, logger, cfg, opts...)
	return f
}

// expectDelivery records every code handed to the sender.
func (f *fixture) expectDelivery() {
	f.sender.On("SendCode", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.codes = append(f.codes, args.Get(1).(*delivery.CodeDelivery))
	}).Return(nil)
}

func (f *fixture) lastCode(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.codes)
	return f.codes[len(f.codes)-1].Code
}

func (f *fixture) balance(t *testing.T, accountID string) int64 {
	t.Helper()
	account, err := f.store.GetAccount(context.Background(), accountID)
	require.NoError(t, err)
	return account.Balance("PHP")
}

func (f *fixture) initiate(t *testing.T, amount int64) *InitiateResult {
	t.Helper()
	res, err := f.svc.Initiate(context.Background(), InitiateRequest{SenderID: "alice", Recipient: bobPhone, Amount: amount, Currency: "PHP"})
	require.NoError(t, err)
	return res
}

func wrongCode(code string) string {
	last := code[len(code)-1]
	return code[:len(code)-1] + string(rune('0'+(last-'0'+1)%10))
}

func assertKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, KindOf(err), "error: %v", err)
}

func TestTransferSettlesWithValidCode(t *testing.T) {
	f := newFixture(t, ConfirmBurn, 100000)
	f.expectDelivery()

	initiated := f.initiate(t, 50000)
	assert.NotEmpty(t, initiated.PendingToken)
	assert.Equal(t, f.now.Add(5*time.Minute), initiated.ExpiresAt)
	assert.Equal(t, models.SMS, initiated.Channel)
	assert.Equal(t, "*********4567", initiated.DeliveredTo)
	assert.Equal(t, int64(100000), f.balance(t, "alice"), "initiation moves no money")

	d := f.codes[0]
	assert.Equal(t, alicePhone, d.Address)
	assert.Equal(t, "500.00", d.Amount)
	assert.Len(t, d.Code, 6)

	f.now = f.now.Add(45 * time.Second)
	res, err := f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: initiated.PendingToken, Code: f.lastCode(t)})

	require.NoError(t, err)
	assert.NotEmpty(t, res.TransactionID)
	assert.Equal(t, int64(50000), f.balance(t, "alice"))
	assert.Equal(t, int64(50000), f.balance(t, "bob"))
	assert.Equal(t, 1, f.store.TransactionCount())
	assert.Equal(t, 0, f.store.PendingCount())

	tx, err := f.store.GetTransaction(context.Background(), res.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), tx.Amount)
	assert.Equal(t, "PHP", tx.Currency)
	assert.Equal(t, models.PEER_TRANSFER, tx.Type)
	assert.Equal(t, models.COMPLETED, tx.Status)

	f.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		return e.Type == events.TransferCompleted
	}))
}

func TestConfirmAfterValidityWindowExpires(t *testing.T) {
	f := newFixture(t, ConfirmBurn, 100000)
	f.expectDelivery()

	initiated := f.initiate(t, 50000)
	f.now = f.now.Add(301 * time.Second)

	_, err := f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: initiated.PendingToken, Code: f.lastCode(t)})

	assertKind(t, err, Expired)
	assert.Equal(t, int64(100000), f.balance(t, "alice"))
	assert.Equal(t, int64(0), f.balance(t, "bob"))
	assert.Equal(t, 0, f.store.TransactionCount())
}

func TestInitiateRejectsInsufficientBalance(t *testing.T) {
	f := newFixture(t, ConfirmBurn, 10000)

	_, err := f.svc.Initiate(context.Background(), InitiateRequest{SenderID: "alice", Recipient: bobPhone, Amount: 50000, Currency: "PHP"})

	assertKind(t, err, FailedPrecondition)
	assert.Equal(t, 0, f.store.PendingCount())
	f.sender.AssertNotCalled(t, "SendCode", mock.Anything, mock.Anything)
}

func TestConcurrentConfirmsSettleOnce(t *testing.T) {
	for _, mode := range []ConfirmMode{ConfirmBurn, ConfirmClaim} {
		t.Run(string(mode), func(t *testing.T) {
			f := newFixture(t, mode, 100000)
			f.expectDelivery()

			initiated := f.initiate(t, 50000)
			code := f.lastCode(t)

			const racers = 8
			var wg sync.WaitGroup
			start := make(chan struct{})
			errs := make([]error, racers)
			for i := 0; i < racers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					_, errs[i] = f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: initiated.PendingToken, Code: code})
				}(i)
			}
			close(start)
			wg.Wait()

			succeeded := 0
			for _, err := range errs {
				if err == nil {
					succeeded++
					continue
				}
				assert.Equal(t, FailedPrecondition, KindOf(err), "error: %v", err)
			}
			assert.Equal(t, 1, succeeded)
			assert.Equal(t, 1, f.store.TransactionCount())
			assert.Equal(t, int64(50000), f.balance(t, "alice"))
			assert.Equal(t, int64(50000), f.balance(t, "bob"))
		})
	}
}

func TestTokenIsSingleUse(t *testing.T) {
	f := newFixture(t, ConfirmBurn, 100000)
	f.expectDelivery()

	initiated := f.initiate(t, 30000)
	req := ConfirmRequest{SenderID: "alice", PendingToken: initiated.PendingToken, Code: f.lastCode(t)}

	_, err := f.svc.Confirm(context.Background(), req)
	require.NoError(t, err)

	_, err = f.svc.Confirm(context.Background(), req)
	assertKind(t, err, FailedPrecondition)
	assert.Equal(t, 1, f.store.TransactionCount())
	assert.Equal(t, int64(70000), f.balance(t, "alice"))
}

func TestUnknownTokenIsIndistinguishableFromConsumed(t *testing.T) {
	f := newFixture(t, ConfirmBurn, 100000)

	_, err := f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: "never-issued", Code: "123456"})

	assertKind(t, err, FailedPrecondition)
	assert.Equal(t, "pending transfer not found", err.(*Error).Message)
}

func TestConcurrentTransfersNeverOverdraw(t *testing.T) {
	f := newFixture(t, ConfirmBurn, 100000)
	f.expectDelivery()

	first := f.initiate(t, 60000)
	firstCode := f.lastCode(t)
	second := f.initiate(t, 60000)
	secondCode := f.lastCode(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, p := range []struct{ token, code string }{{first.PendingToken, firstCode}, {second.PendingToken, secondCode}} {
		wg.Add(1)
		go func(i int, token, code string) {
			defer wg.Done()
			_, errs[i] = f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: token, Code: code})
		}(i, p.token, p.code)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
			assert.Equal(t, FailedPrecondition, KindOf(err))
		}
	}
	assert.Equal(t, 1, failures)
	assert.Equal(t, int64(40000), f.balance(t, "alice"))
	assert.Equal(t, int64(60000), f.balance(t, "bob"))
	assert.Equal(t, int64(100000), f.balance(t, "alice")+f.balance(t, "bob"))
}

func TestDeliveryFailureDiscardsPendingTransfer(t *testing.T) {
	f := newFixture(t, ConfirmBurn, 100000)
	f.sender.On("SendCode", mock.Anything, mock.Anything).Return(errors.New("sms gateway down")).Once()

	res, err := f.svc.Initiate(context.Background(), InitiateRequest{SenderID: "alice", Recipient: bobPhone, Amount: 50000, Currency: "PHP"})

	assert.Nil(t, res)
	assertKind(t, err, Internal)
	assert.Equal(t, 0, f.store.PendingCount())
}

func TestDeliveryTimeoutDiscardsPendingTransfer(t *testing.T) {
	f := newFixture(t, ConfirmBurn, 100000)
	f.svc.cfg.DeliveryTimeout = 10 * time.Millisecond
	f.sender.On("SendCode", mock.Anything, mock.Anything).Return(func(ctx context.Context, _ *delivery.CodeDelivery) error {
		<-ctx.Done()
		return ctx.Err()
	}).Once()

	_, err := f.svc.Initiate(context.Background(), InitiateRequest{SenderID: "alice", Recipient: bobPhone, Amount: 50000, Currency: "PHP"})

	assertKind(t, err, Internal)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, f.store.PendingCount())
}

func TestDeliveryAcceptedAtDeadlineKeepsPendingTransfer(t *testing.T) {
	f := newFixture(t, ConfirmBurn, 100000)
	f.svc.cfg.DeliveryTimeout = 10 * time.Millisecond
	f.sender.On("SendCode", mock.Anything, mock.Anything).Return(func(ctx context.Context, _ *delivery.CodeDelivery) error {
		<-ctx.Done()
		return nil
	}).Once()

	res, err := f.svc.Initiate(context.Background(), InitiateRequest{SenderID: "alice", Recipient: bobPhone, Amount: 50000, Currency: "PHP"})

	require.NoError(t, err)
	assert.NotEmpty(t, res.PendingToken)
	assert.Equal(t, 1, f.store.PendingCount())
}

func TestInitiateValidation(t *testing.T) {
	f := newFixture(t, ConfirmBurn, 100000)

	tests := []struct {
		name string
		req  InitiateRequest
		kind Kind
	}{
		{name: "zero amount", req: InitiateRequest{SenderID: "alice", Recipient: bobPhone, Amount: 0, Currency: "PHP"}, kind: InvalidArgument},
		{name: "negative amount", req: InitiateRequest{SenderID: "alice", Recipient: bobPhone, Amount: -5, Currency: "PHP"}, kind: InvalidArgument},
		{name: "bad currency", req: InitiateRequest{SenderID: "alice", Recipient: bobPhone, Amount: 100, Currency: "peso"}, kind: InvalidArgument},
		{name: "malformed recipient", req: InitiateRequest{SenderID: "alice", Recipient: "bob", Amount: 100, Currency: "PHP"}, kind: InvalidArgument},
		{name: "unknown sender", req: InitiateRequest{SenderID: "carol", Recipient: bobPhone, Amount: 100, Currency: "PHP"}, kind: NotFound},
		{name: "unknown recipient", req: InitiateRequest{SenderID: "alice", Recipient: "+15550001111", Amount: 100, Currency: "PHP"}, kind: NotFound},
		{name: "self transfer", req: InitiateRequest{SenderID: "alice", Recipient: alicePhone, Amount: 100, Currency: "PHP"}, kind: InvalidArgument},
		{name: "currency without balance", req: InitiateRequest{SenderID: "alice", Recipient: bobPhone, Amount: 100, Currency: "USD"}, kind: FailedPrecondition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Initiate(context.Background(), tt.req)
			assertKind(t, err, tt.kind)
		})
	}
	assert.Equal(t, 0, f.store.PendingCount())
}

func TestInitiateResolvesRecipientByEmail(t *testing.T) {
	f := newFixture(t, ConfirmBurn, 100000)
	f.expectDelivery()

	res, err := f.svc.Initiate(context.Background(), InitiateRequest{SenderID: "alice", Recipient: "  Bob@Example.com ", Amount: 100, Currency: "php"})

	require.NoError(t, err)
	assert.NotEmpty(t, res.PendingToken)
	assert.Equal(t, "PHP", f.codes[0].Currency)
}

func TestConfirmRejections(t *testing.T) {
	t.Run("Malformed Code", func(t *testing.T) {
		f := newFixture(t, ConfirmBurn, 100000)

		for _, code := range []string{"", "12345", "1234567", "12a456"} {
			_, err := f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: "tok", Code: code})
			assertKind(t, err, InvalidArgument)
		}
	})

	t.Run("Another Account", func(t *testing.T) {
		f := newFixture(t, ConfirmBurn, 100000)
		f.expectDelivery()
		initiated := f.initiate(t, 100)

		_, err := f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "bob", PendingToken: initiated.PendingToken, Code: f.lastCode(t)})

		assertKind(t, err, PermissionDenied)
		assert.Equal(t, 0, f.store.TransactionCount())
	})

	t.Run("Wrong Code Burns The Token", func(t *testing.T) {
		f := newFixture(t, ConfirmBurn, 100000)
		f.expectDelivery()
		initiated := f.initiate(t, 100)
		code := f.lastCode(t)

		_, err := f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: initiated.PendingToken, Code: wrongCode(code)})
		assertKind(t, err, PermissionDenied)
		assert.Equal(t, "invalid code", err.(*Error).Message)

		_, err = f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: initiated.PendingToken, Code: code})
		assertKind(t, err, FailedPrecondition)
		assert.Equal(t, 0, f.store.TransactionCount())
	})

	t.Run("Balance Spent Since Initiation", func(t *testing.T) {
		f := newFixture(t, ConfirmBurn, 100000)
		f.expectDelivery()
		first := f.initiate(t, 80000)
		firstCode := f.lastCode(t)
		second := f.initiate(t, 80000)
		secondCode := f.lastCode(t)

		_, err := f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: first.PendingToken, Code: firstCode})
		require.NoError(t, err)

		_, err = f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: second.PendingToken, Code: secondCode})
		assertKind(t, err, FailedPrecondition)
		assert.Equal(t, int64(20000), f.balance(t, "alice"))
		assert.Equal(t, 1, f.store.TransactionCount())
	})
}

func TestClaimModeAllowsRetryAfterWrongCode(t *testing.T) {
	f := newFixture(t, ConfirmClaim, 100000)
	f.expectDelivery()
	initiated := f.initiate(t, 25000)
	code := f.lastCode(t)

	_, err := f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: initiated.PendingToken, Code: wrongCode(code)})
	assertKind(t, err, PermissionDenied)
	assert.Equal(t, 1, f.store.PendingCount())

	res, err := f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: initiated.PendingToken, Code: code})
	require.NoError(t, err)
	assert.Equal(t, settlementID(initiated.PendingToken), res.TransactionID)
	assert.Equal(t, 0, f.store.PendingCount())
	assert.Equal(t, int64(75000), f.balance(t, "alice"))
}

func TestClaimModeCapsAttempts(t *testing.T) {
	f := newFixture(t, ConfirmClaim, 100000)
	f.expectDelivery()
	initiated := f.initiate(t, 25000)
	code := f.lastCode(t)

	for i := 0; i < DefaultConfig().MaxConfirmAttempts; i++ {
		_, err := f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: initiated.PendingToken, Code: wrongCode(code)})
		assertKind(t, err, PermissionDenied)
	}
	assert.Equal(t, 0, f.store.PendingCount())

	_, err := f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: initiated.PendingToken, Code: code})
	assertKind(t, err, FailedPrecondition)
	assert.Equal(t, int64(100000), f.balance(t, "alice"))
}

func TestClaimModeKeepsTokenWhenFundsAreShort(t *testing.T) {
	f := newFixture(t, ConfirmClaim, 100000)
	f.expectDelivery()
	first := f.initiate(t, 80000)
	firstCode := f.lastCode(t)
	second := f.initiate(t, 80000)
	secondCode := f.lastCode(t)

	_, err := f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: first.PendingToken, Code: firstCode})
	require.NoError(t, err)

	_, err = f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: second.PendingToken, Code: secondCode})
	assertKind(t, err, FailedPrecondition)
	assert.Equal(t, 1, f.store.PendingCount(), "the claim is released, not burned")
}

func TestClaimModeExpiry(t *testing.T) {
	f := newFixture(t, ConfirmClaim, 100000)
	f.expectDelivery()
	initiated := f.initiate(t, 100)
	f.now = f.now.Add(301 * time.Second)

	_, err := f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: initiated.PendingToken, Code: f.lastCode(t)})

	assertKind(t, err, Expired)
	assert.Equal(t, 0, f.store.PendingCount())
}

func TestRateLimits(t *testing.T) {
	t.Run("Initiate Over Limit", func(t *testing.T) {
		limiter := ratelimitmocks.NewLimiter(t)
		f := newFixture(t, ConfirmBurn, 100000, WithRateLimiter(limiter))
		f.svc.cfg.InitiateLimit = 3
		f.svc.cfg.RateLimitWindow = time.Minute
		limiter.On("Consume", mock.Anything, scopeInitiate, "alice", 3, time.Minute).Return(4, 42, nil).Once()

		_, err := f.svc.Initiate(context.Background(), InitiateRequest{SenderID: "alice", Recipient: bobPhone, Amount: 100, Currency: "PHP"})

		assertKind(t, err, RateLimited)
		assert.Equal(t, 42, err.(*Error).RetryAfter)
	})

	t.Run("Confirm Over Limit", func(t *testing.T) {
		limiter := ratelimitmocks.NewLimiter(t)
		f := newFixture(t, ConfirmBurn, 100000, WithRateLimiter(limiter))
		f.svc.cfg.ConfirmLimit = 5
		limiter.On("Consume", mock.Anything, scopeConfirm, "alice", 5, mock.Anything).Return(6, 10, nil).Once()

		_, err := f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: "tok", Code: "123456"})

		assertKind(t, err, RateLimited)
	})

	t.Run("Limiter Failure Fails Open", func(t *testing.T) {
		limiter := ratelimitmocks.NewLimiter(t)
		f := newFixture(t, ConfirmBurn, 100000, WithRateLimiter(limiter))
		f.svc.cfg.InitiateLimit = 3
		f.expectDelivery()
		limiter.On("Consume", mock.Anything, scopeInitiate, "alice", 3, mock.Anything).Return(0, 0, errors.New("redis down")).Once()

		_, err := f.svc.Initiate(context.Background(), InitiateRequest{SenderID: "alice", Recipient: bobPhone, Amount: 100, Currency: "PHP"})

		assert.NoError(t, err)
	})
}

func TestEventPublishFailureDoesNotFailConfirm(t *testing.T) {
	f := newFixture(t, ConfirmBurn, 100000)
	f.expectDelivery()
	f.publisher.ExpectedCalls = nil
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	initiated := f.initiate(t, 100)
	_, err := f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: initiated.PendingToken, Code: f.lastCode(t)})

	assert.NoError(t, err)
	assert.Equal(t, 1, f.store.TransactionCount())
}

// lostResponseStore reports a duplicate on every settlement, optionally after committing it,
// the way a retried write behaves when the first response never arrived.
type lostResponseStore struct {
	*memory.Store
	commit bool
}

func (s *lostResponseStore) SettleTransfer(ctx context.Context, settlement *models.Settlement) error {
	if s.commit {
		if err := s.Store.SettleTransfer(ctx, settlement); err != nil {
			return err
		}
	}
	return storage.ErrDuplicateTransaction
}

func TestDuplicateSettlement(t *testing.T) {
	for _, mode := range []ConfirmMode{ConfirmBurn, ConfirmClaim} {
		t.Run(string(mode)+" Committed Earlier Succeeds", func(t *testing.T) {
			f := newFixture(t, mode, 100000)
			f.expectDelivery()
			f.svc.store = &lostResponseStore{Store: f.store, commit: true}

			initiated := f.initiate(t, 50000)
			res, err := f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: initiated.PendingToken, Code: f.lastCode(t)})

			require.NoError(t, err)
			assert.Equal(t, initiated.PendingToken, res.Transaction.Token)
			assert.Equal(t, int64(50000), f.balance(t, "alice"))
			assert.Equal(t, int64(50000), f.balance(t, "bob"))
			assert.Equal(t, 1, f.store.TransactionCount())

			tx, err := f.store.GetTransaction(context.Background(), res.TransactionID)
			require.NoError(t, err)
			assert.Equal(t, int64(50000), tx.Amount)
		})

		t.Run(string(mode)+" Unmatched Duplicate Fails", func(t *testing.T) {
			f := newFixture(t, mode, 100000)
			f.expectDelivery()
			f.svc.store = &lostResponseStore{Store: f.store}

			initiated := f.initiate(t, 50000)
			_, err := f.svc.Confirm(context.Background(), ConfirmRequest{SenderID: "alice", PendingToken: initiated.PendingToken, Code: f.lastCode(t)})

			assertKind(t, err, Internal)
			assert.ErrorIs(t, err, storage.ErrDuplicateTransaction)
			assert.Equal(t, int64(100000), f.balance(t, "alice"))
			assert.Equal(t, 0, f.store.TransactionCount())
		})
	}
}
