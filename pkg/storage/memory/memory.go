// Package memory is a process-local implementation of the storage interfaces.
// It is used by tests and by local development runs; pending transfers do not
// survive a restart, so it must not back a deployed service.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chris/otp-transfers/pkg/models"
	"github.com/chris/otp-transfers/pkg/storage"
	"github.com/google/uuid"
)

// Store keeps every table in maps guarded by a single mutex, which makes each
// operation, including settlement, atomic.
type Store struct {
	mu           sync.Mutex
	accounts     map[string]*models.Account
	pending      map[string]*models.PendingTransfer
	transactions map[string]*models.Transaction
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		accounts:     make(map[string]*models.Account),
		pending:      make(map[string]*models.PendingTransfer),
		transactions: make(map[string]*models.Transaction),
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

func copyAccount(a *models.Account) *models.Account {
	c := *a
	c.Balances = make(map[string]int64, len(a.Balances))
	for k, v := range a.Balances {
		c.Balances[k] = v
	}
	return &c
}

func (s *Store) CreateAccount(_ context.Context, account *models.Account) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.AccountID]; ok {
		return nil, fmt.Errorf("account %s: %w", account.AccountID, storage.ErrAlreadyExists)
	}
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now
	if account.Version == 0 {
		account.Version = 1
	}
	if account.Balances == nil {
		account.Balances = map[string]int64{}
	}
	s.accounts[account.AccountID] = copyAccount(account)
	return account, nil
}

func (s *Store) GetAccount(_ context.Context, accountID string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", accountID, storage.ErrAccountNotFound)
	}
	return copyAccount(a), nil
}

func (s *Store) FindAccountByPhone(_ context.Context, phone string) (*models.Account, error) {
	return s.find(func(a *models.Account) bool { return a.PhoneNumber == phone })
}

func (s *Store) FindAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	return s.find(func(a *models.Account) bool { return a.Email == email })
}

func (s *Store) find(match func(*models.Account) bool) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if match(a) {
			return copyAccount(a), nil
		}
	}
	return nil, storage.ErrAccountNotFound
}

func (s *Store) PutPendingTransfer(_ context.Context, pt *models.PendingTransfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[pt.Token]; ok {
		return storage.ErrAlreadyExists
	}
	if pt.Status == "" {
		pt.Status = models.LIVE
	}
	c := *pt
	s.pending[pt.Token] = &c
	return nil
}

func (s *Store) TakePendingTransfer(_ context.Context, token string, now time.Time) (*models.PendingTransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pt, ok := s.pending[token]
	if !ok || pt.Status != models.LIVE {
		return nil, storage.ErrNotFound
	}
	delete(s.pending, token)
	if pt.IsExpired(now) {
		return nil, storage.ErrExpired
	}
	return pt, nil
}

func (s *Store) DeletePendingTransfer(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, token)
	return nil
}

func (s *Store) ClaimPendingTransfer(_ context.Context, token string, now time.Time, lease time.Duration) (*models.PendingTransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pt, ok := s.pending[token]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if pt.IsExpired(now) {
		delete(s.pending, token)
		return nil, storage.ErrExpired
	}
	if pt.Status == models.CLAIMED && pt.ClaimExpiresAt >= now.Unix() {
		return nil, storage.ErrNotFound
	}

	pt.Status = models.CLAIMED
	pt.ClaimID = uuid.NewString()
	pt.ClaimExpiresAt = now.Add(lease).Unix()
	c := *pt
	return &c, nil
}

func (s *Store) ReleasePendingTransfer(_ context.Context, claimed *models.PendingTransfer, failedAttempt bool, maxAttempts int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pt, ok := s.pending[claimed.Token]
	if !ok || pt.ClaimID != claimed.ClaimID {
		return storage.ErrClaimLost
	}
	if failedAttempt {
		pt.Attempts++
		if maxAttempts > 0 && pt.Attempts >= maxAttempts {
			delete(s.pending, claimed.Token)
			return nil
		}
	}
	pt.Status = models.LIVE
	pt.ClaimID = ""
	pt.ClaimExpiresAt = 0
	return nil
}

func (s *Store) SweepExpiredPendingTransfers(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, pt := range s.pending {
		if pt.IsExpired(now) {
			delete(s.pending, token)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) SettleTransfer(_ context.Context, settlement *models.Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := settlement.Transaction
	if _, ok := s.transactions[tx.TransactionID]; ok {
		return storage.ErrDuplicateTransaction
	}
	sender, ok := s.accounts[tx.SenderID]
	if !ok {
		return fmt.Errorf("sender: %w", storage.ErrAccountNotFound)
	}
	if sender.Balances[tx.Currency] < tx.Amount {
		return storage.ErrInsufficientFunds
	}
	recipient, ok := s.accounts[tx.RecipientID]
	if !ok {
		return fmt.Errorf("recipient: %w", storage.ErrAccountNotFound)
	}
	if settlement.ClaimID != "" {
		pt, ok := s.pending[tx.Token]
		if !ok || pt.ClaimID != settlement.ClaimID {
			return storage.ErrClaimLost
		}
		delete(s.pending, tx.Token)
	}

	sender.Balances[tx.Currency] -= tx.Amount
	sender.Version++
	sender.UpdatedAt = tx.Timestamp
	recipient.Balances[tx.Currency] += tx.Amount
	recipient.Version++
	recipient.UpdatedAt = tx.Timestamp
	s.transactions[tx.TransactionID] = &tx
	return nil
}

func (s *Store) GetTransaction(_ context.Context, transactionID string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[transactionID]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, storage.ErrNotFound)
	}
	c := *tx
	return &c, nil
}

func (s *Store) ListTransactionsByAccount(_ context.Context, accountID string, limit int32) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var txs []models.Transaction
	for _, tx := range s.transactions {
		if tx.SenderID == accountID || tx.RecipientID == accountID {
			txs = append(txs, *tx)
		}
	}
	sort.Slice(txs, func(i, j int) bool {
		return txs[i].Timestamp.After(txs[j].Timestamp)
	})
	if limit > 0 && int(limit) < len(txs) {
		txs = txs[:limit]
	}
	return txs, nil
}

// PendingCount returns the number of stored pending transfers.
func (s *Store) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// TransactionCount returns the number of ledger entries.
func (s *Store) TransactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}
