package memory

import (
	"context"
	"testing"
	"time"

	"github.com/chris/otp-transfers/pkg/models"
	"github.com/chris/otp-transfers/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingTransferLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	store := New()

	pt := &models.PendingTransfer{Token: "tok", SenderID: "a", RecipientID: "b", Amount: 1, Currency: "PHP", CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute).Unix()}
	require.NoError(t, store.PutPendingTransfer(ctx, pt))
	assert.ErrorIs(t, store.PutPendingTransfer(ctx, pt), storage.ErrAlreadyExists)

	taken, err := store.TakePendingTransfer(ctx, "tok", now)
	require.NoError(t, err)
	assert.Equal(t, "a", taken.SenderID)

	_, err = store.TakePendingTransfer(ctx, "tok", now)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	t.Run("Expired records are removed on take", func(t *testing.T) {
		require.NoError(t, store.PutPendingTransfer(ctx, &models.PendingTransfer{Token: "old", CreatedAt: now, ExpiresAt: now.Unix()}))

		_, err := store.TakePendingTransfer(ctx, "old", now.Add(time.Second))
		assert.ErrorIs(t, err, storage.ErrExpired)
		assert.Equal(t, 0, store.PendingCount())
	})

	t.Run("Sweep removes only expired records", func(t *testing.T) {
		require.NoError(t, store.PutPendingTransfer(ctx, &models.PendingTransfer{Token: "x", ExpiresAt: now.Unix()}))
		require.NoError(t, store.PutPendingTransfer(ctx, &models.PendingTransfer{Token: "y", ExpiresAt: now.Add(time.Hour).Unix()}))

		removed, err := store.SweepExpiredPendingTransfers(ctx, now.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 1, removed)
		assert.Equal(t, 1, store.PendingCount())
	})
}

func TestClaimAndRelease(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	store := New()
	require.NoError(t, store.PutPendingTransfer(ctx, &models.PendingTransfer{Token: "tok", CreatedAt: now, ExpiresAt: now.Add(5 * time.Minute).Unix()}))

	claimed, err := store.ClaimPendingTransfer(ctx, "tok", now, 30*time.Second)
	require.NoError(t, err)

	_, err = store.ClaimPendingTransfer(ctx, "tok", now, 30*time.Second)
	assert.ErrorIs(t, err, storage.ErrNotFound, "held under a live lease")

	_, err = store.TakePendingTransfer(ctx, "tok", now)
	assert.ErrorIs(t, err, storage.ErrNotFound, "claimed records cannot be taken")

	require.NoError(t, store.ReleasePendingTransfer(ctx, claimed, true, 2))
	assert.ErrorIs(t, store.ReleasePendingTransfer(ctx, claimed, false, 2), storage.ErrClaimLost)

	again, err := store.ClaimPendingTransfer(ctx, "tok", now.Add(time.Second), 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Attempts)

	// Second failed attempt reaches the cap.
	require.NoError(t, store.ReleasePendingTransfer(ctx, again, true, 2))
	assert.Equal(t, 0, store.PendingCount())
}

func TestSettleTransfer(t *testing.T) {
	ctx := context.Background()
	store := New()
	_, err := store.CreateAccount(ctx, &models.Account{AccountID: "a", Balances: map[string]int64{"PHP": 1000}})
	require.NoError(t, err)
	_, err = store.CreateAccount(ctx, &models.Account{AccountID: "b"})
	require.NoError(t, err)

	tx := models.Transaction{TransactionID: "tx-1", SenderID: "a", RecipientID: "b", Amount: 600, Currency: "PHP", Timestamp: time.Now()}
	require.NoError(t, store.SettleTransfer(ctx, &models.Settlement{Transaction: tx}))

	assert.ErrorIs(t, store.SettleTransfer(ctx, &models.Settlement{Transaction: tx}), storage.ErrDuplicateTransaction)

	tx.TransactionID = "tx-2"
	assert.ErrorIs(t, store.SettleTransfer(ctx, &models.Settlement{Transaction: tx}), storage.ErrInsufficientFunds)

	missing := tx
	missing.TransactionID = "tx-3"
	missing.SenderID = "ghost"
	err = store.SettleTransfer(ctx, &models.Settlement{Transaction: missing})
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)
	assert.NotErrorIs(t, err, storage.ErrInsufficientFunds)

	missing.SenderID = "a"
	missing.RecipientID = "ghost"
	missing.Amount = 100
	assert.ErrorIs(t, store.SettleTransfer(ctx, &models.Settlement{Transaction: missing}), storage.ErrAccountNotFound)

	a, _ := store.GetAccount(ctx, "a")
	b, _ := store.GetAccount(ctx, "b")
	assert.Equal(t, int64(400), a.Balance("PHP"))
	assert.Equal(t, int64(600), b.Balance("PHP"))
	assert.Equal(t, 1, store.TransactionCount())
}
