package ledger

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/chris/otp-transfers/pkg/api"
	"github.com/chris/otp-transfers/pkg/handlers/respond"
	"github.com/chris/otp-transfers/pkg/mapping"
	"github.com/chris/otp-transfers/pkg/middleware"
	"github.com/chris/otp-transfers/pkg/storage"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const (
	defaultLimit = int32(20)
	maxLimit     = int32(100)
)

// LedgerHandler holds the dependencies for ledger-related handlers.
type LedgerHandler struct {
	Store  storage.LedgerReader
	Logger *slog.Logger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(store storage.LedgerReader, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{Store: store, Logger: logger}
}

// ListTransactions returns the caller's ledger entries, newest first.
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request, params api.ListTransactionsParams) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return
	}

	limit := defaultLimit
	if params.Limit != nil {
		limit = *params.Limit
	}
	if limit < 1 || limit > maxLimit {
		respond.Error(w, http.StatusBadRequest, "invalid_argument", "limit must be between 1 and 100")
		return
	}

	domainTxs, err := h.Store.ListTransactionsByAccount(r.Context(), accountID, limit)
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "failed to list transactions", "account_id", accountID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal", "failed to retrieve transactions")
		return
	}

	apiTxs := make([]*api.Transaction, 0, len(domainTxs))
	for i := range domainTxs {
		apiTx, err := mapping.ToApiTransaction(&domainTxs[i])
		if err != nil {
			h.Logger.ErrorContext(r.Context(), "skipping malformed ledger entry", "error", err)
			continue
		}
		apiTxs = append(apiTxs, apiTx)
	}

	respond.JSON(w, http.StatusOK, apiTxs)
}

// GetTransactionById returns one ledger entry. Entries the caller is not party to are reported as missing.
func (h *LedgerHandler) GetTransactionById(w http.ResponseWriter, r *http.Request, transactionId openapi_types.UUID) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return
	}

	domainTx, err := h.Store.GetTransaction(r.Context(), transactionId.String())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "not_found", "transaction not found")
			return
		}
		h.Logger.ErrorContext(r.Context(), "failed to get transaction", "transaction_id", transactionId, "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal", "failed to retrieve transaction")
		return
	}
	if domainTx.SenderID != accountID && domainTx.RecipientID != accountID {
		respond.Error(w, http.StatusNotFound, "not_found", "transaction not found")
		return
	}

	apiTx, err := mapping.ToApiTransaction(domainTx)
	if err != nil {
		h.Logger.ErrorContext(r.Context(), "malformed ledger entry", "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal", "failed to retrieve transaction")
		return
	}
	respond.JSON(w, http.StatusOK, apiTx)
}
