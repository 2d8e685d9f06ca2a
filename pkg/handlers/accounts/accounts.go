package accounts

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/chris/otp-transfers/pkg/handlers/respond"
	"github.com/chris/otp-transfers/pkg/mapping"
	"github.com/chris/otp-transfers/pkg/middleware"
	"github.com/chris/otp-transfers/pkg/storage"
)

// AccountsHandler holds the dependencies for account handlers.
type AccountsHandler struct {
	Store  storage.AccountReader
	Logger *slog.Logger
}

// NewAccountsHandler creates a new AccountsHandler.
func NewAccountsHandler(store storage.AccountReader, logger *slog.Logger) *AccountsHandler {
	return &AccountsHandler{Store: store, Logger: logger}
}

// GetMyAccount returns the authenticated account and its balances.
func (h *AccountsHandler) GetMyAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return
	}

	account, err := h.Store.GetAccount(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			respond.Error(w, http.StatusNotFound, "not_found", "account not found")
			return
		}
		h.Logger.ErrorContext(r.Context(), "failed to get account", "account_id", accountID, "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal", "failed to retrieve account")
		return
	}

	respond.JSON(w, http.StatusOK, mapping.ToApiAccount(account))
}
