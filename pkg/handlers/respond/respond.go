// Package respond writes JSON responses and maps transfer errors onto HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/chris/otp-transfers/pkg/api"
	"github.com/chris/otp-transfers/pkg/transfers"
)

// JSON writes body with the given status.
func JSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Error writes an api.Error body.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, api.Error{Code: code, Message: message})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind transfers.Kind) int {
	switch kind {
	case transfers.InvalidArgument:
		return http.StatusBadRequest
	case transfers.PermissionDenied:
		return http.StatusForbidden
	case transfers.NotFound:
		return http.StatusNotFound
	case transfers.Expired:
		return http.StatusGone
	case transfers.FailedPrecondition:
		return http.StatusUnprocessableEntity
	case transfers.RateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// TransferError writes err as an api.Error. Internal causes are logged, never returned to the client.
func TransferError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var terr *transfers.Error
	if !errors.As(err, &terr) {
		terr = &transfers.Error{Kind: transfers.Internal, Message: "internal error", Err: err}
	}

	status := StatusFor(terr.Kind)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		Error(w, status, terr.Kind.String(), "internal error")
		return
	}
	if terr.Kind == transfers.RateLimited && terr.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(terr.RetryAfter))
	}
	Error(w, status, terr.Kind.String(), terr.Message)
}
