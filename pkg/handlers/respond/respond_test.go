package respond_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/otp-transfers/pkg/api"
	"github.com/chris/otp-transfers/pkg/handlers/respond"
	"github.com/chris/otp-transfers/pkg/transfers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{name: "invalid argument", err: &transfers.Error{Kind: transfers.InvalidArgument, Message: "amount must be greater than zero"}, wantStatus: http.StatusBadRequest, wantCode: "invalid_argument", wantMessage: "amount must be greater than zero"},
		{name: "not found", err: &transfers.Error{Kind: transfers.NotFound, Message: "recipient not found"}, wantStatus: http.StatusNotFound, wantCode: "not_found", wantMessage: "recipient not found"},
		{name: "insufficient balance", err: &transfers.Error{Kind: transfers.FailedPrecondition, Message: "insufficient balance"}, wantStatus: http.StatusUnprocessableEntity, wantCode: "failed_precondition", wantMessage: "insufficient balance"},
		{name: "expired", err: &transfers.Error{Kind: transfers.Expired, Message: "pending transfer expired"}, wantStatus: http.StatusGone, wantCode: "expired", wantMessage: "pending transfer expired"},
		{name: "invalid code", err: &transfers.Error{Kind: transfers.PermissionDenied, Message: "invalid code"}, wantStatus: http.StatusForbidden, wantCode: "permission_denied", wantMessage: "invalid code"},
		{name: "internal hides cause", err: &transfers.Error{Kind: transfers.Internal, Message: "internal error", Err: errors.New("dynamodb: throttled")}, wantStatus: http.StatusInternalServerError, wantCode: "internal", wantMessage: "internal error"},
		{name: "foreign error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "internal", wantMessage: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/transfers", nil)

			respond.TransferError(rr, req, logger, tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			var body api.Error
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMessage, body.Message)
		})
	}
}

func TestTransferErrorSetsRetryAfter(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transfers/confirm", nil)

	respond.TransferError(rr, req, slog.Default(), &transfers.Error{Kind: transfers.RateLimited, Message: "too many requests", RetryAfter: 17})

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "17", rr.Header().Get("Retry-After"))
}
