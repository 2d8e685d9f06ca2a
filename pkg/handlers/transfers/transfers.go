package transfers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/chris/otp-transfers/pkg/api"
	"github.com/chris/otp-transfers/pkg/handlers/respond"
	"github.com/chris/otp-transfers/pkg/mapping"
	"github.com/chris/otp-transfers/pkg/middleware"
	transfersvc "github.com/chris/otp-transfers/pkg/transfers"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// TransferService is the two-phase transfer protocol.
type TransferService interface {
	Initiate(ctx context.Context, req transfersvc.InitiateRequest) (*transfersvc.InitiateResult, error)
	Confirm(ctx context.Context, req transfersvc.ConfirmRequest) (*transfersvc.ConfirmResult, error)
}

// TransfersHandler holds the dependencies for transfer handlers.
type TransfersHandler struct {
	Service TransferService
	Logger  *slog.Logger
}

// NewTransfersHandler creates a new TransfersHandler.
func NewTransfersHandler(service TransferService, logger *slog.Logger) *TransfersHandler {
	return &TransfersHandler{Service: service, Logger: logger}
}

// InitiateTransfer starts a transfer for the authenticated sender.
func (h *TransfersHandler) InitiateTransfer(w http.ResponseWriter, r *http.Request) {
	senderID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return
	}

	var body api.InitiateTransferJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.Error(w, http.StatusBadRequest, transfersvc.InvalidArgument.String(), "invalid request body")
		return
	}

	req, err := mapping.ToInitiateRequest(senderID, &body)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, transfersvc.InvalidArgument.String(), err.Error())
		return
	}

	res, err := h.Service.Initiate(r.Context(), req)
	if err != nil {
		respond.TransferError(w, r, h.Logger, err)
		return
	}

	respond.JSON(w, http.StatusAccepted, mapping.ToApiPendingTransfer(res))
}

// ConfirmTransfer settles a pending transfer for the authenticated sender.
func (h *TransfersHandler) ConfirmTransfer(w http.ResponseWriter, r *http.Request) {
	senderID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return
	}

	var body api.ConfirmTransferJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.Error(w, http.StatusBadRequest, transfersvc.InvalidArgument.String(), "invalid request body")
		return
	}

	res, err := h.Service.Confirm(r.Context(), mapping.ToConfirmRequest(senderID, &body))
	if err != nil {
		respond.TransferError(w, r, h.Logger, err)
		return
	}

	id, err := uuid.Parse(res.TransactionID)
	if err != nil {
		// The transfer has settled; still answer 201.
		h.Logger.ErrorContext(r.Context(), "settled transaction has a malformed id", "transaction_id", res.TransactionID)
	}
	respond.JSON(w, http.StatusCreated, api.TransferConfirmation{TransactionId: openapi_types.UUID(id)})
}
