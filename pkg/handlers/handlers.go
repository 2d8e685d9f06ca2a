package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/chris/otp-transfers/pkg/api"
	"github.com/chris/otp-transfers/pkg/handlers/accounts"
	"github.com/chris/otp-transfers/pkg/handlers/ledger"
	"github.com/chris/otp-transfers/pkg/handlers/respond"
	"github.com/chris/otp-transfers/pkg/handlers/transfers"
	"github.com/chris/otp-transfers/pkg/middleware"
	"github.com/chris/otp-transfers/pkg/storage"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const requestTimeout = 30 * time.Second

// ApiHandler implements the generated server interface.
// It composes the handlers for each resource.
type ApiHandler struct {
	*transfers.TransfersHandler
	*ledger.LedgerHandler
	*accounts.AccountsHandler
}

// NewApiHandler creates a new ApiHandler.
func NewApiHandler(service transfers.TransferService, store storage.ApiStore, logger *slog.Logger) *ApiHandler {
	return &ApiHandler{
		TransfersHandler: transfers.NewTransfersHandler(service, logger),
		LedgerHandler:    ledger.NewLedgerHandler(store, logger),
		AccountsHandler:  accounts.NewAccountsHandler(store, logger),
	}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)

// NewRouter mounts the API behind authenticator, plus unauthenticated health and metrics endpoints.
func NewRouter(si api.ServerInterface, authenticator func(http.Handler) http.Handler, logger *slog.Logger) http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.NewStructuredLogger(logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(requestTimeout))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(authenticator)
		api.HandlerWithOptions(si, api.ChiServerOptions{
			BaseRouter: r,
			ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
				respond.Error(w, http.StatusBadRequest, "invalid_argument", err.Error())
			},
		})
	})

	return router
}
