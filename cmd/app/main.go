package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chris/otp-transfers/pkg/app"
	"github.com/chris/otp-transfers/pkg/config"
	"github.com/chris/otp-transfers/pkg/handlers"
	"github.com/chris/otp-transfers/pkg/middleware"
	"github.com/chris/otp-transfers/pkg/sweeper"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.JWTSigningKey == "" {
		log.Fatal("JWT_SIGNING_KEY environment variable not set")
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	service := app.NewService(cfg, deps, logger)

	// DynamoDB TTL removes expired records eventually; the in-process sweep keeps the table tidy in between.
	scheduler := sweeper.NewScheduler(sweeper.New(deps.Store, logger), cfg.SweepSchedule, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start sweeper", "error", err)
		os.Exit(1)
	}

	handler := handlers.NewApiHandler(service, deps.Store, logger)
	router := handlers.NewRouter(handler, middleware.NewAuthenticator([]byte(cfg.JWTSigningKey), logger), logger)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.HTTPPort, "confirm_mode", cfg.ConfirmMode, "storage", cfg.StorageDriver, "delivery", cfg.DeliveryDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	<-scheduler.Stop().Done()
}
