package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/otp-transfers/pkg/app"
	"github.com/chris/otp-transfers/pkg/config"
	"github.com/chris/otp-transfers/pkg/sweeper"
)

var (
	sweep  *sweeper.Sweeper
	logger *slog.Logger
)

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.StorageDriver != config.StorageDynamoDB {
		log.Fatal("the sweeper lambda requires the dynamodb storage driver")
	}

	logger = app.NewLogger(cfg)

	store, err := app.OpenStore(context.TODO(), cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	sweep = sweeper.New(store, logger)
}

// HandleRequest is triggered by an EventBridge Schedule.
func HandleRequest(ctx context.Context) error {
	logger.InfoContext(ctx, "starting expiry sweep")

	removed, err := sweep.Sweep(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "expiry sweep failed", "removed", removed, "error", err)
		return err
	}

	logger.InfoContext(ctx, "expiry sweep finished", "removed", removed)
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
