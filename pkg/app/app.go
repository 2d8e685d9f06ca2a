// Package app builds the service's dependencies from configuration.
// It is shared by the HTTP server, the sweeper lambda and transferctl.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/otp-transfers/pkg/config"
	"github.com/chris/otp-transfers/pkg/delivery"
	"github.com/chris/otp-transfers/pkg/events"
	"github.com/chris/otp-transfers/pkg/otp"
	"github.com/chris/otp-transfers/pkg/rabbitmq"
	"github.com/chris/otp-transfers/pkg/ratelimit"
	"github.com/chris/otp-transfers/pkg/storage"
	dydbstore "github.com/chris/otp-transfers/pkg/storage/dynamodb"
	"github.com/chris/otp-transfers/pkg/storage/memory"
	"github.com/chris/otp-transfers/pkg/transfers"
	"github.com/redis/go-redis/v9"
)

// Deps holds everything the transfer service is built from.
type Deps struct {
	Store     storage.Storage
	Sender    delivery.CodeSender
	Publisher events.Publisher
	Limiter   ratelimit.Limiter

	closers []func()
}

// Close releases broker and cache connections in reverse order of creation.
func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// NewLogger creates the JSON logger every binary writes with.
func NewLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// LoadAWSConfig loads the default AWS configuration chain.
func LoadAWSConfig(ctx context.Context) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return awsCfg, nil
}

// OpenStore returns the storage driver selected by STORAGE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		return memory.New(), nil
	}

	awsCfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	dbClient := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
	return dydbstore.New(dbClient, cfg.AccountsTableName, cfg.PendingTransfersTableName, cfg.TransactionsTableName), nil
}

// Build opens the store and connects the delivery, event and rate limit backends.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Deps, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deps := &Deps{Store: store, Publisher: &events.NoOpPublisher{}}

	var producer *rabbitmq.Producer
	if cfg.RabbitMQURL != "" {
		producer, err = rabbitmq.NewProducer(cfg.RabbitMQURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		deps.closers = append(deps.closers, producer.Close)
		deps.Publisher = events.NewRabbitMQPublisher(producer, cfg.EventsExchange)
	}

	switch cfg.DeliveryDriver {
	case config.DeliverySQS:
		awsCfg, err := LoadAWSConfig(ctx)
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.Sender = delivery.NewSQSSender(sqs.NewFromConfig(awsCfg), cfg.SQSDeliveryQueueURL)
	case config.DeliveryRabbitMQ:
		deps.Sender = delivery.NewRabbitMQSender(producer, cfg.NotificationsExchange)
	default:
		logger.Warn("confirmation codes are written to the log; do not use this driver outside development")
		deps.Sender = &delivery.LogSender{Logger: logger}
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		deps.closers = append(deps.closers, func() { _ = client.Close() })
		deps.Limiter = ratelimit.NewRedisLimiter(client, "")
	} else {
		logger.Warn("REDIS_URL is not set; rate limiting is disabled")
	}

	return deps, nil
}

// NewOTPEngine creates the code engine from configuration.
func NewOTPEngine(cfg *config.Config) *otp.Engine {
	return otp.NewEngine(otp.Config{
		StepSeconds: cfg.OTPStepSeconds,
		Digits:      cfg.OTPDigits,
		Tolerance:   cfg.OTPToleranceSteps,
		Issuer:      cfg.OTPIssuer,
	})
}

// ServiceConfig maps configuration onto the transfer protocol tunables.
func ServiceConfig(cfg *config.Config) transfers.Config {
	return transfers.Config{
		PendingValidity:    cfg.PendingValidity(),
		DeliveryTimeout:    cfg.DeliveryTimeout(),
		Mode:               transfers.ConfirmMode(cfg.ConfirmMode),
		MaxConfirmAttempts: cfg.MaxConfirmAttempts,
		ClaimLease:         cfg.ClaimLease(),
		InitiateLimit:      cfg.RateLimitInitiate,
		ConfirmLimit:       cfg.RateLimitConfirm,
		RateLimitWindow:    cfg.RateLimitWindow(),
	}
}

// NewService wires the transfer service onto deps.
func NewService(cfg *config.Config, deps *Deps, logger *slog.Logger) *transfers.Service {
	var opts []transfers.Option
	if deps.Limiter != nil {
		opts = append(opts, transfers.WithRateLimiter(deps.Limiter))
	}
	return transfers.NewService(deps.Store, NewOTPEngine(cfg), deps.Sender, deps.Publisher, logger, ServiceConfig(cfg), opts...)
}
