// Package config loads service configuration from the environment (and an optional .env file).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ConfirmModeBurn  = "burn"
	ConfirmModeClaim = "claim"

	StorageDynamoDB = "dynamodb"
	StorageMemory   = "memory"

	DeliveryLog      = "log"
	DeliverySQS      = "sqs"
	DeliveryRabbitMQ = "rabbitmq"
)

// Config holds all configuration for the transfer service.
type Config struct {
	HTTPPort string `mapstructure:"HTTP_PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	StorageDriver             string `mapstructure:"STORAGE_DRIVER"`
	DynamoDBEndpoint          string `mapstructure:"DYNAMODB_ENDPOINT"`
	AccountsTableName         string `mapstructure:"DYNAMODB_ACCOUNTS_TABLE_NAME"`
	PendingTransfersTableName string `mapstructure:"DYNAMODB_PENDING_TRANSFERS_TABLE_NAME"`
	TransactionsTableName     string `mapstructure:"DYNAMODB_TRANSACTIONS_TABLE_NAME"`

	OTPStepSeconds         int    `mapstructure:"OTP_STEP_SECONDS"`
	OTPDigits              int    `mapstructure:"OTP_DIGITS"`
	OTPToleranceSteps      int    `mapstructure:"OTP_TOLERANCE_STEPS"`
	OTPIssuer              string `mapstructure:"OTP_ISSUER"`
	PendingValiditySeconds int    `mapstructure:"PENDING_VALIDITY_SECONDS"`

	ConfirmMode        string `mapstructure:"CONFIRM_MODE"`
	MaxConfirmAttempts int    `mapstructure:"MAX_CONFIRM_ATTEMPTS"`
	ClaimLeaseSeconds  int    `mapstructure:"CLAIM_LEASE_SECONDS"`

	DeliveryDriver         string `mapstructure:"DELIVERY_DRIVER"`
	DeliveryTimeoutSeconds int    `mapstructure:"DELIVERY_TIMEOUT_SECONDS"`
	SQSDeliveryQueueURL    string `mapstructure:"SQS_DELIVERY_QUEUE_URL"`

	RabbitMQURL           string `mapstructure:"RABBITMQ_URL"`
	NotificationsExchange string `mapstructure:"RABBITMQ_NOTIFICATIONS_EXCHANGE"`
	EventsExchange        string `mapstructure:"RABBITMQ_EVENTS_EXCHANGE"`

	RedisURL               string `mapstructure:"REDIS_URL"`
	RateLimitInitiate      int    `mapstructure:"RATE_LIMIT_INITIATE_PER_WINDOW"`
	RateLimitConfirm       int    `mapstructure:"RATE_LIMIT_CONFIRM_PER_WINDOW"`
	RateLimitWindowSeconds int    `mapstructure:"RATE_LIMIT_WINDOW_SECONDS"`

	JWTSigningKey string `mapstructure:"JWT_SIGNING_KEY"`
	SweepSchedule string `mapstructure:"SWEEP_SCHEDULE"`
}

var defaults = map[string]interface{}{
	"HTTP_PORT":                             "8080",
	"LOG_LEVEL":                             "info",
	"STORAGE_DRIVER":                        StorageDynamoDB,
	"DYNAMODB_ENDPOINT":                     "",
	"DYNAMODB_ACCOUNTS_TABLE_NAME":          "",
	"DYNAMODB_PENDING_TRANSFERS_TABLE_NAME": "",
	"DYNAMODB_TRANSACTIONS_TABLE_NAME":      "",
	"OTP_STEP_SECONDS":                      60,
	"OTP_DIGITS":                            6,
	"OTP_TOLERANCE_STEPS":                   1,
	"OTP_ISSUER":                            "otp-transfers",
	"PENDING_VALIDITY_SECONDS":              300,
	"CONFIRM_MODE":                          ConfirmModeBurn,
	"MAX_CONFIRM_ATTEMPTS":                  5,
	"CLAIM_LEASE_SECONDS":                   30,
	"DELIVERY_DRIVER":                       DeliveryLog,
	"DELIVERY_TIMEOUT_SECONDS":              10,
	"SQS_DELIVERY_QUEUE_URL":                "",
	"RABBITMQ_URL":                          "",
	"RABBITMQ_NOTIFICATIONS_EXCHANGE":       "notifications",
	"RABBITMQ_EVENTS_EXCHANGE":              "transfers",
	"REDIS_URL":                             "",
	"RATE_LIMIT_INITIATE_PER_WINDOW":        10,
	"RATE_LIMIT_CONFIRM_PER_WINDOW":         10,
	"RATE_LIMIT_WINDOW_SECONDS":             60,
	"JWT_SIGNING_KEY":                       "",
	"SWEEP_SCHEDULE":                        "@every 1m",
}

// LoadConfig reads configuration from a .env file, if present, and the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ConfirmMode = strings.ToLower(strings.TrimSpace(cfg.ConfirmMode))
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.DeliveryDriver = strings.ToLower(strings.TrimSpace(cfg.DeliveryDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks option values and the settings each selected driver requires.
func (c *Config) Validate() error {
	var errs []error

	if c.OTPStepSeconds <= 0 {
		errs = append(errs, errors.New("OTP_STEP_SECONDS must be positive"))
	}
	if c.OTPDigits < 6 || c.OTPDigits > 8 {
		errs = append(errs, errors.New("OTP_DIGITS must be between 6 and 8"))
	}
	if c.OTPToleranceSteps < 0 {
		errs = append(errs, errors.New("OTP_TOLERANCE_STEPS must not be negative"))
	}
	if c.PendingValiditySeconds <= 0 {
		errs = append(errs, errors.New("PENDING_VALIDITY_SECONDS must be positive"))
	}

	switch c.ConfirmMode {
	case ConfirmModeBurn:
	case ConfirmModeClaim:
		if c.ClaimLeaseSeconds <= 0 {
			errs = append(errs, errors.New("CLAIM_LEASE_SECONDS must be positive in claim mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CONFIRM_MODE %q", c.ConfirmMode))
	}

	switch c.StorageDriver {
	case StorageMemory:
	case StorageDynamoDB:
		if c.AccountsTableName == "" || c.PendingTransfersTableName == "" || c.TransactionsTableName == "" {
			errs = append(errs, errors.New("one or more DynamoDB table name environment variables are not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}

	switch c.DeliveryDriver {
	case DeliveryLog:
	case DeliverySQS:
		if c.SQSDeliveryQueueURL == "" {
			errs = append(errs, errors.New("SQS_DELIVERY_QUEUE_URL is required for the sqs delivery driver"))
		}
	case DeliveryRabbitMQ:
		if c.RabbitMQURL == "" {
			errs = append(errs, errors.New("RABBITMQ_URL is required for the rabbitmq delivery driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DELIVERY_DRIVER %q", c.DeliveryDriver))
	}

	return errors.Join(errs...)
}

func (c *Config) PendingValidity() time.Duration {
	return time.Duration(c.PendingValiditySeconds) * time.Second
}

func (c *Config) DeliveryTimeout() time.Duration {
	return time.Duration(c.DeliveryTimeoutSeconds) * time.Second
}

func (c *Config) ClaimLease() time.Duration {
	return time.Duration(c.ClaimLeaseSeconds) * time.Second
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
