package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 60, cfg.OTPStepSeconds)
	assert.Equal(t, 6, cfg.OTPDigits)
	assert.Equal(t, 1, cfg.OTPToleranceSteps)
	assert.Equal(t, 5*time.Minute, cfg.PendingValidity())
	assert.Equal(t, ConfirmModeBurn, cfg.ConfirmMode)
	assert.Equal(t, 5, cfg.MaxConfirmAttempts)
	assert.Equal(t, 30*time.Second, cfg.ClaimLease())
	assert.Equal(t, 10*time.Second, cfg.DeliveryTimeout())
	assert.Equal(t, DeliveryLog, cfg.DeliveryDriver)
	assert.Equal(t, "@every 1m", cfg.SweepSchedule)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "DynamoDB")
	t.Setenv("DYNAMODB_ACCOUNTS_TABLE_NAME", "accounts")
	t.Setenv("DYNAMODB_PENDING_TRANSFERS_TABLE_NAME", "pending")
	t.Setenv("DYNAMODB_TRANSACTIONS_TABLE_NAME", "transactions")
	t.Setenv("CONFIRM_MODE", "Claim")
	t.Setenv("OTP_DIGITS", "8")
	t.Setenv("PENDING_VALIDITY_SECONDS", "120")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageDynamoDB, cfg.StorageDriver)
	assert.Equal(t, "pending", cfg.PendingTransfersTableName)
	assert.Equal(t, ConfirmModeClaim, cfg.ConfirmMode)
	assert.Equal(t, 8, cfg.OTPDigits)
	assert.Equal(t, 2*time.Minute, cfg.PendingValidity())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadConfig_MissingTableNames(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "dynamodb")
	t.Setenv("DYNAMODB_ACCOUNTS_TABLE_NAME", "")

	_, err := LoadConfig()

	assert.ErrorContains(t, err, "table name")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			StorageDriver:          StorageMemory,
			DeliveryDriver:         DeliveryLog,
			ConfirmMode:            ConfirmModeBurn,
			OTPStepSeconds:         60,
			OTPDigits:              6,
			PendingValiditySeconds: 300,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown confirm mode", mutate: func(c *Config) { c.ConfirmMode = "lock" }, wantErr: "CONFIRM_MODE"},
		{name: "claim mode without lease", mutate: func(c *Config) { c.ConfirmMode = ConfirmModeClaim }, wantErr: "CLAIM_LEASE_SECONDS"},
		{name: "short codes", mutate: func(c *Config) { c.OTPDigits = 4 }, wantErr: "OTP_DIGITS"},
		{name: "zero step", mutate: func(c *Config) { c.OTPStepSeconds = 0 }, wantErr: "OTP_STEP_SECONDS"},
		{name: "sqs without queue", mutate: func(c *Config) { c.DeliveryDriver = DeliverySQS }, wantErr: "SQS_DELIVERY_QUEUE_URL"},
		{name: "rabbitmq without url", mutate: func(c *Config) { c.DeliveryDriver = DeliveryRabbitMQ }, wantErr: "RABBITMQ_URL"},
		{name: "unknown storage", mutate: func(c *Config) { c.StorageDriver = "postgres" }, wantErr: "STORAGE_DRIVER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
