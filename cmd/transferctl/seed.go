package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/chris/otp-transfers/pkg/app"
	"github.com/chris/otp-transfers/pkg/config"
	"github.com/chris/otp-transfers/pkg/models"
	"github.com/chris/otp-transfers/pkg/money"
	"github.com/chris/otp-transfers/pkg/storage"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func seedAccountCmd() *cobra.Command {
	var account models.Account
	var balances []string

	cmd := &cobra.Command{
		Use:   "seed-account",
		Short: "Create an account with opening balances",
		Example: `  transferctl seed-account --name Alice --phone +639171234567 --balance PHP:1000.00
  transferctl seed-account --id 3f0c... --email bob@example.com --balance USD:25`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.StorageDriver == config.StorageMemory {
				return fmt.Errorf("seeding the memory store has no lasting effect; set STORAGE_DRIVER=%s", config.StorageDynamoDB)
			}
			store, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			created, err := seedAccount(cmd.Context(), store, account, balances)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created account %s\n", created.AccountID)
			return nil
		},
	}

	cmd.Flags().StringVar(&account.AccountID, "id", "", "Account ID (default: random UUID)")
	cmd.Flags().StringVar(&account.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&account.PhoneNumber, "phone", "", "E.164 phone number, also the SMS delivery address")
	cmd.Flags().StringVar(&account.Email, "email", "", "Email address")
	cmd.Flags().StringArrayVar(&balances, "balance", nil, "Opening balance as CURRENCY:AMOUNT (repeatable)")

	return cmd
}

func seedAccount(ctx context.Context, store storage.AccountWriter, account models.Account, balances []string) (*models.Account, error) {
	if account.PhoneNumber == "" && account.Email == "" {
		return nil, fmt.Errorf("an account needs a phone number or an email to receive codes")
	}
	if account.AccountID == "" {
		account.AccountID = uuid.NewString()
	} else if _, err := uuid.Parse(account.AccountID); err != nil {
		return nil, fmt.Errorf("invalid account id %q: %w", account.AccountID, err)
	}
	account.Email = strings.ToLower(account.Email)

	parsed, err := parseBalances(balances)
	if err != nil {
		return nil, err
	}
	account.Balances = parsed

	created, err := store.CreateAccount(ctx, &account)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return created, nil
}

func parseBalances(entries []string) (map[string]int64, error) {
	balances := make(map[string]int64, len(entries))
	for _, entry := range entries {
		code, amount, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("invalid balance %q, want CURRENCY:AMOUNT", entry)
		}
		currency, err := money.NormalizeCurrency(code)
		if err != nil {
			return nil, err
		}
		units, err := money.ToMinorUnits(amount, currency)
		if err != nil {
			return nil, fmt.Errorf("invalid balance %q: %w", entry, err)
		}
		if _, dup := balances[currency]; dup {
			return nil, fmt.Errorf("duplicate balance for %s", currency)
		}
		balances[currency] = units
	}
	return balances, nil
}
