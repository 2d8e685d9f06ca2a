package main

import (
	"fmt"
	"log/slog"

	"github.com/chris/otp-transfers/pkg/app"
	"github.com/chris/otp-transfers/pkg/config"
	"github.com/chris/otp-transfers/pkg/sweeper"
	"github.com/spf13/cobra"
)

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired pending transfers once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			store, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))
			removed, err := sweeper.New(store, logger).Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired pending transfers\n", removed)
			return nil
		},
	}
}
