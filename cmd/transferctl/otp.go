package main

import (
	"fmt"
	"time"

	"github.com/chris/otp-transfers/pkg/otp"
	"github.com/spf13/cobra"
)

func otpCmd() *cobra.Command {
	var cfg otp.Config

	cmd := &cobra.Command{
		Use:   "otp [secret]",
		Short: "Print the current confirmation code for a pending transfer secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := otp.NewEngine(cfg)
			now := time.Now()
			code, err := engine.CodeAt(args[0], now)
			if err != nil {
				return err
			}
			step := int64(cfg.StepSeconds)
			remaining := step - now.Unix()%step
			fmt.Fprintf(cmd.OutOrStdout(), "%s (valid for %ds of this step)\n", code, remaining)
			return nil
		},
	}

	cmd.Flags().IntVar(&cfg.StepSeconds, "step", otp.DefaultStepSeconds, "Time step in seconds")
	cmd.Flags().IntVar(&cfg.Digits, "digits", otp.DefaultDigits, "Code length")

	return cmd
}
