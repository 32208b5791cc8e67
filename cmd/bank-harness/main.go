package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/banklab/udpbank/harness"
)

func main() {
	cfg := harness.DefaultConfig()
	var timeoutMs int
	var retransmits int
	var reportPath string

	cmd := &cobra.Command{
		Use:   "bank-harness",
		Short: "Compare AT_MOST_ONCE and AT_LEAST_ONCE under simulated loss",
		Long: `bank-harness spins up one server per invocation semantic, drives the
same DEPOSIT load through each under the configured loss rates, and prints
how their final balances diverge.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Timeout = time.Duration(timeoutMs) * time.Millisecond
			cfg.Retransmits = retransmits

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			results, err := harness.Run(ctx, cfg)
			if err != nil {
				return errors.Wrap(err, "run comparison")
			}

			harness.PrintTable(os.Stdout, results)

			if reportPath != "" {
				if err := harness.WriteReport(reportPath, results); err != nil {
					return errors.Wrapf(err, "write report to %s", reportPath)
				}
				fmt.Printf("report written to %s\n", reportPath)
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&cfg.LossReq, "lossReq", cfg.LossReq, "probability of dropping an inbound request")
	flags.Float64Var(&cfg.LossRep, "lossRep", cfg.LossRep, "probability of dropping an outbound reply")
	flags.UintVar(&cfg.Retries, "retry", cfg.Retries, "total send attempts per deposit")
	flags.IntVar(&timeoutMs, "timeout", int(cfg.Timeout/time.Millisecond), "per-attempt timeout in milliseconds")
	flags.Float64Var(&cfg.DepositAmount, "amount", cfg.DepositAmount, "deposit amount per call")
	flags.Float64Var(&cfg.InitialAmount, "initial", cfg.InitialAmount, "starting balance for each comparison account")
	flags.IntVar(&retransmits, "calls", cfg.Retransmits, "number of simulated concurrent deposit calls per semantic")
	flags.Int64Var(&cfg.Concurrency, "concurrency", cfg.Concurrency, "max simulated clients in flight at once")
	flags.StringVar(&reportPath, "report", "", "optional path to write the comparison table to")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
