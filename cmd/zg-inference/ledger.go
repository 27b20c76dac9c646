package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/shamank/zg-compute-go/pkg/blockchain"
	"github.com/shamank/zg-compute-go/pkg/sdk"
)

const ledgerLongDesc string = `Show or fund the wallet's ledger.

Examples:
  zg-inference ledger
  zg-inference ledger deposit 0.5
  zg-inference ledger create 0.1`

const ledgerShortDesc string = "Show or fund the ledger"

type ledgerCommander struct {
	root *rootCommander
}

func newLedgerCmd(root *rootCommander) *cobra.Command {
	cmder := &ledgerCommander{root: root}

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: ledgerShortDesc,
		Long:  ledgerLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.show(cmd.Context(), cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "deposit <amount>",
		Short: "Deposit A0GI into an existing ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.fund(cmd.Context(), cmd, args[0], false)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "create <amount>",
		Short: "Create the ledger funded with A0GI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.fund(cmd.Context(), cmd, args[0], true)
		},
	})

	return cmd
}

func (c *ledgerCommander) show(ctx context.Context, cmd *cobra.Command) error {
	broker, err := c.root.open()
	if err != nil {
		return err
	}
	defer broker.Close()

	ledger, err := broker.GetLedger(ctx)
	if errors.Is(err, sdk.ErrLedgerNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "No ledger for %s\n", broker.Address().Hex())
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not read ledger: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Ledger of %s\n", ledger.User.Hex())
	fmt.Fprintf(out, "  available: %s A0GI\n", blockchain.NeuronToA0GI(ledger.AvailableBalance).String())
	fmt.Fprintf(out, "  locked:    %s A0GI\n", blockchain.NeuronToA0GI(ledger.Locked()).String())
	fmt.Fprintf(out, "  total:     %s A0GI\n", blockchain.NeuronToA0GI(ledger.TotalBalance).String())
	return nil
}

func (c *ledgerCommander) fund(ctx context.Context, cmd *cobra.Command, raw string, create bool) error {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", amount)
	}

	broker, err := c.root.open()
	if err != nil {
		return err
	}
	defer broker.Close()

	if create {
		err = broker.AddLedger(ctx, amount)
	} else {
		err = broker.DepositFund(ctx, amount)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Ledger funded with %s A0GI\n", amount.String())
	return nil
}
