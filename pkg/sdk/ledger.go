package sdk

import (
	"context"
	"fmt"
	"math/big"

	"github.com/shamank/zg-compute-go/pkg/blockchain"
	"github.com/shamank/zg-compute-go/pkg/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetLedger reads the user's ledger. A ledger that was never created is
// reported as ErrLedgerNotFound.
func (c *Core) GetLedger(ctx context.Context) (*model.Ledger, error) {
	ctx, cancel := withTimeout(ctx, c.timeouts.ChainRead)
	defer cancel()

	ledger, err := c.chain.GetLedger(ctx, c.Address())
	if err != nil {
		return nil, fmt.Errorf("get ledger: %w", err)
	}
	if !ledger.Exists() {
		return nil, ErrLedgerNotFound
	}
	return ledger, nil
}

// AddLedger creates the user's ledger funded with amount A0GI.
func (c *Core) AddLedger(ctx context.Context, amount decimal.Decimal) error {
	value, err := toNeuron(amount)
	if err != nil {
		return err
	}

	submitCtx, cancel := withTimeout(ctx, c.timeouts.ChainSubmit)
	tx, err := c.chain.AddLedger(submitCtx, c.key, value)
	cancel()
	if err != nil {
		return fmt.Errorf("add ledger: %w", err)
	}
	zap.L().Info("ledger creation submitted", zap.String("tx", tx.Hash().Hex()), zap.String("amount", amount.String()))

	return c.waitMined(ctx, tx)
}

// DepositFund adds amount A0GI to the user's ledger.
func (c *Core) DepositFund(ctx context.Context, amount decimal.Decimal) error {
	value, err := toNeuron(amount)
	if err != nil {
		return err
	}

	submitCtx, cancel := withTimeout(ctx, c.timeouts.ChainSubmit)
	tx, err := c.chain.DepositFund(submitCtx, c.key, value)
	cancel()
	if err != nil {
		return fmt.Errorf("deposit fund: %w", err)
	}
	zap.L().Info("deposit submitted", zap.String("tx", tx.Hash().Hex()), zap.String("amount", amount.String()))

	return c.waitMined(ctx, tx)
}

func toNeuron(amount decimal.Decimal) (*big.Int, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive, got %s", amount)
	}
	return blockchain.A0GIToNeuron(amount)
}
