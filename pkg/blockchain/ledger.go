package blockchain

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shamank/zg-compute-go/pkg/model"
	"go.uber.org/zap"
)

// GetLedger reads the ledger of user. An unknown ledger is returned with a
// zero User; see model.Ledger.Exists.
func (evm *EVMClient) GetLedger(ctx context.Context, user common.Address) (*model.Ledger, error) {
	entry, err := evm.Ledger.GetLedger(&bind.CallOpts{Context: ctx, From: user}, user)
	if err != nil {
		zap.L().Error("failed to read ledger", zap.String("user", user.Hex()), zap.Error(err))
		return nil, err
	}
	return &model.Ledger{
		User:             entry.User,
		AvailableBalance: entry.AvailableBalance,
		TotalBalance:     entry.TotalBalance,
	}, nil
}

// AddLedger submits addLedger("") funded with value neuron.
func (evm *EVMClient) AddLedger(ctx context.Context, pk *ecdsa.PrivateKey, value *big.Int) (*types.Transaction, error) {
	opts, err := evm.GetTransactOpts(ctx, pk, value)
	if err != nil {
		return nil, err
	}
	tx, err := evm.Ledger.AddLedger(opts, "")
	if err != nil {
		zap.L().Error("addLedger failed", zap.Error(err))
		return nil, err
	}
	zap.L().Debug("addLedger submitted", zap.String("tx", tx.Hash().Hex()), zap.String("value", value.String()))
	return tx, nil
}

// DepositFund submits depositFund() with value neuron.
func (evm *EVMClient) DepositFund(ctx context.Context, pk *ecdsa.PrivateKey, value *big.Int) (*types.Transaction, error) {
	opts, err := evm.GetTransactOpts(ctx, pk, value)
	if err != nil {
		return nil, err
	}
	tx, err := evm.Ledger.DepositFund(opts)
	if err != nil {
		zap.L().Error("depositFund failed", zap.Error(err))
		return nil, err
	}
	zap.L().Debug("depositFund submitted", zap.String("tx", tx.Hash().Hex()), zap.String("value", value.String()))
	return tx, nil
}

// TransferFund moves amount neuron from the ledger to the sub-account at
// provider for serviceType.
func (evm *EVMClient) TransferFund(ctx context.Context, pk *ecdsa.PrivateKey, provider common.Address, serviceType string, amount *big.Int) (*types.Transaction, error) {
	opts, err := evm.GetTransactOpts(ctx, pk, nil)
	if err != nil {
		return nil, err
	}
	tx, err := evm.Ledger.TransferFund(opts, provider, serviceType, amount)
	if err != nil {
		zap.L().Error("transferFund failed", zap.String("provider", provider.Hex()), zap.Error(err))
		return nil, err
	}
	zap.L().Debug("transferFund submitted",
		zap.String("tx", tx.Hash().Hex()),
		zap.String("provider", provider.Hex()),
		zap.String("amount", amount.String()))
	return tx, nil
}
