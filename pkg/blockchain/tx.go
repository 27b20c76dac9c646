package blockchain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"go.uber.org/zap"
)

// GetTransactOpts creates a transactor bound to the given chainID and ECDSA key.
// The returned TransactOpts can be used to send transactions to the blockchain.
func GetTransactOpts(chainID *big.Int, pk *ecdsa.PrivateKey) (*bind.TransactOpts, error) {
	if pk == nil {
		return nil, fmt.Errorf("private key is required for transactions")
	}
	opts, err := bind.NewKeyedTransactorWithChainID(pk, chainID)
	if err != nil {
		zap.L().Error("failed to create transactor", zap.Error(err))
		return nil, err
	}
	return opts, nil
}

// GetTransactOpts creates a transactor from the EVM client context. The chain
// ID resolved at dial time is used; value is attached for payable methods
// and may be nil.
func (evm *EVMClient) GetTransactOpts(ctx context.Context, pk *ecdsa.PrivateKey, value *big.Int) (*bind.TransactOpts, error) {
	if pk == nil {
		return nil, fmt.Errorf("private key is required for transactions")
	}

	chainID := evm.ChainID
	if chainID == nil {
		var err error
		chainID, err = evm.Client.ChainID(ctx)
		if err != nil {
			zap.L().Error("failed to get chain ID", zap.Error(err))
			return nil, err
		}
		evm.ChainID = chainID
	}

	opts, err := GetTransactOpts(chainID, pk)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	opts.Value = value
	return opts, nil
}
