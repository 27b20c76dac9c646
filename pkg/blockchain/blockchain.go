package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

var (
	// HashPrefix32Bytes is the standard Ethereum personal-sign prefix for 32-byte
	// messages: "\x19Ethereum Signed Message:\n32".
	// See Geth reference:
	// https://github.com/ethereum/go-ethereum/blob/bf468a81ec261745b25206b2a596eb0ee0a24a74/internal/ethapi/api.go#L361
	HashPrefix32Bytes = []byte("\x19Ethereum Signed Message:\n32")

	// ErrChainIDMismatch is returned by InitEvm when the endpoint serves a
	// different chain than the configured network.
	ErrChainIDMismatch = errors.New("chain ID mismatch")
)

// Backend is the subset of *ethclient.Client used by EVMClient.
type Backend interface {
	bind.ContractBackend
	ChainID(ctx context.Context) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

// EVMClient holds a connected backend and bindings for the ledger manager
// and inference serving contracts.
type EVMClient struct {
	Client  Backend
	ChainID *big.Int
	Ledger  *LedgerContract
	Serving *ServingContract
}

// InitEvm dials endpoint, checks its chain ID against network (when network
// is a decimal chain ID) and binds the ledger and serving contracts.
//
// Parameters:
//   - network: expected chain ID, e.g. "16601"; empty skips the check.
//   - endpoint: RPC/WS endpoint URL to dial.
//   - ledgerAddr, servingAddr: hex contract addresses.
//   - dialTimeout: bound for dialing and the chain ID query.
func InitEvm(network, endpoint, ledgerAddr, servingAddr string, dialTimeout time.Duration) (*EVMClient, error) {
	ctx, cancel := withTimeout(context.Background(), dialTimeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		zap.L().Error("Failed to ethdial", zap.Error(err))
		return nil, err
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		zap.L().Error("Failed to get chain ID", zap.Error(err))
		return nil, fmt.Errorf("get chain id: %w", err)
	}

	if want, ok := new(big.Int).SetString(network, 10); ok && want.Cmp(chainID) != 0 {
		client.Close()
		return nil, fmt.Errorf("%w: endpoint serves %s, configured %s", ErrChainIDMismatch, chainID, want)
	}

	eth, err := NewEVMClient(client, chainID, ledgerAddr, servingAddr)
	if err != nil {
		client.Close()
		return nil, err
	}
	zap.L().Debug("EVM client ready",
		zap.String("chainID", chainID.String()),
		zap.String("ledger", ledgerAddr),
		zap.String("serving", servingAddr))
	return eth, nil
}

// NewEVMClient binds the contracts on an already connected backend.
func NewEVMClient(backend Backend, chainID *big.Int, ledgerAddr, servingAddr string) (*EVMClient, error) {
	if !common.IsHexAddress(ledgerAddr) {
		return nil, fmt.Errorf("invalid ledger contract address %q", ledgerAddr)
	}
	if !common.IsHexAddress(servingAddr) {
		return nil, fmt.Errorf("invalid serving contract address %q", servingAddr)
	}

	ledger, err := NewLedgerContract(common.HexToAddress(ledgerAddr), backend)
	if err != nil {
		return nil, err
	}
	serving, err := NewServingContract(common.HexToAddress(servingAddr), backend)
	if err != nil {
		return nil, err
	}

	return &EVMClient{
		Client:  backend,
		ChainID: chainID,
		Ledger:  ledger,
		Serving: serving,
	}, nil
}

// Close releases the underlying RPC connection.
func (evm *EVMClient) Close() {
	if evm != nil && evm.Client != nil {
		evm.Client.Close()
	}
}
