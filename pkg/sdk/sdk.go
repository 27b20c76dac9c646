package sdk

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shamank/zg-compute-go/pkg/blockchain"
	"github.com/shamank/zg-compute-go/pkg/config"
	"github.com/shamank/zg-compute-go/pkg/model"
	"github.com/shamank/zg-compute-go/pkg/payment"
	"github.com/shamank/zg-compute-go/pkg/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrLedgerNotFound is returned by GetLedger when the user has no ledger yet.
	ErrLedgerNotFound = errors.New("ledger not found")
	// ErrNoPrivateKey is returned by NewBroker when no signer key is configured.
	ErrNoPrivateKey = config.ErrPrivateKeyRequired
	// ErrServiceNotFound is returned when a provider has no registered service.
	ErrServiceNotFound = errors.New("service not found")
	// ErrInvalidProvider is returned for provider strings that are not hex addresses.
	ErrInvalidProvider = errors.New("invalid provider address")
)

// Broker is the client-side view of the compute network: the user's ledger,
// the registered inference services, per-request billing headers and fee
// settlement. Amounts are in A0GI.
type Broker interface {
	// Address returns the wallet address requests are billed to.
	Address() common.Address

	// GetLedger returns the user's ledger or ErrLedgerNotFound.
	GetLedger(ctx context.Context) (*model.Ledger, error)
	// AddLedger creates the ledger funded with amount and waits for it to be mined.
	AddLedger(ctx context.Context, amount decimal.Decimal) error
	// DepositFund adds amount to an existing ledger and waits for it to be mined.
	DepositFund(ctx context.Context, amount decimal.Decimal) error

	// ListServices returns every registered service.
	ListServices(ctx context.Context) ([]model.Service, error)
	// GetServiceMetadata resolves the endpoint and model of provider.
	GetServiceMetadata(ctx context.Context, provider string) (*model.ServiceMetadata, error)

	// GetRequestHeaders returns freshly signed billing headers for content.
	// Headers must not be reused across requests.
	GetRequestHeaders(ctx context.Context, provider, content string) (map[string]string, error)
	// SettleFee pays fee owed to provider so it accepts further requests.
	SettleFee(ctx context.Context, provider string, fee decimal.Decimal) error

	// Close releases network resources.
	Close()
}

// init configures a default global zap logger for the library. Applications may
// replace it with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// chain is the on-chain surface used by Core; *blockchain.EVMClient implements it.
type chain interface {
	GetLedger(ctx context.Context, user common.Address) (*model.Ledger, error)
	AddLedger(ctx context.Context, pk *ecdsa.PrivateKey, value *big.Int) (*types.Transaction, error)
	DepositFund(ctx context.Context, pk *ecdsa.PrivateKey, value *big.Int) (*types.Transaction, error)
	TransferFund(ctx context.Context, pk *ecdsa.PrivateKey, provider common.Address, serviceType string, amount *big.Int) (*types.Transaction, error)
	ListServices(ctx context.Context) ([]model.Service, error)
	GetService(ctx context.Context, provider common.Address) (*model.Service, error)
	GetAccount(ctx context.Context, user, provider common.Address) (*model.Account, error)
	WaitForTransaction(ctx context.Context, txHash common.Hash, maxBackoff time.Duration) (*types.Receipt, error)
	Close()
}

// Core is the on-chain Broker implementation. Ledger and service state live
// in the contracts; Core signs requests and submits transactions for the
// configured wallet.
type Core struct {
	chain    chain
	storage  storage.Reader
	signer   *payment.Signer
	key      *ecdsa.PrivateKey
	http     *http.Client
	timeouts config.Timeouts

	mu       sync.Mutex
	services map[common.Address]model.Service
}

var _ Broker = (*Core)(nil)

// NewBroker validates cfg, dials the chain and returns a ready Core.
// It fails with ErrNoPrivateKey when no signer key is configured.
func NewBroker(cfg *config.Config) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.CheckBroker(); err != nil {
		return nil, err
	}

	address, key, err := blockchain.ParsePrivateKeyECDSA(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	zap.L().Debug("signer address", zap.String("addr", address.Hex()))

	st, err := storage.NewStorage(cfg.IpfsURL, cfg.LighthouseURL, cfg.Timeouts.MetadataFetch)
	if err != nil {
		return nil, err
	}

	evm, err := blockchain.InitEvm(cfg.Network.ChainID, cfg.RPCAddr, cfg.LedgerAddr, cfg.ServingAddr, cfg.Timeouts.Dial)
	if err != nil {
		zap.L().Error("Init ethereum client failed", zap.Error(err))
		return nil, err
	}

	return newCore(evm, st, key, &http.Client{Timeout: cfg.Timeouts.HTTPRequest}, cfg.Timeouts)
}

func newCore(ch chain, st storage.Reader, key *ecdsa.PrivateKey, httpClient *http.Client, timeouts config.Timeouts) (*Core, error) {
	signer, err := payment.NewSigner(key, nil)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Core{
		chain:    ch,
		storage:  st,
		signer:   signer,
		key:      key,
		http:     httpClient,
		timeouts: timeouts.WithDefaults(),
		services: make(map[common.Address]model.Service),
	}, nil
}

// Address returns the signer's wallet address.
func (c *Core) Address() common.Address {
	return c.signer.Address()
}

// Close shuts down the underlying RPC connection.
func (c *Core) Close() {
	if c.chain != nil {
		c.chain.Close()
	}
}

// waitMined blocks until tx is mined or ReceiptWait elapses.
func (c *Core) waitMined(ctx context.Context, tx *types.Transaction) error {
	ctx, cancel := withTimeout(ctx, c.timeouts.ReceiptWait)
	defer cancel()
	receipt, err := c.chain.WaitForTransaction(ctx, tx.Hash(), 8*time.Second)
	if err != nil {
		return fmt.Errorf("wait for %s: %w", tx.Hash().Hex(), err)
	}
	zap.L().Debug("transaction mined",
		zap.String("tx", tx.Hash().Hex()),
		zap.Stringer("block", receipt.BlockNumber))
	return nil
}

// withTimeout returns ctx unchanged if d <= 0, otherwise returns a child context with timeout d.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

func parseProvider(provider string) (common.Address, error) {
	if !common.IsHexAddress(provider) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidProvider, provider)
	}
	return common.HexToAddress(provider), nil
}
