// Package fakebroker is an in-memory sdk.Broker for tests.
package fakebroker

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shamank/zg-compute-go/pkg/blockchain"
	"github.com/shamank/zg-compute-go/pkg/model"
	"github.com/shamank/zg-compute-go/pkg/sdk"
	"github.com/shopspring/decimal"
)

// Broker records every call and answers from its exported fields. Set an
// *Err field to make the matching operation fail.
type Broker struct {
	mu sync.Mutex

	User     common.Address
	Ledger   *model.Ledger // nil means no ledger yet
	Services []model.Service
	Metadata map[string]*model.ServiceMetadata

	LedgerErr    error
	AddLedgerErr error
	DepositErr   error
	ListErr      error
	MetadataErr  error
	HeadersErr   error
	SettleErr    error

	HeaderCalls int
	LedgerCalls int
	Added       []decimal.Decimal
	Deposits    []decimal.Decimal
	Settled     []decimal.Decimal
	Closed      bool
}

var _ sdk.Broker = (*Broker)(nil)

// New returns a Broker for user with no ledger.
func New(user common.Address) *Broker {
	return &Broker{User: user, Metadata: map[string]*model.ServiceMetadata{}}
}

// WithService registers a service for provider with the given endpoint and model.
func (b *Broker) WithService(provider, endpoint, modelName string) *Broker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Services = append(b.Services, model.Service{
		Provider:    common.HexToAddress(provider),
		ServiceType: model.ServiceTypeInference,
		URL:         endpoint,
		InputPrice:  big.NewInt(1),
		OutputPrice: big.NewInt(1),
		Model:       modelName,
	})
	b.Metadata[provider] = &model.ServiceMetadata{Endpoint: endpoint, Model: modelName}
	return b
}

func (b *Broker) Address() common.Address { return b.User }

func (b *Broker) GetLedger(context.Context) (*model.Ledger, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.LedgerCalls++
	if b.LedgerErr != nil {
		return nil, b.LedgerErr
	}
	if b.Ledger == nil {
		return nil, sdk.ErrLedgerNotFound
	}
	cp := *b.Ledger
	return &cp, nil
}

func (b *Broker) AddLedger(_ context.Context, amount decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.AddLedgerErr != nil {
		return b.AddLedgerErr
	}
	value, err := blockchain.A0GIToNeuron(amount)
	if err != nil {
		return err
	}
	b.Added = append(b.Added, amount)
	b.Ledger = &model.Ledger{User: b.User, AvailableBalance: value, TotalBalance: new(big.Int).Set(value)}
	return nil
}

func (b *Broker) DepositFund(_ context.Context, amount decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.DepositErr != nil {
		return b.DepositErr
	}
	if b.Ledger == nil {
		return sdk.ErrLedgerNotFound
	}
	value, err := blockchain.A0GIToNeuron(amount)
	if err != nil {
		return err
	}
	b.Deposits = append(b.Deposits, amount)
	b.Ledger.AvailableBalance = new(big.Int).Add(b.Ledger.AvailableBalance, value)
	b.Ledger.TotalBalance = new(big.Int).Add(b.Ledger.TotalBalance, value)
	return nil
}

func (b *Broker) ListServices(context.Context) ([]model.Service, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ListErr != nil {
		return nil, b.ListErr
	}
	return append([]model.Service(nil), b.Services...), nil
}

func (b *Broker) GetServiceMetadata(_ context.Context, provider string) (*model.ServiceMetadata, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.MetadataErr != nil {
		return nil, b.MetadataErr
	}
	meta, ok := b.Metadata[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", sdk.ErrServiceNotFound, provider)
	}
	cp := *meta
	return &cp, nil
}

// GetRequestHeaders returns a header set whose Nonce is the call count, so
// tests can tell header sets apart.
func (b *Broker) GetRequestHeaders(_ context.Context, provider, content string) (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.HeaderCalls++
	if b.HeadersErr != nil {
		return nil, b.HeadersErr
	}
	return map[string]string{
		"Address":  b.User.Hex(),
		"Provider": provider,
		"Nonce":    strconv.Itoa(b.HeaderCalls),
	}, nil
}

func (b *Broker) SettleFee(_ context.Context, _ string, fee decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Settled = append(b.Settled, fee)
	return b.SettleErr
}

func (b *Broker) Close() {
	b.mu.Lock()
	b.Closed = true
	b.mu.Unlock()
}
