package model

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ServiceTypeInference is the service type registered by chat-completion providers.
const ServiceTypeInference = "inference"

// Ledger is the user's funding record held by the ledger contract. Balances
// are in neuron (1 A0GI = 10^18 neuron).
type Ledger struct {
	User             common.Address `json:"user"`
	AvailableBalance *big.Int       `json:"available_balance"`
	TotalBalance     *big.Int       `json:"total_balance"`
}

// Exists reports whether the ledger has been created on chain. The contract
// returns a zero user for unknown ledgers.
func (l *Ledger) Exists() bool {
	return l != nil && l.User != (common.Address{})
}

// Locked returns the part of the total balance already transferred to
// provider sub-accounts.
func (l *Ledger) Locked() *big.Int {
	if l == nil || l.TotalBalance == nil {
		return new(big.Int)
	}
	if l.AvailableBalance == nil {
		return new(big.Int).Set(l.TotalBalance)
	}
	return new(big.Int).Sub(l.TotalBalance, l.AvailableBalance)
}

// Account is the user's sub-account at a single provider inside the serving
// contract.
type Account struct {
	User          common.Address `json:"user"`
	Provider      common.Address `json:"provider"`
	Nonce         *big.Int       `json:"nonce"`
	Balance       *big.Int       `json:"balance"`
	PendingRefund *big.Int       `json:"pending_refund"`
}

// Spendable returns Balance minus PendingRefund, never below zero.
func (a *Account) Spendable() *big.Int {
	if a == nil || a.Balance == nil {
		return new(big.Int)
	}
	out := new(big.Int).Set(a.Balance)
	if a.PendingRefund != nil {
		out.Sub(out, a.PendingRefund)
	}
	if out.Sign() < 0 {
		return new(big.Int)
	}
	return out
}

// Service is a provider registration read from the serving contract. Prices
// are neuron per token.
type Service struct {
	Provider       common.Address `json:"provider"`
	ServiceType    string         `json:"service_type"`
	URL            string         `json:"url"`
	InputPrice     *big.Int       `json:"input_price"`
	OutputPrice    *big.Int       `json:"output_price"`
	UpdatedAt      *big.Int       `json:"updated_at"`
	Model          string         `json:"model"`
	Verifiability  string         `json:"verifiability"`
	AdditionalInfo string         `json:"additional_info"`
}

// ProxyEndpoint returns the OpenAI-compatible base URL exposed by the
// provider's serving proxy.
func (s *Service) ProxyEndpoint() string {
	return strings.TrimRight(s.URL, "/") + "/v1/proxy"
}

// SettleEndpoint returns the URL accepting fee settlements.
func (s *Service) SettleEndpoint() string {
	return strings.TrimRight(s.URL, "/") + "/v1/settle-fee"
}

// ServiceMetadata is what a client needs to call a provider.
type ServiceMetadata struct {
	Endpoint string     `json:"endpoint"`
	Model    string     `json:"model"`
	Card     *ModelCard `json:"card,omitempty"`
}

// ModelCard is an optional JSON document referenced by
// Service.AdditionalInfo.
type ModelCard struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	ContextLength int    `json:"context_length"`
	License       string `json:"license"`
}
