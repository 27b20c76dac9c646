package config

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrRPCRequired is returned by Validate when no RPC endpoint is configured.
	ErrRPCRequired = errors.New("RPC address is required")
	// ErrPrivateKeyRequired is returned by CheckBroker when the signer key is missing.
	ErrPrivateKeyRequired = errors.New("private key is required")
	// ErrContractsRequired is returned by CheckBroker when a contract address is missing.
	ErrContractsRequired = errors.New("ledger and serving contract addresses are required")
)

const (
	// DefaultRPCAddr is the public 0G testnet EVM RPC endpoint.
	DefaultRPCAddr = "https://evmrpc-testnet.0g.ai"
	// DefaultProviderAddress is the provider used when none is configured.
	DefaultProviderAddress = "0xf07240Efa67755B5311bc75784a061eDB47165Dd"
	// DefaultInitialBalance is the ledger funding (in A0GI) used when a ledger is created.
	DefaultInitialBalance = "0.1"
	// DefaultMaxRetries bounds the number of inference attempts.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the fixed pause between inference attempts.
	DefaultRetryDelay = 2 * time.Second
	// DefaultMessage is the prompt sent when none is configured.
	DefaultMessage = "Hello, what can you do?"
	// DefaultFeePattern matches the provider error asking for an outstanding
	// fee to be settled; the first group carries the amount in A0GI.
	DefaultFeePattern = `expected\s+([0-9]+(?:\.[0-9]+)?)\s*A0GI`
	// DefaultIpfsURL is the IPFS RPC endpoint used to read model cards.
	DefaultIpfsURL = "https://ipfs.io:443"
	// DefaultLighthouseURL is the Lighthouse gateway used for filecoin:// URIs.
	DefaultLighthouseURL = "https://gateway.lighthouse.storage/ipfs/"
)

// Config holds every setting required to build the broker and run the
// inference demo. Start from Default, overlay a file and the environment,
// then call Validate.
type Config struct {
	// Network selects the target chain (chain ID and human-readable name).
	Network Network `json:"network" yaml:"network" toml:"network"`
	// RPCAddr is the EVM RPC/WS endpoint URL (required).
	RPCAddr string `json:"rpc_addr" yaml:"rpc_addr" toml:"rpc_addr"`
	// PrivateKey is the hex-encoded ECDSA key of the wallet paying for inference.
	PrivateKey string `json:"private_key" yaml:"private_key" toml:"private_key"`
	// LedgerAddr is the address of the ledger manager contract.
	LedgerAddr string `json:"ledger_addr" yaml:"ledger_addr" toml:"ledger_addr"`
	// ServingAddr is the address of the inference serving contract.
	ServingAddr string `json:"serving_addr" yaml:"serving_addr" toml:"serving_addr"`
	// ProviderAddress is the inference provider the demo talks to.
	ProviderAddress string `json:"provider_address" yaml:"provider_address" toml:"provider_address"`
	// InitialBalance is the amount of A0GI used to create a missing ledger.
	InitialBalance string `json:"initial_balance" yaml:"initial_balance" toml:"initial_balance"`
	// MaxRetries is the maximum number of inference attempts. Zero disables inference.
	MaxRetries int `json:"max_retries" yaml:"max_retries" toml:"max_retries"`
	// RetryDelay is the fixed pause between two attempts.
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay" toml:"retry_delay"`
	// Message is the content sent to the provider.
	Message string `json:"message" yaml:"message" toml:"message"`
	// FeePattern recognizes fee-settlement errors returned by providers.
	FeePattern string `json:"fee_pattern" yaml:"fee_pattern" toml:"fee_pattern"`
	// IpfsURL is the HTTP RPC endpoint of the IPFS node used to read model cards.
	IpfsURL string `json:"ipfs_url" yaml:"ipfs_url" toml:"ipfs_url"`
	// LighthouseURL is the HTTP gateway used to fetch filecoin:// content.
	LighthouseURL string `json:"lighthouse_url" yaml:"lighthouse_url" toml:"lighthouse_url"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug" toml:"debug"`
	// Timeouts configures per-operation timeouts. See Timeouts.WithDefaults.
	Timeouts Timeouts `json:"timeouts" yaml:"timeouts" toml:"timeouts"`
}

// Network describes a blockchain network. ChainID is compared against the
// endpoint's chain ID on dial; Name is informational.
type Network struct {
	ChainID string `json:"chain_id" yaml:"chain_id" toml:"chain_id"`
	Name    string `json:"network_name" yaml:"network_name" toml:"network_name"`
}

// Galileo is the 0G Galileo testnet.
var Galileo = Network{
	ChainID: "16601",
	Name:    "galileo",
}

// Timeouts controls operation deadlines.
// Zero values will be replaced by defaults in WithDefaults.
type Timeouts struct {
	Dial          time.Duration `json:"dial" yaml:"dial" toml:"dial"`                               // RPC dial
	ChainRead     time.Duration `json:"chain_read" yaml:"chain_read" toml:"chain_read"`             // eth_call, balance etc
	ChainSubmit   time.Duration `json:"chain_submit" yaml:"chain_submit" toml:"chain_submit"`       // send tx
	ReceiptWait   time.Duration `json:"receipt_wait" yaml:"receipt_wait" toml:"receipt_wait"`       // wait tx
	HTTPRequest   time.Duration `json:"http_request" yaml:"http_request" toml:"http_request"`       // provider calls
	MetadataFetch time.Duration `json:"metadata_fetch" yaml:"metadata_fetch" toml:"metadata_fetch"` // model cards
}

// Default returns a Config populated with every default value.
func Default() Config {
	return Config{
		Network:         Galileo,
		RPCAddr:         DefaultRPCAddr,
		ProviderAddress: DefaultProviderAddress,
		InitialBalance:  DefaultInitialBalance,
		MaxRetries:      DefaultMaxRetries,
		RetryDelay:      DefaultRetryDelay,
		Message:         DefaultMessage,
		FeePattern:      DefaultFeePattern,
		IpfsURL:         DefaultIpfsURL,
		LighthouseURL:   DefaultLighthouseURL,
		Timeouts:        Timeouts{}.WithDefaults(),
	}
}

// Validate fills empty string settings with their defaults and checks the
// remaining values. MaxRetries and RetryDelay are never defaulted here
// because zero is meaningful for both.
func (c *Config) Validate() error {
	if c.Network.ChainID == "" {
		c.Network = Galileo
	}
	if c.ProviderAddress == "" {
		c.ProviderAddress = DefaultProviderAddress
	}
	if c.InitialBalance == "" {
		c.InitialBalance = DefaultInitialBalance
	}
	if c.Message == "" {
		c.Message = DefaultMessage
	}
	if c.FeePattern == "" {
		c.FeePattern = DefaultFeePattern
	}
	if c.IpfsURL == "" {
		c.IpfsURL = DefaultIpfsURL
	}
	if c.LighthouseURL == "" {
		c.LighthouseURL = DefaultLighthouseURL
	}
	c.Timeouts = c.Timeouts.WithDefaults()

	if c.RPCAddr == "" {
		return ErrRPCRequired
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must not be negative, got %s", c.RetryDelay)
	}
	if _, err := c.InitialBalanceA0GI(); err != nil {
		return err
	}
	if _, err := regexp.Compile(c.FeePattern); err != nil {
		return fmt.Errorf("invalid fee pattern: %w", err)
	}
	return nil
}

// CheckBroker reports whether the settings needed by the on-chain broker
// (signer key and contract addresses) are present.
func (c *Config) CheckBroker() error {
	if c.PrivateKey == "" {
		return ErrPrivateKeyRequired
	}
	if c.LedgerAddr == "" || c.ServingAddr == "" {
		return ErrContractsRequired
	}
	return nil
}

// InitialBalanceA0GI parses InitialBalance as a non-negative decimal amount.
func (c *Config) InitialBalanceA0GI() (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(c.InitialBalance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid initial balance %q: %w", c.InitialBalance, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("initial balance must not be negative, got %s", amount)
	}
	return amount, nil
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Dial:          5s
//	ChainRead:     12s
//	ChainSubmit:   25s
//	ReceiptWait:   90s
//	HTTPRequest:   60s
//	MetadataFetch: 30s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Dial == 0 {
		tt.Dial = 5 * time.Second
	}
	if tt.ChainRead == 0 {
		tt.ChainRead = 12 * time.Second
	}
	if tt.ChainSubmit == 0 {
		tt.ChainSubmit = 25 * time.Second
	}
	if tt.ReceiptWait == 0 {
		tt.ReceiptWait = 90 * time.Second
	}
	if tt.HTTPRequest == 0 {
		tt.HTTPRequest = 60 * time.Second
	}
	if tt.MetadataFetch == 0 {
		tt.MetadataFetch = 30 * time.Second
	}
	return tt
}
