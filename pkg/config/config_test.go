package config

import (
	"testing"
	"time"
)

// TestConfigValidate_AppliesDefaults verifies that Validate applies default values
// for empty string settings while keeping explicit ones.
func TestConfigValidate_AppliesDefaults(t *testing.T) {
	cfg := &Config{
		RPCAddr: "https://rpc.example",
		Message: "ping",
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	if cfg.LighthouseURL != DefaultLighthouseURL {
		t.Fatalf("unexpected LighthouseURL: %s", cfg.LighthouseURL)
	}
	if cfg.IpfsURL != DefaultIpfsURL {
		t.Fatalf("unexpected IpfsURL: %s", cfg.IpfsURL)
	}
	if cfg.Network != Galileo {
		t.Fatalf("expected default Galileo network, got %#v", cfg.Network)
	}
	if cfg.ProviderAddress != DefaultProviderAddress {
		t.Fatalf("unexpected provider: %s", cfg.ProviderAddress)
	}
	if cfg.Message != "ping" {
		t.Fatalf("Message overwritten: %s", cfg.Message)
	}
	if cfg.Timeouts.HTTPRequest != 60*time.Second {
		t.Fatalf("timeouts not defaulted: %+v", cfg.Timeouts)
	}
}

// TestConfigValidate_KeepsZeroRetries verifies that an explicit zero retry
// budget survives validation.
func TestConfigValidate_KeepsZeroRetries(t *testing.T) {
	cfg := Default()
	cfg.MaxRetries = 0
	cfg.RetryDelay = 0

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if cfg.MaxRetries != 0 || cfg.RetryDelay != 0 {
		t.Fatalf("zero retry settings overwritten: %d %s", cfg.MaxRetries, cfg.RetryDelay)
	}
}

// TestConfigValidate_RequiresRPC verifies that Validate returns an error
// when RPCAddr is not provided.
func TestConfigValidate_RequiresRPC(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err != ErrRPCRequired {
		t.Fatalf("expected ErrRPCRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "negative retries", mutate: func(c *Config) { c.MaxRetries = -1 }},
		{name: "negative delay", mutate: func(c *Config) { c.RetryDelay = -time.Second }},
		{name: "malformed balance", mutate: func(c *Config) { c.InitialBalance = "lots" }},
		{name: "negative balance", mutate: func(c *Config) { c.InitialBalance = "-0.5" }},
		{name: "broken fee pattern", mutate: func(c *Config) { c.FeePattern = "expected (" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestConfigCheckBroker(t *testing.T) {
	cfg := Default()
	if err := cfg.CheckBroker(); err != ErrPrivateKeyRequired {
		t.Fatalf("expected ErrPrivateKeyRequired, got %v", err)
	}

	cfg.PrivateKey = "ab"
	cfg.LedgerAddr = "0x1"
	if err := cfg.CheckBroker(); err != ErrContractsRequired {
		t.Fatalf("expected ErrContractsRequired, got %v", err)
	}

	cfg.ServingAddr = "0x2"
	if err := cfg.CheckBroker(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInitialBalanceA0GI(t *testing.T) {
	cfg := Default()
	amount, err := cfg.InitialBalanceA0GI()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amount.String() != "0.1" {
		t.Fatalf("unexpected amount: %s", amount)
	}
}

// TestTimeoutsWithDefaults verifies that WithDefaults preserves explicitly set
// timeout values and fills in defaults for zero values.
func TestTimeoutsWithDefaults(t *testing.T) {
	in := Timeouts{
		Dial:        time.Second,
		ChainSubmit: 42 * time.Second,
	}

	out := in.WithDefaults()

	// Provided values should be kept.
	if out.Dial != time.Second {
		t.Fatalf("Dial overwritten: got %v", out.Dial)
	}
	if out.ChainSubmit != 42*time.Second {
		t.Fatalf("ChainSubmit overwritten: got %v", out.ChainSubmit)
	}

	// Zero values filled with defaults.
	if out.ChainRead != 12*time.Second {
		t.Fatalf("ChainRead default mismatch: %v", out.ChainRead)
	}
	if out.ReceiptWait != 90*time.Second {
		t.Fatalf("ReceiptWait default mismatch: %v", out.ReceiptWait)
	}
	if out.HTTPRequest != 60*time.Second {
		t.Fatalf("HTTPRequest default mismatch: %v", out.HTTPRequest)
	}
	if out.MetadataFetch != 30*time.Second {
		t.Fatalf("MetadataFetch default mismatch: %v", out.MetadataFetch)
	}
}
