// Package config provides configuration management for the 0G compute client.
//
// The Config structure controls the chain endpoint, the ledger and serving
// contracts, the signer key, the target provider, ledger funding, the
// inference retry policy, storage gateways and per-operation timeouts.
//
// # Sources and Precedence
//
// Settings are layered. Command-line flags override the environment, the
// environment overrides a configuration file, and the file overrides the
// built-in defaults:
//
//	cfg := config.Default()
//	if path != "" {
//		cfg, err = config.Load(path) // YAML, JSON or TOML, on top of Default
//	}
//	_ = config.LoadDotEnv(".env") // missing file is fine
//	if err := config.FromEnv(&cfg); err != nil {
//		return err
//	}
//	// apply flags here
//	if err := cfg.Validate(); err != nil {
//		return err
//	}
//
// # Environment Variables
//
//	PRIVATE_KEY       hex signer key (required for the broker, no default)
//	RPC_URL           EVM endpoint, default https://evmrpc-testnet.0g.ai
//	PROVIDER_ADDRESS  provider, default 0xf07240Efa67755B5311bc75784a061eDB47165Dd
//	INITIAL_BALANCE   A0GI used to create a missing ledger, default 0.1
//	MAX_RETRIES       inference attempts, default 3 (0 disables inference)
//	RETRY_DELAY       pause between attempts, "2s" or milliseconds, default 2s
//	MESSAGE_CONTENT   prompt, default "Hello, what can you do?"
//	LEDGER_CONTRACT   ledger manager contract address
//	SERVING_CONTRACT  inference serving contract address
//	IPFS_URL          IPFS RPC endpoint for model cards
//	LIGHTHOUSE_URL    Lighthouse gateway for filecoin:// URIs
//	FEE_PATTERN       regexp recognising fee-settlement errors
//	DEBUG             verbose logging
//
// # Validation
//
// Validate fills empty string fields with defaults and rejects an empty
// RPC address, negative retry settings, a malformed initial balance and a
// fee pattern that does not compile. CheckBroker additionally requires the
// private key and both contract addresses; it is called by sdk.NewBroker.
//
// # Timeouts
//
// Zero values are replaced with defaults via WithDefaults():
//
//	cfg.Timeouts = config.Timeouts{
//		Dial:          5 * time.Second,
//		ChainRead:     12 * time.Second,
//		ChainSubmit:   25 * time.Second,
//		ReceiptWait:   90 * time.Second,
//		HTTPRequest:   60 * time.Second,
//		MetadataFetch: 30 * time.Second,
//	}
//
// # Thread Safety
//
// Config instances should be created once and not modified after being
// passed to sdk.NewBroker.
package config
