// Package sdk is the client-side broker for the 0G compute network.
//
// A Broker funds the user's on-chain ledger, discovers registered inference
// providers, produces signed billing headers for each request and settles
// fees that providers report as owed.
//
// # Quick Start
//
//	cfg := config.Default()
//	cfg.PrivateKey = os.Getenv("PRIVATE_KEY")
//	cfg.LedgerAddr = "0x..."
//	cfg.ServingAddr = "0x..."
//
//	broker, err := sdk.NewBroker(&cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer broker.Close()
//
//	if _, err := broker.GetLedger(ctx); errors.Is(err, sdk.ErrLedgerNotFound) {
//		err = broker.AddLedger(ctx, decimal.RequireFromString("0.1"))
//	}
//
//	meta, err := broker.GetServiceMetadata(ctx, provider)
//	headers, err := broker.GetRequestHeaders(ctx, provider, content)
//
// # Architecture
//
//   - Blockchain: ledger and serving contracts (pkg/blockchain)
//   - Storage: IPFS, Lighthouse or HTTP for optional model cards (pkg/storage)
//   - Payment: header signing and nonces (pkg/payment)
//
// # Amounts
//
// Every amount crossing the Broker interface is a decimal A0GI value.
// Conversion to neuron (10^18 per A0GI) happens at the contract boundary.
//
// # Headers
//
// GetRequestHeaders signs a fresh nonce on every call. Reusing a header set
// for a second request makes the provider reject it.
//
// # Thread Safety
//
// Core is safe for concurrent use. The service registration cache is guarded
// by a mutex; chain and HTTP clients are shared.
package sdk
