// Package blockchain provides low-level EVM interaction for the 0G compute network.
//
// This package contains bindings and helpers for:
//   - the ledger manager contract (user ledgers, deposits, transfers to providers)
//   - the inference serving contract (service registry, provider sub-accounts)
//
// # Architecture
//
// EVMClient wraps a connected Backend (normally *ethclient.Client) and two
// contract bindings built on bind.BoundContract:
//
//	evm, err := blockchain.InitEvm("16601", rpcURL, ledgerAddr, servingAddr, 5*time.Second)
//	if err != nil {
//		return err
//	}
//	defer evm.Close()
//
// InitEvm compares the endpoint's chain ID with the configured network and
// fails with ErrChainIDMismatch when they differ.
//
// # Reads
//
//	ledger, err := evm.GetLedger(ctx, user)          // zero User when missing
//	services, err := evm.ListServices(ctx)
//	svc, err := evm.GetService(ctx, provider)
//	acc, err := evm.GetAccount(ctx, user, provider)
//
// # Transactions
//
// Payable writes attach their value in neuron and return the submitted
// transaction. Use WaitForTransaction to block until it is mined:
//
//	tx, err := evm.AddLedger(ctx, pk, value)
//	if err != nil {
//		return err
//	}
//	receipt, err := evm.WaitForTransaction(ctx, tx.Hash(), 8*time.Second)
//
// WaitForTransaction backs off exponentially while the receipt is missing
// and reports reverted transactions as errors.
//
// # Units
//
// 1 A0GI = 10^18 neuron. A0GIToNeuron and NeuronToA0GI convert between the
// two using shopspring/decimal so fee strings such as "0.0042" stay exact.
//
// # Signatures
//
// GetSignature signs keccak256(message) with the Ethereum personal-sign
// prefix; RecoverSigner reverses it.
//
// # Thread Safety
//
// EVMClient is safe for concurrent use once constructed; the underlying
// ethclient handles concurrent requests.
package blockchain
