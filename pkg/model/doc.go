// Package model defines the data structures used by the compute client.
//
// On-chain state:
//   - Ledger: the user's funding record (neuron balances)
//   - Account: the user's sub-account at one provider
//   - Service: a provider registration (URL, model, per-token prices)
//
// Off-chain documents:
//   - ServiceMetadata: endpoint and model resolved for a provider
//   - ModelCard: optional JSON referenced by Service.AdditionalInfo
//   - ChatCompletionRequest / ChatCompletionResponse: OpenAI-compatible
//     payloads exchanged with providers
//
// Balances and prices are *big.Int neuron values; use
// blockchain.NeuronToA0GI to display them.
package model
