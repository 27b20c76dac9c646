// Package payment builds the signed billing headers that accompany every
// provider request on the compute network.
//
// A request is billed by attaching eight HTTP headers (see HeaderNames).
// The Signature header is a personal-sign signature over
//
//	concat(user, provider, uint256(inputFee), uint256(fee), uint256(nonce), requestHash)
//
// where requestHash is keccak256 of the request content, or the zero hash
// for fee settlements. Nonces come from a NonceSource and strictly increase,
// so headers must be rebuilt for every attempt:
//
//	signer, err := payment.NewSigner(key, nil)
//	req := payment.InferenceRequest(provider, "inference", content, service.InputPrice)
//	headers, err := signer.Headers(req)
//
// The input fee is EstimateTokens(content) times the service input price,
// where EstimateTokens is ceil(chars/4) plus a fixed per-message overhead.
//
// VerifyHeaders performs the provider-side check and is used by test
// providers.
package payment
