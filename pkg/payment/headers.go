package payment

// HTTP headers attached to every billed provider request. Values are
// decimal strings unless noted.
const (
	// AddressHeader is the user's Ethereum address (0x-prefixed hex).
	AddressHeader = "Address"
	// FeeHeader is the total fee in neuron the provider may charge for the request.
	FeeHeader = "Fee"
	// InputFeeHeader is the part of FeeHeader attributed to input tokens.
	InputFeeHeader = "Input-Fee"
	// NonceHeader is a strictly increasing per-user request counter.
	NonceHeader = "Nonce"
	// RequestHashHeader is keccak256 of the request content (0x-prefixed hex).
	// Settlement requests carry the zero hash.
	RequestHashHeader = "Request-Hash"
	// SignatureHeader is the personal-sign signature over the billing message
	// (0x-prefixed hex, 65 bytes).
	SignatureHeader = "Signature"
	// ServiceTypeHeader names the billed service, e.g. "inference".
	ServiceTypeHeader = "Service-Type"
	// VLLMProxyHeader asks the provider proxy to forward the request to its
	// vLLM backend. Value is "true".
	VLLMProxyHeader = "VLLM-Proxy"
)

// HeaderNames lists every header produced by Signer.Headers.
var HeaderNames = []string{
	AddressHeader,
	FeeHeader,
	InputFeeHeader,
	NonceHeader,
	RequestHashHeader,
	SignatureHeader,
	ServiceTypeHeader,
	VLLMProxyHeader,
}
