package payment

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shamank/zg-compute-go/pkg/blockchain"
	"go.uber.org/zap"
)

// ErrMissingHeader is returned by VerifyHeaders when a billing header is absent.
var ErrMissingHeader = errors.New("missing billing header")

// Request describes one billed provider call.
type Request struct {
	Provider    common.Address
	ServiceType string
	InputFee    *big.Int
	Fee         *big.Int
	RequestHash common.Hash
}

// Signer produces signed billing headers on behalf of a single user.
type Signer struct {
	key    *ecdsa.PrivateKey
	user   common.Address
	nonces *NonceSource
}

// NewSigner returns a Signer for key. nonces may be nil, in which case a
// fresh NonceSource is used.
func NewSigner(key *ecdsa.PrivateKey, nonces *NonceSource) (*Signer, error) {
	addr := blockchain.GetAddressFromPrivateKeyECDSA(key)
	if addr == nil {
		return nil, errors.New("private key is required for signing")
	}
	if nonces == nil {
		nonces = NewNonceSource()
	}
	return &Signer{key: key, user: *addr, nonces: nonces}, nil
}

// Address returns the signing user's address.
func (s *Signer) Address() common.Address {
	return s.user
}

// RequestHash returns keccak256(content), the value bound by RequestHashHeader.
func RequestHash(content string) common.Hash {
	return crypto.Keccak256Hash([]byte(content))
}

// InferenceRequest builds the billing request for content sent to provider
// at inputPrice neuron per token. The whole fee is attributed to input.
func InferenceRequest(provider common.Address, serviceType, content string, inputPrice *big.Int) Request {
	fee := InputFee(content, inputPrice)
	return Request{
		Provider:    provider,
		ServiceType: serviceType,
		InputFee:    fee,
		Fee:         new(big.Int).Set(fee),
		RequestHash: RequestHash(content),
	}
}

// SettlementRequest builds the billing request acknowledging fee neuron owed
// to provider. It carries no request hash and no input fee.
func SettlementRequest(provider common.Address, serviceType string, fee *big.Int) Request {
	return Request{
		Provider:    provider,
		ServiceType: serviceType,
		InputFee:    new(big.Int),
		Fee:         fee,
	}
}

// Headers signs req with a fresh nonce and returns the full header set.
// Every call produces a new nonce and signature.
func (s *Signer) Headers(req Request) (map[string]string, error) {
	nonce := s.nonces.Next()
	sig, err := blockchain.GetSignature(signedMessage(s.user, req, nonce), s.key)
	if err != nil {
		return nil, fmt.Errorf("sign billing headers: %w", err)
	}

	zap.L().Debug("billing headers signed",
		zap.String("provider", req.Provider.Hex()),
		zap.String("fee", bigString(req.Fee)),
		zap.String("nonce", nonce.String()))

	return map[string]string{
		AddressHeader:     s.user.Hex(),
		FeeHeader:         bigString(req.Fee),
		InputFeeHeader:    bigString(req.InputFee),
		NonceHeader:       nonce.String(),
		RequestHashHeader: req.RequestHash.Hex(),
		SignatureHeader:   hexutil.Encode(sig),
		ServiceTypeHeader: req.ServiceType,
		VLLMProxyHeader:   "true",
	}, nil
}

// VerifyHeaders checks the signature of a header set produced by Headers for
// provider and returns the signing user.
func VerifyHeaders(provider common.Address, headers map[string]string) (common.Address, error) {
	get := func(name string) (string, error) {
		for k, v := range headers {
			if strings.EqualFold(k, name) {
				return v, nil
			}
		}
		return "", fmt.Errorf("%w: %s", ErrMissingHeader, name)
	}

	var vals [6]string
	for i, name := range []string{AddressHeader, FeeHeader, InputFeeHeader, NonceHeader, RequestHashHeader, SignatureHeader} {
		v, err := get(name)
		if err != nil {
			return common.Address{}, err
		}
		vals[i] = v
	}

	if !common.IsHexAddress(vals[0]) {
		return common.Address{}, fmt.Errorf("invalid %s header %q", AddressHeader, vals[0])
	}
	user := common.HexToAddress(vals[0])

	nums := make([]*big.Int, 3)
	for i, raw := range vals[1:4] {
		n, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return common.Address{}, fmt.Errorf("invalid numeric header %q", raw)
		}
		nums[i] = n
	}

	sig, err := hexutil.Decode(vals[5])
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid %s header: %w", SignatureHeader, err)
	}

	req := Request{
		Provider:    provider,
		Fee:         nums[0],
		InputFee:    nums[1],
		RequestHash: common.HexToHash(vals[4]),
	}
	signer, err := blockchain.RecoverSigner(signedMessage(user, req, nums[2]), sig)
	if err != nil {
		return common.Address{}, err
	}
	if signer != user {
		return common.Address{}, fmt.Errorf("signature by %s does not match %s", signer.Hex(), user.Hex())
	}
	return user, nil
}

// signedMessage lays out the billing message:
//
//	concat(user, provider, uint256(inputFee), uint256(fee), uint256(nonce), requestHash)
func signedMessage(user common.Address, req Request, nonce *big.Int) []byte {
	return bytes.Join([][]byte{
		user.Bytes(),
		req.Provider.Bytes(),
		blockchain.BigIntToBytes(req.InputFee),
		blockchain.BigIntToBytes(req.Fee),
		blockchain.BigIntToBytes(nonce),
		req.RequestHash.Bytes(),
	}, nil)
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
