package payment

import (
	"math/big"
	"unicode/utf8"
)

// perMessageTokens is the fixed token overhead added for the chat envelope.
const perMessageTokens = 4

// EstimateTokens approximates the number of input tokens of content: one
// token per four characters, rounded up, plus the per-message overhead.
func EstimateTokens(content string) int64 {
	chars := int64(utf8.RuneCountInString(content))
	return (chars+3)/4 + perMessageTokens
}

// InputFee returns EstimateTokens(content) * inputPrice. A nil price is zero.
func InputFee(content string, inputPrice *big.Int) *big.Int {
	if inputPrice == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(big.NewInt(EstimateTokens(content)), inputPrice)
}
