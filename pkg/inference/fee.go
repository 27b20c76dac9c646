package inference

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// FeeParser extracts the amount a provider reports as owed from an error
// message. The pattern's first capture group must hold the decimal amount.
type FeeParser struct {
	re *regexp.Regexp
}

// NewFeeParser compiles pattern. Patterns without a capture group are
// rejected.
func NewFeeParser(pattern string) (*FeeParser, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile fee pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("fee pattern %q has no capture group", pattern)
	}
	return &FeeParser{re: re}, nil
}

// Parse returns the owed amount in A0GI and true when msg matches. Amounts
// that do not parse as a positive decimal are treated as no match.
func (p *FeeParser) Parse(msg string) (decimal.Decimal, bool) {
	if p == nil || msg == "" {
		return decimal.Zero, false
	}
	m := p.re.FindStringSubmatch(msg)
	if m == nil {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(m[1])
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, false
	}
	return amount, true
}
