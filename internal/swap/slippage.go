package swap

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"swapRouter/internal/fixedpoint"
)

var ErrInvalidSlippage = errors.New("invalid slippage")

// Slippage is a tolerance stored as an 18-decimal fraction: 0.1% is 1e15.
type Slippage struct {
	value *big.Int
}

// SlippageFromPercentage parses a percentage such as "0.5" (0.5%).
func SlippageFromPercentage(percent string) (Slippage, error) {
	return parseSlippage(percent, 16)
}

// SlippageFromBasisPoints parses basis points such as "50" (0.5%).
func SlippageFromBasisPoints(bps string) (Slippage, error) {
	return parseSlippage(bps, 14)
}

// SlippageFromRaw wraps an 18-decimal fraction.
func SlippageFromRaw(raw *big.Int) (Slippage, error) {
	if raw == nil || raw.Sign() < 0 || raw.Cmp(fixedpoint.One) >= 0 {
		return Slippage{}, fmt.Errorf("%w: %v", ErrInvalidSlippage, raw)
	}
	return Slippage{value: new(big.Int).Set(raw)}, nil
}

// ParseSlippage accepts "0.5%", "50bps" or a bare percentage.
func ParseSlippage(input string) (Slippage, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	switch {
	case strings.HasSuffix(trimmed, "bps"):
		return SlippageFromBasisPoints(strings.TrimSpace(strings.TrimSuffix(trimmed, "bps")))
	case strings.HasSuffix(trimmed, "%"):
		return SlippageFromPercentage(strings.TrimSpace(strings.TrimSuffix(trimmed, "%")))
	default:
		return SlippageFromPercentage(trimmed)
	}
}

func parseSlippage(input string, shift int32) (Slippage, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return Slippage{}, fmt.Errorf("%w: %q: %v", ErrInvalidSlippage, input, err)
	}
	return SlippageFromRaw(d.Shift(shift).BigInt())
}

// Raw is the 18-decimal fraction.
func (s Slippage) Raw() *big.Int {
	if s.value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(s.value)
}

// ApplyTo scales amount by 1 - s (direction < 0) or 1 + s (direction >= 0), rounding down.
func (s Slippage) ApplyTo(amount *big.Int, direction int) *big.Int {
	factor := new(big.Int).Set(fixedpoint.One)
	if direction < 0 {
		factor.Sub(factor, s.Raw())
	} else {
		factor.Add(factor, s.Raw())
	}
	out := new(big.Int).Mul(amount, factor)
	return out.Quo(out, fixedpoint.One)
}

func (s Slippage) String() string {
	return decimal.NewFromBigInt(s.Raw(), -16).String() + "%"
}
