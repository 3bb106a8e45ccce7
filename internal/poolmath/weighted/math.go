package weighted

import (
	"math/big"

	"swapRouter/internal/fixedpoint"
	"swapRouter/internal/poolmath"
)

var (
	// MaxInRatio and MaxOutRatio cap a swap at 30% of the relevant balance.
	MaxInRatio  = big.NewInt(3e17)
	MaxOutRatio = big.NewInt(3e17)
)

// CalcOutGivenIn returns the amount out for an exact amount in, rounded down.
// All values are 18-decimal scaled.
func CalcOutGivenIn(balanceIn, weightIn, balanceOut, weightOut, amountIn *big.Int) (*big.Int, error) {
	maxIn, err := fixedpoint.MulDown(balanceIn, MaxInRatio)
	if err != nil {
		return nil, err
	}
	if amountIn.Cmp(maxIn) > 0 {
		return nil, poolmath.ErrLimitExceeded
	}

	denominator, err := fixedpoint.Add(balanceIn, amountIn)
	if err != nil {
		return nil, err
	}
	base, err := fixedpoint.DivUp(balanceIn, denominator)
	if err != nil {
		return nil, err
	}
	exponent, err := fixedpoint.DivDown(weightIn, weightOut)
	if err != nil {
		return nil, err
	}
	power, err := fixedpoint.PowUp(base, exponent)
	if err != nil {
		return nil, err
	}

	return fixedpoint.MulDown(balanceOut, fixedpoint.Complement(power))
}

// CalcInGivenOut returns the amount in for an exact amount out, rounded up.
func CalcInGivenOut(balanceIn, weightIn, balanceOut, weightOut, amountOut *big.Int) (*big.Int, error) {
	maxOut, err := fixedpoint.MulDown(balanceOut, MaxOutRatio)
	if err != nil {
		return nil, err
	}
	if amountOut.Cmp(maxOut) > 0 {
		return nil, poolmath.ErrLimitExceeded
	}

	remaining, err := fixedpoint.Sub(balanceOut, amountOut)
	if err != nil {
		return nil, err
	}
	base, err := fixedpoint.DivUp(balanceOut, remaining)
	if err != nil {
		return nil, err
	}
	exponent, err := fixedpoint.DivUp(weightOut, weightIn)
	if err != nil {
		return nil, err
	}
	power, err := fixedpoint.PowUp(base, exponent)
	if err != nil {
		return nil, err
	}

	ratio, err := fixedpoint.Sub(power, fixedpoint.One)
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulUp(balanceIn, ratio)
}

// NormalizedLiquidity is balanceIn * wOut / (wIn + wOut).
func NormalizedLiquidity(balanceIn, weightIn, weightOut *big.Int) *big.Int {
	total := new(big.Int).Add(weightIn, weightOut)
	if total.Sign() == 0 {
		return new(big.Int)
	}
	out := new(big.Int).Mul(balanceIn, weightOut)
	return out.Quo(out, total)
}
