package gyroe

import (
	"math/big"

	"swapRouter/internal/fixedpoint"
	"swapRouter/internal/poolmath"
)

var (
	sqrt1eNeg1  = big.NewInt(316227766016837933)
	sqrt1eNeg3  = big.NewInt(31622776601683793)
	sqrt1eNeg5  = big.NewInt(3162277660168379)
	sqrt1eNeg7  = big.NewInt(316227766016837)
	sqrt1eNeg9  = big.NewInt(31622776601683)
	sqrt1eNeg11 = big.NewInt(3162277660168)
	sqrt1eNeg13 = big.NewInt(316227766016)
	sqrt1eNeg15 = big.NewInt(31622776601)
	sqrt1eNeg17 = big.NewInt(3162277660)
)

// guessTable maps an upper bound on small inputs to the starting point of Newton's method.
var guessTable = []struct {
	max   int64
	guess *big.Int
}{
	{10, sqrt1eNeg17},
	{1e2, big.NewInt(1e10)},
	{1e3, sqrt1eNeg15},
	{1e4, big.NewInt(1e11)},
	{1e5, sqrt1eNeg13},
	{1e6, big.NewInt(1e12)},
	{1e7, sqrt1eNeg11},
	{1e8, big.NewInt(1e13)},
	{1e9, sqrt1eNeg9},
	{1e10, big.NewInt(1e14)},
	{1e11, sqrt1eNeg7},
	{1e12, big.NewInt(1e15)},
	{1e13, sqrt1eNeg5},
	{1e14, big.NewInt(1e16)},
	{1e15, sqrt1eNeg3},
	{1e16, big.NewInt(1e17)},
	{1e17, sqrt1eNeg1},
}

// Sqrt returns the 18-decimal square root of input using seven Newton steps, then checks the
// result against tolerance.
func Sqrt(input *big.Int, tolerance int64) (*big.Int, error) {
	if input.Sign() == 0 {
		return new(big.Int), nil
	}

	guess := makeInitialGuess(input)
	for i := 0; i < 7; i++ {
		next := new(big.Int).Mul(input, fixedpoint.One)
		next.Quo(next, guess)
		next.Add(next, guess)
		guess = next.Rsh(next, 1)
	}

	guessSquared := new(big.Int).Mul(guess, guess)
	guessSquared.Quo(guessSquared, fixedpoint.One)
	slack, err := fixedpoint.MulUp(guess, big.NewInt(tolerance))
	if err != nil {
		return nil, err
	}
	upper := new(big.Int).Add(input, slack)
	lower := new(big.Int).Sub(input, slack)
	if guessSquared.Cmp(upper) > 0 || guessSquared.Cmp(lower) < 0 {
		return nil, poolmath.ErrSqrtFailed
	}
	return guess, nil
}

func makeInitialGuess(input *big.Int) *big.Int {
	if input.Cmp(fixedpoint.One) >= 0 {
		whole := new(big.Int).Quo(input, fixedpoint.One)
		guess := new(big.Int).Lsh(big.NewInt(1), intLog2Halved(whole))
		return guess.Mul(guess, fixedpoint.One)
	}
	for _, entry := range guessTable {
		if input.Cmp(big.NewInt(entry.max)) <= 0 {
			return new(big.Int).Set(entry.guess)
		}
	}
	return new(big.Int).Set(input)
}

func intLog2Halved(x *big.Int) uint {
	x = new(big.Int).Set(x)
	var n uint
	for _, step := range []struct{ shift, add uint }{
		{128, 64}, {64, 32}, {32, 16}, {16, 8}, {8, 4}, {4, 2}, {2, 1},
	} {
		if x.Cmp(new(big.Int).Lsh(big.NewInt(1), step.shift)) >= 0 {
			x.Rsh(x, step.shift)
			n += step.add
		}
	}
	return n
}
