package stable

import (
	"math/big"

	"swapRouter/internal/fixedpoint"
	"swapRouter/internal/poolmath"
)

// AmpPrecision is the scale of the amplification parameter.
var AmpPrecision = big.NewInt(1000)

// MaxIterations bounds both Newton solvers.
const MaxIterations = 255

var bigOne = big.NewInt(1)

// CalculateInvariant solves the StableSwap invariant D for the given balances.
// amp is expected with AmpPrecision already applied.
func CalculateInvariant(amp *big.Int, balances []*big.Int) (*big.Int, error) {
	sum := new(big.Int)
	for _, b := range balances {
		sum.Add(sum, b)
	}
	if sum.Sign() == 0 {
		return new(big.Int), nil
	}

	n := big.NewInt(int64(len(balances)))
	nPlusOne := big.NewInt(int64(len(balances) + 1))
	ampTimesTotal := new(big.Int).Mul(amp, n)
	ampMinusPrecision := new(big.Int).Sub(ampTimesTotal, AmpPrecision)

	invariant := new(big.Int).Set(sum)
	for i := 0; i < MaxIterations; i++ {
		dP := new(big.Int).Set(invariant)
		for _, b := range balances {
			denominator := new(big.Int).Mul(b, n)
			if denominator.Sign() == 0 {
				return nil, fixedpoint.ErrZeroDivision
			}
			dP.Mul(dP, invariant)
			dP.Quo(dP, denominator)
		}

		previous := invariant

		// ((ampTotal*sum/P + dP*n) * D) / ((ampTotal-P)*D/P + (n+1)*dP)
		numerator := new(big.Int).Mul(ampTimesTotal, sum)
		numerator.Quo(numerator, AmpPrecision)
		numerator.Add(numerator, new(big.Int).Mul(dP, n))
		numerator.Mul(numerator, previous)

		denominator := new(big.Int).Mul(ampMinusPrecision, previous)
		denominator.Quo(denominator, AmpPrecision)
		denominator.Add(denominator, new(big.Int).Mul(nPlusOne, dP))
		if denominator.Sign() == 0 {
			return nil, fixedpoint.ErrZeroDivision
		}

		invariant = numerator.Quo(numerator, denominator)
		if withinOne(invariant, previous) {
			return invariant, nil
		}
	}
	return nil, poolmath.ErrInvariantDiverged
}

// CalcOutGivenIn returns balanceOut - newBalanceOut - 1 after adding amountIn to balance i.
func CalcOutGivenIn(amp *big.Int, balances []*big.Int, indexIn, indexOut int, amountIn, invariant *big.Int) (*big.Int, error) {
	updated := cloneBalances(balances)
	updated[indexIn].Add(updated[indexIn], amountIn)

	finalBalanceOut, err := GetTokenBalanceGivenInvariantAndAllOtherBalances(amp, updated, invariant, indexOut)
	if err != nil {
		return nil, err
	}

	out := new(big.Int).Sub(balances[indexOut], finalBalanceOut)
	out.Sub(out, bigOne)
	if out.Sign() < 0 {
		return nil, fixedpoint.ErrUnderflow
	}
	return out, nil
}

// CalcInGivenOut returns newBalanceIn - balanceIn + 1 after removing amountOut from balance j.
func CalcInGivenOut(amp *big.Int, balances []*big.Int, indexIn, indexOut int, amountOut, invariant *big.Int) (*big.Int, error) {
	if amountOut.Cmp(balances[indexOut]) >= 0 {
		return nil, poolmath.ErrLimitExceeded
	}
	updated := cloneBalances(balances)
	updated[indexOut].Sub(updated[indexOut], amountOut)

	finalBalanceIn, err := GetTokenBalanceGivenInvariantAndAllOtherBalances(amp, updated, invariant, indexIn)
	if err != nil {
		return nil, err
	}

	in := new(big.Int).Sub(finalBalanceIn, balances[indexIn])
	in.Add(in, bigOne)
	if in.Sign() < 0 {
		return nil, fixedpoint.ErrUnderflow
	}
	return in, nil
}

// GetTokenBalanceGivenInvariantAndAllOtherBalances solves the invariant for the balance at tokenIndex.
func GetTokenBalanceGivenInvariantAndAllOtherBalances(amp *big.Int, balances []*big.Int, invariant *big.Int, tokenIndex int) (*big.Int, error) {
	if invariant.Sign() == 0 {
		return nil, fixedpoint.ErrZeroDivision
	}
	n := big.NewInt(int64(len(balances)))
	ampTimesTotal := new(big.Int).Mul(amp, n)

	sum := new(big.Int).Set(balances[0])
	pD := new(big.Int).Mul(balances[0], n)
	for j := 1; j < len(balances); j++ {
		pD.Mul(pD, balances[j])
		pD.Mul(pD, n)
		pD.Quo(pD, invariant)
		sum.Add(sum, balances[j])
	}
	sum.Sub(sum, balances[tokenIndex])

	invariantSquared := new(big.Int).Mul(invariant, invariant)

	// c = D^2 / (ampTotal * P_D) * P * balance_i, rounded up
	c, err := fixedpoint.DivUpInt(invariantSquared, new(big.Int).Mul(ampTimesTotal, pD))
	if err != nil {
		return nil, err
	}
	c.Mul(c, AmpPrecision)
	c.Mul(c, balances[tokenIndex])

	// b = sum + D / ampTotal * P
	b := new(big.Int).Quo(invariant, ampTimesTotal)
	b.Mul(b, AmpPrecision)
	b.Add(b, sum)

	tokenBalance, err := fixedpoint.DivUpInt(new(big.Int).Add(invariantSquared, c), new(big.Int).Add(invariant, b))
	if err != nil {
		return nil, err
	}

	for i := 0; i < MaxIterations; i++ {
		previous := tokenBalance

		numerator := new(big.Int).Mul(tokenBalance, tokenBalance)
		numerator.Add(numerator, c)
		denominator := new(big.Int).Lsh(tokenBalance, 1)
		denominator.Add(denominator, b)
		denominator.Sub(denominator, invariant)
		if denominator.Sign() <= 0 {
			return nil, poolmath.ErrInvariantDiverged
		}

		tokenBalance, err = fixedpoint.DivUpInt(numerator, denominator)
		if err != nil {
			return nil, err
		}
		if withinOne(tokenBalance, previous) {
			return tokenBalance, nil
		}
	}
	return nil, poolmath.ErrInvariantDiverged
}

// NormalizedLiquidity ranks stable pools by balanceOut * amp.
func NormalizedLiquidity(balanceOut, amp *big.Int) *big.Int {
	return new(big.Int).Mul(balanceOut, amp)
}

func withinOne(a, b *big.Int) bool {
	diff := new(big.Int).Sub(a, b)
	return diff.CmpAbs(bigOne) <= 0
}

func cloneBalances(balances []*big.Int) []*big.Int {
	out := make([]*big.Int, len(balances))
	for i, b := range balances {
		out[i] = new(big.Int).Set(b)
	}
	return out
}
