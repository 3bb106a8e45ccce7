package gyroe

import (
	"math/big"

	"swapRouter/internal/fixedpoint"
	"swapRouter/internal/poolmath"
)

var (
	// MaxBalances bounds x + y, MaxInvariant bounds invariant + error.
	MaxBalances  = fixedpoint.MustFromString("10000000000000000000000000000000000")
	MaxInvariant = fixedpoint.MustFromString("30000000000000000000000000000000000000")
)

// CalculateInvariantWithError returns the invariant of the two 18-decimal balances and an
// upper bound on its absolute error.
func CalculateInvariantWithError(balances [2]*big.Int, p Params, d DerivedParams) (*big.Int, *big.Int, error) {
	x, y := balances[0], balances[1]
	if plus(x, y).Cmp(MaxBalances) > 0 {
		return nil, nil, poolmath.ErrMaxAssetsExceeded
	}

	c := &calc{}
	atAChi := c.calcAtAChi(x, y, p, d)
	sqrt, err := c.calcInvariantSqrt(x, y, p, d)

	// Error of the square root term; the minimum non-zero sqrt is 1e-9.
	if sqrt.Sign() > 0 {
		err = c.divUpMag(plus(err, bigOne), times(bigTwo, sqrt))
	} else if err.Sign() > 0 {
		err = c.sqrt(err)
	} else {
		err = big.NewInt(1e9)
	}

	// Error of the numerator, scaled by 20 to cover every term.
	lambdaTerm := mulUp(p.Lambda, plus(x, y))
	lambdaTerm.Quo(lambdaTerm, fixedpoint.OneXp)
	err = times(plus(plus(lambdaTerm, err), bigOne), bigTwenty)

	mulDenominator := c.divXp(fixedpoint.OneXp, minus(c.calcAChiAChiInXp(p, d), fixedpoint.OneXp))
	if c.err != nil {
		return nil, nil, c.err
	}

	invariant := downXpNp(minus(plus(atAChi, sqrt), err), mulDenominator)
	err = upXpNp(err, mulDenominator)

	// Relative error from the denominator, which grows with lambda^2.
	lambdaSq := times(p.Lambda, p.Lambda)
	lambdaSq.Quo(lambdaSq, e36)
	denominatorErr := times(times(upXpNp(invariant, mulDenominator), lambdaSq), bigForty)
	denominatorErr.Quo(denominatorErr, fixedpoint.OneXp)
	err = plus(plus(err, denominatorErr), bigOne)

	if plus(invariant, err).Cmp(MaxInvariant) > 0 {
		return nil, nil, poolmath.ErrMaxInvariantExceeded
	}
	return invariant, err, nil
}

// PinnedInvariant is the conservative (invariant + 2 err, invariant) pair used by swaps.
func PinnedInvariant(invariant, err *big.Int) Vector2 {
	return Vector2{
		X: plus(invariant, times(err, bigTwo)),
		Y: new(big.Int).Set(invariant),
	}
}

// CalcOutGivenIn returns the amount out for amountIn. The caller orders balances so that
// token0 is the pool's first token.
func CalcOutGivenIn(balances [2]*big.Int, amountIn *big.Int, tokenInIsToken0 bool, p Params, d DerivedParams, r Vector2) (*big.Int, error) {
	ixIn, ixOut := 0, 1
	calcGiven := calcYGivenX
	if !tokenInIsToken0 {
		ixIn, ixOut = 1, 0
		calcGiven = calcXGivenY
	}

	balInNew := plus(balances[ixIn], amountIn)
	if err := checkAssetBounds(p, d, r, balInNew, ixIn); err != nil {
		return nil, err
	}
	balOutNew, err := calcGiven(balInNew, p, d, r)
	if err != nil {
		return nil, err
	}
	if balOutNew.Sign() < 0 || balOutNew.Cmp(balances[ixOut]) > 0 {
		return nil, poolmath.ErrAssetBoundsExceeded
	}
	return minus(balances[ixOut], balOutNew), nil
}

// CalcInGivenOut returns the amount in required for amountOut.
func CalcInGivenOut(balances [2]*big.Int, amountOut *big.Int, tokenInIsToken0 bool, p Params, d DerivedParams, r Vector2) (*big.Int, error) {
	ixIn, ixOut := 0, 1
	calcGiven := calcXGivenY
	if !tokenInIsToken0 {
		ixIn, ixOut = 1, 0
		calcGiven = calcYGivenX
	}

	if amountOut.Cmp(balances[ixOut]) > 0 {
		return nil, poolmath.ErrAssetBoundsExceeded
	}
	balOutNew := minus(balances[ixOut], amountOut)
	balInNew, err := calcGiven(balOutNew, p, d, r)
	if err != nil {
		return nil, err
	}
	if err := checkAssetBounds(p, d, r, balInNew, ixIn); err != nil {
		return nil, err
	}
	if balInNew.Cmp(balances[ixIn]) < 0 {
		return nil, poolmath.ErrAssetBoundsExceeded
	}
	return minus(balInNew, balances[ixIn]), nil
}

func calcYGivenX(x *big.Int, p Params, d DerivedParams, r Vector2) (*big.Int, error) {
	c := &calc{}
	ab := Vector2{X: c.virtualOffset0(p, d, r), Y: c.virtualOffset1(p, d, r)}
	y := c.solveQuadraticSwap(p.Lambda, x, p.S, p.C, r, ab, d.TauBeta, d.DSq)
	return y, c.err
}

func calcXGivenY(y *big.Int, p Params, d DerivedParams, r Vector2) (*big.Int, error) {
	c := &calc{}
	ba := Vector2{X: c.virtualOffset1(p, d, r), Y: c.virtualOffset0(p, d, r)}
	tau := Vector2{X: neg(d.TauAlpha.X), Y: d.TauAlpha.Y}
	x := c.solveQuadraticSwap(p.Lambda, y, p.C, p.S, r, ba, tau, d.DSq)
	return x, c.err
}

func checkAssetBounds(p Params, d DerivedParams, r Vector2, newBalance *big.Int, assetIndex int) error {
	maxBalance := MaxBalances0
	if assetIndex == 1 {
		maxBalance = MaxBalances1
	}
	limit, err := maxBalance(p, d, r)
	if err != nil {
		return err
	}
	if newBalance.Cmp(MaxBalances) > 0 || newBalance.Cmp(limit) > 0 {
		return poolmath.ErrAssetBoundsExceeded
	}
	return nil
}
