package fixedpoint

import (
	"errors"
	"math/big"
)

var (
	ErrXOutOfBounds       = errors.New("log exp: x out of bounds")
	ErrYOutOfBounds       = errors.New("log exp: y out of bounds")
	ErrProductOutOfBounds = errors.New("log exp: product out of bounds")
	ErrInvalidExponent    = errors.New("log exp: invalid exponent")
)

var (
	one18 = big.NewInt(1e18)
	one20 = MustFromString("100000000000000000000")
	one36 = MustFromString("1000000000000000000000000000000000000")

	maxNaturalExponent = MustFromString("130000000000000000000")
	minNaturalExponent = MustFromString("-41000000000000000000")

	ln36LowerBound = big.NewInt(1e18 - 1e17)
	ln36UpperBound = big.NewInt(1e18 + 1e17)

	mildExponentBound = new(big.Int).Quo(new(big.Int).Lsh(big.NewInt(1), 254), one20)

	hundred = big.NewInt(100)
	two     = big.NewInt(2)
)

// 18 decimal terms: x_n and e^(x_n) without decimals.
var (
	x0 = MustFromString("128000000000000000000")
	a0 = MustFromString("38877084059945950922200000000000000000000000000000000000")
	x1 = MustFromString("64000000000000000000")
	a1 = MustFromString("6235149080811616882910000000")
)

// 20 decimal terms, x2..x11 and e^(x_n).
var expTerms = []struct{ x, a *big.Int }{
	{MustFromString("3200000000000000000000"), MustFromString("7896296018268069516100000000000000")},
	{MustFromString("1600000000000000000000"), MustFromString("888611052050787263676000000")},
	{MustFromString("800000000000000000000"), MustFromString("298095798704172827474000")},
	{MustFromString("400000000000000000000"), MustFromString("5459815003314423907810")},
	{MustFromString("200000000000000000000"), MustFromString("738905609893065022723")},
	{MustFromString("100000000000000000000"), MustFromString("271828182845904523536")},
	{MustFromString("50000000000000000000"), MustFromString("164872127070012814685")},
	{MustFromString("25000000000000000000"), MustFromString("128402541668774148407")},
	{MustFromString("12500000000000000000"), MustFromString("113314845306682631683")},
	{MustFromString("6250000000000000000"), MustFromString("106449445891785942956")},
}

// Pow computes x^y for 18-decimal fixed point values using x^y = exp(y * ln(x)).
func Pow(x, y *big.Int) (*big.Int, error) {
	if y.Sign() == 0 {
		return new(big.Int).Set(one18), nil
	}
	if x.Sign() == 0 {
		return new(big.Int), nil
	}
	if x.Sign() < 0 || x.BitLen() > 255 {
		return nil, ErrXOutOfBounds
	}
	if y.Cmp(mildExponentBound) >= 0 {
		return nil, ErrYOutOfBounds
	}

	var logxTimesY *big.Int
	if ln36LowerBound.Cmp(x) < 0 && x.Cmp(ln36UpperBound) < 0 {
		ln36x := ln36(x)
		// ln36x has 36 decimals; split it to keep 36 digits of precision in the product.
		hi := new(big.Int).Quo(ln36x, one18)
		hi.Mul(hi, y)
		lo := new(big.Int).Rem(ln36x, one18)
		lo.Mul(lo, y)
		lo.Quo(lo, one18)
		logxTimesY = hi.Add(hi, lo)
	} else {
		logxTimesY = new(big.Int).Mul(ln(x), y)
	}
	logxTimesY.Quo(logxTimesY, one18)

	if logxTimesY.Cmp(minNaturalExponent) < 0 || logxTimesY.Cmp(maxNaturalExponent) > 0 {
		return nil, ErrProductOutOfBounds
	}
	return Exp(logxTimesY)
}

// Exp computes e^x for an 18-decimal fixed point exponent.
func Exp(x *big.Int) (*big.Int, error) {
	if x.Cmp(minNaturalExponent) < 0 || x.Cmp(maxNaturalExponent) > 0 {
		return nil, ErrInvalidExponent
	}

	if x.Sign() < 0 {
		inverse, err := Exp(new(big.Int).Neg(x))
		if err != nil {
			return nil, err
		}
		out := new(big.Int).Mul(one18, one18)
		return out.Quo(out, inverse), nil
	}

	x = new(big.Int).Set(x)
	firstAN := big.NewInt(1)
	if x.Cmp(x0) >= 0 {
		x.Sub(x, x0)
		firstAN = a0
	} else if x.Cmp(x1) >= 0 {
		x.Sub(x, x1)
		firstAN = a1
	}

	// Switch to 20 decimals for the remaining decomposition and the series.
	x.Mul(x, hundred)

	product := new(big.Int).Set(one20)
	for _, term := range expTerms[:8] {
		if x.Cmp(term.x) >= 0 {
			x.Sub(x, term.x)
			product.Mul(product, term.a)
			product.Quo(product, one20)
		}
	}

	seriesSum := new(big.Int).Set(one20)
	term := new(big.Int).Set(x)
	seriesSum.Add(seriesSum, term)
	for i := int64(2); i <= 12; i++ {
		term.Mul(term, x)
		term.Quo(term, one20)
		term.Quo(term, big.NewInt(i))
		seriesSum.Add(seriesSum, term)
	}

	out := product.Mul(product, seriesSum)
	out.Quo(out, one20)
	out.Mul(out, firstAN)
	return out.Quo(out, hundred), nil
}

// Ln computes the natural logarithm of an 18-decimal fixed point value.
func Ln(a *big.Int) (*big.Int, error) {
	if a.Sign() <= 0 {
		return nil, ErrXOutOfBounds
	}
	if ln36LowerBound.Cmp(a) < 0 && a.Cmp(ln36UpperBound) < 0 {
		return new(big.Int).Quo(ln36(a), one18), nil
	}
	return ln(a), nil
}

func ln(a *big.Int) *big.Int {
	if a.Cmp(one18) < 0 {
		inverse := new(big.Int).Mul(one18, one18)
		inverse.Quo(inverse, a)
		return new(big.Int).Neg(ln(inverse))
	}

	a = new(big.Int).Set(a)
	sum := new(big.Int)
	if a.Cmp(new(big.Int).Mul(a0, one18)) >= 0 {
		a.Quo(a, a0)
		sum.Add(sum, x0)
	}
	if a.Cmp(new(big.Int).Mul(a1, one18)) >= 0 {
		a.Quo(a, a1)
		sum.Add(sum, x1)
	}

	sum.Mul(sum, hundred)
	a.Mul(a, hundred)

	for _, term := range expTerms {
		if a.Cmp(term.a) >= 0 {
			a.Mul(a, one20)
			a.Quo(a, term.a)
			sum.Add(sum, term.x)
		}
	}

	// z = (a - 1) / (a + 1), ln(a) = 2 * (z + z^3/3 + z^5/5 + ...)
	num := new(big.Int).Sub(a, one20)
	num.Mul(num, one20)
	z := num.Quo(num, new(big.Int).Add(a, one20))
	zSquared := new(big.Int).Mul(z, z)
	zSquared.Quo(zSquared, one20)

	n := new(big.Int).Set(z)
	seriesSum := new(big.Int).Set(n)
	for _, d := range []int64{3, 5, 7, 9, 11} {
		n.Mul(n, zSquared)
		n.Quo(n, one20)
		seriesSum.Add(seriesSum, new(big.Int).Quo(n, big.NewInt(d)))
	}
	seriesSum.Mul(seriesSum, two)

	out := sum.Add(sum, seriesSum)
	return out.Quo(out, hundred)
}

// ln36 computes ln(x) with 36 decimals for x close to one.
func ln36(x *big.Int) *big.Int {
	x = new(big.Int).Mul(x, one18)

	num := new(big.Int).Sub(x, one36)
	num.Mul(num, one36)
	z := num.Quo(num, new(big.Int).Add(x, one36))
	zSquared := new(big.Int).Mul(z, z)
	zSquared.Quo(zSquared, one36)

	n := new(big.Int).Set(z)
	seriesSum := new(big.Int).Set(n)
	for _, d := range []int64{3, 5, 7, 9, 11, 13, 15} {
		n.Mul(n, zSquared)
		n.Quo(n, one36)
		seriesSum.Add(seriesSum, new(big.Int).Quo(n, big.NewInt(d)))
	}
	return seriesSum.Mul(seriesSum, two)
}
