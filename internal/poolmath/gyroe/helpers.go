package gyroe

import (
	"math/big"

	fp "swapRouter/internal/fixedpoint"
)

// calc carries the first division error through a chain of signed fixed point steps.
type calc struct {
	err error
}

func (c *calc) divXp(a, b *big.Int) *big.Int {
	return c.keep(fp.DivXp(a, b))
}

func (c *calc) divDownMag(a, b *big.Int) *big.Int {
	return c.keep(fp.DivDownMag(a, b))
}

func (c *calc) divUpMag(a, b *big.Int) *big.Int {
	return c.keep(fp.DivUpMag(a, b))
}

func (c *calc) sqrt(v *big.Int) *big.Int {
	return c.keep(Sqrt(v, 5))
}

func (c *calc) keep(v *big.Int, err error) *big.Int {
	if err != nil {
		if c.err == nil {
			c.err = err
		}
		return new(big.Int)
	}
	return v
}

var (
	mulDown   = fp.MulDownMag
	mulUp     = fp.MulUpMag
	mulXp     = fp.MulXp
	downXpNp  = fp.MulDownXpToNp
	upXpNp    = fp.MulUpXpToNp
	bigOne    = big.NewInt(1)
	bigTwo    = big.NewInt(2)
	bigThree  = big.NewInt(3)
	bigSeven  = big.NewInt(7)
	bigNine   = big.NewInt(9)
	bigTwenty = big.NewInt(20)
	bigForty  = big.NewInt(40)
	e36       = fp.MustFromString("1000000000000000000000000000000000000")
)

func plus(a, b *big.Int) *big.Int  { return new(big.Int).Add(a, b) }
func minus(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) }
func neg(a *big.Int) *big.Int      { return new(big.Int).Neg(a) }
func times(a, b *big.Int) *big.Int { return new(big.Int).Mul(a, b) }

func dSqPow4(d DerivedParams) *big.Int {
	return mulXp(mulXp(mulXp(d.DSq, d.DSq), d.DSq), d.DSq)
}

// calcAtAChi computes (A t) . (A chi) in 18 decimals, rounded down.
func (c *calc) calcAtAChi(x, y *big.Int, p Params, d DerivedParams) *big.Int {
	dSq2 := mulXp(d.DSq, d.DSq)

	// (cx - sy) * (w/lambda + z) / lambda
	termXp := c.divXp(c.divDownMag(plus(c.divDownMag(d.W, p.Lambda), d.Z), p.Lambda), dSq2)
	val := downXpNp(minus(mulDown(x, p.C), mulDown(y, p.S)), termXp)

	// (x lambda s + y lambda c) * u
	termNp := plus(mulDown(mulDown(x, p.Lambda), p.S), mulDown(mulDown(y, p.Lambda), p.C))
	val.Add(val, downXpNp(termNp, c.divXp(d.U, dSq2)))

	// (sx + cy) * v
	termNp = plus(mulDown(x, p.S), mulDown(y, p.C))
	val.Add(val, downXpNp(termNp, c.divXp(d.V, dSq2)))
	return val
}

// calcAChiAChiInXp computes (A chi) . (A chi) in 38 decimals, rounded up.
func (c *calc) calcAChiAChiInXp(p Params, d DerivedParams) *big.Int {
	dSq3 := mulXp(mulXp(d.DSq, d.DSq), d.DSq)

	val := mulUp(p.Lambda, c.divXp(mulXp(times(bigTwo, d.U), d.V), dSq3))
	uPlusOne := plus(d.U, bigOne)
	val.Add(val, mulUp(mulUp(c.divXp(mulXp(uPlusOne, uPlusOne), dSq3), p.Lambda), p.Lambda))
	val.Add(val, c.divXp(mulXp(d.V, d.V), dSq3))

	termXp := plus(c.divUpMag(d.W, p.Lambda), d.Z)
	val.Add(val, c.divXp(mulXp(termXp, termXp), dSq3))
	return val
}

// calcMinAtxAChiySqPlusAtxSq computes -(At)_x^2 (A chi)_y^2 + (At)_x^2, rounded down.
func (c *calc) calcMinAtxAChiySqPlusAtxSq(x, y *big.Int, p Params, d DerivedParams) *big.Int {
	termNp := plus(mulUp(mulUp(mulUp(x, x), p.C), p.C), mulUp(mulUp(mulUp(y, y), p.S), p.S))
	termNp.Sub(termNp, mulDown(mulDown(mulDown(x, y), times(p.C, bigTwo)), p.S))

	termXp := mulXp(d.U, d.U)
	termXp.Add(termXp, c.divDownMag(mulXp(times(bigTwo, d.U), d.V), p.Lambda))
	termXp.Add(termXp, c.divDownMag(c.divDownMag(mulXp(d.V, d.V), p.Lambda), p.Lambda))
	termXp = c.divXp(termXp, dSqPow4(d))

	val := downXpNp(neg(termNp), termXp)
	val.Add(val, downXpNp(
		c.divDownMag(c.divDownMag(minus(termNp, bigNine), p.Lambda), p.Lambda),
		c.divXp(fp.OneXp, d.DSq),
	))
	return val
}

// calc2AtxAtyAChixAChiy computes 2 (At)_x (At)_y (A chi)_x (A chi)_y, rounded down.
func (c *calc) calc2AtxAtyAChixAChiy(x, y *big.Int, p Params, d DerivedParams) *big.Int {
	termNp := mulDown(mulDown(minus(mulDown(x, x), mulUp(y, y)), times(bigTwo, p.C)), p.S)
	xy := mulDown(y, times(bigTwo, x))
	termNp.Add(termNp, mulDown(mulDown(xy, p.C), p.C))
	termNp.Sub(termNp, mulDown(mulDown(xy, p.S), p.S))

	termXp := mulXp(d.Z, d.U)
	termXp.Add(termXp, c.divDownMag(c.divDownMag(mulXp(d.W, d.V), p.Lambda), p.Lambda))
	termXp.Add(termXp, c.divDownMag(plus(mulXp(d.W, d.U), mulXp(d.Z, d.V)), p.Lambda))
	termXp = c.divXp(termXp, dSqPow4(d))

	return downXpNp(termNp, termXp)
}

// calcMinAtyAChixSqPlusAtySq computes -(At)_y^2 (A chi)_x^2 + (At)_y^2, rounded down.
func (c *calc) calcMinAtyAChixSqPlusAtySq(x, y *big.Int, p Params, d DerivedParams) *big.Int {
	termNp := plus(mulUp(mulUp(mulUp(x, x), p.S), p.S), mulUp(mulUp(mulUp(y, y), p.C), p.C))
	termNp.Add(termNp, mulUp(mulUp(mulUp(x, y), times(p.S, bigTwo)), p.C))

	termXp := mulXp(d.Z, d.Z)
	termXp.Add(termXp, c.divDownMag(c.divDownMag(mulXp(d.W, d.W), p.Lambda), p.Lambda))
	termXp.Add(termXp, c.divDownMag(mulXp(times(bigTwo, d.Z), d.W), p.Lambda))
	termXp = c.divXp(termXp, dSqPow4(d))

	val := downXpNp(neg(termNp), termXp)
	val.Add(val, downXpNp(minus(termNp, bigNine), c.divXp(fp.OneXp, d.DSq)))
	return val
}

// calcInvariantSqrt returns the square root term of the invariant and its error.
func (c *calc) calcInvariantSqrt(x, y *big.Int, p Params, d DerivedParams) (*big.Int, *big.Int) {
	val := c.calcMinAtxAChiySqPlusAtxSq(x, y, p, d)
	val.Add(val, c.calc2AtxAtyAChixAChiy(x, y, p, d))
	val.Add(val, c.calcMinAtyAChixSqPlusAtySq(x, y, p, d))

	err := plus(mulUp(x, x), mulUp(y, y))
	err.Quo(err, fp.OneXp)

	if val.Sign() > 0 {
		return c.sqrt(val), err
	}
	return new(big.Int), err
}

// VirtualOffset0 is the x offset a of the ellipse center for invariant r.
func VirtualOffset0(p Params, d DerivedParams, r Vector2) (*big.Int, error) {
	c := &calc{}
	a := c.virtualOffset0(p, d, r)
	return a, c.err
}

// VirtualOffset1 is the y offset b of the ellipse center for invariant r.
func VirtualOffset1(p Params, d DerivedParams, r Vector2) (*big.Int, error) {
	c := &calc{}
	b := c.virtualOffset1(p, d, r)
	return b, c.err
}

func (c *calc) virtualOffset0(p Params, d DerivedParams, r Vector2) *big.Int {
	termXp := c.divXp(d.TauBeta.X, d.DSq)
	var a *big.Int
	if d.TauBeta.X.Sign() > 0 {
		a = upXpNp(mulUp(mulUp(r.X, p.Lambda), p.C), termXp)
	} else {
		a = upXpNp(mulDown(mulDown(r.Y, p.Lambda), p.C), termXp)
	}
	return a.Add(a, upXpNp(mulUp(r.X, p.S), c.divXp(d.TauBeta.Y, d.DSq)))
}

func (c *calc) virtualOffset1(p Params, d DerivedParams, r Vector2) *big.Int {
	termXp := c.divXp(d.TauAlpha.X, d.DSq)
	var b *big.Int
	if d.TauAlpha.X.Sign() < 0 {
		b = upXpNp(mulUp(mulUp(r.X, p.Lambda), p.S), neg(termXp))
	} else {
		b = upXpNp(mulDown(mulDown(neg(r.Y), p.Lambda), p.S), termXp)
	}
	return b.Add(b, upXpNp(mulUp(r.X, p.C), c.divXp(d.TauAlpha.Y, d.DSq)))
}

// MaxBalances0 is the largest x balance reachable on the curve for invariant r.
func MaxBalances0(p Params, d DerivedParams, r Vector2) (*big.Int, error) {
	c := &calc{}
	termXp1 := c.divXp(minus(d.TauBeta.X, d.TauAlpha.X), d.DSq)
	termXp2 := c.divXp(minus(d.TauBeta.Y, d.TauAlpha.Y), d.DSq)

	xp := downXpNp(mulDown(mulDown(r.Y, p.Lambda), p.C), termXp1)
	var second *big.Int
	if termXp2.Sign() > 0 {
		second = mulDown(r.Y, p.S)
	} else {
		second = mulUp(r.X, p.S)
	}
	xp.Add(xp, downXpNp(second, termXp2))
	return xp, c.err
}

// MaxBalances1 is the largest y balance reachable on the curve for invariant r.
func MaxBalances1(p Params, d DerivedParams, r Vector2) (*big.Int, error) {
	c := &calc{}
	termXp1 := c.divXp(minus(d.TauBeta.X, d.TauAlpha.X), d.DSq)
	termXp2 := c.divXp(minus(d.TauAlpha.Y, d.TauBeta.Y), d.DSq)

	yp := downXpNp(mulDown(mulDown(r.Y, p.Lambda), p.S), termXp1)
	var second *big.Int
	if termXp2.Sign() > 0 {
		second = mulDown(r.Y, p.C)
	} else {
		second = mulUp(r.X, p.C)
	}
	yp.Add(yp, downXpNp(second, termXp2))
	return yp, c.err
}

// solveQuadraticSwap returns the new balance of the output asset. The x/y and s/c roles are
// swapped by the caller to solve for either coordinate.
func (c *calc) solveQuadraticSwap(lambda, x, s, cos *big.Int, r, ab, tauBeta Vector2, dSq *big.Int) *big.Int {
	lamBarX := minus(fp.OneXp, c.divDownMag(c.divDownMag(fp.OneXp, lambda), lambda))
	lamBarY := minus(fp.OneXp, c.divUpMag(c.divUpMag(fp.OneXp, lambda), lambda))

	xp := minus(x, ab.X)
	var qb *big.Int
	if xp.Sign() > 0 {
		qb = upXpNp(mulDown(mulDown(neg(xp), s), cos), c.divXp(lamBarY, dSq))
	} else {
		qb = upXpNp(mulUp(mulUp(neg(xp), s), cos), plus(c.divXp(lamBarX, dSq), bigOne))
	}

	sTermX := c.divXp(mulDown(mulDown(lamBarY, s), s), dSq)
	sTermY := mulUp(lamBarX, s)
	sTermY = plus(c.divXp(mulUp(sTermY, s), plus(dSq, bigOne)), bigOne)
	sTermX = minus(fp.OneXp, sTermX)
	sTermY = minus(fp.OneXp, sTermY)

	qc := neg(c.calcXpXpDivLambdaLambda(x, r, lambda, s, cos, tauBeta, dSq))
	qc.Add(qc, downXpNp(mulDown(r.Y, r.Y), sTermY))
	if qc.Sign() > 0 {
		qc = c.sqrt(qc)
	} else {
		qc = new(big.Int)
	}

	diff := minus(qb, qc)
	var qa *big.Int
	if diff.Sign() > 0 {
		qa = upXpNp(diff, plus(c.divXp(fp.OneXp, sTermY), bigOne))
	} else {
		qa = upXpNp(diff, c.divXp(fp.OneXp, sTermX))
	}
	return qa.Add(qa, ab.Y)
}

// calcXpXpDivLambdaLambda computes x'x'/lambda^2 where x' is x shifted by the offset.
func (c *calc) calcXpXpDivLambdaLambda(x *big.Int, r Vector2, lambda, s, cos *big.Int, tauBeta Vector2, dSq *big.Int) *big.Int {
	dSqSq := mulXp(dSq, dSq)
	rxSq := mulUp(r.X, r.X)

	// r^2 2sc tau(beta)_x tau(beta)_y
	termXp := c.divXp(mulXp(tauBeta.X, tauBeta.Y), dSqSq)
	var qa *big.Int
	if termXp.Sign() > 0 {
		qa = mulUp(rxSq, times(bigTwo, s))
		qa = upXpNp(mulUp(qa, cos), plus(termXp, bigSeven))
	} else {
		qa = mulDown(mulDown(r.Y, r.Y), times(bigTwo, s))
		qa = upXpNp(mulDown(qa, cos), termXp)
	}

	// -r x 2c tau(beta)_x
	var qb *big.Int
	if tauBeta.X.Sign() < 0 {
		qb = upXpNp(mulUp(mulUp(r.X, x), times(bigTwo, cos)), plus(neg(c.divXp(tauBeta.X, dSq)), bigThree))
	} else {
		qb = upXpNp(mulDown(mulDown(neg(r.Y), x), times(bigTwo, cos)), c.divXp(tauBeta.X, dSq))
	}
	qa.Add(qa, qb)

	// r^2 s^2 tau(beta)_y^2
	termXp = plus(c.divXp(mulXp(tauBeta.Y, tauBeta.Y), dSqSq), bigSeven)
	qb = mulUp(rxSq, s)
	qb = upXpNp(mulUp(qb, s), termXp)

	// -r x 2s tau(beta)_y
	qc := upXpNp(mulDown(mulDown(neg(r.Y), x), times(bigTwo, s)), c.divXp(tauBeta.Y, dSq))

	qb.Add(qb, qc)
	qb.Add(qb, mulUp(x, x))
	if qb.Sign() > 0 {
		qb = c.divUpMag(qb, lambda)
	} else {
		qb = c.divDownMag(qb, lambda)
	}

	qa.Add(qa, qb)
	if qa.Sign() > 0 {
		qa = c.divUpMag(qa, lambda)
	} else {
		qa = c.divDownMag(qa, lambda)
	}

	// r^2 c^2 tau(beta)_x^2
	termXp = plus(c.divXp(mulXp(tauBeta.X, tauBeta.X), dSqSq), bigSeven)
	val := mulUp(mulUp(rxSq, cos), cos)
	val = upXpNp(val, termXp)
	return val.Add(val, qa)
}
