// Package gyroe implements the elliptic concentrated liquidity (ECLP) invariant.
package gyroe

import (
	"errors"
	"math/big"

	"swapRouter/internal/fixedpoint"
)

// Vector2 is a point in the rotated coordinate system.
type Vector2 struct {
	X *big.Int
	Y *big.Int
}

// Params are the 18-decimal pool parameters.
type Params struct {
	Alpha  *big.Int
	Beta   *big.Int
	C      *big.Int
	S      *big.Int
	Lambda *big.Int
}

// DerivedParams are the 38-decimal values computed off-chain at pool creation.
type DerivedParams struct {
	TauAlpha Vector2
	TauBeta  Vector2
	U        *big.Int
	V        *big.Int
	W        *big.Int
	Z        *big.Int
	DSq      *big.Int
}

var errInvalidParams = errors.New("gyroe: invalid parameters")

// Validate checks the ranges the math relies on.
func (p Params) Validate() error {
	for _, v := range []*big.Int{p.Alpha, p.Beta, p.C, p.S, p.Lambda} {
		if v == nil || v.Sign() <= 0 {
			return errInvalidParams
		}
	}
	if p.Alpha.Cmp(p.Beta) >= 0 || p.Lambda.Cmp(fixedpoint.One) < 0 {
		return errInvalidParams
	}
	return nil
}

// Validate checks that every derived value is set and dSq is positive.
func (d DerivedParams) Validate() error {
	for _, v := range []*big.Int{d.TauAlpha.X, d.TauAlpha.Y, d.TauBeta.X, d.TauBeta.Y, d.U, d.V, d.W, d.Z, d.DSq} {
		if v == nil {
			return errInvalidParams
		}
	}
	if d.DSq.Sign() <= 0 {
		return errInvalidParams
	}
	return nil
}

const derivedPrecision = 512

// ComputeDerivedParams evaluates tau(alpha), tau(beta), u, v, w, z and dSq in high precision
// and truncates them to 38 decimals.
func ComputeDerivedParams(p Params) (DerivedParams, error) {
	if err := p.Validate(); err != nil {
		return DerivedParams{}, err
	}

	alpha, beta := toFloat(p.Alpha), toFloat(p.Beta)
	c, s, lambda := toFloat(p.C), toFloat(p.S), toFloat(p.Lambda)

	dSq := add(mul(c, c), mul(s, s))
	d := newFloat().Sqrt(dSq)

	tau := func(x *big.Float) (vector2f, error) {
		cd, sd := quo(c, d), quo(s, d)
		first := add(cd, mul(x, sd))
		first = quo(mul(first, first), mul(lambda, lambda))
		second := sub(mul(x, cd), sd)
		second = mul(second, second)
		norm := newFloat().Sqrt(add(first, second))
		if norm.Sign() == 0 {
			return vector2f{}, errInvalidParams
		}
		dx := quo(newFloat().SetInt64(1), norm)
		return vector2f{
			X: mul(sub(mul(x, c), s), dx),
			Y: quo(mul(add(c, mul(s, x)), dx), lambda),
		}, nil
	}

	tauAlpha, err := tau(alpha)
	if err != nil {
		return DerivedParams{}, err
	}
	tauBeta, err := tau(beta)
	if err != nil {
		return DerivedParams{}, err
	}

	sc := mul(s, c)
	w := mul(sc, sub(tauBeta.Y, tauAlpha.Y))
	z := add(mul(mul(c, c), tauBeta.X), mul(mul(s, s), tauAlpha.X))
	u := mul(sc, sub(tauBeta.X, tauAlpha.X))
	v := add(mul(mul(s, s), tauBeta.Y), mul(mul(c, c), tauAlpha.Y))

	return DerivedParams{
		TauAlpha: Vector2{X: toXp(tauAlpha.X), Y: toXp(tauAlpha.Y)},
		TauBeta:  Vector2{X: toXp(tauBeta.X), Y: toXp(tauBeta.Y)},
		U:        toXp(u),
		V:        toXp(v),
		W:        toXp(w),
		Z:        toXp(z),
		DSq:      toXp(dSq),
	}, nil
}

// vector2f is the floating point counterpart of Vector2.
type vector2f struct {
	X *big.Float
	Y *big.Float
}

func newFloat() *big.Float {
	return new(big.Float).SetPrec(derivedPrecision)
}

func toFloat(v *big.Int) *big.Float {
	out := newFloat().SetInt(v)
	return out.Quo(out, newFloat().SetInt(fixedpoint.One))
}

func toXp(v *big.Float) *big.Int {
	scaled := newFloat().Mul(v, newFloat().SetInt(fixedpoint.OneXp))
	out, _ := scaled.Int(nil)
	return out
}

func add(a, b *big.Float) *big.Float { return newFloat().Add(a, b) }
func sub(a, b *big.Float) *big.Float { return newFloat().Sub(a, b) }
func mul(a, b *big.Float) *big.Float { return newFloat().Mul(a, b) }
func quo(a, b *big.Float) *big.Float { return newFloat().Quo(a, b) }
