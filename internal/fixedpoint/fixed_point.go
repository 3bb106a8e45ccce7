package fixedpoint

import (
	"errors"
	"math/big"
)

var (
	ErrOverflow     = errors.New("fixed point overflow")
	ErrUnderflow    = errors.New("fixed point underflow")
	ErrZeroDivision = errors.New("fixed point division by zero")
)

var (
	// One is 1.0 in 18-decimal fixed point.
	One  = big.NewInt(1e18)
	Two  = big.NewInt(2e18)
	Four = big.NewInt(4e18)

	// MaxUint256 bounds every unsigned intermediate result.
	MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	maxPowRelativeError = big.NewInt(10000)
	bigOne              = big.NewInt(1)
)

// Bounded returns v when it fits into uint256.
func Bounded(v *big.Int) (*big.Int, error) {
	if v.Sign() < 0 {
		return nil, ErrUnderflow
	}
	if v.Cmp(MaxUint256) > 0 {
		return nil, ErrOverflow
	}
	return v, nil
}

func Add(a, b *big.Int) (*big.Int, error) {
	return Bounded(new(big.Int).Add(a, b))
}

func Sub(a, b *big.Int) (*big.Int, error) {
	if a.Cmp(b) < 0 {
		return nil, ErrUnderflow
	}
	return new(big.Int).Sub(a, b), nil
}

// MulDown multiplies two fixed point values, truncating the result.
func MulDown(a, b *big.Int) (*big.Int, error) {
	product, err := Bounded(new(big.Int).Mul(a, b))
	if err != nil {
		return nil, err
	}
	return product.Quo(product, One), nil
}

// MulUp multiplies two fixed point values, rounding the result up.
func MulUp(a, b *big.Int) (*big.Int, error) {
	product, err := Bounded(new(big.Int).Mul(a, b))
	if err != nil {
		return nil, err
	}
	if product.Sign() == 0 {
		return product, nil
	}
	product.Sub(product, bigOne)
	product.Quo(product, One)
	return product.Add(product, bigOne), nil
}

// DivDown divides two fixed point values, truncating the result.
func DivDown(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrZeroDivision
	}
	if a.Sign() == 0 {
		return new(big.Int), nil
	}
	inflated, err := Bounded(new(big.Int).Mul(a, One))
	if err != nil {
		return nil, err
	}
	return inflated.Quo(inflated, b), nil
}

// DivUp divides two fixed point values, rounding the result up.
func DivUp(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrZeroDivision
	}
	if a.Sign() == 0 {
		return new(big.Int), nil
	}
	inflated, err := Bounded(new(big.Int).Mul(a, One))
	if err != nil {
		return nil, err
	}
	inflated.Sub(inflated, bigOne)
	inflated.Quo(inflated, b)
	return inflated.Add(inflated, bigOne), nil
}

// PowDown returns x^y rounded down, accounting for the relative error of LogExpMath.
func PowDown(x, y *big.Int) (*big.Int, error) {
	switch {
	case y.Cmp(One) == 0:
		return new(big.Int).Set(x), nil
	case y.Cmp(Two) == 0:
		return MulDown(x, x)
	case y.Cmp(Four) == 0:
		square, err := MulDown(x, x)
		if err != nil {
			return nil, err
		}
		return MulDown(square, square)
	}

	raw, err := Pow(x, y)
	if err != nil {
		return nil, err
	}
	maxError, err := powMaxError(raw)
	if err != nil {
		return nil, err
	}
	if raw.Cmp(maxError) < 0 {
		return new(big.Int), nil
	}
	return raw.Sub(raw, maxError), nil
}

// PowUp returns x^y rounded up, accounting for the relative error of LogExpMath.
func PowUp(x, y *big.Int) (*big.Int, error) {
	switch {
	case y.Cmp(One) == 0:
		return new(big.Int).Set(x), nil
	case y.Cmp(Two) == 0:
		return MulUp(x, x)
	case y.Cmp(Four) == 0:
		square, err := MulUp(x, x)
		if err != nil {
			return nil, err
		}
		return MulUp(square, square)
	}

	raw, err := Pow(x, y)
	if err != nil {
		return nil, err
	}
	maxError, err := powMaxError(raw)
	if err != nil {
		return nil, err
	}
	return Add(raw, maxError)
}

func powMaxError(raw *big.Int) (*big.Int, error) {
	maxError, err := MulUp(raw, maxPowRelativeError)
	if err != nil {
		return nil, err
	}
	return maxError.Add(maxError, bigOne), nil
}

// Complement returns 1 - x, clamped at zero.
func Complement(x *big.Int) *big.Int {
	if x.Cmp(One) >= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(One, x)
}

// DivUpInt is integer division rounding up, as used outside fixed point scaling.
func DivUpInt(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrZeroDivision
	}
	if a.Sign() == 0 {
		return new(big.Int), nil
	}
	out := new(big.Int).Sub(a, bigOne)
	out.Quo(out, b)
	return out.Add(out, bigOne), nil
}

// DivDownInt is integer division truncating the result.
func DivDownInt(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrZeroDivision
	}
	return new(big.Int).Quo(a, b), nil
}

// MustFromString parses a base-10 integer constant.
func MustFromString(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("fixedpoint: invalid integer constant " + s)
	}
	return v
}
