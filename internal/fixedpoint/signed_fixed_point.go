package fixedpoint

import "math/big"

// Signed fixed point helpers used by the elliptic (GyroE) math. Division truncates toward
// zero, matching int256 semantics; "Mag" variants round by magnitude.

var (
	// OneXp is 1.0 in 38-decimal extra precision.
	OneXp = MustFromString("100000000000000000000000000000000000000")

	e19 = MustFromString("10000000000000000000")
)

func MulDownMag(a, b *big.Int) *big.Int {
	out := new(big.Int).Mul(a, b)
	return out.Quo(out, One)
}

func MulUpMag(a, b *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	switch product.Sign() {
	case 1:
		product.Sub(product, bigOne)
		product.Quo(product, One)
		return product.Add(product, bigOne)
	case -1:
		product.Add(product, bigOne)
		product.Quo(product, One)
		return product.Sub(product, bigOne)
	default:
		return product
	}
}

func DivDownMag(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrZeroDivision
	}
	if a.Sign() == 0 {
		return new(big.Int), nil
	}
	out := new(big.Int).Mul(a, One)
	return out.Quo(out, b), nil
}

func DivUpMag(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrZeroDivision
	}
	if a.Sign() == 0 {
		return new(big.Int), nil
	}
	a = new(big.Int).Set(a)
	b = new(big.Int).Set(b)
	if b.Sign() < 0 {
		b.Neg(b)
		a.Neg(a)
	}
	inflated := a.Mul(a, One)
	if inflated.Sign() > 0 {
		inflated.Sub(inflated, bigOne)
		inflated.Quo(inflated, b)
		return inflated.Add(inflated, bigOne), nil
	}
	inflated.Add(inflated, bigOne)
	inflated.Quo(inflated, b)
	return inflated.Sub(inflated, bigOne), nil
}

// MulXp multiplies two 38-decimal values.
func MulXp(a, b *big.Int) *big.Int {
	out := new(big.Int).Mul(a, b)
	return out.Quo(out, OneXp)
}

// DivXp divides two 38-decimal values.
func DivXp(a, b *big.Int) (*big.Int, error) {
	if b.Sign() == 0 {
		return nil, ErrZeroDivision
	}
	if a.Sign() == 0 {
		return new(big.Int), nil
	}
	out := new(big.Int).Mul(a, OneXp)
	return out.Quo(out, b), nil
}

// MulDownXpToNp multiplies an 18-decimal a by a 38-decimal b, returning 18 decimals rounded down.
func MulDownXpToNp(a, b *big.Int) *big.Int {
	b1 := new(big.Int).Quo(b, e19)
	b2 := new(big.Int).Rem(b, e19)
	prod1 := b1.Mul(a, b1)
	prod2 := b2.Mul(a, b2)

	out := new(big.Int).Quo(prod2, e19)
	out.Add(out, prod1)
	if prod1.Sign() >= 0 && prod2.Sign() >= 0 {
		return out.Quo(out, e19)
	}
	out.Add(out, bigOne)
	out.Quo(out, e19)
	return out.Sub(out, bigOne)
}

// MulUpXpToNp multiplies an 18-decimal a by a 38-decimal b, returning 18 decimals rounded up.
func MulUpXpToNp(a, b *big.Int) *big.Int {
	b1 := new(big.Int).Quo(b, e19)
	b2 := new(big.Int).Rem(b, e19)
	prod1 := b1.Mul(a, b1)
	prod2 := b2.Mul(a, b2)

	out := new(big.Int).Quo(prod2, e19)
	out.Add(out, prod1)
	if prod1.Sign() <= 0 && prod2.Sign() <= 0 {
		return out.Quo(out, e19)
	}
	out.Sub(out, bigOne)
	out.Quo(out, e19)
	return out.Add(out, bigOne)
}
