package model

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"swapRouter/internal/fixedpoint"
)

var ErrTokenMismatch = errors.New("token amounts refer to different tokens")

// TokenAmount is a raw token amount plus its 18-decimal scaled value.
type TokenAmount struct {
	Token   Token
	Amount  *big.Int
	Scale18 *big.Int
}

// NewTokenAmount wraps a raw amount expressed in the token's native decimals.
func NewTokenAmount(token Token, raw *big.Int) TokenAmount {
	amount := new(big.Int).Set(raw)
	return TokenAmount{
		Token:   token,
		Amount:  amount,
		Scale18: new(big.Int).Mul(amount, token.Scalar()),
	}
}

// FromHumanAmount parses a decimal string such as "12.5" into raw units.
func FromHumanAmount(token Token, human string) (TokenAmount, error) {
	value, err := decimal.NewFromString(human)
	if err != nil {
		return TokenAmount{}, fmt.Errorf("parse amount %q: %w", human, err)
	}
	if value.IsNegative() {
		return TokenAmount{}, fmt.Errorf("negative amount %q", human)
	}
	shifted := value.Shift(int32(token.Decimals))
	if !shifted.Equal(shifted.Truncate(0)) {
		return TokenAmount{}, fmt.Errorf("amount %q has more than %d decimals", human, token.Decimals)
	}
	return NewTokenAmount(token, shifted.BigInt()), nil
}

// FromScale18Amount converts an 18-decimal value back into raw units.
func FromScale18Amount(token Token, scale18 *big.Int, roundUp bool) TokenAmount {
	scalar := token.Scalar()
	var raw *big.Int
	if roundUp {
		raw, _ = fixedpoint.DivUpInt(scale18, scalar)
	} else {
		raw = new(big.Int).Quo(scale18, scalar)
	}
	return NewTokenAmount(token, raw)
}

func (t TokenAmount) Add(other TokenAmount) (TokenAmount, error) {
	if !t.Token.IsUnderlyingEqual(other.Token) {
		return TokenAmount{}, ErrTokenMismatch
	}
	return NewTokenAmount(t.Token, new(big.Int).Add(t.Amount, other.Amount)), nil
}

func (t TokenAmount) Sub(other TokenAmount) (TokenAmount, error) {
	if !t.Token.IsUnderlyingEqual(other.Token) {
		return TokenAmount{}, ErrTokenMismatch
	}
	if t.Amount.Cmp(other.Amount) < 0 {
		return TokenAmount{}, fixedpoint.ErrUnderflow
	}
	return NewTokenAmount(t.Token, new(big.Int).Sub(t.Amount, other.Amount)), nil
}

func (t TokenAmount) MulUpFixed(x *big.Int) (TokenAmount, error) {
	return t.apply(fixedpoint.MulUp, x)
}

func (t TokenAmount) MulDownFixed(x *big.Int) (TokenAmount, error) {
	return t.apply(fixedpoint.MulDown, x)
}

func (t TokenAmount) DivUpFixed(x *big.Int) (TokenAmount, error) {
	return t.apply(fixedpoint.DivUp, x)
}

func (t TokenAmount) DivDownFixed(x *big.Int) (TokenAmount, error) {
	return t.apply(fixedpoint.DivDown, x)
}

func (t TokenAmount) apply(op func(a, b *big.Int) (*big.Int, error), x *big.Int) (TokenAmount, error) {
	out, err := op(t.Amount, x)
	if err != nil {
		return TokenAmount{}, err
	}
	return NewTokenAmount(t.Token, out), nil
}

// IsZero reports whether the raw amount is zero.
func (t TokenAmount) IsZero() bool {
	return t.Amount == nil || t.Amount.Sign() == 0
}

// ToHuman formats the amount with the token's decimals.
func (t TokenAmount) ToHuman() string {
	if t.Amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(t.Amount, -int32(t.Token.Decimals)).String()
}

func (t TokenAmount) String() string {
	return fmt.Sprintf("%s %s", t.ToHuman(), t.Token)
}
