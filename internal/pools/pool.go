// Package pools binds raw pool snapshots to their invariant math. Every pool family
// implements BasePool; amounts are native-decimal TokenAmounts at the boundary and
// 18-decimal scaled values inside the math.
package pools

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"swapRouter/internal/fixedpoint"
	"swapRouter/internal/model"
)

var (
	// ErrPoolMath marks every failure raised while quoting a single pool.
	ErrPoolMath         = errors.New("pool math")
	ErrInvalidTokenPair = fmt.Errorf("%w: invalid token pair for pool", ErrPoolMath)
)

// BasePool is the capability shared by every pool family.
type BasePool interface {
	ID() string
	Address() common.Address
	PoolType() string
	ProtocolVersion() int
	SwapFee() *big.Int
	Tokens() []model.Token

	// SwapGivenIn rounds the output down, SwapGivenOut rounds the input up.
	SwapGivenIn(tokenIn, tokenOut model.Token, amountIn model.TokenAmount) (model.TokenAmount, error)
	SwapGivenOut(tokenIn, tokenOut model.Token, amountOut model.TokenAmount) (model.TokenAmount, error)

	// GetLimitAmountSwap is expressed in tokenIn units for GivenIn and tokenOut units for GivenOut.
	GetLimitAmountSwap(tokenIn, tokenOut model.Token, kind model.SwapKind) (*big.Int, error)
	GetNormalizedLiquidity(tokenIn, tokenOut model.Token) (*big.Int, error)

	AddSwapFeeAmount(amount model.TokenAmount) (model.TokenAmount, error)
	SubtractSwapFeeAmount(amount model.TokenAmount) (model.TokenAmount, error)
}

// PoolToken is a pool member with its balance in native decimals and its price rate.
type PoolToken struct {
	model.Token
	Index   int
	Balance *big.Int
	Rate    *big.Int
	Weight  *big.Int
}

// Scaled18 returns the balance in 18 decimals, adjusted by the price rate.
func (t PoolToken) Scaled18() *big.Int {
	scaled := new(big.Int).Mul(t.Balance, t.Scalar())
	out, err := fixedpoint.MulDown(scaled, t.Rate)
	if err != nil {
		return scaled
	}
	return out
}

// poolBase carries the fields and fee helpers common to all families.
type poolBase struct {
	id              string
	address         common.Address
	poolType        string
	protocolVersion int
	swapFee         *big.Int
	tokens          []PoolToken
}

func (p *poolBase) ID() string              { return p.id }
func (p *poolBase) Address() common.Address { return p.address }
func (p *poolBase) PoolType() string        { return p.poolType }
func (p *poolBase) ProtocolVersion() int    { return p.protocolVersion }
func (p *poolBase) SwapFee() *big.Int       { return new(big.Int).Set(p.swapFee) }

func (p *poolBase) Tokens() []model.Token {
	out := make([]model.Token, len(p.tokens))
	for i, t := range p.tokens {
		out[i] = t.Token
	}
	return out
}

// AddSwapFeeAmount grosses up a net amount: amount / (1 - fee), rounded up.
func (p *poolBase) AddSwapFeeAmount(amount model.TokenAmount) (model.TokenAmount, error) {
	out, err := amount.DivUpFixed(fixedpoint.Complement(p.swapFee))
	if err != nil {
		return model.TokenAmount{}, mathErr(err)
	}
	return out, nil
}

// SubtractSwapFeeAmount nets down a gross amount: amount - amount * fee, fee rounded up.
func (p *poolBase) SubtractSwapFeeAmount(amount model.TokenAmount) (model.TokenAmount, error) {
	fee, err := amount.MulUpFixed(p.swapFee)
	if err != nil {
		return model.TokenAmount{}, mathErr(err)
	}
	out, err := amount.Sub(fee)
	if err != nil {
		return model.TokenAmount{}, mathErr(err)
	}
	return out, nil
}

func (p *poolBase) tokenIndex(token model.Token) int {
	for i, t := range p.tokens {
		if t.Address == token.Address {
			return i
		}
	}
	return -1
}

func (p *poolBase) pair(tokenIn, tokenOut model.Token) (int, int, error) {
	in, out := p.tokenIndex(tokenIn), p.tokenIndex(tokenOut)
	if in < 0 || out < 0 || in == out {
		return 0, 0, fmt.Errorf("%w: pool %s %s->%s", ErrInvalidTokenPair, p.id, tokenIn, tokenOut)
	}
	return in, out, nil
}

func mathErr(err error) error {
	if err == nil || errors.Is(err, ErrPoolMath) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrPoolMath, err)
}

// upscale converts a native amount to 18 decimals times the rate.
func upscale(amount model.TokenAmount, rate *big.Int, roundUp bool) (*big.Int, error) {
	if roundUp {
		return fixedpoint.MulUp(amount.Scale18, rate)
	}
	return fixedpoint.MulDown(amount.Scale18, rate)
}

// downscale converts an 18-decimal rated value back into native units of token.
func downscale(token model.Token, scaled, rate *big.Int, roundUp bool) (model.TokenAmount, error) {
	var (
		unrated *big.Int
		err     error
	)
	if roundUp {
		unrated, err = fixedpoint.DivUp(scaled, rate)
	} else {
		unrated, err = fixedpoint.DivDown(scaled, rate)
	}
	if err != nil {
		return model.TokenAmount{}, err
	}
	return model.FromScale18Amount(token, unrated, roundUp), nil
}

// fractionOf returns amount * num / den, rounded down.
func fractionOf(amount *big.Int, num, den int64) *big.Int {
	out := new(big.Int).Mul(amount, big.NewInt(num))
	return out.Quo(out, big.NewInt(den))
}
