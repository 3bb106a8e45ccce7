package pools

import (
	"fmt"
	"math/big"

	"swapRouter/internal/fixedpoint"
	"swapRouter/internal/model"
	"swapRouter/internal/poolmath/linear"
)

// maxLinearBpt is the pre-minted BPT balance of a linear pool (2^112 - 1).
var maxLinearBpt = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 112), big.NewInt(1))

type linearRole uint8

const (
	roleMain linearRole = iota
	roleWrapped
	roleBpt
)

// LinearPool trades a main token, its wrapped version and the pool BPT at a 1:1 nominal
// rate inside the target band.
type LinearPool struct {
	poolBase
	mainIndex     int
	wrappedIndex  int
	bptIndex      int
	virtualSupply *big.Int
	params        linear.Params
}

func NewLinearPool(chainID uint64, raw model.RawPool) (*LinearPool, error) {
	base, err := newPoolBase(chainID, raw)
	if err != nil {
		return nil, err
	}
	pool := &LinearPool{poolBase: base}

	pool.bptIndex = pool.tokenIndex(model.Token{Address: base.address})
	if pool.bptIndex < 0 {
		bpt, err := model.NewToken(chainID, raw.Address, 18, "")
		if err != nil {
			return nil, err
		}
		pool.tokens = append(pool.tokens, PoolToken{Token: bpt, Index: len(pool.tokens), Balance: new(big.Int), Rate: fixedpoint.One, Weight: new(big.Int)})
		pool.bptIndex = len(pool.tokens) - 1
	}
	if len(pool.tokens) != 3 {
		return nil, fmt.Errorf("pool %s: linear pools hold main, wrapped and BPT", raw.ID)
	}

	pool.mainIndex, pool.wrappedIndex = positionOf(pool.tokens, raw.MainIndex), positionOf(pool.tokens, raw.WrappedIndex)
	if pool.mainIndex < 0 || pool.wrappedIndex < 0 || pool.mainIndex == pool.wrappedIndex ||
		pool.mainIndex == pool.bptIndex || pool.wrappedIndex == pool.bptIndex {
		return nil, fmt.Errorf("pool %s: invalid main/wrapped indexes %d/%d", raw.ID, raw.MainIndex, raw.WrappedIndex)
	}

	lower, err := parseFixedOr(raw.LowerTarget, 18, new(big.Int))
	if err != nil {
		return nil, fmt.Errorf("pool %s: lower target: %w", raw.ID, err)
	}
	upper, err := parseFixed(raw.UpperTarget, 18)
	if err != nil {
		return nil, fmt.Errorf("pool %s: upper target: %w", raw.ID, err)
	}
	if lower.Cmp(upper) > 0 {
		return nil, fmt.Errorf("pool %s: lower target above upper target", raw.ID)
	}
	pool.params = linear.Params{Fee: base.swapFee, LowerTarget: lower, UpperTarget: upper}

	pool.virtualSupply, err = parseFixedOr(raw.TotalShares, 18, new(big.Int))
	if err != nil {
		return nil, fmt.Errorf("pool %s: total shares: %w", raw.ID, err)
	}
	return pool, nil
}

// positionOf maps an on-chain token index to its position in the sorted token slice.
func positionOf(tokens []PoolToken, index int) int {
	for i, t := range tokens {
		if t.Index == index {
			return i
		}
	}
	return -1
}

func (p *LinearPool) role(index int) linearRole {
	switch index {
	case p.mainIndex:
		return roleMain
	case p.wrappedIndex:
		return roleWrapped
	default:
		return roleBpt
	}
}

func (p *LinearPool) state() (main, wrapped *big.Int) {
	return p.tokens[p.mainIndex].Scaled18(), p.tokens[p.wrappedIndex].Scaled18()
}

func (p *LinearPool) SwapGivenIn(tokenIn, tokenOut model.Token, amountIn model.TokenAmount) (model.TokenAmount, error) {
	i, j, err := p.pair(tokenIn, tokenOut)
	if err != nil {
		return model.TokenAmount{}, err
	}
	scaledIn, err := upscale(amountIn, p.tokens[i].Rate, false)
	if err != nil {
		return model.TokenAmount{}, mathErr(err)
	}

	main, wrapped := p.state()
	var out *big.Int
	switch in, o := p.role(i), p.role(j); {
	case in == roleMain && o == roleWrapped:
		out, err = linear.WrappedOutPerMainIn(scaledIn, main, p.params)
	case in == roleMain && o == roleBpt:
		out, err = linear.BptOutPerMainIn(scaledIn, main, wrapped, p.virtualSupply, p.params)
	case in == roleWrapped && o == roleMain:
		out, err = linear.MainOutPerWrappedIn(scaledIn, main, p.params)
	case in == roleWrapped && o == roleBpt:
		out, err = linear.BptOutPerWrappedIn(scaledIn, main, wrapped, p.virtualSupply, p.params)
	case in == roleBpt && o == roleMain:
		out, err = linear.MainOutPerBptIn(scaledIn, main, wrapped, p.virtualSupply, p.params)
	default:
		out, err = linear.WrappedOutPerBptIn(scaledIn, main, wrapped, p.virtualSupply, p.params)
	}
	if err != nil {
		return model.TokenAmount{}, mathErr(err)
	}
	result, err := downscale(tokenOut, out, p.tokens[j].Rate, false)
	return result, mathErr(err)
}

func (p *LinearPool) SwapGivenOut(tokenIn, tokenOut model.Token, amountOut model.TokenAmount) (model.TokenAmount, error) {
	i, j, err := p.pair(tokenIn, tokenOut)
	if err != nil {
		return model.TokenAmount{}, err
	}
	scaledOut, err := upscale(amountOut, p.tokens[j].Rate, true)
	if err != nil {
		return model.TokenAmount{}, mathErr(err)
	}

	main, wrapped := p.state()
	var in *big.Int
	switch r, o := p.role(i), p.role(j); {
	case r == roleMain && o == roleWrapped:
		in, err = linear.MainInPerWrappedOut(scaledOut, main, p.params)
	case r == roleMain && o == roleBpt:
		in, err = linear.MainInPerBptOut(scaledOut, main, wrapped, p.virtualSupply, p.params)
	case r == roleWrapped && o == roleMain:
		in, err = linear.WrappedInPerMainOut(scaledOut, main, p.params)
	case r == roleWrapped && o == roleBpt:
		in, err = linear.WrappedInPerBptOut(scaledOut, main, wrapped, p.virtualSupply, p.params)
	case r == roleBpt && o == roleMain:
		in, err = linear.BptInPerMainOut(scaledOut, main, wrapped, p.virtualSupply, p.params)
	default:
		in, err = linear.BptInPerWrappedOut(scaledOut, main, wrapped, p.virtualSupply, p.params)
	}
	if err != nil {
		return model.TokenAmount{}, mathErr(err)
	}
	result, err := downscale(tokenIn, in, p.tokens[i].Rate, true)
	return result, mathErr(err)
}

// GetLimitAmountSwap caps main and wrapped outputs at 99% of the balance. BPT outputs are
// bounded by the unminted share of the pre-minted supply.
func (p *LinearPool) GetLimitAmountSwap(tokenIn, tokenOut model.Token, kind model.SwapKind) (*big.Int, error) {
	_, j, err := p.pair(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	if j == p.bptIndex {
		headroom := new(big.Int).Sub(maxLinearBpt, p.virtualSupply)
		if headroom.Sign() < 0 {
			return new(big.Int), nil
		}
		return headroom, nil
	}

	limitOut := fractionOf(p.tokens[j].Balance, 99, 100)
	if kind == model.GivenOut {
		return limitOut, nil
	}
	in, err := p.SwapGivenOut(tokenIn, tokenOut, model.NewTokenAmount(tokenOut, limitOut))
	if err != nil {
		return new(big.Int), nil
	}
	return in.Amount, nil
}

func (p *LinearPool) GetNormalizedLiquidity(tokenIn, tokenOut model.Token) (*big.Int, error) {
	if _, _, err := p.pair(tokenIn, tokenOut); err != nil {
		return nil, err
	}
	main, wrapped := p.state()
	nominalMain, err := linear.NominalBalance(main, p.params)
	if err != nil {
		return nil, mathErr(err)
	}
	return nominalMain.Add(nominalMain, wrapped), nil
}
