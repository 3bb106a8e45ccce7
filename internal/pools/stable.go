package pools

import (
	"fmt"
	"math/big"

	"swapRouter/internal/fixedpoint"
	"swapRouter/internal/model"
	"swapRouter/internal/poolmath/stable"
)

var stableOutLimitRatio = big.NewInt(999_999_000_000_000_000)

// StablePool serves Stable, MetaStable and ComposableStable pools. MetaStable balances are
// scaled by their price rates; composable pools keep their own BPT out of the invariant and
// swap it through single-sided joins and exits.
type StablePool struct {
	poolBase
	amp       *big.Int
	bptIndex  int
	bptSupply *big.Int
	invariant *big.Int
}

func NewStablePool(chainID uint64, raw model.RawPool) (*StablePool, error) {
	base, err := newPoolBase(chainID, raw)
	if err != nil {
		return nil, err
	}
	ampHuman, err := parseFixed(raw.Amp, 0)
	if err != nil {
		return nil, fmt.Errorf("pool %s: amp: %w", raw.ID, err)
	}
	if ampHuman.Sign() <= 0 {
		return nil, fmt.Errorf("pool %s: amp must be positive", raw.ID)
	}

	pool := &StablePool{
		poolBase:  base,
		amp:       new(big.Int).Mul(ampHuman, stable.AmpPrecision),
		bptIndex:  -1,
		bptSupply: new(big.Int),
	}
	if raw.PoolType == "ComposableStable" {
		pool.bptIndex = pool.tokenIndex(model.Token{Address: base.address})
		if pool.bptIndex >= 0 {
			pool.bptSupply, err = parseFixedOr(raw.TotalShares, 18, new(big.Int))
			if err != nil {
				return nil, fmt.Errorf("pool %s: total shares: %w", raw.ID, err)
			}
		}
	}

	pool.invariant, err = stable.CalculateInvariant(pool.amp, pool.mathBalances())
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", raw.ID, mathErr(err))
	}
	return pool, nil
}

// mathBalances are the rated 18-decimal balances, BPT excluded.
func (p *StablePool) mathBalances() []*big.Int {
	out := make([]*big.Int, 0, len(p.tokens))
	for i, t := range p.tokens {
		if i == p.bptIndex {
			continue
		}
		out = append(out, t.Scaled18())
	}
	return out
}

func (p *StablePool) mathIndex(tokenIndex int) int {
	if p.bptIndex >= 0 && tokenIndex > p.bptIndex {
		return tokenIndex - 1
	}
	return tokenIndex
}

func (p *StablePool) SwapGivenIn(tokenIn, tokenOut model.Token, amountIn model.TokenAmount) (model.TokenAmount, error) {
	i, j, err := p.pair(tokenIn, tokenOut)
	if err != nil {
		return model.TokenAmount{}, err
	}
	in, out := p.tokens[i], p.tokens[j]
	balances := p.mathBalances()

	switch p.bptIndex {
	case j:
		amounts := make([]*big.Int, len(balances))
		for k := range amounts {
			amounts[k] = new(big.Int)
		}
		if amounts[p.mathIndex(i)], err = upscale(amountIn, in.Rate, false); err != nil {
			return model.TokenAmount{}, mathErr(err)
		}
		bptOut, err := stable.CalcBptOutGivenExactTokensIn(p.amp, balances, amounts, p.bptSupply, p.invariant, p.swapFee)
		if err != nil {
			return model.TokenAmount{}, mathErr(err)
		}
		return model.FromScale18Amount(tokenOut, bptOut, false), nil
	case i:
		tokenOutAmount, err := stable.CalcTokenOutGivenExactBptIn(p.amp, balances, p.mathIndex(j), amountIn.Scale18, p.bptSupply, p.invariant, p.swapFee)
		if err != nil {
			return model.TokenAmount{}, mathErr(err)
		}
		result, err := downscale(tokenOut, tokenOutAmount, out.Rate, false)
		return result, mathErr(err)
	}

	net, err := p.SubtractSwapFeeAmount(amountIn)
	if err != nil {
		return model.TokenAmount{}, err
	}
	scaledIn, err := upscale(net, in.Rate, false)
	if err != nil {
		return model.TokenAmount{}, mathErr(err)
	}
	amountOut, err := stable.CalcOutGivenIn(p.amp, balances, p.mathIndex(i), p.mathIndex(j), scaledIn, p.invariant)
	if err != nil {
		return model.TokenAmount{}, mathErr(err)
	}
	result, err := downscale(tokenOut, amountOut, out.Rate, false)
	return result, mathErr(err)
}

func (p *StablePool) SwapGivenOut(tokenIn, tokenOut model.Token, amountOut model.TokenAmount) (model.TokenAmount, error) {
	i, j, err := p.pair(tokenIn, tokenOut)
	if err != nil {
		return model.TokenAmount{}, err
	}
	in, out := p.tokens[i], p.tokens[j]
	balances := p.mathBalances()

	switch p.bptIndex {
	case j:
		tokenInAmount, err := stable.CalcTokenInGivenExactBptOut(p.amp, balances, p.mathIndex(i), amountOut.Scale18, p.bptSupply, p.invariant, p.swapFee)
		if err != nil {
			return model.TokenAmount{}, mathErr(err)
		}
		result, err := downscale(tokenIn, tokenInAmount, in.Rate, true)
		return result, mathErr(err)
	case i:
		amounts := make([]*big.Int, len(balances))
		for k := range amounts {
			amounts[k] = new(big.Int)
		}
		if amounts[p.mathIndex(j)], err = upscale(amountOut, out.Rate, true); err != nil {
			return model.TokenAmount{}, mathErr(err)
		}
		bptIn, err := stable.CalcBptInGivenExactTokensOut(p.amp, balances, amounts, p.bptSupply, p.invariant, p.swapFee)
		if err != nil {
			return model.TokenAmount{}, mathErr(err)
		}
		return model.FromScale18Amount(tokenIn, bptIn, true), nil
	}

	scaledOut, err := upscale(amountOut, out.Rate, true)
	if err != nil {
		return model.TokenAmount{}, mathErr(err)
	}
	amountIn, err := stable.CalcInGivenOut(p.amp, balances, p.mathIndex(i), p.mathIndex(j), scaledOut, p.invariant)
	if err != nil {
		return model.TokenAmount{}, mathErr(err)
	}
	result, err := downscale(tokenIn, amountIn, in.Rate, true)
	if err != nil {
		return model.TokenAmount{}, mathErr(err)
	}
	return p.AddSwapFeeAmount(result)
}

// GetLimitAmountSwap treats the BPT balance as its circulating supply.
func (p *StablePool) GetLimitAmountSwap(tokenIn, tokenOut model.Token, kind model.SwapKind) (*big.Int, error) {
	i, j, err := p.pair(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	balanceOut, rateOut := p.tokens[j].Scaled18(), p.tokens[j].Rate
	if j == p.bptIndex {
		balanceOut, rateOut = p.bptSupply, fixedpoint.One
	}
	if kind == model.GivenOut {
		limit, err := fixedpoint.MulDown(balanceOut, stableOutLimitRatio)
		if err != nil {
			return nil, mathErr(err)
		}
		unrated, err := fixedpoint.DivDown(limit, rateOut)
		if err != nil {
			return nil, mathErr(err)
		}
		return model.FromScale18Amount(tokenOut, unrated, false).Amount, nil
	}

	rateIn := p.tokens[i].Rate
	if i == p.bptIndex {
		rateIn = fixedpoint.One
	}
	limit, err := downscale(tokenIn, balanceOut, rateIn, false)
	if err != nil {
		return nil, mathErr(err)
	}
	return limit.Amount, nil
}

func (p *StablePool) GetNormalizedLiquidity(tokenIn, tokenOut model.Token) (*big.Int, error) {
	_, j, err := p.pair(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	balanceOut := p.tokens[j].Scaled18()
	if j == p.bptIndex {
		balanceOut = p.bptSupply
	}
	return stable.NormalizedLiquidity(balanceOut, p.amp), nil
}
