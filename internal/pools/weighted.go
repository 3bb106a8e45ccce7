package pools

import (
	"fmt"
	"math/big"

	"swapRouter/internal/fixedpoint"
	"swapRouter/internal/model"
	"swapRouter/internal/poolmath/weighted"
)

// WeightedPool prices swaps with the constant weighted product invariant.
type WeightedPool struct {
	poolBase
}

func NewWeightedPool(chainID uint64, raw model.RawPool) (*WeightedPool, error) {
	base, err := newPoolBase(chainID, raw)
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	for _, t := range base.tokens {
		if t.Weight.Sign() <= 0 {
			return nil, fmt.Errorf("pool %s: token %s has no weight", raw.ID, t.Address.Hex())
		}
		total.Add(total, t.Weight)
	}
	// Subgraph weights are rounded; accept a small deviation from 1.
	if new(big.Int).Sub(total, fixedpoint.One).CmpAbs(big.NewInt(1e12)) > 0 {
		return nil, fmt.Errorf("pool %s: weights sum to %s", raw.ID, total)
	}
	return &WeightedPool{poolBase: base}, nil
}

func (p *WeightedPool) SwapGivenIn(tokenIn, tokenOut model.Token, amountIn model.TokenAmount) (model.TokenAmount, error) {
	i, j, err := p.pair(tokenIn, tokenOut)
	if err != nil {
		return model.TokenAmount{}, err
	}
	in, out := p.tokens[i], p.tokens[j]

	net, err := p.SubtractSwapFeeAmount(amountIn)
	if err != nil {
		return model.TokenAmount{}, err
	}
	amountOut, err := weighted.CalcOutGivenIn(in.Scaled18(), in.Weight, out.Scaled18(), out.Weight, net.Scale18)
	if err != nil {
		return model.TokenAmount{}, mathErr(err)
	}
	return model.FromScale18Amount(tokenOut, amountOut, false), nil
}

func (p *WeightedPool) SwapGivenOut(tokenIn, tokenOut model.Token, amountOut model.TokenAmount) (model.TokenAmount, error) {
	i, j, err := p.pair(tokenIn, tokenOut)
	if err != nil {
		return model.TokenAmount{}, err
	}
	in, out := p.tokens[i], p.tokens[j]

	amountIn, err := weighted.CalcInGivenOut(in.Scaled18(), in.Weight, out.Scaled18(), out.Weight, amountOut.Scale18)
	if err != nil {
		return model.TokenAmount{}, mathErr(err)
	}
	return p.AddSwapFeeAmount(model.FromScale18Amount(tokenIn, amountIn, true))
}

func (p *WeightedPool) GetLimitAmountSwap(tokenIn, tokenOut model.Token, kind model.SwapKind) (*big.Int, error) {
	i, j, err := p.pair(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	if kind == model.GivenIn {
		return mulRatio(p.tokens[i].Balance, weighted.MaxInRatio)
	}
	return mulRatio(p.tokens[j].Balance, weighted.MaxOutRatio)
}

func (p *WeightedPool) GetNormalizedLiquidity(tokenIn, tokenOut model.Token) (*big.Int, error) {
	i, j, err := p.pair(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	return weighted.NormalizedLiquidity(p.tokens[i].Scaled18(), p.tokens[i].Weight, p.tokens[j].Weight), nil
}

func mulRatio(amount, ratio *big.Int) (*big.Int, error) {
	out, err := fixedpoint.MulDown(amount, ratio)
	if err != nil {
		return nil, mathErr(err)
	}
	return out, nil
}
