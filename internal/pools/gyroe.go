package pools

import (
	"fmt"
	"math/big"

	"swapRouter/internal/fixedpoint"
	"swapRouter/internal/model"
	"swapRouter/internal/poolmath/gyroe"
)

var (
	gyroOutLimitRatio = big.NewInt(999_999_000_000_000_000)
	// probeDivisor sizes the liquidity probe at 1/10000 of the input balance.
	probeDivisor = big.NewInt(10_000)
)

// GyroEPool is a two-token elliptic concentrated liquidity pool.
type GyroEPool struct {
	poolBase
	params  gyroe.Params
	derived gyroe.DerivedParams
	pinned  gyroe.Vector2
}

func NewGyroEPool(chainID uint64, raw model.RawPool) (*GyroEPool, error) {
	base, err := newPoolBase(chainID, raw)
	if err != nil {
		return nil, err
	}
	if len(base.tokens) != 2 {
		return nil, fmt.Errorf("pool %s: gyroE pools hold exactly two tokens", raw.ID)
	}

	params, err := parseGyroParams(raw)
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", raw.ID, err)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("pool %s: %w", raw.ID, err)
	}
	derived, err := parseDerivedParams(raw)
	if err != nil {
		derived, err = gyroe.ComputeDerivedParams(params)
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", raw.ID, err)
		}
	}

	pool := &GyroEPool{poolBase: base, params: params, derived: derived}
	invariant, invErr, err := gyroe.CalculateInvariantWithError(pool.balances(), params, derived)
	if err != nil {
		return nil, fmt.Errorf("pool %s: %w", raw.ID, mathErr(err))
	}
	pool.pinned = gyroe.PinnedInvariant(invariant, invErr)
	return pool, nil
}

func parseGyroParams(raw model.RawPool) (gyroe.Params, error) {
	values := make([]*big.Int, 5)
	for i, s := range []string{raw.Alpha, raw.Beta, raw.C, raw.S, raw.Lambda} {
		v, err := parseFixed(s, 18)
		if err != nil {
			return gyroe.Params{}, fmt.Errorf("gyroE param %d: %w", i, err)
		}
		values[i] = v
	}
	return gyroe.Params{Alpha: values[0], Beta: values[1], C: values[2], S: values[3], Lambda: values[4]}, nil
}

// parseDerivedParams reads the 38-decimal derived values published with the pool, if any.
func parseDerivedParams(raw model.RawPool) (gyroe.DerivedParams, error) {
	fields := []string{raw.TauAlphaX, raw.TauAlphaY, raw.TauBetaX, raw.TauBetaY, raw.U, raw.V, raw.W, raw.Z, raw.DSq}
	values := make([]*big.Int, len(fields))
	for i, s := range fields {
		v, err := parseFixed(s, 38)
		if err != nil {
			return gyroe.DerivedParams{}, err
		}
		values[i] = v
	}
	d := gyroe.DerivedParams{
		TauAlpha: gyroe.Vector2{X: values[0], Y: values[1]},
		TauBeta:  gyroe.Vector2{X: values[2], Y: values[3]},
		U:        values[4],
		V:        values[5],
		W:        values[6],
		Z:        values[7],
		DSq:      values[8],
	}
	return d, d.Validate()
}

func (p *GyroEPool) balances() [2]*big.Int {
	return [2]*big.Int{p.tokens[0].Scaled18(), p.tokens[1].Scaled18()}
}

func (p *GyroEPool) SwapGivenIn(tokenIn, tokenOut model.Token, amountIn model.TokenAmount) (model.TokenAmount, error) {
	i, j, err := p.pair(tokenIn, tokenOut)
	if err != nil {
		return model.TokenAmount{}, err
	}
	net, err := p.SubtractSwapFeeAmount(amountIn)
	if err != nil {
		return model.TokenAmount{}, err
	}
	scaledIn, err := upscale(net, p.tokens[i].Rate, false)
	if err != nil {
		return model.TokenAmount{}, mathErr(err)
	}
	amountOut, err := gyroe.CalcOutGivenIn(p.balances(), scaledIn, i == 0, p.params, p.derived, p.pinned)
	if err != nil {
		return model.TokenAmount{}, mathErr(err)
	}
	result, err := downscale(tokenOut, amountOut, p.tokens[j].Rate, false)
	return result, mathErr(err)
}

func (p *GyroEPool) SwapGivenOut(tokenIn, tokenOut model.Token, amountOut model.TokenAmount) (model.TokenAmount, error) {
	i, j, err := p.pair(tokenIn, tokenOut)
	if err != nil {
		return model.TokenAmount{}, err
	}
	scaledOut, err := upscale(amountOut, p.tokens[j].Rate, true)
	if err != nil {
		return model.TokenAmount{}, mathErr(err)
	}
	amountIn, err := gyroe.CalcInGivenOut(p.balances(), scaledOut, i == 0, p.params, p.derived, p.pinned)
	if err != nil {
		return model.TokenAmount{}, mathErr(err)
	}
	result, err := downscale(tokenIn, amountIn, p.tokens[i].Rate, true)
	if err != nil {
		return model.TokenAmount{}, mathErr(err)
	}
	return p.AddSwapFeeAmount(result)
}

// GetLimitAmountSwap bounds GivenIn by the headroom to the curve's maximum balance, grossed up
// by the fee.
func (p *GyroEPool) GetLimitAmountSwap(tokenIn, tokenOut model.Token, kind model.SwapKind) (*big.Int, error) {
	i, j, err := p.pair(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	if kind == model.GivenOut {
		return mulRatio(p.tokens[j].Balance, gyroOutLimitRatio)
	}

	maxBalance := gyroe.MaxBalances0
	if i == 1 {
		maxBalance = gyroe.MaxBalances1
	}
	limit, err := maxBalance(p.params, p.derived, p.pinned)
	if err != nil {
		return nil, mathErr(err)
	}
	headroom := new(big.Int).Sub(limit, p.balances()[i])
	if headroom.Sign() <= 0 {
		return new(big.Int), nil
	}
	gross, err := fixedpoint.DivDown(headroom, fixedpoint.Complement(p.swapFee))
	if err != nil {
		return nil, mathErr(err)
	}
	result, err := downscale(tokenIn, gross, p.tokens[i].Rate, false)
	if err != nil {
		return nil, mathErr(err)
	}
	return result.Amount, nil
}

// GetNormalizedLiquidity estimates price / |dprice/dx| from two probe swaps of size d:
// with out(d) and out(2d) this is out(d) * d / (2 out(d) - out(2d)).
func (p *GyroEPool) GetNormalizedLiquidity(tokenIn, tokenOut model.Token) (*big.Int, error) {
	i, _, err := p.pair(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	balances := p.balances()
	delta := new(big.Int).Quo(balances[i], probeDivisor)
	if delta.Sign() == 0 {
		return new(big.Int), nil
	}

	out1, err := gyroe.CalcOutGivenIn(balances, delta, i == 0, p.params, p.derived, p.pinned)
	if err != nil {
		return nil, mathErr(err)
	}
	out2, err := gyroe.CalcOutGivenIn(balances, new(big.Int).Lsh(delta, 1), i == 0, p.params, p.derived, p.pinned)
	if err != nil {
		return nil, mathErr(err)
	}

	curvature := new(big.Int).Lsh(out1, 1)
	curvature.Sub(curvature, out2)
	if curvature.Sign() <= 0 {
		// Flat within rounding: the pool behaves like a constant-sum curve here.
		return new(big.Int).Set(balances[i]), nil
	}
	liquidity := new(big.Int).Mul(out1, delta)
	return liquidity.Quo(liquidity, curvature), nil
}
