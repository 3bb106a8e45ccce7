// Package router turns candidate paths into an allocation of the requested amount.
package router

import (
	"fmt"
	"math/big"

	"swapRouter/internal/graph"
	"swapRouter/internal/model"
	"swapRouter/internal/poolmath"
	"swapRouter/internal/pools"
)

// PathWithAmount is a path quoted for one amount. Amounts[i] is the amount of Tokens[i].
type PathWithAmount struct {
	graph.Path
	SwapKind model.SwapKind
	Amounts  []model.TokenAmount
}

func (p PathWithAmount) InputAmount() model.TokenAmount  { return p.Amounts[0] }
func (p PathWithAmount) OutputAmount() model.TokenAmount { return p.Amounts[len(p.Amounts)-1] }

// GivenAmount is the fixed side: the input for GivenIn, the output for GivenOut.
func (p PathWithAmount) GivenAmount() model.TokenAmount {
	if p.SwapKind == model.GivenOut {
		return p.OutputAmount()
	}
	return p.InputAmount()
}

// ReturnAmount is the computed side.
func (p PathWithAmount) ReturnAmount() model.TokenAmount {
	if p.SwapKind == model.GivenOut {
		return p.InputAmount()
	}
	return p.OutputAmount()
}

// NewPathWithAmount quotes the path hop by hop: forwards for GivenIn, backwards for GivenOut.
// Any hop amount above that pool's limit fails with poolmath.ErrLimitExceeded.
func NewPathWithAmount(path graph.Path, kind model.SwapKind, amount model.TokenAmount) (PathWithAmount, error) {
	hops := len(path.Pools)
	if hops == 0 || len(path.Tokens) != hops+1 {
		return PathWithAmount{}, fmt.Errorf("malformed path with %d pools and %d tokens", hops, len(path.Tokens))
	}
	amounts := make([]model.TokenAmount, hops+1)

	if kind == model.GivenIn {
		amounts[0] = amount
		for i, pool := range path.Pools {
			if err := checkLimit(pool, path.Tokens[i], path.Tokens[i+1], kind, amounts[i]); err != nil {
				return PathWithAmount{}, err
			}
			out, err := pool.SwapGivenIn(path.Tokens[i], path.Tokens[i+1], amounts[i])
			if err != nil {
				return PathWithAmount{}, fmt.Errorf("hop %d pool %s: %w", i, pool.ID(), err)
			}
			amounts[i+1] = out
		}
	} else {
		amounts[hops] = amount
		for i := hops - 1; i >= 0; i-- {
			pool := path.Pools[i]
			if err := checkLimit(pool, path.Tokens[i], path.Tokens[i+1], kind, amounts[i+1]); err != nil {
				return PathWithAmount{}, err
			}
			in, err := pool.SwapGivenOut(path.Tokens[i], path.Tokens[i+1], amounts[i+1])
			if err != nil {
				return PathWithAmount{}, fmt.Errorf("hop %d pool %s: %w", i, pool.ID(), err)
			}
			amounts[i] = in
		}
	}
	return PathWithAmount{Path: path, SwapKind: kind, Amounts: amounts}, nil
}

func checkLimit(pool pools.BasePool, tokenIn, tokenOut model.Token, kind model.SwapKind, amount model.TokenAmount) error {
	limit, err := pool.GetLimitAmountSwap(tokenIn, tokenOut, kind)
	if err != nil {
		return fmt.Errorf("pool %s limit: %w", pool.ID(), err)
	}
	if amount.Amount.Cmp(limit) > 0 {
		return fmt.Errorf("%w: pool %s: %w", pools.ErrPoolMath, pool.ID(), poolmath.ErrLimitExceeded)
	}
	return nil
}

// PathLimit is the largest given amount the path accepts, in tokenIn units for GivenIn and
// tokenOut units for GivenOut. Each hop's limit is carried through the neighbouring pools
// and the most restrictive value wins.
func PathLimit(path graph.Path, kind model.SwapKind) (*big.Int, error) {
	hops := len(path.Pools)
	if hops == 0 {
		return new(big.Int), nil
	}

	if kind == model.GivenIn {
		last := hops - 1
		limit, err := path.Pools[last].GetLimitAmountSwap(path.Tokens[last], path.Tokens[hops], kind)
		if err != nil {
			return nil, err
		}
		for i := last - 1; i >= 0; i-- {
			pool, in, out := path.Pools[i], path.Tokens[i], path.Tokens[i+1]
			own, err := pool.GetLimitAmountSwap(in, out, kind)
			if err != nil {
				return nil, err
			}
			next := limit
			limit = own
			if pulled, err := pool.SwapGivenOut(in, out, model.NewTokenAmount(out, next)); err == nil && pulled.Amount.Cmp(own) < 0 {
				limit = pulled.Amount
			}
			limit = shrinkToFit(limit, next, func(amount *big.Int) (*big.Int, error) {
				q, err := pool.SwapGivenIn(in, out, model.NewTokenAmount(in, amount))
				return q.Amount, err
			})
		}
		return limit, nil
	}

	limit, err := path.Pools[0].GetLimitAmountSwap(path.Tokens[0], path.Tokens[1], kind)
	if err != nil {
		return nil, err
	}
	for i := 1; i < hops; i++ {
		pool, in, out := path.Pools[i], path.Tokens[i], path.Tokens[i+1]
		own, err := pool.GetLimitAmountSwap(in, out, kind)
		if err != nil {
			return nil, err
		}
		prev := limit
		limit = own
		if pushed, err := pool.SwapGivenIn(in, out, model.NewTokenAmount(in, prev)); err == nil && pushed.Amount.Cmp(own) < 0 {
			limit = pushed.Amount
		}
		limit = shrinkToFit(limit, prev, func(amount *big.Int) (*big.Int, error) {
			q, err := pool.SwapGivenOut(in, out, model.NewTokenAmount(out, amount))
			return q.Amount, err
		})
	}
	return limit, nil
}

// shrinkToFit lowers amount until quote(amount) stays within bound, absorbing the rounding
// of the two swap directions. It gives up after a few relative cuts of growing size.
func shrinkToFit(amount, bound *big.Int, quote func(*big.Int) (*big.Int, error)) *big.Int {
	candidate := new(big.Int).Set(amount)
	for _, divisor := range []int64{0, 1_000_000, 100_000, 10_000, 1_000} {
		if divisor > 0 {
			cut := new(big.Int).Quo(amount, big.NewInt(divisor))
			candidate.Sub(amount, cut.Add(cut, big.NewInt(1)))
			if candidate.Sign() <= 0 {
				return new(big.Int)
			}
		}
		q, err := quote(candidate)
		if err == nil && q.Cmp(bound) <= 0 {
			return candidate
		}
	}
	return candidate
}
