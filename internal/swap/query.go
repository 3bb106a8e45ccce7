package swap

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"swapRouter/internal/chain"
	"swapRouter/internal/contracts"
	"swapRouter/internal/model"
)

var ErrQueryMismatch = errors.New("query output does not match the swap")

// QueryOutput is an up to date quote of the plan. Amount is the expected output for GivenIn
// and the expected input for GivenOut. PathAmounts is per path and left empty when the
// contract only reports totals.
type QueryOutput struct {
	SwapKind    model.SwapKind
	Amount      model.TokenAmount
	PathAmounts []*big.Int
}

// Query re-quotes the plan against chain state at block (nil for latest) through
// Vault.queryBatchSwap on v2 or the Router/BatchRouter query functions on v3. sender is
// forwarded to v3 pools whose hooks depend on the caller.
func (s *Swap) Query(ctx context.Context, caller chain.Caller, block *big.Int, sender common.Address) (QueryOutput, error) {
	if caller == nil {
		return QueryOutput{}, fmt.Errorf("chain client is nil")
	}
	if s.protocolVersion == 2 {
		return s.queryV2(ctx, caller, block)
	}
	if s.isSingleHop() {
		return s.querySingleV3(ctx, caller, block, sender)
	}
	return s.queryBatchV3(ctx, caller, block, sender)
}

func (s *Swap) queryV2(ctx context.Context, caller chain.Caller, block *big.Int) (QueryOutput, error) {
	if s.addresses.VaultV2 == (common.Address{}) {
		return QueryOutput{}, fmt.Errorf("%w: vault v2", ErrMissingContract)
	}
	vaultABI, err := contracts.VaultV2ABI()
	if err != nil {
		return QueryOutput{}, fmt.Errorf("parse vault abi: %w", err)
	}
	batch, err := s.batchSteps()
	if err != nil {
		return QueryOutput{}, err
	}
	funds := fundManagement{}
	values, err := contracts.Call(ctx, caller, s.addresses.VaultV2, vaultABI, "queryBatchSwap", block,
		vaultKind(s.kind), batch.steps, batch.assets, funds)
	if err != nil {
		return QueryOutput{}, err
	}
	deltas, err := contracts.AsBigInts(values[0])
	if err != nil {
		return QueryOutput{}, err
	}
	if len(deltas) != len(batch.assets) {
		return QueryOutput{}, fmt.Errorf("queryBatchSwap returned %d deltas for %d assets", len(deltas), len(batch.assets))
	}

	if s.kind == model.GivenIn {
		out := deltas[batch.index[s.tokenOut().Address]]
		return QueryOutput{SwapKind: s.kind, Amount: model.NewTokenAmount(s.tokenOut(), out.Neg(out))}, nil
	}
	in := deltas[batch.index[s.tokenIn().Address]]
	return QueryOutput{SwapKind: s.kind, Amount: model.NewTokenAmount(s.tokenIn(), in)}, nil
}

func (s *Swap) querySingleV3(ctx context.Context, caller chain.Caller, block *big.Int, sender common.Address) (QueryOutput, error) {
	if s.addresses.Router == (common.Address{}) {
		return QueryOutput{}, fmt.Errorf("%w: router", ErrMissingContract)
	}
	routerABI, err := contracts.RouterV3ABI()
	if err != nil {
		return QueryOutput{}, fmt.Errorf("parse router abi: %w", err)
	}
	p := s.paths[0]
	method := "querySwapSingleTokenExactIn"
	if s.kind == model.GivenOut {
		method = "querySwapSingleTokenExactOut"
	}
	values, err := contracts.Call(ctx, caller, s.addresses.Router, routerABI, method, block,
		p.Pools[0].Address(), s.tokenIn().Address, s.tokenOut().Address, s.givenAmount().Amount, sender, []byte{})
	if err != nil {
		return QueryOutput{}, err
	}
	amount, err := contracts.AsBigInt(values[0])
	if err != nil {
		return QueryOutput{}, err
	}
	return QueryOutput{
		SwapKind:    s.kind,
		Amount:      model.NewTokenAmount(s.returnAmount().Token, amount),
		PathAmounts: []*big.Int{new(big.Int).Set(amount)},
	}, nil
}

func (s *Swap) queryBatchV3(ctx context.Context, caller chain.Caller, block *big.Int, sender common.Address) (QueryOutput, error) {
	if s.addresses.BatchRouter == (common.Address{}) {
		return QueryOutput{}, fmt.Errorf("%w: batch router", ErrMissingContract)
	}
	batchABI, err := contracts.BatchRouterV3ABI()
	if err != nil {
		return QueryOutput{}, fmt.Errorf("parse batch router abi: %w", err)
	}

	var values []interface{}
	if s.kind == model.GivenIn {
		values, err = contracts.Call(ctx, caller, s.addresses.BatchRouter, batchABI, "querySwapExactIn", block,
			s.exactInPaths(nil, Slippage{}), sender, []byte{})
	} else {
		values, err = contracts.Call(ctx, caller, s.addresses.BatchRouter, batchABI, "querySwapExactOut", block,
			s.exactOutPaths(nil, Slippage{}), sender, []byte{})
	}
	if err != nil {
		return QueryOutput{}, err
	}
	pathAmounts, err := contracts.AsBigInts(values[0])
	if err != nil {
		return QueryOutput{}, err
	}
	total := new(big.Int)
	for _, a := range pathAmounts {
		total.Add(total, a)
	}
	return QueryOutput{
		SwapKind:    s.kind,
		Amount:      model.NewTokenAmount(s.returnAmount().Token, total),
		PathAmounts: pathAmounts,
	}, nil
}

// exactInPaths lays out GivenIn paths for the BatchRouter. With nil expected amounts the
// minimum is zero, as used by queries.
func (s *Swap) exactInPaths(expected []*big.Int, slippage Slippage) []swapPathExactAmountIn {
	out := make([]swapPathExactAmountIn, len(s.paths))
	for i, p := range s.paths {
		minOut := new(big.Int)
		if expected != nil {
			minOut = slippage.ApplyTo(expected[i], -1)
		}
		out[i] = swapPathExactAmountIn{
			TokenIn:       p.TokenIn().Address,
			Steps:         v3Steps(p),
			ExactAmountIn: new(big.Int).Set(p.InputAmount().Amount),
			MinAmountOut:  minOut,
		}
	}
	return out
}

// exactOutPaths lays out GivenOut paths. With nil expected amounts the maximum is the
// plan's own input for the path.
func (s *Swap) exactOutPaths(expected []*big.Int, slippage Slippage) []swapPathExactAmountOut {
	out := make([]swapPathExactAmountOut, len(s.paths))
	for i, p := range s.paths {
		maxIn := new(big.Int).Set(p.InputAmount().Amount)
		if expected != nil {
			maxIn = slippage.ApplyTo(expected[i], 1)
		}
		out[i] = swapPathExactAmountOut{
			TokenIn:        p.TokenIn().Address,
			Steps:          v3Steps(p),
			MaxAmountIn:    maxIn,
			ExactAmountOut: new(big.Int).Set(p.OutputAmount().Amount),
		}
	}
	return out
}
