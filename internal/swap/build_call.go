package swap

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"swapRouter/internal/contracts"
	"swapRouter/internal/fixedpoint"
	"swapRouter/internal/model"
)

var ErrMissingFunds = errors.New("sender and recipient are required for v2 swaps")

// BuildCallInput carries the user's execution preferences. A nil QueryOutput falls back to
// the plan's own quote and a nil Deadline never expires.
type BuildCallInput struct {
	Slippage    Slippage
	Deadline    *big.Int
	Sender      common.Address
	Recipient   common.Address
	WethIsEth   bool
	QueryOutput *QueryOutput
}

// BuildCallOutput is a ready to send transaction. MinAmountOut is set for GivenIn and
// MaxAmountIn for GivenOut.
type BuildCallOutput struct {
	To           common.Address
	CallData     []byte
	Value        *big.Int
	MinAmountOut *model.TokenAmount
	MaxAmountIn  *model.TokenAmount
}

// CallDataHex renders the call data as 0x-prefixed hex.
func (o BuildCallOutput) CallDataHex() string {
	return hexutil.Encode(o.CallData)
}

// BuildCall encodes the settlement call:
//   - v2 single hop: Vault.swap
//   - v2 otherwise: Vault.batchSwap
//   - v3 single hop: Router.swapSingleTokenExactIn/Out
//   - v3 otherwise: BatchRouter.swapExactIn/Out
func (s *Swap) BuildCall(input BuildCallInput) (BuildCallOutput, error) {
	query := s.LocalQueryOutput()
	if input.QueryOutput != nil {
		query = *input.QueryOutput
	}
	if query.SwapKind != s.kind || query.Amount.Amount == nil || !query.Amount.Token.IsUnderlyingEqual(s.returnAmount().Token) {
		return BuildCallOutput{}, ErrQueryMismatch
	}
	if len(query.PathAmounts) != 0 && len(query.PathAmounts) != len(s.paths) {
		return BuildCallOutput{}, fmt.Errorf("%w: %d path amounts for %d paths", ErrQueryMismatch, len(query.PathAmounts), len(s.paths))
	}
	deadline := input.Deadline
	if deadline == nil {
		deadline = fixedpoint.MaxUint256
	}

	out := BuildCallOutput{Value: new(big.Int)}
	var limit *big.Int
	if s.kind == model.GivenIn {
		limit = input.Slippage.ApplyTo(query.Amount.Amount, -1)
		minOut := model.NewTokenAmount(s.tokenOut(), limit)
		out.MinAmountOut = &minOut
	} else {
		limit = input.Slippage.ApplyTo(query.Amount.Amount, 1)
		maxIn := model.NewTokenAmount(s.tokenIn(), limit)
		out.MaxAmountIn = &maxIn
	}

	var err error
	switch {
	case s.protocolVersion == 2 && s.isSingleHop():
		out.To, out.CallData, err = s.encodeVaultSwap(input, limit, deadline)
	case s.protocolVersion == 2:
		out.To, out.CallData, err = s.encodeVaultBatchSwap(input, limit, deadline)
	case s.isSingleHop():
		out.To, out.CallData, err = s.encodeRouterSwap(input, limit, deadline)
	default:
		out.To, out.CallData, err = s.encodeBatchRouterSwap(input, query, deadline)
	}
	if err != nil {
		return BuildCallOutput{}, err
	}

	if input.WethIsEth && s.addresses.WrappedNative != (common.Address{}) && s.tokenIn().Address == s.addresses.WrappedNative {
		if s.kind == model.GivenIn {
			out.Value = new(big.Int).Set(s.inputAmount.Amount)
		} else {
			out.Value = new(big.Int).Set(limit)
		}
	}
	return out, nil
}

func (s *Swap) funds(input BuildCallInput) (fundManagement, error) {
	if input.Sender == (common.Address{}) || input.Recipient == (common.Address{}) {
		return fundManagement{}, ErrMissingFunds
	}
	return fundManagement{Sender: input.Sender, Recipient: input.Recipient}, nil
}

func (s *Swap) encodeVaultSwap(input BuildCallInput, limit, deadline *big.Int) (common.Address, []byte, error) {
	if s.addresses.VaultV2 == (common.Address{}) {
		return common.Address{}, nil, fmt.Errorf("%w: vault v2", ErrMissingContract)
	}
	vaultABI, err := contracts.VaultV2ABI()
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("parse vault abi: %w", err)
	}
	funds, err := s.funds(input)
	if err != nil {
		return common.Address{}, nil, err
	}
	p := s.paths[0]
	id, err := poolIDBytes(p.Pools[0].ID())
	if err != nil {
		return common.Address{}, nil, err
	}
	assets := []common.Address{s.tokenIn().Address, s.tokenOut().Address}
	if input.WethIsEth {
		assets = ethAssets(assets, s.addresses.WrappedNative)
	}
	single := singleSwap{
		PoolId:   id,
		Kind:     vaultKind(s.kind),
		AssetIn:  assets[0],
		AssetOut: assets[1],
		Amount:   new(big.Int).Set(s.givenAmount().Amount),
		UserData: []byte{},
	}
	data, err := vaultABI.Pack("swap", single, funds, limit, deadline)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("pack swap: %w", err)
	}
	return s.addresses.VaultV2, data, nil
}

func (s *Swap) encodeVaultBatchSwap(input BuildCallInput, limit, deadline *big.Int) (common.Address, []byte, error) {
	if s.addresses.VaultV2 == (common.Address{}) {
		return common.Address{}, nil, fmt.Errorf("%w: vault v2", ErrMissingContract)
	}
	vaultABI, err := contracts.VaultV2ABI()
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("parse vault abi: %w", err)
	}
	funds, err := s.funds(input)
	if err != nil {
		return common.Address{}, nil, err
	}
	batch, err := s.batchSteps()
	if err != nil {
		return common.Address{}, nil, err
	}

	// Positive limits cap what the Vault pulls, negative ones floor what it pays out.
	limits := make([]*big.Int, len(batch.assets))
	for i := range limits {
		limits[i] = new(big.Int)
	}
	inIdx, outIdx := batch.index[s.tokenIn().Address], batch.index[s.tokenOut().Address]
	if s.kind == model.GivenIn {
		limits[inIdx].Set(s.inputAmount.Amount)
		limits[outIdx].Neg(limit)
	} else {
		limits[inIdx].Set(limit)
		limits[outIdx].Neg(s.outputAmount.Amount)
	}

	assets := batch.assets
	if input.WethIsEth {
		assets = ethAssets(assets, s.addresses.WrappedNative)
	}
	data, err := vaultABI.Pack("batchSwap", vaultKind(s.kind), batch.steps, assets, funds, limits, deadline)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("pack batchSwap: %w", err)
	}
	return s.addresses.VaultV2, data, nil
}

func (s *Swap) encodeRouterSwap(input BuildCallInput, limit, deadline *big.Int) (common.Address, []byte, error) {
	if s.addresses.Router == (common.Address{}) {
		return common.Address{}, nil, fmt.Errorf("%w: router", ErrMissingContract)
	}
	routerABI, err := contracts.RouterV3ABI()
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("parse router abi: %w", err)
	}
	method := "swapSingleTokenExactIn"
	if s.kind == model.GivenOut {
		method = "swapSingleTokenExactOut"
	}
	data, err := routerABI.Pack(method, s.paths[0].Pools[0].Address(), s.tokenIn().Address, s.tokenOut().Address,
		new(big.Int).Set(s.givenAmount().Amount), limit, deadline, input.WethIsEth, []byte{})
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("pack %s: %w", method, err)
	}
	return s.addresses.Router, data, nil
}

func (s *Swap) encodeBatchRouterSwap(input BuildCallInput, query QueryOutput, deadline *big.Int) (common.Address, []byte, error) {
	if s.addresses.BatchRouter == (common.Address{}) {
		return common.Address{}, nil, fmt.Errorf("%w: batch router", ErrMissingContract)
	}
	batchABI, err := contracts.BatchRouterV3ABI()
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("parse batch router abi: %w", err)
	}
	expected := query.PathAmounts
	if len(expected) == 0 {
		expected = s.PathAmounts()
	}

	var data []byte
	if s.kind == model.GivenIn {
		data, err = batchABI.Pack("swapExactIn", s.exactInPaths(expected, input.Slippage), deadline, input.WethIsEth, []byte{})
	} else {
		data, err = batchABI.Pack("swapExactOut", s.exactOutPaths(expected, input.Slippage), deadline, input.WethIsEth, []byte{})
	}
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("pack batch router swap: %w", err)
	}
	return s.addresses.BatchRouter, data, nil
}
