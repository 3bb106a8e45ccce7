package server

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"swapRouter/internal/graph"
	"swapRouter/internal/model"
	"swapRouter/internal/router"
	"swapRouter/internal/swap"
)

// TokenRequest names a token by address and decimals.
type TokenRequest struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol,omitempty"`
}

func (t TokenRequest) token(chainID uint64) (model.Token, error) {
	return model.NewToken(chainID, t.Address, t.Decimals, t.Symbol)
}

// SwapRequest is the body of POST /swaps. Amount is human readable in the fixed token's
// decimals. Sender enables call encoding; Query re-quotes against the chain first.
type SwapRequest struct {
	TokenIn   TokenRequest `json:"tokenIn"`
	TokenOut  TokenRequest `json:"tokenOut"`
	SwapKind  string       `json:"swapKind"`
	Amount    string       `json:"amount"`
	Block     *uint64      `json:"block,omitempty"`
	Slippage  string       `json:"slippage,omitempty"`
	Sender    string       `json:"sender,omitempty"`
	Recipient string       `json:"recipient,omitempty"`
	Deadline  string       `json:"deadline,omitempty"`
	WethIsEth bool         `json:"wethIsEth,omitempty"`
	Query     bool         `json:"query,omitempty"`
}

// AmountResponse carries both raw and human forms.
type AmountResponse struct {
	Token string `json:"token"`
	Raw   string `json:"raw"`
	Human string `json:"human"`
}

func newAmount(a model.TokenAmount) AmountResponse {
	raw := "0"
	if a.Amount != nil {
		raw = a.Amount.String()
	}
	return AmountResponse{Token: a.Token.Address.Hex(), Raw: raw, Human: a.ToHuman()}
}

func newAmountPtr(a *model.TokenAmount) *AmountResponse {
	if a == nil {
		return nil
	}
	out := newAmount(*a)
	return &out
}

type PathResponse struct {
	Pools        []string        `json:"pools"`
	Tokens       []string        `json:"tokens"`
	InputAmount  *AmountResponse `json:"inputAmount,omitempty"`
	OutputAmount *AmountResponse `json:"outputAmount,omitempty"`
}

func newPath(p graph.Path) PathResponse {
	tokens := make([]string, len(p.Tokens))
	for i, t := range p.Tokens {
		tokens[i] = t.Address.Hex()
	}
	return PathResponse{Pools: p.PoolIDs(), Tokens: tokens}
}

func newPathWithAmount(p router.PathWithAmount) PathResponse {
	out := newPath(p.Path)
	in, o := newAmount(p.InputAmount()), newAmount(p.OutputAmount())
	out.InputAmount, out.OutputAmount = &in, &o
	return out
}

type CallResponse struct {
	To           string          `json:"to"`
	Data         string          `json:"data"`
	Value        string          `json:"value"`
	MinAmountOut *AmountResponse `json:"minAmountOut,omitempty"`
	MaxAmountIn  *AmountResponse `json:"maxAmountIn,omitempty"`
}

// SwapResponse describes a routed swap and, when requested, its on-chain quote and call.
type SwapResponse struct {
	SwapKind        string          `json:"swapKind"`
	ProtocolVersion int             `json:"protocolVersion"`
	InputAmount     AmountResponse  `json:"inputAmount"`
	OutputAmount    AmountResponse  `json:"outputAmount"`
	Paths           []PathResponse  `json:"paths"`
	Query           *AmountResponse `json:"query,omitempty"`
	Call            *CallResponse   `json:"call,omitempty"`
}

// NewSwapResponse renders a plan.
func NewSwapResponse(plan *swap.Swap) SwapResponse {
	paths := plan.Paths()
	out := SwapResponse{
		SwapKind:        plan.SwapKind().String(),
		ProtocolVersion: plan.ProtocolVersion(),
		InputAmount:     newAmount(plan.InputAmount()),
		OutputAmount:    newAmount(plan.OutputAmount()),
		Paths:           make([]PathResponse, len(paths)),
	}
	for i, p := range paths {
		out.Paths[i] = newPathWithAmount(p)
	}
	return out
}

// WithCall attaches an encoded call.
func (r *SwapResponse) WithCall(call swap.BuildCallOutput) {
	value := "0"
	if call.Value != nil {
		value = call.Value.String()
	}
	r.Call = &CallResponse{
		To:           call.To.Hex(),
		Data:         call.CallDataHex(),
		Value:        value,
		MinAmountOut: newAmountPtr(call.MinAmountOut),
		MaxAmountIn:  newAmountPtr(call.MaxAmountIn),
	}
}

// BuildCallInput converts the request's settlement fields.
func (r SwapRequest) BuildCallInput() (swap.BuildCallInput, error) {
	input := swap.BuildCallInput{WethIsEth: r.WethIsEth}
	if r.Slippage != "" {
		slippage, err := swap.ParseSlippage(r.Slippage)
		if err != nil {
			return input, err
		}
		input.Slippage = slippage
	}
	if !common.IsHexAddress(r.Sender) {
		return input, fmt.Errorf("invalid sender address: %q", r.Sender)
	}
	input.Sender = common.HexToAddress(r.Sender)
	input.Recipient = input.Sender
	if strings.TrimSpace(r.Recipient) != "" {
		if !common.IsHexAddress(r.Recipient) {
			return input, fmt.Errorf("invalid recipient address: %q", r.Recipient)
		}
		input.Recipient = common.HexToAddress(r.Recipient)
	}
	if r.Deadline != "" {
		deadline, ok := new(big.Int).SetString(r.Deadline, 10)
		if !ok || deadline.Sign() < 0 {
			return input, fmt.Errorf("invalid deadline: %q", r.Deadline)
		}
		input.Deadline = deadline
	}
	return input, nil
}

func senderOrZero(sender string) common.Address {
	if common.IsHexAddress(sender) {
		return common.HexToAddress(sender)
	}
	return common.Address{}
}
