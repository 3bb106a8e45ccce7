// Package swap packages an allocation into an executable plan: re-quoting it against the
// chain and encoding the Vault or Router call that settles it.
package swap

import (
	"errors"
	"fmt"
	"math/big"

	"swapRouter/internal/contracts"
	"swapRouter/internal/fixedpoint"
	"swapRouter/internal/model"
	"swapRouter/internal/router"
)

var (
	ErrEmptyPlan          = errors.New("swap has no paths")
	ErrMixedPaths         = errors.New("swap paths disagree on tokens or protocol version")
	ErrUnsupportedVersion = errors.New("unsupported protocol version")
)

// Swap is an immutable plan: the paths with their amounts plus the settlement addresses.
type Swap struct {
	kind            model.SwapKind
	protocolVersion int
	chainID         uint64
	paths           []router.PathWithAmount
	inputAmount     model.TokenAmount
	outputAmount    model.TokenAmount
	addresses       contracts.Addresses
}

type Option func(*Swap)

// WithAddresses overrides the settlement contracts resolved from the chain ID.
func WithAddresses(addrs contracts.Addresses) Option {
	return func(s *Swap) {
		s.addresses = s.addresses.Override(addrs)
	}
}

// New validates that every path shares the token pair and protocol version and sums the
// amounts.
func New(kind model.SwapKind, paths []router.PathWithAmount, opts ...Option) (*Swap, error) {
	if len(paths) == 0 {
		return nil, ErrEmptyPlan
	}
	first := paths[0]
	version := first.ProtocolVersion()
	if version != 2 && version != 3 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	input := model.NewTokenAmount(first.TokenIn(), new(big.Int))
	output := model.NewTokenAmount(first.TokenOut(), new(big.Int))
	for i, p := range paths {
		if p.SwapKind != kind || p.ProtocolVersion() != version ||
			!p.TokenIn().IsUnderlyingEqual(first.TokenIn()) || !p.TokenOut().IsUnderlyingEqual(first.TokenOut()) {
			return nil, fmt.Errorf("%w: path %d", ErrMixedPaths, i)
		}
		var err error
		if input, err = input.Add(p.InputAmount()); err != nil {
			return nil, err
		}
		if output, err = output.Add(p.OutputAmount()); err != nil {
			return nil, err
		}
	}

	chainID := first.TokenIn().ChainID
	s := &Swap{
		kind:            kind,
		protocolVersion: version,
		chainID:         chainID,
		paths:           append([]router.PathWithAmount(nil), paths...),
		inputAmount:     input,
		outputAmount:    output,
		addresses:       contracts.AddressesFor(chainID),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Swap) SwapKind() model.SwapKind { return s.kind }
func (s *Swap) ProtocolVersion() int { return s.protocolVersion }
func (s *Swap) ChainID() uint64 { return s.chainID }
func (s *Swap) InputAmount() model.TokenAmount { return s.inputAmount }
func (s *Swap) OutputAmount() model.TokenAmount { return s.outputAmount }
func (s *Swap) Addresses() contracts.Addresses { return s.addresses }
func (s *Swap) Paths() []router.PathWithAmount { return append([]router.PathWithAmount(nil), s.paths...) }
func (s *Swap) isSingleHop() bool { return len(s.paths) == 1 && s.paths[0].Hops() == 1 }
func (s *Swap) givenAmount() model.TokenAmount { return pick(s.kind, s.inputAmount, s.outputAmount) }
func (s *Swap) returnAmount() model.TokenAmount { return pick(s.kind, s.outputAmount, s.inputAmount) }
func (s *Swap) tokenIn() model.Token { return s.inputAmount.Token }
func (s *Swap) tokenOut() model.Token { return s.outputAmount.Token }

func pick(kind model.SwapKind, givenIn, givenOut model.TokenAmount) model.TokenAmount {
	if kind == model.GivenOut {
		return givenOut
	}
	return givenIn
}

// Weights is each path's share of the given amount as an 18-decimal fraction.
func (s *Swap) Weights() []*big.Int {
	total := s.givenAmount().Amount
	weights := make([]*big.Int, len(s.paths))
	for i, p := range s.paths {
		w, err := fixedpoint.DivDown(p.GivenAmount().Amount, total)
		if err != nil {
			w = new(big.Int)
		}
		weights[i] = w
	}
	return weights
}

// PathAmounts returns each path's return amount, the per-path counterpart of QueryOutput.
func (s *Swap) PathAmounts() []*big.Int {
	out := make([]*big.Int, len(s.paths))
	for i, p := range s.paths {
		out[i] = new(big.Int).Set(p.ReturnAmount().Amount)
	}
	return out
}

// LocalQueryOutput is the plan's own quote, used when no on-chain query was made.
func (s *Swap) LocalQueryOutput() QueryOutput {
	return QueryOutput{
		SwapKind:    s.kind,
		Amount:      s.returnAmount(),
		PathAmounts: s.PathAmounts(),
	}
}
