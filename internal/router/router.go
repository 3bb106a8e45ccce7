package router

import (
	"errors"
	"math/big"

	"go.uber.org/zap"

	"swapRouter/internal/graph"
	"swapRouter/internal/model"
	"swapRouter/internal/pools"
)

const (
	// MaxSplitPaths is the number of paths water-filling spreads the amount across.
	MaxSplitPaths = 4

	initialIncrementDivisor = 8
	minIncrementDivisor     = 1024
)

var ErrNonPositiveAmount = errors.New("swap amount must be positive")

// Router allocates an amount across candidate paths.
type Router struct {
	logger       *zap.Logger
	onEliminated func(err error)
}

type Option func(*Router)

// WithEliminationHook is called for every candidate dropped by a pool math failure.
func WithEliminationHook(fn func(err error)) Option {
	return func(r *Router) {
		r.onEliminated = fn
	}
}

func NewRouter(logger *zap.Logger, opts ...Option) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{logger: logger, onEliminated: func(error) {}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetBestPaths returns the best allocation of amount across candidates, or nil when no
// path, alone or in a split, can carry it. Pool math failures only remove the path.
func (r *Router) GetBestPaths(candidates []graph.Path, kind model.SwapKind, amount model.TokenAmount) ([]PathWithAmount, error) {
	if amount.Amount == nil || amount.Amount.Sign() <= 0 {
		return nil, ErrNonPositiveAmount
	}

	lanes := make([]*lane, 0, len(candidates))
	var best *PathWithAmount
	for _, path := range candidates {
		limit, err := PathLimit(path, kind)
		if err != nil {
			r.eliminate(path, err)
			continue
		}
		if limit.Sign() <= 0 {
			continue
		}
		l := &lane{path: path, kind: kind, limit: limit, token: amount.Token}
		lanes = append(lanes, l)

		if amount.Amount.Cmp(limit) > 0 {
			continue
		}
		full, err := NewPathWithAmount(path, kind, amount)
		if err != nil {
			r.eliminate(path, err)
			continue
		}
		if best == nil || better(kind, full.ReturnAmount().Amount, best.ReturnAmount().Amount) {
			candidate := full
			best = &candidate
		}
	}

	split := r.waterFill(lanes, kind, amount)
	switch {
	case split != nil && (best == nil || better(kind, totalReturn(split), best.ReturnAmount().Amount)):
		r.logger.Debug("split route selected", zap.Int("paths", len(split)), zap.String("kind", kind.String()))
		return split, nil
	case best != nil:
		return []PathWithAmount{*best}, nil
	default:
		return nil, nil
	}
}

func (r *Router) eliminate(path graph.Path, err error) {
	if !errors.Is(err, pools.ErrPoolMath) {
		r.logger.Warn("path evaluation failed", zap.String("path", path.String()), zap.Error(err))
	} else {
		r.logger.Debug("path eliminated", zap.String("path", path.String()), zap.Error(err))
	}
	r.onEliminated(err)
}

// lane tracks one path during water-filling.
type lane struct {
	path      graph.Path
	kind      model.SwapKind
	limit     *big.Int
	token     model.Token
	allocated *big.Int
	value     *big.Int
	dead      bool
}

// quote returns the return amount for a given amount on this lane.
func (l *lane) quote(amount *big.Int) (*big.Int, error) {
	if amount.Cmp(l.limit) > 0 {
		return nil, errLaneSaturated
	}
	p, err := NewPathWithAmount(l.path, l.kind, model.NewTokenAmount(l.token, amount))
	if err != nil {
		return nil, err
	}
	return p.ReturnAmount().Amount, nil
}

var errLaneSaturated = errors.New("lane saturated")

// waterFill hands out increments to the lane with the best marginal return. Increments
// start at total/8 and halve down to total/1024 as the remainder shrinks.
func (r *Router) waterFill(all []*lane, kind model.SwapKind, amount model.TokenAmount) []PathWithAmount {
	total := amount.Amount
	lanes := r.topLanes(all, kind, total)
	if len(lanes) < 2 {
		return nil
	}
	for _, l := range lanes {
		l.allocated, l.value, l.dead = new(big.Int), new(big.Int), false
	}

	floor := new(big.Int).Quo(total, big.NewInt(minIncrementDivisor))
	if floor.Sign() == 0 {
		floor.SetInt64(1)
	}
	step := new(big.Int).Quo(total, big.NewInt(initialIncrementDivisor))
	if step.Cmp(floor) < 0 {
		step.Set(floor)
	}
	remaining := new(big.Int).Set(total)

	for remaining.Sign() > 0 {
		inc := step
		if remaining.Cmp(step) < 0 {
			inc = remaining
		}

		chosen, chosenValue, chosenGain := -1, (*big.Int)(nil), (*big.Int)(nil)
		for k, l := range lanes {
			if l.dead {
				continue
			}
			next := new(big.Int).Add(l.allocated, inc)
			value, err := l.quote(next)
			if err != nil {
				if !errors.Is(err, errLaneSaturated) && inc.Cmp(floor) <= 0 {
					l.dead = true
				}
				continue
			}
			gain := new(big.Int).Sub(value, l.value)
			if chosen < 0 || better(kind, gain, chosenGain) {
				chosen, chosenValue, chosenGain = k, value, gain
			}
		}

		if chosen < 0 {
			if inc.Cmp(floor) <= 0 {
				return nil
			}
			step = halve(step, floor)
			continue
		}

		l := lanes[chosen]
		l.allocated.Add(l.allocated, inc)
		l.value = chosenValue
		remaining.Sub(remaining, inc)

		// Near convergence, refine the increment.
		if remaining.Cmp(new(big.Int).Lsh(step, 1)) < 0 {
			step = halve(step, floor)
		}
	}

	out := make([]PathWithAmount, 0, len(lanes))
	for _, l := range lanes {
		if l.allocated.Sign() == 0 {
			continue
		}
		p, err := NewPathWithAmount(l.path, kind, model.NewTokenAmount(l.token, l.allocated))
		if err != nil {
			return nil
		}
		out = append(out, p)
	}
	if len(out) < 2 {
		// A single-lane fill is the baseline already.
		return nil
	}
	return out
}

// topLanes keeps the MaxSplitPaths lanes with the best return for the smallest increment.
func (r *Router) topLanes(all []*lane, kind model.SwapKind, total *big.Int) []*lane {
	probe := new(big.Int).Quo(total, big.NewInt(minIncrementDivisor))
	if probe.Sign() == 0 {
		probe.SetInt64(1)
	}
	type ranked struct {
		lane  *lane
		value *big.Int
	}
	var usable []ranked
	for _, l := range all {
		value, err := l.quote(probe)
		if err != nil {
			continue
		}
		usable = append(usable, ranked{lane: l, value: value})
	}
	// insertion sort keeps ties in candidate order
	for i := 1; i < len(usable); i++ {
		for j := i; j > 0 && better(kind, usable[j].value, usable[j-1].value); j-- {
			usable[j], usable[j-1] = usable[j-1], usable[j]
		}
	}
	if len(usable) > MaxSplitPaths {
		usable = usable[:MaxSplitPaths]
	}
	out := make([]*lane, len(usable))
	for i, u := range usable {
		out[i] = u.lane
	}
	return out
}

func halve(step, floor *big.Int) *big.Int {
	next := new(big.Int).Rsh(step, 1)
	if next.Cmp(floor) < 0 {
		return new(big.Int).Set(floor)
	}
	return next
}

// better reports whether a beats b: more output for GivenIn, less input for GivenOut.
func better(kind model.SwapKind, a, b *big.Int) bool {
	if kind == model.GivenOut {
		return a.Cmp(b) < 0
	}
	return a.Cmp(b) > 0
}

func totalReturn(paths []PathWithAmount) *big.Int {
	total := new(big.Int)
	for _, p := range paths {
		total.Add(total, p.ReturnAmount().Amount)
	}
	return total
}
