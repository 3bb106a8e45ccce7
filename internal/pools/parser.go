package pools

import (
	"sort"

	"go.uber.org/zap"

	"swapRouter/internal/model"
)

// Factory builds a pool from its raw snapshot entry.
type Factory func(chainID uint64, raw model.RawPool) (BasePool, error)

// Parser maps pool type tags to factories.
type Parser struct {
	chainID   uint64
	factories map[string]Factory
	logger    *zap.Logger
}

func NewParser(chainID uint64, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Parser{chainID: chainID, factories: make(map[string]Factory), logger: logger}

	p.Register("Weighted", func(chainID uint64, raw model.RawPool) (BasePool, error) {
		return NewWeightedPool(chainID, raw)
	})
	stableFactory := func(chainID uint64, raw model.RawPool) (BasePool, error) {
		return NewStablePool(chainID, raw)
	}
	for _, tag := range []string{"Stable", "MetaStable", "ComposableStable"} {
		p.Register(tag, stableFactory)
	}
	p.Register("GyroE", func(chainID uint64, raw model.RawPool) (BasePool, error) {
		return NewGyroEPool(chainID, raw)
	})
	linearFactory := func(chainID uint64, raw model.RawPool) (BasePool, error) {
		return NewLinearPool(chainID, raw)
	}
	for _, tag := range []string{"Linear", "ERC4626Linear", "AaveLinear"} {
		p.Register(tag, linearFactory)
	}
	return p
}

// Register adds or replaces the factory for a pool type.
func (p *Parser) Register(poolType string, factory Factory) {
	p.factories[poolType] = factory
}

// SupportedTypes lists the registered tags in sorted order.
func (p *Parser) SupportedTypes() []string {
	out := make([]string, 0, len(p.factories))
	for tag := range p.factories {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Parse builds every pool it can. Unknown types and malformed pools are skipped.
func (p *Parser) Parse(raws []model.RawPool) []BasePool {
	out := make([]BasePool, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		factory, ok := p.factories[raw.PoolType]
		if !ok {
			skipped++
			p.logger.Debug("skip unsupported pool type", zap.String("pool_id", raw.ID), zap.String("pool_type", raw.PoolType))
			continue
		}
		pool, err := factory(p.chainID, raw)
		if err != nil {
			skipped++
			p.logger.Warn("skip invalid pool", zap.String("pool_id", raw.ID), zap.String("pool_type", raw.PoolType), zap.Error(err))
			continue
		}
		out = append(out, pool)
	}
	if skipped > 0 {
		p.logger.Info("parsed pools", zap.Int("pools", len(out)), zap.Int("skipped", skipped))
	}
	return out
}
