package provider

import (
	"context"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"swapRouter/internal/model"
)

// TimestampSource resolves block timestamps, normally the chain client.
type TimestampSource interface {
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	LatestTimestamp(ctx context.Context) (uint64, uint64, error)
}

// DataService runs the providers, merges their pools and passes them through the enrichers
// in order.
type DataService struct {
	providers  []PoolProvider
	enrichers  []PoolEnricher
	timestamps TimestampSource
	logger     *zap.Logger
}

func NewDataService(providers []PoolProvider, enrichers []PoolEnricher, timestamps TimestampSource, logger *zap.Logger) *DataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataService{providers: providers, enrichers: enrichers, timestamps: timestamps, logger: logger}
}

// FetchEnrichedPools lists pools from every provider at block and enriches them. The merged
// provider response is returned so later refreshes can skip listing.
func (s *DataService) FetchEnrichedPools(ctx context.Context, block *uint64) ([]model.RawPool, model.PoolsResponse, error) {
	if len(s.providers) == 0 {
		return nil, model.PoolsResponse{}, fmt.Errorf("no pool providers configured")
	}
	ts, err := s.TimestampForBlock(ctx, block)
	if err != nil {
		return nil, model.PoolsResponse{}, err
	}
	opts := FetchOptions{Block: block, Timestamp: ts}

	merged := model.PoolsResponse{ProviderData: make(map[string]any)}
	seen := make(map[string]struct{})
	for _, p := range s.providers {
		resp, err := p.GetPools(ctx, opts)
		if err != nil {
			return nil, model.PoolsResponse{}, fmt.Errorf("get pools: %w", err)
		}
		for _, pool := range resp.Pools {
			if _, dup := seen[pool.ID]; dup {
				continue
			}
			seen[pool.ID] = struct{}{}
			merged.Pools = append(merged.Pools, pool)
		}
		maps.Copy(merged.ProviderData, resp.ProviderData)
	}
	s.logger.Info("pools listed", zap.Int("pools", len(merged.Pools)), zap.Int("providers", len(s.providers)))

	enriched, err := s.EnrichPools(ctx, merged, opts)
	if err != nil {
		return nil, model.PoolsResponse{}, err
	}
	return enriched, merged, nil
}

// EnrichPools runs every enricher over resp in order.
func (s *DataService) EnrichPools(ctx context.Context, resp model.PoolsResponse, opts FetchOptions) ([]model.RawPool, error) {
	pools := resp.Pools
	for _, e := range s.enrichers {
		next, err := e.Enrich(ctx, model.PoolsResponse{Pools: pools, ProviderData: resp.ProviderData}, opts)
		if err != nil {
			return nil, fmt.Errorf("enrich pools: %w", err)
		}
		pools = next
	}
	return pools, nil
}

// TimestampForBlock returns the block's timestamp, the head's for a nil block, or zero when
// no timestamp source is configured.
func (s *DataService) TimestampForBlock(ctx context.Context, block *uint64) (uint64, error) {
	if s.timestamps == nil {
		return 0, nil
	}
	if block == nil {
		_, ts, err := s.timestamps.LatestTimestamp(ctx)
		if err != nil {
			return 0, fmt.Errorf("latest timestamp: %w", err)
		}
		return ts, nil
	}
	ts, err := s.timestamps.BlockTimestamp(ctx, *block)
	if err != nil {
		return 0, fmt.Errorf("block %d timestamp: %w", *block, err)
	}
	return ts, nil
}
