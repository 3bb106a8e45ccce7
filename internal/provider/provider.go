// Package provider loads raw pool snapshots and refreshes their on-chain state.
package provider

import (
	"context"
	"math/big"

	"swapRouter/internal/model"
)

// FetchOptions pins a fetch to a block. A nil Block means latest.
type FetchOptions struct {
	Block     *uint64
	Timestamp uint64
}

func (o FetchOptions) blockNumber() *big.Int {
	if o.Block == nil {
		return nil
	}
	return new(big.Int).SetUint64(*o.Block)
}

// PoolProvider lists pools, typically from an indexer or a stored snapshot.
type PoolProvider interface {
	GetPools(ctx context.Context, opts FetchOptions) (model.PoolsResponse, error)
}

// PoolEnricher refreshes the state of listed pools. It returns the full updated list.
type PoolEnricher interface {
	Enrich(ctx context.Context, resp model.PoolsResponse, opts FetchOptions) ([]model.RawPool, error)
}
