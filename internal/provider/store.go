package provider

import (
	"context"
	"fmt"

	"swapRouter/internal/model"
	"swapRouter/internal/storage"
)

// ProviderDataBlockKey holds the block the provider's snapshot was taken at.
const ProviderDataBlockKey = "snapshotBlock"

// StoreProvider serves pools from a SnapshotStore.
type StoreProvider struct {
	store   storage.SnapshotStore
	chainID uint64
}

func NewStoreProvider(store storage.SnapshotStore, chainID uint64) *StoreProvider {
	return &StoreProvider{store: store, chainID: chainID}
}

// GetPools loads the newest snapshot at or below opts.Block.
func (p *StoreProvider) GetPools(ctx context.Context, opts FetchOptions) (model.PoolsResponse, error) {
	snapshot, err := p.store.LoadSnapshot(ctx, p.chainID, opts.Block)
	if err != nil {
		return model.PoolsResponse{}, fmt.Errorf("load snapshot: %w", err)
	}
	return model.PoolsResponse{
		Pools:        snapshot.Pools,
		ProviderData: map[string]any{ProviderDataBlockKey: snapshot.BlockNumber},
	}, nil
}
