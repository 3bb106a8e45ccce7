package storage

import (
	"context"
	"errors"

	"swapRouter/internal/model"
)

var ErrSnapshotNotFound = errors.New("pool snapshot not found")

// Snapshot is every pool of one chain as of one block.
type Snapshot struct {
	ChainID     uint64
	BlockNumber uint64
	Pools       []model.RawPool
}

// SnapshotStore persists block-scoped pool snapshots. LoadSnapshot with a nil block returns
// the newest snapshot, otherwise the newest one at or below the block.
type SnapshotStore interface {
	PutSnapshot(ctx context.Context, snapshot Snapshot) error
	LoadSnapshot(ctx context.Context, chainID uint64, block *uint64) (Snapshot, error)
}
