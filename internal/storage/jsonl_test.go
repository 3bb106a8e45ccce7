package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"swapRouter/internal/model"
)

func rawPool(id string) model.RawPool {
	return model.RawPool{ID: id, Address: "0x0000000000000000000000000000000000000001", PoolType: "Weighted", SwapFee: "0.003"}
}

func TestJsonlSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out", "pools.jsonl")
	store := NewJsonlStorage(path)

	if _, err := store.LoadSnapshot(ctx, 1, nil); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound on missing file, got %v", err)
	}

	puts := []Snapshot{
		{ChainID: 1, BlockNumber: 100, Pools: []model.RawPool{rawPool("b"), rawPool("a")}},
		{ChainID: 1, BlockNumber: 200, Pools: []model.RawPool{rawPool("c")}},
		{ChainID: 137, BlockNumber: 150, Pools: []model.RawPool{rawPool("p")}},
	}
	for _, snap := range puts {
		if err := store.PutSnapshot(ctx, snap); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	latest, err := store.LoadSnapshot(ctx, 1, nil)
	if err != nil {
		t.Fatalf("load latest: %v", err)
	}
	if latest.BlockNumber != 200 || len(latest.Pools) != 1 || latest.Pools[0].ID != "c" {
		t.Fatalf("latest = %+v", latest)
	}

	block := uint64(199)
	older, err := store.LoadSnapshot(ctx, 1, &block)
	if err != nil {
		t.Fatalf("load at block: %v", err)
	}
	if older.BlockNumber != 100 || len(older.Pools) != 2 || older.Pools[0].ID != "a" || older.Pools[1].ID != "b" {
		t.Fatalf("older = %+v", older)
	}

	block = 99
	if _, err := store.LoadSnapshot(ctx, 1, &block); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound before first block, got %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("tmp file left behind: %v", err)
	}
}

func TestJsonlSnapshotReplacesSameBlock(t *testing.T) {
	ctx := context.Background()
	store := NewJsonlStorage(filepath.Join(t.TempDir(), "pools.jsonl"))

	if err := store.PutSnapshot(ctx, Snapshot{ChainID: 1, BlockNumber: 10, Pools: []model.RawPool{rawPool("a"), rawPool("b")}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.PutSnapshot(ctx, Snapshot{ChainID: 1, BlockNumber: 10, Pools: []model.RawPool{rawPool("z")}}); err != nil {
		t.Fatalf("put again: %v", err)
	}
	snap, err := store.LoadSnapshot(ctx, 1, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Pools) != 1 || snap.Pools[0].ID != "z" {
		t.Fatalf("pools = %+v", snap.Pools)
	}
}
