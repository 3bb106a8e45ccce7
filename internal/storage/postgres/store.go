package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"swapRouter/internal/model"
	"swapRouter/internal/storage"
)

// Schema creates the tables used by Store.
const Schema = `
CREATE TABLE IF NOT EXISTS pool_snapshots (
	chain_id      BIGINT NOT NULL,
	block_number  BIGINT NOT NULL,
	pool_id       TEXT   NOT NULL,
	pool_type     TEXT   NOT NULL,
	payload       JSONB  NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, block_number, pool_id)
);
CREATE TABLE IF NOT EXISTS snapshot_state (
	name        TEXT PRIMARY KEY,
	last_block  BIGINT NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store provides Postgres persistence for pool snapshots.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.SnapshotStore = (*Store)(nil)

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate applies Schema.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

// PutSnapshot upserts every pool of the snapshot in one batch.
func (s *Store) PutSnapshot(ctx context.Context, snapshot storage.Snapshot) error {
	if len(snapshot.Pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pool := range snapshot.Pools {
		payload, err := json.Marshal(pool)
		if err != nil {
			return fmt.Errorf("marshal pool %s: %w", pool.ID, err)
		}
		batch.Queue(`
			INSERT INTO pool_snapshots (chain_id, block_number, pool_id, pool_type, payload, created_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (chain_id, block_number, pool_id)
			DO UPDATE SET
				pool_type = EXCLUDED.pool_type,
				payload = EXCLUDED.payload,
				created_at = now()
		`,
			int64(snapshot.ChainID),
			int64(snapshot.BlockNumber),
			pool.ID,
			pool.PoolType,
			payload,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range snapshot.Pools {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadSnapshot returns the newest snapshot of chainID at or below block.
func (s *Store) LoadSnapshot(ctx context.Context, chainID uint64, block *uint64) (storage.Snapshot, error) {
	var upper *int64
	if block != nil {
		v := int64(*block)
		upper = &v
	}

	var latest *int64
	row := s.pool.QueryRow(ctx, `
		SELECT MAX(block_number) FROM pool_snapshots
		WHERE chain_id = $1 AND ($2::BIGINT IS NULL OR block_number <= $2)
	`, int64(chainID), upper)
	if err := row.Scan(&latest); err != nil {
		return storage.Snapshot{}, err
	}
	if latest == nil {
		return storage.Snapshot{}, storage.ErrSnapshotNotFound
	}

	rows, err := s.pool.Query(ctx, `
		SELECT payload FROM pool_snapshots
		WHERE chain_id = $1 AND block_number = $2
		ORDER BY pool_id
	`, int64(chainID), *latest)
	if err != nil {
		return storage.Snapshot{}, err
	}
	defer rows.Close()

	snapshot := storage.Snapshot{ChainID: chainID, BlockNumber: uint64(*latest)}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return storage.Snapshot{}, err
		}
		var pool model.RawPool
		if err := json.Unmarshal(payload, &pool); err != nil {
			return storage.Snapshot{}, fmt.Errorf("decode pool payload: %w", err)
		}
		snapshot.Pools = append(snapshot.Pools, pool)
	}
	if err := rows.Err(); err != nil {
		return storage.Snapshot{}, err
	}
	return snapshot, nil
}

// LoadState returns the last snapshotted block for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT last_block FROM snapshot_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(block), true, nil
}

// SaveState upserts the last snapshotted block for a name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO snapshot_state (name, last_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_block = EXCLUDED.last_block, updated_at = now()
	`, name, int64(block))
	return err
}
