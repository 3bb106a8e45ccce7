package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"swapRouter/internal/model"
)

// JsonlStorage keeps snapshots in a JSONL file, one model.SnapshotRecord per line.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutSnapshot replaces any records of the same chain and block, then rewrites the file
// through a tmp file and a rename so readers never see a partial snapshot.
func (s *JsonlStorage) PutSnapshot(_ context.Context, snapshot Snapshot) error {
	if len(snapshot.Pools) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readAll()
	if err != nil {
		return err
	}
	kept := existing[:0]
	for _, record := range existing {
		if record.ChainID == snapshot.ChainID && record.BlockNumber == snapshot.BlockNumber {
			continue
		}
		kept = append(kept, record)
	}
	for _, pool := range snapshot.Pools {
		kept = append(kept, model.SnapshotRecord{ChainID: snapshot.ChainID, BlockNumber: snapshot.BlockNumber, Pool: pool})
	}

	tmpPath := s.path + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}

	writer := bufio.NewWriter(file)
	for _, record := range kept {
		line, err := json.Marshal(record)
		if err != nil {
			file.Close()
			return fmt.Errorf("marshal snapshot record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			file.Close()
			return fmt.Errorf("write snapshot record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			file.Close()
			return fmt.Errorf("write newline: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

// LoadSnapshot returns the newest snapshot of chainID at or below block.
func (s *JsonlStorage) LoadSnapshot(_ context.Context, chainID uint64, block *uint64) (Snapshot, error) {
	s.mu.Lock()
	records, err := s.readAll()
	s.mu.Unlock()
	if err != nil {
		return Snapshot{}, err
	}

	var (
		found bool
		best  uint64
	)
	for _, record := range records {
		if record.ChainID != chainID {
			continue
		}
		if block != nil && record.BlockNumber > *block {
			continue
		}
		if !found || record.BlockNumber > best {
			best = record.BlockNumber
			found = true
		}
	}
	if !found {
		return Snapshot{}, ErrSnapshotNotFound
	}

	snapshot := Snapshot{ChainID: chainID, BlockNumber: best}
	for _, record := range records {
		if record.ChainID == chainID && record.BlockNumber == best {
			snapshot.Pools = append(snapshot.Pools, record.Pool)
		}
	}
	sort.SliceStable(snapshot.Pools, func(i, j int) bool { return snapshot.Pools[i].ID < snapshot.Pools[j].ID })
	return snapshot, nil
}

func (s *JsonlStorage) readAll() ([]model.SnapshotRecord, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer file.Close()

	var records []model.SnapshotRecord
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var record model.SnapshotRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			return nil, fmt.Errorf("parse snapshot line %d: %w", line, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	return records, nil
}
