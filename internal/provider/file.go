package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"swapRouter/internal/model"
)

// ProviderDataSourceKey holds the path a FileProvider read from.
const ProviderDataSourceKey = "source"

// FileProvider reads a pool export: a bare JSON array of pools, {"pools": [...]}, or the
// API shape {"data": {"poolGetPools": [...]}}.
type FileProvider struct {
	path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

type poolExport struct {
	Pools []model.RawPool `json:"pools"`
	Data  *struct {
		PoolGetPools []model.RawPool `json:"poolGetPools"`
	} `json:"data"`
}

func (p *FileProvider) GetPools(_ context.Context, _ FetchOptions) (model.PoolsResponse, error) {
	payload, err := os.ReadFile(p.path)
	if err != nil {
		return model.PoolsResponse{}, fmt.Errorf("read pools file: %w", err)
	}
	pools, err := decodePools(payload)
	if err != nil {
		return model.PoolsResponse{}, fmt.Errorf("decode %s: %w", p.path, err)
	}
	return model.PoolsResponse{Pools: pools, ProviderData: map[string]any{ProviderDataSourceKey: p.path}}, nil
}

func decodePools(payload []byte) ([]model.RawPool, error) {
	var list []model.RawPool
	if err := json.Unmarshal(payload, &list); err == nil {
		return list, nil
	}
	var export poolExport
	if err := json.Unmarshal(payload, &export); err != nil {
		return nil, err
	}
	if export.Data != nil {
		return append(export.Pools, export.Data.PoolGetPools...), nil
	}
	return export.Pools, nil
}
