package provider

import (
	"context"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"swapRouter/internal/contracts"
	"swapRouter/internal/model"
	"swapRouter/internal/storage"
)

const (
	addrDAI  = "0x6B175474E89094C44Da98b954EedeAC495271d0F"
	addrWETH = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	addrPool = "0x5c6Ee304399DBdB9C8Ef030aB642B10820DB8F56"
	poolIDV2 = "0x5c6ee304399dbdb9c8ef030ab642b10820db8f56000200000000000000000014"
)

func TestSplitBatches(t *testing.T) {
	got, err := splitBatches(5, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []batch{{From: 0, To: 2}, {From: 2, To: 4}, {From: 4, To: 5}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("batches mismatch: %+v != %+v", got, want)
	}

	got, err = splitBatches(0, 3)
	if err != nil || len(got) != 0 {
		t.Fatalf("empty input: %+v, %v", got, err)
	}
	if _, err := splitBatches(3, 0); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
}

func TestWithRetry(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil || attempts != 3 {
		t.Fatalf("attempts = %d, err = %v", attempts, err)
	}

	attempts = 0
	err = withRetry(context.Background(), 1, time.Millisecond, func(context.Context) error {
		attempts++
		return errors.New("permanent")
	})
	if err == nil || attempts != 2 {
		t.Fatalf("attempts = %d, err = %v", attempts, err)
	}

	attempts = 0
	err = withRetry(context.Background(), 5, time.Millisecond, func(context.Context) error {
		attempts++
		return permanent(errors.New("bad pool id"))
	})
	if err == nil || attempts != 1 {
		t.Fatalf("permanent error retried: attempts = %d, err = %v", attempts, err)
	}

	attempts = 0
	err = withRetry(context.Background(), 5, time.Millisecond, func(context.Context) error {
		attempts++
		return errors.New("execution reverted: BAL#500")
	})
	if err == nil || attempts != 1 {
		t.Fatalf("revert retried: attempts = %d, err = %v", attempts, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = withRetry(ctx, 5, time.Hour, func(context.Context) error { return errors.New("transient") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func weightedRaw() model.RawPool {
	return model.RawPool{
		ID:       poolIDV2,
		Address:  addrPool,
		PoolType: "Weighted",
		SwapFee:  "0.003",
		Tokens: []model.RawPoolToken{
			{Address: addrDAI, Index: 0, Decimals: 18, Symbol: "DAI", Balance: "1000", Weight: "0.5"},
			{Address: addrWETH, Index: 1, Decimals: 18, Symbol: "WETH", Balance: "1", Weight: "0.5"},
		},
	}
}

func TestStoreProvider(t *testing.T) {
	ctx := context.Background()
	store := storage.NewJsonlStorage(filepath.Join(t.TempDir(), "pools.jsonl"))
	if err := store.PutSnapshot(ctx, storage.Snapshot{ChainID: 1, BlockNumber: 42, Pools: []model.RawPool{weightedRaw()}}); err != nil {
		t.Fatalf("put: %v", err)
	}

	resp, err := NewStoreProvider(store, 1).GetPools(ctx, FetchOptions{})
	if err != nil {
		t.Fatalf("get pools: %v", err)
	}
	if len(resp.Pools) != 1 || resp.ProviderData[ProviderDataBlockKey] != uint64(42) {
		t.Fatalf("response = %+v", resp)
	}

	if _, err := NewStoreProvider(store, 10).GetPools(ctx, FetchOptions{}); !errors.Is(err, storage.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

type staticProvider struct {
	pools []model.RawPool
	data  map[string]any
}

func (p staticProvider) GetPools(context.Context, FetchOptions) (model.PoolsResponse, error) {
	return model.PoolsResponse{Pools: p.pools, ProviderData: p.data}, nil
}

type feeEnricher struct {
	fee  string
	seen *FetchOptions
}

func (e feeEnricher) Enrich(_ context.Context, resp model.PoolsResponse, opts FetchOptions) ([]model.RawPool, error) {
	*e.seen = opts
	out := make([]model.RawPool, len(resp.Pools))
	for i, p := range resp.Pools {
		p.SwapFee = e.fee
		out[i] = p
	}
	return out, nil
}

type fakeTimestamps struct{}

func (fakeTimestamps) BlockTimestamp(_ context.Context, number uint64) (uint64, error) {
	return number * 12, nil
}

func (fakeTimestamps) LatestTimestamp(context.Context) (uint64, uint64, error) {
	return 100, 1200, nil
}

func TestDataServiceMergesAndEnriches(t *testing.T) {
	a := weightedRaw()
	b := weightedRaw()
	b.ID = "other"

	var first, second FetchOptions
	svc := NewDataService(
		[]PoolProvider{
			staticProvider{pools: []model.RawPool{a}, data: map[string]any{"a": 1}},
			staticProvider{pools: []model.RawPool{a, b}, data: map[string]any{"b": 2}},
		},
		[]PoolEnricher{feeEnricher{fee: "0.01", seen: &first}, feeEnricher{fee: "0.02", seen: &second}},
		fakeTimestamps{},
		nil,
	)

	block := uint64(10)
	pools, resp, err := svc.FetchEnrichedPools(context.Background(), &block)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(pools) != 2 || pools[0].SwapFee != "0.02" || pools[1].ID != "other" {
		t.Fatalf("pools = %+v", pools)
	}
	if len(resp.Pools) != 2 || resp.Pools[0].SwapFee != "0.003" || len(resp.ProviderData) != 2 {
		t.Fatalf("provider response = %+v", resp)
	}
	if first.Timestamp != 120 || second.Block == nil || *second.Block != 10 {
		t.Fatalf("options = %+v / %+v", first, second)
	}

	ts, err := svc.TimestampForBlock(context.Background(), nil)
	if err != nil || ts != 1200 {
		t.Fatalf("latest timestamp = %d, %v", ts, err)
	}
}

type chainStub struct {
	mu        sync.Mutex
	responses map[common.Address]map[string][]byte
	blocks    []*big.Int
}

func (c *chainStub) CallContract(_ context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocks = append(c.blocks, block)
	if byMethod, ok := c.responses[*msg.To]; ok {
		if resp, ok := byMethod[string(msg.Data[:4])]; ok {
			return resp, nil
		}
	}
	return nil, errors.New("execution reverted")
}

func TestOnChainEnricher(t *testing.T) {
	vaultABI, _ := contracts.VaultV2ABI()
	poolABI, _ := contracts.PoolABI()
	vault := contracts.AddressesFor(contracts.Mainnet).VaultV2

	tokensResp, err := vaultABI.Methods["getPoolTokens"].Outputs.Pack(
		[]common.Address{common.HexToAddress(addrDAI), common.HexToAddress(addrWETH)},
		[]*big.Int{big.NewInt(2_000_000_000_000_000_000), big.NewInt(500_000_000_000_000_000)},
		big.NewInt(5),
	)
	if err != nil {
		t.Fatalf("pack tokens: %v", err)
	}
	feeResp, _ := poolABI.Methods["getSwapFeePercentage"].Outputs.Pack(big.NewInt(1e15))
	weightsResp, _ := poolABI.Methods["getNormalizedWeights"].Outputs.Pack([]*big.Int{big.NewInt(8e17), big.NewInt(2e17)})

	stub := &chainStub{responses: map[common.Address]map[string][]byte{
		vault: {string(vaultABI.Methods["getPoolTokens"].ID): tokensResp},
		common.HexToAddress(addrPool): {
			string(poolABI.Methods["getSwapFeePercentage"].ID): feeResp,
			string(poolABI.Methods["getNormalizedWeights"].ID): weightsResp,
		},
	}}

	broken := weightedRaw()
	broken.ID = "not-a-v2-id"
	v3 := weightedRaw()
	v3.ID = "v3"
	v3.ProtocolVersion = 3

	enricher := NewOnChainEnricher(stub, vault, nil, OnChainConfig{BatchSize: 1, MaxConcurrency: 2}, nil)
	block := uint64(19_000_000)
	out, err := enricher.Enrich(context.Background(), model.PoolsResponse{Pools: []model.RawPool{weightedRaw(), broken, v3}}, FetchOptions{Block: &block})
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}

	got := out[0]
	if got.SwapFee != "0.001" {
		t.Fatalf("fee = %s", got.SwapFee)
	}
	if got.Tokens[0].Balance != "2" || got.Tokens[1].Balance != "0.5" {
		t.Fatalf("balances = %+v", got.Tokens)
	}
	if got.Tokens[0].Weight != "0.8" || got.Tokens[1].Weight != "0.2" || got.Tokens[0].Symbol != "DAI" {
		t.Fatalf("tokens = %+v", got.Tokens)
	}
	if !reflect.DeepEqual(out[1], broken) || !reflect.DeepEqual(out[2], v3) {
		t.Fatalf("unenrichable pools must pass through unchanged")
	}
	for _, b := range stub.blocks {
		if b == nil || b.Uint64() != block {
			t.Fatalf("call at block %v, want %d", b, block)
		}
	}
}

func TestFileProviderShapes(t *testing.T) {
	dir := t.TempDir()
	pool := `{"id":"p1","address":"` + addrPool + `","poolType":"Weighted","swapFee":"0.003","tokens":[]}`
	files := map[string]string{
		"list.json":   "[" + pool + "]",
		"object.json": `{"pools":[` + pool + `]}`,
		"api.json":    `{"data":{"poolGetPools":[` + pool + `]}}`,
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		resp, err := NewFileProvider(path).GetPools(context.Background(), FetchOptions{})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(resp.Pools) != 1 || resp.Pools[0].ID != "p1" || resp.Pools[0].SwapFee != "0.003" {
			t.Fatalf("%s: pools = %+v", name, resp.Pools)
		}
		if resp.ProviderData[ProviderDataSourceKey] != path {
			t.Fatalf("%s: provider data = %+v", name, resp.ProviderData)
		}
	}

	if _, err := NewFileProvider(filepath.Join(dir, "missing.json")).GetPools(context.Background(), FetchOptions{}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
