package sor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"swapRouter/internal/contracts"
	"swapRouter/internal/model"
	"swapRouter/internal/provider"
)

const (
	addrDAI  = "0x6B175474E89094C44Da98b954EedeAC495271d0F"
	addrWETH = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	addrUSDC = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
)

type listProvider struct {
	mu    sync.Mutex
	pools []model.RawPool
	calls int
	err   error
}

func (p *listProvider) GetPools(context.Context, provider.FetchOptions) (model.PoolsResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return model.PoolsResponse{}, p.err
	}
	return model.PoolsResponse{Pools: append([]model.RawPool(nil), p.pools...), ProviderData: map[string]any{"calls": p.calls}}, nil
}

func (p *listProvider) set(pools ...model.RawPool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pools = pools
}

type balanceEnricher struct {
	balance string
	blocks  []*uint64
}

func (e *balanceEnricher) Enrich(_ context.Context, resp model.PoolsResponse, opts provider.FetchOptions) ([]model.RawPool, error) {
	e.blocks = append(e.blocks, opts.Block)
	out := make([]model.RawPool, len(resp.Pools))
	for i, p := range resp.Pools {
		if e.balance != "" {
			tokens := make([]model.RawPoolToken, len(p.Tokens))
			copy(tokens, p.Tokens)
			for j := range tokens {
				tokens[j].Balance = e.balance
			}
			p.Tokens = tokens
		}
		out[i] = p
	}
	return out, nil
}

func weightedRaw(id string, n int, a, b string, decA, decB uint8, version int) model.RawPool {
	return model.RawPool{
		ID:              id,
		Address:         fmt.Sprintf("0x%040x", n),
		PoolType:        "Weighted",
		ProtocolVersion: version,
		SwapFee:         "0.001",
		Tokens: []model.RawPoolToken{
			{Address: a, Index: 0, Decimals: decA, Balance: "1000", Weight: "0.5"},
			{Address: b, Index: 1, Decimals: decB, Balance: "1000", Weight: "0.5"},
		},
	}
}

func daiWeth() model.RawPool  { return weightedRaw("dai-weth", 1, addrDAI, addrWETH, 18, 18, 2) }
func wethUSDC() model.RawPool { return weightedRaw("weth-usdc", 2, addrWETH, addrUSDC, 18, 6, 2) }

type fixture struct {
	dai, weth, usdc model.Token
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mk := func(address string, decimals uint8) model.Token {
		tok, err := model.NewToken(contracts.Mainnet, address, decimals, "")
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		return tok
	}
	return fixture{dai: mk(addrDAI, 18), weth: mk(addrWETH, 18), usdc: mk(addrUSDC, 6)}
}

func amountOf(t *testing.T, tok model.Token, human string) model.TokenAmount {
	t.Helper()
	a, err := model.FromHumanAmount(tok, human)
	if err != nil {
		t.Fatalf("amount: %v", err)
	}
	return a
}

func newRouter(t *testing.T, p provider.PoolProvider, enrichers []provider.PoolEnricher, opts ...Option) *SmartOrderRouter {
	t.Helper()
	data := provider.NewDataService([]provider.PoolProvider{p}, enrichers, nil, nil)
	s, err := New(Config{ChainID: contracts.Mainnet, ProtocolVersion: 2}, data, opts...)
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	return s
}

func TestGetSwapsTwoHop(t *testing.T) {
	f := newFixture(t)
	p := &listProvider{pools: []model.RawPool{daiWeth(), wethUSDC()}}
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	s := newRouter(t, p, nil, WithMetrics(metrics))

	if s.IsInitialized() {
		t.Fatalf("router must start empty")
	}
	plan, err := s.GetSwaps(context.Background(), f.dai, f.usdc, model.GivenIn, amountOf(t, f.dai, "1"), SwapOptions{})
	if err != nil {
		t.Fatalf("get swaps: %v", err)
	}
	if plan == nil {
		t.Fatalf("expected a route")
	}
	if !s.IsInitialized() || p.calls != 1 {
		t.Fatalf("implicit fetch: initialized=%v calls=%d", s.IsInitialized(), p.calls)
	}

	paths := plan.Paths()
	if len(paths) != 1 || paths[0].Hops() != 2 {
		t.Fatalf("paths = %d, hops = %d", len(paths), paths[0].Hops())
	}
	if plan.InputAmount().Amount.Cmp(big.NewInt(1e18)) != 0 {
		t.Fatalf("input = %s", plan.InputAmount().Amount)
	}
	out := plan.OutputAmount().Amount
	if out.Sign() <= 0 || out.Cmp(big.NewInt(1_000_000)) >= 0 {
		t.Fatalf("output = %s, want within (0, 1 USDC)", out)
	}
	if plan.Addresses().VaultV2 != contracts.AddressesFor(contracts.Mainnet).VaultV2 {
		t.Fatalf("vault = %s", plan.Addresses().VaultV2.Hex())
	}
	if got := testutil.ToFloat64(metrics.Quotes.WithLabelValues("routed")); got != 1 {
		t.Fatalf("routed quotes = %v", got)
	}
	if got := testutil.ToFloat64(metrics.CachedPools); got != 2 {
		t.Fatalf("cached pools = %v", got)
	}

	// A second call reuses the snapshot.
	if _, err := s.GetSwaps(context.Background(), f.dai, f.usdc, model.GivenIn, amountOf(t, f.dai, "2"), SwapOptions{}); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if p.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", p.calls)
	}
}

func TestGetSwapsGivenOut(t *testing.T) {
	f := newFixture(t)
	s := newRouter(t, &listProvider{pools: []model.RawPool{daiWeth(), wethUSDC()}}, nil)

	plan, err := s.GetSwaps(context.Background(), f.dai, f.usdc, model.GivenOut, amountOf(t, f.usdc, "1"), SwapOptions{})
	if err != nil || plan == nil {
		t.Fatalf("get swaps: %v, %v", plan, err)
	}
	if plan.OutputAmount().Amount.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("output = %s", plan.OutputAmount().Amount)
	}
	if plan.InputAmount().Amount.Cmp(big.NewInt(1e18)) <= 0 {
		t.Fatalf("input = %s, fees must make it exceed 1 DAI", plan.InputAmount().Amount)
	}
}

func TestGetSwapsNoRouteAfterRefetch(t *testing.T) {
	f := newFixture(t)
	p := &listProvider{pools: []model.RawPool{daiWeth(), wethUSDC()}}
	s := newRouter(t, p, nil)
	ctx := context.Background()

	if _, err := s.FetchAndCachePools(ctx, nil); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	p.set(daiWeth())
	block := uint64(100)
	pools, err := s.FetchAndCachePools(ctx, &block)
	if err != nil || len(pools) != 1 {
		t.Fatalf("refetch: %d pools, %v", len(pools), err)
	}
	if got := s.Block(); got == nil || *got != block {
		t.Fatalf("block = %v", got)
	}

	plan, err := s.GetSwaps(ctx, f.dai, f.usdc, model.GivenIn, amountOf(t, f.dai, "1"), SwapOptions{Block: &block})
	if err != nil || plan != nil {
		t.Fatalf("expected no route, got %v, %v", plan, err)
	}
	if p.calls != 2 {
		t.Fatalf("provider calls = %d, want 2", p.calls)
	}
}

func TestGetSwapsFiltersProtocolVersion(t *testing.T) {
	f := newFixture(t)
	v3 := weightedRaw("v3-dai-usdc", 3, addrDAI, addrUSDC, 18, 6, 3)
	s := newRouter(t, &listProvider{pools: []model.RawPool{v3, daiWeth()}}, nil)

	pools, err := s.FetchAndCachePools(context.Background(), nil)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(pools) != 1 || pools[0].ID() != "dai-weth" {
		t.Fatalf("v2 router kept %d pools", len(pools))
	}
	plan, err := s.GetSwaps(context.Background(), f.dai, f.usdc, model.GivenIn, amountOf(t, f.dai, "1"), SwapOptions{})
	if err != nil || plan != nil {
		t.Fatalf("v3 pool must not be routed by a v2 router: %v, %v", plan, err)
	}
}

func TestGetSwapsValidation(t *testing.T) {
	f := newFixture(t)
	p := &listProvider{pools: []model.RawPool{daiWeth(), wethUSDC()}}
	s := newRouter(t, p, nil)
	ctx := context.Background()

	otherChain, err := model.NewToken(contracts.Arbitrum, addrUSDC, 6, "")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	usdc18, err := model.NewToken(contracts.Mainnet, addrUSDC, 18, "")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	cases := []struct {
		name    string
		in, out model.Token
		kind    model.SwapKind
		amount  model.TokenAmount
	}{
		{"same token", f.dai, f.dai, model.GivenIn, amountOf(t, f.dai, "1")},
		{"different chains", f.dai, otherChain, model.GivenIn, amountOf(t, f.dai, "1")},
		{"zero amount", f.dai, f.usdc, model.GivenIn, model.NewTokenAmount(f.dai, new(big.Int))},
		{"given in with output token", f.dai, f.usdc, model.GivenIn, amountOf(t, f.usdc, "1")},
		{"given out with input token", f.dai, f.usdc, model.GivenOut, amountOf(t, f.dai, "1")},
		{"decimals mismatch", f.dai, f.usdc, model.GivenOut, amountOf(t, usdc18, "1")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.GetSwaps(ctx, tc.in, tc.out, tc.kind, tc.amount, SwapOptions{})
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			var verr *InputValidationError
			if !errors.As(err, &verr) || verr.Reason == "" {
				t.Fatalf("expected a reason, got %v", err)
			}
		})
	}
	if p.calls != 0 {
		t.Fatalf("invalid requests must not fetch, calls = %d", p.calls)
	}
}

func TestGetSwapsRejectsDecimalsUnlikeSnapshot(t *testing.T) {
	f := newFixture(t)
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	s := newRouter(t, &listProvider{pools: []model.RawPool{daiWeth(), wethUSDC()}}, nil, WithMetrics(metrics))
	ctx := context.Background()

	dai6, err := model.NewToken(contracts.Mainnet, addrDAI, 6, "")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	plan, err := s.GetSwaps(ctx, dai6, f.usdc, model.GivenIn, amountOf(t, dai6, "1"), SwapOptions{})
	if !errors.Is(err, ErrInvalidInput) || plan != nil {
		t.Fatalf("expected ErrInvalidInput for DAI with 6 decimals, got %v, %v", plan, err)
	}
	if got := testutil.ToFloat64(metrics.Quotes.WithLabelValues("invalid")); got != 1 {
		t.Fatalf("invalid quotes = %v", got)
	}

	usdc18, err := model.NewToken(contracts.Mainnet, addrUSDC, 18, "")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if _, err := s.GetCandidatePaths(ctx, f.dai, usdc18, SwapOptions{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for USDC with 18 decimals, got %v", err)
	}

	paths, err := s.GetCandidatePaths(ctx, f.dai, f.usdc, SwapOptions{})
	if err != nil || len(paths) != 1 {
		t.Fatalf("matching decimals: %d paths, %v", len(paths), err)
	}
}

func TestEnrichmentRefreshRequiresState(t *testing.T) {
	s := newRouter(t, &listProvider{}, nil)
	if err := s.FetchAndCacheLatestPoolEnrichmentData(context.Background(), nil); !errors.Is(err, ErrStateNotInitialized) {
		t.Fatalf("expected ErrStateNotInitialized, got %v", err)
	}
}

func TestEnrichmentRefreshReusesProviderData(t *testing.T) {
	p := &listProvider{pools: []model.RawPool{daiWeth(), wethUSDC()}}
	enricher := &balanceEnricher{}
	s := newRouter(t, p, []provider.PoolEnricher{enricher})
	ctx := context.Background()

	if _, err := s.FetchAndCachePools(ctx, nil); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	enricher.balance = "10"
	block := uint64(77)
	if err := s.FetchAndCacheLatestPoolEnrichmentData(ctx, &block); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if p.calls != 1 {
		t.Fatalf("refresh must not list pools again, calls = %d", p.calls)
	}
	if got := s.Block(); got == nil || *got != block {
		t.Fatalf("block = %v", got)
	}
	if len(enricher.blocks) != 2 || enricher.blocks[1] == nil || *enricher.blocks[1] != block {
		t.Fatalf("enricher blocks = %v", enricher.blocks)
	}
	// 1 DAI against 10/10 balances moves the price far more than against 1000/1000.
	f := newFixture(t)
	plan, err := s.GetSwaps(ctx, f.dai, f.weth, model.GivenIn, amountOf(t, f.dai, "1"), SwapOptions{Block: &block})
	if err != nil || plan == nil {
		t.Fatalf("get swaps: %v, %v", plan, err)
	}
	if plan.OutputAmount().Amount.Cmp(big.NewInt(95e16)) >= 0 {
		t.Fatalf("output = %s, refreshed balances not used", plan.OutputAmount().Amount)
	}
	if p.calls != 1 {
		t.Fatalf("calls = %d after routing at the cached block", p.calls)
	}
}

func TestFetchFailureKeepsSnapshot(t *testing.T) {
	p := &listProvider{pools: []model.RawPool{daiWeth()}}
	s := newRouter(t, p, nil)
	ctx := context.Background()
	if _, err := s.FetchAndCachePools(ctx, nil); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	p.err = errors.New("indexer down")
	if _, err := s.FetchAndCachePools(ctx, nil); err == nil {
		t.Fatalf("expected fetch error")
	}
	if !s.IsInitialized() || len(s.Pools()) != 1 {
		t.Fatalf("previous snapshot must survive a failed fetch")
	}
}

func TestNewRejectsUnknownVersion(t *testing.T) {
	data := provider.NewDataService(nil, nil, nil, nil)
	if _, err := New(Config{ProtocolVersion: 4}, data); err == nil {
		t.Fatalf("expected error for protocol version 4")
	}
	s, err := New(Config{}, data)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if len(s.SupportedPoolTypes()) == 0 {
		t.Fatalf("default parser has no pool types")
	}
}
