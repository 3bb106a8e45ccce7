package graph

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"swapRouter/internal/model"
	"swapRouter/internal/pools"
)

const (
	addrDAI  = "0x6B175474E89094C44Da98b954EedeAC495271d0F"
	addrUSDC = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	addrWETH = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	addrBAL  = "0xba100000625a3754423978a60c9317c58a424e3D"
)

func mustToken(t *testing.T, address string, decimals uint8) model.Token {
	t.Helper()
	tok, err := model.NewToken(1, address, decimals, "")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}

func weightedPool(t *testing.T, id string, index int, a, b string, balance string) pools.BasePool {
	t.Helper()
	pool, err := pools.NewWeightedPool(1, model.RawPool{
		ID:       id,
		Address:  fmt.Sprintf("0x%040x", index+1),
		PoolType: "Weighted",
		SwapFee:  "0.003",
		Tokens: []model.RawPoolToken{
			{Address: a, Index: 0, Decimals: 18, Balance: balance, Weight: "0.5"},
			{Address: b, Index: 1, Decimals: 18, Balance: balance, Weight: "0.5"},
		},
	})
	if err != nil {
		t.Fatalf("pool %s: %v", id, err)
	}
	return pool
}

func fixturePools(t *testing.T) []pools.BasePool {
	return []pools.BasePool{
		weightedPool(t, "a-dai-weth", 0, addrDAI, addrWETH, "1000"),
		weightedPool(t, "b-weth-usdc", 1, addrWETH, addrUSDC, "1000"),
		weightedPool(t, "c-dai-usdc", 2, addrDAI, addrUSDC, "10"),
		weightedPool(t, "d-dai-bal", 3, addrDAI, addrBAL, "500"),
		weightedPool(t, "e-bal-usdc", 4, addrBAL, addrUSDC, "500"),
		weightedPool(t, "f-dai-weth", 5, addrDAI, addrWETH, "200"),
	}
}

func pathIDs(paths []Path) [][]string {
	out := make([][]string, len(paths))
	for i, p := range paths {
		out[i] = p.PoolIDs()
	}
	return out
}

func TestCandidatePathsOrdering(t *testing.T) {
	dai, usdc := mustToken(t, addrDAI, 18), mustToken(t, addrUSDC, 18)

	paths, err := CandidatePaths(dai, usdc, fixturePools(t), DefaultTraversalConfig())
	if err != nil {
		t.Fatalf("candidate paths: %v", err)
	}
	want := [][]string{
		{"c-dai-usdc"},
		{"a-dai-weth", "b-weth-usdc"},
		{"d-dai-bal", "e-bal-usdc"},
		{"f-dai-weth", "b-weth-usdc"},
	}
	if got := pathIDs(paths); !reflect.DeepEqual(got, want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	for _, p := range paths {
		if len(p.Tokens) != len(p.Pools)+1 {
			t.Fatalf("path %s has %d tokens for %d pools", p, len(p.Tokens), len(p.Pools))
		}
		if !p.TokenIn().IsUnderlyingEqual(dai) || !p.TokenOut().IsUnderlyingEqual(usdc) {
			t.Fatalf("path %s has wrong endpoints", p)
		}
	}
}

func TestCandidatePathsDeterministic(t *testing.T) {
	dai, usdc := mustToken(t, addrDAI, 18), mustToken(t, addrUSDC, 18)
	list := fixturePools(t)

	first, err := CandidatePaths(dai, usdc, list, DefaultTraversalConfig())
	if err != nil {
		t.Fatalf("candidate paths: %v", err)
	}
	reversed := make([]pools.BasePool, len(list))
	for i, p := range list {
		reversed[len(list)-1-i] = p
	}
	for i := 0; i < 5; i++ {
		again, err := CandidatePaths(dai, usdc, reversed, DefaultTraversalConfig())
		if err != nil {
			t.Fatalf("candidate paths: %v", err)
		}
		if !reflect.DeepEqual(pathIDs(first), pathIDs(again)) {
			t.Fatalf("run %d differs: %v vs %v", i, pathIDs(first), pathIDs(again))
		}
	}
}

func TestCandidatePathsLimits(t *testing.T) {
	dai, usdc := mustToken(t, addrDAI, 18), mustToken(t, addrUSDC, 18)

	cfg := DefaultTraversalConfig()
	cfg.MaxDepth = 1
	paths, err := CandidatePaths(dai, usdc, fixturePools(t), cfg)
	if err != nil {
		t.Fatalf("candidate paths: %v", err)
	}
	if got := pathIDs(paths); !reflect.DeepEqual(got, [][]string{{"c-dai-usdc"}}) {
		t.Fatalf("paths = %v", got)
	}

	cfg = DefaultTraversalConfig()
	cfg.PoolIDsToInclude = []string{"a-dai-weth", "b-weth-usdc"}
	paths, err = CandidatePaths(dai, usdc, fixturePools(t), cfg)
	if err != nil {
		t.Fatalf("candidate paths: %v", err)
	}
	if got := pathIDs(paths); !reflect.DeepEqual(got, [][]string{{"a-dai-weth", "b-weth-usdc"}}) {
		t.Fatalf("paths = %v", got)
	}

	cfg = DefaultTraversalConfig()
	cfg.MaxCandidatePaths = 2
	paths, err = CandidatePaths(dai, usdc, fixturePools(t), cfg)
	if err != nil {
		t.Fatalf("candidate paths: %v", err)
	}
	// The deepest-liquidity two-hop path survives the cap.
	if got := pathIDs(paths); !reflect.DeepEqual(got, [][]string{{"c-dai-usdc"}, {"a-dai-weth", "b-weth-usdc"}}) {
		t.Fatalf("paths = %v", got)
	}
}

func TestCandidatePathsEdgeCases(t *testing.T) {
	dai, usdc := mustToken(t, addrDAI, 18), mustToken(t, addrUSDC, 18)
	unknown := mustToken(t, "0x0000000000000000000000000000000000000bad", 18)

	if _, err := CandidatePaths(dai, dai, fixturePools(t), DefaultTraversalConfig()); !errors.Is(err, ErrSameToken) {
		t.Fatalf("expected same token error, got %v", err)
	}
	paths, err := CandidatePaths(dai, unknown, fixturePools(t), DefaultTraversalConfig())
	if err != nil || paths != nil {
		t.Fatalf("expected no paths, got %v %v", paths, err)
	}
	paths, err = CandidatePaths(dai, usdc, nil, DefaultTraversalConfig())
	if err != nil || paths != nil {
		t.Fatalf("expected no paths on empty graph, got %v %v", paths, err)
	}
}

func TestBuildEdges(t *testing.T) {
	g := Build(fixturePools(t), nil)
	// six two-token pools, one undirected edge each, stored in both directions
	if g.EdgeCount() != 12 {
		t.Fatalf("edges = %d", g.EdgeCount())
	}
}
