package graph

import (
	"errors"
	"math/big"
	"sort"
	"strings"

	"swapRouter/internal/model"
	"swapRouter/internal/pools"
)

var ErrSameToken = errors.New("token in and token out are the same")

// maxCollectedPaths bounds a single traversal.
const maxCollectedPaths = 10_000

// TraversalConfig caps path length and per-hop branching.
type TraversalConfig struct {
	MaxDepth                            int
	MaxNonBoostedPathDepth              int
	MaxNonBoostedHopTokensInBoostedPath int
	ApproxPathsToReturn                 int
	MaxPoolsPerHop                      int
	MaxCandidatePaths                   int
	PoolIDsToInclude                    []string
}

func DefaultTraversalConfig() TraversalConfig {
	return TraversalConfig{
		MaxDepth:                            6,
		MaxNonBoostedPathDepth:              3,
		MaxNonBoostedHopTokensInBoostedPath: 2,
		ApproxPathsToReturn:                 5,
		MaxPoolsPerHop:                      3,
		MaxCandidatePaths:                   25,
	}
}

// withDefaults fills zero values from DefaultTraversalConfig.
func (c TraversalConfig) withDefaults() TraversalConfig {
	d := DefaultTraversalConfig()
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	if c.MaxNonBoostedPathDepth <= 0 {
		c.MaxNonBoostedPathDepth = d.MaxNonBoostedPathDepth
	}
	if c.MaxNonBoostedHopTokensInBoostedPath <= 0 {
		c.MaxNonBoostedHopTokensInBoostedPath = d.MaxNonBoostedHopTokensInBoostedPath
	}
	if c.ApproxPathsToReturn <= 0 {
		c.ApproxPathsToReturn = d.ApproxPathsToReturn
	}
	if c.MaxPoolsPerHop <= 0 {
		c.MaxPoolsPerHop = d.MaxPoolsPerHop
	}
	if c.MaxCandidatePaths <= 0 {
		c.MaxCandidatePaths = d.MaxCandidatePaths
	}
	return c
}

// CandidatePaths builds a graph over poolList and returns the candidate paths.
func CandidatePaths(tokenIn, tokenOut model.Token, poolList []pools.BasePool, cfg TraversalConfig) ([]Path, error) {
	return Build(poolList, cfg.PoolIDsToInclude).CandidatePaths(tokenIn, tokenOut, cfg)
}

// CandidatePaths widens the per-hop pool count from one up to MaxPoolsPerHop until at least
// ApproxPathsToReturn paths exist. Output is ordered by hop count then pool id sequence.
func (g *Graph) CandidatePaths(tokenIn, tokenOut model.Token, cfg TraversalConfig) ([]Path, error) {
	if tokenIn.IsUnderlyingEqual(tokenOut) {
		return nil, ErrSameToken
	}
	if !g.HasToken(tokenIn) || !g.HasToken(tokenOut) {
		return nil, nil
	}
	cfg = cfg.withDefaults()

	var found []candidate
	for width := 1; width <= cfg.MaxPoolsPerHop; width++ {
		t := traversal{
			graph:  g,
			cfg:    cfg,
			width:  width,
			target: tokenOut.Key(),
			seen:   map[string]bool{tokenIn.Key(): true},
			used:   make(map[string]bool),
		}
		t.walk(tokenIn.Key(), nil)
		found = t.found
		if len(found) >= cfg.ApproxPathsToReturn {
			break
		}
	}
	return selectPaths(found, cfg.MaxCandidatePaths), nil
}

type candidate struct {
	edges      []Edge
	bottleneck *big.Int
}

type traversal struct {
	graph  *Graph
	cfg    TraversalConfig
	width  int
	target string
	seen   map[string]bool
	used   map[string]bool
	found  []candidate
}

func (t *traversal) walk(at string, edges []Edge) {
	if len(t.found) >= maxCollectedPaths {
		return
	}
	for _, e := range t.graph.outgoing(at, t.width) {
		next := e.TokenOut.Key()
		if t.seen[next] || t.used[e.Pool.ID()] {
			continue
		}
		path := append(edges[:len(edges):len(edges)], e)
		if !t.allowed(path) {
			continue
		}
		if next == t.target {
			t.found = append(t.found, candidate{edges: path, bottleneck: bottleneck(path)})
			continue
		}
		if len(path) >= t.cfg.MaxDepth {
			continue
		}
		t.seen[next], t.used[e.Pool.ID()] = true, true
		t.walk(next, path)
		t.seen[next], t.used[e.Pool.ID()] = false, false
	}
}

// allowed applies the depth limits for plain and boosted paths and rejects mixed protocol versions.
func (t *traversal) allowed(path []Edge) bool {
	if len(path) > t.cfg.MaxDepth {
		return false
	}
	boosted, plainHops := 0, 0
	version := path[0].Pool.ProtocolVersion()
	for _, e := range path {
		if e.Pool.ProtocolVersion() != version {
			return false
		}
		if IsBoosted(e.Pool) {
			boosted++
		} else {
			plainHops++
		}
	}
	if boosted == 0 {
		return plainHops <= t.cfg.MaxNonBoostedPathDepth
	}
	return plainHops <= t.cfg.MaxNonBoostedHopTokensInBoostedPath
}

// IsBoosted reports whether a pool wraps yield-bearing tokens behind a BPT.
func IsBoosted(pool pools.BasePool) bool {
	return strings.Contains(pool.PoolType(), "Linear") || pool.PoolType() == "ComposableStable"
}

func bottleneck(path []Edge) *big.Int {
	lowest := path[0].Liquidity
	for _, e := range path[1:] {
		if e.Liquidity.Cmp(lowest) < 0 {
			lowest = e.Liquidity
		}
	}
	return lowest
}

// selectPaths keeps the limit best paths by (hops, bottleneck liquidity, pool ids) and
// returns them ordered by (hops, pool ids).
func selectPaths(found []candidate, limit int) []Path {
	sort.SliceStable(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if len(a.edges) != len(b.edges) {
			return len(a.edges) < len(b.edges)
		}
		if c := a.bottleneck.Cmp(b.bottleneck); c != 0 {
			return c > 0
		}
		return lessIDs(a.edges, b.edges)
	})
	if len(found) > limit {
		found = found[:limit]
	}
	sort.SliceStable(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if len(a.edges) != len(b.edges) {
			return len(a.edges) < len(b.edges)
		}
		return lessIDs(a.edges, b.edges)
	})

	out := make([]Path, 0, len(found))
	for _, c := range found {
		path := Path{Tokens: []model.Token{c.edges[0].TokenIn}}
		for _, e := range c.edges {
			path.Pools = append(path.Pools, e.Pool)
			path.Tokens = append(path.Tokens, e.TokenOut)
		}
		out = append(out, path)
	}
	return out
}

func lessIDs(a, b []Edge) bool {
	for k := 0; k < len(a) && k < len(b); k++ {
		if a[k].Pool.ID() != b[k].Pool.ID() {
			return a[k].Pool.ID() < b[k].Pool.ID()
		}
		if a[k].TokenOut.Key() != b[k].TokenOut.Key() {
			return a[k].TokenOut.Key() < b[k].TokenOut.Key()
		}
	}
	return len(a) < len(b)
}
