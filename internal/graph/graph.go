// Package graph indexes pools as a token multigraph and enumerates candidate paths.
package graph

import (
	"math/big"
	"sort"
	"strings"

	"swapRouter/internal/model"
	"swapRouter/internal/pools"
)

// Path is an ordered list of pools and the tokens they connect.
// len(Tokens) == len(Pools)+1.
type Path struct {
	Pools  []pools.BasePool
	Tokens []model.Token
}

func (p Path) TokenIn() model.Token  { return p.Tokens[0] }
func (p Path) TokenOut() model.Token { return p.Tokens[len(p.Tokens)-1] }
func (p Path) Hops() int             { return len(p.Pools) }

// ProtocolVersion is the version of the path's pools; paths never mix versions.
func (p Path) ProtocolVersion() int {
	if len(p.Pools) == 0 {
		return 0
	}
	return p.Pools[0].ProtocolVersion()
}

// PoolIDs is the ordered pool id sequence.
func (p Path) PoolIDs() []string {
	ids := make([]string, len(p.Pools))
	for i, pool := range p.Pools {
		ids[i] = pool.ID()
	}
	return ids
}

func (p Path) String() string {
	parts := make([]string, 0, len(p.Tokens)*2)
	for i, t := range p.Tokens {
		parts = append(parts, t.String())
		if i < len(p.Pools) {
			parts = append(parts, "["+p.Pools[i].ID()+"]")
		}
	}
	return strings.Join(parts, " -> ")
}

// Edge is one directed use of a pool between two of its tokens.
type Edge struct {
	Pool      pools.BasePool
	TokenIn   model.Token
	TokenOut  model.Token
	Liquidity *big.Int
}

// Graph maps each token to its outgoing edges grouped by destination token.
type Graph struct {
	tokens map[string]model.Token
	edges  map[string]map[string][]Edge
}

// Build adds C(n,2) undirected edges per pool. Pairs whose normalized liquidity cannot be
// computed or is zero are left out. includeIDs restricts the pool set when non-empty.
func Build(poolList []pools.BasePool, includeIDs []string) *Graph {
	include := make(map[string]struct{}, len(includeIDs))
	for _, id := range includeIDs {
		include[strings.ToLower(id)] = struct{}{}
	}

	g := &Graph{
		tokens: make(map[string]model.Token),
		edges:  make(map[string]map[string][]Edge),
	}
	for _, pool := range poolList {
		if len(include) > 0 {
			if _, ok := include[strings.ToLower(pool.ID())]; !ok {
				continue
			}
		}
		tokens := pool.Tokens()
		for i := 0; i < len(tokens); i++ {
			for j := i + 1; j < len(tokens); j++ {
				g.addEdge(pool, tokens[i], tokens[j])
				g.addEdge(pool, tokens[j], tokens[i])
			}
		}
	}
	for _, byDest := range g.edges {
		for _, list := range byDest {
			sortEdges(list)
		}
	}
	return g
}

func (g *Graph) addEdge(pool pools.BasePool, tokenIn, tokenOut model.Token) {
	liquidity, err := pool.GetNormalizedLiquidity(tokenIn, tokenOut)
	if err != nil || liquidity == nil || liquidity.Sign() <= 0 {
		return
	}
	from, to := tokenIn.Key(), tokenOut.Key()
	g.tokens[from] = tokenIn
	g.tokens[to] = tokenOut
	if g.edges[from] == nil {
		g.edges[from] = make(map[string][]Edge)
	}
	g.edges[from][to] = append(g.edges[from][to], Edge{Pool: pool, TokenIn: tokenIn, TokenOut: tokenOut, Liquidity: liquidity})
}

// sortEdges orders by liquidity descending, then pool id ascending.
func sortEdges(list []Edge) {
	sort.SliceStable(list, func(i, j int) bool {
		if c := list[i].Liquidity.Cmp(list[j].Liquidity); c != 0 {
			return c > 0
		}
		return list[i].Pool.ID() < list[j].Pool.ID()
	})
}

// HasToken reports whether any pool connects the token.
func (g *Graph) HasToken(token model.Token) bool {
	_, ok := g.tokens[token.Key()]
	return ok
}

// Lookup returns the token as the pools describe it, matched by address.
func (g *Graph) Lookup(token model.Token) (model.Token, bool) {
	known, ok := g.tokens[token.Key()]
	return known, ok
}

// EdgeCount is the number of directed edges.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, byDest := range g.edges {
		for _, list := range byDest {
			total += len(list)
		}
	}
	return total
}

// outgoing returns the top maxPerPair edges to each neighbour, ordered by liquidity then
// pool id then destination.
func (g *Graph) outgoing(from string, maxPerPair int) []Edge {
	byDest := g.edges[from]
	out := make([]Edge, 0, len(byDest)*maxPerPair)
	for _, list := range byDest {
		if len(list) > maxPerPair {
			list = list[:maxPerPair]
		}
		out = append(out, list...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Liquidity.Cmp(out[j].Liquidity); c != 0 {
			return c > 0
		}
		if out[i].Pool.ID() != out[j].Pool.ID() {
			return out[i].Pool.ID() < out[j].Pool.ID()
		}
		return out[i].TokenOut.Key() < out[j].TokenOut.Key()
	})
	return out
}
