// Package sor is the entry point: it owns the block-keyed pool snapshot and turns swap
// requests into executable plans.
package sor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"swapRouter/internal/contracts"
	"swapRouter/internal/graph"
	"swapRouter/internal/model"
	"swapRouter/internal/pools"
	"swapRouter/internal/provider"
	"swapRouter/internal/router"
	"swapRouter/internal/swap"
)

// Config selects the chain, the protocol version of the plans and the traversal defaults.
type Config struct {
	ChainID         uint64
	ProtocolVersion int
	Traversal       graph.TraversalConfig
	Addresses       contracts.Addresses
}

// SwapOptions tune one request. A non-nil Block different from the cached one triggers a
// fetch at that block first.
type SwapOptions struct {
	Block     *uint64
	Traversal *graph.TraversalConfig
}

// snapshot is immutable once installed.
type snapshot struct {
	pools        []pools.BasePool
	graph        *graph.Graph
	block        *uint64
	providerData model.PoolsResponse
}

// SmartOrderRouter caches pool state and answers routing requests against it. Readers load
// the snapshot once per call; fetches install a new one atomically.
type SmartOrderRouter struct {
	cfg     Config
	data    *provider.DataService
	parser  *pools.Parser
	router  *router.Router
	metrics *Metrics
	logger  *zap.Logger

	state   atomic.Pointer[snapshot]
	fetchMu sync.Mutex

	factories map[string]pools.Factory
}

type Option func(*SmartOrderRouter)

func WithLogger(logger *zap.Logger) Option {
	return func(s *SmartOrderRouter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(s *SmartOrderRouter) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithPoolFactory registers a custom pool type.
func WithPoolFactory(poolType string, factory pools.Factory) Option {
	return func(s *SmartOrderRouter) {
		s.factories[poolType] = factory
	}
}

func New(cfg Config, data *provider.DataService, opts ...Option) (*SmartOrderRouter, error) {
	if data == nil {
		return nil, fmt.Errorf("data service is required")
	}
	if cfg.ProtocolVersion == 0 {
		cfg.ProtocolVersion = 2
	}
	if cfg.ProtocolVersion != 2 && cfg.ProtocolVersion != 3 {
		return nil, fmt.Errorf("%w: %d", swap.ErrUnsupportedVersion, cfg.ProtocolVersion)
	}
	s := &SmartOrderRouter{
		cfg:       cfg,
		data:      data,
		metrics:   NewMetrics(nil),
		logger:    zap.NewNop(),
		factories: make(map[string]pools.Factory),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.parser = pools.NewParser(cfg.ChainID, s.logger)
	for poolType, factory := range s.factories {
		s.parser.Register(poolType, factory)
	}
	s.router = router.NewRouter(s.logger, router.WithEliminationHook(func(error) {
		s.metrics.Eliminations.Inc()
	}))
	return s, nil
}

// FetchAndCachePools loads, enriches and parses pools at block (nil for latest) and installs
// them. On failure the previous snapshot stays in place.
func (s *SmartOrderRouter) FetchAndCachePools(ctx context.Context, block *uint64) ([]pools.BasePool, error) {
	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	raws, providerData, err := s.data.FetchEnrichedPools(ctx, block)
	if err != nil {
		s.metrics.Fetches.WithLabelValues("full", "error").Inc()
		return nil, err
	}
	snap := s.install(raws, block, providerData)
	s.metrics.Fetches.WithLabelValues("full", "ok").Inc()
	return snap.pools, nil
}

// FetchAndCacheLatestPoolEnrichmentData re-runs the enrichers over the cached provider data
// at block without listing pools again.
func (s *SmartOrderRouter) FetchAndCacheLatestPoolEnrichmentData(ctx context.Context, block *uint64) error {
	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	current := s.state.Load()
	if current == nil {
		return ErrStateNotInitialized
	}
	ts, err := s.data.TimestampForBlock(ctx, block)
	if err != nil {
		s.metrics.Fetches.WithLabelValues("enrichment", "error").Inc()
		return err
	}
	raws, err := s.data.EnrichPools(ctx, current.providerData, provider.FetchOptions{Block: block, Timestamp: ts})
	if err != nil {
		s.metrics.Fetches.WithLabelValues("enrichment", "error").Inc()
		return err
	}
	s.install(raws, block, current.providerData)
	s.metrics.Fetches.WithLabelValues("enrichment", "ok").Inc()
	return nil
}

func (s *SmartOrderRouter) install(raws []model.RawPool, block *uint64, providerData model.PoolsResponse) *snapshot {
	parsed := s.parser.Parse(raws)
	kept := parsed[:0]
	for _, p := range parsed {
		if p.ProtocolVersion() == s.cfg.ProtocolVersion {
			kept = append(kept, p)
		}
	}

	snap := &snapshot{
		pools:        kept,
		graph:        graph.Build(kept, nil),
		providerData: providerData,
	}
	if block != nil {
		b := *block
		snap.block = &b
		s.metrics.CachedBlock.Set(float64(b))
	} else {
		s.metrics.CachedBlock.Set(0)
	}
	s.state.Store(snap)
	s.metrics.CachedPools.Set(float64(len(kept)))
	s.logger.Info("pool snapshot installed",
		zap.Int("raw_pools", len(raws)),
		zap.Int("pools", len(kept)),
		zap.Int("edges", snap.graph.EdgeCount()),
	)
	return snap
}

// IsInitialized reports whether a snapshot with at least one pool is installed.
func (s *SmartOrderRouter) IsInitialized() bool {
	snap := s.state.Load()
	return snap != nil && len(snap.pools) > 0
}

// Pools returns the pools of the installed snapshot.
func (s *SmartOrderRouter) Pools() []pools.BasePool {
	snap := s.state.Load()
	if snap == nil {
		return nil
	}
	return append([]pools.BasePool(nil), snap.pools...)
}

// Block returns the block of the installed snapshot, nil when it tracks latest.
func (s *SmartOrderRouter) Block() *uint64 {
	snap := s.state.Load()
	if snap == nil || snap.block == nil {
		return nil
	}
	b := *snap.block
	return &b
}

func (s *SmartOrderRouter) current(ctx context.Context, block *uint64) (*snapshot, error) {
	snap := s.state.Load()
	stale := snap == nil || len(snap.pools) == 0
	if !stale && block != nil && (snap.block == nil || *snap.block != *block) {
		stale = true
	}
	if stale {
		if _, err := s.FetchAndCachePools(ctx, block); err != nil {
			return nil, err
		}
		snap = s.state.Load()
	}
	return snap, nil
}

// GetCandidatePaths lists the candidate paths between two tokens, fetching pools first when
// nothing is cached or opts.Block differs from the cached block.
func (s *SmartOrderRouter) GetCandidatePaths(ctx context.Context, tokenIn, tokenOut model.Token, opts SwapOptions) ([]graph.Path, error) {
	if tokenIn.IsUnderlyingEqual(tokenOut) {
		return nil, invalid("tokenIn and tokenOut are the same token")
	}
	snap, err := s.current(ctx, opts.Block)
	if err != nil {
		return nil, err
	}
	for _, tok := range []model.Token{tokenIn, tokenOut} {
		if err := checkDecimals(snap.graph, tok); err != nil {
			return nil, err
		}
	}
	cfg := s.cfg.Traversal
	if opts.Traversal != nil {
		cfg = *opts.Traversal
	}
	g := snap.graph
	if len(cfg.PoolIDsToInclude) > 0 {
		g = graph.Build(snap.pools, cfg.PoolIDsToInclude)
	}
	return g.CandidatePaths(tokenIn, tokenOut, cfg)
}

// GetSwaps validates the request, discovers candidates and allocates the amount. It returns
// nil without error when no route can carry the amount.
func (s *SmartOrderRouter) GetSwaps(ctx context.Context, tokenIn, tokenOut model.Token, kind model.SwapKind, amount model.TokenAmount, opts SwapOptions) (*swap.Swap, error) {
	if err := checkInputs(tokenIn, tokenOut, kind, amount); err != nil {
		s.metrics.Quotes.WithLabelValues("invalid").Inc()
		return nil, err
	}

	candidates, err := s.GetCandidatePaths(ctx, tokenIn, tokenOut, opts)
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrInvalidInput) {
			outcome = "invalid"
		}
		s.metrics.Quotes.WithLabelValues(outcome).Inc()
		return nil, err
	}

	start := time.Now()
	best, err := s.router.GetBestPaths(candidates, kind, amount)
	s.metrics.RoutingLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, router.ErrNonPositiveAmount) {
			s.metrics.Quotes.WithLabelValues("invalid").Inc()
			return nil, invalid("%v", err)
		}
		s.metrics.Quotes.WithLabelValues("error").Inc()
		return nil, err
	}
	if best == nil {
		s.metrics.Quotes.WithLabelValues("no_route").Inc()
		s.logger.Debug("no route",
			zap.String("token_in", tokenIn.String()),
			zap.String("token_out", tokenOut.String()),
			zap.Int("candidates", len(candidates)),
		)
		return nil, nil
	}

	plan, err := swap.New(kind, best, swap.WithAddresses(s.cfg.Addresses))
	if err != nil {
		s.metrics.Quotes.WithLabelValues("error").Inc()
		return nil, err
	}
	s.metrics.Quotes.WithLabelValues("routed").Inc()
	return plan, nil
}

// checkInputs rejects requests that cannot describe a swap.
func checkInputs(tokenIn, tokenOut model.Token, kind model.SwapKind, amount model.TokenAmount) error {
	if tokenIn.ChainID != tokenOut.ChainID {
		return invalid("tokens are on different chains (%d, %d)", tokenIn.ChainID, tokenOut.ChainID)
	}
	if tokenIn.IsUnderlyingEqual(tokenOut) {
		return invalid("tokenIn and tokenOut are the same token")
	}
	if amount.Amount == nil || amount.Amount.Sign() <= 0 {
		return invalid("swap amount must be positive")
	}
	fixed := tokenIn
	if kind == model.GivenOut {
		fixed = tokenOut
	}
	if !amount.Token.IsUnderlyingEqual(fixed) {
		return invalid("amount token %s does not match the %s token %s", amount.Token, kind, fixed)
	}
	if amount.Token.Decimals != fixed.Decimals {
		return invalid("amount token decimals %d do not match %d", amount.Token.Decimals, fixed.Decimals)
	}
	return nil
}

// checkDecimals rejects a token whose decimals differ from the ones the cached pools carry.
// Tokens no pool knows pass through and simply find no route.
func checkDecimals(g *graph.Graph, tok model.Token) error {
	known, ok := g.Lookup(tok)
	if !ok || known.Decimals == tok.Decimals {
		return nil
	}
	return invalid("token %s has %d decimals in the pool snapshot, got %d", tok.Address.Hex(), known.Decimals, tok.Decimals)
}

// SupportedPoolTypes lists the pool type tags the parser accepts.
func (s *SmartOrderRouter) SupportedPoolTypes() []string {
	return s.parser.SupportedTypes()
}
