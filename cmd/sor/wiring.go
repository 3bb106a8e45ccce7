package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"swapRouter/internal/chain"
	"swapRouter/internal/config"
	"swapRouter/internal/contracts"
	"swapRouter/internal/provider"
	"swapRouter/internal/sor"
	"swapRouter/internal/storage"
	"swapRouter/internal/storage/postgres"
)

// resources holds the resources a command opened; close releases them.
type resources struct {
	client *chain.Client
	store  storage.SnapshotStore
	pg     *postgres.Store
}

func (r *resources) close() {
	if r.pg != nil {
		r.pg.Close()
	}
	if r.client != nil {
		r.client.Close()
	}
}

func openResources(ctx context.Context, cfg config.Config, logger *zap.Logger) (*resources, error) {
	res := &resources{}
	if cfg.RPCURL != "" {
		client, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("connect rpc: %w", err)
		}
		res.client = client

		chainID, err := client.GetChainID(ctx)
		if err != nil {
			res.close()
			return nil, fmt.Errorf("get chain id: %w", err)
		}
		if chainID.Uint64() != cfg.ChainID {
			res.close()
			return nil, fmt.Errorf("rpc serves chain %s, configured chain is %d", chainID, cfg.ChainID)
		}
	}

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			res.close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			res.close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		res.pg = store
		res.store = store
	} else {
		res.store = storage.NewJsonlStorage(cfg.Store)
	}

	logger.Info("resources ready",
		zap.Uint64("chain_id", cfg.ChainID),
		zap.Bool("rpc", res.client != nil),
		zap.Bool("postgres", res.pg != nil),
		zap.String("store", cfg.Store),
	)
	return res, nil
}

// enrichers returns the on-chain enricher when an RPC is configured and enrichment is on.
func (r *resources) enrichers(cfg config.Config, logger *zap.Logger) []provider.PoolEnricher {
	if r.client == nil || !cfg.Enrich {
		return nil
	}
	return []provider.PoolEnricher{provider.NewOnChainEnricher(
		r.client,
		cfg.Addresses.VaultV2,
		contracts.NewTokenMetaCache(),
		provider.OnChainConfig{
			BatchSize:      cfg.BatchSize,
			MaxConcurrency: cfg.MaxConcurrency,
			MaxRetries:     cfg.MaxRetries,
			RetryBaseDelay: cfg.RetryBackoff,
		},
		logger,
	)}
}

func (r *resources) timestamps() provider.TimestampSource {
	if r.client == nil {
		return nil
	}
	return r.client
}

// newRouter builds a router that reads pools from the snapshot store.
func (r *resources) newRouter(cfg config.Config, logger *zap.Logger, metrics *sor.Metrics) (*sor.SmartOrderRouter, error) {
	data := provider.NewDataService(
		[]provider.PoolProvider{provider.NewStoreProvider(r.store, cfg.ChainID)},
		r.enrichers(cfg, logger),
		r.timestamps(),
		logger,
	)
	return sor.New(sor.Config{
		ChainID:         cfg.ChainID,
		ProtocolVersion: cfg.ProtocolVersion,
		Traversal:       cfg.Traversal,
		Addresses:       cfg.Addresses,
	}, data, sor.WithLogger(logger), sor.WithMetrics(metrics))
}
