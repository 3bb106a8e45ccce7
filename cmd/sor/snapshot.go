package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swapRouter/internal/config"
	"swapRouter/internal/provider"
	"swapRouter/internal/storage"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSnapshot(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := openResources(ctx, cfg.Config, logger)
	if err != nil {
		return err
	}
	defer res.close()

	block := cfg.Block
	if block == 0 {
		if res.client == nil {
			return fmt.Errorf("block is required without an rpc url")
		}
		if block, err = res.client.LatestBlockNumber(ctx); err != nil {
			return fmt.Errorf("latest block: %w", err)
		}
	}

	stateName := fmt.Sprintf("snapshot:%d", cfg.ChainID)
	if res.pg != nil {
		if last, ok, err := res.pg.LoadState(ctx, stateName); err != nil {
			return fmt.Errorf("load snapshot state: %w", err)
		} else if ok {
			logger.Info("previous snapshot", zap.Uint64("block", last))
		}
	}

	data := provider.NewDataService(
		[]provider.PoolProvider{provider.NewFileProvider(cfg.Input)},
		res.enrichers(cfg.Config, logger),
		res.timestamps(),
		logger,
	)
	pools, _, err := data.FetchEnrichedPools(ctx, &block)
	if err != nil {
		return err
	}

	if err := res.store.PutSnapshot(ctx, storage.Snapshot{ChainID: cfg.ChainID, BlockNumber: block, Pools: pools}); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	if res.pg != nil {
		if err := res.pg.SaveState(ctx, stateName, block); err != nil {
			return fmt.Errorf("save snapshot state: %w", err)
		}
	}

	logger.Info("snapshot stored",
		zap.Uint64("chain_id", cfg.ChainID),
		zap.Uint64("block", block),
		zap.Int("pools", len(pools)),
		zap.String("in", cfg.Input),
	)
	return nil
}
