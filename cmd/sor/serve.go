package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"swapRouter/internal/config"
	"swapRouter/internal/server"
	"swapRouter/internal/sor"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
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

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	router, err := res.newRouter(cfg.Config, logger, sor.NewMetrics(reg))
	if err != nil {
		return err
	}
	if _, err := router.FetchAndCachePools(ctx, cfg.BlockPtr()); err != nil {
		return err
	}

	opts := []server.Option{server.WithGatherer(reg), server.WithLogger(logger)}
	if res.client != nil {
		opts = append(opts, server.WithCaller(res.client))
	}
	srv, err := server.New(server.Config{
		Address:               cfg.Address,
		ChainID:               cfg.ChainID,
		RequestTimeout:        cfg.RequestTimeout,
		MaxConcurrentRequests: cfg.MaxConcurrentRequests,
	}, router, opts...)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	// A pinned block never changes, so only latest-tracking routers refresh.
	if res.client != nil && cfg.Block == 0 && cfg.RefreshInterval > 0 {
		g.Go(func() error {
			refreshLoop(gctx, router, cfg.RefreshInterval, logger)
			return nil
		})
	}
	return g.Wait()
}

func refreshLoop(ctx context.Context, router *sor.SmartOrderRouter, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := router.FetchAndCacheLatestPoolEnrichmentData(ctx, nil); err != nil {
				logger.Warn("pool refresh failed", zap.Error(err))
			}
		}
	}
}
