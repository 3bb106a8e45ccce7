package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "sor",
		Short:        "Balancer smart order router",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Import a pool export, refresh it on-chain and store it as a block snapshot",
		RunE:  runSnapshot,
	}
	addCommonFlags(snapshotCmd.Flags())
	snapshotCmd.Flags().String("in", "", "pool export JSON (array, {pools}, or API response)")
	root.AddCommand(snapshotCmd)

	pathsCmd := &cobra.Command{
		Use:   "paths",
		Short: "List candidate paths between two tokens",
		RunE:  runPaths,
	}
	addCommonFlags(pathsCmd.Flags())
	addTokenFlags(pathsCmd.Flags())
	root.AddCommand(pathsCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Route a swap and optionally encode its call",
		RunE:  runQuote,
	}
	addCommonFlags(quoteCmd.Flags())
	addTokenFlags(quoteCmd.Flags())
	quoteCmd.Flags().String("kind", "givenIn", "swap kind (givenIn, givenOut)")
	quoteCmd.Flags().String("amount", "", "human readable amount of the fixed side")
	quoteCmd.Flags().String("slippage", "0.5%", "slippage tolerance (0.5%, 50bps)")
	quoteCmd.Flags().String("sender", "", "sender address; enables call encoding")
	quoteCmd.Flags().String("recipient", "", "recipient address (defaults to sender)")
	quoteCmd.Flags().Bool("weth-is-eth", false, "pay or receive native ETH instead of WETH")
	quoteCmd.Flags().Bool("query", false, "re-quote against the chain before encoding")
	root.AddCommand(quoteCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve routing over HTTP",
		RunE:  runServe,
	}
	addCommonFlags(serveCmd.Flags())
	serveCmd.Flags().String("listen", "localhost:8080", "HTTP listen address")
	serveCmd.Flags().Duration("refresh-interval", 12*time.Second, "on-chain refresh interval, 0 disables")
	serveCmd.Flags().Duration("request-timeout", 30*time.Second, "per request timeout")
	serveCmd.Flags().Int("max-concurrent-requests", 200, "concurrent request limit")
	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommonFlags(flags *pflag.FlagSet) {
	flags.String("rpc", "", "Ethereum RPC URL")
	flags.Uint64("chain-id", 1, "chain id")
	flags.Int("protocol-version", 2, "Balancer protocol version (2, 3)")
	flags.Uint64("block", 0, "block number, 0 means latest")
	flags.String("store", "./data/pools.jsonl", "snapshot JSONL path")
	flags.String("pg-dsn", "", "Postgres DSN; replaces the JSONL store when set")
	flags.Bool("enrich", true, "refresh pool state on-chain when an RPC is configured")
	flags.Int("batch-size", 50, "pools per enrichment batch")
	flags.Int("max-concurrency", 4, "concurrent enrichment batches")
	flags.Int("max-retries", 3, "maximum retry attempts per pool")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	flags.Int("max-depth", 6, "maximum path length")
	flags.Int("max-pools-per-hop", 3, "maximum pools considered per token pair")
	flags.Int("max-candidate-paths", 25, "maximum candidate paths")
	flags.StringSlice("pool-ids", nil, "restrict routing to these pool ids (comma-separated)")
	flags.String("vault-v2", "", "override the v2 Vault address")
	flags.String("router", "", "override the v3 Router address")
	flags.String("batch-router", "", "override the v3 BatchRouter address")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func addTokenFlags(flags *pflag.FlagSet) {
	flags.String("token-in", "", "input token address")
	flags.Uint8("token-in-decimals", 18, "input token decimals")
	flags.String("token-out", "", "output token address")
	flags.Uint8("token-out-decimals", 18, "output token decimals")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
