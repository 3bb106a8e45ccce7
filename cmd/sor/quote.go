package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swapRouter/internal/config"
	"swapRouter/internal/model"
	"swapRouter/internal/server"
	"swapRouter/internal/sor"
	"swapRouter/internal/swap"
)

func runPaths(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
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

	tokenIn, tokenOut, err := quoteTokens(cfg)
	if err != nil {
		return err
	}
	router, err := res.newRouter(cfg.Config, logger, nil)
	if err != nil {
		return err
	}
	paths, err := router.GetCandidatePaths(ctx, tokenIn, tokenOut, sor.SwapOptions{Block: cfg.BlockPtr()})
	if err != nil {
		return err
	}
	logger.Info("candidate paths", zap.Int("paths", len(paths)))
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p.String())
	}
	return nil
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
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

	tokenIn, tokenOut, err := quoteTokens(cfg)
	if err != nil {
		return err
	}
	kind, err := model.ParseSwapKind(cfg.SwapKind)
	if err != nil {
		return err
	}
	fixed := tokenIn
	if kind == model.GivenOut {
		fixed = tokenOut
	}
	amount, err := model.FromHumanAmount(fixed, cfg.Amount)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	router, err := res.newRouter(cfg.Config, logger, nil)
	if err != nil {
		return err
	}
	plan, err := router.GetSwaps(ctx, tokenIn, tokenOut, kind, amount, sor.SwapOptions{Block: cfg.BlockPtr()})
	if err != nil {
		return err
	}
	if plan == nil {
		return fmt.Errorf("no route from %s to %s for %s", tokenIn, tokenOut, amount)
	}
	out := server.NewSwapResponse(plan)

	var query *swap.QueryOutput
	if cfg.Query {
		if res.client == nil {
			return fmt.Errorf("--query requires an rpc url")
		}
		var block *big.Int
		if cfg.Block != 0 {
			block = new(big.Int).SetUint64(cfg.Block)
		}
		sender := common.Address{}
		if common.IsHexAddress(cfg.Sender) {
			sender = common.HexToAddress(cfg.Sender)
		}
		q, err := plan.Query(ctx, res.client, block, sender)
		if err != nil {
			return fmt.Errorf("query swap: %w", err)
		}
		query = &q
		logger.Info("on-chain quote",
			zap.String("local", plan.LocalQueryOutput().Amount.ToHuman()),
			zap.String("onchain", q.Amount.ToHuman()),
		)
	}

	if cfg.Sender != "" {
		req := server.SwapRequest{Slippage: cfg.Slippage, Sender: cfg.Sender, Recipient: cfg.Recipient, WethIsEth: cfg.WethIsEth}
		input, err := req.BuildCallInput()
		if err != nil {
			return err
		}
		input.QueryOutput = query
		call, err := plan.BuildCall(input)
		if err != nil {
			return fmt.Errorf("build call: %w", err)
		}
		out.WithCall(call)
	}
	if query != nil {
		onchain := query.Amount
		out.Query = &server.AmountResponse{Token: onchain.Token.Address.Hex(), Raw: onchain.Amount.String(), Human: onchain.ToHuman()}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func quoteTokens(cfg config.QuoteConfig) (model.Token, model.Token, error) {
	tokenIn, err := model.NewToken(cfg.ChainID, cfg.TokenIn, cfg.TokenInDecimals, "")
	if err != nil {
		return model.Token{}, model.Token{}, fmt.Errorf("token-in: %w", err)
	}
	tokenOut, err := model.NewToken(cfg.ChainID, cfg.TokenOut, cfg.TokenOutDecimals, "")
	if err != nil {
		return model.Token{}, model.Token{}, fmt.Errorf("token-out: %w", err)
	}
	return tokenIn, tokenOut, nil
}
