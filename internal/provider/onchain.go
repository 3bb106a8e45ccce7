package provider

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"swapRouter/internal/chain"
	"swapRouter/internal/contracts"
	"swapRouter/internal/model"
)

// OnChainConfig tunes the enricher's fan-out and retries.
type OnChainConfig struct {
	BatchSize      int
	MaxConcurrency int
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// OnChainEnricher refreshes v2 pool state (balances, fee, weights, amp, rates, linear
// targets and ECLP params) through the Vault and the pool contracts at the requested block.
type OnChainEnricher struct {
	caller     chain.Caller
	vault      common.Address
	tokenCache *contracts.TokenMetaCache
	cfg        OnChainConfig
	logger     *zap.Logger
}

func NewOnChainEnricher(caller chain.Caller, vault common.Address, tokenCache *contracts.TokenMetaCache, cfg OnChainConfig, logger *zap.Logger) *OnChainEnricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tokenCache == nil {
		tokenCache = contracts.NewTokenMetaCache()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	return &OnChainEnricher{caller: caller, vault: vault, tokenCache: tokenCache, cfg: cfg, logger: logger}
}

// Enrich returns a refreshed copy of every pool. A pool whose reads keep failing after
// retries is returned unchanged.
func (e *OnChainEnricher) Enrich(ctx context.Context, resp model.PoolsResponse, opts FetchOptions) ([]model.RawPool, error) {
	if e.caller == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	vaultABI, err := contracts.VaultV2ABI()
	if err != nil {
		return nil, fmt.Errorf("parse vault abi: %w", err)
	}
	poolABI, err := contracts.PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	batches, err := splitBatches(len(resp.Pools), e.cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	out := make([]model.RawPool, len(resp.Pools))
	copy(out, resp.Pools)
	block := opts.blockNumber()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxConcurrency)
	for _, b := range batches {
		b := b
		g.Go(func() error {
			for i := b.From; i < b.To; i++ {
				if out[i].ProtocolVersion == 3 {
					continue
				}
				var refreshed model.RawPool
				err := withRetry(gctx, e.cfg.MaxRetries, e.cfg.RetryBaseDelay, func(ctx context.Context) error {
					var err error
					refreshed, err = e.enrichPool(ctx, vaultABI, poolABI, out[i], block)
					return err
				})
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					e.logger.Warn("pool enrichment failed", zap.String("pool_id", out[i].ID), zap.Error(err))
					continue
				}
				out[i] = refreshed
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *OnChainEnricher) enrichPool(ctx context.Context, vaultABI, poolABI abi.ABI, raw model.RawPool, block *big.Int) (model.RawPool, error) {
	id, err := poolID(raw.ID)
	if err != nil {
		return raw, permanent(err)
	}
	values, err := contracts.Call(ctx, e.caller, e.vault, vaultABI, "getPoolTokens", block, id)
	if err != nil {
		return raw, err
	}
	addresses, err := contracts.AsAddresses(values[0])
	if err != nil {
		return raw, err
	}
	balances, err := contracts.AsBigInts(values[1])
	if err != nil {
		return raw, err
	}
	if len(addresses) != len(balances) {
		return raw, permanent(fmt.Errorf("pool %s: %d tokens but %d balances", raw.ID, len(addresses), len(balances)))
	}

	tokens, err := e.mergeTokens(ctx, raw, addresses, balances)
	if err != nil {
		return raw, err
	}
	raw.Tokens = tokens

	pool := common.HexToAddress(raw.Address)
	call := func(method string, args ...interface{}) ([]interface{}, bool) {
		values, err := contracts.Call(ctx, e.caller, pool, poolABI, method, block, args...)
		if err != nil {
			e.logger.Debug("pool getter failed", zap.String("pool_id", raw.ID), zap.String("method", method), zap.Error(err))
			return nil, false
		}
		return values, true
	}

	if values, ok := call("getSwapFeePercentage"); ok {
		if fee, err := contracts.AsBigInt(values[0]); err == nil {
			raw.SwapFee = humanize(fee, 18)
		}
	}

	switch {
	case raw.PoolType == "Weighted":
		if values, ok := call("getNormalizedWeights"); ok {
			if weights, err := contracts.AsBigInts(values[0]); err == nil && len(weights) == len(raw.Tokens) {
				for i := range raw.Tokens {
					raw.Tokens[i].Weight = humanize(weights[i], 18)
				}
			}
		}
	case strings.HasSuffix(raw.PoolType, "Stable"):
		if values, ok := call("getAmplificationParameter"); ok && len(values) == 3 {
			value, errV := contracts.AsBigInt(values[0])
			precision, errP := contracts.AsBigInt(values[2])
			if errV == nil && errP == nil && precision.Sign() > 0 {
				raw.Amp = new(big.Int).Quo(value, precision).String()
			}
		}
		if raw.PoolType != "Stable" {
			for i := range raw.Tokens {
				if strings.EqualFold(raw.Tokens[i].Address, raw.Address) {
					continue
				}
				if values, ok := call("getTokenRate", common.HexToAddress(raw.Tokens[i].Address)); ok {
					if rate, err := contracts.AsBigInt(values[0]); err == nil && rate.Sign() > 0 {
						raw.Tokens[i].PriceRate = humanize(rate, 18)
					}
				}
			}
		}
		if raw.PoolType == "ComposableStable" {
			if values, ok := call("getActualSupply"); ok {
				if supply, err := contracts.AsBigInt(values[0]); err == nil {
					raw.TotalShares = humanize(supply, 18)
				}
			}
		}
	case strings.HasSuffix(raw.PoolType, "Linear"):
		if values, ok := call("getTargets"); ok && len(values) == 2 {
			lower, errL := contracts.AsBigInt(values[0])
			upper, errU := contracts.AsBigInt(values[1])
			if errL == nil && errU == nil {
				raw.LowerTarget = humanize(lower, 18)
				raw.UpperTarget = humanize(upper, 18)
			}
		}
		if values, ok := call("getWrappedTokenRate"); ok {
			if rate, err := contracts.AsBigInt(values[0]); err == nil {
				for i := range raw.Tokens {
					if raw.Tokens[i].Index == raw.WrappedIndex {
						raw.Tokens[i].PriceRate = humanize(rate, 18)
					}
				}
			}
		}
		if values, ok := call("getVirtualSupply"); ok {
			if supply, err := contracts.AsBigInt(values[0]); err == nil {
				raw.TotalShares = humanize(supply, 18)
			}
		}
	case raw.PoolType == "GyroE":
		if values, ok := call("getECLPParams"); ok && len(values) == 2 {
			applyECLPParams(&raw, values)
		}
	}
	return raw, nil
}

// mergeTokens rebuilds the token list in Vault order, keeping known metadata and fetching
// decimals for tokens the snapshot did not carry.
func (e *OnChainEnricher) mergeTokens(ctx context.Context, raw model.RawPool, addresses []common.Address, balances []*big.Int) ([]model.RawPoolToken, error) {
	known := make(map[common.Address]model.RawPoolToken, len(raw.Tokens))
	for _, t := range raw.Tokens {
		known[common.HexToAddress(t.Address)] = t
	}

	tokens := make([]model.RawPoolToken, len(addresses))
	for i, addr := range addresses {
		if token, ok := known[addr]; ok {
			token.Index = i
			token.Balance = humanize(balances[i], int32(token.Decimals))
			tokens[i] = token
			continue
		}
		meta, err := e.tokenMeta(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("pool %s: token %s: %w", raw.ID, addr.Hex(), err)
		}
		tokens[i] = meta.PoolToken(i, humanize(balances[i], int32(meta.Decimals)))
	}
	return tokens, nil
}

func (e *OnChainEnricher) tokenMeta(ctx context.Context, addr common.Address) (model.TokenMeta, error) {
	if meta, ok := e.tokenCache.Get(addr); ok {
		return meta, nil
	}
	meta, err := contracts.FetchTokenMeta(ctx, e.caller, addr, e.logger)
	if err != nil {
		return meta, err
	}
	e.tokenCache.Set(addr, meta)
	return meta, nil
}

type eclpParams struct {
	Alpha, Beta, C, S, Lambda *big.Int
}

type eclpVector struct {
	X, Y *big.Int
}

type eclpDerived struct {
	TauAlpha, TauBeta eclpVector
	U, V, W, Z, DSq   *big.Int
}

func applyECLPParams(raw *model.RawPool, values []interface{}) {
	params, ok := abi.ConvertType(values[0], new(eclpParams)).(*eclpParams)
	if !ok || params.Alpha == nil {
		return
	}
	derived, ok := abi.ConvertType(values[1], new(eclpDerived)).(*eclpDerived)
	if !ok || derived.U == nil {
		return
	}
	raw.Alpha = humanize(params.Alpha, 18)
	raw.Beta = humanize(params.Beta, 18)
	raw.C = humanize(params.C, 18)
	raw.S = humanize(params.S, 18)
	raw.Lambda = humanize(params.Lambda, 18)
	raw.TauAlphaX = humanize(derived.TauAlpha.X, 38)
	raw.TauAlphaY = humanize(derived.TauAlpha.Y, 38)
	raw.TauBetaX = humanize(derived.TauBeta.X, 38)
	raw.TauBetaY = humanize(derived.TauBeta.Y, 38)
	raw.U = humanize(derived.U, 38)
	raw.V = humanize(derived.V, 38)
	raw.W = humanize(derived.W, 38)
	raw.Z = humanize(derived.Z, 38)
	raw.DSq = humanize(derived.DSq, 38)
}

func poolID(id string) ([32]byte, error) {
	var out [32]byte
	hash := common.FromHex(id)
	if len(hash) != 32 {
		return out, fmt.Errorf("pool id %s is not a 32 byte v2 id", id)
	}
	copy(out[:], hash)
	return out, nil
}

func humanize(raw *big.Int, decimals int32) string {
	return decimal.NewFromBigInt(raw, -decimals).String()
}
