package pools

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"swapRouter/internal/fixedpoint"
	"swapRouter/internal/model"
)

// parseFixed converts a human decimal such as "0.003" into an integer with the given decimals,
// truncating extra precision.
func parseFixed(value string, decimals int32) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("empty numeric value")
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", value, err)
	}
	return d.Shift(decimals).BigInt(), nil
}

func parseFixedOr(value string, decimals int32, fallback *big.Int) (*big.Int, error) {
	if strings.TrimSpace(value) == "" {
		return new(big.Int).Set(fallback), nil
	}
	return parseFixed(value, decimals)
}

// newPoolBase validates the common fields of a raw pool.
func newPoolBase(chainID uint64, raw model.RawPool) (poolBase, error) {
	if !common.IsHexAddress(raw.Address) {
		return poolBase{}, fmt.Errorf("pool %s: invalid address %q", raw.ID, raw.Address)
	}
	swapFee, err := parseFixed(raw.SwapFee, 18)
	if err != nil {
		return poolBase{}, fmt.Errorf("pool %s: swap fee: %w", raw.ID, err)
	}
	if swapFee.Sign() < 0 || swapFee.Cmp(fixedpoint.One) >= 0 {
		return poolBase{}, fmt.Errorf("pool %s: swap fee %s out of range", raw.ID, raw.SwapFee)
	}

	tokens, err := parsePoolTokens(chainID, raw)
	if err != nil {
		return poolBase{}, err
	}

	version := raw.ProtocolVersion
	if version == 0 {
		version = 2
	}
	return poolBase{
		id:              raw.ID,
		address:         common.HexToAddress(raw.Address),
		poolType:        raw.PoolType,
		protocolVersion: version,
		swapFee:         swapFee,
		tokens:          tokens,
	}, nil
}

func parsePoolTokens(chainID uint64, raw model.RawPool) ([]PoolToken, error) {
	if len(raw.Tokens) < 2 {
		return nil, fmt.Errorf("pool %s: needs at least two tokens", raw.ID)
	}
	sorted := make([]model.RawPoolToken, len(raw.Tokens))
	copy(sorted, raw.Tokens)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	tokens := make([]PoolToken, 0, len(sorted))
	for _, rt := range sorted {
		token, err := model.NewToken(chainID, rt.Address, rt.Decimals, rt.Symbol)
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", raw.ID, err)
		}
		balance, err := parseFixed(rt.Balance, int32(rt.Decimals))
		if err != nil {
			return nil, fmt.Errorf("pool %s: token %s balance: %w", raw.ID, rt.Address, err)
		}
		if balance.Sign() < 0 {
			return nil, fmt.Errorf("pool %s: token %s has negative balance", raw.ID, rt.Address)
		}
		rate, err := parseFixedOr(rt.PriceRate, 18, fixedpoint.One)
		if err != nil {
			return nil, fmt.Errorf("pool %s: token %s price rate: %w", raw.ID, rt.Address, err)
		}
		if rate.Sign() <= 0 {
			return nil, fmt.Errorf("pool %s: token %s has non-positive rate", raw.ID, rt.Address)
		}
		weight, err := parseFixedOr(rt.Weight, 18, new(big.Int))
		if err != nil {
			return nil, fmt.Errorf("pool %s: token %s weight: %w", raw.ID, rt.Address, err)
		}
		tokens = append(tokens, PoolToken{
			Token:   token,
			Index:   rt.Index,
			Balance: balance,
			Rate:    rate,
			Weight:  weight,
		})
	}
	return tokens, nil
}
