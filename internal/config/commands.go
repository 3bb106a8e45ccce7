package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// SnapshotConfig holds configuration for the snapshot command.
type SnapshotConfig struct {
	Config
	Input string
}

// LoadSnapshot merges config file, environment variables, and flags into SnapshotConfig.
func LoadSnapshot(cfgFile string, flags *pflag.FlagSet) (SnapshotConfig, error) {
	v, err := newViper(cfgFile, flags, nil)
	if err != nil {
		return SnapshotConfig{}, err
	}
	base, err := fromViper(v)
	if err != nil {
		return SnapshotConfig{}, err
	}
	cfg := SnapshotConfig{Config: base, Input: v.GetString("in")}
	if cfg.Input == "" {
		return SnapshotConfig{}, fmt.Errorf("input path is required")
	}
	return cfg, nil
}

// QuoteConfig holds configuration for the paths and quote commands.
type QuoteConfig struct {
	Config
	TokenIn          string
	TokenInDecimals  uint8
	TokenOut         string
	TokenOutDecimals uint8
	SwapKind         string
	Amount           string
	Slippage         string
	Sender           string
	Recipient        string
	WethIsEth        bool
	Query            bool
}

// LoadQuote merges config file, environment variables, and flags into QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"token-in-decimals":  18,
		"token-out-decimals": 18,
		"kind":               "givenIn",
		"slippage":           "0.5%",
	})
	if err != nil {
		return QuoteConfig{}, err
	}
	base, err := fromViper(v)
	if err != nil {
		return QuoteConfig{}, err
	}
	cfg := QuoteConfig{
		Config:           base,
		TokenIn:          v.GetString("token-in"),
		TokenInDecimals:  uint8(v.GetUint("token-in-decimals")),
		TokenOut:         v.GetString("token-out"),
		TokenOutDecimals: uint8(v.GetUint("token-out-decimals")),
		SwapKind:         v.GetString("kind"),
		Amount:           v.GetString("amount"),
		Slippage:         v.GetString("slippage"),
		Sender:           v.GetString("sender"),
		Recipient:        v.GetString("recipient"),
		WethIsEth:        v.GetBool("weth-is-eth"),
		Query:            v.GetBool("query"),
	}
	if cfg.TokenIn == "" || cfg.TokenOut == "" {
		return QuoteConfig{}, fmt.Errorf("token-in and token-out are required")
	}
	return cfg, nil
}

// ServeConfig holds configuration for the serve command.
type ServeConfig struct {
	Config
	Address               string
	RefreshInterval       time.Duration
	RequestTimeout        time.Duration
	MaxConcurrentRequests int
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"listen":                  "localhost:8080",
		"refresh-interval":        12 * time.Second,
		"request-timeout":         30 * time.Second,
		"max-concurrent-requests": 200,
	})
	if err != nil {
		return ServeConfig{}, err
	}
	base, err := fromViper(v)
	if err != nil {
		return ServeConfig{}, err
	}
	return ServeConfig{
		Config:                base,
		Address:               v.GetString("listen"),
		RefreshInterval:       v.GetDuration("refresh-interval"),
		RequestTimeout:        v.GetDuration("request-timeout"),
		MaxConcurrentRequests: v.GetInt("max-concurrent-requests"),
	}, nil
}
