package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"swapRouter/internal/contracts"
	"swapRouter/internal/graph"
)

// Config holds the settings every command shares, loaded from flags, env, or config file.
type Config struct {
	RPCURL          string
	ChainID         uint64
	ProtocolVersion int
	Block           uint64
	Store           string
	PGDSN           string
	Enrich          bool
	BatchSize       int
	MaxConcurrency  int
	MaxRetries      int
	RetryBackoff    time.Duration
	Traversal       graph.TraversalConfig
	Addresses       contracts.Addresses
	LogLevel        string
}

// BlockPtr is nil when Block is zero, meaning latest.
func (c Config) BlockPtr() *uint64 {
	if c.Block == 0 {
		return nil
	}
	b := c.Block
	return &b
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, nil)
	if err != nil {
		return Config{}, err
	}
	return fromViper(v)
}

// newViper applies the shared defaults, then extra, then flags and the config file.
func newViper(cfgFile string, flags *pflag.FlagSet, extra map[string]any) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("SOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	d := graph.DefaultTraversalConfig()
	v.SetDefault("chain-id", uint64(contracts.Mainnet))
	v.SetDefault("protocol-version", 2)
	v.SetDefault("store", "./data/pools.jsonl")
	v.SetDefault("enrich", true)
	v.SetDefault("batch-size", 50)
	v.SetDefault("max-concurrency", 4)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("max-depth", d.MaxDepth)
	v.SetDefault("max-non-boosted-path-depth", d.MaxNonBoostedPathDepth)
	v.SetDefault("max-non-boosted-hop-tokens-in-boosted-path", d.MaxNonBoostedHopTokensInBoostedPath)
	v.SetDefault("approx-paths-to-return", d.ApproxPathsToReturn)
	v.SetDefault("max-pools-per-hop", d.MaxPoolsPerHop)
	v.SetDefault("max-candidate-paths", d.MaxCandidatePaths)
	v.SetDefault("log-level", "info")
	for key, value := range extra {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		RPCURL:          v.GetString("rpc"),
		ChainID:         v.GetUint64("chain-id"),
		ProtocolVersion: v.GetInt("protocol-version"),
		Block:           v.GetUint64("block"),
		Store:           v.GetString("store"),
		PGDSN:           v.GetString("pg-dsn"),
		Enrich:          v.GetBool("enrich"),
		BatchSize:       v.GetInt("batch-size"),
		MaxConcurrency:  v.GetInt("max-concurrency"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		Traversal: graph.TraversalConfig{
			MaxDepth:                            v.GetInt("max-depth"),
			MaxNonBoostedPathDepth:              v.GetInt("max-non-boosted-path-depth"),
			MaxNonBoostedHopTokensInBoostedPath: v.GetInt("max-non-boosted-hop-tokens-in-boosted-path"),
			ApproxPathsToReturn:                 v.GetInt("approx-paths-to-return"),
			MaxPoolsPerHop:                      v.GetInt("max-pools-per-hop"),
			MaxCandidatePaths:                   v.GetInt("max-candidate-paths"),
			PoolIDsToInclude:                    getStringSlice(v, "pool-ids"),
		},
		LogLevel: v.GetString("log-level"),
	}
	if cfg.ProtocolVersion != 2 && cfg.ProtocolVersion != 3 {
		return Config{}, fmt.Errorf("protocol version must be 2 or 3, got %d", cfg.ProtocolVersion)
	}

	var err error
	overrides := contracts.Addresses{}
	if overrides.VaultV2, err = getAddress(v, "vault-v2"); err != nil {
		return Config{}, err
	}
	if overrides.VaultV3, err = getAddress(v, "vault-v3"); err != nil {
		return Config{}, err
	}
	if overrides.Router, err = getAddress(v, "router"); err != nil {
		return Config{}, err
	}
	if overrides.BatchRouter, err = getAddress(v, "batch-router"); err != nil {
		return Config{}, err
	}
	if overrides.WrappedNative, err = getAddress(v, "wrapped-native"); err != nil {
		return Config{}, err
	}
	cfg.Addresses = contracts.AddressesFor(cfg.ChainID).Override(overrides)
	return cfg, nil
}

func getAddress(v *viper.Viper, key string) (common.Address, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("%s: invalid address %q", key, raw)
	}
	return common.HexToAddress(raw), nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
