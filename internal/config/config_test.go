package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"

	"swapRouter/internal/contracts"
	"swapRouter/internal/graph"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ChainID != contracts.Mainnet || cfg.ProtocolVersion != 2 || cfg.BlockPtr() != nil {
		t.Fatalf("config = %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Traversal, graph.DefaultTraversalConfig()) {
		t.Fatalf("traversal = %+v", cfg.Traversal)
	}
	if cfg.Addresses != contracts.AddressesFor(contracts.Mainnet) {
		t.Fatalf("addresses = %+v", cfg.Addresses)
	}
}

func TestLoadFlagsAndEnv(t *testing.T) {
	t.Setenv("SOR_MAX_DEPTH", "4")
	t.Setenv("SOR_BLOCK", "19000000")

	router := "0x2222222222222222222222222222222222222222"
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringSlice("pool-ids", nil, "")
	flags.String("router", "", "")
	flags.Int("max-depth", 6, "")
	if err := flags.Parse([]string{"--pool-ids", "a, b,,c", "--router", router}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Traversal.MaxDepth != 4 {
		t.Fatalf("max depth = %d, want env value", cfg.Traversal.MaxDepth)
	}
	if got := cfg.BlockPtr(); got == nil || *got != 19_000_000 {
		t.Fatalf("block = %v", got)
	}
	if !reflect.DeepEqual(cfg.Traversal.PoolIDsToInclude, []string{"a", "b", "c"}) {
		t.Fatalf("pool ids = %v", cfg.Traversal.PoolIDsToInclude)
	}
	if cfg.Addresses.Router != common.HexToAddress(router) {
		t.Fatalf("router = %s", cfg.Addresses.Router.Hex())
	}
	if cfg.Addresses.VaultV2 != contracts.AddressesFor(contracts.Mainnet).VaultV2 {
		t.Fatalf("vault override leaked: %s", cfg.Addresses.VaultV2.Hex())
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sor.yaml")
	body := "chain-id: 42161\nprotocol-version: 3\npool-ids:\n  - p1\n  - p2\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ChainID != contracts.Arbitrum || cfg.ProtocolVersion != 3 {
		t.Fatalf("config = %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Traversal.PoolIDsToInclude, []string{"p1", "p2"}) {
		t.Fatalf("pool ids = %v", cfg.Traversal.PoolIDsToInclude)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("SOR_PROTOCOL_VERSION", "4")
	if _, err := Load("", nil); err == nil {
		t.Fatalf("expected error for protocol version 4")
	}

	t.Setenv("SOR_PROTOCOL_VERSION", "2")
	t.Setenv("SOR_VAULT_V2", "not-an-address")
	if _, err := Load("", nil); err == nil {
		t.Fatalf("expected error for invalid vault address")
	}
}

func TestCommandConfigs(t *testing.T) {
	if _, err := LoadSnapshot("", nil); err == nil {
		t.Fatalf("snapshot without input must fail")
	}
	if _, err := LoadQuote("", nil); err == nil {
		t.Fatalf("quote without tokens must fail")
	}

	t.Setenv("SOR_TOKEN_IN", "0x6B175474E89094C44Da98b954EedeAC495271d0F")
	t.Setenv("SOR_TOKEN_OUT", "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	t.Setenv("SOR_TOKEN_OUT_DECIMALS", "6")
	quote, err := LoadQuote("", nil)
	if err != nil {
		t.Fatalf("load quote: %v", err)
	}
	if quote.TokenInDecimals != 18 || quote.TokenOutDecimals != 6 || quote.SwapKind != "givenIn" || quote.Slippage != "0.5%" {
		t.Fatalf("quote = %+v", quote)
	}

	serve, err := LoadServe("", nil)
	if err != nil {
		t.Fatalf("load serve: %v", err)
	}
	if serve.Address != "localhost:8080" || serve.RefreshInterval <= 0 || serve.MaxConcurrentRequests != 200 {
		t.Fatalf("serve = %+v", serve)
	}
}
