// Package contracts holds the Balancer contract ABIs, deployment addresses and the
// read helpers used against them.
package contracts

import (
	"github.com/ethereum/go-ethereum/common"
)

// Chain IDs with known deployments.
const (
	Mainnet  uint64 = 1
	Optimism uint64 = 10
	Gnosis   uint64 = 100
	Polygon  uint64 = 137
	Base     uint64 = 8453
	Arbitrum uint64 = 42161
)

// Addresses are the settlement contracts of one chain.
type Addresses struct {
	VaultV2       common.Address
	VaultV3       common.Address
	Router        common.Address
	BatchRouter   common.Address
	WrappedNative common.Address
}

var (
	vaultV2 = common.HexToAddress("0xBA12222222228d8Ba445958a75a0704d566BF2C8")
	vaultV3 = common.HexToAddress("0xbA1333333333a1BA1108E8412f11850A5C319bA9")

	deployments = map[uint64]Addresses{
		Mainnet: {
			VaultV2:       vaultV2,
			VaultV3:       vaultV3,
			Router:        common.HexToAddress("0xAE563E3f8219521950555F5962419C8919758Ea2"),
			BatchRouter:   common.HexToAddress("0x136f1EFcC3f8f88516B9E94110D56FDBfB1778d1"),
			WrappedNative: common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
		},
		Optimism: {VaultV2: vaultV2, WrappedNative: common.HexToAddress("0x4200000000000000000000000000000000000006")},
		Gnosis:   {VaultV2: vaultV2, VaultV3: vaultV3, WrappedNative: common.HexToAddress("0xe91D153E0b41518A2Ce8Dd3D7944Fa863463a97d")},
		Polygon:  {VaultV2: vaultV2, WrappedNative: common.HexToAddress("0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270")},
		Base:     {VaultV2: vaultV2, WrappedNative: common.HexToAddress("0x4200000000000000000000000000000000000006")},
		Arbitrum: {VaultV2: vaultV2, WrappedNative: common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1")},
	}
)

// AddressesFor returns the known deployment for chainID. Unknown chains still get the v2
// Vault, which is deployed at the same address everywhere.
func AddressesFor(chainID uint64) Addresses {
	if addrs, ok := deployments[chainID]; ok {
		return addrs
	}
	return Addresses{VaultV2: vaultV2, VaultV3: vaultV3}
}

// Override replaces every non-zero field of other into a copy of a.
func (a Addresses) Override(other Addresses) Addresses {
	pick := func(dst *common.Address, src common.Address) {
		if src != (common.Address{}) {
			*dst = src
		}
	}
	pick(&a.VaultV2, other.VaultV2)
	pick(&a.VaultV3, other.VaultV3)
	pick(&a.Router, other.Router)
	pick(&a.BatchRouter, other.BatchRouter)
	pick(&a.WrappedNative, other.WrappedNative)
	return a
}
