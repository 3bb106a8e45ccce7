package contracts

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// poolABIJSON is the union of the read-only getters exposed by the supported pool families.
// A pool only answers the subset matching its type.
const poolABIJSON = `[
  {"inputs": [], "name": "getSwapFeePercentage", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "getNormalizedWeights", "outputs": [{"type": "uint256[]"}], "stateMutability": "view", "type": "function"},
  {
    "inputs": [],
    "name": "getAmplificationParameter",
    "outputs": [
      {"name": "value", "type": "uint256"},
      {"name": "isUpdating", "type": "bool"},
      {"name": "precision", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {"inputs": [{"name": "token", "type": "address"}], "name": "getTokenRate", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "getActualSupply", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "getVirtualSupply", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "totalSupply", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "getWrappedTokenRate", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {
    "inputs": [],
    "name": "getTargets",
    "outputs": [
      {"name": "lowerTarget", "type": "uint256"},
      {"name": "upperTarget", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "getECLPParams",
    "outputs": [
      {
        "components": [
          {"name": "alpha", "type": "int256"},
          {"name": "beta", "type": "int256"},
          {"name": "c", "type": "int256"},
          {"name": "s", "type": "int256"},
          {"name": "lambda", "type": "int256"}
        ],
        "name": "params",
        "type": "tuple"
      },
      {
        "components": [
          {"components": [{"name": "x", "type": "int256"}, {"name": "y", "type": "int256"}], "name": "tauAlpha", "type": "tuple"},
          {"components": [{"name": "x", "type": "int256"}, {"name": "y", "type": "int256"}], "name": "tauBeta", "type": "tuple"},
          {"name": "u", "type": "int256"},
          {"name": "v", "type": "int256"},
          {"name": "w", "type": "int256"},
          {"name": "z", "type": "int256"},
          {"name": "dSq", "type": "int256"}
        ],
        "name": "d",
        "type": "tuple"
      }
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const erc20ABIStringJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"}
]`

const erc20ABIBytes32JSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

var (
	poolABI     abi.ABI
	poolABIErr  error
	poolABIOnce sync.Once

	erc20ABIString     abi.ABI
	erc20ABIStringOnce sync.Once
	erc20ABIStringErr  error

	erc20ABIBytes32     abi.ABI
	erc20ABIBytes32Once sync.Once
	erc20ABIBytes32Err  error
)

// PoolABI returns the parsed pool getter ABI.
func PoolABI() (abi.ABI, error) {
	poolABIOnce.Do(func() {
		poolABI, poolABIErr = abi.JSON(strings.NewReader(poolABIJSON))
	})
	return poolABI, poolABIErr
}

func erc20ABIStringInstance() (abi.ABI, error) {
	erc20ABIStringOnce.Do(func() {
		erc20ABIString, erc20ABIStringErr = abi.JSON(strings.NewReader(erc20ABIStringJSON))
	})
	return erc20ABIString, erc20ABIStringErr
}

func erc20ABIBytes32Instance() (abi.ABI, error) {
	erc20ABIBytes32Once.Do(func() {
		erc20ABIBytes32, erc20ABIBytes32Err = abi.JSON(strings.NewReader(erc20ABIBytes32JSON))
	})
	return erc20ABIBytes32, erc20ABIBytes32Err
}
