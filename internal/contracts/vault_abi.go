package contracts

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const vaultV2ABIJSON = `[
  {
    "inputs": [
      {
        "components": [
          {"internalType": "bytes32", "name": "poolId", "type": "bytes32"},
          {"internalType": "uint8", "name": "kind", "type": "uint8"},
          {"internalType": "address", "name": "assetIn", "type": "address"},
          {"internalType": "address", "name": "assetOut", "type": "address"},
          {"internalType": "uint256", "name": "amount", "type": "uint256"},
          {"internalType": "bytes", "name": "userData", "type": "bytes"}
        ],
        "internalType": "struct IVault.SingleSwap", "name": "singleSwap", "type": "tuple"
      },
      {
        "components": [
          {"internalType": "address", "name": "sender", "type": "address"},
          {"internalType": "bool", "name": "fromInternalBalance", "type": "bool"},
          {"internalType": "address payable", "name": "recipient", "type": "address"},
          {"internalType": "bool", "name": "toInternalBalance", "type": "bool"}
        ],
        "internalType": "struct IVault.FundManagement", "name": "funds", "type": "tuple"
      },
      {"internalType": "uint256", "name": "limit", "type": "uint256"},
      {"internalType": "uint256", "name": "deadline", "type": "uint256"}
    ],
    "name": "swap",
    "outputs": [{"internalType": "uint256", "name": "amountCalculated", "type": "uint256"}],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint8", "name": "kind", "type": "uint8"},
      {
        "components": [
          {"internalType": "bytes32", "name": "poolId", "type": "bytes32"},
          {"internalType": "uint256", "name": "assetInIndex", "type": "uint256"},
          {"internalType": "uint256", "name": "assetOutIndex", "type": "uint256"},
          {"internalType": "uint256", "name": "amount", "type": "uint256"},
          {"internalType": "bytes", "name": "userData", "type": "bytes"}
        ],
        "internalType": "struct IVault.BatchSwapStep[]", "name": "swaps", "type": "tuple[]"
      },
      {"internalType": "address[]", "name": "assets", "type": "address[]"},
      {
        "components": [
          {"internalType": "address", "name": "sender", "type": "address"},
          {"internalType": "bool", "name": "fromInternalBalance", "type": "bool"},
          {"internalType": "address payable", "name": "recipient", "type": "address"},
          {"internalType": "bool", "name": "toInternalBalance", "type": "bool"}
        ],
        "internalType": "struct IVault.FundManagement", "name": "funds", "type": "tuple"
      },
      {"internalType": "int256[]", "name": "limits", "type": "int256[]"},
      {"internalType": "uint256", "name": "deadline", "type": "uint256"}
    ],
    "name": "batchSwap",
    "outputs": [{"internalType": "int256[]", "name": "assetDeltas", "type": "int256[]"}],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "uint8", "name": "kind", "type": "uint8"},
      {
        "components": [
          {"internalType": "bytes32", "name": "poolId", "type": "bytes32"},
          {"internalType": "uint256", "name": "assetInIndex", "type": "uint256"},
          {"internalType": "uint256", "name": "assetOutIndex", "type": "uint256"},
          {"internalType": "uint256", "name": "amount", "type": "uint256"},
          {"internalType": "bytes", "name": "userData", "type": "bytes"}
        ],
        "internalType": "struct IVault.BatchSwapStep[]", "name": "swaps", "type": "tuple[]"
      },
      {"internalType": "address[]", "name": "assets", "type": "address[]"},
      {
        "components": [
          {"internalType": "address", "name": "sender", "type": "address"},
          {"internalType": "bool", "name": "fromInternalBalance", "type": "bool"},
          {"internalType": "address payable", "name": "recipient", "type": "address"},
          {"internalType": "bool", "name": "toInternalBalance", "type": "bool"}
        ],
        "internalType": "struct IVault.FundManagement", "name": "funds", "type": "tuple"
      }
    ],
    "name": "queryBatchSwap",
    "outputs": [{"internalType": "int256[]", "name": "", "type": "int256[]"}],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "bytes32", "name": "poolId", "type": "bytes32"}],
    "name": "getPoolTokens",
    "outputs": [
      {"internalType": "address[]", "name": "tokens", "type": "address[]"},
      {"internalType": "uint256[]", "name": "balances", "type": "uint256[]"},
      {"internalType": "uint256", "name": "lastChangeBlock", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const routerV3ABIJSON = `[
  {
    "inputs": [
      {"internalType": "address", "name": "pool", "type": "address"},
      {"internalType": "address", "name": "tokenIn", "type": "address"},
      {"internalType": "address", "name": "tokenOut", "type": "address"},
      {"internalType": "uint256", "name": "exactAmountIn", "type": "uint256"},
      {"internalType": "uint256", "name": "minAmountOut", "type": "uint256"},
      {"internalType": "uint256", "name": "deadline", "type": "uint256"},
      {"internalType": "bool", "name": "wethIsEth", "type": "bool"},
      {"internalType": "bytes", "name": "userData", "type": "bytes"}
    ],
    "name": "swapSingleTokenExactIn",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "pool", "type": "address"},
      {"internalType": "address", "name": "tokenIn", "type": "address"},
      {"internalType": "address", "name": "tokenOut", "type": "address"},
      {"internalType": "uint256", "name": "exactAmountOut", "type": "uint256"},
      {"internalType": "uint256", "name": "maxAmountIn", "type": "uint256"},
      {"internalType": "uint256", "name": "deadline", "type": "uint256"},
      {"internalType": "bool", "name": "wethIsEth", "type": "bool"},
      {"internalType": "bytes", "name": "userData", "type": "bytes"}
    ],
    "name": "swapSingleTokenExactOut",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "pool", "type": "address"},
      {"internalType": "address", "name": "tokenIn", "type": "address"},
      {"internalType": "address", "name": "tokenOut", "type": "address"},
      {"internalType": "uint256", "name": "exactAmountIn", "type": "uint256"},
      {"internalType": "address", "name": "sender", "type": "address"},
      {"internalType": "bytes", "name": "userData", "type": "bytes"}
    ],
    "name": "querySwapSingleTokenExactIn",
    "outputs": [{"internalType": "uint256", "name": "amountCalculated", "type": "uint256"}],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {"internalType": "address", "name": "pool", "type": "address"},
      {"internalType": "address", "name": "tokenIn", "type": "address"},
      {"internalType": "address", "name": "tokenOut", "type": "address"},
      {"internalType": "uint256", "name": "exactAmountOut", "type": "uint256"},
      {"internalType": "address", "name": "sender", "type": "address"},
      {"internalType": "bytes", "name": "userData", "type": "bytes"}
    ],
    "name": "querySwapSingleTokenExactOut",
    "outputs": [{"internalType": "uint256", "name": "amountCalculated", "type": "uint256"}],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

const batchRouterV3ABIJSON = `[
  {
    "inputs": [
      {
        "components": [
          {"internalType": "contract IERC20", "name": "tokenIn", "type": "address"},
          {
            "components": [
              {"internalType": "address", "name": "pool", "type": "address"},
              {"internalType": "contract IERC20", "name": "tokenOut", "type": "address"},
              {"internalType": "bool", "name": "isBuffer", "type": "bool"}
            ],
            "internalType": "struct IBatchRouter.SwapPathStep[]", "name": "steps", "type": "tuple[]"
          },
          {"internalType": "uint256", "name": "exactAmountIn", "type": "uint256"},
          {"internalType": "uint256", "name": "minAmountOut", "type": "uint256"}
        ],
        "internalType": "struct IBatchRouter.SwapPathExactAmountIn[]", "name": "paths", "type": "tuple[]"
      },
      {"internalType": "uint256", "name": "deadline", "type": "uint256"},
      {"internalType": "bool", "name": "wethIsEth", "type": "bool"},
      {"internalType": "bytes", "name": "userData", "type": "bytes"}
    ],
    "name": "swapExactIn",
    "outputs": [
      {"internalType": "uint256[]", "name": "pathAmountsOut", "type": "uint256[]"},
      {"internalType": "address[]", "name": "tokensOut", "type": "address[]"},
      {"internalType": "uint256[]", "name": "amountsOut", "type": "uint256[]"}
    ],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [
      {
        "components": [
          {"internalType": "contract IERC20", "name": "tokenIn", "type": "address"},
          {
            "components": [
              {"internalType": "address", "name": "pool", "type": "address"},
              {"internalType": "contract IERC20", "name": "tokenOut", "type": "address"},
              {"internalType": "bool", "name": "isBuffer", "type": "bool"}
            ],
            "internalType": "struct IBatchRouter.SwapPathStep[]", "name": "steps", "type": "tuple[]"
          },
          {"internalType": "uint256", "name": "maxAmountIn", "type": "uint256"},
          {"internalType": "uint256", "name": "exactAmountOut", "type": "uint256"}
        ],
        "internalType": "struct IBatchRouter.SwapPathExactAmountOut[]", "name": "paths", "type": "tuple[]"
      },
      {"internalType": "uint256", "name": "deadline", "type": "uint256"},
      {"internalType": "bool", "name": "wethIsEth", "type": "bool"},
      {"internalType": "bytes", "name": "userData", "type": "bytes"}
    ],
    "name": "swapExactOut",
    "outputs": [
      {"internalType": "uint256[]", "name": "pathAmountsIn", "type": "uint256[]"},
      {"internalType": "address[]", "name": "tokensIn", "type": "address[]"},
      {"internalType": "uint256[]", "name": "amountsIn", "type": "uint256[]"}
    ],
    "stateMutability": "payable",
    "type": "function"
  },
  {
    "inputs": [
      {
        "components": [
          {"internalType": "contract IERC20", "name": "tokenIn", "type": "address"},
          {
            "components": [
              {"internalType": "address", "name": "pool", "type": "address"},
              {"internalType": "contract IERC20", "name": "tokenOut", "type": "address"},
              {"internalType": "bool", "name": "isBuffer", "type": "bool"}
            ],
            "internalType": "struct IBatchRouter.SwapPathStep[]", "name": "steps", "type": "tuple[]"
          },
          {"internalType": "uint256", "name": "exactAmountIn", "type": "uint256"},
          {"internalType": "uint256", "name": "minAmountOut", "type": "uint256"}
        ],
        "internalType": "struct IBatchRouter.SwapPathExactAmountIn[]", "name": "paths", "type": "tuple[]"
      },
      {"internalType": "address", "name": "sender", "type": "address"},
      {"internalType": "bytes", "name": "userData", "type": "bytes"}
    ],
    "name": "querySwapExactIn",
    "outputs": [
      {"internalType": "uint256[]", "name": "pathAmountsOut", "type": "uint256[]"},
      {"internalType": "address[]", "name": "tokensOut", "type": "address[]"},
      {"internalType": "uint256[]", "name": "amountsOut", "type": "uint256[]"}
    ],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [
      {
        "components": [
          {"internalType": "contract IERC20", "name": "tokenIn", "type": "address"},
          {
            "components": [
              {"internalType": "address", "name": "pool", "type": "address"},
              {"internalType": "contract IERC20", "name": "tokenOut", "type": "address"},
              {"internalType": "bool", "name": "isBuffer", "type": "bool"}
            ],
            "internalType": "struct IBatchRouter.SwapPathStep[]", "name": "steps", "type": "tuple[]"
          },
          {"internalType": "uint256", "name": "maxAmountIn", "type": "uint256"},
          {"internalType": "uint256", "name": "exactAmountOut", "type": "uint256"}
        ],
        "internalType": "struct IBatchRouter.SwapPathExactAmountOut[]", "name": "paths", "type": "tuple[]"
      },
      {"internalType": "address", "name": "sender", "type": "address"},
      {"internalType": "bytes", "name": "userData", "type": "bytes"}
    ],
    "name": "querySwapExactOut",
    "outputs": [
      {"internalType": "uint256[]", "name": "pathAmountsIn", "type": "uint256[]"},
      {"internalType": "address[]", "name": "tokensIn", "type": "address[]"},
      {"internalType": "uint256[]", "name": "amountsIn", "type": "uint256[]"}
    ],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

var (
	vaultV2ABI     abi.ABI
	vaultV2ABIErr  error
	vaultV2ABIOnce sync.Once

	routerV3ABI     abi.ABI
	routerV3ABIErr  error
	routerV3ABIOnce sync.Once

	batchRouterV3ABI     abi.ABI
	batchRouterV3ABIErr  error
	batchRouterV3ABIOnce sync.Once
)

// VaultV2ABI returns the parsed Balancer v2 Vault ABI subset.
func VaultV2ABI() (abi.ABI, error) {
	vaultV2ABIOnce.Do(func() {
		vaultV2ABI, vaultV2ABIErr = abi.JSON(strings.NewReader(vaultV2ABIJSON))
	})
	return vaultV2ABI, vaultV2ABIErr
}

// RouterV3ABI returns the parsed Balancer v3 Router ABI subset.
func RouterV3ABI() (abi.ABI, error) {
	routerV3ABIOnce.Do(func() {
		routerV3ABI, routerV3ABIErr = abi.JSON(strings.NewReader(routerV3ABIJSON))
	})
	return routerV3ABI, routerV3ABIErr
}

// BatchRouterV3ABI returns the parsed Balancer v3 BatchRouter ABI subset.
func BatchRouterV3ABI() (abi.ABI, error) {
	batchRouterV3ABIOnce.Do(func() {
		batchRouterV3ABI, batchRouterV3ABIErr = abi.JSON(strings.NewReader(batchRouterV3ABIJSON))
	})
	return batchRouterV3ABI, batchRouterV3ABIErr
}
