package swap

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"swapRouter/internal/model"
	"swapRouter/internal/router"
)

var ErrMissingContract = errors.New("settlement contract address not configured")

// Go mirrors of the Vault and BatchRouter tuples. Field names follow the ABI component
// names so go-ethereum can pack them.
type singleSwap struct {
	PoolId   [32]byte
	Kind     uint8
	AssetIn  common.Address
	AssetOut common.Address
	Amount   *big.Int
	UserData []byte
}

type fundManagement struct {
	Sender              common.Address
	FromInternalBalance bool
	Recipient           common.Address
	ToInternalBalance   bool
}

type batchSwapStep struct {
	PoolId        [32]byte
	AssetInIndex  *big.Int
	AssetOutIndex *big.Int
	Amount        *big.Int
	UserData      []byte
}

type swapPathStep struct {
	Pool     common.Address
	TokenOut common.Address
	IsBuffer bool
}

type swapPathExactAmountIn struct {
	TokenIn       common.Address
	Steps         []swapPathStep
	ExactAmountIn *big.Int
	MinAmountOut  *big.Int
}

type swapPathExactAmountOut struct {
	TokenIn        common.Address
	Steps          []swapPathStep
	MaxAmountIn    *big.Int
	ExactAmountOut *big.Int
}

// poolIDBytes decodes a v2 pool id, which is the pool address followed by a specialization
// and a nonce.
func poolIDBytes(id string) ([32]byte, error) {
	var out [32]byte
	raw, err := hexutil.Decode(id)
	if err != nil {
		return out, fmt.Errorf("pool id %s: %w", id, err)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("pool id %s: want 32 bytes, got %d", id, len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

func vaultKind(kind model.SwapKind) uint8 {
	if kind == model.GivenOut {
		return 1
	}
	return 0
}

// v2Batch is the Vault batchSwap layout of the plan.
type v2Batch struct {
	steps  []batchSwapStep
	assets []common.Address
	index  map[common.Address]int
}

// batchSteps lists every hop of every path. GivenIn paths are walked forwards with the
// amount on the first hop; GivenOut paths backwards with the amount on the last hop. A zero
// amount tells the Vault to chain the previous step's result.
func (s *Swap) batchSteps() (v2Batch, error) {
	b := v2Batch{index: make(map[common.Address]int)}
	assetIndex := func(addr common.Address) *big.Int {
		idx, ok := b.index[addr]
		if !ok {
			idx = len(b.assets)
			b.index[addr] = idx
			b.assets = append(b.assets, addr)
		}
		return big.NewInt(int64(idx))
	}

	for _, p := range s.paths {
		hops := p.Hops()
		order := make([]int, hops)
		for i := range order {
			if s.kind == model.GivenOut {
				order[i] = hops - 1 - i
			} else {
				order[i] = i
			}
		}
		for n, hop := range order {
			id, err := poolIDBytes(p.Pools[hop].ID())
			if err != nil {
				return v2Batch{}, err
			}
			amount := new(big.Int)
			if n == 0 {
				amount.Set(p.GivenAmount().Amount)
			}
			b.steps = append(b.steps, batchSwapStep{
				PoolId:        id,
				AssetInIndex:  assetIndex(p.Tokens[hop].Address),
				AssetOutIndex: assetIndex(p.Tokens[hop+1].Address),
				Amount:        amount,
				UserData:      []byte{},
			})
		}
	}
	return b, nil
}

// ethAssets swaps the wrapped native token for the Vault's ETH sentinel, the zero address.
func ethAssets(assets []common.Address, wrapped common.Address) []common.Address {
	out := make([]common.Address, len(assets))
	for i, a := range assets {
		if wrapped != (common.Address{}) && a == wrapped {
			a = common.Address{}
		}
		out[i] = a
	}
	return out
}

// v3Steps lists a path's hops for the BatchRouter.
func v3Steps(p router.PathWithAmount) []swapPathStep {
	steps := make([]swapPathStep, p.Hops())
	for i, pool := range p.Pools {
		steps[i] = swapPathStep{Pool: pool.Address(), TokenOut: p.Tokens[i+1].Address}
	}
	return steps
}
