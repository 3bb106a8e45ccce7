package model

import "github.com/ethereum/go-ethereum/common"

// TokenMeta is ERC20 metadata read from chain for tokens a pool export did not describe.
type TokenMeta struct {
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
}

// PoolToken places the token at index in a pool with the given human readable balance.
func (m TokenMeta) PoolToken(index int, balance string) RawPoolToken {
	return RawPoolToken{
		Address:  m.Address.Hex(),
		Index:    index,
		Decimals: m.Decimals,
		Symbol:   m.Symbol,
		Balance:  balance,
	}
}
