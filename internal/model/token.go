package model

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Token identifies an ERC20 on a chain.
type Token struct {
	ChainID  uint64         `json:"chain_id"`
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
	Symbol   string         `json:"symbol,omitempty"`
}

// NewToken validates decimals and builds a Token.
func NewToken(chainID uint64, address string, decimals uint8, symbol string) (Token, error) {
	if !common.IsHexAddress(address) {
		return Token{}, fmt.Errorf("invalid token address: %s", address)
	}
	if decimals > 18 {
		return Token{}, fmt.Errorf("token %s: decimals %d exceed 18", address, decimals)
	}
	return Token{
		ChainID:  chainID,
		Address:  common.HexToAddress(address),
		Decimals: decimals,
		Symbol:   symbol,
	}, nil
}

// IsSameAddress reports whether both tokens share an address.
func (t Token) IsSameAddress(other common.Address) bool {
	return t.Address == other
}

// IsUnderlyingEqual reports whether both tokens are the same asset on the same chain.
func (t Token) IsUnderlyingEqual(other Token) bool {
	return t.ChainID == other.ChainID && t.Address == other.Address
}

// Scalar is the factor converting raw amounts into 18 decimals.
func (t Token) Scalar() *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(18-t.Decimals)), nil)
}

// Key is the lowercase address, used for map lookups and deterministic ordering.
func (t Token) Key() string {
	return strings.ToLower(t.Address.Hex())
}

func (t Token) String() string {
	if t.Symbol != "" {
		return t.Symbol
	}
	return t.Address.Hex()
}
