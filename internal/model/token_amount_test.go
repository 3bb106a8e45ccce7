package model

import (
	"math/big"
	"testing"
)

func testToken(t *testing.T, address string, decimals uint8) Token {
	t.Helper()
	token, err := NewToken(1, address, decimals, "")
	if err != nil {
		t.Fatalf("new token: %v", err)
	}
	return token
}

func TestFromHumanAmountScales(t *testing.T) {
	usdc := testToken(t, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", 6)

	amount, err := FromHumanAmount(usdc, "12.5")
	if err != nil {
		t.Fatalf("from human: %v", err)
	}
	if amount.Amount.Cmp(big.NewInt(12_500_000)) != 0 {
		t.Fatalf("raw mismatch: %s", amount.Amount)
	}
	want, _ := new(big.Int).SetString("12500000000000000000", 10)
	if amount.Scale18.Cmp(want) != 0 {
		t.Fatalf("scale18 mismatch: %s", amount.Scale18)
	}
	if amount.ToHuman() != "12.5" {
		t.Fatalf("human mismatch: %s", amount.ToHuman())
	}
}

func TestFromHumanAmountRejectsExtraPrecision(t *testing.T) {
	usdc := testToken(t, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", 6)
	if _, err := FromHumanAmount(usdc, "0.0000001"); err == nil {
		t.Fatalf("expected error for amount below token precision")
	}
	if _, err := FromHumanAmount(usdc, "-1"); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}

func TestFromScale18AmountRounding(t *testing.T) {
	usdc := testToken(t, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", 6)
	scale18, _ := new(big.Int).SetString("1000000000001", 10)

	down := FromScale18Amount(usdc, scale18, false)
	up := FromScale18Amount(usdc, scale18, true)
	if down.Amount.Cmp(big.NewInt(1)) != 0 || up.Amount.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("rounding mismatch: down %s up %s", down.Amount, up.Amount)
	}
}

func TestTokenAmountArithmetic(t *testing.T) {
	weth := testToken(t, "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", 18)
	dai := testToken(t, "0x6b175474e89094c44da98b954eedeac495271d0f", 18)

	a := NewTokenAmount(weth, big.NewInt(10))
	b := NewTokenAmount(weth, big.NewInt(4))
	sum, err := a.Add(b)
	if err != nil || sum.Amount.Cmp(big.NewInt(14)) != 0 {
		t.Fatalf("add: %v %v", sum.Amount, err)
	}
	if _, err := b.Sub(a); err == nil {
		t.Fatalf("expected underflow")
	}
	if _, err := a.Add(NewTokenAmount(dai, big.NewInt(1))); err == nil {
		t.Fatalf("expected token mismatch")
	}
}

func TestNewTokenValidation(t *testing.T) {
	if _, err := NewToken(1, "not-an-address", 18, ""); err == nil {
		t.Fatalf("expected invalid address error")
	}
	if _, err := NewToken(1, "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", 19, ""); err == nil {
		t.Fatalf("expected decimals error")
	}
}
