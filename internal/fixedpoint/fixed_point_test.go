package fixedpoint

import (
	"errors"
	"math/big"
	"testing"

	"pgregory.net/rapid"
)

func bi(s string) *big.Int {
	return MustFromString(s)
}

func TestMulDivRounding(t *testing.T) {
	cases := []struct {
		name     string
		a, b     string
		mulDown  string
		mulUp    string
		divDown  string
		divUp    string
	}{
		{"exact", "2000000000000000000", "3000000000000000000", "6000000000000000000", "6000000000000000000", "666666666666666666", "666666666666666667"},
		{"tiny", "1", "1", "0", "1", "1000000000000000000", "1000000000000000000"},
		{"third", "1000000000000000000", "333333333333333333", "333333333333333333", "333333333333333333", "3000000000000000003", "3000000000000000004"},
	}

	for _, tc := range cases {
		a, b := bi(tc.a), bi(tc.b)
		got, err := MulDown(a, b)
		if err != nil || got.Cmp(bi(tc.mulDown)) != 0 {
			t.Fatalf("%s mulDown: got %v err %v", tc.name, got, err)
		}
		got, err = MulUp(a, b)
		if err != nil || got.Cmp(bi(tc.mulUp)) != 0 {
			t.Fatalf("%s mulUp: got %v err %v", tc.name, got, err)
		}
		got, err = DivDown(a, b)
		if err != nil || got.Cmp(bi(tc.divDown)) != 0 {
			t.Fatalf("%s divDown: got %v err %v", tc.name, got, err)
		}
		got, err = DivUp(a, b)
		if err != nil || got.Cmp(bi(tc.divUp)) != 0 {
			t.Fatalf("%s divUp: got %v err %v", tc.name, got, err)
		}
	}
}

func TestOverflowIsReported(t *testing.T) {
	if _, err := MulDown(MaxUint256, big.NewInt(2)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if _, err := DivUp(MaxUint256, One); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if _, err := DivDown(One, new(big.Int)); !errors.Is(err, ErrZeroDivision) {
		t.Fatalf("expected zero division, got %v", err)
	}
	if _, err := Sub(big.NewInt(1), big.NewInt(2)); !errors.Is(err, ErrUnderflow) {
		t.Fatalf("expected underflow, got %v", err)
	}
}

func TestComplement(t *testing.T) {
	if got := Complement(bi("300000000000000000")); got.Cmp(bi("700000000000000000")) != 0 {
		t.Fatalf("complement mismatch: %s", got)
	}
	if got := Complement(bi("2000000000000000000")); got.Sign() != 0 {
		t.Fatalf("complement above one should clamp to zero: %s", got)
	}
}

func TestRoundingDirectionProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := new(big.Int).SetUint64(rapid.Uint64().Draw(t, "a"))
		b := new(big.Int).SetUint64(rapid.Uint64Range(1, 1<<62).Draw(t, "b"))

		down, err := MulDown(a, b)
		if err != nil {
			t.Fatalf("mulDown: %v", err)
		}
		up, err := MulUp(a, b)
		if err != nil {
			t.Fatalf("mulUp: %v", err)
		}
		diff := new(big.Int).Sub(up, down)
		if diff.Sign() < 0 || diff.Cmp(big.NewInt(1)) > 0 {
			t.Fatalf("mulUp - mulDown = %s", diff)
		}

		down, err = DivDown(a, b)
		if err != nil {
			t.Fatalf("divDown: %v", err)
		}
		up, err = DivUp(a, b)
		if err != nil {
			t.Fatalf("divUp: %v", err)
		}
		diff.Sub(up, down)
		if diff.Sign() < 0 || diff.Cmp(big.NewInt(1)) > 0 {
			t.Fatalf("divUp - divDown = %s", diff)
		}
	})
}
