package fixedpoint

import (
	"errors"
	"math/big"
	"testing"
)

func TestLogExpKnownValues(t *testing.T) {
	got, err := Exp(One)
	if err != nil {
		t.Fatalf("exp: %v", err)
	}
	if got.Cmp(bi("2718281828459045235")) != 0 {
		t.Fatalf("exp(1) = %s", got)
	}

	got, err = Exp(new(big.Int).Neg(One))
	if err != nil {
		t.Fatalf("exp(-1): %v", err)
	}
	if got.Cmp(bi("367879441171442321")) != 0 {
		t.Fatalf("exp(-1) = %s", got)
	}

	got, err = Ln(bi("10000000000000000000"))
	if err != nil {
		t.Fatalf("ln: %v", err)
	}
	if got.Cmp(bi("2302585092994045683")) != 0 {
		t.Fatalf("ln(10) = %s", got)
	}
}

func TestPow(t *testing.T) {
	cases := []struct {
		x, y, want string
	}{
		{"2000000000000000000", "500000000000000000", "1414213562373095047"},
		{"1050000000000000000", "3300000000000000000", "1174693828038361887"},
	}
	for _, tc := range cases {
		got, err := Pow(bi(tc.x), bi(tc.y))
		if err != nil {
			t.Fatalf("pow(%s, %s): %v", tc.x, tc.y, err)
		}
		if got.Cmp(bi(tc.want)) != 0 {
			t.Fatalf("pow(%s, %s) = %s, want %s", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestPowUpDownBracketRaw(t *testing.T) {
	x, y := bi("2000000000000000000"), bi("500000000000000000")
	up, err := PowUp(x, y)
	if err != nil {
		t.Fatalf("powUp: %v", err)
	}
	down, err := PowDown(x, y)
	if err != nil {
		t.Fatalf("powDown: %v", err)
	}
	if up.Cmp(bi("1414213562373109191")) != 0 {
		t.Fatalf("powUp = %s", up)
	}
	if down.Cmp(bi("1414213562373080903")) != 0 {
		t.Fatalf("powDown = %s", down)
	}

	square, err := PowUp(x, Two)
	if err != nil || square.Cmp(Four) != 0 {
		t.Fatalf("powUp(2, 2) = %v err %v", square, err)
	}
}

func TestPowBounds(t *testing.T) {
	if got, err := Pow(One, new(big.Int)); err != nil || got.Cmp(One) != 0 {
		t.Fatalf("x^0 should be one, got %v err %v", got, err)
	}
	if _, err := Exp(bi("131000000000000000000")); !errors.Is(err, ErrInvalidExponent) {
		t.Fatalf("expected invalid exponent, got %v", err)
	}
	if _, err := Pow(bi("1000000000000000000000000"), bi("100000000000000000000")); !errors.Is(err, ErrProductOutOfBounds) {
		t.Fatalf("expected product out of bounds, got %v", err)
	}
}
