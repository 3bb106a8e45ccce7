package gyroe

import (
	"math/big"
	"testing"

	"swapRouter/internal/fixedpoint"
)

func bi(s string) *big.Int {
	return fixedpoint.MustFromString(s)
}

func fixtureParams() Params {
	return Params{
		Alpha:  bi("50000000000020290"),
		Beta:   bi("397316269897841178"),
		C:      bi("955157326174453500"),
		S:      bi("296098771114080560"),
		Lambda: bi("748956475000000000000000"),
	}
}

// fixtureDerived are the published 38-decimal derived values of the fixture pool.
func fixtureDerived(t *testing.T) DerivedParams {
	t.Helper()
	return DerivedParams{
		TauAlpha: Vector2{X: bi("-99999999998640216827321822090250869512"), Y: bi("521494821273352387635736307999088")},
		TauBeta:  Vector2{X: bi("99999999985251225321221463296419833612"), Y: bi("1717485123551095031292618834391386")},
		U:        bi("56564182095617502122541689600223111041"),
		V:        bi("626352651807875756896296543790835"),
		W:        bi("338251066240397957902003753652350"),
		Z:        bi("82465103535609803284538786438983276111"),
		DSq:      bi("100000000000000002140811391783216360000"),
	}
}

func hundred() *big.Int {
	return bi("100000000000000000000")
}

func closeTo(got, want *big.Int, delta int64) bool {
	diff := new(big.Int).Sub(got, want)
	return diff.CmpAbs(big.NewInt(delta)) <= 0
}

func TestComputeDerivedParams(t *testing.T) {
	d, err := ComputeDerivedParams(fixtureParams())
	if err != nil {
		t.Fatalf("derived params: %v", err)
	}
	published := fixtureDerived(t)

	want := map[string][2]*big.Int{
		"tauAlpha.x": {d.TauAlpha.X, published.TauAlpha.X},
		"tauAlpha.y": {d.TauAlpha.Y, published.TauAlpha.Y},
		"tauBeta.x":  {d.TauBeta.X, published.TauBeta.X},
		"tauBeta.y":  {d.TauBeta.Y, published.TauBeta.Y},
		"u":          {d.U, published.U},
		"v":          {d.V, published.V},
		"w":          {d.W, published.W},
		"z":          {d.Z, published.Z},
		"dSq":        {d.DSq, published.DSq},
	}
	for name, pair := range want {
		// 38-decimal truncation may differ in the last digit depending on float precision.
		if !closeTo(pair[0], pair[1], 1) {
			t.Fatalf("%s = %s, want %s", name, pair[0], pair[1])
		}
	}
}

func TestCalculateInvariantWithError(t *testing.T) {
	p, d := fixtureParams(), fixtureDerived(t)

	invariant, invErr, err := CalculateInvariantWithError([2]*big.Int{hundred(), hundred()}, p, d)
	if err != nil {
		t.Fatalf("invariant: %v", err)
	}
	if invariant.Cmp(big.NewInt(295358168772127)) != 0 {
		t.Fatalf("invariant = %s", invariant)
	}
	if invErr.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("error = %s", invErr)
	}
}

func TestVirtualOffsets(t *testing.T) {
	p, d := fixtureParams(), fixtureDerived(t)
	invariant, invErr, err := CalculateInvariantWithError([2]*big.Int{hundred(), hundred()}, p, d)
	if err != nil {
		t.Fatalf("invariant: %v", err)
	}
	r := PinnedInvariant(invariant, invErr)

	a, err := VirtualOffset0(p, d, r)
	if err != nil {
		t.Fatalf("offset0: %v", err)
	}
	if !closeTo(a, bi("211290746521816255142"), 10_000_000_000_000) {
		t.Fatalf("virtual offset 0 = %s", a)
	}

	b, err := VirtualOffset1(p, d, r)
	if err != nil {
		t.Fatalf("offset1: %v", err)
	}
	if !closeTo(b, bi("65500131431538418723"), 10_000_000_000_000) {
		t.Fatalf("virtual offset 1 = %s", b)
	}
}

func TestSwapRoundTripFavorsPool(t *testing.T) {
	p, d := fixtureParams(), fixtureDerived(t)
	balances := [2]*big.Int{hundred(), hundred()}
	invariant, invErr, err := CalculateInvariantWithError(balances, p, d)
	if err != nil {
		t.Fatalf("invariant: %v", err)
	}
	r := PinnedInvariant(invariant, invErr)

	amountIn := bi("9100000000000000000")
	out, err := CalcOutGivenIn(balances, amountIn, true, p, d, r)
	if err != nil {
		t.Fatalf("out given in: %v", err)
	}
	if !closeTo(out, bi("2821007799187925949"), 10_000_000_000_000) {
		t.Fatalf("out = %s", out)
	}

	in, err := CalcInGivenOut(balances, out, true, p, d, r)
	if err != nil {
		t.Fatalf("in given out: %v", err)
	}
	if in.Cmp(amountIn) < 0 {
		t.Fatalf("round trip in %s below original %s", in, amountIn)
	}

	reverse, err := CalcOutGivenIn(balances, amountIn, false, p, d, r)
	if err != nil {
		t.Fatalf("reverse out given in: %v", err)
	}
	if !closeTo(reverse, bi("29354735194458638944"), 10_000_000_000_000) {
		t.Fatalf("reverse out = %s", reverse)
	}
}

func TestMaxBalancesBoundSwaps(t *testing.T) {
	p, d := fixtureParams(), fixtureDerived(t)
	balances := [2]*big.Int{hundred(), hundred()}
	invariant, invErr, err := CalculateInvariantWithError(balances, p, d)
	if err != nil {
		t.Fatalf("invariant: %v", err)
	}
	r := PinnedInvariant(invariant, invErr)

	maxX, err := MaxBalances0(p, d, r)
	if err != nil {
		t.Fatalf("max balances: %v", err)
	}
	if !closeTo(maxX, bi("422581493069958383234"), 10_000_000_000_000) {
		t.Fatalf("max balance 0 = %s", maxX)
	}

	tooMuch := new(big.Int).Sub(maxX, balances[0])
	tooMuch.Add(tooMuch, big.NewInt(1))
	if _, err := CalcOutGivenIn(balances, tooMuch, true, p, d, r); err == nil {
		t.Fatalf("expected asset bounds error")
	}
}

func TestSqrt(t *testing.T) {
	cases := []struct{ in, want string }{
		{"4000000000000000000", "2000000000000000000"},
		{"2000000000000000000", "1414213562373095048"},
		{"10000000000", "100000000000000"},
	}
	for _, tc := range cases {
		got, err := Sqrt(bi(tc.in), 5)
		if err != nil {
			t.Fatalf("sqrt(%s): %v", tc.in, err)
		}
		if !closeTo(got, bi(tc.want), 1) {
			t.Fatalf("sqrt(%s) = %s", tc.in, got)
		}
	}
}
