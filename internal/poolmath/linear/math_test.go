package linear

import (
	"math/big"
	"testing"

	"swapRouter/internal/fixedpoint"
)

func e18(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), fixedpoint.One)
}

func testParams() Params {
	return Params{
		Fee:         big.NewInt(1e16),
		LowerTarget: e18(1000),
		UpperTarget: e18(2000),
	}
}

func TestMainWrappedInsideTargets(t *testing.T) {
	p := testParams()
	out, err := WrappedOutPerMainIn(e18(100), e18(1500), p)
	if err != nil {
		t.Fatalf("wrapped out: %v", err)
	}
	if out.Cmp(e18(100)) != 0 {
		t.Fatalf("wrapped out = %s, want 100e18", out)
	}
}

func TestMainWrappedAboveUpperTargetChargesFee(t *testing.T) {
	p := testParams()
	out, err := WrappedOutPerMainIn(e18(600), e18(1500), p)
	if err != nil {
		t.Fatalf("wrapped out: %v", err)
	}
	// 100 tokens land above the upper target and pay 1%.
	if out.Cmp(e18(599)) != 0 {
		t.Fatalf("wrapped out = %s, want 599e18", out)
	}

	in, err := MainInPerWrappedOut(out, e18(1500), p)
	if err != nil {
		t.Fatalf("main in: %v", err)
	}
	if in.Cmp(e18(600)) != 0 {
		t.Fatalf("main in = %s, want 600e18", in)
	}
}

func TestBptMainRoundTrip(t *testing.T) {
	p := testParams()
	main, wrapped, supply := e18(1500), e18(1500), e18(3000)

	bptOut, err := BptOutPerMainIn(e18(100), main, wrapped, supply, p)
	if err != nil {
		t.Fatalf("bpt out: %v", err)
	}
	if bptOut.Cmp(e18(100)) != 0 {
		t.Fatalf("bpt out = %s, want 100e18", bptOut)
	}

	mainIn, err := MainInPerBptOut(bptOut, main, wrapped, supply, p)
	if err != nil {
		t.Fatalf("main in: %v", err)
	}
	if mainIn.Cmp(e18(100)) < 0 {
		t.Fatalf("main in %s below 100e18", mainIn)
	}

	mainOut, err := MainOutPerBptIn(e18(50), main, wrapped, supply, p)
	if err != nil {
		t.Fatalf("main out: %v", err)
	}
	bptIn, err := BptInPerMainOut(mainOut, main, wrapped, supply, p)
	if err != nil {
		t.Fatalf("bpt in: %v", err)
	}
	if bptIn.Cmp(e18(50)) > 0 {
		t.Fatalf("bpt in %s exceeds 50e18 for %s main out", bptIn, mainOut)
	}
}

func TestBptWrapped(t *testing.T) {
	p := testParams()
	main, wrapped, supply := e18(1500), e18(1500), e18(3000)

	bptOut, err := BptOutPerWrappedIn(e18(30), main, wrapped, supply, p)
	if err != nil {
		t.Fatalf("bpt out: %v", err)
	}
	if bptOut.Cmp(e18(30)) != 0 {
		t.Fatalf("bpt out = %s, want 30e18", bptOut)
	}

	wrappedIn, err := WrappedInPerBptOut(bptOut, main, wrapped, supply, p)
	if err != nil {
		t.Fatalf("wrapped in: %v", err)
	}
	if wrappedIn.Cmp(e18(30)) < 0 {
		t.Fatalf("wrapped in %s below 30e18", wrappedIn)
	}

	wrappedOut, err := WrappedOutPerBptIn(e18(30), main, wrapped, supply, p)
	if err != nil {
		t.Fatalf("wrapped out: %v", err)
	}
	bptIn, err := BptInPerWrappedOut(wrappedOut, main, wrapped, supply, p)
	if err != nil {
		t.Fatalf("bpt in: %v", err)
	}
	if bptIn.Cmp(e18(30)) > 0 {
		t.Fatalf("bpt in %s exceeds 30e18", bptIn)
	}
}

func TestEmptySupplyMintsNominal(t *testing.T) {
	p := testParams()
	out, err := BptOutPerMainIn(e18(500), new(big.Int), new(big.Int), new(big.Int), p)
	if err != nil {
		t.Fatalf("bpt out: %v", err)
	}
	// 500 below the lower target of 1000 pays 1% on the 500 gap.
	if out.Cmp(e18(495)) != 0 {
		t.Fatalf("bpt out = %s, want 495e18", out)
	}
}

func TestMainOutBeyondBalanceFails(t *testing.T) {
	if _, err := WrappedInPerMainOut(e18(2000), e18(1500), testParams()); err == nil {
		t.Fatalf("expected underflow")
	}
}
