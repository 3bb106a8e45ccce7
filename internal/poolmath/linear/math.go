// Package linear implements the math of Balancer linear pools: a main token, its wrapped
// yield-bearing version and the pool's own pre-minted BPT. Balances outside the
// [LowerTarget, UpperTarget] band are charged a fee when converted to nominal values.
package linear

import (
	"math/big"

	"swapRouter/internal/fixedpoint"
)

// Params are 18-decimal scaled.
type Params struct {
	Fee         *big.Int
	LowerTarget *big.Int
	UpperTarget *big.Int
}

func toNominal(real *big.Int, p Params) (*big.Int, error) {
	switch {
	case real.Cmp(p.LowerTarget) < 0:
		fees, err := fixedpoint.MulDown(new(big.Int).Sub(p.LowerTarget, real), p.Fee)
		if err != nil {
			return nil, err
		}
		return fixedpoint.Sub(real, fees)
	case real.Cmp(p.UpperTarget) <= 0:
		return new(big.Int).Set(real), nil
	default:
		fees, err := fixedpoint.MulDown(new(big.Int).Sub(real, p.UpperTarget), p.Fee)
		if err != nil {
			return nil, err
		}
		return fixedpoint.Sub(real, fees)
	}
}

func fromNominal(nominal *big.Int, p Params) (*big.Int, error) {
	switch {
	case nominal.Cmp(p.LowerTarget) < 0:
		feeOnTarget, err := fixedpoint.MulDown(p.Fee, p.LowerTarget)
		if err != nil {
			return nil, err
		}
		return fixedpoint.DivDown(new(big.Int).Add(nominal, feeOnTarget), new(big.Int).Add(fixedpoint.One, p.Fee))
	case nominal.Cmp(p.UpperTarget) <= 0:
		return new(big.Int).Set(nominal), nil
	default:
		feeOnTarget, err := fixedpoint.MulDown(p.Fee, p.UpperTarget)
		if err != nil {
			return nil, err
		}
		numerator, err := fixedpoint.Sub(nominal, feeOnTarget)
		if err != nil {
			return nil, err
		}
		return fixedpoint.DivDown(numerator, fixedpoint.Complement(p.Fee))
	}
}

// NominalBalance exposes the nominal value of a main balance.
func NominalBalance(mainBalance *big.Int, p Params) (*big.Int, error) {
	return toNominal(mainBalance, p)
}

func invariant(nominalMain, wrappedBalance *big.Int) *big.Int {
	return new(big.Int).Add(nominalMain, wrappedBalance)
}

// nominalDelta returns toNominal(after) - toNominal(before) as an absolute value.
func nominalDelta(before, after *big.Int, p Params) (*big.Int, error) {
	previous, err := toNominal(before, p)
	if err != nil {
		return nil, err
	}
	next, err := toNominal(after, p)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Abs(new(big.Int).Sub(next, previous)), nil
}

func BptOutPerMainIn(mainIn, mainBalance, wrappedBalance, bptSupply *big.Int, p Params) (*big.Int, error) {
	if bptSupply.Sign() == 0 {
		return toNominal(mainIn, p)
	}
	previousNominalMain, err := toNominal(mainBalance, p)
	if err != nil {
		return nil, err
	}
	delta, err := nominalDelta(mainBalance, new(big.Int).Add(mainBalance, mainIn), p)
	if err != nil {
		return nil, err
	}
	scaled, err := fixedpoint.MulDown(bptSupply, delta)
	if err != nil {
		return nil, err
	}
	return fixedpoint.DivDown(scaled, invariant(previousNominalMain, wrappedBalance))
}

func BptInPerMainOut(mainOut, mainBalance, wrappedBalance, bptSupply *big.Int, p Params) (*big.Int, error) {
	after, err := fixedpoint.Sub(mainBalance, mainOut)
	if err != nil {
		return nil, err
	}
	previousNominalMain, err := toNominal(mainBalance, p)
	if err != nil {
		return nil, err
	}
	delta, err := nominalDelta(mainBalance, after, p)
	if err != nil {
		return nil, err
	}
	scaled, err := fixedpoint.MulUp(bptSupply, delta)
	if err != nil {
		return nil, err
	}
	return fixedpoint.DivUp(scaled, invariant(previousNominalMain, wrappedBalance))
}

func WrappedOutPerMainIn(mainIn, mainBalance *big.Int, p Params) (*big.Int, error) {
	return nominalDelta(mainBalance, new(big.Int).Add(mainBalance, mainIn), p)
}

func WrappedInPerMainOut(mainOut, mainBalance *big.Int, p Params) (*big.Int, error) {
	after, err := fixedpoint.Sub(mainBalance, mainOut)
	if err != nil {
		return nil, err
	}
	return nominalDelta(mainBalance, after, p)
}

func MainInPerBptOut(bptOut, mainBalance, wrappedBalance, bptSupply *big.Int, p Params) (*big.Int, error) {
	if bptSupply.Sign() == 0 {
		return fromNominal(bptOut, p)
	}
	previousNominalMain, err := toNominal(mainBalance, p)
	if err != nil {
		return nil, err
	}
	scaled, err := fixedpoint.MulUp(invariant(previousNominalMain, wrappedBalance), bptOut)
	if err != nil {
		return nil, err
	}
	delta, err := fixedpoint.DivUp(scaled, bptSupply)
	if err != nil {
		return nil, err
	}
	newMainBalance, err := fromNominal(delta.Add(delta, previousNominalMain), p)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Sub(newMainBalance, mainBalance)
}

func MainOutPerBptIn(bptIn, mainBalance, wrappedBalance, bptSupply *big.Int, p Params) (*big.Int, error) {
	previousNominalMain, err := toNominal(mainBalance, p)
	if err != nil {
		return nil, err
	}
	scaled, err := fixedpoint.MulDown(invariant(previousNominalMain, wrappedBalance), bptIn)
	if err != nil {
		return nil, err
	}
	delta, err := fixedpoint.DivDown(scaled, bptSupply)
	if err != nil {
		return nil, err
	}
	afterNominalMain, err := fixedpoint.Sub(previousNominalMain, delta)
	if err != nil {
		return nil, err
	}
	newMainBalance, err := fromNominal(afterNominalMain, p)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Sub(mainBalance, newMainBalance)
}

func MainOutPerWrappedIn(wrappedIn, mainBalance *big.Int, p Params) (*big.Int, error) {
	previousNominalMain, err := toNominal(mainBalance, p)
	if err != nil {
		return nil, err
	}
	afterNominalMain, err := fixedpoint.Sub(previousNominalMain, wrappedIn)
	if err != nil {
		return nil, err
	}
	newMainBalance, err := fromNominal(afterNominalMain, p)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Sub(mainBalance, newMainBalance)
}

func MainInPerWrappedOut(wrappedOut, mainBalance *big.Int, p Params) (*big.Int, error) {
	previousNominalMain, err := toNominal(mainBalance, p)
	if err != nil {
		return nil, err
	}
	newMainBalance, err := fromNominal(previousNominalMain.Add(previousNominalMain, wrappedOut), p)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Sub(newMainBalance, mainBalance)
}

func BptOutPerWrappedIn(wrappedIn, mainBalance, wrappedBalance, bptSupply *big.Int, p Params) (*big.Int, error) {
	if bptSupply.Sign() == 0 {
		return new(big.Int).Set(wrappedIn), nil
	}
	nominalMain, err := toNominal(mainBalance, p)
	if err != nil {
		return nil, err
	}
	previousInvariant := invariant(nominalMain, wrappedBalance)
	newInvariant := invariant(nominalMain, new(big.Int).Add(wrappedBalance, wrappedIn))
	scaled, err := fixedpoint.MulDown(bptSupply, newInvariant)
	if err != nil {
		return nil, err
	}
	newBptBalance, err := fixedpoint.DivDown(scaled, previousInvariant)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Sub(newBptBalance, bptSupply)
}

func BptInPerWrappedOut(wrappedOut, mainBalance, wrappedBalance, bptSupply *big.Int, p Params) (*big.Int, error) {
	nominalMain, err := toNominal(mainBalance, p)
	if err != nil {
		return nil, err
	}
	newWrappedBalance, err := fixedpoint.Sub(wrappedBalance, wrappedOut)
	if err != nil {
		return nil, err
	}
	previousInvariant := invariant(nominalMain, wrappedBalance)
	scaled, err := fixedpoint.MulDown(bptSupply, invariant(nominalMain, newWrappedBalance))
	if err != nil {
		return nil, err
	}
	newBptBalance, err := fixedpoint.DivDown(scaled, previousInvariant)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Sub(bptSupply, newBptBalance)
}

func WrappedInPerBptOut(bptOut, mainBalance, wrappedBalance, bptSupply *big.Int, p Params) (*big.Int, error) {
	if bptSupply.Sign() == 0 {
		return new(big.Int).Set(bptOut), nil
	}
	newWrappedBalance, err := wrappedBalanceForSupply(new(big.Int).Add(bptSupply, bptOut), mainBalance, wrappedBalance, bptSupply, p)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Sub(newWrappedBalance, wrappedBalance)
}

func WrappedOutPerBptIn(bptIn, mainBalance, wrappedBalance, bptSupply *big.Int, p Params) (*big.Int, error) {
	newSupply, err := fixedpoint.Sub(bptSupply, bptIn)
	if err != nil {
		return nil, err
	}
	newWrappedBalance, err := wrappedBalanceForSupply(newSupply, mainBalance, wrappedBalance, bptSupply, p)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Sub(wrappedBalance, newWrappedBalance)
}

func wrappedBalanceForSupply(newSupply, mainBalance, wrappedBalance, bptSupply *big.Int, p Params) (*big.Int, error) {
	nominalMain, err := toNominal(mainBalance, p)
	if err != nil {
		return nil, err
	}
	scaled, err := fixedpoint.MulUp(newSupply, invariant(nominalMain, wrappedBalance))
	if err != nil {
		return nil, err
	}
	total, err := fixedpoint.DivUp(scaled, bptSupply)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Sub(total, nominalMain)
}
