package stable

import (
	"math/big"

	"swapRouter/internal/fixedpoint"
)

// Single-sided joins and exits of composable stable pools. Fees are charged on the part of
// the amount that moves the pool away from its current proportions.

// CalcBptOutGivenExactTokensIn returns the BPT minted for amountsIn.
func CalcBptOutGivenExactTokensIn(amp *big.Int, balances, amountsIn []*big.Int, bptTotalSupply, currentInvariant, swapFee *big.Int) (*big.Int, error) {
	sumBalances := sum(balances)
	if sumBalances.Sign() == 0 {
		return nil, fixedpoint.ErrZeroDivision
	}

	ratiosWithFee := make([]*big.Int, len(balances))
	invariantRatioWithFees := new(big.Int)
	for i, balance := range balances {
		currentWeight, err := fixedpoint.DivDown(balance, sumBalances)
		if err != nil {
			return nil, err
		}
		ratiosWithFee[i], err = fixedpoint.DivDown(new(big.Int).Add(balance, amountsIn[i]), balance)
		if err != nil {
			return nil, err
		}
		weighted, err := fixedpoint.MulDown(ratiosWithFee[i], currentWeight)
		if err != nil {
			return nil, err
		}
		invariantRatioWithFees.Add(invariantRatioWithFees, weighted)
	}

	newBalances := make([]*big.Int, len(balances))
	for i, balance := range balances {
		amountInWithoutFee := new(big.Int).Set(amountsIn[i])
		if ratiosWithFee[i].Cmp(invariantRatioWithFees) > 0 {
			nonTaxable := new(big.Int)
			if invariantRatioWithFees.Cmp(fixedpoint.One) > 0 {
				var err error
				nonTaxable, err = fixedpoint.MulDown(balance, new(big.Int).Sub(invariantRatioWithFees, fixedpoint.One))
				if err != nil {
					return nil, err
				}
			}
			taxable, err := fixedpoint.Sub(amountsIn[i], nonTaxable)
			if err != nil {
				return nil, err
			}
			taxed, err := fixedpoint.MulDown(taxable, fixedpoint.Complement(swapFee))
			if err != nil {
				return nil, err
			}
			amountInWithoutFee = nonTaxable.Add(nonTaxable, taxed)
		}
		newBalances[i] = new(big.Int).Add(balance, amountInWithoutFee)
	}

	newInvariant, err := CalculateInvariant(amp, newBalances)
	if err != nil {
		return nil, err
	}
	invariantRatio, err := fixedpoint.DivDown(newInvariant, currentInvariant)
	if err != nil {
		return nil, err
	}
	if invariantRatio.Cmp(fixedpoint.One) <= 0 {
		return new(big.Int), nil
	}
	return fixedpoint.MulDown(bptTotalSupply, invariantRatio.Sub(invariantRatio, fixedpoint.One))
}

// CalcTokenInGivenExactBptOut returns the amount of token tokenIndex needed to mint bptAmountOut.
func CalcTokenInGivenExactBptOut(amp *big.Int, balances []*big.Int, tokenIndex int, bptAmountOut, bptTotalSupply, currentInvariant, swapFee *big.Int) (*big.Int, error) {
	ratio, err := fixedpoint.DivUp(new(big.Int).Add(bptTotalSupply, bptAmountOut), bptTotalSupply)
	if err != nil {
		return nil, err
	}
	newInvariant, err := fixedpoint.MulUp(ratio, currentInvariant)
	if err != nil {
		return nil, err
	}
	newBalance, err := GetTokenBalanceGivenInvariantAndAllOtherBalances(amp, balances, newInvariant, tokenIndex)
	if err != nil {
		return nil, err
	}
	amountInWithoutFee, err := fixedpoint.Sub(newBalance, balances[tokenIndex])
	if err != nil {
		return nil, err
	}

	taxable, nonTaxable, err := splitTaxable(balances, tokenIndex, amountInWithoutFee)
	if err != nil {
		return nil, err
	}
	grossed, err := fixedpoint.DivUp(taxable, fixedpoint.Complement(swapFee))
	if err != nil {
		return nil, err
	}
	return nonTaxable.Add(nonTaxable, grossed), nil
}

// CalcBptInGivenExactTokensOut returns the BPT burned to withdraw amountsOut.
func CalcBptInGivenExactTokensOut(amp *big.Int, balances, amountsOut []*big.Int, bptTotalSupply, currentInvariant, swapFee *big.Int) (*big.Int, error) {
	sumBalances := sum(balances)
	if sumBalances.Sign() == 0 {
		return nil, fixedpoint.ErrZeroDivision
	}

	ratiosWithoutFee := make([]*big.Int, len(balances))
	invariantRatioWithoutFees := new(big.Int)
	for i, balance := range balances {
		currentWeight, err := fixedpoint.DivUp(balance, sumBalances)
		if err != nil {
			return nil, err
		}
		remaining, err := fixedpoint.Sub(balance, amountsOut[i])
		if err != nil {
			return nil, err
		}
		ratiosWithoutFee[i], err = fixedpoint.DivUp(remaining, balance)
		if err != nil {
			return nil, err
		}
		weighted, err := fixedpoint.MulUp(ratiosWithoutFee[i], currentWeight)
		if err != nil {
			return nil, err
		}
		invariantRatioWithoutFees.Add(invariantRatioWithoutFees, weighted)
	}

	newBalances := make([]*big.Int, len(balances))
	for i, balance := range balances {
		amountOutWithFee := new(big.Int).Set(amountsOut[i])
		if invariantRatioWithoutFees.Cmp(ratiosWithoutFee[i]) > 0 {
			nonTaxable, err := fixedpoint.MulDown(balance, fixedpoint.Complement(invariantRatioWithoutFees))
			if err != nil {
				return nil, err
			}
			taxable, err := fixedpoint.Sub(amountsOut[i], nonTaxable)
			if err != nil {
				return nil, err
			}
			grossed, err := fixedpoint.DivUp(taxable, fixedpoint.Complement(swapFee))
			if err != nil {
				return nil, err
			}
			amountOutWithFee = nonTaxable.Add(nonTaxable, grossed)
		}
		remaining, err := fixedpoint.Sub(balance, amountOutWithFee)
		if err != nil {
			return nil, err
		}
		newBalances[i] = remaining
	}

	newInvariant, err := CalculateInvariant(amp, newBalances)
	if err != nil {
		return nil, err
	}
	invariantRatio, err := fixedpoint.DivDown(newInvariant, currentInvariant)
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulUp(bptTotalSupply, fixedpoint.Complement(invariantRatio))
}

// CalcTokenOutGivenExactBptIn returns the amount of token tokenIndex paid for burning bptAmountIn.
func CalcTokenOutGivenExactBptIn(amp *big.Int, balances []*big.Int, tokenIndex int, bptAmountIn, bptTotalSupply, currentInvariant, swapFee *big.Int) (*big.Int, error) {
	remainingSupply, err := fixedpoint.Sub(bptTotalSupply, bptAmountIn)
	if err != nil {
		return nil, err
	}
	ratio, err := fixedpoint.DivUp(remainingSupply, bptTotalSupply)
	if err != nil {
		return nil, err
	}
	newInvariant, err := fixedpoint.MulUp(ratio, currentInvariant)
	if err != nil {
		return nil, err
	}
	newBalance, err := GetTokenBalanceGivenInvariantAndAllOtherBalances(amp, balances, newInvariant, tokenIndex)
	if err != nil {
		return nil, err
	}
	amountOutWithoutFee, err := fixedpoint.Sub(balances[tokenIndex], newBalance)
	if err != nil {
		return nil, err
	}

	taxable, nonTaxable, err := splitTaxable(balances, tokenIndex, amountOutWithoutFee)
	if err != nil {
		return nil, err
	}
	taxed, err := fixedpoint.MulDown(taxable, fixedpoint.Complement(swapFee))
	if err != nil {
		return nil, err
	}
	return nonTaxable.Add(nonTaxable, taxed), nil
}

// splitTaxable charges fees on the share of amount not covered by the token's current weight.
func splitTaxable(balances []*big.Int, tokenIndex int, amount *big.Int) (*big.Int, *big.Int, error) {
	currentWeight, err := fixedpoint.DivDown(balances[tokenIndex], sum(balances))
	if err != nil {
		return nil, nil, err
	}
	taxable, err := fixedpoint.MulUp(amount, fixedpoint.Complement(currentWeight))
	if err != nil {
		return nil, nil, err
	}
	nonTaxable, err := fixedpoint.Sub(amount, taxable)
	if err != nil {
		return nil, nil, err
	}
	return taxable, nonTaxable, nil
}

func sum(values []*big.Int) *big.Int {
	total := new(big.Int)
	for _, v := range values {
		total.Add(total, v)
	}
	return total
}
