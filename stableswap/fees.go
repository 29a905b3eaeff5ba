// Copyright (c) 2025 The Stableswap Authors

package stableswap

import (
	"github.com/luxfi/stableswap/bigmath"
	"github.com/luxfi/stableswap/decimal"
)

// feeRateForDirection converts the pool's total fee into the rate
// applied to the taxbase (spec.md §4.4.5 step 5): on a deposit the fee
// is charged on top of the contribution (rate = f/(1-f)) so that the
// post-fee balance lands exactly where a fee-free deposit followed by a
// fee-only withdrawal would; on a withdrawal it is charged directly
// (rate = f).
func feeRateForDirection(totalFee decimal.Decimal192, isAdd bool) (decimal.Decimal192, error) {
	if !isAdd {
		return totalFee, nil
	}
	complement, err := decimal.OneDecimal192.Sub(totalFee)
	if err != nil {
		return decimal.Decimal192{}, err
	}
	return totalFee.Div(complement), nil
}

// taxbase returns, per token, how far updated[i] deviates from a
// perfectly proportional change of balancesBefore[i] by depthRatio
// (D_updated/previousDepth) — in either direction. A token pushed above
// its proportional share (a deposit skewed toward it) is taxed the same
// way a token pushed below its proportional share (a withdrawal skewed
// away from it) is: both are deviations from the balanced baseline that a single-sided
// operation would otherwise let through fee-free. spec.md §4.4.5 step 4.
func taxbase(balancesBefore, updated []bigmath.U128, depthRatio decimal.Decimal192) ([]bigmath.U128, error) {
	n := len(balancesBefore)
	out := make([]bigmath.U128, n)
	for i := range balancesBefore {
		scaledDec, err := decimal.AmountToDecimal(balancesBefore[i]).Mul(depthRatio)
		if err != nil {
			return nil, err
		}
		updatedDec := decimal.AmountToDecimal(updated[i])

		switch scaledDec.Cmp(updatedDec) {
		case -1:
			diff, err := updatedDec.Sub(scaledDec)
			if err != nil {
				return nil, err
			}
			out[i] = decimal.DecimalToAmount(diff)
		case 1:
			diff, err := scaledDec.Sub(updatedDec)
			if err != nil {
				return nil, err
			}
			out[i] = decimal.DecimalToAmount(diff)
		}
	}
	return out, nil
}

// applyFees charges feeRate*taxbase[i] against updated[i] for every
// token, returning the fee-adjusted balances and the total fee taken
// per token. Fails with ErrImpossibleRemove if any fee would exceed the
// balance it is charged against. spec.md §4.4.5 steps 6-7.
func applyFees(updated []bigmath.U128, tax []bigmath.U128, feeRate decimal.Decimal192) ([]bigmath.U128, []bigmath.U128, error) {
	n := len(updated)
	adjusted := make([]bigmath.U128, n)
	feeAmounts := make([]bigmath.U128, n)
	for i := range updated {
		feeDec, err := feeRate.Mul(decimal.AmountToDecimal(tax[i]))
		if err != nil {
			return nil, nil, err
		}
		fee := decimal.RoundDecimalToAmount(feeDec)
		feeAmounts[i] = fee

		if fee.Gte(updated[i]) {
			return nil, nil, ErrImpossibleRemove
		}
		adjusted[i], err = updated[i].Sub(fee)
		if err != nil {
			return nil, nil, err
		}
	}
	return adjusted, feeAmounts, nil
}

// scaleLpSupply returns round(lpSupply * newDepth / previousDepth), the
// LP-supply value whose ratio to newDepth equals lpSupply's ratio to
// previousDepth — i.e. the supply that leaves per-share value unchanged
// against newDepth. spec.md §4.4.5 step 10.
func scaleLpSupply(lpSupply bigmath.U128, previousDepth bigmath.U128, newDepth decimal.Decimal192) (bigmath.U128, error) {
	prevDec := decimal.AmountToDecimal(previousDepth)
	ratio, err := newDepth.Div(prevDec)
	if err != nil {
		return bigmath.U128{}, err
	}
	scaled, err := decimal.AmountToDecimal(lpSupply).Mul(ratio)
	if err != nil {
		return bigmath.U128{}, err
	}
	return decimal.RoundDecimalToAmount(scaled), nil
}

// governanceMint computes the new LP minted to the protocol's
// governance authority out of the fee surplus an operation generated,
// per spec.md §4.4's convention:
//
//	mint = lpSupply * ΔD_fee * (governanceFee/totalFee) / (dPostFee - ΔD_fee*(governanceFee/totalFee))
//
// deltaDFee is D_updated - D_postFee: the depth the pool would have
// reached with no fee at all, minus the depth it actually reached after
// fees were deducted from the balances. A zero total fee or a zero
// deltaDFee (a perfectly proportional operation, which taxes nothing)
// short-circuits to no mint.
func governanceMint(lpSupply bigmath.U128, deltaDFee decimal.Decimal192, governanceFee, totalFee decimal.Decimal192, dPostFee decimal.Decimal192) (bigmath.U128, error) {
	if deltaDFee.IsZero() || governanceFee.IsZero() || totalFee.IsZero() {
		return bigmath.ZeroU128, nil
	}
	govRatio, err := governanceFee.Div(totalFee)
	if err != nil {
		return bigmath.U128{}, err
	}
	govShareOfDelta, err := deltaDFee.Mul(govRatio)
	if err != nil {
		return bigmath.U128{}, err
	}

	numerator, err := decimal.AmountToDecimal(lpSupply).Mul(govShareOfDelta)
	if err != nil {
		return bigmath.U128{}, err
	}
	denominator, err := dPostFee.Sub(govShareOfDelta)
	if err != nil {
		return bigmath.U128{}, err
	}
	if denominator.IsZero() {
		return bigmath.U128{}, nil
	}
	minted, err := numerator.Div(denominator)
	if err != nil {
		return bigmath.U128{}, err
	}
	return decimal.RoundDecimalToAmount(minted), nil
}
