// Copyright (c) 2025 The Stableswap Authors

package invariant

import (
	"fmt"

	"github.com/luxfi/stableswap/bigmath"
	"github.com/luxfi/stableswap/decimal"
)

// maxUnknownBalanceIterations bounds the companion Newton solver the
// same defensive way ComputeDepth's N+1 cap does; Newton's quadratic
// convergence means real pools settle in well under ten steps, so this
// cap only ever fires for pathological (fuzzed) inputs.
const maxUnknownBalanceIterations = 100

// ComputeUnknownBalance solves
//
//	x² + x*(Σ_known + D/(A*N^N) - D) - D^(N+1)/(A*N^(2N)*Π_known) = 0
//
// for the single reserve x not present in known, given the invariant D
// and the total token count n. spec.md §4.3.
//
// D^(N+1)/Π_known is computed as D² * Π_i(D/known_i) rather than
// literally — D raised to N+1 would overflow long before the ratio
// form does, for exactly the reason documented on
// depthRefineDecimal.
func ComputeUnknownBalance(known []bigmath.U128, depth decimal.Decimal192, amp decimal.Decimal192, initialGuess bigmath.U128, n int) (bigmath.U128, error) {
	if len(known) != n-1 {
		return bigmath.U128{}, fmt.Errorf("invariant: expected %d known balances, got %d", n-1, len(known))
	}

	nDec := decimal.AmountToDecimal(bigmath.U128FromUint64(uint64(n)))
	nPowN, err := nDec.Pow(n)
	if err != nil {
		return bigmath.U128{}, err
	}
	nPow2N, err := nDec.Pow(2 * n)
	if err != nil {
		return bigmath.U128{}, err
	}

	sumKnown := decimal.ZeroDecimal192
	for _, k := range known {
		sumKnown, err = sumKnown.Add(decimal.AmountToDecimal(k))
		if err != nil {
			return bigmath.U128{}, err
		}
	}

	ampNN, err := amp.Mul(nPowN)
	if err != nil {
		return bigmath.U128{}, err
	}
	dOverAmpNN, err := depth.Div(ampNN)
	if err != nil {
		return bigmath.U128{}, err
	}
	b, err := sumKnown.Add(dOverAmpNN)
	if err != nil {
		return bigmath.U128{}, err
	}

	ratioProduct := decimal.OneDecimal192
	for _, k := range known {
		ratio, err := depth.Div(decimal.AmountToDecimal(k))
		if err != nil {
			return bigmath.U128{}, err
		}
		ratioProduct, err = ratioProduct.Mul(ratio)
		if err != nil {
			return bigmath.U128{}, err
		}
	}
	dSquared, err := depth.Mul(depth)
	if err != nil {
		return bigmath.U128{}, err
	}
	cNumerator, err := dSquared.Mul(ratioProduct)
	if err != nil {
		return bigmath.U128{}, err
	}
	ampN2N, err := amp.Mul(nPow2N)
	if err != nil {
		return bigmath.U128{}, err
	}
	c, err := cNumerator.Div(ampN2N)
	if err != nil {
		return bigmath.U128{}, err
	}

	x := decimal.AmountToDecimal(initialGuess)
	if initialGuess.IsZero() {
		divisor := decimal.AmountToDecimal(bigmath.U128FromUint64(uint64(n - 1)))
		x, err = sumKnown.Div(divisor)
		if err != nil {
			return bigmath.U128{}, err
		}
	}

	two := decimal.AmountToDecimal(bigmath.U128FromUint64(2))

	for iter := 0; ; iter++ {
		if iter > maxUnknownBalanceIterations {
			return bigmath.U128{}, fmt.Errorf("%w: exceeded %d iterations", ErrUnknownBalanceCalculationFailed, maxUnknownBalanceIterations)
		}

		xSquared, err := x.Mul(x)
		if err != nil {
			return bigmath.U128{}, err
		}
		numerator, err := c.Add(xSquared)
		if err != nil {
			return bigmath.U128{}, err
		}

		twoX, err := x.Mul(two)
		if err != nil {
			return bigmath.U128{}, err
		}
		twoXPlusB, err := twoX.Add(b)
		if err != nil {
			return bigmath.U128{}, err
		}
		denominator, err := twoXPlusB.Sub(depth)
		if err != nil {
			return bigmath.U128{}, fmt.Errorf("%w: %v", ErrUnknownBalanceCalculationFailed, err)
		}
		if denominator.IsZero() {
			return bigmath.U128{}, ErrUnknownBalanceCalculationFailed
		}

		newX, err := numerator.RoundedDiv(denominator)
		if err != nil {
			return bigmath.U128{}, err
		}
		if newX.Cmp(x) == 0 {
			return decimal.DecimalToAmount(newX), nil
		}
		x = newX
	}
}
