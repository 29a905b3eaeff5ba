// Copyright (c) 2025 The Stableswap Authors

package invariant

import (
	"fmt"
	"math"

	"github.com/luxfi/stableswap/bigmath"
	"github.com/luxfi/stableswap/decimal"
)

// ComputeDepth solves the stableswap polynomial
//
//	A*N^N*Σbᵢ + D = A*D*N^N + D^(N+1) / (N^N * Πbᵢ)
//
// for D, given the pool's current balances, amp factor, and an optional
// seed (the pool's previous_depth; pass decimal.ZeroDecimal192 to seed
// from Σbᵢ instead). spec.md §4.2. amp is the amplification factor A;
// both phases iterate with A*N^N, the same product
// ComputeUnknownBalance uses.
//
// Any zero balance makes the invariant undefined; per spec.md policy
// that is reported as D=0 without iterating rather than as an error —
// callers are expected to forbid operations that would drain a token to
// zero before reaching this point.
func ComputeDepth(balances []bigmath.U128, amp decimal.Decimal192, initialGuess decimal.Decimal192) (decimal.Decimal192, error) {
	n := len(balances)
	for _, b := range balances {
		if b.IsZero() {
			return decimal.ZeroDecimal192, nil
		}
	}

	nDec := decimal.AmountToDecimal(bigmath.U128FromUint64(uint64(n)))
	nPowN, err := nDec.Pow(n)
	if err != nil {
		return decimal.Decimal192{}, err
	}
	ampNN, err := amp.Mul(nPowN)
	if err != nil {
		return decimal.Decimal192{}, err
	}
	sum := decimal.ZeroDecimal192
	for _, b := range balances {
		var err error
		sum, err = sum.Add(decimal.AmountToDecimal(b))
		if err != nil {
			return decimal.Decimal192{}, err
		}
	}

	seed, err := depthSeedF64(balances, ampNN, sum, initialGuess, n)
	if err != nil {
		return decimal.Decimal192{}, err
	}

	return depthRefineDecimal(balances, ampNN, sum, nDec, seed, n)
}

// depthSeedF64 is Phase 1: iterate the depth recurrence in double
// precision until consecutive iterates are within 0.5 or within 2 ULP
// of each other, then promote the result to Decimal192. Only mul, add,
// div, and a hand-rolled integer power are used, so the sequence of
// operations is identical (and therefore bit-identical) on every
// platform — spec.md §5 and §9.
func depthSeedF64(balances []bigmath.U128, amp, sum, initialGuess decimal.Decimal192, n int) (decimal.Decimal192, error) {
	ampF := amp.ToFloat64()
	sumF := sum.ToFloat64()

	decayPre := 1.0
	for _, b := range balances {
		decayPre *= b.Float64() * float64(n)
	}
	recipDecayPre := 1 / decayPre

	ampTimesSum := sumF * ampF
	denominatorFixed := ampF - 1

	depth := sumF
	if !initialGuess.IsZero() {
		depth = initialGuess.ToFloat64()
	}

	previous := 0.0
	for {
		if math.Abs(depth-previous) <= 0.5 {
			break
		}
		if ulpDiff(depth, previous) <= 2 {
			break
		}
		previous = depth

		r := intPow(depth, n) * recipDecayPre
		numerator := ampTimesSum + float64(n)*depth*r
		denominator := denominatorFixed + r*float64(n+1)
		depth = numerator / denominator
	}

	if depth <= 0 || math.IsNaN(depth) || math.IsInf(depth, 0) {
		return decimal.ZeroDecimal192, nil
	}
	return decimal.Decimal192FromFloat64(depth), nil
}

// depthRefineDecimal is Phase 2: repeat the same recurrence in exact
// fixed-point decimal, using a fold of per-token ratios instead of a
// literal D^N / (N^N*Πbᵢ) so the intermediate never needs more range
// than a single token ratio raised to N — D itself can otherwise exceed
// what even a 256-bit mantissa can square (spec.md §4.2 design
// rationale; see DESIGN.md for the overflow-avoidance note).
func depthRefineDecimal(balances []bigmath.U128, amp, sum, nDec, seed decimal.Decimal192, n int) (decimal.Decimal192, error) {
	balancesTimesN := make([]decimal.Decimal192, n)
	for i, b := range balances {
		v, err := decimal.AmountToDecimal(b).Mul(nDec)
		if err != nil {
			return decimal.Decimal192{}, err
		}
		balancesTimesN[i] = v
	}

	ampTimesSum, err := amp.Mul(sum)
	if err != nil {
		return decimal.Decimal192{}, err
	}
	nPlusOne := decimal.AmountToDecimal(bigmath.U128FromUint64(uint64(n + 1)))

	depth := seed
	previous := decimal.ZeroDecimal192
	for iter := 0; ; iter++ {
		if depth.Cmp(previous) == 0 {
			return depth, nil
		}
		if iter > n+1 {
			return decimal.Decimal192{}, fmt.Errorf("%w: exceeded %d refinement iterations", ErrInvariantCalculationFailed, n+1)
		}
		previous = depth

		reciprocalDecay := decimal.OneDecimal192
		for _, bn := range balancesTimesN {
			ratio, err := depth.Div(bn)
			if err != nil {
				return decimal.Decimal192{}, err
			}
			reciprocalDecay, err = reciprocalDecay.Mul(ratio)
			if err != nil {
				return decimal.Decimal192{}, err
			}
		}

		nTimesDepthTimesDecay, err := depth.Mul(reciprocalDecay)
		if err != nil {
			return decimal.Decimal192{}, err
		}
		nTimesDepthTimesDecay, err = nTimesDepthTimesDecay.Mul(nDec)
		if err != nil {
			return decimal.Decimal192{}, err
		}

		numerator, err := ampTimesSum.Add(nTimesDepthTimesDecay)
		if err != nil {
			return decimal.Decimal192{}, err
		}

		decayTimesNPlusOne, err := reciprocalDecay.Mul(nPlusOne)
		if err != nil {
			return decimal.Decimal192{}, err
		}
		// amp + decay*(N+1) - 1 computed in this order (rather than via a
		// standalone amp-1 term) because amp-1 alone (amp here being
		// A*N^N) can be negative for A*N^N < 1 and Decimal192 has no sign bit; the full sum is always
		// comfortably positive once the decay term is included.
		ampPlusDecay, err := amp.Add(decayTimesNPlusOne)
		if err != nil {
			return decimal.Decimal192{}, err
		}
		denominator, err := ampPlusDecay.Sub(decimal.OneDecimal192)
		if err != nil {
			return decimal.Decimal192{}, err
		}

		depth, err = numerator.Div(denominator)
		if err != nil {
			return decimal.Decimal192{}, err
		}
	}
}

func intPow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

func ulpDiff(a, b float64) uint64 {
	ab, bb := math.Float64bits(a), math.Float64bits(b)
	if ab > bb {
		return ab - bb
	}
	return bb - ab
}
