// Copyright (c) 2025 The Stableswap Authors

package invariant

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/stableswap/bigmath"
	"github.com/luxfi/stableswap/decimal"
)

func balancesOf(vals ...uint64) []bigmath.U128 {
	out := make([]bigmath.U128, len(vals))
	for i, v := range vals {
		out[i] = bigmath.U128FromUint64(v)
	}
	return out
}

func amountOf(d decimal.Decimal192) uint64 {
	return decimal.DecimalToAmount(d).Uint64()
}

func TestComputeDepth_PerfectlyBalanced(t *testing.T) {
	cases := []struct {
		name      string
		balances  []uint64
		amp       uint64
		wantDepth uint64
	}{
		{"two token, amp 100", []uint64{1000, 1000}, 100, 2000},
		{"three token, amp 200", []uint64{500, 500, 500}, 200, 1500},
		{"six token, amp 1", []uint64{10_000, 10_000, 10_000, 10_000, 10_000, 10_000}, 1, 60_000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			amp := decimal.NewDecimal64Fraction(tc.amp, 1).ToInternal()
			depth, err := ComputeDepth(balancesOf(tc.balances...), amp, decimal.ZeroDecimal192)
			require.NoError(t, err)
			require.InDelta(t, float64(tc.wantDepth), float64(amountOf(depth)), 1)
		})
	}
}

func TestComputeDepth_ZeroBalanceIsUndefined(t *testing.T) {
	amp := decimal.NewDecimal64Fraction(100, 1).ToInternal()
	depth, err := ComputeDepth(balancesOf(1000, 0), amp, decimal.ZeroDecimal192)
	require.NoError(t, err)
	require.True(t, depth.IsZero())
}

func TestComputeDepth_ImbalancedLessThanSum(t *testing.T) {
	amp := decimal.NewDecimal64Fraction(100, 1).ToInternal()
	balanced, err := ComputeDepth(balancesOf(1000, 1000), amp, decimal.ZeroDecimal192)
	require.NoError(t, err)

	imbalanced, err := ComputeDepth(balancesOf(1900, 100), amp, decimal.ZeroDecimal192)
	require.NoError(t, err)

	// For any fixed sum, the invariant is maximized at perfect balance
	// (spec.md §5, I1's basis): an imbalanced split of the same total
	// value produces a strictly smaller D.
	require.True(t, imbalanced.Lt(balanced))
}

func TestComputeDepth_SeedIndependence(t *testing.T) {
	amp := decimal.NewDecimal64Fraction(50, 1).ToInternal()
	balances := balancesOf(12345, 54321, 9999)

	fromZero, err := ComputeDepth(balances, amp, decimal.ZeroDecimal192)
	require.NoError(t, err)

	fromBadSeed, err := ComputeDepth(balances, amp, decimal.Decimal192FromFloat64(1.0))
	require.NoError(t, err)

	require.Equal(t, 0, fromZero.Cmp(fromBadSeed))
}
