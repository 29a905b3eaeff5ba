// Copyright (c) 2025 The Stableswap Authors

package invariant

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/stableswap/bigmath"
	"github.com/luxfi/stableswap/decimal"
)

func TestComputeUnknownBalance_RoundTrip(t *testing.T) {
	amp := decimal.NewDecimal64Fraction(100, 1).ToInternal()
	balances := balancesOf(1_000_000, 2_000_000, 500_000)

	depth, err := ComputeDepth(balances, amp, decimal.ZeroDecimal192)
	require.NoError(t, err)

	for missing := 0; missing < len(balances); missing++ {
		known := make([]bigmath.U128, 0, len(balances)-1)
		for i, b := range balances {
			if i != missing {
				known = append(known, b)
			}
		}
		recovered, err := ComputeUnknownBalance(known, depth, amp, bigmath.ZeroU128, len(balances))
		require.NoError(t, err)
		require.InDelta(t, float64(balances[missing].Uint64()), float64(recovered.Uint64()), 1)
	}
}

func TestComputeUnknownBalance_WrongKnownCount(t *testing.T) {
	amp := decimal.NewDecimal64Fraction(100, 1).ToInternal()
	_, err := ComputeUnknownBalance(balancesOf(1, 2, 3), decimal.OneDecimal192, amp, bigmath.ZeroU128, 2)
	require.Error(t, err)
}
