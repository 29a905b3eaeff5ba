// Copyright (c) 2025 The Stableswap Authors

package stableswap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/stableswap/bigmath"
	"github.com/luxfi/stableswap/decimal"
)

func u(v uint64) bigmath.U128 { return bigmath.U128FromUint64(v) }

func balances(vals ...uint64) []bigmath.U128 {
	out := make([]bigmath.U128, len(vals))
	for i, v := range vals {
		out[i] = u(v)
	}
	return out
}

func fee(numerator, denominator uint64) decimal.Decimal64 {
	return decimal.NewDecimal64Fraction(numerator, denominator)
}

func TestAdd_InitialDepositMintsDepth(t *testing.T) {
	pool := New(2)
	result, err := pool.Add(balances(1000, 1000), Params{
		Balances:      balances(0, 0),
		Amp:           decimal.NewDecimal64Fraction(100, 1),
		LpFee:         fee(0, 1),
		GovernanceFee: fee(0, 1),
		LpSupply:      bigmath.ZeroU128,
		PreviousDepth: bigmath.ZeroU128,
	})
	require.NoError(t, err)
	require.InDelta(t, 2000, float64(result.NewLpSupply.Uint64()), 1)
	require.True(t, result.UserLpDelta.Cmp(result.NewLpSupply) == 0)
	require.True(t, result.GovernanceMint.IsZero())
}

func TestAdd_EmptyPoolRejectsZeroBalance(t *testing.T) {
	pool := New(2)
	_, err := pool.Add(balances(1000, 0), Params{
		Balances:      balances(0, 0),
		Amp:           decimal.NewDecimal64Fraction(100, 1),
		LpFee:         fee(0, 1),
		GovernanceFee: fee(0, 1),
		LpSupply:      bigmath.ZeroU128,
		PreviousDepth: bigmath.ZeroU128,
	})
	require.ErrorIs(t, err, ErrEmptyPoolBadInput)
}

func setupPool(t *testing.T, n int, initial []uint64, ampFactor uint64, lpFeeBps, govFeeBps uint64) (Pool, Params) {
	t.Helper()
	pool := New(n)
	zero := make([]bigmath.U128, n)
	result, err := pool.Add(balances(initial...), Params{
		Balances:      zero,
		Amp:           decimal.NewDecimal64Fraction(ampFactor, 1),
		LpFee:         fee(lpFeeBps, 10_000),
		GovernanceFee: fee(govFeeBps, 10_000),
		LpSupply:      bigmath.ZeroU128,
		PreviousDepth: bigmath.ZeroU128,
	})
	require.NoError(t, err)
	return pool, Params{
		Balances:      result.Balances,
		Amp:           decimal.NewDecimal64Fraction(ampFactor, 1),
		LpFee:         fee(lpFeeBps, 10_000),
		GovernanceFee: fee(govFeeBps, 10_000),
		LpSupply:      result.NewLpSupply,
		PreviousDepth: result.NewDepth,
	}
}

func TestSwapExactInput_OutputLessThanInput(t *testing.T) {
	pool, params := setupPool(t, 2, []uint64{1_000_000, 1_000_000}, 100, 30, 0)

	result, err := pool.SwapExactInput(0, 1, u(10_000), params)
	require.NoError(t, err)
	require.True(t, result.OutputAmount.Lt(u(10_000)))
	require.True(t, result.OutputAmount.Gt(u(9_900)))
}

func TestSwapExactInput_ThenExactOutputRoundTrips(t *testing.T) {
	pool, params := setupPool(t, 2, []uint64{1_000_000, 1_000_000}, 100, 0, 0)

	swapIn, err := pool.SwapExactInput(0, 1, u(10_000), params)
	require.NoError(t, err)

	params.Balances = swapIn.Balances
	params.PreviousDepth = swapIn.NewDepth

	swapOut, err := pool.SwapExactOutput(1, 0, swapIn.OutputAmount, params)
	require.NoError(t, err)
	require.InDelta(t, float64(10_000), float64(swapOut.InputAmount.Uint64()), 1)
}

func TestRemoveExactBurn_PaysOutSingleToken(t *testing.T) {
	pool, params := setupPool(t, 2, []uint64{1_000_000, 1_000_000}, 100, 0, 0)

	result, err := pool.RemoveExactBurn(u(10_000), 0, params)
	require.NoError(t, err)
	require.True(t, result.OutputAmount.Gt(bigmath.ZeroU128))
	require.True(t, result.Balances[1].Cmp(params.Balances[1]) == 0)
}

func TestRemoveProportional_PreservesRatio(t *testing.T) {
	pool, params := setupPool(t, 3, []uint64{900_000, 600_000, 300_000}, 50, 0, 0)

	result, err := pool.RemoveProportional(u(100_000), params)
	require.NoError(t, err)

	require.InDelta(t, float64(params.LpSupply.Uint64()-100_000), float64(result.NewLpSupply.Uint64()), 1)
	for i, b := range result.Balances {
		require.True(t, b.Lt(params.Balances[i]))
		wantRatio := float64(params.Balances[i].Uint64()) / float64(params.Balances[0].Uint64())
		gotRatio := float64(b.Uint64()) / float64(result.Balances[0].Uint64())
		require.InEpsilon(t, wantRatio, gotRatio, 1e-4)
	}
}

func TestRemoveExactOutput_BurnsProportionalToValue(t *testing.T) {
	pool, params := setupPool(t, 2, []uint64{1_000_000, 1_000_000}, 100, 30, 10)

	result, err := pool.RemoveExactOutput(balances(10_000, 10_000), params)
	require.NoError(t, err)
	require.True(t, result.UserLpDelta.Gt(bigmath.ZeroU128))
	require.InDelta(t, float64(20_000), float64(result.UserLpDelta.Uint64()), 50)
}

func TestGovernanceFee_MintsLPOnImbalancedOperation(t *testing.T) {
	pool, params := setupPool(t, 2, []uint64{1_000_000, 1_000_000}, 100, 30, 20)

	result, err := pool.SwapExactInput(0, 1, u(100_000), params)
	require.NoError(t, err)
	require.True(t, result.GovernanceMint.Gt(bigmath.ZeroU128))
}

func TestInvalidFeeRejected(t *testing.T) {
	pool := New(2)
	_, err := pool.Add(balances(100, 100), Params{
		Balances:      balances(0, 0),
		Amp:           decimal.NewDecimal64Fraction(100, 1),
		LpFee:         fee(6000, 10_000),
		GovernanceFee: fee(5000, 10_000),
		LpSupply:      bigmath.ZeroU128,
		PreviousDepth: bigmath.ZeroU128,
	})
	require.ErrorIs(t, err, ErrInvalidFee)
}

func TestSwapSameIndexRejected(t *testing.T) {
	pool, params := setupPool(t, 2, []uint64{1000, 1000}, 100, 0, 0)
	_, err := pool.SwapExactInput(0, 0, u(10), params)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}
