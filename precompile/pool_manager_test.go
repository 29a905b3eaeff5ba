// Copyright (c) 2025 The Stableswap Authors

package precompile

import (
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/stableswap/amp"
	"github.com/luxfi/stableswap/bigmath"
	"github.com/luxfi/stableswap/decimal"
	"github.com/luxfi/stableswap/telemetry"
)

var (
	testGovernance = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testStranger   = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func newTestManager() *PoolManager {
	return NewPoolManager(telemetry.NewNop())
}

func amounts(vals ...uint64) []bigmath.U128 {
	out := make([]bigmath.U128, len(vals))
	for i, v := range vals {
		out[i] = bigmath.U128FromUint64(v)
	}
	return out
}

func TestCreatePool_And_Add(t *testing.T) {
	pm := newTestManager()
	id, err := pm.CreatePool(2, amounts(1_000_000, 1_000_000), 100, decimal.NewDecimal64Fraction(30, 10_000), decimal.NewDecimal64Fraction(10, 10_000), testGovernance, 1)
	require.NoError(t, err)

	account, err := pm.Account(id)
	require.NoError(t, err)
	require.False(t, account.Paused)
	require.InDelta(t, 2_000_000, float64(account.LpSupply.Uint64()), 1)

	result, err := pm.Add(id, amounts(10_000, 10_000), 0)
	require.NoError(t, err)
	require.True(t, result.UserLpDelta.Gt(bigmath.ZeroU128))
}

func TestCreatePool_DuplicateRejected(t *testing.T) {
	pm := newTestManager()
	_, err := pm.CreatePool(2, amounts(1000, 1000), 100, decimal.NewDecimal64Fraction(0, 1), decimal.NewDecimal64Fraction(0, 1), testGovernance, 7)
	require.NoError(t, err)

	_, err = pm.CreatePool(2, amounts(1000, 1000), 100, decimal.NewDecimal64Fraction(0, 1), decimal.NewDecimal64Fraction(0, 1), testGovernance, 7)
	require.ErrorIs(t, err, ErrPoolAlreadyExists)
}

func TestSetPaused_RequiresGovernance(t *testing.T) {
	pm := newTestManager()
	id, err := pm.CreatePool(2, amounts(1000, 1000), 100, decimal.NewDecimal64Fraction(0, 1), decimal.NewDecimal64Fraction(0, 1), testGovernance, 1)
	require.NoError(t, err)

	err = pm.SetPaused(id, testStranger, true)
	require.ErrorIs(t, err, ErrUnauthorized)

	err = pm.SetPaused(id, testGovernance, true)
	require.NoError(t, err)

	_, err = pm.Add(id, amounts(10, 10), 0)
	require.ErrorIs(t, err, ErrPoolPaused)
}

func TestRampAmp_RequiresGovernanceAndValidWindow(t *testing.T) {
	pm := newTestManager()
	id, err := pm.CreatePool(2, amounts(1000, 1000), 100, decimal.NewDecimal64Fraction(0, 1), decimal.NewDecimal64Fraction(0, 1), testGovernance, 1)
	require.NoError(t, err)

	err = pm.RampAmp(id, testStranger, 200, 0, 200_000, 0)
	require.ErrorIs(t, err, ErrUnauthorized)

	err = pm.RampAmp(id, testGovernance, 200, 0, amp.MinRampDuration-1, 0)
	require.ErrorIs(t, err, amp.ErrRampTooShort)

	err = pm.RampAmp(id, testGovernance, 200, 0, 200_000, 0)
	require.NoError(t, err)

	account, err := pm.Account(id)
	require.NoError(t, err)
	require.Equal(t, uint64(100), account.AmpSchedule.AmpAt(0))
	require.Equal(t, uint64(200), account.AmpSchedule.AmpAt(200_000))
}

func TestRampAmp_RejectsWhileRampInProgress(t *testing.T) {
	pm := newTestManager()
	id, err := pm.CreatePool(2, amounts(1000, 1000), 100, decimal.NewDecimal64Fraction(0, 1), decimal.NewDecimal64Fraction(0, 1), testGovernance, 1)
	require.NoError(t, err)

	err = pm.RampAmp(id, testGovernance, 200, 0, 200_000, 0)
	require.NoError(t, err)

	err = pm.RampAmp(id, testGovernance, 300, 0, 300_000, 100)
	require.ErrorIs(t, err, amp.ErrRampAlreadyActive)

	err = pm.StopRampAmp(id, testGovernance, 100_000)
	require.NoError(t, err)

	err = pm.RampAmp(id, testGovernance, 300, 100_000, 300_000, 100_000)
	require.NoError(t, err)
}

func TestOperationOnMissingPool(t *testing.T) {
	pm := newTestManager()
	_, err := pm.Add(PoolID{}, amounts(1, 1), 0)
	require.ErrorIs(t, err, ErrPoolNotFound)
}
