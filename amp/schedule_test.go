// Copyright (c) 2025 The Stableswap Authors

package amp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstant(t *testing.T) {
	s, err := Constant(100)
	require.NoError(t, err)
	require.Equal(t, uint64(100), s.AmpAt(0))
	require.Equal(t, uint64(100), s.AmpAt(1_000_000))

	_, err = Constant(0)
	require.ErrorIs(t, err, ErrAmpOutOfRange)
}

func TestStartRamp_LinearInterpolation(t *testing.T) {
	s, err := StartRamp(100, 200, 1000, 1000+MinRampDuration)
	require.NoError(t, err)

	require.Equal(t, uint64(100), s.AmpAt(500))
	require.Equal(t, uint64(100), s.AmpAt(1000))
	require.Equal(t, uint64(200), s.AmpAt(1000+MinRampDuration))
	require.Equal(t, uint64(200), s.AmpAt(1000+MinRampDuration+10))

	mid := s.AmpAt(1000 + MinRampDuration/2)
	require.InDelta(t, 150, float64(mid), 2)
}

func TestStartRamp_RejectsExcessiveChange(t *testing.T) {
	_, err := StartRamp(100, 100*MaxAmpChangeFactor+1, 0, MinRampDuration)
	require.ErrorIs(t, err, ErrAmpChangeTooLarge)

	_, err = StartRamp(100*MaxAmpChangeFactor+1, 100, 0, MinRampDuration)
	require.ErrorIs(t, err, ErrAmpChangeTooLarge)
}

func TestStartRamp_RejectsShortWindow(t *testing.T) {
	_, err := StartRamp(100, 200, 0, MinRampDuration-1)
	require.ErrorIs(t, err, ErrRampTooShort)
}

func TestStopRamp_FreezesCurrentValue(t *testing.T) {
	s, err := StartRamp(100, 200, 0, MinRampDuration)
	require.NoError(t, err)

	mid := s.AmpAt(MinRampDuration / 2)
	frozen := s.StopRamp(MinRampDuration / 2)
	require.Equal(t, mid, frozen.AmpAt(0))
	require.Equal(t, mid, frozen.AmpAt(1_000_000))
}
