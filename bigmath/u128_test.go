// Copyright (c) 2025 The Stableswap Authors

package bigmath

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestU128FromDecimalString(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"zero", "0", false},
		{"small", "12345", false},
		{"max128", maxU128.Dec(), false},
		{"overflow", "340282366920938463463374607431768211456", true}, // 2^128
		{"garbage", "not-a-number", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := U128FromDecimalString(tc.input)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestU128AddOverflow(t *testing.T) {
	max, err := U128FromDecimalString(maxU128.Dec())
	require.NoError(t, err)

	_, err = max.Add(U128FromUint64(1))
	require.ErrorIs(t, err, ErrArithmeticOverflow)

	sum, err := max.Add(ZeroU128)
	require.NoError(t, err)
	require.Equal(t, 0, sum.Cmp(max))
}

func TestU128SubUnderflow(t *testing.T) {
	_, err := ZeroU128.Sub(U128FromUint64(1))
	require.ErrorIs(t, err, ErrArithmeticOverflow)

	diff, err := U128FromUint64(5).Sub(U128FromUint64(5))
	require.NoError(t, err)
	require.True(t, diff.IsZero())
}

func TestU128MulOverflow(t *testing.T) {
	max, err := U128FromDecimalString(maxU128.Dec())
	require.NoError(t, err)

	_, err = max.Mul(U128FromUint64(2))
	require.ErrorIs(t, err, ErrArithmeticOverflow)

	product, err := U128FromUint64(6).Mul(U128FromUint64(7))
	require.NoError(t, err)
	require.Equal(t, uint64(42), product.Uint64())
}

func TestU128RoundedDiv(t *testing.T) {
	cases := []struct {
		a, b, want uint64
	}{
		{10, 4, 3},  // 10/4 = 2.5 -> rounds to 3 via (10+2)/4 = 3
		{9, 4, 2},   // 9/4 = 2.25 -> (9+2)/4 = 2
		{11, 4, 3},  // 11/4 = 2.75 -> (11+2)/4 = 3
		{0, 4, 0},
	}
	for _, tc := range cases {
		got := U128FromUint64(tc.a).RoundedDiv(U128FromUint64(tc.b))
		require.Equal(t, tc.want, got.Uint64())
	}
}

func TestU128Comparisons(t *testing.T) {
	five := U128FromUint64(5)
	ten := U128FromUint64(10)

	require.True(t, five.Lt(ten))
	require.True(t, ten.Gt(five))
	require.True(t, five.Lte(five))
	require.True(t, five.Gte(five))
	require.False(t, ten.Lt(five))
}

func TestU128DivByZeroPanics(t *testing.T) {
	require.Panics(t, func() {
		U128FromUint64(1).Div(ZeroU128)
	})
}
