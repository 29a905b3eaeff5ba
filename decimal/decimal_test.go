// Copyright (c) 2025 The Stableswap Authors

package decimal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/stableswap/bigmath"
)

func TestAmountRoundTrip(t *testing.T) {
	amounts := []uint64{0, 1, 42, 1_000_000_000_000}
	for _, a := range amounts {
		amt := bigmath.U128FromUint64(a)
		d := AmountToDecimal(amt)
		require.Equal(t, a, DecimalToAmount(d).Uint64())
	}
}

func TestDecimal192AddSub(t *testing.T) {
	a := AmountToDecimal(bigmath.U128FromUint64(10))
	b := AmountToDecimal(bigmath.U128FromUint64(3))

	sum, err := a.Add(b)
	require.NoError(t, err)
	require.Equal(t, uint64(13), DecimalToAmount(sum).Uint64())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	require.Equal(t, uint64(7), DecimalToAmount(diff).Uint64())

	_, err = b.Sub(a)
	require.ErrorIs(t, err, bigmath.ErrArithmeticOverflow)
}

func TestDecimal192MulDiv(t *testing.T) {
	a := AmountToDecimal(bigmath.U128FromUint64(6))
	b := AmountToDecimal(bigmath.U128FromUint64(7))

	product, err := a.Mul(b)
	require.NoError(t, err)
	require.Equal(t, uint64(42), DecimalToAmount(product).Uint64())

	half := NewDecimal64Fraction(1, 2).ToInternal()
	scaled, err := product.Mul(half)
	require.NoError(t, err)
	require.Equal(t, uint64(21), DecimalToAmount(scaled).Uint64())

	quotient, err := product.Div(b)
	require.NoError(t, err)
	require.Equal(t, uint64(6), DecimalToAmount(quotient).Uint64())
}

func TestDecimal192Pow(t *testing.T) {
	three := AmountToDecimal(bigmath.U128FromUint64(3))
	cubed, err := three.Pow(3)
	require.NoError(t, err)
	require.Equal(t, uint64(27), DecimalToAmount(cubed).Uint64())

	one, err := three.Pow(0)
	require.NoError(t, err)
	require.Equal(t, uint64(1), DecimalToAmount(one).Uint64())
}

func TestDecimal192FromFloat64(t *testing.T) {
	require.True(t, Decimal192FromFloat64(-1).IsZero())
	require.True(t, Decimal192FromFloat64(0).IsZero())

	d := Decimal192FromFloat64(123.0)
	require.Equal(t, uint64(123), DecimalToAmount(d).Uint64())
}

func TestDecimal64Fraction(t *testing.T) {
	tenPercent := NewDecimal64Fraction(10, 100)
	require.InDelta(t, 0.1, tenPercent.Float64(), 1e-9)

	sum, err := tenPercent.Add(NewDecimal64Fraction(5, 100))
	require.NoError(t, err)
	require.InDelta(t, 0.15, sum.Float64(), 1e-9)

	require.True(t, NewDecimal64Fraction(1, 100).Lt(tenPercent))
}

func TestRoundDecimalToAmount(t *testing.T) {
	half := NewDecimal64Fraction(1, 2).ToInternal()
	nine := AmountToDecimal(bigmath.U128FromUint64(9))
	product, err := nine.Mul(half)
	require.NoError(t, err)

	require.Equal(t, uint64(4), DecimalToAmount(product).Uint64())
	require.Equal(t, uint64(5), RoundDecimalToAmount(product).Uint64())
}
