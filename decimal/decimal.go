// Copyright (c) 2025 The Stableswap Authors

// Package decimal implements the two fixed-point decimal types the
// invariant engine is built on: Decimal64, used at the API boundary for
// fees and the amp factor, and Decimal192, used internally by the
// Newton solvers for the depth invariant and its intermediates.
//
// Both types carry an explicit scale (decimal-point position, spec.md
// §4.1) but this package only ever constructs and combines values at
// one canonical scale per type — InternalScale for Decimal192,
// APIScale for Decimal64 — the same convention the teacher's
// RAY-denominated fixed-point math (dex/interest_rate.go, RAY = 1e18)
// uses: a single shared scale rather than a dynamic one per value.
// Decimal64.Add rejects mismatched scales; Decimal192's Add/Sub align
// both operands to the finer of the two scales. Mul/Div of two
// canonical-scale values return a value back at the canonical scale.
package decimal

import (
	"fmt"

	"github.com/luxfi/stableswap/bigmath"
)

// InternalScale is the number of decimal digits Decimal192 carries.
// spec.md §4.1 requires decimals ≤ 28 for the internal type; 18 leaves
// ample headroom below that ceiling while matching the 1e18 "RAY" scale
// idiom the teacher repo uses for its own fixed-point rates.
const InternalScale = 18

// APIScale is the number of decimal digits Decimal64 carries. Fees are
// specified to 1e-9 granularity and amp factors (A ≤ 10^6 per spec.md
// §9) comfortably fit a uint64 mantissa at this scale.
const APIScale = 9

var pow10Internal = mustPow10U192(InternalScale)

func mustPow10U192(n uint8) bigmath.U192 {
	p, err := bigmath.U192FromUint64(10).ExpUint64(uint64(n))
	if err != nil {
		panic(err)
	}
	return p
}

var pow10API = func() uint64 {
	p := uint64(1)
	for i := uint8(0); i < APIScale; i++ {
		p *= 10
	}
	return p
}()

// Decimal64 is the 64-bit-mantissa decimal used at the API boundary:
// fees, the amp factor, and any other user-visible decimal.
type Decimal64 struct {
	Mantissa uint64
	Scale    uint8
}

// ZeroDecimal64 is 0 at APIScale.
var ZeroDecimal64 = Decimal64{Scale: APIScale}

// NewDecimal64Fraction builds a Decimal64 equal to numerator/denominator
// at APIScale, e.g. NewDecimal64Fraction(10, 100) == 0.10.
func NewDecimal64Fraction(numerator, denominator uint64) Decimal64 {
	return Decimal64{Mantissa: numerator * pow10API / denominator, Scale: APIScale}
}

// IsZero reports whether the value is zero.
func (d Decimal64) IsZero() bool { return d.Mantissa == 0 }

// Float64 converts to a native float, for human-readable logging only.
func (d Decimal64) Float64() float64 {
	scale := pow10Float(d.Scale)
	return float64(d.Mantissa) / scale
}

// ToInternal widens a Decimal64 into a Decimal192 at InternalScale,
// exactly (no precision is lost going from 9 to 18 decimal digits).
func (d Decimal64) ToInternal() Decimal192 {
	if d.Scale > InternalScale {
		panic("decimal: Decimal64 scale exceeds InternalScale")
	}
	factor := mustPow10U192(InternalScale - d.Scale)
	mantissa, err := bigmath.U192FromUint64(d.Mantissa).Mul(factor)
	if err != nil {
		panic(err) // a uint64 mantissa widened by at most 1e18 never overflows 256 bits
	}
	return Decimal192{Mantissa: mantissa, Scale: InternalScale}
}

// Add returns d+other. Both operands must already be at APIScale; this
// is an API-boundary convenience (fee + governance_fee), not a general
// rescaling add.
func (d Decimal64) Add(other Decimal64) (Decimal64, error) {
	if d.Scale != other.Scale {
		return Decimal64{}, fmt.Errorf("decimal: mismatched Decimal64 scales %d != %d", d.Scale, other.Scale)
	}
	sum := d.Mantissa + other.Mantissa
	if sum < d.Mantissa {
		return Decimal64{}, fmt.Errorf("%w: decimal64 add overflow", bigmath.ErrArithmeticOverflow)
	}
	return Decimal64{Mantissa: sum, Scale: d.Scale}, nil
}

// Lt reports d < other for same-scale operands.
func (d Decimal64) Lt(other Decimal64) bool {
	if d.Scale != other.Scale {
		panic("decimal: mismatched Decimal64 scales")
	}
	return d.Mantissa < other.Mantissa
}

func pow10Float(scale uint8) float64 {
	f := 1.0
	for i := uint8(0); i < scale; i++ {
		f *= 10
	}
	return f
}

// Decimal192 is the wide internal decimal: a bigmath.U192 mantissa plus
// an explicit scale. It is what the Newton solvers in package invariant
// iterate on, and what Depth is persisted as (before final narrowing to
// an Amount).
type Decimal192 struct {
	Mantissa bigmath.U192
	Scale    uint8
}

// ZeroDecimal192 is 0 at InternalScale.
var ZeroDecimal192 = Decimal192{Scale: InternalScale}

// OneDecimal192 is 1 at InternalScale.
var OneDecimal192 = Decimal192{Mantissa: pow10Internal, Scale: InternalScale}

// AmountToDecimal exactly widens a U128 Amount into a Decimal192 with a
// zero fractional part (spec.md §4.1: amount_to_decimal is exact
// widening).
func AmountToDecimal(a bigmath.U128) Decimal192 {
	mantissa, err := a.ToU192().Mul(pow10Internal)
	if err != nil {
		panic(err) // a U128 value scaled by 1e18 fits comfortably in 256 bits
	}
	return Decimal192{Mantissa: mantissa, Scale: InternalScale}
}

// DecimalToAmount truncates the fractional part and narrows to a U128.
// Matching original_source/src/invariant.rs's
// `decimal.to_u128().unwrap_or(0)`, an out-of-range (or, here, a
// would-be-negative-after-fee-subtraction) result is defensively
// reported as zero rather than as an error (spec.md §4.1).
func DecimalToAmount(d Decimal192) bigmath.U128 {
	whole := d.Mantissa.Div(mustPow10U192(d.Scale))
	amount, err := whole.ToU128Checked()
	if err != nil {
		return bigmath.ZeroU128
	}
	return amount
}

func (d Decimal192) IsZero() bool { return d.Mantissa.IsZero() }

// RoundDecimalToAmount narrows d to the nearest U128, unlike
// DecimalToAmount's truncation. Used for fee amounts (spec.md §4.4.5
// step 6: `round(fee_rate * taxbase)`), where truncation would
// systematically under-charge fees by up to one unit per operation.
func RoundDecimalToAmount(d Decimal192) bigmath.U128 {
	scaleFactor := mustPow10U192(d.Scale)
	rounded := d.Mantissa.RoundedDiv(scaleFactor)
	amount, err := rounded.ToU128Checked()
	if err != nil {
		return bigmath.ZeroU128
	}
	return amount
}

// rescale converts d to the given target scale, truncating digits if
// the target is coarser and panicking (a programmer error, never a data
// error) if it is finer than this package's canonical scales support.
func (d Decimal192) rescale(target uint8) Decimal192 {
	switch {
	case d.Scale == target:
		return d
	case d.Scale > target:
		factor := mustPow10U192(d.Scale - target)
		return Decimal192{Mantissa: d.Mantissa.Div(factor), Scale: target}
	default:
		factor := mustPow10U192(target - d.Scale)
		mantissa, err := d.Mantissa.Mul(factor)
		if err != nil {
			panic(err)
		}
		return Decimal192{Mantissa: mantissa, Scale: target}
	}
}

// Add returns d+other, rescaled to the coarser of the two scales'
// complement (i.e. the finer of the two, so no precision is discarded
// unnecessarily).
func (d Decimal192) Add(other Decimal192) (Decimal192, error) {
	scale := d.Scale
	if other.Scale > scale {
		scale = other.Scale
	}
	a, b := d.rescale(scale), other.rescale(scale)
	mantissa, err := a.Mantissa.Add(b.Mantissa)
	if err != nil {
		return Decimal192{}, err
	}
	return Decimal192{Mantissa: mantissa, Scale: scale}, nil
}

// Sub returns d-other. Fails (rather than silently clamping) if the
// result would be negative: callers that expect a possibly-negative
// difference (e.g. fee decomposition's ΔD_fee) must compare magnitudes
// themselves first, exactly like the Rust source's explicit
// debug_assert! ordering checks.
func (d Decimal192) Sub(other Decimal192) (Decimal192, error) {
	scale := d.Scale
	if other.Scale > scale {
		scale = other.Scale
	}
	a, b := d.rescale(scale), other.rescale(scale)
	mantissa, err := a.Mantissa.Sub(b.Mantissa)
	if err != nil {
		return Decimal192{}, err
	}
	return Decimal192{Mantissa: mantissa, Scale: scale}, nil
}

// Mul returns d*other truncated back to the coarser canonical scale of
// the two operands (the RAY-style rmul idiom: multiply mantissas, then
// divide out one scale factor).
func (d Decimal192) Mul(other Decimal192) (Decimal192, error) {
	scale := d.Scale
	if other.Scale < scale {
		scale = other.Scale
	}
	raw, err := d.Mantissa.Mul(other.Mantissa)
	if err != nil {
		return Decimal192{}, err
	}
	factor := mustPow10U192(d.Scale + other.Scale - scale)
	return Decimal192{Mantissa: raw.Div(factor), Scale: scale}, nil
}

// Div returns trunc(d/other) at d's scale (the RAY-style rdiv idiom:
// scale the dividend up before dividing so the quotient keeps d's
// precision). Division by a zero decimal panics, matching U192.Div.
func (d Decimal192) Div(other Decimal192) (Decimal192, error) {
	if other.IsZero() {
		panic("decimal: division by zero")
	}
	factor := mustPow10U192(other.Scale)
	scaledNumerator, err := d.Mantissa.Mul(factor)
	if err != nil {
		return Decimal192{}, err
	}
	return Decimal192{Mantissa: scaledNumerator.Div(other.Mantissa), Scale: d.Scale}, nil
}

// RoundedDiv returns round_nearest(d/other) at d's scale: (d + other/2)
// over other, instead of Div's truncation. Used by the unknown-balance
// solver, where each Newton step should round to the nearest integer
// unit rather than always rounding down (spec.md §4.3).
func (d Decimal192) RoundedDiv(other Decimal192) (Decimal192, error) {
	if other.IsZero() {
		panic("decimal: division by zero")
	}
	factor := mustPow10U192(other.Scale)
	scaledNumerator, err := d.Mantissa.Mul(factor)
	if err != nil {
		return Decimal192{}, err
	}
	return Decimal192{Mantissa: scaledNumerator.RoundedDiv(other.Mantissa), Scale: d.Scale}, nil
}

// Cmp compares d and other after aligning scales.
func (d Decimal192) Cmp(other Decimal192) int {
	scale := d.Scale
	if other.Scale > scale {
		scale = other.Scale
	}
	return d.rescale(scale).Mantissa.Cmp(other.rescale(scale).Mantissa)
}

func (d Decimal192) Lt(other Decimal192) bool { return d.Cmp(other) < 0 }
func (d Decimal192) Gt(other Decimal192) bool { return d.Cmp(other) > 0 }

// Pow raises d to a small non-negative integer power by repeated Mul.
// Used for N^N-style constants where N is at most a handful of tokens,
// so no square-and-multiply optimization is warranted.
func (d Decimal192) Pow(exp int) (Decimal192, error) {
	result := OneDecimal192.rescale(d.Scale)
	for i := 0; i < exp; i++ {
		var err error
		result, err = result.Mul(d)
		if err != nil {
			return Decimal192{}, err
		}
	}
	return result, nil
}

// ToFloat64 is a best-effort, lossy conversion used only to seed Newton
// iteration (spec.md §4.1, dec_to_f64); the exact decimal refinement
// phase that follows recovers any precision lost here.
func (d Decimal192) ToFloat64() float64 {
	return d.Mantissa.Float64() / pow10Float(d.Scale)
}

// Decimal192FromFloat64 converts an f64 Newton-iteration seed back into
// a Decimal192 at InternalScale. Values are expected non-negative; a
// negative input (which should never occur given the solver's
// invariants) is treated as 0, the same defensive posture
// DecimalToAmount takes on out-of-range values.
func Decimal192FromFloat64(f float64) Decimal192 {
	if f <= 0 {
		return ZeroDecimal192
	}
	scaled := f * pow10Float(InternalScale)
	u, err := bigmath.U192FromDecimalString(fmt.Sprintf("%.0f", scaled))
	if err != nil {
		// f64 magnitude exceeded what a U192 mantissa can hold; fall back
		// to an unscaled whole-number seed, which Phase 2 will still
		// converge from, just with a couple more iterations.
		whole, werr := bigmath.U128FromDecimalString(fmt.Sprintf("%.0f", f))
		if werr != nil {
			return ZeroDecimal192
		}
		return AmountToDecimal(whole)
	}
	return Decimal192{Mantissa: u, Scale: InternalScale}
}
