// Copyright (c) 2025 The Stableswap Authors

// Package bigmath implements the unsigned wide-integer arithmetic the
// invariant engine is built on: U128 for token amounts and pool state,
// U192 for the wider intermediates the Newton solvers need. Both are
// backed by github.com/holiman/uint256's 256-bit limb representation so
// the two types share one overflow-checked multiply/divide
// implementation instead of two hand-rolled multi-word ones.
package bigmath

import (
	"fmt"

	"github.com/holiman/uint256"
)

// U128 is an unsigned 128-bit integer. All pool balances, transfer
// amounts, and LP supply figures are U128 (data model §3: Amount).
type U128 struct {
	v uint256.Int
}

var maxU128 = func() uint256.Int {
	var m uint256.Int
	m.SetAllOne()
	m.Rsh(&m, 128)
	return m
}()

// ZeroU128 is the additive identity.
var ZeroU128 = U128{}

// U128FromUint64 widens a uint64 exactly; this can never overflow.
func U128FromUint64(v uint64) U128 {
	var u U128
	u.v.SetUint64(v)
	return u
}

// U128FromDecimalString parses a base-10 string into a U128, rejecting
// anything that does not fit in 128 bits.
func U128FromDecimalString(s string) (U128, error) {
	var u U128
	if err := u.v.SetFromDecimal(s); err != nil {
		return U128{}, fmt.Errorf("bigmath: invalid decimal %q: %w", s, err)
	}
	if u.v.Gt(&maxU128) {
		return U128{}, fmt.Errorf("%w: %s exceeds 128 bits", ErrArithmeticOverflow, s)
	}
	return u, nil
}

// IsZero reports whether the value is zero.
func (a U128) IsZero() bool { return a.v.IsZero() }

// Cmp compares a and b the way bytes.Compare does: -1, 0, 1.
func (a U128) Cmp(b U128) int { return a.v.Cmp(&b.v) }

// Lt, Gt, Lte, Gte are readability wrappers around Cmp, matching the
// comparison helpers the teacher repo defines on its own wide types.
func (a U128) Lt(b U128) bool  { return a.v.Lt(&b.v) }
func (a U128) Gt(b U128) bool  { return a.v.Gt(&b.v) }
func (a U128) Lte(b U128) bool { return !a.v.Gt(&b.v) }
func (a U128) Gte(b U128) bool { return !a.v.Lt(&b.v) }

// Add returns a+b, failing with ErrArithmeticOverflow if the result does
// not fit in 128 bits.
func (a U128) Add(b U128) (U128, error) {
	var out U128
	if out.v.AddOverflow(&a.v, &b.v) {
		return U128{}, fmt.Errorf("%w: %s + %s", ErrArithmeticOverflow, a, b)
	}
	if out.v.Gt(&maxU128) {
		return U128{}, fmt.Errorf("%w: %s + %s", ErrArithmeticOverflow, a, b)
	}
	return out, nil
}

// Sub returns a-b, failing if b > a (balances and supply never go
// negative).
func (a U128) Sub(b U128) (U128, error) {
	if a.v.Lt(&b.v) {
		return U128{}, fmt.Errorf("%w: %s - %s underflows", ErrArithmeticOverflow, a, b)
	}
	var out U128
	out.v.Sub(&a.v, &b.v)
	return out, nil
}

// Mul returns a*b, failing if the product does not fit in 128 bits.
func (a U128) Mul(b U128) (U128, error) {
	var out U128
	if out.v.MulOverflow(&a.v, &b.v) {
		return U128{}, fmt.Errorf("%w: %s * %s", ErrArithmeticOverflow, a, b)
	}
	if out.v.Gt(&maxU128) {
		return U128{}, fmt.Errorf("%w: %s * %s", ErrArithmeticOverflow, a, b)
	}
	return out, nil
}

// Div performs truncated integer division. Division by zero is a
// programmer error in this engine (every divisor here is derived from a
// non-zero pool parameter that callers must validate), so it panics the
// way a native integer division by zero would.
func (a U128) Div(b U128) U128 {
	if b.IsZero() {
		panic("bigmath: division by zero")
	}
	var out U128
	out.v.Div(&a.v, &b.v)
	return out
}

// RoundedDiv computes (a + b/2) / b with truncated integer division,
// i.e. round-to-nearest instead of round-down. This is the conversion
// spec.md §4.1 requires whenever a decimal intermediate becomes an
// Amount.
func (a U128) RoundedDiv(b U128) U128 {
	if b.IsZero() {
		panic("bigmath: division by zero")
	}
	half := b.Div(U128FromUint64(2))
	num, err := a.Add(half)
	if err != nil {
		// a+half cannot exceed 2*max(a,b); widen through U192 instead of
		// failing the common case.
		wide := a.ToU192()
		wideHalf := b.ToU192().Div(U192FromUint64(2))
		sum, addErr := wide.Add(wideHalf)
		if addErr != nil {
			panic(addErr)
		}
		return sum.Div(b.ToU192()).ToU128Saturating()
	}
	return num.Div(b)
}

// ToU192 exactly widens a U128 into a U192.
func (a U128) ToU192() U192 {
	return U192{v: a.v}
}

// Uint64 returns the low 64 bits, intended for values already known to
// fit (token counts N, small constants).
func (a U128) Uint64() uint64 { return a.v.Uint64() }

// Float64 is a best-effort, lossy conversion used only to seed Newton
// iteration; precision lost here is always recovered by the exact
// refinement phase that follows.
func (a U128) Float64() float64 {
	return a.v.Float64()
}

func (a U128) String() string { return a.v.Dec() }

// Bytes32 encodes a as a big-endian 32-byte word, for callers that need
// to place a U128 into a fixed-width storage slot (e.g. an EVM storage
// word, which is wider than the 128 bits this type ever uses).
func (a U128) Bytes32() [32]byte {
	return a.v.Bytes32()
}

// U128FromBytes32 decodes a big-endian 32-byte word produced by
// Bytes32. It rejects words whose upper 128 bits are non-zero, since
// those cannot have come from a valid U128.
func U128FromBytes32(b [32]byte) (U128, error) {
	var u U128
	u.v.SetBytes(b[:])
	if u.v.Gt(&maxU128) {
		return U128{}, fmt.Errorf("%w: word exceeds 128 bits", ErrArithmeticOverflow)
	}
	return u, nil
}
