// Copyright (c) 2025 The Stableswap Authors

// Package amp implements the amplification-factor ramp schedule: a
// governance-controlled linear interpolation of the pool's amp factor
// between a start value and a target value over a bounded time window.
// This is not in spec.md's distilled core, but it is how every
// stableswap deployment in the retrieved corpus actually changes A in
// production rather than snapping it instantaneously (a sudden A change
// moves the invariant discontinuously and is exploitable); see
// SPEC_FULL.md §4.
package amp

import (
	"fmt"

	"github.com/luxfi/stableswap/decimal"
)

// MinAmp and MaxAmp bound every value a Schedule may ramp between.
// spec.md §9 notes A is typically kept well under 10^6 in production;
// this package enforces that ceiling rather than merely documenting it.
const (
	MinAmp uint64 = 1
	MaxAmp uint64 = 1_000_000

	// MaxAmpChangeFactor caps how far a single ramp may move A, relative
	// to its starting value, in either direction. Curve-style pools
	// apply the same guard to stop a ramp from being used to yank the
	// invariant's curvature out from under liquidity providers.
	MaxAmpChangeFactor = 10

	// MinRampDuration is the shortest window a ramp may span.
	MinRampDuration = 86400 // one day, in seconds
)

// ErrAmpOutOfRange is returned when a requested start or target amp
// falls outside [MinAmp, MaxAmp].
var ErrAmpOutOfRange = fmt.Errorf("amp: value must be between %d and %d", MinAmp, MaxAmp)

// ErrAmpChangeTooLarge is returned when target/start (or start/target)
// exceeds MaxAmpChangeFactor.
var ErrAmpChangeTooLarge = fmt.Errorf("amp: ramp exceeds %dx change limit", MaxAmpChangeFactor)

// ErrRampTooShort is returned when stopTime - startTime is below
// MinRampDuration.
var ErrRampTooShort = fmt.Errorf("amp: ramp window below %d seconds", MinRampDuration)

// ErrRampAlreadyActive is returned when a new ramp is requested while
// one is still in progress; governance must let the current ramp
// finish (or the pool must be stopped explicitly) before starting
// another.
var ErrRampAlreadyActive = fmt.Errorf("amp: a ramp is already in progress")

// Schedule is a pool's amp-factor ramp state: constant at startAmp
// before startTime, linearly interpolating to targetAmp by stopTime,
// and constant at targetAmp afterward.
type Schedule struct {
	StartAmp   uint64
	TargetAmp  uint64
	StartTime  int64
	StopTime   int64
}

// Constant returns a Schedule that never ramps, fixed at amp.
func Constant(amp uint64) (Schedule, error) {
	if amp < MinAmp || amp > MaxAmp {
		return Schedule{}, ErrAmpOutOfRange
	}
	return Schedule{StartAmp: amp, TargetAmp: amp, StartTime: 0, StopTime: 0}, nil
}

// StartRamp builds a new ramp from currentAmp to targetAmp, beginning
// at startTime and completing at stopTime, subject to the production
// guardrails MaxAmpChangeFactor and MinRampDuration impose.
func StartRamp(currentAmp, targetAmp uint64, startTime, stopTime int64) (Schedule, error) {
	if targetAmp < MinAmp || targetAmp > MaxAmp {
		return Schedule{}, ErrAmpOutOfRange
	}
	if stopTime-startTime < MinRampDuration {
		return Schedule{}, ErrRampTooShort
	}
	if targetAmp > currentAmp {
		if targetAmp > currentAmp*MaxAmpChangeFactor {
			return Schedule{}, ErrAmpChangeTooLarge
		}
	} else {
		if currentAmp > targetAmp*MaxAmpChangeFactor {
			return Schedule{}, ErrAmpChangeTooLarge
		}
	}
	return Schedule{
		StartAmp:  currentAmp,
		TargetAmp: targetAmp,
		StartTime: startTime,
		StopTime:  stopTime,
	}, nil
}

// AmpAt returns the schedule's amp factor at the given Unix time, as a
// whole number (the underlying invariant math only ever needs amp as an
// integer "A" per original_source/src/invariant.rs, widened to a
// Decimal64 by the caller via ToDecimal64).
func (s Schedule) AmpAt(now int64) uint64 {
	if s.StartAmp == s.TargetAmp || now <= s.StartTime {
		return s.StartAmp
	}
	if now >= s.StopTime {
		return s.TargetAmp
	}

	elapsed := now - s.StartTime
	total := s.StopTime - s.StartTime

	if s.TargetAmp > s.StartAmp {
		delta := s.TargetAmp - s.StartAmp
		return s.StartAmp + uint64(int64(delta)*elapsed/total)
	}
	delta := s.StartAmp - s.TargetAmp
	return s.StartAmp - uint64(int64(delta)*elapsed/total)
}

// ToDecimal64 widens a whole-number amp factor into the Decimal64 that
// stableswap.Params carries; stableswap converts it to a Decimal192
// before handing it to the invariant package's Newton solvers.
func ToDecimal64(amp uint64) decimal.Decimal64 {
	return decimal.NewDecimal64Fraction(amp, 1)
}

// StopRamp freezes the schedule at its current value as of now,
// collapsing it back into a Constant — the governance "stop ramp"
// escape hatch every Curve-style deployment exposes for emergencies.
func (s Schedule) StopRamp(now int64) Schedule {
	frozen := s.AmpAt(now)
	return Schedule{StartAmp: frozen, TargetAmp: frozen, StartTime: 0, StopTime: 0}
}
