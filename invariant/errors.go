// Copyright (c) 2025 The Stableswap Authors

// Package invariant implements the two Newton iterations the stableswap
// engine is built on: ComputeDepth, which solves the pool's polynomial
// for the invariant value D, and ComputeUnknownBalance, its companion
// that solves for a single missing reserve given D and the rest. Both
// are pure functions of their inputs; see spec.md §4.2 and §4.3.
package invariant

import "errors"

// ErrInvariantCalculationFailed is returned when ComputeDepth exhausts
// its iteration cap without converging — a defensive backstop that, per
// spec.md §4.2, should never actually fire for N ≤ 6 and A ≤ 10^6.
var ErrInvariantCalculationFailed = errors.New("invariant: depth calculation did not converge")

// ErrUnknownBalanceCalculationFailed is the symmetric failure for
// ComputeUnknownBalance.
var ErrUnknownBalanceCalculationFailed = errors.New("invariant: unknown balance calculation did not converge")
