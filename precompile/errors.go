// Copyright (c) 2025 The Stableswap Authors

// Package precompile adapts the pure stableswap engine into an
// EVM-precompile-shaped entrypoint: account storage keyed by pool ID,
// a governance authority check, a pause flag, and a gas-cost table per
// instruction — the Go-idiomatic reading of the original Solana
// program's account layout and instruction dispatch, grounded on the
// teacher's own singleton-precompile PoolManager. SPEC_FULL.md §4.
package precompile

import "errors"

// ErrPoolNotFound is returned when an instruction references a pool ID
// with no registered account.
var ErrPoolNotFound = errors.New("precompile: pool not found")

// ErrPoolAlreadyExists is returned when CreatePool is called with
// parameters that hash to an already-registered pool ID.
var ErrPoolAlreadyExists = errors.New("precompile: pool already exists")

// ErrPoolPaused is returned when an instruction other than governance
// maintenance (SetPaused, RampAmp, StopRampAmp) is invoked against a
// paused pool.
var ErrPoolPaused = errors.New("precompile: pool is paused")

// ErrUnauthorized is returned when a governance-only instruction is
// invoked by an address other than the pool's governance authority.
var ErrUnauthorized = errors.New("precompile: caller is not the governance authority")
