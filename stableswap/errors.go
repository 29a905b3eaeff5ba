// Copyright (c) 2025 The Stableswap Authors

// Package stableswap composes the Newton solvers in package invariant
// into the pool-level operations a caller actually invokes: Add,
// SwapExactInput, SwapExactOutput, RemoveExactBurn, RemoveExactOutput,
// and RemoveProportional. spec.md §4.4.
package stableswap

import "errors"

// ErrTokenCountMismatch is returned when a balances/amounts slice does
// not have exactly Pool.N entries.
var ErrTokenCountMismatch = errors.New("stableswap: balance slice length does not match pool token count")

// ErrIndexOutOfRange is returned when a token index argument falls
// outside [0, N).
var ErrIndexOutOfRange = errors.New("stableswap: token index out of range")

// ErrZeroAmount is returned when an operation that requires a positive
// amount (an add contribution, a swap input) is given zero.
var ErrZeroAmount = errors.New("stableswap: amount must be positive")

// ErrEmptyPoolBadInput is returned when the very first add to an empty
// pool (lp_supply == 0) supplies a zero balance for any token — the
// initial deposit must establish every reserve, or the invariant is
// undefined from the first balance onward.
var ErrEmptyPoolBadInput = errors.New("stableswap: initial deposit must fund every token")

// ErrInvalidPreviousDepth is returned when an operation that needs the
// pool's prior invariant value is invoked with lp_supply > 0 but a zero
// previous_depth — an inconsistent pool state no legitimate caller
// should be able to produce.
var ErrInvalidPreviousDepth = errors.New("stableswap: non-empty pool has zero previous depth")

// ErrInvalidFee is returned when lp_fee or governance_fee falls outside
// [0, 1) or their sum reaches or exceeds 1.
var ErrInvalidFee = errors.New("stableswap: fee out of range")

// ErrImpossibleRemove is returned when a requested removal (by burn
// amount or by exact output) would take one or more pool balances below
// the fee that removal itself would charge, or below zero outright.
var ErrImpossibleRemove = errors.New("stableswap: requested removal exceeds available balance")

// ErrInsufficientBurn reports a burn amount too small to cover the LP
// value of the requested outputs plus fees. No operation in this package
// returns it: RemoveExactOutput takes no burn amount and computes the
// LP amount to burn itself.
var ErrInsufficientBurn = errors.New("stableswap: burn amount insufficient for requested output")
