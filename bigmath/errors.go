// Copyright (c) 2025 The Stableswap Authors

package bigmath

import "errors"

// ErrArithmeticOverflow is returned whenever a widening operation produces
// a value that no longer fits the destination type, even after promotion
// to the widest integer this package supports (256 bits).
var ErrArithmeticOverflow = errors.New("bigmath: arithmetic overflow")
