// Copyright (c) 2025 The Stableswap Authors

// Package telemetry wraps go.uber.org/zap behind a small interface so
// the precompile and cmd layers can log structured events without the
// pure math packages (bigmath, decimal, invariant, stableswap) taking a
// logging dependency of their own — those stay side-effect-free on
// purpose, per SPEC_FULL.md §1.
package telemetry

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the subset of *zap.Logger this module actually calls.
// Keeping it as an interface (rather than passing *zap.Logger directly)
// lets tests swap in a no-op implementation without pulling in zap's
// test observer.
type Logger interface {
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
}

type zapLogger struct {
	inner *zap.Logger
}

// New builds a production zap.Logger (JSON encoding, info level) and
// wraps it as a Logger.
func New() (Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{inner: z}, nil
}

// NewNop returns a Logger that discards everything, for tests and for
// library callers that don't want stableswap-sim's logging at all.
func NewNop() Logger {
	return &zapLogger{inner: zap.NewNop()}
}

func (l *zapLogger) Info(msg string, fields ...zap.Field)  { l.inner.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...zap.Field)  { l.inner.Warn(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...zap.Field) { l.inner.Error(msg, fields...) }

func (l *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{inner: l.inner.With(fields...)}
}
