// Copyright (c) 2025 The Stableswap Authors

package precompile

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/luxfi/stableswap/amp"
	"github.com/luxfi/stableswap/bigmath"
	"github.com/luxfi/stableswap/decimal"
	"github.com/luxfi/stableswap/stableswap"
	"github.com/luxfi/stableswap/telemetry"
)

// PoolManager is the singleton registry of pool accounts, the
// precompile-shaped entrypoint every instruction below dispatches
// through. All pools live in this one manager, mirroring the teacher's
// own singleton PoolManager precompile rather than one contract
// instance per pool.
type PoolManager struct {
	mu     sync.RWMutex
	pools  map[PoolID]*PoolAccount
	logger telemetry.Logger
}

// NewPoolManager builds an empty registry. A nil logger is replaced
// with a no-op one.
func NewPoolManager(logger telemetry.Logger) *PoolManager {
	if logger == nil {
		logger = telemetry.NewNop()
	}
	return &PoolManager{
		pools:  make(map[PoolID]*PoolAccount),
		logger: logger,
	}
}

// makePoolID derives a pool's storage key from its token count,
// governance authority, and a creation salt, the same way the
// teacher's makeStorageKey folds a logical key into a storage slot via
// blake3.
func makePoolID(n int, governanceAuthority common.Address, salt uint64) PoolID {
	h := blake3.New()
	var nBuf [8]byte
	binary.BigEndian.PutUint64(nBuf[:], uint64(n))
	h.Write(nBuf[:])
	h.Write(governanceAuthority.Bytes())
	var saltBuf [8]byte
	binary.BigEndian.PutUint64(saltBuf[:], salt)
	h.Write(saltBuf[:])

	var id PoolID
	h.Digest().Read(id[:])
	return id
}

// CreatePool registers a new pool, funded by initialBalances, with a
// fixed (non-ramping) starting amp factor and the given fee split.
// The governance authority is the only address permitted to call
// SetPaused, RampAmp, or StopRampAmp on this pool afterward.
func (pm *PoolManager) CreatePool(n int, initialBalances []bigmath.U128, startAmp uint64, lpFee, governanceFee decimal.Decimal64, governanceAuthority common.Address, salt uint64) (PoolID, error) {
	if n < 2 {
		return PoolID{}, fmt.Errorf("precompile: pool requires at least 2 tokens, got %d", n)
	}
	if len(initialBalances) != n {
		return PoolID{}, fmt.Errorf("precompile: expected %d initial balances, got %d", n, len(initialBalances))
	}
	schedule, err := amp.Constant(startAmp)
	if err != nil {
		return PoolID{}, err
	}

	pool := stableswap.New(n)
	result, err := pool.Add(initialBalances, stableswap.Params{
		Balances:      make([]bigmath.U128, n),
		Amp:           amp.ToDecimal64(startAmp),
		LpFee:         lpFee,
		GovernanceFee: governanceFee,
		LpSupply:      bigmath.ZeroU128,
		PreviousDepth: bigmath.ZeroU128,
	})
	if err != nil {
		return PoolID{}, err
	}

	id := makePoolID(n, governanceAuthority, salt)

	pm.mu.Lock()
	defer pm.mu.Unlock()
	if _, exists := pm.pools[id]; exists {
		return PoolID{}, ErrPoolAlreadyExists
	}
	pm.pools[id] = &PoolAccount{
		N:                   n,
		Balances:            result.Balances,
		AmpSchedule:         schedule,
		LpFee:               lpFee,
		GovernanceFee:       governanceFee,
		LpSupply:            result.NewLpSupply,
		PreviousDepth:       result.NewDepth,
		GovernanceAuthority: governanceAuthority,
	}
	pm.logger.Info("pool created",
		zap.Int("n", n),
		zap.Uint64("start_amp", startAmp),
		zap.String("lp_supply", result.NewLpSupply.String()),
	)
	return id, nil
}

// lockedPool fetches a pool account for mutation, failing if it does
// not exist or (unless allowWhilePaused is set) is currently paused.
func (pm *PoolManager) lockedPool(id PoolID, allowWhilePaused bool) (*PoolAccount, error) {
	account, ok := pm.pools[id]
	if !ok {
		return nil, ErrPoolNotFound
	}
	if account.Paused && !allowWhilePaused {
		return nil, ErrPoolPaused
	}
	return account, nil
}

func (pm *PoolManager) paramsFor(account *PoolAccount, now int64) stableswap.Params {
	return stableswap.Params{
		Balances:      account.Balances,
		Amp:           amp.ToDecimal64(account.AmpSchedule.AmpAt(now)),
		LpFee:         account.LpFee,
		GovernanceFee: account.GovernanceFee,
		LpSupply:      account.LpSupply,
		PreviousDepth: account.PreviousDepth,
	}
}

func applyResult(account *PoolAccount, result stableswap.OperationResult) {
	account.Balances = result.Balances
	account.PreviousDepth = result.NewDepth
	account.LpSupply = result.NewLpSupply
}

// Add deposits inputs into the pool at id, minting LP tokens.
func (pm *PoolManager) Add(id PoolID, inputs []bigmath.U128, now int64) (stableswap.OperationResult, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	account, err := pm.lockedPool(id, false)
	if err != nil {
		return stableswap.OperationResult{}, err
	}
	pool := stableswap.New(account.N)
	result, err := pool.Add(inputs, pm.paramsFor(account, now))
	if err != nil {
		return stableswap.OperationResult{}, err
	}
	applyResult(account, result)
	return result, nil
}

// SwapExactInput exchanges an exact input amount for as much output as
// the pool at id allows, after fees.
func (pm *PoolManager) SwapExactInput(id PoolID, inputIndex, outputIndex int, inputAmount bigmath.U128, now int64) (stableswap.OperationResult, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	account, err := pm.lockedPool(id, false)
	if err != nil {
		return stableswap.OperationResult{}, err
	}
	pool := stableswap.New(account.N)
	result, err := pool.SwapExactInput(inputIndex, outputIndex, inputAmount, pm.paramsFor(account, now))
	if err != nil {
		return stableswap.OperationResult{}, err
	}
	applyResult(account, result)
	return result, nil
}

// SwapExactOutput exchanges as little input as necessary for an exact
// output amount from the pool at id, after fees.
func (pm *PoolManager) SwapExactOutput(id PoolID, inputIndex, outputIndex int, outputAmount bigmath.U128, now int64) (stableswap.OperationResult, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	account, err := pm.lockedPool(id, false)
	if err != nil {
		return stableswap.OperationResult{}, err
	}
	pool := stableswap.New(account.N)
	result, err := pool.SwapExactOutput(inputIndex, outputIndex, outputAmount, pm.paramsFor(account, now))
	if err != nil {
		return stableswap.OperationResult{}, err
	}
	applyResult(account, result)
	return result, nil
}

// RemoveExactBurn burns burnAmount of LP tokens, paying the withdrawer
// entirely in token outputIndex.
func (pm *PoolManager) RemoveExactBurn(id PoolID, burnAmount bigmath.U128, outputIndex int, now int64) (stableswap.OperationResult, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	account, err := pm.lockedPool(id, false)
	if err != nil {
		return stableswap.OperationResult{}, err
	}
	pool := stableswap.New(account.N)
	result, err := pool.RemoveExactBurn(burnAmount, outputIndex, pm.paramsFor(account, now))
	if err != nil {
		return stableswap.OperationResult{}, err
	}
	applyResult(account, result)
	return result, nil
}

// RemoveExactOutput withdraws exactly outputs[i] of every token,
// burning whatever LP amount that requires.
func (pm *PoolManager) RemoveExactOutput(id PoolID, outputs []bigmath.U128, now int64) (stableswap.OperationResult, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	account, err := pm.lockedPool(id, false)
	if err != nil {
		return stableswap.OperationResult{}, err
	}
	pool := stableswap.New(account.N)
	result, err := pool.RemoveExactOutput(outputs, pm.paramsFor(account, now))
	if err != nil {
		return stableswap.OperationResult{}, err
	}
	applyResult(account, result)
	return result, nil
}

// RemoveProportional burns burnAmount of LP tokens for a proportional
// share of every reserve, fee-free.
func (pm *PoolManager) RemoveProportional(id PoolID, burnAmount bigmath.U128, now int64) (stableswap.OperationResult, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	account, err := pm.lockedPool(id, false)
	if err != nil {
		return stableswap.OperationResult{}, err
	}
	pool := stableswap.New(account.N)
	result, err := pool.RemoveProportional(burnAmount, pm.paramsFor(account, now))
	if err != nil {
		return stableswap.OperationResult{}, err
	}
	applyResult(account, result)
	return result, nil
}

// SetPaused toggles a pool's pause flag. Governance-only.
func (pm *PoolManager) SetPaused(id PoolID, caller common.Address, paused bool) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	account, err := pm.lockedPool(id, true)
	if err != nil {
		return err
	}
	if account.GovernanceAuthority != caller {
		return ErrUnauthorized
	}
	account.Paused = paused
	pm.logger.Warn("pool pause flag changed", zap.Bool("paused", paused))
	return nil
}

// RampAmp begins ramping a pool's amp factor toward targetAmp over
// [startTime, stopTime]. Governance-only.
func (pm *PoolManager) RampAmp(id PoolID, caller common.Address, targetAmp uint64, startTime, stopTime int64, now int64) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	account, err := pm.lockedPool(id, true)
	if err != nil {
		return err
	}
	if account.GovernanceAuthority != caller {
		return ErrUnauthorized
	}
	if account.AmpSchedule.StartAmp != account.AmpSchedule.TargetAmp && now < account.AmpSchedule.StopTime {
		return amp.ErrRampAlreadyActive
	}
	currentAmp := account.AmpSchedule.AmpAt(now)
	schedule, err := amp.StartRamp(currentAmp, targetAmp, startTime, stopTime)
	if err != nil {
		return err
	}
	account.AmpSchedule = schedule
	pm.logger.Info("amp ramp started",
		zap.Uint64("from", currentAmp),
		zap.Uint64("to", targetAmp),
		zap.Int64("start_time", startTime),
		zap.Int64("stop_time", stopTime),
	)
	return nil
}

// StopRampAmp freezes a pool's amp factor at its current ramped value.
// Governance-only.
func (pm *PoolManager) StopRampAmp(id PoolID, caller common.Address, now int64) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	account, err := pm.lockedPool(id, true)
	if err != nil {
		return err
	}
	if account.GovernanceAuthority != caller {
		return ErrUnauthorized
	}
	account.AmpSchedule = account.AmpSchedule.StopRamp(now)
	pm.logger.Info("amp ramp stopped", zap.Uint64("frozen_at", account.AmpSchedule.TargetAmp))
	return nil
}

// Account returns a defensive copy of a pool's current state, for
// read-only inspection.
func (pm *PoolManager) Account(id PoolID) (*PoolAccount, error) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	account, ok := pm.pools[id]
	if !ok {
		return nil, ErrPoolNotFound
	}
	return account.clone(), nil
}
