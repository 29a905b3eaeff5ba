// Copyright (c) 2025 The Stableswap Authors

package stableswap

import (
	"fmt"

	"github.com/luxfi/stableswap/bigmath"
	"github.com/luxfi/stableswap/decimal"
	"github.com/luxfi/stableswap/invariant"
)

// Pool is a stableswap invariant engine for a fixed number of tokens.
// Go generics have no value-generic array length, so N is carried as a
// runtime field and every balances slice is validated against it rather
// than encoded in the type, the fallback spec.md §9 sanctions in place
// of the original's const-generic TOKEN_COUNT.
type Pool struct {
	N int
}

// New returns a Pool sized for n tokens. n must be at least 2.
func New(n int) Pool {
	if n < 2 {
		panic("stableswap: pool requires at least 2 tokens")
	}
	return Pool{N: n}
}

// Params bundles the pool state every operation reads: the current
// reserves, the amp factor, the fee split, and the LP accounting
// (lp_supply and previous_depth). Grouping these mirrors the teacher's
// own *Params structs (dex/types.go's SwapParams, ModifyLiquidityParams)
// rather than threading five scalars through every method signature.
type Params struct {
	Balances      []bigmath.U128
	Amp           decimal.Decimal64
	LpFee         decimal.Decimal64
	GovernanceFee decimal.Decimal64
	LpSupply      bigmath.U128
	PreviousDepth bigmath.U128
}

// OperationResult is the outcome of any Pool operation: the pool's new
// reserves and LP accounting, plus whichever of InputAmount/OutputAmount
// applies to the operation that produced it.
type OperationResult struct {
	Balances       []bigmath.U128
	NewDepth       bigmath.U128
	NewLpSupply    bigmath.U128
	UserLpDelta    bigmath.U128
	GovernanceMint bigmath.U128
	InputAmount    bigmath.U128
	OutputAmount   bigmath.U128
}

func (p Pool) validateBalances(balances []bigmath.U128) error {
	if len(balances) != p.N {
		return fmt.Errorf("%w: want %d, got %d", ErrTokenCountMismatch, p.N, len(balances))
	}
	return nil
}

func (p Pool) validateIndex(i int) error {
	if i < 0 || i >= p.N {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return nil
}

func validateFees(lpFee, governanceFee decimal.Decimal64) (decimal.Decimal64, error) {
	total, err := lpFee.Add(governanceFee)
	if err != nil {
		return decimal.Decimal64{}, fmt.Errorf("%w: %v", ErrInvalidFee, err)
	}
	one := decimal.NewDecimal64Fraction(1, 1)
	if !total.Lt(one) {
		return decimal.Decimal64{}, fmt.Errorf("%w: lp_fee+governance_fee must be < 1", ErrInvalidFee)
	}
	return total, nil
}

func copyBalances(balances []bigmath.U128) []bigmath.U128 {
	out := make([]bigmath.U128, len(balances))
	copy(out, balances)
	return out
}

// Add deposits inputs[i] of token i into the pool, minting LP tokens to
// the depositor. If the pool is empty (LpSupply == 0) every input must
// be positive and no fee is charged — the first deposit defines the
// pool's initial ratio outright, mirroring original_source/src/invariant.rs's
// treatment of the zero-supply case. spec.md §4.4.1.
func (p Pool) Add(inputs []bigmath.U128, params Params) (OperationResult, error) {
	if err := p.validateBalances(inputs); err != nil {
		return OperationResult{}, err
	}
	if err := p.validateBalances(params.Balances); err != nil {
		return OperationResult{}, err
	}
	if _, err := validateFees(params.LpFee, params.GovernanceFee); err != nil {
		return OperationResult{}, err
	}

	if params.LpSupply.IsZero() {
		for _, in := range inputs {
			if in.IsZero() {
				return OperationResult{}, ErrEmptyPoolBadInput
			}
		}
		depth, err := invariant.ComputeDepth(inputs, params.Amp.ToInternal(), decimal.ZeroDecimal192)
		if err != nil {
			return OperationResult{}, err
		}
		minted := decimal.DecimalToAmount(depth)
		return OperationResult{
			Balances:    copyBalances(inputs),
			NewDepth:    minted,
			NewLpSupply: minted,
			UserLpDelta: minted,
		}, nil
	}

	anyPositive := false
	updated := copyBalances(params.Balances)
	for i, in := range inputs {
		if !in.IsZero() {
			anyPositive = true
		}
		var err error
		updated[i], err = params.Balances[i].Add(in)
		if err != nil {
			return OperationResult{}, err
		}
	}
	if !anyPositive {
		return OperationResult{}, ErrZeroAmount
	}

	res, err := addRemove(params.Balances, updated, params.Amp, true, params.LpFee, params.GovernanceFee, params.LpSupply, params.PreviousDepth)
	if err != nil {
		return OperationResult{}, err
	}
	minted, err := res.lpSupplyBeforeGovernance.Sub(params.LpSupply)
	if err != nil {
		return OperationResult{}, err
	}
	finalSupply, err := res.lpSupplyBeforeGovernance.Add(res.governanceMint)
	if err != nil {
		return OperationResult{}, err
	}
	return OperationResult{
		Balances:       res.balances,
		NewDepth:       res.depth,
		NewLpSupply:    finalSupply,
		UserLpDelta:    minted,
		GovernanceMint: res.governanceMint,
	}, nil
}

// SwapExactInput exchanges an exact inputAmount of token inputIndex for
// as much of token outputIndex as the invariant allows, after fees.
// spec.md §4.4.2.
func (p Pool) SwapExactInput(inputIndex, outputIndex int, inputAmount bigmath.U128, params Params) (OperationResult, error) {
	if err := p.validateIndex(inputIndex); err != nil {
		return OperationResult{}, err
	}
	if err := p.validateIndex(outputIndex); err != nil {
		return OperationResult{}, err
	}
	if inputIndex == outputIndex {
		return OperationResult{}, fmt.Errorf("%w: input and output index must differ", ErrIndexOutOfRange)
	}
	if err := p.validateBalances(params.Balances); err != nil {
		return OperationResult{}, err
	}
	if inputAmount.IsZero() {
		return OperationResult{}, ErrZeroAmount
	}
	totalFee, err := validateFees(params.LpFee, params.GovernanceFee)
	if err != nil {
		return OperationResult{}, err
	}
	if params.PreviousDepth.IsZero() {
		return OperationResult{}, ErrInvalidPreviousDepth
	}

	updatedInput, err := params.Balances[inputIndex].Add(inputAmount)
	if err != nil {
		return OperationResult{}, err
	}

	known := knownBalancesExcluding(params.Balances, outputIndex, inputIndex, updatedInput)
	previousDepthDec := decimal.AmountToDecimal(params.PreviousDepth)
	idealOutputBalance, err := invariant.ComputeUnknownBalance(known, previousDepthDec, params.Amp.ToInternal(), params.Balances[outputIndex], p.N)
	if err != nil {
		return OperationResult{}, err
	}
	grossOutput, err := params.Balances[outputIndex].Sub(idealOutputBalance)
	if err != nil {
		return OperationResult{}, err
	}

	feeDec, err := totalFee.ToInternal().Mul(decimal.AmountToDecimal(grossOutput))
	if err != nil {
		return OperationResult{}, err
	}
	feeAmt := decimal.RoundDecimalToAmount(feeDec)
	if feeAmt.Gte(grossOutput) {
		return OperationResult{}, ErrImpossibleRemove
	}
	netOutput, err := grossOutput.Sub(feeAmt)
	if err != nil {
		return OperationResult{}, err
	}

	updated := copyBalances(params.Balances)
	updated[inputIndex] = updatedInput
	updated[outputIndex], err = params.Balances[outputIndex].Sub(netOutput)
	if err != nil {
		return OperationResult{}, err
	}

	newDepthDec, err := invariant.ComputeDepth(updated, params.Amp.ToInternal(), previousDepthDec)
	if err != nil {
		return OperationResult{}, err
	}
	deltaDFee, err := newDepthDec.Sub(previousDepthDec)
	if err != nil {
		return OperationResult{}, err
	}
	govMint, err := governanceMint(params.LpSupply, deltaDFee, params.GovernanceFee.ToInternal(), totalFee.ToInternal(), newDepthDec)
	if err != nil {
		return OperationResult{}, err
	}
	newLpSupply, err := params.LpSupply.Add(govMint)
	if err != nil {
		return OperationResult{}, err
	}

	return OperationResult{
		Balances:       updated,
		NewDepth:       decimal.DecimalToAmount(newDepthDec),
		NewLpSupply:    newLpSupply,
		GovernanceMint: govMint,
		InputAmount:    inputAmount,
		OutputAmount:   netOutput,
	}, nil
}

// SwapExactOutput exchanges as little as necessary of token inputIndex
// for an exact outputAmount of token outputIndex, after fees. spec.md
// §4.4.3.
func (p Pool) SwapExactOutput(inputIndex, outputIndex int, outputAmount bigmath.U128, params Params) (OperationResult, error) {
	if err := p.validateIndex(inputIndex); err != nil {
		return OperationResult{}, err
	}
	if err := p.validateIndex(outputIndex); err != nil {
		return OperationResult{}, err
	}
	if inputIndex == outputIndex {
		return OperationResult{}, fmt.Errorf("%w: input and output index must differ", ErrIndexOutOfRange)
	}
	if err := p.validateBalances(params.Balances); err != nil {
		return OperationResult{}, err
	}
	if outputAmount.IsZero() {
		return OperationResult{}, ErrZeroAmount
	}
	totalFee, err := validateFees(params.LpFee, params.GovernanceFee)
	if err != nil {
		return OperationResult{}, err
	}
	if params.PreviousDepth.IsZero() {
		return OperationResult{}, ErrInvalidPreviousDepth
	}

	complement, err := decimal.OneDecimal192.Sub(totalFee.ToInternal())
	if err != nil {
		return OperationResult{}, err
	}
	grossOutputDec, err := decimal.AmountToDecimal(outputAmount).RoundedDiv(complement)
	if err != nil {
		return OperationResult{}, err
	}
	grossOutput := decimal.RoundDecimalToAmount(grossOutputDec)
	idealOutputBalance, err := params.Balances[outputIndex].Sub(grossOutput)
	if err != nil {
		return OperationResult{}, ErrImpossibleRemove
	}

	known := knownBalancesExcluding(params.Balances, inputIndex, outputIndex, idealOutputBalance)
	previousDepthDec := decimal.AmountToDecimal(params.PreviousDepth)
	requiredInputBalance, err := invariant.ComputeUnknownBalance(known, previousDepthDec, params.Amp.ToInternal(), params.Balances[inputIndex], p.N)
	if err != nil {
		return OperationResult{}, err
	}
	inputAmount, err := requiredInputBalance.Sub(params.Balances[inputIndex])
	if err != nil {
		return OperationResult{}, err
	}

	updated := copyBalances(params.Balances)
	updated[inputIndex] = requiredInputBalance
	updated[outputIndex], err = params.Balances[outputIndex].Sub(outputAmount)
	if err != nil {
		return OperationResult{}, err
	}

	newDepthDec, err := invariant.ComputeDepth(updated, params.Amp.ToInternal(), previousDepthDec)
	if err != nil {
		return OperationResult{}, err
	}
	deltaDFee, err := newDepthDec.Sub(previousDepthDec)
	if err != nil {
		return OperationResult{}, err
	}
	govMint, err := governanceMint(params.LpSupply, deltaDFee, params.GovernanceFee.ToInternal(), totalFee.ToInternal(), newDepthDec)
	if err != nil {
		return OperationResult{}, err
	}
	newLpSupply, err := params.LpSupply.Add(govMint)
	if err != nil {
		return OperationResult{}, err
	}

	return OperationResult{
		Balances:       updated,
		NewDepth:       decimal.DecimalToAmount(newDepthDec),
		NewLpSupply:    newLpSupply,
		GovernanceMint: govMint,
		InputAmount:    inputAmount,
		OutputAmount:   outputAmount,
	}, nil
}

// RemoveExactBurn burns exactly burnAmount of LP tokens and pays the
// withdrawer entirely in token outputIndex, after fees. spec.md §4.4.4.
func (p Pool) RemoveExactBurn(burnAmount bigmath.U128, outputIndex int, params Params) (OperationResult, error) {
	if err := p.validateIndex(outputIndex); err != nil {
		return OperationResult{}, err
	}
	if err := p.validateBalances(params.Balances); err != nil {
		return OperationResult{}, err
	}
	if burnAmount.IsZero() {
		return OperationResult{}, ErrZeroAmount
	}
	totalFee, err := validateFees(params.LpFee, params.GovernanceFee)
	if err != nil {
		return OperationResult{}, err
	}
	if params.PreviousDepth.IsZero() {
		return OperationResult{}, ErrInvalidPreviousDepth
	}

	targetLpSupply, err := params.LpSupply.Sub(burnAmount)
	if err != nil {
		return OperationResult{}, fmt.Errorf("%w: %v", ErrImpossibleRemove, err)
	}

	survivingFraction, err := decimal.AmountToDecimal(targetLpSupply).Div(decimal.AmountToDecimal(params.LpSupply))
	if err != nil {
		return OperationResult{}, err
	}
	targetDepthDec, err := decimal.AmountToDecimal(params.PreviousDepth).Mul(survivingFraction)
	if err != nil {
		return OperationResult{}, err
	}

	known := knownBalancesExcluding(params.Balances, outputIndex, -1, bigmath.U128{})
	idealBalance, err := invariant.ComputeUnknownBalance(known, targetDepthDec, params.Amp.ToInternal(), params.Balances[outputIndex], p.N)
	if err != nil {
		return OperationResult{}, err
	}
	grossWithdrawal, err := params.Balances[outputIndex].Sub(idealBalance)
	if err != nil {
		return OperationResult{}, ErrImpossibleRemove
	}

	feeDec, err := totalFee.ToInternal().Mul(decimal.AmountToDecimal(grossWithdrawal))
	if err != nil {
		return OperationResult{}, err
	}
	feeAmt := decimal.RoundDecimalToAmount(feeDec)
	if feeAmt.Gte(grossWithdrawal) {
		return OperationResult{}, ErrImpossibleRemove
	}
	netOutput, err := grossWithdrawal.Sub(feeAmt)
	if err != nil {
		return OperationResult{}, err
	}

	updated := copyBalances(params.Balances)
	updated[outputIndex], err = params.Balances[outputIndex].Sub(netOutput)
	if err != nil {
		return OperationResult{}, err
	}

	newDepthDec, err := invariant.ComputeDepth(updated, params.Amp.ToInternal(), targetDepthDec)
	if err != nil {
		return OperationResult{}, err
	}
	deltaDFee, err := newDepthDec.Sub(targetDepthDec)
	if err != nil {
		return OperationResult{}, err
	}
	govMint, err := governanceMint(targetLpSupply, deltaDFee, params.GovernanceFee.ToInternal(), totalFee.ToInternal(), newDepthDec)
	if err != nil {
		return OperationResult{}, err
	}
	finalLpSupply, err := targetLpSupply.Add(govMint)
	if err != nil {
		return OperationResult{}, err
	}

	return OperationResult{
		Balances:       updated,
		NewDepth:       decimal.DecimalToAmount(newDepthDec),
		NewLpSupply:    finalLpSupply,
		UserLpDelta:    burnAmount,
		GovernanceMint: govMint,
		OutputAmount:   netOutput,
	}, nil
}

// RemoveExactOutput withdraws exactly outputs[i] of each token i,
// burning whatever LP amount that imbalanced withdrawal requires.
// spec.md §4.4. Unlike RemoveExactBurn's single-token solve, an
// arbitrary multi-token withdrawal pattern routes through the same
// forward addRemove computation Add uses.
func (p Pool) RemoveExactOutput(outputs []bigmath.U128, params Params) (OperationResult, error) {
	if err := p.validateBalances(outputs); err != nil {
		return OperationResult{}, err
	}
	if err := p.validateBalances(params.Balances); err != nil {
		return OperationResult{}, err
	}
	if _, err := validateFees(params.LpFee, params.GovernanceFee); err != nil {
		return OperationResult{}, err
	}
	if params.PreviousDepth.IsZero() {
		return OperationResult{}, ErrInvalidPreviousDepth
	}

	anyPositive := false
	updated := copyBalances(params.Balances)
	for i, out := range outputs {
		if !out.IsZero() {
			anyPositive = true
		}
		var err error
		updated[i], err = params.Balances[i].Sub(out)
		if err != nil {
			return OperationResult{}, ErrImpossibleRemove
		}
	}
	if !anyPositive {
		return OperationResult{}, ErrZeroAmount
	}

	res, err := addRemove(params.Balances, updated, params.Amp, false, params.LpFee, params.GovernanceFee, params.LpSupply, params.PreviousDepth)
	if err != nil {
		return OperationResult{}, err
	}
	burned, err := params.LpSupply.Sub(res.lpSupplyBeforeGovernance)
	if err != nil {
		return OperationResult{}, fmt.Errorf("%w: %v", ErrImpossibleRemove, err)
	}
	finalSupply, err := res.lpSupplyBeforeGovernance.Add(res.governanceMint)
	if err != nil {
		return OperationResult{}, err
	}
	return OperationResult{
		Balances:       res.balances,
		NewDepth:       res.depth,
		NewLpSupply:    finalSupply,
		UserLpDelta:    burned,
		GovernanceMint: res.governanceMint,
	}, nil
}

// RemoveProportional burns burnAmount of LP tokens and returns the
// corresponding share of every reserve, unchanged in ratio. A perfectly
// proportional withdrawal introduces no imbalance, so no fee applies —
// every taxbase entry an addRemove-style computation would produce is
// zero here by construction, so this op skips that machinery entirely.
// spec.md §4.4 (supplemental operation; see SPEC_FULL.md §4).
func (p Pool) RemoveProportional(burnAmount bigmath.U128, params Params) (OperationResult, error) {
	if err := p.validateBalances(params.Balances); err != nil {
		return OperationResult{}, err
	}
	if burnAmount.IsZero() {
		return OperationResult{}, ErrZeroAmount
	}
	if params.LpSupply.IsZero() || burnAmount.Gt(params.LpSupply) {
		return OperationResult{}, ErrImpossibleRemove
	}

	newLpSupply, err := params.LpSupply.Sub(burnAmount)
	if err != nil {
		return OperationResult{}, err
	}
	burnFraction, err := decimal.AmountToDecimal(burnAmount).Div(decimal.AmountToDecimal(params.LpSupply))
	if err != nil {
		return OperationResult{}, err
	}

	outputs := make([]bigmath.U128, p.N)
	updated := make([]bigmath.U128, p.N)
	for i, bal := range params.Balances {
		share, err := decimal.AmountToDecimal(bal).Mul(burnFraction)
		if err != nil {
			return OperationResult{}, err
		}
		outputs[i] = decimal.DecimalToAmount(share)
		updated[i], err = bal.Sub(outputs[i])
		if err != nil {
			return OperationResult{}, err
		}
	}

	newDepthDec, err := invariant.ComputeDepth(updated, params.Amp.ToInternal(), decimal.AmountToDecimal(params.PreviousDepth))
	if err != nil {
		return OperationResult{}, err
	}

	return OperationResult{
		Balances:    updated,
		NewDepth:    decimal.DecimalToAmount(newDepthDec),
		NewLpSupply: newLpSupply,
		UserLpDelta: burnAmount,
	}, nil
}

// addRemoveResult is the shared outcome of an addRemove computation,
// before the caller decides whether the LP-supply change it describes
// is a mint (Add) or a burn (RemoveExactOutput).
type addRemoveResult struct {
	balances                 []bigmath.U128
	depth                    bigmath.U128
	lpSupplyBeforeGovernance bigmath.U128
	governanceMint           bigmath.U128
}

// addRemove is the forward computation shared by Add and
// RemoveExactOutput: given the pool's balances before and after an
// arbitrary (possibly imbalanced) per-token change, it computes the
// resulting depth, charges a fee on whatever part of the change
// deviates from a perfectly proportional one, and reports the LP-supply
// adjustment and governance mint that change implies. spec.md §4.4.5.
func addRemove(balancesBefore, updated []bigmath.U128, amp decimal.Decimal64, isAdd bool, lpFee, governanceFee decimal.Decimal64, lpSupply, previousDepth bigmath.U128) (addRemoveResult, error) {
	if previousDepth.IsZero() {
		return addRemoveResult{}, ErrInvalidPreviousDepth
	}
	ampInternal := amp.ToInternal()
	previousDepthDec := decimal.AmountToDecimal(previousDepth)

	dUpdated, err := invariant.ComputeDepth(updated, ampInternal, previousDepthDec)
	if err != nil {
		return addRemoveResult{}, err
	}
	depthRatio, err := dUpdated.Div(previousDepthDec)
	if err != nil {
		return addRemoveResult{}, err
	}

	tax, err := taxbase(balancesBefore, updated, depthRatio)
	if err != nil {
		return addRemoveResult{}, err
	}

	totalFee, err := lpFee.Add(governanceFee)
	if err != nil {
		return addRemoveResult{}, err
	}
	feeRate, err := feeRateForDirection(totalFee.ToInternal(), isAdd)
	if err != nil {
		return addRemoveResult{}, err
	}

	adjusted, _, err := applyFees(updated, tax, feeRate)
	if err != nil {
		return addRemoveResult{}, err
	}

	dPostFee, err := invariant.ComputeDepth(adjusted, ampInternal, dUpdated)
	if err != nil {
		return addRemoveResult{}, err
	}
	deltaDFee, err := dUpdated.Sub(dPostFee)
	if err != nil {
		return addRemoveResult{}, err
	}

	newLpSupply, err := scaleLpSupply(lpSupply, previousDepth, dPostFee)
	if err != nil {
		return addRemoveResult{}, err
	}
	govMint, err := governanceMint(lpSupply, deltaDFee, governanceFee.ToInternal(), totalFee.ToInternal(), dPostFee)
	if err != nil {
		return addRemoveResult{}, err
	}

	return addRemoveResult{
		balances:                 adjusted,
		depth:                    decimal.DecimalToAmount(dPostFee),
		lpSupplyBeforeGovernance: newLpSupply,
		governanceMint:           govMint,
	}, nil
}

// knownBalancesExcluding builds the slice invariant.ComputeUnknownBalance
// expects: every balance except the one at excludeIndex, in ascending
// index order. If overrideIndex is non-negative, that single entry is
// replaced by overrideValue before exclusion is applied — used to swap
// in an already-updated input leg without mutating the caller's slice.
func knownBalancesExcluding(balances []bigmath.U128, excludeIndex, overrideIndex int, overrideValue bigmath.U128) []bigmath.U128 {
	known := make([]bigmath.U128, 0, len(balances)-1)
	for i, b := range balances {
		if i == excludeIndex {
			continue
		}
		if i == overrideIndex {
			b = overrideValue
		}
		known = append(known, b)
	}
	return known
}

