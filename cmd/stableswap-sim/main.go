// Copyright (c) 2025 The Stableswap Authors

// Command stableswap-sim drives the stableswap engine from a JSON pool
// description on the command line: it applies one requested operation
// and prints the resulting pool state. It exists to exercise the engine
// end-to-end outside of tests, the same role a teacher-style
// cmd/validator-cli demo binary plays for its own engine — plain flag
// parsing and encoding/json, no cobra/viper, since a one-command demo
// CLI has nothing for either to manage. SPEC_FULL.md §1.3.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/luxfi/stableswap/amp"
	"github.com/luxfi/stableswap/bigmath"
	"github.com/luxfi/stableswap/decimal"
	"github.com/luxfi/stableswap/stableswap"
	"github.com/luxfi/stableswap/telemetry"
)

// poolSpec is the JSON shape a pool description file takes.
type poolSpec struct {
	Balances      []string `json:"balances"`
	Amp           uint64   `json:"amp"`
	LpFeeBps      uint64   `json:"lp_fee_bps"`
	GovernanceBps uint64   `json:"governance_fee_bps"`
	LpSupply      string   `json:"lp_supply"`
	PreviousDepth string   `json:"previous_depth"`
}

type opResult struct {
	Balances       []string `json:"balances"`
	NewDepth       string   `json:"new_depth"`
	NewLpSupply    string   `json:"new_lp_supply"`
	UserLpDelta    string   `json:"user_lp_delta,omitempty"`
	GovernanceMint string   `json:"governance_mint,omitempty"`
	InputAmount    string   `json:"input_amount,omitempty"`
	OutputAmount   string   `json:"output_amount,omitempty"`
}

func main() {
	poolFile := flag.String("pool", "", "path to a JSON pool description")
	op := flag.String("op", "add", "operation: add, swap-in, swap-out, remove-burn, remove-output, remove-proportional")
	amount := flag.String("amount", "0", "amount argument for the operation (input/output/burn amount)")
	index := flag.Int("index", 0, "token index argument (input token for add/swap-in/swap-out, output token for remove-output)")
	outputIndex := flag.Int("output-index", 1, "output token index, for swap-in/swap-out/remove-burn")
	flag.Parse()

	if err := run(*poolFile, *op, *amount, *index, *outputIndex); err != nil {
		fmt.Fprintln(os.Stderr, "stableswap-sim:", err)
		os.Exit(1)
	}
}

func run(poolFile, op, amountStr string, index, outputIndex int) error {
	logger, err := telemetry.New()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	if poolFile == "" {
		return fmt.Errorf("-pool is required")
	}
	raw, err := os.ReadFile(poolFile)
	if err != nil {
		return fmt.Errorf("reading pool file: %w", err)
	}
	var spec poolSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return fmt.Errorf("parsing pool file: %w", err)
	}

	params, n, err := paramsFromSpec(spec)
	if err != nil {
		return fmt.Errorf("invalid pool spec: %w", err)
	}
	amount, err := bigmath.U128FromDecimalString(amountStr)
	if err != nil {
		return fmt.Errorf("invalid -amount: %w", err)
	}

	logger.Info("running operation", zap.String("op", op), zap.Int("n", n))

	pool := stableswap.New(n)
	var result stableswap.OperationResult

	switch op {
	case "add":
		inputs := make([]bigmath.U128, n)
		inputs[index] = amount
		result, err = pool.Add(inputs, params)
	case "swap-in":
		result, err = pool.SwapExactInput(index, outputIndex, amount, params)
	case "swap-out":
		result, err = pool.SwapExactOutput(index, outputIndex, amount, params)
	case "remove-burn":
		result, err = pool.RemoveExactBurn(amount, outputIndex, params)
	case "remove-output":
		outputs := make([]bigmath.U128, n)
		outputs[index] = amount
		result, err = pool.RemoveExactOutput(outputs, params)
	case "remove-proportional":
		result, err = pool.RemoveProportional(amount, params)
	default:
		return fmt.Errorf("unknown -op %q", op)
	}
	if err != nil {
		logger.Error("operation failed", zap.Error(err))
		return err
	}

	return printResult(result)
}

func paramsFromSpec(spec poolSpec) (stableswap.Params, int, error) {
	n := len(spec.Balances)
	if n < 2 {
		return stableswap.Params{}, 0, fmt.Errorf("pool must have at least 2 balances")
	}
	balances := make([]bigmath.U128, n)
	for i, b := range spec.Balances {
		amt, err := bigmath.U128FromDecimalString(b)
		if err != nil {
			return stableswap.Params{}, 0, fmt.Errorf("balances[%d]: %w", i, err)
		}
		balances[i] = amt
	}
	lpSupply, err := parseOrZero(spec.LpSupply)
	if err != nil {
		return stableswap.Params{}, 0, fmt.Errorf("lp_supply: %w", err)
	}
	previousDepth, err := parseOrZero(spec.PreviousDepth)
	if err != nil {
		return stableswap.Params{}, 0, fmt.Errorf("previous_depth: %w", err)
	}

	schedule, err := amp.Constant(spec.Amp)
	if err != nil {
		return stableswap.Params{}, 0, err
	}

	return stableswap.Params{
		Balances:      balances,
		Amp:           amp.ToDecimal64(schedule.AmpAt(0)),
		LpFee:         decimal.NewDecimal64Fraction(spec.LpFeeBps, 10_000),
		GovernanceFee: decimal.NewDecimal64Fraction(spec.GovernanceBps, 10_000),
		LpSupply:      lpSupply,
		PreviousDepth: previousDepth,
	}, n, nil
}

func parseOrZero(s string) (bigmath.U128, error) {
	if s == "" {
		return bigmath.ZeroU128, nil
	}
	return bigmath.U128FromDecimalString(s)
}

func printResult(result stableswap.OperationResult) error {
	out := opResult{
		NewDepth:    result.NewDepth.String(),
		NewLpSupply: result.NewLpSupply.String(),
	}
	for _, b := range result.Balances {
		out.Balances = append(out.Balances, b.String())
	}
	if !result.UserLpDelta.IsZero() {
		out.UserLpDelta = result.UserLpDelta.String()
	}
	if !result.GovernanceMint.IsZero() {
		out.GovernanceMint = result.GovernanceMint.String()
	}
	if !result.InputAmount.IsZero() {
		out.InputAmount = result.InputAmount.String()
	}
	if !result.OutputAmount.IsZero() {
		out.OutputAmount = result.OutputAmount.String()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
