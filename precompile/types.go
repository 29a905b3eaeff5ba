// Copyright (c) 2025 The Stableswap Authors

package precompile

import (
	"github.com/luxfi/geth/common"

	"github.com/luxfi/stableswap/amp"
	"github.com/luxfi/stableswap/bigmath"
	"github.com/luxfi/stableswap/decimal"
)

// Gas costs per instruction, mirroring the teacher's own per-operation
// gas table (dex/types.go's GasSwap, GasAddLiquidity, ...). Values are
// illustrative starting points for an EVM host to charge against, not a
// tuned production schedule.
const (
	GasCreatePool        uint64 = 60_000
	GasAdd               uint64 = 25_000
	GasSwapExactInput    uint64 = 12_000
	GasSwapExactOutput   uint64 = 13_000
	GasRemoveExactBurn   uint64 = 22_000
	GasRemoveExactOutput uint64 = 26_000
	GasRemoveProportional uint64 = 18_000
	GasSetPaused         uint64 = 5_000
	GasRampAmp           uint64 = 8_000
	GasStopRampAmp       uint64 = 5_000
)

// StateDB is the subset of EVM state access this package needs.
// PoolManager's day-to-day reads and writes go through its own
// in-memory pools map, not through StateDB directly; Persist and Load
// are the bridge a real host uses to flush that in-memory state to and
// from its own state database between transactions.
type StateDB interface {
	GetState(addr common.Address, key common.Hash) common.Hash
	SetState(addr common.Address, key common.Hash, value common.Hash)
	Exist(addr common.Address) bool
	CreateAccount(addr common.Address)
}

// PoolID identifies a pool account, derived by hashing its immutable
// creation parameters (token count, governance authority, and creation
// salt) the same
// way the teacher's makeStorageKey derives a storage slot from a
// logical key: via blake3 rather than keccak, since no EVM opcode gas
// cost attaches to it here.
type PoolID [32]byte

// PoolAccount is one pool's persisted state: its token count, reserves,
// amp ramp schedule, fee split, LP accounting, governance authority, and
// pause flag. This is the Go analogue of the original program's pool
// account layout.
type PoolAccount struct {
	N                   int
	Balances            []bigmath.U128
	AmpSchedule         amp.Schedule
	LpFee               decimal.Decimal64
	GovernanceFee       decimal.Decimal64
	LpSupply            bigmath.U128
	PreviousDepth       bigmath.U128
	GovernanceAuthority common.Address
	Paused              bool
}

func (a *PoolAccount) clone() *PoolAccount {
	cp := *a
	cp.Balances = make([]bigmath.U128, len(a.Balances))
	copy(cp.Balances, a.Balances)
	return &cp
}
