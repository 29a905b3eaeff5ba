// Copyright (c) 2025 The Stableswap Authors

package precompile

import (
	"encoding/binary"
	"fmt"

	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"

	"github.com/luxfi/stableswap/amp"
	"github.com/luxfi/stableswap/bigmath"
	"github.com/luxfi/stableswap/decimal"
)

// storageKey derives a slot for one field of one pool, the same
// blake3-over-logical-key scheme makePoolID uses for pool IDs. A host
// binding PoolManager to real EVM state would address every persisted
// field this way rather than via PoolManager's own in-memory map.
func storageKey(id PoolID, field string) common.Hash {
	h := blake3.New()
	h.Write(id[:])
	h.Write([]byte(field))
	var key common.Hash
	h.Digest().Read(key[:])
	return key
}

func uint64Hash(v uint64) common.Hash {
	var h common.Hash
	binary.BigEndian.PutUint64(h[24:], v)
	return h
}

func hashUint64(h common.Hash) uint64 {
	return binary.BigEndian.Uint64(h[24:])
}

func decimal64Hash(d decimal.Decimal64) common.Hash {
	var h common.Hash
	binary.BigEndian.PutUint64(h[16:24], d.Mantissa)
	h[31] = d.Scale
	return h
}

func hashDecimal64(h common.Hash) decimal.Decimal64 {
	return decimal.Decimal64{
		Mantissa: binary.BigEndian.Uint64(h[16:24]),
		Scale:    h[31],
	}
}

// Persist writes a pool account's full state into db, at addr, under
// slots keyed off id. It is the bridge a real EVM host would call after
// every mutating instruction to flush PoolManager's in-memory account
// back into chain state.
func (pm *PoolManager) Persist(db StateDB, addr common.Address, id PoolID) error {
	pm.mu.RLock()
	account, ok := pm.pools[id]
	pm.mu.RUnlock()
	if !ok {
		return ErrPoolNotFound
	}

	if !db.Exist(addr) {
		db.CreateAccount(addr)
	}

	db.SetState(addr, storageKey(id, "n"), uint64Hash(uint64(account.N)))
	db.SetState(addr, storageKey(id, "lp_supply"), account.LpSupply.Bytes32())
	db.SetState(addr, storageKey(id, "previous_depth"), account.PreviousDepth.Bytes32())
	db.SetState(addr, storageKey(id, "lp_fee"), decimal64Hash(account.LpFee))
	db.SetState(addr, storageKey(id, "governance_fee"), decimal64Hash(account.GovernanceFee))
	db.SetState(addr, storageKey(id, "governance_authority"), account.GovernanceAuthority.Hash())
	db.SetState(addr, storageKey(id, "amp_start"), uint64Hash(account.AmpSchedule.StartAmp))
	db.SetState(addr, storageKey(id, "amp_target"), uint64Hash(account.AmpSchedule.TargetAmp))
	db.SetState(addr, storageKey(id, "amp_start_time"), uint64Hash(uint64(account.AmpSchedule.StartTime)))
	db.SetState(addr, storageKey(id, "amp_stop_time"), uint64Hash(uint64(account.AmpSchedule.StopTime)))
	db.SetState(addr, storageKey(id, "paused"), uint64Hash(boolToUint64(account.Paused)))
	for i, balance := range account.Balances {
		db.SetState(addr, storageKey(id, fmt.Sprintf("balance:%d", i)), balance.Bytes32())
	}
	return nil
}

// Load reconstructs a pool account from db at addr, registering it under
// id, the inverse of Persist. n must match the token count the pool was
// originally created with; Load takes it from the caller and does not
// read the "n" slot Persist writes.
func (pm *PoolManager) Load(db StateDB, addr common.Address, id PoolID, n int) error {
	if n < 2 {
		return fmt.Errorf("precompile: pool requires at least 2 tokens, got %d", n)
	}
	lpSupply, err := bigmath.U128FromBytes32(db.GetState(addr, storageKey(id, "lp_supply")))
	if err != nil {
		return err
	}
	previousDepth, err := bigmath.U128FromBytes32(db.GetState(addr, storageKey(id, "previous_depth")))
	if err != nil {
		return err
	}
	balances := make([]bigmath.U128, n)
	for i := range balances {
		balances[i], err = bigmath.U128FromBytes32(db.GetState(addr, storageKey(id, fmt.Sprintf("balance:%d", i))))
		if err != nil {
			return err
		}
	}

	schedule := amp.Schedule{
		StartAmp:  hashUint64(db.GetState(addr, storageKey(id, "amp_start"))),
		TargetAmp: hashUint64(db.GetState(addr, storageKey(id, "amp_target"))),
		StartTime: int64(hashUint64(db.GetState(addr, storageKey(id, "amp_start_time")))),
		StopTime:  int64(hashUint64(db.GetState(addr, storageKey(id, "amp_stop_time")))),
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.pools[id] = &PoolAccount{
		N:                   n,
		Balances:            balances,
		AmpSchedule:         schedule,
		LpFee:               hashDecimal64(db.GetState(addr, storageKey(id, "lp_fee"))),
		GovernanceFee:       hashDecimal64(db.GetState(addr, storageKey(id, "governance_fee"))),
		LpSupply:            lpSupply,
		PreviousDepth:       previousDepth,
		GovernanceAuthority: common.BytesToAddress(db.GetState(addr, storageKey(id, "governance_authority")).Bytes()),
		Paused:              hashUint64(db.GetState(addr, storageKey(id, "paused"))) != 0,
	}
	return nil
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
