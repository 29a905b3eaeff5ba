// Copyright (c) 2025 The Stableswap Authors

package precompile

import (
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/stableswap/decimal"
)

// memStateDB is a minimal in-memory StateDB, standing in for a real EVM
// host's state database in tests.
type memStateDB struct {
	accounts map[common.Address]bool
	slots    map[common.Address]map[common.Hash]common.Hash
}

func newMemStateDB() *memStateDB {
	return &memStateDB{
		accounts: make(map[common.Address]bool),
		slots:    make(map[common.Address]map[common.Hash]common.Hash),
	}
}

func (db *memStateDB) GetState(addr common.Address, key common.Hash) common.Hash {
	return db.slots[addr][key]
}

func (db *memStateDB) SetState(addr common.Address, key common.Hash, value common.Hash) {
	if db.slots[addr] == nil {
		db.slots[addr] = make(map[common.Hash]common.Hash)
	}
	db.slots[addr][key] = value
}

func (db *memStateDB) Exist(addr common.Address) bool {
	return db.accounts[addr]
}

func (db *memStateDB) CreateAccount(addr common.Address) {
	db.accounts[addr] = true
}

func TestPersistAndLoad_RoundTrips(t *testing.T) {
	pm := newTestManager()
	id, err := pm.CreatePool(2, amounts(1_000_000, 2_000_000), 100, decimal.NewDecimal64Fraction(30, 10_000), decimal.NewDecimal64Fraction(10, 10_000), testGovernance, 1)
	require.NoError(t, err)

	_, err = pm.Add(id, amounts(10_000, 10_000), 0)
	require.NoError(t, err)
	before, err := pm.Account(id)
	require.NoError(t, err)

	db := newMemStateDB()
	addr := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	require.NoError(t, pm.Persist(db, addr, id))

	fresh := NewPoolManager(nil)
	require.NoError(t, fresh.Load(db, addr, id, before.N))

	after, err := fresh.Account(id)
	require.NoError(t, err)
	require.Equal(t, before.N, after.N)
	require.Equal(t, before.LpSupply.String(), after.LpSupply.String())
	require.Equal(t, before.PreviousDepth.String(), after.PreviousDepth.String())
	require.Equal(t, before.GovernanceAuthority, after.GovernanceAuthority)
	require.Equal(t, before.AmpSchedule, after.AmpSchedule)
	for i := range before.Balances {
		require.Equal(t, before.Balances[i].String(), after.Balances[i].String())
	}
}

func TestPersist_MissingPool(t *testing.T) {
	pm := newTestManager()
	db := newMemStateDB()
	err := pm.Persist(db, common.HexToAddress("0xbb"), PoolID{})
	require.ErrorIs(t, err, ErrPoolNotFound)
}
