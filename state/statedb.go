// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state provides a journaled contract.StateDB persisted on a
// key-value database and a Ledger that runs transactions against it.
package state

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	"github.com/luxfi/geth/core/types"

	"github.com/luxfi/ionbridge/contract"
)

var _ contract.StateDB = (*StateDB)(nil)

// Database key prefixes
var (
	storagePrefix = []byte("s")
	balancePrefix = []byte("b")
	noncePrefix   = []byte("n")
	accountPrefix = []byte("a")
)

type storageKey struct {
	addr common.Address
	key  common.Hash
}

// StateDB buffers writes in memory on top of a database. Every mutation is
// journaled so Snapshot and RevertToSnapshot can undo it; Commit flushes the
// buffer in a single batch.
type StateDB struct {
	db database.Database

	storage  map[storageKey]common.Hash
	balances map[common.Address]*uint256.Int
	nonces   map[common.Address]uint64
	accounts map[common.Address]bool

	logs    []*types.Log
	journal []func()
	txHash  common.Hash

	// readErr is the first database failure seen by a getter
	readErr error
}

// New returns a StateDB reading through to db.
func New(db database.Database) *StateDB {
	s := &StateDB{db: db}
	s.reset()
	return s
}

func (s *StateDB) reset() {
	s.storage = make(map[storageKey]common.Hash)
	s.balances = make(map[common.Address]*uint256.Int)
	s.nonces = make(map[common.Address]uint64)
	s.accounts = make(map[common.Address]bool)
	s.logs = nil
	s.journal = nil
	s.readErr = nil
}

func (s *StateDB) read(key []byte) []byte {
	v, err := s.db.Get(key)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) && s.readErr == nil {
			s.readErr = err
		}
		return nil
	}
	return v
}

func dbKey(prefix []byte, addr common.Address, extra ...byte) []byte {
	k := make([]byte, 0, len(prefix)+common.AddressLength+len(extra))
	k = append(k, prefix...)
	k = append(k, addr.Bytes()...)
	return append(k, extra...)
}

func (s *StateDB) GetState(addr common.Address, key common.Hash) common.Hash {
	if v, ok := s.storage[storageKey{addr, key}]; ok {
		return v
	}
	return common.BytesToHash(s.read(dbKey(storagePrefix, addr, key.Bytes()...)))
}

// SetState writes a slot and returns its previous value.
func (s *StateDB) SetState(addr common.Address, key common.Hash, value common.Hash) common.Hash {
	sk := storageKey{addr, key}
	prev, dirty := s.storage[sk]
	if !dirty {
		prev = s.GetState(addr, key)
	}
	s.journal = append(s.journal, func() {
		if dirty {
			s.storage[sk] = prev
		} else {
			delete(s.storage, sk)
		}
	})
	s.storage[sk] = value
	return prev
}

func (s *StateDB) GetBalance(addr common.Address) *uint256.Int {
	if bal, ok := s.balances[addr]; ok {
		return bal.Clone()
	}
	return new(uint256.Int).SetBytes(s.read(dbKey(balancePrefix, addr)))
}

func (s *StateDB) setBalance(addr common.Address, bal *uint256.Int) {
	prev, dirty := s.balances[addr]
	s.journal = append(s.journal, func() {
		if dirty {
			s.balances[addr] = prev
		} else {
			delete(s.balances, addr)
		}
	})
	s.balances[addr] = bal
}

// AddBalance credits addr and returns the previous balance.
func (s *StateDB) AddBalance(addr common.Address, amount *uint256.Int, _ tracing.BalanceChangeReason) uint256.Int {
	prev := s.GetBalance(addr)
	s.setBalance(addr, new(uint256.Int).Add(prev, amount))
	return *prev
}

// SubBalance debits addr and returns the previous balance. Callers check
// sufficiency first; an underflow wraps as it does in the EVM state.
func (s *StateDB) SubBalance(addr common.Address, amount *uint256.Int, _ tracing.BalanceChangeReason) uint256.Int {
	prev := s.GetBalance(addr)
	s.setBalance(addr, new(uint256.Int).Sub(prev, amount))
	return *prev
}

func (s *StateDB) GetNonce(addr common.Address) uint64 {
	if n, ok := s.nonces[addr]; ok {
		return n
	}
	v := s.read(dbKey(noncePrefix, addr))
	if len(v) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(v)
}

func (s *StateDB) SetNonce(addr common.Address, nonce uint64, _ tracing.NonceChangeReason) {
	prev, dirty := s.nonces[addr]
	s.journal = append(s.journal, func() {
		if dirty {
			s.nonces[addr] = prev
		} else {
			delete(s.nonces, addr)
		}
	})
	s.nonces[addr] = nonce
}

func (s *StateDB) Exist(addr common.Address) bool {
	if s.accounts[addr] {
		return true
	}
	return len(s.read(dbKey(accountPrefix, addr))) > 0
}

func (s *StateDB) CreateAccount(addr common.Address) {
	if s.accounts[addr] {
		return
	}
	s.journal = append(s.journal, func() { delete(s.accounts, addr) })
	s.accounts[addr] = true
}

func (s *StateDB) AddLog(log *types.Log) {
	n := len(s.logs)
	log.Index = uint(n)
	s.journal = append(s.journal, func() { s.logs = s.logs[:n] })
	s.logs = append(s.logs, log)
}

func (s *StateDB) Logs() []*types.Log {
	return s.logs
}

func (s *StateDB) TxHash() common.Hash {
	return s.txHash
}

// Snapshot returns an identifier for the current revision of the state.
func (s *StateDB) Snapshot() int {
	return len(s.journal)
}

// RevertToSnapshot undoes every change made after the snapshot was taken.
func (s *StateDB) RevertToSnapshot(id int) {
	if id < 0 || id > len(s.journal) {
		panic(fmt.Sprintf("revision id %d cannot be reverted", id))
	}
	for i := len(s.journal) - 1; i >= id; i-- {
		s.journal[i]()
	}
	s.journal = s.journal[:id]
}

// Err returns the first database read failure, if any.
func (s *StateDB) Err() error {
	return s.readErr
}

// Commit writes all buffered changes to the database and clears the journal.
func (s *StateDB) Commit() error {
	if s.readErr != nil {
		return fmt.Errorf("state read failed: %w", s.readErr)
	}
	batch := s.db.NewBatch()
	for sk, v := range s.storage {
		if err := batch.Put(dbKey(storagePrefix, sk.addr, sk.key.Bytes()...), v.Bytes()); err != nil {
			return err
		}
	}
	for addr, bal := range s.balances {
		if err := batch.Put(dbKey(balancePrefix, addr), bal.Bytes()); err != nil {
			return err
		}
	}
	for addr, n := range s.nonces {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], n)
		if err := batch.Put(dbKey(noncePrefix, addr), buf[:]); err != nil {
			return err
		}
	}
	for addr := range s.accounts {
		if err := batch.Put(dbKey(accountPrefix, addr), []byte{1}); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("failed to commit state: %w", err)
	}
	s.reset()
	return nil
}

// Discard drops all buffered changes.
func (s *StateDB) Discard() {
	s.reset()
}
