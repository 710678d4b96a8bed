// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"
)

// guardPrefix derives the reentrancy slot of a contract.
var guardPrefix = []byte("lock")

// StorageKey derives a storage slot as BLAKE3(prefix || parts...).
func StorageKey(prefix []byte, parts ...[]byte) common.Hash {
	h := blake3.New()
	h.Write(prefix)
	for _, p := range parts {
		h.Write(p)
	}
	var key common.Hash
	copy(key[:], h.Sum(nil))
	return key
}

func ReadUint256(db StateDB, addr common.Address, key common.Hash) *uint256.Int {
	v := db.GetState(addr, key)
	return new(uint256.Int).SetBytes32(v[:])
}

func WriteUint256(db StateDB, addr common.Address, key common.Hash, v *uint256.Int) {
	db.SetState(addr, key, common.Hash(v.Bytes32()))
}

func ReadAddress(db StateDB, addr common.Address, key common.Hash) common.Address {
	return common.BytesToAddress(db.GetState(addr, key).Bytes())
}

func WriteAddress(db StateDB, addr common.Address, key common.Hash, v common.Address) {
	db.SetState(addr, key, common.BytesToHash(v.Bytes()))
}

func ReadBool(db StateDB, addr common.Address, key common.Hash) bool {
	return db.GetState(addr, key) != (common.Hash{})
}

func WriteBool(db StateDB, addr common.Address, key common.Hash, v bool) {
	var h common.Hash
	if v {
		h[common.HashLength-1] = 1
	}
	db.SetState(addr, key, h)
}

// DeductGas charges cost against suppliedGas.
func DeductGas(suppliedGas uint64, cost uint64) (uint64, error) {
	if suppliedGas < cost {
		return 0, ErrOutOfGas
	}
	return suppliedGas - cost, nil
}

// Atomic runs fn and reverts every state change it made if it fails.
func Atomic(db StateDB, fn func() error) error {
	snapshot := db.Snapshot()
	if err := fn(); err != nil {
		db.RevertToSnapshot(snapshot)
		return err
	}
	return nil
}

// NonReentrant holds the reentrancy slot of addr for the duration of fn.
// The slot lives in state so nested calls reach it through any handle to the
// same contract, and a revert releases it together with the rest of fn.
func NonReentrant(db StateDB, addr common.Address, fn func() error) error {
	slot := StorageKey(guardPrefix, addr.Bytes())
	if ReadBool(db, addr, slot) {
		return ErrReentrant
	}
	WriteBool(db, addr, slot, true)
	err := fn()
	WriteBool(db, addr, slot, false)
	return err
}
