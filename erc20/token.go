// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package erc20 implements a fungible token ledger held in contract storage.
package erc20

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/ionbridge/contract"
)

// Token is the ledger surface other contracts move value through.
type Token interface {
	Address() common.Address
	Decimals(db contract.StateDB) (uint8, error)
	BalanceOf(db contract.StateDB, owner common.Address) *uint256.Int
	Allowance(db contract.StateDB, owner, spender common.Address) *uint256.Int
	Transfer(db contract.StateDB, from, to common.Address, amount *uint256.Int) error
	TransferFrom(db contract.StateDB, spender, from, to common.Address, amount *uint256.Int) error
	Approve(db contract.StateDB, owner, spender common.Address, amount *uint256.Int) error
}

var _ Token = (*Contract)(nil)

// Storage key prefixes
var (
	deployedPrefix  = []byte("tdep")
	namePrefix      = []byte("tnam")
	symbolPrefix    = []byte("tsym")
	decimalsPrefix  = []byte("tdec")
	supplyPrefix    = []byte("tsup")
	balancePrefix   = []byte("tbal")
	allowancePrefix = []byte("talw")
)

var (
	deployedKey = contract.StorageKey(deployedPrefix)
	nameKey     = contract.StorageKey(namePrefix)
	symbolKey   = contract.StorageKey(symbolPrefix)
	decimalsKey = contract.StorageKey(decimalsPrefix)
	supplyKey   = contract.StorageKey(supplyPrefix)
)

func balanceKey(owner common.Address) common.Hash {
	return contract.StorageKey(balancePrefix, owner.Bytes())
}

func allowanceKey(owner, spender common.Address) common.Hash {
	return contract.StorageKey(allowancePrefix, owner.Bytes(), spender.Bytes())
}

// encodeShortString packs s into one slot with its length in the last byte.
func encodeShortString(s string) (common.Hash, error) {
	var h common.Hash
	if len(s) > common.HashLength-1 {
		return h, ErrStringTooLong
	}
	copy(h[:], s)
	h[common.HashLength-1] = byte(len(s))
	return h, nil
}

func decodeShortString(h common.Hash) string {
	n := int(h[common.HashLength-1])
	if n > common.HashLength-1 {
		n = common.HashLength - 1
	}
	return string(h[:n])
}
