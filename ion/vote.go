// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ion

import (
	"encoding/binary"
	"errors"

	"github.com/holiman/uint256"
	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
)

var (
	ErrZeroReceiver = errors.New("mint vote receiver is the zero address")
	ErrZeroAmount   = errors.New("mint vote amount is zero")
)

// SourceTx identifies the ION transaction a mint is attested for.
type SourceTx struct {
	Address     Address
	TxHash      [32]byte
	LogicalTime uint64
}

// ID is the replay key of the source transaction.
func (tx SourceTx) ID() common.Hash {
	var wc [4]byte
	binary.BigEndian.PutUint32(wc[:], uint32(tx.Address.Workchain))
	var lt [8]byte
	binary.BigEndian.PutUint64(lt[:], tx.LogicalTime)
	return common.BytesToHash(crypto.Keccak256(wc[:], tx.Address.AddressHash[:], tx.TxHash[:], lt[:]))
}

// MintVote is the oracle-attested instruction to release value on this side.
type MintVote struct {
	Receiver common.Address
	Amount   *uint256.Int
	Tx       SourceTx
}

// Validate checks the fields every consumer of a vote relies on.
func (v MintVote) Validate() error {
	if v.Receiver == (common.Address{}) {
		return ErrZeroReceiver
	}
	if v.Amount == nil || v.Amount.IsZero() {
		return ErrZeroAmount
	}
	return nil
}
