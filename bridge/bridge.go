// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bridge implements the ICE v2 bridge token. Oracles attest ION
// transactions and the bridge mints against a quorum of their signatures;
// burning registers an outbound record that oracles relay to ION.
package bridge

import (
	"encoding/binary"
	"math/big"

	"github.com/holiman/uint256"
	luxcrypto "github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/ionbridge/contract"
	"github.com/luxfi/ionbridge/erc20"
	"github.com/luxfi/ionbridge/ion"
)

// Storage key prefixes for bridge state
var (
	deployedKey   = contract.StorageKey([]byte("bdep"))
	adminKey      = contract.StorageKey([]byte("badm"))
	quorumKey     = contract.StorageKey([]byte("bquo"))
	oracleLenKey  = contract.StorageKey([]byte("bolen"))
	burnNonceKey  = contract.StorageKey([]byte("bnonce"))
	oraclePrefix  = []byte("borc")
	isOraclePref  = []byte("bisorc")
	routerPrefix  = []byte("brtr")
	finishedPref  = []byte("bfin")
	burnRecPrefix = []byte("bburn")
)

// Burn record fields
const (
	burnFieldSender byte = iota
	burnFieldAmount
	burnFieldWorkchain
	burnFieldHash
	burnFieldNonce
)

// Params are the deployment parameters of a bridge.
type Params struct {
	Name     string           `json:"name"`
	Symbol   string           `json:"symbol"`
	Decimals uint8            `json:"decimals"`
	Admin    common.Address   `json:"admin"`
	Oracles  []common.Address `json:"oracles"`
	Quorum   uint32           `json:"quorum"`
	Routers  []common.Address `json:"routers,omitempty"`
}

// Bridge is a handle to the bridge token at an address. The embedded token
// gives it the full ERC-20 surface.
type Bridge struct {
	*erc20.Contract
	log log.Logger
}

// Deploy creates the bridge token at address with its initial oracle set.
func Deploy(db contract.StateDB, address common.Address, params Params, logger log.Logger) (*Bridge, error) {
	if params.Admin == (common.Address{}) {
		return nil, ErrInvalidAdmin
	}
	if err := validateOracleSet(params.Oracles, params.Quorum); err != nil {
		return nil, err
	}
	for _, r := range params.Routers {
		if r == (common.Address{}) {
			return nil, ErrInvalidRouterAddress
		}
	}
	if contract.ReadBool(db, address, deployedKey) {
		return nil, erc20.ErrAlreadyDeployed
	}

	b := newBridge(address, logger)
	err := contract.Atomic(db, func() error {
		token, err := erc20.Deploy(db, address, params.Name, params.Symbol, params.Decimals)
		if err != nil {
			return err
		}
		b.Contract = token
		contract.WriteBool(db, address, deployedKey, true)
		contract.WriteAddress(db, address, adminKey, params.Admin)
		if err := b.writeOracleSet(db, params.Oracles, params.Quorum); err != nil {
			return err
		}
		for _, r := range params.Routers {
			if err := b.writeRouter(db, r, true); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.log.Info("bridge deployed",
		"address", address,
		"admin", params.Admin,
		"oracles", len(params.Oracles),
		"quorum", params.Quorum,
	)
	return b, nil
}

// Load returns the bridge previously deployed at address.
func Load(db contract.StateDB, address common.Address, logger log.Logger) (*Bridge, error) {
	if !contract.ReadBool(db, address, deployedKey) {
		return nil, ErrNotDeployed
	}
	return newBridge(address, logger), nil
}

func newBridge(address common.Address, logger log.Logger) *Bridge {
	if logger == nil {
		logger = log.NewTestLogger(log.InfoLevel)
	}
	return &Bridge{Contract: erc20.At(address), log: logger}
}

func (b *Bridge) Admin(db contract.StateDB) common.Address {
	return contract.ReadAddress(db, b.Address(), adminKey)
}

func (b *Bridge) Quorum(db contract.StateDB) uint32 {
	return uint32(contract.ReadUint256(db, b.Address(), quorumKey).Uint64())
}

// Oracles returns the current oracle set in registration order.
func (b *Bridge) Oracles(db contract.StateDB) []common.Address {
	n := contract.ReadUint256(db, b.Address(), oracleLenKey).Uint64()
	out := make([]common.Address, n)
	for i := range out {
		out[i] = contract.ReadAddress(db, b.Address(), oracleSlot(uint64(i)))
	}
	return out
}

func (b *Bridge) IsOracle(db contract.StateDB, account common.Address) bool {
	return contract.ReadBool(db, b.Address(), contract.StorageKey(isOraclePref, account.Bytes()))
}

func (b *Bridge) IsRouter(db contract.StateDB, account common.Address) bool {
	return contract.ReadBool(db, b.Address(), contract.StorageKey(routerPrefix, account.Bytes()))
}

// VoteFinished reports whether the source transaction id was already minted.
func (b *Bridge) VoteFinished(db contract.StateDB, id common.Hash) bool {
	return contract.ReadBool(db, b.Address(), contract.StorageKey(finishedPref, id.Bytes()))
}

// VoteForMinting verifies a quorum of oracle signatures over vote and mints
// vote.Amount to to. The target is either the vote's receiver or, when the
// caller is an authorized router, the caller itself.
func (b *Bridge) VoteForMinting(
	db contract.StateDB,
	caller common.Address,
	vote ion.MintVote,
	sigs []Signature,
	to common.Address,
) error {
	if err := vote.Validate(); err != nil {
		return err
	}
	if to != vote.Receiver && !(to == caller && b.IsRouter(db, caller)) {
		return ErrInvalidMintTarget
	}
	id := vote.Tx.ID()
	if b.VoteFinished(db, id) {
		return ErrVoteAlreadyFinished
	}
	if err := b.verifyQuorum(db, vote, sigs); err != nil {
		return err
	}

	err := contract.Atomic(db, func() error {
		contract.WriteBool(db, b.Address(), contract.StorageKey(finishedPref, id.Bytes()), true)
		if err := b.Mint(db, to, vote.Amount); err != nil {
			return err
		}
		return bridgeABI.EmitEvent(db, b.Address(), "SwapTonToEth",
			vote.Tx.Address.Workchain,
			common.Hash(vote.Tx.Address.AddressHash),
			common.Hash(vote.Tx.TxHash),
			vote.Tx.LogicalTime,
			to,
			vote.Amount.ToBig(),
		)
	})
	if err != nil {
		return err
	}
	b.log.Info("bridge mint",
		"bridge", b.Address(),
		"source", vote.Tx.Address,
		"lt", vote.Tx.LogicalTime,
		"receiver", vote.Receiver,
		"to", to,
		"amount", vote.Amount,
	)
	return nil
}

func (b *Bridge) verifyQuorum(db contract.StateDB, vote ion.MintVote, sigs []Signature) error {
	digest, err := VoteDigest(b.Address(), vote)
	if err != nil {
		return err
	}
	seen := make(map[common.Address]struct{}, len(sigs))
	for _, sig := range sigs {
		signer, err := recoverSigner(digest, sig.Signature)
		if err != nil {
			return err
		}
		if signer != sig.Signer {
			return ErrInvalidSignature
		}
		if !b.IsOracle(db, signer) {
			return ErrUnknownOracle
		}
		if _, dup := seen[signer]; dup {
			return ErrDuplicateSigner
		}
		seen[signer] = struct{}{}
	}
	if need := b.Quorum(db); uint32(len(seen)) < need {
		return &QuorumError{Have: uint32(len(seen)), Need: need}
	}
	return nil
}

// Burn destroys amount of caller's tokens and records a relay intent to
// destination on ION.
func (b *Bridge) Burn(
	db contract.StateDB,
	caller common.Address,
	amount *uint256.Int,
	destination ion.Address,
) (*BurnRecord, error) {
	if amount == nil || amount.IsZero() {
		return nil, ErrInvalidAmount
	}
	if destination.IsZero() {
		return nil, ErrInvalidDestination
	}

	var record *BurnRecord
	err := contract.Atomic(db, func() error {
		if err := b.Contract.Burn(db, caller, amount); err != nil {
			return err
		}
		nonce := contract.ReadUint256(db, b.Address(), burnNonceKey).Uint64()
		contract.WriteUint256(db, b.Address(), burnNonceKey, uint256.NewInt(nonce+1))

		record = &BurnRecord{
			ID:          burnID(b.Address(), nonce),
			Sender:      caller,
			Amount:      amount.Clone(),
			Destination: destination,
			Nonce:       nonce,
		}
		b.writeBurnRecord(db, record)
		return bridgeABI.EmitEvent(db, b.Address(), "SwapEthToTon",
			caller,
			destination.Workchain,
			common.Hash(destination.AddressHash),
			amount.ToBig(),
			record.ID,
		)
	})
	if err != nil {
		return nil, err
	}
	b.log.Info("bridge burn",
		"bridge", b.Address(),
		"sender", caller,
		"destination", destination,
		"amount", amount,
		"nonce", record.Nonce,
	)
	return record, nil
}

// BurnRecord returns the relay record with id.
func (b *Bridge) BurnRecord(db contract.StateDB, id common.Hash) (*BurnRecord, error) {
	field := func(f byte) common.Hash {
		return contract.StorageKey(burnRecPrefix, id.Bytes(), []byte{f})
	}
	sender := contract.ReadAddress(db, b.Address(), field(burnFieldSender))
	if sender == (common.Address{}) {
		return nil, ErrBurnNotFound
	}
	return &BurnRecord{
		ID:     id,
		Sender: sender,
		Amount: contract.ReadUint256(db, b.Address(), field(burnFieldAmount)),
		Destination: ion.Address{
			Workchain:   int32(contract.ReadUint256(db, b.Address(), field(burnFieldWorkchain)).Uint64()),
			AddressHash: db.GetState(b.Address(), field(burnFieldHash)),
		},
		Nonce: contract.ReadUint256(db, b.Address(), field(burnFieldNonce)).Uint64(),
	}, nil
}

func (b *Bridge) writeBurnRecord(db contract.StateDB, r *BurnRecord) {
	field := func(f byte) common.Hash {
		return contract.StorageKey(burnRecPrefix, r.ID.Bytes(), []byte{f})
	}
	contract.WriteAddress(db, b.Address(), field(burnFieldSender), r.Sender)
	contract.WriteUint256(db, b.Address(), field(burnFieldAmount), r.Amount)
	contract.WriteUint256(db, b.Address(), field(burnFieldWorkchain), uint256.NewInt(uint64(uint32(r.Destination.Workchain))))
	db.SetState(b.Address(), field(burnFieldHash), common.Hash(r.Destination.AddressHash))
	contract.WriteUint256(db, b.Address(), field(burnFieldNonce), uint256.NewInt(r.Nonce))
}

// BurnCount returns how many burn records the bridge has registered.
func (b *Bridge) BurnCount(db contract.StateDB) uint64 {
	return contract.ReadUint256(db, b.Address(), burnNonceKey).Uint64()
}

// BurnID returns the id of the burn record with nonce.
func (b *Bridge) BurnID(nonce uint64) common.Hash {
	return burnID(b.Address(), nonce)
}

// UpdateOracleSet replaces the oracle set and quorum. Only the admin may
// rotate oracles.
func (b *Bridge) UpdateOracleSet(db contract.StateDB, caller common.Address, oracles []common.Address, quorum uint32) error {
	if caller != b.Admin(db) {
		return ErrUnauthorized
	}
	if err := validateOracleSet(oracles, quorum); err != nil {
		return err
	}
	err := contract.Atomic(db, func() error {
		for _, o := range b.Oracles(db) {
			contract.WriteBool(db, b.Address(), contract.StorageKey(isOraclePref, o.Bytes()), false)
		}
		return b.writeOracleSet(db, oracles, quorum)
	})
	if err != nil {
		return err
	}
	b.log.Info("oracle set updated",
		"bridge", b.Address(),
		"oracles", len(oracles),
		"quorum", quorum,
	)
	return nil
}

// SetRouter authorizes or revokes router as a mint target.
func (b *Bridge) SetRouter(db contract.StateDB, caller, router common.Address, allowed bool) error {
	if caller != b.Admin(db) {
		return ErrUnauthorized
	}
	if router == (common.Address{}) {
		return ErrInvalidRouterAddress
	}
	return contract.Atomic(db, func() error { return b.writeRouter(db, router, allowed) })
}

// TransferAdmin hands bridge administration to newAdmin.
func (b *Bridge) TransferAdmin(db contract.StateDB, caller, newAdmin common.Address) error {
	if caller != b.Admin(db) {
		return ErrUnauthorized
	}
	if newAdmin == (common.Address{}) {
		return ErrInvalidAdmin
	}
	err := contract.Atomic(db, func() error {
		contract.WriteAddress(db, b.Address(), adminKey, newAdmin)
		return bridgeABI.EmitEvent(db, b.Address(), "AdminTransferred", caller, newAdmin)
	})
	if err != nil {
		return err
	}
	b.log.Info("bridge admin transferred",
		"bridge", b.Address(),
		"previous", caller,
		"admin", newAdmin,
	)
	return nil
}

func (b *Bridge) writeOracleSet(db contract.StateDB, oracles []common.Address, quorum uint32) error {
	for i, o := range oracles {
		contract.WriteAddress(db, b.Address(), oracleSlot(uint64(i)), o)
		contract.WriteBool(db, b.Address(), contract.StorageKey(isOraclePref, o.Bytes()), true)
	}
	contract.WriteUint256(db, b.Address(), oracleLenKey, uint256.NewInt(uint64(len(oracles))))
	contract.WriteUint256(db, b.Address(), quorumKey, uint256.NewInt(uint64(quorum)))

	set := make([]common.Address, len(oracles))
	copy(set, oracles)
	return bridgeABI.EmitEvent(db, b.Address(), "OracleSetUpdated", set, new(big.Int).SetUint64(uint64(quorum)))
}

func (b *Bridge) writeRouter(db contract.StateDB, router common.Address, allowed bool) error {
	contract.WriteBool(db, b.Address(), contract.StorageKey(routerPrefix, router.Bytes()), allowed)
	return bridgeABI.EmitEvent(db, b.Address(), "RouterUpdated", router, allowed)
}

func validateOracleSet(oracles []common.Address, quorum uint32) error {
	if len(oracles) == 0 {
		return ErrEmptyOracleSet
	}
	if len(oracles) > MaxOracles {
		return ErrOracleSetTooLarge
	}
	seen := make(map[common.Address]struct{}, len(oracles))
	for _, o := range oracles {
		if o == (common.Address{}) {
			return ErrInvalidOracle
		}
		if _, dup := seen[o]; dup {
			return ErrDuplicateOracle
		}
		seen[o] = struct{}{}
	}
	if quorum == 0 || int(quorum) > len(oracles) {
		return ErrInvalidQuorum
	}
	return nil
}

func oracleSlot(i uint64) common.Hash {
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], i)
	return contract.StorageKey(oraclePrefix, idx[:])
}

func burnID(bridgeAddr common.Address, nonce uint64) common.Hash {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], nonce)
	return common.BytesToHash(luxcrypto.Keccak256([]byte("ionbridge/burn"), bridgeAddr.Bytes(), n[:]))
}
