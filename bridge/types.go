// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/ionbridge/ion"
)

// Gas costs
const (
	GasBridgeVote         = uint64(60000)  // Validate vote and mint
	GasBridgeVoteSig      = uint64(3000)   // Per oracle signature recovery
	GasBridgeBurn         = uint64(50000)  // Burn and register relay record
	GasBridgeGetStatus    = uint64(5000)   // Query oracle set, records
	GasBridgeUpdateOracle = uint64(100000) // Rotate oracle set
	GasBridgeSetRouter    = uint64(20000)  // Authorize router
)

// MaxOracles is the maximum size of an oracle set
const MaxOracles = 100

// Signature is one oracle's attestation of a mint vote.
type Signature struct {
	Signer    common.Address // Declared oracle
	Signature []byte         // 65-byte secp256k1 [R || S || V]
}

// BurnRecord is an outbound relay intent picked up by oracle software.
type BurnRecord struct {
	ID          common.Hash    // Unique record ID
	Sender      common.Address // Account whose tokens were burned
	Amount      *uint256.Int   // Amount burned
	Destination ion.Address    // ION recipient
	Nonce       uint64         // Per-bridge sequence number
}

// Bridge errors
var (
	ErrUnauthorized         = errors.New("caller is not the bridge admin")
	ErrInvalidSignature     = errors.New("invalid oracle signature")
	ErrUnknownOracle        = errors.New("signer is not an oracle")
	ErrDuplicateSigner      = errors.New("duplicate oracle signature")
	ErrQuorumNotReached     = errors.New("oracle quorum not reached")
	ErrVoteAlreadyFinished  = errors.New("vote already finished")
	ErrInvalidMintTarget    = errors.New("mint target must be the receiver or an authorized router")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrBurnNotFound         = errors.New("burn record not found")
	ErrEmptyOracleSet       = errors.New("oracle set is empty")
	ErrOracleSetTooLarge    = errors.New("oracle set too large")
	ErrInvalidOracle        = errors.New("oracle address is zero")
	ErrDuplicateOracle      = errors.New("oracle listed twice")
	ErrInvalidQuorum        = errors.New("quorum must be between 1 and the oracle count")
	ErrInvalidAdmin         = errors.New("admin address is zero")
	ErrNotDeployed          = errors.New("no bridge deployed at address")
	ErrInvalidRouterAddress = errors.New("router address is zero")
	ErrInvalidDestination   = errors.New("destination ION address is zero")
)

// QuorumError reports how many distinct valid oracle signatures a vote
// carried against the required quorum.
type QuorumError struct {
	Have uint32
	Need uint32
}

func (e *QuorumError) Error() string {
	return fmt.Sprintf("%s: have %d, need %d", ErrQuorumNotReached, e.Have, e.Need)
}

func (e *QuorumError) Is(target error) bool {
	return target == ErrQuorumNotReached
}

// ABI argument mirrors. Field names follow the ABI component names.
type (
	AddressArg struct {
		Workchain   int32
		AddressHash [32]byte
	}
	TxIDArg struct {
		Address AddressArg
		TxHash  [32]byte
		Lt      uint64
	}
	SwapDataArg struct {
		Receiver common.Address
		Amount   *big.Int
		Tx       TxIDArg
	}
	SignatureArg struct {
		Signer    common.Address
		Signature []byte
	}
)

// NewAddressArg converts an ION address to its ABI form.
func NewAddressArg(a ion.Address) AddressArg {
	return AddressArg{Workchain: a.Workchain, AddressHash: a.AddressHash}
}

func (a AddressArg) ION() ion.Address {
	return ion.Address{Workchain: a.Workchain, AddressHash: a.AddressHash}
}

// NewSwapDataArg converts a mint vote to its ABI form.
func NewSwapDataArg(v ion.MintVote) SwapDataArg {
	return SwapDataArg{
		Receiver: v.Receiver,
		Amount:   v.Amount.ToBig(),
		Tx: TxIDArg{
			Address: NewAddressArg(v.Tx.Address),
			TxHash:  v.Tx.TxHash,
			Lt:      v.Tx.LogicalTime,
		},
	}
}

// Vote converts the ABI form back to a mint vote.
func (d SwapDataArg) Vote() (ion.MintVote, error) {
	amount, overflow := uint256.FromBig(d.Amount)
	if overflow {
		return ion.MintVote{}, ErrInvalidAmount
	}
	return ion.MintVote{
		Receiver: d.Receiver,
		Amount:   amount,
		Tx: ion.SourceTx{
			Address:     d.Tx.Address.ION(),
			TxHash:      d.Tx.TxHash,
			LogicalTime: d.Tx.Lt,
		},
	}, nil
}

// NewSignatureArgs converts signatures to their ABI form.
func NewSignatureArgs(sigs []Signature) []SignatureArg {
	out := make([]SignatureArg, len(sigs))
	for i, s := range sigs {
		out[i] = SignatureArg{Signer: s.Signer, Signature: s.Signature}
	}
	return out
}

// Signatures converts ABI signatures back.
func Signatures(args []SignatureArg) []Signature {
	out := make([]Signature, len(args))
	for i, a := range args {
		out[i] = Signature{Signer: a.Signer, Signature: a.Signature}
	}
	return out
}
