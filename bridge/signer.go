// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"crypto/ecdsa"
	"fmt"

	luxcrypto "github.com/luxfi/crypto"
	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/crypto"

	"github.com/luxfi/ionbridge/ion"
)

// SignatureLength is the size of an oracle signature [R || S || V]
const SignatureLength = 65

// voteArgs is the layout hashed into a vote digest.
var voteArgs = abi.Arguments{
	{Type: mustType("address")}, // bridge
	{Type: mustType("address")}, // receiver
	{Type: mustType("uint256")}, // amount
	{Type: mustType("int32")},   // source workchain
	{Type: mustType("bytes32")}, // source address hash
	{Type: mustType("bytes32")}, // source tx hash
	{Type: mustType("uint64")},  // source logical time
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// VoteDigest returns the message oracles sign for vote. Binding the bridge
// address keeps a signature from being replayed against another deployment.
func VoteDigest(bridgeAddr common.Address, vote ion.MintVote) (common.Hash, error) {
	if err := vote.Validate(); err != nil {
		return common.Hash{}, err
	}
	encoded, err := voteArgs.Pack(
		bridgeAddr,
		vote.Receiver,
		vote.Amount.ToBig(),
		vote.Tx.Address.Workchain,
		vote.Tx.Address.AddressHash,
		vote.Tx.TxHash,
		vote.Tx.LogicalTime,
	)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(luxcrypto.Keccak256(encoded)), nil
}

// SignVote produces an oracle signature over vote with key.
func SignVote(key *ecdsa.PrivateKey, bridgeAddr common.Address, vote ion.MintVote) (Signature, error) {
	digest, err := VoteDigest(bridgeAddr, vote)
	if err != nil {
		return Signature{}, err
	}
	sig, err := crypto.Sign(digest[:], key)
	if err != nil {
		return Signature{}, err
	}
	return Signature{Signer: crypto.PubkeyToAddress(key.PublicKey), Signature: sig}, nil
}

// recoverSigner returns the address that produced sig over digest. Both the
// raw recovery id (0/1) and the legacy 27/28 form are accepted.
func recoverSigner(digest common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != SignatureLength {
		return common.Address{}, fmt.Errorf("%w: length %d", ErrInvalidSignature, len(sig))
	}
	normalized := make([]byte, SignatureLength)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	if normalized[64] > 1 {
		return common.Address{}, fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, sig[64])
	}
	pub, err := crypto.SigToPub(digest[:], normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
