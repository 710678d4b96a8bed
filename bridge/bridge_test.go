// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"crypto/ecdsa"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/crypto"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ionbridge/erc20"
	"github.com/luxfi/ionbridge/ion"
	"github.com/luxfi/ionbridge/state"
)

var (
	bridgeAddr = common.HexToAddress("0x0000000000000000000000000000000000007201")
	routerAddr = common.HexToAddress("0x0000000000000000000000000000000000007202")

	admin = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")

	ionAlice = ion.Address{Workchain: 0, AddressHash: [32]byte{0xa1}}
)

type fixture struct {
	db      *state.StateDB
	bridge  *Bridge
	keys    []*ecdsa.PrivateKey
	oracles []common.Address
}

// newFixture deploys a bridge with three oracles and a quorum of two.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	require := require.New(t)

	f := &fixture{db: state.New(memdb.New())}
	for i := 0; i < 3; i++ {
		key, err := crypto.GenerateKey()
		require.NoError(err)
		f.keys = append(f.keys, key)
		f.oracles = append(f.oracles, crypto.PubkeyToAddress(key.PublicKey))
	}
	b, err := Deploy(f.db, bridgeAddr, Params{
		Name:     "Ice Open Network",
		Symbol:   "ICE",
		Decimals: 18,
		Admin:    admin,
		Oracles:  f.oracles,
		Quorum:   2,
		Routers:  []common.Address{routerAddr},
	}, nil)
	require.NoError(err)
	f.bridge = b
	return f
}

func (f *fixture) sign(t *testing.T, vote ion.MintVote, keys ...*ecdsa.PrivateKey) []Signature {
	t.Helper()
	sigs := make([]Signature, 0, len(keys))
	for _, k := range keys {
		sig, err := SignVote(k, bridgeAddr, vote)
		require.NoError(t, err)
		sigs = append(sigs, sig)
	}
	return sigs
}

func newVote(receiver common.Address, amount uint64, lt uint64) ion.MintVote {
	return ion.MintVote{
		Receiver: receiver,
		Amount:   uint256.NewInt(amount),
		Tx: ion.SourceTx{
			Address:     ionAlice,
			TxHash:      [32]byte{0x7f, byte(lt)},
			LogicalTime: lt,
		},
	}
}

func TestDeployValidation(t *testing.T) {
	o1 := common.HexToAddress("0x01")
	o2 := common.HexToAddress("0x02")
	tests := []struct {
		name   string
		params Params
		err    error
	}{
		{"zero admin", Params{Oracles: []common.Address{o1}, Quorum: 1}, ErrInvalidAdmin},
		{"no oracles", Params{Admin: admin, Quorum: 1}, ErrEmptyOracleSet},
		{"zero oracle", Params{Admin: admin, Oracles: []common.Address{{}}, Quorum: 1}, ErrInvalidOracle},
		{"duplicate oracle", Params{Admin: admin, Oracles: []common.Address{o1, o1}, Quorum: 1}, ErrDuplicateOracle},
		{"zero quorum", Params{Admin: admin, Oracles: []common.Address{o1, o2}}, ErrInvalidQuorum},
		{"quorum above set", Params{Admin: admin, Oracles: []common.Address{o1, o2}, Quorum: 3}, ErrInvalidQuorum},
		{"zero router", Params{Admin: admin, Oracles: []common.Address{o1}, Quorum: 1, Routers: []common.Address{{}}}, ErrInvalidRouterAddress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.Name, tt.params.Symbol = "ICE", "ICE"
			_, err := Deploy(state.New(memdb.New()), bridgeAddr, tt.params, nil)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestDeploy(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)

	require.Equal(admin, f.bridge.Admin(f.db))
	require.Equal(uint32(2), f.bridge.Quorum(f.db))
	require.Equal(f.oracles, f.bridge.Oracles(f.db))
	for _, o := range f.oracles {
		require.True(f.bridge.IsOracle(f.db, o))
	}
	require.True(f.bridge.IsRouter(f.db, routerAddr))
	require.False(f.bridge.IsRouter(f.db, alice))

	decimals, err := f.bridge.Decimals(f.db)
	require.NoError(err)
	require.Equal(uint8(18), decimals)
	require.Equal("ICE", f.bridge.Symbol(f.db))

	_, err = Deploy(f.db, bridgeAddr, Params{Admin: admin, Oracles: f.oracles, Quorum: 1}, nil)
	require.ErrorIs(err, erc20.ErrAlreadyDeployed)

	loaded, err := Load(f.db, bridgeAddr, nil)
	require.NoError(err)
	require.Equal(f.oracles, loaded.Oracles(f.db))

	_, err = Load(f.db, alice, nil)
	require.ErrorIs(err, ErrNotDeployed)
}

func TestVoteForMinting(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	vote := newVote(alice, 1_000, 1)

	require.NoError(f.bridge.VoteForMinting(f.db, bob, vote, f.sign(t, vote, f.keys[0], f.keys[2]), alice))
	require.Equal(uint64(1_000), f.bridge.BalanceOf(f.db, alice).Uint64())
	require.Equal(uint64(1_000), f.bridge.TotalSupply(f.db).Uint64())
	require.True(f.bridge.VoteFinished(f.db, vote.Tx.ID()))

	logs := f.db.Logs()
	last := logs[len(logs)-1]
	require.Equal(bridgeABI.Events["SwapTonToEth"].ID, last.Topics[0])
	require.Equal(common.Hash(ionAlice.AddressHash), last.Topics[1])
	require.Equal(common.BytesToHash(alice.Bytes()), last.Topics[3])

	err := f.bridge.VoteForMinting(f.db, bob, vote, f.sign(t, vote, f.keys...), alice)
	require.ErrorIs(err, ErrVoteAlreadyFinished)
	require.Equal(uint64(1_000), f.bridge.TotalSupply(f.db).Uint64())
}

func TestVoteForMintingRejects(t *testing.T) {
	f := newFixture(t)
	vote := newVote(alice, 1_000, 2)

	stranger, err := crypto.GenerateKey()
	require.NoError(t, err)

	forged := f.sign(t, vote, f.keys[0])[0]
	forged.Signer = f.oracles[1]

	truncated := f.sign(t, vote, f.keys[0])[0]
	truncated.Signature = truncated.Signature[:64]

	otherVote := newVote(alice, 1_001, 2)

	tests := []struct {
		name string
		vote ion.MintVote
		sigs []Signature
		to   common.Address
		err  error
	}{
		{"no signatures", vote, nil, alice, ErrQuorumNotReached},
		{"below quorum", vote, f.sign(t, vote, f.keys[1]), alice, ErrQuorumNotReached},
		{"duplicate signer", vote, f.sign(t, vote, f.keys[1], f.keys[1]), alice, ErrDuplicateSigner},
		{"unknown oracle", vote, f.sign(t, vote, f.keys[0], stranger), alice, ErrUnknownOracle},
		{"signer mismatch", vote, []Signature{forged, f.sign(t, vote, f.keys[2])[0]}, alice, ErrInvalidSignature},
		{"truncated signature", vote, []Signature{truncated}, alice, ErrInvalidSignature},
		{"signed other amount", vote, f.sign(t, otherVote, f.keys[0], f.keys[1]), alice, ErrInvalidSignature},
		{"foreign mint target", vote, f.sign(t, vote, f.keys[0], f.keys[1]), bob, ErrInvalidMintTarget},
		{"zero amount", newVote(alice, 0, 2), nil, alice, ion.ErrZeroAmount},
		{"zero receiver", newVote(common.Address{}, 5, 2), nil, common.Address{}, ion.ErrZeroReceiver},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.bridge.VoteForMinting(f.db, bob, tt.vote, tt.sigs, tt.to)
			require.ErrorIs(t, err, tt.err)
			require.True(t, f.bridge.TotalSupply(f.db).IsZero())
			require.False(t, f.bridge.VoteFinished(f.db, tt.vote.Tx.ID()))
		})
	}
}

func TestVoteForMintingQuorumError(t *testing.T) {
	f := newFixture(t)
	vote := newVote(alice, 1, 3)

	err := f.bridge.VoteForMinting(f.db, bob, vote, f.sign(t, vote, f.keys[0]), alice)
	var qerr *QuorumError
	require.ErrorAs(t, err, &qerr)
	require.Equal(t, uint32(1), qerr.Have)
	require.Equal(t, uint32(2), qerr.Need)
}

func TestVoteForMintingLegacyRecoveryID(t *testing.T) {
	f := newFixture(t)
	vote := newVote(alice, 7, 4)
	sigs := f.sign(t, vote, f.keys[0], f.keys[1])
	for i := range sigs {
		sigs[i].Signature[64] += 27
	}
	require.NoError(t, f.bridge.VoteForMinting(f.db, bob, vote, sigs, alice))
	require.Equal(t, uint64(7), f.bridge.BalanceOf(f.db, alice).Uint64())
}

func TestVoteForMintingToRouter(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	vote := newVote(alice, 500, 5)
	sigs := f.sign(t, vote, f.keys[1], f.keys[2])

	// only an authorized router may redirect the mint to itself
	require.ErrorIs(f.bridge.VoteForMinting(f.db, bob, vote, sigs, bob), ErrInvalidMintTarget)
	require.NoError(f.bridge.VoteForMinting(f.db, routerAddr, vote, sigs, routerAddr))
	require.Equal(uint64(500), f.bridge.BalanceOf(f.db, routerAddr).Uint64())
	require.True(f.bridge.BalanceOf(f.db, alice).IsZero())
}

func TestVoteDigestBindsBridge(t *testing.T) {
	vote := newVote(alice, 1, 6)
	d1, err := VoteDigest(bridgeAddr, vote)
	require.NoError(t, err)
	d2, err := VoteDigest(routerAddr, vote)
	require.NoError(t, err)
	require.NotEqual(t, d1, d2)

	vote.Tx.LogicalTime++
	d3, err := VoteDigest(bridgeAddr, vote)
	require.NoError(t, err)
	require.NotEqual(t, d1, d3)
}

func TestBurn(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	vote := newVote(alice, 1_000, 7)
	require.NoError(f.bridge.VoteForMinting(f.db, bob, vote, f.sign(t, vote, f.keys[0], f.keys[1]), alice))

	dest := ion.Address{Workchain: -1, AddressHash: [32]byte{0xde, 0xad}}
	record, err := f.bridge.Burn(f.db, alice, uint256.NewInt(400), dest)
	require.NoError(err)
	require.Equal(uint64(0), record.Nonce)
	require.Equal(f.bridge.BurnID(0), record.ID)
	require.Equal(uint64(600), f.bridge.BalanceOf(f.db, alice).Uint64())
	require.Equal(uint64(600), f.bridge.TotalSupply(f.db).Uint64())

	second, err := f.bridge.Burn(f.db, alice, uint256.NewInt(100), dest)
	require.NoError(err)
	require.Equal(uint64(1), second.Nonce)
	require.NotEqual(record.ID, second.ID)
	require.Equal(uint64(2), f.bridge.BurnCount(f.db))

	stored, err := f.bridge.BurnRecord(f.db, record.ID)
	require.NoError(err)
	require.Equal(record, stored)
	require.Equal(int32(-1), stored.Destination.Workchain)

	logs := f.db.Logs()
	last := logs[len(logs)-1]
	require.Equal(bridgeABI.Events["SwapEthToTon"].ID, last.Topics[0])
	require.Equal(common.BytesToHash(alice.Bytes()), last.Topics[1])
	require.Equal(second.ID, last.Topics[3])

	_, err = f.bridge.BurnRecord(f.db, common.Hash{0x01})
	require.ErrorIs(err, ErrBurnNotFound)
}

func TestBurnRejects(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	dest := ion.Address{AddressHash: [32]byte{0x01}}

	_, err := f.bridge.Burn(f.db, alice, uint256.NewInt(0), dest)
	require.ErrorIs(err, ErrInvalidAmount)
	_, err = f.bridge.Burn(f.db, alice, uint256.NewInt(1), ion.Address{})
	require.ErrorIs(err, ErrInvalidDestination)
	_, err = f.bridge.Burn(f.db, alice, uint256.NewInt(1), dest)
	require.ErrorIs(err, erc20.ErrInsufficientBalance)
	require.Zero(f.bridge.BurnCount(f.db))
}

func TestUpdateOracleSet(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)
	next := []common.Address{f.oracles[2], bob}

	require.ErrorIs(f.bridge.UpdateOracleSet(f.db, alice, next, 1), ErrUnauthorized)
	require.ErrorIs(f.bridge.UpdateOracleSet(f.db, admin, next, 3), ErrInvalidQuorum)
	require.Equal(f.oracles, f.bridge.Oracles(f.db))

	require.NoError(f.bridge.UpdateOracleSet(f.db, admin, next, 1))
	require.Equal(next, f.bridge.Oracles(f.db))
	require.Equal(uint32(1), f.bridge.Quorum(f.db))
	require.False(f.bridge.IsOracle(f.db, f.oracles[0]))
	require.True(f.bridge.IsOracle(f.db, bob))

	// retired oracles no longer count
	vote := newVote(alice, 9, 8)
	err := f.bridge.VoteForMinting(f.db, alice, vote, f.sign(t, vote, f.keys[0]), alice)
	require.ErrorIs(err, ErrUnknownOracle)
	require.NoError(f.bridge.VoteForMinting(f.db, alice, vote, f.sign(t, vote, f.keys[2]), alice))
}

func TestSetRouterAndAdmin(t *testing.T) {
	require := require.New(t)
	f := newFixture(t)

	require.ErrorIs(f.bridge.SetRouter(f.db, alice, bob, true), ErrUnauthorized)
	require.ErrorIs(f.bridge.SetRouter(f.db, admin, common.Address{}, true), ErrInvalidRouterAddress)
	require.NoError(f.bridge.SetRouter(f.db, admin, routerAddr, false))
	require.False(f.bridge.IsRouter(f.db, routerAddr))

	require.ErrorIs(f.bridge.TransferAdmin(f.db, alice, bob), ErrUnauthorized)
	require.ErrorIs(f.bridge.TransferAdmin(f.db, admin, common.Address{}), ErrInvalidAdmin)
	require.NoError(f.bridge.TransferAdmin(f.db, admin, bob))
	require.Equal(bob, f.bridge.Admin(f.db))
	logs := f.db.Logs()
	last := logs[len(logs)-1]
	require.Equal(bridgeABI.Events["AdminTransferred"].ID, last.Topics[0])
	require.Equal(common.BytesToHash(admin.Bytes()), last.Topics[1])
	require.Equal(common.BytesToHash(bob.Bytes()), last.Topics[2])
	require.ErrorIs(f.bridge.TransferAdmin(f.db, admin, alice), ErrUnauthorized)
	require.NoError(f.bridge.SetRouter(f.db, bob, routerAddr, true))
}
