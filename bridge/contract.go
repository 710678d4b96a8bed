// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/ionbridge/contract"
	"github.com/luxfi/ionbridge/erc20"
)

// BridgeABI is the bridge-specific call surface. ERC-20 calls are served by
// the embedded token.
const BridgeABI = `[
	{"type":"function","name":"voteForMinting","stateMutability":"nonpayable","inputs":[
		{"name":"data","type":"tuple","components":[
			{"name":"receiver","type":"address"},
			{"name":"amount","type":"uint256"},
			{"name":"tx","type":"tuple","components":[
				{"name":"address","type":"tuple","components":[{"name":"workchain","type":"int32"},{"name":"address_hash","type":"bytes32"}]},
				{"name":"tx_hash","type":"bytes32"},
				{"name":"lt","type":"uint64"}]}]},
		{"name":"signatures","type":"tuple[]","components":[{"name":"signer","type":"address"},{"name":"signature","type":"bytes"}]}],"outputs":[]},
	{"type":"function","name":"burn","stateMutability":"nonpayable","inputs":[
		{"name":"amount","type":"uint256"},
		{"name":"addr","type":"tuple","components":[{"name":"workchain","type":"int32"},{"name":"address_hash","type":"bytes32"}]}],
		"outputs":[{"name":"id","type":"bytes32"}]},
	{"type":"function","name":"getFullOracleSet","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]},
	{"type":"function","name":"quorum","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint32"}]},
	{"type":"function","name":"admin","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"isOracle","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"isRouter","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"finishedVotings","stateMutability":"view","inputs":[{"name":"id","type":"bytes32"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"burnCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint64"}]},
	{"type":"function","name":"burnRecord","stateMutability":"view","inputs":[{"name":"id","type":"bytes32"}],"outputs":[
		{"name":"sender","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"destination","type":"tuple","components":[{"name":"workchain","type":"int32"},{"name":"address_hash","type":"bytes32"}]},
		{"name":"nonce","type":"uint64"}]},
	{"type":"function","name":"updateOracleSet","stateMutability":"nonpayable","inputs":[{"name":"oracles","type":"address[]"},{"name":"quorum","type":"uint32"}],"outputs":[]},
	{"type":"function","name":"setRouter","stateMutability":"nonpayable","inputs":[{"name":"router","type":"address"},{"name":"allowed","type":"bool"}],"outputs":[]},
	{"type":"function","name":"transferAdmin","stateMutability":"nonpayable","inputs":[{"name":"newAdmin","type":"address"}],"outputs":[]},
	{"type":"event","name":"SwapTonToEth","anonymous":false,"inputs":[
		{"name":"workchain","type":"int32","indexed":false},
		{"name":"ton_address_hash","type":"bytes32","indexed":true},
		{"name":"ton_tx_hash","type":"bytes32","indexed":true},
		{"name":"lt","type":"uint64","indexed":false},
		{"name":"to","type":"address","indexed":true},
		{"name":"value","type":"uint256","indexed":false}]},
	{"type":"event","name":"SwapEthToTon","anonymous":false,"inputs":[
		{"name":"from","type":"address","indexed":true},
		{"name":"to_wc","type":"int32","indexed":false},
		{"name":"to_addr_hash","type":"bytes32","indexed":true},
		{"name":"value","type":"uint256","indexed":false},
		{"name":"id","type":"bytes32","indexed":true}]},
	{"type":"event","name":"OracleSetUpdated","anonymous":false,"inputs":[{"name":"oracles","type":"address[]","indexed":false},{"name":"quorum","type":"uint256","indexed":false}]},
	{"type":"event","name":"RouterUpdated","anonymous":false,"inputs":[{"name":"router","type":"address","indexed":true},{"name":"allowed","type":"bool","indexed":false}]},
	{"type":"event","name":"AdminTransferred","anonymous":false,"inputs":[{"name":"previousAdmin","type":"address","indexed":true},{"name":"newAdmin","type":"address","indexed":true}]}
]`

var bridgeABI = contract.ParseABI(BridgeABI)

// ABI returns the parsed bridge ABI.
func ABI() contract.ExtendedABI {
	return bridgeABI
}

var gasCosts = map[string]uint64{
	"voteForMinting":   GasBridgeVote,
	"burn":             GasBridgeBurn,
	"getFullOracleSet": GasBridgeGetStatus,
	"quorum":           GasBridgeGetStatus,
	"admin":            GasBridgeGetStatus,
	"isOracle":         GasBridgeGetStatus,
	"isRouter":         GasBridgeGetStatus,
	"finishedVotings":  GasBridgeGetStatus,
	"burnCount":        GasBridgeGetStatus,
	"burnRecord":       GasBridgeGetStatus,
	"updateOracleSet":  GasBridgeUpdateOracle,
	"setRouter":        GasBridgeSetRouter,
	"transferAdmin":    GasBridgeSetRouter,
}

// BridgePrecompile dispatches ABI calls to the bridge stored at the called
// address.
var BridgePrecompile = NewPrecompile(log.Root())

// NewPrecompile returns the bridge precompile logging through logger.
func NewPrecompile(logger log.Logger) contract.StatefulPrecompiledContract {
	return &bridgePrecompile{log: logger}
}

type bridgePrecompile struct {
	log log.Logger
}

func (c *bridgePrecompile) Run(
	accessibleState contract.AccessibleState,
	caller common.Address,
	addr common.Address,
	input []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	if v := accessibleState.GetCallValue(); v != nil && !v.IsZero() {
		return nil, suppliedGas, contract.ErrEtherNotAccepted
	}
	db := accessibleState.GetStateDB()
	b, err := Load(db, addr, c.log)
	if err != nil {
		return nil, suppliedGas, err
	}
	method, args, err := bridgeABI.MethodByInput(input)
	if errors.Is(err, contract.ErrUnknownMethod) {
		return erc20.Dispatch(b.Contract, accessibleState, caller, input, suppliedGas, readOnly)
	}
	if err != nil {
		return nil, suppliedGas, err
	}
	remainingGas, err := contract.DeductGas(suppliedGas, gasCosts[method.Name])
	if err != nil {
		return nil, 0, err
	}
	if readOnly && !method.IsConstant() {
		return nil, remainingGas, contract.ErrWriteProtection
	}
	values, err := bridgeABI.UnpackInput(method.Name, args)
	if err != nil {
		return nil, remainingGas, err
	}

	var ret []byte
	err = contract.Atomic(db, func() error {
		var out []interface{}
		switch method.Name {
		case "voteForMinting":
			data := *abi.ConvertType(values[0], new(SwapDataArg)).(*SwapDataArg)
			sigArgs := *abi.ConvertType(values[1], new([]SignatureArg)).(*[]SignatureArg)
			remainingGas, err = contract.DeductGas(remainingGas, GasBridgeVoteSig*uint64(len(sigArgs)))
			if err != nil {
				return err
			}
			vote, err := data.Vote()
			if err != nil {
				return err
			}
			to := vote.Receiver
			if b.IsRouter(db, caller) {
				to = caller
			}
			if err := b.VoteForMinting(db, caller, vote, Signatures(sigArgs), to); err != nil {
				return err
			}
		case "burn":
			dest := *abi.ConvertType(values[1], new(AddressArg)).(*AddressArg)
			record, err := b.Burn(db, caller, toUint256(values[0]), dest.ION())
			if err != nil {
				return err
			}
			out = append(out, [32]byte(record.ID))
		case "getFullOracleSet":
			out = append(out, b.Oracles(db))
		case "quorum":
			out = append(out, b.Quorum(db))
		case "admin":
			out = append(out, b.Admin(db))
		case "isOracle":
			out = append(out, b.IsOracle(db, values[0].(common.Address)))
		case "isRouter":
			out = append(out, b.IsRouter(db, values[0].(common.Address)))
		case "finishedVotings":
			out = append(out, b.VoteFinished(db, common.Hash(values[0].([32]byte))))
		case "burnCount":
			out = append(out, b.BurnCount(db))
		case "burnRecord":
			record, err := b.BurnRecord(db, common.Hash(values[0].([32]byte)))
			if err != nil {
				return err
			}
			out = append(out, record.Sender, record.Amount.ToBig(), NewAddressArg(record.Destination), record.Nonce)
		case "updateOracleSet":
			if err := b.UpdateOracleSet(db, caller, values[0].([]common.Address), values[1].(uint32)); err != nil {
				return err
			}
		case "setRouter":
			if err := b.SetRouter(db, caller, values[0].(common.Address), values[1].(bool)); err != nil {
				return err
			}
		case "transferAdmin":
			if err := b.TransferAdmin(db, caller, values[0].(common.Address)); err != nil {
				return err
			}
		default:
			return errors.New("unhandled method " + method.Name)
		}
		var err error
		ret, err = bridgeABI.PackOutput(method.Name, out...)
		return err
	})
	if errors.Is(err, contract.ErrOutOfGas) {
		return nil, 0, err
	}
	return ret, remainingGas, err
}

func toUint256(v interface{}) *uint256.Int {
	return uint256.MustFromBig(v.(*big.Int))
}
