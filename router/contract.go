// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/ionbridge/bridge"
	"github.com/luxfi/ionbridge/contract"
)

// RouterABI is the call surface of IONBridgeRouter.
const RouterABI = `[
	{"type":"function","name":"iceV1","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"iceV2","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"bridge","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"ionSwap","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"burn","stateMutability":"nonpayable","inputs":[
		{"name":"amount","type":"uint256"},
		{"name":"addr","type":"tuple","components":[{"name":"workchain","type":"int32"},{"name":"address_hash","type":"bytes32"}]}],"outputs":[]},
	{"type":"function","name":"voteForMinting","stateMutability":"nonpayable","inputs":[
		{"name":"data","type":"tuple","components":[
			{"name":"receiver","type":"address"},
			{"name":"amount","type":"uint256"},
			{"name":"tx","type":"tuple","components":[
				{"name":"address","type":"tuple","components":[{"name":"workchain","type":"int32"},{"name":"address_hash","type":"bytes32"}]},
				{"name":"tx_hash","type":"bytes32"},
				{"name":"lt","type":"uint64"}]}]},
		{"name":"signatures","type":"tuple[]","components":[{"name":"signer","type":"address"},{"name":"signature","type":"bytes"}]}],"outputs":[]},
	{"type":"event","name":"BurnRouted","anonymous":false,"inputs":[{"name":"sender","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"converted","type":"uint256","indexed":false}]},
	{"type":"event","name":"MintRouted","anonymous":false,"inputs":[{"name":"receiver","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"converted","type":"uint256","indexed":false}]}
]`

var routerABI = contract.ParseABI(RouterABI)

// ABI returns the parsed router ABI.
func ABI() contract.ExtendedABI {
	return routerABI
}

// Gas costs
const (
	GasView   uint64 = 2_600
	GasBurn   uint64 = 150_000
	GasVote   uint64 = 180_000
	GasPerSig uint64 = bridge.GasBridgeVoteSig
)

var gasCosts = map[string]uint64{
	"iceV1":          GasView,
	"iceV2":          GasView,
	"bridge":         GasView,
	"ionSwap":        GasView,
	"burn":           GasBurn,
	"voteForMinting": GasVote,
}

// RouterPrecompile dispatches ABI calls to the router stored at the called
// address.
var RouterPrecompile = NewPrecompile(log.Root())

// NewPrecompile returns the router precompile logging through logger.
func NewPrecompile(logger log.Logger) contract.StatefulPrecompiledContract {
	return &routerPrecompile{log: logger}
}

type routerPrecompile struct {
	log log.Logger
}

func (c *routerPrecompile) Run(
	accessibleState contract.AccessibleState,
	caller common.Address,
	addr common.Address,
	input []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	// The router has no receive or fallback entry.
	if v := accessibleState.GetCallValue(); v != nil && !v.IsZero() {
		return nil, suppliedGas, ErrEtherNotAccepted
	}
	method, args, err := routerABI.MethodByInput(input)
	if err != nil {
		return nil, suppliedGas, ErrEtherNotAccepted
	}
	remainingGas, err := contract.DeductGas(suppliedGas, gasCosts[method.Name])
	if err != nil {
		return nil, 0, err
	}
	if readOnly && !method.IsConstant() {
		return nil, remainingGas, contract.ErrWriteProtection
	}
	values, err := routerABI.UnpackInput(method.Name, args)
	if err != nil {
		return nil, remainingGas, err
	}

	db := accessibleState.GetStateDB()
	r, err := Load(db, addr, c.log)
	if err != nil {
		return nil, remainingGas, err
	}

	var ret []byte
	err = contract.Atomic(db, func() error {
		var out []interface{}
		switch method.Name {
		case "iceV1":
			out = append(out, r.iceV1.Address())
		case "iceV2":
			out = append(out, r.iceV2.Address())
		case "bridge":
			out = append(out, r.bridge.Address())
		case "ionSwap":
			out = append(out, r.swap.Address())
		case "burn":
			dest := *abi.ConvertType(values[1], new(bridge.AddressArg)).(*bridge.AddressArg)
			if _, err := r.Burn(db, caller, toUint256(values[0]), dest.ION()); err != nil {
				return err
			}
		case "voteForMinting":
			data := *abi.ConvertType(values[0], new(bridge.SwapDataArg)).(*bridge.SwapDataArg)
			sigArgs := *abi.ConvertType(values[1], new([]bridge.SignatureArg)).(*[]bridge.SignatureArg)
			remainingGas, err = contract.DeductGas(remainingGas, GasPerSig*uint64(len(sigArgs)))
			if err != nil {
				return err
			}
			vote, err := data.Vote()
			if err != nil {
				return err
			}
			if _, err := r.VoteForMinting(db, caller, vote, bridge.Signatures(sigArgs)); err != nil {
				return err
			}
		default:
			return errors.New("unhandled method " + method.Name)
		}
		var err error
		ret, err = routerABI.PackOutput(method.Name, out...)
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
