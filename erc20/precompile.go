// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package erc20

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/ionbridge/contract"
)

// TokenABI is the ERC-20 surface every token contract exposes.
const TokenABI = `[
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]},
	{"type":"event","name":"Approval","anonymous":false,"inputs":[{"name":"owner","type":"address","indexed":true},{"name":"spender","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]}
]`

var tokenABI = contract.ParseABI(TokenABI)

// ABI returns the parsed ERC-20 ABI.
func ABI() contract.ExtendedABI {
	return tokenABI
}

// Gas costs
const (
	GasRead     uint64 = 2_600
	GasTransfer uint64 = 25_000
	GasApprove  uint64 = 22_000
)

var gasCosts = map[string]uint64{
	"name":         GasRead,
	"symbol":       GasRead,
	"decimals":     GasRead,
	"totalSupply":  GasRead,
	"balanceOf":    GasRead,
	"allowance":    GasRead,
	"transfer":     GasTransfer,
	"transferFrom": GasTransfer,
	"approve":      GasApprove,
}

// TokenPrecompile dispatches ABI calls to the token stored at the called
// address.
var TokenPrecompile contract.StatefulPrecompiledContract = &tokenPrecompile{}

type tokenPrecompile struct{}

func (*tokenPrecompile) Run(
	accessibleState contract.AccessibleState,
	caller common.Address,
	addr common.Address,
	input []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	return Dispatch(At(addr), accessibleState, caller, input, suppliedGas, readOnly)
}

// Dispatch runs an ERC-20 call against token. Contracts that embed a token,
// such as the bridge, forward the ERC-20 part of their surface here.
func Dispatch(
	token *Contract,
	accessibleState contract.AccessibleState,
	caller common.Address,
	input []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	if v := accessibleState.GetCallValue(); v != nil && !v.IsZero() {
		return nil, suppliedGas, contract.ErrEtherNotAccepted
	}
	method, args, err := tokenABI.MethodByInput(input)
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
	values, err := tokenABI.UnpackInput(method.Name, args)
	if err != nil {
		return nil, remainingGas, err
	}

	db := accessibleState.GetStateDB()
	var ret []byte
	err = contract.Atomic(db, func() error {
		var out interface{}
		switch method.Name {
		case "name":
			out = token.Name(db)
		case "symbol":
			out = token.Symbol(db)
		case "decimals":
			d, err := token.Decimals(db)
			if err != nil {
				return err
			}
			out = d
		case "totalSupply":
			out = token.TotalSupply(db).ToBig()
		case "balanceOf":
			out = token.BalanceOf(db, values[0].(common.Address)).ToBig()
		case "allowance":
			out = token.Allowance(db, values[0].(common.Address), values[1].(common.Address)).ToBig()
		case "transfer":
			if err := token.Transfer(db, caller, values[0].(common.Address), toUint256(values[1])); err != nil {
				return err
			}
			out = true
		case "transferFrom":
			if err := token.TransferFrom(db, caller, values[0].(common.Address), values[1].(common.Address), toUint256(values[2])); err != nil {
				return err
			}
			out = true
		case "approve":
			if err := token.Approve(db, caller, values[0].(common.Address), toUint256(values[1])); err != nil {
				return err
			}
			out = true
		default:
			return contract.ErrEtherNotAccepted
		}
		var err error
		ret, err = tokenABI.PackOutput(method.Name, out)
		return err
	})
	return ret, remainingGas, err
}

func toUint256(v interface{}) *uint256.Int {
	return uint256.MustFromBig(v.(*big.Int))
}
