// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ionswap

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/ionbridge/contract"
)

// PoolABI is the call surface of an IONSwap pool.
const PoolABI = `[
	{"type":"function","name":"pooledToken","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"otherToken","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"pooledTokenRate","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"otherTokenRate","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"getPooledAmountOut","stateMutability":"view","inputs":[{"name":"_amount","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getOtherAmountOut","stateMutability":"view","inputs":[{"name":"_amount","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"swapTokens","stateMutability":"nonpayable","inputs":[{"name":"_amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"swapTokensBack","stateMutability":"nonpayable","inputs":[{"name":"_amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"withdrawLiquidity","stateMutability":"nonpayable","inputs":[{"name":"_token","type":"address"},{"name":"_receiver","type":"address"},{"name":"_amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"withdrawLiquidityGetData","stateMutability":"pure","inputs":[{"name":"_token","type":"address"},{"name":"_receiver","type":"address"},{"name":"_amount","type":"uint256"}],"outputs":[{"name":"","type":"bytes"}]},
	{"type":"function","name":"transferOwnership","stateMutability":"nonpayable","inputs":[{"name":"newOwner","type":"address"}],"outputs":[]},
	{"type":"function","name":"renounceOwnership","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"event","name":"TokensWithdrawn","anonymous":false,"inputs":[{"name":"token","type":"address","indexed":true},{"name":"receiver","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"event","name":"OwnershipTransferred","anonymous":false,"inputs":[{"name":"previousOwner","type":"address","indexed":true},{"name":"newOwner","type":"address","indexed":true}]}
]`

var poolABI = contract.ParseABI(PoolABI)

// ABI returns the parsed pool ABI.
func ABI() contract.ExtendedABI {
	return poolABI
}

// Gas costs
const (
	GasView     uint64 = 2_600
	GasSwap     uint64 = 60_000
	GasWithdraw uint64 = 35_000
	GasOwner    uint64 = 10_000
)

var gasCosts = map[string]uint64{
	"pooledToken":              GasView,
	"otherToken":               GasView,
	"pooledTokenRate":          GasView,
	"otherTokenRate":           GasView,
	"owner":                    GasView,
	"getPooledAmountOut":       GasView,
	"getOtherAmountOut":        GasView,
	"withdrawLiquidityGetData": GasView,
	"swapTokens":               GasSwap,
	"swapTokensBack":           GasSwap,
	"withdrawLiquidity":        GasWithdraw,
	"transferOwnership":        GasOwner,
	"renounceOwnership":        GasOwner,
}

// PoolPrecompile dispatches ABI calls to the pool stored at the called
// address.
var PoolPrecompile = NewPrecompile(log.Root())

// NewPrecompile returns the pool precompile logging through logger.
func NewPrecompile(logger log.Logger) contract.StatefulPrecompiledContract {
	return &poolPrecompile{log: logger}
}

type poolPrecompile struct {
	log log.Logger
}

func (c *poolPrecompile) Run(
	accessibleState contract.AccessibleState,
	caller common.Address,
	addr common.Address,
	input []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	// The pool has no receive or fallback entry.
	if v := accessibleState.GetCallValue(); v != nil && !v.IsZero() {
		return nil, suppliedGas, ErrEtherNotAccepted
	}
	method, args, err := poolABI.MethodByInput(input)
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
	values, err := poolABI.UnpackInput(method.Name, args)
	if err != nil {
		return nil, remainingGas, err
	}

	db := accessibleState.GetStateDB()
	pool, err := Load(db, addr, c.log)
	if err != nil {
		return nil, remainingGas, err
	}

	var ret []byte
	err = contract.Atomic(db, func() error {
		var out []interface{}
		switch method.Name {
		case "pooledToken":
			out = append(out, pool.pooled.Address())
		case "otherToken":
			out = append(out, pool.other.Address())
		case "pooledTokenRate":
			out = append(out, pool.rates.Pooled.ToBig())
		case "otherTokenRate":
			out = append(out, pool.rates.Other.ToBig())
		case "owner":
			out = append(out, pool.Owner(db))
		case "getPooledAmountOut":
			q, err := pool.GetPooledAmountOut(toUint256(values[0]))
			if err != nil {
				return err
			}
			out = append(out, q.ToBig())
		case "getOtherAmountOut":
			q, err := pool.GetOtherAmountOut(toUint256(values[0]))
			if err != nil {
				return err
			}
			out = append(out, q.ToBig())
		case "swapTokens":
			if _, err := pool.SwapTokens(db, caller, toUint256(values[0])); err != nil {
				return err
			}
		case "swapTokensBack":
			if _, err := pool.SwapTokensBack(db, caller, toUint256(values[0])); err != nil {
				return err
			}
		case "withdrawLiquidity":
			token, receiver := values[0].(common.Address), values[1].(common.Address)
			if err := pool.WithdrawLiquidity(db, caller, token, receiver, toUint256(values[2])); err != nil {
				return err
			}
		case "withdrawLiquidityGetData":
			data, err := WithdrawLiquidityGetData(values[0].(common.Address), values[1].(common.Address), toUint256(values[2]))
			if err != nil {
				return err
			}
			out = append(out, data)
		case "transferOwnership":
			if err := pool.TransferOwnership(db, caller, values[0].(common.Address)); err != nil {
				return err
			}
		case "renounceOwnership":
			if err := pool.RenounceOwnership(db, caller); err != nil {
				return err
			}
		default:
			return errors.New("unhandled method " + method.Name)
		}
		var err error
		ret, err = poolABI.PackOutput(method.Name, out...)
		return err
	})
	return ret, remainingGas, err
}

func toUint256(v interface{}) *uint256.Int {
	return uint256.MustFromBig(v.(*big.Int))
}
