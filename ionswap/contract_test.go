// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ionswap

import (
	"context"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ionbridge/contract"
	"github.com/luxfi/ionbridge/erc20"
	"github.com/luxfi/ionbridge/state"
)

func newLedger(t *testing.T) *state.Ledger {
	t.Helper()
	l := state.NewLedger(memdb.New(), nil)
	l.Register(poolAddr, PoolPrecompile)
	l.Register(pooledAddr, erc20.TokenPrecompile)
	l.Register(otherAddr, erc20.TokenPrecompile)

	_, err := l.Transact(context.Background(), func(db contract.StateDB) error {
		pooled, err := erc20.Deploy(db, pooledAddr, "Pooled", "P", 9)
		if err != nil {
			return err
		}
		other, err := erc20.Deploy(db, otherAddr, "Other", "O", 18)
		if err != nil {
			return err
		}
		if _, err := New(db, poolAddr, owner, pooled, other, nil); err != nil {
			return err
		}
		if err := pooled.Mint(db, poolAddr, tokens(1_000, 9)); err != nil {
			return err
		}
		if err := other.Mint(db, alice, tokens(1_000, 18)); err != nil {
			return err
		}
		db.AddBalance(alice, uint256.NewInt(1_000), tracing.BalanceChangeTransfer)
		return nil
	})
	require.NoError(t, err)
	return l
}

func callPool(l *state.Ledger, from common.Address, value *uint256.Int, input []byte) (*state.Receipt, error) {
	return l.Call(context.Background(), state.Message{From: from, To: poolAddr, Data: input, Value: value, Gas: 1_000_000})
}

func mustPack(t *testing.T, abi contract.ExtendedABI, method string, args ...interface{}) []byte {
	t.Helper()
	input, err := abi.Pack(method, args...)
	require.NoError(t, err)
	return input
}

func TestPrecompileRejectsEther(t *testing.T) {
	l := newLedger(t)
	getter := mustPack(t, poolABI, "owner")

	tests := []struct {
		name  string
		value *uint256.Int
		input []byte
	}{
		{"value with call", uint256.NewInt(1), getter},
		{"plain value transfer", uint256.NewInt(1), nil},
		{"empty call data", nil, nil},
		{"unknown selector", nil, []byte{0xde, 0xad, 0xbe, 0xef}},
		{"short call data", nil, []byte{0x01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := callPool(l, alice, tt.value, tt.input)
			require.ErrorIs(t, err, ErrEtherNotAccepted)
		})
	}

	// the value transfer was reverted with the call
	require.NoError(t, l.View(context.Background(), func(as contract.AccessibleState) error {
		require.Equal(t, uint64(1_000), as.GetStateDB().GetBalance(alice).Uint64())
		require.True(t, as.GetStateDB().GetBalance(poolAddr).IsZero())
		return nil
	}))
}

func TestPrecompileViews(t *testing.T) {
	require := require.New(t)
	l := newLedger(t)

	tests := []struct {
		method string
		args   []interface{}
		want   interface{}
	}{
		{"pooledToken", nil, pooledAddr},
		{"otherToken", nil, otherAddr},
		{"pooledTokenRate", nil, exp10(9).ToBig()},
		{"otherTokenRate", nil, exp10(18).ToBig()},
		{"owner", nil, owner},
		{"getPooledAmountOut", []interface{}{tokens(5, 18).ToBig()}, tokens(5, 9).ToBig()},
		{"getOtherAmountOut", []interface{}{tokens(5, 9).ToBig()}, tokens(5, 18).ToBig()},
	}
	for _, tt := range tests {
		ret, err := l.StaticCall(context.Background(), state.Message{
			From: bob,
			To:   poolAddr,
			Data: mustPack(t, poolABI, tt.method, tt.args...),
			Gas:  GasView,
		})
		require.NoError(err, tt.method)
		out, err := poolABI.Unpack(tt.method, ret)
		require.NoError(err)
		require.Equal(tt.want, out[0], tt.method)
	}
}

func TestPrecompileWithdrawLiquidityGetData(t *testing.T) {
	require := require.New(t)
	l := newLedger(t)
	amount := tokens(3, 9)

	ret, err := l.StaticCall(context.Background(), state.Message{
		From: bob,
		To:   poolAddr,
		Data: mustPack(t, poolABI, "withdrawLiquidityGetData", pooledAddr, bob, amount.ToBig()),
		Gas:  GasView,
	})
	require.NoError(err)
	out, err := poolABI.Unpack("withdrawLiquidityGetData", ret)
	require.NoError(err)
	payload := out[0].([]byte)

	// submitting the payload performs the withdrawal
	_, err = callPool(l, owner, nil, payload)
	require.NoError(err)

	ret, err = l.StaticCall(context.Background(), state.Message{
		From: bob,
		To:   pooledAddr,
		Data: mustPack(t, erc20.ABI(), "balanceOf", bob),
		Gas:  erc20.GasRead,
	})
	require.NoError(err)
	bal, err := erc20.ABI().Unpack("balanceOf", ret)
	require.NoError(err)
	require.Equal(amount.ToBig(), bal[0])
}

func TestPrecompileSwap(t *testing.T) {
	require := require.New(t)
	l := newLedger(t)
	amount := tokens(10, 18)

	_, err := callPool(l, alice, nil, mustPack(t, poolABI, "swapTokens", amount.ToBig()))
	require.ErrorIs(err, erc20.ErrInsufficientAllowance)

	_, err = l.Call(context.Background(), state.Message{
		From: alice,
		To:   otherAddr,
		Data: mustPack(t, erc20.ABI(), "approve", poolAddr, amount.ToBig()),
		Gas:  erc20.GasApprove,
	})
	require.NoError(err)

	receipt, err := callPool(l, alice, nil, mustPack(t, poolABI, "swapTokens", amount.ToBig()))
	require.NoError(err)
	require.Equal(GasSwap, receipt.GasUsed)
	require.Len(receipt.Logs, 2)

	_, err = callPool(l, alice, nil, mustPack(t, poolABI, "swapTokens", big.NewInt(0)))
	require.ErrorIs(err, ErrSwapAmountZero)

	_, err = l.StaticCall(context.Background(), state.Message{
		From: alice,
		To:   poolAddr,
		Data: mustPack(t, poolABI, "swapTokens", amount.ToBig()),
		Gas:  GasSwap,
	})
	require.ErrorIs(err, contract.ErrWriteProtection)
}

func TestPrecompileWithdrawUnauthorized(t *testing.T) {
	l := newLedger(t)
	_, err := callPool(l, bob, nil, mustPack(t, poolABI, "withdrawLiquidity", pooledAddr, bob, big.NewInt(1)))
	require.ErrorIs(t, err, ErrUnauthorized)
	require.ErrorContains(t, err, bob.Hex())
}

func TestNewPrecompileLogger(t *testing.T) {
	logger := log.NewTestLogger(log.InfoLevel)
	c, ok := NewPrecompile(logger).(*poolPrecompile)
	require.True(t, ok)
	require.Equal(t, logger, c.log)

	def, ok := PoolPrecompile.(*poolPrecompile)
	require.True(t, ok)
	require.NotNil(t, def.log)
}
