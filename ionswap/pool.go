// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ionswap implements IONSwap, a two-token liquidity pool that
// exchanges ICE v1 and ICE v2 at the fixed ratio of their decimals.
package ionswap

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/ionbridge/contract"
	"github.com/luxfi/ionbridge/erc20"
)

// Storage key prefixes for pool state
var (
	deployedKey   = contract.StorageKey([]byte("pdep"))
	ownerKey      = contract.StorageKey([]byte("pown"))
	pooledKey     = contract.StorageKey([]byte("ppld"))
	otherKey      = contract.StorageKey([]byte("poth"))
	pooledRateKey = contract.StorageKey([]byte("pprt"))
	otherRateKey  = contract.StorageKey([]byte("port"))
)

// Pool is a handle to an IONSwap pool. The pool's liquidity is whatever the
// two token ledgers report for its address; it keeps no shadow balances.
type Pool struct {
	addr   common.Address
	pooled erc20.Token
	other  erc20.Token
	rates  Rates
	log    log.Logger
}

// New deploys a pool at address. It reads both tokens' decimals once and
// fixes the exchange rate for the lifetime of the pool.
func New(
	db contract.StateDB,
	address common.Address,
	owner common.Address,
	pooledToken erc20.Token,
	otherToken erc20.Token,
	logger log.Logger,
) (*Pool, error) {
	if owner == (common.Address{}) {
		return nil, ErrInvalidOwnerAddress
	}
	if pooledToken == nil || pooledToken.Address() == (common.Address{}) {
		return nil, ErrInvalidPooledTokenAddress
	}
	if otherToken == nil || otherToken.Address() == (common.Address{}) {
		return nil, ErrInvalidOtherTokenAddress
	}
	if pooledToken.Address() == otherToken.Address() {
		return nil, ErrTokensMustBeDifferent
	}
	if contract.ReadBool(db, address, deployedKey) {
		return nil, ErrAlreadyDeployed
	}

	pooledDecimals, err := pooledToken.Decimals(db)
	if err != nil {
		return nil, err
	}
	otherDecimals, err := otherToken.Decimals(db)
	if err != nil {
		return nil, err
	}
	rates, err := NewRates(pooledDecimals, otherDecimals)
	if err != nil {
		return nil, err
	}

	if !db.Exist(address) {
		db.CreateAccount(address)
	}
	contract.WriteBool(db, address, deployedKey, true)
	contract.WriteAddress(db, address, pooledKey, pooledToken.Address())
	contract.WriteAddress(db, address, otherKey, otherToken.Address())
	contract.WriteUint256(db, address, pooledRateKey, rates.Pooled)
	contract.WriteUint256(db, address, otherRateKey, rates.Other)

	p := newPool(address, pooledToken, otherToken, rates, logger)
	if err := p.setOwner(db, owner); err != nil {
		return nil, err
	}
	p.log.Info("pool deployed",
		"address", address,
		"owner", owner,
		"pooledToken", pooledToken.Address(),
		"otherToken", otherToken.Address(),
	)
	return p, nil
}

// Load returns the pool previously deployed at address.
func Load(db contract.StateDB, address common.Address, logger log.Logger) (*Pool, error) {
	if !contract.ReadBool(db, address, deployedKey) {
		return nil, ErrNotDeployed
	}
	rates := Rates{
		Pooled: contract.ReadUint256(db, address, pooledRateKey),
		Other:  contract.ReadUint256(db, address, otherRateKey),
	}
	pooled := erc20.At(contract.ReadAddress(db, address, pooledKey))
	other := erc20.At(contract.ReadAddress(db, address, otherKey))
	return newPool(address, pooled, other, rates, logger), nil
}

func newPool(address common.Address, pooled, other erc20.Token, rates Rates, logger log.Logger) *Pool {
	if logger == nil {
		logger = log.NewTestLogger(log.InfoLevel)
	}
	return &Pool{
		addr:   address,
		pooled: pooled,
		other:  other,
		rates:  rates,
		log:    logger,
	}
}

func (p *Pool) Address() common.Address {
	return p.addr
}

func (p *Pool) PooledToken() erc20.Token {
	return p.pooled
}

func (p *Pool) OtherToken() erc20.Token {
	return p.other
}

func (p *Pool) Rates() Rates {
	return p.rates
}

// GetPooledAmountOut quotes the pooled-token output for an other-token input.
func (p *Pool) GetPooledAmountOut(amount *uint256.Int) (*uint256.Int, error) {
	return p.rates.OtherToPooled(amount)
}

// GetOtherAmountOut quotes the other-token output for a pooled-token input.
func (p *Pool) GetOtherAmountOut(amount *uint256.Int) (*uint256.Int, error) {
	return p.rates.PooledToOther(amount)
}

// SwapTokens takes amount of the other token from caller and pays out the
// pooled token. Caller must have approved the pool.
func (p *Pool) SwapTokens(db contract.StateDB, caller common.Address, amount *uint256.Int) (*uint256.Int, error) {
	return p.swap(db, caller, amount, p.other, p.pooled, p.GetPooledAmountOut, ErrInsufficientPooledTokenBalance)
}

// SwapTokensBack takes amount of the pooled token from caller and pays out
// the other token.
func (p *Pool) SwapTokensBack(db contract.StateDB, caller common.Address, amount *uint256.Int) (*uint256.Int, error) {
	return p.swap(db, caller, amount, p.pooled, p.other, p.GetOtherAmountOut, ErrInsufficientOtherTokenBalance)
}

func (p *Pool) swap(
	db contract.StateDB,
	caller common.Address,
	amount *uint256.Int,
	in erc20.Token,
	out erc20.Token,
	quote func(*uint256.Int) (*uint256.Int, error),
	errLiquidity error,
) (*uint256.Int, error) {
	if amount == nil || amount.IsZero() {
		return nil, ErrSwapAmountZero
	}
	output, err := quote(amount)
	if err != nil {
		return nil, err
	}
	if output.IsZero() {
		return nil, ErrOutputAmountZero
	}

	err = contract.Atomic(db, func() error {
		return contract.NonReentrant(db, p.addr, func() error {
			if out.BalanceOf(db, p.addr).Lt(output) {
				return errLiquidity
			}
			if err := in.TransferFrom(db, p.addr, caller, p.addr, amount); err != nil {
				return err
			}
			return out.Transfer(db, p.addr, caller, output)
		})
	})
	if err != nil {
		return nil, err
	}
	p.log.Debug("swap executed",
		"pool", p.addr,
		"caller", caller,
		"tokenIn", in.Address(),
		"amountIn", amount,
		"tokenOut", out.Address(),
		"amountOut", output,
	)
	return output, nil
}

// WithdrawLiquidity sends amount of token held by the pool to receiver.
// Only the owner may withdraw.
func (p *Pool) WithdrawLiquidity(
	db contract.StateDB,
	caller common.Address,
	token common.Address,
	receiver common.Address,
	amount *uint256.Int,
) error {
	if err := p.checkOwner(db, caller); err != nil {
		return err
	}
	if amount == nil || amount.IsZero() {
		return ErrWithdrawAmountZero
	}
	t, err := p.tokenAt(db, token)
	if err != nil {
		return err
	}

	err = contract.Atomic(db, func() error {
		return contract.NonReentrant(db, p.addr, func() error {
			if t.BalanceOf(db, p.addr).Lt(amount) {
				return ErrInsufficientTokenBalance
			}
			if err := t.Transfer(db, p.addr, receiver, amount); err != nil {
				return err
			}
			return poolABI.EmitEvent(db, p.addr, "TokensWithdrawn", token, receiver, amount.ToBig())
		})
	})
	if err != nil {
		return err
	}
	p.log.Info("liquidity withdrawn",
		"pool", p.addr,
		"token", token,
		"receiver", receiver,
		"amount", amount,
	)
	return nil
}

// tokenAt resolves a withdrawable token. The pool's own tokens keep the
// handles it was built with.
func (p *Pool) tokenAt(db contract.StateDB, token common.Address) (erc20.Token, error) {
	switch {
	case token == (common.Address{}):
		return nil, ErrInvalidTokenAddress
	case token == p.pooled.Address():
		return p.pooled, nil
	case token == p.other.Address():
		return p.other, nil
	}
	t := erc20.At(token)
	if !t.Deployed(db) {
		return nil, ErrInvalidTokenAddress
	}
	return t, nil
}

// WithdrawLiquidityGetData returns the call data of
// withdrawLiquidity(token, receiver, amount), for multisig proposals.
func WithdrawLiquidityGetData(token, receiver common.Address, amount *uint256.Int) ([]byte, error) {
	return poolABI.Pack("withdrawLiquidity", token, receiver, amount.ToBig())
}

func (p *Pool) Owner(db contract.StateDB) common.Address {
	return contract.ReadAddress(db, p.addr, ownerKey)
}

// TransferOwnership hands the pool to newOwner.
func (p *Pool) TransferOwnership(db contract.StateDB, caller, newOwner common.Address) error {
	if err := p.checkOwner(db, caller); err != nil {
		return err
	}
	if newOwner == (common.Address{}) {
		return ErrInvalidOwnerAddress
	}
	return contract.Atomic(db, func() error { return p.setOwner(db, newOwner) })
}

// RenounceOwnership leaves the pool without an owner. Liquidity can no
// longer be withdrawn afterwards.
func (p *Pool) RenounceOwnership(db contract.StateDB, caller common.Address) error {
	if err := p.checkOwner(db, caller); err != nil {
		return err
	}
	return contract.Atomic(db, func() error { return p.setOwner(db, common.Address{}) })
}

func (p *Pool) checkOwner(db contract.StateDB, caller common.Address) error {
	if caller != p.Owner(db) {
		return &OwnableUnauthorizedAccountError{Account: caller}
	}
	return nil
}

func (p *Pool) setOwner(db contract.StateDB, owner common.Address) error {
	previous := p.Owner(db)
	contract.WriteAddress(db, p.addr, ownerKey, owner)
	return poolABI.EmitEvent(db, p.addr, "OwnershipTransferred", previous, owner)
}
