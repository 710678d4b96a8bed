// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package erc20

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/ionbridge/contract"
)

// Contract is a handle to the token stored at an address. It holds no state
// of its own; every read and write goes through the StateDB.
type Contract struct {
	addr common.Address
}

// At returns a handle to the token at addr.
func At(addr common.Address) *Contract {
	return &Contract{addr: addr}
}

// Deploy writes token metadata at addr. The supply starts at zero.
func Deploy(db contract.StateDB, addr common.Address, name, symbol string, decimals uint8) (*Contract, error) {
	if contract.ReadBool(db, addr, deployedKey) {
		return nil, ErrAlreadyDeployed
	}
	nameSlot, err := encodeShortString(name)
	if err != nil {
		return nil, err
	}
	symbolSlot, err := encodeShortString(symbol)
	if err != nil {
		return nil, err
	}
	if !db.Exist(addr) {
		db.CreateAccount(addr)
	}
	db.SetState(addr, nameKey, nameSlot)
	db.SetState(addr, symbolKey, symbolSlot)
	contract.WriteUint256(db, addr, decimalsKey, uint256.NewInt(uint64(decimals)))
	contract.WriteBool(db, addr, deployedKey, true)
	return At(addr), nil
}

func (c *Contract) Address() common.Address {
	return c.addr
}

// Deployed reports whether token metadata exists at the handle's address.
func (c *Contract) Deployed(db contract.StateDB) bool {
	return contract.ReadBool(db, c.addr, deployedKey)
}

func (c *Contract) Name(db contract.StateDB) string {
	return decodeShortString(db.GetState(c.addr, nameKey))
}

func (c *Contract) Symbol(db contract.StateDB) string {
	return decodeShortString(db.GetState(c.addr, symbolKey))
}

func (c *Contract) Decimals(db contract.StateDB) (uint8, error) {
	if !c.Deployed(db) {
		return 0, ErrNotDeployed
	}
	return uint8(contract.ReadUint256(db, c.addr, decimalsKey).Uint64()), nil
}

func (c *Contract) TotalSupply(db contract.StateDB) *uint256.Int {
	return contract.ReadUint256(db, c.addr, supplyKey)
}

func (c *Contract) BalanceOf(db contract.StateDB, owner common.Address) *uint256.Int {
	return contract.ReadUint256(db, c.addr, balanceKey(owner))
}

func (c *Contract) Allowance(db contract.StateDB, owner, spender common.Address) *uint256.Int {
	return contract.ReadUint256(db, c.addr, allowanceKey(owner, spender))
}

// Transfer moves amount from from to to.
func (c *Contract) Transfer(db contract.StateDB, from, to common.Address, amount *uint256.Int) error {
	if from == (common.Address{}) {
		return ErrInvalidSender
	}
	if to == (common.Address{}) {
		return ErrInvalidReceiver
	}
	return c.update(db, from, to, amount)
}

// TransferFrom moves amount from from to to on behalf of spender, consuming
// allowance. An allowance of MaxUint256 is never decreased.
func (c *Contract) TransferFrom(db contract.StateDB, spender, from, to common.Address, amount *uint256.Int) error {
	if err := c.spendAllowance(db, from, spender, amount); err != nil {
		return err
	}
	return c.Transfer(db, from, to, amount)
}

// Approve sets the allowance of spender over owner's tokens.
func (c *Contract) Approve(db contract.StateDB, owner, spender common.Address, amount *uint256.Int) error {
	if owner == (common.Address{}) {
		return ErrInvalidApprover
	}
	if spender == (common.Address{}) {
		return ErrInvalidSpender
	}
	if !c.Deployed(db) {
		return ErrNotDeployed
	}
	contract.WriteUint256(db, c.addr, allowanceKey(owner, spender), amount)
	return tokenABI.EmitEvent(db, c.addr, "Approval", owner, spender, amount.ToBig())
}

// Mint creates amount tokens for to.
func (c *Contract) Mint(db contract.StateDB, to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return ErrInvalidReceiver
	}
	return c.update(db, common.Address{}, to, amount)
}

// Burn destroys amount tokens held by from.
func (c *Contract) Burn(db contract.StateDB, from common.Address, amount *uint256.Int) error {
	if from == (common.Address{}) {
		return ErrInvalidSender
	}
	return c.update(db, from, common.Address{}, amount)
}

func (c *Contract) spendAllowance(db contract.StateDB, owner, spender common.Address, amount *uint256.Int) error {
	current := c.Allowance(db, owner, spender)
	if current.Eq(maxUint256) {
		return nil
	}
	if current.Lt(amount) {
		return &InsufficientAllowanceError{Spender: spender, Allowance: current, Needed: amount.Clone()}
	}
	contract.WriteUint256(db, c.addr, allowanceKey(owner, spender), new(uint256.Int).Sub(current, amount))
	return nil
}

// update moves value between accounts. The zero address on either side
// mints or burns.
func (c *Contract) update(db contract.StateDB, from, to common.Address, amount *uint256.Int) error {
	if !c.Deployed(db) {
		return ErrNotDeployed
	}
	if from == (common.Address{}) {
		supply, overflow := new(uint256.Int).AddOverflow(c.TotalSupply(db), amount)
		if overflow {
			return ErrSupplyOverflow
		}
		contract.WriteUint256(db, c.addr, supplyKey, supply)
	} else {
		balance := c.BalanceOf(db, from)
		if balance.Lt(amount) {
			return &InsufficientBalanceError{Sender: from, Balance: balance, Needed: amount.Clone()}
		}
		contract.WriteUint256(db, c.addr, balanceKey(from), new(uint256.Int).Sub(balance, amount))
	}

	if to == (common.Address{}) {
		contract.WriteUint256(db, c.addr, supplyKey, new(uint256.Int).Sub(c.TotalSupply(db), amount))
	} else {
		// cannot overflow: balances never exceed the total supply
		contract.WriteUint256(db, c.addr, balanceKey(to), new(uint256.Int).Add(c.BalanceOf(db, to), amount))
	}
	return tokenABI.EmitEvent(db, c.addr, "Transfer", from, to, amount.ToBig())
}

var maxUint256 = new(uint256.Int).SetAllOne()
