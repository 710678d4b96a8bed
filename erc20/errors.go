// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package erc20

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

var (
	ErrInsufficientBalance   = errors.New("ERC20InsufficientBalance")
	ErrInsufficientAllowance = errors.New("ERC20InsufficientAllowance")
	ErrInvalidSender         = errors.New("ERC20InvalidSender")
	ErrInvalidReceiver       = errors.New("ERC20InvalidReceiver")
	ErrInvalidApprover       = errors.New("ERC20InvalidApprover")
	ErrInvalidSpender        = errors.New("ERC20InvalidSpender")
	ErrNotDeployed           = errors.New("no token deployed at address")
	ErrAlreadyDeployed       = errors.New("token already deployed at address")
	ErrSupplyOverflow        = errors.New("total supply overflow")
	ErrStringTooLong         = errors.New("token name or symbol longer than 31 bytes")
)

// InsufficientBalanceError reports a debit larger than the sender's balance.
type InsufficientBalanceError struct {
	Sender  common.Address
	Balance *uint256.Int
	Needed  *uint256.Int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("ERC20InsufficientBalance(%s, %s, %s)", e.Sender, e.Balance.Dec(), e.Needed.Dec())
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// InsufficientAllowanceError reports a transferFrom beyond the approved
// allowance of spender.
type InsufficientAllowanceError struct {
	Spender   common.Address
	Allowance *uint256.Int
	Needed    *uint256.Int
}

func (e *InsufficientAllowanceError) Error() string {
	return fmt.Sprintf("ERC20InsufficientAllowance(%s, %s, %s)", e.Spender, e.Allowance.Dec(), e.Needed.Dec())
}

func (e *InsufficientAllowanceError) Is(target error) bool {
	return target == ErrInsufficientAllowance
}
