// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ionswap

import (
	"errors"
	"fmt"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/ionbridge/contract"
)

var (
	ErrInvalidPooledTokenAddress      = errors.New("InvalidPooledTokenAddress")
	ErrInvalidOtherTokenAddress       = errors.New("InvalidOtherTokenAddress")
	ErrTokensMustBeDifferent          = errors.New("TokensMustBeDifferent")
	ErrInvalidOwnerAddress            = errors.New("OwnableInvalidOwner")
	ErrInvalidTokenAddress            = errors.New("InvalidTokenAddress")
	ErrSwapAmountZero                 = errors.New("SwapAmountZero")
	ErrOutputAmountZero               = errors.New("OutputAmountZero")
	ErrInsufficientPooledTokenBalance = errors.New("InsufficientPooledTokenBalance")
	ErrInsufficientOtherTokenBalance  = errors.New("InsufficientOtherTokenBalance")
	ErrWithdrawAmountZero             = errors.New("WithdrawAmountZero")
	ErrInsufficientTokenBalance       = errors.New("InsufficientTokenBalance")
	ErrUnauthorized                   = errors.New("OwnableUnauthorizedAccount")
	ErrOverflow                       = errors.New("arithmetic overflow")
	ErrNotDeployed                    = errors.New("no pool deployed at address")
	ErrAlreadyDeployed                = errors.New("pool already deployed at address")

	ErrReentrant        = contract.ErrReentrant
	ErrEtherNotAccepted = contract.ErrEtherNotAccepted
)

// OwnableUnauthorizedAccountError names the caller of an owner-only
// operation that is not the owner.
type OwnableUnauthorizedAccountError struct {
	Account common.Address
}

func (e *OwnableUnauthorizedAccountError) Error() string {
	return fmt.Sprintf("OwnableUnauthorizedAccount(%s)", e.Account)
}

func (e *OwnableUnauthorizedAccountError) Is(target error) bool {
	return target == ErrUnauthorized
}
