// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"errors"

	"github.com/luxfi/ionbridge/contract"
)

var (
	ErrInvalidICEv1TokenAddress      = errors.New("Invalid ICE v1 token address")
	ErrInvalidICEv2TokenAddress      = errors.New("Invalid ICE v2 token address")
	ErrInvalidBridgeContractAddress  = errors.New("Invalid Bridge contract address")
	ErrInvalidIONSwapContractAddress = errors.New("Invalid IONSwap contract address")

	ErrInvalidAmount        = errors.New("InvalidAmount")
	ErrUnauthorizedReceiver = errors.New("UnauthorizedReceiver")
	ErrResidualBalance      = errors.New("router holds a residual token balance")
	ErrNotDeployed          = errors.New("no router deployed at address")
	ErrAlreadyDeployed      = errors.New("router already deployed at address")

	ErrReentrant        = contract.ErrReentrant
	ErrEtherNotAccepted = contract.ErrEtherNotAccepted
)
