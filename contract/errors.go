// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import "errors"

var (
	ErrOutOfGas        = errors.New("out of gas")
	ErrWriteProtection = errors.New("write protection")
	ErrInvalidInput    = errors.New("invalid input")
	ErrReentrant       = errors.New("reentrant call")
	ErrUnknownMethod   = errors.New("unknown method")
)

// ErrEtherNotAccepted is returned for native value transfers, empty call
// data and unknown selectors sent to a contract with no payable entry.
var ErrEtherNotAccepted = errors.New("EtherNotAccepted")
