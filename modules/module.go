// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package modules

import (
	"bytes"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/ionbridge/contract"
)

// Module binds a precompile to its address and config key.
type Module struct {
	// ConfigKey is the key of the module's config in upgrade JSON.
	ConfigKey string
	// Address is where the precompile is installed.
	Address common.Address
	// Contract dispatches calls to the precompile.
	Contract contract.StatefulPrecompiledContract
	// Configurator installs the module's config into state.
	Configurator contract.Configurator
}

type moduleArray []Module

func (u moduleArray) Len() int {
	return len(u)
}

func (u moduleArray) Swap(i, j int) {
	u[i], u[j] = u[j], u[i]
}

func (m moduleArray) Less(i, j int) bool {
	return bytes.Compare(m[i].Address.Bytes(), m[j].Address.Bytes()) < 0
}
