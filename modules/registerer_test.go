// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package modules

import (
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ionbridge/contract"
	"github.com/luxfi/ionbridge/precompileconfig"
)

type nopContract struct{}

func (nopContract) Run(contract.AccessibleState, common.Address, common.Address, []byte, uint64, bool) ([]byte, uint64, error) {
	return nil, 0, nil
}

type nopConfigurator struct{}

func (nopConfigurator) MakeConfig() precompileconfig.Config { return nil }

func (nopConfigurator) Configure(precompileconfig.ChainConfig, precompileconfig.Config, contract.StateDB, contract.ConfigurationBlockContext) error {
	return nil
}

func module(key, addr string) Module {
	return Module{
		ConfigKey:    key,
		Address:      common.HexToAddress(addr),
		Contract:     nopContract{},
		Configurator: nopConfigurator{},
	}
}

func TestReservedAddress(t *testing.T) {
	tests := []struct {
		addr     string
		reserved bool
	}{
		{"0x0000000000000000000000000000000000006000", true},
		{"0x0000000000000000000000000000000000006212", true},
		{"0x0000000000000000000000000000000000006fff", true},
		{"0x0000000000000000000000000000000000007000", false},
		{"0x0000000000000000000000000000000000009010", true},
		{"0x0100000000000000000000000000000000000000", false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.reserved, ReservedAddress(common.HexToAddress(tt.addr)), tt.addr)
	}
}

func TestRegisterModule(t *testing.T) {
	saved := registeredModules
	registeredModules = nil
	t.Cleanup(func() { registeredModules = saved })

	b := module("b", "0x0000000000000000000000000000000000006002")
	a := module("a", "0x0000000000000000000000000000000000006001")
	require.NoError(t, RegisterModule(b))
	require.NoError(t, RegisterModule(a))

	mods := RegisteredModules()
	require.Len(t, mods, 2)
	require.Equal(t, "a", mods[0].ConfigKey)
	require.Equal(t, "b", mods[1].ConfigKey)

	got, ok := GetPrecompileModule("b")
	require.True(t, ok)
	require.Equal(t, b.Address, got.Address)

	got, ok = GetPrecompileModuleByAddress(a.Address)
	require.True(t, ok)
	require.Equal(t, "a", got.ConfigKey)

	_, ok = GetPrecompileModule("missing")
	require.False(t, ok)

	// callers cannot reorder the registry through the returned slice
	mods[0], mods[1] = mods[1], mods[0]
	require.Equal(t, "a", RegisteredModules()[0].ConfigKey)

	tests := []struct {
		name string
		m    Module
		err  error
	}{
		{"duplicate key", module("a", "0x0000000000000000000000000000000000006003"), ErrDuplicateKey},
		{"duplicate address", module("c", "0x0000000000000000000000000000000000006001"), ErrDuplicateAddress},
		{"blackhole", Module{ConfigKey: "d", Address: BlackholeAddr, Contract: nopContract{}, Configurator: nopConfigurator{}}, ErrBlackholeAddress},
		{"unreserved", module("e", "0x0000000000000000000000000000000000007001"), ErrUnreservedAddress},
		{"no contract", Module{ConfigKey: "f", Address: common.HexToAddress("0x0000000000000000000000000000000000006004")}, ErrIncompleteModule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, RegisterModule(tt.m), tt.err)
		})
	}
	require.Len(t, RegisteredModules(), 2)
}
