// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package modules

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/luxfi/geth/common"
)

// AddressRange represents a continuous range of addresses
type AddressRange struct {
	Start common.Address
	End   common.Address
}

// Contains returns true iff [addr] is contained within the (inclusive)
// range of addresses defined by [a].
func (a *AddressRange) Contains(addr common.Address) bool {
	addrBytes := addr.Bytes()
	return bytes.Compare(addrBytes, a.Start[:]) >= 0 && bytes.Compare(addrBytes, a.End[:]) <= 0
}

// BlackholeAddr is the address where assets are burned
var BlackholeAddr = common.Address{
	1, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

var (
	ErrBlackholeAddress  = errors.New("address overlaps with blackhole address")
	ErrUnreservedAddress = errors.New("address not in a reserved range")
	ErrDuplicateKey      = errors.New("config key already used by a stateful precompile")
	ErrDuplicateAddress  = errors.New("address already used by a stateful precompile")
	ErrIncompleteModule  = errors.New("module has no contract or configurator")
)

var (
	// registeredModules is kept sorted by address for deterministic iteration
	registeredModules = make([]Module, 0)

	reservedRanges = []AddressRange{
		// LP-6xxx: Bridges (0x0..6000 - 0x0..6FFF)
		{
			Start: common.HexToAddress("0x0000000000000000000000000000000000006000"),
			End:   common.HexToAddress("0x0000000000000000000000000000000000006fff"),
		},
		// LP-9xxx: DEX/Markets (0x0..9000 - 0x0..9FFF)
		{
			Start: common.HexToAddress("0x0000000000000000000000000000000000009000"),
			End:   common.HexToAddress("0x0000000000000000000000000000000000009fff"),
		},
	}
)

// ReservedAddress returns true if [addr] is in a reserved range for custom precompiles
func ReservedAddress(addr common.Address) bool {
	for _, reservedRange := range reservedRanges {
		if reservedRange.Contains(addr) {
			return true
		}
	}
	return false
}

// RegisterModule registers a stateful precompile module
func RegisterModule(stm Module) error {
	address := stm.Address
	key := stm.ConfigKey

	if stm.Contract == nil || stm.Configurator == nil {
		return fmt.Errorf("%w: %s", ErrIncompleteModule, key)
	}
	if address == BlackholeAddr {
		return fmt.Errorf("%w: %s", ErrBlackholeAddress, address)
	}
	if !ReservedAddress(address) {
		return fmt.Errorf("%w: %s", ErrUnreservedAddress, address)
	}

	for _, registeredModule := range registeredModules {
		if registeredModule.ConfigKey == key {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
		}
		if registeredModule.Address == address {
			return fmt.Errorf("%w: %s", ErrDuplicateAddress, address)
		}
	}
	registeredModules = insertSortedByAddress(registeredModules, stm)
	return nil
}

// GetPrecompileModuleByAddress returns the module installed at address.
func GetPrecompileModuleByAddress(address common.Address) (Module, bool) {
	for _, stm := range registeredModules {
		if stm.Address == address {
			return stm, true
		}
	}
	return Module{}, false
}

func GetPrecompileModule(key string) (Module, bool) {
	for _, stm := range registeredModules {
		if stm.ConfigKey == key {
			return stm, true
		}
	}
	return Module{}, false
}

// RegisteredModules returns every module ordered by address.
func RegisteredModules() []Module {
	out := make([]Module, len(registeredModules))
	copy(out, registeredModules)
	return out
}

func insertSortedByAddress(data []Module, stm Module) []Module {
	data = append(data, stm)
	sort.Sort(moduleArray(data))
	return data
}
