// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package erc20

import (
	"encoding/json"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/database/memdb"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ionbridge/modules"
	"github.com/luxfi/ionbridge/state"
)

func TestModuleRegistered(t *testing.T) {
	m, ok := modules.GetPrecompileModule(ConfigKey)
	require.True(t, ok)
	require.Equal(t, ContractAddress, m.Address)
}

func TestConfigJSON(t *testing.T) {
	require := require.New(t)
	raw := `{
		"name": "Ice Open Network",
		"symbol": "ICE",
		"decimals": 18,
		"initialHolders": [{"address": "0x00000000000000000000000000000000000a11ce", "amount": "1000"}]
	}`
	cfg := new(Config)
	require.NoError(json.Unmarshal([]byte(raw), cfg))
	require.NoError(cfg.Verify(nil))
	require.Equal(alice, cfg.InitialHolders[0].Address)
	require.Equal(uint64(1000), cfg.InitialHolders[0].Amount.Uint64())
	require.True(cfg.Equal(cfg))
	require.False(cfg.Equal(&Config{Name: "other"}))

	db := state.New(memdb.New())
	require.NoError(Module.Configurator.Configure(nil, cfg, db, nil))
	require.Equal(uint64(1000), At(ContractAddress).BalanceOf(db, alice).Uint64())
}

func TestConfigVerify(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		err  error
	}{
		{"missing name", Config{Symbol: "X"}, ErrMissingName},
		{"missing symbol", Config{Name: "X"}, ErrMissingSymbol},
		{"long symbol", Config{Name: "X", Symbol: "0123456789012345678901234567890123"}, ErrStringTooLong},
		{"zero holder", Config{Name: "X", Symbol: "X", InitialHolders: []Allocation{{Amount: uint256.NewInt(1)}}}, ErrInvalidAllocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.cfg.Verify(nil), tt.err)
		})
	}
}
