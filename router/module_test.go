// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"encoding/json"
	"testing"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ionbridge/modules"
	"github.com/luxfi/ionbridge/state"
)

func TestModuleRegistered(t *testing.T) {
	m, ok := modules.GetPrecompileModule(ConfigKey)
	require.True(t, ok)
	require.Equal(t, ContractAddress, m.Address)
	require.Equal(t, RouterPrecompile, m.Contract)
}

func TestConfigVerify(t *testing.T) {
	full := Config{ICEv1: iceV1Addr, ICEv2: bridgeAddr, Bridge: bridgeAddr, IONSwap: poolAddr}
	tests := []struct {
		name   string
		mutate func(*Config)
		err    error
	}{
		{"zero ice v1", func(c *Config) { c.ICEv1 = common.Address{} }, ErrInvalidICEv1TokenAddress},
		{"zero ice v2", func(c *Config) { c.ICEv2 = common.Address{} }, ErrInvalidICEv2TokenAddress},
		{"zero bridge", func(c *Config) { c.Bridge = common.Address{} }, ErrInvalidBridgeContractAddress},
		{"zero swap", func(c *Config) { c.IONSwap = common.Address{} }, ErrInvalidIONSwapContractAddress},
	}
	require.NoError(t, full.Verify(nil))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := full
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Verify(nil), tt.err)
		})
	}
}

func TestConfigure(t *testing.T) {
	require := require.New(t)
	db := state.New(memdb.New())
	deployFixture(t, db)

	raw := `{"iceV1":"0x0000000000000000000000000000000000007302",
		"iceV2":"0x0000000000000000000000000000000000007303",
		"bridge":"0x0000000000000000000000000000000000007303",
		"ionSwap":"0x0000000000000000000000000000000000007304"}`
	cfg := Module.Configurator.MakeConfig()
	require.NoError(json.Unmarshal([]byte(raw), cfg))
	require.True(cfg.Equal(&Config{ICEv1: iceV1Addr, ICEv2: bridgeAddr, Bridge: bridgeAddr, IONSwap: poolAddr}))
	require.NoError(Module.Configurator.Configure(nil, cfg, db, nil))

	r, err := Load(db, ContractAddress, nil)
	require.NoError(err)
	require.Equal(poolAddr, r.IONSwap().Address())

	bad := &Config{ICEv1: iceV1Addr, ICEv2: bridgeAddr, Bridge: bob, IONSwap: poolAddr}
	_, err = bad.Install(db, routerAddr)
	require.Error(err)
}
