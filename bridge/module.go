// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"fmt"
	"slices"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/ionbridge/contract"
	"github.com/luxfi/ionbridge/modules"
	"github.com/luxfi/ionbridge/precompileconfig"
	"github.com/luxfi/ionbridge/registry"
)

var _ contract.Configurator = (*configurator)(nil)

// ConfigKey is the key used in json config files to specify this precompile config.
const ConfigKey = "ionBridgeConfig"

// ContractAddress is the genesis ICE v2 bridge token.
var ContractAddress = common.HexToAddress(registry.IONBridgeCChain)

// Module is the precompile module
var Module = modules.Module{
	ConfigKey:    ConfigKey,
	Address:      ContractAddress,
	Contract:     BridgePrecompile,
	Configurator: &configurator{},
}

type configurator struct{}

func init() {
	if err := modules.RegisterModule(Module); err != nil {
		panic(err)
	}
}

// Config implements the precompileconfig.Config interface
type Config struct {
	Upgrade precompileconfig.Upgrade `json:"upgrade,omitempty"`
	Params
}

func (*configurator) MakeConfig() precompileconfig.Config {
	return new(Config)
}

func (*configurator) Configure(
	chainConfig precompileconfig.ChainConfig,
	cfg precompileconfig.Config,
	state contract.StateDB,
	blockContext contract.ConfigurationBlockContext,
) error {
	config, ok := cfg.(*Config)
	if !ok {
		return fmt.Errorf("expected config type %T, got %T: %v", &Config{}, cfg, cfg)
	}
	_, err := Deploy(state, ContractAddress, config.Params, nil)
	return err
}

func (c *Config) Key() string {
	return ConfigKey
}

func (c *Config) Timestamp() *uint64 {
	return c.Upgrade.Timestamp()
}

func (c *Config) IsDisabled() bool {
	return c.Upgrade.Disable
}

func (c *Config) Equal(cfg precompileconfig.Config) bool {
	other, ok := cfg.(*Config)
	if !ok {
		return false
	}
	return c.Upgrade.Equal(&other.Upgrade) &&
		c.Name == other.Name &&
		c.Symbol == other.Symbol &&
		c.Decimals == other.Decimals &&
		c.Admin == other.Admin &&
		c.Quorum == other.Quorum &&
		slices.Equal(c.Oracles, other.Oracles) &&
		slices.Equal(c.Routers, other.Routers)
}

func (c *Config) Verify(chainConfig precompileconfig.ChainConfig) error {
	if c.Admin == (common.Address{}) {
		return ErrInvalidAdmin
	}
	for _, r := range c.Routers {
		if r == (common.Address{}) {
			return ErrInvalidRouterAddress
		}
	}
	return validateOracleSet(c.Oracles, c.Quorum)
}
