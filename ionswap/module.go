// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ionswap

import (
	"fmt"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/ionbridge/contract"
	"github.com/luxfi/ionbridge/erc20"
	"github.com/luxfi/ionbridge/modules"
	"github.com/luxfi/ionbridge/precompileconfig"
	"github.com/luxfi/ionbridge/registry"
)

var _ contract.Configurator = (*configurator)(nil)

// ConfigKey is the key used in json config files to specify this precompile config.
const ConfigKey = "ionSwapConfig"

// ContractAddress is the genesis IONSwap pool.
var ContractAddress = common.HexToAddress(registry.IONSwapCChain)

// Module is the precompile module
var Module = modules.Module{
	ConfigKey:    ConfigKey,
	Address:      ContractAddress,
	Contract:     PoolPrecompile,
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
	Upgrade     precompileconfig.Upgrade `json:"upgrade,omitempty"`
	Owner       common.Address           `json:"owner"`
	PooledToken common.Address           `json:"pooledToken"`
	OtherToken  common.Address           `json:"otherToken"`
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
	_, err := New(state, ContractAddress, config.Owner, erc20.At(config.PooledToken), erc20.At(config.OtherToken), nil)
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
		c.Owner == other.Owner &&
		c.PooledToken == other.PooledToken &&
		c.OtherToken == other.OtherToken
}

func (c *Config) Verify(chainConfig precompileconfig.ChainConfig) error {
	if c.Owner == (common.Address{}) {
		return ErrInvalidOwnerAddress
	}
	if c.PooledToken == (common.Address{}) {
		return ErrInvalidPooledTokenAddress
	}
	if c.OtherToken == (common.Address{}) {
		return ErrInvalidOtherTokenAddress
	}
	if c.PooledToken == c.OtherToken {
		return ErrTokensMustBeDifferent
	}
	return nil
}
