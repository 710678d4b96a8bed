// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"fmt"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/ionbridge/bridge"
	"github.com/luxfi/ionbridge/contract"
	"github.com/luxfi/ionbridge/erc20"
	"github.com/luxfi/ionbridge/ionswap"
	"github.com/luxfi/ionbridge/modules"
	"github.com/luxfi/ionbridge/precompileconfig"
	"github.com/luxfi/ionbridge/registry"
)

var _ contract.Configurator = (*configurator)(nil)

// ConfigKey is the key used in json config files to specify this precompile config.
const ConfigKey = "ionBridgeRouterConfig"

// ContractAddress is the genesis IONBridgeRouter.
var ContractAddress = common.HexToAddress(registry.IONBridgeRouterCChain)

// Module is the precompile module
var Module = modules.Module{
	ConfigKey:    ConfigKey,
	Address:      ContractAddress,
	Contract:     RouterPrecompile,
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
	ICEv1   common.Address           `json:"iceV1"`
	ICEv2   common.Address           `json:"iceV2"`
	Bridge  common.Address           `json:"bridge"`
	IONSwap common.Address           `json:"ionSwap"`
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
	_, err := config.Install(state, ContractAddress)
	return err
}

// Install deploys a router at addr against the bridge and pool already
// present in state.
func (c *Config) Install(db contract.StateDB, addr common.Address) (*Router, error) {
	if err := c.Verify(nil); err != nil {
		return nil, err
	}
	b, err := bridge.Load(db, c.Bridge, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load bridge %s: %w", c.Bridge, err)
	}
	swap, err := ionswap.Load(db, c.IONSwap, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load pool %s: %w", c.IONSwap, err)
	}
	return New(db, addr, erc20.At(c.ICEv1), erc20.At(c.ICEv2), b, swap, nil)
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
		c.ICEv1 == other.ICEv1 &&
		c.ICEv2 == other.ICEv2 &&
		c.Bridge == other.Bridge &&
		c.IONSwap == other.IONSwap
}

func (c *Config) Verify(chainConfig precompileconfig.ChainConfig) error {
	if c.ICEv1 == (common.Address{}) {
		return ErrInvalidICEv1TokenAddress
	}
	if c.ICEv2 == (common.Address{}) {
		return ErrInvalidICEv2TokenAddress
	}
	if c.Bridge == (common.Address{}) {
		return ErrInvalidBridgeContractAddress
	}
	if c.IONSwap == (common.Address{}) {
		return ErrInvalidIONSwapContractAddress
	}
	return nil
}
