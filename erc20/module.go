// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package erc20

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/ionbridge/contract"
	"github.com/luxfi/ionbridge/modules"
	"github.com/luxfi/ionbridge/precompileconfig"
	"github.com/luxfi/ionbridge/registry"
)

var _ contract.Configurator = (*configurator)(nil)

// ConfigKey is the key used in json config files to specify this precompile config.
const ConfigKey = "erc20Config"

// ContractAddress is the genesis ICE v1 token.
var ContractAddress = common.HexToAddress(registry.ICEv1TokenCChain)

var (
	ErrMissingName       = errors.New("token name required")
	ErrMissingSymbol     = errors.New("token symbol required")
	ErrInvalidAllocation = errors.New("invalid initial allocation")
)

// Module is the precompile module
var Module = modules.Module{
	ConfigKey:    ConfigKey,
	Address:      ContractAddress,
	Contract:     TokenPrecompile,
	Configurator: &configurator{},
}

type configurator struct{}

func init() {
	if err := modules.RegisterModule(Module); err != nil {
		panic(err)
	}
}

// Allocation credits an account at deployment.
type Allocation struct {
	Address common.Address `json:"address"`
	Amount  *uint256.Int   `json:"amount"`
}

// Config implements the precompileconfig.Config interface
type Config struct {
	Upgrade        precompileconfig.Upgrade `json:"upgrade,omitempty"`
	Name           string                   `json:"name"`
	Symbol         string                   `json:"symbol"`
	Decimals       uint8                    `json:"decimals"`
	InitialHolders []Allocation             `json:"initialHolders,omitempty"`
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

// Install deploys the configured token at addr and credits the initial
// holders.
func (c *Config) Install(db contract.StateDB, addr common.Address) (*Contract, error) {
	token, err := Deploy(db, addr, c.Name, c.Symbol, c.Decimals)
	if err != nil {
		return nil, err
	}
	for _, a := range c.InitialHolders {
		if err := token.Mint(db, a.Address, a.Amount); err != nil {
			return nil, fmt.Errorf("failed to credit %s: %w", a.Address, err)
		}
	}
	return token, nil
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
	if !c.Upgrade.Equal(&other.Upgrade) ||
		c.Name != other.Name ||
		c.Symbol != other.Symbol ||
		c.Decimals != other.Decimals ||
		len(c.InitialHolders) != len(other.InitialHolders) {
		return false
	}
	for i, a := range c.InitialHolders {
		b := other.InitialHolders[i]
		if a.Address != b.Address || !a.Amount.Eq(b.Amount) {
			return false
		}
	}
	return true
}

func (c *Config) Verify(chainConfig precompileconfig.ChainConfig) error {
	if c.Name == "" {
		return ErrMissingName
	}
	if c.Symbol == "" {
		return ErrMissingSymbol
	}
	if _, err := encodeShortString(c.Name); err != nil {
		return err
	}
	if _, err := encodeShortString(c.Symbol); err != nil {
		return err
	}
	for _, a := range c.InitialHolders {
		if a.Address == (common.Address{}) || a.Amount == nil {
			return fmt.Errorf("%w: %s", ErrInvalidAllocation, a.Address)
		}
	}
	return nil
}
