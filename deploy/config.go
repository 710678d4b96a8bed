// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package deploy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/ionbridge/bridge"
	"github.com/luxfi/ionbridge/erc20"
)

var (
	ErrInvalidDeployer = errors.New("deployer address is zero")
	ErrInvalidOwner    = errors.New("pool owner address is zero")
	ErrMissingBridge   = errors.New("either a bridge config or an existing bridge address is required")
	ErrSeedExisting    = errors.New("cannot seed ICE v2 liquidity on an existing bridge")
)

// Liquidity seeds the pool at deployment.
type Liquidity struct {
	ICEv1 *uint256.Int `json:"iceV1,omitempty"`
	ICEv2 *uint256.Int `json:"iceV2,omitempty"`
}

// Config describes one deployment of the ICE v1 token, IONSwap pool and
// IONBridgeRouter, either against a new bridge or an existing one.
type Config struct {
	// Deployer derives the contract addresses from its nonce. It must be the
	// bridge admin when ExistingBridge is set.
	Deployer common.Address `json:"deployer"`
	// Owner of the IONSwap pool.
	Owner common.Address `json:"owner"`

	ICEv1          erc20.Config   `json:"iceV1"`
	Bridge         *bridge.Params `json:"bridge,omitempty"`
	ExistingBridge common.Address `json:"existingBridge,omitempty"`
	Liquidity      Liquidity      `json:"liquidity"`
}

// LoadConfig reads a deployment config from a JSON file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := new(Config)
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Verify() error {
	if c.Deployer == (common.Address{}) {
		return ErrInvalidDeployer
	}
	if c.Owner == (common.Address{}) {
		return ErrInvalidOwner
	}
	if err := c.ICEv1.Verify(nil); err != nil {
		return fmt.Errorf("ice v1: %w", err)
	}
	switch {
	case c.Bridge != nil && c.ExistingBridge != (common.Address{}):
		return fmt.Errorf("%w, not both", ErrMissingBridge)
	case c.Bridge != nil:
		cfg := bridge.Config{Params: *c.Bridge}
		if err := cfg.Verify(nil); err != nil {
			return fmt.Errorf("bridge: %w", err)
		}
	case c.ExistingBridge == (common.Address{}):
		return ErrMissingBridge
	case c.Liquidity.ICEv2 != nil && !c.Liquidity.ICEv2.IsZero():
		return ErrSeedExisting
	}
	return nil
}
