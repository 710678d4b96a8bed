// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package deploy wires a complete ION bridge route in one transaction: the
// ICE v1 token, the bridge token, an IONSwap pool between them and an
// IONBridgeRouter, and installs their precompiles on a ledger.
package deploy

import (
	"context"
	"fmt"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	"github.com/luxfi/geth/crypto"
	"github.com/luxfi/log"

	"github.com/luxfi/ionbridge/bridge"
	"github.com/luxfi/ionbridge/contract"
	"github.com/luxfi/ionbridge/erc20"
	"github.com/luxfi/ionbridge/ionswap"
	"github.com/luxfi/ionbridge/router"
	"github.com/luxfi/ionbridge/state"
)

// Deployment lists the addresses of a deployed route.
type Deployment struct {
	ICEv1   common.Address `json:"iceV1"`
	Bridge  common.Address `json:"bridge"`
	IONSwap common.Address `json:"ionSwap"`
	Router  common.Address `json:"router"`
}

// Deploy creates the route described by cfg on l. Either everything is
// deployed or nothing is.
func Deploy(ctx context.Context, l *state.Ledger, cfg *Config, logger log.Logger) (*Deployment, error) {
	if logger == nil {
		logger = log.NewTestLogger(log.InfoLevel)
	}
	if err := cfg.Verify(); err != nil {
		return nil, err
	}

	var d *Deployment
	_, err := l.Transact(ctx, func(db contract.StateDB) error {
		var err error
		d, err = deploy(db, cfg, logger)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.Register(d.ICEv1, erc20.TokenPrecompile)
	l.Register(d.Bridge, bridge.NewPrecompile(logger))
	l.Register(d.IONSwap, ionswap.NewPrecompile(logger))
	l.Register(d.Router, router.NewPrecompile(logger))
	logger.Info("route deployed",
		"iceV1", d.ICEv1,
		"bridge", d.Bridge,
		"ionSwap", d.IONSwap,
		"router", d.Router,
	)
	return d, nil
}

func deploy(db contract.StateDB, cfg *Config, logger log.Logger) (*Deployment, error) {
	next := addressAllocator(db, cfg.Deployer)
	d := &Deployment{ICEv1: next()}
	if cfg.Bridge != nil {
		d.Bridge = next()
	} else {
		d.Bridge = cfg.ExistingBridge
	}
	d.IONSwap = next()
	d.Router = next()

	iceV1, err := cfg.ICEv1.Install(db, d.ICEv1)
	if err != nil {
		return nil, fmt.Errorf("ice v1: %w", err)
	}

	var b *bridge.Bridge
	if cfg.Bridge != nil {
		params := *cfg.Bridge
		params.Routers = append(append([]common.Address(nil), params.Routers...), d.Router)
		b, err = bridge.Deploy(db, d.Bridge, params, logger)
	} else {
		b, err = bridge.Load(db, d.Bridge, logger)
		if err == nil {
			err = b.SetRouter(db, cfg.Deployer, d.Router, true)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("bridge: %w", err)
	}

	pool, err := ionswap.New(db, d.IONSwap, cfg.Owner, b, iceV1, logger)
	if err != nil {
		return nil, fmt.Errorf("ionswap: %w", err)
	}
	if _, err := router.New(db, d.Router, iceV1, b, b, pool, logger); err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	if amt := cfg.Liquidity.ICEv1; amt != nil && !amt.IsZero() {
		if err := iceV1.Mint(db, d.IONSwap, amt); err != nil {
			return nil, fmt.Errorf("seed ice v1: %w", err)
		}
	}
	if amt := cfg.Liquidity.ICEv2; amt != nil && !amt.IsZero() {
		if err := b.Mint(db, d.IONSwap, amt); err != nil {
			return nil, fmt.Errorf("seed ice v2: %w", err)
		}
	}
	return d, nil
}

// addressAllocator hands out contract addresses derived from deployer's
// nonce, bumping the nonce for each one.
func addressAllocator(db contract.StateDB, deployer common.Address) func() common.Address {
	return func() common.Address {
		nonce := db.GetNonce(deployer)
		db.SetNonce(deployer, nonce+1, tracing.NonceChangeContractCreator)
		return crypto.CreateAddress(deployer, nonce)
	}
}
