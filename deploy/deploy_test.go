// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package deploy

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/crypto"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/ionbridge/bridge"
	"github.com/luxfi/ionbridge/contract"
	"github.com/luxfi/ionbridge/erc20"
	"github.com/luxfi/ionbridge/ion"
	"github.com/luxfi/ionbridge/ionswap"
	"github.com/luxfi/ionbridge/router"
	"github.com/luxfi/ionbridge/state"
)

var (
	deployer = common.HexToAddress("0x00000000000000000000000000000000000000de")
	owner    = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	alice    = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	oracle   = common.HexToAddress("0x0000000000000000000000000000000000000c1e")
)

const configJSON = `{
	"deployer": "0x00000000000000000000000000000000000000de",
	"owner": "0x00000000000000000000000000000000000000aa",
	"iceV1": {
		"name": "Ice",
		"symbol": "ICE",
		"decimals": 18,
		"initialHolders": [{"address": "0x00000000000000000000000000000000000a11ce", "amount": "1000000000000000000000"}]
	},
	"bridge": {
		"name": "Ice Open Network",
		"symbol": "ICE",
		"decimals": 9,
		"admin": "0x00000000000000000000000000000000000000aa",
		"oracles": ["0x0000000000000000000000000000000000000c1e"],
		"quorum": 1
	},
	"liquidity": {"iceV2": "1000000000000000"}
}`

func writeConfig(t *testing.T, raw string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deploy.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	require := require.New(t)
	cfg, err := LoadConfig(writeConfig(t, configJSON))
	require.NoError(err)
	require.Equal(deployer, cfg.Deployer)
	require.Equal(uint8(18), cfg.ICEv1.Decimals)
	require.Equal([]common.Address{oracle}, cfg.Bridge.Oracles)
	require.Equal(uint64(1_000_000_000_000_000), cfg.Liquidity.ICEv2.Uint64())

	_, err = LoadConfig(writeConfig(t, `{"deployer": 1}`))
	require.Error(err)
	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(err, os.ErrNotExist)
}

func TestConfigVerify(t *testing.T) {
	valid, err := LoadConfig(writeConfig(t, configJSON))
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
		err    error
	}{
		{"zero deployer", func(c *Config) { c.Deployer = common.Address{} }, ErrInvalidDeployer},
		{"zero owner", func(c *Config) { c.Owner = common.Address{} }, ErrInvalidOwner},
		{"bad token", func(c *Config) { c.ICEv1.Name = "" }, erc20.ErrMissingName},
		{"bad bridge", func(c *Config) { c.Bridge.Quorum = 2 }, bridge.ErrInvalidQuorum},
		{"no bridge", func(c *Config) { c.Bridge = nil }, ErrMissingBridge},
		{"both bridges", func(c *Config) { c.ExistingBridge = alice }, ErrMissingBridge},
		{"seed existing", func(c *Config) { c.Bridge, c.ExistingBridge = nil, alice }, ErrSeedExisting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *valid
			params := *valid.Bridge
			cfg.Bridge = &params
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Verify(), tt.err)
		})
	}
}

func TestDeploy(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	cfg, err := LoadConfig(writeConfig(t, configJSON))
	require.NoError(err)

	l := state.NewLedger(memdb.New(), nil)
	d, err := Deploy(ctx, l, cfg, nil)
	require.NoError(err)
	require.Equal(crypto.CreateAddress(deployer, 0), d.ICEv1)
	require.Equal(crypto.CreateAddress(deployer, 1), d.Bridge)
	require.Equal(crypto.CreateAddress(deployer, 2), d.IONSwap)
	require.Equal(crypto.CreateAddress(deployer, 3), d.Router)

	require.NoError(l.View(ctx, func(as contract.AccessibleState) error {
		db := as.GetStateDB()
		require.Equal(uint64(4), db.GetNonce(deployer))

		r, err := router.Load(db, d.Router, nil)
		require.NoError(err)
		require.Equal(d.ICEv1, r.ICEv1().Address())
		require.Equal(d.Bridge, r.ICEv2().Address())

		b, err := bridge.Load(db, d.Bridge, nil)
		require.NoError(err)
		require.True(b.IsRouter(db, d.Router))
		require.Equal(uint64(1_000_000_000_000_000), b.BalanceOf(db, d.IONSwap).Uint64())

		pool, err := ionswap.Load(db, d.IONSwap, nil)
		require.NoError(err)
		require.Equal(d.Bridge, pool.PooledToken().Address())
		require.Equal(d.ICEv1, pool.OtherToken().Address())
		require.Equal(owner, pool.Owner(db))
		return nil
	}))

	// the installed precompiles carry a full burn through the router
	amount := new(big.Int).Mul(big.NewInt(100), big.NewInt(1_000_000_000_000_000_000))
	approve, err := erc20.ABI().Pack("approve", d.Router, amount)
	require.NoError(err)
	_, err = l.Call(ctx, state.Message{From: alice, To: d.ICEv1, Data: approve, Gas: erc20.GasApprove})
	require.NoError(err)

	burn, err := router.ABI().Pack("burn", amount, bridge.NewAddressArg(ion.Address{AddressHash: [32]byte{0x01}}))
	require.NoError(err)
	_, err = l.Call(ctx, state.Message{From: alice, To: d.Router, Data: burn, Gas: router.GasBurn})
	require.NoError(err)

	require.NoError(l.View(ctx, func(as contract.AccessibleState) error {
		db := as.GetStateDB()
		b, err := bridge.Load(db, d.Bridge, nil)
		require.NoError(err)
		require.Equal(uint64(1), b.BurnCount(db))
		record, err := b.BurnRecord(db, b.BurnID(0))
		require.NoError(err)
		require.Equal(uint256.NewInt(100_000_000_000), record.Amount)
		return nil
	}))
}

func TestDeployExistingBridge(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	bridgeAddr := common.HexToAddress("0x0000000000000000000000000000000000007401")

	base, err := LoadConfig(writeConfig(t, configJSON))
	require.NoError(err)
	params := *base.Bridge

	l := state.NewLedger(memdb.New(), nil)
	_, err = l.Transact(ctx, func(db contract.StateDB) error {
		params.Admin = deployer
		_, err := bridge.Deploy(db, bridgeAddr, params, nil)
		return err
	})
	require.NoError(err)

	cfg := *base
	cfg.Bridge = nil
	cfg.ExistingBridge = bridgeAddr
	cfg.Liquidity = Liquidity{ICEv1: uint256.NewInt(5)}

	d, err := Deploy(ctx, l, &cfg, nil)
	require.NoError(err)
	require.Equal(bridgeAddr, d.Bridge)
	require.Equal(crypto.CreateAddress(deployer, 1), d.IONSwap)
	require.Equal(crypto.CreateAddress(deployer, 2), d.Router)

	require.NoError(l.View(ctx, func(as contract.AccessibleState) error {
		db := as.GetStateDB()
		b, err := bridge.Load(db, bridgeAddr, nil)
		require.NoError(err)
		require.True(b.IsRouter(db, d.Router))
		require.Equal(uint64(5), erc20.At(d.ICEv1).BalanceOf(db, d.IONSwap).Uint64())
		return nil
	}))
}

func TestDeployRollsBack(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	bridgeAddr := common.HexToAddress("0x0000000000000000000000000000000000007402")

	base, err := LoadConfig(writeConfig(t, configJSON))
	require.NoError(err)
	params := *base.Bridge

	l := state.NewLedger(memdb.New(), nil)
	_, err = l.Transact(ctx, func(db contract.StateDB) error {
		_, err := bridge.Deploy(db, bridgeAddr, params, nil)
		return err
	})
	require.NoError(err)

	// the deployer is not the bridge admin, so the router cannot be authorized
	cfg := *base
	cfg.Bridge = nil
	cfg.ExistingBridge = bridgeAddr
	cfg.Liquidity = Liquidity{}
	_, err = Deploy(ctx, l, &cfg, nil)
	require.ErrorIs(err, bridge.ErrUnauthorized)

	require.NoError(l.View(ctx, func(as contract.AccessibleState) error {
		db := as.GetStateDB()
		require.Zero(db.GetNonce(deployer))
		require.False(erc20.At(crypto.CreateAddress(deployer, 0)).Deployed(db))
		return nil
	}))
}
