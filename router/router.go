// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package router implements IONBridgeRouter, which moves ICE v1 across the
// ION bridge by converting it to and from the bridge's ICE v2 token through an
// IONSwap pool. The router never keeps custody of either token between calls.
package router

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/ionbridge/bridge"
	"github.com/luxfi/ionbridge/contract"
	"github.com/luxfi/ionbridge/erc20"
	"github.com/luxfi/ionbridge/ion"
	"github.com/luxfi/ionbridge/ionswap"
)

// Bridge is the part of the bridge contract the router drives.
type Bridge interface {
	Address() common.Address
	Burn(db contract.StateDB, caller common.Address, amount *uint256.Int, destination ion.Address) (*bridge.BurnRecord, error)
	VoteForMinting(db contract.StateDB, caller common.Address, vote ion.MintVote, sigs []bridge.Signature, to common.Address) error
}

// Swapper converts ICE v1 (the pool's other token) to ICE v2 (its pooled
// token) and back.
type Swapper interface {
	Address() common.Address
	SwapTokens(db contract.StateDB, caller common.Address, amount *uint256.Int) (*uint256.Int, error)
	SwapTokensBack(db contract.StateDB, caller common.Address, amount *uint256.Int) (*uint256.Int, error)
}

var (
	_ Bridge  = (*bridge.Bridge)(nil)
	_ Swapper = (*ionswap.Pool)(nil)
)

// Storage key prefixes for router wiring
var (
	deployedKey = contract.StorageKey([]byte("rdep"))
	iceV1Key    = contract.StorageKey([]byte("rv1"))
	iceV2Key    = contract.StorageKey([]byte("rv2"))
	bridgeKey   = contract.StorageKey([]byte("rbrg"))
	swapKey     = contract.StorageKey([]byte("rswp"))
)

// Router is a handle to an IONBridgeRouter.
type Router struct {
	addr   common.Address
	iceV1  erc20.Token
	iceV2  erc20.Token
	bridge Bridge
	swap   Swapper
	log    log.Logger
}

// New deploys a router at address wired to its four collaborators.
func New(
	db contract.StateDB,
	address common.Address,
	iceV1 erc20.Token,
	iceV2 erc20.Token,
	b Bridge,
	swap Swapper,
	logger log.Logger,
) (*Router, error) {
	if iceV1 == nil || iceV1.Address() == (common.Address{}) {
		return nil, ErrInvalidICEv1TokenAddress
	}
	if iceV2 == nil || iceV2.Address() == (common.Address{}) {
		return nil, ErrInvalidICEv2TokenAddress
	}
	if b == nil || b.Address() == (common.Address{}) {
		return nil, ErrInvalidBridgeContractAddress
	}
	if swap == nil || swap.Address() == (common.Address{}) {
		return nil, ErrInvalidIONSwapContractAddress
	}
	if contract.ReadBool(db, address, deployedKey) {
		return nil, ErrAlreadyDeployed
	}

	if !db.Exist(address) {
		db.CreateAccount(address)
	}
	contract.WriteBool(db, address, deployedKey, true)
	contract.WriteAddress(db, address, iceV1Key, iceV1.Address())
	contract.WriteAddress(db, address, iceV2Key, iceV2.Address())
	contract.WriteAddress(db, address, bridgeKey, b.Address())
	contract.WriteAddress(db, address, swapKey, swap.Address())

	r := newRouter(address, iceV1, iceV2, b, swap, logger)
	r.log.Info("router deployed",
		"address", address,
		"iceV1", iceV1.Address(),
		"iceV2", iceV2.Address(),
		"bridge", b.Address(),
		"ionSwap", swap.Address(),
	)
	return r, nil
}

// Load returns the router previously deployed at address, with its bridge
// and pool loaded from state.
func Load(db contract.StateDB, address common.Address, logger log.Logger) (*Router, error) {
	if !contract.ReadBool(db, address, deployedKey) {
		return nil, ErrNotDeployed
	}
	b, err := bridge.Load(db, contract.ReadAddress(db, address, bridgeKey), logger)
	if err != nil {
		return nil, err
	}
	swap, err := ionswap.Load(db, contract.ReadAddress(db, address, swapKey), logger)
	if err != nil {
		return nil, err
	}
	iceV1 := erc20.At(contract.ReadAddress(db, address, iceV1Key))
	iceV2 := erc20.At(contract.ReadAddress(db, address, iceV2Key))
	return newRouter(address, iceV1, iceV2, b, swap, logger), nil
}

func newRouter(address common.Address, iceV1, iceV2 erc20.Token, b Bridge, swap Swapper, logger log.Logger) *Router {
	if logger == nil {
		logger = log.NewTestLogger(log.InfoLevel)
	}
	return &Router{
		addr:   address,
		iceV1:  iceV1,
		iceV2:  iceV2,
		bridge: b,
		swap:   swap,
		log:    logger,
	}
}

func (r *Router) Address() common.Address {
	return r.addr
}

func (r *Router) ICEv1() erc20.Token {
	return r.iceV1
}

func (r *Router) ICEv2() erc20.Token {
	return r.iceV2
}

func (r *Router) Bridge() Bridge {
	return r.bridge
}

func (r *Router) IONSwap() Swapper {
	return r.swap
}

// Burn pulls amount of ICE v1 from caller, converts it to ICE v2 and burns
// the result on the bridge towards destination. The returned record carries
// the converted amount.
func (r *Router) Burn(
	db contract.StateDB,
	caller common.Address,
	amount *uint256.Int,
	destination ion.Address,
) (*bridge.BurnRecord, error) {
	if amount == nil || amount.IsZero() {
		return nil, ErrInvalidAmount
	}

	var record *bridge.BurnRecord
	err := contract.Atomic(db, func() error {
		return contract.NonReentrant(db, r.addr, func() error {
			held := r.balances(db)
			if err := r.iceV1.TransferFrom(db, r.addr, caller, r.addr, amount); err != nil {
				return err
			}
			if err := r.iceV1.Approve(db, r.addr, r.swap.Address(), amount); err != nil {
				return err
			}
			converted, err := r.swap.SwapTokens(db, r.addr, amount)
			if err != nil {
				return err
			}
			record, err = r.bridge.Burn(db, r.addr, converted, destination)
			if err != nil {
				return err
			}
			if err := r.checkResidual(db, held); err != nil {
				return err
			}
			return routerABI.EmitEvent(db, r.addr, "BurnRouted", caller, amount.ToBig(), converted.ToBig())
		})
	})
	if err != nil {
		return nil, err
	}
	r.log.Debug("burn routed",
		"router", r.addr,
		"sender", caller,
		"amount", amount,
		"converted", record.Amount,
		"destination", destination,
	)
	return record, nil
}

// VoteForMinting submits vote to the bridge, converts the minted ICE v2 back
// to ICE v1 and forwards it to the vote's receiver, who must be the caller.
// It returns the amount of ICE v1 delivered.
func (r *Router) VoteForMinting(
	db contract.StateDB,
	caller common.Address,
	vote ion.MintVote,
	sigs []bridge.Signature,
) (*uint256.Int, error) {
	if caller != vote.Receiver {
		return nil, ErrUnauthorizedReceiver
	}

	var converted *uint256.Int
	err := contract.Atomic(db, func() error {
		return contract.NonReentrant(db, r.addr, func() error {
			held := r.balances(db)
			if err := r.bridge.VoteForMinting(db, r.addr, vote, sigs, r.addr); err != nil {
				return err
			}
			if err := r.iceV2.Approve(db, r.addr, r.swap.Address(), vote.Amount); err != nil {
				return err
			}
			var err error
			converted, err = r.swap.SwapTokensBack(db, r.addr, vote.Amount)
			if err != nil {
				return err
			}
			if err := r.iceV1.Transfer(db, r.addr, vote.Receiver, converted); err != nil {
				return err
			}
			if err := r.checkResidual(db, held); err != nil {
				return err
			}
			return routerABI.EmitEvent(db, r.addr, "MintRouted", vote.Receiver, vote.Amount.ToBig(), converted.ToBig())
		})
	})
	if err != nil {
		return nil, err
	}
	r.log.Debug("mint routed",
		"router", r.addr,
		"receiver", vote.Receiver,
		"amount", vote.Amount,
		"converted", converted,
		"source", vote.Tx.Address,
	)
	return converted, nil
}

// holdings is the router's ICE v1 and ICE v2 balance.
type holdings struct {
	v1, v2 *uint256.Int
}

func (r *Router) balances(db contract.StateDB) holdings {
	return holdings{
		v1: r.iceV1.BalanceOf(db, r.addr),
		v2: r.iceV2.BalanceOf(db, r.addr),
	}
}

// checkResidual fails unless the router holds exactly what it held before
// the flow began. Tokens sent to the router outside a flow stay untouched.
func (r *Router) checkResidual(db contract.StateDB, before holdings) error {
	after := r.balances(db)
	if !after.v1.Eq(before.v1) {
		return fmt.Errorf("%w: %s ICE v1, held %s", ErrResidualBalance, after.v1, before.v1)
	}
	if !after.v2.Eq(before.v2) {
		return fmt.Errorf("%w: %s ICE v2, held %s", ErrResidualBalance, after.v2, before.v2)
	}
	return nil
}
