// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package contract defines the execution surface shared by the ION swap and
// bridge precompiles: the state they mutate, the context a call runs in and
// the helpers every contract uses to pack, charge and revert.
package contract

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	"github.com/luxfi/geth/core/types"

	"github.com/luxfi/ionbridge/precompileconfig"
)

// StateDB is the view of EVM state a contract may read and write.
type StateDB interface {
	GetState(addr common.Address, key common.Hash) common.Hash
	SetState(addr common.Address, key common.Hash, value common.Hash) common.Hash

	GetBalance(addr common.Address) *uint256.Int
	AddBalance(addr common.Address, amount *uint256.Int, reason tracing.BalanceChangeReason) uint256.Int
	SubBalance(addr common.Address, amount *uint256.Int, reason tracing.BalanceChangeReason) uint256.Int

	GetNonce(addr common.Address) uint64
	SetNonce(addr common.Address, nonce uint64, reason tracing.NonceChangeReason)

	Exist(addr common.Address) bool
	CreateAccount(addr common.Address)

	AddLog(log *types.Log)
	Logs() []*types.Log
	TxHash() common.Hash

	Snapshot() int
	RevertToSnapshot(id int)
}

// BlockContext exposes the block a call is executed in.
type BlockContext interface {
	Number() *big.Int
	Timestamp() uint64
}

// ConfigurationBlockContext is the block context available to Configure.
type ConfigurationBlockContext interface {
	Timestamp() uint64
}

// AccessibleState is everything a precompile can reach during Run.
type AccessibleState interface {
	GetStateDB() StateDB
	GetBlockContext() BlockContext
	// GetCallValue returns the native value attached to the call.
	GetCallValue() *uint256.Int
}

// StatefulPrecompiledContract is the entry point of a precompile.
type StatefulPrecompiledContract interface {
	Run(
		accessibleState AccessibleState,
		caller common.Address,
		addr common.Address,
		input []byte,
		suppliedGas uint64,
		readOnly bool,
	) (ret []byte, remainingGas uint64, err error)
}

// Configurator creates a module's config and installs it into state.
type Configurator interface {
	MakeConfig() precompileconfig.Config
	Configure(
		chainConfig precompileconfig.ChainConfig,
		cfg precompileconfig.Config,
		state StateDB,
		blockContext ConfigurationBlockContext,
	) error
}
