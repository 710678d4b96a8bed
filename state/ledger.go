// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/crypto"
	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	"github.com/luxfi/geth/core/types"
	"github.com/luxfi/log"

	"github.com/luxfi/ionbridge/contract"
	"github.com/luxfi/ionbridge/modules"
	"github.com/luxfi/ionbridge/precompileconfig"
)

var (
	ErrNoContract        = errors.New("no contract at address")
	ErrInsufficientFunds = errors.New("insufficient funds for value transfer")
	ErrUnknownConfig     = errors.New("no module registered for config")
)

// Message is a call against a contract installed on the ledger.
type Message struct {
	From     common.Address
	To       common.Address
	Data     []byte
	Value    *uint256.Int
	Gas      uint64
	ReadOnly bool
}

// Receipt records the outcome of a committed transaction.
type Receipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	Logs        []*types.Log
	ReturnData  []byte
	GasUsed     uint64
}

type blockContext struct {
	number    *big.Int
	timestamp uint64
}

func (b blockContext) Number() *big.Int  { return new(big.Int).Set(b.number) }
func (b blockContext) Timestamp() uint64 { return b.timestamp }

type accessibleState struct {
	db    contract.StateDB
	block blockContext
	value *uint256.Int
}

func (a *accessibleState) GetStateDB() contract.StateDB           { return a.db }
func (a *accessibleState) GetBlockContext() contract.BlockContext { return a.block }
func (a *accessibleState) GetCallValue() *uint256.Int             { return a.value }

// Ledger totally orders transactions over one StateDB. Each transaction is
// its own block; it commits to the database only if it succeeds.
type Ledger struct {
	mu sync.Mutex

	state     *StateDB
	contracts map[common.Address]contract.StatefulPrecompiledContract
	height    uint64
	clock     func() time.Time
	log       log.Logger
}

// NewLedger returns a ledger persisting to db.
func NewLedger(db database.Database, logger log.Logger) *Ledger {
	if logger == nil {
		logger = log.NewTestLogger(log.InfoLevel)
	}
	return &Ledger{
		state:     New(db),
		contracts: make(map[common.Address]contract.StatefulPrecompiledContract),
		clock:     time.Now,
		log:       logger,
	}
}

// Register installs c at addr. Registered contracts shadow modules.
func (l *Ledger) Register(addr common.Address, c contract.StatefulPrecompiledContract) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.contracts[addr] = c
}

func (l *Ledger) lookup(addr common.Address) (contract.StatefulPrecompiledContract, bool) {
	if c, ok := l.contracts[addr]; ok {
		return c, true
	}
	if m, ok := modules.GetPrecompileModuleByAddress(addr); ok && m.Contract != nil {
		return m.Contract, true
	}
	return nil, false
}

// Height returns the number of committed transactions.
func (l *Ledger) Height() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.height
}

func (l *Ledger) nextBlock() blockContext {
	return blockContext{
		number:    new(big.Int).SetUint64(l.height + 1),
		timestamp: uint64(l.clock().Unix()),
	}
}

func txHash(height uint64) common.Hash {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], height)
	return common.BytesToHash(crypto.Keccak256([]byte("ionbridge/tx"), buf[:]))
}

// transact runs fn under the ledger lock and commits or discards its writes.
func (l *Ledger) transact(ctx context.Context, fn func(*accessibleState) ([]byte, uint64, error)) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	block := l.nextBlock()
	l.state.txHash = txHash(block.number.Uint64())
	as := &accessibleState{db: l.state, block: block, value: new(uint256.Int)}

	ret, gasUsed, err := fn(as)
	if err == nil {
		err = l.state.Err()
	}
	if err != nil {
		l.state.Discard()
		l.log.Warn("transaction reverted", "block", block.number, "err", err)
		return nil, err
	}

	logs := l.state.Logs()
	for _, lg := range logs {
		lg.BlockNumber = block.number.Uint64()
	}
	receipt := &Receipt{
		TxHash:      l.state.TxHash(),
		BlockNumber: block.number.Uint64(),
		Logs:        logs,
		ReturnData:  ret,
		GasUsed:     gasUsed,
	}
	if err := l.state.Commit(); err != nil {
		l.state.Discard()
		return nil, err
	}
	l.height++
	return receipt, nil
}

// Transact runs fn as one atomic transaction. Nothing fn wrote survives an
// error.
func (l *Ledger) Transact(ctx context.Context, fn func(db contract.StateDB) error) (*Receipt, error) {
	return l.transact(ctx, func(as *accessibleState) ([]byte, uint64, error) {
		return nil, 0, fn(as.db)
	})
}

// Call executes msg against the contract installed at msg.To.
func (l *Ledger) Call(ctx context.Context, msg Message) (*Receipt, error) {
	return l.transact(ctx, func(as *accessibleState) ([]byte, uint64, error) {
		c, ok := l.lookup(msg.To)
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", ErrNoContract, msg.To)
		}
		if msg.Value != nil && !msg.Value.IsZero() {
			if as.db.GetBalance(msg.From).Lt(msg.Value) {
				return nil, 0, ErrInsufficientFunds
			}
			as.db.SubBalance(msg.From, msg.Value, tracing.BalanceChangeTransfer)
			as.db.AddBalance(msg.To, msg.Value, tracing.BalanceChangeTransfer)
			as.value = msg.Value.Clone()
		}
		ret, remaining, err := c.Run(as, msg.From, msg.To, msg.Data, msg.Gas, msg.ReadOnly)
		return ret, msg.Gas - remaining, err
	})
}

// StaticCall runs a read-only call and discards every write.
func (l *Ledger) StaticCall(ctx context.Context, msg Message) ([]byte, error) {
	var out []byte
	err := l.View(ctx, func(as contract.AccessibleState) error {
		c, ok := l.lookup(msg.To)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNoContract, msg.To)
		}
		ret, _, err := c.Run(as, msg.From, msg.To, msg.Data, msg.Gas, true)
		out = ret
		return err
	})
	return out, err
}

// View runs fn against the current state and discards every write.
func (l *Ledger) View(ctx context.Context, fn func(contract.AccessibleState) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	defer l.state.Discard()
	as := &accessibleState{db: l.state, block: l.nextBlock(), value: new(uint256.Int)}
	if err := fn(as); err != nil {
		return err
	}
	return l.state.Err()
}

// Configure installs module configs into state, each in its own transaction.
func (l *Ledger) Configure(ctx context.Context, chainConfig precompileconfig.ChainConfig, cfgs ...precompileconfig.Config) error {
	for _, cfg := range cfgs {
		m, ok := modules.GetPrecompileModule(cfg.Key())
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownConfig, cfg.Key())
		}
		if cfg.IsDisabled() {
			continue
		}
		if err := cfg.Verify(chainConfig); err != nil {
			return fmt.Errorf("invalid %s: %w", cfg.Key(), err)
		}
		_, err := l.transact(ctx, func(as *accessibleState) ([]byte, uint64, error) {
			return nil, 0, m.Configurator.Configure(chainConfig, cfg, as.db, as.block)
		})
		if err != nil {
			return fmt.Errorf("failed to configure %s: %w", cfg.Key(), err)
		}
		l.log.Info("configured precompile", "key", cfg.Key(), "address", m.Address)
	}
	return nil
}
