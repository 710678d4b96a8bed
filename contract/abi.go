// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"fmt"
	"strings"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/types"
)

// SelectorLen is the length of a method ID at the head of call data.
const SelectorLen = 4

// ExtendedABI adds call-data packing helpers on top of abi.ABI.
type ExtendedABI struct {
	abi.ABI
}

// ParseABI parses a JSON ABI and panics on malformed input. Contracts call it
// from package-level vars so a bad ABI fails at init.
func ParseABI(rawABI string) ExtendedABI {
	parsed, err := abi.JSON(strings.NewReader(rawABI))
	if err != nil {
		panic(fmt.Sprintf("failed to parse ABI: %v", err))
	}
	return ExtendedABI{ABI: parsed}
}

// Selector returns the 4-byte method ID of name. It panics if the method is
// missing, which only happens with a mistyped constant.
func (e ExtendedABI) Selector(name string) [SelectorLen]byte {
	method, ok := e.Methods[name]
	if !ok {
		panic(fmt.Sprintf("method '%s' not found", name))
	}
	var id [SelectorLen]byte
	copy(id[:], method.ID)
	return id
}

// MethodByInput resolves the method addressed by call data and returns the
// remaining argument bytes.
func (e ExtendedABI) MethodByInput(input []byte) (*abi.Method, []byte, error) {
	if len(input) < SelectorLen {
		return nil, nil, fmt.Errorf("%w: call data shorter than selector", ErrInvalidInput)
	}
	method, err := e.MethodById(input[:SelectorLen])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %x", ErrUnknownMethod, input[:SelectorLen])
	}
	return method, input[SelectorLen:], nil
}

// PackOutput packs return values of the named method. No method ID.
func (e ExtendedABI) PackOutput(name string, args ...interface{}) ([]byte, error) {
	method, exist := e.Methods[name]
	if !exist {
		return nil, fmt.Errorf("method '%s' not found", name)
	}
	return method.Outputs.Pack(args...)
}

// UnpackInput unpacks argument bytes (without method ID) of the named method.
func (e ExtendedABI) UnpackInput(name string, data []byte) ([]interface{}, error) {
	method, exist := e.Methods[name]
	if !exist {
		return nil, fmt.Errorf("method '%s' not found", name)
	}
	values, err := method.Inputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return values, nil
}

// PackEvent returns the topics and the packed non-indexed data of an event.
func (e ExtendedABI) PackEvent(name string, args ...interface{}) ([]common.Hash, []byte, error) {
	event, exist := e.Events[name]
	if !exist {
		return nil, nil, fmt.Errorf("event '%s' not found", name)
	}
	if len(args) != len(event.Inputs) {
		return nil, nil, fmt.Errorf("event '%s' unexpected number of inputs %d", name, len(args))
	}

	var (
		nonIndexedInputs = make([]interface{}, 0, len(args))
		indexedInputs    = make([]interface{}, 0, len(args))
		nonIndexedArgs   abi.Arguments
	)
	for i, arg := range event.Inputs {
		if arg.Indexed {
			indexedInputs = append(indexedInputs, args[i])
		} else {
			nonIndexedArgs = append(nonIndexedArgs, arg)
			nonIndexedInputs = append(nonIndexedInputs, args[i])
		}
	}

	packed, err := nonIndexedArgs.Pack(nonIndexedInputs...)
	if err != nil {
		return nil, nil, err
	}

	topics := make([]common.Hash, 0, len(indexedInputs)+1)
	if !event.Anonymous {
		topics = append(topics, event.ID)
	}
	for _, input := range indexedInputs {
		topic, err := packTopic(input)
		if err != nil {
			return nil, nil, err
		}
		topics = append(topics, topic)
	}
	return topics, packed, nil
}

// EmitEvent packs an event and appends it to the state's logs.
func (e ExtendedABI) EmitEvent(db StateDB, addr common.Address, name string, args ...interface{}) error {
	topics, data, err := e.PackEvent(name, args...)
	if err != nil {
		return err
	}
	db.AddLog(&types.Log{
		Address: addr,
		Topics:  topics,
		Data:    data,
		TxHash:  db.TxHash(),
	})
	return nil
}

func packTopic(value interface{}) (common.Hash, error) {
	switch v := value.(type) {
	case common.Address:
		return common.BytesToHash(v.Bytes()), nil
	case common.Hash:
		return v, nil
	case [32]byte:
		return common.Hash(v), nil
	case []byte:
		return common.BytesToHash(crypto.Keccak256(v)), nil
	case string:
		return common.BytesToHash(crypto.Keccak256([]byte(v))), nil
	default:
		return common.Hash{}, fmt.Errorf("unsupported indexed type: %T", value)
	}
}
