// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ion holds the value types that describe the ION side of the
// bridge: account addresses, source transactions and mint votes.
package ion

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xssnick/tonutils-go/address"
)

var (
	ErrInvalidAddress      = errors.New("invalid ION address")
	ErrWorkchainOutOfRange = errors.New("workchain does not fit a standard address")
)

// Address is an ION account: a signed workchain id and a 32-byte account hash.
type Address struct {
	Workchain   int32
	AddressHash [32]byte
}

// ParseAddress accepts the raw form "<workchain>:<64 hex>" and the
// user-friendly base64 form.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ":") {
		return parseRaw(s)
	}
	addr, err := address.ParseAddr(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return FromTON(addr)
}

func parseRaw(s string) (Address, error) {
	wc, hash, _ := strings.Cut(s, ":")
	workchain, err := strconv.ParseInt(wc, 10, 32)
	if err != nil {
		return Address{}, fmt.Errorf("%w: workchain %q", ErrInvalidAddress, wc)
	}
	data, err := hex.DecodeString(hash)
	if err != nil || len(data) != 32 {
		return Address{}, fmt.Errorf("%w: account hash %q", ErrInvalidAddress, hash)
	}
	var a Address
	a.Workchain = int32(workchain)
	copy(a.AddressHash[:], data)
	return a, nil
}

// FromTON converts a standard tonutils address.
func FromTON(addr *address.Address) (Address, error) {
	if addr == nil || len(addr.Data()) != 32 {
		return Address{}, ErrInvalidAddress
	}
	var a Address
	a.Workchain = int32(int8(addr.Workchain()))
	copy(a.AddressHash[:], addr.Data())
	return a, nil
}

// TON converts a to a tonutils address. Standard addresses carry an 8-bit
// workchain, so larger ids cannot be represented.
func (a Address) TON() (*address.Address, error) {
	if a.Workchain < math.MinInt8 || a.Workchain > math.MaxInt8 {
		return nil, ErrWorkchainOutOfRange
	}
	return address.NewAddress(0, byte(int8(a.Workchain)), a.AddressHash[:]), nil
}

// Friendly returns the base64 user-friendly form.
func (a Address) Friendly(bounceable, testnet bool) (string, error) {
	addr, err := a.TON()
	if err != nil {
		return "", err
	}
	addr.SetBounce(bounceable)
	addr.SetTestnetOnly(testnet)
	return addr.String(), nil
}

// String returns the raw "<workchain>:<hex>" form.
func (a Address) String() string {
	return fmt.Sprintf("%d:%x", a.Workchain, a.AddressHash)
}

// IsZero reports whether a is the zero value.
func (a Address) IsZero() bool {
	return a == Address{}
}
