// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ionswap

import (
	"github.com/holiman/uint256"
)

// MaxDecimals is the largest decimal count whose rate fits 256 bits.
const MaxDecimals = 77

// Rates is the fixed exchange rate of a pool: each side's 10^decimals.
type Rates struct {
	Pooled *uint256.Int
	Other  *uint256.Int
}

// NewRates derives the rate pair from the token decimals.
func NewRates(pooledDecimals, otherDecimals uint8) (Rates, error) {
	pooled, err := decimalRate(pooledDecimals)
	if err != nil {
		return Rates{}, err
	}
	other, err := decimalRate(otherDecimals)
	if err != nil {
		return Rates{}, err
	}
	return Rates{Pooled: pooled, Other: other}, nil
}

func decimalRate(decimals uint8) (*uint256.Int, error) {
	if decimals > MaxDecimals {
		return nil, ErrOverflow
	}
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals))), nil
}

// OtherToPooled converts an other-token amount: floor(amount * pooled / other).
func (r Rates) OtherToPooled(amount *uint256.Int) (*uint256.Int, error) {
	return mulDiv(amount, r.Pooled, r.Other)
}

// PooledToOther converts a pooled-token amount: floor(amount * other / pooled).
func (r Rates) PooledToOther(amount *uint256.Int) (*uint256.Int, error) {
	return mulDiv(amount, r.Other, r.Pooled)
}

// mulDiv computes floor(x*y/d) with a 512-bit intermediate product.
func mulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrOverflow
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, ErrOverflow
	}
	return z, nil
}
