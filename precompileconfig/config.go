// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package precompileconfig defines the configuration contract shared by every
// precompile module.
package precompileconfig

import "math/big"

// Config is the JSON-decodable configuration of a precompile module.
type Config interface {
	// Key returns the JSON key of this config in the upgrade file.
	Key() string
	// Timestamp returns the activation time, nil when unscheduled.
	Timestamp() *uint64
	IsDisabled() bool
	Equal(Config) bool
	Verify(ChainConfig) error
}

// ChainConfig is the chain information a config may verify against.
type ChainConfig interface {
	ChainID() *big.Int
}
