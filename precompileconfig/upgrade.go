// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package precompileconfig

// Upgrade schedules the activation or deactivation of a module.
type Upgrade struct {
	BlockTimestamp *uint64 `json:"blockTimestamp,omitempty"`
	Disable        bool    `json:"disable,omitempty"`
}

func (u *Upgrade) Timestamp() *uint64 {
	return u.BlockTimestamp
}

// Equal returns true if both upgrades activate at the same time with the
// same disable flag.
func (u *Upgrade) Equal(other *Upgrade) bool {
	if other == nil {
		return false
	}
	if u.Disable != other.Disable {
		return false
	}
	switch {
	case u.BlockTimestamp == nil && other.BlockTimestamp == nil:
		return true
	case u.BlockTimestamp == nil || other.BlockTimestamp == nil:
		return false
	default:
		return *u.BlockTimestamp == *other.BlockTimestamp
	}
}

// IsActive reports whether the upgrade is in effect at timestamp.
func (u *Upgrade) IsActive(timestamp uint64) bool {
	if u.Disable || u.BlockTimestamp == nil {
		return false
	}
	return *u.BlockTimestamp <= timestamp
}
