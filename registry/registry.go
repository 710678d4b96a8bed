// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"fmt"

	"github.com/luxfi/geth/common"
)

// ============================================================================
// PRECOMPILE ADDRESS SCHEME
// ============================================================================
//
// Precompiles use trailing-significant 20-byte addresses:
//   Format: 0x0000000000000000000000000000000000PCII
//
//   0x 0000...0000 P C II
//                  │ │ └┴─ Item/function (8 bits, 256 items per family×chain)
//                  │ └──── Chain slot    (4 bits)
//                  └────── Family page   (4 bits, aligned with LP-Pxxx)
//
// P nibble:
//   P=6 → LP-6xxx (Bridges)
//   P=9 → LP-9xxx (DEX/Markets)
//
// C nibble = Chain slot:
//   C=2 → C-Chain (main EVM)
//   C=5 → B-Chain (bridge chain)
//
// The ION bridge family occupies II = 0x30-0x3F of page 6.

const (
	// ION bridge family (II = 0x30-0x3F)
	IONBridgeCChain       = "0x0000000000000000000000000000000000006230" // C-Chain ICE v2 wrapped token + oracle quorum
	IONBridgeBChain       = "0x0000000000000000000000000000000000006530" // B-Chain ICE v2 wrapped token + oracle quorum
	IONSwapCChain         = "0x0000000000000000000000000000000000006231" // C-Chain ICE v1/v2 liquidity pool
	IONSwapBChain         = "0x0000000000000000000000000000000000006531" // B-Chain ICE v1/v2 liquidity pool
	IONBridgeRouterCChain = "0x0000000000000000000000000000000000006232" // C-Chain burn/mint router
	IONBridgeRouterBChain = "0x0000000000000000000000000000000000006532" // B-Chain burn/mint router
	ICEv1TokenCChain      = "0x0000000000000000000000000000000000006233" // C-Chain ICE v1 token
	ICEv1TokenBChain      = "0x0000000000000000000000000000000000006533" // B-Chain ICE v1 token
)

// PrecompileInfo describes a registered precompile.
type PrecompileInfo struct {
	Address     string
	Name        string
	Description string
	Chains      []string
	LPRange     string
}

// AllPrecompiles lists the ION precompiles per chain.
var AllPrecompiles = []PrecompileInfo{
	{IONBridgeCChain, "ION_BRIDGE", "Wrapped ICE v2 token with oracle-quorum minting", []string{"C"}, "LP-6xxx"},
	{IONBridgeBChain, "ION_BRIDGE_B", "Wrapped ICE v2 token with oracle-quorum minting", []string{"B"}, "LP-6xxx"},
	{IONSwapCChain, "ION_SWAP", "Fixed-rate ICE v1/v2 liquidity pool", []string{"C"}, "LP-6xxx"},
	{IONSwapBChain, "ION_SWAP_B", "Fixed-rate ICE v1/v2 liquidity pool", []string{"B"}, "LP-6xxx"},
	{IONBridgeRouterCChain, "ION_BRIDGE_ROUTER", "Burn/mint router between ICE v1 and the ION bridge", []string{"C"}, "LP-6xxx"},
	{IONBridgeRouterBChain, "ION_BRIDGE_ROUTER_B", "Burn/mint router between ICE v1 and the ION bridge", []string{"B"}, "LP-6xxx"},
	{ICEv1TokenCChain, "ICE_V1", "ICE v1 token", []string{"C"}, "LP-6xxx"},
	{ICEv1TokenBChain, "ICE_V1_B", "ICE v1 token", []string{"B"}, "LP-6xxx"},
}

// PrecompileAddress builds the address for family page p, chain slot c and
// item ii.
func PrecompileAddress(p, c, ii uint8) common.Address {
	if p > 15 || c > 15 {
		return common.Address{}
	}
	selector := fmt.Sprintf("%x%x%02x", p, c, ii)
	addr := "000000000000000000000000000000000000" + selector
	return common.HexToAddress("0x" + addr)
}

// ChainSlot returns the C-nibble for a chain name
func ChainSlot(chain string) uint8 {
	switch chain {
	case "C", "c":
		return 2
	case "B", "b":
		return 5
	default:
		return 0xFF
	}
}

// GetPrecompileAddress returns the address for a precompile by name
func GetPrecompileAddress(name string) common.Address {
	for _, p := range AllPrecompiles {
		if p.Name == name {
			return common.HexToAddress(p.Address)
		}
	}
	return common.Address{}
}

// GetChainPrecompiles returns all precompile addresses for a chain
func GetChainPrecompiles(chainLetter string) []common.Address {
	var result []common.Address
	for _, p := range AllPrecompiles {
		for _, c := range p.Chains {
			if c == chainLetter {
				result = append(result, common.HexToAddress(p.Address))
			}
		}
	}
	return result
}
