// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sencountr

import (
	"math/big"

	"github.com/holiman/uint256"
)

var (
	// InitialFragmentsSupply is 5,000,000 with 9 decimals.
	InitialFragmentsSupply = uint256.NewInt(5_000_000 * 1e9)

	// TotalGons is the largest multiple of InitialFragmentsSupply within uint256,
	// so gons per fragment is an integer at the initial supply.
	TotalGons = func() *uint256.Int {
		all := new(uint256.Int).SetAllOne()
		rem := new(uint256.Int).Mod(all, InitialFragmentsSupply)
		return all.Sub(all, rem)
	}()

	// MaxSupply caps the fragment supply at 2^128 - 1.
	MaxSupply = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))
)

const (
	Name     = "Staked ENCTR"
	Symbol   = "sENCTR"
	Decimals = 9
)

// Rebase is a record of one supply expansion.
type Rebase struct {
	Epoch             uint64
	Rebase            *big.Int // percentage with 18 decimals
	TotalStakedBefore *big.Int
	TotalStakedAfter  *big.Int
	AmountRebased     *big.Int
	Index             *big.Int
}

// Wrapped is the index-adjusted share token whose supply counts as circulating.
type Wrapped interface {
	TotalSupply() (*big.Int, error)
	BalanceFrom(amount *big.Int) (*big.Int, error)
}

// Warmup reports the fragments held in the staking warmup.
type Warmup interface {
	SupplyInWarmup() (*big.Int, error)
}
