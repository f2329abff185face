// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gencountr

import (
	"math/big"

	"github.com/encountr/enctr/builtin/reverts"
	"github.com/encountr/enctr/builtin/token"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/state"
)

// Meta is the gENCTR token description.
var Meta = token.Meta{Name: "Governance ENCTR", Symbol: "gENCTR", Decimals: enctr.WrappedDecimals}

// Indexer supplies the rebasing index the wrapped amounts are scaled by.
type Indexer interface {
	Index() (*big.Int, error)
}

// Wrapped is the index-adjusted share. Its balances do not move on rebase;
// their fragment value grows with the index instead.
type Wrapped struct {
	*token.Token
	indexer Indexer
}

// New create a new instance.
func New(addr enctr.Address, state *state.State, indexer Indexer) *Wrapped {
	return &Wrapped{
		Token:   token.New(addr, state),
		indexer: indexer,
	}
}

// Deploy stores the token metadata with the initializer as temporary minter.
func (w *Wrapped) Deploy(initializer enctr.Address) error {
	return w.Token.Initialize(Meta, initializer)
}

// Initialize hands the minter role to the staking contract.
func (w *Wrapped) Initialize(caller, staking enctr.Address) error {
	if staking.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "gENCTR: zero staking")
	}
	return w.Token.SetMinter(caller, staking)
}

// Burn destroys amount of from's tokens. Only the staking contract may burn.
func (w *Wrapped) Burn(caller, from enctr.Address, amount *big.Int) error {
	return w.Token.MinterBurn(caller, from, amount)
}

// Index returns the current rebasing index.
func (w *Wrapped) Index() (*big.Int, error) {
	return w.indexer.Index()
}

// BalanceFrom converts a wrapped amount into fragments.
func (w *Wrapped) BalanceFrom(amount *big.Int) (*big.Int, error) {
	index, err := w.indexer.Index()
	if err != nil {
		return nil, err
	}
	v := new(big.Int).Mul(amount, index)
	return v.Quo(v, enctr.Pow10(enctr.WrappedDecimals)), nil
}

// BalanceTo converts fragments into a wrapped amount.
func (w *Wrapped) BalanceTo(amount *big.Int) (*big.Int, error) {
	index, err := w.indexer.Index()
	if err != nil {
		return nil, err
	}
	if index.Sign() == 0 {
		return nil, reverts.New(reverts.ErrNotActive, "gENCTR: index not set")
	}
	v := new(big.Int).Mul(amount, enctr.Pow10(enctr.WrappedDecimals))
	return v.Quo(v, index), nil
}
