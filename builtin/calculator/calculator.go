// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package calculator values liquidity tokens at a price set by policy.
package calculator

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/encountr/enctr/builtin/reverts"
	"github.com/encountr/enctr/builtin/solidity"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/state"
)

var (
	slotPrices = solidity.Slot("prices")

	// PriceUnit is the token amount a price refers to.
	PriceUnit = enctr.Pow10(18)
)

// Authority gates price updates.
type Authority interface {
	IsPolicy(addr enctr.Address) (bool, error)
	RequireGovernor(caller enctr.Address) error
}

// Calculator holds one price per token, in ENCTR base units per PriceUnit of token.
type Calculator struct {
	context   *solidity.Context
	prices    *solidity.Mapping[enctr.Address, *big.Int]
	authority Authority
}

// New create a new instance.
func New(addr enctr.Address, state *state.State, authority Authority) *Calculator {
	ctx := solidity.NewContext(addr, state)
	return &Calculator{
		context:   ctx,
		prices:    solidity.NewMapping[enctr.Address, *big.Int](ctx, slotPrices),
		authority: authority,
	}
}

// Address returns the calculator address.
func (c *Calculator) Address() enctr.Address {
	return c.context.Address()
}

// Price returns the price of token, zero when unset.
func (c *Calculator) Price(token enctr.Address) (*big.Int, error) {
	price, err := c.prices.Get(token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get price")
	}
	return price, nil
}

// SetPrice sets the price of token. Policy or governor only.
func (c *Calculator) SetPrice(caller, token enctr.Address, price *big.Int) error {
	isPolicy, err := c.authority.IsPolicy(caller)
	if err != nil {
		return err
	}
	if !isPolicy {
		if err := c.authority.RequireGovernor(caller); err != nil {
			return err
		}
	}
	if token.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "Calculator: zero address")
	}
	if price == nil || price.Sign() < 0 {
		return reverts.New(reverts.ErrInvalidArgument, "Calculator: invalid price")
	}
	if err := c.prices.Set(token, price); err != nil {
		return errors.Wrap(err, "failed to set price")
	}
	c.context.Emit("PriceSet", token, new(big.Int).Set(price))
	return nil
}

// Valuation returns amount of token in ENCTR base units, rounded down.
// A token without a price is rejected.
func (c *Calculator) Valuation(token enctr.Address, amount *big.Int) (*big.Int, error) {
	price, err := c.Price(token)
	if err != nil {
		return nil, err
	}
	if price.Sign() == 0 {
		return nil, reverts.Newf(reverts.ErrNotActive, "Calculator: no price for %v", token)
	}
	v := new(big.Int).Mul(amount, price)
	return v.Quo(v, PriceUnit), nil
}
