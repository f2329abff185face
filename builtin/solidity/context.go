// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/state"
)

// Context binds a contract address to the state it reads and writes.
type Context struct {
	address enctr.Address
	state   *state.State
}

func NewContext(address enctr.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) Address() enctr.Address {
	return c.address
}

// Emit records an event raised by the contract.
func (c *Context) Emit(name string, args ...any) {
	c.state.AddEvent(&enctr.Event{
		Address: c.address,
		Name:    name,
		Args:    args,
	})
}

// Slot derives a storage position from a variable name.
func Slot(name string) enctr.Bytes32 {
	return enctr.BytesToBytes32([]byte(name))
}
