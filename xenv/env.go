// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package xenv is the environment a protocol call executes in.
package xenv

import (
	"github.com/encountr/enctr/builtin"
	"github.com/encountr/enctr/builtin/reverts"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/state"
)

// CallContext describes who makes a call and when.
type CallContext struct {
	Caller enctr.Address
	Clock  uint64 // seconds
}

// Environment an env to execute a protocol call.
type Environment struct {
	protocol *builtin.Protocol
	ctx      *CallContext
}

// New create a new env.
func New(protocol *builtin.Protocol, ctx *CallContext) *Environment {
	return &Environment{
		protocol: protocol,
		ctx:      ctx,
	}
}

func (env *Environment) Protocol() *builtin.Protocol { return env.protocol }
func (env *Environment) State() *state.State         { return env.protocol.State() }
func (env *Environment) Caller() enctr.Address       { return env.ctx.Caller }
func (env *Environment) Clock() uint64               { return env.ctx.Clock }

// Require reverts with ErrInvalidArgument when cond does not hold.
func (env *Environment) Require(cond bool, msg string) error {
	if !cond {
		return reverts.New(reverts.ErrInvalidArgument, msg)
	}
	return nil
}
