// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin binds the protocol contracts to their well-known
// addresses over one state.
package builtin

import (
	"github.com/encountr/enctr/builtin/authority"
	"github.com/encountr/enctr/builtin/calculator"
	"github.com/encountr/enctr/builtin/distributor"
	"github.com/encountr/enctr/builtin/gencountr"
	"github.com/encountr/enctr/builtin/sencountr"
	"github.com/encountr/enctr/builtin/staking"
	"github.com/encountr/enctr/builtin/token"
	"github.com/encountr/enctr/builtin/treasury"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/state"
)

// Well-known contract addresses.
var (
	AuthorityAddr   = enctr.BytesToAddress([]byte("Authority"))
	ENCTRAddr       = enctr.BytesToAddress([]byte("ENCTR"))
	SENCTRAddr      = enctr.BytesToAddress([]byte("sENCTR"))
	GENCTRAddr      = enctr.BytesToAddress([]byte("gENCTR"))
	StakingAddr     = enctr.BytesToAddress([]byte("Staking"))
	TreasuryAddr    = enctr.BytesToAddress([]byte("Treasury"))
	DistributorAddr = enctr.BytesToAddress([]byte("Distributor"))
	CalculatorAddr  = enctr.BytesToAddress([]byte("Calculator"))
)

// Protocol is the set of contracts bound to one state.
type Protocol struct {
	state *state.State

	Authority   *authority.Authority
	ENCTR       *token.Token
	SENCTR      *sencountr.Ledger
	GENCTR      *gencountr.Wrapped
	Staking     *staking.Staking
	Treasury    *treasury.Treasury
	Distributor *distributor.Distributor
	Calculator  *calculator.Calculator
}

// New binds every contract against state.
func New(state *state.State) *Protocol {
	p := &Protocol{state: state}

	p.Authority = authority.New(AuthorityAddr, state)
	p.ENCTR = token.New(ENCTRAddr, state).WithGate(p.Authority.RequireVault)
	p.SENCTR = sencountr.New(SENCTRAddr, state)
	p.GENCTR = gencountr.New(GENCTRAddr, state, p.SENCTR)
	p.Staking = staking.New(StakingAddr, state, p.Authority, p.ENCTR, p.SENCTR, p.GENCTR).
		WithResolver(p.resolveDistributor)
	p.SENCTR.Bind(p.GENCTR, p.Staking)
	p.Treasury = treasury.New(TreasuryAddr, state, p.Authority, p.ENCTR, resolver{p})
	p.Distributor = distributor.New(DistributorAddr, state, p.Authority, p.Treasury, p.ENCTR)
	p.Calculator = calculator.New(CalculatorAddr, state, p.Authority)
	return p
}

// State returns the state the contracts are bound to.
func (p *Protocol) State() *state.State {
	return p.state
}

// Token binds the ERC20 deployed at addr, nil if there is none.
func (p *Protocol) Token(addr enctr.Address) *token.Token {
	switch addr {
	case ENCTRAddr:
		return p.ENCTR
	case GENCTRAddr:
		return p.GENCTR.Token
	}
	t := token.New(addr, p.state)
	meta, err := t.Meta()
	if err != nil || meta.Symbol == "" {
		return nil
	}
	return t
}

func (p *Protocol) resolveDistributor(addr enctr.Address) staking.Distributor {
	if addr == DistributorAddr {
		return p.Distributor
	}
	return nil
}

// resolver implements treasury.Resolver.
type resolver struct {
	p *Protocol
}

func (r resolver) Token(addr enctr.Address) treasury.ERC20 {
	if t := r.p.Token(addr); t != nil {
		return t
	}
	return nil
}

func (r resolver) Calculator(addr enctr.Address) treasury.Calculator {
	if addr == CalculatorAddr {
		return r.p.Calculator
	}
	return nil
}

func (r resolver) DebtLedger(addr enctr.Address) treasury.DebtLedger {
	if addr == SENCTRAddr {
		return r.p.SENCTR
	}
	return nil
}
