// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/encountr/enctr/builtin"
	"github.com/encountr/enctr/builtin/token"
	"github.com/encountr/enctr/builtin/treasury"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/runtime"
	"github.com/encountr/enctr/xenv"
)

// Genesis is the initial deployment of the protocol.
type Genesis struct {
	builder *Builder
	id      enctr.Bytes32
	name    string
	config  *Config
}

// New creates the genesis described by cfg.
func New(name string, cfg *Config) (*Genesis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "encode config")
	}
	return &Genesis{
		builder: newBuilder(cfg),
		id:      enctr.Blake2b(data),
		name:    name,
		config:  cfg,
	}, nil
}

// Build deploys and initializes every contract and commits the state.
func (g *Genesis) Build(rt *runtime.Runtime) ([]*enctr.Event, error) {
	return g.builder.Build(rt)
}

// ID returns the hash of the config.
func (g *Genesis) ID() enctr.Bytes32 {
	return g.id
}

// Name returns the network name.
func (g *Genesis) Name() string {
	return g.name
}

// Config returns the config the genesis was created from.
func (g *Genesis) Config() *Config {
	return g.config
}

func newBuilder(cfg *Config) *Builder {
	var (
		gov   = cfg.Authority.Governor
		vault = cfg.Authority.Vault
		end   = cfg.Epoch.End
	)
	if vault.IsZero() {
		vault = builtin.TreasuryAddr
	}
	if end == 0 {
		end = cfg.LaunchTime + cfg.Epoch.Length
	}

	b := new(Builder).Timestamp(cfg.LaunchTime)

	b.Call("authority", gov, func(env *xenv.Environment) error {
		a := cfg.Authority
		return env.Protocol().Authority.Initialize(a.Governor, a.Guardian, a.Policy, vault)
	})
	b.Call("tokens", gov, func(env *xenv.Environment) error {
		p := env.Protocol()
		if err := p.ENCTR.Initialize(token.Meta{Name: "Encountr", Symbol: "ENCTR", Decimals: enctr.BaseDecimals}, vault); err != nil {
			return err
		}
		if err := p.SENCTR.Deploy(gov); err != nil {
			return err
		}
		return p.GENCTR.Deploy(gov)
	})
	for _, r := range cfg.Reserves {
		b.Call("reserve "+r.Symbol, gov, func(env *xenv.Environment) error {
			tk := token.New(r.Address, env.State())
			if err := tk.Initialize(token.Meta{Name: r.Name, Symbol: r.Symbol, Decimals: r.Decimals}, gov); err != nil {
				return err
			}
			for _, a := range cfg.Accounts {
				if bal, ok := a.Balances[r.Symbol]; ok && bigOf(bal).Sign() > 0 {
					if err := tk.Mint(gov, a.Address, bigOf(bal)); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	b.Call("staking", gov, func(env *xenv.Environment) error {
		p := env.Protocol()
		if err := p.SENCTR.SetIndex(gov, bigOf(cfg.Index)); err != nil {
			return err
		}
		if err := p.SENCTR.Initialize(gov, builtin.StakingAddr, builtin.TreasuryAddr); err != nil {
			return err
		}
		if err := p.GENCTR.Initialize(gov, builtin.StakingAddr); err != nil {
			return err
		}
		if err := p.Staking.Initialize(cfg.Epoch.Length, cfg.Epoch.Number, end); err != nil {
			return err
		}
		if err := p.Staking.SetWarmupLength(gov, cfg.Warmup); err != nil {
			return err
		}
		return p.Staking.SetDistributor(gov, builtin.DistributorAddr)
	})
	b.Call("distributor", gov, func(env *xenv.Environment) error {
		d := env.Protocol().Distributor
		if err := d.Initialize(builtin.StakingAddr); err != nil {
			return err
		}
		if err := d.SetBounty(gov, bigOf(cfg.Bounty)); err != nil {
			return err
		}
		for _, r := range cfg.Recipients {
			if _, err := d.AddRecipient(gov, r.Address, r.Rate); err != nil {
				return err
			}
		}
		return nil
	})
	b.Call("treasury", gov, func(env *xenv.Environment) error {
		p := env.Protocol()
		t := p.Treasury
		if err := t.Enable(gov, treasury.SEnctr, builtin.SENCTRAddr, enctr.Address{}); err != nil {
			return err
		}
		if err := t.Enable(gov, treasury.RewardManager, builtin.DistributorAddr, enctr.Address{}); err != nil {
			return err
		}
		for _, r := range cfg.Reserves {
			if r.Price == nil {
				if err := t.Enable(gov, treasury.ReserveToken, r.Address, enctr.Address{}); err != nil {
					return err
				}
				continue
			}
			if err := p.Calculator.SetPrice(gov, r.Address, bigOf(r.Price)); err != nil {
				return err
			}
			if err := t.Enable(gov, treasury.LiquidityToken, r.Address, builtin.CalculatorAddr); err != nil {
				return err
			}
		}
		for _, perm := range cfg.Permissions {
			if err := t.Enable(gov, perm.Kind, perm.Address, enctr.Address{}); err != nil {
				return err
			}
		}
		for _, l := range cfg.DebtLimits {
			if err := t.SetDebtLimit(gov, l.Address, bigOf(l.Limit)); err != nil {
				return err
			}
		}
		return nil
	})
	for _, d := range cfg.Deposits {
		r, _ := cfg.reserve(d.Token)
		b.Call("deposit "+d.Token, d.From, func(env *xenv.Environment) error {
			p := env.Protocol()
			amount := bigOf(d.Amount)
			if err := token.New(r.Address, env.State()).Approve(d.From, builtin.TreasuryAddr, amount); err != nil {
				return err
			}
			_, err := p.Treasury.Deposit(d.From, amount, r.Address, bigOf(d.Profit))
			return err
		})
	}
	return b
}
