// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/encountr/enctr/builtin/distributor"
	"github.com/encountr/enctr/builtin/treasury"
	"github.com/encountr/enctr/enctr"
)

// Config describes the initial deployment of the protocol.
type Config struct {
	LaunchTime  uint64       `yaml:"launchTime" json:"launchTime"`
	Authority   Authority    `yaml:"authority" json:"authority"`
	Epoch       Epoch        `yaml:"epoch" json:"epoch"`
	Warmup      uint64       `yaml:"warmup" json:"warmup"`
	Index       *Amount      `yaml:"index" json:"index"`
	Bounty      *Amount      `yaml:"bounty" json:"bounty"`
	Reserves    []Reserve    `yaml:"reserves" json:"reserves"`
	Permissions []Permission `yaml:"permissions" json:"permissions"`
	DebtLimits  []DebtLimit  `yaml:"debtLimits" json:"debtLimits"`
	Recipients  []Recipient  `yaml:"recipients" json:"recipients"`
	Accounts    []Account    `yaml:"accounts" json:"accounts"`
	Deposits    []Deposit    `yaml:"deposits" json:"deposits"`
}

// Authority holds the initial role holders. A zero vault means the treasury.
type Authority struct {
	Governor enctr.Address `yaml:"governor" json:"governor"`
	Guardian enctr.Address `yaml:"guardian" json:"guardian"`
	Policy   enctr.Address `yaml:"policy" json:"policy"`
	Vault    enctr.Address `yaml:"vault" json:"vault"`
}

// Epoch is the first staking epoch. A zero end means launchTime + length.
type Epoch struct {
	Length uint64 `yaml:"length" json:"length"`
	Number uint64 `yaml:"number" json:"number"`
	End    uint64 `yaml:"end" json:"end"`
}

// Reserve is a token the treasury accepts. A token with a price is a
// liquidity token valued by the calculator.
type Reserve struct {
	Address  enctr.Address `yaml:"address" json:"address"`
	Name     string        `yaml:"name" json:"name"`
	Symbol   string        `yaml:"symbol" json:"symbol"`
	Decimals uint8         `yaml:"decimals" json:"decimals"`
	Price    *Amount       `yaml:"price" json:"price"`
}

// Permission grants a treasury kind.
type Permission struct {
	Kind    treasury.Kind `yaml:"kind" json:"kind"`
	Address enctr.Address `yaml:"address" json:"address"`
}

// DebtLimit caps the debt of a debtor.
type DebtLimit struct {
	Address enctr.Address `yaml:"address" json:"address"`
	Limit   *Amount       `yaml:"limit" json:"limit"`
}

// Recipient receives rate millionths of its ENCTR balance each epoch.
type Recipient struct {
	Address enctr.Address `yaml:"address" json:"address"`
	Rate    uint64        `yaml:"rate" json:"rate"`
}

// Account is prefunded with reserve tokens, keyed by symbol.
type Account struct {
	Address  enctr.Address      `yaml:"address" json:"address"`
	Balances map[string]*Amount `yaml:"balances" json:"balances"`
}

// Deposit seeds the treasury. The depositor needs the matching depositor kind.
type Deposit struct {
	From   enctr.Address `yaml:"from" json:"from"`
	Token  string        `yaml:"token" json:"token"`
	Amount *Amount       `yaml:"amount" json:"amount"`
	Profit *Amount       `yaml:"profit" json:"profit"`
}

// Amount is a hex or decimal integer.
type Amount = math.HexOrDecimal256

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode genesis file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the config for what the contracts would reject late.
func (c *Config) Validate() error {
	if c.Authority.Governor.IsZero() || c.Authority.Guardian.IsZero() || c.Authority.Policy.IsZero() {
		return errors.New("authority: governor, guardian and policy must be set")
	}
	if c.Epoch.Length == 0 {
		return errors.New("epoch: length must not be 0")
	}
	if c.Index == nil || bigOf(c.Index).Sign() <= 0 {
		return errors.New("index must be a positive integer")
	}
	if c.Bounty != nil && bigOf(c.Bounty).Cmp(big.NewInt(distributor.MaxBounty)) > 0 {
		return fmt.Errorf("bounty exceeds %d", int64(distributor.MaxBounty))
	}
	symbols := make(map[string]bool)
	for _, r := range c.Reserves {
		if r.Address.IsZero() || r.Symbol == "" {
			return fmt.Errorf("reserve %q: address and symbol must be set", r.Name)
		}
		if symbols[r.Symbol] {
			return fmt.Errorf("reserve %q: duplicated symbol", r.Symbol)
		}
		symbols[r.Symbol] = true
	}
	for _, r := range c.Recipients {
		if r.Rate > distributor.RateDenominator {
			return fmt.Errorf("recipient %v: rate exceeds %d", r.Address, distributor.RateDenominator)
		}
	}
	for _, a := range c.Accounts {
		for symbol, bal := range a.Balances {
			if !symbols[symbol] {
				return fmt.Errorf("account %v: unknown token %q", a.Address, symbol)
			}
			if bal == nil || bigOf(bal).Sign() < 0 {
				return fmt.Errorf("account %v: balance must be a non-negative integer", a.Address)
			}
		}
	}
	for _, d := range c.Deposits {
		if !symbols[d.Token] {
			return fmt.Errorf("deposit from %v: unknown token %q", d.From, d.Token)
		}
		if d.Amount == nil {
			return fmt.Errorf("deposit from %v: amount must be set", d.From)
		}
	}
	return nil
}

func (c *Config) reserve(symbol string) (Reserve, bool) {
	for _, r := range c.Reserves {
		if r.Symbol == symbol {
			return r, true
		}
	}
	return Reserve{}, false
}

func bigOf(a *Amount) *big.Int {
	if a == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(a))
}

func amount(v *big.Int) *Amount {
	return (*Amount)(v)
}
