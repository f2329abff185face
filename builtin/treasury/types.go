// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package treasury

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/encountr/enctr/enctr"
)

// Kind is a permission kind of the treasury matrix.
type Kind uint8

const (
	ReserveDepositor Kind = iota
	ReserveSpender
	ReserveToken
	ReserveManager
	LiquidityDepositor
	LiquidityToken
	LiquidityManager
	Debtor
	RewardManager
	SEnctr
	EnctrDebtor
	kindCount
)

var kindNames = [...]string{
	"ReserveDepositor",
	"ReserveSpender",
	"ReserveToken",
	"ReserveManager",
	"LiquidityDepositor",
	"LiquidityToken",
	"LiquidityManager",
	"Debtor",
	"RewardManager",
	"SEnctr",
	"EnctrDebtor",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Unknown"
}

// IsValid tells whether k is a known kind.
func (k Kind) IsValid() bool {
	return k < kindCount
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, errors.Errorf("invalid kind %d", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses a kind by name.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, errors.Errorf("unknown permission kind %q", s)
}

// Kinds returns every kind in order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

type permissionKey struct {
	kind Kind
	addr enctr.Address
}

func (k permissionKey) Bytes() []byte {
	return append([]byte{byte(k.kind)}, k.addr.Bytes()...)
}

type registryKey struct {
	kind  Kind
	index uint64
}

func (k registryKey) Bytes() []byte {
	return binary.BigEndian.AppendUint64([]byte{byte(k.kind)}, k.index)
}

func (k Kind) Bytes() []byte {
	return []byte{byte(k)}
}

// ERC20 is a token the treasury holds as reserve or liquidity.
type ERC20 interface {
	Decimals() (uint8, error)
	BalanceOf(addr enctr.Address) (*big.Int, error)
	Transfer(caller, to enctr.Address, amount *big.Int) error
	TransferFrom(caller, from, to enctr.Address, amount *big.Int) error
}

// Calculator values liquidity tokens in ENCTR units.
type Calculator interface {
	Valuation(token enctr.Address, amount *big.Int) (*big.Int, error)
}

// DebtLedger holds the debt balances collateralized by staked ENCTR.
type DebtLedger interface {
	ChangeDebt(caller enctr.Address, amount *big.Int, debtor enctr.Address, add bool) error
	DebtBalance(addr enctr.Address) (*big.Int, error)
}

// Resolver binds addresses to the contracts deployed there. Each method
// returns nil for an unknown address.
type Resolver interface {
	Token(addr enctr.Address) ERC20
	Calculator(addr enctr.Address) Calculator
	DebtLedger(addr enctr.Address) DebtLedger
}

// Authority gates governance calls.
type Authority interface {
	RequireGovernor(caller enctr.Address) error
	RequireGovernorOrGuardian(caller enctr.Address) error
}
