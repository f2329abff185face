// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/encountr/enctr/builtin/reverts"
	"github.com/encountr/enctr/builtin/solidity"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/state"
)

var (
	slotMeta       = solidity.Slot("token-meta")
	slotMinter     = solidity.Slot("minter")
	slotSupply     = solidity.Slot("total-supply")
	slotBalances   = solidity.Slot("balances")
	slotAllowances = solidity.Slot("allowances")
)

// Meta describes a token.
type Meta struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// GateFunc authorizes a minting caller.
type GateFunc func(caller enctr.Address) error

// Token is an ERC20-style fungible token.
type Token struct {
	context    *solidity.Context
	meta       *solidity.Value[Meta]
	minter     *solidity.Address
	supply     *solidity.Uint256
	balances   *solidity.Mapping[enctr.Address, *big.Int]
	allowances *solidity.Mapping[solidity.AddressPair, *big.Int]
	gate       GateFunc
}

// New create a new instance. Minting is restricted to the stored minter.
func New(addr enctr.Address, state *state.State) *Token {
	ctx := solidity.NewContext(addr, state)
	t := &Token{
		context:    ctx,
		meta:       solidity.NewValue[Meta](ctx, slotMeta),
		minter:     solidity.NewAddress(ctx, slotMinter),
		supply:     solidity.NewUint256(ctx, slotSupply),
		balances:   solidity.NewMapping[enctr.Address, *big.Int](ctx, slotBalances),
		allowances: solidity.NewMapping[solidity.AddressPair, *big.Int](ctx, slotAllowances),
	}
	t.gate = t.requireStoredMinter
	return t
}

// WithGate replaces the stored-minter check.
func (t *Token) WithGate(gate GateFunc) *Token {
	t.gate = gate
	return t
}

// Address returns the token address.
func (t *Token) Address() enctr.Address {
	return t.context.Address()
}

// Initialize stores token metadata and the minter. It can be done once.
func (t *Token) Initialize(meta Meta, minter enctr.Address) error {
	current, err := t.Meta()
	if err != nil {
		return err
	}
	if current.Symbol != "" {
		return reverts.New(reverts.ErrAlreadyInitialized, "ERC20: already initialized")
	}
	if meta.Symbol == "" {
		return reverts.New(reverts.ErrInvalidArgument, "ERC20: empty symbol")
	}
	if err := t.meta.Set(meta); err != nil {
		return errors.Wrap(err, "failed to set meta")
	}
	t.minter.Set(minter)
	return nil
}

// Meta returns name, symbol and decimals.
func (t *Token) Meta() (Meta, error) {
	meta, err := t.meta.Get()
	if err != nil {
		return Meta{}, errors.Wrap(err, "failed to get meta")
	}
	return meta, nil
}

// Decimals returns the token decimals.
func (t *Token) Decimals() (uint8, error) {
	meta, err := t.Meta()
	return meta.Decimals, err
}

// Minter returns the stored minter.
func (t *Token) Minter() (enctr.Address, error) {
	return t.minter.Get()
}

// SetMinter replaces the stored minter. Only the current minter may do so.
func (t *Token) SetMinter(caller, minter enctr.Address) error {
	if err := t.requireStoredMinter(caller); err != nil {
		return err
	}
	t.minter.Set(minter)
	return nil
}

// TotalSupply returns the amount of tokens in existence.
func (t *Token) TotalSupply() (*big.Int, error) {
	return t.supply.Get()
}

// BalanceOf returns the balance of addr.
func (t *Token) BalanceOf(addr enctr.Address) (*big.Int, error) {
	bal, err := t.balances.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	return bal, nil
}

// Allowance returns what spender may still move on behalf of owner.
func (t *Token) Allowance(owner, spender enctr.Address) (*big.Int, error) {
	allowance, err := t.allowances.Get(solidity.AddressPair{owner, spender})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get allowance")
	}
	return allowance, nil
}

// Transfer moves amount from caller to to.
func (t *Token) Transfer(caller, to enctr.Address, amount *big.Int) error {
	return t.transfer(caller, to, amount)
}

// TransferFrom moves amount from from to to, spending the caller's allowance.
func (t *Token) TransferFrom(caller, from, to enctr.Address, amount *big.Int) error {
	if err := t.spendAllowance(from, caller, amount); err != nil {
		return err
	}
	return t.transfer(from, to, amount)
}

// Approve sets the allowance of spender over the caller's tokens.
func (t *Token) Approve(caller, spender enctr.Address, amount *big.Int) error {
	if err := CheckAmount(amount); err != nil {
		return err
	}
	return t.approve(caller, spender, amount)
}

// IncreaseAllowance raises the allowance of spender by amount.
func (t *Token) IncreaseAllowance(caller, spender enctr.Address, amount *big.Int) error {
	if err := CheckAmount(amount); err != nil {
		return err
	}
	current, err := t.Allowance(caller, spender)
	if err != nil {
		return err
	}
	return t.approve(caller, spender, current.Add(current, amount))
}

// DecreaseAllowance lowers the allowance of spender by amount.
func (t *Token) DecreaseAllowance(caller, spender enctr.Address, amount *big.Int) error {
	if err := CheckAmount(amount); err != nil {
		return err
	}
	current, err := t.Allowance(caller, spender)
	if err != nil {
		return err
	}
	if current.Cmp(amount) < 0 {
		return reverts.New(reverts.ErrInsufficientBalance, "ERC20: decreased allowance below zero")
	}
	return t.approve(caller, spender, current.Sub(current, amount))
}

// Mint creates amount tokens for to. Only the minter may mint.
func (t *Token) Mint(caller, to enctr.Address, amount *big.Int) error {
	if err := t.gate(caller); err != nil {
		return err
	}
	if err := CheckAmount(amount); err != nil {
		return err
	}
	if to.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "ERC20: mint to the zero address")
	}
	bal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.supply.Add(amount); err != nil {
		return errors.Wrap(err, "failed to add supply")
	}
	if err := t.balances.Set(to, bal.Add(bal, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	t.context.Emit("Transfer", enctr.Address{}, to, new(big.Int).Set(amount))
	return nil
}

// Burn destroys amount of the caller's tokens.
func (t *Token) Burn(caller enctr.Address, amount *big.Int) error {
	return t.burn(caller, amount)
}

// BurnFrom destroys amount of from's tokens, spending the caller's allowance.
func (t *Token) BurnFrom(caller, from enctr.Address, amount *big.Int) error {
	if err := t.spendAllowance(from, caller, amount); err != nil {
		return err
	}
	return t.burn(from, amount)
}

// MinterBurn lets the minter destroy tokens of any holder.
func (t *Token) MinterBurn(caller, from enctr.Address, amount *big.Int) error {
	if err := t.gate(caller); err != nil {
		return err
	}
	return t.burn(from, amount)
}

func (t *Token) requireStoredMinter(caller enctr.Address) error {
	minter, err := t.minter.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get minter")
	}
	if minter.IsZero() || minter != caller {
		return reverts.New(reverts.ErrUnauthorized, "UNAUTHORIZED")
	}
	return nil
}

func (t *Token) transfer(from, to enctr.Address, amount *big.Int) error {
	if err := CheckAmount(amount); err != nil {
		return err
	}
	if to.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "ERC20: transfer to the zero address")
	}
	fromBal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return reverts.New(reverts.ErrInsufficientBalance, "ERC20: transfer amount exceeds balance")
	}
	if err := t.balances.Set(from, fromBal.Sub(fromBal, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	toBal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.balances.Set(to, toBal.Add(toBal, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	t.context.Emit("Transfer", from, to, new(big.Int).Set(amount))
	return nil
}

func (t *Token) burn(from enctr.Address, amount *big.Int) error {
	if err := CheckAmount(amount); err != nil {
		return err
	}
	bal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return reverts.New(reverts.ErrInsufficientBalance, "ERC20: burn amount exceeds balance")
	}
	if err := t.balances.Set(from, bal.Sub(bal, amount)); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	if err := t.supply.Sub(amount); err != nil {
		return errors.Wrap(err, "failed to sub supply")
	}
	t.context.Emit("Transfer", from, enctr.Address{}, new(big.Int).Set(amount))
	return nil
}

func (t *Token) approve(owner, spender enctr.Address, amount *big.Int) error {
	if spender.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "ERC20: approve to the zero address")
	}
	if err := t.allowances.Set(solidity.AddressPair{owner, spender}, amount); err != nil {
		return errors.Wrap(err, "failed to set allowance")
	}
	t.context.Emit("Approval", owner, spender, new(big.Int).Set(amount))
	return nil
}

func (t *Token) spendAllowance(owner, spender enctr.Address, amount *big.Int) error {
	if err := CheckAmount(amount); err != nil {
		return err
	}
	current, err := t.Allowance(owner, spender)
	if err != nil {
		return err
	}
	if current.Cmp(amount) < 0 {
		return reverts.New(reverts.ErrInsufficientBalance, "ERC20: insufficient allowance")
	}
	return t.approve(owner, spender, current.Sub(current, amount))
}

// CheckAmount rejects nil and negative amounts.
func CheckAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return reverts.New(reverts.ErrInvalidArgument, "invalid amount")
	}
	return nil
}
