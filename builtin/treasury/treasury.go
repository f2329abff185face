// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package treasury

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/encountr/enctr/builtin/reverts"
	"github.com/encountr/enctr/builtin/solidity"
	"github.com/encountr/enctr/builtin/token"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/log"
	"github.com/encountr/enctr/state"
)

var (
	logger = log.WithContext("pkg", "treasury")

	slotTotalReserves = solidity.Slot("total-reserves")
	slotTotalDebt     = solidity.Slot("total-debt")
	slotEnctrDebt     = solidity.Slot("enctr-debt")
	slotEnctrDebts    = solidity.Slot("enctr-debts")
	slotDebtLedger    = solidity.Slot("debt-ledger")
	slotPermissions   = solidity.Slot("permissions")
	slotCalculators   = solidity.Slot("calculators")
	slotDebtLimits    = solidity.Slot("debt-limits")
	slotRegistry      = solidity.Slot("registry")
	slotRegistryLen   = solidity.Slot("registry-len")
)

// Treasury backs ENCTR with reserves and lends against staked collateral.
type Treasury struct {
	context *solidity.Context

	totalReserves *solidity.Uint256
	totalDebt     *solidity.Uint256
	enctrDebt     *solidity.Uint256
	enctrDebts    *solidity.Mapping[enctr.Address, *big.Int]
	debtLedger    *solidity.Address
	permissions   *solidity.Mapping[permissionKey, bool]
	calculators   *solidity.Mapping[enctr.Address, enctr.Address]
	debtLimits    *solidity.Mapping[enctr.Address, *big.Int]
	registry      *solidity.Mapping[registryKey, enctr.Address]
	registryLen   *solidity.Mapping[Kind, uint64]

	authority Authority
	base      *token.Token
	resolver  Resolver
}

// New create a new instance.
func New(addr enctr.Address, state *state.State, authority Authority, base *token.Token, resolver Resolver) *Treasury {
	ctx := solidity.NewContext(addr, state)
	return &Treasury{
		context:       ctx,
		totalReserves: solidity.NewUint256(ctx, slotTotalReserves),
		totalDebt:     solidity.NewUint256(ctx, slotTotalDebt),
		enctrDebt:     solidity.NewUint256(ctx, slotEnctrDebt),
		enctrDebts:    solidity.NewMapping[enctr.Address, *big.Int](ctx, slotEnctrDebts),
		debtLedger:    solidity.NewAddress(ctx, slotDebtLedger),
		permissions:   solidity.NewMapping[permissionKey, bool](ctx, slotPermissions),
		calculators:   solidity.NewMapping[enctr.Address, enctr.Address](ctx, slotCalculators),
		debtLimits:    solidity.NewMapping[enctr.Address, *big.Int](ctx, slotDebtLimits),
		registry:      solidity.NewMapping[registryKey, enctr.Address](ctx, slotRegistry),
		registryLen:   solidity.NewMapping[Kind, uint64](ctx, slotRegistryLen),
		authority:     authority,
		base:          base,
		resolver:      resolver,
	}
}

// Address returns the treasury address.
func (t *Treasury) Address() enctr.Address {
	return t.context.Address()
}

//
// Getters - no state change
//

// TotalReserves returns the backing value in ENCTR units.
func (t *Treasury) TotalReserves() (*big.Int, error) {
	return t.totalReserves.Get()
}

// TotalDebt returns the outstanding debt of every debtor.
func (t *Treasury) TotalDebt() (*big.Int, error) {
	return t.totalDebt.Get()
}

// EnctrDebt returns the part of the debt lent as freshly minted ENCTR.
func (t *Treasury) EnctrDebt() (*big.Int, error) {
	return t.enctrDebt.Get()
}

// EnctrDebtOf returns the part of debtor's debt lent as ENCTR.
func (t *Treasury) EnctrDebtOf(debtor enctr.Address) (*big.Int, error) {
	debt, err := t.enctrDebts.Get(debtor)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get enctr debt")
	}
	return debt, nil
}

// BaseSupply returns the ENCTR supply not minted as debt.
func (t *Treasury) BaseSupply() (*big.Int, error) {
	supply, err := t.base.TotalSupply()
	if err != nil {
		return nil, err
	}
	debt, err := t.enctrDebt.Get()
	if err != nil {
		return nil, err
	}
	return supply.Sub(supply, debt), nil
}

// ExcessReserves returns the backing not owed to debtors or holders.
func (t *Treasury) ExcessReserves() (*big.Int, error) {
	reserves, err := t.totalReserves.Get()
	if err != nil {
		return nil, err
	}
	debt, err := t.totalDebt.Get()
	if err != nil {
		return nil, err
	}
	supply, err := t.BaseSupply()
	if err != nil {
		return nil, err
	}
	excess := reserves.Sub(reserves, debt)
	excess.Sub(excess, supply)
	if excess.Sign() < 0 {
		excess.SetUint64(0)
	}
	return excess, nil
}

// TokenValue returns the ENCTR value of amount of token.
func (t *Treasury) TokenValue(tokenAddr enctr.Address, amount *big.Int) (*big.Int, error) {
	calculatorAddr, err := t.calculators.Get(tokenAddr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get calculator")
	}
	if !calculatorAddr.IsZero() {
		calculator := t.resolver.Calculator(calculatorAddr)
		if calculator == nil {
			return nil, reverts.Newf(reverts.ErrInvalidAddress, "Treasury: no calculator at %v", calculatorAddr)
		}
		return calculator.Valuation(tokenAddr, amount)
	}
	tk, err := t.token(tokenAddr)
	if err != nil {
		return nil, err
	}
	decimals, err := tk.Decimals()
	if err != nil {
		return nil, err
	}
	return enctr.ConvertDecimals(amount, decimals, enctr.BaseDecimals), nil
}

// Permission tells whether addr holds kind.
func (t *Treasury) Permission(kind Kind, addr enctr.Address) (bool, error) {
	ok, err := t.permissions.Get(permissionKey{kind, addr})
	if err != nil {
		return false, errors.Wrap(err, "failed to get permission")
	}
	return ok, nil
}

// Calculator returns the valuation helper of a token, zero for 1:1.
func (t *Treasury) Calculator(tokenAddr enctr.Address) (enctr.Address, error) {
	addr, err := t.calculators.Get(tokenAddr)
	if err != nil {
		return enctr.Address{}, errors.Wrap(err, "failed to get calculator")
	}
	return addr, nil
}

// DebtLimit returns the debt ceiling of addr.
func (t *Treasury) DebtLimit(addr enctr.Address) (*big.Int, error) {
	limit, err := t.debtLimits.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get debt limit")
	}
	return limit, nil
}

// DebtLedger returns the address of the debt ledger.
func (t *Treasury) DebtLedger() (enctr.Address, error) {
	return t.debtLedger.Get()
}

// Registry lists every address ever enabled for kind.
func (t *Treasury) Registry(kind Kind) ([]enctr.Address, error) {
	n, err := t.registryLen.Get(kind)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get registry length")
	}
	addrs := make([]enctr.Address, 0, n)
	for i := range n {
		addr, err := t.registry.Get(registryKey{kind, i})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get registry entry")
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

//
// Setters - state change
//

// Enable grants kind to addr. For token kinds calculator is the valuation
// helper, zero meaning 1:1. SEnctr rebinds the debt ledger.
func (t *Treasury) Enable(caller enctr.Address, kind Kind, addr, calculator enctr.Address) error {
	if err := t.authority.RequireGovernor(caller); err != nil {
		return err
	}
	if !kind.IsValid() {
		return reverts.Newf(reverts.ErrInvalidArgument, "Treasury: invalid kind %d", kind)
	}
	if addr.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "Treasury: zero address")
	}

	if kind == SEnctr {
		if t.resolver.DebtLedger(addr) == nil {
			return reverts.Newf(reverts.ErrInvalidAddress, "Treasury: no debt ledger at %v", addr)
		}
		t.debtLedger.Set(addr)
	} else {
		if kind == ReserveToken || kind == LiquidityToken {
			if t.resolver.Token(addr) == nil {
				return reverts.Newf(reverts.ErrInvalidAddress, "Treasury: no token at %v", addr)
			}
			if err := t.calculators.Set(addr, calculator); err != nil {
				return errors.Wrap(err, "failed to set calculator")
			}
		}
		if err := t.permissions.Set(permissionKey{kind, addr}, true); err != nil {
			return errors.Wrap(err, "failed to set permission")
		}
	}
	if err := t.register(kind, addr); err != nil {
		return err
	}
	t.context.Emit("Permissioned", addr, kind.String(), true)
	logger.Debug("permission enabled", "kind", kind, "addr", addr)
	return nil
}

// Disable revokes kind from addr.
func (t *Treasury) Disable(caller enctr.Address, kind Kind, addr enctr.Address) error {
	if err := t.authority.RequireGovernorOrGuardian(caller); err != nil {
		return err
	}
	if !kind.IsValid() {
		return reverts.Newf(reverts.ErrInvalidArgument, "Treasury: invalid kind %d", kind)
	}
	if err := t.permissions.Set(permissionKey{kind, addr}, false); err != nil {
		return errors.Wrap(err, "failed to set permission")
	}
	t.context.Emit("Permissioned", addr, kind.String(), false)
	return nil
}

// Deposit takes amount of a reserve or liquidity token and mints its value
// minus profit to the caller. The profit stays as excess reserves.
func (t *Treasury) Deposit(caller enctr.Address, amount *big.Int, tokenAddr enctr.Address, profit *big.Int) (*big.Int, error) {
	if err := token.CheckAmount(amount); err != nil {
		return nil, err
	}
	if err := token.CheckAmount(profit); err != nil {
		return nil, err
	}
	isReserve, err := t.Permission(ReserveToken, tokenAddr)
	if err != nil {
		return nil, err
	}
	isLiquidity, err := t.Permission(LiquidityToken, tokenAddr)
	if err != nil {
		return nil, err
	}
	switch {
	case isReserve:
		err = t.require(ReserveDepositor, caller)
	case isLiquidity:
		err = t.require(LiquidityDepositor, caller)
	default:
		err = reverts.New(reverts.ErrUnauthorized, "Treasury: invalid token")
	}
	if err != nil {
		return nil, err
	}

	value, err := t.TokenValue(tokenAddr, amount)
	if err != nil {
		return nil, err
	}
	if profit.Cmp(value) > 0 {
		return nil, reverts.New(reverts.ErrInsufficientValue, "Treasury: profit exceeds value")
	}
	tk, err := t.token(tokenAddr)
	if err != nil {
		return nil, err
	}
	if err := tk.TransferFrom(t.Address(), caller, t.Address(), amount); err != nil {
		return nil, err
	}
	send := new(big.Int).Sub(value, profit)
	if err := t.base.Mint(t.Address(), caller, send); err != nil {
		return nil, err
	}
	if err := t.totalReserves.Add(value); err != nil {
		return nil, errors.Wrap(err, "failed to add reserves")
	}

	countOp("deposit")
	t.recordAccounts()
	t.context.Emit("Deposit", tokenAddr, new(big.Int).Set(amount), value)
	return send, nil
}

// Withdraw burns the caller's ENCTR for the reserve token it is worth.
func (t *Treasury) Withdraw(caller enctr.Address, amount *big.Int, tokenAddr enctr.Address) error {
	if err := token.CheckAmount(amount); err != nil {
		return err
	}
	if err := t.require(ReserveToken, tokenAddr); err != nil {
		return reverts.New(reverts.ErrUnauthorized, "Treasury: not accepted")
	}
	if err := t.require(ReserveSpender, caller); err != nil {
		return err
	}
	value, err := t.TokenValue(tokenAddr, amount)
	if err != nil {
		return err
	}
	if err := t.subReserves(value); err != nil {
		return err
	}
	if err := t.base.BurnFrom(t.Address(), caller, value); err != nil {
		return err
	}
	tk, err := t.token(tokenAddr)
	if err != nil {
		return err
	}
	if err := tk.Transfer(t.Address(), caller, amount); err != nil {
		return err
	}

	countOp("withdraw")
	t.recordAccounts()
	t.context.Emit("Withdrawal", tokenAddr, new(big.Int).Set(amount), value)
	return nil
}

// Manage lets a manager take tokens out, as long as their value is excess.
func (t *Treasury) Manage(caller enctr.Address, tokenAddr enctr.Address, amount *big.Int) error {
	if err := token.CheckAmount(amount); err != nil {
		return err
	}
	isLiquidity, err := t.Permission(LiquidityToken, tokenAddr)
	if err != nil {
		return err
	}
	isReserve, err := t.Permission(ReserveToken, tokenAddr)
	if err != nil {
		return err
	}
	if isLiquidity {
		err = t.require(LiquidityManager, caller)
	} else {
		err = t.require(ReserveManager, caller)
	}
	if err != nil {
		return err
	}

	if isReserve || isLiquidity {
		value, err := t.TokenValue(tokenAddr, amount)
		if err != nil {
			return err
		}
		excess, err := t.ExcessReserves()
		if err != nil {
			return err
		}
		if value.Cmp(excess) > 0 {
			return reverts.New(reverts.ErrInsufficientValue, "Treasury: insufficient reserves")
		}
		if err := t.subReserves(value); err != nil {
			return err
		}
	}
	tk, err := t.token(tokenAddr)
	if err != nil {
		return err
	}
	if err := tk.Transfer(t.Address(), caller, amount); err != nil {
		return err
	}

	countOp("manage")
	t.recordAccounts()
	t.context.Emit("Managed", tokenAddr, new(big.Int).Set(amount))
	return nil
}

// Mint creates ENCTR rewards out of excess reserves.
func (t *Treasury) Mint(caller, recipient enctr.Address, amount *big.Int) error {
	if err := token.CheckAmount(amount); err != nil {
		return err
	}
	if err := t.require(RewardManager, caller); err != nil {
		return err
	}
	excess, err := t.ExcessReserves()
	if err != nil {
		return err
	}
	if amount.Cmp(excess) > 0 {
		return reverts.New(reverts.ErrInsufficientValue, "Treasury: insufficient reserves")
	}
	if err := t.base.Mint(t.Address(), recipient, amount); err != nil {
		return err
	}
	countOp("mint")
	t.context.Emit("Minted", caller, recipient, new(big.Int).Set(amount))
	return nil
}

// IncurDebt lends amount of a reserve token against the caller's sENCTR.
func (t *Treasury) IncurDebt(caller enctr.Address, amount *big.Int, tokenAddr enctr.Address) error {
	if err := token.CheckAmount(amount); err != nil {
		return err
	}
	if err := t.require(Debtor, caller); err != nil {
		return err
	}
	if err := t.require(ReserveToken, tokenAddr); err != nil {
		return reverts.New(reverts.ErrUnauthorized, "Treasury: not accepted")
	}
	value, err := t.TokenValue(tokenAddr, amount)
	if err != nil {
		return err
	}
	if err := t.addDebt(caller, value); err != nil {
		return err
	}
	tk, err := t.token(tokenAddr)
	if err != nil {
		return err
	}
	if err := tk.Transfer(t.Address(), caller, amount); err != nil {
		return err
	}

	countOp("incur_debt")
	t.recordAccounts()
	t.context.Emit("CreateDebt", caller, tokenAddr, new(big.Int).Set(amount), value)
	return nil
}

// IncurDebtInENCTR lends freshly minted ENCTR against the caller's sENCTR.
func (t *Treasury) IncurDebtInENCTR(caller enctr.Address, amount *big.Int) error {
	if err := token.CheckAmount(amount); err != nil {
		return err
	}
	if err := t.require(EnctrDebtor, caller); err != nil {
		return err
	}
	if err := t.addDebt(caller, amount); err != nil {
		return err
	}
	debt, err := t.EnctrDebtOf(caller)
	if err != nil {
		return err
	}
	if err := t.enctrDebts.Set(caller, debt.Add(debt, amount)); err != nil {
		return errors.Wrap(err, "failed to set enctr debt")
	}
	if err := t.enctrDebt.Add(amount); err != nil {
		return errors.Wrap(err, "failed to add enctr debt")
	}
	if err := t.base.Mint(t.Address(), caller, amount); err != nil {
		return err
	}

	countOp("incur_debt")
	t.recordAccounts()
	t.context.Emit("CreateDebt", caller, t.base.Address(), new(big.Int).Set(amount), new(big.Int).Set(amount))
	return nil
}

// RepayDebtWithReserve pays debt back with a reserve token.
func (t *Treasury) RepayDebtWithReserve(caller enctr.Address, amount *big.Int, tokenAddr enctr.Address) error {
	if err := token.CheckAmount(amount); err != nil {
		return err
	}
	if err := t.require(Debtor, caller); err != nil {
		return err
	}
	if err := t.require(ReserveToken, tokenAddr); err != nil {
		return reverts.New(reverts.ErrUnauthorized, "Treasury: not accepted")
	}
	value, err := t.TokenValue(tokenAddr, amount)
	if err != nil {
		return err
	}
	tk, err := t.token(tokenAddr)
	if err != nil {
		return err
	}
	if err := tk.TransferFrom(t.Address(), caller, t.Address(), amount); err != nil {
		return err
	}
	retired, err := t.subDebt(caller, value)
	if err != nil {
		return err
	}
	// retired ENCTR debt is now backed by the tokens received
	if retired.Sign() > 0 {
		if err := t.totalReserves.Add(retired); err != nil {
			return errors.Wrap(err, "failed to add reserves")
		}
	}

	countOp("repay_debt")
	t.recordAccounts()
	t.context.Emit("RepayDebt", caller, tokenAddr, new(big.Int).Set(amount), value)
	return nil
}

// RepayDebtWithENCTR pays debt back by burning the caller's ENCTR.
func (t *Treasury) RepayDebtWithENCTR(caller enctr.Address, amount *big.Int) error {
	if err := token.CheckAmount(amount); err != nil {
		return err
	}
	isDebtor, err := t.Permission(Debtor, caller)
	if err != nil {
		return err
	}
	if !isDebtor {
		if err := t.require(EnctrDebtor, caller); err != nil {
			return err
		}
	}
	if err := t.base.BurnFrom(t.Address(), caller, amount); err != nil {
		return err
	}
	retired, err := t.subDebt(caller, amount)
	if err != nil {
		return err
	}
	// reserves lent out and repaid in ENCTR are written off
	if lent := new(big.Int).Sub(amount, retired); lent.Sign() > 0 {
		if err := t.subReserves(lent); err != nil {
			return err
		}
	}

	countOp("repay_debt")
	t.recordAccounts()
	t.context.Emit("RepayDebt", caller, t.base.Address(), new(big.Int).Set(amount), new(big.Int).Set(amount))
	return nil
}

// SetDebtLimit sets the debt ceiling of addr. It may go up or down.
func (t *Treasury) SetDebtLimit(caller, addr enctr.Address, limit *big.Int) error {
	if err := t.authority.RequireGovernor(caller); err != nil {
		return err
	}
	if err := token.CheckAmount(limit); err != nil {
		return err
	}
	if err := t.debtLimits.Set(addr, limit); err != nil {
		return errors.Wrap(err, "failed to set debt limit")
	}
	t.context.Emit("DebtLimitSet", addr, new(big.Int).Set(limit))
	return nil
}

// AuditReserves recomputes the reserves from the tokens held plus the
// reserves lent out.
func (t *Treasury) AuditReserves(caller enctr.Address) (*big.Int, error) {
	if err := t.authority.RequireGovernor(caller); err != nil {
		return nil, err
	}
	reserves := new(big.Int)
	for _, kind := range []Kind{ReserveToken, LiquidityToken} {
		tokens, err := t.Registry(kind)
		if err != nil {
			return nil, err
		}
		for _, tokenAddr := range tokens {
			enabled, err := t.Permission(kind, tokenAddr)
			if err != nil {
				return nil, err
			}
			if !enabled {
				continue
			}
			tk, err := t.token(tokenAddr)
			if err != nil {
				return nil, err
			}
			bal, err := tk.BalanceOf(t.Address())
			if err != nil {
				return nil, err
			}
			value, err := t.TokenValue(tokenAddr, bal)
			if err != nil {
				return nil, err
			}
			reserves.Add(reserves, value)
		}
	}
	totalDebt, err := t.totalDebt.Get()
	if err != nil {
		return nil, err
	}
	enctrDebt, err := t.enctrDebt.Get()
	if err != nil {
		return nil, err
	}
	if lent := totalDebt.Sub(totalDebt, enctrDebt); lent.Sign() > 0 {
		reserves.Add(reserves, lent)
	}

	t.totalReserves.Set(reserves)
	t.recordAccounts()
	t.context.Emit("ReservesAudited", new(big.Int).Set(reserves))
	logger.Info("reserves audited", "reserves", reserves)
	return reserves, nil
}

func (t *Treasury) addDebt(debtor enctr.Address, value *big.Int) error {
	if value.Sign() == 0 {
		return reverts.New(reverts.ErrInvalidArgument, "Treasury: zero value")
	}
	ledger, err := t.ledger()
	if err != nil {
		return err
	}
	debt, err := ledger.DebtBalance(debtor)
	if err != nil {
		return err
	}
	limit, err := t.DebtLimit(debtor)
	if err != nil {
		return err
	}
	if debt.Add(debt, value).Cmp(limit) > 0 {
		return reverts.New(reverts.ErrExceedsLimit, "Treasury: exceeds limit")
	}
	totalDebt, err := t.totalDebt.Get()
	if err != nil {
		return err
	}
	reserves, err := t.totalReserves.Get()
	if err != nil {
		return err
	}
	if totalDebt.Add(totalDebt, value).Cmp(reserves) > 0 {
		return reverts.New(reverts.ErrExceedsLimit, "Treasury: debt exceeds reserves")
	}
	if err := ledger.ChangeDebt(t.Address(), value, debtor, true); err != nil {
		return err
	}
	t.totalDebt.Set(totalDebt)
	return nil
}

// subDebt lowers debtor's debt by value and returns the ENCTR-denominated
// part it retired. Repayments retire ENCTR debt first, whatever the asset.
func (t *Treasury) subDebt(debtor enctr.Address, value *big.Int) (*big.Int, error) {
	ledger, err := t.ledger()
	if err != nil {
		return nil, err
	}
	if err := ledger.ChangeDebt(t.Address(), value, debtor, false); err != nil {
		return nil, err
	}
	if err := t.totalDebt.Sub(value); err != nil {
		return nil, reverts.New(reverts.ErrInsufficientBalance, "Treasury: repay exceeds debt")
	}
	debt, err := t.EnctrDebtOf(debtor)
	if err != nil {
		return nil, err
	}
	retired := new(big.Int).Set(enctr.BigMin(debt, value))
	if retired.Sign() == 0 {
		return retired, nil
	}
	if err := t.enctrDebts.Set(debtor, debt.Sub(debt, retired)); err != nil {
		return nil, errors.Wrap(err, "failed to set enctr debt")
	}
	if err := t.enctrDebt.Sub(retired); err != nil {
		return nil, errors.Wrap(err, "failed to sub enctr debt")
	}
	return retired, nil
}

func (t *Treasury) subReserves(value *big.Int) error {
	reserves, err := t.totalReserves.Get()
	if err != nil {
		return err
	}
	if reserves.Cmp(value) < 0 {
		return reverts.New(reverts.ErrInsufficientValue, "Treasury: insufficient reserves")
	}
	t.totalReserves.Set(reserves.Sub(reserves, value))
	return nil
}

func (t *Treasury) require(kind Kind, addr enctr.Address) error {
	ok, err := t.Permission(kind, addr)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.Newf(reverts.ErrUnauthorized, "Treasury: not approved as %s", kind)
	}
	return nil
}

func (t *Treasury) token(addr enctr.Address) (ERC20, error) {
	tk := t.resolver.Token(addr)
	if tk == nil {
		return nil, reverts.Newf(reverts.ErrInvalidAddress, "Treasury: no token at %v", addr)
	}
	return tk, nil
}

func (t *Treasury) ledger() (DebtLedger, error) {
	addr, err := t.debtLedger.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get debt ledger")
	}
	ledger := t.resolver.DebtLedger(addr)
	if ledger == nil {
		return nil, reverts.New(reverts.ErrNotActive, "Treasury: debt ledger not set")
	}
	return ledger, nil
}

func (t *Treasury) register(kind Kind, addr enctr.Address) error {
	n, err := t.registryLen.Get(kind)
	if err != nil {
		return errors.Wrap(err, "failed to get registry length")
	}
	for i := range n {
		existing, err := t.registry.Get(registryKey{kind, i})
		if err != nil {
			return errors.Wrap(err, "failed to get registry entry")
		}
		if existing == addr {
			return nil
		}
	}
	if err := t.registry.Set(registryKey{kind, n}, addr); err != nil {
		return errors.Wrap(err, "failed to set registry entry")
	}
	return errors.Wrap(t.registryLen.Set(kind, n+1), "failed to set registry length")
}

func (t *Treasury) recordAccounts() {
	if reserves, err := t.totalReserves.Get(); err == nil {
		setAccount("reserves", reserves)
	}
	if debt, err := t.totalDebt.Get(); err == nil {
		setAccount("debt", debt)
	}
}
