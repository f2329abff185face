// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sencountr

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/encountr/enctr/builtin/reverts"
	"github.com/encountr/enctr/builtin/solidity"
	"github.com/encountr/enctr/builtin/token"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/log"
	"github.com/encountr/enctr/state"
)

var (
	logger = log.WithContext("pkg", "sencountr")

	slotInitializer = solidity.Slot("initializer")
	slotStaking     = solidity.Slot("staking-contract")
	slotTreasury    = solidity.Slot("treasury")
	slotSupply      = solidity.Slot("total-supply")
	slotGonsPerFrag = solidity.Slot("gons-per-fragment")
	slotIndex       = solidity.Slot("index")
	slotNextEpoch   = solidity.Slot("next-rebase-epoch")
	slotRebaseCount = solidity.Slot("rebase-count")
	slotGons        = solidity.Slot("gon-balances")
	slotAllowances  = solidity.Slot("allowances")
	slotDebts       = solidity.Slot("debt-balances")
	slotRebases     = solidity.Slot("rebases")
)

// Ledger is the rebasing staked share. Balances are kept in gons and
// projected into fragments by the gons per fragment ratio.
type Ledger struct {
	context *solidity.Context

	initializer *solidity.Address
	staking     *solidity.Address
	treasury    *solidity.Address

	supply          *solidity.Value[*uint256.Int]
	gonsPerFragment *solidity.Value[*uint256.Int]
	index           *solidity.Value[*uint256.Int]
	nextEpoch       *solidity.Value[uint64]
	rebaseCount     *solidity.Value[uint64]

	gons       *solidity.Mapping[enctr.Address, *uint256.Int]
	allowances *solidity.Mapping[solidity.AddressPair, *big.Int]
	debts      *solidity.Mapping[enctr.Address, *big.Int]
	rebases    *solidity.Mapping[solidity.Index, *Rebase]

	wrapped Wrapped
	warmup  Warmup
}

// New create a new instance.
func New(addr enctr.Address, state *state.State) *Ledger {
	ctx := solidity.NewContext(addr, state)
	return &Ledger{
		context:         ctx,
		initializer:     solidity.NewAddress(ctx, slotInitializer),
		staking:         solidity.NewAddress(ctx, slotStaking),
		treasury:        solidity.NewAddress(ctx, slotTreasury),
		supply:          solidity.NewValue[*uint256.Int](ctx, slotSupply),
		gonsPerFragment: solidity.NewValue[*uint256.Int](ctx, slotGonsPerFrag),
		index:           solidity.NewValue[*uint256.Int](ctx, slotIndex),
		nextEpoch:       solidity.NewValue[uint64](ctx, slotNextEpoch),
		rebaseCount:     solidity.NewValue[uint64](ctx, slotRebaseCount),
		gons:            solidity.NewMapping[enctr.Address, *uint256.Int](ctx, slotGons),
		allowances:      solidity.NewMapping[solidity.AddressPair, *big.Int](ctx, slotAllowances),
		debts:           solidity.NewMapping[enctr.Address, *big.Int](ctx, slotDebts),
		rebases:         solidity.NewMapping[solidity.Index, *Rebase](ctx, slotRebases),
	}
}

// Bind attaches the collaborators that hold circulating supply outside the ledger.
func (l *Ledger) Bind(wrapped Wrapped, warmup Warmup) {
	l.wrapped = wrapped
	l.warmup = warmup
}

// Address returns the ledger address.
func (l *Ledger) Address() enctr.Address {
	return l.context.Address()
}

// Deploy sets the initial fragment supply and the initializer.
func (l *Ledger) Deploy(initializer enctr.Address) error {
	supply, err := l.supply.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get supply")
	}
	if !supply.IsZero() {
		return reverts.New(reverts.ErrAlreadyInitialized, "sENCTR: already deployed")
	}
	if initializer.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "sENCTR: zero initializer")
	}
	l.initializer.Set(initializer)
	if err := l.setSupply(InitialFragmentsSupply.Clone()); err != nil {
		return err
	}
	return nil
}

// Initialize mints every gon to the staking account and records the treasury.
func (l *Ledger) Initialize(caller, stakingAccount, treasury enctr.Address) error {
	staking, err := l.staking.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get staking")
	}
	if !staking.IsZero() {
		return reverts.New(reverts.ErrAlreadyInitialized, "sENCTR: already initialized")
	}
	if err := l.requireInitializer(caller); err != nil {
		return err
	}
	if stakingAccount.IsZero() || treasury.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "sENCTR: zero address")
	}
	l.staking.Set(stakingAccount)
	l.treasury.Set(treasury)
	if err := l.gons.Set(stakingAccount, TotalGons.Clone()); err != nil {
		return errors.Wrap(err, "failed to set gons")
	}
	l.initializer.Set(enctr.Address{})

	supply, err := l.TotalSupply()
	if err != nil {
		return err
	}
	l.context.Emit("Transfer", enctr.Address{}, stakingAccount, supply)
	l.context.Emit("LogStakingContractUpdated", stakingAccount)
	return nil
}

// SetIndex fixes the starting index. It can be done once, by the initializer.
func (l *Ledger) SetIndex(caller enctr.Address, value *big.Int) error {
	if err := l.requireInitializer(caller); err != nil {
		return err
	}
	current, err := l.index.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get index")
	}
	if !current.IsZero() {
		return reverts.New(reverts.ErrAlreadyInitialized, "Cannot set INDEX again")
	}
	gons, err := l.GonsForBalance(value)
	if err != nil {
		return err
	}
	return errors.Wrap(l.index.Set(gons), "failed to set index")
}

// Staking returns the staking contract address.
func (l *Ledger) Staking() (enctr.Address, error) {
	return l.staking.Get()
}

// Treasury returns the treasury address.
func (l *Ledger) Treasury() (enctr.Address, error) {
	return l.treasury.Get()
}

// Index returns the fragment value of the gons recorded by SetIndex.
func (l *Ledger) Index() (*big.Int, error) {
	index, err := l.index.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get index")
	}
	return l.BalanceForGons(index)
}

// TotalSupply returns the fragment supply.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	supply, err := l.supply.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get supply")
	}
	return supply.ToBig(), nil
}

// GonsForBalance converts fragments into gons.
func (l *Ledger) GonsForBalance(amount *big.Int) (*uint256.Int, error) {
	if err := token.CheckAmount(amount); err != nil {
		return nil, err
	}
	a, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, reverts.New(reverts.ErrInvalidArgument, "sENCTR: amount overflows")
	}
	gpf, err := l.gonsPerFragment.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get gons per fragment")
	}
	gons, overflow := new(uint256.Int).MulOverflow(a, gpf)
	if overflow {
		return nil, reverts.New(reverts.ErrInvalidArgument, "sENCTR: amount overflows")
	}
	return gons, nil
}

// BalanceForGons converts gons into fragments, rounding down.
func (l *Ledger) BalanceForGons(gons *uint256.Int) (*big.Int, error) {
	gpf, err := l.gonsPerFragment.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get gons per fragment")
	}
	if gpf.IsZero() {
		return new(big.Int), nil
	}
	return new(uint256.Int).Div(gons, gpf).ToBig(), nil
}

// GonsOf returns the raw gons balance of addr.
func (l *Ledger) GonsOf(addr enctr.Address) (*uint256.Int, error) {
	gons, err := l.gons.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get gons")
	}
	return gons, nil
}

// BalanceOf returns the fragment balance of addr.
func (l *Ledger) BalanceOf(addr enctr.Address) (*big.Int, error) {
	gons, err := l.GonsOf(addr)
	if err != nil {
		return nil, err
	}
	return l.BalanceForGons(gons)
}

// CirculatingSupply counts fragments outside the staking contract, wrapped
// shares at their fragment value and stake still in warmup.
func (l *Ledger) CirculatingSupply() (*big.Int, error) {
	supply, err := l.TotalSupply()
	if err != nil {
		return nil, err
	}
	staking, err := l.staking.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get staking")
	}
	held, err := l.BalanceOf(staking)
	if err != nil {
		return nil, err
	}
	circulating := supply.Sub(supply, held)

	if l.wrapped != nil {
		wrappedSupply, err := l.wrapped.TotalSupply()
		if err != nil {
			return nil, err
		}
		wrapped, err := l.wrapped.BalanceFrom(wrappedSupply)
		if err != nil {
			return nil, err
		}
		circulating.Add(circulating, wrapped)
	}
	if l.warmup != nil {
		inWarmup, err := l.warmup.SupplyInWarmup()
		if err != nil {
			return nil, err
		}
		circulating.Add(circulating, inWarmup)
	}
	return circulating, nil
}

// DebtBalance returns the outstanding debt of addr.
func (l *Ledger) DebtBalance(addr enctr.Address) (*big.Int, error) {
	debt, err := l.debts.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get debt")
	}
	return debt, nil
}

// Allowance returns what spender may still move on behalf of owner.
func (l *Ledger) Allowance(owner, spender enctr.Address) (*big.Int, error) {
	allowance, err := l.allowances.Get(solidity.AddressPair{owner, spender})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get allowance")
	}
	return allowance, nil
}

// Transfer moves amount fragments from caller to to.
func (l *Ledger) Transfer(caller, to enctr.Address, amount *big.Int) error {
	return l.transfer(caller, to, amount)
}

// TransferFrom moves amount fragments from from to to, spending the caller's allowance.
func (l *Ledger) TransferFrom(caller, from, to enctr.Address, amount *big.Int) error {
	if err := token.CheckAmount(amount); err != nil {
		return err
	}
	allowance, err := l.Allowance(from, caller)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return reverts.New(reverts.ErrInsufficientBalance, "sENCTR: insufficient allowance")
	}
	if err := l.approve(from, caller, allowance.Sub(allowance, amount)); err != nil {
		return err
	}
	return l.transfer(from, to, amount)
}

// Approve sets the allowance of spender over the caller's fragments.
func (l *Ledger) Approve(caller, spender enctr.Address, amount *big.Int) error {
	if err := token.CheckAmount(amount); err != nil {
		return err
	}
	return l.approve(caller, spender, amount)
}

// IncreaseAllowance raises the allowance of spender by amount.
func (l *Ledger) IncreaseAllowance(caller, spender enctr.Address, amount *big.Int) error {
	if err := token.CheckAmount(amount); err != nil {
		return err
	}
	allowance, err := l.Allowance(caller, spender)
	if err != nil {
		return err
	}
	return l.approve(caller, spender, allowance.Add(allowance, amount))
}

// DecreaseAllowance lowers the allowance of spender by amount, stopping at zero.
func (l *Ledger) DecreaseAllowance(caller, spender enctr.Address, amount *big.Int) error {
	if err := token.CheckAmount(amount); err != nil {
		return err
	}
	allowance, err := l.Allowance(caller, spender)
	if err != nil {
		return err
	}
	if amount.Cmp(allowance) >= 0 {
		allowance.SetUint64(0)
	} else {
		allowance.Sub(allowance, amount)
	}
	return l.approve(caller, spender, allowance)
}

// Rebase grows the supply so circulating fragments gain profit. Only the
// staking contract may rebase, once per epoch.
func (l *Ledger) Rebase(caller enctr.Address, profit *big.Int, epoch uint64) (*big.Int, error) {
	if err := l.requireStaking(caller); err != nil {
		return nil, err
	}
	if err := token.CheckAmount(profit); err != nil {
		return nil, err
	}
	next, err := l.nextEpoch.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get rebase epoch")
	}
	if epoch < next {
		return nil, reverts.Newf(reverts.ErrAlreadyActive, "sENCTR: epoch %d already rebased", epoch)
	}
	if err := l.nextEpoch.Set(epoch + 1); err != nil {
		return nil, errors.Wrap(err, "failed to set rebase epoch")
	}

	supply, err := l.TotalSupply()
	if err != nil {
		return nil, err
	}
	if profit.Sign() == 0 {
		index, err := l.Index()
		if err != nil {
			return nil, err
		}
		l.context.Emit("LogSupply", epoch, supply)
		l.context.Emit("LogRebase", epoch, new(big.Int), index)
		return supply, nil
	}

	circulating, err := l.CirculatingSupply()
	if err != nil {
		return nil, err
	}
	rebaseAmount := new(big.Int).Set(profit)
	if circulating.Sign() > 0 {
		rebaseAmount.Mul(profit, supply).Div(rebaseAmount, circulating)
	}

	newSupply := new(big.Int).Add(supply, rebaseAmount)
	if newSupply.Cmp(MaxSupply.ToBig()) > 0 {
		newSupply = MaxSupply.ToBig()
	}
	if err := l.setSupply(uint256.MustFromBig(newSupply)); err != nil {
		return nil, err
	}
	if err := l.storeRebase(circulating, profit, epoch); err != nil {
		return nil, err
	}
	logger.Debug("rebased", "epoch", epoch, "profit", profit, "supply", newSupply)
	return newSupply, nil
}

// ChangeDebt adjusts the debt of debtor. Only the treasury may do so, and the
// debt may never exceed the debtor's balance.
func (l *Ledger) ChangeDebt(caller enctr.Address, amount *big.Int, debtor enctr.Address, add bool) error {
	treasury, err := l.treasury.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get treasury")
	}
	if treasury.IsZero() || caller != treasury {
		return reverts.New(reverts.ErrUnauthorized, "Only treasury")
	}
	if err := token.CheckAmount(amount); err != nil {
		return err
	}
	debt, err := l.DebtBalance(debtor)
	if err != nil {
		return err
	}
	if add {
		debt.Add(debt, amount)
	} else {
		if debt.Cmp(amount) < 0 {
			return reverts.New(reverts.ErrInsufficientBalance, "sENCTR: debt underflow")
		}
		debt.Sub(debt, amount)
	}
	bal, err := l.BalanceOf(debtor)
	if err != nil {
		return err
	}
	if debt.Cmp(bal) > 0 {
		return reverts.New(reverts.ErrInsufficientBalance, "sENCTR: insufficient balance")
	}
	return errors.Wrap(l.debts.Set(debtor, debt), "failed to set debt")
}

// RebaseCount returns the number of recorded rebases.
func (l *Ledger) RebaseCount() (uint64, error) {
	count, err := l.rebaseCount.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get rebase count")
	}
	return count, nil
}

// Rebases returns the i-th rebase record.
func (l *Ledger) Rebases(i uint64) (*Rebase, error) {
	count, err := l.RebaseCount()
	if err != nil {
		return nil, err
	}
	if i >= count {
		return nil, reverts.New(reverts.ErrOutOfBounds, "sENCTR: rebase index out of bounds")
	}
	rebase, err := l.rebases.Get(solidity.Index(i))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get rebase")
	}
	return rebase, nil
}

func (l *Ledger) storeRebase(previousCirculating, profit *big.Int, epoch uint64) error {
	pct := new(big.Int)
	if previousCirculating.Sign() > 0 {
		pct.Mul(profit, enctr.Pow10(enctr.WrappedDecimals)).Div(pct, previousCirculating)
	}
	after, err := l.CirculatingSupply()
	if err != nil {
		return err
	}
	index, err := l.Index()
	if err != nil {
		return err
	}
	count, err := l.RebaseCount()
	if err != nil {
		return err
	}
	if err := l.rebases.Set(solidity.Index(count), &Rebase{
		Epoch:             epoch,
		Rebase:            pct,
		TotalStakedBefore: previousCirculating,
		TotalStakedAfter:  after,
		AmountRebased:     new(big.Int).Set(profit),
		Index:             index,
	}); err != nil {
		return errors.Wrap(err, "failed to set rebase")
	}
	if err := l.rebaseCount.Set(count + 1); err != nil {
		return errors.Wrap(err, "failed to set rebase count")
	}

	supply, err := l.TotalSupply()
	if err != nil {
		return err
	}
	l.context.Emit("LogSupply", epoch, supply)
	l.context.Emit("LogRebase", epoch, pct, index)
	return nil
}

func (l *Ledger) setSupply(supply *uint256.Int) error {
	if err := l.supply.Set(supply); err != nil {
		return errors.Wrap(err, "failed to set supply")
	}
	gpf := new(uint256.Int).Div(TotalGons, supply)
	return errors.Wrap(l.gonsPerFragment.Set(gpf), "failed to set gons per fragment")
}

func (l *Ledger) transfer(from, to enctr.Address, amount *big.Int) error {
	if err := token.CheckAmount(amount); err != nil {
		return err
	}
	if to.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "sENCTR: transfer to the zero address")
	}
	bal, err := l.BalanceOf(from)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return reverts.New(reverts.ErrInsufficientBalance, "sENCTR: transfer amount exceeds balance")
	}
	gonValue, err := l.GonsForBalance(amount)
	if err != nil {
		return err
	}

	fromGons, err := l.GonsOf(from)
	if err != nil {
		return err
	}
	if err := l.gons.Set(from, fromGons.Sub(fromGons, gonValue)); err != nil {
		return errors.Wrap(err, "failed to set gons")
	}
	toGons, err := l.GonsOf(to)
	if err != nil {
		return err
	}
	if err := l.gons.Set(to, toGons.Add(toGons, gonValue)); err != nil {
		return errors.Wrap(err, "failed to set gons")
	}

	debt, err := l.DebtBalance(from)
	if err != nil {
		return err
	}
	left, err := l.BalanceOf(from)
	if err != nil {
		return err
	}
	if left.Cmp(debt) < 0 {
		return reverts.New(reverts.ErrInsufficientBalance, "Debt: cannot transfer amount")
	}
	l.context.Emit("Transfer", from, to, new(big.Int).Set(amount))
	return nil
}

func (l *Ledger) approve(owner, spender enctr.Address, amount *big.Int) error {
	if err := l.allowances.Set(solidity.AddressPair{owner, spender}, amount); err != nil {
		return errors.Wrap(err, "failed to set allowance")
	}
	l.context.Emit("Approval", owner, spender, new(big.Int).Set(amount))
	return nil
}

func (l *Ledger) requireInitializer(caller enctr.Address) error {
	initializer, err := l.initializer.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get initializer")
	}
	if initializer.IsZero() || caller != initializer {
		return reverts.New(reverts.ErrUnauthorized, "Initialization: caller is not initializer")
	}
	return nil
}

func (l *Ledger) requireStaking(caller enctr.Address) error {
	staking, err := l.staking.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get staking")
	}
	if staking.IsZero() || caller != staking {
		return reverts.New(reverts.ErrUnauthorized, "StakingContract: call is not staking contract")
	}
	return nil
}
