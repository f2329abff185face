// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/encountr/enctr/builtin/gencountr"
	"github.com/encountr/enctr/builtin/reverts"
	"github.com/encountr/enctr/builtin/sencountr"
	"github.com/encountr/enctr/builtin/solidity"
	"github.com/encountr/enctr/builtin/staking/epoch"
	"github.com/encountr/enctr/builtin/staking/warmup"
	"github.com/encountr/enctr/builtin/token"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/log"
	"github.com/encountr/enctr/state"
)

var (
	logger = log.WithContext("pkg", "staking")

	slotDistributor = solidity.Slot("distributor")
)

// Authority gates governance calls.
type Authority interface {
	RequireGovernor(caller enctr.Address) error
}

// Distributor mints the epoch rewards and the rebase bounty.
type Distributor interface {
	Distribute(caller enctr.Address) error
	RetrieveBounty(caller enctr.Address) (*big.Int, error)
}

// DistributorResolver returns the distributor deployed at addr, nil if none.
type DistributorResolver func(addr enctr.Address) Distributor

// Staking implements the staking coordinator. It holds ENCTR against the
// sENCTR it hands out and drives the epoch rebase.
type Staking struct {
	context     *solidity.Context
	epoch       *epoch.Service
	warmup      *warmup.Pool
	distributor *solidity.Address

	authority Authority
	base      *token.Token
	staked    *sencountr.Ledger
	wrapped   *gencountr.Wrapped
	resolve   DistributorResolver
}

// New create a new instance.
func New(
	addr enctr.Address,
	state *state.State,
	authority Authority,
	base *token.Token,
	staked *sencountr.Ledger,
	wrapped *gencountr.Wrapped,
) *Staking {
	sctx := solidity.NewContext(addr, state)
	return &Staking{
		context:     sctx,
		epoch:       epoch.New(sctx),
		warmup:      warmup.New(sctx),
		distributor: solidity.NewAddress(sctx, slotDistributor),
		authority:   authority,
		base:        base,
		staked:      staked,
		wrapped:     wrapped,
		resolve:     func(enctr.Address) Distributor { return nil },
	}
}

// WithResolver sets how a configured distributor address is bound.
func (s *Staking) WithResolver(resolve DistributorResolver) *Staking {
	s.resolve = resolve
	return s
}

// Address returns the staking contract address.
func (s *Staking) Address() enctr.Address {
	return s.context.Address()
}

// Initialize sets the first epoch.
func (s *Staking) Initialize(length, firstNumber, firstEnd uint64) error {
	return s.epoch.Initialize(length, firstNumber, firstEnd)
}

//
// Getters - no state change
//

// Index returns the sENCTR index.
func (s *Staking) Index() (*big.Int, error) {
	return s.staked.Index()
}

// SupplyInWarmup returns the fragment value of the stake in warmup.
func (s *Staking) SupplyInWarmup() (*big.Int, error) {
	gons, err := s.warmup.GonsInWarmup()
	if err != nil {
		return nil, err
	}
	return s.staked.BalanceForGons(gons)
}

// Epoch returns the current epoch.
func (s *Staking) Epoch() (*epoch.Epoch, error) {
	return s.epoch.Get()
}

// Warmup returns the warmup entry of addr.
func (s *Staking) Warmup(addr enctr.Address) (*warmup.Info, error) {
	return s.warmup.Get(addr)
}

// WarmupPeriod returns the warmup length in epochs.
func (s *Staking) WarmupPeriod() (uint64, error) {
	return s.warmup.Period()
}

// SecondsToNextEpoch returns the clock units left in the current epoch.
func (s *Staking) SecondsToNextEpoch(clock uint64) (uint64, error) {
	return s.epoch.SecondsToNext(clock)
}

// Distributor returns the configured distributor, zero if none.
func (s *Staking) Distributor() (enctr.Address, error) {
	return s.distributor.Get()
}

//
// Setters - state change
//

// Stake pulls amount ENCTR from caller and credits recipient, right away when
// claim is set and there is no warmup, through the warmup otherwise. A locked
// recipient only accepts its own stakes.
// It returns the amount credited, in sENCTR or gENCTR.
func (s *Staking) Stake(caller, recipient enctr.Address, amount *big.Int, rebasing, claim bool, clock uint64) (*big.Int, error) {
	if err := token.CheckAmount(amount); err != nil {
		return nil, err
	}
	if err := s.base.TransferFrom(s.Address(), caller, s.Address(), amount); err != nil {
		return nil, err
	}
	bounty, err := s.Rebase(clock)
	if err != nil {
		return nil, err
	}
	amount = new(big.Int).Add(amount, bounty)

	period, err := s.warmup.Period()
	if err != nil {
		return nil, err
	}
	info, err := s.warmup.Get(recipient)
	if err != nil {
		return nil, err
	}
	if info.Lock && recipient != caller {
		return nil, reverts.New(reverts.ErrUnauthorized, "External deposits for account are locked")
	}
	current, err := s.epoch.Get()
	if err != nil {
		return nil, err
	}
	countOp("stake")
	if claim && period == 0 {
		s.context.Emit("Staked", caller, recipient, new(big.Int).Set(amount), current.Number)
		return s.send(recipient, amount, rebasing)
	}

	gons, err := s.staked.GonsForBalance(amount)
	if err != nil {
		return nil, err
	}
	if err := s.warmup.RecordStake(recipient, amount, gons, current.Number+period); err != nil {
		return nil, err
	}
	s.context.Emit("Staked", caller, recipient, new(big.Int).Set(amount), current.Number+period)
	return amount, nil
}

// Claim releases the due warmup of recipient. Nothing happens when nothing is due.
func (s *Staking) Claim(caller, recipient enctr.Address, rebasing bool) (*big.Int, error) {
	info, err := s.warmup.Get(recipient)
	if err != nil {
		return nil, err
	}
	if info.Lock && recipient != caller {
		return nil, reverts.New(reverts.ErrUnauthorized, "External claims for account are locked")
	}
	current, err := s.epoch.Get()
	if err != nil {
		return nil, err
	}
	claimed, err := s.warmup.Claim(recipient, current.Number)
	if err != nil {
		return nil, err
	}
	if claimed == nil {
		return new(big.Int), nil
	}
	amount, err := s.staked.BalanceForGons(claimed.Gons)
	if err != nil {
		return nil, err
	}
	countOp("claim")
	s.context.Emit("Claimed", recipient, new(big.Int).Set(amount))
	return s.send(recipient, amount, rebasing)
}

// Forfeit drops the caller's warmup and returns the principal in ENCTR.
func (s *Staking) Forfeit(caller enctr.Address) (*big.Int, error) {
	info, err := s.warmup.Forfeit(caller)
	if err != nil {
		return nil, err
	}
	if info.Deposit.Sign() > 0 {
		if err := s.base.Transfer(s.Address(), caller, info.Deposit); err != nil {
			return nil, err
		}
	}
	countOp("forfeit")
	s.context.Emit("Forfeited", caller, new(big.Int).Set(info.Deposit))
	return info.Deposit, nil
}

// ToggleLock flips the caller's protection against external deposits and claims.
func (s *Staking) ToggleLock(caller enctr.Address) (bool, error) {
	locked, err := s.warmup.ToggleLock(caller)
	if err != nil {
		return false, err
	}
	s.context.Emit("LockToggled", caller, locked)
	return locked, nil
}

// Unstake redeems sENCTR, or gENCTR when not rebasing, for ENCTR sent to recipient.
func (s *Staking) Unstake(caller, recipient enctr.Address, amount *big.Int, trigger, rebasing bool, clock uint64) (*big.Int, error) {
	if err := token.CheckAmount(amount); err != nil {
		return nil, err
	}
	bounty := new(big.Int)
	if trigger {
		var err error
		if bounty, err = s.Rebase(clock); err != nil {
			return nil, err
		}
	}

	var out *big.Int
	if rebasing {
		if err := s.staked.TransferFrom(s.Address(), caller, s.Address(), amount); err != nil {
			return nil, err
		}
		out = new(big.Int).Add(amount, bounty)
	} else {
		if err := s.wrapped.Burn(s.Address(), caller, amount); err != nil {
			return nil, err
		}
		value, err := s.wrapped.BalanceFrom(amount)
		if err != nil {
			return nil, err
		}
		out = value.Add(value, bounty)
	}

	held, err := s.base.BalanceOf(s.Address())
	if err != nil {
		return nil, err
	}
	if out.Cmp(held) > 0 {
		return nil, reverts.New(reverts.ErrInsufficientBalance, "Insufficient ENCTR balance in contract")
	}
	if err := s.base.Transfer(s.Address(), recipient, out); err != nil {
		return nil, err
	}
	countOp("unstake")
	s.context.Emit("Unstaked", caller, recipient, new(big.Int).Set(out))
	return out, nil
}

// Wrap converts the caller's sENCTR into gENCTR minted to recipient.
func (s *Staking) Wrap(caller, recipient enctr.Address, amount *big.Int) (*big.Int, error) {
	if err := s.staked.TransferFrom(s.Address(), caller, s.Address(), amount); err != nil {
		return nil, err
	}
	wrapped, err := s.wrapped.BalanceTo(amount)
	if err != nil {
		return nil, err
	}
	if err := s.wrapped.Mint(s.Address(), recipient, wrapped); err != nil {
		return nil, err
	}
	countOp("wrap")
	return wrapped, nil
}

// Unwrap burns the caller's gENCTR and sends the sENCTR it is worth to recipient.
func (s *Staking) Unwrap(caller, recipient enctr.Address, amount *big.Int) (*big.Int, error) {
	if err := s.wrapped.Burn(s.Address(), caller, amount); err != nil {
		return nil, err
	}
	value, err := s.wrapped.BalanceFrom(amount)
	if err != nil {
		return nil, err
	}
	if err := s.staked.Transfer(s.Address(), recipient, value); err != nil {
		return nil, err
	}
	countOp("unwrap")
	return value, nil
}

// Rebase closes the epoch when due: it applies the scheduled distribution to
// sENCTR, lets the distributor mint and schedules the next distribution.
// It returns the bounty paid to the staking contract.
func (s *Staking) Rebase(clock uint64) (*big.Int, error) {
	bounty := new(big.Int)
	prev, err := s.epoch.Advance(clock)
	if err != nil || prev == nil {
		return bounty, err
	}
	if _, err := s.staked.Rebase(s.Address(), prev.Distribute, prev.Number); err != nil {
		return nil, err
	}

	distributorAddr, err := s.distributor.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get distributor")
	}
	if !distributorAddr.IsZero() {
		distributor := s.resolve(distributorAddr)
		if distributor == nil {
			return nil, errors.Errorf("no distributor at %v", distributorAddr)
		}
		if err := distributor.Distribute(s.Address()); err != nil {
			return nil, err
		}
		if bounty, err = distributor.RetrieveBounty(s.Address()); err != nil {
			return nil, err
		}
	}

	held, err := s.base.BalanceOf(s.Address())
	if err != nil {
		return nil, err
	}
	staked, err := s.staked.CirculatingSupply()
	if err != nil {
		return nil, err
	}
	distribute := new(big.Int).Sub(held, staked)
	distribute.Sub(distribute, bounty)
	if distribute.Sign() < 0 {
		distribute.SetUint64(0)
	}
	if err := s.epoch.SetDistribute(distribute); err != nil {
		return nil, err
	}

	countOp("rebase")
	metricEpochNumber().Set(int64(prev.Number + 1))
	if index, err := s.staked.Index(); err == nil && index.IsInt64() {
		metricIndex().Set(index.Int64())
	}
	logger.Debug("epoch rebased", "epoch", prev.Number, "distributed", prev.Distribute, "next", distribute, "bounty", bounty)
	return bounty, nil
}

// SetDistributor sets the distributor called on rebase. Zero disables it.
func (s *Staking) SetDistributor(caller, addr enctr.Address) error {
	if err := s.authority.RequireGovernor(caller); err != nil {
		return err
	}
	s.distributor.Set(addr)
	s.context.Emit("DistributorSet", addr)
	return nil
}

// SetWarmupLength sets the warmup length in epochs.
func (s *Staking) SetWarmupLength(caller enctr.Address, period uint64) error {
	if err := s.authority.RequireGovernor(caller); err != nil {
		return err
	}
	if err := s.warmup.SetPeriod(period); err != nil {
		return err
	}
	s.context.Emit("WarmupSet", period)
	return nil
}

func (s *Staking) send(recipient enctr.Address, amount *big.Int, rebasing bool) (*big.Int, error) {
	if rebasing {
		if err := s.staked.Transfer(s.Address(), recipient, amount); err != nil {
			return nil, err
		}
		return amount, nil
	}
	wrapped, err := s.wrapped.BalanceTo(amount)
	if err != nil {
		return nil, err
	}
	if err := s.wrapped.Mint(s.Address(), recipient, wrapped); err != nil {
		return nil, err
	}
	return wrapped, nil
}
