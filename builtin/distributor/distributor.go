// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/encountr/enctr/builtin/reverts"
	"github.com/encountr/enctr/builtin/solidity"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/log"
	"github.com/encountr/enctr/state"
)

const (
	// RateDenominator expresses rates in millionths.
	RateDenominator = 1_000_000
	// MaxBounty caps the rebase bounty at 2 ENCTR.
	MaxBounty = 2e9
)

var (
	logger = log.WithContext("pkg", "distributor")

	slotStaking     = solidity.Slot("staking")
	slotBounty      = solidity.Slot("bounty")
	slotCount       = solidity.Slot("info-count")
	slotInfos       = solidity.Slot("infos")
	slotAdjustments = solidity.Slot("adjustments")
)

// Info is a reward recipient. A removed recipient keeps its slot with a zero address.
type Info struct {
	Recipient enctr.Address
	Rate      uint64
}

// Adjust moves a rate by Rate each epoch until it reaches Target.
type Adjust struct {
	Add    bool
	Rate   uint64
	Target uint64
}

// Treasury mints rewards out of excess reserves.
type Treasury interface {
	Mint(caller, recipient enctr.Address, amount *big.Int) error
}

// Token is the ENCTR balance source.
type Token interface {
	BalanceOf(addr enctr.Address) (*big.Int, error)
	TotalSupply() (*big.Int, error)
}

// Authority gates governance calls.
type Authority interface {
	RequireGovernor(caller enctr.Address) error
	RequireGovernorOrGuardian(caller enctr.Address) error
	IsGuardian(addr enctr.Address) (bool, error)
}

// Distributor pays the per-epoch rewards.
type Distributor struct {
	context     *solidity.Context
	staking     *solidity.Address
	bounty      *solidity.Uint256
	count       *solidity.Value[uint64]
	infos       *solidity.Mapping[solidity.Index, *Info]
	adjustments *solidity.Mapping[solidity.Index, *Adjust]

	authority Authority
	treasury  Treasury
	base      Token
}

// New create a new instance.
func New(addr enctr.Address, state *state.State, authority Authority, treasury Treasury, base Token) *Distributor {
	ctx := solidity.NewContext(addr, state)
	return &Distributor{
		context:     ctx,
		staking:     solidity.NewAddress(ctx, slotStaking),
		bounty:      solidity.NewUint256(ctx, slotBounty),
		count:       solidity.NewValue[uint64](ctx, slotCount),
		infos:       solidity.NewMapping[solidity.Index, *Info](ctx, slotInfos),
		adjustments: solidity.NewMapping[solidity.Index, *Adjust](ctx, slotAdjustments),
		authority:   authority,
		treasury:    treasury,
		base:        base,
	}
}

// Address returns the distributor address.
func (d *Distributor) Address() enctr.Address {
	return d.context.Address()
}

// Initialize records the staking contract allowed to trigger distribution.
func (d *Distributor) Initialize(staking enctr.Address) error {
	current, err := d.staking.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get staking")
	}
	if !current.IsZero() {
		return reverts.New(reverts.ErrAlreadyInitialized, "Distributor: already initialized")
	}
	if staking.IsZero() {
		return reverts.New(reverts.ErrInvalidAddress, "Zero address: Staking")
	}
	d.staking.Set(staking)
	return nil
}

// Distribute mints the reward of every live recipient and applies adjustments.
func (d *Distributor) Distribute(caller enctr.Address) error {
	if err := d.requireStaking(caller); err != nil {
		return err
	}
	n, err := d.Len()
	if err != nil {
		return err
	}
	for i := range n {
		info, err := d.Info(i)
		if err != nil {
			return err
		}
		if info.Rate == 0 {
			continue
		}
		reward, err := d.rewardOf(info)
		if err != nil {
			return err
		}
		if reward.Sign() > 0 {
			if err := d.treasury.Mint(d.Address(), info.Recipient, reward); err != nil {
				return err
			}
		}
		if err := d.adjust(i, info); err != nil {
			return err
		}
		logger.Debug("reward distributed", "recipient", info.Recipient, "reward", reward)
	}
	return nil
}

// RetrieveBounty mints the bounty to the staking contract and returns it.
func (d *Distributor) RetrieveBounty(caller enctr.Address) (*big.Int, error) {
	if err := d.requireStaking(caller); err != nil {
		return nil, err
	}
	bounty, err := d.bounty.Get()
	if err != nil {
		return nil, err
	}
	if bounty.Sign() > 0 {
		if err := d.treasury.Mint(d.Address(), caller, bounty); err != nil {
			return nil, err
		}
	}
	return bounty, nil
}

// NextRewardAt returns the reward rate applied to the whole ENCTR supply.
func (d *Distributor) NextRewardAt(rate uint64) (*big.Int, error) {
	supply, err := d.base.TotalSupply()
	if err != nil {
		return nil, err
	}
	return scale(supply, rate), nil
}

// NextRewardFor returns what addr receives at the next distribution.
func (d *Distributor) NextRewardFor(addr enctr.Address) (*big.Int, error) {
	n, err := d.Len()
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	for i := range n {
		info, err := d.Info(i)
		if err != nil {
			return nil, err
		}
		if info.Recipient != addr || info.Rate == 0 {
			continue
		}
		reward, err := d.rewardOf(info)
		if err != nil {
			return nil, err
		}
		total.Add(total, reward)
	}
	return total, nil
}

// Len returns the number of recipient slots, removed ones included.
func (d *Distributor) Len() (uint64, error) {
	n, err := d.count.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get info count")
	}
	return n, nil
}

// Info returns the recipient at index. Past the end it fails with ErrOutOfBounds,
// which callers enumerating the list rely on.
func (d *Distributor) Info(index uint64) (*Info, error) {
	n, err := d.Len()
	if err != nil {
		return nil, err
	}
	if index >= n {
		return nil, reverts.Newf(reverts.ErrOutOfBounds, "Distributor: index %d out of bounds", index)
	}
	info, err := d.infos.Get(solidity.Index(index))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get info")
	}
	return info, nil
}

// Adjustment returns the pending adjustment at index.
func (d *Distributor) Adjustment(index uint64) (*Adjust, error) {
	adjustment, err := d.adjustments.Get(solidity.Index(index))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get adjustment")
	}
	return adjustment, nil
}

// Bounty returns the amount paid to the staking contract each rebase.
func (d *Distributor) Bounty() (*big.Int, error) {
	return d.bounty.Get()
}

// SetBounty sets the rebase bounty.
func (d *Distributor) SetBounty(caller enctr.Address, amount *big.Int) error {
	if err := d.authority.RequireGovernor(caller); err != nil {
		return err
	}
	if amount.Sign() < 0 || amount.Cmp(big.NewInt(MaxBounty)) > 0 {
		return reverts.New(reverts.ErrExceedsLimit, "Too much")
	}
	d.bounty.Set(amount)
	d.context.Emit("BountySet", new(big.Int).Set(amount))
	return nil
}

// AddRecipient appends a recipient receiving rate millionths per epoch.
func (d *Distributor) AddRecipient(caller, recipient enctr.Address, rate uint64) (uint64, error) {
	if err := d.authority.RequireGovernor(caller); err != nil {
		return 0, err
	}
	if recipient.IsZero() {
		return 0, reverts.New(reverts.ErrInvalidAddress, "Zero address: Recipient")
	}
	if rate > RateDenominator {
		return 0, reverts.New(reverts.ErrExceedsLimit, "Rate cannot exceed denominator")
	}
	n, err := d.Len()
	if err != nil {
		return 0, err
	}
	if err := d.infos.Set(solidity.Index(n), &Info{Recipient: recipient, Rate: rate}); err != nil {
		return 0, errors.Wrap(err, "failed to set info")
	}
	if err := d.count.Set(n + 1); err != nil {
		return 0, errors.Wrap(err, "failed to set info count")
	}
	d.context.Emit("RecipientAdded", n, recipient, rate)
	return n, nil
}

// RemoveRecipient zeroes the recipient at index.
func (d *Distributor) RemoveRecipient(caller enctr.Address, index uint64) error {
	if err := d.authority.RequireGovernorOrGuardian(caller); err != nil {
		return err
	}
	if _, err := d.liveInfo(index); err != nil {
		return err
	}
	if err := d.infos.Set(solidity.Index(index), &Info{}); err != nil {
		return errors.Wrap(err, "failed to set info")
	}
	d.adjustments.Delete(solidity.Index(index))
	d.context.Emit("RecipientRemoved", index)
	return nil
}

// SetAdjustment schedules a rate change for the recipient at index. A
// guardian may move the rate by at most 2.5% per epoch.
func (d *Distributor) SetAdjustment(caller enctr.Address, index uint64, add bool, rate, target uint64) error {
	if err := d.authority.RequireGovernorOrGuardian(caller); err != nil {
		return err
	}
	info, err := d.liveInfo(index)
	if err != nil {
		return err
	}
	isGuardian, err := d.authority.IsGuardian(caller)
	if err != nil {
		return err
	}
	if isGuardian && rate > info.Rate*25/1000 {
		return reverts.New(reverts.ErrExceedsLimit, "Limiter: cannot adjust by >2.5%")
	}
	if !add && rate > info.Rate {
		return reverts.New(reverts.ErrExceedsLimit, "Cannot decrease rate by more than it already is")
	}
	if add && target > RateDenominator {
		return reverts.New(reverts.ErrExceedsLimit, "Rate cannot exceed denominator")
	}
	if err := d.adjustments.Set(solidity.Index(index), &Adjust{Add: add, Rate: rate, Target: target}); err != nil {
		return errors.Wrap(err, "failed to set adjustment")
	}
	d.context.Emit("AdjustmentSet", index, add, rate, target)
	return nil
}

func (d *Distributor) adjust(index uint64, info *Info) error {
	adjustment, err := d.Adjustment(index)
	if err != nil {
		return err
	}
	if adjustment.Rate == 0 {
		return nil
	}
	done := false
	if adjustment.Add {
		info.Rate += adjustment.Rate
		if info.Rate >= adjustment.Target {
			info.Rate = adjustment.Target
			done = true
		}
	} else {
		if info.Rate > adjustment.Rate {
			info.Rate -= adjustment.Rate
		} else {
			info.Rate = 0
		}
		if info.Rate <= adjustment.Target {
			info.Rate = adjustment.Target
			done = true
		}
	}
	if err := d.infos.Set(solidity.Index(index), info); err != nil {
		return errors.Wrap(err, "failed to set info")
	}
	if done {
		d.adjustments.Delete(solidity.Index(index))
	}
	return nil
}

func (d *Distributor) rewardOf(info *Info) (*big.Int, error) {
	bal, err := d.base.BalanceOf(info.Recipient)
	if err != nil {
		return nil, err
	}
	return scale(bal, info.Rate), nil
}

func (d *Distributor) liveInfo(index uint64) (*Info, error) {
	info, err := d.Info(index)
	if err != nil {
		return nil, err
	}
	if info.Recipient.IsZero() {
		return nil, reverts.New(reverts.ErrInvalidArgument, "Recipient does not exist")
	}
	return info, nil
}

func (d *Distributor) requireStaking(caller enctr.Address) error {
	staking, err := d.staking.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get staking")
	}
	if staking.IsZero() || caller != staking {
		return reverts.New(reverts.ErrUnauthorized, "Only staking")
	}
	return nil
}

func scale(amount *big.Int, rate uint64) *big.Int {
	v := new(big.Int).Mul(amount, new(big.Int).SetUint64(rate))
	return v.Quo(v, big.NewInt(RateDenominator))
}
