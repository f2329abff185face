// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package warmup

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/encountr/enctr/builtin/solidity"
	"github.com/encountr/enctr/enctr"
)

var (
	slotInfos  = solidity.Slot("warmup-info")
	slotTotal  = solidity.Slot("gons-in-warmup")
	slotPeriod = solidity.Slot("warmup-period")
)

// Info is a pending stake. Lock is an address preference kept across cycles.
type Info struct {
	Deposit *big.Int
	Gons    *uint256.Int
	Expiry  uint64
	Lock    bool
}

// IsEmpty tells whether no stake is pending.
func (i *Info) IsEmpty() bool {
	return i.Deposit.Sign() == 0 && i.Gons.IsZero()
}

func (i *Info) normalize() *Info {
	if i.Deposit == nil {
		i.Deposit = new(big.Int)
	}
	if i.Gons == nil {
		i.Gons = new(uint256.Int)
	}
	return i
}

// Pool holds stakes until their warmup expires.
type Pool struct {
	infos  *solidity.Mapping[enctr.Address, *Info]
	total  *solidity.Value[*uint256.Int]
	period *solidity.Value[uint64]
}

func New(sctx *solidity.Context) *Pool {
	return &Pool{
		infos:  solidity.NewMapping[enctr.Address, *Info](sctx, slotInfos),
		total:  solidity.NewValue[*uint256.Int](sctx, slotTotal),
		period: solidity.NewValue[uint64](sctx, slotPeriod),
	}
}

// Period returns the warmup length in epochs.
func (p *Pool) Period() (uint64, error) {
	period, err := p.period.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get warmup period")
	}
	return period, nil
}

// SetPeriod sets the warmup length in epochs.
func (p *Pool) SetPeriod(period uint64) error {
	return errors.Wrap(p.period.Set(period), "failed to set warmup period")
}

// Get returns the warmup entry of addr.
func (p *Pool) Get(addr enctr.Address) (*Info, error) {
	info, err := p.infos.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get warmup info")
	}
	return info.normalize(), nil
}

// GonsInWarmup returns the gons of every pending stake.
func (p *Pool) GonsInWarmup() (*uint256.Int, error) {
	total, err := p.total.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get gons in warmup")
	}
	return total, nil
}

// RecordStake adds a deposit to the entry of addr and moves its expiry.
func (p *Pool) RecordStake(addr enctr.Address, deposit *big.Int, gons *uint256.Int, expiry uint64) error {
	info, err := p.Get(addr)
	if err != nil {
		return err
	}
	info.Deposit.Add(info.Deposit, deposit)
	info.Gons.Add(info.Gons, gons)
	info.Expiry = expiry
	if err := p.set(addr, info); err != nil {
		return err
	}
	return p.addTotal(gons, true)
}

// Claim releases the entry of addr when it is due at currentEpoch. It returns
// nil when nothing is due.
func (p *Pool) Claim(addr enctr.Address, currentEpoch uint64) (*Info, error) {
	info, err := p.Get(addr)
	if err != nil {
		return nil, err
	}
	if info.IsEmpty() || currentEpoch < info.Expiry {
		return nil, nil
	}
	return p.clear(addr, info)
}

// Forfeit releases the entry of addr regardless of expiry. An address with
// no entry gets a zero one.
func (p *Pool) Forfeit(addr enctr.Address) (*Info, error) {
	info, err := p.Get(addr)
	if err != nil {
		return nil, err
	}
	if info.IsEmpty() {
		return info, nil
	}
	return p.clear(addr, info)
}

// ToggleLock flips the lock of addr and returns the new value.
func (p *Pool) ToggleLock(addr enctr.Address) (bool, error) {
	info, err := p.Get(addr)
	if err != nil {
		return false, err
	}
	info.Lock = !info.Lock
	return info.Lock, p.set(addr, info)
}

func (p *Pool) clear(addr enctr.Address, info *Info) (*Info, error) {
	released := &Info{
		Deposit: new(big.Int).Set(info.Deposit),
		Gons:    info.Gons.Clone(),
		Expiry:  info.Expiry,
		Lock:    info.Lock,
	}
	if err := p.set(addr, &Info{Lock: info.Lock}); err != nil {
		return nil, err
	}
	if err := p.addTotal(released.Gons, false); err != nil {
		return nil, err
	}
	return released, nil
}

func (p *Pool) set(addr enctr.Address, info *Info) error {
	return errors.Wrap(p.infos.Set(addr, info.normalize()), "failed to set warmup info")
}

func (p *Pool) addTotal(gons *uint256.Int, add bool) error {
	total, err := p.GonsInWarmup()
	if err != nil {
		return err
	}
	if add {
		total.Add(total, gons)
	} else {
		if total.Lt(gons) {
			return errors.New("gons in warmup underflow")
		}
		total.Sub(total, gons)
	}
	return errors.Wrap(p.total.Set(total), "failed to set gons in warmup")
}
