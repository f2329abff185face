// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package epoch

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/encountr/enctr/builtin/reverts"
	"github.com/encountr/enctr/builtin/solidity"
)

var slotEpoch = solidity.Slot("epoch")

// Epoch is the rebase window. Length and End are in clock units.
type Epoch struct {
	Length     uint64
	Number     uint64
	End        uint64
	Distribute *big.Int
}

// Due tells whether the window has closed at clock.
func (e *Epoch) Due(clock uint64) bool {
	return e.Length != 0 && clock >= e.End
}

func (e *Epoch) normalize() *Epoch {
	if e.Distribute == nil {
		e.Distribute = new(big.Int)
	}
	return e
}

// Service schedules rebases.
type Service struct {
	epoch *solidity.Value[*Epoch]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		epoch: solidity.NewValue[*Epoch](sctx, slotEpoch),
	}
}

// Initialize sets the first epoch. It can be done once.
func (s *Service) Initialize(length, number, end uint64) error {
	current, err := s.Get()
	if err != nil {
		return err
	}
	if current.Length != 0 {
		return reverts.New(reverts.ErrAlreadyInitialized, "Epoch: already initialized")
	}
	if length == 0 {
		return reverts.New(reverts.ErrInvalidArgument, "Epoch: zero length")
	}
	return s.set(&Epoch{Length: length, Number: number, End: end, Distribute: new(big.Int)})
}

// Get returns the current epoch.
func (s *Service) Get() (*Epoch, error) {
	e, err := s.epoch.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get epoch")
	}
	return e.normalize(), nil
}

// DueForRebase tells whether the window has closed at clock.
func (s *Service) DueForRebase(clock uint64) (bool, error) {
	e, err := s.Get()
	if err != nil {
		return false, err
	}
	return e.Due(clock), nil
}

// Advance opens a new window starting at clock when the current one is due.
// Missed windows are not caught up. It returns the epoch that just closed,
// or nil when nothing was due.
func (s *Service) Advance(clock uint64) (*Epoch, error) {
	due, err := s.DueForRebase(clock)
	if err != nil || !due {
		return nil, err
	}
	e, err := s.Get()
	if err != nil {
		return nil, err
	}
	prev := *e
	prev.Distribute = new(big.Int).Set(e.Distribute)

	e.End = clock + e.Length
	e.Number++
	if err := s.set(e); err != nil {
		return nil, err
	}
	return &prev, nil
}

// SetDistribute stores the amount for the next rebase.
func (s *Service) SetDistribute(amount *big.Int) error {
	e, err := s.Get()
	if err != nil {
		return err
	}
	e.Distribute = new(big.Int).Set(amount)
	return s.set(e)
}

// SecondsToNext returns the clock units left in the current window.
func (s *Service) SecondsToNext(clock uint64) (uint64, error) {
	e, err := s.Get()
	if err != nil {
		return 0, err
	}
	if e.End <= clock {
		return 0, nil
	}
	return e.End - clock, nil
}

func (s *Service) set(e *Epoch) error {
	return errors.Wrap(s.epoch.Set(e), "failed to set epoch")
}
