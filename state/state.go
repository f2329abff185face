// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/encountr/enctr/cache"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/kv"
	"github.com/encountr/enctr/stackedmap"
)

const (
	storageBucket = kv.Bucket("s")

	slotCacheSize = 8192
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// State manages contract storage and the events emitted since the last commit.
type State struct {
	store kv.Store
	cache *cache.LRU                       // committed slots
	sm    *stackedmap.StackedMap[any, any] // keeps revisions of uncommitted changes
}

// New create state object over the given kv store.
func New(db kv.Store) *State {
	c, _ := cache.NewLRU(slotCacheSize)
	s := &State{
		store: storageBucket.NewStore(db),
		cache: c,
	}
	s.reset()
	return s
}

func (s *State) reset() {
	s.sm = stackedmap.New[any, any](s.cacheGetter)
	// the base level, so writes outside any checkpoint are accepted
	s.sm.Push()
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key any) (value any, exist bool, err error) {
	switch k := key.(type) {
	case storageKey:
		v, err := s.cache.GetOrLoad(k, func(any) (any, error) {
			metricSlotCount().AddWithLabel(1, map[string]string{"type": "load"})
			data, err := s.store.Get(k.bytes())
			if err != nil {
				if s.store.IsNotFound(err) {
					return rlp.RawValue(nil), nil
				}
				return nil, err
			}
			return rlp.RawValue(data), nil
		})
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	case eventCountKey:
		return 0, true, nil
	case eventKey:
		return nil, false, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr enctr.Address, key enctr.Bytes32) (enctr.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return enctr.Bytes32{}, err
	}
	if len(raw) == 0 {
		return enctr.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return enctr.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return enctr.Blake2b(raw), nil
	}
	return enctr.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr enctr.Address, key, value enctr.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr enctr.Address, key enctr.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr enctr.Address, key enctr.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr enctr.Address, key enctr.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr enctr.Address, key enctr.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// AddEvent appends an event. It is dropped if the enclosing checkpoint is reverted.
func (s *State) AddEvent(ev *enctr.Event) {
	n := s.eventCount()
	s.sm.Put(eventKey(n), ev)
	s.sm.Put(eventCountKey{}, n+1)
}

// Events returns events emitted since the last commit, in emission order.
func (s *State) Events() []*enctr.Event {
	n := s.eventCount()
	events := make([]*enctr.Event, 0, n)
	for i := range n {
		v, _, _ := s.sm.Get(eventKey(i))
		events = append(events, v.(*enctr.Event))
	}
	return events
}

func (s *State) eventCount() int {
	v, _, _ := s.sm.Get(eventCountKey{})
	return v.(int)
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Discard drops every change and event since the last commit.
func (s *State) Discard() {
	s.reset()
}

// Commit writes all changed slots to the kv store atomically and
// returns the events emitted since the last commit.
func (s *State) Commit() ([]*enctr.Event, error) {
	var (
		changes = make(map[storageKey]rlp.RawValue)
		order   []storageKey
	)
	s.sm.Journal(func(k, v any) bool {
		if sk, ok := k.(storageKey); ok {
			if _, seen := changes[sk]; !seen {
				order = append(order, sk)
			}
			changes[sk] = v.(rlp.RawValue)
		}
		return true
	})
	events := s.Events()

	bulk := s.store.Bulk()
	for _, k := range order {
		var err error
		if raw := changes[k]; len(raw) == 0 {
			err = bulk.Delete(k.bytes())
		} else {
			err = bulk.Put(k.bytes(), raw)
		}
		if err != nil {
			return nil, &Error{err}
		}
	}
	if err := bulk.Write(); err != nil {
		return nil, &Error{err}
	}
	for k, raw := range changes {
		s.cache.Add(k, raw)
	}
	s.reset()

	metricCommitCount().Add(1)
	metricSlotCount().AddWithLabel(int64(len(order)), map[string]string{"type": "write"})
	return events, nil
}

type (
	storageKey struct {
		addr enctr.Address
		key  enctr.Bytes32
	}
	eventKey      int
	eventCountKey struct{}
)

func (k storageKey) bytes() []byte {
	return append(append(make([]byte, 0, enctr.AddressLength+32), k.addr[:]...), k.key[:]...)
}
