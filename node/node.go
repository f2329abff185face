// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node runs the protocol over a persistent store. Calls are
// serialized and every successful call is committed on its own.
package node

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/genesis"
	"github.com/encountr/enctr/kv"
	"github.com/encountr/enctr/log"
	"github.com/encountr/enctr/metrics"
	"github.com/encountr/enctr/runtime"
	"github.com/encountr/enctr/state"
	"github.com/encountr/enctr/xenv"
)

const (
	metaBucket = kv.Bucket("m")

	maxEvents = 1024
)

var (
	logger = log.WithContext("pkg", "node")

	genesisIDKey = []byte("genesis-id")

	metricEvents = metrics.LazyLoadCounter("node_events_count")
)

// Clock returns the current time in seconds.
type Clock func() uint64

// SystemClock is the wall clock.
func SystemClock() uint64 {
	return uint64(time.Now().Unix())
}

// Event is a committed event with its position in the node's log.
type Event struct {
	Seq   uint64 `json:"seq"`
	Clock uint64 `json:"clock"`
	*enctr.Event
}

// Node is the abstraction of local node.
type Node struct {
	mu      sync.Mutex
	rt      *runtime.Runtime
	genesis *genesis.Genesis
	clock   Clock

	events  []*Event
	nextSeq uint64
}

// Open binds a node to db. A fresh db is initialized from gen, otherwise
// the genesis it was initialized with must match.
func Open(db kv.Store, gen *genesis.Genesis, clock Clock) (*Node, error) {
	meta := metaBucket.NewStore(db)
	rt := runtime.New(state.New(db))

	stored, err := meta.Get(genesisIDKey)
	switch {
	case err == nil:
		if id := gen.ID(); !bytes.Equal(stored, id[:]) {
			return nil, errors.Errorf("genesis mismatch: stored %v, configured %v", enctr.BytesToBytes32(stored), id)
		}
		logger.Info("opened existing state", "genesis", gen.Name())
	case meta.IsNotFound(err):
		if _, err := gen.Build(rt); err != nil {
			return nil, errors.Wrap(err, "build genesis")
		}
		id := gen.ID()
		if err := meta.Put(genesisIDKey, id[:]); err != nil {
			return nil, errors.Wrap(err, "store genesis id")
		}
		logger.Info("initialized genesis", "name", gen.Name(), "id", id)
	default:
		return nil, errors.Wrap(err, "read genesis id")
	}

	return &Node{
		rt:      rt,
		genesis: gen,
		clock:   clock,
	}, nil
}

// Genesis returns the genesis the node runs.
func (n *Node) Genesis() *genesis.Genesis {
	return n.genesis
}

// Clock returns the node time.
func (n *Node) Clock() uint64 {
	return n.clock()
}

// Exec executes call on behalf of caller and commits it. A revert leaves
// the state untouched and is reported in the output.
func (n *Node) Exec(method string, caller enctr.Address, call runtime.Call) (*runtime.Output, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	clock := n.clock()
	out, err := n.rt.Exec(method, &xenv.CallContext{Caller: caller, Clock: clock}, call)
	if err != nil {
		n.rt.State().Discard()
		return nil, err
	}
	if out.Reverted != nil {
		return out, nil
	}
	if _, err := n.rt.Commit(); err != nil {
		n.rt.State().Discard()
		return nil, err
	}
	n.record(clock, out.Events)
	return out, nil
}

// View runs a read-only call. Writes made by call are dropped.
func (n *Node) View(call runtime.Call) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.rt.View(&xenv.CallContext{Clock: n.clock()}, call)
}

// Events returns up to limit events with a sequence number of at least from.
func (n *Node) Events(from uint64, limit int) []*Event {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []*Event
	for _, ev := range n.events {
		if ev.Seq < from {
			continue
		}
		if len(out) >= limit {
			break
		}
		out = append(out, ev)
	}
	return out
}

func (n *Node) record(clock uint64, events []*enctr.Event) {
	for _, ev := range events {
		n.events = append(n.events, &Event{Seq: n.nextSeq, Clock: clock, Event: ev})
		n.nextSeq++
	}
	if over := len(n.events) - maxEvents; over > 0 {
		n.events = append(n.events[:0:0], n.events[over:]...)
	}
	metricEvents().Add(int64(len(events)))
}

// RunKeeper triggers the staking rebase whenever an epoch is due, until
// ctx is canceled.
func (n *Node) RunKeeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := n.TriggerRebase(); err != nil {
				return err
			}
		}
	}
}

// TriggerRebase rebases once if the current epoch is due.
func (n *Node) TriggerRebase() error {
	due := false
	if err := n.View(func(env *xenv.Environment) error {
		ep, err := env.Protocol().Staking.Epoch()
		if err != nil {
			return err
		}
		due = ep.Due(env.Clock())
		return nil
	}); err != nil {
		return err
	}
	if !due {
		return nil
	}

	out, err := n.Exec("rebase", enctr.Address{}, func(env *xenv.Environment) error {
		_, err := env.Protocol().Staking.Rebase(env.Clock())
		return err
	})
	if err != nil {
		return err
	}
	if out.Reverted != nil {
		logger.Warn("keeper rebase reverted", "err", out.Reverted)
	}
	return nil
}
