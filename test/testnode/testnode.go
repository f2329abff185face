// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testnode runs a dev network node over an in-memory store.
package testnode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/encountr/enctr/genesis"
	"github.com/encountr/enctr/lvldb"
	"github.com/encountr/enctr/node"
)

// Clock is a manually advanced clock.
type Clock struct {
	Now uint64
}

func (c *Clock) Get() uint64 { return c.Now }

// Advance moves the clock forward by seconds.
func (c *Clock) Advance(seconds uint64) { c.Now += seconds }

// New opens a dev network node, closed with the test.
func New(t testing.TB) (*node.Node, *Clock) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gen := genesis.NewDevnet()
	clock := &Clock{Now: gen.Config().LaunchTime}
	n, err := node.Open(db, gen, clock.Get)
	require.NoError(t, err)
	return n, clock
}

// Admin is the dev account holding every role and the seeded ENCTR.
func Admin() genesis.DevAccount {
	return genesis.DevAccounts()[0]
}
