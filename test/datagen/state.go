// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/encountr/enctr/lvldb"
	"github.com/encountr/enctr/state"
)

// NewState returns a state over a fresh in-memory level db, closed with the test.
func NewState(t testing.TB) *state.State {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return state.New(db)
}
