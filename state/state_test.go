// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/lvldb"
	"github.com/encountr/enctr/state"
)

func M(a ...any) []any {
	return a
}

func newState(t *testing.T) (*state.State, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return state.New(db), db
}

func TestStorage(t *testing.T) {
	st, _ := newState(t)

	addr := enctr.BytesToAddress([]byte("account"))
	key := enctr.BytesToBytes32([]byte("key"))
	value := enctr.BytesToBytes32([]byte("value"))

	assert.Equal(t, M(enctr.Bytes32{}, nil), M(st.GetStorage(addr, key)))

	st.SetStorage(addr, key, value)
	assert.Equal(t, M(value, nil), M(st.GetStorage(addr, key)))

	st.SetStorage(addr, key, enctr.Bytes32{})
	raw, err := st.GetRawStorage(addr, key)
	assert.NoError(t, err)
	assert.Empty(t, raw)
}

func TestEncodeDecodeStorage(t *testing.T) {
	st, _ := newState(t)

	addr := enctr.BytesToAddress([]byte("account"))
	key := enctr.BytesToBytes32([]byte("key"))

	type entry struct {
		A uint64
		B string
	}
	require.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(&entry{1, "x"})
	}))

	var got entry
	require.NoError(t, st.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &got)
	}))
	assert.Equal(t, entry{1, "x"}, got)

	// rlp lists are reported as the hash of the raw value
	raw, _ := st.GetRawStorage(addr, key)
	assert.Equal(t, M(enctr.Blake2b(raw), nil), M(st.GetStorage(addr, key)))
}

func TestCheckpointRevert(t *testing.T) {
	st, _ := newState(t)

	addr := enctr.BytesToAddress([]byte("account"))
	key := enctr.BytesToBytes32([]byte("key"))

	st.SetStorage(addr, key, enctr.BytesToBytes32([]byte{1}))
	st.AddEvent(&enctr.Event{Address: addr, Name: "First"})

	rev := st.NewCheckpoint()
	st.SetStorage(addr, key, enctr.BytesToBytes32([]byte{2}))
	st.AddEvent(&enctr.Event{Address: addr, Name: "Second"})
	assert.Len(t, st.Events(), 2)

	st.RevertTo(rev)
	assert.Equal(t, M(enctr.BytesToBytes32([]byte{1}), nil), M(st.GetStorage(addr, key)))
	events := st.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "First", events[0].Name)
}

func TestCommit(t *testing.T) {
	st, db := newState(t)

	addr := enctr.BytesToAddress([]byte("account"))
	k1 := enctr.BytesToBytes32([]byte("k1"))
	k2 := enctr.BytesToBytes32([]byte("k2"))

	st.SetStorage(addr, k1, enctr.BytesToBytes32([]byte{1}))
	st.SetStorage(addr, k2, enctr.BytesToBytes32([]byte{2}))
	st.AddEvent(&enctr.Event{Address: addr, Name: "Changed"})

	events, err := st.Commit()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Empty(t, st.Events())

	// a fresh state over the same db sees the committed slots
	reopened := state.New(db)
	assert.Equal(t, M(enctr.BytesToBytes32([]byte{1}), nil), M(reopened.GetStorage(addr, k1)))

	// clearing a slot deletes it from the store
	st.SetStorage(addr, k1, enctr.Bytes32{})
	_, err = st.Commit()
	require.NoError(t, err)
	assert.Equal(t, M(enctr.Bytes32{}, nil), M(state.New(db).GetStorage(addr, k1)))
	assert.Equal(t, M(enctr.BytesToBytes32([]byte{2}), nil), M(state.New(db).GetStorage(addr, k2)))
}

func TestDiscard(t *testing.T) {
	st, _ := newState(t)

	addr := enctr.BytesToAddress([]byte("account"))
	key := enctr.BytesToBytes32([]byte("key"))
	st.SetStorage(addr, key, enctr.BytesToBytes32([]byte{1}))
	st.AddEvent(&enctr.Event{Address: addr, Name: "Changed"})

	st.Discard()
	assert.Equal(t, M(enctr.Bytes32{}, nil), M(st.GetStorage(addr, key)))
	assert.Empty(t, st.Events())
}
