// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package enctr_test

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encountr/enctr/enctr"
)

func TestParseAddress(t *testing.T) {
	addr, err := enctr.ParseAddress("0x00000000000000000000000000000000000000ff")
	require.NoError(t, err)
	assert.Equal(t, enctr.BytesToAddress([]byte{0xff}), addr)

	_, err = enctr.ParseAddress("00000000000000000000000000000000000000ff")
	assert.NoError(t, err)
	_, err = enctr.ParseAddress("1x00000000000000000000000000000000000000ff")
	assert.EqualError(t, err, "invalid prefix")
	_, err = enctr.ParseAddress("0xff")
	assert.EqualError(t, err, "invalid length")

	assert.True(t, enctr.Address{}.IsZero())
	assert.False(t, addr.IsZero())
}

func TestAddressJSON(t *testing.T) {
	type holder struct {
		Addr enctr.Address `json:"addr"`
	}
	addr := enctr.BytesToAddress([]byte("Staking"))
	data, err := json.Marshal(holder{addr})
	require.NoError(t, err)
	assert.Equal(t, `{"addr":"`+addr.String()+`"}`, string(data))

	var decoded holder
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded.Addr)
}

func TestBlake2b(t *testing.T) {
	assert.Equal(t, enctr.Blake2b([]byte("ab")), enctr.Blake2b([]byte("a"), []byte("b")))
	assert.NotEqual(t, enctr.Blake2b([]byte("a")), enctr.Blake2b([]byte("b")))
}

func TestConvertDecimals(t *testing.T) {
	tests := []struct {
		amount   *big.Int
		from, to uint8
		want     string
	}{
		{enctr.Units(10000, 18), 18, 9, "10000000000000"},
		{big.NewInt(999_999_999), 18, 9, "0"},
		{big.NewInt(1_999_999_999), 18, 9, "1"},
		{big.NewInt(7), 9, 9, "7"},
		{big.NewInt(7), 6, 9, "7000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, enctr.ConvertDecimals(tt.amount, tt.from, tt.to).String())
	}
}

func TestBigMin(t *testing.T) {
	assert.Equal(t, int64(1), enctr.BigMin(big.NewInt(1), big.NewInt(2)).Int64())
	assert.Equal(t, int64(2), enctr.BigMin(big.NewInt(3), big.NewInt(2)).Int64())
}
