// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/encountr/enctr/enctr"
)

type Key interface {
	Bytes() []byte
}

// Index is a Key for list-like mappings.
type Index uint64

func (i Index) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(i))
}

// Mapping is a key/value storage abstraction for built-in contracts, similar to the mapping in Solidity.
// Values are rlp encoded; a missing key reads as the zero value (a fresh pointer for pointer types).
// AddressPair keys a mapping by two addresses, like owner and spender.
type AddressPair [2]enctr.Address

func (p AddressPair) Bytes() []byte {
	return append(p[0].Bytes(), p[1].Bytes()...)
}

type Mapping[K Key, V any] struct {
	context *Context
	basePos enctr.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos enctr.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) enctr.Bytes32 {
	return enctr.Blake2b(key.Bytes(), m.basePos.Bytes())
}

func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), decodeInto(&value))
	return
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Delete clears the value stored under key.
func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}

func decodeInto[V any](value *V) func(raw []byte) error {
	return func(raw []byte) error {
		if reflect.ValueOf(*value).Kind() == reflect.Ptr {
			*value = reflect.New(reflect.TypeOf(*value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, value)
	}
}
