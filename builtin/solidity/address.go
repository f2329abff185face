// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import "github.com/encountr/enctr/enctr"

type Address struct {
	context *Context
	pos     enctr.Bytes32
}

func NewAddress(context *Context, pos enctr.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (enctr.Address, error) {
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return enctr.Address{}, err
	}
	return enctr.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr enctr.Address) {
	a.context.state.SetStorage(a.context.address, a.pos, enctr.BytesToBytes32(addr.Bytes()))
}
