// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/runtime"
	"github.com/encountr/enctr/xenv"
)

// Builder helper to build the genesis state.
type Builder struct {
	timestamp uint64
	calls     []call
}

type call struct {
	method string
	caller enctr.Address
	fn     runtime.Call
}

// Timestamp set the clock the genesis calls run at.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// Call add a protocol call.
func (b *Builder) Call(method string, caller enctr.Address, fn runtime.Call) *Builder {
	b.calls = append(b.calls, call{method, caller, fn})
	return b
}

// Build runs every call in order and commits the result. Any revert
// aborts the build.
func (b *Builder) Build(rt *runtime.Runtime) ([]*enctr.Event, error) {
	for _, c := range b.calls {
		out, err := rt.Exec(c.method, &xenv.CallContext{Caller: c.caller, Clock: b.timestamp}, c.fn)
		if err != nil {
			return nil, err
		}
		if out.Reverted != nil {
			rt.State().Discard()
			return nil, errors.WithMessage(out.Reverted, c.method)
		}
	}
	events, err := rt.Commit()
	if err != nil {
		return nil, errors.Wrap(err, "commit genesis")
	}
	return events, nil
}
