// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/pkg/errors"

	"github.com/encountr/enctr/builtin"
	"github.com/encountr/enctr/builtin/reverts"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/log"
	"github.com/encountr/enctr/metrics"
	"github.com/encountr/enctr/state"
	"github.com/encountr/enctr/xenv"
)

var (
	logger = log.WithContext("pkg", "runtime")

	metricCalls   = metrics.LazyLoadCounterVec("runtime_calls_count", []string{"method", "result"})
	metricCommits = metrics.LazyLoadCounter("runtime_commits_count")
)

// Call is a protocol call.
type Call func(env *xenv.Environment) error

// Output is the result of an executed call.
type Output struct {
	Events   []*enctr.Event
	Reverted error // the protocol rejection, nil on success
}

// Runtime executes calls against the protocol bound to one state.
type Runtime struct {
	state    *state.State
	protocol *builtin.Protocol
}

// New create a Runtime object.
func New(state *state.State) *Runtime {
	return &Runtime{
		state:    state,
		protocol: builtin.New(state),
	}
}

func (rt *Runtime) State() *state.State          { return rt.state }
func (rt *Runtime) Protocol() *builtin.Protocol { return rt.protocol }

// Exec runs call as one atomic state transition. On any error every write and
// event of the call is rolled back. A protocol rejection is reported in
// Output.Reverted, other errors are returned.
func (rt *Runtime) Exec(method string, ctx *xenv.CallContext, call Call) (*Output, error) {
	start := len(rt.state.Events())
	checkpoint := rt.state.NewCheckpoint()

	if err := rt.run(ctx, call); err != nil {
		rt.state.RevertTo(checkpoint)
		if reverts.IsRevertErr(err) {
			metricCalls().AddWithLabel(1, map[string]string{"method": method, "result": "reverted"})
			logger.Debug("call reverted", "method", method, "caller", ctx.Caller, "err", err)
			return &Output{Reverted: err}, nil
		}
		metricCalls().AddWithLabel(1, map[string]string{"method": method, "result": "error"})
		return nil, errors.WithMessage(err, method)
	}

	metricCalls().AddWithLabel(1, map[string]string{"method": method, "result": "ok"})
	events := rt.state.Events()
	return &Output{Events: events[start:]}, nil
}

// run turns a panic in call into an error so the caller can roll back.
func (rt *Runtime) run(ctx *xenv.CallContext, call Call) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()
	return call(xenv.New(rt.protocol, ctx))
}

// View runs call and always rolls it back.
func (rt *Runtime) View(ctx *xenv.CallContext, call Call) error {
	checkpoint := rt.state.NewCheckpoint()
	defer rt.state.RevertTo(checkpoint)
	return rt.run(ctx, call)
}

// Commit persists every executed call and returns their events.
func (rt *Runtime) Commit() ([]*enctr.Event, error) {
	events, err := rt.state.Commit()
	if err != nil {
		return nil, errors.Wrap(err, "commit state")
	}
	metricCommits().Add(1)
	return events, nil
}
