// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/encountr/enctr/api/utils"
	"github.com/encountr/enctr/node"
	"github.com/encountr/enctr/xenv"
)

type Staking struct {
	node *node.Node
}

func New(node *node.Node) *Staking {
	return &Staking{node}
}

func (s *Staking) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	var status Status
	err := s.node.View(func(env *xenv.Environment) error {
		st := env.Protocol().Staking
		ep, err := st.Epoch()
		if err != nil {
			return err
		}
		status.Epoch = Epoch{
			Length:     ep.Length,
			Number:     ep.Number,
			End:        ep.End,
			Distribute: utils.NewAmount(ep.Distribute),
		}
		index, err := st.Index()
		if err != nil {
			return err
		}
		status.Index = utils.NewAmount(index)
		inWarmup, err := st.SupplyInWarmup()
		if err != nil {
			return err
		}
		status.SupplyInWarmup = utils.NewAmount(inWarmup)
		if status.WarmupPeriod, err = st.WarmupPeriod(); err != nil {
			return err
		}
		if status.SecondsToNextEpoch, err = st.SecondsToNextEpoch(env.Clock()); err != nil {
			return err
		}
		status.Distributor, err = st.Distributor()
		return err
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &status)
}

func (s *Staking) handleGetWarmup(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var warmup Warmup
	err = s.node.View(func(env *xenv.Environment) error {
		info, err := env.Protocol().Staking.Warmup(addr)
		if err != nil {
			return err
		}
		warmup = Warmup{
			Deposit: utils.NewAmount(info.Deposit),
			Expiry:  info.Expiry,
			Lock:    info.Lock,
		}
		if info.Gons != nil {
			warmup.Gons = utils.NewAmount(info.Gons.ToBig())
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &warmup)
}

func (s *Staking) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body StakeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	var staked *big.Int
	out, err := s.node.Exec("stake", body.Caller, func(env *xenv.Environment) (err error) {
		staked, err = env.Protocol().Staking.Stake(env.Caller(), body.Recipient, utils.BigOf(body.Amount), body.Rebasing, body.Claim, env.Clock())
		return err
	})
	if err != nil {
		return err
	}
	return utils.WriteOutput(w, out, utils.NewAmount(staked))
}

func (s *Staking) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body ClaimRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	var claimed *big.Int
	out, err := s.node.Exec("claim", body.Caller, func(env *xenv.Environment) (err error) {
		claimed, err = env.Protocol().Staking.Claim(env.Caller(), body.Recipient, body.Rebasing)
		return err
	})
	if err != nil {
		return err
	}
	return utils.WriteOutput(w, out, utils.NewAmount(claimed))
}

func (s *Staking) handleForfeit(w http.ResponseWriter, req *http.Request) error {
	var body CallerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	var returned *big.Int
	out, err := s.node.Exec("forfeit", body.Caller, func(env *xenv.Environment) (err error) {
		returned, err = env.Protocol().Staking.Forfeit(env.Caller())
		return err
	})
	if err != nil {
		return err
	}
	return utils.WriteOutput(w, out, utils.NewAmount(returned))
}

func (s *Staking) handleToggleLock(w http.ResponseWriter, req *http.Request) error {
	var body CallerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	var locked bool
	out, err := s.node.Exec("toggleLock", body.Caller, func(env *xenv.Environment) (err error) {
		locked, err = env.Protocol().Staking.ToggleLock(env.Caller())
		return err
	})
	if err != nil {
		return err
	}
	return utils.WriteOutput(w, out, utils.M{"lock": locked})
}

func (s *Staking) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	var body UnstakeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	var paid *big.Int
	out, err := s.node.Exec("unstake", body.Caller, func(env *xenv.Environment) (err error) {
		paid, err = env.Protocol().Staking.Unstake(env.Caller(), body.Recipient, utils.BigOf(body.Amount), body.Trigger, body.Rebasing, env.Clock())
		return err
	})
	if err != nil {
		return err
	}
	return utils.WriteOutput(w, out, utils.NewAmount(paid))
}

func (s *Staking) handleWrap(w http.ResponseWriter, req *http.Request) error {
	var body TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	var wrapped *big.Int
	out, err := s.node.Exec("wrap", body.Caller, func(env *xenv.Environment) (err error) {
		wrapped, err = env.Protocol().Staking.Wrap(env.Caller(), body.Recipient, utils.BigOf(body.Amount))
		return err
	})
	if err != nil {
		return err
	}
	return utils.WriteOutput(w, out, utils.NewAmount(wrapped))
}

func (s *Staking) handleUnwrap(w http.ResponseWriter, req *http.Request) error {
	var body TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	var unwrapped *big.Int
	out, err := s.node.Exec("unwrap", body.Caller, func(env *xenv.Environment) (err error) {
		unwrapped, err = env.Protocol().Staking.Unwrap(env.Caller(), body.Recipient, utils.BigOf(body.Amount))
		return err
	})
	if err != nil {
		return err
	}
	return utils.WriteOutput(w, out, utils.NewAmount(unwrapped))
}

func (s *Staking) handleRebase(w http.ResponseWriter, req *http.Request) error {
	var body CallerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	var bounty *big.Int
	out, err := s.node.Exec("rebase", body.Caller, func(env *xenv.Environment) (err error) {
		bounty, err = env.Protocol().Staking.Rebase(env.Clock())
		return err
	})
	if err != nil {
		return err
	}
	return utils.WriteOutput(w, out, utils.NewAmount(bounty))
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /staking").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetStatus))
	sub.Path("/warmup/{address}").
		Methods(http.MethodGet).
		Name("GET /staking/warmup/{address}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetWarmup))

	for path, h := range map[string]utils.HandlerFunc{
		"/stake":   s.handleStake,
		"/claim":   s.handleClaim,
		"/forfeit": s.handleForfeit,
		"/lock":    s.handleToggleLock,
		"/unstake": s.handleUnstake,
		"/wrap":    s.handleWrap,
		"/unwrap":  s.handleUnwrap,
		"/rebase":  s.handleRebase,
	} {
		sub.Path(path).
			Methods(http.MethodPost).
			Name("POST /staking" + path).
			HandlerFunc(utils.WrapHandlerFunc(h))
	}
}
