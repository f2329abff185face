// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/encountr/enctr/api/utils"
	"github.com/encountr/enctr/builtin/reverts"
	"github.com/encountr/enctr/node"
	"github.com/encountr/enctr/xenv"
)

type Distributor struct {
	node *node.Node
}

func New(node *node.Node) *Distributor {
	return &Distributor{node}
}

func (d *Distributor) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	status := Status{Recipients: []Recipient{}}
	err := d.node.View(func(env *xenv.Environment) error {
		dist := env.Protocol().Distributor
		bounty, err := dist.Bounty()
		if err != nil {
			return err
		}
		status.Bounty = utils.NewAmount(bounty)
		// enumerate until the index runs past the end
		for i := uint64(0); ; i++ {
			info, err := dist.Info(i)
			if errors.Is(err, reverts.ErrOutOfBounds) {
				return nil
			}
			if err != nil {
				return err
			}
			if info.Recipient.IsZero() {
				continue
			}
			next, err := dist.NextRewardAt(info.Rate)
			if err != nil {
				return err
			}
			recipient := Recipient{
				Index:        i,
				Recipient:    info.Recipient,
				Rate:         info.Rate,
				NextRewardAt: utils.NewAmount(next),
			}
			adj, err := dist.Adjustment(i)
			if err != nil {
				return err
			}
			if adj.Rate != 0 {
				recipient.Adjustment = &Adjustment{Add: adj.Add, Rate: adj.Rate, Target: adj.Target}
			}
			status.Recipients = append(status.Recipients, recipient)
		}
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &status)
}

func (d *Distributor) handleGetNextReward(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var reward *big.Int
	err = d.node.View(func(env *xenv.Environment) (err error) {
		reward, err = env.Protocol().Distributor.NextRewardFor(addr)
		return err
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"nextReward": utils.NewAmount(reward)})
}

func (d *Distributor) handleAddRecipient(w http.ResponseWriter, req *http.Request) error {
	var body AddRecipientRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	var index uint64
	out, err := d.node.Exec("addRecipient", body.Caller, func(env *xenv.Environment) (err error) {
		index, err = env.Protocol().Distributor.AddRecipient(env.Caller(), body.Recipient, body.Rate)
		return err
	})
	if err != nil {
		return err
	}
	return utils.WriteOutput(w, out, utils.M{"index": index})
}

func (d *Distributor) handleRemoveRecipient(w http.ResponseWriter, req *http.Request) error {
	var body RemoveRecipientRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	out, err := d.node.Exec("removeRecipient", body.Caller, func(env *xenv.Environment) error {
		return env.Protocol().Distributor.RemoveRecipient(env.Caller(), body.Index)
	})
	if err != nil {
		return err
	}
	return utils.WriteOutput(w, out, nil)
}

func (d *Distributor) handleSetAdjustment(w http.ResponseWriter, req *http.Request) error {
	var body AdjustmentRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	out, err := d.node.Exec("setAdjustment", body.Caller, func(env *xenv.Environment) error {
		return env.Protocol().Distributor.SetAdjustment(env.Caller(), body.Index, body.Add, body.Rate, body.Target)
	})
	if err != nil {
		return err
	}
	return utils.WriteOutput(w, out, nil)
}

func (d *Distributor) handleSetBounty(w http.ResponseWriter, req *http.Request) error {
	var body BountyRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	out, err := d.node.Exec("setBounty", body.Caller, func(env *xenv.Environment) error {
		return env.Protocol().Distributor.SetBounty(env.Caller(), utils.BigOf(body.Amount))
	})
	if err != nil {
		return err
	}
	return utils.WriteOutput(w, out, nil)
}

func (d *Distributor) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /distributor").
		HandlerFunc(utils.WrapHandlerFunc(d.handleGetStatus))
	sub.Path("/rewards/{address}").
		Methods(http.MethodGet).
		Name("GET /distributor/rewards/{address}").
		HandlerFunc(utils.WrapHandlerFunc(d.handleGetNextReward))
	sub.Path("/recipients").
		Methods(http.MethodPost).
		Name("POST /distributor/recipients").
		HandlerFunc(utils.WrapHandlerFunc(d.handleAddRecipient))
	sub.Path("/recipients/remove").
		Methods(http.MethodPost).
		Name("POST /distributor/recipients/remove").
		HandlerFunc(utils.WrapHandlerFunc(d.handleRemoveRecipient))
	sub.Path("/adjustments").
		Methods(http.MethodPost).
		Name("POST /distributor/adjustments").
		HandlerFunc(utils.WrapHandlerFunc(d.handleSetAdjustment))
	sub.Path("/bounty").
		Methods(http.MethodPost).
		Name("POST /distributor/bounty").
		HandlerFunc(utils.WrapHandlerFunc(d.handleSetBounty))
}
