// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package authority

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/encountr/enctr/api/utils"
	"github.com/encountr/enctr/builtin/authority"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/node"
	"github.com/encountr/enctr/xenv"
)

type Holder struct {
	Address enctr.Address `json:"address"`
	Pending enctr.Address `json:"pending"`
}

type PushRequest struct {
	Caller               enctr.Address `json:"caller"`
	NewHolder            enctr.Address `json:"newHolder"`
	EffectiveImmediately bool          `json:"effectiveImmediately"`
}

type PullRequest struct {
	Caller enctr.Address `json:"caller"`
}

type Authority struct {
	node *node.Node
}

func New(node *node.Node) *Authority {
	return &Authority{node}
}

func (a *Authority) handleGetRoles(w http.ResponseWriter, _ *http.Request) error {
	roles := make(map[string]Holder)
	err := a.node.View(func(env *xenv.Environment) error {
		auth := env.Protocol().Authority
		for _, role := range []authority.Role{authority.Governor, authority.Guardian, authority.Policy, authority.Vault} {
			holder, err := auth.Get(role)
			if err != nil {
				return err
			}
			pending, err := auth.Pending(role)
			if err != nil {
				return err
			}
			roles[role.String()] = Holder{Address: holder, Pending: pending}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, roles)
}

func roleVar(req *http.Request) (authority.Role, error) {
	role, err := authority.ParseRole(mux.Vars(req)["role"])
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "role"))
	}
	return role, nil
}

func (a *Authority) handlePush(w http.ResponseWriter, req *http.Request) error {
	role, err := roleVar(req)
	if err != nil {
		return err
	}
	var body PushRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	out, err := a.node.Exec("push"+role.String(), body.Caller, func(env *xenv.Environment) error {
		return env.Protocol().Authority.Push(env.Caller(), role, body.NewHolder, body.EffectiveImmediately)
	})
	if err != nil {
		return err
	}
	return utils.WriteOutput(w, out, nil)
}

func (a *Authority) handlePull(w http.ResponseWriter, req *http.Request) error {
	role, err := roleVar(req)
	if err != nil {
		return err
	}
	var body PullRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	out, err := a.node.Exec("pull"+role.String(), body.Caller, func(env *xenv.Environment) error {
		return env.Protocol().Authority.Pull(env.Caller(), role)
	})
	if err != nil {
		return err
	}
	return utils.WriteOutput(w, out, nil)
}

func (a *Authority) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /authority").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetRoles))
	sub.Path("/{role}/push").
		Methods(http.MethodPost).
		Name("POST /authority/{role}/push").
		HandlerFunc(utils.WrapHandlerFunc(a.handlePush))
	sub.Path("/{role}/pull").
		Methods(http.MethodPost).
		Name("POST /authority/{role}/pull").
		HandlerFunc(utils.WrapHandlerFunc(a.handlePull))
}
