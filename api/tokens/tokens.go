// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/encountr/enctr/api/utils"
	"github.com/encountr/enctr/builtin"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/node"
	"github.com/encountr/enctr/xenv"
)

// erc20 is what ENCTR, sENCTR, gENCTR and the reserve tokens have in common.
type erc20 interface {
	TotalSupply() (*big.Int, error)
	BalanceOf(addr enctr.Address) (*big.Int, error)
	Allowance(owner, spender enctr.Address) (*big.Int, error)
	Transfer(caller, to enctr.Address, amount *big.Int) error
	TransferFrom(caller, from, to enctr.Address, amount *big.Int) error
	Approve(caller, spender enctr.Address, amount *big.Int) error
}

type Supply struct {
	TotalSupply *utils.Amount `json:"totalSupply"`
}

type Balance struct {
	Balance *utils.Amount `json:"balance"`
}

type TransferRequest struct {
	Caller enctr.Address  `json:"caller"`
	From   *enctr.Address `json:"from,omitempty"`
	To     enctr.Address  `json:"to"`
	Amount *utils.Amount  `json:"amount"`
}

type ApproveRequest struct {
	Caller  enctr.Address `json:"caller"`
	Spender enctr.Address `json:"spender"`
	Amount  *utils.Amount `json:"amount"`
}

type Tokens struct {
	node *node.Node
}

func New(node *node.Node) *Tokens {
	return &Tokens{node}
}

// resolve binds the token named by symbol (ENCTR, sENCTR, gENCTR) or address.
func resolve(p *builtin.Protocol, name string) (erc20, error) {
	switch name {
	case "ENCTR":
		return p.ENCTR, nil
	case "sENCTR":
		return p.SENCTR, nil
	case "gENCTR":
		return p.GENCTR, nil
	}
	addr, err := enctr.ParseAddress(name)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "token"))
	}
	if addr == builtin.SENCTRAddr {
		return p.SENCTR, nil
	}
	if t := p.Token(addr); t != nil {
		return t, nil
	}
	return nil, utils.NotFound(errors.Errorf("no token at %v", addr))
}

func (t *Tokens) view(req *http.Request, fn func(tk erc20) error) error {
	name := mux.Vars(req)["token"]
	return t.node.View(func(env *xenv.Environment) error {
		tk, err := resolve(env.Protocol(), name)
		if err != nil {
			return err
		}
		return fn(tk)
	})
}

func (t *Tokens) handleGetSupply(w http.ResponseWriter, req *http.Request) error {
	var supply *big.Int
	if err := t.view(req, func(tk erc20) (err error) {
		supply, err = tk.TotalSupply()
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &Supply{utils.NewAmount(supply)})
}

func (t *Tokens) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var bal *big.Int
	if err := t.view(req, func(tk erc20) (err error) {
		bal, err = tk.BalanceOf(addr)
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &Balance{utils.NewAmount(bal)})
}

func (t *Tokens) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	owner, err := utils.AddressVar(req, "owner")
	if err != nil {
		return err
	}
	spender, err := utils.AddressVar(req, "spender")
	if err != nil {
		return err
	}
	var allowance *big.Int
	if err := t.view(req, func(tk erc20) (err error) {
		allowance, err = tk.Allowance(owner, spender)
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"allowance": utils.NewAmount(allowance)})
}

func (t *Tokens) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	var body TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	name := mux.Vars(req)["token"]
	out, err := t.node.Exec("transfer", body.Caller, func(env *xenv.Environment) error {
		tk, err := resolve(env.Protocol(), name)
		if err != nil {
			return err
		}
		if body.From != nil {
			return tk.TransferFrom(env.Caller(), *body.From, body.To, utils.BigOf(body.Amount))
		}
		return tk.Transfer(env.Caller(), body.To, utils.BigOf(body.Amount))
	})
	if err != nil {
		return err
	}
	return utils.WriteOutput(w, out, nil)
}

func (t *Tokens) handleApprove(w http.ResponseWriter, req *http.Request) error {
	var body ApproveRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	name := mux.Vars(req)["token"]
	out, err := t.node.Exec("approve", body.Caller, func(env *xenv.Environment) error {
		tk, err := resolve(env.Protocol(), name)
		if err != nil {
			return err
		}
		return tk.Approve(env.Caller(), body.Spender, utils.BigOf(body.Amount))
	})
	if err != nil {
		return err
	}
	return utils.WriteOutput(w, out, nil)
}

func (t *Tokens) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{token}").
		Methods(http.MethodGet).
		Name("GET /tokens/{token}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetSupply))
	sub.Path("/{token}/balances/{address}").
		Methods(http.MethodGet).
		Name("GET /tokens/{token}/balances/{address}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetBalance))
	sub.Path("/{token}/allowances/{owner}/{spender}").
		Methods(http.MethodGet).
		Name("GET /tokens/{token}/allowances/{owner}/{spender}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetAllowance))
	sub.Path("/{token}/transfer").
		Methods(http.MethodPost).
		Name("POST /tokens/{token}/transfer").
		HandlerFunc(utils.WrapHandlerFunc(t.handleTransfer))
	sub.Path("/{token}/approve").
		Methods(http.MethodPost).
		Name("POST /tokens/{token}/approve").
		HandlerFunc(utils.WrapHandlerFunc(t.handleApprove))
}
