// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package treasury

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/encountr/enctr/api/utils"
	"github.com/encountr/enctr/builtin/treasury"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/node"
	"github.com/encountr/enctr/xenv"
)

type Treasury struct {
	node *node.Node
}

func New(node *node.Node) *Treasury {
	return &Treasury{node}
}

func (t *Treasury) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	var status Status
	err := t.node.View(func(env *xenv.Environment) error {
		tr := env.Protocol().Treasury
		for _, v := range []struct {
			get func() (*big.Int, error)
			out **utils.Amount
		}{
			{tr.TotalReserves, &status.TotalReserves},
			{tr.TotalDebt, &status.TotalDebt},
			{tr.EnctrDebt, &status.EnctrDebt},
			{tr.BaseSupply, &status.BaseSupply},
			{tr.ExcessReserves, &status.ExcessReserves},
		} {
			amount, err := v.get()
			if err != nil {
				return err
			}
			*v.out = utils.NewAmount(amount)
		}
		var err error
		status.DebtLedger, err = tr.DebtLedger()
		return err
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &status)
}

func (t *Treasury) handleGetRegistry(w http.ResponseWriter, req *http.Request) error {
	kind, err := treasury.ParseKind(mux.Vars(req)["kind"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "kind"))
	}
	entries := []RegistryEntry{}
	err = t.node.View(func(env *xenv.Environment) error {
		tr := env.Protocol().Treasury
		registered, err := tr.Registry(kind)
		if err != nil {
			return err
		}
		for _, addr := range registered {
			enabled, err := tr.Permission(kind, addr)
			if err != nil {
				return err
			}
			entries = append(entries, RegistryEntry{Address: addr, Enabled: enabled})
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, entries)
}

func (t *Treasury) handleGetDebtor(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	var debtor Debtor
	err = t.node.View(func(env *xenv.Environment) error {
		p := env.Protocol()
		limit, err := p.Treasury.DebtLimit(addr)
		if err != nil {
			return err
		}
		debt, err := p.SENCTR.DebtBalance(addr)
		if err != nil {
			return err
		}
		enctrDebt, err := p.Treasury.EnctrDebtOf(addr)
		if err != nil {
			return err
		}
		debtor = Debtor{Limit: utils.NewAmount(limit), DebtBalance: utils.NewAmount(debt), EnctrDebt: utils.NewAmount(enctrDebt)}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &debtor)
}

// exec runs call on behalf of caller and responds its result.
func (t *Treasury) exec(w http.ResponseWriter, method string, caller enctr.Address, call func(env *xenv.Environment) (any, error)) error {
	var result any
	out, err := t.node.Exec(method, caller, func(env *xenv.Environment) (err error) {
		result, err = call(env)
		return err
	})
	if err != nil {
		return err
	}
	return utils.WriteOutput(w, out, result)
}

func (t *Treasury) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	var body TokenRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	return t.exec(w, "deposit", body.Caller, func(env *xenv.Environment) (any, error) {
		minted, err := env.Protocol().Treasury.Deposit(env.Caller(), utils.BigOf(body.Amount), body.Token, utils.BigOf(body.Profit))
		return utils.NewAmount(minted), err
	})
}

func (t *Treasury) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body TokenRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	return t.exec(w, "withdraw", body.Caller, func(env *xenv.Environment) (any, error) {
		return nil, env.Protocol().Treasury.Withdraw(env.Caller(), utils.BigOf(body.Amount), body.Token)
	})
}

func (t *Treasury) handleManage(w http.ResponseWriter, req *http.Request) error {
	var body TokenRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	return t.exec(w, "manage", body.Caller, func(env *xenv.Environment) (any, error) {
		return nil, env.Protocol().Treasury.Manage(env.Caller(), body.Token, utils.BigOf(body.Amount))
	})
}

func (t *Treasury) handleMint(w http.ResponseWriter, req *http.Request) error {
	var body MintRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	return t.exec(w, "mint", body.Caller, func(env *xenv.Environment) (any, error) {
		return nil, env.Protocol().Treasury.Mint(env.Caller(), body.Recipient, utils.BigOf(body.Amount))
	})
}

func (t *Treasury) handleIncurDebt(w http.ResponseWriter, req *http.Request) error {
	var body TokenRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	return t.exec(w, "incurDebt", body.Caller, func(env *xenv.Environment) (any, error) {
		tr := env.Protocol().Treasury
		if body.Token.IsZero() {
			return nil, tr.IncurDebtInENCTR(env.Caller(), utils.BigOf(body.Amount))
		}
		return nil, tr.IncurDebt(env.Caller(), utils.BigOf(body.Amount), body.Token)
	})
}

func (t *Treasury) handleRepayDebt(w http.ResponseWriter, req *http.Request) error {
	var body TokenRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	return t.exec(w, "repayDebt", body.Caller, func(env *xenv.Environment) (any, error) {
		tr := env.Protocol().Treasury
		if body.Token.IsZero() {
			return nil, tr.RepayDebtWithENCTR(env.Caller(), utils.BigOf(body.Amount))
		}
		return nil, tr.RepayDebtWithReserve(env.Caller(), utils.BigOf(body.Amount), body.Token)
	})
}

func (t *Treasury) handleEnable(w http.ResponseWriter, req *http.Request) error {
	var body PermissionRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	return t.exec(w, "enable", body.Caller, func(env *xenv.Environment) (any, error) {
		return nil, env.Protocol().Treasury.Enable(env.Caller(), body.Kind, body.Address, body.Calculator)
	})
}

func (t *Treasury) handleDisable(w http.ResponseWriter, req *http.Request) error {
	var body PermissionRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	return t.exec(w, "disable", body.Caller, func(env *xenv.Environment) (any, error) {
		return nil, env.Protocol().Treasury.Disable(env.Caller(), body.Kind, body.Address)
	})
}

func (t *Treasury) handleSetDebtLimit(w http.ResponseWriter, req *http.Request) error {
	var body DebtLimitRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	return t.exec(w, "setDebtLimit", body.Caller, func(env *xenv.Environment) (any, error) {
		return nil, env.Protocol().Treasury.SetDebtLimit(env.Caller(), body.Address, utils.BigOf(body.Limit))
	})
}

func (t *Treasury) handleAudit(w http.ResponseWriter, req *http.Request) error {
	var body CallerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	return t.exec(w, "auditReserves", body.Caller, func(env *xenv.Environment) (any, error) {
		reserves, err := env.Protocol().Treasury.AuditReserves(env.Caller())
		return utils.NewAmount(reserves), err
	})
}

func (t *Treasury) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /treasury").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetStatus))
	sub.Path("/registry/{kind}").
		Methods(http.MethodGet).
		Name("GET /treasury/registry/{kind}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetRegistry))
	sub.Path("/debtors/{address}").
		Methods(http.MethodGet).
		Name("GET /treasury/debtors/{address}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetDebtor))

	for path, h := range map[string]utils.HandlerFunc{
		"/deposit":    t.handleDeposit,
		"/withdraw":   t.handleWithdraw,
		"/manage":     t.handleManage,
		"/mint":       t.handleMint,
		"/incur-debt": t.handleIncurDebt,
		"/repay-debt": t.handleRepayDebt,
		"/enable":     t.handleEnable,
		"/disable":    t.handleDisable,
		"/debt-limit": t.handleSetDebtLimit,
		"/audit":      t.handleAudit,
	} {
		sub.Path(path).
			Methods(http.MethodPost).
			Name("POST /treasury" + path).
			HandlerFunc(utils.WrapHandlerFunc(h))
	}
}
