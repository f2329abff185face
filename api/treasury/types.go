// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package treasury

import (
	"github.com/encountr/enctr/api/utils"
	"github.com/encountr/enctr/builtin/treasury"
	"github.com/encountr/enctr/enctr"
)

type Status struct {
	TotalReserves  *utils.Amount `json:"totalReserves"`
	TotalDebt      *utils.Amount `json:"totalDebt"`
	EnctrDebt      *utils.Amount `json:"enctrDebt"`
	BaseSupply     *utils.Amount `json:"baseSupply"`
	ExcessReserves *utils.Amount `json:"excessReserves"`
	DebtLedger     enctr.Address `json:"debtLedger"`
}

type RegistryEntry struct {
	Address enctr.Address `json:"address"`
	Enabled bool          `json:"enabled"`
}

type Debtor struct {
	Limit       *utils.Amount `json:"limit"`
	DebtBalance *utils.Amount `json:"debtBalance"`
	EnctrDebt   *utils.Amount `json:"enctrDebt"`
}

// TokenRequest moves amount of token. A missing token means ENCTR.
type TokenRequest struct {
	Caller enctr.Address `json:"caller"`
	Token  enctr.Address `json:"token"`
	Amount *utils.Amount `json:"amount"`
	Profit *utils.Amount `json:"profit,omitempty"`
}

type MintRequest struct {
	Caller    enctr.Address `json:"caller"`
	Recipient enctr.Address `json:"recipient"`
	Amount    *utils.Amount `json:"amount"`
}

type PermissionRequest struct {
	Caller     enctr.Address `json:"caller"`
	Kind       treasury.Kind `json:"kind"`
	Address    enctr.Address `json:"address"`
	Calculator enctr.Address `json:"calculator"`
}

type DebtLimitRequest struct {
	Caller  enctr.Address `json:"caller"`
	Address enctr.Address `json:"address"`
	Limit   *utils.Amount `json:"limit"`
}

type CallerRequest struct {
	Caller enctr.Address `json:"caller"`
}
