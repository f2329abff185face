// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import (
	"github.com/encountr/enctr/api/utils"
	"github.com/encountr/enctr/enctr"
)

type Adjustment struct {
	Add    bool   `json:"add"`
	Rate   uint64 `json:"rate"`
	Target uint64 `json:"target"`
}

// Recipient is a live reward recipient. NextRewardAt applies its rate to
// the whole ENCTR supply.
type Recipient struct {
	Index        uint64        `json:"index"`
	Recipient    enctr.Address `json:"recipient"`
	Rate         uint64        `json:"rate"`
	NextRewardAt *utils.Amount `json:"nextRewardAt"`
	Adjustment   *Adjustment   `json:"adjustment,omitempty"`
}

type Status struct {
	Bounty     *utils.Amount `json:"bounty"`
	Recipients []Recipient   `json:"recipients"`
}

type AddRecipientRequest struct {
	Caller    enctr.Address `json:"caller"`
	Recipient enctr.Address `json:"recipient"`
	Rate      uint64        `json:"rate"`
}

type RemoveRecipientRequest struct {
	Caller enctr.Address `json:"caller"`
	Index  uint64        `json:"index"`
}

type AdjustmentRequest struct {
	Caller enctr.Address `json:"caller"`
	Index  uint64        `json:"index"`
	Add    bool          `json:"add"`
	Rate   uint64        `json:"rate"`
	Target uint64        `json:"target"`
}

type BountyRequest struct {
	Caller enctr.Address `json:"caller"`
	Amount *utils.Amount `json:"amount"`
}
