// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/encountr/enctr/api/utils"
	"github.com/encountr/enctr/enctr"
)

type Epoch struct {
	Length     uint64        `json:"length"`
	Number     uint64        `json:"number"`
	End        uint64        `json:"end"`
	Distribute *utils.Amount `json:"distribute"`
}

type Status struct {
	Epoch              Epoch         `json:"epoch"`
	Index              *utils.Amount `json:"index"`
	SupplyInWarmup     *utils.Amount `json:"supplyInWarmup"`
	WarmupPeriod       uint64        `json:"warmupPeriod"`
	SecondsToNextEpoch uint64        `json:"secondsToNextEpoch"`
	Distributor        enctr.Address `json:"distributor"`
}

type Warmup struct {
	Deposit *utils.Amount `json:"deposit"`
	Gons    *utils.Amount `json:"gons"`
	Expiry  uint64        `json:"expiry"`
	Lock    bool          `json:"lock"`
}

type StakeRequest struct {
	Caller    enctr.Address `json:"caller"`
	Recipient enctr.Address `json:"recipient"`
	Amount    *utils.Amount `json:"amount"`
	Rebasing  bool          `json:"rebasing"`
	Claim     bool          `json:"claim"`
}

type ClaimRequest struct {
	Caller    enctr.Address `json:"caller"`
	Recipient enctr.Address `json:"recipient"`
	Rebasing  bool          `json:"rebasing"`
}

type UnstakeRequest struct {
	Caller    enctr.Address `json:"caller"`
	Recipient enctr.Address `json:"recipient"`
	Amount    *utils.Amount `json:"amount"`
	Trigger   bool          `json:"trigger"`
	Rebasing  bool          `json:"rebasing"`
}

// TransferRequest moves amount from caller to recipient. It is used by wrap and unwrap.
type TransferRequest struct {
	Caller    enctr.Address `json:"caller"`
	Recipient enctr.Address `json:"recipient"`
	Amount    *utils.Amount `json:"amount"`
}

type CallerRequest struct {
	Caller enctr.Address `json:"caller"`
}
