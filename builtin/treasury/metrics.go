// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package treasury

import (
	"math/big"

	"github.com/encountr/enctr/metrics"
)

var (
	metricOps      = metrics.LazyLoadCounterVec("treasury_ops_count", []string{"op"})
	metricAccounts = metrics.LazyLoadGaugeVec("treasury_accounts", []string{"account"})
)

func countOp(op string) {
	metricOps().AddWithLabel(1, map[string]string{"op": op})
}

func setAccount(account string, v *big.Int) {
	if v.IsInt64() {
		metricAccounts().SetWithLabel(v.Int64(), map[string]string{"account": account})
	}
}
