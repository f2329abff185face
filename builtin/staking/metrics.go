// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import "github.com/encountr/enctr/metrics"

var (
	metricOps         = metrics.LazyLoadCounterVec("staking_ops_count", []string{"op"})
	metricEpochNumber = metrics.LazyLoadGauge("staking_epoch_number")
	metricIndex       = metrics.LazyLoadGauge("staking_index")
)

func countOp(op string) {
	metricOps().AddWithLabel(1, map[string]string{"op": op})
}
