// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import "github.com/openton/tonstate/metrics"

var (
	metricAccountDecodedCount = metrics.LazyLoadCounterVec("account_decoded_count", []string{"format"})
	metricFootprintWalkCount  = metrics.LazyLoadCounter("storage_footprint_walk_count")
)
