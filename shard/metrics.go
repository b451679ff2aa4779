// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package shard

import "github.com/openton/tonstate/metrics"

var metricProofPreparedCount = metrics.LazyLoadCounter("account_proof_prepared_count")
