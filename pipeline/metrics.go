// Copyright 2026 IslandDAO
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type pipelineMetrics struct {
	accountsDecoded   prometheus.Counter
	accountsMalformed prometheus.Counter
	resultsEmitted    prometheus.Counter
}

func (p *Pipeline) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	p.metrics.accountsDecoded = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "islanddao_power_accounts_decoded_total",
			Help: "total accounts successfully decoded",
		},
	)
	p.metrics.accountsMalformed = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "islanddao_power_accounts_malformed_total",
			Help: "total accounts skipped as malformed",
		},
	)
	p.metrics.resultsEmitted = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "islanddao_power_results_emitted_total",
			Help: "total per-wallet power results emitted",
		},
	)
}
