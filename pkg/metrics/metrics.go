// Copyright The CPU Balance Authors. All Rights Reserved.
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

package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	logger "github.com/sysmetrics/cpu-balance/pkg/log"
	"github.com/sysmetrics/cpu-balance/pkg/meter"
)

// Our logger instance.
var log = logger.NewLogger("metrics")

// Namespace is the common prefix of our exported metric names.
const Namespace = "cpu_balance"

// Exporter exports the values of completed measurement cycles as
// prometheus metrics. Failed cycles only bump the failure counter; they
// never update the score or package value gauges with a coerced value.
type Exporter struct {
	score    *prometheus.GaugeVec
	packages *prometheus.GaugeVec
	cycles   *prometheus.CounterVec
}

// NewExporter creates an Exporter.
func NewExporter() *Exporter {
	return &Exporter{
		// a label-less vector: the score is absent, not 0, until the
		// first cycle completes
		score: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "imbalance_score",
				Help:      "Normalized CPU imbalance score across packages (0 = balanced).",
			},
			nil,
		),
		packages: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "package_value",
				Help:      "Aggregated utilization value per CPU package.",
			},
			[]string{"package"},
		),
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "cycles_total",
				Help:      "Measurement cycles by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

// Register registers the metrics of the exporter with the given registerer.
func (e *Exporter) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{e.score, e.packages, e.cycles} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Update exports the values of a completed measurement cycle. The score
// gauge always exports imbalance, regardless of the presentation mode of
// the result.
func (e *Exporter) Update(result *meter.Result) {
	e.score.WithLabelValues().Set(result.Imbalance)

	ids := result.Topology.PackageIDs()
	for i, value := range result.PackageValues {
		e.packages.WithLabelValues(strconv.Itoa(int(ids[i]))).Set(value)
	}

	e.cycles.WithLabelValues("completed").Inc()
	log.Debug("exported cycle: imbalance %.3f over %d packages",
		result.Imbalance, len(result.PackageValues))
}

// CycleFailed records a failed measurement cycle.
func (e *Exporter) CycleFailed() {
	e.cycles.WithLabelValues("failed").Inc()
}
