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

// Package meter runs measurement cycles producing a CPU balance metric.
//
// One cycle builds a fresh topology from the fact source, samples
// per-processor utilization over the configured interval, aggregates the
// samples into per-package values and reduces those to a single score.
// Cycles are strictly sequential and never share state; a failure in any
// stage aborts the whole cycle without a partial result.
package meter

import (
	"context"
	"time"

	"github.com/sysmetrics/cpu-balance/pkg/balance"
	logger "github.com/sysmetrics/cpu-balance/pkg/log"
	"github.com/sysmetrics/cpu-balance/pkg/sampler"
	"github.com/sysmetrics/cpu-balance/pkg/topology"
)

// DefaultInterval is the default utilization sampling interval.
const DefaultInterval = 1 * time.Second

// Meter measures how evenly CPU load is spread over the packages of a
// machine.
type Meter struct {
	logger.Logger
	facts    topology.FactSource
	samples  sampler.Source
	interval time.Duration
	reverse  bool
}

// Result is the outcome of one completed measurement cycle.
type Result struct {
	// Topology is the topology the cycle was measured against.
	Topology *topology.Topology
	// Utilization is the sampled per-processor utilization.
	Utilization []float64
	// PackageValues are the aggregated per-package values, in ascending
	// package id order.
	PackageValues []float64
	// Imbalance is the imbalance score over the package values.
	Imbalance float64

	reverse bool
}

// Option is an option for a Meter.
type Option func(*Meter)

// WithInterval sets the utilization sampling interval.
func WithInterval(interval time.Duration) Option {
	return func(m *Meter) {
		m.interval = interval
	}
}

// WithReverse makes results present balance instead of imbalance.
func WithReverse(reverse bool) Option {
	return func(m *Meter) {
		m.reverse = reverse
	}
}

// New creates a Meter measuring the given fact and utilization sources.
func New(facts topology.FactSource, samples sampler.Source, options ...Option) *Meter {
	m := &Meter{
		Logger:   logger.NewLogger("meter"),
		facts:    facts,
		samples:  samples,
		interval: DefaultInterval,
	}

	for _, o := range options {
		o(m)
	}

	return m
}

// Measure runs one measurement cycle. Every stage must succeed for the
// cycle to produce a Result; the first failing stage aborts the cycle with
// its error.
func (m *Meter) Measure(ctx context.Context) (*Result, error) {
	topo, err := topology.Build(m.facts)
	if err != nil {
		return nil, err
	}

	utilization, err := m.samples.Sample(ctx, m.interval)
	if err != nil {
		return nil, err
	}

	values, err := balance.Aggregate(topo, utilization)
	if err != nil {
		return nil, err
	}

	score, err := balance.Imbalance(values)
	if err != nil {
		return nil, err
	}

	m.Debug("package values %v, imbalance %.3f", values, score)

	return &Result{
		Topology:      topo,
		Utilization:   utilization,
		PackageValues: values,
		Imbalance:     score,
		reverse:       m.reverse,
	}, nil
}

// Score returns the score of the result in its presentation mode:
// imbalance, or its complement if the meter was set up reversed.
func (r *Result) Score() float64 {
	if r.reverse {
		return 1.0 - r.Imbalance
	}
	return r.Imbalance
}
