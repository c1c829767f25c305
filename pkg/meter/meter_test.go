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

package meter_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	idset "github.com/intel/goresctrl/pkg/utils"
	"github.com/stretchr/testify/require"

	"github.com/sysmetrics/cpu-balance/pkg/balance"
	"github.com/sysmetrics/cpu-balance/pkg/meter"
	"github.com/sysmetrics/cpu-balance/pkg/topology"
)

// fakeFacts provides per-processor (package, core) facts from a slice.
type fakeFacts [][2]idset.ID

func (f fakeFacts) ProcessorCount() (int, error) {
	return len(f), nil
}

func (f fakeFacts) PackageID(processor int) (idset.ID, error) {
	return f[processor][0], nil
}

func (f fakeFacts) CoreID(processor int) (idset.ID, error) {
	return f[processor][1], nil
}

// fakeSamples replays canned utilization vectors, one per cycle.
type fakeSamples struct {
	vectors [][]float64
	err     error
	cycle   int
}

func (f *fakeSamples) Sample(_ context.Context, _ time.Duration) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	vector := f.vectors[f.cycle%len(f.vectors)]
	f.cycle++
	return vector, nil
}

// 2 packages, each 2 cores, each core 2 threads.
var testFacts = fakeFacts{
	{0, 0}, {0, 0}, {0, 1}, {0, 1},
	{1, 0}, {1, 0}, {1, 1}, {1, 1},
}

func TestMeasureBalanced(t *testing.T) {
	samples := &fakeSamples{
		vectors: [][]float64{{0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25}},
	}
	m := meter.New(testFacts, samples)

	result, err := m.Measure(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Len(t, result.PackageValues, 2)
	require.InDelta(t, 0.5, result.PackageValues[0], 1e-9)
	require.InDelta(t, 0.5, result.PackageValues[1], 1e-9)
	require.InDelta(t, 0.0, result.Imbalance, 1e-9)
	require.InDelta(t, 0.0, result.Score(), 1e-9)
}

func TestMeasureImbalanced(t *testing.T) {
	samples := &fakeSamples{
		vectors: [][]float64{{1.0, 1.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0}},
	}
	m := meter.New(testFacts, samples)

	result, err := m.Measure(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 1.0, result.Imbalance, 1e-9)
}

func TestMeasureReverse(t *testing.T) {
	samples := &fakeSamples{
		vectors: [][]float64{{0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25}},
	}
	m := meter.New(testFacts, samples, meter.WithReverse(true))

	result, err := m.Measure(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 0.0, result.Imbalance, 1e-9)
	require.InDelta(t, 1.0, result.Score(), 1e-9)
}

func TestMeasureFailures(t *testing.T) {
	type testCase struct {
		name    string
		facts   fakeFacts
		samples *fakeSamples
		err     error
	}
	for _, tc := range []*testCase{
		{
			name:    "sampling failure aborts the cycle",
			facts:   testFacts,
			samples: &fakeSamples{err: fmt.Errorf("sampling failed")},
			err:     nil, // no sentinel, just a failed cycle
		},
		{
			name:  "short utilization vector",
			facts: testFacts,
			samples: &fakeSamples{
				vectors: [][]float64{{0.25, 0.25}},
			},
			err: balance.ErrUtilizationMismatch,
		},
		{
			name:  "single package system",
			facts: fakeFacts{{0, 0}, {0, 1}},
			samples: &fakeSamples{
				vectors: [][]float64{{0.5, 0.5}},
			},
			err: balance.ErrInsufficientPackages,
		},
		{
			name:  "fully idle system",
			facts: testFacts,
			samples: &fakeSamples{
				vectors: [][]float64{{0, 0, 0, 0, 0, 0, 0, 0}},
			},
			err: balance.ErrZeroUtilization,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m := meter.New(tc.facts, tc.samples)
			result, err := m.Measure(context.Background())
			require.Nil(t, result)
			require.Error(t, err)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
			}
		})
	}
}

// Cycles share no state: each one rebuilds topology and produces a fresh
// result.
func TestSequentialCycles(t *testing.T) {
	samples := &fakeSamples{
		vectors: [][]float64{
			{0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25},
			{1.0, 1.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0},
		},
	}
	m := meter.New(testFacts, samples)

	first, err := m.Measure(context.Background())
	require.NoError(t, err)
	second, err := m.Measure(context.Background())
	require.NoError(t, err)

	require.NotSame(t, first.Topology, second.Topology)
	require.InDelta(t, 0.0, first.Imbalance, 1e-9)
	require.InDelta(t, 1.0, second.Imbalance, 1e-9)
}

var _ topology.FactSource = fakeFacts{}
