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

package balance

import (
	"fmt"
	"math"

	"github.com/sysmetrics/cpu-balance/pkg/topology"
)

// Aggregate reduces per-processor utilization to one value per package.
//
// The utilization vector is indexed by processor and read-only; each entry
// is the utilization fraction of that processor over the sampling interval.
// Aggregation runs in two eager passes. First every core is reduced to the
// sum of the utilization of its hardware threads, dampened for SMT
// contention. Then every package is reduced to the arithmetic mean of its
// core values. The result has one value per package, in ascending package
// id order; callers must not attach meaning to the ordering beyond that.
func Aggregate(topo *topology.Topology, utilization []float64) ([]float64, error) {
	values := make([]float64, 0, topo.PackageCount())

	for _, pkg := range topo.Packages() {
		value, err := packageValue(pkg, utilization)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}

	return values, nil
}

// packageValue is the arithmetic mean of the core values of a package.
func packageValue(pkg *topology.Package, utilization []float64) (float64, error) {
	cores := pkg.Cores()
	if len(cores) == 0 {
		return 0.0, fmt.Errorf("%w: package #%d", ErrEmptyPackage, pkg.ID())
	}

	sum := 0.0
	for _, core := range cores {
		value, err := coreValue(core, utilization)
		if err != nil {
			return 0.0, err
		}
		sum += value
	}

	return sum / float64(len(cores)), nil
}

// coreValue sums the utilization of the hardware threads of a core. A sum
// above 1.0 means the SMT lanes of the core are contending for shared
// execution resources and the plain sum overstates true demand; such sums
// are compressed by taking the k-th root, k being the thread count of the
// core. Sums of at most 1.0 pass through unchanged, as does any value on a
// single-threaded core.
func coreValue(core *topology.Core, utilization []float64) (float64, error) {
	sum := 0.0
	for _, processor := range core.Processors() {
		if processor < 0 || processor >= len(utilization) {
			return 0.0, fmt.Errorf("%w: processor #%d, vector length %d",
				ErrUtilizationMismatch, processor, len(utilization))
		}
		sum += utilization[processor]
	}

	if sum > 1.0 {
		sum = math.Pow(sum, 1.0/float64(core.ThreadCount()))
	}

	return sum, nil
}
