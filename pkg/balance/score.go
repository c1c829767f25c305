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
)

// Imbalance reduces per-package values to a single score in [0, 1].
//
// The values are rescaled against [0, max(values..., 1.0)] and the score is
// the coefficient of variation (population standard deviation over mean) of
// the rescaled values. A score of 0 means the packages are perfectly
// balanced; larger means more imbalanced among the observed packages
// relative to each other, with no absolute-scale guarantee beyond that.
func Imbalance(values []float64) (float64, error) {
	if len(values) < 2 {
		return 0.0, fmt.Errorf("%w: got %d package value(s)",
			ErrInsufficientPackages, len(values))
	}

	// SMT correction can push a package value above 1.0.
	maxval := 1.0
	for _, value := range values {
		if value > maxval {
			maxval = value
		}
	}

	scaled := make([]float64, len(values))
	mean := 0.0
	for i, value := range values {
		scaled[i] = value / maxval
		mean += scaled[i]
	}
	mean /= float64(len(scaled))

	if mean == 0.0 {
		return 0.0, ErrZeroUtilization
	}

	variance := 0.0
	for _, value := range scaled {
		d := value - mean
		variance += d * d
	}
	variance /= float64(len(scaled))

	score := math.Sqrt(variance) / mean
	if score > 1.0 {
		score = 1.0
	}

	return score, nil
}

// Balance is the complement of Imbalance: 1 for perfectly balanced
// packages, smaller for more imbalanced ones. A presentation transform
// only, with the same degenerate input conditions.
func Balance(values []float64) (float64, error) {
	score, err := Imbalance(values)
	if err != nil {
		return 0.0, err
	}
	return 1.0 - score, nil
}
