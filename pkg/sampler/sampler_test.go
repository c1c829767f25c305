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

package sampler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFractions(t *testing.T) {
	type testCase struct {
		name     string
		percents []float64
		result   []float64
	}
	for _, tc := range []*testCase{
		{
			name:     "empty",
			percents: []float64{},
			result:   []float64{},
		},
		{
			name:     "ordinary percentages",
			percents: []float64{0.0, 25.0, 50.0, 100.0},
			result:   []float64{0.0, 0.25, 0.5, 1.0},
		},
		{
			name:     "clamped to unit range",
			percents: []float64{-3.0, 104.2},
			result:   []float64{0.0, 1.0},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := Fractions(tc.percents)
			require.Len(t, got, len(tc.result))
			for i, want := range tc.result {
				require.InDelta(t, want, got[i], 1e-9)
			}
		})
	}
}
