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
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"

	logger "github.com/sysmetrics/cpu-balance/pkg/log"
)

// Our logger instance.
var log = logger.NewLogger("sampler")

// Source samples per-processor utilization over an interval. The result
// has one fraction in [0, 1] per logical processor, index-aligned to
// processor numbers. Sampling blocks for up to the given interval.
type Source interface {
	Sample(ctx context.Context, interval time.Duration) ([]float64, error)
}

type source struct{}

// NewSource returns a Source sampling the utilization of the host.
func NewSource() Source {
	return source{}
}

func (source) Sample(ctx context.Context, interval time.Duration) ([]float64, error) {
	percents, err := cpu.PercentWithContext(ctx, interval, true)
	if err != nil {
		return nil, fmt.Errorf("sampler: failed to sample per-CPU utilization: %w", err)
	}

	utilization := Fractions(percents)
	log.Debug("sampled %d processors over %s", len(utilization), interval)

	return utilization, nil
}

// Fractions converts percentages to fractions clamped to [0, 1].
func Fractions(percents []float64) []float64 {
	utilization := make([]float64, len(percents))
	for i, pct := range percents {
		f := pct / 100.0
		switch {
		case f < 0.0:
			f = 0.0
		case f > 1.0:
			f = 1.0
		}
		utilization[i] = f
	}
	return utilization
}
