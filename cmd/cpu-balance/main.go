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

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	logger "github.com/sysmetrics/cpu-balance/pkg/log"
	"github.com/sysmetrics/cpu-balance/pkg/meter"
	"github.com/sysmetrics/cpu-balance/pkg/metrics"
	"github.com/sysmetrics/cpu-balance/pkg/sampler"
	"github.com/sysmetrics/cpu-balance/pkg/sysfs"
)

var log = logger.NewLogger("cpu-balance")

func main() {
	flag.Parse()
	defer logger.Flush()

	if opt.HostRoot != "" {
		sysfs.SetSysRoot(opt.HostRoot)
	}

	sys, err := sysfs.DiscoverSystem()
	if err != nil {
		log.Fatal("failed to discover system: %v", err)
	}

	m := meter.New(sys, sampler.NewSource(),
		meter.WithInterval(opt.Interval),
		meter.WithReverse(opt.Reverse))

	var exporter *metrics.Exporter
	if opt.MetricsAddr != "" {
		exporter = metrics.NewExporter()
		reg := prometheus.NewRegistry()
		if err := exporter.Register(reg); err != nil {
			log.Fatal("failed to register metrics: %v", err)
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(opt.MetricsAddr, mux); err != nil {
				log.Error("metrics server exited: %v", err)
			}
		}()
		log.Info("serving metrics on %s", opt.MetricsAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	cycles, failures := 0, 0
	for cycle := 0; opt.Count == 0 || cycle < opt.Count; cycle++ {
		if ctx.Err() != nil {
			break
		}

		result, err := m.Measure(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			// A failed cycle yields no score at all: report the
			// error and move on to the next cycle.
			cycles++
			failures++
			log.Error("measurement cycle failed: %v", err)
			if exporter != nil {
				exporter.CycleFailed()
			}
			continue
		}
		cycles++

		fmt.Printf("%.1f%%\n", result.Score()*100.0)
		if exporter != nil {
			exporter.Update(result)
		}
	}

	if cycles > 0 && failures == cycles {
		os.Exit(1)
	}
}
