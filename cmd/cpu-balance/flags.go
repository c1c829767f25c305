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
	"flag"
	"time"

	logger "github.com/sysmetrics/cpu-balance/pkg/log"
)

// Options captures our command line parameters.
type options struct {
	HostRoot    string
	Interval    time.Duration
	Count       int
	Reverse     bool
	MetricsAddr string
}

var opt = options{}

// Register us for command line option processing.
func init() {
	flag.StringVar(&opt.HostRoot, "host-root", "",
		"Directory prefix under which the host's sysfs is mounted.")
	flag.DurationVar(&opt.Interval, "interval", 1*time.Second,
		"Utilization sampling interval per measurement cycle.")
	flag.IntVar(&opt.Count, "count", 1,
		"Number of measurement cycles to run, 0 to run until interrupted.")
	flag.BoolVar(&opt.Reverse, "reverse", false,
		"Report balance (1 - score) instead of imbalance.")
	flag.StringVar(&opt.MetricsAddr, "metrics-addr", "",
		"Address to serve prometheus metrics on, empty to disable.")

	logger.InitFlags(nil)
}
