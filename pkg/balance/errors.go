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

import "fmt"

var (
	// ErrEmptyPackage indicates a package with no cores. This is an
	// invariant violation of the topology build, always fatal.
	ErrEmptyPackage = fmt.Errorf("balance: package with no cores")
	// ErrUtilizationMismatch indicates a utilization vector which does
	// not cover every processor of the topology.
	ErrUtilizationMismatch = fmt.Errorf("balance: utilization vector does not cover topology")
	// ErrInsufficientPackages indicates too few per-package values to
	// compute any imbalance across packages.
	ErrInsufficientPackages = fmt.Errorf("balance: not enough packages to compare")
	// ErrZeroUtilization indicates that every package is at zero
	// utilization, leaving the imbalance score undefined.
	ErrZeroUtilization = fmt.Errorf("balance: all packages at zero utilization")
)
