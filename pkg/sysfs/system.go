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

package sysfs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	idset "github.com/intel/goresctrl/pkg/utils"

	logger "github.com/sysmetrics/cpu-balance/pkg/log"
	"github.com/sysmetrics/cpu-balance/pkg/topology"
)

var (
	// Parent directory under which host sysfs is mounted (if non-standard location).
	sysRoot = ""
	// Our logger instance.
	log = logger.NewLogger("sysfs")
)

// sysfs devices/cpu subdirectory path
const sysfsCPUPath = "devices/system/cpu"

// System provides CPU topology facts read from sysfs.
type System interface {
	topology.FactSource
	CPUIDs() []idset.ID
	Path() string
}

type system struct {
	logger.Logger            // our logger instance
	path          string     // sysfs mount point
	cpus          []idset.ID // present CPUs, ascending
}

// SetSysRoot sets the sys root directory.
func SetSysRoot(path string) {
	sysRoot = path
}

// DiscoverSystem enumerates the CPUs of the running system.
func DiscoverSystem() (System, error) {
	return DiscoverSystemAt(filepath.Join("/", sysRoot, "sys"))
}

// DiscoverSystemAt enumerates the CPUs of a system from sysfs mounted at path.
func DiscoverSystemAt(path string) (System, error) {
	sys := &system{
		Logger: log,
		path:   path,
	}

	if err := sys.discoverCPUs(); err != nil {
		return nil, err
	}

	return sys, nil
}

func (sys *system) discoverCPUs() error {
	entries, _ := filepath.Glob(filepath.Join(sys.path, sysfsCPUPath, "cpu[0-9]*"))
	if len(entries) == 0 {
		return sysfsError(filepath.Join(sys.path, sysfsCPUPath), "no CPU entries found")
	}

	cpus := make([]idset.ID, 0, len(entries))
	for _, entry := range entries {
		id := getEnumeratedID(entry)
		if id < 0 {
			continue
		}
		cpus = append(cpus, id)
	}

	sort.Slice(cpus, func(i, j int) bool {
		return int(cpus[i]) < int(cpus[j])
	})

	// Utilization samples are index-aligned to processor numbers, so a
	// hole in the CPU enumeration would misalign every later processor.
	for idx, id := range cpus {
		if int(id) != idx {
			return sysfsError(filepath.Join(sys.path, sysfsCPUPath),
				"non-contiguous CPU enumeration: cpu%d at index %d", id, idx)
		}
	}

	sys.cpus = cpus
	sys.Debug("discovered %d CPUs", len(cpus))

	return nil
}

// ProcessorCount returns the number of logical processors in the system.
func (sys *system) ProcessorCount() (int, error) {
	return len(sys.cpus), nil
}

// PackageID reads the physical package id of the given processor.
func (sys *system) PackageID(processor int) (idset.ID, error) {
	val, err := readSysfsEntry(sys.cpuPath(processor), "topology/physical_package_id")
	if err != nil {
		return 0, err
	}
	return idset.ID(val), nil
}

// CoreID reads the core id of the given processor. Core ids are unique
// only within a package.
func (sys *system) CoreID(processor int) (idset.ID, error) {
	val, err := readSysfsEntry(sys.cpuPath(processor), "topology/core_id")
	if err != nil {
		return 0, err
	}
	return idset.ID(val), nil
}

// CPUIDs returns the ids of all CPUs present in the system.
func (sys *system) CPUIDs() []idset.ID {
	ids := make([]idset.ID, len(sys.cpus))
	copy(ids, sys.cpus)
	return ids
}

// Path returns the sysfs mount point the system was discovered from.
func (sys *system) Path() string {
	return sys.path
}

func (sys *system) cpuPath(processor int) string {
	return filepath.Join(sys.path, sysfsCPUPath, "cpu"+strconv.Itoa(processor))
}

// readSysfsEntry reads a single integer valued sysfs entry.
func readSysfsEntry(base, entry string) (int, error) {
	path := filepath.Join(base, entry)

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, sysfsError(path, "%v", err)
	}

	val, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, sysfsError(path, "invalid integer entry %q", strings.TrimSpace(string(data)))
	}

	return val, nil
}

// getEnumeratedID digs out the numeric id from the last component of the
// given path, or -1 if there is none.
func getEnumeratedID(path string) idset.ID {
	name := filepath.Base(path)
	idx := strings.IndexAny(name, "0123456789")
	if idx < 0 {
		return idset.ID(-1)
	}
	id, err := strconv.Atoi(name[idx:])
	if err != nil {
		return idset.ID(-1)
	}
	return idset.ID(id)
}

// sysfsError returns a formatted sysfs-specific error.
func sysfsError(path, format string, args ...interface{}) error {
	return fmt.Errorf("sysfs %s: %s", path, fmt.Sprintf(format, args...))
}
