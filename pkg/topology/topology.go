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

package topology

import (
	"fmt"
	"sort"

	idset "github.com/intel/goresctrl/pkg/utils"

	logger "github.com/sysmetrics/cpu-balance/pkg/log"
	"github.com/sysmetrics/cpu-balance/pkg/utils/cpuset"
)

// Our logger instance.
var log = logger.NewLogger("topology")

// ErrTopologyUnavailable is returned when a topology fact (package or core
// id) cannot be read for some processor. The build never partially
// succeeds; a single unreadable fact fails the whole build.
var ErrTopologyUnavailable = fmt.Errorf("topology: topology fact unavailable")

// FactSource provides raw topology facts for logical processors. Processors
// are identified by their index in [0, ProcessorCount()). Core ids are
// unique only within a package.
type FactSource interface {
	ProcessorCount() (int, error)
	PackageID(processor int) (idset.ID, error)
	CoreID(processor int) (idset.ID, error)
}

// Topology is the physical CPU topology of a machine: packages containing
// cores containing hardware threads. It is immutable once built.
type Topology struct {
	packages   map[idset.ID]*Package
	processors int
}

// Package is a physical CPU package (socket/die), a collection of cores.
type Package struct {
	id    idset.ID
	cores map[idset.ID]*Core
}

// Core is a physical core, an ordered set of the logical processors
// (SMT siblings) sharing it. Processors appear in discovery order.
type Core struct {
	id         idset.ID
	processors []int
}

// Build constructs a Topology from the facts of the given source,
// iterating processors 0..N-1 and inserting each into its (package, core)
// slot, creating package and core entries on first encounter.
func Build(src FactSource) (*Topology, error) {
	cnt, err := src.ProcessorCount()
	if err != nil {
		return nil, fmt.Errorf("%w: processor count: %v", ErrTopologyUnavailable, err)
	}
	if cnt < 0 {
		return nil, fmt.Errorf("%w: invalid processor count %d", ErrTopologyUnavailable, cnt)
	}

	topo := &Topology{
		packages:   make(map[idset.ID]*Package),
		processors: cnt,
	}

	for processor := 0; processor < cnt; processor++ {
		pkgID, err := src.PackageID(processor)
		if err != nil {
			return nil, fmt.Errorf("%w: package id of processor #%d: %v",
				ErrTopologyUnavailable, processor, err)
		}
		coreID, err := src.CoreID(processor)
		if err != nil {
			return nil, fmt.Errorf("%w: core id of processor #%d: %v",
				ErrTopologyUnavailable, processor, err)
		}

		pkg, ok := topo.packages[pkgID]
		if !ok {
			pkg = &Package{
				id:    pkgID,
				cores: make(map[idset.ID]*Core),
			}
			topo.packages[pkgID] = pkg
		}

		core, ok := pkg.cores[coreID]
		if !ok {
			core = &Core{id: coreID}
			pkg.cores[coreID] = core
		}
		core.processors = append(core.processors, processor)
	}

	if log.DebugEnabled() {
		topo.dump()
	}

	return topo, nil
}

// ProcessorCount returns the number of logical processors in the topology.
func (t *Topology) ProcessorCount() int {
	return t.processors
}

// PackageCount returns the number of packages in the topology.
func (t *Topology) PackageCount() int {
	return len(t.packages)
}

// PackageIDs returns the ids of all packages, in ascending order.
func (t *Topology) PackageIDs() []idset.ID {
	ids := make([]idset.ID, 0, len(t.packages))
	for id := range t.packages {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		return int(ids[i]) < int(ids[j])
	})

	return ids
}

// Package returns the package with the given id, or nil if there is none.
func (t *Topology) Package(id idset.ID) *Package {
	return t.packages[id]
}

// Packages returns all packages, in ascending id order.
func (t *Topology) Packages() []*Package {
	pkgs := make([]*Package, 0, len(t.packages))
	for _, id := range t.PackageIDs() {
		pkgs = append(pkgs, t.packages[id])
	}
	return pkgs
}

// CPUSet returns the set of all processors in the topology.
func (t *Topology) CPUSet() cpuset.CPUSet {
	cset := cpuset.New()
	for _, pkg := range t.packages {
		cset = cset.Union(pkg.CPUSet())
	}
	return cset
}

// ID returns the id of this package.
func (p *Package) ID() idset.ID {
	return p.id
}

// CoreCount returns the number of cores in this package.
func (p *Package) CoreCount() int {
	return len(p.cores)
}

// CoreIDs returns the ids of the cores in this package, in ascending order.
func (p *Package) CoreIDs() []idset.ID {
	ids := make([]idset.ID, 0, len(p.cores))
	for id := range p.cores {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		return int(ids[i]) < int(ids[j])
	})

	return ids
}

// Core returns the core with the given id, or nil if there is none.
func (p *Package) Core(id idset.ID) *Core {
	return p.cores[id]
}

// Cores returns the cores of this package, in ascending id order.
func (p *Package) Cores() []*Core {
	cores := make([]*Core, 0, len(p.cores))
	for _, id := range p.CoreIDs() {
		cores = append(cores, p.cores[id])
	}
	return cores
}

// CPUSet returns the set of all processors in this package.
func (p *Package) CPUSet() cpuset.CPUSet {
	cset := cpuset.New()
	for _, core := range p.cores {
		cset = cset.Union(core.CPUSet())
	}
	return cset
}

// ID returns the id of this core. Core ids are unique only within a package.
func (c *Core) ID() idset.ID {
	return c.id
}

// ThreadCount returns the number of hardware threads sharing this core.
func (c *Core) ThreadCount() int {
	return len(c.processors)
}

// Processors returns the processors of this core, in insertion order.
func (c *Core) Processors() []int {
	processors := make([]int, len(c.processors))
	copy(processors, c.processors)
	return processors
}

// CPUSet returns the set of processors of this core.
func (c *Core) CPUSet() cpuset.CPUSet {
	return cpuset.New(c.processors...)
}

func (t *Topology) dump() {
	log.Debug("topology of %d processors:", t.processors)
	for _, pkg := range t.Packages() {
		log.Debug("package #%d: %s", pkg.id, pkg.CPUSet())
		for _, core := range pkg.Cores() {
			log.Debug("  core #%d threads: %v", core.id, core.processors)
		}
	}
}
