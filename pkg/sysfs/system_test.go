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

package sysfs_test

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	idset "github.com/intel/goresctrl/pkg/utils"
	"github.com/stretchr/testify/require"

	"github.com/sysmetrics/cpu-balance/pkg/sysfs"
	"github.com/sysmetrics/cpu-balance/pkg/topology"
)

func discoverSample(t *testing.T, sample string) sysfs.System {
	t.Helper()
	sys, err := sysfs.DiscoverSystemAt(filepath.Join("testdata", sample, "sys"))
	require.NoError(t, err)
	require.NotNil(t, sys)
	return sys
}

func TestDiscoverSample1(t *testing.T) {
	sys := discoverSample(t, "sample1")

	cnt, err := sys.ProcessorCount()
	require.NoError(t, err)
	require.Equal(t, 8, cnt)
	require.Equal(t, []idset.ID{0, 1, 2, 3, 4, 5, 6, 7}, sys.CPUIDs())

	type testCase struct {
		processor int
		pkg       idset.ID
		core      idset.ID
	}
	for _, tc := range []testCase{
		{0, 0, 0}, {1, 0, 0}, {2, 0, 1}, {3, 0, 1},
		{4, 1, 0}, {5, 1, 0}, {6, 1, 1}, {7, 1, 1},
	} {
		pkg, err := sys.PackageID(tc.processor)
		require.NoError(t, err)
		require.Equal(t, tc.pkg, pkg, "package id of cpu%d", tc.processor)

		core, err := sys.CoreID(tc.processor)
		require.NoError(t, err)
		require.Equal(t, tc.core, core, "core id of cpu%d", tc.processor)
	}
}

func TestBuildFromSample(t *testing.T) {
	type testCase struct {
		sample string
		result map[idset.ID]map[idset.ID][]int
	}
	for _, tc := range []*testCase{
		{
			sample: "sample1",
			result: map[idset.ID]map[idset.ID][]int{
				0: {0: {0, 1}, 1: {2, 3}},
				1: {0: {4, 5}, 1: {6, 7}},
			},
		},
		{
			// hyperthread siblings interleaved in cpu numbering
			sample: "sample2",
			result: map[idset.ID]map[idset.ID][]int{
				0: {0: {0, 2}, 1: {1, 3}},
			},
		},
	} {
		t.Run(tc.sample, func(t *testing.T) {
			sys := discoverSample(t, tc.sample)
			topo, err := topology.Build(sys)
			require.NoError(t, err)

			got := map[idset.ID]map[idset.ID][]int{}
			for _, pkg := range topo.Packages() {
				cores := map[idset.ID][]int{}
				for _, core := range pkg.Cores() {
					cores[core.ID()] = core.Processors()
				}
				got[pkg.ID()] = cores
			}

			if diff := cmp.Diff(tc.result, got); diff != "" {
				t.Errorf("unexpected topology (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnreadableTopologyFact(t *testing.T) {
	sys := discoverSample(t, "broken")

	topo, err := topology.Build(sys)
	require.Nil(t, topo)
	require.ErrorIs(t, err, topology.ErrTopologyUnavailable)
}

func TestDiscoverMissingSysfs(t *testing.T) {
	sys, err := sysfs.DiscoverSystemAt(filepath.Join("testdata", "no-such-sample", "sys"))
	require.Error(t, err)
	require.Nil(t, sys)
}
