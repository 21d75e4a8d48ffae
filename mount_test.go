// Copyright 2026 The ubitlog Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package ubitlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ubit/ubitlog/nvm/nvmsim"
)

func newTestMounter(t *testing.T, pageSize, totalPages uint32) (*mounter, *nvmsim.Sim) {
	t.Helper()
	sim := nvmsim.New(pageSize, pageSize*totalPages)
	cache := newBlockCache(sim, 256, 4)
	m := newMounter(sim, cache, 1, '#', "MY_DATA.HTM")
	return m, sim
}

func TestClearOnBlankMediumFormats(t *testing.T) {
	m, sim := newTestMounter(t, 2048, 8)
	res, err := m.mount(sim.PageSize(), sim.FlashStart(), sim.FlashEnd())
	require.NoError(t, err)
	assert.Equal(t, res.layout.DataStart, res.dataEnd)
	assert.False(t, res.full)
	assert.Equal(t, 1, sim.Remounts)
}

func TestMountRecoversExistingFormattedLog(t *testing.T) {
	m, sim := newTestMounter(t, 2048, 8)
	res1, err := m.mount(sim.PageSize(), sim.FlashStart(), sim.FlashEnd())
	require.NoError(t, err)

	// Write some bytes directly to simulate committed rows, then remount.
	row := []byte("a,b\n1,2\n")
	require.NoError(t, m.cache.Write(res1.layout.DataStart, row, len(row)))

	m2 := newMounter(sim, newBlockCache(sim, 256, 4), 1, '#', "MY_DATA.HTM")
	res2, err := m2.mount(sim.PageSize(), sim.FlashStart(), sim.FlashEnd())
	require.NoError(t, err)
	assert.Equal(t, res1.layout.DataStart+uint32(len(row)), res2.dataEnd)
	require.True(t, res2.haveHeading)
	assert.Equal(t, []string{"a", "b"}, res2.headings)
}

func TestIsFullDetectsLatchedSentinel(t *testing.T) {
	m, sim := newTestMounter(t, 2048, 8)
	res, err := m.mount(sim.PageSize(), sim.FlashStart(), sim.FlashEnd())
	require.NoError(t, err)

	// Latch FULL the way dataWriter does: only the marker bytes: the
	// guard byte at logEnd is left at its erased 0xFF, which is what
	// arms detection of the marker.
	require.NoError(t, m.cache.Write(res.layout.LogEnd+1, fullMarker[:], fullMarkerLen))

	full, err := m.isFullLocked(res.layout)
	require.NoError(t, err)
	assert.True(t, full)
}

func TestClearRetiresStaleFullSentinelWithoutErasingTrailingPage(t *testing.T) {
	m, sim := newTestMounter(t, 2048, 8)
	res, err := m.mount(sim.PageSize(), sim.FlashStart(), sim.FlashEnd())
	require.NoError(t, err)
	// Latch FULL the way dataWriter does: only the marker bytes, guard
	// byte at logEnd stays 0xFF.
	require.NoError(t, m.cache.Write(res.layout.LogEnd+1, fullMarker[:], fullMarkerLen))
	full, err := m.isFullLocked(res.layout)
	require.NoError(t, err)
	assert.True(t, full)

	res2, err := m.clear(sim.PageSize(), sim.FlashStart(), sim.FlashEnd(), false)
	require.NoError(t, err)

	full, err = m.isFullLocked(res2.layout)
	require.NoError(t, err)
	assert.False(t, full, "retiring the guard byte must clear the latched FULL state")

	marker := make([]byte, fullMarkerLen)
	require.NoError(t, m.cache.Read(res2.layout.LogEnd+1, marker, fullMarkerLen))
	assert.Equal(t, fullMarker[:], marker, "the stale marker bytes survive because that page was never erased")
}

func TestInvalidateZeroesMetadataViaWritesOnly(t *testing.T) {
	m, sim := newTestMounter(t, 2048, 8)
	res, err := m.mount(sim.PageSize(), sim.FlashStart(), sim.FlashEnd())
	require.NoError(t, err)

	erasesBefore := sim.EraseCount
	require.NoError(t, m.invalidate(res.layout))
	assert.Equal(t, erasesBefore, sim.EraseCount, "invalidate must not erase")

	buf := make([]byte, metadataLen)
	require.NoError(t, m.cache.Read(res.layout.StartAddress, buf, metadataLen))
	for _, b := range buf {
		assert.Equal(t, byte(0), b)
	}
}
