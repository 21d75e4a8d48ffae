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

func newTestJournal(t *testing.T, pageSize, journalPages uint32) (*journal, *nvmsim.Sim) {
	t.Helper()
	// One cache block per page, so a block never reaches past the end
	// of the small simulated devices these tests use.
	blockSize := pageSize
	size := pageSize * (journalPages + 4)
	sim := nvmsim.New(pageSize, size)
	cache := newBlockCache(sim, blockSize, 4)
	journalStart := uint32(0)
	dataStart := journalStart + journalPages*pageSize
	j := newJournal(cache, pageSize, journalStart, dataStart)
	require.NoError(t, j.reset())
	return j, sim
}

func TestJournalResetIsLiveZero(t *testing.T) {
	j, _ := newTestJournal(t, 256, 1)
	head, dataEnd, err := j.recover()
	require.NoError(t, err)
	assert.Equal(t, j.journalStart, head)
	assert.Equal(t, j.dataStart, dataEnd)
}

func TestJournalCommitWithinPage(t *testing.T) {
	j, _ := newTestJournal(t, 256, 1)
	require.NoError(t, j.commit(j.dataStart+256))
	head, dataEnd, err := j.recover()
	require.NoError(t, err)
	assert.Equal(t, j.journalStart+journalEntrySize, head)
	assert.Equal(t, j.dataStart+256, dataEnd)
}

func TestJournalWrapsAtDataStart(t *testing.T) {
	const pageSize = 32
	j, _ := newTestJournal(t, pageSize, 1)
	entriesPerPage := pageSize / journalEntrySize
	// Commit enough times to exhaust the single journal page and wrap.
	for i := 1; i <= entriesPerPage; i++ {
		require.NoError(t, j.commit(j.dataStart))
	}
	head, _, err := j.recover()
	require.NoError(t, err)
	assert.Equal(t, j.journalStart, head, "wrap should land back at journalStart")
}

func TestJournalRecoverPrefersLaterOfTwoLiveEntries(t *testing.T) {
	j, sim := newTestJournal(t, 256, 1)
	require.NoError(t, j.commit(j.dataStart+256))
	snapshot := sim.Snapshot()

	// Simulate a crash between writing the new live entry and
	// invalidating the old one: restore the medium to a state where
	// the old entry (value 0) was never zeroed. A bit-clearing write
	// cannot undo the zeroing, so the snapshot is edited and restored.
	copy(snapshot[j.journalStart:j.journalStart+journalEntrySize], encodeJournalEntry(0))
	sim.Restore(snapshot)
	j.cache.Clear()

	head, dataEnd, err := j.recover()
	require.NoError(t, err)
	assert.Equal(t, j.journalStart+journalEntrySize, head)
	assert.Equal(t, j.dataStart+256, dataEnd)
}
