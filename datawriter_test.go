// Copyright 2026 The ubitlog Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package ubitlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uerrors "github.com/ubit/ubitlog/errors"
	"github.com/ubit/ubitlog/nvm/nvmsim"
)

func newTestDataWriter(t *testing.T, pageSize uint32, dataPages uint32) (*dataWriter, *journal, *nvmsim.Sim) {
	t.Helper()
	const blockSize = 16
	const journalPages = 1
	size := pageSize * (journalPages + dataPages + 2)
	sim := nvmsim.New(pageSize, size)
	cache := newBlockCache(sim, blockSize, 8)

	journalStart := uint32(0)
	dataStart := journalStart + journalPages*pageSize
	logEnd := dataStart + dataPages*pageSize - 1

	j := newJournal(cache, pageSize, journalStart, dataStart)
	require.NoError(t, j.reset())

	w := &dataWriter{
		cache:     cache,
		journal:   j,
		pageSize:  pageSize,
		blockSize: blockSize,
		dataStart: dataStart,
		logEnd:    logEnd,
		dataEnd:   dataStart,
	}
	return w, j, sim
}

func TestDataWriterAppendWithinPage(t *testing.T) {
	w, _, _ := newTestDataWriter(t, 64, 2)
	require.NoError(t, w.append([]byte("hello\n"), '#'))
	assert.Equal(t, w.dataStart+6, w.dataEnd)

	buf := make([]byte, 6)
	require.NoError(t, w.cache.Read(w.dataStart, buf, 6))
	assert.Equal(t, "hello\n", string(buf))
}

func TestDataWriterCommitsOnBlockCrossing(t *testing.T) {
	w, j, _ := newTestDataWriter(t, 64, 2)
	// blockSize is 16; write exactly one block's worth plus one byte to
	// cross into the next block.
	payload := make([]byte, 17)
	for i := range payload {
		payload[i] = 'a'
	}
	require.NoError(t, w.append(payload, '#'))

	head, dataEnd, err := j.recover()
	require.NoError(t, err)
	assert.NotEqual(t, j.journalStart, head, "a commit should have advanced the journal head")
	assert.Equal(t, w.dataStart+16, dataEnd, "only the full block is considered committed")
}

func TestDataWriterErasesNextPageBeforeFillingCurrent(t *testing.T) {
	w, _, sim := newTestDataWriter(t, 32, 2)
	// Poison the second data page with non-0xFF bytes so we can observe
	// the pre-erase.
	secondPage := w.dataStart + 32
	require.NoError(t, sim.Write(secondPage, []byte{0x00}, 1))

	payload := make([]byte, 32)
	for i := range payload {
		payload[i] = 'x'
	}
	require.NoError(t, w.append(payload, '#'))

	buf := make([]byte, 1)
	require.NoError(t, sim.Read(secondPage, buf, 1))
	assert.Equal(t, byte(0xFF), buf[0], "next page must be erased once the current page fills")
}

func TestDataWriterLatchesFullAndRejectsFurtherWrites(t *testing.T) {
	w, _, _ := newTestDataWriter(t, 32, 1)
	// logEnd leaves less than a page of usable space; drive it to exhaustion.
	big := make([]byte, w.remaining()+1)
	err := w.append(big, '#')
	require.Error(t, err)
	assert.True(t, uerrors.Is(uerrors.Unavailable, err))
	assert.True(t, w.full)

	buf := make([]byte, fullMarkerLen)
	require.NoError(t, w.cache.Read(w.logEnd+1, buf, fullMarkerLen))
	assert.Equal(t, fullMarker[:], buf)

	err = w.append([]byte("x"), '#')
	require.Error(t, err)
}

func TestDataWriterCleansForbiddenSequenceDefensively(t *testing.T) {
	w, _, _ := newTestDataWriter(t, 64, 2)
	require.NoError(t, w.append([]byte("a-->b\tc"), '#'))
	buf := make([]byte, 7)
	require.NoError(t, w.cache.Read(w.dataStart, buf, 7))
	assert.Equal(t, "a###b#c", string(buf))
}
