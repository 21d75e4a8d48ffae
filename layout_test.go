// Copyright 2026 The ubitlog Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package ubitlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHex8RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0xFF, 0xDEADBEEF, 0x00010000} {
		enc := encodeHex8(v)
		assert.Len(t, enc, hexFieldLen)
		assert.Equal(t, byte('\n'), enc[10])
		got, ok := decodeHex8(enc)
		require.True(t, ok)
		assert.Equal(t, v, got)
	}
}

func TestHex8MostSignificantNibbleFirst(t *testing.T) {
	enc := encodeHex8(0x00010000)
	assert.Equal(t, "0x00010000\n", string(enc))
}

func TestJournalEntryRoundTrip(t *testing.T) {
	enc := encodeJournalEntry(0x00000100)
	assert.Len(t, enc, journalEntrySize)
	assert.Equal(t, "00000100", string(enc))
	got, ok := decodeJournalEntry(enc)
	require.True(t, ok)
	assert.EqualValues(t, 0x100, got)
}

func TestMetadataRoundTrip(t *testing.T) {
	m := buildMetadata(0x1000, 0xFF00)
	assert.Len(t, m, metadataLen)
	dataStart, logEnd, err := parseMetadata(m)
	require.NoError(t, err)
	assert.EqualValues(t, 0x1000, dataStart)
	assert.EqualValues(t, 0xFF00, logEnd)
}

func TestMetadataRejectsBadVersion(t *testing.T) {
	m := buildMetadata(0x1000, 0xFF00)
	m[0] = 'X'
	_, _, err := parseMetadata(m)
	assert.Error(t, err)
}

func TestComputeLayoutInvariants(t *testing.T) {
	const pageSize = 256
	l := ComputeLayout(pageSize, 0, 64*1024, 1)
	assert.Zero(t, l.StartAddress%pageSize)
	assert.GreaterOrEqual(t, l.StartAddress, uint32(len(headerBlob)))
	assert.Equal(t, l.StartAddress+pageSize, l.JournalStart)
	assert.Equal(t, l.JournalStart+pageSize, l.DataStart)
	assert.Less(t, l.LogEnd, uint32(64*1024)-pageSize)
	assert.GreaterOrEqual(t, l.LogEnd, l.DataStart+pageSize)
}
