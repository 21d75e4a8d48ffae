// Copyright 2026 The ubitlog Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package ubitlog

import (
	"github.com/ubit/ubitlog/nvm"
)

// mounter owns the region geometry and drives format/recovery against
// a cache and journal. It does not itself hold the row/heading state;
// callers reconstruct schema after mount.
type mounter struct {
	adapter nvm.Adapter
	cache   *blockCache

	layout          Layout
	journalPages    uint32
	replacementByte byte
	containerName   string
}

func newMounter(adapter nvm.Adapter, cache *blockCache, journalPages uint32, replacementByte byte, containerName string) *mounter {
	return &mounter{adapter: adapter, cache: cache, journalPages: journalPages, replacementByte: replacementByte, containerName: containerName}
}

// mountResult carries everything ubitlog.Init needs to reconstruct its
// dataWriter, journal and schema after a successful mount or format.
type mountResult struct {
	layout       Layout
	journal      *journal
	dataEnd      uint32
	full         bool
	headingStart uint32
	headingLen   uint32
	haveHeading  bool
	headings     []string
}

// mount attempts to recover an existing formatted log; if the medium
// holds no valid metadata, it formats a fresh one.
func (m *mounter) mount(pageSize, flashStart, flashEnd uint32) (*mountResult, error) {
	layout := ComputeLayout(pageSize, flashStart, flashEnd, m.journalPages)

	metaBuf := make([]byte, metadataLen)
	if err := m.cache.Read(layout.StartAddress, metaBuf, metadataLen); err != nil {
		return nil, err
	}
	dataStart, logEnd, err := parseMetadata(metaBuf)
	if err != nil || dataStart != layout.DataStart || logEnd != layout.LogEnd {
		return m.clear(pageSize, flashStart, flashEnd, false)
	}
	m.layout = layout

	j := newJournal(m.cache, pageSize, layout.JournalStart, layout.DataStart)
	head, dataEnd, err := j.recover()
	if err != nil {
		return nil, err
	}
	j.head = head

	dataEnd, err = m.byteScanTail(dataEnd, layout.LogEnd)
	if err != nil {
		return nil, err
	}

	full, err := m.isFullLocked(layout)
	if err != nil {
		return nil, err
	}

	headings, headingStart, headingLen, haveHeading, err := m.parseHeadings(layout, dataEnd)
	if err != nil {
		return nil, err
	}

	return &mountResult{
		layout:       layout,
		journal:      j,
		dataEnd:      dataEnd,
		full:         full,
		headingStart: headingStart,
		headingLen:   headingLen,
		haveHeading:  haveHeading,
		headings:     headings,
	}, nil
}

// byteScanTail reads forward one byte at a time from dataEnd through
// logEnd, stopping at the first 0xFF, to recover any uncommitted
// sub-block tail written since the last journal commit.
func (m *mounter) byteScanTail(dataEnd, logEnd uint32) (uint32, error) {
	buf := make([]byte, 1)
	for addr := dataEnd; addr < logEnd; addr++ {
		if err := m.cache.Read(addr, buf, 1); err != nil {
			return 0, err
		}
		if buf[0] == 0xFF {
			return addr, nil
		}
	}
	return logEnd, nil
}

// isFullLocked reports whether the FULL sentinel is currently latched.
// The guard byte at logEnd is never touched by latching itself (only
// clear's retirement step programs it), so its staying 0xFF is what
// arms detection of the marker; once retired (any non-0xFF guard
// value), the marker bytes are ignored even if a stale "FUL" is still
// physically present in an unerased page.
func (m *mounter) isFullLocked(layout Layout) (bool, error) {
	guard := make([]byte, 1)
	if err := m.cache.Read(layout.LogEnd, guard, 1); err != nil {
		return false, err
	}
	if guard[0] != 0xFF {
		return false, nil
	}
	marker := make([]byte, fullMarkerLen)
	if err := m.cache.Read(layout.LogEnd+1, marker, fullMarkerLen); err != nil {
		return false, err
	}
	return marker[0] == fullMarker[0] && marker[1] == fullMarker[1] && marker[2] == fullMarker[2], nil
}

// parseHeadings locates the CURRENT header line within the recovered
// data range [dataStart, dataEnd). A header line is always immediately
// preceded either by the very start of the data region or by a
// same-length run of 0x00 tombstone bytes (rewriteHeadings always
// writes the pair together); row lines never are. Scanning once and
// remembering the most recent such transition therefore finds the
// latest (current) header even though older, retired headers and rows
// remain physically present earlier in the stream.
func (m *mounter) parseHeadings(layout Layout, dataEnd uint32) (headings []string, start, length uint32, have bool, err error) {
	buf := make([]byte, 1)
	var curStart uint32
	haveCur := false
	prevZero := true
	for cursor := layout.DataStart; cursor < dataEnd; cursor++ {
		if err := m.cache.Read(cursor, buf, 1); err != nil {
			return nil, 0, 0, false, err
		}
		b := buf[0]
		if b == 0xFF {
			break
		}
		if b != 0x00 {
			if prevZero {
				curStart = cursor
				haveCur = true
			}
			prevZero = false
		} else {
			prevZero = true
		}
	}
	if !haveCur {
		return nil, 0, 0, false, nil
	}

	var line []byte
	for addr := curStart; addr < dataEnd; addr++ {
		if err := m.cache.Read(addr, buf, 1); err != nil {
			return nil, 0, 0, false, err
		}
		line = append(line, buf[0])
		if buf[0] == '\n' {
			break
		}
	}
	start = curStart
	length = uint32(len(line))
	have = true
	current := make([]byte, 0, 16)
	for _, c := range line {
		if c == ',' || c == '\n' {
			headings = append(headings, string(current))
			current = current[:0]
			continue
		}
		current = append(current, c)
	}
	return headings, start, length, have, nil
}

// clear formats a fresh log: retires a stale FULL sentinel left by the
// previous epoch (without erasing it away), erases the formatted
// range, writes the header blob and metadata, and resets the journal.
// Without full, the erased range is every page before dataStart plus
// the first data page; later data pages are erased by dataWriter as
// appends reach them. With full, every page through the one holding
// logEnd is erased. The page holding the FULL marker beyond logEnd is
// never erased.
func (m *mounter) clear(pageSize, flashStart, flashEnd uint32, full bool) (*mountResult, error) {
	layout := ComputeLayout(pageSize, flashStart, flashEnd, m.journalPages)

	wasFull, err := m.isFullLocked(layout)
	if err != nil {
		return nil, err
	}
	if !full {
		// Only retire the guard when the previous epoch actually left
		// the sentinel latched; writing it unconditionally would zero
		// a still-armed (0xFF) guard on every format, including the
		// very first, and a zeroed guard can never be armed again
		// without the page erase this branch is specifically avoiding.
		if wasFull {
			retire := []byte{0x00}
			if err := m.adapter.Write(layout.LogEnd, retire, 1); err != nil {
				return nil, err
			}
		}
	}

	m.cache.Clear()

	eraseEnd := layout.DataStart + pageSize
	if full {
		eraseEnd = layout.LogEnd + 1
	}
	for addr := flashStart; addr < eraseEnd; addr += pageSize {
		if err := m.adapter.Erase(addr); err != nil {
			return nil, err
		}
	}
	if full && wasFull {
		// The erase above re-armed the guard byte at logEnd while the
		// stale marker beyond it survives, so retire the guard now.
		if err := m.adapter.Write(layout.LogEnd, []byte{0x00}, 1); err != nil {
			return nil, err
		}
	}

	if err := m.adapter.Write(flashStart, []byte(headerBlob), len(headerBlob)); err != nil {
		return nil, err
	}

	meta := buildMetadata(layout.DataStart, layout.LogEnd)
	if err := m.cache.Write(layout.StartAddress, meta, len(meta)); err != nil {
		return nil, err
	}

	j := newJournal(m.cache, pageSize, layout.JournalStart, layout.DataStart)
	if err := j.reset(); err != nil {
		return nil, err
	}

	if err := m.adapter.SetConfiguration(nvm.Configuration{
		Filename: m.containerName,
		Size:     flashEnd - flashStart - pageSize,
		Visible:  true,
	}); err != nil {
		return nil, err
	}
	if err := m.adapter.Remount(); err != nil {
		return nil, err
	}

	m.layout = layout
	return &mountResult{
		layout:  layout,
		journal: j,
		dataEnd: layout.DataStart,
	}, nil
}

// invalidate zeros the metadata record and any FULL sentinel using
// bit-clearing writes only; no erase. The next mount sees absent
// metadata and formats a fresh log.
func (m *mounter) invalidate(layout Layout) error {
	zeroMeta := make([]byte, metadataLen)
	if err := m.cache.Write(layout.StartAddress, zeroMeta, metadataLen); err != nil {
		return err
	}
	zeroMarker := make([]byte, fullMarkerLen)
	return m.cache.Write(layout.LogEnd+1, zeroMarker, fullMarkerLen)
}
