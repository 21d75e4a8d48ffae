// Copyright 2026 The ubitlog Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package ubitlog

// journal manages the circular ring of fixed-size commit entries
// recording how many bytes of the data region are durably committed.
// Exactly one entry is live at any durable moment; the rest are
// erased (0xFF) or invalidated (0x00). A crash between writing a new
// live entry and invalidating its predecessor leaves two live-looking
// entries; recover always prefers the later one by scanning forward
// and not stopping at the first hit.
type journal struct {
	cache        *blockCache
	pageSize     uint32
	journalStart uint32
	dataStart    uint32

	head uint32 // address of the current live entry
}

func newJournal(cache *blockCache, pageSize, journalStart, dataStart uint32) *journal {
	return &journal{cache: cache, pageSize: pageSize, journalStart: journalStart, dataStart: dataStart, head: journalStart}
}

// reset marks the ring as freshly formatted: a single erased-pattern
// entry at journalStart, making the live entry explicit as value 0.
func (j *journal) reset() error {
	j.head = j.journalStart
	return j.cache.Write(j.head, allFF[:journalEntrySize], journalEntrySize)
}

// commit advances the ring to a new live entry recording committedEnd
// bytes since dataStart. The new entry is made durable before the old
// one is invalidated, so a crash in between leaves at most two
// live-looking entries for recover to disambiguate.
func (j *journal) commit(committedEnd uint32) error {
	nextHead := j.head + journalEntrySize
	if nextHead%j.pageSize == 0 {
		if nextHead == j.dataStart {
			nextHead = j.journalStart
		}
		if err := j.cache.Erase(nextHead, j.pageSize); err != nil {
			return err
		}
	}
	value := encodeJournalEntry(committedEnd - j.dataStart)
	if err := j.cache.Write(nextHead, value, journalEntrySize); err != nil {
		return err
	}
	if err := j.cache.Write(j.head, allZero[:journalEntrySize], journalEntrySize); err != nil {
		return err
	}
	j.head = nextHead
	return nil
}

var allFF = [journalEntrySize]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
var allZero [journalEntrySize]byte

func isAllBytes(b []byte, v byte) bool {
	for _, c := range b {
		if c != v {
			return false
		}
	}
	return true
}

// recover scans the journal ring linearly from journalStart to
// dataStart, selecting the last live entry. If no live entry is
// found, the ring is empty: head stays at journalStart and dataEnd
// equals dataStart.
func (j *journal) recover() (head uint32, dataEnd uint32, err error) {
	head = j.journalStart
	dataEnd = j.dataStart
	valid := false
	buf := make([]byte, journalEntrySize)
	for addr := j.journalStart; addr < j.dataStart; addr += journalEntrySize {
		if err := j.cache.Read(addr, buf, journalEntrySize); err != nil {
			return 0, 0, err
		}
		switch {
		case isAllBytes(buf, 0xFF):
			if valid {
				return head, dataEnd, nil
			}
		case isAllBytes(buf, 0x00):
			// invalidated; keep scanning.
		default:
			v, ok := decodeJournalEntry(buf)
			if !ok {
				continue
			}
			head = addr
			dataEnd = j.dataStart + v
			valid = true
		}
	}
	return head, dataEnd, nil
}
