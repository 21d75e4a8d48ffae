// Copyright 2026 The ubitlog Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package ubitlog

import (
	uerrors "github.com/ubit/ubitlog/errors"
)

// dataWriter appends CSV bytes to the data region, pre-erasing the
// next page before an append would overspill into it, and committing
// a new journal entry whenever the append crosses a cache-block
// boundary.
type dataWriter struct {
	cache     *blockCache
	journal   *journal
	pageSize  uint32
	blockSize uint32
	dataStart uint32
	logEnd    uint32

	dataEnd uint32
	full    bool
}

// remaining returns the number of bytes still available before logEnd.
func (w *dataWriter) remaining() uint32 {
	if w.dataEnd >= w.logEnd {
		return 0
	}
	return w.logEnd - w.dataEnd
}

// append writes data through the cache, pre-erasing pages as it
// crosses them and committing the journal on block-boundary crossings.
// It cleans data defensively (dash-sequence and tab only; the caller
// is responsible for delimiter-safe field cleaning) before writing.
func (w *dataWriter) append(data []byte, replacement byte) error {
	if w.full {
		return uerrors.E(uerrors.Unavailable, "append", "log is full")
	}
	if uint32(len(data)) > w.remaining() {
		if err := w.latchFull(); err != nil {
			return err
		}
		return uerrors.E(uerrors.Unavailable, "append", "log is full")
	}
	data = clean(data, replacement, false)

	oldDataEnd := w.dataEnd
	remainingBytes := data
	for len(remainingBytes) > 0 {
		pageOffset := w.dataEnd % w.pageSize
		spaceOnPage := w.pageSize - pageOffset
		chunk := spaceOnPage
		if uint32(len(remainingBytes)) < chunk {
			chunk = uint32(len(remainingBytes))
		}
		if chunk == spaceOnPage {
			nextPage := w.dataEnd - pageOffset + w.pageSize
			if nextPage < w.logEnd {
				if err := w.cache.Erase(nextPage, w.pageSize); err != nil {
					return err
				}
			}
		}
		if err := w.cache.Write(w.dataEnd, remainingBytes[:chunk], int(chunk)); err != nil {
			return err
		}
		w.dataEnd += chunk
		remainingBytes = remainingBytes[chunk:]
	}

	if oldDataEnd/w.blockSize != w.dataEnd/w.blockSize {
		committedLen := (w.dataEnd - w.dataStart) / w.blockSize * w.blockSize
		if err := w.journal.commit(w.dataStart + committedLen); err != nil {
			return err
		}
	}
	return nil
}

// latchFull writes the "FUL" sentinel once. It is idempotent: once
// latched, it persists until the next Clear.
func (w *dataWriter) latchFull() error {
	if w.full {
		return nil
	}
	if err := w.cache.Write(w.logEnd+1, fullMarker[:], fullMarkerLen); err != nil {
		return err
	}
	w.full = true
	return nil
}
