// Copyright 2026 The ubitlog Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package ubitlog implements a crash-safe, append-only, tabular
// structured log over a block-erasable non-volatile memory (NVM)
// device that is simultaneously presented to a host computer as a
// single read-only file. Opening that file in a browser shows a
// human-readable table of the recorded rows and a link to download
// them as CSV; the same bytes the host renders are exactly what is
// durably stored, so there is no separate export step.
//
// Data layout
//
// The medium holds five regions, in ascending address order:
//
//	region   := header metadata journal data full?
//
//	header   := fixed, page-aligned-up byte blob (host viewer, opaque)
//	metadata := one cache block: version, dataStart, logEnd (ASCII hex)
//	journal  := J pages of 8-byte ring entries (erased | invalidated | live)
//	data     := CSV headings and rows, append-only, ending at logEnd
//	full     := "FUL" at logEnd+1, latched once the log cannot accept
//	            another full line
//
// Durability protocol
//
// Every row append writes its CSV bytes through a write-through block
// cache before advancing the journal: a new journal entry recording the
// committed byte count becomes durable before the previous entry is
// invalidated, so a crash between those two writes leaves (at most) two
// live-looking entries; mount always prefers the later one. A crash
// before the new entry is written loses only the uncommitted tail,
// which mount recovers by scanning forward from the last commit until
// it finds the first unwritten (0xFF) byte.
//
// This design follows the same shape as a block-structured, history-
// oblivious append log: records never span regions that can't be
// resynced independently, and recovery always prefers whichever
// candidate is more recent over one that is merely well-formed.
package ubitlog
