// Copyright 2026 The ubitlog Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package ubitlog

import (
	"fmt"
)

// versionString is the literal, newline-terminated version marker
// written into every metadata record. Its first 17 bytes (everything
// but the trailing newline) are what mount validates against.
const versionString = "UBIT_LOG_FS_V_001\n"

const (
	versionFieldLen  = 18 // len(versionString)
	hexFieldLen      = 11 // "0x" + 8 hex digits + "\n"
	metadataLen      = versionFieldLen + 2*hexFieldLen
	journalEntrySize = 8 // 8 ASCII hex digits, no terminator
	fullMarkerLen    = 3
)

var fullMarker = [fullMarkerLen]byte{'F', 'U', 'L'}

// Layout describes the fixed region boundaries computed from NVM
// geometry at clear/mount time. Regions never overlap and every
// address is page-aligned where the underlying erase granularity
// requires it.
type Layout struct {
	StartAddress uint32 // metadata region start
	JournalStart uint32
	DataStart    uint32
	LogEnd       uint32 // one past the last usable data byte; the byte at LogEnd is the FULL guard
}

// ComputeLayout derives region boundaries from adapter geometry and
// the configured number of journal pages:
//
//	startAddress ≡ 0 (mod pageSize), startAddress ≥ headerSize
//	journalStart = startAddress + pageSize
//	dataStart    = journalStart + journalPages*pageSize
//	dataStart + pageSize ≤ logEnd < flashEnd - pageSize
//
// The default logEnd reserves exactly one trailing page beyond the
// data region, for the FULL sentinel and future growth.
func ComputeLayout(pageSize, flashStart, flashEnd, journalPages uint32) Layout {
	headerSize := uint32(len(headerBlob))
	startAddress := flashStart + ceilToPage(headerSize, pageSize)
	journalStart := startAddress + pageSize
	dataStart := journalStart + journalPages*pageSize
	logEnd := flashEnd - pageSize - 1
	return Layout{
		StartAddress: startAddress,
		JournalStart: journalStart,
		DataStart:    dataStart,
		LogEnd:       logEnd,
	}
}

func ceilToPage(n, pageSize uint32) uint32 {
	if n%pageSize == 0 {
		return n
	}
	return (n/pageSize + 1) * pageSize
}

// encodeHex8 renders v as "0x" + 8 uppercase hex digits + "\n", the
// format used by the metadata record's dataStart/logEnd fields. The
// most significant nibble is written first.
func encodeHex8(v uint32) []byte {
	b := make([]byte, hexFieldLen)
	b[0], b[1] = '0', 'x'
	putHexDigits(b[2:10], v)
	b[10] = '\n'
	return b
}

// decodeHex8 parses the "0x" + 8 hex digit + "\n" format. ok is false
// if the field is malformed.
func decodeHex8(b []byte) (uint32, bool) {
	if len(b) != hexFieldLen || b[0] != '0' || b[1] != 'x' || b[10] != '\n' {
		return 0, false
	}
	return parseHexDigits(b[2:10])
}

// encodeJournalEntry renders v as 8 uppercase hex digits with no
// terminator, the live-entry format for journal ring slots.
func encodeJournalEntry(v uint32) []byte {
	b := make([]byte, journalEntrySize)
	putHexDigits(b, v)
	return b
}

func decodeJournalEntry(b []byte) (uint32, bool) {
	if len(b) != journalEntrySize {
		return 0, false
	}
	return parseHexDigits(b)
}

func putHexDigits(dst []byte, v uint32) {
	const digits = "0123456789ABCDEF"
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = digits[v&0xF]
		v >>= 4
	}
}

func parseHexDigits(src []byte) (uint32, bool) {
	var v uint32
	for _, c := range src {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint32(c - '0')
		case c >= 'A' && c <= 'F':
			v |= uint32(c-'A') + 10
		case c >= 'a' && c <= 'f':
			v |= uint32(c-'a') + 10
		default:
			return 0, false
		}
	}
	return v, true
}

// buildMetadata encodes the metadata record: version, dataStart,
// logEnd, all ASCII, byte-identical across implementations because
// the host viewer script parses them directly.
func buildMetadata(dataStart, logEnd uint32) []byte {
	b := make([]byte, 0, metadataLen)
	b = append(b, versionString...)
	b = append(b, encodeHex8(dataStart)...)
	b = append(b, encodeHex8(logEnd)...)
	return b
}

// parseMetadata validates and decodes a metadata record. Only the
// first 17 bytes of the version field are compared; the trailing
// newline is not part of validation.
func parseMetadata(buf []byte) (dataStart, logEnd uint32, err error) {
	if len(buf) < metadataLen {
		return 0, 0, fmt.Errorf("metadata record too short: %d bytes", len(buf))
	}
	if string(buf[:versionFieldLen-1]) != versionString[:versionFieldLen-1] {
		return 0, 0, fmt.Errorf("metadata version mismatch")
	}
	dataStart, ok := decodeHex8(buf[versionFieldLen : versionFieldLen+hexFieldLen])
	if !ok {
		return 0, 0, fmt.Errorf("metadata dataStart malformed")
	}
	logEnd, ok = decodeHex8(buf[versionFieldLen+hexFieldLen : versionFieldLen+2*hexFieldLen])
	if !ok {
		return 0, 0, fmt.Errorf("metadata logEnd malformed")
	}
	return dataStart, logEnd, nil
}
