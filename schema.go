// Copyright 2026 The ubitlog Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package ubitlog

import (
	"strconv"
	"strings"

	uerrors "github.com/ubit/ubitlog/errors"
)

// timeUnit selects the divisor and column label used to synthesise the
// timestamp column at row close.
type timeUnit int

const (
	TimeNone timeUnit = iota
	TimeMilliseconds
	TimeSeconds
	TimeMinutes
	TimeHours
	TimeDays
)

// timeUnitLabel returns the column-name suffix for u. The "d" choice
// reuses "hours" rather than introducing a "days" label: this mirrors
// an observed behavior of the system being modeled and is preserved
// deliberately rather than corrected.
func timeUnitLabel(u timeUnit) string {
	switch u {
	case TimeMilliseconds:
		return "milliseconds"
	case TimeSeconds:
		return "seconds"
	case TimeMinutes:
		return "minutes"
	case TimeHours, TimeDays:
		return "hours"
	default:
		return ""
	}
}

// timeUnitDivisor returns the hundredths-of-a-unit scale for u: dividing
// nowMillis by this yields a value whose low two decimal digits are the
// fractional part formatTimestamp renders after the dot.
func timeUnitDivisor(u timeUnit) int64 {
	switch u {
	case TimeMilliseconds:
		return 1
	case TimeSeconds:
		return 10
	case TimeMinutes:
		return 600
	case TimeHours:
		return 36000
	case TimeDays:
		return 864000
	default:
		return 1
	}
}

// formatTimestamp renders t = nowMillis/divisor(u) the way the row
// protocol persists it: an integer for milliseconds, otherwise an
// integer part and a two-digit zero-padded fractional part separated
// by a dot. Large values are split into billions and a modulo-1e9
// remainder to avoid 32-bit overflow in the originating formatter,
// zero-padding the remainder to width 9 once billions is non-zero.
func formatTimestamp(u timeUnit, nowMillis int64) string {
	divisor := timeUnitDivisor(u)
	if u == TimeMilliseconds {
		return formatSplit(nowMillis)
	}
	t := nowMillis / divisor
	integerPart := t / 100
	fraction := t % 100
	if fraction < 0 {
		fraction = -fraction
	}
	return formatSplit(integerPart) + "." + padLeft(strconv.FormatInt(fraction, 10), 2)
}

func formatSplit(v int64) string {
	const billion = 1_000_000_000
	billions := v / billion
	units := v % billion
	if billions == 0 {
		return strconv.FormatInt(units, 10)
	}
	return strconv.FormatInt(billions, 10) + padLeft(strconv.FormatInt(units, 10), 9)
}

func padLeft(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// clean applies the persistence cleaning rules: the literal sequence
// "-->" and every tab become replacement bytes, and
// when removeSeparators is set (delimited fields, not free-form
// strings) so do commas and newlines. The result is the same length
// as the input and cleaning it again is a no-op.
func clean(b []byte, replacement byte, removeSeparators bool) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	for i := 0; i+3 <= len(out); i++ {
		if out[i] == '-' && out[i+1] == '-' && out[i+2] == '>' {
			out[i] = replacement
			out[i+1] = replacement
			out[i+2] = replacement
		}
	}
	for i, c := range out {
		switch c {
		case '\t':
			out[i] = replacement
		case ',', '\n':
			if removeSeparators {
				out[i] = replacement
			}
		}
	}
	return out
}

type rowState int

const (
	stateIdle rowState = iota
	stateRowOpen
)

type column struct {
	heading string
	value   string
}

// schema tracks the ordered column set, the row-open/closed state
// machine, and the address/length of the last persisted CSV header
// line so a new header can retire the old one with a same-length
// tombstone run.
type schema struct {
	writer      *dataWriter
	replacement byte

	columns         []column
	headingsChanged bool
	headingStart    uint32
	headingLen      uint32
	haveHeadingAddr bool

	state    rowState
	timeUnit timeUnit
}

func newSchema(writer *dataWriter, replacement byte) *schema {
	return &schema{writer: writer, replacement: replacement, state: stateIdle}
}

func (s *schema) setTimeUnit(u timeUnit) {
	s.timeUnit = u
	if u == TimeNone {
		return
	}
	label := "Time (" + timeUnitLabel(u) + ")"
	for _, c := range s.columns {
		if c.heading == label {
			return
		}
	}
	s.columns = append(s.columns, column{heading: label})
	s.headingsChanged = true
}

// beginRow opens a new row, implicitly closing any row already open.
func (s *schema) beginRow() error {
	if s.state == stateRowOpen {
		if err := s.endRow(); err != nil {
			return err
		}
	}
	for i := range s.columns {
		s.columns[i].value = ""
	}
	s.state = stateRowOpen
	return nil
}

// log sets column k to value v, auto-opening a row if none is open and
// registering k as a new heading if it has not been seen before.
func (s *schema) log(k, v string) error {
	if s.state == stateIdle {
		if err := s.beginRow(); err != nil {
			return err
		}
	}
	k = string(clean([]byte(k), s.replacement, true))
	v = string(clean([]byte(v), s.replacement, true))
	for i := range s.columns {
		if s.columns[i].heading == k {
			s.columns[i].value = v
			return nil
		}
	}
	s.columns = append(s.columns, column{heading: k, value: v})
	s.headingsChanged = true
	return nil
}

// nowMillisFunc is overridable by tests so timestamp formatting is
// deterministic without touching the real clock.
var nowMillisFunc = defaultNowMillis

// endRow synthesises the timestamp column if one is configured,
// rewrites the persisted headers if the column set changed, and emits
// the row if it carries any non-empty value.
func (s *schema) endRow() error {
	if s.state != stateRowOpen {
		return uerrors.E(uerrors.Invalid, "end_row", "no row is open")
	}
	if s.timeUnit != TimeNone {
		label := "Time (" + timeUnitLabel(s.timeUnit) + ")"
		ts := formatTimestamp(s.timeUnit, nowMillisFunc())
		found := false
		for i := range s.columns {
			if s.columns[i].heading == label {
				s.columns[i].value = ts
				found = true
				break
			}
		}
		if !found {
			s.columns = append(s.columns, column{heading: label, value: ts})
			s.headingsChanged = true
		}
	}
	if s.headingsChanged {
		if err := s.rewriteHeadings(); err != nil {
			return err
		}
	}
	nonEmpty := false
	for _, c := range s.columns {
		if c.value != "" {
			nonEmpty = true
			break
		}
	}
	if nonEmpty {
		values := make([]string, len(s.columns))
		for i, c := range s.columns {
			values[i] = c.value
		}
		row := strings.Join(values, ",") + "\n"
		if err := s.writer.append([]byte(row), s.replacement); err != nil {
			s.state = stateIdle
			return err
		}
	}
	s.state = stateIdle
	return nil
}

// rewriteHeadings retires the previously persisted header line by
// appending a same-length run of 0x00 (a tombstone) and then appends a
// fresh header line reflecting the current column set. Both are
// ordinary appends: the log never rewrites bytes already written at
// an earlier address, only grows forward.
func (s *schema) rewriteHeadings() error {
	if s.haveHeadingAddr && s.headingLen > 0 {
		zeros := make([]byte, s.headingLen)
		if err := s.writer.append(zeros, s.replacement); err != nil {
			return err
		}
	}
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.heading
	}
	line := strings.Join(names, ",") + "\n"

	newStart := s.writer.dataEnd
	if err := s.writer.append([]byte(line), s.replacement); err != nil {
		return err
	}
	s.headingStart = newStart
	s.headingLen = uint32(len(line))
	s.haveHeadingAddr = true
	s.headingsChanged = false
	return nil
}

// logString appends a free-form string directly, bypassing the row
// machinery. Separators are preserved; only the "-->" sequence and
// tabs are cleaned, via dataWriter.append's own defensive pass.
func (s *schema) logString(str string) error {
	return s.writer.append([]byte(str), s.replacement)
}
