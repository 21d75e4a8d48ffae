// Copyright 2026 The ubitlog Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package ubitlog

import (
	"sync"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/ubit/ubitlog/config"
	"github.com/ubit/ubitlog/log"
	"github.com/ubit/ubitlog/nvm"
)

// Log is a persistent, append-only, crash-safe, tabular CSV logger
// over block-erasable NVM. All mutating methods serialise on a single
// exclusive mutex; there is no internal parallelism.
type Log struct {
	mu sync.Mutex

	adapter nvm.Adapter
	cfg     config.Config

	cache   *blockCache
	mounter *mounter
	writer  *dataWriter
	schema  *schema

	initialized bool
	layout      Layout
}

// New returns a Log bound to adapter, configured by cfg. Callers must
// call Init before any other method.
func New(adapter nvm.Adapter, cfg config.Config) *Log {
	cache := newBlockCache(adapter, cfg.CacheBlockSize, cfg.CacheBlockCount)
	return &Log{
		adapter: adapter,
		cfg:     cfg,
		cache:   cache,
		mounter: newMounter(adapter, cache, cfg.JournalPages, cfg.ReplacementByte, cfg.ContainerName),
	}
}

// Init mounts an existing log or formats a fresh one. It is idempotent.
func (l *Log) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.initialized {
		return nil
	}
	res, err := l.mounter.mount(l.adapter.PageSize(), l.adapter.FlashStart(), l.adapter.FlashEnd())
	if err != nil {
		return err
	}
	l.applyMountResult(res)
	log.Debug.Printf("ubitlog: mounted, data_end=0x%08X full=%v headings=%v", res.dataEnd, res.full, res.headings)
	l.initialized = true
	return nil
}

func (l *Log) applyMountResult(res *mountResult) {
	l.layout = res.layout
	l.writer = &dataWriter{
		cache:     l.cache,
		journal:   res.journal,
		pageSize:  l.adapter.PageSize(),
		blockSize: l.cfg.CacheBlockSize,
		dataStart: res.layout.DataStart,
		logEnd:    res.layout.LogEnd,
		dataEnd:   res.dataEnd,
		full:      res.full,
	}
	l.schema = newSchema(l.writer, l.cfg.ReplacementByte)
	if res.haveHeading {
		l.schema.headingStart = res.headingStart
		l.schema.headingLen = res.headingLen
		l.schema.haveHeadingAddr = true
		for _, h := range res.headings {
			l.schema.columns = append(l.schema.columns, column{heading: h})
		}
	}
}

// SetTimeUnit configures (or disables, with TimeNone) the synthesised
// timestamp column appended at each row close.
func (l *Log) SetTimeUnit(u timeUnit) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.schema.setTimeUnit(u)
}

// BeginRow opens a new row, implicitly closing any row already open.
func (l *Log) BeginRow() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.schema.beginRow()
}

// Log sets column key to value, auto-opening a row if none is open.
func (l *Log) Log(key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.schema.log(key, value)
}

// EndRow closes the currently open row, persisting headers (if the
// column set changed) and the row's values.
func (l *Log) EndRow() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.schema.endRow()
}

// LogString appends a free-form string, bypassing the row machinery.
// Commas and newlines are preserved; only the "-->" sequence and tabs
// are cleaned.
func (l *Log) LogString(s string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.schema.logString(s)
}

// Clear formats a fresh log. If full is false, only the pages before
// the data region and the first data page are erased; later data pages
// are erased as appends reach them. If full is true, the whole data
// region is erased too (wear cost, seldom needed). The page holding
// the FULL marker is not erased in either case.
func (l *Log) Clear(full bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	res, err := l.mounter.clear(l.adapter.PageSize(), l.adapter.FlashStart(), l.adapter.FlashEnd(), full)
	if err != nil {
		return err
	}
	l.applyMountResult(res)
	l.initialized = true
	log.Info.Printf("ubitlog: cleared (full=%v)", full)
	return nil
}

// Invalidate zeros the metadata record and FULL sentinel via
// bit-clearing writes only. The next Init observes absent metadata and
// formats a fresh log.
func (l *Log) Invalidate() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.initialized {
		return nil
	}
	if err := l.mounter.invalidate(l.layout); err != nil {
		return err
	}
	l.initialized = false
	return nil
}

// IsPresent reports whether the log is mounted and formatted.
func (l *Log) IsPresent() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.initialized
}

// IsFull reports whether the FULL sentinel is currently latched.
func (l *Log) IsFull() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writer.full
}

// Remaining returns the number of bytes still available before
// log_end. It is a supplemented convenience not named by the core
// operation list, useful for host-side capacity reporting.
func (l *Log) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int(l.writer.remaining())
}

// DataSnapshot returns a copy of the data region written so far,
// [data_start, data_end). It is a supplemented debug convenience for
// tooling that wants to inspect the CSV body without a real USB
// mass-storage read path.
func (l *Log) DataSnapshot() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := int(l.writer.dataEnd - l.writer.dataStart)
	buf := make([]byte, n)
	if err := l.cache.Read(l.writer.dataStart, buf, n); err != nil {
		return nil, err
	}
	return buf, nil
}

// DataChecksum returns an xxhash checksum of the current data region
// contents, a cheap way for tooling to detect whether the persisted
// CSV body changed between two snapshots without diffing the whole
// thing byte-for-byte. It is never itself persisted: the on-medium
// format is fixed by the host viewer and has no room for a checksum
// field.
func (l *Log) DataChecksum() (uint64, error) {
	data, err := l.DataSnapshot()
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}
