// Copyright 2026 The ubitlog Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package config holds the small set of tunables ubitlog needs at
// format time. It intentionally does not parse flags or files itself;
// cmd/ubitlogctl loads an on-disk config and passes the resulting
// struct in.
package config

// Default tunables.
const (
	DefaultJournalPages    = 1
	DefaultCacheBlockSize  = 256
	DefaultCacheBlockCount = 4
	DefaultReplacementByte = '#'
	DefaultContainerName   = "MY_DATA.HTM"
)

// Config holds the environment/configuration constants a Log is
// formatted with. The zero value is not valid; use New.
type Config struct {
	// JournalPages is the number of pages reserved for the journal
	// ring.
	JournalPages uint32
	// CacheBlockSize is the block cache's fixed block size, B.
	CacheBlockSize uint32
	// CacheBlockCount is the number of resident cache blocks.
	CacheBlockCount int
	// ReplacementByte replaces forbidden byte sequences during
	// cleaning.
	ReplacementByte byte
	// ContainerName is the host-visible filename presented over USB
	// mass storage.
	ContainerName string
}

// Option configures a Config constructed by New.
type Option func(*Config)

// WithJournalPages overrides the number of journal pages.
func WithJournalPages(n uint32) Option {
	return func(c *Config) { c.JournalPages = n }
}

// WithCacheBlockSize overrides the cache block size B.
func WithCacheBlockSize(n uint32) Option {
	return func(c *Config) { c.CacheBlockSize = n }
}

// WithCacheBlockCount overrides the number of resident cache blocks.
func WithCacheBlockCount(n int) Option {
	return func(c *Config) { c.CacheBlockCount = n }
}

// WithReplacementByte overrides the byte substituted for forbidden
// sequences during cleaning.
func WithReplacementByte(b byte) Option {
	return func(c *Config) { c.ReplacementByte = b }
}

// WithContainerName overrides the host-visible container filename.
func WithContainerName(name string) Option {
	return func(c *Config) { c.ContainerName = name }
}

// New returns a Config populated with defaults, modified by the given
// options.
func New(opts ...Option) Config {
	c := Config{
		JournalPages:    DefaultJournalPages,
		CacheBlockSize:  DefaultCacheBlockSize,
		CacheBlockCount: DefaultCacheBlockCount,
		ReplacementByte: DefaultReplacementByte,
		ContainerName:   DefaultContainerName,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
