// Copyright 2026 The ubitlog Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package ubitlog

import (
	"github.com/ubit/ubitlog/nvm"
)

// blockCache is a small, fixed-size, write-through cache of NVM
// blocks. It amortizes repeated reads of the same block and coalesces
// nothing on its own — every Write is issued to the adapter
// immediately — but it lets mount/recovery and schema lookups re-read
// recently touched regions without round-tripping to the adapter.
//
// It is not safe for concurrent use; ubitlog serializes all mutators
// behind a single writer mutex, so the cache never needs its own
// locking.
type blockCache struct {
	adapter   nvm.Adapter
	blockSize uint32
	maxBlocks int

	// blocks is ordered most-recently-used first.
	blocks []*cachedBlock
}

type cachedBlock struct {
	addr uint32 // block-aligned address
	data []byte
}

func newBlockCache(adapter nvm.Adapter, blockSize uint32, maxBlocks int) *blockCache {
	return &blockCache{adapter: adapter, blockSize: blockSize, maxBlocks: maxBlocks}
}

func (c *blockCache) blockAddr(addr uint32) uint32 {
	return addr - addr%c.blockSize
}

func (c *blockCache) find(blockAddr uint32) *cachedBlock {
	for i, b := range c.blocks {
		if b.addr == blockAddr {
			if i != 0 {
				c.blocks = append(c.blocks[:i], c.blocks[i+1:]...)
				c.blocks = append([]*cachedBlock{b}, c.blocks...)
			}
			return b
		}
	}
	return nil
}

// load reads the block containing addr into the cache (evicting the
// least-recently-used resident block if full) and returns it.
func (c *blockCache) load(blockAddr uint32) (*cachedBlock, error) {
	if b := c.find(blockAddr); b != nil {
		return b, nil
	}
	data := make([]byte, c.blockSize)
	if err := c.adapter.Read(blockAddr, data, int(c.blockSize)); err != nil {
		return nil, err
	}
	b := &cachedBlock{addr: blockAddr, data: data}
	c.blocks = append([]*cachedBlock{b}, c.blocks...)
	if len(c.blocks) > c.maxBlocks {
		c.blocks = c.blocks[:c.maxBlocks]
	}
	return b, nil
}

// Read copies n bytes starting at addr into buf, consulting and
// populating the cache one block at a time.
func (c *blockCache) Read(addr uint32, buf []byte, n int) error {
	read := 0
	for read < n {
		blockAddr := c.blockAddr(addr)
		b, err := c.load(blockAddr)
		if err != nil {
			return err
		}
		off := int(addr - blockAddr)
		avail := int(c.blockSize) - off
		want := n - read
		if want > avail {
			want = avail
		}
		copy(buf[read:read+want], b.data[off:off+want])
		read += want
		addr += uint32(want)
	}
	return nil
}

// Write issues an adapter write for the full range and keeps any
// resident cache blocks that overlap the range consistent, so a
// subsequent Read never observes stale bytes.
func (c *blockCache) Write(addr uint32, buf []byte, n int) error {
	if err := c.adapter.Write(addr, buf, n); err != nil {
		return err
	}
	written := 0
	for written < n {
		blockAddr := c.blockAddr(addr)
		if b := c.find(blockAddr); b != nil {
			off := int(addr - blockAddr)
			avail := int(c.blockSize) - off
			want := n - written
			if want > avail {
				want = avail
			}
			copy(b.data[off:off+want], buf[written:written+want])
			written += want
			addr += uint32(want)
			continue
		}
		// Not resident: skip ahead to the next block boundary without
		// populating the cache, since nothing has asked to read it yet.
		blockEnd := blockAddr + c.blockSize
		want := n - written
		if int(blockEnd-addr) < want {
			want = int(blockEnd - addr)
		}
		written += want
		addr += uint32(want)
	}
	return nil
}

// Erase erases the page containing addr and drops any cached block
// that falls within that page, since its contents are now stale
// (logically 0xFF, not whatever the cache held).
func (c *blockCache) Erase(addr uint32, pageSize uint32) error {
	if err := c.adapter.Erase(addr); err != nil {
		return err
	}
	page := addr - addr%pageSize
	kept := c.blocks[:0]
	for _, b := range c.blocks {
		if b.addr >= page && b.addr < page+pageSize {
			continue
		}
		kept = append(kept, b)
	}
	c.blocks = kept
	return nil
}

// Clear drops every cached block without touching the adapter.
func (c *blockCache) Clear() {
	c.blocks = nil
}
