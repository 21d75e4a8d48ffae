// Copyright 2026 The ubitlog Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package nvmsim implements an in-memory nvm.Adapter for tests and for
// the ubitlogctl demo tool, standing in for a real flash controller.
// It enforces the same rules a physical part would: Write only clears
// bits, and Erase is the only operation that can set bits back to 1,
// restricting itself to whole pages.
package nvmsim

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/ubit/ubitlog/nvm"
)

// Sim is an in-memory simulated NVM device.
type Sim struct {
	pageSize uint32
	mem      []byte

	cfg nvm.Configuration

	// Faults, when non-nil, is consulted before each operation; it lets
	// tests inject I/O failures to exercise recovery paths.
	Faults func(op string, addr uint32) error

	// Remounts counts calls to Remount, for tests asserting the host
	// was asked to re-present the container.
	Remounts int

	// WriteCount and EraseCount record operation volume, useful for
	// wear/latency assertions: cost should be dominated by at most one
	// erase plus O(n/B) writes.
	WriteCount int
	EraseCount int
}

// New returns a simulated device of the given size, with every byte
// initialized to the erased state (0xFF), as a freshly erased part
// would be.
func New(pageSize, size uint32) *Sim {
	mem := make([]byte, size)
	for i := range mem {
		mem[i] = 0xFF
	}
	return &Sim{pageSize: pageSize, mem: mem}
}

func (s *Sim) PageSize() uint32   { return s.pageSize }
func (s *Sim) FlashStart() uint32 { return 0 }
func (s *Sim) FlashEnd() uint32   { return uint32(len(s.mem)) }

func (s *Sim) fault(op string, addr uint32) error {
	if s.Faults == nil {
		return nil
	}
	if err := s.Faults(op, addr); err != nil {
		return errors.Wrapf(err, "nvmsim: %s at 0x%08X", op, addr)
	}
	return nil
}

// Read copies n bytes starting at addr into buf.
func (s *Sim) Read(addr uint32, buf []byte, n int) error {
	if err := s.fault("read", addr); err != nil {
		return err
	}
	if err := s.bounds(addr, n); err != nil {
		return err
	}
	copy(buf[:n], s.mem[addr:addr+uint32(n)])
	return nil
}

// Write programs n bytes from buf at addr. It panics if asked to set
// any bit that is currently 0, which would indicate a bug in the core
// (every real flash part refuses this silently and corrupts data; the
// simulator prefers loud failure during development).
func (s *Sim) Write(addr uint32, buf []byte, n int) error {
	if err := s.fault("write", addr); err != nil {
		return err
	}
	if err := s.bounds(addr, n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		cur := s.mem[addr+uint32(i)]
		if buf[i]&^cur != 0 {
			panic(fmt.Sprintf("nvmsim: write would set a cleared bit at 0x%08X", addr+uint32(i)))
		}
		s.mem[addr+uint32(i)] = cur & buf[i]
	}
	s.WriteCount++
	return nil
}

// Erase restores the page containing addr to all 0xFF.
func (s *Sim) Erase(addr uint32) error {
	if err := s.fault("erase", addr); err != nil {
		return err
	}
	page := addr - addr%s.pageSize
	if err := s.bounds(page, int(s.pageSize)); err != nil {
		return err
	}
	for i := uint32(0); i < s.pageSize; i++ {
		s.mem[page+i] = 0xFF
	}
	s.EraseCount++
	return nil
}

func (s *Sim) bounds(addr uint32, n int) error {
	if n < 0 || addr > uint32(len(s.mem)) || uint64(addr)+uint64(n) > uint64(len(s.mem)) {
		return errors.Errorf("nvmsim: access [0x%08X, 0x%08X) out of bounds (size %d)", addr, uint64(addr)+uint64(n), len(s.mem))
	}
	return nil
}

// SetConfiguration records the requested host presentation.
func (s *Sim) SetConfiguration(cfg nvm.Configuration) error {
	s.cfg = cfg
	return nil
}

// Configuration returns the most recently requested configuration.
func (s *Sim) Configuration() nvm.Configuration {
	return s.cfg
}

// Remount records that the host was asked to re-enumerate.
func (s *Sim) Remount() error {
	s.Remounts++
	return nil
}

// Snapshot returns a copy of the device's current contents, for tests
// that want to inspect or truncate-and-replay the medium to simulate
// crash safety for a prefix of operations.
func (s *Sim) Snapshot() []byte {
	cp := make([]byte, len(s.mem))
	copy(cp, s.mem)
	return cp
}

// Restore replaces the device's contents wholesale with a prior
// Snapshot, simulating power loss after only a prefix of operations
// reached the medium.
func (s *Sim) Restore(mem []byte) {
	copy(s.mem, mem)
}
