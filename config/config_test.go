// Copyright 2026 The ubitlog Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ubit/ubitlog/config"
)

func TestDefaults(t *testing.T) {
	c := config.New()
	assert.EqualValues(t, config.DefaultJournalPages, c.JournalPages)
	assert.EqualValues(t, config.DefaultCacheBlockSize, c.CacheBlockSize)
	assert.Equal(t, config.DefaultCacheBlockCount, c.CacheBlockCount)
	assert.Equal(t, byte(config.DefaultReplacementByte), c.ReplacementByte)
	assert.Equal(t, config.DefaultContainerName, c.ContainerName)
}

func TestOptionsOverride(t *testing.T) {
	c := config.New(
		config.WithJournalPages(2),
		config.WithCacheBlockSize(512),
		config.WithCacheBlockCount(8),
		config.WithReplacementByte('_'),
		config.WithContainerName("LOG.HTM"),
	)
	assert.EqualValues(t, 2, c.JournalPages)
	assert.EqualValues(t, 512, c.CacheBlockSize)
	assert.Equal(t, 8, c.CacheBlockCount)
	assert.Equal(t, byte('_'), c.ReplacementByte)
	assert.Equal(t, "LOG.HTM", c.ContainerName)
}
