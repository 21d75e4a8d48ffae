// Copyright 2026 The ubitlog Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Command ubitlogctl drives a simulated ubitlog device from the
// command line, for manual testing and demos without real NVM
// hardware.
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ubit/ubitlog"
	"github.com/ubit/ubitlog/config"
	"github.com/ubit/ubitlog/log"
	"github.com/ubit/ubitlog/nvm/nvmsim"
)

// deviceConfig describes the simulated NVM geometry and logger
// tunables for one ubitlogctl invocation, loaded from a YAML file so
// demos don't require rebuilding the binary to try a different
// geometry.
type deviceConfig struct {
	PageSize        uint32 `yaml:"page_size"`
	TotalPages      uint32 `yaml:"total_pages"`
	JournalPages    uint32 `yaml:"journal_pages"`
	CacheBlockSize  uint32 `yaml:"cache_block_size"`
	CacheBlockCount int    `yaml:"cache_block_count"`
	ReplacementByte string `yaml:"replacement_byte"`
	ContainerName   string `yaml:"container_name"`
}

func defaultDeviceConfig() deviceConfig {
	return deviceConfig{
		PageSize:        2048,
		TotalPages:      16,
		JournalPages:    config.DefaultJournalPages,
		CacheBlockSize:  config.DefaultCacheBlockSize,
		CacheBlockCount: config.DefaultCacheBlockCount,
		ReplacementByte: "#",
		ContainerName:   config.DefaultContainerName,
	}
}

func loadDeviceConfig(path string) (deviceConfig, error) {
	dc := defaultDeviceConfig()
	if path == "" {
		return dc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return dc, err
	}
	if err := yaml.Unmarshal(data, &dc); err != nil {
		return dc, err
	}
	return dc, nil
}

func main() {
	log.AddFlags()
	configPath := flag.String("config", "", "path to a ubitlogctl.yaml describing simulated NVM geometry")
	dump := flag.Bool("dump", false, "print the data region contents after running")
	csvKV := flag.String("log", "", "comma-separated key=value pairs to log as a single row, e.g. -log=x=1,y=2")
	clearFull := flag.Bool("clear-full", false, "reformat, erasing the whole data region")
	flag.Parse()

	dc, err := loadDeviceConfig(*configPath)
	if err != nil {
		log.Fatalf("ubitlogctl: loading config: %v", err)
	}

	replacement := byte('#')
	if len(dc.ReplacementByte) > 0 {
		replacement = dc.ReplacementByte[0]
	}

	sim := nvmsim.New(dc.PageSize, dc.PageSize*dc.TotalPages)
	cfg := config.New(
		config.WithJournalPages(dc.JournalPages),
		config.WithCacheBlockSize(dc.CacheBlockSize),
		config.WithCacheBlockCount(dc.CacheBlockCount),
		config.WithReplacementByte(replacement),
		config.WithContainerName(dc.ContainerName),
	)

	l := ubitlog.New(sim, cfg)
	if err := l.Init(); err != nil {
		log.Fatalf("ubitlogctl: init: %v", err)
	}

	if *clearFull {
		if err := l.Clear(true); err != nil {
			log.Fatalf("ubitlogctl: clear: %v", err)
		}
	}

	if *csvKV != "" {
		if err := logRow(l, *csvKV); err != nil {
			log.Fatalf("ubitlogctl: log: %v", err)
		}
	}

	log.Info.Printf("ubitlogctl: present=%v full=%v remaining=%d", l.IsPresent(), l.IsFull(), l.Remaining())

	if *dump {
		data, err := l.DataSnapshot()
		if err != nil {
			log.Fatalf("ubitlogctl: dump: %v", err)
		}
		fmt.Print(string(data))
	}
}

func logRow(l *ubitlog.Log, spec string) error {
	if err := l.BeginRow(); err != nil {
		return err
	}
	start := 0
	for i := 0; i <= len(spec); i++ {
		if i == len(spec) || spec[i] == ',' {
			pair := spec[start:i]
			start = i + 1
			eq := -1
			for j, c := range pair {
				if c == '=' {
					eq = j
					break
				}
			}
			if eq < 0 {
				continue
			}
			if err := l.Log(pair[:eq], pair[eq+1:]); err != nil {
				return err
			}
		}
	}
	return l.EndRow()
}
