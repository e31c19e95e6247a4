// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds server configuration: defaults, a redis.conf-style
// file parser, and environment overrides.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/pkg/errors"
)

// Config holds the server configuration
type Config struct {
	// Network configuration
	Bind string
	Port int

	// General configuration
	LogLevel string
	LogFile  string

	// Limits configuration
	MaxClients      int
	ProtoMaxBulkLen int

	// Data structure encoding
	SetMaxIntsetEntries int
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Bind:                "0.0.0.0",
		Port:                2000,
		LogLevel:            "notice",
		LogFile:             "",
		MaxClients:          10000,
		ProtoMaxBulkLen:     512 << 20,
		SetMaxIntsetEntries: 256,
	}
}

// LoadFile loads configuration from a file
func (c *Config) LoadFile(filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrap(err, "read config file")
	}
	return c.Parse(string(content))
}

// Parse parses configuration content, one "key value" pair per line.
// Comments start with #.
func (c *Config) Parse(content string) error {
	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, "#"); idx > 0 {
			line = strings.TrimSpace(line[:idx])
		}

		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		key := strings.ToLower(parts[0])
		value := strings.Join(parts[1:], " ")

		if err := c.Set(key, value); err != nil {
			return errors.Wrapf(err, "line %d", i+1)
		}
	}
	return nil
}

// Set sets a single configuration value by key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "bind":
		c.Bind = value
	case "port":
		p, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		c.Port = p
	case "loglevel":
		c.LogLevel = strings.ToLower(value)
	case "logfile":
		c.LogFile = value
	case "maxclients":
		m, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		c.MaxClients = m
	case "proto-max-bulk-len":
		var sz datasize.ByteSize
		if err := sz.UnmarshalText([]byte(value)); err != nil {
			return err
		}
		c.ProtoMaxBulkLen = int(sz.Bytes())
	case "set-max-intset-entries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		if n > 0 {
			c.SetMaxIntsetEntries = n
		}
	default:
		// Unknown config key, ignore
	}
	return nil
}

// Get returns a configuration value by key (for CONFIG GET style access).
func (c *Config) Get(key string) (string, bool) {
	switch strings.ToLower(key) {
	case "bind":
		return c.Bind, true
	case "port":
		return strconv.Itoa(c.Port), true
	case "loglevel":
		return c.LogLevel, true
	case "logfile":
		return c.LogFile, true
	case "maxclients":
		return strconv.Itoa(c.MaxClients), true
	case "proto-max-bulk-len":
		return strconv.Itoa(c.ProtoMaxBulkLen), true
	case "set-max-intset-entries":
		return strconv.Itoa(c.SetMaxIntsetEntries), true
	default:
		return "", false
	}
}

// ApplyEnv applies environment overrides: SET_MAX_ZIPLIST_ENTRIES replaces
// the intset cardinality limit when positive, DEBUG raises log verbosity.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SET_MAX_ZIPLIST_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.SetMaxIntsetEntries = n
		}
	}
	if os.Getenv("DEBUG") != "" {
		c.LogLevel = "debug"
	}
}
