// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package expire tracks key deadlines and performs the bounded
// probabilistic sweep the maintenance tick runs.
package expire

import (
	"github.com/jbreiding/minidis/internal/datastruct/dict"
)

// MaxLookupsPerCycle bounds how many tracked keys one sweep samples.
const MaxLookupsPerCycle = 20

// Index maps keys to absolute deadlines in milliseconds since the epoch.
// Every key in the index is also present in the keyspace; the keyspace
// removes entries here whenever it drops or overwrites a key.
type Index struct {
	deadlines *dict.Dict
}

// NewIndex creates an empty expiry index.
func NewIndex() *Index {
	return &Index{deadlines: dict.New()}
}

// Set records the deadline for a key.
func (ix *Index) Set(key string, atMs int64) {
	ix.deadlines.Set(key, atMs)
}

// Get returns the deadline for a key.
func (ix *Index) Get(key string) (int64, bool) {
	v, ok := ix.deadlines.Get(key)
	if !ok {
		return 0, false
	}
	return v.(int64), true
}

// Remove drops the deadline for a key. Returns true if one was tracked.
func (ix *Index) Remove(key string) bool {
	_, removed := ix.deadlines.Delete(key)
	return removed
}

// Len returns the number of tracked keys.
func (ix *Index) Len() int {
	return ix.deadlines.Len()
}

// IsExpired reports whether key has a deadline at or before now.
func (ix *Index) IsExpired(key string, nowMs int64) bool {
	deadline, ok := ix.Get(key)
	return ok && deadline <= nowMs
}

// Sweep samples up to MaxLookupsPerCycle tracked keys and evicts the
// expired ones through onExpire, which must remove the key from the
// keyspace. Random sampling makes progress across calls without cursor
// state. Returns the number of keys expired.
func (ix *Index) Sweep(nowMs int64, onExpire func(key string)) int {
	expired := 0
	for i := 0; i < MaxLookupsPerCycle; i++ {
		key, v, ok := ix.deadlines.RandomEntry()
		if !ok {
			break
		}
		if v.(int64) <= nowMs {
			ix.deadlines.Delete(key)
			onExpire(key)
			expired++
		}
	}
	return expired
}

// Dict exposes the underlying dictionary so the maintenance tick can
// drive its incremental rehash.
func (ix *Index) Dict() *dict.Dict {
	return ix.deadlines
}
