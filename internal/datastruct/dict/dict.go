// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dict implements the chained hash table with incremental rehash
// that backs the keyspace, the expiry index, hash values and
// hashtable-encoded sets.
package dict

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/jbreiding/minidis/pkg/siphash"
)

// Dict is a chained hash table with incremental rehash. It backs the
// keyspace, the expiry index, hash values and hashtable-encoded sets.
//
// All methods run on the event loop thread; the structure is not safe for
// concurrent use.
type Dict struct {
	seed *siphash.Key

	// ht[1] is allocated only while rehashing.
	ht [2]*dictTable

	// rehashIdx is the next ht[0] bucket to migrate, -1 when idle.
	rehashIdx int64
}

// dictTable is a single hash table
type dictTable struct {
	table    []*dictEntry
	size     uint64
	sizemask uint64
	used     uint64
}

// dictEntry is a key-value pair chained within its bucket.
type dictEntry struct {
	key   string
	value interface{}
	next  *dictEntry
}

const (
	dictInitialSize = 4

	// dictMaxSize is the hard cap on entries; insertion fails beyond it.
	dictMaxSize = uint64(1) << 63
)

// ErrDictFull is returned when an insertion would exceed the size cap.
var ErrDictFull = errors.New("dict: maximum size reached")

func newTable(size uint64) *dictTable {
	return &dictTable{
		table:    make([]*dictEntry, size),
		size:     size,
		sizemask: size - 1,
	}
}

func emptyTable() *dictTable {
	return &dictTable{}
}

// New creates a dictionary hashed with the process-wide SipHash key.
func New() *Dict {
	return NewWithKey(siphash.ProcessKey())
}

// NewWithKey creates a dictionary with an explicit hash key.
func NewWithKey(seed *siphash.Key) *Dict {
	d := &Dict{
		seed:      seed,
		rehashIdx: -1,
	}
	d.ht[0] = newTable(dictInitialSize)
	d.ht[1] = emptyTable()
	return d
}

// Len returns the number of live entries across both tables.
func (d *Dict) Len() int {
	return int(d.ht[0].used + d.ht[1].used)
}

// IsRehashing returns true while entries are migrating between tables.
func (d *Dict) IsRehashing() bool {
	return d.rehashIdx != -1
}

func (d *Dict) hash(key string) uint64 {
	return siphash.HashString(d.seed, key)
}

// Get returns the value stored under key.
func (d *Dict) Get(key string) (interface{}, bool) {
	if ent := d.find(key); ent != nil {
		return ent.value, true
	}
	return nil, false
}

// Exists checks if a key exists
func (d *Dict) Exists(key string) bool {
	return d.find(key) != nil
}

func (d *Dict) find(key string) *dictEntry {
	if d.ht[0].used == 0 && d.ht[1].used == 0 {
		return nil
	}

	if d.IsRehashing() {
		d.rehash(1)
	}

	h := d.hash(key)
	for i := 0; i < 2; i++ {
		ent := d.ht[i].table[h&d.ht[i].sizemask]
		for ent != nil {
			if ent.key == key {
				return ent
			}
			ent = ent.next
		}
		if !d.IsRehashing() {
			break
		}
	}
	return nil
}

// Set stores value under key, overwriting any previous value. The entry
// count only changes when the key is new.
func (d *Dict) Set(key string, value interface{}) error {
	if d.IsRehashing() {
		d.rehash(1)
	}

	// Overwrite in place if the key is already present in either table.
	h := d.hash(key)
	for i := 0; i < 2; i++ {
		ent := d.ht[i].table[h&d.ht[i].sizemask]
		for ent != nil {
			if ent.key == key {
				ent.value = value
				return nil
			}
			ent = ent.next
		}
		if !d.IsRehashing() {
			break
		}
	}

	if d.ht[0].used+d.ht[1].used >= dictMaxSize {
		return ErrDictFull
	}

	d.expandIfNeeded()

	// New keys go to the destination table while rehashing, so they are
	// never migrated twice.
	ht := d.ht[0]
	if d.IsRehashing() {
		ht = d.ht[1]
	}

	idx := h & ht.sizemask
	ht.table[idx] = &dictEntry{key: key, value: value, next: ht.table[idx]}
	ht.used++
	return nil
}

// SetNX stores value only when key is absent. Returns true if stored.
func (d *Dict) SetNX(key string, value interface{}) bool {
	if d.Exists(key) {
		return false
	}
	return d.Set(key, value) == nil
}

// Delete unlinks key from its bucket chain. Returns the removed value.
func (d *Dict) Delete(key string) (interface{}, bool) {
	if d.ht[0].used == 0 && d.ht[1].used == 0 {
		return nil, false
	}

	if d.IsRehashing() {
		d.rehash(1)
	}

	h := d.hash(key)
	for i := 0; i < 2; i++ {
		idx := h & d.ht[i].sizemask
		ent := d.ht[i].table[idx]
		var prev *dictEntry
		for ent != nil {
			if ent.key == key {
				if prev == nil {
					d.ht[i].table[idx] = ent.next
				} else {
					prev.next = ent.next
				}
				d.ht[i].used--
				return ent.value, true
			}
			prev = ent
			ent = ent.next
		}
		if !d.IsRehashing() {
			break
		}
	}
	return nil, false
}

// Each visits every live entry exactly once, in unspecified order. The
// callback returns false to stop early. The dictionary must not be mutated
// during iteration.
func (d *Dict) Each(f func(key string, value interface{}) bool) {
	for i := 0; i < 2; i++ {
		for _, ent := range d.ht[i].table {
			for ent != nil {
				if !f(ent.key, ent.value) {
					return
				}
				ent = ent.next
			}
		}
		if !d.IsRehashing() {
			break
		}
	}
}

// Keys returns all keys in the dictionary
func (d *Dict) Keys() []string {
	keys := make([]string, 0, d.Len())
	d.Each(func(key string, _ interface{}) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// RandomEntry returns a random live entry. It picks a random non-empty
// bucket, then a uniformly chosen entry of that bucket's chain, so the
// pick is not uniform across entries: an entry sharing its bucket with
// others is less likely to be returned than an entry alone in its bucket.
func (d *Dict) RandomEntry() (string, interface{}, bool) {
	if d.Len() == 0 {
		return "", nil, false
	}

	if d.IsRehashing() {
		d.rehash(1)
	}

	var ent *dictEntry
	if d.IsRehashing() {
		// Buckets below rehashIdx in ht[0] are already empty; sample the
		// remaining window of ht[0] plus all of ht[1].
		window := d.ht[0].size - uint64(d.rehashIdx) + d.ht[1].size
		for ent == nil {
			idx := uint64(d.rehashIdx) + rand.Uint64N(window)
			if idx >= d.ht[0].size {
				ent = d.ht[1].table[idx-d.ht[0].size]
			} else {
				ent = d.ht[0].table[idx]
			}
		}
	} else {
		for ent == nil {
			ent = d.ht[0].table[rand.Uint64N(d.ht[0].size)]
		}
	}

	// Second pass: uniform position within the chosen chain.
	chainLen := 0
	for e := ent; e != nil; e = e.next {
		chainLen++
	}
	for n := rand.IntN(chainLen); n > 0; n-- {
		ent = ent.next
	}
	return ent.key, ent.value, true
}

// Clear removes all entries from the dictionary
func (d *Dict) Clear() {
	d.ht[0] = newTable(dictInitialSize)
	d.ht[1] = emptyTable()
	d.rehashIdx = -1
}

// expandIfNeeded grows the table when every bucket is occupied on average.
func (d *Dict) expandIfNeeded() {
	if d.IsRehashing() {
		return
	}
	if d.ht[0].used >= d.ht[0].size {
		d.startRehash(d.ht[0].used * 2)
	}
}

// Resize shrinks the table to the smallest power of two that holds the
// current entries. It is an operator-triggered compaction; shrinking never
// happens automatically.
func (d *Dict) Resize() {
	if d.IsRehashing() {
		return
	}
	size := d.ht[0].used
	if size < dictInitialSize {
		size = dictInitialSize
	}
	if nextPowerOfTwo(size) >= d.ht[0].size {
		return
	}
	d.startRehash(size)
}

func (d *Dict) startRehash(size uint64) {
	newSize := nextPowerOfTwo(size)
	if newSize == d.ht[0].size {
		return
	}
	d.ht[1] = newTable(newSize)
	d.rehashIdx = 0
}

// rehash migrates up to n non-empty buckets from ht[0] to ht[1]. Empty
// bucket visits are bounded to n*10 so a sparse table cannot stall the
// caller. Returns true while migration work remains.
func (d *Dict) rehash(n int) bool {
	if !d.IsRehashing() {
		return false
	}

	emptyVisits := n * 10
	for ; n > 0 && d.ht[0].used != 0; n-- {
		for d.ht[0].table[d.rehashIdx] == nil {
			d.rehashIdx++
			emptyVisits--
			if emptyVisits == 0 {
				return true
			}
		}

		ent := d.ht[0].table[d.rehashIdx]
		for ent != nil {
			next := ent.next
			idx := d.hash(ent.key) & d.ht[1].sizemask
			ent.next = d.ht[1].table[idx]
			d.ht[1].table[idx] = ent
			d.ht[0].used--
			d.ht[1].used++
			ent = next
		}
		d.ht[0].table[d.rehashIdx] = nil
		d.rehashIdx++
	}

	if d.ht[0].used == 0 {
		d.ht[0] = d.ht[1]
		d.ht[1] = emptyTable()
		d.rehashIdx = -1
		return false
	}
	return true
}

// RehashMilliseconds performs rehash work in steps of 100 buckets until
// rehashing completes or the wall-clock budget is spent. Returns the number
// of steps performed.
func (d *Dict) RehashMilliseconds(ms int64) int {
	start := time.Now()
	steps := 0
	for d.IsRehashing() {
		d.rehash(100)
		steps++
		if time.Since(start).Milliseconds() > ms {
			break
		}
	}
	return steps
}

func nextPowerOfTwo(n uint64) uint64 {
	size := uint64(dictInitialSize)
	for size < n {
		if size >= dictMaxSize {
			return dictMaxSize
		}
		size *= 2
	}
	return size
}
