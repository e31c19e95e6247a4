// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package intset implements a packed, sorted array of signed integers with
// an element width that adapts to the stored values.
package intset

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
)

// Encoding is the per-element width in bytes.
type Encoding uint8

const (
	EncodingInt16 Encoding = 2
	EncodingInt32 Encoding = 4
	EncodingInt64 Encoding = 8
)

// IntSet stores its elements strictly ascending in a packed byte slice.
// The encoding is the minimum width that fits every element and is never
// downgraded on removal.
type IntSet struct {
	encoding Encoding
	contents []byte
	length   int
}

// New creates an empty intset with the narrowest encoding.
func New() *IntSet {
	return &IntSet{encoding: EncodingInt16}
}

func encodingFor(v int64) Encoding {
	switch {
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return EncodingInt16
	case v >= math.MinInt32 && v <= math.MaxInt32:
		return EncodingInt32
	default:
		return EncodingInt64
	}
}

// Len returns the number of elements.
func (is *IntSet) Len() int {
	return is.length
}

// Encoding returns the current element width.
func (is *IntSet) Encoding() Encoding {
	return is.encoding
}

func (is *IntSet) get(pos int) int64 {
	return is.getEncoded(pos, is.encoding)
}

func (is *IntSet) getEncoded(pos int, enc Encoding) int64 {
	off := pos * int(enc)
	switch enc {
	case EncodingInt16:
		return int64(int16(binary.LittleEndian.Uint16(is.contents[off:])))
	case EncodingInt32:
		return int64(int32(binary.LittleEndian.Uint32(is.contents[off:])))
	default:
		return int64(binary.LittleEndian.Uint64(is.contents[off:]))
	}
}

func (is *IntSet) set(pos int, v int64) {
	off := pos * int(is.encoding)
	switch is.encoding {
	case EncodingInt16:
		binary.LittleEndian.PutUint16(is.contents[off:], uint16(int16(v)))
	case EncodingInt32:
		binary.LittleEndian.PutUint32(is.contents[off:], uint32(int32(v)))
	default:
		binary.LittleEndian.PutUint64(is.contents[off:], uint64(v))
	}
}

// search finds the position of v, or the position where it would be
// inserted. The second return is true when v is present.
func (is *IntSet) search(v int64) (int, bool) {
	lo, hi := 0, is.length-1
	if is.length == 0 {
		return 0, false
	}

	// Fast paths for the common append/prepend cases.
	if v > is.get(is.length-1) {
		return is.length, false
	}
	if v < is.get(0) {
		return 0, false
	}

	for lo <= hi {
		mid := int(uint(lo+hi) >> 1)
		cur := is.get(mid)
		switch {
		case v == cur:
			return mid, true
		case v > cur:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return lo, false
}

// Contains reports whether v is in the set.
func (is *IntSet) Contains(v int64) bool {
	if encodingFor(v) > is.encoding {
		return false
	}
	_, found := is.search(v)
	return found
}

// Add inserts v, keeping the array sorted. Returns false if v was already
// present.
func (is *IntSet) Add(v int64) bool {
	if enc := encodingFor(v); enc > is.encoding {
		is.upgradeAdd(v, enc)
		return true
	}

	pos, found := is.search(v)
	if found {
		return false
	}

	is.contents = append(is.contents, make([]byte, is.encoding)...)
	is.length++

	// Shift the tail one slot to the right.
	width := int(is.encoding)
	copy(is.contents[(pos+1)*width:], is.contents[pos*width:(is.length-1)*width])
	is.set(pos, v)
	return true
}

// upgradeAdd re-encodes every element at the wider width and inserts v.
// The new element does not fit the old encoding, so it is by construction
// either the new minimum or the new maximum.
func (is *IntSet) upgradeAdd(v int64, enc Encoding) {
	old := is.encoding
	prepend := 0
	if v < 0 {
		prepend = 1
	}

	is.contents = append(is.contents, make([]byte, (is.length+1)*int(enc)-is.length*int(old))...)
	is.encoding = enc

	// Re-encode back to front so nothing is overwritten before it is read.
	for i := is.length - 1; i >= 0; i-- {
		is.set(i+prepend, is.getEncoded(i, old))
	}

	if prepend == 1 {
		is.set(0, v)
	} else {
		is.set(is.length, v)
	}
	is.length++
}

// Remove deletes v from the set. Returns true if it was present.
func (is *IntSet) Remove(v int64) bool {
	if encodingFor(v) > is.encoding {
		return false
	}
	pos, found := is.search(v)
	if !found {
		return false
	}

	width := int(is.encoding)
	copy(is.contents[pos*width:], is.contents[(pos+1)*width:])
	is.contents = is.contents[:(is.length-1)*width]
	is.length--
	return true
}

// Get returns the element at position pos in ascending order.
func (is *IntSet) Get(pos int) (int64, bool) {
	if pos < 0 || pos >= is.length {
		return 0, false
	}
	return is.get(pos), true
}

// Random returns a random element.
func (is *IntSet) Random() (int64, bool) {
	if is.length == 0 {
		return 0, false
	}
	return is.get(rand.IntN(is.length)), true
}

// Pop removes and returns a random element.
func (is *IntSet) Pop() (int64, bool) {
	v, ok := is.Random()
	if !ok {
		return 0, false
	}
	is.Remove(v)
	return v, true
}

// Each visits elements in ascending order until f returns false.
func (is *IntSet) Each(f func(v int64) bool) {
	for i := 0; i < is.length; i++ {
		if !f(is.get(i)) {
			return
		}
	}
}
