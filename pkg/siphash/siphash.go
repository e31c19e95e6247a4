// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package siphash implements SipHash-2-4, a keyed 64-bit hash over byte
// strings. The dictionary uses it to spread keys across buckets and to
// resist hash-flooding from attacker-chosen keys.
package siphash

import (
	"crypto/rand"
	"encoding/binary"
	"math/bits"
	"sync"
)

// Key is the 128-bit SipHash key, stored as two little-endian words.
type Key [2]uint64

var (
	processKey     Key
	processKeyOnce sync.Once
)

// NewKey generates a random key from the system entropy source.
func NewKey() Key {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand never fails on supported platforms; a broken
		// entropy source is not something we can recover from here.
		panic("siphash: cannot read random key: " + err.Error())
	}
	return Key{
		binary.LittleEndian.Uint64(buf[0:8]),
		binary.LittleEndian.Uint64(buf[8:16]),
	}
}

// ProcessKey returns the process-wide key, generating it on first use.
// Every dictionary in the process shares this key by reference.
func ProcessKey() *Key {
	processKeyOnce.Do(func() {
		processKey = NewKey()
	})
	return &processKey
}

// HashString hashes s with the given key.
func HashString(k *Key, s string) uint64 {
	return hash(k[0], k[1], s)
}

func sipRound(v0, v1, v2, v3 uint64) (uint64, uint64, uint64, uint64) {
	v0 += v1
	v1 = bits.RotateLeft64(v1, 13)
	v1 ^= v0
	v0 = bits.RotateLeft64(v0, 32)
	v2 += v3
	v3 = bits.RotateLeft64(v3, 16)
	v3 ^= v2
	v0 += v3
	v3 = bits.RotateLeft64(v3, 21)
	v3 ^= v0
	v2 += v1
	v1 = bits.RotateLeft64(v1, 17)
	v1 ^= v2
	v2 = bits.RotateLeft64(v2, 32)
	return v0, v1, v2, v3
}

func hash(k0, k1 uint64, data string) uint64 {
	v0 := k0 ^ 0x736f6d6570736575
	v1 := k1 ^ 0x646f72616e646f6d
	v2 := k0 ^ 0x6c7967656e657261
	v3 := k1 ^ 0x7465646279746573

	n := len(data)
	end := n - n%8

	for i := 0; i < end; i += 8 {
		m := uint64(data[i]) | uint64(data[i+1])<<8 |
			uint64(data[i+2])<<16 | uint64(data[i+3])<<24 |
			uint64(data[i+4])<<32 | uint64(data[i+5])<<40 |
			uint64(data[i+6])<<48 | uint64(data[i+7])<<56

		v3 ^= m
		v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
		v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
		v0 ^= m
	}

	// Final block: remaining bytes plus the length in the top byte.
	b := uint64(n) << 56
	for i := end; i < n; i++ {
		b |= uint64(data[i]) << (8 * uint(i-end))
	}

	v3 ^= b
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0 ^= b

	v2 ^= 0xff
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)

	return v0 ^ v1 ^ v2 ^ v3
}
