// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetBitGetBit(t *testing.T) {
	d := newTestDispatcher()

	assert.Equal(t, ":0\r\n", dispatch(d, "SETBIT", "k", "7", "1"))
	assert.Equal(t, ":1\r\n", dispatch(d, "GETBIT", "k", "7"))
	assert.Equal(t, ":0\r\n", dispatch(d, "GETBIT", "k", "0"))
	assert.Equal(t, ":1\r\n", dispatch(d, "STRLEN", "k"))

	// Previous value comes back on overwrite.
	assert.Equal(t, ":1\r\n", dispatch(d, "SETBIT", "k", "7", "0"))
	assert.Equal(t, ":0\r\n", dispatch(d, "GETBIT", "k", "7"))

	// Missing key reads as all-zero.
	assert.Equal(t, ":0\r\n", dispatch(d, "GETBIT", "missing", "1234"))

	assert.Equal(t, "-ERR bit offset is not an integer or out of range\r\n",
		dispatch(d, "SETBIT", "k", "-1", "1"))
	assert.Equal(t, "-ERR bit is not an integer or out of range\r\n",
		dispatch(d, "SETBIT", "k", "0", "2"))
}

func TestSetBitGrowsString(t *testing.T) {
	d := newTestDispatcher()

	dispatch(d, "SETBIT", "k", "1000000", "1")
	assert.Equal(t, ":125001\r\n", dispatch(d, "STRLEN", "k"))
	assert.Equal(t, ":1\r\n", dispatch(d, "GETBIT", "k", "1000000"))
}

func TestBitOp(t *testing.T) {
	d := newTestDispatcher()

	dispatch(d, "SET", "a", "\xff\xf0")
	dispatch(d, "SET", "b", "\x0f")

	assert.Equal(t, ":2\r\n", dispatch(d, "BITOP", "AND", "dest", "a", "b"))
	assert.Equal(t, "$2\r\n\x0f\x00\r\n", dispatch(d, "GET", "dest"))

	assert.Equal(t, ":2\r\n", dispatch(d, "BITOP", "OR", "dest", "a", "b"))
	assert.Equal(t, "$2\r\n\xff\xf0\r\n", dispatch(d, "GET", "dest"))

	assert.Equal(t, ":2\r\n", dispatch(d, "BITOP", "XOR", "dest", "a", "b"))
	assert.Equal(t, "$2\r\n\xf0\xf0\r\n", dispatch(d, "GET", "dest"))

	assert.Equal(t, ":1\r\n", dispatch(d, "BITOP", "NOT", "dest", "b"))
	assert.Equal(t, "$1\r\n\xf0\r\n", dispatch(d, "GET", "dest"))

	// NOT is unary.
	assert.Equal(t, "-ERR wrong number of arguments for 'bitop' command\r\n",
		dispatch(d, "BITOP", "NOT", "dest", "a", "b"))
	assert.Equal(t, "-ERR syntax error\r\n", dispatch(d, "BITOP", "NAND", "dest", "a", "b"))

	// All-missing inputs produce an empty result, which deletes dest.
	dispatch(d, "SET", "dest", "old")
	assert.Equal(t, ":0\r\n", dispatch(d, "BITOP", "AND", "dest", "m1", "m2"))
	assert.Equal(t, ":0\r\n", dispatch(d, "EXISTS", "dest"))
}

func TestBitCountCommand(t *testing.T) {
	d := newTestDispatcher()
	dispatch(d, "SET", "k", "foobar")

	assert.Equal(t, ":26\r\n", dispatch(d, "BITCOUNT", "k"))
	assert.Equal(t, ":4\r\n", dispatch(d, "BITCOUNT", "k", "0", "0"))
	assert.Equal(t, ":6\r\n", dispatch(d, "BITCOUNT", "k", "1", "1"))
	assert.Equal(t, ":0\r\n", dispatch(d, "BITCOUNT", "missing"))
	assert.Equal(t, "-ERR syntax error\r\n", dispatch(d, "BITCOUNT", "k", "0"))
}

func TestBitPosCommand(t *testing.T) {
	d := newTestDispatcher()
	dispatch(d, "SET", "k", "\x00\x0f")

	assert.Equal(t, ":12\r\n", dispatch(d, "BITPOS", "k", "1"))
	assert.Equal(t, ":0\r\n", dispatch(d, "BITPOS", "k", "0"))

	dispatch(d, "SET", "ones", "\xff\xff")
	assert.Equal(t, ":16\r\n", dispatch(d, "BITPOS", "ones", "0"))
	assert.Equal(t, ":-1\r\n", dispatch(d, "BITPOS", "ones", "0", "0", "1"))

	assert.Equal(t, ":0\r\n", dispatch(d, "BITPOS", "missing", "0"))
	assert.Equal(t, ":-1\r\n", dispatch(d, "BITPOS", "missing", "1"))
}

func TestBitField(t *testing.T) {
	d := newTestDispatcher()

	assert.Equal(t, "*2\r\n:0\r\n:255\r\n",
		dispatch(d, "BITFIELD", "bf", "SET", "u8", "0", "255", "GET", "u8", "0"))

	// Signed view of the same byte.
	assert.Equal(t, "*1\r\n:-1\r\n", dispatch(d, "BITFIELD", "bf", "GET", "i8", "0"))

	// #-style offsets address whole fields.
	dispatch(d, "BITFIELD", "bf", "SET", "u8", "#1", "7")
	assert.Equal(t, "*1\r\n:7\r\n", dispatch(d, "BITFIELD", "bf", "GET", "u8", "8"))

	// Default overflow wraps.
	assert.Equal(t, "*2\r\n:0\r\n:4\r\n",
		dispatch(d, "BITFIELD", "wrap", "SET", "u8", "0", "250", "INCRBY", "u8", "0", "10"))

	// SAT clamps, FAIL yields nil.
	dispatch(d, "BITFIELD", "sat", "SET", "u8", "0", "250")
	assert.Equal(t, "*1\r\n:255\r\n",
		dispatch(d, "BITFIELD", "sat", "OVERFLOW", "SAT", "INCRBY", "u8", "0", "10"))
	dispatch(d, "BITFIELD", "fail", "SET", "u8", "0", "250")
	assert.Equal(t, "*1\r\n$-1\r\n",
		dispatch(d, "BITFIELD", "fail", "OVERFLOW", "FAIL", "INCRBY", "u8", "0", "10"))

	// Reads of a missing key see zeros and do not create it.
	assert.Equal(t, "*1\r\n:0\r\n", dispatch(d, "BITFIELD", "ro", "GET", "u16", "0"))
	assert.Equal(t, ":0\r\n", dispatch(d, "EXISTS", "ro"))

	assert.Equal(t, "-ERR syntax error\r\n", dispatch(d, "BITFIELD", "bf", "GET", "q8", "0"))
	assert.Equal(t, "-ERR Invalid OVERFLOW type specified\r\n",
		dispatch(d, "BITFIELD", "bf", "OVERFLOW", "MAYBE", "GET", "u8", "0"))
}
