// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbreiding/minidis/internal/command"
	"github.com/jbreiding/minidis/internal/database"
)

func newTestDispatcher() *command.Dispatcher {
	disp := command.NewDispatcher(database.NewDB())
	RegisterAll(disp)
	return disp
}

func dispatch(d *command.Dispatcher, name string, args ...string) string {
	return string(d.Dispatch(name, args))
}

func TestSetGet(t *testing.T) {
	d := newTestDispatcher()

	assert.Equal(t, "+OK\r\n", dispatch(d, "SET", "foo", "bar"))
	assert.Equal(t, "$3\r\nbar\r\n", dispatch(d, "GET", "foo"))
	assert.Equal(t, "$-1\r\n", dispatch(d, "GET", "missing"))
}

func TestSetOptions(t *testing.T) {
	d := newTestDispatcher()

	// NX only sets absent keys.
	assert.Equal(t, "+OK\r\n", dispatch(d, "SET", "k", "v1", "NX"))
	assert.Equal(t, "$-1\r\n", dispatch(d, "SET", "k", "v2", "NX"))
	assert.Equal(t, "$2\r\nv1\r\n", dispatch(d, "GET", "k"))

	// XX only sets present keys.
	assert.Equal(t, "$-1\r\n", dispatch(d, "SET", "other", "v", "XX"))
	assert.Equal(t, "+OK\r\n", dispatch(d, "SET", "k", "v3", "XX"))

	// NX with XX is a syntax error, as is an unknown token.
	assert.Equal(t, "-ERR syntax error\r\n", dispatch(d, "SET", "k", "v", "NX", "XX"))
	assert.Equal(t, "-ERR syntax error\r\n", dispatch(d, "SET", "k", "v", "BOGUS"))

	// EX rejects non-positive and non-integer TTLs.
	assert.Equal(t, "-ERR invalid expire time\r\n", dispatch(d, "SET", "k", "v", "EX", "0"))
	assert.Equal(t, "-ERR value is not an integer or out of range\r\n",
		dispatch(d, "SET", "k", "v", "EX", "abc"))
}

func TestSetTTLAndKeepTTL(t *testing.T) {
	d := newTestDispatcher()

	dispatch(d, "SET", "k", "v", "EX", "100")
	ttl := dispatch(d, "TTL", "k")
	assert.Contains(t, []string{":100\r\n", ":99\r\n"}, ttl)

	// Plain SET discards the TTL.
	dispatch(d, "SET", "k", "v2")
	assert.Equal(t, ":-1\r\n", dispatch(d, "TTL", "k"))

	// KEEPTTL preserves it.
	dispatch(d, "SET", "k", "v", "PX", "100000")
	dispatch(d, "SET", "k", "v2", "KEEPTTL")
	assert.NotEqual(t, ":-1\r\n", dispatch(d, "TTL", "k"))

	assert.Equal(t, ":-2\r\n", dispatch(d, "TTL", "missing"))
	assert.Equal(t, ":-2\r\n", dispatch(d, "PTTL", "missing"))
}

func TestExpiryEviction(t *testing.T) {
	d := newTestDispatcher()

	dispatch(d, "SET", "k", "v", "PX", "30")
	assert.Equal(t, "$1\r\nv\r\n", dispatch(d, "GET", "k"))

	time.Sleep(40 * time.Millisecond)
	// Lazy expiry on access.
	assert.Equal(t, "$-1\r\n", dispatch(d, "GET", "k"))
	assert.Equal(t, ":0\r\n", dispatch(d, "EXISTS", "k"))
}

func TestIncrDecr(t *testing.T) {
	d := newTestDispatcher()

	assert.Equal(t, ":1\r\n", dispatch(d, "INCR", "n"))
	assert.Equal(t, ":3\r\n", dispatch(d, "INCRBY", "n", "2"))
	assert.Equal(t, ":2\r\n", dispatch(d, "DECR", "n"))
	assert.Equal(t, ":-8\r\n", dispatch(d, "DECRBY", "n", "10"))

	dispatch(d, "SET", "s", "abc")
	assert.Equal(t, "-ERR value is not an integer or out of range\r\n", dispatch(d, "INCR", "s"))

	dispatch(d, "SET", "big", "9223372036854775807")
	assert.Equal(t, "-ERR increment or decrement would overflow\r\n", dispatch(d, "INCR", "big"))
}

func TestAppendStrlenRanges(t *testing.T) {
	d := newTestDispatcher()

	assert.Equal(t, ":5\r\n", dispatch(d, "APPEND", "k", "Hello"))
	assert.Equal(t, ":11\r\n", dispatch(d, "APPEND", "k", " World"))
	assert.Equal(t, ":11\r\n", dispatch(d, "STRLEN", "k"))
	assert.Equal(t, ":0\r\n", dispatch(d, "STRLEN", "missing"))
	assert.Equal(t, "$5\r\nHello\r\n", dispatch(d, "GETRANGE", "k", "0", "4"))
	assert.Equal(t, "$5\r\nWorld\r\n", dispatch(d, "GETRANGE", "k", "-5", "-1"))
}

func TestMSetMGet(t *testing.T) {
	d := newTestDispatcher()

	assert.Equal(t, "+OK\r\n", dispatch(d, "MSET", "a", "1", "b", "2"))
	assert.Equal(t, "*3\r\n$1\r\n1\r\n$1\r\n2\r\n$-1\r\n", dispatch(d, "MGET", "a", "b", "nope"))
	assert.Equal(t, "-ERR wrong number of arguments for 'MSET' command\r\n",
		dispatch(d, "MSET", "a", "1", "b"))
}

func TestWrongType(t *testing.T) {
	d := newTestDispatcher()

	dispatch(d, "SADD", "s", "x")
	assert.Equal(t, "-WRONGTYPE Operation against a key holding the wrong kind of value\r\n",
		dispatch(d, "GET", "s"))
	assert.Equal(t, "-WRONGTYPE Operation against a key holding the wrong kind of value\r\n",
		dispatch(d, "INCR", "s"))
}

func TestArityAndUnknown(t *testing.T) {
	d := newTestDispatcher()

	assert.Equal(t, "-ERR wrong number of arguments for 'GET' command\r\n", dispatch(d, "GET"))
	assert.Equal(t, "-ERR wrong number of arguments for 'SET' command\r\n", dispatch(d, "SET", "k"))
	assert.Equal(t, "-ERR unknown command 'NOPE'\r\n", dispatch(d, "NOPE", "x"))

	// Command names are case-insensitive.
	assert.Equal(t, "+OK\r\n", dispatch(d, "set", "k", "v"))
	assert.Equal(t, "$1\r\nv\r\n", dispatch(d, "get", "k"))
}

func TestValidationBeforeMutation(t *testing.T) {
	d := newTestDispatcher()
	dispatch(d, "SET", "k", "5")

	// A failed validation leaves the value untouched.
	require.Contains(t, dispatch(d, "INCRBY", "k", "abc"), "-ERR")
	assert.Equal(t, "$1\r\n5\r\n", dispatch(d, "GET", "k"))
}
