// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDelExistsType(t *testing.T) {
	d := newTestDispatcher()

	dispatch(d, "SET", "s", "v")
	dispatch(d, "HSET", "h", "f", "v")
	dispatch(d, "SADD", "set", "m")

	assert.Equal(t, "+string\r\n", dispatch(d, "TYPE", "s"))
	assert.Equal(t, "+hash\r\n", dispatch(d, "TYPE", "h"))
	assert.Equal(t, "+set\r\n", dispatch(d, "TYPE", "set"))
	assert.Equal(t, "+none\r\n", dispatch(d, "TYPE", "missing"))

	assert.Equal(t, ":2\r\n", dispatch(d, "EXISTS", "s", "h", "missing"))
	assert.Equal(t, ":3\r\n", dispatch(d, "DBSIZE"))

	assert.Equal(t, ":2\r\n", dispatch(d, "DEL", "s", "h", "missing"))
	assert.Equal(t, ":1\r\n", dispatch(d, "DBSIZE"))
}

func TestKeysPattern(t *testing.T) {
	d := newTestDispatcher()
	dispatch(d, "SET", "user:1", "a")
	dispatch(d, "SET", "user:2", "b")
	dispatch(d, "SET", "other", "c")

	keys := parseStringArray(t, dispatch(d, "KEYS", "user:*"))
	assert.ElementsMatch(t, []string{"user:1", "user:2"}, keys)

	keys = parseStringArray(t, dispatch(d, "KEYS", "*"))
	assert.Len(t, keys, 3)

	keys = parseStringArray(t, dispatch(d, "KEYS", "user:?"))
	assert.Len(t, keys, 2)

	keys = parseStringArray(t, dispatch(d, "KEYS", "user:[12]"))
	assert.Len(t, keys, 2)
}

func TestExpirePersist(t *testing.T) {
	d := newTestDispatcher()
	dispatch(d, "SET", "k", "v")

	assert.Equal(t, ":1\r\n", dispatch(d, "EXPIRE", "k", "100"))
	assert.NotEqual(t, ":-1\r\n", dispatch(d, "TTL", "k"))
	assert.Equal(t, ":1\r\n", dispatch(d, "PERSIST", "k"))
	assert.Equal(t, ":-1\r\n", dispatch(d, "TTL", "k"))
	assert.Equal(t, ":0\r\n", dispatch(d, "PERSIST", "k"))

	assert.Equal(t, ":0\r\n", dispatch(d, "EXPIRE", "missing", "100"))
	assert.Equal(t, ":1\r\n", dispatch(d, "PEXPIRE", "k", "50000"))
}

func TestRename(t *testing.T) {
	d := newTestDispatcher()
	dispatch(d, "SET", "a", "v")
	dispatch(d, "EXPIRE", "a", "100")

	assert.Equal(t, "+OK\r\n", dispatch(d, "RENAME", "a", "b"))
	assert.Equal(t, ":0\r\n", dispatch(d, "EXISTS", "a"))
	assert.Equal(t, "$1\r\nv\r\n", dispatch(d, "GET", "b"))
	// TTL travels with the value.
	assert.NotEqual(t, ":-1\r\n", dispatch(d, "TTL", "b"))

	assert.Equal(t, "-ERR no such key\r\n", dispatch(d, "RENAME", "missing", "x"))
}

func TestRandomKeyFlush(t *testing.T) {
	d := newTestDispatcher()

	assert.Equal(t, "$-1\r\n", dispatch(d, "RANDOMKEY"))

	dispatch(d, "SET", "only", "v")
	assert.Equal(t, "$4\r\nonly\r\n", dispatch(d, "RANDOMKEY"))

	assert.Equal(t, "+OK\r\n", dispatch(d, "FLUSHDB"))
	assert.Equal(t, ":0\r\n", dispatch(d, "DBSIZE"))
}

func TestPingEcho(t *testing.T) {
	d := newTestDispatcher()

	assert.Equal(t, "+PONG\r\n", dispatch(d, "PING"))
	assert.Equal(t, "$5\r\nhello\r\n", dispatch(d, "PING", "hello"))
	assert.Equal(t, "$5\r\nworld\r\n", dispatch(d, "ECHO", "world"))
}
