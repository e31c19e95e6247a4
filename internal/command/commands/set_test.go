// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSAddSMembers(t *testing.T) {
	d := newTestDispatcher()

	assert.Equal(t, ":3\r\n", dispatch(d, "SADD", "s", "a", "b", "c"))
	assert.Equal(t, ":1\r\n", dispatch(d, "SADD", "s", "a", "d"))
	assert.Equal(t, ":4\r\n", dispatch(d, "SCARD", "s"))

	members := parseStringArray(t, dispatch(d, "SMEMBERS", "s"))
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, members)

	assert.Equal(t, ":1\r\n", dispatch(d, "SISMEMBER", "s", "a"))
	assert.Equal(t, ":0\r\n", dispatch(d, "SISMEMBER", "s", "z"))
	assert.Equal(t, "*2\r\n:1\r\n:0\r\n", dispatch(d, "SMISMEMBER", "s", "a", "z"))
}

func TestSRem(t *testing.T) {
	d := newTestDispatcher()
	dispatch(d, "SADD", "s", "a", "b")

	assert.Equal(t, ":1\r\n", dispatch(d, "SREM", "s", "a", "z"))
	// Removing the last member drops the key.
	dispatch(d, "SREM", "s", "b")
	assert.Equal(t, ":0\r\n", dispatch(d, "EXISTS", "s"))
	assert.Equal(t, ":0\r\n", dispatch(d, "SREM", "missing", "x"))
}

// TestSetEncodingUpgradeThroughCommands is the 257-integer scenario: the
// 257th distinct small integer flips the encoding to hashtable.
func TestSetEncodingUpgradeThroughCommands(t *testing.T) {
	d := newTestDispatcher()

	for i := 0; i < 257; i++ {
		dispatch(d, "SADD", "nums", strconv.Itoa(i))
	}

	obj, ok := d.DB().Get("nums")
	require.True(t, ok)
	assert.Equal(t, "hashtable", obj.Encoding())

	members := parseStringArray(t, dispatch(d, "SMEMBERS", "nums"))
	require.Len(t, members, 257)
	want := make([]string, 257)
	for i := range want {
		want[i] = strconv.Itoa(i)
	}
	assert.ElementsMatch(t, want, members)

	// One under the limit stays intset.
	for i := 0; i < 256; i++ {
		dispatch(d, "SADD", "small", strconv.Itoa(i))
	}
	obj, ok = d.DB().Get("small")
	require.True(t, ok)
	assert.Equal(t, "intset", obj.Encoding())
}

func TestSPop(t *testing.T) {
	d := newTestDispatcher()
	dispatch(d, "SADD", "s", "a", "b", "c")

	popped := dispatch(d, "SPOP", "s")
	assert.Contains(t, []string{"$1\r\na\r\n", "$1\r\nb\r\n", "$1\r\nc\r\n"}, popped)
	assert.Equal(t, ":2\r\n", dispatch(d, "SCARD", "s"))

	// Count at or above the cardinality empties the set and drops the key.
	out := parseStringArray(t, dispatch(d, "SPOP", "s", "5"))
	assert.Len(t, out, 2)
	assert.Equal(t, ":0\r\n", dispatch(d, "EXISTS", "s"))

	assert.Equal(t, "$-1\r\n", dispatch(d, "SPOP", "missing"))
	assert.Equal(t, "*0\r\n", dispatch(d, "SPOP", "missing", "3"))
	assert.Equal(t, "-ERR value is not an integer or out of range\r\n",
		dispatch(d, "SPOP", "s", "-1"))
}

func TestSRandMember(t *testing.T) {
	d := newTestDispatcher()
	dispatch(d, "SADD", "s", "a", "b", "c")

	one := dispatch(d, "SRANDMEMBER", "s")
	assert.Contains(t, []string{"$1\r\na\r\n", "$1\r\nb\r\n", "$1\r\nc\r\n"}, one)
	// Sampling does not remove.
	assert.Equal(t, ":3\r\n", dispatch(d, "SCARD", "s"))

	all := parseStringArray(t, dispatch(d, "SRANDMEMBER", "s", "10"))
	assert.ElementsMatch(t, []string{"a", "b", "c"}, all)

	withReplacement := parseStringArray(t, dispatch(d, "SRANDMEMBER", "s", "-7"))
	assert.Len(t, withReplacement, 7)

	assert.Equal(t, "$-1\r\n", dispatch(d, "SRANDMEMBER", "missing"))
}

func TestSMove(t *testing.T) {
	d := newTestDispatcher()
	dispatch(d, "SADD", "src", "a", "b")
	dispatch(d, "SADD", "dst", "c")

	assert.Equal(t, ":1\r\n", dispatch(d, "SMOVE", "src", "dst", "a"))
	assert.Equal(t, ":0\r\n", dispatch(d, "SISMEMBER", "src", "a"))
	assert.Equal(t, ":1\r\n", dispatch(d, "SISMEMBER", "dst", "a"))
	assert.Equal(t, ":0\r\n", dispatch(d, "SMOVE", "src", "dst", "nope"))

	// Moving into a missing destination creates it.
	assert.Equal(t, ":1\r\n", dispatch(d, "SMOVE", "src", "fresh", "b"))
	assert.Equal(t, ":1\r\n", dispatch(d, "SISMEMBER", "fresh", "b"))
	assert.Equal(t, ":0\r\n", dispatch(d, "EXISTS", "src"))
}

func TestSetAlgebraCommands(t *testing.T) {
	d := newTestDispatcher()
	dispatch(d, "SADD", "a", "1", "2", "3", "4")
	dispatch(d, "SADD", "b", "3", "4", "5")

	inter := parseStringArray(t, dispatch(d, "SINTER", "a", "b"))
	assert.ElementsMatch(t, []string{"3", "4"}, inter)

	union := parseStringArray(t, dispatch(d, "SUNION", "a", "b"))
	assert.ElementsMatch(t, []string{"1", "2", "3", "4", "5"}, union)

	diff := parseStringArray(t, dispatch(d, "SDIFF", "a", "b"))
	assert.ElementsMatch(t, []string{"1", "2"}, diff)

	// Missing keys act as empty sets.
	assert.Equal(t, "*0\r\n", dispatch(d, "SINTER", "a", "missing"))
	diff = parseStringArray(t, dispatch(d, "SDIFF", "a", "missing"))
	assert.ElementsMatch(t, []string{"1", "2", "3", "4"}, diff)
}

func TestSetAlgebraStore(t *testing.T) {
	d := newTestDispatcher()
	dispatch(d, "SADD", "a", "1", "2", "3")
	dispatch(d, "SADD", "b", "2", "3", "4")

	assert.Equal(t, ":2\r\n", dispatch(d, "SINTERSTORE", "dest", "a", "b"))
	members := parseStringArray(t, dispatch(d, "SMEMBERS", "dest"))
	assert.ElementsMatch(t, []string{"2", "3"}, members)

	assert.Equal(t, ":4\r\n", dispatch(d, "SUNIONSTORE", "dest", "a", "b"))
	assert.Equal(t, ":1\r\n", dispatch(d, "SDIFFSTORE", "dest", "a", "b"))

	// An empty result deletes the destination.
	assert.Equal(t, ":0\r\n", dispatch(d, "SINTERSTORE", "dest", "a", "missing"))
	assert.Equal(t, ":0\r\n", dispatch(d, "EXISTS", "dest"))
}

func TestSetWrongType(t *testing.T) {
	d := newTestDispatcher()
	dispatch(d, "SET", "k", "v")

	assert.Equal(t, "-WRONGTYPE Operation against a key holding the wrong kind of value\r\n",
		dispatch(d, "SADD", "k", "x"))
	assert.Equal(t, "-WRONGTYPE Operation against a key holding the wrong kind of value\r\n",
		dispatch(d, "SINTER", "k", "k"))
}
