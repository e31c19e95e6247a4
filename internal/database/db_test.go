// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package database

import (
	"strconv"
	"testing"
	"time"

	"github.com/jbreiding/minidis/internal/datastruct/str"
	"github.com/jbreiding/minidis/pkg/utils"
)

func TestDBSetGetDelete(t *testing.T) {
	db := NewDB()

	db.Set("k", NewStringObject(str.New("v")))
	obj, ok := db.Get("k")
	if !ok || obj.Type != ObjTypeString {
		t.Fatalf("Get k failed: %v %v", obj, ok)
	}
	s, _ := obj.Str()
	if s.String() != "v" {
		t.Errorf("value expected v, got %q", s.String())
	}

	if db.Delete("k", "missing") != 1 {
		t.Errorf("Delete expected 1")
	}
	if _, ok := db.Get("k"); ok {
		t.Errorf("key survived Delete")
	}
}

func TestDBLazyExpiry(t *testing.T) {
	db := NewDB()

	db.SetWithTTL("k", NewStringObject(str.New("v")), utils.NowMs()+20)
	if _, ok := db.Get("k"); !ok {
		t.Fatalf("key missing before deadline")
	}

	time.Sleep(30 * time.Millisecond)
	if _, ok := db.Get("k"); ok {
		t.Errorf("expired key still readable")
	}
	// The lazy eviction also cleared the expiry index.
	if db.Expires().Len() != 0 {
		t.Errorf("expiry index still tracks the key")
	}
}

func TestDBTTLTransitions(t *testing.T) {
	db := NewDB()

	if got := db.TTLMs("missing"); got != TTLMissing {
		t.Errorf("TTL of missing key expected %d, got %d", TTLMissing, got)
	}

	db.Set("k", NewStringObject(str.New("v")))
	if got := db.TTLMs("k"); got != TTLNone {
		t.Errorf("TTL without deadline expected %d, got %d", TTLNone, got)
	}

	db.ExpireAt("k", utils.NowMs()+5000)
	if got := db.TTLMs("k"); got <= 0 || got > 5000 {
		t.Errorf("TTL expected in (0, 5000], got %d", got)
	}

	// Overwrite without TTL discards the deadline.
	db.Set("k", NewStringObject(str.New("v2")))
	if got := db.TTLMs("k"); got != TTLNone {
		t.Errorf("TTL after overwrite expected %d, got %d", TTLNone, got)
	}

	// SetKeepTTL retains it.
	db.ExpireAt("k", utils.NowMs()+5000)
	db.SetKeepTTL("k", NewStringObject(str.New("v3")))
	if got := db.TTLMs("k"); got <= 0 {
		t.Errorf("TTL after SetKeepTTL expected positive, got %d", got)
	}

	if !db.Persist("k") {
		t.Errorf("Persist failed")
	}
	if got := db.TTLMs("k"); got != TTLNone {
		t.Errorf("TTL after Persist expected %d, got %d", TTLNone, got)
	}
}

// TestDBExpiryKeyspaceInvariant: every key in the expiry index is in the
// keyspace, through deletes and overwrites.
func TestDBExpiryKeyspaceInvariant(t *testing.T) {
	db := NewDB()

	for i := 0; i < 50; i++ {
		key := "k" + strconv.Itoa(i)
		db.SetWithTTL(key, NewStringObject(str.New("v")), utils.NowMs()+10000)
	}
	for i := 0; i < 25; i++ {
		db.Delete("k" + strconv.Itoa(i))
	}
	for i := 25; i < 35; i++ {
		db.Set("k"+strconv.Itoa(i), NewStringObject(str.New("v2")))
	}

	db.Expires().Dict().Each(func(key string, _ interface{}) bool {
		if !db.dict.Exists(key) {
			t.Errorf("expiry index tracks %s but keyspace does not hold it", key)
		}
		return true
	})
	if db.Expires().Len() != 15 {
		t.Errorf("expiry index expected 15 entries, got %d", db.Expires().Len())
	}
}

func TestDBCronSweepsExpired(t *testing.T) {
	db := NewDB()

	now := utils.NowMs()
	for i := 0; i < 10; i++ {
		db.SetWithTTL("dead"+strconv.Itoa(i), NewStringObject(str.New("v")), now-1)
	}
	db.SetWithTTL("alive", NewStringObject(str.New("v")), now+60000)

	// A few cron ticks clear the expired sample.
	for i := 0; i < 20 && db.Expires().Len() > 1; i++ {
		db.Cron(utils.NowMs())
	}

	if db.Expires().Len() != 1 {
		t.Errorf("expiry index expected 1 survivor, got %d", db.Expires().Len())
	}
	if _, ok := db.Get("alive"); !ok {
		t.Errorf("live key was swept")
	}
	if db.Len() != 1 {
		t.Errorf("keyspace expected 1 key, got %d", db.Len())
	}
}

func TestDBRename(t *testing.T) {
	db := NewDB()
	db.SetWithTTL("a", NewStringObject(str.New("v")), utils.NowMs()+10000)

	if !db.Rename("a", "b") {
		t.Fatalf("Rename failed")
	}
	if _, ok := db.Get("a"); ok {
		t.Errorf("old key survived rename")
	}
	if got := db.TTLMs("b"); got <= 0 {
		t.Errorf("TTL lost on rename: %d", got)
	}

	if db.Rename("missing", "x") {
		t.Errorf("Rename of missing key succeeded")
	}
}

func TestDBKeysPattern(t *testing.T) {
	db := NewDB()
	db.Set("one", NewStringObject(str.New("1")))
	db.Set("two", NewStringObject(str.New("2")))

	if got := len(db.Keys("*")); got != 2 {
		t.Errorf("Keys * expected 2, got %d", got)
	}
	if got := len(db.Keys("t*")); got != 1 {
		t.Errorf("Keys t* expected 1, got %d", got)
	}
}
