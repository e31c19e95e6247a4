// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package database implements the keyspace: a dictionary of typed values
// plus the expiry index. All access happens on the event loop thread.
package database

import (
	"github.com/jbreiding/minidis/internal/datastruct/dict"
	"github.com/jbreiding/minidis/internal/expire"
	"github.com/jbreiding/minidis/pkg/log"
	"github.com/jbreiding/minidis/pkg/utils"
)

// TTL sentinels returned by TTLMs.
const (
	TTLMissing = -2
	TTLNone    = -1
)

// DB is the keyspace.
type DB struct {
	dict    *dict.Dict
	expires *expire.Index
}

// NewDB creates an empty database.
func NewDB() *DB {
	return &DB{
		dict:    dict.New(),
		expires: expire.NewIndex(),
	}
}

// Get returns the object stored at key. An expired key is evicted lazily
// and reads as absent.
func (db *DB) Get(key string) (*Object, bool) {
	obj, ok := db.dict.Get(key)
	if !ok {
		return nil, false
	}
	if db.expires.IsExpired(key, utils.NowMs()) {
		db.dict.Delete(key)
		db.expires.Remove(key)
		return nil, false
	}
	return obj.(*Object), true
}

// Set stores an object at key. Any previous TTL is discarded unless
// keepTTL is requested by the caller via SetKeepTTL.
func (db *DB) Set(key string, obj *Object) {
	db.dict.Set(key, obj)
	db.expires.Remove(key)
}

// SetKeepTTL stores an object at key, leaving any TTL in place.
func (db *DB) SetKeepTTL(key string, obj *Object) {
	db.dict.Set(key, obj)
}

// SetWithTTL stores an object and its deadline in one step.
func (db *DB) SetWithTTL(key string, obj *Object, deadlineMs int64) {
	db.dict.Set(key, obj)
	db.expires.Set(key, deadlineMs)
}

// Delete removes keys. Returns the number actually removed.
func (db *DB) Delete(keys ...string) int {
	deleted := 0
	for _, key := range keys {
		if _, ok := db.dict.Delete(key); ok {
			db.expires.Remove(key)
			deleted++
		}
	}
	return deleted
}

// Exists reports how many of the given keys exist.
func (db *DB) Exists(keys ...string) int {
	count := 0
	for _, key := range keys {
		if _, ok := db.Get(key); ok {
			count++
		}
	}
	return count
}

// Type returns the type name of the value at key, or "none".
func (db *DB) Type(key string) string {
	obj, ok := db.Get(key)
	if !ok {
		return "none"
	}
	return obj.Type.String()
}

// Len returns the number of keys, including not-yet-evicted expired ones.
func (db *DB) Len() int {
	return db.dict.Len()
}

// Keys returns all keys matching the glob-style pattern.
func (db *DB) Keys(pattern string) []string {
	now := utils.NowMs()
	result := make([]string, 0, db.dict.Len())
	db.dict.Each(func(key string, _ interface{}) bool {
		if !db.expires.IsExpired(key, now) && utils.MatchPattern(pattern, key) {
			result = append(result, key)
		}
		return true
	})
	return result
}

// RandomKey returns a random live key.
func (db *DB) RandomKey() (string, bool) {
	// Bounded retries: a sample may land on an expired key.
	for i := 0; i < 100; i++ {
		key, _, ok := db.dict.RandomEntry()
		if !ok {
			return "", false
		}
		if _, live := db.Get(key); live {
			return key, true
		}
	}
	return "", false
}

// Rename moves the value and TTL of key to newKey, overwriting it.
func (db *DB) Rename(key, newKey string) bool {
	obj, ok := db.Get(key)
	if !ok {
		return false
	}
	deadline, hadTTL := db.expires.Get(key)

	db.Delete(key)
	if hadTTL {
		db.SetWithTTL(newKey, obj, deadline)
	} else {
		db.Set(newKey, obj)
	}
	return true
}

// ExpireAt sets the deadline of an existing key. Returns false when the
// key does not exist.
func (db *DB) ExpireAt(key string, deadlineMs int64) bool {
	if _, ok := db.Get(key); !ok {
		return false
	}
	db.expires.Set(key, deadlineMs)
	return true
}

// Persist removes the TTL from a key. Returns true if one was removed.
func (db *DB) Persist(key string) bool {
	if _, ok := db.Get(key); !ok {
		return false
	}
	return db.expires.Remove(key)
}

// TTLMs returns the remaining lifetime of key in milliseconds, TTLNone for
// a key without a deadline, TTLMissing for an absent key.
func (db *DB) TTLMs(key string) int64 {
	if _, ok := db.Get(key); !ok {
		return TTLMissing
	}
	deadline, ok := db.expires.Get(key)
	if !ok {
		return TTLNone
	}
	remaining := deadline - utils.NowMs()
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Flush drops every key and deadline.
func (db *DB) Flush() {
	db.dict = dict.New()
	db.expires = expire.NewIndex()
}

// Expires exposes the expiry index.
func (db *DB) Expires() *expire.Index {
	return db.expires
}

// Dict exposes the keyspace dictionary.
func (db *DB) Dict() *dict.Dict {
	return db.dict
}

// Cron is the per-tick maintenance hook: sweep a sample of the expiry
// index, then grant bounded rehash time to the keyspace and expiry
// dictionaries when they are mid-migration. Dictionaries inside hash and
// set values advance their rehash only through their own operations.
func (db *DB) Cron(nowMs int64) {
	expired := db.expires.Sweep(nowMs, func(key string) {
		db.dict.Delete(key)
		log.Debug("expired key: %s", key)
	})
	if expired > 0 {
		log.Verbose("expire sweep evicted %d keys", expired)
	}

	if db.dict.IsRehashing() {
		db.dict.RehashMilliseconds(1)
	}
	if ex := db.expires.Dict(); ex.IsRehashing() {
		ex.RehashMilliseconds(1)
	}
}
