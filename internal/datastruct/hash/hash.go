// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hash implements the hash value, a field-to-value mapping backed
// by the incremental-rehash dictionary.
package hash

import (
	"github.com/jbreiding/minidis/internal/datastruct/dict"
)

// Hash represents a hash value keyed by field bytes.
type Hash struct {
	fields *dict.Dict
}

// New creates a new hash
func New() *Hash {
	return &Hash{fields: dict.New()}
}

// Set stores value under field. Returns 1 when the field is new.
func (h *Hash) Set(field, value string) int {
	isNew := !h.fields.Exists(field)
	h.fields.Set(field, value)
	if isNew {
		return 1
	}
	return 0
}

// SetNX stores value only when field is absent. Returns true if stored.
func (h *Hash) SetNX(field, value string) bool {
	return h.fields.SetNX(field, value)
}

// Get returns the value stored under field.
func (h *Hash) Get(field string) (string, bool) {
	v, ok := h.fields.Get(field)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Delete removes fields. Returns the number removed.
func (h *Hash) Delete(fields ...string) int {
	deleted := 0
	for _, f := range fields {
		if _, ok := h.fields.Delete(f); ok {
			deleted++
		}
	}
	return deleted
}

// Exists checks if a field exists
func (h *Hash) Exists(field string) bool {
	return h.fields.Exists(field)
}

// Len returns the number of fields
func (h *Hash) Len() int {
	return h.fields.Len()
}

// Fields returns all field names.
func (h *Hash) Fields() []string {
	return h.fields.Keys()
}

// Values returns all values.
func (h *Hash) Values() []string {
	values := make([]string, 0, h.fields.Len())
	h.fields.Each(func(_ string, v interface{}) bool {
		values = append(values, v.(string))
		return true
	})
	return values
}

// Each visits every field-value pair until f returns false. Pair order is
// stable within one call.
func (h *Hash) Each(f func(field, value string) bool) {
	h.fields.Each(func(field string, v interface{}) bool {
		return f(field, v.(string))
	})
}

// Dict exposes the underlying dictionary for maintenance (rehash driving).
func (h *Hash) Dict() *dict.Dict {
	return h.fields
}
