// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package database

import (
	"github.com/jbreiding/minidis/internal/datastruct/hash"
	"github.com/jbreiding/minidis/internal/datastruct/set"
	"github.com/jbreiding/minidis/internal/datastruct/str"
)

// ObjType represents the object type
type ObjType byte

const (
	ObjTypeString ObjType = iota
	ObjTypeHash
	ObjTypeSet
)

// String returns the string representation of the object type
func (t ObjType) String() string {
	switch t {
	case ObjTypeString:
		return "string"
	case ObjTypeHash:
		return "hash"
	case ObjTypeSet:
		return "set"
	default:
		return "unknown"
	}
}

// Object is a typed value stored in the keyspace.
type Object struct {
	Type ObjType
	Ptr  interface{}
}

// NewStringObject creates a string object
func NewStringObject(s *str.String) *Object {
	return &Object{Type: ObjTypeString, Ptr: s}
}

// NewHashObject creates an empty hash object
func NewHashObject() *Object {
	return &Object{Type: ObjTypeHash, Ptr: hash.New()}
}

// NewSetObject creates an empty set object
func NewSetObject() *Object {
	return &Object{Type: ObjTypeSet, Ptr: set.New()}
}

// NewSetObjectFrom wraps an existing set value.
func NewSetObjectFrom(s *set.Set) *Object {
	return &Object{Type: ObjTypeSet, Ptr: s}
}

// Str returns the string value, or false on a type mismatch.
func (o *Object) Str() (*str.String, bool) {
	s, ok := o.Ptr.(*str.String)
	return s, ok
}

// Hash returns the hash value, or false on a type mismatch.
func (o *Object) Hash() (*hash.Hash, bool) {
	h, ok := o.Ptr.(*hash.Hash)
	return h, ok
}

// Set returns the set value, or false on a type mismatch.
func (o *Object) Set() (*set.Set, bool) {
	s, ok := o.Ptr.(*set.Set)
	return s, ok
}

// Encoding reports the representation the value currently uses, for
// OBJECT ENCODING style introspection.
func (o *Object) Encoding() string {
	switch v := o.Ptr.(type) {
	case *str.String:
		if _, isInt := v.Int(); isInt {
			return "int"
		}
		return "raw"
	case *hash.Hash:
		return "hashtable"
	case *set.Set:
		if v.Encoding() == set.EncodingIntset {
			return "intset"
		}
		return "hashtable"
	default:
		return "unknown"
	}
}
