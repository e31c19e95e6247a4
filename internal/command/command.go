// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package command defines the command table, the reply model and the
// dispatcher that maps validation failures to RESP error frames.
package command

import (
	"github.com/jbreiding/minidis/internal/database"
	"github.com/jbreiding/minidis/internal/protocol/resp"
)

// Context represents the command execution context
type Context struct {
	DB      *database.DB
	CmdName string
	Args    []string
}

// Handler is the command handler function
type Handler func(ctx *Context) (*Reply, error)

// Command describes one entry of the dispatch table.
type Command struct {
	Name       string
	Handler    Handler
	Arity      int      // Total frame count incl. name; negative means at least |Arity|
	Flags      []string // Command flags
	FirstKey   int      // Index of first key
	LastKey    int      // Index of last key, -1 for "to the end"
	StepCount  int      // Step between keys for interleaved layouts
	Categories []string // Command categories
}

const (
	// Command flags
	FlagReadOnly = "readonly"
	FlagWrite    = "write"
	FlagDenyOOM  = "denyoom"
	FlagRandom   = "random"
	FlagFast     = "fast"
)

// Category constants
const (
	CatString     = "string"
	CatBitmap     = "bitmap"
	CatHash       = "hash"
	CatSet        = "set"
	CatKey        = "key"
	CatConnection = "connection"
	CatServer     = "server"
)

// CheckArity validates the argument count. Arity counts the command name
// itself, argc does not.
func (c *Command) CheckArity(argc int) error {
	if c.Arity > 0 {
		if argc != c.Arity-1 {
			return ErrWrongArgs(c.Name)
		}
		return nil
	}
	if argc < -c.Arity-1 {
		return ErrWrongArgs(c.Name)
	}
	return nil
}

// HasFlag checks if the command has a specific flag
func (c *Command) HasFlag(flag string) bool {
	for _, f := range c.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Reply represents a command reply
type Reply struct {
	Type  ReplyType
	Value interface{}
}

// ReplyType represents the type of reply
type ReplyType int

const (
	ReplyTypeStatus ReplyType = iota
	ReplyTypeError
	ReplyTypeInteger
	ReplyTypeBulkString
	ReplyTypeArray
	ReplyTypeNil
)

// NewStatusReply creates a status reply
func NewStatusReply(status string) *Reply {
	return &Reply{Type: ReplyTypeStatus, Value: status}
}

// NewIntegerReply creates an integer reply
func NewIntegerReply(i int64) *Reply {
	return &Reply{Type: ReplyTypeInteger, Value: i}
}

// NewBulkStringReply creates a bulk string reply
func NewBulkStringReply(s string) *Reply {
	return &Reply{Type: ReplyTypeBulkString, Value: s}
}

// NewBulkStringReplyBytes creates a bulk string reply from bytes
func NewBulkStringReplyBytes(b []byte) *Reply {
	return &Reply{Type: ReplyTypeBulkString, Value: b}
}

// NewStringArrayReply creates an array reply from strings
func NewStringArrayReply(items []string) *Reply {
	return &Reply{Type: ReplyTypeArray, Value: items}
}

// NewArrayReply creates an array reply from nested replies
func NewArrayReply(items []*Reply) *Reply {
	return &Reply{Type: ReplyTypeArray, Value: items}
}

// NewNilReply creates a nil reply
func NewNilReply() *Reply {
	return &Reply{Type: ReplyTypeNil}
}

// IsError returns true if the reply is an error
func (r *Reply) IsError() bool {
	return r != nil && r.Type == ReplyTypeError
}

// Marshal converts the reply to RESP bytes
func (r *Reply) Marshal() []byte {
	if r == nil {
		return resp.BuildNil()
	}

	switch r.Type {
	case ReplyTypeStatus:
		return resp.BuildSimpleString(r.Value.(string))
	case ReplyTypeError:
		return resp.BuildErrorString(r.Value.(string))
	case ReplyTypeInteger:
		return resp.BuildInteger(r.Value.(int64))
	case ReplyTypeBulkString:
		switch v := r.Value.(type) {
		case string:
			return resp.BuildBulkString(v)
		case []byte:
			return resp.BuildBulkStringBytes(v)
		default:
			return resp.BuildNil()
		}
	case ReplyTypeArray:
		switch v := r.Value.(type) {
		case []string:
			return resp.BuildStringArray(v)
		case []*Reply:
			b := resp.NewResponseBuilder()
			b.WriteArray(len(v))
			for _, item := range v {
				b.WriteBytes(item.Marshal())
			}
			return b.Bytes()
		default:
			return resp.BuildEmptyArray()
		}
	default:
		return resp.BuildNil()
	}
}
