// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package commands holds the per-category command handlers.
package commands

import (
	"github.com/jbreiding/minidis/internal/command"
	"github.com/jbreiding/minidis/internal/database"
	"github.com/jbreiding/minidis/internal/datastruct/hash"
	"github.com/jbreiding/minidis/internal/datastruct/set"
	"github.com/jbreiding/minidis/internal/datastruct/str"
)

// Dispatcher is the registration surface of the command table.
type Dispatcher interface {
	Register(cmd *command.Command)
}

// RegisterAll registers every command category.
func RegisterAll(disp Dispatcher) {
	RegisterServerCommands(disp)
	RegisterKeyCommands(disp)
	RegisterStringCommands(disp)
	RegisterBitmapCommands(disp)
	RegisterHashCommands(disp)
	RegisterSetCommands(disp)
}

// lookupString returns the string value at key, or nil when the key is
// absent. A value of another type is a WRONGTYPE error.
func lookupString(ctx *command.Context, key string) (*str.String, error) {
	obj, ok := ctx.DB.Get(key)
	if !ok {
		return nil, nil
	}
	s, ok := obj.Str()
	if !ok {
		return nil, command.ErrWrongType
	}
	return s, nil
}

// lookupOrCreateString returns the string at key, storing a fresh empty
// one when the key is absent.
func lookupOrCreateString(ctx *command.Context, key string) (*str.String, error) {
	s, err := lookupString(ctx, key)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = str.New("")
		ctx.DB.SetKeepTTL(key, database.NewStringObject(s))
	}
	return s, nil
}

// lookupHash returns the hash value at key, or nil when absent.
func lookupHash(ctx *command.Context, key string) (*hash.Hash, error) {
	obj, ok := ctx.DB.Get(key)
	if !ok {
		return nil, nil
	}
	h, ok := obj.Hash()
	if !ok {
		return nil, command.ErrWrongType
	}
	return h, nil
}

// lookupOrCreateHash returns the hash at key, creating it when absent.
func lookupOrCreateHash(ctx *command.Context, key string) (*hash.Hash, error) {
	h, err := lookupHash(ctx, key)
	if err != nil {
		return nil, err
	}
	if h == nil {
		obj := database.NewHashObject()
		ctx.DB.Set(key, obj)
		h, _ = obj.Hash()
	}
	return h, nil
}

// lookupSet returns the set value at key, or nil when absent.
func lookupSet(ctx *command.Context, key string) (*set.Set, error) {
	obj, ok := ctx.DB.Get(key)
	if !ok {
		return nil, nil
	}
	s, ok := obj.Set()
	if !ok {
		return nil, command.ErrWrongType
	}
	return s, nil
}

// lookupOrCreateSet returns the set at key, creating it when absent.
func lookupOrCreateSet(ctx *command.Context, key string) (*set.Set, error) {
	s, err := lookupSet(ctx, key)
	if err != nil {
		return nil, err
	}
	if s == nil {
		obj := database.NewSetObject()
		ctx.DB.Set(key, obj)
		s, _ = obj.Set()
	}
	return s, nil
}

// deleteIfEmptySet drops the key once its set has no members left.
func deleteIfEmptySet(ctx *command.Context, key string, s *set.Set) {
	if s.Len() == 0 {
		ctx.DB.Delete(key)
	}
}
