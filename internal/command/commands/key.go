// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"strconv"

	"github.com/jbreiding/minidis/internal/command"
	"github.com/jbreiding/minidis/pkg/utils"
)

// RegisterKeyCommands registers all generic key commands
func RegisterKeyCommands(disp Dispatcher) {
	disp.Register(&command.Command{
		Name:       "DEL",
		Handler:    delCmd,
		Arity:      -2,
		Flags:      []string{command.FlagWrite},
		FirstKey:   1,
		LastKey:    -1,
		Categories: []string{command.CatKey},
	})

	disp.Register(&command.Command{
		Name:       "EXISTS",
		Handler:    existsCmd,
		Arity:      -2,
		Flags:      []string{command.FlagReadOnly, command.FlagFast},
		FirstKey:   1,
		LastKey:    -1,
		Categories: []string{command.CatKey},
	})

	disp.Register(&command.Command{
		Name:       "TYPE",
		Handler:    typeCmd,
		Arity:      2,
		Flags:      []string{command.FlagReadOnly, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatKey},
	})

	disp.Register(&command.Command{
		Name:       "KEYS",
		Handler:    keysCmd,
		Arity:      2,
		Flags:      []string{command.FlagReadOnly},
		Categories: []string{command.CatKey},
	})

	disp.Register(&command.Command{
		Name:       "DBSIZE",
		Handler:    dbsizeCmd,
		Arity:      1,
		Flags:      []string{command.FlagReadOnly, command.FlagFast},
		Categories: []string{command.CatServer},
	})

	disp.Register(&command.Command{
		Name:       "RANDOMKEY",
		Handler:    randomkeyCmd,
		Arity:      1,
		Flags:      []string{command.FlagReadOnly, command.FlagRandom},
		Categories: []string{command.CatKey},
	})

	disp.Register(&command.Command{
		Name:       "EXPIRE",
		Handler:    expireCmd,
		Arity:      3,
		Flags:      []string{command.FlagWrite, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatKey},
	})

	disp.Register(&command.Command{
		Name:       "PEXPIRE",
		Handler:    pexpireCmd,
		Arity:      3,
		Flags:      []string{command.FlagWrite, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatKey},
	})

	disp.Register(&command.Command{
		Name:       "PERSIST",
		Handler:    persistCmd,
		Arity:      2,
		Flags:      []string{command.FlagWrite, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatKey},
	})

	disp.Register(&command.Command{
		Name:       "RENAME",
		Handler:    renameCmd,
		Arity:      3,
		Flags:      []string{command.FlagWrite},
		FirstKey:   1,
		LastKey:    2,
		Categories: []string{command.CatKey},
	})

	disp.Register(&command.Command{
		Name:       "FLUSHDB",
		Handler:    flushdbCmd,
		Arity:      1,
		Flags:      []string{command.FlagWrite},
		Categories: []string{command.CatServer},
	})
}

// DEL key [key ...]
func delCmd(ctx *command.Context) (*command.Reply, error) {
	return command.NewIntegerReply(int64(ctx.DB.Delete(ctx.Args...))), nil
}

// EXISTS key [key ...]
func existsCmd(ctx *command.Context) (*command.Reply, error) {
	return command.NewIntegerReply(int64(ctx.DB.Exists(ctx.Args...))), nil
}

// TYPE key
func typeCmd(ctx *command.Context) (*command.Reply, error) {
	return command.NewStatusReply(ctx.DB.Type(ctx.Args[0])), nil
}

// KEYS pattern
func keysCmd(ctx *command.Context) (*command.Reply, error) {
	return command.NewStringArrayReply(ctx.DB.Keys(ctx.Args[0])), nil
}

// DBSIZE
func dbsizeCmd(ctx *command.Context) (*command.Reply, error) {
	return command.NewIntegerReply(int64(ctx.DB.Len())), nil
}

// RANDOMKEY
func randomkeyCmd(ctx *command.Context) (*command.Reply, error) {
	key, ok := ctx.DB.RandomKey()
	if !ok {
		return command.NewNilReply(), nil
	}
	return command.NewBulkStringReply(key), nil
}

// EXPIRE key seconds
func expireCmd(ctx *command.Context) (*command.Reply, error) {
	seconds, err := strconv.ParseInt(ctx.Args[1], 10, 64)
	if err != nil {
		return nil, command.ErrNotInteger
	}
	if ctx.DB.ExpireAt(ctx.Args[0], utils.NowMs()+seconds*1000) {
		return command.NewIntegerReply(1), nil
	}
	return command.NewIntegerReply(0), nil
}

// PEXPIRE key milliseconds
func pexpireCmd(ctx *command.Context) (*command.Reply, error) {
	ms, err := strconv.ParseInt(ctx.Args[1], 10, 64)
	if err != nil {
		return nil, command.ErrNotInteger
	}
	if ctx.DB.ExpireAt(ctx.Args[0], utils.NowMs()+ms) {
		return command.NewIntegerReply(1), nil
	}
	return command.NewIntegerReply(0), nil
}

// PERSIST key
func persistCmd(ctx *command.Context) (*command.Reply, error) {
	if ctx.DB.Persist(ctx.Args[0]) {
		return command.NewIntegerReply(1), nil
	}
	return command.NewIntegerReply(0), nil
}

// RENAME key newkey
func renameCmd(ctx *command.Context) (*command.Reply, error) {
	if !ctx.DB.Rename(ctx.Args[0], ctx.Args[1]) {
		return nil, command.ErrNoSuchKey
	}
	return command.NewStatusReply("OK"), nil
}

// FLUSHDB
func flushdbCmd(ctx *command.Context) (*command.Reply, error) {
	ctx.DB.Flush()
	return command.NewStatusReply("OK"), nil
}
