// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"strconv"
	"strings"

	"github.com/jbreiding/minidis/internal/command"
	"github.com/jbreiding/minidis/internal/database"
	"github.com/jbreiding/minidis/internal/datastruct/str"
	"github.com/jbreiding/minidis/pkg/utils"
)

// RegisterStringCommands registers all string commands
func RegisterStringCommands(disp Dispatcher) {
	disp.Register(&command.Command{
		Name:       "GET",
		Handler:    getCmd,
		Arity:      2,
		Flags:      []string{command.FlagReadOnly, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatString},
	})

	disp.Register(&command.Command{
		Name:       "SET",
		Handler:    setCmd,
		Arity:      -3,
		Flags:      []string{command.FlagWrite, command.FlagDenyOOM},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatString},
	})

	disp.Register(&command.Command{
		Name:       "MGET",
		Handler:    mgetCmd,
		Arity:      -2,
		Flags:      []string{command.FlagReadOnly, command.FlagFast},
		FirstKey:   1,
		LastKey:    -1,
		Categories: []string{command.CatString},
	})

	disp.Register(&command.Command{
		Name:       "MSET",
		Handler:    msetCmd,
		Arity:      -3,
		Flags:      []string{command.FlagWrite, command.FlagDenyOOM},
		FirstKey:   1,
		LastKey:    -1,
		StepCount:  2,
		Categories: []string{command.CatString},
	})

	disp.Register(&command.Command{
		Name:       "STRLEN",
		Handler:    strlenCmd,
		Arity:      2,
		Flags:      []string{command.FlagReadOnly, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatString},
	})

	disp.Register(&command.Command{
		Name:       "APPEND",
		Handler:    appendCmd,
		Arity:      3,
		Flags:      []string{command.FlagWrite, command.FlagDenyOOM},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatString},
	})

	disp.Register(&command.Command{
		Name:       "GETRANGE",
		Handler:    getrangeCmd,
		Arity:      4,
		Flags:      []string{command.FlagReadOnly},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatString},
	})

	disp.Register(&command.Command{
		Name:       "SETRANGE",
		Handler:    setrangeCmd,
		Arity:      4,
		Flags:      []string{command.FlagWrite, command.FlagDenyOOM},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatString},
	})

	disp.Register(&command.Command{
		Name:       "INCR",
		Handler:    incrCmd,
		Arity:      2,
		Flags:      []string{command.FlagWrite, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatString},
	})

	disp.Register(&command.Command{
		Name:       "DECR",
		Handler:    decrCmd,
		Arity:      2,
		Flags:      []string{command.FlagWrite, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatString},
	})

	disp.Register(&command.Command{
		Name:       "INCRBY",
		Handler:    incrbyCmd,
		Arity:      3,
		Flags:      []string{command.FlagWrite, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatString},
	})

	disp.Register(&command.Command{
		Name:       "DECRBY",
		Handler:    decrbyCmd,
		Arity:      3,
		Flags:      []string{command.FlagWrite, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatString},
	})

	disp.Register(&command.Command{
		Name:       "TTL",
		Handler:    ttlCmd,
		Arity:      2,
		Flags:      []string{command.FlagReadOnly, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatKey},
	})

	disp.Register(&command.Command{
		Name:       "PTTL",
		Handler:    pttlCmd,
		Arity:      2,
		Flags:      []string{command.FlagReadOnly, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatKey},
	})
}

// GET key
func getCmd(ctx *command.Context) (*command.Reply, error) {
	s, err := lookupString(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if s == nil {
		return command.NewNilReply(), nil
	}
	return command.NewBulkStringReply(s.String()), nil
}

// SET key value [EX seconds|PX milliseconds|NX|XX|KEEPTTL]
func setCmd(ctx *command.Context) (*command.Reply, error) {
	key, value := ctx.Args[0], ctx.Args[1]

	var (
		nx, xx, keepTTL bool
		ttlMs           int64
		hasTTL          bool
	)

	for i := 2; i < len(ctx.Args); i++ {
		switch strings.ToLower(ctx.Args[i]) {
		case "nx":
			nx = true
		case "xx":
			xx = true
		case "keepttl":
			keepTTL = true
		case "ex", "px":
			if hasTTL || i+1 >= len(ctx.Args) {
				return nil, command.ErrSyntax
			}
			n, err := strconv.ParseInt(ctx.Args[i+1], 10, 64)
			if err != nil {
				return nil, command.ErrNotInteger
			}
			if n <= 0 {
				return nil, command.ErrExpireTime
			}
			ttlMs = n
			if strings.ToLower(ctx.Args[i]) == "ex" {
				ttlMs *= 1000
			}
			hasTTL = true
			i++
		default:
			return nil, command.ErrSyntax
		}
	}
	if nx && xx {
		return nil, command.ErrSyntax
	}

	_, exists := ctx.DB.Get(key)
	if (nx && exists) || (xx && !exists) {
		return command.NewNilReply(), nil
	}

	obj := database.NewStringObject(str.New(value))
	switch {
	case hasTTL:
		ctx.DB.SetWithTTL(key, obj, utils.NowMs()+ttlMs)
	case keepTTL:
		ctx.DB.SetKeepTTL(key, obj)
	default:
		ctx.DB.Set(key, obj)
	}
	return command.NewStatusReply("OK"), nil
}

// MGET key [key ...]
func mgetCmd(ctx *command.Context) (*command.Reply, error) {
	items := make([]*command.Reply, 0, len(ctx.Args))
	for _, key := range ctx.Args {
		s, err := lookupString(ctx, key)
		if err != nil || s == nil {
			// Wrong-type keys read as nil for MGET.
			items = append(items, command.NewNilReply())
			continue
		}
		items = append(items, command.NewBulkStringReply(s.String()))
	}
	return command.NewArrayReply(items), nil
}

// MSET key value [key value ...]
func msetCmd(ctx *command.Context) (*command.Reply, error) {
	if len(ctx.Args)%2 != 0 {
		return nil, command.ErrWrongArgs(ctx.CmdName)
	}
	for i := 0; i < len(ctx.Args); i += 2 {
		ctx.DB.Set(ctx.Args[i], database.NewStringObject(str.New(ctx.Args[i+1])))
	}
	return command.NewStatusReply("OK"), nil
}

// STRLEN key
func strlenCmd(ctx *command.Context) (*command.Reply, error) {
	s, err := lookupString(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if s == nil {
		return command.NewIntegerReply(0), nil
	}
	return command.NewIntegerReply(int64(s.Len())), nil
}

// APPEND key value
func appendCmd(ctx *command.Context) (*command.Reply, error) {
	s, err := lookupOrCreateString(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	return command.NewIntegerReply(int64(s.Append(ctx.Args[1]))), nil
}

// GETRANGE key start end
func getrangeCmd(ctx *command.Context) (*command.Reply, error) {
	start, err1 := strconv.ParseInt(ctx.Args[1], 10, 64)
	end, err2 := strconv.ParseInt(ctx.Args[2], 10, 64)
	if err1 != nil || err2 != nil {
		return nil, command.ErrNotInteger
	}

	s, err := lookupString(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if s == nil {
		return command.NewBulkStringReply(""), nil
	}
	return command.NewBulkStringReply(s.GetRange(start, end)), nil
}

// SETRANGE key offset value
func setrangeCmd(ctx *command.Context) (*command.Reply, error) {
	offset, err := strconv.Atoi(ctx.Args[1])
	if err != nil || offset < 0 {
		return nil, command.ErrNotInteger
	}

	s, err := lookupOrCreateString(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	return command.NewIntegerReply(int64(s.SetRange(offset, ctx.Args[2]))), nil
}

// incrDecr applies a signed delta to the integer value at key. A missing
// key counts as zero; an existing non-integer value is an error.
func incrDecr(ctx *command.Context, key string, delta int64) (*command.Reply, error) {
	s, err := lookupString(ctx, key)
	if err != nil {
		return nil, err
	}

	cur := int64(0)
	if s != nil {
		v, isInt := s.Int()
		if !isInt {
			return nil, command.ErrNotInteger
		}
		cur = v
	}

	next := cur + delta
	if (delta > 0 && next < cur) || (delta < 0 && next > cur) {
		return nil, command.ErrIncrOverflow
	}

	if s == nil {
		s, err = lookupOrCreateString(ctx, key)
		if err != nil {
			return nil, err
		}
	}
	s.Set(strconv.FormatInt(next, 10))
	return command.NewIntegerReply(next), nil
}

// INCR key
func incrCmd(ctx *command.Context) (*command.Reply, error) {
	return incrDecr(ctx, ctx.Args[0], 1)
}

// DECR key
func decrCmd(ctx *command.Context) (*command.Reply, error) {
	return incrDecr(ctx, ctx.Args[0], -1)
}

// INCRBY key increment
func incrbyCmd(ctx *command.Context) (*command.Reply, error) {
	delta, err := strconv.ParseInt(ctx.Args[1], 10, 64)
	if err != nil {
		return nil, command.ErrNotInteger
	}
	return incrDecr(ctx, ctx.Args[0], delta)
}

// DECRBY key decrement
func decrbyCmd(ctx *command.Context) (*command.Reply, error) {
	delta, err := strconv.ParseInt(ctx.Args[1], 10, 64)
	if err != nil {
		return nil, command.ErrNotInteger
	}
	if delta == -9223372036854775808 {
		return nil, command.ErrIncrOverflow
	}
	return incrDecr(ctx, ctx.Args[0], -delta)
}

// TTL key
func ttlCmd(ctx *command.Context) (*command.Reply, error) {
	ms := ctx.DB.TTLMs(ctx.Args[0])
	if ms < 0 {
		return command.NewIntegerReply(ms), nil
	}
	return command.NewIntegerReply((ms + 500) / 1000), nil
}

// PTTL key
func pttlCmd(ctx *command.Context) (*command.Reply, error) {
	return command.NewIntegerReply(ctx.DB.TTLMs(ctx.Args[0])), nil
}
