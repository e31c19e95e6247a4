// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"math"
	"strconv"

	"github.com/jbreiding/minidis/internal/command"
)

// RegisterHashCommands registers all hash commands
func RegisterHashCommands(disp Dispatcher) {
	disp.Register(&command.Command{
		Name:       "HSET",
		Handler:    hsetCmd,
		Arity:      -4,
		Flags:      []string{command.FlagWrite, command.FlagDenyOOM, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatHash},
	})

	disp.Register(&command.Command{
		Name:       "HSETNX",
		Handler:    hsetnxCmd,
		Arity:      4,
		Flags:      []string{command.FlagWrite, command.FlagDenyOOM, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatHash},
	})

	disp.Register(&command.Command{
		Name:       "HGET",
		Handler:    hgetCmd,
		Arity:      3,
		Flags:      []string{command.FlagReadOnly, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatHash},
	})

	disp.Register(&command.Command{
		Name:       "HMGET",
		Handler:    hmgetCmd,
		Arity:      -3,
		Flags:      []string{command.FlagReadOnly, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatHash},
	})

	disp.Register(&command.Command{
		Name:       "HGETALL",
		Handler:    hgetallCmd,
		Arity:      2,
		Flags:      []string{command.FlagReadOnly},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatHash},
	})

	disp.Register(&command.Command{
		Name:       "HDEL",
		Handler:    hdelCmd,
		Arity:      -3,
		Flags:      []string{command.FlagWrite, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatHash},
	})

	disp.Register(&command.Command{
		Name:       "HEXISTS",
		Handler:    hexistsCmd,
		Arity:      3,
		Flags:      []string{command.FlagReadOnly, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatHash},
	})

	disp.Register(&command.Command{
		Name:       "HINCRBY",
		Handler:    hincrbyCmd,
		Arity:      4,
		Flags:      []string{command.FlagWrite, command.FlagDenyOOM, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatHash},
	})

	disp.Register(&command.Command{
		Name:       "HINCRBYFLOAT",
		Handler:    hincrbyfloatCmd,
		Arity:      4,
		Flags:      []string{command.FlagWrite, command.FlagDenyOOM, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatHash},
	})

	disp.Register(&command.Command{
		Name:       "HKEYS",
		Handler:    hkeysCmd,
		Arity:      2,
		Flags:      []string{command.FlagReadOnly},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatHash},
	})

	disp.Register(&command.Command{
		Name:       "HVALS",
		Handler:    hvalsCmd,
		Arity:      2,
		Flags:      []string{command.FlagReadOnly},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatHash},
	})

	disp.Register(&command.Command{
		Name:       "HLEN",
		Handler:    hlenCmd,
		Arity:      2,
		Flags:      []string{command.FlagReadOnly, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatHash},
	})

	disp.Register(&command.Command{
		Name:       "HSTRLEN",
		Handler:    hstrlenCmd,
		Arity:      3,
		Flags:      []string{command.FlagReadOnly, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatHash},
	})
}

// HSET key field value [field value ...]
func hsetCmd(ctx *command.Context) (*command.Reply, error) {
	if (len(ctx.Args)-1)%2 != 0 {
		return nil, command.ErrWrongArgs(ctx.CmdName)
	}

	h, err := lookupOrCreateHash(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}

	added := 0
	for i := 1; i < len(ctx.Args); i += 2 {
		added += h.Set(ctx.Args[i], ctx.Args[i+1])
	}
	return command.NewIntegerReply(int64(added)), nil
}

// HSETNX key field value
func hsetnxCmd(ctx *command.Context) (*command.Reply, error) {
	h, err := lookupOrCreateHash(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if h.SetNX(ctx.Args[1], ctx.Args[2]) {
		return command.NewIntegerReply(1), nil
	}
	return command.NewIntegerReply(0), nil
}

// HGET key field
func hgetCmd(ctx *command.Context) (*command.Reply, error) {
	h, err := lookupHash(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if h == nil {
		return command.NewNilReply(), nil
	}
	v, ok := h.Get(ctx.Args[1])
	if !ok {
		return command.NewNilReply(), nil
	}
	return command.NewBulkStringReply(v), nil
}

// HMGET key field [field ...]
func hmgetCmd(ctx *command.Context) (*command.Reply, error) {
	h, err := lookupHash(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}

	items := make([]*command.Reply, 0, len(ctx.Args)-1)
	for _, field := range ctx.Args[1:] {
		if h == nil {
			items = append(items, command.NewNilReply())
			continue
		}
		if v, ok := h.Get(field); ok {
			items = append(items, command.NewBulkStringReply(v))
		} else {
			items = append(items, command.NewNilReply())
		}
	}
	return command.NewArrayReply(items), nil
}

// HGETALL key
func hgetallCmd(ctx *command.Context) (*command.Reply, error) {
	h, err := lookupHash(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if h == nil {
		return command.NewStringArrayReply(nil), nil
	}

	pairs := make([]string, 0, h.Len()*2)
	h.Each(func(field, value string) bool {
		pairs = append(pairs, field, value)
		return true
	})
	return command.NewStringArrayReply(pairs), nil
}

// HDEL key field [field ...]
func hdelCmd(ctx *command.Context) (*command.Reply, error) {
	h, err := lookupHash(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if h == nil {
		return command.NewIntegerReply(0), nil
	}

	deleted := h.Delete(ctx.Args[1:]...)
	if h.Len() == 0 {
		ctx.DB.Delete(ctx.Args[0])
	}
	return command.NewIntegerReply(int64(deleted)), nil
}

// HEXISTS key field
func hexistsCmd(ctx *command.Context) (*command.Reply, error) {
	h, err := lookupHash(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if h != nil && h.Exists(ctx.Args[1]) {
		return command.NewIntegerReply(1), nil
	}
	return command.NewIntegerReply(0), nil
}

// HINCRBY key field increment
func hincrbyCmd(ctx *command.Context) (*command.Reply, error) {
	delta, err := strconv.ParseInt(ctx.Args[2], 10, 64)
	if err != nil {
		return nil, command.ErrNotInteger
	}

	h, err2 := lookupOrCreateHash(ctx, ctx.Args[0])
	if err2 != nil {
		return nil, err2
	}

	cur := int64(0)
	if v, ok := h.Get(ctx.Args[1]); ok {
		cur, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, command.ErrHashValueNotInteger
		}
	}

	next := cur + delta
	if (delta > 0 && next < cur) || (delta < 0 && next > cur) {
		return nil, command.ErrIncrOverflow
	}

	h.Set(ctx.Args[1], strconv.FormatInt(next, 10))
	return command.NewIntegerReply(next), nil
}

// HINCRBYFLOAT key field increment
func hincrbyfloatCmd(ctx *command.Context) (*command.Reply, error) {
	delta, err := strconv.ParseFloat(ctx.Args[2], 64)
	if err != nil {
		return nil, command.ErrNotFloat
	}

	h, err2 := lookupOrCreateHash(ctx, ctx.Args[0])
	if err2 != nil {
		return nil, err2
	}

	cur := float64(0)
	if v, ok := h.Get(ctx.Args[1]); ok {
		cur, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, command.ErrNotFloat
		}
	}

	next := cur + delta
	if math.IsNaN(next) || math.IsInf(next, 0) {
		return nil, command.ErrIncrNaN
	}

	formatted := strconv.FormatFloat(next, 'f', -1, 64)
	h.Set(ctx.Args[1], formatted)
	return command.NewBulkStringReply(formatted), nil
}

// HKEYS key
func hkeysCmd(ctx *command.Context) (*command.Reply, error) {
	h, err := lookupHash(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if h == nil {
		return command.NewStringArrayReply(nil), nil
	}
	return command.NewStringArrayReply(h.Fields()), nil
}

// HVALS key
func hvalsCmd(ctx *command.Context) (*command.Reply, error) {
	h, err := lookupHash(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if h == nil {
		return command.NewStringArrayReply(nil), nil
	}
	return command.NewStringArrayReply(h.Values()), nil
}

// HLEN key
func hlenCmd(ctx *command.Context) (*command.Reply, error) {
	h, err := lookupHash(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if h == nil {
		return command.NewIntegerReply(0), nil
	}
	return command.NewIntegerReply(int64(h.Len())), nil
}

// HSTRLEN key field
func hstrlenCmd(ctx *command.Context) (*command.Reply, error) {
	h, err := lookupHash(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if h == nil {
		return command.NewIntegerReply(0), nil
	}
	v, ok := h.Get(ctx.Args[1])
	if !ok {
		return command.NewIntegerReply(0), nil
	}
	return command.NewIntegerReply(int64(len(v))), nil
}
