// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"strconv"

	"github.com/jbreiding/minidis/internal/command"
	"github.com/jbreiding/minidis/internal/database"
	"github.com/jbreiding/minidis/internal/datastruct/set"
)

// RegisterSetCommands registers all set commands
func RegisterSetCommands(disp Dispatcher) {
	disp.Register(&command.Command{
		Name:       "SADD",
		Handler:    saddCmd,
		Arity:      -3,
		Flags:      []string{command.FlagWrite, command.FlagDenyOOM, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatSet},
	})

	disp.Register(&command.Command{
		Name:       "SREM",
		Handler:    sremCmd,
		Arity:      -3,
		Flags:      []string{command.FlagWrite, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatSet},
	})

	disp.Register(&command.Command{
		Name:       "SPOP",
		Handler:    spopCmd,
		Arity:      -2,
		Flags:      []string{command.FlagWrite, command.FlagRandom, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatSet},
	})

	disp.Register(&command.Command{
		Name:       "SRANDMEMBER",
		Handler:    srandmemberCmd,
		Arity:      -2,
		Flags:      []string{command.FlagReadOnly, command.FlagRandom},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatSet},
	})

	disp.Register(&command.Command{
		Name:       "SISMEMBER",
		Handler:    sismemberCmd,
		Arity:      3,
		Flags:      []string{command.FlagReadOnly, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatSet},
	})

	disp.Register(&command.Command{
		Name:       "SMISMEMBER",
		Handler:    smismemberCmd,
		Arity:      -3,
		Flags:      []string{command.FlagReadOnly, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatSet},
	})

	disp.Register(&command.Command{
		Name:       "SMEMBERS",
		Handler:    smembersCmd,
		Arity:      2,
		Flags:      []string{command.FlagReadOnly},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatSet},
	})

	disp.Register(&command.Command{
		Name:       "SCARD",
		Handler:    scardCmd,
		Arity:      2,
		Flags:      []string{command.FlagReadOnly, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatSet},
	})

	disp.Register(&command.Command{
		Name:       "SMOVE",
		Handler:    smoveCmd,
		Arity:      4,
		Flags:      []string{command.FlagWrite, command.FlagFast},
		FirstKey:   1,
		LastKey:    2,
		Categories: []string{command.CatSet},
	})

	disp.Register(&command.Command{
		Name:       "SINTER",
		Handler:    sinterCmd,
		Arity:      -2,
		Flags:      []string{command.FlagReadOnly},
		FirstKey:   1,
		LastKey:    -1,
		Categories: []string{command.CatSet},
	})

	disp.Register(&command.Command{
		Name:       "SINTERSTORE",
		Handler:    sinterstoreCmd,
		Arity:      -3,
		Flags:      []string{command.FlagWrite, command.FlagDenyOOM},
		FirstKey:   1,
		LastKey:    -1,
		Categories: []string{command.CatSet},
	})

	disp.Register(&command.Command{
		Name:       "SUNION",
		Handler:    sunionCmd,
		Arity:      -2,
		Flags:      []string{command.FlagReadOnly},
		FirstKey:   1,
		LastKey:    -1,
		Categories: []string{command.CatSet},
	})

	disp.Register(&command.Command{
		Name:       "SUNIONSTORE",
		Handler:    sunionstoreCmd,
		Arity:      -3,
		Flags:      []string{command.FlagWrite, command.FlagDenyOOM},
		FirstKey:   1,
		LastKey:    -1,
		Categories: []string{command.CatSet},
	})

	disp.Register(&command.Command{
		Name:       "SDIFF",
		Handler:    sdiffCmd,
		Arity:      -2,
		Flags:      []string{command.FlagReadOnly},
		FirstKey:   1,
		LastKey:    -1,
		Categories: []string{command.CatSet},
	})

	disp.Register(&command.Command{
		Name:       "SDIFFSTORE",
		Handler:    sdiffstoreCmd,
		Arity:      -3,
		Flags:      []string{command.FlagWrite, command.FlagDenyOOM},
		FirstKey:   1,
		LastKey:    -1,
		Categories: []string{command.CatSet},
	})
}

// collectSets resolves keys to set values, substituting an empty set for
// missing keys.
func collectSets(ctx *command.Context, keys []string) ([]*set.Set, error) {
	sets := make([]*set.Set, 0, len(keys))
	for _, key := range keys {
		s, err := lookupSet(ctx, key)
		if err != nil {
			return nil, err
		}
		if s == nil {
			s = set.New()
		}
		sets = append(sets, s)
	}
	return sets, nil
}

// storeSetResult writes an algebra result to dest, deleting dest when the
// result is empty. Returns the cardinality.
func storeSetResult(ctx *command.Context, dest string, result *set.Set) *command.Reply {
	if result.Len() == 0 {
		ctx.DB.Delete(dest)
		return command.NewIntegerReply(0)
	}
	ctx.DB.Set(dest, database.NewSetObjectFrom(result))
	return command.NewIntegerReply(int64(result.Len()))
}

// SADD key member [member ...]
func saddCmd(ctx *command.Context) (*command.Reply, error) {
	s, err := lookupOrCreateSet(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	return command.NewIntegerReply(int64(s.AddMultiple(ctx.Args[1:]))), nil
}

// SREM key member [member ...]
func sremCmd(ctx *command.Context) (*command.Reply, error) {
	s, err := lookupSet(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if s == nil {
		return command.NewIntegerReply(0), nil
	}

	removed := s.RemoveMultiple(ctx.Args[1:])
	deleteIfEmptySet(ctx, ctx.Args[0], s)
	return command.NewIntegerReply(int64(removed)), nil
}

// SPOP key [count]
func spopCmd(ctx *command.Context) (*command.Reply, error) {
	hasCount := len(ctx.Args) == 2
	count := 1
	if hasCount {
		n, err := strconv.Atoi(ctx.Args[1])
		if err != nil || n < 0 {
			return nil, command.ErrNotInteger
		}
		count = n
	}
	if len(ctx.Args) > 2 {
		return nil, command.ErrSyntax
	}

	s, err := lookupSet(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if s == nil {
		if hasCount {
			return command.NewStringArrayReply(nil), nil
		}
		return command.NewNilReply(), nil
	}

	if !hasCount {
		member, ok := s.Pop()
		deleteIfEmptySet(ctx, ctx.Args[0], s)
		if !ok {
			return command.NewNilReply(), nil
		}
		return command.NewBulkStringReply(member), nil
	}

	popped := s.PopCount(count)
	deleteIfEmptySet(ctx, ctx.Args[0], s)
	return command.NewStringArrayReply(popped), nil
}

// SRANDMEMBER key [count]
func srandmemberCmd(ctx *command.Context) (*command.Reply, error) {
	hasCount := len(ctx.Args) == 2
	count := 0
	if hasCount {
		n, err := strconv.Atoi(ctx.Args[1])
		if err != nil {
			return nil, command.ErrNotInteger
		}
		count = n
	}
	if len(ctx.Args) > 2 {
		return nil, command.ErrSyntax
	}

	s, err := lookupSet(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if s == nil {
		if hasCount {
			return command.NewStringArrayReply(nil), nil
		}
		return command.NewNilReply(), nil
	}

	if !hasCount {
		member, ok := s.RandomMember()
		if !ok {
			return command.NewNilReply(), nil
		}
		return command.NewBulkStringReply(member), nil
	}
	return command.NewStringArrayReply(s.RandomMembers(count)), nil
}

// SISMEMBER key member
func sismemberCmd(ctx *command.Context) (*command.Reply, error) {
	s, err := lookupSet(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if s != nil && s.Contains(ctx.Args[1]) {
		return command.NewIntegerReply(1), nil
	}
	return command.NewIntegerReply(0), nil
}

// SMISMEMBER key member [member ...]
func smismemberCmd(ctx *command.Context) (*command.Reply, error) {
	s, err := lookupSet(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}

	items := make([]*command.Reply, 0, len(ctx.Args)-1)
	for _, member := range ctx.Args[1:] {
		if s != nil && s.Contains(member) {
			items = append(items, command.NewIntegerReply(1))
		} else {
			items = append(items, command.NewIntegerReply(0))
		}
	}
	return command.NewArrayReply(items), nil
}

// SMEMBERS key
func smembersCmd(ctx *command.Context) (*command.Reply, error) {
	s, err := lookupSet(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if s == nil {
		return command.NewStringArrayReply(nil), nil
	}
	return command.NewStringArrayReply(s.Members()), nil
}

// SCARD key
func scardCmd(ctx *command.Context) (*command.Reply, error) {
	s, err := lookupSet(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if s == nil {
		return command.NewIntegerReply(0), nil
	}
	return command.NewIntegerReply(int64(s.Len())), nil
}

// SMOVE source destination member
func smoveCmd(ctx *command.Context) (*command.Reply, error) {
	src, err := lookupSet(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	// Destination type is validated even when the move is a no-op.
	dst, err := lookupSet(ctx, ctx.Args[1])
	if err != nil {
		return nil, err
	}

	// Same source and destination: nothing moves, only membership matters.
	if ctx.Args[0] == ctx.Args[1] {
		if src != nil && src.Contains(ctx.Args[2]) {
			return command.NewIntegerReply(1), nil
		}
		return command.NewIntegerReply(0), nil
	}

	if src == nil || !src.Remove(ctx.Args[2]) {
		return command.NewIntegerReply(0), nil
	}
	deleteIfEmptySet(ctx, ctx.Args[0], src)

	if dst == nil {
		dst, err = lookupOrCreateSet(ctx, ctx.Args[1])
		if err != nil {
			return nil, err
		}
	}
	dst.Add(ctx.Args[2])
	return command.NewIntegerReply(1), nil
}

// SINTER key [key ...]
func sinterCmd(ctx *command.Context) (*command.Reply, error) {
	sets, err := collectSets(ctx, ctx.Args)
	if err != nil {
		return nil, err
	}
	return command.NewStringArrayReply(set.Intersect(sets)), nil
}

// SINTERSTORE destination key [key ...]
func sinterstoreCmd(ctx *command.Context) (*command.Reply, error) {
	sets, err := collectSets(ctx, ctx.Args[1:])
	if err != nil {
		return nil, err
	}
	return storeSetResult(ctx, ctx.Args[0], set.NewFromSlice(set.Intersect(sets))), nil
}

// SUNION key [key ...]
func sunionCmd(ctx *command.Context) (*command.Reply, error) {
	sets, err := collectSets(ctx, ctx.Args)
	if err != nil {
		return nil, err
	}
	return command.NewStringArrayReply(set.Union(sets).Members()), nil
}

// SUNIONSTORE destination key [key ...]
func sunionstoreCmd(ctx *command.Context) (*command.Reply, error) {
	sets, err := collectSets(ctx, ctx.Args[1:])
	if err != nil {
		return nil, err
	}
	return storeSetResult(ctx, ctx.Args[0], set.Union(sets)), nil
}

// SDIFF key [key ...]
func sdiffCmd(ctx *command.Context) (*command.Reply, error) {
	sets, err := collectSets(ctx, ctx.Args)
	if err != nil {
		return nil, err
	}
	return command.NewStringArrayReply(set.Diff(sets).Members()), nil
}

// SDIFFSTORE destination key [key ...]
func sdiffstoreCmd(ctx *command.Context) (*command.Reply, error) {
	sets, err := collectSets(ctx, ctx.Args[1:])
	if err != nil {
		return nil, err
	}
	return storeSetResult(ctx, ctx.Args[0], set.Diff(sets)), nil
}
