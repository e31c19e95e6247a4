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
)

// RegisterBitmapCommands registers all bitmap commands
func RegisterBitmapCommands(disp Dispatcher) {
	disp.Register(&command.Command{
		Name:       "SETBIT",
		Handler:    setbitCmd,
		Arity:      4,
		Flags:      []string{command.FlagWrite, command.FlagDenyOOM},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatBitmap},
	})

	disp.Register(&command.Command{
		Name:       "GETBIT",
		Handler:    getbitCmd,
		Arity:      3,
		Flags:      []string{command.FlagReadOnly, command.FlagFast},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatBitmap},
	})

	disp.Register(&command.Command{
		Name:       "BITCOUNT",
		Handler:    bitcountCmd,
		Arity:      -2,
		Flags:      []string{command.FlagReadOnly},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatBitmap},
	})

	disp.Register(&command.Command{
		Name:       "BITPOS",
		Handler:    bitposCmd,
		Arity:      -3,
		Flags:      []string{command.FlagReadOnly},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatBitmap},
	})

	disp.Register(&command.Command{
		Name:       "BITOP",
		Handler:    bitopCmd,
		Arity:      -4,
		Flags:      []string{command.FlagWrite, command.FlagDenyOOM},
		FirstKey:   2,
		LastKey:    -1,
		Categories: []string{command.CatBitmap},
	})

	disp.Register(&command.Command{
		Name:       "BITFIELD",
		Handler:    bitfieldCmd,
		Arity:      -2,
		Flags:      []string{command.FlagWrite, command.FlagDenyOOM},
		FirstKey:   1,
		LastKey:    1,
		Categories: []string{command.CatBitmap},
	})
}

// SETBIT key offset value
func setbitCmd(ctx *command.Context) (*command.Reply, error) {
	offset, err := strconv.ParseInt(ctx.Args[1], 10, 64)
	if err != nil || offset < 0 {
		return nil, command.ErrBitOffsetNotInteger
	}
	bit, err := strconv.Atoi(ctx.Args[2])
	if err != nil || (bit != 0 && bit != 1) {
		return nil, command.ErrBitNotInteger
	}

	s, err := lookupOrCreateString(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	return command.NewIntegerReply(int64(s.SetBit(offset, bit))), nil
}

// GETBIT key offset
func getbitCmd(ctx *command.Context) (*command.Reply, error) {
	offset, err := strconv.ParseInt(ctx.Args[1], 10, 64)
	if err != nil || offset < 0 {
		return nil, command.ErrBitOffsetNotInteger
	}

	s, err := lookupString(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if s == nil {
		// A missing key reads as an all-zero string.
		return command.NewIntegerReply(0), nil
	}
	return command.NewIntegerReply(int64(s.GetBit(offset))), nil
}

// BITCOUNT key [start end]
func bitcountCmd(ctx *command.Context) (*command.Reply, error) {
	start, end := int64(0), int64(-1)
	switch len(ctx.Args) {
	case 1:
	case 3:
		var err1, err2 error
		start, err1 = strconv.ParseInt(ctx.Args[1], 10, 64)
		end, err2 = strconv.ParseInt(ctx.Args[2], 10, 64)
		if err1 != nil || err2 != nil {
			return nil, command.ErrNotInteger
		}
	default:
		return nil, command.ErrSyntax
	}

	s, err := lookupString(ctx, ctx.Args[0])
	if err != nil {
		return nil, err
	}
	if s == nil {
		return command.NewIntegerReply(0), nil
	}
	return command.NewIntegerReply(s.BitCount(start, end)), nil
}

// BITPOS key bit [start [end]]
func bitposCmd(ctx *command.Context) (*command.Reply, error) {
	bit, err := strconv.Atoi(ctx.Args[1])
	if err != nil || (bit != 0 && bit != 1) {
		return nil, command.ErrBitNotInteger
	}

	start, end := int64(0), int64(-1)
	explicitEnd := false
	if len(ctx.Args) >= 3 {
		if start, err = strconv.ParseInt(ctx.Args[2], 10, 64); err != nil {
			return nil, command.ErrNotInteger
		}
	}
	if len(ctx.Args) >= 4 {
		if end, err = strconv.ParseInt(ctx.Args[3], 10, 64); err != nil {
			return nil, command.ErrNotInteger
		}
		explicitEnd = true
	}
	if len(ctx.Args) > 4 {
		return nil, command.ErrSyntax
	}

	s, err2 := lookupString(ctx, ctx.Args[0])
	if err2 != nil {
		return nil, err2
	}
	if s == nil {
		if bit == 0 {
			return command.NewIntegerReply(0), nil
		}
		return command.NewIntegerReply(-1), nil
	}
	return command.NewIntegerReply(s.BitPos(byte(bit), start, end, explicitEnd)), nil
}

// BITOP operation destkey key [key ...]
func bitopCmd(ctx *command.Context) (*command.Reply, error) {
	op := strings.ToLower(ctx.Args[0])
	dest := ctx.Args[1]
	keys := ctx.Args[2:]

	switch op {
	case "and", "or", "xor":
	case "not":
		if len(keys) != 1 {
			return nil, command.ErrWrongArgs("bitop")
		}
	default:
		return nil, command.ErrSyntax
	}

	inputs := make([][]byte, 0, len(keys))
	for _, key := range keys {
		s, err := lookupString(ctx, key)
		if err != nil {
			return nil, err
		}
		if s == nil {
			inputs = append(inputs, nil)
			continue
		}
		inputs = append(inputs, s.Bytes())
	}

	result := str.Bitop(op, inputs)
	if len(result) == 0 {
		// An empty result deletes the destination instead of storing an
		// empty string.
		ctx.DB.Delete(dest)
		return command.NewIntegerReply(0), nil
	}

	ctx.DB.Set(dest, database.NewStringObject(str.NewFromBytes(result)))
	return command.NewIntegerReply(int64(len(result))), nil
}

// bitfieldOp is one parsed GET/SET/INCRBY clause.
type bitfieldOp struct {
	kind     string // "get", "set", "incrby"
	signed   bool
	bits     int
	offset   int64
	value    int64
	overflow string // "wrap", "sat", "fail"
}

// parseBitfieldType parses u8/i16-style type tokens. Unsigned widths top
// out at 63 so every result fits the integer reply.
func parseBitfieldType(tok string) (signed bool, bits int, ok bool) {
	if len(tok) < 2 {
		return false, 0, false
	}
	switch tok[0] {
	case 'i', 'I':
		signed = true
	case 'u', 'U':
		signed = false
	default:
		return false, 0, false
	}
	n, err := strconv.Atoi(tok[1:])
	if err != nil || n < 1 || n > 64 || (!signed && n > 63) {
		return false, 0, false
	}
	return signed, n, true
}

// parseBitfieldOffset parses a bit offset, where #N means N fields of the
// given width.
func parseBitfieldOffset(tok string, bits int) (int64, bool) {
	mult := int64(1)
	if strings.HasPrefix(tok, "#") {
		tok = tok[1:]
		mult = int64(bits)
	}
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n * mult, true
}

func bitfieldRange(signed bool, bits int) (min, max int64) {
	if signed {
		max = (int64(1) << uint(bits-1)) - 1
		min = -max - 1
		return min, max
	}
	return 0, (int64(1) << uint(bits)) - 1
}

// bitfieldWrap truncates v to the field width, sign-extending when signed.
func bitfieldWrap(signed bool, bits int, v int64) int64 {
	if bits == 64 {
		return v
	}
	mask := (uint64(1) << uint(bits)) - 1
	u := uint64(v) & mask
	if signed && u&(uint64(1)<<uint(bits-1)) != 0 {
		u |= ^mask
	}
	return int64(u)
}

// BITFIELD key [GET type offset | SET type offset value |
// INCRBY type offset increment | OVERFLOW WRAP|SAT|FAIL] ...
func bitfieldCmd(ctx *command.Context) (*command.Reply, error) {
	ops, hasWrite, err := parseBitfieldOps(ctx.Args[1:])
	if err != nil {
		return nil, err
	}

	var s *str.String
	if hasWrite {
		s, err = lookupOrCreateString(ctx, ctx.Args[0])
	} else {
		s, err = lookupString(ctx, ctx.Args[0])
	}
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = str.New("")
	}

	items := make([]*command.Reply, 0, len(ops))
	for _, op := range ops {
		switch op.kind {
		case "get":
			items = append(items, command.NewIntegerReply(s.GetField(op.signed, op.bits, op.offset)))

		case "set":
			old := s.GetField(op.signed, op.bits, op.offset)
			min, max := bitfieldRange(op.signed, op.bits)
			v := op.value
			if op.bits < 64 && (v < min || v > max) {
				switch op.overflow {
				case "fail":
					items = append(items, command.NewNilReply())
					continue
				case "sat":
					if v < min {
						v = min
					} else {
						v = max
					}
				default:
					v = bitfieldWrap(op.signed, op.bits, v)
				}
			}
			s.SetField(op.bits, op.offset, v)
			items = append(items, command.NewIntegerReply(old))

		case "incrby":
			old := s.GetField(op.signed, op.bits, op.offset)
			min, max := bitfieldRange(op.signed, op.bits)
			incr := op.value

			overflows := (incr > 0 && old > max-incr) || (incr < 0 && old < min-incr)
			var next int64
			switch {
			case !overflows:
				next = old + incr
			case op.overflow == "fail":
				items = append(items, command.NewNilReply())
				continue
			case op.overflow == "sat":
				if incr > 0 {
					next = max
				} else {
					next = min
				}
			default:
				next = bitfieldWrap(op.signed, op.bits, int64(uint64(old)+uint64(incr)))
			}
			s.SetField(op.bits, op.offset, next)
			items = append(items, command.NewIntegerReply(next))
		}
	}

	return command.NewArrayReply(items), nil
}

func parseBitfieldOps(args []string) ([]bitfieldOp, bool, error) {
	var ops []bitfieldOp
	overflow := "wrap"
	hasWrite := false

	for i := 0; i < len(args); {
		switch strings.ToLower(args[i]) {
		case "overflow":
			if i+1 >= len(args) {
				return nil, false, command.ErrSyntax
			}
			switch strings.ToLower(args[i+1]) {
			case "wrap", "sat", "fail":
				overflow = strings.ToLower(args[i+1])
			default:
				return nil, false, command.ErrBitfieldOverflow
			}
			i += 2

		case "get":
			op, err := parseFieldClause(args, i, 3, overflow)
			if err != nil {
				return nil, false, err
			}
			op.kind = "get"
			ops = append(ops, op)
			i += 3

		case "set", "incrby":
			op, err := parseFieldClause(args, i, 4, overflow)
			if err != nil {
				return nil, false, err
			}
			op.kind = strings.ToLower(args[i])
			v, err2 := strconv.ParseInt(args[i+3], 10, 64)
			if err2 != nil {
				return nil, false, command.ErrNotInteger
			}
			op.value = v
			hasWrite = true
			ops = append(ops, op)
			i += 4

		default:
			return nil, false, command.ErrSyntax
		}
	}
	return ops, hasWrite, nil
}

func parseFieldClause(args []string, i, width int, overflow string) (bitfieldOp, error) {
	if i+width > len(args) {
		return bitfieldOp{}, command.ErrSyntax
	}
	signed, bits, ok := parseBitfieldType(args[i+1])
	if !ok {
		return bitfieldOp{}, command.ErrSyntax
	}
	offset, ok := parseBitfieldOffset(args[i+2], bits)
	if !ok {
		return bitfieldOp{}, command.ErrBitOffsetNotInteger
	}
	return bitfieldOp{signed: signed, bits: bits, offset: offset, overflow: overflow}, nil
}
