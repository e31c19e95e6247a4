// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package command

import (
	"errors"
	"fmt"
)

// Validation errors surfaced to clients as RESP error frames. The prefix
// token (ERR, WRONGTYPE) is part of the wire contract.
var (
	ErrWrongType           = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")
	ErrNotInteger          = errors.New("ERR value is not an integer or out of range")
	ErrBitNotInteger       = errors.New("ERR bit is not an integer or out of range")
	ErrBitOffsetNotInteger = errors.New("ERR bit offset is not an integer or out of range")
	ErrNotFloat            = errors.New("ERR value is not a valid float")
	ErrHashValueNotInteger = errors.New("ERR hash value is not an integer")
	ErrIncrOverflow        = errors.New("ERR increment or decrement would overflow")
	ErrIncrNaN             = errors.New("ERR increment would produce NaN or Infinity")
	ErrSyntax              = errors.New("ERR syntax error")
	ErrNoSuchKey           = errors.New("ERR no such key")
	ErrExpireTime          = errors.New("ERR invalid expire time")
	ErrBitfieldOverflow    = errors.New("ERR Invalid OVERFLOW type specified")
)

// ErrWrongArgs reports a command-specific arity failure.
func ErrWrongArgs(cmd string) error {
	return fmt.Errorf("ERR wrong number of arguments for '%s' command", cmd)
}

// ErrUnknownCommand echoes the offending token.
func ErrUnknownCommand(cmd string) error {
	return fmt.Errorf("ERR unknown command '%s'", cmd)
}
