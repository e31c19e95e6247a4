// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"github.com/jbreiding/minidis/internal/command"
)

// RegisterServerCommands registers connection and server commands
func RegisterServerCommands(disp Dispatcher) {
	disp.Register(&command.Command{
		Name:       "PING",
		Handler:    pingCmd,
		Arity:      -1,
		Flags:      []string{command.FlagReadOnly, command.FlagFast},
		Categories: []string{command.CatConnection},
	})

	disp.Register(&command.Command{
		Name:       "ECHO",
		Handler:    echoCmd,
		Arity:      2,
		Flags:      []string{command.FlagReadOnly, command.FlagFast},
		Categories: []string{command.CatConnection},
	})
}

// PING [message]
func pingCmd(ctx *command.Context) (*command.Reply, error) {
	switch len(ctx.Args) {
	case 0:
		return command.NewStatusReply("PONG"), nil
	case 1:
		return command.NewBulkStringReply(ctx.Args[0]), nil
	default:
		return nil, command.ErrWrongArgs(ctx.CmdName)
	}
}

// ECHO message
func echoCmd(ctx *command.Context) (*command.Reply, error) {
	return command.NewBulkStringReply(ctx.Args[0]), nil
}
