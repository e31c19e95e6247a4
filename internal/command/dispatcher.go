// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package command

import (
	"strings"

	"github.com/jbreiding/minidis/internal/database"
	"github.com/jbreiding/minidis/pkg/log"
)

// Dispatcher routes parsed command frames to their handlers. It runs on
// the event loop thread; handlers execute to completion before the next
// frame is processed.
type Dispatcher struct {
	commands map[string]*Command
	db       *database.DB
}

// NewDispatcher creates a new command dispatcher
func NewDispatcher(db *database.DB) *Dispatcher {
	return &Dispatcher{
		commands: make(map[string]*Command),
		db:       db,
	}
}

// Register registers a new command
func (d *Dispatcher) Register(cmd *Command) {
	d.commands[strings.ToLower(cmd.Name)] = cmd
}

// Get returns a command by name
func (d *Dispatcher) Get(name string) (*Command, bool) {
	cmd, ok := d.commands[strings.ToLower(name)]
	return cmd, ok
}

// Commands returns the registered command count.
func (d *Dispatcher) Commands() int {
	return len(d.commands)
}

// DB returns the keyspace the dispatcher operates on.
func (d *Dispatcher) DB() *database.DB {
	return d.db
}

// Dispatch executes one command and returns the serialized reply.
// Validation failures become error frames; they never reach the keyspace.
func (d *Dispatcher) Dispatch(cmdName string, args []string) []byte {
	cmd, ok := d.Get(cmdName)
	if !ok {
		log.Verbose("unknown command: %s", cmdName)
		return NewErrorFrame(ErrUnknownCommand(cmdName))
	}

	if err := cmd.CheckArity(len(args)); err != nil {
		return NewErrorFrame(err)
	}

	ctx := &Context{
		DB:      d.db,
		CmdName: cmd.Name,
		Args:    args,
	}

	reply, err := cmd.Handler(ctx)
	if err != nil {
		return NewErrorFrame(err)
	}
	return reply.Marshal()
}

// NewErrorFrame serializes a validation error as a RESP error frame.
func NewErrorFrame(err error) []byte {
	return []byte("-" + err.Error() + "\r\n")
}
