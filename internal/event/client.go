// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package event

import (
	"github.com/jbreiding/minidis/internal/protocol/resp"
)

// readChunkSize bounds how much one readable event pulls off a socket.
const readChunkSize = 1024

// Client is one connected peer: its socket, parser state and any reply
// bytes not yet flushed.
type Client struct {
	fd     int
	addr   string
	parser *resp.Parser
	outbuf []byte

	// closeAfterFlush is set by QUIT and protocol errors: drop the
	// connection once pending replies are written.
	closeAfterFlush bool
}

// NewClient wraps an accepted, non-blocking socket.
func NewClient(fd int, addr string) *Client {
	return &Client{
		fd:     fd,
		addr:   addr,
		parser: resp.NewParser(),
	}
}

// Fd returns the client socket descriptor.
func (c *Client) Fd() int {
	return c.fd
}

// RemoteAddr returns the peer address.
func (c *Client) RemoteAddr() string {
	return c.addr
}

// queueReply appends serialized reply bytes for flushing.
func (c *Client) queueReply(data []byte) {
	c.outbuf = append(c.outbuf, data...)
}
