// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package event

import (
	"net"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/jbreiding/minidis/internal/protocol/resp"
	"github.com/jbreiding/minidis/pkg/log"
)

// cronIntervalMs is the maintenance tick period (nominally 10 Hz).
const cronIntervalMs = 100

// CommandProcessor executes one parsed command and returns the serialized
// reply frame.
type CommandProcessor interface {
	Dispatch(cmdName string, args []string) []byte
}

// CronTarget receives the periodic maintenance tick.
type CronTarget interface {
	Cron(nowMs int64)
}

// Server accepts RESP clients on the reactor and feeds complete command
// frames to the processor.
type Server struct {
	loop       *Loop
	processor  CommandProcessor
	cron       CronTarget
	bind       string
	port       int
	maxClients int

	listenFd int
	clients  map[int]*Client
}

// NewServer creates a server bound to the loop.
func NewServer(loop *Loop, processor CommandProcessor, cron CronTarget, bind string, port int, maxClients int) *Server {
	return &Server{
		loop:       loop,
		processor:  processor,
		cron:       cron,
		bind:       bind,
		port:       port,
		maxClients: maxClients,
		listenFd:   -1,
		clients:    make(map[int]*Client),
	}
}

// Start opens the listening socket and schedules the maintenance tick.
func (s *Server) Start() error {
	fd, err := listenTCP(s.bind, s.port)
	if err != nil {
		return err
	}
	s.listenFd = fd

	if err := s.loop.AddFile(fd, s.acceptReady); err != nil {
		_ = unix.Close(fd)
		return err
	}

	s.loop.AddTimeEvent(cronIntervalMs, func(nowMs int64) int64 {
		s.cron.Cron(nowMs)
		return cronIntervalMs
	})

	log.Info("ready to accept connections at %s:%d", s.bind, s.port)
	return nil
}

// Run drives the reactor until Stop.
func (s *Server) Run() error {
	return s.loop.Run()
}

// Stop closes every socket and halts the loop.
func (s *Server) Stop() {
	s.loop.Stop()
	for fd := range s.clients {
		s.dropClient(s.clients[fd])
	}
	if s.listenFd >= 0 {
		s.loop.RemoveFile(s.listenFd)
		_ = unix.Close(s.listenFd)
		s.listenFd = -1
	}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	return len(s.clients)
}

// listenTCP creates a non-blocking listening socket the epoll set can own.
func listenTCP(bind string, port int) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, errors.Wrap(err, "socket")
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return -1, errors.Wrap(err, "setsockopt SO_REUSEADDR")
	}

	addr := unix.SockaddrInet4{Port: port}
	if ip := net.ParseIP(bind).To4(); ip != nil {
		copy(addr.Addr[:], ip)
	}

	if err := unix.Bind(fd, &addr); err != nil {
		_ = unix.Close(fd)
		return -1, errors.Wrapf(err, "bind %s:%d", bind, port)
	}
	if err := unix.Listen(fd, 511); err != nil {
		_ = unix.Close(fd)
		return -1, errors.Wrap(err, "listen")
	}
	return fd, nil
}

// acceptReady drains the accept queue.
func (s *Server) acceptReady(_ int) {
	for {
		fd, sa, err := unix.Accept4(s.listenFd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				return
			}
			log.Error("accept error: %v", err)
			return
		}

		if s.maxClients > 0 && len(s.clients) >= s.maxClients {
			log.Warn("max clients reached (%d), rejecting connection", s.maxClients)
			_ = unix.Close(fd)
			continue
		}

		client := NewClient(fd, sockaddrString(sa))
		if err := s.loop.AddFile(fd, func(int) { s.clientReadable(client) }); err != nil {
			log.Error("cannot watch client socket: %v", err)
			_ = unix.Close(fd)
			continue
		}
		s.clients[fd] = client
		log.Debug("new connection from %s", client.RemoteAddr())
	}
}

// clientReadable pulls one chunk off the socket and runs every complete
// command frame it finishes.
func (s *Server) clientReadable(c *Client) {
	buf := make([]byte, readChunkSize)
	n, err := unix.Read(c.fd, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EINTR {
			return
		}
		log.Debug("read error from %s: %v", c.RemoteAddr(), err)
		s.dropClient(c)
		return
	}
	if n == 0 {
		// Peer closed its end.
		s.dropClient(c)
		return
	}

	c.parser.Feed(buf[:n])

	for {
		msg, err := c.parser.Next()
		if err != nil {
			// Malformed RESP is fatal to the connection.
			log.Verbose("protocol error from %s: %v", c.RemoteAddr(), err)
			c.queueReply(resp.BuildErrorString("ERR Protocol error: " + err.Error()))
			c.closeAfterFlush = true
			break
		}
		if msg == nil {
			break
		}
		s.executeFrame(c, msg)
		if c.closeAfterFlush {
			break
		}
	}

	s.flush(c)
}

// executeFrame runs one complete command frame.
func (s *Server) executeFrame(c *Client, msg *resp.Message) {
	cmdName, args, err := msg.ParseCommand()
	if err != nil {
		c.queueReply(resp.BuildErrorString("ERR Protocol error: " + err.Error()))
		c.closeAfterFlush = true
		return
	}

	if strings.ToUpper(cmdName) == "QUIT" {
		c.queueReply(resp.BuildOK())
		c.closeAfterFlush = true
		return
	}

	c.queueReply(s.processor.Dispatch(cmdName, args))
}

// flush writes as much of the pending reply bytes as the socket accepts,
// keeping write interest while a tail remains.
func (s *Server) flush(c *Client) {
	for len(c.outbuf) > 0 {
		n, err := unix.Write(c.fd, c.outbuf)
		if err != nil {
			if err == unix.EAGAIN {
				s.loop.EnableWrite(c.fd, func(int) { s.flush(c) })
				return
			}
			if err == unix.EINTR {
				continue
			}
			log.Debug("write error to %s: %v", c.RemoteAddr(), err)
			s.dropClient(c)
			return
		}
		c.outbuf = c.outbuf[n:]
	}

	c.outbuf = nil
	s.loop.DisableWrite(c.fd)
	if c.closeAfterFlush {
		s.dropClient(c)
	}
}

// dropClient releases the socket and parser state on every exit path.
func (s *Server) dropClient(c *Client) {
	if _, ok := s.clients[c.fd]; !ok {
		return
	}
	log.Debug("connection closed from %s", c.RemoteAddr())
	s.loop.RemoveFile(c.fd)
	_ = unix.Close(c.fd)
	delete(s.clients, c.fd)
}

// sockaddrString formats an accepted peer address.
func sockaddrString(sa unix.Sockaddr) string {
	if in4, ok := sa.(*unix.SockaddrInet4); ok {
		ip := net.IP(in4.Addr[:])
		return (&net.TCPAddr{IP: ip, Port: in4.Port}).String()
	}
	return "unknown"
}
