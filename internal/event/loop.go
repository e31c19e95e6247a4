// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package event implements the single-threaded reactor: an epoll wait
// over the listening and client sockets, interleaved with time events.
// Everything the server does runs on this one thread.
package event

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/jbreiding/minidis/pkg/utils"
)

// TimeHandler runs when a time event falls due. Returning a non-negative
// value reschedules the event that many milliseconds from now; a negative
// value removes it.
type TimeHandler func(nowMs int64) int64

// FileHandler runs when a file descriptor is reported ready.
type FileHandler func(fd int)

type timeEvent struct {
	id        int64
	processAt int64
	handler   TimeHandler
}

type fileEvent struct {
	onRead  FileHandler
	onWrite FileHandler
}

// Loop multiplexes socket readiness with time events.
type Loop struct {
	epfd       int
	fileEvents map[int]*fileEvent
	timeEvents []*timeEvent
	nextTimeID int64
	stopped    atomic.Bool
}

// NewLoop creates the reactor.
func NewLoop() (*Loop, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, errors.Wrap(err, "epoll_create1")
	}
	return &Loop{
		epfd:       epfd,
		fileEvents: make(map[int]*fileEvent),
	}, nil
}

// AddFile registers fd for read readiness.
func (l *Loop) AddFile(fd int, onRead FileHandler) error {
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return errors.Wrap(err, "epoll_ctl add")
	}
	l.fileEvents[fd] = &fileEvent{onRead: onRead}
	return nil
}

// RemoveFile drops fd from the wait set.
func (l *Loop) RemoveFile(fd int) {
	if _, ok := l.fileEvents[fd]; !ok {
		return
	}
	_ = unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	delete(l.fileEvents, fd)
}

// EnableWrite adds write interest for fd, used while a reply could not be
// flushed in one go.
func (l *Loop) EnableWrite(fd int, onWrite FileHandler) {
	fe, ok := l.fileEvents[fd]
	if !ok {
		return
	}
	fe.onWrite = onWrite
	ev := unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLOUT, Fd: int32(fd)}
	_ = unix.EpollCtl(l.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

// DisableWrite removes write interest for fd.
func (l *Loop) DisableWrite(fd int) {
	fe, ok := l.fileEvents[fd]
	if !ok {
		return
	}
	fe.onWrite = nil
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
	_ = unix.EpollCtl(l.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

// AddTimeEvent schedules a handler delayMs from now. Returns its id.
func (l *Loop) AddTimeEvent(delayMs int64, handler TimeHandler) int64 {
	l.nextTimeID++
	l.timeEvents = append(l.timeEvents, &timeEvent{
		id:        l.nextTimeID,
		processAt: utils.NowMs() + delayMs,
		handler:   handler,
	})
	return l.nextTimeID
}

// nearestDeadline returns the soonest process_at, or ok=false when no
// time events exist.
func (l *Loop) nearestDeadline() (int64, bool) {
	if len(l.timeEvents) == 0 {
		return 0, false
	}
	nearest := l.timeEvents[0].processAt
	for _, te := range l.timeEvents[1:] {
		if te.processAt < nearest {
			nearest = te.processAt
		}
	}
	return nearest, true
}

// Run drives the reactor until Stop is called.
func (l *Loop) Run() error {
	events := make([]unix.EpollEvent, 128)

	for !l.stopped.Load() {
		timeout := 0
		if nearest, ok := l.nearestDeadline(); ok {
			if d := nearest - utils.NowMs(); d > 0 {
				timeout = int(d)
			}
		}

		n, err := unix.EpollWait(l.epfd, events, timeout)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return errors.Wrap(err, "epoll_wait")
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			fe, ok := l.fileEvents[fd]
			if !ok {
				// A handler earlier in this batch closed the fd.
				continue
			}
			if events[i].Events&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLERR) != 0 {
				fe.onRead(fd)
			}
			// Re-check: the read handler may have dropped the client.
			if fe, ok = l.fileEvents[fd]; ok && fe.onWrite != nil &&
				events[i].Events&unix.EPOLLOUT != 0 {
				fe.onWrite(fd)
			}
		}

		l.processTimeEvents()
	}
	return nil
}

// processTimeEvents fires every due handler, rescheduling or removing it
// according to its return value.
func (l *Loop) processTimeEvents() {
	now := utils.NowMs()
	kept := l.timeEvents[:0]
	for _, te := range l.timeEvents {
		if te.processAt > now {
			kept = append(kept, te)
			continue
		}
		if next := te.handler(now); next >= 0 {
			te.processAt = now + next
			kept = append(kept, te)
		}
	}
	l.timeEvents = kept
}

// Stop makes Run return after the current iteration. Safe to call from
// the signal-handling goroutine.
func (l *Loop) Stop() {
	l.stopped.Store(true)
}

// Close releases the epoll descriptor.
func (l *Loop) Close() {
	_ = unix.Close(l.epfd)
}
