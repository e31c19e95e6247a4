// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resp

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrInvalidSyntax    = errors.New("invalid syntax")
	ErrInvalidType      = errors.New("invalid type")
	ErrBulkStringTooBig = errors.New("bulk string too big")

	// errIncomplete signals that the buffer does not yet hold a full
	// frame. It never escapes the parser.
	errIncomplete = errors.New("incomplete frame")
)

// MaxBulkStringSize caps a single bulk string payload. Configurable via
// proto-max-bulk-len.
var MaxBulkStringSize = 512 * 1024 * 1024

// Parser is a per-connection frame decoder. Bytes are appended with Feed
// as they arrive; Next yields complete frames and consumes only whole
// frames, leaving any partial tail buffered for the next read.
type Parser struct {
	buf []byte
}

// NewParser creates a new RESP parser
func NewParser() *Parser {
	return &Parser{}
}

// Feed appends newly received bytes to the parse buffer.
func (p *Parser) Feed(data []byte) {
	p.buf = append(p.buf, data...)
}

// Buffered returns the number of unconsumed bytes.
func (p *Parser) Buffered() int {
	return len(p.buf)
}

// Next returns the next complete frame, or nil when more bytes are
// needed. A non-nil error means the stream is malformed and the
// connection cannot be recovered.
func (p *Parser) Next() (*Message, error) {
	msg, n, err := parseFrame(p.buf)
	if err != nil {
		if errors.Is(err, errIncomplete) {
			return nil, nil
		}
		return nil, err
	}
	p.buf = p.buf[n:]
	if len(p.buf) == 0 {
		p.buf = nil
	}
	return msg, nil
}

// parseFrame decodes one frame from the head of buf, returning the frame
// and the number of bytes it occupied.
func parseFrame(buf []byte) (*Message, int, error) {
	line, n, err := readLine(buf)
	if err != nil {
		return nil, 0, err
	}
	if len(line) == 0 {
		return nil, 0, ErrInvalidSyntax
	}

	payload := line[1:]
	switch Type(line[0]) {
	case TypeSimpleString:
		return NewSimpleString(string(payload)), n, nil

	case TypeError:
		return NewError(string(payload)), n, nil

	case TypeInteger:
		i, err := strconv.ParseInt(string(payload), 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid integer: %q", ErrInvalidSyntax, payload)
		}
		return NewInteger(i), n, nil

	case TypeBulkString:
		length, err := strconv.Atoi(string(payload))
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid bulk string length: %q", ErrInvalidSyntax, payload)
		}
		if length < 0 {
			return NewNilBulkString(), n, nil
		}
		if length > MaxBulkStringSize {
			return nil, 0, ErrBulkStringTooBig
		}
		if len(buf) < n+length+2 {
			return nil, 0, errIncomplete
		}
		if buf[n+length] != '\r' || buf[n+length+1] != '\n' {
			return nil, 0, ErrInvalidSyntax
		}
		data := make([]byte, length)
		copy(data, buf[n:n+length])
		return NewBulkString(data), n + length + 2, nil

	case TypeArray:
		count, err := strconv.Atoi(string(payload))
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid array length: %q", ErrInvalidSyntax, payload)
		}
		if count < 0 {
			return NewArray(nil), n, nil
		}
		items := make([]*Message, count)
		pos := n
		for i := 0; i < count; i++ {
			item, itemLen, err := parseFrame(buf[pos:])
			if err != nil {
				return nil, 0, err
			}
			items[i] = item
			pos += itemLen
		}
		return NewArray(items), pos, nil

	default:
		return nil, 0, fmt.Errorf("%w: unknown type: %c", ErrInvalidType, line[0])
	}
}

// readLine returns the bytes before the next CRLF and the offset just
// past it.
func readLine(buf []byte) ([]byte, int, error) {
	idx := bytes.IndexByte(buf, '\n')
	if idx < 0 {
		return nil, 0, errIncomplete
	}
	if idx == 0 || buf[idx-1] != '\r' {
		return nil, 0, ErrInvalidSyntax
	}
	return buf[:idx-1], idx + 1, nil
}

// ParseCommand interprets an array frame as a client command: the first
// bulk string is the name, the rest are arguments.
func (m *Message) ParseCommand() (string, []string, error) {
	items, ok := m.Array()
	if !ok {
		return "", nil, fmt.Errorf("expected array, got %c", m.Type)
	}
	if len(items) == 0 {
		return "", nil, errors.New("empty command array")
	}

	name, ok := items[0].String()
	if !ok {
		return "", nil, errors.New("command name is not a string")
	}

	args := make([]string, 0, len(items)-1)
	for i := 1; i < len(items); i++ {
		arg, ok := items[i].String()
		if !ok {
			if v, isInt := items[i].Integer(); isInt {
				args = append(args, strconv.FormatInt(v, 10))
				continue
			}
			return "", nil, fmt.Errorf("argument %d is not a string", i)
		}
		args = append(args, arg)
	}
	return name, args, nil
}
