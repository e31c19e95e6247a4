// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resp

import "strconv"

// ResponseBuilder accumulates RESP reply bytes.
type ResponseBuilder struct {
	buf []byte
}

// NewResponseBuilder creates a new response builder
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{buf: make([]byte, 0, 64)}
}

// Bytes returns the built response as bytes
func (b *ResponseBuilder) Bytes() []byte {
	return b.buf
}

// WriteSimpleString writes a simple string to the buffer
func (b *ResponseBuilder) WriteSimpleString(s string) *ResponseBuilder {
	b.buf = append(b.buf, '+')
	b.buf = append(b.buf, s...)
	b.buf = append(b.buf, '\r', '\n')
	return b
}

// WriteErrorString writes an error string to the buffer
func (b *ResponseBuilder) WriteErrorString(err string) *ResponseBuilder {
	b.buf = append(b.buf, '-')
	b.buf = append(b.buf, err...)
	b.buf = append(b.buf, '\r', '\n')
	return b
}

// WriteInteger writes an integer to the buffer
func (b *ResponseBuilder) WriteInteger(i int64) *ResponseBuilder {
	b.buf = append(b.buf, ':')
	b.buf = strconv.AppendInt(b.buf, i, 10)
	b.buf = append(b.buf, '\r', '\n')
	return b
}

// WriteBulkString writes a bulk string to the buffer
func (b *ResponseBuilder) WriteBulkString(data []byte) *ResponseBuilder {
	if data == nil {
		b.buf = append(b.buf, "$-1\r\n"...)
		return b
	}
	b.buf = append(b.buf, '$')
	b.buf = strconv.AppendInt(b.buf, int64(len(data)), 10)
	b.buf = append(b.buf, '\r', '\n')
	b.buf = append(b.buf, data...)
	b.buf = append(b.buf, '\r', '\n')
	return b
}

// WriteBulkStringFromString writes a string as a bulk string to the buffer
func (b *ResponseBuilder) WriteBulkStringFromString(s string) *ResponseBuilder {
	b.buf = append(b.buf, '$')
	b.buf = strconv.AppendInt(b.buf, int64(len(s)), 10)
	b.buf = append(b.buf, '\r', '\n')
	b.buf = append(b.buf, s...)
	b.buf = append(b.buf, '\r', '\n')
	return b
}

// WriteNil writes a null bulk string to the buffer
func (b *ResponseBuilder) WriteNil() *ResponseBuilder {
	b.buf = append(b.buf, "$-1\r\n"...)
	return b
}

// WriteArray writes an array header to the buffer
func (b *ResponseBuilder) WriteArray(count int) *ResponseBuilder {
	b.buf = append(b.buf, '*')
	b.buf = strconv.AppendInt(b.buf, int64(count), 10)
	b.buf = append(b.buf, '\r', '\n')
	return b
}

// WriteStringArray writes an array of bulk strings to the buffer
func (b *ResponseBuilder) WriteStringArray(items []string) *ResponseBuilder {
	b.WriteArray(len(items))
	for _, s := range items {
		b.WriteBulkStringFromString(s)
	}
	return b
}

// WriteBytes appends raw, already-serialized bytes to the buffer
func (b *ResponseBuilder) WriteBytes(data []byte) *ResponseBuilder {
	b.buf = append(b.buf, data...)
	return b
}

// BuildOK creates an OK response
func BuildOK() []byte {
	return []byte("+OK\r\n")
}

// BuildPong creates a PONG response
func BuildPong() []byte {
	return []byte("+PONG\r\n")
}

// BuildNil creates a null bulk string response
func BuildNil() []byte {
	return []byte("$-1\r\n")
}

// BuildSimpleString creates a simple string response
func BuildSimpleString(s string) []byte {
	return NewResponseBuilder().WriteSimpleString(s).Bytes()
}

// BuildErrorString creates an error response from a string
func BuildErrorString(err string) []byte {
	return NewResponseBuilder().WriteErrorString(err).Bytes()
}

// BuildInteger creates an integer response
func BuildInteger(i int64) []byte {
	return NewResponseBuilder().WriteInteger(i).Bytes()
}

// BuildBulkString creates a bulk string response
func BuildBulkString(s string) []byte {
	return NewResponseBuilder().WriteBulkStringFromString(s).Bytes()
}

// BuildBulkStringBytes creates a bulk string response from bytes
func BuildBulkStringBytes(b []byte) []byte {
	return NewResponseBuilder().WriteBulkString(b).Bytes()
}

// BuildStringArray creates an array response from strings
func BuildStringArray(items []string) []byte {
	return NewResponseBuilder().WriteStringArray(items).Bytes()
}

// BuildEmptyArray creates an empty array response
func BuildEmptyArray() []byte {
	return []byte("*0\r\n")
}

// IsError returns true if the serialized reply is an error frame.
func IsError(msg []byte) bool {
	return len(msg) > 0 && msg[0] == '-'
}
