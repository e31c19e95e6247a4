// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package utils

import (
	"time"
)

// NowMs returns current time in milliseconds
func NowMs() int64 {
	return time.Now().UnixMilli()
}

// MsToDuration converts milliseconds to duration
func MsToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
