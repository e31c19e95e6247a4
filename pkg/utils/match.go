// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package utils

// MatchPattern reports whether s matches the glob-style pattern used by
// KEYS: * matches any run, ? any single byte, [...] a byte class, and
// backslash escapes the next byte.
func MatchPattern(pattern, s string) bool {
	p, n := 0, 0
	starP, starN := -1, 0

	for n < len(s) {
		if p < len(pattern) {
			switch pattern[p] {
			case '*':
				starP, starN = p, n
				p++
				continue
			case '?':
				p++
				n++
				continue
			case '[':
				if ok, next := matchClass(pattern, p, s[n]); ok {
					p = next
					n++
					continue
				}
			case '\\':
				if p+1 < len(pattern) && pattern[p+1] == s[n] {
					p += 2
					n++
					continue
				}
			default:
				if pattern[p] == s[n] {
					p++
					n++
					continue
				}
			}
		}

		// Mismatch: retry from the last star, consuming one more byte.
		if starP >= 0 {
			starN++
			p, n = starP+1, starN
			continue
		}
		return false
	}

	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}

// matchClass matches c against the class starting at pattern[start] (which
// is '['). Returns the offset just past the closing bracket on success.
func matchClass(pattern string, start int, c byte) (bool, int) {
	i := start + 1
	negate := false
	if i < len(pattern) && pattern[i] == '^' {
		negate = true
		i++
	}

	matched := false
	for i < len(pattern) && pattern[i] != ']' {
		if pattern[i] == '\\' && i+1 < len(pattern) {
			i++
			if pattern[i] == c {
				matched = true
			}
			i++
			continue
		}
		if i+2 < len(pattern) && pattern[i+1] == '-' && pattern[i+2] != ']' {
			lo, hi := pattern[i], pattern[i+2]
			if lo > hi {
				lo, hi = hi, lo
			}
			if lo <= c && c <= hi {
				matched = true
			}
			i += 3
			continue
		}
		if pattern[i] == c {
			matched = true
		}
		i++
	}
	if i >= len(pattern) {
		// Unterminated class never matches.
		return false, start
	}
	if negate {
		matched = !matched
	}
	return matched, i + 1
}
