// Package utils holds small helpers shared across layers, mostly around
// parsing pagination query parameters. Nothing here knows about the domain.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or does not
// parse. Input is not trimmed; query parameters arrive trimmed already.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampInt bounds n to [lo, hi].
func ClampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
