// Package sysutil holds process-level helpers shared by startup code and the
// packages that parse loosely-typed external input.
package sysutil

import (
	"strings"

	"github.com/rs/zerolog"
)

// SetLogLevel sets the global zerolog level from a config string. Input is
// trimmed and lowercased; "warning" is accepted for "warn". Empty or
// unrecognized values fall back to info so a typo in LOG_LEVEL never
// silences the process.
func SetLogLevel(lvl string) {
	s := strings.ToLower(strings.TrimSpace(lvl))
	if s == "warning" {
		s = "warn"
	}
	if s != "" {
		if l, err := zerolog.ParseLevel(s); err == nil && l != zerolog.NoLevel {
			zerolog.SetGlobalLevel(l)
			return
		}
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// IsTruthy reports whether a string from an env var or a sheet cell reads as
// true. Accepted (case-insensitive, trimmed): "1", "true", "yes", "y", "on".
func IsTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// FirstNonEmpty returns the first value that is more than whitespace, or ""
// when none is. The winner is returned as-is, untrimmed.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
