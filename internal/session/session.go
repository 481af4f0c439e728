// Package session normalises the flat namespacing string that isolates one
// ThreadBox filesystem tree from another.
package session

import "strings"

// Default is the empty session, ThreadBox's global/default namespace.
const Default = ""

// Normalize trims surrounding whitespace and maps a nil/empty value to the
// default session. Every storage engine operation accepts an optional
// session; this is the single place that decides what "optional" means.
func Normalize(raw string) string {
	return strings.TrimSpace(raw)
}

// SafeName renders a session identifier for use inside a filename: any
// character outside [A-Za-z0-9_-] becomes '-', and the empty session maps to
// "default".
func SafeName(s string) string {
	if s == "" {
		return "default"
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
