// Package pathalg implements the pure path algebra ThreadBox uses to
// canonicalise, validate, and decompose virtual paths. It performs no I/O.
package pathalg

import (
	"fmt"
	"strings"
)

// Root is the canonical path of the session root directory.
const Root = "/"

// Error mirrors the storage engine's error kinds for path-algebra failures
// without importing the storage package (which itself imports pathalg).
type Error struct {
	Kind    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func invalidPath(format string, args ...any) error {
	return &Error{Kind: "InvalidPath", Message: fmt.Sprintf(format, args...)}
}

func invalidName(format string, args ...any) error {
	return &Error{Kind: "InvalidName", Message: fmt.Sprintf(format, args...)}
}

// Normalize canonicalises a user-supplied virtual path: it trims
// surrounding whitespace, collapses repeated slashes, prepends a leading
// slash if missing, strips a trailing slash (unless the result is the
// root), and rejects any ".." segment.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", invalidPath("path must not be empty")
	}

	segments := splitRaw(trimmed)
	for _, seg := range segments {
		if seg == ".." {
			return "", invalidPath("path %q must not contain \"..\" segments", raw)
		}
	}

	if len(segments) == 0 {
		return Root, nil
	}
	return Root + strings.Join(segments, "/"), nil
}

// splitRaw collapses runs of '/' and drops empty segments, without
// validating segment content.
func splitRaw(s string) []string {
	parts := strings.Split(s, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		segments = append(segments, p)
	}
	return segments
}

// NormalizeName validates a bare path segment intended as a new basename
// (used by rename_node). It must be non-empty after trimming, contain no
// '/', and not be "." or "..".
func NormalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", invalidName("name must not be empty")
	}
	if strings.Contains(trimmed, "/") {
		return "", invalidName("name %q must not contain '/'", raw)
	}
	if trimmed == "." || trimmed == ".." {
		return "", invalidName("name %q is not a valid basename", raw)
	}
	return trimmed, nil
}

// Basename returns the last segment of a canonical path. The root's
// basename is itself.
func Basename(canonical string) string {
	if canonical == Root {
		return Root
	}
	idx := strings.LastIndexByte(canonical, '/')
	return canonical[idx+1:]
}

// Parent returns the canonical path of the parent directory, and false if
// canonical is the root (which has no parent).
func Parent(canonical string) (string, bool) {
	if canonical == Root {
		return "", false
	}
	idx := strings.LastIndexByte(canonical, '/')
	if idx == 0 {
		return Root, true
	}
	return canonical[:idx], true
}

// Join composes a parent directory path and a basename into a canonical
// child path.
func Join(parent, name string) string {
	if parent == "" || parent == Root {
		return Root + name
	}
	return parent + "/" + name
}

// Split returns the ordered segments of a canonical path after its leading
// slash. The root yields no segments.
func Split(canonical string) []string {
	if canonical == Root {
		return nil
	}
	return strings.Split(strings.TrimPrefix(canonical, "/"), "/")
}

// Ancestors returns the canonical paths of every directory in the chain
// from the root down to (but not including) canonical itself, in
// root-to-leaf order. It is the iterative walk the storage engine uses to
// materialise missing ancestor directories without recursion.
func Ancestors(canonical string) []string {
	segments := Split(canonical)
	if len(segments) == 0 {
		return nil
	}
	ancestors := make([]string, 0, len(segments))
	current := Root
	for _, seg := range segments[:len(segments)-1] {
		current = Join(current, seg)
		ancestors = append(ancestors, current)
	}
	return ancestors
}
