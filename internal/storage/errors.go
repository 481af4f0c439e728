// Package storage implements ThreadBox's virtual filesystem: a versioned
// tree of file and directory nodes, scoped by session, persisted through
// the database package.
package storage

import "github.com/threadbox/threadbox/internal/pathalg"

// Kind classifies a storage error for callers that need to branch on
// failure category (the dispatcher, mainly) without string matching.
type Kind string

const (
	KindInvalidPath      Kind = "InvalidPath"
	KindInvalidName      Kind = "InvalidName"
	KindNotFound         Kind = "NotFound"
	KindAlreadyExists    Kind = "AlreadyExists"
	KindIsDirectory      Kind = "IsDirectory"
	KindNotADirectory    Kind = "NotADirectory"
	KindUnsupportedKind  Kind = "UnsupportedKind"
	KindInvalidOperation Kind = "InvalidOperation"
	KindDecodeError      Kind = "DecodeError"
	KindBackend          Kind = "Backend"
)

// Error is the sentinel error type every engine operation returns on
// failure. It never wraps a lower-level error directly so that the
// dispatcher can render Message as-is without leaking internals.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// fromPathError converts a pathalg.Error into the equivalent storage.Error,
// preserving its kind, since the two packages share the same kind
// vocabulary for path and name failures.
func fromPathError(err error) *Error {
	perr, ok := err.(*pathalg.Error)
	if !ok {
		return newError(KindBackend, err.Error())
	}
	return newError(Kind(perr.Kind), perr.Message)
}

func backendError(err error) *Error {
	return newError(KindBackend, err.Error())
}
