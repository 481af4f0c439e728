// Package idgen supplies unique opaque identifiers for inodes and versions.
package idgen

import "github.com/google/uuid"

// New returns a random 128-bit identifier rendered as 36-character
// hyphenated text. Collision probability is low enough that callers rely on
// (session, path) uniqueness for correctness, never on id uniqueness.
func New() string {
	return uuid.New().String()
}
