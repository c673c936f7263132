// Package store implements SQLite persistence for users, sessions,
// password-reset tokens, events, registrations, and stories.
package store

import (
	"errors"
	"strings"
)

// ErrConflict is returned when an insert violates a uniqueness constraint.
// The database constraint is the source of truth; application-level
// existence checks are a fast path only.
var ErrConflict = errors.New("store: uniqueness conflict")

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
