package repository

import "errors"

var (
	// ErrNotFound means no session exists under the given code.
	ErrNotFound = errors.New("session not found")

	// ErrDuplicateCode means an insert collided on the session code; the
	// caller should regenerate and retry.
	ErrDuplicateCode = errors.New("session code already exists")

	// ErrConflict means a conditional update's precondition no longer held
	// at commit time. The caller should refetch the latest snapshot and
	// decide whether the operation is still legal; the engine never retries
	// silently.
	ErrConflict = errors.New("session was modified concurrently")
)
