// Package repository defines error types that are reused across
// multiple repositories.  These sentinel values allow higher layers
// such as the marketplace services and handlers to distinguish
// between failure scenarios with errors.Is instead of string
// matching.
package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist.
// For bib listings the handlers deliberately reuse this for private
// listings accessed without a valid token, so that probing cannot
// distinguish "absent" from "forbidden".
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into a 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because
// of conflicting state, such as the conditional sold-update matching
// zero rows.  Handlers translate this into a 409.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when a uniqueness constraint is violated,
// e.g. joining the same event waitlist twice.
var ErrDuplicate = errors.New("duplicate")
