// Package apperr holds the sentinel errors shared across quire packages.
// Callers wrap them with fmt.Errorf("...: %w", ...) and classify with errors.Is.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOperation marks failures of the walk/patch primitives.
	ErrOperation = errors.New("operation failed")
)
