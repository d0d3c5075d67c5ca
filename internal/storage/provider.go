// Package storage defines the notes file-system abstraction.
//
// Paths handed to a Provider are note paths: slash-rooted and relative to the
// notes root ("/projects/plan.md"). A leading slash is optional on input and
// always present on output.
package storage

import "github.com/starford/quire/internal/models"

// Provider is the interface for notes file operations.
type Provider interface {
	// Root returns the absolute notes root directory.
	Root() string
	// IsNotePath reports whether path carries a recognised note extension.
	IsNotePath(path string) bool
	// Paths returns the sorted note paths under dir, skipping hidden segments.
	Paths(dir string) ([]string, error)
	// List returns metadata for every note under dir.
	List(dir string) ([]models.NoteMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the content of path.
	Write(path string, content []byte) error
	// Create writes a new file and fails with apperr.ErrAlreadyExists if path is taken.
	Create(path string, content []byte) error
	// Exists reports whether path is an existing regular file.
	Exists(path string) bool
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}

// Compile-time check.
var _ Provider = (*FS)(nil)
