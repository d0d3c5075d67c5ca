package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
)

// DefaultExtensions are the note extensions used when none are configured.
var DefaultExtensions = []string{".md", ".txt", ".note"}

// FS implements Provider backed by the local file system.
type FS struct {
	root       string // absolute path to notes directory
	extensions []string
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string, extensions ...string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &FS{root: abs, extensions: extensions}, nil
}

// Root returns the absolute notes root.
func (f *FS) Root() string { return f.root }

// IsNotePath reports whether p ends with one of the configured extensions.
func (f *FS) IsNotePath(p string) bool {
	ext := path.Ext(p)
	if ext == "" || path.Base(p) == ext {
		return false
	}
	for _, e := range f.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Clean normalises a note or directory path to its slash-rooted form.
func Clean(p string) string {
	return path.Clean("/" + strings.TrimPrefix(filepath.ToSlash(p), "/"))
}

// safePath resolves a root-relative path against the notes root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" || rel == "/" {
		return f.root, nil
	}
	if strings.Contains(rel, "\x00") {
		return "", fmt.Errorf("storage: invalid path %q: %w", rel, apperr.ErrInvalidArgument)
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if seg == ".." {
			return "", fmt.Errorf("storage: path escapes notes root: %s: %w", rel, apperr.ErrInvalidArgument)
		}
	}
	abs := filepath.Join(f.root, filepath.FromSlash(Clean(rel)))
	// Ensure the resolved path is still under root.
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes notes root: %s: %w", rel, apperr.ErrInvalidArgument)
	}
	return abs, nil
}

func (f *FS) rel(abs string) string {
	r, _ := filepath.Rel(f.root, abs)
	return "/" + filepath.ToSlash(r)
}

// Hidden reports whether any segment of the slash path rel starts with ".".
func Hidden(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") && seg != "." {
			return true
		}
	}
	return false
}

// Paths walks dir and returns the sorted note paths below it. Any path with a
// segment starting with "." is skipped.
func (f *FS) Paths(dir string) ([]string, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: directory %s: %w", dir, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: not a directory: %s: %w", dir, apperr.ErrInvalidArgument)
	}

	var out []string
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel := f.rel(p)
		if p != base && Hidden(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !f.IsNotePath(rel) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: walk %s: %w: %v", dir, apperr.ErrOperation, err)
	}
	sort.Strings(out)
	return out, nil
}

// List walks dir and returns metadata for every note.
func (f *FS) List(dir string) ([]models.NoteMetadata, error) {
	paths, err := f.Paths(dir)
	if err != nil {
		return nil, err
	}
	out := make([]models.NoteMetadata, 0, len(paths))
	for _, p := range paths {
		abs, _ := f.safePath(p)
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("storage: list: %w", err)
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("storage: list: %w", err)
		}
		out = append(out, models.NoteMetadata{
			Path:      p,
			Checksum:  Checksum(data),
			UpdatedAt: info.ModTime(),
		})
	}
	return out, nil
}

// Files returns every regular file below dir without extension or hidden
// filtering. A missing dir yields an empty result.
func (f *FS) Files(dir string) ([]string, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) && p == base {
				return filepath.SkipAll
			}
			return walkErr
		}
		if d.Type().IsRegular() {
			out = append(out, f.rel(p))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: files %s: %w: %v", dir, apperr.ErrOperation, err)
	}
	sort.Strings(out)
	return out, nil
}

// Read returns the raw bytes of a file.
func (f *FS) Read(p string) ([]byte, error) {
	abs, err := f.safePath(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: read %s: %w", p, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read %s: %w", p, err)
	}
	return data, nil
}

// Exists reports whether p is an existing regular file.
func (f *FS) Exists(p string) bool {
	abs, err := f.safePath(p)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.Mode().IsRegular()
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(p string, content []byte) error {
	abs, err := f.safePath(p)
	if err != nil {
		return err
	}
	return writeAtomic(abs, content)
}

// Create writes content to a path that must not exist yet.
func (f *FS) Create(p string, content []byte) error {
	abs, err := f.safePath(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	file, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("storage: create %s: %w", p, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("storage: create %s: %w", p, err)
	}
	if _, err := file.Write(content); err != nil {
		_ = file.Close()
		_ = os.Remove(abs)
		return fmt.Errorf("storage: write %s: %w", p, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("storage: close %s: %w", p, err)
	}
	return nil
}

func writeAtomic(abs string, content []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".quire-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a file.
func (f *FS) Delete(p string) error {
	abs, err := f.safePath(p)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage: delete %s: %w", p, apperr.ErrNotFound)
		}
		return fmt.Errorf("storage: delete %s: %w", p, err)
	}
	return nil
}

// RemoveAll removes dir and everything below it.
func (f *FS) RemoveAll(dir string) error {
	abs, err := f.safePath(dir)
	if err != nil {
		return err
	}
	if abs == f.root {
		return fmt.Errorf("storage: refusing to remove notes root: %w", apperr.ErrInvalidArgument)
	}
	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("storage: remove %s: %w", dir, err)
	}
	return nil
}

// Move renames a file or directory. The destination must not exist.
func (f *FS) Move(oldPath, newPath string) error {
	absOld, err := f.safePath(oldPath)
	if err != nil {
		return err
	}
	absNew, err := f.safePath(newPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(absOld); err != nil {
		return fmt.Errorf("storage: move %s: %w", oldPath, apperr.ErrNotFound)
	}
	if _, err := os.Stat(absNew); err == nil {
		return fmt.Errorf("storage: move to %s: %w", newPath, apperr.ErrAlreadyExists)
	}
	if err := os.MkdirAll(filepath.Dir(absNew), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for move: %w", err)
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return fmt.Errorf("storage: move: %w", err)
	}
	return nil
}

// Checksum returns the hex-encoded SHA-256 digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
