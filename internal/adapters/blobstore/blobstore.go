// Package blobstore provides filesystem-backed blob storage for the
// annotation data root. Writes go through a temp file and rename so a
// crash never leaves a half-written document, and a file lock on the
// data root enforces single-instance execution.
package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"
)

// Default file modes for created blobs and directories.
const (
	defaultFileMode = os.FileMode(0o644)
	defaultDirMode  = os.FileMode(0o755)

	lockFileName = ".dojang.lock"
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithFileMode sets the mode for created blob files.
func WithFileMode(mode os.FileMode) Option {
	return func(s *Store) {
		if mode != 0 {
			s.fileMode = mode
		}
	}
}

// Store reads and writes blobs under a single root directory. Keys are
// slash-separated relative paths.
type Store struct {
	root     string
	fileMode os.FileMode
	lock     *flock.Flock
}

// New creates the root directory if needed and acquires the data root
// lock. A second instance on the same root fails with ErrLocked.
func New(ctx context.Context, root string, opts ...Option) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: empty root", ErrInvalidKey)
	}
	if err := os.MkdirAll(root, defaultDirMode); err != nil {
		return nil, fmt.Errorf("create data root: %w", err)
	}

	s := &Store{
		root:     root,
		fileMode: defaultFileMode,
		lock:     flock.New(filepath.Join(root, lockFileName)),
	}
	for _, opt := range opts {
		opt(s)
	}

	ok, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire data root lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return s, nil
}

// Close releases the data root lock.
func (s *Store) Close() error {
	if err := s.lock.Unlock(); err != nil {
		return fmt.Errorf("release data root lock: %w", err)
	}
	return nil
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// path resolves a key under the root, rejecting escapes.
func (s *Store) path(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.root, clean), nil
}

// Exists reports whether a blob is present.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	p, err := s.path(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat blob %q: %w", key, err)
	}
	return true, nil
}

// Read returns a blob's contents. A missing blob yields ErrNotFound.
func (s *Store) Read(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("read blob %q: %w", key, err)
	}
	return data, nil
}

// Write stores a blob atomically: the data lands in a temp file in the
// destination directory, then a rename swaps it into place.
func (s *Store) Write(_ context.Context, key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, defaultDirMode); err != nil {
		return fmt.Errorf("create blob dir %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(p)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp blob for %q: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp blob for %q: %w", key, err)
	}
	if err := tmp.Chmod(s.fileMode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp blob for %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp blob for %q: %w", key, err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp blob into %q: %w", key, err)
	}
	return nil
}

// Copy duplicates src into dst, overwriting dst. Used for rolling
// backups before a rewrite.
func (s *Store) Copy(ctx context.Context, src, dst string) error {
	data, err := s.Read(ctx, src)
	if err != nil {
		return err
	}
	return s.Write(ctx, dst, data)
}

// List returns the keys directly under prefix, sorted ascending. A
// missing prefix directory yields an empty list.
func (s *Store) List(_ context.Context, prefix string) ([]string, error) {
	dir := s.root
	if prefix != "" {
		p, err := s.path(prefix)
		if err != nil {
			return nil, err
		}
		dir = p
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list blobs under %q: %w", prefix, err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || e.Name() == lockFileName {
			continue
		}
		name := e.Name()
		if prefix != "" {
			name = prefix + "/" + name
		}
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes a blob. Deleting an absent blob is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %q: %w", key, err)
	}
	return nil
}
