package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local stores objects as files under a root directory.
type Local struct {
	root     string
	baseURL  string
	dirPerm  fs.FileMode
	filePerm fs.FileMode
}

// LocalOption configures Local.
type LocalOption func(*Local)

// WithBaseURL sets the public prefix returned by URL.
func WithBaseURL(baseURL string) LocalOption {
	return func(l *Local) {
		if baseURL != "" {
			l.baseURL = baseURL
		}
	}
}

// WithPermissions sets directory and file modes.
func WithPermissions(dir, file fs.FileMode) LocalOption {
	return func(l *Local) {
		if dir != 0 {
			l.dirPerm = dir
		}
		if file != 0 {
			l.filePerm = file
		}
	}
}

// NewLocal creates the root directory if needed.
func NewLocal(root string, opts ...LocalOption) (*Local, error) {
	if root == "" {
		return nil, ErrInvalidConfig
	}

	l := &Local{
		root:     root,
		baseURL:  "/",
		dirPerm:  0o755,
		filePerm: 0o644,
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := os.MkdirAll(root, l.dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	return l, nil
}

// Put writes r to key. The write goes to a temp file first and is renamed into
// place, so readers never observe a partial object.
func (l *Local) Put(ctx context.Context, key string, r io.Reader, contentType string) (Object, error) {
	key, err := CleanKey(key)
	if err != nil {
		return Object{}, err
	}
	if err := ctx.Err(); err != nil {
		return Object{}, fmt.Errorf("%w: %w", ErrOperationCanceled, err)
	}

	dst := l.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), l.dirPerm); err != nil {
		return Object{}, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return Object{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	size, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return Object{}, fmt.Errorf("failed to write object: %w", err)
	}

	if err := os.Chmod(tmp.Name(), l.filePerm); err != nil {
		return Object{}, fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return Object{}, fmt.Errorf("failed to move object into place: %w", err)
	}

	return Object{
		Key:         key,
		Size:        size,
		ContentType: contentType,
		URL:         l.URL(key),
	}, nil
}

// Exists reports whether key is stored.
func (l *Local) Exists(_ context.Context, key string) (bool, error) {
	key, err := CleanKey(key)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(l.path(key))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to stat object: %w", err)
	default:
		return !info.IsDir(), nil
	}
}

// Delete removes key. A missing key returns ErrNotFound.
func (l *Local) Delete(_ context.Context, key string) error {
	key, err := CleanKey(key)
	if err != nil {
		return err
	}

	if err := os.Remove(l.path(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// URL returns the public URL for key.
func (l *Local) URL(key string) string {
	return JoinURL(l.baseURL, key)
}

// Root returns the storage directory.
func (l *Local) Root() string { return l.root }

func (l *Local) path(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

var _ Storage = (*Local)(nil)
