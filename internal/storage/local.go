package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/enzococca/soqotra-rockart/internal/config"
)

// Local stores objects as files under a root directory. Keys are
// slash-separated relative paths ("originals/42_....jpg").
type Local struct {
	root       string
	publicBase string
}

// NewLocal creates the root directory if needed and returns a Local backend.
func NewLocal(root, publicBase string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{
		root:       root,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// Upload writes reader to a temp file in the target directory and renames
// it into place, so a failed write never leaves a partial object behind.
func (l *Local) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	path, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %q: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return fmt.Errorf("write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %q into place: %w", key, err)
	}
	return nil
}

// Delete removes the file for key. A missing file is not an error.
func (l *Local) Delete(ctx context.Context, key string) error {
	path, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Link returns the static URL for key after checking the file exists.
func (l *Local) Link(ctx context.Context, key string) (string, error) {
	path, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotExist
		}
		return "", fmt.Errorf("stat %q: %w", key, err)
	}
	return l.publicBase + "/" + key, nil
}

// Tag reports "local".
func (l *Local) Tag() string {
	return config.BackendLocal
}

// resolve maps a key to an absolute path under root, rejecting keys that
// would escape it.
func (l *Local) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(l.root, clean), nil
}
