package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore copies artifacts into a public directory served as static files.
// It exists so the full pipeline runs in development and tests without cloud
// credentials.
type LocalStore struct {
	dir     string
	baseURL string
}

var _ ObjectStore = (*LocalStore)(nil)

// NewLocalStore constructs a filesystem-backed store rooted at dir.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("public directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create public directory: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload copies the file under the key-derived path and returns its URL.
func (l *LocalStore) Upload(ctx context.Context, localPath, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key = strings.TrimLeft(filepath.ToSlash(key), "/")
	if key == "" {
		return "", errors.New("object key required")
	}

	dest := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create object directory: %w", err)
	}

	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create object: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("copy object: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close object: %w", err)
	}

	return l.baseURL + "/files/" + key, nil
}
