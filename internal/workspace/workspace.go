// Package workspace allocates isolated per-job scratch directories under a
// shared root and guarantees their removal once a job is terminal.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Manager hands out job-scoped subdirectories of the configured root.
type Manager struct {
	root string
}

// NewManager constructs a workspace manager rooted at the given directory.
func NewManager(root string) (*Manager, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("workspace root required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	return &Manager{root: root}, nil
}

// Root returns the shared workspace root.
func (m *Manager) Root() string {
	return m.root
}

// Allocate creates an empty scratch directory exclusive to the given job.
func (m *Manager) Allocate(jobID string) (string, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return "", errors.New("job id required")
	}
	dir := filepath.Join(m.root, "job-"+jobID)
	if err := os.RemoveAll(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("reset workspace: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}
	return dir, nil
}

// Cleanup removes a previously allocated directory. It refuses paths outside
// the managed root so a corrupted job record cannot delete foreign data.
func (m *Manager) Cleanup(dir string) error {
	dir = filepath.Clean(strings.TrimSpace(dir))
	if dir == "" || dir == m.root {
		return nil
	}
	rel, err := filepath.Rel(m.root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("refusing to remove %q outside workspace root", dir)
	}
	return os.RemoveAll(dir)
}
