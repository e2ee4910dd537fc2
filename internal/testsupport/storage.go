package testsupport

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryObjectStore records uploads and returns deterministic URLs.
type MemoryObjectStore struct {
	mu sync.Mutex
	// Uploaded maps object key to the local path it came from.
	Uploaded map[string]string
	// FailKeys causes uploads of matching key substrings to fail.
	FailKeys []string
}

// NewMemoryObjectStore constructs an empty store.
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{Uploaded: make(map[string]string)}
}

func (m *MemoryObjectStore) Upload(_ context.Context, localPath, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, fragment := range m.FailKeys {
		if strings.Contains(key, fragment) {
			return "", fmt.Errorf("simulated upload failure for %s", key)
		}
	}
	m.Uploaded[key] = localPath
	return "https://cdn.test/" + key, nil
}

// Keys returns the uploaded keys.
func (m *MemoryObjectStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.Uploaded))
	for key := range m.Uploaded {
		keys = append(keys, key)
	}
	return keys
}
