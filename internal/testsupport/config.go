// Package testsupport provides shared fixtures and fakes for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"arforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Storage.PublicDir = filepath.Join(base, "public")
	cfg.Publish.BaseURL = "https://menus.example.com"
	cfg.Pipeline.WorkerCount = 1
	cfg.Tools.TimeoutSeconds = 5

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithWorkers overrides the pipeline worker count.
func WithWorkers(count int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Pipeline.WorkerCount = count
	}
}

// WithQueueCapacity overrides the submission queue capacity.
func WithQueueCapacity(capacity int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Pipeline.QueueCapacity = capacity
	}
}
