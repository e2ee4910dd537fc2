// Package convert turns uploaded mesh files into a single canonical GLB,
// dispatching per source format to external conversion tools.
package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"arforge/internal/config"
	"arforge/internal/services"
	"arforge/internal/services/command"
)

// Converter produces one canonical GLB from an input file inside the job's
// working directory. Implementations are swappable; the orchestrator only
// depends on this contract.
type Converter interface {
	Convert(ctx context.Context, inputPath, workDir string) (string, error)
}

// canonicalName is the GLB filename every converter emits into the workdir.
const canonicalName = "model.glb"

// Set holds the per-extension converter strategies.
type Set struct {
	byExt map[string]Converter
}

// NewSet wires the default converters from configuration.
func NewSet(cfg *config.Config, runner command.Runner) *Set {
	timeout := time.Duration(cfg.Tools.TimeoutSeconds) * time.Second
	blender := &blenderConverter{binary: cfg.Tools.Blender, runner: runner, timeout: timeout}
	return &Set{byExt: map[string]Converter{
		".glb":  copyConverter{},
		".gltf": &gltfPipelineConverter{binary: cfg.Tools.GltfPipeline, runner: runner, timeout: timeout},
		".fbx":  blender,
		".obj":  blender,
	}}
}

// SupportedExtensions returns the accepted input extensions, sorted.
func (s *Set) SupportedExtensions() []string {
	exts := make([]string, 0, len(s.byExt))
	for ext := range s.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ForFile selects a converter by the file's extension. Unknown extensions
// fail with the unsupported-format validation error before any job exists.
func (s *Set) ForFile(path string) (Converter, error) {
	ext := strings.ToLower(filepath.Ext(path))
	converter, ok := s.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)",
			services.ErrUnsupportedFormat, ext, strings.Join(s.SupportedExtensions(), ", "))
	}
	return converter, nil
}

// Health reports readiness of the tool-backed converters.
func (s *Set) Health(ctx context.Context) []services.Health {
	seen := map[string]struct{}{}
	var checks []services.Health
	for _, ext := range s.SupportedExtensions() {
		checker, ok := s.byExt[ext].(interface {
			HealthCheck(context.Context) services.Health
		})
		if !ok {
			continue
		}
		health := checker.HealthCheck(ctx)
		if _, dup := seen[health.Name]; dup {
			continue
		}
		seen[health.Name] = struct{}{}
		checks = append(checks, health)
	}
	return checks
}
