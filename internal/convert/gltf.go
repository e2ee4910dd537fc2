package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"arforge/internal/services"
	"arforge/internal/services/command"
)

// gltfPipelineConverter repackages a GLTF scene plus its external assets into
// a single-file binary GLB using the gltf-pipeline CLI.
type gltfPipelineConverter struct {
	binary  string
	runner  command.Runner
	timeout time.Duration
}

func (c *gltfPipelineConverter) Convert(ctx context.Context, inputPath, workDir string) (string, error) {
	outputPath := filepath.Join(workDir, canonicalName)

	_, err := c.runner.Run(ctx, command.Spec{
		Binary:  c.binary,
		Args:    []string{"-i", inputPath, "-o", outputPath},
		Dir:     filepath.Dir(inputPath),
		Timeout: c.timeout,
	})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "convert", "gltf repackage", "", err)
	}

	if _, err := os.Stat(outputPath); errors.Is(err, os.ErrNotExist) {
		return "", services.Wrap(services.ErrExternalTool, "convert", "gltf repackage", "tool produced no output", nil)
	}
	return outputPath, nil
}

func (c *gltfPipelineConverter) HealthCheck(context.Context) services.Health {
	if !command.Available(c.binary) {
		return services.Unhealthy("gltf-pipeline", c.binary+" not found on PATH")
	}
	return services.Healthy("gltf-pipeline")
}
