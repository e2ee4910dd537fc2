// Package optimize applies Draco mesh compression to a canonical GLB via the
// gltf-pipeline CLI. Optimization is best-effort: callers fall back to the
// unoptimized GLB when the pass fails.
package optimize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"arforge/internal/config"
	"arforge/internal/services"
	"arforge/internal/services/command"
)

const optimizedName = "model.optimized.glb"

// Optimizer compresses GLB geometry in place within the job workspace.
type Optimizer struct {
	binary       string
	runner       command.Runner
	timeout      time.Duration
	compression  int
	positionBits int
}

// New wires the optimizer from configuration.
func New(cfg *config.Config, runner command.Runner) *Optimizer {
	return &Optimizer{
		binary:       cfg.Tools.GltfPipeline,
		runner:       runner,
		timeout:      time.Duration(cfg.Tools.TimeoutSeconds) * time.Second,
		compression:  cfg.Pipeline.DracoCompression,
		positionBits: cfg.Pipeline.QuantizePositionBits,
	}
}

// Optimize compresses glbPath and returns the optimized file's path. The
// input file is left untouched so callers can fall back to it.
func (o *Optimizer) Optimize(ctx context.Context, glbPath, workDir string) (string, error) {
	outputPath := filepath.Join(workDir, optimizedName)

	_, err := o.runner.Run(ctx, command.Spec{
		Binary: o.binary,
		Args: []string{
			"-i", glbPath,
			"-o", outputPath,
			"--draco.compressionLevel", strconv.Itoa(o.compression),
			"--draco.quantizePositionBits", strconv.Itoa(o.positionBits),
		},
		Dir:     workDir,
		Timeout: o.timeout,
	})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "optimize", "draco compression", "", err)
	}

	if _, err := os.Stat(outputPath); errors.Is(err, os.ErrNotExist) {
		return "", services.Wrap(services.ErrExternalTool, "optimize", "draco compression", "tool produced no output", nil)
	}
	return outputPath, nil
}

// HealthCheck reports whether the gltf-pipeline binary is installed.
func (o *Optimizer) HealthCheck(context.Context) services.Health {
	if !command.Available(o.binary) {
		return services.Unhealthy("gltf-pipeline", o.binary+" not found on PATH")
	}
	return services.Healthy("gltf-pipeline")
}
