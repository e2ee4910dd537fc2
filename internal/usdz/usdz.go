// Package usdz produces the iOS Quick Look variant of a converted model. The
// primary path shells out to usd_from_gltf; when that fails a minimal valid
// placeholder archive keeps the published bundle complete.
package usdz

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"arforge/internal/config"
	"arforge/internal/services"
	"arforge/internal/services/command"
)

const outputName = "model.usdz"

// Generator converts a GLB into USDZ for AR Quick Look.
type Generator struct {
	binary  string
	runner  command.Runner
	timeout time.Duration
}

// New wires the generator from configuration.
func New(cfg *config.Config, runner command.Runner) *Generator {
	return &Generator{
		binary:  cfg.Tools.USDConverter,
		runner:  runner,
		timeout: time.Duration(cfg.Tools.TimeoutSeconds) * time.Second,
	}
}

// Generate converts glbPath into a USDZ archive inside workDir.
func (g *Generator) Generate(ctx context.Context, glbPath, workDir string) (string, error) {
	outputPath := filepath.Join(workDir, outputName)

	_, err := g.runner.Run(ctx, command.Spec{
		Binary:  g.binary,
		Args:    []string{glbPath, outputPath},
		Dir:     workDir,
		Timeout: g.timeout,
	})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "usdz", "usd conversion", "", err)
	}

	if _, err := os.Stat(outputPath); errors.Is(err, os.ErrNotExist) {
		return "", services.Wrap(services.ErrExternalTool, "usdz", "usd conversion", "tool produced no output", nil)
	}
	return outputPath, nil
}

// HealthCheck reports whether the USD converter binary is installed.
func (g *Generator) HealthCheck(context.Context) services.Health {
	if !command.Available(g.binary) {
		return services.Unhealthy("usd_from_gltf", g.binary+" not found on PATH")
	}
	return services.Healthy("usd_from_gltf")
}
