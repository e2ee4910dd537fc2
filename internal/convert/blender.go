package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"arforge/internal/services"
	"arforge/internal/services/command"
)

// importScript runs inside headless Blender. Paths arrive through argv after
// the "--" separator, never through string interpolation, and the factory
// reset clears any default scene objects before import. Cameras and lights
// are excluded from the export; materials are kept.
const importScript = `import sys

import bpy

argv = sys.argv[sys.argv.index("--") + 1:]
src, dst = argv[0], argv[1]

bpy.ops.wm.read_factory_settings(use_empty=True)

ext = src.rsplit(".", 1)[-1].lower()
if ext == "fbx":
    bpy.ops.import_scene.fbx(filepath=src)
elif ext == "obj":
    bpy.ops.wm.obj_import(filepath=src)
else:
    raise SystemExit("unsupported source: " + src)

bpy.ops.export_scene.gltf(
    filepath=dst,
    export_format="GLB",
    export_materials="EXPORT",
    export_cameras=False,
    export_lights=False,
)
`

// blenderConverter drives headless Blender to import FBX/OBJ sources and
// export a canonical GLB.
type blenderConverter struct {
	binary  string
	runner  command.Runner
	timeout time.Duration
}

func (c *blenderConverter) Convert(ctx context.Context, inputPath, workDir string) (string, error) {
	scriptPath := filepath.Join(workDir, "import_glb.py")
	if err := os.WriteFile(scriptPath, []byte(importScript), 0o644); err != nil {
		return "", fmt.Errorf("write import script: %w", err)
	}

	outputPath := filepath.Join(workDir, canonicalName)
	_, err := c.runner.Run(ctx, command.Spec{
		Binary:  c.binary,
		Args:    []string{"-b", "--factory-startup", "--python", scriptPath, "--", inputPath, outputPath},
		Dir:     workDir,
		Timeout: c.timeout,
	})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "convert", "blender import", "", err)
	}

	if _, err := os.Stat(outputPath); errors.Is(err, os.ErrNotExist) {
		return "", services.Wrap(services.ErrExternalTool, "convert", "blender import", "tool produced no output", nil)
	}
	return outputPath, nil
}

func (c *blenderConverter) HealthCheck(context.Context) services.Health {
	if !command.Available(c.binary) {
		return services.Unhealthy("blender", c.binary+" not found on PATH")
	}
	return services.Healthy("blender")
}
