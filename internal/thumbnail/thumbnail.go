// Package thumbnail renders a preview image for a converted model using
// headless Blender, with a static placeholder fallback so every published
// model has some preview.
package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"arforge/internal/config"
	"arforge/internal/services"
	"arforge/internal/services/command"
)

const renderedName = "thumbnail.jpg"

// renderScript runs inside headless Blender: import the GLB, frame it with a
// fresh camera and sun light, render one 512x512 JPEG. Paths arrive through
// argv after the "--" separator.
const renderScript = `import sys

import bpy

argv = sys.argv[sys.argv.index("--") + 1:]
src, dst = argv[0], argv[1]

bpy.ops.wm.read_factory_settings(use_empty=True)
bpy.ops.import_scene.gltf(filepath=src)

scene = bpy.context.scene

cam_data = bpy.data.cameras.new("thumb_cam")
cam = bpy.data.objects.new("thumb_cam", cam_data)
scene.collection.objects.link(cam)
cam.location = (2.5, -2.5, 1.8)
cam.rotation_euler = (1.1, 0.0, 0.785)
scene.camera = cam

sun_data = bpy.data.lights.new("thumb_sun", type="SUN")
sun = bpy.data.objects.new("thumb_sun", sun_data)
scene.collection.objects.link(sun)
sun.rotation_euler = (0.7, 0.2, 0.5)

scene.render.resolution_x = 512
scene.render.resolution_y = 512
scene.render.image_settings.file_format = "JPEG"
scene.render.filepath = dst

bpy.ops.render.render(write_still=True)
`

// Renderer produces a JPEG preview of a GLB model.
type Renderer struct {
	binary  string
	runner  command.Runner
	timeout time.Duration
}

// New wires the renderer from configuration.
func New(cfg *config.Config, runner command.Runner) *Renderer {
	return &Renderer{
		binary:  cfg.Tools.Blender,
		runner:  runner,
		timeout: time.Duration(cfg.Tools.TimeoutSeconds) * time.Second,
	}
}

// Render writes a 512x512 JPEG preview of glbPath into workDir.
func (r *Renderer) Render(ctx context.Context, glbPath, workDir string) (string, error) {
	scriptPath := filepath.Join(workDir, "render_thumbnail.py")
	if err := os.WriteFile(scriptPath, []byte(renderScript), 0o644); err != nil {
		return "", fmt.Errorf("write render script: %w", err)
	}

	outputPath := filepath.Join(workDir, renderedName)
	_, err := r.runner.Run(ctx, command.Spec{
		Binary:  r.binary,
		Args:    []string{"-b", "--factory-startup", "--python", scriptPath, "--", glbPath, outputPath},
		Dir:     workDir,
		Timeout: r.timeout,
	})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "thumbnail", "blender render", "", err)
	}

	if _, err := os.Stat(outputPath); errors.Is(err, os.ErrNotExist) {
		return "", services.Wrap(services.ErrExternalTool, "thumbnail", "blender render", "tool produced no output", nil)
	}
	return outputPath, nil
}

// HealthCheck reports whether the Blender binary is installed.
func (r *Renderer) HealthCheck(context.Context) services.Health {
	if !command.Available(r.binary) {
		return services.Unhealthy("blender", r.binary+" not found on PATH")
	}
	return services.Healthy("blender")
}
