package thumbnail_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"arforge/internal/services"
	"arforge/internal/services/command"
	"arforge/internal/testsupport"
	"arforge/internal/thumbnail"
)

func TestRenderDrivesHeadlessBlender(t *testing.T) {
	workDir := t.TempDir()
	input := filepath.Join(workDir, "model.glb")
	if err := os.WriteFile(input, []byte("glb"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	runner := testsupport.NewFakeRunner()
	runner.Handle("blender", func(spec command.Spec) (command.Result, error) {
		out := spec.Args[len(spec.Args)-1]
		if err := os.WriteFile(out, []byte("jpeg"), 0o644); err != nil {
			t.Fatalf("write output: %v", err)
		}
		return command.Result{}, nil
	})

	out, err := thumbnail.New(testsupport.NewConfig(t), runner).Render(context.Background(), input, workDir)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if filepath.Ext(out) != ".jpg" {
		t.Fatalf("expected jpg output, got %q", out)
	}

	calls := runner.CallsFor("blender")
	if len(calls) != 1 {
		t.Fatalf("expected one blender invocation, got %d", len(calls))
	}
	args := calls[0].Args
	if args[0] != "-b" || args[1] != "--factory-startup" {
		t.Fatalf("expected headless flags first, got %v", args)
	}

	// The render script must be a file in the workspace so the model path
	// travels as an argument, never interpolated into Python source.
	script, err := os.ReadFile(filepath.Join(workDir, "render_thumbnail.py"))
	if err != nil {
		t.Fatalf("expected render script on disk: %v", err)
	}
	if strings.Contains(string(script), input) {
		t.Fatal("render script must not embed the input path")
	}
}

func TestRenderFailureIsExternalToolError(t *testing.T) {
	workDir := t.TempDir()
	input := filepath.Join(workDir, "model.glb")
	if err := os.WriteFile(input, []byte("glb"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	runner := testsupport.NewFakeRunner()
	runner.Handle("blender", func(command.Spec) (command.Result, error) {
		return command.Result{}, errors.New("EGL initialization failed")
	})

	_, err := thumbnail.New(testsupport.NewConfig(t), runner).Render(context.Background(), input, workDir)
	if err == nil {
		t.Fatal("expected render error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}

func TestWritePlaceholderIsSVG(t *testing.T) {
	workDir := t.TempDir()

	path, err := thumbnail.WritePlaceholder(workDir)
	if err != nil {
		t.Fatalf("WritePlaceholder failed: %v", err)
	}
	if filepath.Ext(path) != ".svg" {
		t.Fatalf("expected svg placeholder, got %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read placeholder: %v", err)
	}
	if !strings.HasPrefix(string(data), "<svg") {
		t.Fatalf("placeholder does not start with an svg element: %q", data[:16])
	}
}
