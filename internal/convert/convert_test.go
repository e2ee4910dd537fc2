package convert_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"arforge/internal/convert"
	"arforge/internal/services"
	"arforge/internal/services/command"
	"arforge/internal/testsupport"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestForFileRejectsUnknownExtension(t *testing.T) {
	set := convert.NewSet(testsupport.NewConfig(t), testsupport.NewFakeRunner())
	_, err := set.ForFile("/uploads/part.stl")
	if err == nil {
		t.Fatal("expected unsupported format error")
	}
	if !errors.Is(err, services.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format marker, got %v", err)
	}
}

func TestGLBInputIsCopied(t *testing.T) {
	base := t.TempDir()
	input := filepath.Join(base, "burger.glb")
	writeFile(t, input, "glTF-bytes")

	set := convert.NewSet(testsupport.NewConfig(t), testsupport.NewFakeRunner())
	converter, err := set.ForFile(input)
	if err != nil {
		t.Fatalf("ForFile failed: %v", err)
	}

	workDir := filepath.Join(base, "work")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	out, err := converter.Convert(context.Background(), input, workDir)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "glTF-bytes" {
		t.Fatalf("unexpected output contents %q", data)
	}
}

func TestGLTFInvokesPipelineTool(t *testing.T) {
	base := t.TempDir()
	input := filepath.Join(base, "scene.gltf")
	writeFile(t, input, "{}")

	runner := testsupport.NewFakeRunner()
	runner.Handle("gltf-pipeline", func(spec command.Spec) (command.Result, error) {
		// Last arg is the output path.
		out := spec.Args[len(spec.Args)-1]
		writeFile(t, out, "binary-glb")
		return command.Result{}, nil
	})

	set := convert.NewSet(testsupport.NewConfig(t), runner)
	converter, err := set.ForFile(input)
	if err != nil {
		t.Fatalf("ForFile failed: %v", err)
	}

	workDir := filepath.Join(base, "work")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	out, err := converter.Convert(context.Background(), input, workDir)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if filepath.Base(out) != "model.glb" {
		t.Fatalf("expected canonical name, got %q", out)
	}
	if len(runner.CallsFor("gltf-pipeline")) != 1 {
		t.Fatal("expected one gltf-pipeline invocation")
	}
}

func TestBlenderConverterPassesPathsAsArguments(t *testing.T) {
	base := t.TempDir()
	input := filepath.Join(base, "chair.fbx")
	writeFile(t, input, "fbx")

	runner := testsupport.NewFakeRunner()
	runner.Handle("blender", func(spec command.Spec) (command.Result, error) {
		out := spec.Args[len(spec.Args)-1]
		writeFile(t, out, "glb")
		return command.Result{}, nil
	})

	set := convert.NewSet(testsupport.NewConfig(t), runner)
	converter, err := set.ForFile(input)
	if err != nil {
		t.Fatalf("ForFile failed: %v", err)
	}

	workDir := filepath.Join(base, "work")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := converter.Convert(context.Background(), input, workDir); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	calls := runner.CallsFor("blender")
	if len(calls) != 1 {
		t.Fatalf("expected one blender invocation, got %d", len(calls))
	}
	args := calls[0].Args
	foundSeparator := false
	for i, arg := range args {
		if arg == "--" {
			foundSeparator = true
			if len(args) != i+3 || args[i+1] != input {
				t.Fatalf("expected input and output after separator, got %v", args)
			}
		}
	}
	if !foundSeparator {
		t.Fatalf("expected argv separator in %v", args)
	}

	// The import script must land in the workspace, not be inlined.
	if _, err := os.Stat(filepath.Join(workDir, "import_glb.py")); err != nil {
		t.Fatalf("expected import script on disk: %v", err)
	}
}

func TestConverterFailureCarriesToolDiagnostics(t *testing.T) {
	base := t.TempDir()
	input := filepath.Join(base, "chair.obj")
	writeFile(t, input, "obj")

	runner := testsupport.NewFakeRunner()
	runner.Handle("blender", func(command.Spec) (command.Result, error) {
		return command.Result{}, errors.New("blender: segmentation fault")
	})

	set := convert.NewSet(testsupport.NewConfig(t), runner)
	converter, err := set.ForFile(input)
	if err != nil {
		t.Fatalf("ForFile failed: %v", err)
	}
	workDir := filepath.Join(base, "work")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	_, err = converter.Convert(context.Background(), input, workDir)
	if err == nil {
		t.Fatal("expected conversion error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}

func TestConverterFailsWhenToolProducesNoOutput(t *testing.T) {
	base := t.TempDir()
	input := filepath.Join(base, "scene.gltf")
	writeFile(t, input, "{}")

	runner := testsupport.NewFakeRunner()
	runner.Handle("gltf-pipeline", func(command.Spec) (command.Result, error) {
		return command.Result{}, nil // exits zero without writing output
	})

	set := convert.NewSet(testsupport.NewConfig(t), runner)
	converter, err := set.ForFile(input)
	if err != nil {
		t.Fatalf("ForFile failed: %v", err)
	}
	workDir := filepath.Join(base, "work")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := converter.Convert(context.Background(), input, workDir); err == nil {
		t.Fatal("expected error when no output is produced")
	}
}
