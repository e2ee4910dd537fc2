package optimize_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"arforge/internal/optimize"
	"arforge/internal/services"
	"arforge/internal/services/command"
	"arforge/internal/testsupport"
)

func TestOptimizePassesDracoSettings(t *testing.T) {
	workDir := t.TempDir()
	input := filepath.Join(workDir, "model.glb")
	if err := os.WriteFile(input, []byte("glb"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	runner := testsupport.NewFakeRunner()
	runner.Handle("gltf-pipeline", func(spec command.Spec) (command.Result, error) {
		var out string
		for i, arg := range spec.Args {
			if arg == "-o" && i+1 < len(spec.Args) {
				out = spec.Args[i+1]
			}
		}
		if out == "" {
			t.Fatalf("no output flag in %v", spec.Args)
		}
		if err := os.WriteFile(out, []byte("compressed"), 0o644); err != nil {
			t.Fatalf("write output: %v", err)
		}
		return command.Result{}, nil
	})

	cfg := testsupport.NewConfig(t)
	cfg.Pipeline.DracoCompression = 9
	cfg.Pipeline.QuantizePositionBits = 12

	out, err := optimize.New(cfg, runner).Optimize(context.Background(), input, workDir)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if out == input {
		t.Fatal("optimized output must not overwrite the input")
	}

	calls := runner.CallsFor("gltf-pipeline")
	if len(calls) != 1 {
		t.Fatalf("expected one invocation, got %d", len(calls))
	}
	args := calls[0].Args
	wantPairs := map[string]string{
		"--draco.compressionLevel":     "9",
		"--draco.quantizePositionBits": "12",
	}
	for flag, value := range wantPairs {
		found := false
		for i, arg := range args {
			if arg == flag && i+1 < len(args) && args[i+1] == value {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected %s %s in %v", flag, value, args)
		}
	}

	// The original must survive for the fallback path.
	if _, err := os.Stat(input); err != nil {
		t.Fatalf("input removed: %v", err)
	}
}

func TestOptimizeFailureIsExternalToolError(t *testing.T) {
	workDir := t.TempDir()
	input := filepath.Join(workDir, "model.glb")
	if err := os.WriteFile(input, []byte("glb"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	runner := testsupport.NewFakeRunner()
	runner.Handle("gltf-pipeline", func(command.Spec) (command.Result, error) {
		return command.Result{}, errors.New("draco encoder crashed")
	})

	_, err := optimize.New(testsupport.NewConfig(t), runner).Optimize(context.Background(), input, workDir)
	if err == nil {
		t.Fatal("expected optimization error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
}
