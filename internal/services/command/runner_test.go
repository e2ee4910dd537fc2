package command_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"arforge/internal/services/command"
)

func TestRunCapturesStdout(t *testing.T) {
	runner := command.NewRunner()
	res, err := runner.Run(context.Background(), command.Spec{
		Binary: "sh",
		Args:   []string{"-c", "echo converted"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "converted" {
		t.Fatalf("unexpected stdout %q", res.Stdout)
	}
}

func TestRunAttachesStderrToError(t *testing.T) {
	runner := command.NewRunner()
	_, err := runner.Run(context.Background(), command.Spec{
		Binary: "sh",
		Args:   []string{"-c", "echo broken mesh >&2; exit 3"},
	})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "broken mesh") {
		t.Fatalf("expected stderr detail in error, got %v", err)
	}
}

func TestRunHonorsTimeout(t *testing.T) {
	runner := command.NewRunner()
	start := time.Now()
	_, err := runner.Run(context.Background(), command.Spec{
		Binary:  "sh",
		Args:    []string{"-c", "sleep 5"},
		Timeout: 50 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("timeout did not interrupt the process")
	}
}

func TestRunRequiresBinary(t *testing.T) {
	runner := command.NewRunner()
	if _, err := runner.Run(context.Background(), command.Spec{}); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestTailBoundsOutput(t *testing.T) {
	long := strings.Repeat("x", 10000)
	if got := command.Tail(long); len(got) > 4096 {
		t.Fatalf("tail too long: %d", len(got))
	}
}
