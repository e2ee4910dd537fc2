package jobs_test

import (
	"strings"
	"sync"
	"testing"

	"arforge/internal/jobs"
)

func TestStatusTransitionsAreMonotonic(t *testing.T) {
	job := jobs.New("model-1", "/tmp/burger.glb")
	if job.Status() != jobs.StatusPending {
		t.Fatalf("new job should be pending, got %s", job.Status())
	}
	if !job.MarkProcessing() {
		t.Fatal("pending job should transition to processing")
	}
	if job.MarkProcessing() {
		t.Fatal("processing transition should not repeat")
	}
	if !job.MarkFailed("tool crashed") {
		t.Fatal("processing job should transition to failed")
	}
	if job.MarkComplete(jobs.OutputFiles{}, "", "", nil) {
		t.Fatal("failed job must not complete")
	}
	if job.MarkFailed("second failure") {
		t.Fatal("terminal job must not fail again")
	}
	snap := job.Snapshot()
	if snap.Error != "tool crashed" {
		t.Fatalf("unexpected error message %q", snap.Error)
	}
	if snap.EndedAt.IsZero() {
		t.Fatal("terminal job should have an end time")
	}
}

func TestAppendLogPreservesOrder(t *testing.T) {
	job := jobs.New("model-1", "/tmp/in.obj")
	for _, msg := range []string{"queued", "converting", "optimizing"} {
		job.AppendLog("%s", msg)
	}
	snap := job.Snapshot()
	if len(snap.Logs) != 3 {
		t.Fatalf("expected 3 log lines, got %d", len(snap.Logs))
	}
	for i, want := range []string{"queued", "converting", "optimizing"} {
		if !strings.HasSuffix(snap.Logs[i], want) {
			t.Fatalf("log %d = %q, want suffix %q", i, snap.Logs[i], want)
		}
	}
}

func TestSnapshotLogsAreDetached(t *testing.T) {
	job := jobs.New("model-1", "/tmp/in.fbx")
	job.AppendLog("first")
	snap := job.Snapshot()
	job.AppendLog("second")
	if len(snap.Logs) != 1 {
		t.Fatalf("snapshot should not grow, got %d lines", len(snap.Logs))
	}
}

func TestConcurrentLogAppends(t *testing.T) {
	job := jobs.New("model-1", "/tmp/in.glb")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			job.AppendLog("line %d", n)
		}(i)
	}
	wg.Wait()
	if got := len(job.Snapshot().Logs); got != 20 {
		t.Fatalf("expected 20 log lines, got %d", got)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := jobs.ParseStatus(" Processing "); !ok || status != jobs.StatusProcessing {
		t.Fatalf("unexpected parse result %q %v", status, ok)
	}
	if _, ok := jobs.ParseStatus("exploded"); ok {
		t.Fatal("unknown status should not parse")
	}
}
