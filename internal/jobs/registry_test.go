package jobs_test

import (
	"testing"
	"time"

	"arforge/internal/jobs"
)

func TestRegistryAddAndLookup(t *testing.T) {
	reg := jobs.NewRegistry()
	job := jobs.New("model-1", "/tmp/in.glb")
	if err := reg.Add(job); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := reg.Add(job); err == nil {
		t.Fatal("duplicate add should fail")
	}
	snap, ok := reg.Snapshot(job.ID())
	if !ok || snap.ModelID != "model-1" {
		t.Fatalf("unexpected snapshot %#v ok=%v", snap, ok)
	}
	if _, ok := reg.Snapshot("missing"); ok {
		t.Fatal("missing job should not resolve")
	}
}

func TestSweepEvictsOnlyExpiredTerminalJobs(t *testing.T) {
	reg := jobs.NewRegistry()

	expired := jobs.New("model-old", "/tmp/a.glb")
	expired.MarkProcessing()
	expired.MarkFailed("boom")
	if err := reg.Add(expired); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	fresh := jobs.New("model-new", "/tmp/b.glb")
	fresh.MarkProcessing()
	fresh.MarkComplete(jobs.OutputFiles{GLB: "u"}, "abcd1234", "", nil)
	if err := reg.Add(fresh); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	running := jobs.New("model-run", "/tmp/c.glb")
	running.MarkProcessing()
	if err := reg.Add(running); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// A fresh terminal job and a running job survive a generous window.
	time.Sleep(10 * time.Millisecond)
	if removed := reg.Sweep(time.Hour); removed != 0 {
		t.Fatalf("nothing should be evicted yet, removed %d", removed)
	}

	// With a zero-length window every terminal job is expired.
	if removed := reg.Sweep(0); removed != 2 {
		t.Fatalf("expected 2 evictions, got %d", removed)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected only the running job to remain, len=%d", reg.Len())
	}
	if _, ok := reg.Get(running.ID()); !ok {
		t.Fatal("running job must survive sweeps")
	}
}

func TestListOrdersByStartTime(t *testing.T) {
	reg := jobs.NewRegistry()
	first := jobs.New("model-1", "/tmp/a.glb")
	if err := reg.Add(first); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	second := jobs.New("model-2", "/tmp/b.glb")
	if err := reg.Add(second); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	list := reg.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(list))
	}
	if list[0].ID != first.ID() {
		t.Fatal("expected oldest job first")
	}
}
