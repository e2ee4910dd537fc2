package jobs

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry tracks live and recently finished jobs by identifier. It is
// constructed at service start and injected wherever job lookup is needed;
// eviction runs as an explicit sweep owned by the service.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Add registers a job. Duplicate identifiers are rejected.
func (r *Registry) Add(job *Job) error {
	if job == nil {
		return fmt.Errorf("job is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.ID()]; exists {
		return fmt.Errorf("job %s already registered", job.ID())
	}
	r.jobs[job.ID()] = job
	return nil
}

// Get returns the live job for mutation by its owner.
func (r *Registry) Get(id string) (*Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	return job, ok
}

// Snapshot returns a copy of the job state for read-only consumers.
func (r *Registry) Snapshot(id string) (Snapshot, bool) {
	job, ok := r.Get(id)
	if !ok {
		return Snapshot{}, false
	}
	return job.Snapshot(), true
}

// Remove drops a job regardless of state. Used when a submission is rejected
// after registration.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}

// List returns snapshots of all registered jobs ordered by start time.
func (r *Registry) List() []Snapshot {
	r.mu.RLock()
	snapshots := make([]Snapshot, 0, len(r.jobs))
	for _, job := range r.jobs {
		snapshots = append(snapshots, job.Snapshot())
	}
	r.mu.RUnlock()

	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].StartedAt.Equal(snapshots[j].StartedAt) {
			return snapshots[i].ID < snapshots[j].ID
		}
		return snapshots[i].StartedAt.Before(snapshots[j].StartedAt)
	})
	return snapshots
}

// Len returns the number of registered jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// Sweep evicts terminal jobs whose end time is older than the retention
// window and returns how many were removed. Non-terminal jobs are always
// retained.
func (r *Registry) Sweep(retention time.Duration) int {
	cutoff := time.Now().UTC().Add(-retention)
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, job := range r.jobs {
		ended := job.EndedAt()
		if ended.IsZero() || !job.Terminal() {
			continue
		}
		if ended.Before(cutoff) {
			delete(r.jobs, id)
			removed++
		}
	}
	return removed
}
