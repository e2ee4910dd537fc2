// Package pipeline orchestrates conversion jobs: submission validation, the
// bounded worker pool, the per-job stage sequence, and final persistence of
// the published model record.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"arforge/internal/catalog"
	"arforge/internal/config"
	"arforge/internal/convert"
	"arforge/internal/jobs"
	"arforge/internal/logging"
	"arforge/internal/optimize"
	"arforge/internal/publish"
	"arforge/internal/services"
	"arforge/internal/services/command"
	"arforge/internal/thumbnail"
	"arforge/internal/usdz"
	"arforge/internal/workspace"
)

// Pipeline owns the conversion workers and the job registry. Construct with
// New, call Start once, submit jobs, and Stop for a graceful drain.
type Pipeline struct {
	cfg        *config.Config
	logger     *slog.Logger
	registry   *jobs.Registry
	workspaces *workspace.Manager
	converters *convert.Set
	optimizer  *optimize.Optimizer
	usdz       *usdz.Generator
	thumbs     *thumbnail.Renderer
	publisher  *publish.Publisher
	catalog    catalog.Store

	queue chan *jobs.Job
	wg    sync.WaitGroup

	mu       sync.Mutex
	cancels  map[string]context.CancelFunc
	started  bool
	stopping bool
	baseCtx  context.Context
	baseStop context.CancelFunc
}

// New wires a pipeline from configuration and its collaborators. The command
// runner and object store are injected so tests can substitute fakes.
func New(cfg *config.Config, logger *slog.Logger, cat catalog.Store, store publish.ObjectStore, runner command.Runner) (*Pipeline, error) {
	logger = logging.OrNop(logger).With(logging.String(logging.FieldComponent, "pipeline"))

	workspaces, err := workspace.NewManager(cfg.Paths.WorkDir)
	if err != nil {
		return nil, err
	}

	capacity := cfg.Pipeline.QueueCapacity
	if capacity < 1 {
		capacity = 1
	}

	return &Pipeline{
		cfg:        cfg,
		logger:     logger,
		registry:   jobs.NewRegistry(),
		workspaces: workspaces,
		converters: convert.NewSet(cfg, runner),
		optimizer:  optimize.New(cfg, runner),
		usdz:       usdz.New(cfg, runner),
		thumbs:     thumbnail.New(cfg, runner),
		publisher:  publish.New(cfg, store, cat),
		catalog:    cat,
		queue:      make(chan *jobs.Job, capacity),
		cancels:    make(map[string]context.CancelFunc),
	}, nil
}

// Registry exposes job lookup for the CLI and daemon.
func (p *Pipeline) Registry() *jobs.Registry {
	return p.registry
}

// Health reports readiness of every external tool the stages depend on. Tools
// shared across stages (gltf-pipeline converts and optimizes) appear once.
func (p *Pipeline) Health(ctx context.Context) []services.Health {
	checks := p.converters.Health(ctx)
	checks = append(checks, p.optimizer.HealthCheck(ctx))
	checks = append(checks, p.usdz.HealthCheck(ctx))

	seen := make(map[string]struct{}, len(checks))
	deduped := checks[:0]
	for _, health := range checks {
		if _, dup := seen[health.Name]; dup {
			continue
		}
		seen[health.Name] = struct{}{}
		deduped = append(deduped, health)
	}
	return deduped
}

// Start launches the worker pool. Calling Start twice is an error.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return errors.New("pipeline already started")
	}
	p.started = true
	p.baseCtx, p.baseStop = context.WithCancel(ctx)

	workers := p.cfg.Pipeline.WorkerCount
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	p.logger.Info("pipeline started", logging.Int("workers", workers))
	return nil
}

// Stop drains the queue and waits for in-flight jobs to finish. Jobs still
// queued are processed; new submissions are rejected.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.started || p.stopping {
		p.mu.Unlock()
		return
	}
	p.stopping = true
	p.mu.Unlock()

	close(p.queue)
	p.wg.Wait()

	p.mu.Lock()
	if p.baseStop != nil {
		p.baseStop()
	}
	p.mu.Unlock()
	p.logger.Info("pipeline stopped")
}

// Submit validates the upload, creates the model record, and enqueues a job.
// Validation failures surface synchronously; a full queue rejects the
// submission with a transient error.
func (p *Pipeline) Submit(ctx context.Context, name, inputPath string) (jobs.Snapshot, error) {
	p.mu.Lock()
	accepting := p.started && !p.stopping
	p.mu.Unlock()
	if !accepting {
		return jobs.Snapshot{}, services.Wrap(services.ErrTransient, "pipeline", "submit", "pipeline not accepting jobs", nil)
	}

	if _, err := p.converters.ForFile(inputPath); err != nil {
		return jobs.Snapshot{}, err
	}
	if err := checkReadable(inputPath); err != nil {
		return jobs.Snapshot{}, fmt.Errorf("%w: %s", services.ErrValidation, err)
	}

	modelID := uuid.NewString()
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	}
	if _, err := p.catalog.CreateModel(ctx, modelID, name); err != nil {
		// The catalog is a collaborator, not a gate: conversion proceeds and
		// later updates stay best-effort too.
		p.logger.Warn("model record creation failed",
			logging.String(logging.FieldModelID, modelID), logging.Error(err))
	}

	job := jobs.New(modelID, inputPath)
	if err := p.registry.Add(job); err != nil {
		return jobs.Snapshot{}, err
	}

	select {
	case p.queue <- job:
	default:
		p.registry.Remove(job.ID())
		return jobs.Snapshot{}, services.Wrap(services.ErrTransient, "pipeline", "submit",
			fmt.Sprintf("queue full (%d pending)", cap(p.queue)), nil)
	}

	// The model shows processing as soon as the job is accepted, even while
	// it waits in the queue for a worker.
	p.persistStatus(job, catalog.ModelProcessing)

	p.logger.Info("job submitted",
		logging.String(logging.FieldJobID, job.ID()),
		logging.String(logging.FieldModelID, modelID),
		logging.String("input", inputPath))
	return job.Snapshot(), nil
}

// Cancel aborts a running or queued job. The in-flight tool process is killed
// through its context; queued jobs fail when a worker picks them up.
func (p *Pipeline) Cancel(jobID string) error {
	job, ok := p.registry.Get(jobID)
	if !ok {
		return fmt.Errorf("%w: job %s", services.ErrNotFound, jobID)
	}
	if job.Terminal() {
		return nil
	}

	p.mu.Lock()
	cancel, running := p.cancels[jobID]
	p.mu.Unlock()
	if running {
		cancel()
		return nil
	}

	// Still queued: mark failed now so the worker skips it.
	if job.MarkFailed("canceled before processing") {
		job.AppendLog("job canceled before processing started")
		p.persistFailure(job)
	}
	return nil
}

func (p *Pipeline) worker() {
	defer p.wg.Done()
	for job := range p.queue {
		if job.Terminal() {
			continue // canceled while queued
		}
		p.run(job)
	}
}

func checkReadable(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("input file not readable: %w", err)
	}
	return file.Close()
}
