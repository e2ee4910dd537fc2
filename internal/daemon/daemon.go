// Package daemon composes the conversion service: catalog, object store,
// pipeline, registry sweeper, and the single-instance lock.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"arforge/internal/catalog"
	"arforge/internal/config"
	"arforge/internal/jobs"
	"arforge/internal/logging"
	"arforge/internal/pipeline"
	"arforge/internal/services"
	"arforge/internal/services/command"
	"arforge/internal/storage"
)

// Daemon owns the long-running conversion service and enforces
// single-instance execution through a lock file.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	catalog  catalog.Store
	pipeline *pipeline.Pipeline

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	sweeper sync.WaitGroup
}

// Status reports daemon runtime information for the CLI.
type Status struct {
	Running      bool
	Jobs         []jobs.Snapshot
	Tools        []services.Health
	CatalogPath  string
	LockFilePath string
}

// New builds the daemon and its collaborators from configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires configuration")
	}
	logger = logging.OrNop(logger)

	store, err := catalog.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	objects, err := storage.FromConfig(cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	p, err := pipeline.New(cfg, logger, store, objects, command.NewRunner())
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "arforge.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		catalog:  store,
		pipeline: p,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Pipeline exposes the conversion pipeline for submissions.
func (d *Daemon) Pipeline() *pipeline.Pipeline {
	return d.pipeline
}

// Catalog exposes the model store for read paths.
func (d *Daemon) Catalog() catalog.Store {
	return d.catalog
}

// Start acquires the instance lock and launches the workers and sweeper.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another arforge instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.pipeline.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start pipeline: %w", err)
	}
	d.cancel = cancel

	d.logToolHealth(runCtx)
	d.startSweeper(runCtx)

	d.running.Store(true)
	d.logger.Info("arforge daemon started",
		logging.String("lock", d.lockPath),
		logging.String("storage", d.cfg.Storage.Backend))
	return nil
}

// Stop drains in-flight jobs and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.pipeline.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.sweeper.Wait()

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release instance lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("arforge daemon stopped")
}

// Close stops the daemon and releases the catalog.
func (d *Daemon) Close() error {
	d.Stop()
	return d.catalog.Close()
}

// Status returns a point-in-time view of the daemon.
func (d *Daemon) Status(ctx context.Context) Status {
	return Status{
		Running:      d.running.Load(),
		Jobs:         d.pipeline.Registry().List(),
		Tools:        d.pipeline.Health(ctx),
		CatalogPath:  filepath.Join(d.cfg.Paths.DataDir, "catalog.db"),
		LockFilePath: d.lockPath,
	}
}

// logToolHealth records which external tools are usable at startup. Missing
// tools degrade their stages at run time rather than blocking startup.
func (d *Daemon) logToolHealth(ctx context.Context) {
	for _, health := range d.pipeline.Health(ctx) {
		if health.Ready {
			d.logger.Info("external tool available", logging.String("tool", health.Name))
			continue
		}
		d.logger.Warn("external tool unavailable",
			logging.String("tool", health.Name),
			logging.String("detail", health.Detail))
	}
}

// startSweeper evicts expired terminal jobs from the registry on a timer.
func (d *Daemon) startSweeper(ctx context.Context) {
	interval := time.Duration(d.cfg.Pipeline.SweepIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	retention := time.Duration(d.cfg.Pipeline.RetentionHours) * time.Hour

	d.sweeper.Add(1)
	go func() {
		defer d.sweeper.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := d.pipeline.Registry().Sweep(retention); removed > 0 {
					d.logger.Info("swept expired jobs", logging.Int("removed", removed))
				}
			}
		}
	}()
}
