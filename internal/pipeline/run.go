package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"arforge/internal/analyze"
	"arforge/internal/catalog"
	"arforge/internal/jobs"
	"arforge/internal/logging"
	"arforge/internal/publish"
	"arforge/internal/thumbnail"
	"arforge/internal/usdz"
)

// run executes the full stage sequence for one job. Conversion and publishing
// are fatal; optimization, USDZ, thumbnail, and analysis degrade with
// fallbacks so a partially broken toolchain still yields a usable model.
func (p *Pipeline) run(job *jobs.Job) {
	ctx, cancel := context.WithCancel(p.baseCtx)
	p.mu.Lock()
	p.cancels[job.ID()] = cancel
	p.mu.Unlock()
	defer func() {
		cancel()
		p.mu.Lock()
		delete(p.cancels, job.ID())
		p.mu.Unlock()
	}()

	logger := p.logger.With(
		logging.String(logging.FieldJobID, job.ID()),
		logging.String(logging.FieldModelID, job.ModelID()))

	if !job.MarkProcessing() {
		return
	}
	started := time.Now()
	job.AppendLog("processing started for %s", filepath.Base(job.InputFile()))
	p.persistStatus(job, catalog.ModelProcessing)

	workDir, err := p.workspaces.Allocate(job.ID())
	if err != nil {
		p.fail(job, logger, "workspace allocation failed: %v", err)
		return
	}
	defer func() {
		if err := p.workspaces.Cleanup(workDir); err != nil {
			logger.Warn("workspace cleanup failed", logging.Error(err))
		}
	}()

	meta := &jobs.Metadata{Format: strings.TrimPrefix(strings.ToLower(filepath.Ext(job.InputFile())), ".")}

	// Stage 1: conversion to canonical GLB. Fatal.
	converter, err := p.converters.ForFile(job.InputFile())
	if err != nil {
		p.fail(job, logger, "conversion dispatch failed: %v", err)
		return
	}
	job.AppendLog("converting %s input to GLB", meta.Format)
	p.persistProgress(job)
	glbPath, err := converter.Convert(ctx, job.InputFile(), workDir)
	if err != nil {
		p.fail(job, logger, "conversion failed: %v", err)
		return
	}
	job.AppendLog("conversion complete")
	p.persistProgress(job)

	// Stage 2: Draco optimization. Falls back to the unoptimized GLB.
	finalGLB := glbPath
	if optimized, err := p.optimizer.Optimize(ctx, glbPath, workDir); err != nil {
		if ctx.Err() != nil {
			p.fail(job, logger, "job canceled during optimization")
			return
		}
		logger.Warn("optimization failed, serving unoptimized model", logging.Error(err))
		job.AppendLog("optimization failed, falling back to unoptimized GLB: %v", err)
	} else {
		finalGLB = optimized
		job.AppendLog("optimization complete")
	}
	p.persistProgress(job)

	// Stage 3: USDZ for iOS Quick Look. Falls back to a placeholder archive.
	usdzPath, err := p.usdz.Generate(ctx, finalGLB, workDir)
	if err != nil {
		if ctx.Err() != nil {
			p.fail(job, logger, "job canceled during USDZ generation")
			return
		}
		logger.Warn("usdz generation failed, writing placeholder", logging.Error(err))
		job.AppendLog("usdz generation failed, using placeholder: %v", err)
		usdzPath, err = usdz.WritePlaceholder(workDir)
		if err != nil {
			p.fail(job, logger, "usdz placeholder failed: %v", err)
			return
		}
		meta.DegradedUSDZ = true
	} else {
		job.AppendLog("usdz generation complete")
	}
	p.persistProgress(job)

	// Stage 4: thumbnail render. Falls back to a static preview.
	thumbPath, err := p.thumbs.Render(ctx, finalGLB, workDir)
	if err != nil {
		if ctx.Err() != nil {
			p.fail(job, logger, "job canceled during thumbnail render")
			return
		}
		logger.Warn("thumbnail render failed, writing placeholder", logging.Error(err))
		job.AppendLog("thumbnail render failed, using placeholder: %v", err)
		thumbPath, err = thumbnail.WritePlaceholder(workDir)
		if err != nil {
			p.fail(job, logger, "thumbnail placeholder failed: %v", err)
			return
		}
		meta.DegradedThumbnail = true
	} else {
		job.AppendLog("thumbnail render complete")
	}
	p.persistProgress(job)

	// Stage 5: metadata extraction. Stats describe the canonical GLB, not the
	// Draco-compressed delivery file, so fileSize matches the uploaded model.
	// Partial stats are better than none.
	stats, err := analyze.Analyze(glbPath)
	meta.FileSizeBytes = stats.FileSize
	meta.Vertices = stats.Vertices
	meta.Triangles = stats.Triangles
	meta.Textures = stats.Textures
	if err != nil {
		logger.Warn("metadata extraction incomplete", logging.Error(err))
		job.AppendLog("metadata extraction incomplete: %v", err)
	} else {
		job.AppendLog("extracted metadata: %d vertices, %d triangles, %d textures",
			stats.Vertices, stats.Triangles, stats.Textures)
	}
	p.persistProgress(job)

	// Stage 6: publish. Fatal.
	files := jobs.OutputFiles{GLB: finalGLB, USDZ: usdzPath, Thumbnail: thumbPath}
	result, err := p.publisher.Publish(ctx, job.ModelID(), files)
	if err != nil {
		p.fail(job, logger, "publishing failed: %v", err)
		return
	}
	job.AppendLog("published: %s", result.ARURL)

	outputs := jobs.OutputFiles{GLB: result.GLBURL, USDZ: result.USDZURL, Thumbnail: result.ThumbnailURL}
	if !job.MarkComplete(outputs, result.ShortLink, result.QRCodeURL, meta) {
		return
	}
	p.persistCompletion(job, result, meta)
	logger.Info("job complete",
		logging.String("short_link", result.ShortLink),
		logging.Duration("elapsed", time.Since(started)))
}

func (p *Pipeline) fail(job *jobs.Job, logger *slog.Logger, format string, args ...any) {
	message := job.AppendLog(format, args...)
	if job.MarkFailed(message) {
		logger.Error("job failed", logging.String("reason", message))
		p.persistFailure(job)
	}
}

// persistStatus, persistProgress, persistFailure, and persistCompletion push
// partial updates into the catalog. Failures are logged and swallowed: the
// catalog never blocks or fails a conversion.
func (p *Pipeline) persistStatus(job *jobs.Job, status catalog.ModelStatus) {
	p.persist(job, catalog.Fields{
		Status:         catalog.StatusPtr(status),
		ProcessingLogs: catalog.StringPtr(joinedLogs(job)),
	})
}

func (p *Pipeline) persistProgress(job *jobs.Job) {
	p.persist(job, catalog.Fields{ProcessingLogs: catalog.StringPtr(joinedLogs(job))})
}

func (p *Pipeline) persistFailure(job *jobs.Job) {
	p.persist(job, catalog.Fields{
		Status:         catalog.StatusPtr(catalog.ModelFailed),
		ProcessingLogs: catalog.StringPtr(joinedLogs(job)),
	})
}

func (p *Pipeline) persistCompletion(job *jobs.Job, result publish.Result, meta *jobs.Metadata) {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		p.logger.Warn("metadata serialization failed",
			logging.String(logging.FieldJobID, job.ID()), logging.Error(err))
	}
	p.persist(job, catalog.Fields{
		Status:         catalog.StatusPtr(catalog.ModelComplete),
		ProcessingLogs: catalog.StringPtr(joinedLogs(job)),
		GLBFileURL:     catalog.StringPtr(result.GLBURL),
		USDZFileURL:    catalog.StringPtr(result.USDZURL),
		ThumbnailURL:   catalog.StringPtr(result.ThumbnailURL),
		ShortLink:      catalog.StringPtr(result.ShortLink),
		QRCodeURL:      catalog.StringPtr(result.QRCodeURL),
		MetadataJSON:   catalog.StringPtr(string(metaJSON)),
	})
}

func (p *Pipeline) persist(job *jobs.Job, fields catalog.Fields) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.catalog.UpdateModel(ctx, job.ModelID(), fields); err != nil {
		p.logger.Warn("model record update failed",
			logging.String(logging.FieldJobID, job.ID()),
			logging.String(logging.FieldModelID, job.ModelID()),
			logging.Error(err))
	}
}

func joinedLogs(job *jobs.Job) string {
	return strings.Join(job.Snapshot().Logs, "\n")
}
