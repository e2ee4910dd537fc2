// Package publish uploads a job's finished artifacts and mints the public AR
// link: a collision-checked short code, its QR image, and the viewer URL.
package publish

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skip2/go-qrcode"
	"golang.org/x/sync/errgroup"

	"arforge/internal/catalog"
	"arforge/internal/config"
	"arforge/internal/jobs"
	"arforge/internal/services"
)

// Result is everything publishing produced for a model.
type Result struct {
	GLBURL       string
	USDZURL      string
	ThumbnailURL string
	ShortLink    string
	ARURL        string
	QRCodeURL    string
}

// Publisher pushes artifacts to the object store and assigns the share link.
type Publisher struct {
	store    ObjectStore
	catalog  catalog.Store
	baseURL  string
	attempts int
	qrSize   int
}

// ObjectStore matches storage.ObjectStore without importing it, keeping this
// package testable against any uploader.
type ObjectStore interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
}

// New wires a publisher from configuration.
func New(cfg *config.Config, store ObjectStore, cat catalog.Store) *Publisher {
	return &Publisher{
		store:    store,
		catalog:  cat,
		baseURL:  strings.TrimRight(cfg.Publish.BaseURL, "/"),
		attempts: cfg.Publish.ShortLinkAttempts,
		qrSize:   cfg.Publish.QRCodeSize,
	}
}

// Publish uploads the three artifacts concurrently, then mints the short
// link and its QR code. Any upload failure fails the whole publish.
func (p *Publisher) Publish(ctx context.Context, modelID string, files jobs.OutputFiles) (Result, error) {
	var result Result

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		url, err := p.upload(groupCtx, modelID, files.GLB)
		result.GLBURL = url
		return err
	})
	group.Go(func() error {
		url, err := p.upload(groupCtx, modelID, files.USDZ)
		result.USDZURL = url
		return err
	})
	group.Go(func() error {
		url, err := p.upload(groupCtx, modelID, files.Thumbnail)
		result.ThumbnailURL = url
		return err
	})
	if err := group.Wait(); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "publish", "artifact upload", "", err)
	}

	link, err := p.mintShortLink(ctx)
	if err != nil {
		return Result{}, err
	}
	result.ShortLink = link
	result.ARURL = p.baseURL + "/ar/" + link

	qrURL, err := p.uploadQRCode(ctx, modelID, result.ARURL, filepath.Dir(files.GLB))
	if err != nil {
		return Result{}, err
	}
	result.QRCodeURL = qrURL

	return result, nil
}

func (p *Publisher) upload(ctx context.Context, modelID, localPath string) (string, error) {
	key := "models/" + modelID + "/" + filepath.Base(localPath)
	url, err := p.store.Upload(ctx, localPath, key)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return url, nil
}

// mintShortLink draws random 8-character URL-safe codes until one is free in
// the catalog, bounded by the configured attempt budget.
func (p *Publisher) mintShortLink(ctx context.Context) (string, error) {
	for attempt := 0; attempt < p.attempts; attempt++ {
		link, err := randomShortLink()
		if err != nil {
			return "", services.Wrap(services.ErrTransient, "publish", "short link", "entropy source failed", err)
		}
		exists, err := p.catalog.ShortLinkExists(ctx, link)
		if err != nil {
			return "", services.Wrap(services.ErrTransient, "publish", "short link", "uniqueness check failed", err)
		}
		if !exists {
			return link, nil
		}
	}
	return "", services.Wrap(services.ErrTransient, "publish", "short link",
		fmt.Sprintf("no unique code after %d attempts", p.attempts), nil)
}

func randomShortLink() (string, error) {
	raw := make([]byte, 6)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func (p *Publisher) uploadQRCode(ctx context.Context, modelID, arURL, workDir string) (string, error) {
	qrPath := filepath.Join(workDir, "qrcode.png")
	if err := qrcode.WriteFile(arURL, qrcode.Medium, p.qrSize, qrPath); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "qr encode", "", err)
	}
	defer os.Remove(qrPath)

	url, err := p.upload(ctx, modelID, qrPath)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "qr upload", "", err)
	}
	return url, nil
}
