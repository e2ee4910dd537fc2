// Package storage uploads published artifacts to the configured object store
// and returns their public URLs.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"arforge/internal/config"
)

// ObjectStore is the artifact upload collaborator. Uploads are not retried;
// a failure surfaces directly to the publishing stage.
type ObjectStore interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
}

// FromConfig constructs the backend selected by configuration.
func FromConfig(cfg *config.Config) (ObjectStore, error) {
	switch cfg.Storage.Backend {
	case "s3":
		return NewS3Store(cfg)
	case "local":
		return NewLocalStore(cfg.Storage.PublicDir, cfg.Publish.BaseURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// ContentTypeFor maps artifact extensions to the MIME types served to AR
// viewers. Unknown extensions fall back to a generic binary type.
func ContentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb":
		return "model/gltf-binary"
	case ".gltf":
		return "model/gltf+json"
	case ".usdz":
		return "model/vnd.usdz+zip"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
