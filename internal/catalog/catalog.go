// Package catalog persists the long-lived model records that the rest of the
// platform reads: status, processing logs, published artifact URLs, and
// extracted metadata.
package catalog

import (
	"context"
	"time"
)

// ModelStatus mirrors the user-visible lifecycle of an uploaded model.
type ModelStatus string

const (
	ModelUploading  ModelStatus = "uploading"
	ModelProcessing ModelStatus = "processing"
	ModelComplete   ModelStatus = "complete"
	ModelFailed     ModelStatus = "failed"
)

// Model is the persisted projection of an uploaded model.
type Model struct {
	ID             string
	Name           string
	Status         ModelStatus
	ProcessingLogs string
	GLBFileURL     string
	USDZFileURL    string
	ThumbnailURL   string
	ShortLink      string
	QRCodeURL      string
	MetadataJSON   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Fields carries a partial update; nil members are left untouched. The
// pipeline pushes high-frequency partial updates, so the store must apply
// only what changed.
type Fields struct {
	Status         *ModelStatus
	ProcessingLogs *string
	GLBFileURL     *string
	USDZFileURL    *string
	ThumbnailURL   *string
	ShortLink      *string
	QRCodeURL      *string
	MetadataJSON   *string
}

// Store is the persistence collaborator consumed by the pipeline.
type Store interface {
	CreateModel(ctx context.Context, id, name string) (*Model, error)
	GetModel(ctx context.Context, id string) (*Model, error)
	ListModels(ctx context.Context) ([]*Model, error)
	UpdateModel(ctx context.Context, id string, fields Fields) error
	ShortLinkExists(ctx context.Context, link string) (bool, error)
	Close() error
}

// StatusPtr is a convenience for building partial updates.
func StatusPtr(status ModelStatus) *ModelStatus { return &status }

// StringPtr is a convenience for building partial updates.
func StringPtr(value string) *string { return &value }
