package testsupport

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"arforge/internal/catalog"
)

// MemoryCatalog is an in-memory catalog.Store for pipeline tests.
type MemoryCatalog struct {
	mu     sync.Mutex
	models map[string]*catalog.Model
	// UpdateErr, when set, is returned from UpdateModel to simulate a
	// persistence outage.
	UpdateErr error
	// Updates counts UpdateModel calls.
	Updates int
}

var _ catalog.Store = (*MemoryCatalog)(nil)

// NewMemoryCatalog constructs an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{models: make(map[string]*catalog.Model)}
}

func (m *MemoryCatalog) CreateModel(_ context.Context, id, name string) (*catalog.Model, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.models[id]; exists {
		return nil, fmt.Errorf("model %s exists", id)
	}
	now := time.Now().UTC()
	model := &catalog.Model{ID: id, Name: name, Status: catalog.ModelUploading, CreatedAt: now, UpdatedAt: now}
	m.models[id] = model
	cp := *model
	return &cp, nil
}

func (m *MemoryCatalog) GetModel(_ context.Context, id string) (*catalog.Model, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	model, ok := m.models[id]
	if !ok {
		return nil, nil
	}
	cp := *model
	return &cp, nil
}

func (m *MemoryCatalog) ListModels(_ context.Context) ([]*catalog.Model, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	models := make([]*catalog.Model, 0, len(m.models))
	for _, model := range m.models {
		cp := *model
		models = append(models, &cp)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

func (m *MemoryCatalog) UpdateModel(_ context.Context, id string, fields catalog.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates++
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	model, ok := m.models[id]
	if !ok {
		return fmt.Errorf("model %s not found", id)
	}
	if fields.Status != nil {
		model.Status = *fields.Status
	}
	if fields.ProcessingLogs != nil {
		model.ProcessingLogs = *fields.ProcessingLogs
	}
	if fields.GLBFileURL != nil {
		model.GLBFileURL = *fields.GLBFileURL
	}
	if fields.USDZFileURL != nil {
		model.USDZFileURL = *fields.USDZFileURL
	}
	if fields.ThumbnailURL != nil {
		model.ThumbnailURL = *fields.ThumbnailURL
	}
	if fields.ShortLink != nil {
		model.ShortLink = *fields.ShortLink
	}
	if fields.QRCodeURL != nil {
		model.QRCodeURL = *fields.QRCodeURL
	}
	if fields.MetadataJSON != nil {
		model.MetadataJSON = *fields.MetadataJSON
	}
	model.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryCatalog) ShortLinkExists(_ context.Context, link string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, model := range m.models {
		if model.ShortLink == link && link != "" {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryCatalog) Close() error { return nil }
