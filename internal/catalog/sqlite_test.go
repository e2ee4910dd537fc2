package catalog_test

import (
	"context"
	"path/filepath"
	"testing"

	"arforge/internal/catalog"
	"arforge/internal/config"
)

func newStore(t *testing.T) *catalog.SQLiteStore {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Storage.PublicDir = filepath.Join(base, "public")

	store, err := catalog.Open(&cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndGetModel(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	created, err := store.CreateModel(ctx, "model-1", "Burger")
	if err != nil {
		t.Fatalf("CreateModel failed: %v", err)
	}
	if created.Status != catalog.ModelUploading {
		t.Fatalf("new model should be uploading, got %s", created.Status)
	}

	fetched, err := store.GetModel(ctx, "model-1")
	if err != nil {
		t.Fatalf("GetModel failed: %v", err)
	}
	if fetched == nil || fetched.Name != "Burger" {
		t.Fatalf("unexpected model %#v", fetched)
	}

	missing, err := store.GetModel(ctx, "nope")
	if err != nil {
		t.Fatalf("GetModel failed: %v", err)
	}
	if missing != nil {
		t.Fatal("missing model should be nil")
	}
}

func TestUpdateModelAppliesPartialFields(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if _, err := store.CreateModel(ctx, "model-1", "Burger"); err != nil {
		t.Fatalf("CreateModel failed: %v", err)
	}

	err := store.UpdateModel(ctx, "model-1", catalog.Fields{
		Status:     catalog.StatusPtr(catalog.ModelProcessing),
		GLBFileURL: catalog.StringPtr("https://cdn.example.com/burger.glb"),
	})
	if err != nil {
		t.Fatalf("UpdateModel failed: %v", err)
	}

	err = store.UpdateModel(ctx, "model-1", catalog.Fields{
		ShortLink: catalog.StringPtr("Ab3_x9Qz"),
	})
	if err != nil {
		t.Fatalf("UpdateModel failed: %v", err)
	}

	model, err := store.GetModel(ctx, "model-1")
	if err != nil {
		t.Fatalf("GetModel failed: %v", err)
	}
	if model.Status != catalog.ModelProcessing {
		t.Fatalf("status lost: %s", model.Status)
	}
	if model.GLBFileURL != "https://cdn.example.com/burger.glb" {
		t.Fatalf("glb url lost: %q", model.GLBFileURL)
	}
	if model.ShortLink != "Ab3_x9Qz" {
		t.Fatalf("short link not applied: %q", model.ShortLink)
	}
}

func TestUpdateModelMissingID(t *testing.T) {
	store := newStore(t)
	err := store.UpdateModel(context.Background(), "ghost", catalog.Fields{
		Status: catalog.StatusPtr(catalog.ModelFailed),
	})
	if err == nil {
		t.Fatal("expected error for unknown model")
	}
}

func TestShortLinkExists(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if _, err := store.CreateModel(ctx, "model-1", ""); err != nil {
		t.Fatalf("CreateModel failed: %v", err)
	}
	if err := store.UpdateModel(ctx, "model-1", catalog.Fields{ShortLink: catalog.StringPtr("linkAAAA")}); err != nil {
		t.Fatalf("UpdateModel failed: %v", err)
	}

	exists, err := store.ShortLinkExists(ctx, "linkAAAA")
	if err != nil {
		t.Fatalf("ShortLinkExists failed: %v", err)
	}
	if !exists {
		t.Fatal("expected link to exist")
	}

	exists, err = store.ShortLinkExists(ctx, "other000")
	if err != nil {
		t.Fatalf("ShortLinkExists failed: %v", err)
	}
	if exists {
		t.Fatal("unexpected link hit")
	}
}
