package publish_test

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"arforge/internal/catalog"
	"arforge/internal/jobs"
	"arforge/internal/publish"
	"arforge/internal/testsupport"
)

var shortLinkPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8}$`)

func writeArtifacts(t *testing.T) (string, jobs.OutputFiles) {
	t.Helper()
	workDir := t.TempDir()
	files := jobs.OutputFiles{
		GLB:       filepath.Join(workDir, "model.glb"),
		USDZ:      filepath.Join(workDir, "model.usdz"),
		Thumbnail: filepath.Join(workDir, "thumbnail.jpg"),
	}
	for _, path := range []string{files.GLB, files.USDZ, files.Thumbnail} {
		if err := os.WriteFile(path, []byte("artifact"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return workDir, files
}

func TestPublishUploadsArtifactsAndMintsLink(t *testing.T) {
	_, files := writeArtifacts(t)
	store := testsupport.NewMemoryObjectStore()
	cat := testsupport.NewMemoryCatalog()

	publisher := publish.New(testsupport.NewConfig(t), store, cat)
	result, err := publisher.Publish(context.Background(), "model-1", files)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	for _, url := range []string{result.GLBURL, result.USDZURL, result.ThumbnailURL, result.QRCodeURL} {
		if !strings.HasPrefix(url, "https://cdn.test/models/model-1/") {
			t.Errorf("unexpected artifact url %q", url)
		}
	}
	if !shortLinkPattern.MatchString(result.ShortLink) {
		t.Errorf("short link %q does not match pattern", result.ShortLink)
	}
	wantAR := "https://menus.example.com/ar/" + result.ShortLink
	if result.ARURL != wantAR {
		t.Errorf("AR url = %q, want %q", result.ARURL, wantAR)
	}

	if len(store.Uploaded) != 4 {
		t.Errorf("expected 4 uploads (glb, usdz, thumbnail, qr), got %d", len(store.Uploaded))
	}
	if _, ok := store.Uploaded["models/model-1/qrcode.png"]; !ok {
		t.Errorf("qr code upload missing, keys: %v", store.Keys())
	}
}

func TestPublishRetriesCollidingShortLinks(t *testing.T) {
	_, files := writeArtifacts(t)
	store := testsupport.NewMemoryObjectStore()

	// A catalog claiming every link exists exhausts the attempt budget.
	cat := &collidingCatalog{}
	publisher := publish.New(testsupport.NewConfig(t), store, cat)
	_, err := publisher.Publish(context.Background(), "model-1", files)
	if err == nil {
		t.Fatal("expected short link exhaustion error")
	}
	if cat.checks < 2 {
		t.Fatalf("expected repeated uniqueness checks, got %d", cat.checks)
	}
}

func TestPublishFailsWhenAnyUploadFails(t *testing.T) {
	_, files := writeArtifacts(t)
	store := testsupport.NewMemoryObjectStore()
	store.FailKeys = []string{"model.usdz"}

	publisher := publish.New(testsupport.NewConfig(t), store, testsupport.NewMemoryCatalog())
	if _, err := publisher.Publish(context.Background(), "model-1", files); err == nil {
		t.Fatal("expected publish failure on upload error")
	}
}

// collidingCatalog reports every short link as taken.
type collidingCatalog struct {
	testsupport.MemoryCatalog
	checks int
}

func (c *collidingCatalog) ShortLinkExists(context.Context, string) (bool, error) {
	c.checks++
	return true, nil
}

var _ catalog.Store = (*collidingCatalog)(nil)
