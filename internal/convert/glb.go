package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"arforge/internal/services"
)

// copyConverter handles GLB input: the upload is already canonical, so the
// conversion is a byte copy into the job workspace.
type copyConverter struct{}

func (copyConverter) Convert(ctx context.Context, inputPath, workDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := os.Open(inputPath)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "convert", "open input", inputPath, err)
	}
	defer src.Close()

	outputPath := filepath.Join(workDir, canonicalName)
	dst, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("create canonical glb: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", fmt.Errorf("copy glb: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close canonical glb: %w", err)
	}
	return outputPath, nil
}
