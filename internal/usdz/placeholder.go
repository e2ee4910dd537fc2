package usdz

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
)

// placeholderUSDA is an empty-but-valid USD stage. Quick Look opens it
// without crashing, which beats serving a broken link.
const placeholderUSDA = `#usda 1.0
(
    defaultPrim = "Placeholder"
    metersPerUnit = 1
    upAxis = "Y"
)

def Xform "Placeholder"
{
}
`

// WritePlaceholder writes a minimal valid USDZ archive into workDir and
// returns its path. USDZ is an uncompressed zip whose first entry is the
// default-layer USD file.
func WritePlaceholder(workDir string) (string, error) {
	outputPath := filepath.Join(workDir, outputName)

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("create placeholder usdz: %w", err)
	}
	defer file.Close()

	archive := zip.NewWriter(file)
	entry, err := archive.CreateHeader(&zip.FileHeader{
		Name:   "placeholder.usda",
		Method: zip.Store,
	})
	if err != nil {
		return "", fmt.Errorf("create placeholder entry: %w", err)
	}
	if _, err := entry.Write([]byte(placeholderUSDA)); err != nil {
		return "", fmt.Errorf("write placeholder entry: %w", err)
	}
	if err := archive.Close(); err != nil {
		return "", fmt.Errorf("finalize placeholder usdz: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close placeholder usdz: %w", err)
	}
	return outputPath, nil
}
