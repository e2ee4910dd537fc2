package thumbnail

import (
	"fmt"
	"os"
	"path/filepath"
)

// placeholderSVG is a flat cube-on-gray badge shown when rendering fails.
const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="512" height="512" viewBox="0 0 512 512">
  <rect width="512" height="512" fill="#e8e8ec"/>
  <g stroke="#9a9aa4" stroke-width="10" stroke-linejoin="round" fill="none">
    <path d="M256 120 L392 192 L392 336 L256 408 L120 336 L120 192 Z"/>
    <path d="M120 192 L256 264 L392 192"/>
    <path d="M256 264 L256 408"/>
  </g>
  <text x="256" y="470" text-anchor="middle" font-family="sans-serif" font-size="28" fill="#6a6a74">3D model</text>
</svg>
`

// WritePlaceholder writes the static SVG preview into workDir and returns
// its path.
func WritePlaceholder(workDir string) (string, error) {
	outputPath := filepath.Join(workDir, "thumbnail.svg")
	if err := os.WriteFile(outputPath, []byte(placeholderSVG), 0o644); err != nil {
		return "", fmt.Errorf("write placeholder thumbnail: %w", err)
	}
	return outputPath, nil
}
