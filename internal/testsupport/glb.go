package testsupport

import (
	"encoding/binary"
	"os"
	"testing"
)

const (
	glbMagic     = 0x46546C67
	glbJSONChunk = 0x4E4F534A
)

// BuildGLB assembles a minimal valid GLB container around the given JSON
// scene description.
func BuildGLB(jsonDoc []byte) []byte {
	padded := append([]byte(nil), jsonDoc...)
	for len(padded)%4 != 0 {
		padded = append(padded, ' ')
	}

	total := 12 + 8 + len(padded)
	buf := make([]byte, 0, total)

	header := make([]byte, 12)
	binary.LittleEndian.PutUint32(header[0:4], glbMagic)
	binary.LittleEndian.PutUint32(header[4:8], 2)
	binary.LittleEndian.PutUint32(header[8:12], uint32(total))
	buf = append(buf, header...)

	chunkHeader := make([]byte, 8)
	binary.LittleEndian.PutUint32(chunkHeader[0:4], uint32(len(padded)))
	binary.LittleEndian.PutUint32(chunkHeader[4:8], glbJSONChunk)
	buf = append(buf, chunkHeader...)
	buf = append(buf, padded...)

	return buf
}

// WriteGLB writes a minimal GLB file with the given JSON scene to path.
func WriteGLB(t testing.TB, path string, jsonDoc string) {
	t.Helper()
	if err := os.WriteFile(path, BuildGLB([]byte(jsonDoc)), 0o644); err != nil {
		t.Fatalf("write glb fixture: %v", err)
	}
}

// SampleSceneJSON describes one triangle mesh with a single texture, for
// analyzer tests: 3 vertices, 1 triangle, 1 image.
const SampleSceneJSON = `{
  "asset": {"version": "2.0"},
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
  "accessors": [
    {"count": 3, "type": "VEC3"},
    {"count": 3, "type": "SCALAR"}
  ],
  "images": [{"uri": "tex.png"}]
}`
