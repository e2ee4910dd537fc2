// Package analyze extracts mesh statistics from a binary GLB container.
//
// GLB is a 12-byte header (magic "glTF", version, total length) followed by
// chunks; the first chunk holds the scene JSON. Stats come from that JSON:
// vertex counts from POSITION accessors, triangle counts from index
// accessors, texture count from the images array. The container format is
// small and stable enough that decoding it directly beats pulling in a full
// glTF scene graph library for four numbers.
package analyze

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
)

const (
	glbMagic     = 0x46546C67
	glbVersion   = 2
	jsonChunkTag = 0x4E4F534A
)

// Stats summarizes a converted model for the published metadata.
type Stats struct {
	FileSize  int64
	Vertices  int
	Triangles int
	Textures  int
}

type sceneDoc struct {
	Meshes []struct {
		Primitives []struct {
			Attributes map[string]int `json:"attributes"`
			Indices    *int           `json:"indices"`
		} `json:"primitives"`
	} `json:"meshes"`
	Accessors []struct {
		Count int `json:"count"`
	} `json:"accessors"`
	Images []json.RawMessage `json:"images"`
}

// Analyze reads glbPath and returns its statistics. FileSize is populated
// even when the container cannot be parsed, so callers can record partial
// metadata alongside the parse error.
func Analyze(glbPath string) (Stats, error) {
	info, err := os.Stat(glbPath)
	if err != nil {
		return Stats{}, fmt.Errorf("stat glb: %w", err)
	}
	stats := Stats{FileSize: info.Size()}

	doc, err := readSceneJSON(glbPath)
	if err != nil {
		return stats, err
	}

	var scene sceneDoc
	if err := json.Unmarshal(doc, &scene); err != nil {
		return stats, fmt.Errorf("decode scene json: %w", err)
	}

	for _, mesh := range scene.Meshes {
		for _, prim := range mesh.Primitives {
			if idx, ok := prim.Attributes["POSITION"]; ok && idx >= 0 && idx < len(scene.Accessors) {
				stats.Vertices += scene.Accessors[idx].Count
			}
			switch {
			case prim.Indices != nil && *prim.Indices >= 0 && *prim.Indices < len(scene.Accessors):
				stats.Triangles += scene.Accessors[*prim.Indices].Count / 3
			default:
				// Non-indexed geometry: every three positions form a triangle.
				if idx, ok := prim.Attributes["POSITION"]; ok && idx >= 0 && idx < len(scene.Accessors) {
					stats.Triangles += scene.Accessors[idx].Count / 3
				}
			}
		}
	}
	stats.Textures = len(scene.Images)

	return stats, nil
}

// readSceneJSON validates the GLB container and returns the JSON chunk.
func readSceneJSON(glbPath string) ([]byte, error) {
	data, err := os.ReadFile(glbPath)
	if err != nil {
		return nil, fmt.Errorf("read glb: %w", err)
	}
	if len(data) < 20 {
		return nil, fmt.Errorf("glb too short: %d bytes", len(data))
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != glbMagic {
		return nil, fmt.Errorf("not a glb container: magic 0x%08x", magic)
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != glbVersion {
		return nil, fmt.Errorf("unsupported glb version %d", version)
	}
	if total := binary.LittleEndian.Uint32(data[8:12]); int(total) > len(data) {
		return nil, fmt.Errorf("truncated glb: header claims %d bytes, have %d", total, len(data))
	}

	chunkLen := binary.LittleEndian.Uint32(data[12:16])
	chunkTag := binary.LittleEndian.Uint32(data[16:20])
	if chunkTag != jsonChunkTag {
		return nil, fmt.Errorf("first chunk is not scene json: tag 0x%08x", chunkTag)
	}
	if 20+int(chunkLen) > len(data) {
		return nil, fmt.Errorf("truncated json chunk: %d bytes claimed", chunkLen)
	}
	return data[20 : 20+chunkLen], nil
}
