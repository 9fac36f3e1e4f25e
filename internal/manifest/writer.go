package manifest

import (
	"encoding/json"
	"os"

	"github.com/klauspost/compress/zstd"
)

// New creates an empty game manifest.
func New(format string, scales []float64) *GameManifest {
	return &GameManifest{
		Version: SupportedManifestVersion,
		Format:  format,
		Scales:  scales,
		Tiles:   make(map[string]*TileEntry),
	}
}

// NewAtlasManifest creates an empty packer-internal manifest.
func NewAtlasManifest(format string, maxSize, regionSize, border, padding int) *AtlasManifest {
	return &AtlasManifest{
		Version:    SupportedManifestVersion,
		Format:     format,
		MaxSize:    maxSize,
		RegionSize: regionSize,
		Border:     border,
		Padding:    padding,
		Tiles:      make(map[string]*TileReport),
	}
}

// WriteJSON serializes v to a JSON file with stable two-space indent.
// Map keys marshal sorted, so identical input produces identical bytes.
func WriteJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// WriteJSONZst writes v as zstd-compressed JSON. The internal atlas
// manifest grows with frames x regions, so large batches want this.
func WriteJSONZst(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		f.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
