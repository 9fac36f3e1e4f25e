package manifest

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/AnyUserName/atlaspack-cli/internal/atlas"
	"github.com/AnyUserName/atlaspack-cli/internal/dedup"
	"github.com/AnyUserName/atlaspack-cli/internal/region"
)

func TestManifestRoundtrip(t *testing.T) {
	m := New("webp-regions", []float64{1})
	dup := 0
	m.Tiles["tile_7"] = &TileEntry{
		ID: 7, Type: "tile",
		Width: 160, Height: 128, OffsetX: -80, OffsetY: -64,
		FrameCount: 2, Behavior: "loop", FPS: 24, Autoplay: true, Loop: true,
		Atlases: map[string]*ScaleAtlas{
			"1": {
				Width: 256, Height: 128, File: "tile_7.webp",
				Frames: []FrameEntry{
					{Frame: 0, W: 160, H: 128, RS: 64, Regions: []RegionRef{
						{RX: 0, RY: 0, AX: 4, AY: 4, AW: 64, AH: 64, OX: 4, OY: 4},
					}},
					{Frame: 1, W: 160, H: 128, RS: 64, Dup: &dup},
				},
			},
		},
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	if err := WriteJSON(m, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var m2 GameManifest
	if err := json.Unmarshal(data, &m2); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if m2.Version != SupportedManifestVersion {
		t.Errorf("version: got %d, want %d", m2.Version, SupportedManifestVersion)
	}
	if m2.Format != "webp-regions" {
		t.Errorf("format: got %q", m2.Format)
	}
	tile, ok := m2.Tiles["tile_7"]
	if !ok {
		t.Fatal("tile_7 missing")
	}
	sa := tile.Atlases["1"]
	if sa == nil || len(sa.Frames) != 2 {
		t.Fatalf("scale 1 atlas missing or incomplete: %+v", sa)
	}
	if sa.Frames[1].Dup == nil || *sa.Frames[1].Dup != 0 {
		t.Errorf("frame 1 dup: got %v", sa.Frames[1].Dup)
	}
	if len(sa.Frames[0].Regions) != 1 || sa.Frames[0].Regions[0].AW != 64 {
		t.Errorf("frame 0 regions: got %+v", sa.Frames[0].Regions)
	}
}

func TestWriteJSON_Deterministic(t *testing.T) {
	mk := func(path string) []byte {
		m := New("webp-regions", []float64{1})
		m.Tiles["tile_2"] = &TileEntry{ID: 2, Type: "tile", FrameCount: 1, Atlases: map[string]*ScaleAtlas{}}
		m.Tiles["tile_1"] = &TileEntry{ID: 1, Type: "tile", FrameCount: 1, Atlases: map[string]*ScaleAtlas{}}
		if err := WriteJSON(m, path); err != nil {
			t.Fatalf("write: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		return data
	}

	dir := t.TempDir()
	a := mk(filepath.Join(dir, "a.json"))
	b := mk(filepath.Join(dir, "b.json"))
	if !bytes.Equal(a, b) {
		t.Error("identical manifests serialized to different bytes")
	}
}

func TestWriteJSONZst(t *testing.T) {
	m := NewAtlasManifest("webp", 2048, 64, 4, 2)
	m.Tiles["tile_1"] = &TileReport{ID: 1, Scales: map[string]*ScaleReport{
		"1": {Frames: 3, DupFrames: 1, Regions: 12, UniqueRegions: 5},
	}}

	dir := t.TempDir()
	path := filepath.Join(dir, "atlas-manifest.json.zst")
	if err := WriteJSONZst(m, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	zr, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}

	var m2 AtlasManifest
	if err := json.Unmarshal(data, &m2); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m2.Tiles["tile_1"].Scales["1"].UniqueRegions != 5 {
		t.Errorf("roundtrip lost data: %+v", m2.Tiles["tile_1"])
	}
}

func TestBuildFrames(t *testing.T) {
	// Frame 0 with one region, frame 1 a duplicate of frame 0.
	pix := make([]uint8, 72*72*4)
	r := region.Region{RX: 1, RY: 2, W: 64, H: 64, Border: 4, Pix: pix, Hash: 0xabc, Frame: 0}
	frames := []dedup.FrameAnalysis{
		{W: 160, H: 192, Regions: []region.Region{r}},
		{W: 160, H: 192},
	}
	dups := dedup.FrameDups{1: 0}
	packed := &atlas.Result{ByHash: map[uint64]atlas.Placement{
		0xabc: {Hash: 0xabc, Bin: 1, X: 10, Y: 20, W: 72, H: 72},
	}}

	entries, err := BuildFrames(frames, dups, packed, 64)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries: got %d", len(entries))
	}

	e0 := entries[0]
	if e0.Frame != 0 || e0.W != 160 || e0.H != 192 || e0.RS != 64 {
		t.Errorf("frame 0 header: %+v", e0)
	}
	if len(e0.Regions) != 1 {
		t.Fatalf("frame 0 regions: got %d", len(e0.Regions))
	}
	ref := e0.Regions[0]
	// Content position skips the border: placement origin + border.
	if ref.AX != 14 || ref.AY != 24 || ref.AW != 64 || ref.AH != 64 {
		t.Errorf("atlas rect: %+v", ref)
	}
	if ref.OX != 4 || ref.OY != 4 || ref.Atlas != 1 {
		t.Errorf("offsets/bin: %+v", ref)
	}

	e1 := entries[1]
	if e1.Dup == nil || *e1.Dup != 0 || len(e1.Regions) != 0 {
		t.Errorf("frame 1 should be a dup entry: %+v", e1)
	}
}

func TestBuildFrames_MissingPlacement(t *testing.T) {
	frames := []dedup.FrameAnalysis{
		{W: 64, H: 64, Regions: []region.Region{{RX: 0, RY: 0, W: 64, H: 64, Hash: 0x1}}},
	}
	packed := &atlas.Result{ByHash: map[uint64]atlas.Placement{}}
	if _, err := BuildFrames(frames, dedup.FrameDups{}, packed, 64); err == nil {
		t.Error("missing placement not reported")
	}
}

func TestTileKey(t *testing.T) {
	if got := TileKey("ground", 42); got != "ground_42" {
		t.Errorf("TileKey: got %q", got)
	}
}
