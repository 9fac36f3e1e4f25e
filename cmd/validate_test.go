package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AnyUserName/atlaspack-cli/internal/manifest"
)

// overflowManifest builds a one-tile game manifest whose frame spans
// two bins, with the second region placed at the given atlas position.
func overflowManifest(ax, ay int) *manifest.GameManifest {
	m := manifest.New("png-regions", []float64{1})
	m.Tiles["tile_5"] = &manifest.TileEntry{
		ID:         5,
		Type:       "tile",
		FrameCount: 1,
		Behavior:   "static",
		Atlases: map[string]*manifest.ScaleAtlas{
			"1": {
				Width:  128,
				Height: 128,
				File:   "tile_5.png",
				Files:  []string{"tile_5.png", "tile_5_1.png"},
				Frames: []manifest.FrameEntry{
					{
						Frame: 0, W: 128, H: 64, RS: 64,
						Regions: []manifest.RegionRef{
							{RX: 0, RY: 0, AX: 0, AY: 0, AW: 64, AH: 64},
							{RX: 1, RY: 0, AX: ax, AY: ay, AW: 64, AH: 64, Atlas: 1},
						},
					},
				},
			},
		},
	}
	return m
}

func overflowAtlasManifest() *manifest.AtlasManifest {
	am := manifest.NewAtlasManifest("png", 128, 64, 0, 0)
	am.Tiles["tile_5"] = &manifest.TileReport{
		ID: 5,
		Scales: map[string]*manifest.ScaleReport{
			"1": {
				Frames: 1, Regions: 2, UniqueRegions: 2,
				Bins: []manifest.BinReport{
					{File: "tile_5.png", Width: 128, Height: 128, Placed: 1},
					{File: "tile_5_1.png", Width: 64, Height: 64, Placed: 1},
				},
			},
		},
	}
	return am
}

func atlasFiles(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		path := filepath.Join(dir, "1", name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func hasError(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestValidateManifest_OverflowBinBounds(t *testing.T) {
	dir := atlasFiles(t, "tile_5.png", "tile_5_1.png")
	am := overflowAtlasManifest()

	if errs := validateManifest(overflowManifest(0, 0), am, dir); len(errs) != 0 {
		t.Errorf("in-bounds overflow placement rejected: %v", errs)
	}

	// Bin 1 is 64x64; a 64x64 region at (32, 0) runs past its edge.
	errs := validateManifest(overflowManifest(32, 0), am, dir)
	if !hasError(errs, "exceeds bin 1 bounds") {
		t.Errorf("out-of-bounds overflow placement not detected: %v", errs)
	}

	// Without the packer-internal manifest only bin 0 is checkable.
	if errs := validateManifest(overflowManifest(32, 0), nil, dir); len(errs) != 0 {
		t.Errorf("overflow bounds checked without bin dimensions: %v", errs)
	}
}

func TestValidateManifest_MissingBinReference(t *testing.T) {
	dir := atlasFiles(t, "tile_5.png", "tile_5_1.png")
	am := overflowAtlasManifest()

	m := overflowManifest(0, 0)
	m.Tiles["tile_5"].Atlases["1"].Frames[0].Regions[1].Atlas = 3
	errs := validateManifest(m, am, dir)
	if !hasError(errs, "references missing bin 3") {
		t.Errorf("dangling bin reference not detected: %v", errs)
	}
}

func TestValidateManifest_DuplicateChains(t *testing.T) {
	dir := atlasFiles(t, "tile_5.png", "tile_5_1.png")

	m := overflowManifest(0, 0)
	tile := m.Tiles["tile_5"]
	tile.FrameCount = 3
	sa := tile.Atlases["1"]
	one, two := 0, 1
	sa.Frames = append(sa.Frames,
		manifest.FrameEntry{Frame: 1, W: 128, H: 64, RS: 64, Dup: &one},
		manifest.FrameEntry{Frame: 2, W: 128, H: 64, RS: 64, Dup: &two},
	)
	errs := validateManifest(m, nil, dir)
	if !hasError(errs, "itself a duplicate") {
		t.Errorf("duplicate chain not detected: %v", errs)
	}
}
