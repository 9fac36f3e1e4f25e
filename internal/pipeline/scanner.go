package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// FrameSource is one discovered frame file of a tile.
type FrameSource struct {
	Index   int
	AbsPath string
}

// TileSource groups all frame files of one tile, sorted by frame index.
type TileSource struct {
	ID     int
	Frames []FrameSource
}

// TileMeta is the side metadata supplied by the extraction collaborator,
// keyed by tile id in <inputDir>/tiles.json.
type TileMeta struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	OffsetX    int     `json:"offsetX"`
	OffsetY    int     `json:"offsetY"`
	FrameCount int     `json:"frameCount"`
	Behavior   string  `json:"behavior"`
	FPS        float64 `json:"fps"`
	Autoplay   bool    `json:"autoplay"`
	Loop       bool    `json:"loop"`
}

// frameFilePattern matches <tileId>_<frameIndex>.<ext>.
var frameFilePattern = regexp.MustCompile(`^(\d+)_(\d+)\.([A-Za-z]+)$`)

// frameExtensions lists recognized frame file extensions.
var frameExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"webp": true,
	"gif":  true,
	"bmp":  true,
	"tiff": true,
	"tif":  true,
}

// ScanTiles walks the input directory and groups frame files into
// tiles, sorted by tile id with frames sorted by index. Frame-index
// gaps are left for the processor to reject per tile.
func ScanTiles(inputDir string) ([]TileSource, error) {
	byID := make(map[int][]FrameSource)

	err := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			// Skip hidden directories.
			if strings.HasPrefix(info.Name(), ".") && info.Name() != "." {
				return filepath.SkipDir
			}
			return nil
		}

		m := frameFilePattern.FindStringSubmatch(info.Name())
		if m == nil || !frameExtensions[strings.ToLower(m[3])] {
			return nil
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		idx, err := strconv.Atoi(m[2])
		if err != nil {
			return nil
		}
		byID[id] = append(byID[id], FrameSource{Index: idx, AbsPath: path})
		return nil
	})
	if err != nil {
		return nil, err
	}

	tiles := make([]TileSource, 0, len(byID))
	for id, frames := range byID {
		sort.Slice(frames, func(i, j int) bool { return frames[i].Index < frames[j].Index })
		tiles = append(tiles, TileSource{ID: id, Frames: frames})
	}
	sort.Slice(tiles, func(i, j int) bool { return tiles[i].ID < tiles[j].ID })
	return tiles, nil
}

// checkContiguous verifies frame indices run 0..N-1 with no gaps.
func checkContiguous(frames []FrameSource) error {
	for i, f := range frames {
		if f.Index != i {
			return fmt.Errorf("frame indices not contiguous: expected %d, found %d", i, f.Index)
		}
	}
	return nil
}

// LoadMetadata reads <inputDir>/tiles.json. A missing file is not an
// error; tiles then fall back to frame-derived defaults.
func LoadMetadata(inputDir string) (map[string]TileMeta, error) {
	path := filepath.Join(inputDir, "tiles.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]TileMeta{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var meta map[string]TileMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return meta, nil
}
