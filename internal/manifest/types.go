package manifest

// GameManifest is the consumer-facing output of a pack run: everything
// a renderer needs to locate atlas files and rebuild any frame.
type GameManifest struct {
	Version int                   `json:"version"`
	Format  string                `json:"format"` // e.g. "webp-regions"
	Scales  []float64             `json:"scales"`
	Tiles   map[string]*TileEntry `json:"tiles"` // keyed "<type>_<id>"
}

// TileEntry describes one tile and its atlases per scale.
type TileEntry struct {
	ID         int                    `json:"id"`
	Type       string                 `json:"type"`
	Width      int                    `json:"width"`
	Height     int                    `json:"height"`
	OffsetX    int                    `json:"offsetX"`
	OffsetY    int                    `json:"offsetY"`
	FrameCount int                    `json:"frameCount"`
	Behavior   string                 `json:"behavior"`
	FPS        float64                `json:"fps"`
	Autoplay   bool                   `json:"autoplay"`
	Loop       bool                   `json:"loop"`
	Atlases    map[string]*ScaleAtlas `json:"atlases"` // keyed by scale string
}

// ScaleAtlas is one tile's packed output at one scale. Width, height
// and file describe bin 0; files lists every bin when more than one
// was needed.
type ScaleAtlas struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	File   string       `json:"file"`
	Files  []string     `json:"files,omitempty"`
	Frames []FrameEntry `json:"frames"`
}

// FrameEntry reconstructs one frame: either a duplicate-of reference or
// the list of region placements. Exactly one of Dup and Regions is set.
type FrameEntry struct {
	Frame   int         `json:"frame"`
	W       int         `json:"w"`
	H       int         `json:"h"`
	RS      int         `json:"rs"` // region grid size in pixels
	Dup     *int        `json:"dup,omitempty"`
	Regions []RegionRef `json:"regions,omitempty"`
}

// RegionRef places one atlas sub-rectangle into a frame. (AX, AY) is
// the content position in the atlas with the padding border already
// skipped, (AW, AH) the content size; the destination is
// (RX*rs, RY*rs). (OX, OY) is the border offset from the padded
// rectangle's origin, for consumers that sample the padded rect.
type RegionRef struct {
	RX    int `json:"rx"`
	RY    int `json:"ry"`
	AX    int `json:"ax"`
	AY    int `json:"ay"`
	AW    int `json:"aw"`
	AH    int `json:"ah"`
	OX    int `json:"ox"`
	OY    int `json:"oy"`
	Atlas int `json:"atlas,omitempty"` // bin index, 0 for the first bin
}

// AtlasManifest is the packer-internal manifest: per-tile bin layouts,
// placements and dedup statistics for tooling and debugging. It carries
// no timestamps or other run-varying fields, so identical input
// serializes to identical bytes.
type AtlasManifest struct {
	Version    int                    `json:"version"`
	Format     string                 `json:"format"`
	MaxSize    int                    `json:"max_size"`
	RegionSize int                    `json:"region_size"`
	Border     int                    `json:"border"`
	Padding    int                    `json:"padding"`
	Tiles      map[string]*TileReport `json:"tiles"`
	Stats      Stats                  `json:"stats"`
}

// TileReport aggregates one tile's packing detail across scales.
type TileReport struct {
	ID     int                     `json:"id"`
	Scales map[string]*ScaleReport `json:"scales"`
}

// ScaleReport is the packing detail for one tile at one scale.
type ScaleReport struct {
	Frames        int               `json:"frames"`
	DupFrames     int               `json:"dup_frames"`
	Regions       int               `json:"regions"`
	UniqueRegions int               `json:"unique_regions"`
	Bins          []BinReport       `json:"bins"`
	Placements    []PlacementReport `json:"placements"`
}

// BinReport describes one emitted atlas bin.
type BinReport struct {
	File   string `json:"file"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Placed int    `json:"placed"`
	Bytes  int64  `json:"bytes"`
}

// PlacementReport records one unique region's resolved position.
type PlacementReport struct {
	Hash       string `json:"hash"` // hex content hash
	FirstFrame int    `json:"first_frame"`
	Bin        int    `json:"bin"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	W          int    `json:"w"`
	H          int    `json:"h"`
}

// Stats aggregates pack metrics across all tiles.
type Stats struct {
	TotalTiles    int   `json:"total_tiles"`
	SkippedTiles  int   `json:"skipped_tiles"` // fully transparent
	FailedTiles   int   `json:"failed_tiles"`
	TotalFrames   int   `json:"total_frames"`
	DupFrames     int   `json:"dup_frames"`
	TotalRegions  int   `json:"total_regions"`
	UniqueRegions int   `json:"unique_regions"`
	OutputBytes   int64 `json:"output_bytes"`
}

// FailedTile records one tile that was excluded from the manifest.
type FailedTile struct {
	TileID int    `json:"tileId"`
	Reason string `json:"reason"`
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1
