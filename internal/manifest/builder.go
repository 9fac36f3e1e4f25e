package manifest

import (
	"fmt"

	"github.com/AnyUserName/atlaspack-cli/internal/atlas"
	"github.com/AnyUserName/atlaspack-cli/internal/dedup"
	"github.com/AnyUserName/atlaspack-cli/internal/hasher"
)

// BuildFrames emits one FrameEntry per frame index: a duplicate-of
// reference for frames in dups, otherwise the region placements that
// reconstruct the frame from atlas coordinates.
func BuildFrames(frames []dedup.FrameAnalysis, dups dedup.FrameDups, packed *atlas.Result, regionSize int) ([]FrameEntry, error) {
	entries := make([]FrameEntry, 0, len(frames))
	for i, f := range frames {
		entry := FrameEntry{Frame: i, W: f.W, H: f.H, RS: regionSize}

		if orig, isDup := dups[i]; isDup {
			o := orig
			entry.Dup = &o
			entries = append(entries, entry)
			continue
		}

		for j := range f.Regions {
			r := &f.Regions[j]
			p, ok := packed.ByHash[r.Hash]
			if !ok {
				return nil, fmt.Errorf("frame %d cell (%d,%d): region %016x has no placement", i, r.RX, r.RY, r.Hash)
			}
			entry.Regions = append(entry.Regions, RegionRef{
				RX:    r.RX,
				RY:    r.RY,
				AX:    p.X + r.Border,
				AY:    p.Y + r.Border,
				AW:    r.W,
				AH:    r.H,
				OX:    r.Border,
				OY:    r.Border,
				Atlas: p.Bin,
			})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// BuildScaleReport assembles the packer-internal detail for one tile
// at one scale.
func BuildScaleReport(frames []dedup.FrameAnalysis, dups dedup.FrameDups, set *dedup.UniqueSet, packed *atlas.Result) *ScaleReport {
	rep := &ScaleReport{
		Frames:        len(frames),
		DupFrames:     len(dups),
		Regions:       set.Total,
		UniqueRegions: set.Len(),
	}
	for _, hash := range set.Order {
		u := set.ByHash[hash]
		p := packed.ByHash[hash]
		rep.Placements = append(rep.Placements, PlacementReport{
			Hash:       hasher.Digest(hash, 16),
			FirstFrame: u.FirstFrame,
			Bin:        p.Bin,
			X:          p.X,
			Y:          p.Y,
			W:          p.W,
			H:          p.H,
		})
	}
	return rep
}

// TileKey builds the manifest key for a tile.
func TileKey(tileType string, id int) string {
	return fmt.Sprintf("%s_%d", tileType, id)
}
