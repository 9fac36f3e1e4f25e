package dedup

import (
	"bytes"
	"fmt"

	"github.com/AnyUserName/atlaspack-cli/internal/region"
)

// UniqueRegion is the representative for one content hash plus the
// frame index where it was first observed.
type UniqueRegion struct {
	Region     *region.Region
	FirstFrame int
}

// UniqueSet holds the distinct regions of one tile by content hash.
type UniqueSet struct {
	// ByHash maps content hash to its representative.
	ByHash map[uint64]*UniqueRegion
	// Order lists hashes in first-seen order; packing follows this
	// order so output is reproducible across runs.
	Order []uint64
	// Total counts all analyzed regions across non-duplicate frames,
	// for dedup-ratio statistics.
	Total int
}

// CollectUniqueRegions walks all frames in index order, skipping frames
// marked duplicate, and inserts each region's hash if absent. On a hash
// hit the candidate's padded buffer is byte-compared against the
// representative: the xxhash64 digest is not collision-proof, and a
// silent collision would corrupt reconstruction, so a mismatch is a
// hard error.
func CollectUniqueRegions(frames []FrameAnalysis, dups FrameDups) (*UniqueSet, error) {
	set := &UniqueSet{ByHash: make(map[uint64]*UniqueRegion)}
	for i := range frames {
		if _, isDup := dups[i]; isDup {
			continue
		}
		for j := range frames[i].Regions {
			r := &frames[i].Regions[j]
			set.Total++
			if rep, ok := set.ByHash[r.Hash]; ok {
				if !bytes.Equal(rep.Region.Pix, r.Pix) {
					return nil, fmt.Errorf("content hash collision: frame %d cell (%d,%d) vs frame %d cell (%d,%d)",
						r.Frame, r.RX, r.RY, rep.Region.Frame, rep.Region.RX, rep.Region.RY)
				}
				continue
			}
			set.ByHash[r.Hash] = &UniqueRegion{Region: r, FirstFrame: i}
			set.Order = append(set.Order, r.Hash)
		}
	}
	return set, nil
}

// Len returns the number of distinct regions.
func (s *UniqueSet) Len() int { return len(s.Order) }
