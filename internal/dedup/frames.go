// Package dedup detects exact duplicate frames and collects the set of
// unique regions across all frames of one tile.
package dedup

import (
	"fmt"

	"github.com/AnyUserName/atlaspack-cli/internal/region"
)

// FrameAnalysis is the region-analyzer output for one frame.
type FrameAnalysis struct {
	// W, H are the frame dimensions at the analyzed scale.
	W, H int
	// Regions are the frame's non-transparent cells in row-major order.
	Regions []region.Region
}

// FrameDups maps a duplicate frame index to the index of the earliest
// pixel-identical frame. Originals never appear as keys.
type FrameDups map[int]int

type gridKey struct{ rx, ry int }

// FindDuplicateFrames compares every frame against earlier frames not
// already marked duplicate and records exact matches. Two frames match
// iff they have the same dimensions, the same cell set, and the same
// content hash in every cell. First match wins, so every mapping
// points at the first occurrence in the sequence.
func FindDuplicateFrames(frames []FrameAnalysis) FrameDups {
	dups := make(FrameDups)
	cells := make([]map[gridKey]uint64, len(frames))
	for i, f := range frames {
		m := make(map[gridKey]uint64, len(f.Regions))
		for _, r := range f.Regions {
			m[gridKey{r.RX, r.RY}] = r.Hash
		}
		cells[i] = m
	}

	for i := 1; i < len(frames); i++ {
		for j := 0; j < i; j++ {
			if _, isDup := dups[j]; isDup {
				continue
			}
			if framesEqual(frames[i], frames[j], cells[i], cells[j]) {
				dups[i] = j
				break
			}
		}
	}
	return dups
}

func framesEqual(a, b FrameAnalysis, ca, cb map[gridKey]uint64) bool {
	if a.W != b.W || a.H != b.H || len(ca) != len(cb) {
		return false
	}
	for k, h := range ca {
		if cb[k] != h {
			return false
		}
	}
	return true
}

// Check asserts that no duplicate points at another duplicate, i.e.
// every chain resolves in one hop. The construction above guarantees
// this; Check makes it a hard invariant rather than an assumption.
func (d FrameDups) Check() error {
	for frame, orig := range d {
		if frame == orig {
			return fmt.Errorf("frame %d marked duplicate of itself", frame)
		}
		if target, ok := d[orig]; ok {
			return fmt.Errorf("frame %d duplicates frame %d, which itself duplicates frame %d", frame, orig, target)
		}
	}
	return nil
}
