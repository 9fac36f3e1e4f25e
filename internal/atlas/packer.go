// Package atlas places unique regions into bounded atlas bins and
// rasterizes each bin for encoding.
package atlas

import (
	"fmt"

	"github.com/InfinityTools/go-binpack2d"

	"github.com/AnyUserName/atlaspack-cli/internal/dedup"
)

// RegionTooLargeError reports a region whose padded size exceeds the
// maximum bin dimension. There is no mechanism to split a region across
// atlases, so this is fatal for the tile and indicates a configuration
// bug (region size + border larger than the atlas bound).
type RegionTooLargeError struct {
	Hash    uint64
	W, H    int
	MaxSize int
}

func (e *RegionTooLargeError) Error() string {
	return fmt.Sprintf("region %016x padded size %dx%d exceeds maximum bin dimension %d", e.Hash, e.W, e.H, e.MaxSize)
}

// PackingFailedError reports that packing produced no bins for a
// nonempty region set.
type PackingFailedError struct {
	Regions int
}

func (e *PackingFailedError) Error() string {
	return fmt.Sprintf("packing produced no bins for %d regions", e.Regions)
}

// Placement is a region's resolved position inside one bin.
type Placement struct {
	Hash uint64
	// Bin is the index of the atlas bin holding the region.
	Bin int
	// X, Y, W, H are the padded rectangle inside the bin.
	X, Y, W, H int
}

// Bin is one packed atlas image.
type Bin struct {
	// W, H are the bin canvas dimensions, rounded up to powers of two.
	W, H int
	// Placements lists the regions placed in this bin, in packing order.
	Placements []Placement
}

// Result holds all bins for one tile plus the position of every unique
// region resolved by content hash.
type Result struct {
	Bins   []Bin
	ByHash map[uint64]Placement
}

// Pack places every region of set into MaxRects bins of at most
// maxSize x maxSize pixels, with padding pixels of spacing reserved
// around each placed rectangle. Regions are processed in first-seen
// order and bins are scanned in creation order, so the output is
// deterministic for identical input. Rotation is disallowed: atlas
// coordinates must stay axis-aligned with the source pixels.
func Pack(set *dedup.UniqueSet, maxSize, padding int) (*Result, error) {
	res := &Result{ByHash: make(map[uint64]Placement, set.Len())}
	var packers []*binpack2d.Packer

	for _, hash := range set.Order {
		r := set.ByHash[hash].Region
		pw := r.PaddedW()
		ph := r.PaddedH()
		if pw > maxSize || ph > maxSize {
			return nil, &RegionTooLargeError{Hash: hash, W: pw, H: ph, MaxSize: maxSize}
		}

		placed := false
		for idx, p := range packers {
			if rect, ok := p.Insert(pw+padding, ph+padding, binpack2d.RULE_BEST_AREA_FIT); ok {
				res.place(hash, idx, rect.X, rect.Y, pw, ph)
				placed = true
				break
			}
		}
		if !placed {
			p := binpack2d.Create(maxSize, maxSize)
			rect, ok := p.Insert(pw+padding, ph+padding, binpack2d.RULE_BEST_AREA_FIT)
			if !ok {
				// A fresh bin always fits a rect within maxSize unless
				// padding pushed it over the bound.
				return nil, &RegionTooLargeError{Hash: hash, W: pw + padding, H: ph + padding, MaxSize: maxSize}
			}
			packers = append(packers, p)
			res.Bins = append(res.Bins, Bin{})
			res.place(hash, len(packers)-1, rect.X, rect.Y, pw, ph)
		}
	}

	if set.Len() > 0 && len(res.Bins) == 0 {
		return nil, &PackingFailedError{Regions: set.Len()}
	}

	res.shrinkBins(maxSize)
	return res, nil
}

func (r *Result) place(hash uint64, bin, x, y, w, h int) {
	p := Placement{Hash: hash, Bin: bin, X: x, Y: y, W: w, H: h}
	r.Bins[bin].Placements = append(r.Bins[bin].Placements, p)
	r.ByHash[hash] = p
}

// shrinkBins sets each bin's canvas to the power-of-two bound of its
// used extent, clamped to maxSize. Codec backends want friendly sizes;
// placements always stay inside since they fit the used extent.
func (r *Result) shrinkBins(maxSize int) {
	for i := range r.Bins {
		bin := &r.Bins[i]
		var maxX, maxY int
		for _, p := range bin.Placements {
			if p.X+p.W > maxX {
				maxX = p.X + p.W
			}
			if p.Y+p.H > maxY {
				maxY = p.Y + p.H
			}
		}
		bin.W = nextPow2(maxX)
		bin.H = nextPow2(maxY)
		if bin.W > maxSize {
			bin.W = maxSize
		}
		if bin.H > maxSize {
			bin.H = maxSize
		}
	}
}

func nextPow2(v int) int {
	p := 1
	for p < v {
		p <<= 1
	}
	return p
}
