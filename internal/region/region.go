// Package region splits a frame raster into a fixed grid and extracts
// the non-transparent cells as border-padded, content-hashed regions.
// Regions are the unit of deduplication and atlas packing.
package region

import (
	"image"

	"github.com/AnyUserName/atlaspack-cli/internal/hasher"
)

// Region is one non-transparent grid cell of a frame, extracted with a
// duplicated-edge border on every side.
type Region struct {
	// RX, RY are the cell's grid coordinates within the frame.
	RX, RY int
	// W, H are the cell's content dimensions before padding. The last
	// row/column of the grid may be smaller than the region size.
	W, H int
	// Border is the padding width applied on each side.
	Border int
	// Pix is the padded NRGBA buffer, (W+2*Border) x (H+2*Border),
	// 4 bytes per pixel, row-major.
	Pix []uint8
	// Hash is the content hash of Pix.
	Hash uint64
	// Frame is the index of the frame this region was extracted from.
	Frame int
}

// PaddedW returns the padded buffer width in pixels.
func (r *Region) PaddedW() int { return r.W + 2*r.Border }

// PaddedH returns the padded buffer height in pixels.
func (r *Region) PaddedH() int { return r.H + 2*r.Border }

// GridSize returns the grid dimensions for a frame of the given size.
func GridSize(width, height, regionSize int) (cols, rows int) {
	cols = (width + regionSize - 1) / regionSize
	rows = (height + regionSize - 1) / regionSize
	return cols, rows
}

// Analyze partitions img into regionSize cells and returns a Region for
// every cell containing at least one pixel with nonzero alpha, in
// row-major (ry, then rx) order. frame tags the extracted regions with
// their source frame index. Pure function of its inputs.
func Analyze(img *image.NRGBA, frame, regionSize, border int) []Region {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	cols, rows := GridSize(w, h, regionSize)

	var regions []Region
	for ry := 0; ry < rows; ry++ {
		for rx := 0; rx < cols; rx++ {
			x0 := rx * regionSize
			y0 := ry * regionSize
			cw := regionSize
			if x0+cw > w {
				cw = w - x0
			}
			ch := regionSize
			if y0+ch > h {
				ch = h - y0
			}

			if cellTransparent(img, x0, y0, cw, ch) {
				continue
			}

			pix := extractPadded(img, x0, y0, cw, ch, border)
			regions = append(regions, Region{
				RX:     rx,
				RY:     ry,
				W:      cw,
				H:      ch,
				Border: border,
				Pix:    pix,
				Hash:   hasher.Sum64(pix),
				Frame:  frame,
			})
		}
	}
	return regions
}

// cellTransparent reports whether every pixel of the cell has alpha 0.
func cellTransparent(img *image.NRGBA, x0, y0, cw, ch int) bool {
	for y := y0; y < y0+ch; y++ {
		row := img.Pix[y*img.Stride+x0*4 : y*img.Stride+(x0+cw)*4]
		for i := 3; i < len(row); i += 4 {
			if row[i] != 0 {
				return false
			}
		}
	}
	return true
}

// extractPadded copies the cell into a buffer grown by border pixels on
// every side. Source coordinates are clamped to the cell's own bounds,
// not the full frame, so the border duplicates the cell's edge pixels
// even at frame edges.
func extractPadded(img *image.NRGBA, x0, y0, cw, ch, border int) []uint8 {
	pw := cw + 2*border
	ph := ch + 2*border
	pix := make([]uint8, pw*ph*4)

	for dy := 0; dy < ph; dy++ {
		sy := clamp(dy-border, 0, ch-1) + y0
		for dx := 0; dx < pw; dx++ {
			sx := clamp(dx-border, 0, cw-1) + x0
			si := sy*img.Stride + sx*4
			di := (dy*pw + dx) * 4
			copy(pix[di:di+4], img.Pix[si:si+4])
		}
	}
	return pix
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
