package atlas

import (
	"image"
	"image/draw"

	"github.com/AnyUserName/atlaspack-cli/internal/dedup"
)

// Rasterize composites a bin's placed regions onto a transparent canvas
// at their assigned positions. Placements never overlap by the packer's
// invariant, so draw order is irrelevant.
func Rasterize(bin Bin, set *dedup.UniqueSet) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, bin.W, bin.H))
	for _, p := range bin.Placements {
		r := set.ByHash[p.Hash].Region
		src := &image.NRGBA{
			Pix:    r.Pix,
			Stride: r.PaddedW() * 4,
			Rect:   image.Rect(0, 0, r.PaddedW(), r.PaddedH()),
		}
		dst := image.Rect(p.X, p.Y, p.X+p.W, p.Y+p.H)
		draw.Draw(canvas, dst, src, image.Point{}, draw.Src)
	}
	return canvas
}
