// Package raster loads source frame images and converts them into the
// NRGBA layout the region analyzer operates on.
package raster

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeError reports an unreadable or corrupt source raster.
// It is fatal for the frame's tile.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Load decodes a frame file into an NRGBA image.
func Load(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	// imaging.Clone normalizes any decoded color model to NRGBA with
	// a zero-origin bounds rectangle.
	return imaging.Clone(img), nil
}

// Scale resizes a frame by the given factor using Lanczos resampling.
// Factor 1 returns the input unchanged.
func Scale(img *image.NRGBA, factor float64) *image.NRGBA {
	if factor == 1 {
		return img
	}
	w := int(float64(img.Bounds().Dx())*factor + 0.5)
	h := int(float64(img.Bounds().Dy())*factor + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}
