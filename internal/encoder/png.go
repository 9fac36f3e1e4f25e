package encoder

import (
	"bytes"
	"context"
	"image"
	"image/png"
)

// PNGEncoder encodes atlases to PNG using Go's standard library.
// Always available; used as the lossless output path and as the
// intermediate raster the subprocess encoders consume.
type PNGEncoder struct{}

func (e *PNGEncoder) Format() string    { return "png" }
func (e *PNGEncoder) Extension() string { return "png" }
func (e *PNGEncoder) Available() bool   { return true }

func (e *PNGEncoder) Encode(_ context.Context, img image.Image, _ int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(512 * 1024) // pre-alloc 512KB

	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, &EncodeError{Format: "png", Err: err}
	}
	return buf.Bytes(), nil
}
