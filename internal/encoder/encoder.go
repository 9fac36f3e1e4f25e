package encoder

import (
	"context"
	"fmt"
	"image"
)

// Encoder encodes an atlas raster to a specific output format.
type Encoder interface {
	// Format returns the output format name (e.g. "webp", "ktx2", "png").
	Format() string

	// Encode converts the image to bytes at the given quality (1-100).
	// Subprocess-backed encoders honor ctx cancellation and deadlines.
	Encode(ctx context.Context, img image.Image, quality int) ([]byte, error)

	// Available returns true if the encoder is ready to use.
	// External encoders (cwebp, basisu) may not be installed.
	Available() bool

	// Extension returns the file extension without dot.
	Extension() string
}

// EncodeError normalizes codec failures (unsupported dimensions,
// subprocess crash, timeout) into one kind, fatal per bin.
type EncodeError struct {
	Format string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
