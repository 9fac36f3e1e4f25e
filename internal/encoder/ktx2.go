package encoder

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"sync"
)

// KTX2Encoder encodes atlases to KTX2/UASTC by shelling out to basisu.
// The GPU-compressed path for renderers that upload atlases directly.
// Install: https://github.com/BinomialLLC/basis_universal
type KTX2Encoder struct {
	once       sync.Once
	available  bool
	basisuPath string
}

func (e *KTX2Encoder) Format() string    { return "ktx2" }
func (e *KTX2Encoder) Extension() string { return "ktx2" }

func (e *KTX2Encoder) Available() bool {
	e.once.Do(func() {
		path, err := exec.LookPath("basisu")
		if err == nil {
			e.available = true
			e.basisuPath = path
		}
	})
	return e.available
}

func (e *KTX2Encoder) Encode(ctx context.Context, img image.Image, quality int) ([]byte, error) {
	if !e.Available() {
		return nil, &EncodeError{Format: "ktx2", Err: fmt.Errorf("basisu not found in PATH")}
	}
	if quality <= 0 || quality > 100 {
		quality = 90
	}

	// basisu UASTC quality level is 0-4; map our 1-100 onto it.
	level := quality * 4 / 100

	srcPath, dstPath, cleanup, err := tempPair("ktx2")
	if err != nil {
		return nil, &EncodeError{Format: "ktx2", Err: err}
	}
	defer cleanup()

	if err := writeTempPNG(srcPath, img); err != nil {
		return nil, &EncodeError{Format: "ktx2", Err: err}
	}

	cmd := exec.CommandContext(ctx, e.basisuPath,
		"-ktx2",
		"-uastc",
		"-uastc_level", fmt.Sprintf("%d", level),
		"-uastc_rdo_l", "0.75",
		"-file", srcPath,
		"-output_file", dstPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, &EncodeError{Format: "ktx2", Err: fmt.Errorf("basisu: %w: %s", err, string(out))}
	}

	data, err := os.ReadFile(dstPath)
	if err != nil {
		return nil, &EncodeError{Format: "ktx2", Err: err}
	}
	return data, nil
}
