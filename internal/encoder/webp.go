package encoder

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
)

// Atomic counter for unique temp file names across goroutines.
var tempCounter atomic.Int64

// WebPEncoder encodes atlases to WebP by shelling out to cwebp.
// This approach avoids CGO while still producing optimized WebP.
// Install: brew install webp / apt install webp
type WebPEncoder struct {
	once      sync.Once
	available bool
	cwebpPath string
}

func (e *WebPEncoder) Format() string    { return "webp" }
func (e *WebPEncoder) Extension() string { return "webp" }

func (e *WebPEncoder) Available() bool {
	e.once.Do(func() {
		path, err := exec.LookPath("cwebp")
		if err == nil {
			e.available = true
			e.cwebpPath = path
		}
	})
	return e.available
}

func (e *WebPEncoder) Encode(ctx context.Context, img image.Image, quality int) ([]byte, error) {
	if !e.Available() {
		return nil, &EncodeError{Format: "webp", Err: fmt.Errorf("cwebp not found in PATH; install with: brew install webp")}
	}
	if quality <= 0 || quality > 100 {
		quality = 90
	}

	srcPath, dstPath, cleanup, err := tempPair("webp")
	if err != nil {
		return nil, &EncodeError{Format: "webp", Err: err}
	}
	defer cleanup()

	if err := writeTempPNG(srcPath, img); err != nil {
		return nil, &EncodeError{Format: "webp", Err: err}
	}

	// -exact preserves RGB values under fully transparent pixels so
	// padded region borders survive compression.
	cmd := exec.CommandContext(ctx, e.cwebpPath,
		"-q", fmt.Sprintf("%d", quality),
		"-m", "6", // compression method (0=fast, 6=best)
		"-exact",
		"-mt", // multi-threaded
		"-quiet",
		srcPath,
		"-o", dstPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, &EncodeError{Format: "webp", Err: fmt.Errorf("cwebp: %w: %s", err, string(out))}
	}

	data, err := os.ReadFile(dstPath)
	if err != nil {
		return nil, &EncodeError{Format: "webp", Err: err}
	}
	return data, nil
}

// tempPair creates a temp PNG source path and a temp destination path
// with the given extension. The atomic counter keeps names unique
// across goroutines.
func tempPair(ext string) (srcPath, dstPath string, cleanup func(), err error) {
	id := tempCounter.Add(1)
	srcFile, err := os.CreateTemp("", fmt.Sprintf("atlaspack_src_%d_*.png", id))
	if err != nil {
		return "", "", nil, fmt.Errorf("create temp: %w", err)
	}
	srcPath = srcFile.Name()
	srcFile.Close()
	dstFile, err := os.CreateTemp("", fmt.Sprintf("atlaspack_dst_%d_*.%s", id, ext))
	if err != nil {
		os.Remove(srcPath)
		return "", "", nil, fmt.Errorf("create temp: %w", err)
	}
	dstPath = dstFile.Name()
	dstFile.Close()
	cleanup = func() {
		os.Remove(srcPath)
		os.Remove(dstPath)
	}
	return srcPath, dstPath, cleanup, nil
}

func writeTempPNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode temp png: %w", err)
	}
	return f.Close()
}
