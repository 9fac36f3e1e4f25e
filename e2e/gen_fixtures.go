//go:build ignore

// gen_fixtures creates small animation-frame fixtures for the E2E
// smoke test: a 3-frame tile with a duplicate frame, a static tile,
// a fully transparent tile, and a tiles.json metadata file.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	os.MkdirAll(dir, 0o755)

	// Tile 100: 3 frames, frame 2 identical to frame 0, frame 1 differs
	// in one 64x64 area.
	base := sprite(160, 128, color.NRGBA{R: 40, G: 160, B: 220, A: 255})
	writeImage(filepath.Join(dir, "100_0.png"), base)
	altered := sprite(160, 128, color.NRGBA{R: 40, G: 160, B: 220, A: 255})
	fillRect(altered, 64, 0, 64, 64, color.NRGBA{R: 220, G: 60, B: 30, A: 255})
	writeImage(filepath.Join(dir, "100_1.png"), altered)
	writeImage(filepath.Join(dir, "100_2.png"), base)

	// Tile 101: static single frame.
	writeImage(filepath.Join(dir, "101_0.png"), sprite(96, 96, color.NRGBA{R: 200, G: 180, B: 40, A: 255}))

	// Tile 102: fully transparent, must be skipped entirely.
	writeImage(filepath.Join(dir, "102_0.png"), image.NewNRGBA(image.Rect(0, 0, 64, 64)))
	writeImage(filepath.Join(dir, "102_1.png"), image.NewNRGBA(image.Rect(0, 0, 64, 64)))

	meta := `{
  "100": {"width": 160, "height": 128, "offsetX": -80, "offsetY": -64, "frameCount": 3, "behavior": "loop", "fps": 24, "autoplay": true, "loop": true},
  "101": {"width": 96, "height": 96, "offsetX": 0, "offsetY": 0, "frameCount": 1, "behavior": "static", "fps": 0, "autoplay": false, "loop": false}
}
`
	if err := os.WriteFile(filepath.Join(dir, "tiles.json"), []byte(meta), 0o644); err != nil {
		panic(err)
	}

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 3 tiles in %s\n", dir)
}

// sprite draws an opaque diamond on a transparent canvas so corner
// cells stay empty and exercise the transparent-cell skip.
func sprite(w, h int, fill color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	cx, cy := w/2, h/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := abs(x-cx) * h
			dy := abs(y-cy) * w
			if dx+dy < w*h/2 {
				img.SetNRGBA(x, y, fill)
			}
		}
	}
	return img
}

func fillRect(img *image.NRGBA, x0, y0, w, h int, c color.NRGBA) {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func writeImage(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		panic(err)
	}
}
