package encoder

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

func TestRegistry_PNGAlwaysAvailable(t *testing.T) {
	r := NewRegistry()
	enc := r.Get("png")
	if enc == nil {
		t.Fatal("png encoder missing from registry")
	}
	if enc.Extension() != "png" {
		t.Errorf("extension: got %q", enc.Extension())
	}
}

func TestRegistry_ResolveFallsBackToPNG(t *testing.T) {
	r := NewRegistry()
	enc, native := r.Resolve("no-such-format")
	if enc == nil {
		t.Fatal("no fallback encoder")
	}
	if native {
		t.Error("unknown format reported as native")
	}
	if enc.Format() != "png" {
		t.Errorf("fallback: got %q, want png", enc.Format())
	}
}

func TestPNGEncoder_Roundtrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 30), G: uint8(y * 30), A: 255})
		}
	}

	data, err := (&PNGEncoder{}).Encode(context.Background(), img, 0)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("bounds: got %v", decoded.Bounds())
	}
}

func TestPool_Bounds(t *testing.T) {
	p := NewPool(2)
	ctx := context.Background()
	if err := p.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if err := p.Acquire(ctx); err != nil {
		t.Fatal(err)
	}

	// Third acquire must block until a slot frees or the context ends.
	tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := p.Acquire(tctx); err == nil {
		t.Error("acquire succeeded past the pool bound")
	}

	p.Release()
	if err := p.Acquire(ctx); err != nil {
		t.Errorf("acquire after release: %v", err)
	}
}

func TestPool_MinimumSize(t *testing.T) {
	if got := NewPool(0).Size(); got != 1 {
		t.Errorf("size: got %d, want 1", got)
	}
}
