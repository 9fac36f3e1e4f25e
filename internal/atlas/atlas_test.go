package atlas

import (
	"errors"
	"testing"

	"github.com/AnyUserName/atlaspack-cli/internal/dedup"
	"github.com/AnyUserName/atlaspack-cli/internal/hasher"
	"github.com/AnyUserName/atlaspack-cli/internal/region"
)

// testSet builds a UniqueSet of solid-colored regions with the given
// content sizes. Border 2, so padded size is content +4 on each axis.
func testSet(t *testing.T, sizes ...[2]int) *dedup.UniqueSet {
	t.Helper()
	set := &dedup.UniqueSet{ByHash: make(map[uint64]*dedup.UniqueRegion)}
	for i, wh := range sizes {
		const border = 2
		pw := wh[0] + 2*border
		ph := wh[1] + 2*border
		pix := make([]uint8, pw*ph*4)
		for j := 0; j < len(pix); j += 4 {
			pix[j] = uint8(i + 1) // distinct content per region
			pix[j+3] = 255
		}
		r := &region.Region{
			RX: i, RY: 0,
			W: wh[0], H: wh[1],
			Border: border,
			Pix:    pix,
			Hash:   hasher.Sum64(pix),
			Frame:  0,
		}
		set.ByHash[r.Hash] = &dedup.UniqueRegion{Region: r, FirstFrame: 0}
		set.Order = append(set.Order, r.Hash)
		set.Total++
	}
	return set
}

func rectsOverlap(a, b Placement) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W && a.Y < b.Y+b.H && b.Y < a.Y+a.H
}

func TestPack_NonOverlapAndContainment(t *testing.T) {
	set := testSet(t, [2]int{64, 64}, [2]int{64, 32}, [2]int{32, 64}, [2]int{48, 48}, [2]int{16, 16})

	res, err := Pack(set, 256, 2)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if len(res.ByHash) != set.Len() {
		t.Fatalf("placements: got %d, want %d", len(res.ByHash), set.Len())
	}

	for _, bin := range res.Bins {
		for i, a := range bin.Placements {
			if a.X < 0 || a.Y < 0 || a.X+a.W > bin.W || a.Y+a.H > bin.H {
				t.Errorf("placement %+v outside bin %dx%d", a, bin.W, bin.H)
			}
			for _, b := range bin.Placements[i+1:] {
				if rectsOverlap(a, b) {
					t.Errorf("placements overlap: %+v and %+v", a, b)
				}
			}
		}
	}
}

func TestPack_OverflowOpensNewBin(t *testing.T) {
	// 104x104 padded (106x106 with spacing) fits only once into a
	// 128x128 bin, so three regions force at least three bins.
	set := testSet(t, [2]int{100, 100}, [2]int{100, 100}, [2]int{100, 100})
	res, err := Pack(set, 128, 2)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if len(res.Bins) < 2 {
		t.Fatalf("bins: got %d, want >= 2", len(res.Bins))
	}
	var placed int
	for _, bin := range res.Bins {
		placed += len(bin.Placements)
	}
	if placed != 3 {
		t.Errorf("placed: got %d, want 3", placed)
	}
	// At least one region must report a bin index beyond the first.
	var beyond bool
	for _, p := range res.ByHash {
		if p.Bin > 0 {
			beyond = true
		}
	}
	if !beyond {
		t.Error("no placement recorded in a bin beyond the first")
	}
}

func TestPack_RegionTooLarge(t *testing.T) {
	set := testSet(t, [2]int{300, 40})
	_, err := Pack(set, 128, 2)
	var tooLarge *RegionTooLargeError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("error: got %v, want RegionTooLargeError", err)
	}
}

func TestPack_EmptySet(t *testing.T) {
	set := &dedup.UniqueSet{ByHash: make(map[uint64]*dedup.UniqueRegion)}
	res, err := Pack(set, 128, 2)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if len(res.Bins) != 0 {
		t.Errorf("bins: got %d, want 0", len(res.Bins))
	}
}

func TestPack_Deterministic(t *testing.T) {
	mk := func() *Result {
		set := testSet(t, [2]int{64, 64}, [2]int{32, 48}, [2]int{48, 32}, [2]int{16, 64})
		res, err := Pack(set, 256, 2)
		if err != nil {
			t.Fatalf("pack: %v", err)
		}
		return res
	}
	a, b := mk(), mk()
	if len(a.Bins) != len(b.Bins) {
		t.Fatalf("bin count differs: %d vs %d", len(a.Bins), len(b.Bins))
	}
	for hash, pa := range a.ByHash {
		if pb := b.ByHash[hash]; pa != pb {
			t.Errorf("placement differs for %016x: %+v vs %+v", hash, pa, pb)
		}
	}
}

func TestPack_PowerOfTwoBins(t *testing.T) {
	set := testSet(t, [2]int{60, 30})
	res, err := Pack(set, 256, 2)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	for _, bin := range res.Bins {
		for _, d := range []int{bin.W, bin.H} {
			if d&(d-1) != 0 {
				t.Errorf("bin dimension %d not a power of two", d)
			}
		}
	}
}

func TestRasterize(t *testing.T) {
	set := testSet(t, [2]int{16, 16}, [2]int{16, 16})
	res, err := Pack(set, 64, 2)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if len(res.Bins) != 1 {
		t.Fatalf("bins: got %d, want 1", len(res.Bins))
	}

	canvas := Rasterize(res.Bins[0], set)
	if canvas.Bounds().Dx() != res.Bins[0].W || canvas.Bounds().Dy() != res.Bins[0].H {
		t.Fatalf("canvas size %v does not match bin %dx%d", canvas.Bounds(), res.Bins[0].W, res.Bins[0].H)
	}

	// Every placed pixel must carry its region's fill value; the center
	// of each placement is content, not border.
	for _, p := range res.Bins[0].Placements {
		r := set.ByHash[p.Hash].Region
		cx := p.X + p.W/2
		cy := p.Y + p.H/2
		got := canvas.NRGBAAt(cx, cy)
		if got.R != r.Pix[0] || got.A != 255 {
			t.Errorf("placement %016x: center pixel got %+v, want R=%d A=255", p.Hash, got, r.Pix[0])
		}
	}
}
