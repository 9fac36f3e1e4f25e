package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/AnyUserName/atlaspack-cli/internal/atlas"
	"github.com/AnyUserName/atlaspack-cli/internal/dedup"
	"github.com/AnyUserName/atlaspack-cli/internal/manifest"
	"github.com/AnyUserName/atlaspack-cli/internal/raster"
	"github.com/AnyUserName/atlaspack-cli/internal/region"
)

// tileResult holds the outcome of one tile's full pipeline.
type tileResult struct {
	id      int
	key     string
	entry   *manifest.TileEntry
	report  *manifest.TileReport
	skipped bool // fully transparent at every scale

	frames        int
	dupFrames     int
	regions       int
	uniqueRegions int
	outputBytes   int64

	err error
}

// scaleKey renders a scale factor as a manifest key ("1", "0.5").
func scaleKey(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

// binFileName builds the deterministic atlas file name for a bin.
func binFileName(tileID, bin int, ext string) string {
	if bin == 0 {
		return fmt.Sprintf("tile_%d.%s", tileID, ext)
	}
	return fmt.Sprintf("tile_%d_%d.%s", tileID, bin, ext)
}

// processTile runs analyze -> dedup -> pack -> encode -> manifest for
// one tile across all configured scales. All phase errors are returned
// for classification at the batch boundary; none abort sibling tiles.
func (p *Pipeline) processTile(ctx context.Context, tile TileSource, meta TileMeta, hasMeta bool) tileResult {
	res := tileResult{
		id:  tile.ID,
		key: manifest.TileKey(p.cfg.TileType, tile.ID),
	}

	if err := checkContiguous(tile.Frames); err != nil {
		res.err = err
		return res
	}

	entry := &manifest.TileEntry{
		ID:         tile.ID,
		Type:       p.cfg.TileType,
		FrameCount: len(tile.Frames),
		Atlases:    make(map[string]*manifest.ScaleAtlas),
	}
	report := &manifest.TileReport{
		ID:     tile.ID,
		Scales: make(map[string]*manifest.ScaleReport),
	}
	if hasMeta {
		entry.Width = meta.Width
		entry.Height = meta.Height
		entry.OffsetX = meta.OffsetX
		entry.OffsetY = meta.OffsetY
		entry.Behavior = meta.Behavior
		entry.FPS = meta.FPS
		entry.Autoplay = meta.Autoplay
		entry.Loop = meta.Loop
	} else {
		// Frame-derived defaults when the side metadata omits the tile.
		entry.Behavior = "loop"
		entry.FPS = 24
		entry.Autoplay = len(tile.Frames) > 1
		entry.Loop = len(tile.Frames) > 1
		if len(tile.Frames) == 1 {
			entry.Behavior = "static"
		}
	}

	prof := p.cfg.Profile
	statsDone := false
	for _, scale := range prof.Scales {
		if err := ctx.Err(); err != nil {
			res.err = err
			return res
		}

		frames, err := p.analyzeFrames(ctx, tile, scale)
		if err != nil {
			res.err = err
			return res
		}
		if !hasMeta && entry.Width == 0 && len(frames) > 0 {
			entry.Width = int(float64(frames[0].W)/scale + 0.5)
			entry.Height = int(float64(frames[0].H)/scale + 0.5)
		}

		dups := dedup.FindDuplicateFrames(frames)
		if err := dups.Check(); err != nil {
			res.err = err
			return res
		}
		set, err := dedup.CollectUniqueRegions(frames, dups)
		if err != nil {
			res.err = err
			return res
		}

		if !statsDone {
			res.frames = len(frames)
			res.dupFrames = len(dups)
			res.regions = set.Total
			res.uniqueRegions = set.Len()
			statsDone = true
		}

		// Fully transparent at this scale: nothing to pack.
		if set.Len() == 0 {
			continue
		}

		packed, err := atlas.Pack(set, prof.MaxSize, prof.Padding)
		if err != nil {
			res.err = err
			return res
		}

		sa, binSizes, err := p.emitBins(ctx, tile.ID, scale, set, packed)
		if err != nil {
			res.err = err
			return res
		}
		for _, n := range binSizes {
			res.outputBytes += n
		}

		sa.Frames, err = manifest.BuildFrames(frames, dups, packed, prof.RegionSize)
		if err != nil {
			res.err = err
			return res
		}

		key := scaleKey(scale)
		entry.Atlases[key] = sa
		rep := manifest.BuildScaleReport(frames, dups, set, packed)
		for i, b := range packed.Bins {
			rep.Bins = append(rep.Bins, manifest.BinReport{
				File:   binFileName(tile.ID, i, p.enc.Extension()),
				Width:  b.W,
				Height: b.H,
				Placed: len(b.Placements),
				Bytes:  binSizes[i],
			})
		}
		report.Scales[key] = rep
	}

	if len(entry.Atlases) == 0 {
		res.skipped = true
		return res
	}
	res.entry = entry
	res.report = report
	return res
}

// analyzeFrames loads, scales and region-analyzes every frame of a
// tile in index order.
func (p *Pipeline) analyzeFrames(ctx context.Context, tile TileSource, scale float64) ([]dedup.FrameAnalysis, error) {
	prof := p.cfg.Profile
	frames := make([]dedup.FrameAnalysis, 0, len(tile.Frames))
	for _, fs := range tile.Frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := raster.Load(fs.AbsPath)
		if err != nil {
			return nil, err
		}
		img = raster.Scale(img, scale)
		frames = append(frames, dedup.FrameAnalysis{
			W:       img.Bounds().Dx(),
			H:       img.Bounds().Dy(),
			Regions: region.Analyze(img, fs.Index, prof.RegionSize, prof.Border),
		})
	}
	return frames, nil
}

// emitBins rasterizes and encodes every bin of a packed tile at one
// scale, returning the ScaleAtlas header and per-bin bytes written.
// Bins whose output file already exists are skipped when resume is on.
func (p *Pipeline) emitBins(ctx context.Context, tileID int, scale float64, set *dedup.UniqueSet, packed *atlas.Result) (*manifest.ScaleAtlas, []int64, error) {
	scaleDir := filepath.Join(p.cfg.OutputDir, scaleKey(scale))
	if err := os.MkdirAll(scaleDir, 0o755); err != nil {
		return nil, nil, err
	}

	sa := &manifest.ScaleAtlas{}
	sizes := make([]int64, len(packed.Bins))
	for i, bin := range packed.Bins {
		name := binFileName(tileID, i, p.enc.Extension())
		path := filepath.Join(scaleDir, name)
		if i == 0 {
			sa.Width = bin.W
			sa.Height = bin.H
			sa.File = name
		}
		sa.Files = append(sa.Files, name)

		if p.cfg.Resume {
			if size, done := p.alreadyDone(path); done {
				sizes[i] = size
				continue
			}
		}

		canvas := atlas.Rasterize(bin, set)

		if err := p.pool.Acquire(ctx); err != nil {
			return nil, nil, err
		}
		data, err := p.enc.Encode(ctx, canvas, p.cfg.Profile.Quality)
		p.pool.Release()
		if err != nil {
			return nil, nil, err
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, nil, err
		}
		sizes[i] = int64(len(data))
	}
	if len(packed.Bins) == 1 {
		sa.Files = nil // single-bin tiles carry just "file"
	}
	return sa, sizes, nil
}
