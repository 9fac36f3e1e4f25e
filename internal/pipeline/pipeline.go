// Package pipeline orchestrates the per-tile batch: scan, analyze,
// deduplicate, pack, encode and aggregate manifests. Tiles are
// independent and run on a bounded worker pool; one bad tile never
// blocks the batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/AnyUserName/atlaspack-cli/internal/atlas"
	"github.com/AnyUserName/atlaspack-cli/internal/encoder"
	"github.com/AnyUserName/atlaspack-cli/internal/manifest"
	"github.com/AnyUserName/atlaspack-cli/internal/profile"
	"github.com/AnyUserName/atlaspack-cli/internal/raster"
)

// Config holds all parameters for a pack run.
type Config struct {
	InputDir    string
	OutputDir   string
	TileType    string
	Profile     profile.Profile
	Workers     int
	TileTimeout time.Duration
	Resume      bool
	Verbose     bool
}

// Result is the aggregate outcome of a pack run.
type Result struct {
	Game   *manifest.GameManifest
	Atlas  *manifest.AtlasManifest
	Failed []manifest.FailedTile
	Stats  manifest.Stats
}

// Pipeline orchestrates tile processing.
type Pipeline struct {
	cfg  Config
	enc  encoder.Encoder
	pool *encoder.Pool
}

// New creates a configured pipeline. The encoder for the profile's
// format is resolved once, falling back to PNG when the external codec
// is not installed.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.TileTimeout <= 0 {
		cfg.TileTimeout = 3 * time.Minute
	}
	registry := encoder.NewRegistry()
	enc, native := registry.Resolve(cfg.Profile.Format)
	if !native {
		fmt.Fprintf(os.Stderr, "[atlaspack] warning: %s encoder unavailable, falling back to png (%s)\n",
			cfg.Profile.Format, registry)
	}
	return &Pipeline{
		cfg:  cfg,
		enc:  enc,
		pool: encoder.NewPool(cfg.Workers),
	}
}

// Format returns the resolved output format name.
func (p *Pipeline) Format() string { return p.enc.Format() }

// Run executes the full batch and returns the aggregated manifests.
// Per-tile failures are collected, not propagated; Run itself fails
// only when the input is unusable.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	tiles, err := ScanTiles(p.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(tiles) == 0 {
		return nil, fmt.Errorf("no tile frames found in %s", p.cfg.InputDir)
	}
	meta, err := LoadMetadata(p.cfg.InputDir)
	if err != nil {
		return nil, err
	}

	if p.cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[atlaspack] found %d tiles, %d workers, format %s\n",
			len(tiles), p.cfg.Workers, p.enc.Format())
	}

	// Tiles are independent; fan out on a bounded worker pool. Results
	// land in a fixed slice, so aggregation order is deterministic
	// regardless of completion order.
	results := make([]tileResult, len(tiles))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, tile := range tiles {
		wg.Add(1)
		go func(idx int, t TileSource) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			if p.cfg.Verbose {
				fmt.Fprintf(os.Stderr, "[atlaspack] processing tile %d (%d frames)\n", t.ID, len(t.Frames))
			}

			tctx, cancel := context.WithTimeout(ctx, p.cfg.TileTimeout)
			defer cancel()
			m, hasMeta := meta[fmt.Sprintf("%d", t.ID)]
			results[idx] = p.processTile(tctx, t, m, hasMeta)
		}(i, tile)
	}
	wg.Wait()

	prof := p.cfg.Profile
	res := &Result{
		Game:  manifest.New(p.enc.Format()+"-regions", prof.Scales),
		Atlas: manifest.NewAtlasManifest(p.enc.Format(), prof.MaxSize, prof.RegionSize, prof.Border, prof.Padding),
	}

	for _, r := range results {
		res.Stats.TotalTiles++
		res.Stats.TotalFrames += r.frames
		res.Stats.DupFrames += r.dupFrames
		res.Stats.TotalRegions += r.regions
		res.Stats.UniqueRegions += r.uniqueRegions
		res.Stats.OutputBytes += r.outputBytes

		switch {
		case r.err != nil:
			reason := classify(r.err)
			fmt.Fprintf(os.Stderr, "[atlaspack] error: tile %d: %s\n", r.id, reason)
			res.Failed = append(res.Failed, manifest.FailedTile{TileID: r.id, Reason: reason})
			res.Stats.FailedTiles++
		case r.skipped:
			// Fully transparent tile: omitted from the manifest entirely.
			if p.cfg.Verbose {
				fmt.Fprintf(os.Stderr, "[atlaspack] skipped tile %d: fully transparent\n", r.id)
			}
			res.Stats.SkippedTiles++
		default:
			res.Game.Tiles[r.key] = r.entry
			res.Atlas.Tiles[r.key] = r.report
		}
	}
	res.Atlas.Stats = res.Stats
	return res, nil
}

// alreadyDone is the centralized resume predicate: a bin output is
// considered done when its file exists and is non-empty.
func (p *Pipeline) alreadyDone(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return 0, false
	}
	return info.Size(), true
}

// classify maps a tile failure to its error kind for failed-tiles.json.
func classify(err error) string {
	var decodeErr *raster.DecodeError
	var tooLarge *atlas.RegionTooLargeError
	var packFail *atlas.PackingFailedError
	var encodeErr *encoder.EncodeError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout: " + err.Error()
	case errors.As(err, &decodeErr):
		return "decode: " + decodeErr.Error()
	case errors.As(err, &tooLarge):
		return "region too large: " + tooLarge.Error()
	case errors.As(err, &packFail):
		return "packing failed: " + packFail.Error()
	case errors.As(err, &encodeErr):
		return "encode: " + encodeErr.Error()
	default:
		return err.Error()
	}
}
