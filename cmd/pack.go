package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/AnyUserName/atlaspack-cli/internal/manifest"
	"github.com/AnyUserName/atlaspack-cli/internal/pipeline"
	"github.com/AnyUserName/atlaspack-cli/internal/profile"
	"github.com/spf13/cobra"
)

var (
	packOutDir     string
	packTileType   string
	packProfile    string
	packFormat     string
	packQuality    int
	packMaxSize    int
	packRegionSize int
	packBorder     int
	packPadding    int
	packScales     []float64
	packWorkers    int
	packTimeout    time.Duration
	packResume     bool
	packCompress   bool
)

var packCmd = &cobra.Command{
	Use:   "pack <input_dir>",
	Short: "Deduplicate frames and pack unique regions into atlases",
	Long: `Scans the input directory for frame files named <tileId>_<frameIndex>.<ext>,
detects duplicate frames and duplicate sub-regions per tile, packs the
unique content into bounded atlas bins, and writes:

  <out>/<scale>/tile_<id>[_<bin>].<ext>   atlas images
  <out>/manifest.json                     consumer-facing game manifest
  <out>/atlas-manifest.json               packer-internal manifest
  <out>/failed-tiles.json                 failures, when any

Tile metadata (dimensions, offsets, behavior) is read from
<input_dir>/tiles.json when present.`,
	Args: cobra.ExactArgs(1),
	RunE: runPack,
}

func init() {
	packCmd.Flags().StringVarP(&packOutDir, "out", "o", "./atlas_out", "output directory")
	packCmd.Flags().StringVarP(&packTileType, "type", "t", "tile", "tile type used in manifest keys")
	packCmd.Flags().StringVarP(&packProfile, "profile", "p", "web", "packing profile (web, web-hq, gpu, lossless)")
	packCmd.Flags().StringVarP(&packFormat, "format", "f", "", "output format: webp, ktx2, png (overrides profile)")
	packCmd.Flags().IntVarP(&packQuality, "quality", "q", 0, "quality 1-100 (0 = profile default)")
	packCmd.Flags().IntVar(&packMaxSize, "max-size", 0, "maximum atlas bin dimension (0 = profile default)")
	packCmd.Flags().IntVar(&packRegionSize, "region-size", 0, "dedup grid cell size in pixels (0 = profile default)")
	packCmd.Flags().IntVar(&packBorder, "border", -1, "duplicated-edge border around regions (-1 = profile default)")
	packCmd.Flags().IntVar(&packPadding, "padding", -1, "spacing between packed rectangles (-1 = profile default)")
	packCmd.Flags().Float64SliceVar(&packScales, "scales", nil, "output scales (overrides profile)")
	packCmd.Flags().IntVarP(&packWorkers, "workers", "w", 0, "parallel tile workers (0 = NumCPU)")
	packCmd.Flags().DurationVar(&packTimeout, "timeout", 3*time.Minute, "per-tile processing timeout")
	packCmd.Flags().BoolVar(&packResume, "resume", false, "skip encoding bins whose output file already exists")
	packCmd.Flags().BoolVar(&packCompress, "compress-manifest", false, "also write atlas-manifest.json.zst")
	rootCmd.AddCommand(packCmd)
}

func runPack(cmd *cobra.Command, args []string) error {
	inputDir := args[0]
	start := time.Now()

	// Resolve absolute paths.
	absInput, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(packOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	// Load profile, apply flag overrides.
	prof := profile.Get(packProfile)
	if packFormat != "" {
		prof.Format = packFormat
	}
	if packQuality > 0 {
		prof.Quality = packQuality
	}
	if packMaxSize > 0 {
		prof.MaxSize = packMaxSize
	}
	if packRegionSize > 0 {
		prof.RegionSize = packRegionSize
	}
	if packBorder >= 0 {
		prof.Border = packBorder
	}
	if packPadding >= 0 {
		prof.Padding = packPadding
	}
	if packScales != nil {
		prof.Scales = packScales
	}

	logVerbose("input:   %s", absInput)
	logVerbose("output:  %s", absOutput)
	logVerbose("profile: %s (format=%s, quality=%d, max=%d, region=%d, border=%d, scales=%v)",
		prof.Name, prof.Format, prof.Quality, prof.MaxSize, prof.RegionSize, prof.Border, prof.Scales)

	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	p := pipeline.New(pipeline.Config{
		InputDir:    absInput,
		OutputDir:   absOutput,
		TileType:    packTileType,
		Profile:     prof,
		Workers:     packWorkers,
		TileTimeout: packTimeout,
		Resume:      packResume,
		Verbose:     verbose,
	})

	res, err := p.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if err := manifest.WriteJSON(res.Game, filepath.Join(absOutput, "manifest.json")); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := manifest.WriteJSON(res.Atlas, filepath.Join(absOutput, "atlas-manifest.json")); err != nil {
		return fmt.Errorf("write atlas manifest: %w", err)
	}
	if packCompress {
		if err := manifest.WriteJSONZst(res.Atlas, filepath.Join(absOutput, "atlas-manifest.json.zst")); err != nil {
			return fmt.Errorf("write compressed atlas manifest: %w", err)
		}
	}
	if len(res.Failed) > 0 {
		if err := manifest.WriteJSON(res.Failed, filepath.Join(absOutput, "failed-tiles.json")); err != nil {
			return fmt.Errorf("write failed-tiles: %w", err)
		}
	}

	printPackReport(res, time.Since(start))

	if len(res.Failed) > 0 {
		return fmt.Errorf("%d of %d tiles failed (see failed-tiles.json)", len(res.Failed), res.Stats.TotalTiles)
	}
	return nil
}

func printPackReport(res *pipeline.Result, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║             atlaspack build complete             ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	s := res.Stats
	fmt.Printf("  Tiles:          %d  (%d skipped, %d failed)\n", s.TotalTiles, s.SkippedTiles, s.FailedTiles)
	fmt.Printf("  Frames:         %d  (%d duplicates)\n", s.TotalFrames, s.DupFrames)
	fmt.Printf("  Regions:        %d  (%d unique)\n", s.TotalRegions, s.UniqueRegions)
	if s.TotalRegions > 0 {
		fmt.Printf("  Dedup ratio:    %.1f%% of regions survive\n",
			float64(s.UniqueRegions)/float64(s.TotalRegions)*100)
	}
	fmt.Printf("  Output size:    %s\n", formatBytes(s.OutputBytes))
	fmt.Printf("  Time:           %s\n", elapsed.Round(time.Millisecond))
	fmt.Println()

	// Heaviest tiles by unique region count.
	type tileLoad struct {
		key    string
		unique int
		bins   int
	}
	var items []tileLoad
	for key, rep := range res.Atlas.Tiles {
		var unique, bins int
		for _, sr := range rep.Scales {
			unique += sr.UniqueRegions
			bins += len(sr.Bins)
		}
		items = append(items, tileLoad{key, unique, bins})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].unique != items[j].unique {
			return items[i].unique > items[j].unique
		}
		return items[i].key < items[j].key
	})
	n := len(items)
	if n > 10 {
		n = 10
	}
	if n > 0 {
		fmt.Printf("  Top %d heaviest tiles (unique regions / bins):\n", n)
		for _, it := range items[:n] {
			fmt.Printf("    %-24s %6d regions  %2d bins\n", it.key, it.unique, it.bins)
		}
		fmt.Println()
	}

	if len(res.Failed) > 0 {
		fmt.Printf("  Failed tiles (%d):\n", len(res.Failed))
		for _, f := range res.Failed {
			fmt.Printf("    tile %d: %s\n", f.TileID, f.Reason)
		}
		fmt.Println()
	}
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
