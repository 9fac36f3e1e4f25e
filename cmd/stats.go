package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/AnyUserName/atlaspack-cli/internal/manifest"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for a packed atlas directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	path := args[0]

	// If path is a directory, look for the internal manifest inside.
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, "atlas-manifest.json")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	var m manifest.AtlasManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}

	printStats(&m)
	return nil
}

func printStats(m *manifest.AtlasManifest) {
	fmt.Println()
	fmt.Printf("  Manifest version: %d\n", m.Version)
	fmt.Printf("  Format:           %s\n", m.Format)
	fmt.Printf("  Max bin size:     %d\n", m.MaxSize)
	fmt.Printf("  Region size:      %d  (border %d, padding %d)\n", m.RegionSize, m.Border, m.Padding)
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Tiles:            %d  (%d skipped, %d failed)\n", s.TotalTiles, s.SkippedTiles, s.FailedTiles)
	fmt.Printf("  Frames:           %d  (%d duplicates)\n", s.TotalFrames, s.DupFrames)
	fmt.Printf("  Regions:          %d  (%d unique)\n", s.TotalRegions, s.UniqueRegions)
	if s.TotalRegions > 0 {
		fmt.Printf("  Dedup ratio:      %.1f%%\n", float64(s.UniqueRegions)/float64(s.TotalRegions)*100)
	}
	fmt.Printf("  Output size:      %s\n", formatBytes(s.OutputBytes))
	fmt.Println()

	// Per-scale bin breakdown.
	type scaleAgg struct {
		bins   int
		placed int
	}
	scaleStats := map[string]scaleAgg{}
	for _, t := range m.Tiles {
		for scale, sr := range t.Scales {
			agg := scaleStats[scale]
			agg.bins += len(sr.Bins)
			for _, b := range sr.Bins {
				agg.placed += b.Placed
			}
			scaleStats[scale] = agg
		}
	}
	var scales []string
	for s := range scaleStats {
		scales = append(scales, s)
	}
	sort.Strings(scales)
	fmt.Println("  Scale breakdown:")
	for _, s := range scales {
		agg := scaleStats[s]
		fmt.Printf("    x%-5s  %4d bins  %6d placed regions\n", s, agg.bins, agg.placed)
	}
	fmt.Println()

	// Multi-bin tiles (overflow past one atlas).
	var overflow []string
	for key, t := range m.Tiles {
		for _, sr := range t.Scales {
			if len(sr.Bins) > 1 {
				overflow = append(overflow, key)
				break
			}
		}
	}
	sort.Strings(overflow)
	if len(overflow) > 0 {
		fmt.Printf("  Multi-bin tiles (%d):\n", len(overflow))
		for _, key := range overflow {
			fmt.Printf("    %s\n", key)
		}
		fmt.Println()
	}
}
