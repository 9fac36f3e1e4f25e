package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AnyUserName/atlaspack-cli/internal/manifest"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest_path>",
	Short: "Validate a game manifest and its reconstruction invariants",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	manifestPath := args[0]

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	var m manifest.GameManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}

	baseDir := filepath.Dir(manifestPath)

	// The packer-internal manifest, when present next to the game
	// manifest, carries every bin's dimensions; the game manifest alone
	// only describes bin 0.
	var am *manifest.AtlasManifest
	if data, err := os.ReadFile(filepath.Join(baseDir, "atlas-manifest.json")); err == nil {
		var parsed manifest.AtlasManifest
		if err := json.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("parse atlas manifest: %w", err)
		}
		am = &parsed
	}

	errors := validateManifest(&m, am, baseDir)

	if len(errors) == 0 {
		fmt.Println("  ✓ Manifest is valid")
		fmt.Printf("  ✓ %d tiles — frame entries complete, duplicate chains closed, files present\n", len(m.Tiles))
		return nil
	}

	fmt.Printf("  ✗ Manifest has %d error(s):\n", len(errors))
	for _, e := range errors {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errors))
}

func validateManifest(m *manifest.GameManifest, am *manifest.AtlasManifest, baseDir string) []string {
	var errs []string

	if m.Version != manifest.SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}
	if len(m.Scales) == 0 {
		errs = append(errs, "empty scales list")
	}

	for key, tile := range m.Tiles {
		if tile.FrameCount <= 0 {
			errs = append(errs, fmt.Sprintf("tile %q: invalid frame count %d", key, tile.FrameCount))
			continue
		}
		if len(tile.Atlases) == 0 {
			errs = append(errs, fmt.Sprintf("tile %q: no atlases", key))
		}

		for scale, sa := range tile.Atlases {
			errs = append(errs, validateScaleAtlas(key, scale, tile, sa, binReports(am, key, scale), baseDir)...)
		}
	}
	return errs
}

// binReports looks up the per-bin layout for one tile at one scale, or
// nil when no packer-internal manifest is available.
func binReports(am *manifest.AtlasManifest, key, scale string) []manifest.BinReport {
	if am == nil {
		return nil
	}
	rep, ok := am.Tiles[key]
	if !ok {
		return nil
	}
	sr, ok := rep.Scales[scale]
	if !ok {
		return nil
	}
	return sr.Bins
}

func validateScaleAtlas(key, scale string, tile *manifest.TileEntry, sa *manifest.ScaleAtlas, bins []manifest.BinReport, baseDir string) []string {
	var errs []string
	where := fmt.Sprintf("tile %q scale %s", key, scale)

	if sa.Width <= 0 || sa.Height <= 0 {
		errs = append(errs, fmt.Sprintf("%s: invalid atlas dimensions %dx%d", where, sa.Width, sa.Height))
	}
	if sa.File == "" {
		errs = append(errs, fmt.Sprintf("%s: missing atlas file", where))
	}

	// Every frame index 0..frameCount-1 exactly once.
	seen := make(map[int]bool, len(sa.Frames))
	dupOf := make(map[int]int)
	for _, f := range sa.Frames {
		if f.Frame < 0 || f.Frame >= tile.FrameCount {
			errs = append(errs, fmt.Sprintf("%s: frame index %d out of range", where, f.Frame))
			continue
		}
		if seen[f.Frame] {
			errs = append(errs, fmt.Sprintf("%s: frame %d appears twice", where, f.Frame))
		}
		seen[f.Frame] = true

		if f.Dup != nil && len(f.Regions) > 0 {
			errs = append(errs, fmt.Sprintf("%s: frame %d has both dup and regions", where, f.Frame))
		}
		if f.Dup != nil {
			dupOf[f.Frame] = *f.Dup
		}

		// Regions must not collide in destination space.
		cells := make(map[[2]int]bool, len(f.Regions))
		for i, r := range f.Regions {
			if r.AW <= 0 || r.AH <= 0 || r.AX < 0 || r.AY < 0 {
				errs = append(errs, fmt.Sprintf("%s: frame %d region[%d]: invalid atlas rect", where, f.Frame, i))
			}
			cell := [2]int{r.RX, r.RY}
			if cells[cell] {
				errs = append(errs, fmt.Sprintf("%s: frame %d: duplicate cell (%d,%d)", where, f.Frame, r.RX, r.RY))
			}
			cells[cell] = true
			// The game manifest carries only bin 0's dimensions;
			// overflow bins are checked against the packer-internal
			// manifest when one sits next to it.
			switch {
			case r.Atlas == 0:
				if r.AX+r.AW > sa.Width || r.AY+r.AH > sa.Height {
					errs = append(errs, fmt.Sprintf("%s: frame %d region[%d]: exceeds atlas bounds", where, f.Frame, i))
				}
			case bins != nil && r.Atlas >= len(bins):
				errs = append(errs, fmt.Sprintf("%s: frame %d region[%d]: references missing bin %d", where, f.Frame, i, r.Atlas))
			case bins != nil:
				if b := bins[r.Atlas]; r.AX+r.AW > b.Width || r.AY+r.AH > b.Height {
					errs = append(errs, fmt.Sprintf("%s: frame %d region[%d]: exceeds bin %d bounds", where, f.Frame, i, r.Atlas))
				}
			}
		}
	}
	for i := 0; i < tile.FrameCount; i++ {
		if !seen[i] {
			errs = append(errs, fmt.Sprintf("%s: frame %d missing", where, i))
		}
	}

	// Duplicate chains must resolve in one hop to a non-duplicate.
	for frame, orig := range dupOf {
		if orig == frame {
			errs = append(errs, fmt.Sprintf("%s: frame %d duplicates itself", where, frame))
		}
		if !seen[orig] {
			errs = append(errs, fmt.Sprintf("%s: frame %d duplicates missing frame %d", where, frame, orig))
		}
		if _, chained := dupOf[orig]; chained {
			errs = append(errs, fmt.Sprintf("%s: frame %d duplicates frame %d, itself a duplicate", where, frame, orig))
		}
	}

	// Referenced atlas files must exist.
	files := sa.Files
	if len(files) == 0 {
		files = []string{sa.File}
	}
	for _, name := range files {
		fullPath := filepath.Join(baseDir, scale, name)
		if _, err := os.Stat(fullPath); err != nil {
			errs = append(errs, fmt.Sprintf("%s: atlas file not found: %s/%s", where, scale, name))
		}
	}

	return errs
}
