package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "atlaspack",
	Short: "Region-deduplicating atlas packer for animated sprites",
	Long: `atlaspack — turns per-frame sprite rasters into compact texture atlases.

Detects duplicate frames and duplicate sub-regions across an animation,
packs the unique content into bounded atlas bins (WebP or KTX2), and
emits a manifest that reconstructs every original frame from atlas
coordinates.`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"atlaspack %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[atlaspack] "+format+"\n", args...)
	}
}
