// mapview previews the maps of a data directory.
//
// Usage:
//
//	mapview [map]                 - Open a window on map (default: first in manifest)
//	mapview [map] --dry-run       - Render one frame headless and print draw statistics
//
// Flags:
//
//	--data <dir>         - Directory holding the data/ tree (default: .)
//	--manifest <path>    - Manifest path inside the data directory
//	--season <name>      - Season used to filter layers
//	--debug-collision    - Draw collision tiles
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/milk9111/buddingfriendships/common"
)

var (
	flagData           string
	flagManifest       string
	flagSeason         string
	flagDryRun         bool
	flagDebugCollision bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mapview [map]",
	Short: "Preview tile maps with their neighbors and objects",
	Long: `mapview loads every map in the manifest and shows one of them through
the same multi-map viewer the game uses.

Controls:
  WASD/Arrows  - Pan
  Tab          - Next map
  N            - Next season
  F1           - Toggle collision debug`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runMapView,
}

func init() {
	rootCmd.Flags().StringVar(&flagData, "data", ".", "Directory holding the data/ tree")
	rootCmd.Flags().StringVar(&flagManifest, "manifest", "data/maps.yaml", "Manifest path inside the data directory")
	rootCmd.Flags().StringVar(&flagSeason, "season", "spring", "Season: spring, summer, fall, winter")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Render one frame headless and print statistics")
	rootCmd.Flags().BoolVar(&flagDebugCollision, "debug-collision", false, "Draw collision debug overlay")
}

func runMapView(cmd *cobra.Command, args []string) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "mapview"})
	opts := options{
		Manifest:       flagManifest,
		Season:         flagSeason,
		DebugCollision: flagDebugCollision,
		Headless:       flagDryRun,
		Logger:         logger,
	}
	if len(args) == 1 {
		opts.Map = args[0]
	}

	v, err := open(os.DirFS(flagData), opts)
	if err != nil {
		return err
	}
	defer v.Close()

	if flagDryRun {
		rec := v.render()
		counts := rec.Textures()
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		logger.Info("rendered", "map", v.viewer.Map.Name, "calls", len(rec.Calls))
		for _, k := range keys {
			logger.Info("texture", "path", k, "draws", counts[k])
		}
		return nil
	}

	ebiten.SetWindowTitle("mapview")
	ebiten.SetWindowSize(common.ScreenWidth, common.ScreenHeight)
	return ebiten.RunGame(v)
}
