// buddingfriendships is a top-down farming and friendship game.
//
// Usage:
//
//	buddingfriendships [flags]
//
// Flags:
//
//	--config <path>      - Path to a YAML config (default: ./config.yaml, then built-in)
//	--map <name>         - Start on this map instead of the configured one
//	--season <name>      - spring, summer, fall or winter
//	--debug-collision    - Draw collision tiles and character boxes
//	--no-fps             - Hide the FPS counter
//	--watch              - Reload scripts when they change on disk
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/milk9111/buddingfriendships/config"
	"github.com/milk9111/buddingfriendships/console"
)

var (
	flagConfig         string
	flagMap            string
	flagSeason         string
	flagDebugCollision bool
	flagNoFPS          bool
	flagWatch          bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "buddingfriendships",
	Short: "Budding Friendships - a small farming game",
	Long: `Budding Friendships walks a player across connected tile maps with
scripted objects and a farm field.

Controls:
  WASD/Arrows  - Move
  Z/Enter      - Interact
  Esc          - Pause
  F1           - Toggle collision debug
  F2           - Toggle FPS
  F3           - Toggle console
  F4           - Next day (grow crops)`,
	SilenceUsage: true,
	RunE:         runGame,
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.Flags().StringVar(&flagMap, "map", "", "Start map name")
	rootCmd.Flags().StringVar(&flagSeason, "season", "", "Season: spring, summer, fall, winter")
	rootCmd.Flags().BoolVar(&flagDebugCollision, "debug-collision", false, "Draw collision debug overlay")
	rootCmd.Flags().BoolVar(&flagNoFPS, "no-fps", false, "Hide the FPS counter")
	rootCmd.Flags().BoolVar(&flagWatch, "watch", false, "Reload scripts on change")
}

// applyFlags overrides cfg with the flags the user set.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("map") {
		cfg.Start.Map = flagMap
	}
	if flags.Changed("season") {
		cfg.Season = flagSeason
	}
	if flags.Changed("debug-collision") {
		cfg.Debug.Collision = flagDebugCollision
	}
	if flags.Changed("no-fps") {
		cfg.Debug.ShowFPS = !flagNoFPS
	}
	if flags.Changed("watch") {
		cfg.Scripts.Watch = flagWatch
	}
	return cfg.Validate()
}

func runGame(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, &cfg); err != nil {
		return err
	}

	con := console.New(os.Stderr, cfg.Console.Lines)
	logger := con.Logger()

	fsys, onDisk := openData(cfg.DataDir, cfg.Manifest)
	if !onDisk {
		logger.Info("using embedded data", "data_dir", cfg.DataDir)
	}

	game, err := NewGame(cfg, fsys, con)
	if err != nil {
		return err
	}
	defer game.Close()

	if cfg.Scripts.Watch {
		if !onDisk {
			logger.Warn("script watching needs a data directory on disk")
		} else if err := game.Watch(filepath.Join(cfg.DataDir, filepath.FromSlash(cfg.Scripts.Dir))); err != nil {
			logger.Error("watch scripts", "err", err)
		}
	}

	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if cfg.Window.TPS > 0 {
		ebiten.SetTPS(cfg.Window.TPS)
	}
	return ebiten.RunGame(game)
}
