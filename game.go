package main

import (
	"context"
	"fmt"
	"image/color"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/buddingfriendships/common"
	"github.com/milk9111/buddingfriendships/config"
	"github.com/milk9111/buddingfriendships/console"
	"github.com/milk9111/buddingfriendships/farm"
	"github.com/milk9111/buddingfriendships/gfx"
	"github.com/milk9111/buddingfriendships/player"
	"github.com/milk9111/buddingfriendships/script"
	"github.com/milk9111/buddingfriendships/texture"
	"github.com/milk9111/buddingfriendships/world"
)

const tilesetGlob = "data/tilesets/*.png"

var background = color.RGBA{R: 0x10, G: 0x14, B: 0x18, A: 0xff}

type Game struct {
	cfg     config.Config
	log     *log.Logger
	console *console.Console

	field    *farm.Field
	textures *texture.Cache
	scripts  *script.Host
	registry *world.Registry
	player   *player.Player
	viewer   *world.MultiMapViewer
	watcher  *script.Watcher

	pauseUI *ebitenui.UI
	paused  bool
	quit    bool
	frameMS uint32
}

// NewGame loads every map listed by the manifest in fsys and places the
// player on the start map. texOpts are passed to the texture cache.
func NewGame(cfg config.Config, fsys fs.FS, con *console.Console, texOpts ...texture.Option) (*Game, error) {
	logger := con.Logger()
	g := &Game{
		cfg:     cfg,
		log:     logger,
		console: con,
		field:   farm.New(),
		frameMS: frameDuration(cfg.Window.TPS),
	}
	g.console.Visible = cfg.Console.Visible

	if err := g.field.Init(); err != nil {
		return nil, fmt.Errorf("init field: %w", err)
	}

	g.textures = texture.NewCache(fsys, texOpts...)
	if keys, err := fs.Glob(fsys, tilesetGlob); err == nil && len(keys) > 0 {
		if err := g.textures.Preload(context.Background(), keys...); err != nil {
			logger.Warn("preload tilesets", "err", err)
		}
	}

	g.scripts = script.NewHost(script.Options{
		FS:        fsys,
		Logger:    logger,
		Textures:  g.textures,
		Console:   con,
		Flags:     &g.cfg.Debug,
		MaxAllocs: cfg.Scripts.MaxAllocs,
	})

	env := &world.Env{
		FS:       fsys,
		Log:      logger,
		Textures: g.textures,
		Field:    g.field,
		Scripts:  g.scripts,
		Season:   cfg.CurrentSeason(),
		Flags:    &g.cfg.Debug,
	}
	g.registry = world.NewRegistry(env)
	if err := g.registry.LoadManifest(cfg.Manifest); err != nil {
		g.Close()
		return nil, err
	}
	if err := g.registry.SetCurrent(cfg.Start.Map); err != nil {
		g.Close()
		return nil, fmt.Errorf("start map: %w", err)
	}

	p, err := player.New(g.registry, common.Vec{X: cfg.Start.X, Y: cfg.Start.Y}, player.Options{
		Speed:  cfg.Player.Speed,
		Width:  cfg.Player.Width,
		Height: cfg.Player.Height,
		Logger: logger,
	})
	if err != nil {
		g.Close()
		return nil, err
	}
	g.player = p

	cur, _ := g.registry.Current()
	g.viewer = world.NewMultiMapViewer(cur)
	g.viewer.SetDimension(float64(cfg.Window.Width), float64(cfg.Window.Height))
	g.viewer.Characters = []world.Character{g.player}
	g.viewer.SetCenter(g.player.Center())

	logger.Info("game ready", "maps", len(g.registry.Maps()), "start", cur.Name, "season", env.Season)
	return g, nil
}

// Watch reloads scripts when files under dir change.
func (g *Game) Watch(dir string) error {
	w, err := script.NewWatcher(dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	g.watcher = w
	g.log.Info("watching scripts", "dir", dir)
	return nil
}

func frameDuration(tps int) uint32 {
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	return uint32(1000 / tps)
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.cfg.Debug.Collision = !g.cfg.Debug.Collision
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		g.cfg.Debug.ShowFPS = !g.cfg.Debug.ShowFPS
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.console.Visible = !g.console.Visible
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF4) {
		g.nextDay()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}

	if g.paused {
		if g.pauseUI == nil {
			g.pauseUI = NewPauseUI(g)
		}
		g.pauseUI.Update()
		return nil
	}

	g.pollWatcher()
	return g.step(player.PollInput())
}

// nextDay grows the crops on the field.
func (g *Game) nextDay() int {
	ripe := g.field.NextDay()
	g.log.Info("new day", "crops", len(g.field.Objects()), "ripe", ripe)
	return ripe
}

// step advances one frame with the given input.
func (g *Game) step(in player.Input) error {
	if err := g.player.Update(g.frameMS, in); err != nil {
		return err
	}
	cur, err := g.registry.Current()
	if err != nil {
		return err
	}
	g.viewer.Map = cur
	g.viewer.SetCenter(g.player.Center())
	return nil
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	changed := g.watcher.Drain()
	if len(changed) == 0 {
		return
	}
	paths := make([]string, 0, len(changed))
	for _, name := range changed {
		p, err := dataPath(g.cfg.DataDir, name)
		if err != nil {
			g.log.Warn("ignoring script change", "file", name, "err", err)
			continue
		}
		paths = append(paths, p)
	}
	g.reloadScripts(paths...)
}

// dataPath converts an OS path under dataDir to a data file system path.
func dataPath(dataDir, name string) (string, error) {
	rel, err := filepath.Rel(dataDir, name)
	if err != nil {
		return "", err
	}
	return script.CleanPath(filepath.ToSlash(rel)), nil
}

// scriptPaths lists the distinct scripts used by objects on every map.
func (g *Game) scriptPaths() []string {
	var out []string
	for _, m := range g.registry.Maps() {
		for _, o := range m.Objects() {
			so, ok := o.(*world.ScriptObject)
			if !ok {
				continue
			}
			p := script.CleanPath(so.ScriptPath())
			if !slices.Contains(out, p) {
				out = append(out, p)
			}
		}
	}
	return out
}

func (g *Game) reloadScripts(paths ...string) {
	for _, p := range paths {
		n, err := g.registry.ReloadScript(p)
		if err != nil {
			g.log.Error("reload script", "path", p, "err", err)
		}
		g.log.Info("reloaded script", "path", p, "objects", n)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	s := gfx.NewScreen(screen)
	g.viewer.Draw(s)

	if g.cfg.Debug.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.2f  TPS: %.2f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	if g.console.Visible {
		g.console.Draw(s, float64(g.cfg.Window.Width), float64(g.cfg.Window.Height))
	}
	if g.paused && g.pauseUI != nil {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Window.Width, g.cfg.Window.Height
}

// Close releases maps, scripts and the watcher.
func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
		g.watcher = nil
	}
	if g.registry != nil {
		g.registry.Close()
	}
	g.field.Cleanup()
}
