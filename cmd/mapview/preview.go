package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"math"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/buddingfriendships/common"
	"github.com/milk9111/buddingfriendships/config"
	"github.com/milk9111/buddingfriendships/farm"
	"github.com/milk9111/buddingfriendships/gfx"
	"github.com/milk9111/buddingfriendships/script"
	"github.com/milk9111/buddingfriendships/season"
	"github.com/milk9111/buddingfriendships/texture"
	"github.com/milk9111/buddingfriendships/world"
)

const (
	panSpeed = 6
	// follow is the fraction of the remaining distance the camera covers per frame.
	follow = 0.25
)

type options struct {
	Manifest       string
	Map            string
	Season         string
	DebugCollision bool
	// Headless skips the GPU upload of textures.
	Headless bool
	Logger   *log.Logger
}

// preview is an ebiten game showing one map at a time.
type preview struct {
	env      *world.Env
	manifest string
	registry *world.Registry
	viewer   *world.MultiMapViewer
	field    *farm.Field
	flags    *config.Flags
	target   common.Vec
	log      *log.Logger
}

func open(fsys fs.FS, opts options) (*preview, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s, err := season.FromString(opts.Season)
	if err != nil {
		return nil, err
	}

	var texOpts []texture.Option
	if opts.Headless {
		texOpts = append(texOpts, texture.WithUploader(func(image.Image) *ebiten.Image { return nil }))
	}
	textures := texture.NewCache(fsys, texOpts...)
	if keys, err := fs.Glob(fsys, "data/tilesets/*.png"); err == nil && len(keys) > 0 {
		if err := textures.Preload(context.Background(), keys...); err != nil {
			logger.Warn("preload tilesets", "err", err)
		}
	}

	p := &preview{
		manifest: opts.Manifest,
		field:    farm.New(),
		flags:    &config.Flags{Collision: opts.DebugCollision},
		log:      logger,
	}
	if err := p.field.Init(); err != nil {
		return nil, err
	}

	p.env = &world.Env{
		FS:       fsys,
		Log:      logger,
		Textures: textures,
		Field:    p.field,
		Scripts:  script.NewHost(script.Options{FS: fsys, Logger: logger, Textures: textures, Flags: p.flags}),
		Season:   s,
		Flags:    p.flags,
	}
	if err := p.load(); err != nil {
		p.Close()
		return nil, err
	}

	maps := p.registry.Maps()
	if len(maps) == 0 {
		p.Close()
		return nil, fmt.Errorf("manifest %s lists no maps", opts.Manifest)
	}
	name := opts.Map
	if name == "" {
		name = maps[0].Name
	}
	if err := p.show(name); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *preview) load() error {
	p.registry = world.NewRegistry(p.env)
	return p.registry.LoadManifest(p.manifest)
}

// nextSeason reloads every map for the following season and shows the
// current map again.
func (p *preview) nextSeason() error {
	name := p.viewer.Map.Name
	p.registry.Close()
	p.env.Season = p.env.Season.Next()
	p.log.Info("season", "now", p.env.Season)
	if err := p.load(); err != nil {
		return err
	}
	return p.show(name)
}

// show switches the viewer to the named map, centered.
func (p *preview) show(name string) error {
	if err := p.registry.SetCurrent(name); err != nil {
		return err
	}
	m, _ := p.registry.Current()
	if p.viewer == nil {
		p.viewer = world.NewMultiMapViewer(m)
	}
	p.viewer.Map = m
	w, h := m.PixelSize()
	p.target = common.Vec{X: w / 2, Y: h / 2}
	p.viewer.SetCenter(p.target)
	p.log.Info("showing", "map", m.Name, "size", fmt.Sprintf("%dx%d", m.Width, m.Height))
	return nil
}

func (p *preview) next() error {
	maps := p.registry.Maps()
	for i, m := range maps {
		if m == p.viewer.Map {
			return p.show(maps[(i+1)%len(maps)].Name)
		}
	}
	return p.show(maps[0].Name)
}

// pan moves the camera part of the way toward the target.
func (p *preview) pan() {
	c := p.viewer.Center()
	next := common.Vec{
		X: common.Lerp(c.X, p.target.X, follow),
		Y: common.Lerp(c.Y, p.target.Y, follow),
	}
	if math.Abs(next.X-p.target.X) < 1 && math.Abs(next.Y-p.target.Y) < 1 {
		next = p.target
	}
	p.viewer.SetCenter(next)
}

// render draws one frame into a recorder.
func (p *preview) render() *gfx.Recorder {
	rec := gfx.NewRecorder()
	p.viewer.Draw(rec)
	return rec
}

func (p *preview) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		p.target.X -= panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		p.target.X += panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		p.target.Y -= panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		p.target.Y += panSpeed
	}
	p.pan()

	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		p.flags.Collision = !p.flags.Collision
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		return p.next()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		return p.nextSeason()
	}
	return nil
}

func (p *preview) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	p.viewer.Draw(gfx.NewScreen(screen))
	c := p.viewer.Center()
	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s  %s  center %.0f,%.0f", p.viewer.Map.Name, p.env.Season, c.X, c.Y))
}

func (p *preview) Layout(outsideWidth, outsideHeight int) (int, int) {
	return common.ScreenWidth, common.ScreenHeight
}

func (p *preview) Close() {
	if p.registry != nil {
		p.registry.Close()
	}
	p.field.Cleanup()
}
