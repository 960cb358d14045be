package farm

import (
	"image"
	"strings"

	"github.com/milk9111/buddingfriendships/common"
	"github.com/milk9111/buddingfriendships/gfx"
	"github.com/milk9111/buddingfriendships/texture"
)

// Object is anything placed on a field tile.
type Object interface {
	Position() (int, int)
	HasCollision() bool
	// Draw renders the object; origin is the screen position of the field's top-left.
	Draw(dst gfx.Surface, atlas *texture.Texture, origin common.Vec)
}

// Seed describes what a crop grows into.
type Seed struct {
	Name   string
	Stages int
	// Row is the atlas row holding the crop's growth stages.
	Row int
}

var seeds = map[string]Seed{
	"turnip": {Name: "turnip", Stages: 4},
}

// LookupSeed returns the seed registered under name.
func LookupSeed(name string) (Seed, bool) {
	s, ok := seeds[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

type Crop struct {
	X, Y  int
	Seed  Seed
	Stage int
}

func (c *Crop) Position() (int, int) { return c.X, c.Y }
func (c *Crop) HasCollision() bool   { return false }

// Grow advances the crop one stage and reports whether it is ripe.
func (c *Crop) Grow() bool {
	if c.Stage < c.Seed.Stages-1 {
		c.Stage++
	}
	return c.Stage >= c.Seed.Stages-1
}

func (c *Crop) Draw(dst gfx.Surface, atlas *texture.Texture, origin common.Vec) {
	row := 1 + c.Seed.Row
	src := image.Rect(c.Stage*common.TileWidth, row*common.TileHeight, (c.Stage+1)*common.TileWidth, (row+1)*common.TileHeight)
	dst.DrawTexture(atlas, src, origin.X+float64(c.X*common.TileWidth), origin.Y+float64(c.Y*common.TileHeight))
}

type Stone struct {
	X, Y  int
	Level int
}

func (s *Stone) Position() (int, int) { return s.X, s.Y }
func (s *Stone) HasCollision() bool   { return true }

func (s *Stone) Draw(dst gfx.Surface, atlas *texture.Texture, origin common.Vec) {
	sx := (1 + s.Level) * common.TileWidth
	src := image.Rect(sx, 0, sx+common.TileWidth, common.TileHeight)
	dst.DrawTexture(atlas, src, origin.X+float64(s.X*common.TileWidth), origin.Y+float64(s.Y*common.TileHeight))
}
