package world

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/milk9111/buddingfriendships/common"
	"github.com/milk9111/buddingfriendships/farm"
	"github.com/milk9111/buddingfriendships/gfx"
	"github.com/milk9111/buddingfriendships/texture"
	"github.com/milk9111/buddingfriendships/tilemap"
)

// FieldAtlas is the sprite sheet used when a field object sets no atlas property.
const FieldAtlas = "data/tilesets/field.png"

var highlightColor = color.NRGBA{R: 255, G: 255, B: 255, A: 60}

// FieldObject draws the farm field and turns interactions into field edits.
type FieldObject struct {
	base
	field *farm.Field
	atlas *texture.Texture
}

func newFieldObject(env *Env, src *tilemap.Object) (*FieldObject, error) {
	if env.Field == nil || !env.Field.Initialized() {
		return nil, farm.ErrNotInitialized
	}
	o := &FieldObject{base: newBase(src), field: env.Field}

	atlas := FieldAtlas
	if v, ok := src.Properties.Get("atlas"); ok && v != "" {
		atlas = v
	}
	if env.Textures != nil {
		tex, err := env.Textures.Load(atlas)
		if err != nil {
			return nil, err
		}
		o.atlas = tex
	}
	if v, ok := src.Properties.Get("crops"); ok {
		if err := plantCrops(env.Field, v); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// plantCrops plants a space separated list of seed@x,y entries, leaving
// tiles that already hold an object untouched.
func plantCrops(field *farm.Field, list string) error {
	for _, entry := range strings.Fields(list) {
		name, pos, ok := strings.Cut(entry, "@")
		if !ok {
			return fmt.Errorf("crop %q: want seed@x,y", entry)
		}
		seed, ok := farm.LookupSeed(name)
		if !ok {
			return fmt.Errorf("crop %q: unknown seed", entry)
		}
		var x, y int
		if _, err := fmt.Sscanf(pos, "%d,%d", &x, &y); err != nil {
			return fmt.Errorf("crop %q: %w", entry, err)
		}
		tile, err := field.Tile(x, y)
		if err != nil {
			return err
		}
		if tile.Object != nil {
			continue
		}
		if err := field.Plant(x, y, seed); err != nil {
			return err
		}
	}
	return nil
}

func (o *FieldObject) Kind() Kind { return KindField }

func (o *FieldObject) Field() *farm.Field { return o.field }

// Interact advances the tile under p: untilled to tilled, tilled to watered,
// watered to holding a level 1 stone.
func (o *FieldObject) Interact(p common.Vec) error {
	x, y := common.TileOf(p)
	tile, err := o.field.Tile(x, y)
	if err != nil {
		return err
	}
	switch {
	case tile.Water:
		return o.field.PlaceStone(x, y, 1)
	case tile.Till > 0:
		return o.field.Water(x, y)
	default:
		return o.field.Till(x, y)
	}
}

func (o *FieldObject) HasCollision(p common.Vec) bool {
	tile, err := o.field.Tile(common.TileOf(p))
	if err != nil {
		return false
	}
	return tile.Object != nil && tile.Object.HasCollision()
}

func (o *FieldObject) OnEnter(ms uint32, p common.Vec) error {
	return o.WhileInside(ms, p)
}

func (o *FieldObject) WhileInside(_ uint32, p common.Vec) error {
	o.field.ClearHighlights()
	if tile, err := o.field.Tile(common.TileOf(p)); err == nil {
		tile.Highlight = true
	}
	return nil
}

func (o *FieldObject) OnExit(uint32, common.Vec) error {
	o.field.ClearHighlights()
	return nil
}

func (o *FieldObject) Draw(dst gfx.Surface, origin common.Vec) {
	if !o.field.Initialized() {
		return
	}
	o.field.Each(func(x, y int, tile *farm.Tile) {
		px := origin.X + float64(x*common.TileWidth)
		py := origin.Y + float64(y*common.TileHeight)
		if tile.Till > 0 && o.atlas != nil {
			sx := 0
			if tile.Water {
				sx = common.TileWidth
			}
			dst.DrawTexture(o.atlas, image.Rect(sx, 0, sx+common.TileWidth, common.TileHeight), px, py)
		}
		if tile.Highlight {
			dst.FillRect(px, py, common.TileWidth, common.TileHeight, highlightColor)
		}
	})
	if o.atlas == nil {
		return
	}
	for _, obj := range o.field.Objects() {
		obj.Draw(dst, o.atlas, origin)
	}
}
