package world

import (
	"image/color"
	"math"

	"github.com/milk9111/buddingfriendships/common"
	"github.com/milk9111/buddingfriendships/gfx"
	"github.com/milk9111/buddingfriendships/tilemap"
)

// Character is a moving entity drawn between the lower and upper layers.
type Character interface {
	MapID() uint32
	Bounds() common.Rect
	// Draw renders the character at its world position shifted by offset.
	Draw(dst gfx.Surface, offset common.Vec)
}

var debugCollisionColor = color.NRGBA{R: 200, A: 150}

// MapViewer is a camera over one map. Area is the visible rectangle in map
// pixels; Position is where it lands on the destination surface.
type MapViewer struct {
	Map        *Map
	Area       common.Rect
	Position   common.Vec
	Characters []Character
}

// NewMapViewer returns a screen-sized viewer at the map's origin.
func NewMapViewer(m *Map) *MapViewer {
	return &MapViewer{
		Map:  m,
		Area: common.Rect{Width: common.ScreenWidth, Height: common.ScreenHeight},
	}
}

// SetCenter centers the area on p, rounded half up.
func (v *MapViewer) SetCenter(p common.Vec) {
	r := common.RoundVec(p)
	v.Area.Left = r.X - v.Area.Width/2
	v.Area.Top = r.Y - v.Area.Height/2
}

// Center returns the midpoint of the area.
func (v *MapViewer) Center() common.Vec {
	return common.Vec{X: v.Area.Left + v.Area.Width/2, Y: v.Area.Top + v.Area.Height/2}
}

// SetDimension resizes the area keeping its top-left.
func (v *MapViewer) SetDimension(w, h float64) {
	v.Area.Width = w
	v.Area.Height = h
}

func (v *MapViewer) SetPosition(x, y float64) {
	v.Position = common.Vec{X: x, Y: y}
}

// tileWindow is the range of tile indices covering the area.
type tileWindow struct {
	left, top, right, bottom int
}

func (v *MapViewer) window() tileWindow {
	r := v.Area
	w := tileWindow{
		left: max(0, int(math.Floor(r.Left/common.TileWidth))),
		top:  max(0, int(math.Floor(r.Top/common.TileHeight))),
	}
	w.right = min(w.left+int(math.Ceil(r.Width/common.TileWidth))+1, v.Map.Width)
	w.bottom = min(w.top+int(math.Ceil(r.Height/common.TileHeight))+1, v.Map.Height)
	return w
}

func (v *MapViewer) Draw(dst gfx.Surface) {
	if v.Map == nil {
		return
	}
	dst = gfx.Translate(dst, v.Position.X, v.Position.Y)
	win := v.window()
	offset := common.Vec{X: -v.Area.Left, Y: -v.Area.Top}
	debug := v.Map.env.debugCollision()

	v.drawLayers(dst, v.Map.lower, win, offset)

	for _, o := range v.Map.objects {
		b := o.Bounds()
		if v.Area.Intersects(b) {
			o.Draw(dst, b.Min().Add(offset))
		}
	}

	for _, c := range v.Characters {
		if c.MapID() != v.Map.ID {
			continue
		}
		b := c.Bounds()
		if !v.Area.Intersects(b) {
			continue
		}
		c.Draw(dst, offset)
		if debug {
			dst.FillRect(b.Left+offset.X, b.Top+offset.Y, b.Width, b.Height, debugCollisionColor)
		}
	}

	v.drawLayers(dst, v.Map.upper, win, offset)

	if debug && v.Map.collision != nil {
		v.drawLayers(dst, []*tilemap.Layer{v.Map.collision}, win, offset)
	}
}

func (v *MapViewer) drawLayers(dst gfx.Surface, layers []*tilemap.Layer, win tileWindow, offset common.Vec) {
	for _, layer := range layers {
		for y := win.top; y < win.bottom; y++ {
			for x := win.left; x < win.right; x++ {
				tile := layer.Tile(x, y)
				if tile.IsEmpty() {
					continue
				}
				tex := v.Map.textures[tile.Tileset]
				if tex == nil {
					continue
				}
				src, ok := tex.Cell(int(tile.ID), tile.Tileset.TileWidth, tile.Tileset.TileHeight)
				if !ok {
					continue
				}
				dst.DrawTexture(tex, src,
					float64(x*common.TileWidth)+offset.X,
					float64(y*common.TileHeight)+offset.Y)
			}
		}
	}
}

// MultiMapViewer also draws the neighboring maps wherever the area runs
// past an edge of its map.
type MultiMapViewer struct {
	MapViewer
}

func NewMultiMapViewer(m *Map) *MultiMapViewer {
	return &MultiMapViewer{MapViewer: *NewMapViewer(m)}
}

func (v *MultiMapViewer) Draw(dst gfx.Surface) {
	if v.Map == nil {
		return
	}
	for _, child := range v.children() {
		child.Draw(dst)
	}
	v.MapViewer.Draw(dst)
}

// children returns one viewer per neighbor exposed by the area, in west,
// east, north, south order.
func (v *MultiMapViewer) children() []*MapViewer {
	m := v.Map
	area := v.Area
	mapW, mapH := m.PixelSize()
	var out []*MapViewer

	child := func(nb *Map) *MapViewer {
		c := v.MapViewer
		c.Map = nb
		return &c
	}

	if nb, ok := m.Neighbor(West); ok && area.Left < 0 {
		c := child(nb.Map)
		nbW, _ := nb.Map.PixelSize()
		c.SetCenter(common.Vec{
			X: nbW + area.Left + area.Width/2,
			Y: area.Top + area.Height/2 + float64(nb.Offset*common.TileHeight),
		})
		c.SetDimension(-area.Left, area.Height)
		out = append(out, c)
	}

	if nb, ok := m.Neighbor(East); ok && mapW <= area.Right() {
		c := child(nb.Map)
		over := area.Right() - mapW
		c.SetCenter(common.Vec{
			X: over,
			Y: area.Top + area.Height/2 + float64(nb.Offset*common.TileHeight),
		})
		c.SetPosition(v.Position.X+area.Width-over+c.Area.Left, v.Position.Y)
		c.SetDimension(area.Width-(c.Position.X-v.Position.X), area.Height)
		out = append(out, c)
	}

	if nb, ok := m.Neighbor(North); ok && area.Top < 0 {
		c := child(nb.Map)
		_, nbH := nb.Map.PixelSize()
		c.SetCenter(common.Vec{
			X: area.Left + area.Width/2 + float64(nb.Offset*common.TileWidth),
			Y: nbH + area.Top + area.Height/2,
		})
		c.SetDimension(area.Width, -area.Top)
		out = append(out, c)
	}

	if nb, ok := m.Neighbor(South); ok && mapH <= area.Bottom() {
		c := child(nb.Map)
		over := area.Bottom() - mapH
		c.SetCenter(common.Vec{
			X: area.Left + area.Width/2 + float64(nb.Offset*common.TileWidth),
			Y: over,
		})
		c.SetPosition(v.Position.X, v.Position.Y+area.Height-over+c.Area.Top)
		c.SetDimension(area.Width, area.Height-(c.Position.Y-v.Position.Y))
		out = append(out, c)
	}

	return out
}
