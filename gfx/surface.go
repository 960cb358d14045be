// Package gfx is the boundary between game code and the renderer.
package gfx

import (
	"image"
	"image/color"

	"github.com/milk9111/buddingfriendships/texture"
)

// Surface receives draw calls in screen pixels.
type Surface interface {
	DrawTexture(tex *texture.Texture, src image.Rectangle, x, y float64)
	FillRect(x, y, w, h float64, clr color.Color)
	DrawText(s string, x, y float64, clr color.Color)
}

type translated struct {
	Surface
	dx, dy float64
}

// Translate returns a surface that offsets every call by (dx, dy).
func Translate(s Surface, dx, dy float64) Surface {
	if dx == 0 && dy == 0 {
		return s
	}
	if t, ok := s.(translated); ok {
		return translated{Surface: t.Surface, dx: t.dx + dx, dy: t.dy + dy}
	}
	return translated{Surface: s, dx: dx, dy: dy}
}

func (t translated) DrawTexture(tex *texture.Texture, src image.Rectangle, x, y float64) {
	t.Surface.DrawTexture(tex, src, x+t.dx, y+t.dy)
}

func (t translated) FillRect(x, y, w, h float64, clr color.Color) {
	t.Surface.FillRect(x+t.dx, y+t.dy, w, h, clr)
}

func (t translated) DrawText(s string, x, y float64, clr color.Color) {
	t.Surface.DrawText(s, x+t.dx, y+t.dy, clr)
}
