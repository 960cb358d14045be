package gfx

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/buddingfriendships/texture"
	"golang.org/x/image/font/basicfont"
)

// DefaultFace is the built-in bitmap font used for overlays and script text.
var DefaultFace text.Face = text.NewGoXFace(basicfont.Face7x13)

// Screen draws onto an ebiten image.
type Screen struct {
	Target *ebiten.Image
	Face   text.Face
}

func NewScreen(target *ebiten.Image) *Screen {
	return &Screen{Target: target, Face: DefaultFace}
}

func (s *Screen) DrawTexture(tex *texture.Texture, src image.Rectangle, x, y float64) {
	img := tex.Sub(src)
	if img == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	op.Filter = ebiten.FilterNearest
	s.Target.DrawImage(img, op)
}

func (s *Screen) FillRect(x, y, w, h float64, clr color.Color) {
	vector.DrawFilledRect(s.Target, float32(x), float32(y), float32(w), float32(h), clr, false)
}

func (s *Screen) DrawText(str string, x, y float64, clr color.Color) {
	face := s.Face
	if face == nil {
		face = DefaultFace
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(s.Target, str, face, op)
}
