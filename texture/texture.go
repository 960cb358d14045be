// Package texture caches decoded images by path and hands out shared handles.
package texture

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Texture is an immutable decoded image shared by every map that uses it.
// Image may be nil when the cache runs headless.
type Texture struct {
	Path          string
	Image         *ebiten.Image
	Width, Height int
}

// Sub returns the region r of the texture, or nil when there is no GPU image.
func (t *Texture) Sub(r image.Rectangle) *ebiten.Image {
	if t == nil || t.Image == nil {
		return nil
	}
	sub, ok := t.Image.SubImage(r).(*ebiten.Image)
	if !ok {
		return nil
	}
	return sub
}

// Columns returns how many cells of width cell fit horizontally.
func (t *Texture) Columns(cell int) int {
	if t == nil || cell <= 0 {
		return 0
	}
	return t.Width / cell
}

// Cell returns the source rectangle of the id-th cell in a grid atlas.
func (t *Texture) Cell(id, w, h int) (image.Rectangle, bool) {
	cols := t.Columns(w)
	if cols <= 0 || id < 0 {
		return image.Rectangle{}, false
	}
	x := id % cols * w
	y := id / cols * h
	if y+h > t.Height {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}
