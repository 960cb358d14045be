package gfx

import (
	"image"
	"image/color"

	"github.com/milk9111/buddingfriendships/texture"
)

type Op int

const (
	OpTexture Op = iota
	OpRect
	OpText
)

// Call is one recorded draw call.
type Call struct {
	Op      Op
	Texture string
	Src     image.Rectangle
	X, Y    float64
	W, H    float64
	Text    string
	Color   color.Color
}

// Recorder is a Surface that remembers every call. It backs headless
// rendering in tests and the map preview's dry-run mode.
type Recorder struct {
	Calls []Call
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) DrawTexture(tex *texture.Texture, src image.Rectangle, x, y float64) {
	name := ""
	if tex != nil {
		name = tex.Path
	}
	r.Calls = append(r.Calls, Call{Op: OpTexture, Texture: name, Src: src, X: x, Y: y, W: float64(src.Dx()), H: float64(src.Dy())})
}

func (r *Recorder) FillRect(x, y, w, h float64, clr color.Color) {
	r.Calls = append(r.Calls, Call{Op: OpRect, X: x, Y: y, W: w, H: h, Color: clr})
}

func (r *Recorder) DrawText(s string, x, y float64, clr color.Color) {
	r.Calls = append(r.Calls, Call{Op: OpText, Text: s, X: x, Y: y, Color: clr})
}

// Textures returns the number of texture draws per texture path.
func (r *Recorder) Textures() map[string]int {
	out := map[string]int{}
	for _, c := range r.Calls {
		if c.Op == OpTexture {
			out[c.Texture]++
		}
	}
	return out
}

// Texts returns every drawn string in call order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, c := range r.Calls {
		if c.Op == OpText {
			out = append(out, c.Text)
		}
	}
	return out
}

// Rects returns every FillRect call.
func (r *Recorder) Rects() []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Op == OpRect {
			out = append(out, c)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
}
