package script

import (
	"fmt"
	"image"
	"image/color"

	"github.com/d5/tengo/v2"
	"github.com/milk9111/buddingfriendships/common"
	"github.com/milk9111/buddingfriendships/gfx"
	"github.com/milk9111/buddingfriendships/texture"
)

type DrawableKind int

const (
	KindImage DrawableKind = iota
	KindText
)

func (k DrawableKind) String() string {
	if k == KindText {
		return "text"
	}
	return "image"
}

// Drawable is an image or text child created by a script through the gfx
// module. Coordinates are relative to the owning object's bounds.
type Drawable struct {
	tengo.ObjectImpl

	Kind    DrawableKind
	Texture *texture.Texture
	Src     image.Rectangle
	Text    string
	Color   color.RGBA
	X, Y    float64
	Visible bool

	owner *Instance
	ref   int
}

func newImage(tex *texture.Texture, src image.Rectangle) *Drawable {
	return &Drawable{Kind: KindImage, Texture: tex, Src: src, Visible: true, ref: NoRef}
}

func newText(s string, clr color.RGBA) *Drawable {
	return &Drawable{Kind: KindText, Text: s, Color: clr, Visible: true, ref: NoRef}
}

// Owner returns the instance the drawable is attached to, or nil.
func (d *Drawable) Owner() *Instance {
	return d.owner
}

func (d *Drawable) TypeName() string {
	return "drawable-" + d.Kind.String()
}

func (d *Drawable) String() string {
	if d.Kind == KindText {
		return fmt.Sprintf("<text %q>", d.Text)
	}
	path := ""
	if d.Texture != nil {
		path = d.Texture.Path
	}
	return fmt.Sprintf("<image %s>", path)
}

func (d *Drawable) Equals(another tengo.Object) bool {
	o, ok := another.(*Drawable)
	return ok && o == d
}

func (d *Drawable) Copy() tengo.Object {
	return d
}

func (d *Drawable) IsFalsy() bool {
	return false
}

func (d *Drawable) IndexGet(index tengo.Object) (tengo.Object, error) {
	key, ok := tengo.ToString(index)
	if !ok {
		return nil, tengo.ErrInvalidIndexType
	}
	switch key {
	case "x":
		return &tengo.Float{Value: d.X}, nil
	case "y":
		return &tengo.Float{Value: d.Y}, nil
	case "visible":
		return tengo.FromInterface(d.Visible)
	case "width":
		return &tengo.Int{Value: int64(d.size().X)}, nil
	case "height":
		return &tengo.Int{Value: int64(d.size().Y)}, nil
	case "text":
		if d.Kind == KindText {
			return &tengo.String{Value: d.Text}, nil
		}
	case "color":
		return &tengo.String{Value: fmt.Sprintf("#%02x%02x%02x", d.Color.R, d.Color.G, d.Color.B)}, nil
	}
	return tengo.UndefinedValue, nil
}

func (d *Drawable) IndexSet(index, value tengo.Object) error {
	key, ok := tengo.ToString(index)
	if !ok {
		return tengo.ErrInvalidIndexType
	}
	switch key {
	case "x", "y":
		v, ok := tengo.ToFloat64(value)
		if !ok {
			return tengo.ErrInvalidIndexValueType
		}
		if key == "x" {
			d.X = v
		} else {
			d.Y = v
		}
	case "visible":
		d.Visible = !value.IsFalsy()
	case "text":
		if d.Kind != KindText {
			return tengo.ErrNotIndexAssignable
		}
		s, ok := tengo.ToString(value)
		if !ok {
			return tengo.ErrInvalidIndexValueType
		}
		d.Text = s
	case "color":
		s, ok := tengo.ToString(value)
		if !ok {
			return tengo.ErrInvalidIndexValueType
		}
		d.Color = parseHexColor(s)
	default:
		return tengo.ErrInvalidIndexType
	}
	return nil
}

func (d *Drawable) size() image.Point {
	if d.Kind == KindText {
		return image.Pt(len(d.Text)*7, 13)
	}
	return d.Src.Size()
}

// Draw renders the drawable relative to origin.
func (d *Drawable) Draw(dst gfx.Surface, origin common.Vec) {
	if !d.Visible {
		return
	}
	x, y := origin.X+d.X, origin.Y+d.Y
	switch d.Kind {
	case KindImage:
		if d.Texture != nil {
			dst.DrawTexture(d.Texture, d.Src, x, y)
		}
	case KindText:
		dst.DrawText(d.Text, x, y, d.Color)
	}
}

// parseHexColor reads "#rrggbb"; anything else yields white.
func parseHexColor(s string) color.RGBA {
	var r, g, b uint8 = 0xff, 0xff, 0xff
	if len(s) == 7 && s[0] == '#' {
		var ri, gi, bi uint32
		if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &ri, &gi, &bi); err == nil {
			r = uint8(ri)
			g = uint8(gi)
			b = uint8(bi)
		}
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
