package world

import (
	"fmt"
	"strings"

	"github.com/milk9111/buddingfriendships/common"
	"github.com/milk9111/buddingfriendships/gfx"
	"github.com/milk9111/buddingfriendships/tilemap"
)

type Kind int

const (
	KindField Kind = iota
	KindScript
)

func (k Kind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindScript:
		return "script"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Object lives on a rectangle of a map. Every callback receives coordinates
// local to the object, that is relative to Position.
type Object interface {
	Name() string
	Kind() Kind
	Bounds() common.Rect
	// Position is the top-left of Bounds in world space.
	Position() common.Vec
	// Source is the tile-map object this one was built from.
	Source() *tilemap.Object

	Update(ms uint32, p common.Vec) error
	OnEnter(ms uint32, p common.Vec) error
	WhileInside(ms uint32, p common.Vec) error
	OnExit(ms uint32, p common.Vec) error
	Interact(p common.Vec) error
	// HasCollision never fails; internal errors count as no collision.
	HasCollision(p common.Vec) bool

	// Draw renders the object with its top-left at origin.
	Draw(dst gfx.Surface, origin common.Vec)
	Close()
}

type base struct {
	name   string
	bounds common.Rect
	src    *tilemap.Object
}

func newBase(src *tilemap.Object) base {
	return base{
		name:   src.Name,
		bounds: common.Rect{Left: src.X, Top: src.Y, Width: src.Width, Height: src.Height},
		src:    src,
	}
}

func (b *base) Name() string                         { return b.name }
func (b *base) Bounds() common.Rect                  { return b.bounds }
func (b *base) Position() common.Vec                 { return b.bounds.Min() }
func (b *base) Source() *tilemap.Object              { return b.src }
func (b *base) Update(uint32, common.Vec) error      { return nil }
func (b *base) OnEnter(uint32, common.Vec) error     { return nil }
func (b *base) WhileInside(uint32, common.Vec) error { return nil }
func (b *base) OnExit(uint32, common.Vec) error      { return nil }
func (b *base) Close()                               {}

// newObject builds the variant named by the object's type.
func newObject(env *Env, m *Map, src *tilemap.Object) (Object, error) {
	var (
		obj Object
		err error
	)
	if strings.EqualFold(src.Type, "field") {
		obj, err = newFieldObject(env, src)
	} else {
		obj, err = newScriptObject(env, m, src)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %q (%s): %w", ErrObjectLoad, src.Name, src.Type, err)
	}
	return obj, nil
}
