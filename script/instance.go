package script

import (
	"fmt"
	"slices"

	"github.com/d5/tengo/v2"
	"github.com/milk9111/buddingfriendships/common"
	"github.com/milk9111/buddingfriendships/gfx"
)

// Callback names a script entry point.
const (
	CallbackLoad         = "load"
	CallbackUpdate       = "update"
	CallbackInteract     = "interact"
	CallbackHasCollision = "hasCollision"
	CallbackOnEnter      = "onEnter"
	CallbackWhileInside  = "whileInside"
	CallbackOnExit       = "onExit"
)

// Owner is the map object a script instance belongs to.
type Owner interface {
	Bounds() common.Rect
}

// Instance is one object's view of a compiled script: its own globals, its
// pinned self map and the drawables attached to it.
type Instance struct {
	host     *Host
	path     string
	compiled *tengo.Compiled
	owner    Owner
	self     *tengo.Map
	ref      int
	children []*Drawable
	closed   bool
}

// Load compiles (or reuses) the script at scriptPath, builds the object's self
// map and runs its load callback with props. The self map stays pinned until
// Close.
func (h *Host) Load(scriptPath string, owner Owner, props map[string]string) (*Instance, error) {
	c, err := h.compile(scriptPath)
	if err != nil {
		return nil, err
	}

	inst := &Instance{
		host:     h,
		path:     CleanPath(scriptPath),
		compiled: c,
		owner:    owner,
		ref:      NoRef,
	}
	inst.self = inst.newSelf()

	propMap := &tengo.Map{Value: make(map[string]tengo.Object, len(props))}
	for k, v := range props {
		propMap.Value[k] = &tengo.String{Value: v}
	}
	if _, err := inst.call(CallbackLoad, 0, common.Vec{}, propMap); err != nil {
		inst.Close()
		return nil, err
	}

	inst.ref = h.registry.Ref(inst.self)
	h.log.Debug("loaded", "path", inst.path, "children", len(inst.children))
	return inst, nil
}

func (i *Instance) Path() string {
	return i.path
}

// Self returns the persistent per-object map passed to every callback.
func (i *Instance) Self() *tengo.Map {
	return i.self
}

// Children returns the attached drawables in insertion order.
func (i *Instance) Children() []*Drawable {
	return i.children
}

func (i *Instance) Update(ms uint32, p common.Vec) error {
	_, err := i.call(CallbackUpdate, ms, p, nil)
	return err
}

func (i *Instance) OnEnter(ms uint32, p common.Vec) error {
	_, err := i.call(CallbackOnEnter, ms, p, nil)
	return err
}

func (i *Instance) WhileInside(ms uint32, p common.Vec) error {
	_, err := i.call(CallbackWhileInside, ms, p, nil)
	return err
}

func (i *Instance) OnExit(ms uint32, p common.Vec) error {
	_, err := i.call(CallbackOnExit, ms, p, nil)
	return err
}

func (i *Instance) Interact(p common.Vec) error {
	_, err := i.call(CallbackInteract, 0, p, nil)
	return err
}

// HasCollision reports the truthiness of the script's hasCollision result.
// A script without hasCollision never collides.
func (i *Instance) HasCollision(p common.Vec) (bool, error) {
	res, err := i.call(CallbackHasCollision, 0, p, nil)
	if err != nil || res == nil {
		return false, err
	}
	return !res.IsFalsy(), nil
}

// Draw renders every attached child relative to origin.
func (i *Instance) Draw(dst gfx.Surface, origin common.Vec) {
	for _, child := range i.children {
		child.Draw(dst, origin)
	}
}

// Close detaches every child and releases the pinned self map.
func (i *Instance) Close() {
	if i.closed {
		return
	}
	i.closed = true
	for _, child := range slices.Clone(i.children) {
		i.detach(child)
	}
	if i.ref != NoRef {
		i.host.registry.Unref(i.ref)
		i.ref = NoRef
	}
}

// call runs one callback. The returned object is nil when the script does
// not define the callback.
func (i *Instance) call(phase string, ms uint32, p common.Vec, props tengo.Object) (tengo.Object, error) {
	if i.closed {
		return nil, &Error{Path: i.path, Callback: phase, Message: ErrClosed.Error(), Err: ErrClosed}
	}
	if props == nil {
		props = tengo.UndefinedValue
	}

	c := i.compiled
	if err := c.Set("__phase", phase); err != nil {
		return nil, err
	}
	if err := c.Set("__self", i.self); err != nil {
		return nil, err
	}
	if err := c.Set("__props", props); err != nil {
		return nil, err
	}
	if err := c.Set("__ms", int64(ms)); err != nil {
		return nil, err
	}
	if err := c.Set("__x", p.X); err != nil {
		return nil, err
	}
	if err := c.Set("__y", p.Y); err != nil {
		return nil, err
	}
	if err := c.Run(); err != nil {
		return nil, &Error{Path: i.path, Callback: phase, Message: err.Error(), Err: err}
	}

	if !c.Get("__valid").Bool() {
		return nil, &Error{Path: i.path, Callback: phase, Message: ErrNotAMap.Error(), Err: ErrNotAMap}
	}
	if !c.Get("__found").Bool() {
		return nil, nil
	}
	res := c.Get("__result").Object()
	if e, ok := res.(*tengo.Error); ok {
		return nil, &Error{Path: i.path, Callback: phase, Message: errorMessage(e)}
	}
	return res, nil
}

func (i *Instance) newSelf() *tengo.Map {
	return &tengo.Map{Value: map[string]tengo.Object{
		"addImage":    i.bridge("addImage", KindImage, i.attach),
		"addText":     i.bridge("addText", KindText, i.attach),
		"removeImage": i.bridge("removeImage", KindImage, i.detachChecked),
		"removeText":  i.bridge("removeText", KindText, i.detachChecked),
		"bounds": &tengo.UserFunction{Name: "bounds", Value: func(args ...tengo.Object) (tengo.Object, error) {
			var b common.Rect
			if i.owner != nil {
				b = i.owner.Bounds()
			}
			return &tengo.Array{Value: []tengo.Object{
				&tengo.Float{Value: b.Left},
				&tengo.Float{Value: b.Top},
				&tengo.Float{Value: b.Width},
				&tengo.Float{Value: b.Height},
			}}, nil
		}},
	}}
}

// bridge wraps a child operation as a self-map function. Both self.fn(d) and
// self.fn(self, d) are accepted.
func (i *Instance) bridge(name string, kind DrawableKind, op func(*Drawable) error) tengo.Object {
	return &tengo.UserFunction{Name: name, Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) == 0 {
			return nil, tengo.ErrWrongNumArguments
		}
		d, ok := args[len(args)-1].(*Drawable)
		if !ok || d.Kind != kind {
			return nil, tengo.ErrInvalidArgumentType{Name: "drawable", Expected: "drawable-" + kind.String(), Found: args[len(args)-1].TypeName()}
		}
		if err := op(d); err != nil {
			return nil, err
		}
		return d, nil
	}}
}

func (i *Instance) attach(d *Drawable) error {
	if i.closed {
		return ErrClosed
	}
	if d.owner == i {
		return nil
	}
	if d.owner != nil {
		return fmt.Errorf("%s is attached to %s", d, d.owner.path)
	}
	d.owner = i
	d.ref = i.host.registry.Ref(d)
	i.children = append(i.children, d)
	return nil
}

func (i *Instance) detachChecked(d *Drawable) error {
	if !i.detach(d) {
		return fmt.Errorf("%s is not attached to %s", d, i.path)
	}
	return nil
}

func (i *Instance) detach(d *Drawable) bool {
	if d.owner != i {
		return false
	}
	idx := slices.Index(i.children, d)
	if idx >= 0 {
		i.children = slices.Delete(i.children, idx, idx+1)
	}
	i.host.registry.Unref(d.ref)
	d.owner = nil
	d.ref = NoRef
	return true
}
