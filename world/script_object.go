package world

import (
	"errors"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/milk9111/buddingfriendships/common"
	"github.com/milk9111/buddingfriendships/gfx"
	"github.com/milk9111/buddingfriendships/script"
	"github.com/milk9111/buddingfriendships/tilemap"
)

// ScriptDir holds the default script of every object type.
const ScriptDir = "data/scripts"

var errNoScriptHost = errors.New("no script host")

// ScriptObject delegates every callback to a tengo script.
type ScriptObject struct {
	base
	path string
	inst *script.Instance
	log  *log.Logger
}

// ScriptPath returns the object's script property, or the default script for its type.
func ScriptPath(src *tilemap.Object) string {
	if v, ok := src.Properties.Get("script"); ok && v != "" {
		return v
	}
	return path.Join(ScriptDir, strings.ToLower(src.Type)+".tengo")
}

func newScriptObject(env *Env, m *Map, src *tilemap.Object) (*ScriptObject, error) {
	if env.Scripts == nil {
		return nil, errNoScriptHost
	}
	o := &ScriptObject{
		base: newBase(src),
		path: ScriptPath(src),
		log:  m.log.With("object", src.Name),
	}
	inst, err := env.Scripts.Load(o.path, o, src.Properties)
	if err != nil {
		return nil, err
	}
	o.inst = inst
	return o, nil
}

func (o *ScriptObject) Kind() Kind { return KindScript }

// ScriptPath returns the path the object's script was loaded from.
func (o *ScriptObject) ScriptPath() string { return o.path }

func (o *ScriptObject) Instance() *script.Instance { return o.inst }

func (o *ScriptObject) Update(ms uint32, p common.Vec) error      { return o.inst.Update(ms, p) }
func (o *ScriptObject) OnEnter(ms uint32, p common.Vec) error     { return o.inst.OnEnter(ms, p) }
func (o *ScriptObject) WhileInside(ms uint32, p common.Vec) error { return o.inst.WhileInside(ms, p) }
func (o *ScriptObject) OnExit(ms uint32, p common.Vec) error      { return o.inst.OnExit(ms, p) }
func (o *ScriptObject) Interact(p common.Vec) error               { return o.inst.Interact(p) }

func (o *ScriptObject) HasCollision(p common.Vec) bool {
	hit, err := o.inst.HasCollision(p)
	if err != nil {
		o.log.Error("hasCollision failed", "err", err)
		return false
	}
	return hit
}

func (o *ScriptObject) Draw(dst gfx.Surface, origin common.Vec) {
	o.inst.Draw(dst, origin)
}

func (o *ScriptObject) Close() {
	o.inst.Close()
}
