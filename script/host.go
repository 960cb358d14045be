// Package script runs the tengo scripts behind scripted map objects.
package script

import (
	"fmt"
	"image"
	"io/fs"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/buddingfriendships/common"
	"github.com/milk9111/buddingfriendships/config"
	"github.com/milk9111/buddingfriendships/texture"
)

// Printer receives text shown by console.show_text.
type Printer interface {
	Print(line string)
}

type Options struct {
	// FS holds the script sources and the images loaded by gfx.image.
	FS       fs.FS
	Logger   *log.Logger
	Textures *texture.Cache
	Console  Printer
	// Flags backs game.DEBUG_COLLISION() and game.SHOW_FPS(); nil reads as false.
	Flags *config.Flags
	// MaxAllocs bounds the objects a single callback may allocate. Zero means unlimited.
	MaxAllocs int64
}

// Host compiles scripts once per path and hands out per-object instances.
type Host struct {
	opts     Options
	log      *log.Logger
	registry *Registry
	modules  *tengo.ModuleMap
	compiled map[string]*tengo.Compiled
}

const moduleName = "__object__"

const dispatchScript = `
__script := import("__object__")
__valid = is_map(__script) || is_immutable_map(__script)
__found = false
__result = undefined
if __valid {
	__fn := __script[__phase]
	if is_callable(__fn) {
		__found = true
		if __phase == "load" {
			__result = __fn(__self, __props)
		} else if __phase == "interact" || __phase == "hasCollision" {
			__result = __fn(__self, __x, __y)
		} else {
			__result = __fn(__self, __ms, __x, __y)
		}
	}
}
`

func NewHost(opts Options) *Host {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	h := &Host{
		opts:     opts,
		log:      logger.WithPrefix("script"),
		registry: NewRegistry(),
		compiled: map[string]*tengo.Compiled{},
	}

	modules := stdlib.GetModuleMap(stdlib.AllModuleNames()...)
	modules.AddBuiltinModule("gfx", h.gfxModule())
	modules.AddBuiltinModule("console", h.consoleModule())
	modules.AddBuiltinModule("game", h.gameModule())
	h.modules = modules
	return h
}

// Registry returns the registry that pins every live self map and drawable.
func (h *Host) Registry() *Registry {
	return h.registry
}

// Invalidate drops the compiled form of a script so the next Load recompiles it.
func (h *Host) Invalidate(scriptPath string) {
	delete(h.compiled, CleanPath(scriptPath))
}

// Cached reports whether scriptPath has a compiled form.
func (h *Host) Cached(scriptPath string) bool {
	_, ok := h.compiled[CleanPath(scriptPath)]
	return ok
}

func (h *Host) compile(scriptPath string) (*tengo.Compiled, error) {
	key := CleanPath(scriptPath)
	if c, ok := h.compiled[key]; ok {
		return c.Clone(), nil
	}
	if h.opts.FS == nil {
		return nil, &Error{Path: key, Message: "no script filesystem"}
	}

	src, err := fs.ReadFile(h.opts.FS, key)
	if err != nil {
		return nil, &Error{Path: key, Message: err.Error()}
	}

	modules := h.modules.Copy()
	modules.AddSourceModule(moduleName, src)

	s := tengo.NewScript([]byte(dispatchScript))
	_ = s.Add("__phase", "")
	_ = s.Add("__self", map[string]any{})
	_ = s.Add("__props", map[string]any{})
	_ = s.Add("__ms", 0)
	_ = s.Add("__x", 0.0)
	_ = s.Add("__y", 0.0)
	_ = s.Add("__valid", false)
	_ = s.Add("__found", false)
	_ = s.Add("__result", nil)
	s.SetImports(modules)
	if h.opts.MaxAllocs > 0 {
		s.SetMaxAllocs(h.opts.MaxAllocs)
	}

	c, err := s.Compile()
	if err != nil {
		return nil, &Error{Path: key, Message: err.Error()}
	}
	h.compiled[key] = c
	return c.Clone(), nil
}

func (h *Host) gfxModule() map[string]tengo.Object {
	return map[string]tengo.Object{
		"image": &tengo.UserFunction{Name: "image", Value: func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 && len(args) != 5 {
				return nil, tengo.ErrWrongNumArguments
			}
			p, ok := tengo.ToString(args[0])
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "path", Expected: "string", Found: args[0].TypeName()}
			}
			if h.opts.Textures == nil {
				return nil, ErrNoTexture
			}
			tex, err := h.opts.Textures.Load(p)
			if err != nil {
				return nil, err
			}
			src := image.Rect(0, 0, tex.Width, tex.Height)
			if len(args) == 5 {
				var v [4]int
				for i := range v {
					n, ok := tengo.ToInt(args[i+1])
					if !ok {
						return nil, tengo.ErrInvalidArgumentType{Name: "rect", Expected: "int", Found: args[i+1].TypeName()}
					}
					v[i] = n
				}
				src = image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3])
			}
			return newImage(tex, src), nil
		}},
		"text": &tengo.UserFunction{Name: "text", Value: func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) < 1 || len(args) > 2 {
				return nil, tengo.ErrWrongNumArguments
			}
			s := objectAsString(args[0])
			clr := parseHexColor("")
			if len(args) == 2 {
				clr = parseHexColor(objectAsString(args[1]))
			}
			return newText(s, clr), nil
		}},
	}
}

func (h *Host) consoleModule() map[string]tengo.Object {
	return map[string]tengo.Object{
		"log": &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
			parts := make([]string, 0, len(args))
			for _, a := range args {
				parts = append(parts, objectAsString(a))
			}
			h.log.Info(strings.Join(parts, " "))
			return tengo.UndefinedValue, nil
		}},
		"show_text": &tengo.UserFunction{Name: "show_text", Value: func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) < 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			line := objectAsString(args[0])
			if len(args) > 1 {
				line = fmt.Sprintf("%s: %s", objectAsString(args[1]), line)
			}
			if h.opts.Console != nil {
				h.opts.Console.Print(line)
			} else {
				h.log.Info(line)
			}
			return tengo.UndefinedValue, nil
		}},
	}
}

// gameModule exposes the engine constants and the live debug flags.
func (h *Host) gameModule() map[string]tengo.Object {
	flag := func(name string, get func(*config.Flags) bool) tengo.Object {
		return &tengo.UserFunction{Name: name, Value: func(...tengo.Object) (tengo.Object, error) {
			if h.opts.Flags != nil && get(h.opts.Flags) {
				return tengo.TrueValue, nil
			}
			return tengo.FalseValue, nil
		}}
	}
	return map[string]tengo.Object{
		"TILE_WIDTH":      &tengo.Int{Value: common.TileWidth},
		"TILE_HEIGHT":     &tengo.Int{Value: common.TileHeight},
		"SCREEN_WIDTH":    &tengo.Int{Value: common.ScreenWidth},
		"SCREEN_HEIGHT":   &tengo.Int{Value: common.ScreenHeight},
		"WIDTH":           &tengo.Int{Value: common.FieldWidth},
		"HEIGHT":          &tengo.Int{Value: common.FieldHeight},
		"DEBUG_COLLISION": flag("DEBUG_COLLISION", func(f *config.Flags) bool { return f.Collision }),
		"SHOW_FPS":        flag("SHOW_FPS", func(f *config.Flags) bool { return f.ShowFPS }),
	}
}

// CleanPath normalizes a script path to the key used by the compile cache.
func CleanPath(p string) string {
	return strings.TrimPrefix(path.Clean(strings.ReplaceAll(p, "\\", "/")), "/")
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
