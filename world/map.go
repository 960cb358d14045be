package world

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/milk9111/buddingfriendships/common"
	"github.com/milk9111/buddingfriendships/season"
	"github.com/milk9111/buddingfriendships/texture"
	"github.com/milk9111/buddingfriendships/tilemap"
)

// Map is a loaded map: its layers split into render partitions, the texture
// of every tileset, its objects and the links to neighboring maps.
type Map struct {
	ID     uint32
	Name   string
	Width  int
	Height int
	// Exterior is false only for maps whose type property is "interior".
	Exterior bool

	source    *tilemap.Map
	textures  map[*tilemap.Tileset]*texture.Texture
	lower     []*tilemap.Layer
	upper     []*tilemap.Layer
	collision *tilemap.Layer

	objects   []Object
	active    []Object
	neighbors [4]Neighbor

	env *Env
	log *log.Logger
}

// Load parses the map at mapPath and builds its layers and objects. Only a
// parse or tileset failure is fatal; objects that fail to load are logged
// and skipped. An empty name defaults to the file's base name.
func Load(env *Env, id uint32, name, mapPath string) (*Map, error) {
	src, err := tilemap.Load(env.FS, mapPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMapParse, err)
	}
	if name == "" {
		name = strings.TrimSuffix(path.Base(mapPath), path.Ext(mapPath))
	}
	return build(env, id, name, src)
}

func build(env *Env, id uint32, name string, src *tilemap.Map) (*Map, error) {
	m := &Map{
		ID:       id,
		Name:     name,
		Width:    src.Width,
		Height:   src.Height,
		Exterior: src.Properties["type"] != "interior",
		source:   src,
		textures: make(map[*tilemap.Tileset]*texture.Texture, len(src.Tilesets)),
		env:      env,
		log:      env.logger().With("map", name),
	}

	if err := m.bindTilesets(); err != nil {
		return nil, err
	}
	m.classifyLayers()
	if m.collision == nil {
		m.log.Warn(ErrMissingCollisionLayer.Error())
	}

	for _, obj := range src.Objects() {
		o, err := newObject(env, m, obj)
		if err != nil {
			m.log.Error("skipping object", "err", err)
			continue
		}
		m.objects = append(m.objects, o)
	}

	m.log.Info("loaded", "id", id, "size", fmt.Sprintf("%dx%d", m.Width, m.Height), "objects", len(m.objects))
	return m, nil
}

func (m *Map) bindTilesets() error {
	for _, ts := range m.source.Tilesets {
		if ts.Image == "" {
			return fmt.Errorf("%w: tileset %q has no image", ErrMapParse, ts.Name)
		}
		if m.env.Textures == nil {
			continue
		}
		tex, err := m.env.Textures.Load(ts.ImagePath(m.source.Path))
		if err != nil {
			return fmt.Errorf("%w: tileset %q: %w", ErrMapParse, ts.Name, err)
		}
		m.textures[ts] = tex
	}
	return nil
}

func (m *Map) classifyLayers() {
	for _, layer := range m.source.Layers {
		if m.collision == nil && strings.EqualFold(layer.Name, "collision") {
			m.collision = layer
			continue
		}
		if v, ok := layer.Properties.Get("season"); ok {
			set, err := season.Parse(v)
			if err != nil {
				m.log.Warn("ignoring season property", "layer", layer.Name, "err", err)
			} else if !set.Has(m.env.Season) {
				m.log.Debug("layer hidden this season", "layer", layer.Name, "season", m.env.Season)
				continue
			}
		}
		if layer.Properties["render"] == "above" {
			m.upper = append(m.upper, layer)
		} else {
			m.lower = append(m.lower, layer)
		}
	}
}

// Source returns the parsed tile map.
func (m *Map) Source() *tilemap.Map { return m.source }

func (m *Map) LowerLayers() []*tilemap.Layer { return m.lower }
func (m *Map) UpperLayers() []*tilemap.Layer { return m.upper }

// CollisionLayer returns the collision layer or nil.
func (m *Map) CollisionLayer() *tilemap.Layer { return m.collision }

// Texture returns the texture bound to ts.
func (m *Map) Texture(ts *tilemap.Tileset) *texture.Texture { return m.textures[ts] }

// Objects returns the map's objects in load order.
func (m *Map) Objects() []Object { return m.objects }

// Active returns the objects containing the player, in the order they were entered.
func (m *Map) Active() []Object { return m.active }

// Object returns the first object with the given name.
func (m *Map) Object(name string) (Object, bool) {
	for _, o := range m.objects {
		if o.Name() == name {
			return o, true
		}
	}
	return nil, false
}

// PixelSize returns the map's size in world pixels.
func (m *Map) PixelSize() (float64, float64) {
	return float64(m.Width * common.TileWidth), float64(m.Height * common.TileHeight)
}

func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// TileCollision reports whether the collision layer has a tile at (x, y).
func (m *Map) TileCollision(x, y int) bool {
	if m.collision == nil || !m.InBounds(x, y) {
		return false
	}
	return !m.collision.Tile(x, y).IsEmpty()
}

// ObjectCollision reports whether any object containing p collides at p.
func (m *Map) ObjectCollision(p common.Vec) bool {
	for _, o := range m.objects {
		if !o.Bounds().Contains(p) {
			continue
		}
		hit := false
		_ = m.guard(o, "hasCollision", func() error {
			hit = o.HasCollision(p.Sub(o.Position()))
			return nil
		})
		if hit {
			return true
		}
	}
	return false
}

// Collides combines tile and object collision at the world position p.
func (m *Map) Collides(p common.Vec) bool {
	return m.TileCollision(common.TileOf(p)) || m.ObjectCollision(p)
}

// Update runs one frame of the overlap engine for the player at p: exits,
// then update on every object, then whileInside, then enters.
func (m *Map) Update(ms uint32, p common.Vec) {
	kept := make([]Object, 0, len(m.active))
	for _, o := range m.active {
		if o.Bounds().Contains(p) {
			kept = append(kept, o)
			continue
		}
		local := p.Sub(o.Position())
		_ = m.guard(o, "onExit", func() error { return o.OnExit(ms, local) })
	}
	m.active = kept

	for _, o := range m.objects {
		local := p.Sub(o.Position())
		_ = m.guard(o, "update", func() error { return o.Update(ms, local) })
	}

	for _, o := range m.active {
		local := p.Sub(o.Position())
		_ = m.guard(o, "whileInside", func() error { return o.WhileInside(ms, local) })
	}

	for _, o := range m.objects {
		if !o.Bounds().Contains(p) || slices.Contains(m.active, o) {
			continue
		}
		local := p.Sub(o.Position())
		_ = m.guard(o, "onEnter", func() error { return o.OnEnter(ms, local) })
		m.active = append(m.active, o)
	}
}

// Interact calls Interact on every object containing p and reports whether
// there was at least one.
func (m *Map) Interact(p common.Vec) bool {
	hit := false
	for _, o := range m.objects {
		if !o.Bounds().Contains(p) {
			continue
		}
		hit = true
		local := p.Sub(o.Position())
		_ = m.guard(o, "interact", func() error { return o.Interact(local) })
	}
	return hit
}

// ReloadObject destroys the named object and builds a fresh one from its
// tile-map source. The new object starts outside the overlap set.
func (m *Map) ReloadObject(name string) error {
	if i := slices.IndexFunc(m.objects, func(o Object) bool { return o.Name() == name }); i >= 0 {
		return m.reloadObject(m.objects[i])
	}
	src, ok := m.source.FindObject(name)
	if !ok {
		return fmt.Errorf("%w: %q on map %s", ErrObjectNotFound, name, m.Name)
	}
	return m.rebuild(src)
}

// reloadObject replaces old, which must belong to the map, with a fresh
// object built from the same source.
func (m *Map) reloadObject(old Object) error {
	i := slices.Index(m.objects, old)
	if i < 0 {
		return fmt.Errorf("%w: %q on map %s", ErrObjectNotFound, old.Name(), m.Name)
	}
	m.objects = slices.Delete(m.objects, i, i+1)
	m.active = slices.DeleteFunc(m.active, func(o Object) bool { return o == old })
	old.Close()
	return m.rebuild(old.Source())
}

func (m *Map) rebuild(src *tilemap.Object) error {
	o, err := newObject(m.env, m, src)
	if err != nil {
		m.log.Error("reload failed", "object", src.Name, "err", err)
		return err
	}
	m.objects = append(m.objects, o)
	m.log.Info("reloaded", "object", src.Name)
	return nil
}

// Close destroys every object. The map must not be used afterwards.
func (m *Map) Close() {
	for _, o := range m.objects {
		o.Close()
	}
	m.objects = nil
	m.active = nil
}

// guard runs one object callback, logging a returned error or a panic
// with the map and object it came from.
func (m *Map) guard(o Object, callback string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			m.log.Error("object callback failed", "object", o.Name(), "callback", callback, "err", err)
		}
	}()
	return fn()
}
