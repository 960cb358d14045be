package world

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/milk9111/buddingfriendships/script"
	"gopkg.in/yaml.v3"
)

// Registry owns every loaded map, keyed by id and by name, and the map the
// player is currently on.
type Registry struct {
	env     *Env
	byID    map[uint32]*Map
	byName  map[string]*Map
	order   []*Map
	current *Map
}

func NewRegistry(env *Env) *Registry {
	return &Registry{
		env:    env,
		byID:   map[uint32]*Map{},
		byName: map[string]*Map{},
	}
}

// Manifest lists the maps of a game.
type Manifest struct {
	Maps []ManifestEntry `yaml:"maps"`
}

type ManifestEntry struct {
	ID   uint32 `yaml:"id"`
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Load loads the map at mapPath and registers it.
func (r *Registry) Load(id uint32, name, mapPath string) (*Map, error) {
	if _, ok := r.byID[id]; ok {
		return nil, fmt.Errorf("%w: id %d", ErrDuplicateMap, id)
	}
	if _, ok := r.byName[name]; ok && name != "" {
		return nil, fmt.Errorf("%w: name %q", ErrDuplicateMap, name)
	}
	m, err := Load(r.env, id, name, mapPath)
	if err != nil {
		return nil, err
	}
	if err := r.Add(m); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

// Add registers an already loaded map.
func (r *Registry) Add(m *Map) error {
	if _, ok := r.byID[m.ID]; ok {
		return fmt.Errorf("%w: id %d", ErrDuplicateMap, m.ID)
	}
	if _, ok := r.byName[m.Name]; ok {
		return fmt.Errorf("%w: name %q", ErrDuplicateMap, m.Name)
	}
	r.byID[m.ID] = m
	r.byName[m.Name] = m
	r.order = append(r.order, m)
	return nil
}

// LoadManifest reads a YAML manifest from the environment's file system,
// loads every map it lists and then resolves all neighbor links.
func (r *Registry) LoadManifest(manifestPath string) error {
	data, err := fs.ReadFile(r.env.FS, manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest %s: %w", manifestPath, err)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("parse manifest %s: %w", manifestPath, err)
	}
	for _, entry := range manifest.Maps {
		if _, err := r.Load(entry.ID, entry.Name, entry.Path); err != nil {
			return fmt.Errorf("load map %q: %w", entry.Name, err)
		}
	}
	r.LoadNeighbors()
	return nil
}

// LoadNeighbors resolves the neighbor links of every map by name. Missing
// neighbors are logged and leave the link empty.
func (r *Registry) LoadNeighbors() {
	for _, m := range r.order {
		if err := m.LoadNeighbors(r.lookup); err != nil {
			m.log.Warn("neighbors", "err", err)
		}
	}
}

func (r *Registry) lookup(name string) (*Map, bool) {
	m, ok := r.byName[name]
	return m, ok
}

func (r *Registry) ByID(id uint32) (*Map, error) {
	if m, ok := r.byID[id]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: id %d", ErrUnknownMap, id)
}

func (r *Registry) ByName(name string) (*Map, error) {
	if m, ok := r.byName[name]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMap, name)
}

// Maps returns the registered maps in registration order.
func (r *Registry) Maps() []*Map {
	return r.order
}

func (r *Registry) SetCurrent(name string) error {
	m, err := r.ByName(name)
	if err != nil {
		return err
	}
	r.current = m
	return nil
}

func (r *Registry) Current() (*Map, error) {
	if r.current == nil {
		return nil, ErrNoCurrentMap
	}
	return r.current, nil
}

// ReloadScript recompiles the script at scriptPath and reloads every
// object that uses it. It returns how many objects were reloaded.
func (r *Registry) ReloadScript(scriptPath string) (int, error) {
	if r.env.Scripts != nil {
		r.env.Scripts.Invalidate(scriptPath)
	}
	target := script.CleanPath(scriptPath)

	var errs []error
	count := 0
	for _, m := range r.order {
		var matched []*ScriptObject
		for _, o := range m.objects {
			if so, ok := o.(*ScriptObject); ok && script.CleanPath(so.ScriptPath()) == target {
				matched = append(matched, so)
			}
		}
		for _, so := range matched {
			if err := m.reloadObject(so); err != nil {
				errs = append(errs, err)
				continue
			}
			count++
		}
	}
	return count, errors.Join(errs...)
}

// Close destroys every map.
func (r *Registry) Close() {
	for _, m := range slices.Backward(r.order) {
		m.Close()
	}
	r.byID = map[uint32]*Map{}
	r.byName = map[string]*Map{}
	r.order = nil
	r.current = nil
}
