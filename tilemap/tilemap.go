// Package tilemap is a read-only view over a parsed tile-map document:
// tilesets, layers of tile references, object groups and properties.
package tilemap

import (
	"path"
	"strings"
)

// Properties holds the custom key/value pairs of a map, layer or object.
type Properties map[string]string

func (p Properties) Get(key string) (string, bool) {
	v, ok := p[key]
	return v, ok
}

// Map is a parsed tile map.
type Map struct {
	Path          string
	Width, Height int
	TileWidth     int
	TileHeight    int
	Properties    Properties
	Tilesets      []*Tileset
	Layers        []*Layer
	ObjectGroups  []*ObjectGroup
}

// Tileset is an atlas referenced by tiles. Source is the external tileset
// file it was loaded from, empty when embedded in the map.
type Tileset struct {
	Name        string
	FirstGID    uint32
	Source      string
	Image       string
	ImageWidth  int
	ImageHeight int
	TileWidth   int
	TileHeight  int
}

// ImagePath resolves the tileset image relative to the map file: the image
// source is prefixed with the directory of the external tileset file when
// there is one.
func (ts *Tileset) ImagePath(mapPath string) string {
	return path.Join(path.Dir(mapPath), ResolveImage(ts.Source, ts.Image))
}

// ResolveImage returns dirname(base)+"/"+source when base is set, else source.
func ResolveImage(base, source string) string {
	if base == "" {
		return source
	}
	i := strings.LastIndex(base, "/")
	return base[:i+1] + source
}

// Tile is a reference to one tile of a tileset; a nil Tileset is an empty cell.
type Tile struct {
	Tileset *Tileset
	ID      uint32
}

func (t Tile) IsEmpty() bool {
	return t.Tileset == nil
}

// Layer is a full-map grid of tile references stored row-major.
type Layer struct {
	Name          string
	Width, Height int
	Properties    Properties
	tiles         []Tile
}

func NewLayer(name string, width, height int) *Layer {
	return &Layer{
		Name:       name,
		Width:      width,
		Height:     height,
		Properties: Properties{},
		tiles:      make([]Tile, width*height),
	}
}

// Tile returns the tile at (x, y); out-of-range positions are empty.
func (l *Layer) Tile(x, y int) Tile {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return Tile{}
	}
	return l.tiles[y*l.Width+x]
}

func (l *Layer) SetTile(x, y int, t Tile) {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return
	}
	l.tiles[y*l.Width+x] = t
}

// Fill sets every cell to t.
func (l *Layer) Fill(t Tile) {
	for i := range l.tiles {
		l.tiles[i] = t
	}
}

type ObjectGroup struct {
	Name       string
	Properties Properties
	Objects    []*Object
}

// Object is a named rectangle placed on the map.
type Object struct {
	ID            uint32
	Name          string
	Type          string
	X, Y          float64
	Width, Height float64
	Properties    Properties
}

// Objects returns every object of every group in file order.
func (m *Map) Objects() []*Object {
	var out []*Object
	for _, g := range m.ObjectGroups {
		out = append(out, g.Objects...)
	}
	return out
}

// FindObject returns the first object with the given name.
func (m *Map) FindObject(name string) (*Object, bool) {
	for _, g := range m.ObjectGroups {
		for _, o := range g.Objects {
			if o.Name == name {
				return o, true
			}
		}
	}
	return nil, false
}
