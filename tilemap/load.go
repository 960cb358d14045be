package tilemap

import (
	"fmt"
	"io/fs"

	"github.com/lafriks/go-tiled"
)

// Load parses the TMX file at name inside fsys.
func Load(fsys fs.FS, name string) (*Map, error) {
	tm, err := tiled.LoadFile(name, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return convert(name, tm), nil
}

func convert(name string, tm *tiled.Map) *Map {
	m := &Map{
		Path:       name,
		Width:      tm.Width,
		Height:     tm.Height,
		TileWidth:  tm.TileWidth,
		TileHeight: tm.TileHeight,
		Properties: properties(tm.Properties),
	}

	tilesets := make(map[*tiled.Tileset]*Tileset, len(tm.Tilesets))
	for _, ts := range tm.Tilesets {
		out := &Tileset{
			Name:       ts.Name,
			FirstGID:   ts.FirstGID,
			Source:     ts.Source,
			TileWidth:  ts.TileWidth,
			TileHeight: ts.TileHeight,
		}
		if ts.Image != nil {
			out.Image = ts.Image.Source
			out.ImageWidth = ts.Image.Width
			out.ImageHeight = ts.Image.Height
		}
		tilesets[ts] = out
		m.Tilesets = append(m.Tilesets, out)
	}

	for _, tl := range tm.Layers {
		layer := NewLayer(tl.Name, tm.Width, tm.Height)
		layer.Properties = properties(tl.Properties)
		for i, tile := range tl.Tiles {
			if i >= len(layer.tiles) {
				break
			}
			if tile == nil || tile.IsNil() || tile.Tileset == nil {
				continue
			}
			layer.tiles[i] = Tile{Tileset: tilesets[tile.Tileset], ID: tile.ID}
		}
		m.Layers = append(m.Layers, layer)
	}

	for _, tg := range tm.ObjectGroups {
		group := &ObjectGroup{Name: tg.Name, Properties: properties(tg.Properties)}
		for _, to := range tg.Objects {
			typ := to.Type
			if typ == "" {
				typ = to.Class
			}
			group.Objects = append(group.Objects, &Object{
				ID:         to.ID,
				Name:       to.Name,
				Type:       typ,
				X:          to.X,
				Y:          to.Y,
				Width:      to.Width,
				Height:     to.Height,
				Properties: properties(to.Properties),
			})
		}
		m.ObjectGroups = append(m.ObjectGroups, group)
	}
	return m
}

func properties(p *tiled.Properties) Properties {
	out := Properties{}
	if p == nil {
		return out
	}
	for _, prop := range *p {
		if prop == nil {
			continue
		}
		out[prop.Name] = prop.Value
	}
	return out
}
