package world

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Direction int

const (
	North Direction = iota
	South
	West
	East
)

var Directions = [...]Direction{North, South, West, East}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case West:
		return "west"
	case East:
		return "east"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Neighbor links a map edge to another map. Offset is in tiles along the
// edge: horizontal for north and south, vertical for west and east.
type Neighbor struct {
	Name   string
	Offset int
	Map    *Map
}

var errBadNeighbor = errors.New("malformed neighbor property")

// ParseNeighbor reads "<mapname>" or "<mapname>,<offset>".
func ParseNeighbor(value string) (name string, offset int, err error) {
	name, rest, found := strings.Cut(value, ",")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", 0, fmt.Errorf("%w: %q", errBadNeighbor, value)
	}
	if !found {
		return name, 0, nil
	}
	offset, err = strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q: %w", errBadNeighbor, value, err)
	}
	return name, offset, nil
}

// LoadNeighbors resolves the north, south, west and east properties through
// lookup. Links need not be reciprocal. Unresolved names leave the link
// empty and are reported as ErrNeighborMissing.
func (m *Map) LoadNeighbors(lookup func(name string) (*Map, bool)) error {
	var errs []error
	for _, dir := range Directions {
		m.neighbors[dir] = Neighbor{}
		value, ok := m.source.Properties.Get(dir.String())
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		name, offset, err := ParseNeighbor(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", m.Name, dir, err))
			continue
		}
		nb, ok := lookup(name)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s %s -> %q", ErrNeighborMissing, m.Name, dir, name))
			continue
		}
		m.neighbors[dir] = Neighbor{Name: name, Offset: offset, Map: nb}
	}
	return errors.Join(errs...)
}

// Neighbor returns the resolved link in direction d.
func (m *Map) Neighbor(d Direction) (Neighbor, bool) {
	if d < North || d > East {
		return Neighbor{}, false
	}
	nb := m.neighbors[d]
	return nb, nb.Map != nil
}

// SetNeighbor links d to nb directly.
func (m *Map) SetNeighbor(d Direction, nb *Map, offset int) {
	name := ""
	if nb != nil {
		name = nb.Name
	}
	m.neighbors[d] = Neighbor{Name: name, Offset: offset, Map: nb}
}
