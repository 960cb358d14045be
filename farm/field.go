// Package farm holds the farm plot: a fixed grid of tiles tracking tillage,
// moisture and whatever has been placed on them.
package farm

import (
	"errors"
	"fmt"

	"github.com/milk9111/buddingfriendships/common"
)

const (
	Width  = common.FieldWidth
	Height = common.FieldHeight
)

var (
	ErrOutOfBounds        = errors.New("field position out of bounds")
	ErrTileOccupied       = errors.New("tile already contains an object")
	ErrNotTilled          = errors.New("tile is not tilled")
	ErrNotInitialized     = errors.New("field is not initialized")
	ErrAlreadyInitialized = errors.New("field already initialized")
)

// Tile is one cell of the field. Water is only ever set on tilled tiles.
type Tile struct {
	Till      uint8
	Water     bool
	Highlight bool
	Object    Object
}

// Field owns the tile grid and every object placed on it.
type Field struct {
	tiles   []Tile
	objects []Object
	closed  bool
}

func New() *Field {
	return &Field{}
}

// Init allocates the grid. It may only be called once per Field.
func (f *Field) Init() error {
	if f.tiles != nil || f.closed {
		return ErrAlreadyInitialized
	}
	f.tiles = make([]Tile, Width*Height)
	return nil
}

// Cleanup releases the grid and every placed object.
func (f *Field) Cleanup() {
	f.tiles = nil
	f.objects = nil
	f.closed = true
}

func (f *Field) Initialized() bool {
	return f.tiles != nil
}

func (f *Field) index(x, y int) (int, error) {
	if f.tiles == nil {
		return 0, ErrNotInitialized
	}
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return 0, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	return y*Width + x, nil
}

// Tile returns the tile at (x, y).
func (f *Field) Tile(x, y int) (*Tile, error) {
	i, err := f.index(x, y)
	if err != nil {
		return nil, err
	}
	return &f.tiles[i], nil
}

// Till marks the tile as tilled.
func (f *Field) Till(x, y int) error {
	tile, err := f.Tile(x, y)
	if err != nil {
		return err
	}
	if tile.Till == 0 {
		tile.Till = 1
	}
	return nil
}

// Water waters a tilled tile.
func (f *Field) Water(x, y int) error {
	tile, err := f.Tile(x, y)
	if err != nil {
		return err
	}
	if tile.Till == 0 {
		return fmt.Errorf("%w: (%d,%d)", ErrNotTilled, x, y)
	}
	tile.Water = true
	return nil
}

// Plant puts a crop grown from seed on the tile.
func (f *Field) Plant(x, y int, seed Seed) error {
	return f.place(x, y, &Crop{X: x, Y: y, Seed: seed})
}

// PlaceStone puts a stone of the given level on the tile.
func (f *Field) PlaceStone(x, y, level int) error {
	if level < 1 {
		level = 1
	}
	return f.place(x, y, &Stone{X: x, Y: y, Level: level})
}

func (f *Field) place(x, y int, obj Object) error {
	tile, err := f.Tile(x, y)
	if err != nil {
		return err
	}
	if tile.Object != nil {
		return fmt.Errorf("%w: (%d,%d)", ErrTileOccupied, x, y)
	}
	tile.Object = obj
	f.objects = append(f.objects, obj)
	return nil
}

// NextDay grows every crop one stage and returns how many are ripe.
func (f *Field) NextDay() int {
	ripe := 0
	for _, obj := range f.objects {
		if c, ok := obj.(*Crop); ok && c.Grow() {
			ripe++
		}
	}
	return ripe
}

// Clear removes whatever object sits on the tile and returns it.
func (f *Field) Clear(x, y int) (Object, error) {
	tile, err := f.Tile(x, y)
	if err != nil {
		return nil, err
	}
	obj := tile.Object
	if obj == nil {
		return nil, nil
	}
	tile.Object = nil
	for i, o := range f.objects {
		if o == obj {
			f.objects = append(f.objects[:i], f.objects[i+1:]...)
			break
		}
	}
	return obj, nil
}

// Objects returns the placed objects in placement order.
func (f *Field) Objects() []Object {
	return f.objects
}

// Each visits every tile in row-major order.
func (f *Field) Each(fn func(x, y int, tile *Tile)) {
	for i := range f.tiles {
		fn(i%Width, i/Width, &f.tiles[i])
	}
}

// ClearHighlights resets the highlight marker on every tile.
func (f *Field) ClearHighlights() {
	for i := range f.tiles {
		f.tiles[i].Highlight = false
	}
}
