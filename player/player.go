// Package player moves the avatar across the registry's connected maps.
package player

import (
	"image/color"
	"math"

	"github.com/charmbracelet/log"
	"github.com/milk9111/buddingfriendships/common"
	"github.com/milk9111/buddingfriendships/gfx"
	"github.com/milk9111/buddingfriendships/world"
)

var (
	bodyColor   = color.RGBA{R: 0xe8, G: 0x8f, B: 0xc8, A: 0xff}
	facingColor = color.RGBA{R: 0x40, G: 0x20, B: 0x40, A: 0xff}
)

// bodyHeight is how far the drawn body extends above the feet box.
const bodyHeight = 20

type Options struct {
	Speed  float64
	Width  float64
	Height float64
	Logger *log.Logger
}

// Player is the avatar. Its bounds are the feet box used for collision.
type Player struct {
	Pos    common.Vec
	Facing world.Direction

	size     common.Vec
	speed    float64
	mapID    uint32
	registry *world.Registry
	log      *log.Logger
}

// New places the player at pos on the registry's current map.
func New(registry *world.Registry, pos common.Vec, opts Options) (*Player, error) {
	cur, err := registry.Current()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Player{
		Pos:      pos,
		Facing:   world.South,
		size:     common.Vec{X: opts.Width, Y: opts.Height},
		speed:    opts.Speed,
		mapID:    cur.ID,
		registry: registry,
		log:      logger.WithPrefix("player"),
	}, nil
}

func (p *Player) MapID() uint32 { return p.mapID }

func (p *Player) Bounds() common.Rect {
	return common.Rect{Left: p.Pos.X, Top: p.Pos.Y, Width: p.size.X, Height: p.size.Y}
}

// Center is the middle of the feet box; it is the position reported to the map.
func (p *Player) Center() common.Vec {
	return common.Vec{X: p.Pos.X + p.size.X/2, Y: p.Pos.Y + p.size.Y/2}
}

// Front is the point half a tile ahead of the player in the facing direction.
func (p *Player) Front() common.Vec {
	c := p.Center()
	switch p.Facing {
	case world.North:
		return common.Vec{X: c.X, Y: p.Pos.Y - common.TileHeight/2}
	case world.South:
		return common.Vec{X: c.X, Y: p.Pos.Y + p.size.Y + common.TileHeight/2}
	case world.West:
		return common.Vec{X: p.Pos.X - common.TileWidth/2, Y: c.Y}
	default:
		return common.Vec{X: p.Pos.X + p.size.X + common.TileWidth/2, Y: c.Y}
	}
}

// Update moves the player, crosses onto a neighbor map when it walks off
// an edge, runs the map's frame update and then any interaction.
func (p *Player) Update(ms uint32, in Input) error {
	cur, err := p.registry.Current()
	if err != nil {
		return err
	}

	p.face(in)
	dx := in.MoveX * p.speed
	dy := in.MoveY * p.speed
	if dx != 0 && !p.blocked(cur, p.Pos.Add(common.Vec{X: dx})) {
		p.Pos.X += dx
	}
	if dy != 0 && !p.blocked(cur, p.Pos.Add(common.Vec{Y: dy})) {
		p.Pos.Y += dy
	}

	cur = p.crossEdge(cur)

	cur.Update(ms, p.Center())
	if in.Interact {
		cur.Interact(p.Front())
	}
	return nil
}

func (p *Player) face(in Input) {
	if in.MoveX == 0 && in.MoveY == 0 {
		return
	}
	if math.Abs(in.MoveX) >= math.Abs(in.MoveY) {
		if in.MoveX < 0 {
			p.Facing = world.West
		} else {
			p.Facing = world.East
		}
		return
	}
	if in.MoveY < 0 {
		p.Facing = world.North
	} else {
		p.Facing = world.South
	}
}

// blocked reports whether the feet box at pos touches a colliding point.
func (p *Player) blocked(m *world.Map, pos common.Vec) bool {
	const eps = 0.001
	corners := []common.Vec{
		pos,
		{X: pos.X + p.size.X - eps, Y: pos.Y},
		{X: pos.X, Y: pos.Y + p.size.Y - eps},
		{X: pos.X + p.size.X - eps, Y: pos.Y + p.size.Y - eps},
	}
	for _, c := range corners {
		if m.Collides(c) {
			return true
		}
	}
	return false
}

// crossEdge moves the player onto the neighbor its center has walked into,
// or clamps it to the map when there is none.
func (p *Player) crossEdge(cur *world.Map) *world.Map {
	w, h := cur.PixelSize()
	c := p.Center()

	var (
		dir   world.Direction
		shift func(nb world.Neighbor) common.Vec
	)
	switch {
	case c.X < 0:
		dir = world.West
		shift = func(nb world.Neighbor) common.Vec {
			nw, _ := nb.Map.PixelSize()
			return common.Vec{X: nw, Y: float64(nb.Offset * common.TileHeight)}
		}
	case c.X >= w:
		dir = world.East
		shift = func(nb world.Neighbor) common.Vec {
			return common.Vec{X: -w, Y: float64(nb.Offset * common.TileHeight)}
		}
	case c.Y < 0:
		dir = world.North
		shift = func(nb world.Neighbor) common.Vec {
			_, nh := nb.Map.PixelSize()
			return common.Vec{X: float64(nb.Offset * common.TileWidth), Y: nh}
		}
	case c.Y >= h:
		dir = world.South
		shift = func(nb world.Neighbor) common.Vec {
			return common.Vec{X: float64(nb.Offset * common.TileWidth), Y: -h}
		}
	default:
		return cur
	}

	nb, ok := cur.Neighbor(dir)
	if !ok {
		p.Pos.X = math.Max(-p.size.X/2, math.Min(p.Pos.X, w-p.size.X/2-0.001))
		p.Pos.Y = math.Max(-p.size.Y/2, math.Min(p.Pos.Y, h-p.size.Y/2-0.001))
		return cur
	}
	if err := p.registry.SetCurrent(nb.Map.Name); err != nil {
		p.log.Error("cross edge", "dir", dir, "err", err)
		return cur
	}
	p.Pos = p.Pos.Add(shift(nb))
	p.mapID = nb.Map.ID
	p.log.Info("entered map", "map", nb.Map.Name, "from", cur.Name)
	return nb.Map
}

// Draw renders a placeholder body standing on the feet box.
func (p *Player) Draw(dst gfx.Surface, offset common.Vec) {
	b := p.Bounds().Translate(offset)
	dst.FillRect(b.Left, b.Top-bodyHeight, b.Width, b.Height+bodyHeight, bodyColor)

	f := p.Front().Add(offset)
	c := p.Center().Add(offset)
	mx, my := (f.X+c.X)/2, (f.Y+c.Y)/2
	dst.FillRect(mx-2, my-2, 4, 4, facingColor)
}
