package world

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sort"
	"strconv"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/d5/tengo/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/buddingfriendships/common"
	"github.com/milk9111/buddingfriendships/config"
	"github.com/milk9111/buddingfriendships/console"
	"github.com/milk9111/buddingfriendships/farm"
	"github.com/milk9111/buddingfriendships/gfx"
	"github.com/milk9111/buddingfriendships/script"
	"github.com/milk9111/buddingfriendships/season"
	"github.com/milk9111/buddingfriendships/texture"
	"github.com/milk9111/buddingfriendships/tilemap"
)

const recorderScript = `
export {
	load: func(self, props) {
		self.events = []
	},
	onEnter: func(self, ms, x, y) {
		self.events = append(self.events, "enter")
	},
	whileInside: func(self, ms, x, y) {
		self.events = append(self.events, "inside")
	},
	onExit: func(self, ms, x, y) {
		self.events = append(self.events, "exit")
	}
}
`

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{B: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// testFS returns a file system with the atlases used by the test maps.
func testFS(t *testing.T) fstest.MapFS {
	t.Helper()
	atlas := pngBytes(t, 64, 64)
	return fstest.MapFS{
		"data/tilesets/ground.png":    {Data: atlas},
		"data/tilesets/a.png":         {Data: atlas},
		"data/tilesets/b.png":         {Data: atlas},
		"data/tilesets/c.png":         {Data: atlas},
		"data/tilesets/field.png":     {Data: pngBytes(t, 128, 64)},
		"data/scripts/recorder.tengo": {Data: []byte(recorderScript)},
	}
}

func newEnv(t *testing.T, fsys fstest.MapFS) (*Env, *console.Console) {
	t.Helper()
	con := console.New(io.Discard, 256)
	field := farm.New()
	if err := field.Init(); err != nil {
		t.Fatalf("field init: %v", err)
	}
	t.Cleanup(field.Cleanup)
	tex := texture.NewCache(fsys, texture.WithUploader(func(image.Image) *ebiten.Image { return nil }))
	host := script.NewHost(script.Options{FS: fsys, Logger: con.Logger(), Textures: tex, Console: con})
	return &Env{
		FS:       fsys,
		Log:      con.Logger(),
		Textures: tex,
		Field:    field,
		Scripts:  host,
		Season:   season.Spring,
		Flags:    &config.Flags{},
	}, con
}

type layerSpec struct {
	name  string
	props map[string]string
	gids  []int
}

type objSpec struct {
	name, typ  string
	x, y, w, h float64
	props      map[string]string
}

func writeProps(b *strings.Builder, indent string, props map[string]string) {
	if len(props) == 0 {
		return
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(b, "%s<properties>\n", indent)
	for _, k := range keys {
		fmt.Fprintf(b, "%s <property name=%q value=%q/>\n", indent, k, props[k])
	}
	fmt.Fprintf(b, "%s</properties>\n", indent)
}

// tmx renders a TMX document with one embedded tileset using atlas.
func tmx(w, h int, atlas string, props map[string]string, layers []layerSpec, objs []objSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="%d" height="%d" tilewidth="32" tileheight="32" infinite="0">
`, w, h)
	writeProps(&b, " ", props)
	fmt.Fprintf(&b, ` <tileset firstgid="1" name="ground" tilewidth="32" tileheight="32" tilecount="4" columns="2">
  <image source="../tilesets/%s" width="64" height="64"/>
 </tileset>
`, atlas)
	for i, l := range layers {
		fmt.Fprintf(&b, " <layer id=\"%d\" name=%q width=\"%d\" height=\"%d\">\n", i+1, l.name, w, h)
		writeProps(&b, "  ", l.props)
		gids := l.gids
		if gids == nil {
			gids = make([]int, w*h)
		}
		cells := make([]string, len(gids))
		for j, g := range gids {
			cells[j] = strconv.Itoa(g)
		}
		fmt.Fprintf(&b, "  <data encoding=\"csv\">\n%s\n</data>\n </layer>\n", strings.Join(cells, ","))
	}
	if len(objs) > 0 {
		fmt.Fprintf(&b, " <objectgroup id=\"%d\" name=\"objects\">\n", len(layers)+1)
		for i, o := range objs {
			fmt.Fprintf(&b, "  <object id=\"%d\" name=%q type=%q x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\">\n", i+1, o.name, o.typ, o.x, o.y, o.w, o.h)
			writeProps(&b, "   ", o.props)
			b.WriteString("  </object>\n")
		}
		b.WriteString(" </objectgroup>\n")
	}
	b.WriteString("</map>\n")
	return b.String()
}

func filled(w, h, gid int) []int {
	out := make([]int, w*h)
	for i := range out {
		out[i] = gid
	}
	return out
}

// gridMap builds a w x h map whose only rendered layer is filled with tiles
// from the atlas, plus an empty collision layer.
func gridMap(t *testing.T, env *Env, id uint32, name string, w, h int, atlas string, props tilemap.Properties) *Map {
	t.Helper()
	if props == nil {
		props = tilemap.Properties{}
	}
	ts := &tilemap.Tileset{Name: name, FirstGID: 1, Image: "../tilesets/" + atlas, ImageWidth: 64, ImageHeight: 64, TileWidth: 32, TileHeight: 32}
	ground := tilemap.NewLayer("ground", w, h)
	ground.Fill(tilemap.Tile{Tileset: ts})
	src := &tilemap.Map{
		Path:       "data/maps/" + name + ".tmx",
		Width:      w,
		Height:     h,
		TileWidth:  32,
		TileHeight: 32,
		Properties: props,
		Tilesets:   []*tilemap.Tileset{ts},
		Layers:     []*tilemap.Layer{ground, tilemap.NewLayer("collision", w, h)},
	}
	m, err := build(env, id, name, src)
	if err != nil {
		t.Fatalf("build %s: %v", name, err)
	}
	t.Cleanup(m.Close)
	return m
}

func events(t *testing.T, o Object) []string {
	t.Helper()
	so, ok := o.(*ScriptObject)
	if !ok {
		t.Fatalf("%s is not a script object", o.Name())
	}
	arr, ok := so.Instance().Self().Value["events"].(*tengo.Array)
	if !ok {
		t.Fatalf("%s has no events array", o.Name())
	}
	out := make([]string, 0, len(arr.Value))
	for _, v := range arr.Value {
		s, _ := tengo.ToString(v)
		out = append(out, s)
	}
	return out
}

// fakeObject records every callback into a shared log.
type fakeObject struct {
	base
	log     *[]string
	collide bool
	panicOn string
	failOn  string
}

func newFake(name string, r common.Rect, log *[]string) *fakeObject {
	src := &tilemap.Object{Name: name, X: r.Left, Y: r.Top, Width: r.Width, Height: r.Height}
	return &fakeObject{base: newBase(src), log: log}
}

func (f *fakeObject) Kind() Kind { return KindScript }

func (f *fakeObject) record(callback string, p common.Vec) error {
	*f.log = append(*f.log, fmt.Sprintf("%s:%s", f.name, callback))
	if f.panicOn == callback {
		panic("boom in " + callback)
	}
	if f.failOn == callback {
		return fmt.Errorf("%s failed at %v", callback, p)
	}
	return nil
}

func (f *fakeObject) Update(_ uint32, p common.Vec) error      { return f.record("update", p) }
func (f *fakeObject) OnEnter(_ uint32, p common.Vec) error     { return f.record("onEnter", p) }
func (f *fakeObject) WhileInside(_ uint32, p common.Vec) error { return f.record("whileInside", p) }
func (f *fakeObject) OnExit(_ uint32, p common.Vec) error      { return f.record("onExit", p) }
func (f *fakeObject) Interact(p common.Vec) error              { return f.record("interact", p) }

func (f *fakeObject) HasCollision(p common.Vec) bool {
	_ = f.record("hasCollision", p)
	return f.collide
}

func (f *fakeObject) Draw(dst gfx.Surface, origin common.Vec) {
	dst.FillRect(origin.X, origin.Y, f.bounds.Width, f.bounds.Height, color.White)
}

// fakeCharacter draws its name as text.
type fakeCharacter struct {
	mapID  uint32
	bounds common.Rect
}

func (c fakeCharacter) MapID() uint32       { return c.mapID }
func (c fakeCharacter) Bounds() common.Rect { return c.bounds }

func (c fakeCharacter) Draw(dst gfx.Surface, offset common.Vec) {
	dst.DrawText("hero", c.bounds.Left+offset.X, c.bounds.Top+offset.Y, color.White)
}

func mapFile(src string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(src)}
}
