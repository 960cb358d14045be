package world

import (
	"errors"
	"slices"
	"testing"

	"github.com/milk9111/buddingfriendships/common"
	"github.com/milk9111/buddingfriendships/season"
	"github.com/milk9111/buddingfriendships/tilemap"
)

func layerNames(layers []*tilemap.Layer) []string {
	out := make([]string, 0, len(layers))
	for _, l := range layers {
		out = append(out, l.Name)
	}
	return out
}

func farmLayers() []layerSpec {
	collision := make([]int, 4*3)
	collision[1*4+1] = 1
	return []layerSpec{
		{name: "ground", gids: filled(4, 3, 1)},
		{name: "trees", props: map[string]string{"season": "summer", "render": "above"}},
		{name: "roof", props: map[string]string{"render": "above"}},
		{name: "COLLISION", gids: collision},
		{name: "flowers", props: map[string]string{"season": "spring,fall"}},
		{name: "puddles", props: map[string]string{"season": "monsoon"}},
	}
}

func TestLoadClassifiesLayers(t *testing.T) {
	tests := []struct {
		name  string
		s     season.Season
		lower []string
		upper []string
	}{
		{name: "spring", s: season.Spring, lower: []string{"ground", "flowers", "puddles"}, upper: []string{"roof"}},
		{name: "summer", s: season.Summer, lower: []string{"ground", "puddles"}, upper: []string{"trees", "roof"}},
		{name: "fall", s: season.Fall, lower: []string{"ground", "flowers", "puddles"}, upper: []string{"roof"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := testFS(t)
			fsys["data/maps/farm.tmx"] = mapFile(tmx(4, 3, "ground.png", nil, farmLayers(), nil))
			env, con := newEnv(t, fsys)
			env.Season = tt.s

			m, err := Load(env, 1, "", "data/maps/farm.tmx")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			defer m.Close()

			if m.Name != "farm" {
				t.Fatalf("name = %q, want farm", m.Name)
			}
			if got := layerNames(m.LowerLayers()); !slices.Equal(got, tt.lower) {
				t.Fatalf("lower = %v, want %v", got, tt.lower)
			}
			if got := layerNames(m.UpperLayers()); !slices.Equal(got, tt.upper) {
				t.Fatalf("upper = %v, want %v", got, tt.upper)
			}
			if m.CollisionLayer() == nil || m.CollisionLayer().Name != "COLLISION" {
				t.Fatalf("collision layer = %v", m.CollisionLayer())
			}
			for _, l := range append(m.LowerLayers(), m.UpperLayers()...) {
				if l == m.CollisionLayer() {
					t.Fatalf("collision layer is rendered")
				}
				if l.Width != m.Width || l.Height != m.Height {
					t.Fatalf("layer %s is %dx%d, map is %dx%d", l.Name, l.Width, l.Height, m.Width, m.Height)
				}
			}
			if !con.Contains("ignoring season property") {
				t.Fatalf("expected a warning for the unparsable season")
			}
			if !m.Exterior {
				t.Fatalf("map without type property should be exterior")
			}
			for _, ts := range m.Source().Tilesets {
				if m.Texture(ts) == nil {
					t.Fatalf("tileset %s has no texture", ts.Name)
				}
			}
		})
	}
}

func TestLoadObjects(t *testing.T) {
	fsys := testFS(t)
	fsys["data/maps/house.tmx"] = mapFile(tmx(16, 12, "ground.png",
		map[string]string{"type": "interior"},
		[]layerSpec{{name: "ground", gids: filled(16, 12, 1)}, {name: "collision"}},
		[]objSpec{
			{name: "plot", typ: "Field", x: 0, y: 0, w: 512, h: 384},
			{name: "ghost", typ: "ghost", x: 0, y: 0, w: 32, h: 32},
			{name: "sign", typ: "Recorder", x: 64, y: 64, w: 32, h: 32},
			{name: "custom", typ: "npc", x: 96, y: 64, w: 32, h: 32, props: map[string]string{"script": "data/scripts/recorder.tengo"}},
		}))
	env, con := newEnv(t, fsys)

	m, err := Load(env, 7, "house", "data/maps/house.tmx")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer m.Close()

	if m.Exterior {
		t.Fatalf("interior map reported as exterior")
	}
	var names []string
	for _, o := range m.Objects() {
		names = append(names, o.Name())
	}
	if !slices.Equal(names, []string{"plot", "sign", "custom"}) {
		t.Fatalf("objects = %v", names)
	}
	if !con.Contains("skipping object") || !con.Contains("ghost") {
		t.Fatalf("expected the ghost object failure to be logged")
	}

	plot, _ := m.Object("plot")
	if plot.Kind() != KindField {
		t.Fatalf("plot kind = %v", plot.Kind())
	}
	sign, _ := m.Object("sign")
	if sign.Kind() != KindScript || sign.(*ScriptObject).ScriptPath() != "data/scripts/recorder.tengo" {
		t.Fatalf("sign = %v %s", sign.Kind(), sign.(*ScriptObject).ScriptPath())
	}
	if sign.Position() != (common.Vec{X: 64, Y: 64}) {
		t.Fatalf("sign position = %v", sign.Position())
	}
}

func TestLoadErrors(t *testing.T) {
	fsys := testFS(t)
	fsys["data/maps/broken.tmx"] = mapFile("<map width=")
	fsys["data/maps/noatlas.tmx"] = mapFile(tmx(2, 2, "missing.png", nil, []layerSpec{{name: "ground"}}, nil))
	env, _ := newEnv(t, fsys)

	for _, p := range []string{"data/maps/broken.tmx", "data/maps/noatlas.tmx", "data/maps/absent.tmx"} {
		t.Run(p, func(t *testing.T) {
			if _, err := Load(env, 1, "", p); !errors.Is(err, ErrMapParse) {
				t.Fatalf("err = %v, want ErrMapParse", err)
			}
		})
	}
}

func TestMissingCollisionLayer(t *testing.T) {
	fsys := testFS(t)
	fsys["data/maps/open.tmx"] = mapFile(tmx(2, 2, "ground.png", nil, []layerSpec{{name: "ground", gids: filled(2, 2, 1)}}, nil))
	env, con := newEnv(t, fsys)

	m, err := Load(env, 1, "", "data/maps/open.tmx")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer m.Close()

	if !con.Contains(ErrMissingCollisionLayer.Error()) {
		t.Fatalf("expected a missing collision layer warning")
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if m.TileCollision(x, y) {
				t.Fatalf("tile (%d,%d) collides without a collision layer", x, y)
			}
		}
	}
}

func TestCollision(t *testing.T) {
	fsys := testFS(t)
	fsys["data/maps/farm.tmx"] = mapFile(tmx(4, 3, "ground.png", nil, farmLayers(), nil))
	fsys["data/scripts/wall.tengo"] = mapFile(`export { hasCollision: func(self, x, y) { return error("bad") } }`)
	fsys["data/scripts/post.tengo"] = mapFile(`export { hasCollision: func(self, x, y) { return y >= 16 } }`)
	env, con := newEnv(t, fsys)

	m, err := Load(env, 1, "", "data/maps/farm.tmx")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer m.Close()

	src := &tilemap.Object{Name: "wall", Type: "wall", X: 0, Y: 0, Width: 32, Height: 32}
	wall, err := newObject(env, m, src)
	if err != nil {
		t.Fatalf("wall: %v", err)
	}
	post, err := newObject(env, m, &tilemap.Object{Name: "post", Type: "post", X: 64, Y: 64, Width: 32, Height: 32})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	m.objects = append(m.objects, wall, post)

	tests := []struct {
		name string
		p    common.Vec
		want bool
	}{
		{name: "collision tile", p: common.Vec{X: 40, Y: 40}, want: true},
		{name: "open tile", p: common.Vec{X: 100, Y: 10}, want: false},
		{name: "outside map", p: common.Vec{X: -5, Y: 10}, want: false},
		{name: "script error", p: common.Vec{X: 10, Y: 10}, want: false},
		{name: "object upper half", p: common.Vec{X: 70, Y: 70}, want: false},
		{name: "object lower half", p: common.Vec{X: 70, Y: 90}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, ty := common.TileOf(tt.p)
			want := m.TileCollision(tx, ty) || m.ObjectCollision(tt.p)
			if got := m.Collides(tt.p); got != tt.want || got != want {
				t.Fatalf("Collides(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
	if !con.Contains("bad") {
		t.Fatalf("expected the hasCollision error to be logged")
	}
}

func TestObjectCollisionWithoutCollisionLayer(t *testing.T) {
	env, _ := newEnv(t, testFS(t))
	var log []string
	m := gridMap(t, env, 1, "a", 4, 4, "a.png", nil)
	m.collision = nil
	rock := newFake("rock", common.Rect{Left: 32, Top: 32, Width: 32, Height: 32}, &log)
	rock.collide = true
	m.objects = append(m.objects, rock)

	if !m.Collides(common.Vec{X: 40, Y: 40}) {
		t.Fatalf("object collision ignored on a map without a collision layer")
	}
	if got := log[len(log)-1]; got != "rock:hasCollision" {
		t.Fatalf("last callback = %q", got)
	}
}

func TestUpdateEnterExit(t *testing.T) {
	fsys := testFS(t)
	fsys["data/maps/a.tmx"] = mapFile(tmx(10, 10, "ground.png", nil,
		[]layerSpec{{name: "ground", gids: filled(10, 10, 1)}, {name: "collision"}},
		[]objSpec{{name: "A_obj", typ: "recorder", x: 64, y: 64, w: 32, h: 32}}))
	env, _ := newEnv(t, fsys)

	m, err := Load(env, 1, "A", "data/maps/a.tmx")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer m.Close()
	obj, _ := m.Object("A_obj")

	m.Update(16, common.Vec{X: 80, Y: 80})
	if got := events(t, obj); !slices.Equal(got, []string{"enter"}) {
		t.Fatalf("events after entering = %v", got)
	}
	if len(m.Active()) != 1 {
		t.Fatalf("active = %d, want 1", len(m.Active()))
	}

	m.Update(16, common.Vec{X: 81, Y: 80})
	m.Update(16, common.Vec{X: 200, Y: 200})
	if got := events(t, obj); !slices.Equal(got, []string{"enter", "inside", "exit"}) {
		t.Fatalf("events after leaving = %v", got)
	}
	if len(m.Active()) != 0 {
		t.Fatalf("active = %d, want 0", len(m.Active()))
	}
}

func TestUpdatePassOrder(t *testing.T) {
	env, _ := newEnv(t, testFS(t))
	m := gridMap(t, env, 1, "a", 10, 10, "a.png", nil)

	var log []string
	left := newFake("left", common.Rect{Left: 0, Top: 0, Width: 64, Height: 64}, &log)
	right := newFake("right", common.Rect{Left: 32, Top: 0, Width: 64, Height: 64}, &log)
	far := newFake("far", common.Rect{Left: 200, Top: 200, Width: 32, Height: 32}, &log)
	m.objects = append(m.objects, left, right, far)

	steps := []struct {
		p      common.Vec
		want   []string
		active []Object
	}{
		{
			p:      common.Vec{X: 10, Y: 10},
			want:   []string{"left:update", "right:update", "far:update", "left:onEnter"},
			active: []Object{left},
		},
		{
			p:      common.Vec{X: 40, Y: 10},
			want:   []string{"left:update", "right:update", "far:update", "left:whileInside", "right:onEnter"},
			active: []Object{left, right},
		},
		{
			p:      common.Vec{X: 80, Y: 10},
			want:   []string{"left:onExit", "left:update", "right:update", "far:update", "right:whileInside"},
			active: []Object{right},
		},
		{
			p:      common.Vec{X: 210, Y: 210},
			want:   []string{"right:onExit", "left:update", "right:update", "far:update", "far:onEnter"},
			active: []Object{far},
		},
	}
	for i, step := range steps {
		log = log[:0]
		m.Update(16, step.p)
		if !slices.Equal(log, step.want) {
			t.Fatalf("step %d: callbacks = %v, want %v", i, log, step.want)
		}
		if !slices.Equal(m.Active(), step.active) {
			t.Fatalf("step %d: active = %v", i, m.Active())
		}
		var inside []Object
		for _, o := range m.Objects() {
			if o.Bounds().Contains(step.p) {
				inside = append(inside, o)
			}
		}
		if len(inside) != len(m.Active()) {
			t.Fatalf("step %d: active set %d differs from containing objects %d", i, len(m.Active()), len(inside))
		}
	}
}

func TestCallbackFailuresAreIsolated(t *testing.T) {
	env, con := newEnv(t, testFS(t))
	m := gridMap(t, env, 1, "a", 10, 10, "a.png", nil)

	var log []string
	bad := newFake("bad", common.Rect{Width: 64, Height: 64}, &log)
	bad.panicOn = "update"
	bad.failOn = "onEnter"
	good := newFake("good", common.Rect{Width: 64, Height: 64}, &log)
	m.objects = append(m.objects, bad, good)

	m.Update(16, common.Vec{X: 5, Y: 5})

	want := []string{"bad:update", "good:update", "bad:onEnter", "good:onEnter"}
	if !slices.Equal(log, want) {
		t.Fatalf("callbacks = %v, want %v", log, want)
	}
	if len(m.Active()) != 2 {
		t.Fatalf("failed onEnter must still mark the object active")
	}
	if !con.Contains("boom in update") || !con.Contains("onEnter failed") {
		t.Fatalf("expected both failures in the console: %v", con.Lines())
	}
}

func TestInteract(t *testing.T) {
	env, con := newEnv(t, testFS(t))
	m := gridMap(t, env, 1, "a", 10, 10, "a.png", nil)

	var log []string
	a := newFake("a", common.Rect{Left: 32, Top: 32, Width: 64, Height: 64}, &log)
	a.failOn = "interact"
	b := newFake("b", common.Rect{Left: 64, Top: 64, Width: 64, Height: 64}, &log)
	m.objects = append(m.objects, a, b)

	if !m.Interact(common.Vec{X: 70, Y: 70}) {
		t.Fatalf("interact missed overlapping objects")
	}
	if !slices.Equal(log, []string{"a:interact", "b:interact"}) {
		t.Fatalf("callbacks = %v", log)
	}
	if !con.Contains("interact failed") {
		t.Fatalf("interact failure not logged")
	}
	if m.Interact(common.Vec{X: 300, Y: 300}) {
		t.Fatalf("interact reported a hit on empty ground")
	}
}

func TestFieldInteract(t *testing.T) {
	fsys := testFS(t)
	fsys["data/maps/farm.tmx"] = mapFile(tmx(16, 12, "ground.png", nil,
		[]layerSpec{{name: "ground", gids: filled(16, 12, 1)}, {name: "collision"}},
		[]objSpec{{name: "field", typ: "field", x: 0, y: 0, w: 512, h: 384}}))
	env, con := newEnv(t, fsys)

	m, err := Load(env, 1, "", "data/maps/farm.tmx")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer m.Close()

	p := common.Vec{X: 10, Y: 10}
	tile, err := env.Field.Tile(0, 0)
	if err != nil {
		t.Fatal(err)
	}

	m.Interact(p)
	if tile.Till != 1 || tile.Water || tile.Object != nil {
		t.Fatalf("after first interact: %+v", tile)
	}
	m.Interact(p)
	if tile.Till != 1 || !tile.Water || tile.Object != nil {
		t.Fatalf("after second interact: %+v", tile)
	}
	m.Interact(p)
	if tile.Till != 1 || !tile.Water || tile.Object == nil || !tile.Object.HasCollision() {
		t.Fatalf("after third interact: %+v", tile)
	}
	if !m.Collides(p) {
		t.Fatalf("stone should collide")
	}

	m.Interact(p)
	if tile.Till != 1 || !tile.Water || len(env.Field.Objects()) != 1 {
		t.Fatalf("fourth interact changed the tile: %+v", tile)
	}
	if !con.Contains("tile already contains an object") {
		t.Fatalf("expected occupied tile error to be logged")
	}

	m.Update(16, common.Vec{X: 40, Y: 8})
	if h, _ := env.Field.Tile(1, 0); !h.Highlight {
		t.Fatalf("tile under the player is not highlighted")
	}
	m.Update(16, common.Vec{X: 600, Y: 8})
	if h, _ := env.Field.Tile(1, 0); h.Highlight {
		t.Fatalf("highlight not cleared on exit")
	}
}

func TestFieldCrops(t *testing.T) {
	tests := []struct {
		name   string
		crops  string
		placed int
		loaded bool
	}{
		{name: "planted", crops: "turnip@1,0 turnip@2,1", placed: 2, loaded: true},
		{name: "occupied tile kept", crops: "turnip@1,0 turnip@1,0", placed: 1, loaded: true},
		{name: "unknown seed", crops: "mandrake@1,0"},
		{name: "missing position", crops: "turnip"},
		{name: "out of bounds", crops: "turnip@99,0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := testFS(t)
			fsys["data/maps/farm.tmx"] = mapFile(tmx(16, 12, "ground.png", nil,
				[]layerSpec{{name: "ground", gids: filled(16, 12, 1)}, {name: "collision"}},
				[]objSpec{{name: "field", typ: "field", x: 0, y: 0, w: 512, h: 384, props: map[string]string{"crops": tt.crops}}}))
			env, _ := newEnv(t, fsys)

			m, err := Load(env, 1, "", "data/maps/farm.tmx")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			defer m.Close()

			if _, ok := m.Object("field"); ok != tt.loaded {
				t.Fatalf("field loaded = %v, want %v", ok, tt.loaded)
			}
			if !tt.loaded {
				return
			}
			if got := len(env.Field.Objects()); got != tt.placed {
				t.Fatalf("placed = %d, want %d", got, tt.placed)
			}
			if err := m.ReloadObject("field"); err != nil {
				t.Fatalf("ReloadObject: %v", err)
			}
			if got := len(env.Field.Objects()); got != tt.placed {
				t.Fatalf("placed after reload = %d, want %d", got, tt.placed)
			}
		})
	}
}

func TestReloadObject(t *testing.T) {
	fsys := testFS(t)
	fsys["data/maps/town.tmx"] = mapFile(tmx(10, 10, "ground.png", nil,
		[]layerSpec{{name: "ground", gids: filled(10, 10, 1)}, {name: "collision"}},
		[]objSpec{
			{name: "npc", typ: "recorder", x: 64, y: 64, w: 32, h: 32},
			{name: "sign", typ: "recorder", x: 0, y: 0, w: 32, h: 32},
		}))
	env, _ := newEnv(t, fsys)

	m, err := Load(env, 1, "", "data/maps/town.tmx")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer m.Close()

	p := common.Vec{X: 70, Y: 70}
	m.Update(16, p)
	old, _ := m.Object("npc")
	if !slices.Contains(m.Active(), old) {
		t.Fatalf("npc not active before reload")
	}
	pinned := env.Scripts.Registry().Len()

	if err := m.ReloadObject("npc"); err != nil {
		t.Fatalf("ReloadObject: %v", err)
	}
	fresh, _ := m.Object("npc")
	if fresh == old {
		t.Fatalf("reload kept the old object")
	}
	if len(m.Active()) != 0 {
		t.Fatalf("reloaded object is active before the next update")
	}
	if got := m.Objects()[len(m.Objects())-1]; got != fresh {
		t.Fatalf("reloaded object not appended")
	}
	if got := env.Scripts.Registry().Len(); got != pinned {
		t.Fatalf("registry len = %d, want %d", got, pinned)
	}
	if err := old.Update(16, p); err == nil {
		t.Fatalf("old object still runs after reload")
	}

	m.Update(16, p)
	if got := events(t, fresh); !slices.Equal(got, []string{"enter"}) {
		t.Fatalf("fresh events = %v", got)
	}

	if err := m.ReloadObject("nobody"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("err = %v, want ErrObjectNotFound", err)
	}
}
