package texture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// Uploader turns a decoded image into a GPU image.
type Uploader func(image.Image) *ebiten.Image

// Cache loads textures from a file system and returns the same *Texture for
// the same cleaned path. It is safe to call from several goroutines but the
// game only uses it from the main loop.
type Cache struct {
	fsys   fs.FS
	upload Uploader

	mu       sync.Mutex
	textures map[string]*Texture
}

type Option func(*Cache)

// WithUploader replaces the GPU upload step; pass a func returning nil to run headless.
func WithUploader(u Uploader) Option {
	return func(c *Cache) { c.upload = u }
}

func NewCache(fsys fs.FS, opts ...Option) *Cache {
	c := &Cache{
		fsys:     fsys,
		upload:   ebiten.NewImageFromImage,
		textures: map[string]*Texture{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the cached texture for key, decoding it on first use.
func (c *Cache) Load(key string) (*Texture, error) {
	if key == "" {
		return nil, fmt.Errorf("empty texture key")
	}
	key = cleanKey(key)
	if tex := c.Get(key); tex != nil {
		return tex, nil
	}

	img, err := c.decode(key)
	if err != nil {
		return nil, err
	}
	return c.register(key, img), nil
}

// Preload decodes every path in parallel and registers the results.
// Already cached paths are skipped.
func (c *Cache) Preload(ctx context.Context, keys ...string) error {
	paths := make([]string, len(keys))
	decoded := make([]image.Image, len(keys))
	g, ctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		key = cleanKey(key)
		paths[i] = key
		if c.Get(key) != nil {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := c.decode(key)
			if err != nil {
				return err
			}
			decoded[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, img := range decoded {
		if img != nil {
			c.register(paths[i], img)
		}
	}
	return nil
}

// Get returns a cached texture or nil.
func (c *Cache) Get(key string) *Texture {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.textures[cleanKey(key)]
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.textures)
}

// Clear drops every cached texture and disposes their GPU images.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tex := range c.textures {
		if tex.Image != nil {
			tex.Image.Deallocate()
		}
	}
	c.textures = map[string]*Texture{}
}

func (c *Cache) register(key string, img image.Image) *Texture {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tex, ok := c.textures[key]; ok {
		return tex
	}
	b := img.Bounds()
	tex := &Texture{Path: key, Width: b.Dx(), Height: b.Dy()}
	if c.upload != nil {
		tex.Image = c.upload(img)
	}
	c.textures[key] = tex
	return tex
}

func (c *Cache) decode(key string) (image.Image, error) {
	if c.fsys == nil {
		return nil, fmt.Errorf("failed to load image %s: no file system", key)
	}
	b, err := fs.ReadFile(c.fsys, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", key, err)
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", key, err)
	}
	return img, nil
}

func cleanKey(key string) string {
	return strings.TrimPrefix(path.Clean(filepath.ToSlash(key)), "/")
}
