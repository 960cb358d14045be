// Package console provides the game's logger and the in-game scrollback
// that mirrors it.
package console

import (
	"bytes"
	"image/color"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/milk9111/buddingfriendships/gfx"
)

const lineHeight = 14

// Console tees every log line to an output writer and to a bounded ring of
// recent lines that can be drawn over the game.
type Console struct {
	mu      sync.Mutex
	lines   []string
	max     int
	partial bytes.Buffer

	logger  *log.Logger
	Visible bool
}

// New creates a console keeping at most maxLines lines. out may be nil.
func New(out io.Writer, maxLines int) *Console {
	if maxLines <= 0 {
		maxLines = 64
	}
	c := &Console{max: maxLines}

	var w io.Writer = c
	if out != nil {
		w = io.MultiWriter(out, c)
	}
	c.logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		Prefix:          "bf",
		Level:           log.DebugLevel,
	})
	return c
}

// Logger returns the structured logger backing the console.
func (c *Console) Logger() *log.Logger {
	return c.logger
}

// Write implements io.Writer; complete lines are appended to the ring.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.partial.Write(p)
	for {
		data := c.partial.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		c.push(string(data[:i]))
		c.partial.Next(i + 1)
	}
	return len(p), nil
}

func (c *Console) push(line string) {
	c.lines = append(c.lines, line)
	if over := len(c.lines) - c.max; over > 0 {
		c.lines = append(c.lines[:0], c.lines[over:]...)
	}
}

// Print appends a raw line without going through the logger (used for
// dialogue shown by scripts).
func (c *Console) Print(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range strings.Split(line, "\n") {
		c.push(l)
	}
}

// Lines returns a copy of the buffered lines, oldest first.
func (c *Console) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

// Contains reports whether any buffered line contains substr.
func (c *Console) Contains(substr string) bool {
	for _, l := range c.Lines() {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func (c *Console) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = c.lines[:0]
}

// Draw renders the most recent lines that fit in height when the console is visible.
func (c *Console) Draw(dst gfx.Surface, width, height float64) {
	if !c.Visible {
		return
	}
	lines := c.Lines()
	rows := int(height/2) / lineHeight
	if len(lines) > rows {
		lines = lines[len(lines)-rows:]
	}

	dst.FillRect(0, 0, width, float64(rows*lineHeight+4), color.RGBA{A: 180})
	for i, l := range lines {
		clr := color.Color(color.White)
		if strings.Contains(l, "ERRO") {
			clr = color.RGBA{R: 255, G: 90, B: 90, A: 255}
		} else if strings.Contains(l, "WARN") {
			clr = color.RGBA{R: 255, G: 220, B: 80, A: 255}
		}
		dst.DrawText(l, 4, float64(i*lineHeight+2), clr)
	}
}
