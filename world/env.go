// Package world is the map runtime: loading maps, their objects and
// neighbors, collision, the per-frame overlap engine and the viewers that
// draw one or more maps.
package world

import (
	"io/fs"

	"github.com/charmbracelet/log"
	"github.com/milk9111/buddingfriendships/config"
	"github.com/milk9111/buddingfriendships/farm"
	"github.com/milk9111/buddingfriendships/script"
	"github.com/milk9111/buddingfriendships/season"
	"github.com/milk9111/buddingfriendships/texture"
)

// Env carries the services shared by every map.
type Env struct {
	FS       fs.FS
	Log      *log.Logger
	Textures *texture.Cache
	Field    *farm.Field
	Scripts  *script.Host
	Season   season.Season
	Flags    *config.Flags
}

func (e *Env) logger() *log.Logger {
	if e.Log == nil {
		return log.Default()
	}
	return e.Log
}

func (e *Env) debugCollision() bool {
	return e.Flags != nil && e.Flags.Collision
}
