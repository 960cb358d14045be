package main

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed data
var embeddedData embed.FS

// openData returns dataDir when it holds the manifest and the embedded copy
// of the data directory otherwise.
func openData(dataDir, manifest string) (fs.FS, bool) {
	if _, err := os.Stat(filepath.Join(dataDir, filepath.FromSlash(manifest))); err == nil {
		return os.DirFS(dataDir), true
	}
	return embeddedData, false
}
