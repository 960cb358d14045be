package common

const (
	TileWidth  = 32
	TileHeight = 32

	ScreenWidth  = 800
	ScreenHeight = 600

	// FieldWidth and FieldHeight are the farm plot dimensions in tiles.
	FieldWidth  = 16
	FieldHeight = 12
)
