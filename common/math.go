package common

import "math"

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Round rounds half up: floor(f)+1 when the fractional part is at least 0.5.
func Round(f float64) float64 {
	fl := math.Floor(f)
	if f-fl >= 0.5 {
		return fl + 1
	}
	return fl
}

// RoundVec rounds both components with Round.
func RoundVec(v Vec) Vec {
	return Vec{X: Round(v.X), Y: Round(v.Y)}
}

// TileOf returns the tile index containing the world coordinate p.
func TileOf(p Vec) (int, int) {
	return int(math.Floor(p.X / TileWidth)), int(math.Floor(p.Y / TileHeight))
}
