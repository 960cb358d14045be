package world

import "errors"

var (
	ErrMapParse              = errors.New("map parse error")
	ErrOutOfBounds           = errors.New("position out of bounds")
	ErrNeighborMissing       = errors.New("neighbor map missing")
	ErrObjectLoad            = errors.New("object load failure")
	ErrObjectNotFound        = errors.New("object not found")
	ErrMissingCollisionLayer = errors.New("map has no collision layer")
	ErrDuplicateMap          = errors.New("map already registered")
	ErrUnknownMap            = errors.New("unknown map")
	ErrNoCurrentMap          = errors.New("no current map")
)
