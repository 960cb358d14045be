package script

import (
	"errors"
	"fmt"

	"github.com/d5/tengo/v2"
)

var (
	ErrNotAMap   = errors.New("script must export a map")
	ErrClosed    = errors.New("script instance is closed")
	ErrNoTexture = errors.New("no texture cache")
)

// Error is a failure raised while compiling or running a script callback.
type Error struct {
	Path     string
	Callback string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Callback == "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Callback, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// errorMessage extracts the message of a value produced by error(...).
func errorMessage(e *tengo.Error) string {
	if s, ok := e.Value.(*tengo.String); ok {
		return s.Value
	}
	return e.Value.String()
}
