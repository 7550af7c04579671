package game

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptState marks a snapshot that cannot have come from legal play.
	ErrCorruptState = errors.New("corrupt game state")

	// ErrGameNotFound is returned by repositories for unknown ids.
	ErrGameNotFound = errors.New("game not found")
)

func corrupt(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCorruptState, fmt.Sprintf(format, args...))
}
