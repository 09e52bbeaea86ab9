package hc595

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is matched by every validation failure of this package.
// Calls failing validation never touch the pins.
var ErrInvalidArgument = errors.New("invalid argument")

var ErrNoOutputEnable = errors.New("hc595: no output enable pin configured")

type ArgumentError struct {
	Msg string
}

func (e *ArgumentError) Error() string {
	return "hc595: invalid argument: " + e.Msg
}

func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func argumentErrorf(format string, args ...interface{}) error {
	return &ArgumentError{Msg: fmt.Sprintf(format, args...)}
}
