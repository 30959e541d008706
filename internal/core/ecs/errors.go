package ecs

import (
	"errors"
	"fmt"
)

// Registry errors. ErrStaleHandle wraps ErrInvalidHandle, so
// errors.Is(err, ErrInvalidHandle) matches both.
var (
	ErrOutOfCapacity = errors.New("entity registry is full")
	ErrCapacity      = errors.New("invalid entity capacity")
	ErrInvalidHandle = errors.New("invalid entity handle")
	ErrStaleHandle   = fmt.Errorf("%w: stale generation", ErrInvalidHandle)
)
