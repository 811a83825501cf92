package session

import "errors"

// ErrTooManySessions is returned when the store is full.
var ErrTooManySessions = errors.New("too many active carts")
