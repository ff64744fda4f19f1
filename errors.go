package bytebuf

import "errors"

// ErrInvalidRange is returned when a sub-range starts after it ends.
var ErrInvalidRange = errors.New("invalid range")

// ErrOutOfBounds is returned when a range or index exceeds the length or count.
var ErrOutOfBounds = errors.New("out of bounds")

// ErrEmpty is returned when popping from an empty sequence.
var ErrEmpty = errors.New("sequence is empty")
