package model

import "errors"

// ErrInvalidQuantum is returned when a non-positive quantum is supplied. A
// quantum of zero or less would yield non-positive preemptible slices.
var ErrInvalidQuantum = errors.New("model: quantum must be > 0")
