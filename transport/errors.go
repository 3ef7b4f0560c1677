package transport

import "errors"

var (
	// ErrDecode reports audio input that could not be decoded. The machine is
	// left Empty.
	ErrDecode = errors.New("cannot decode audio")
	// ErrInvalidTransition marks an operation requested in a state where it
	// has no meaning. It is logged and otherwise ignored.
	ErrInvalidTransition = errors.New("invalid transport transition")
	// ErrStaleCallback marks a natural-end notification from a voice that was
	// already superseded.
	ErrStaleCallback = errors.New("stale voice callback")
)
