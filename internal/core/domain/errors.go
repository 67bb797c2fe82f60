package domain

import "errors"

var (
	// ErrIndexOutOfRange is returned when a point index does not address the sequence.
	ErrIndexOutOfRange = errors.New("point index out of range")

	// ErrInvalidCoordinate is returned for NaN, infinite or out-of-range coordinates.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrUnknownMode is returned for a mode other than distance or area.
	ErrUnknownMode = errors.New("unknown measurement mode")

	// ErrInvalidCommand is returned when a command message is malformed.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrSessionNotFound is returned when a session id is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")
)
