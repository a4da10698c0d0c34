package mj2

import "errors"

var (
	// ErrEmptyInput is returned when a session is closed without samples.
	ErrEmptyInput = errors.New("no codestreams")

	// ErrAllocation is returned when the movie structure does not fit the allowed size.
	ErrAllocation = errors.New("movie structure exceeds allowed size")

	// ErrIO is returned when reading a codestream or writing the container fails.
	ErrIO = errors.New("I/O error")

	// ErrPayloadTooLarge is returned when samples do not fit 32-bit offsets.
	ErrPayloadTooLarge = errors.New("payload exceeds 4 GiB")

	// ErrSessionClosed is returned when a session is used after Close.
	ErrSessionClosed = errors.New("session closed")
)
