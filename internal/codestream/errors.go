package codestream

import "errors"

var (
	// ErrFormat is returned when a codestream does not have the expected structure.
	ErrFormat = errors.New("malformed codestream")

	// ErrInvalidCodestream is returned when a codestream is rejected by validation.
	ErrInvalidCodestream = errors.New("invalid codestream")
)
