package codestream

import (
	"errors"
	"fmt"

	"github.com/bluenviron/mj2wrap/internal/bytesource"
)

// Validate checks that a codestream starts with SOC followed by SIZ.
func Validate(region Region) error {
	soc, err := region.uint16At(0)
	if err == nil && Code(soc) == CodeSOC {
		var siz uint16
		siz, err = region.uint16At(2)
		if err == nil && Code(siz) == CodeSIZ {
			return nil
		}
	}

	if err != nil && !errors.Is(err, bytesource.ErrTruncated) {
		return err
	}

	return fmt.Errorf("missing SOC and SIZ markers: %w", ErrInvalidCodestream)
}
