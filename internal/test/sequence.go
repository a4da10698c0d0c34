package test

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteSequence writes frames into dir as <basename>_00000.<ext>, <basename>_00001.<ext> and so on,
// and returns the basename path that addresses them.
func WriteSequence(dir string, basename string, ext string, frames [][]byte) (string, error) {
	base := filepath.Join(dir, basename)

	for i, frame := range frames {
		err := os.WriteFile(fmt.Sprintf("%s_%05d.%s", base, i, ext), frame, 0o644)
		if err != nil {
			return "", err
		}
	}

	return base, nil
}
