// Package codestream contains utilities to inspect JPEG 2000 codestreams.
package codestream

import (
	"fmt"

	"github.com/bluenviron/mj2wrap/internal/bytesource"
)

// Region locates a codestream inside a source.
// It references the source and never owns it.
type Region struct {
	Source *bytesource.Source
	Offset int64
	Length int64
}

// NewRegion allocates a Region, checking that it fits the source.
func NewRegion(src *bytesource.Source, offset int64, length int64) (Region, error) {
	if offset < 0 || length < 0 || offset+length > src.Size() {
		return Region{}, fmt.Errorf("codestream [%d, %d) outside of %d bytes: %w",
			offset, offset+length, src.Size(), bytesource.ErrTruncated)
	}

	return Region{
		Source: src,
		Offset: offset,
		Length: length,
	}, nil
}

// WholeSource returns a Region that spans src.
func WholeSource(src *bytesource.Source) Region {
	return Region{
		Source: src,
		Length: src.Size(),
	}
}

// FromBytes returns a Region that spans a memory buffer.
func FromBytes(buf []byte) Region {
	return WholeSource(bytesource.FromBytes(buf))
}

// Section returns a source limited to the region.
func (r Region) Section() (*bytesource.Source, error) {
	return r.Source.Section(r.Offset, r.Length)
}
