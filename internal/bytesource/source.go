// Package bytesource contains a random-access, big-endian byte reader.
package bytesource

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrTruncated is returned when a read crosses the end of a source.
var ErrTruncated = errors.New("truncated data")

// Source is a bounded, offset-addressed view of a backing store.
// Reads never move a cursor, so they can be repeated or reordered freely.
type Source struct {
	r    io.ReaderAt
	base int64
	size int64
}

// New allocates a Source over the first size bytes of r.
func New(r io.ReaderAt, size int64) *Source {
	return &Source{
		r:    r,
		size: size,
	}
}

// FromBytes allocates a Source over a memory buffer.
func FromBytes(buf []byte) *Source {
	return New(bytes.NewReader(buf), int64(len(buf)))
}

// Open opens a file as a Source. The returned closer releases the file.
func Open(fpath string) (*Source, io.Closer, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return nil, nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	return New(f, fi.Size()), f, nil
}

// Size returns the size of the source.
func (s *Source) Size() int64 {
	return s.size
}

// Section returns a view of n bytes starting at off.
func (s *Source) Section(off int64, n int64) (*Source, error) {
	if off < 0 || n < 0 || off+n > s.size {
		return nil, fmt.Errorf("section [%d, %d) of %d bytes: %w", off, off+n, s.size, ErrTruncated)
	}

	return &Source{
		r:    s.r,
		base: s.base + off,
		size: n,
	}, nil
}

// ReadSeeker returns an io.ReadSeeker over the source, positioned at its start.
func (s *Source) ReadSeeker() *io.SectionReader {
	return io.NewSectionReader(s.r, s.base, s.size)
}

// ReadAt implements io.ReaderAt.
// Unlike a plain io.ReaderAt, a short read is always reported as ErrTruncated.
func (s *Source) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > s.size {
		return 0, fmt.Errorf("read of %d bytes at %d of %d: %w", len(p), off, s.size, ErrTruncated)
	}

	n, err := s.r.ReadAt(p, s.base+off)
	if n == len(p) {
		return n, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return n, fmt.Errorf("read of %d bytes at %d: %w", len(p), off, ErrTruncated)
	}
	return n, err
}

// BytesAt returns a copy of n bytes starting at off.
func (s *Source) BytesAt(off int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	_, err := s.ReadAt(buf, off)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Uint8At reads a byte.
func (s *Source) Uint8At(off int64) (uint8, error) {
	var buf [1]byte
	_, err := s.ReadAt(buf[:], off)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// Uint16At reads a big-endian 16-bit value.
func (s *Source) Uint16At(off int64) (uint16, error) {
	var buf [2]byte
	_, err := s.ReadAt(buf[:], off)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// Uint32At reads a big-endian 32-bit value.
func (s *Source) Uint32At(off int64) (uint32, error) {
	var buf [4]byte
	_, err := s.ReadAt(buf[:], off)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// Uint64At reads a big-endian 64-bit value.
func (s *Source) Uint64At(off int64) (uint64, error) {
	var buf [8]byte
	_, err := s.ReadAt(buf[:], off)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
