// Package box contains the box header reader and writer of the JP2 family of formats.
package box

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	gomp4 "github.com/abema/go-mp4"

	"github.com/bluenviron/mj2wrap/internal/bytesource"
)

// Header lengths.
const (
	SmallHeaderLength = 8
	LargeHeaderLength = 16
)

var (
	// ErrNoMoreBoxes is returned when a read starts exactly at the end of the data.
	ErrNoMoreBoxes = errors.New("no more boxes")

	// ErrFormat is returned when a box header is malformed.
	ErrFormat = errors.New("malformed box")

	// ErrNotFound is returned by Find when a box path does not exist.
	ErrNotFound = errors.New("box not found")
)

// Header is a decoded box header.
type Header struct {
	// Type is the 4-byte box type.
	Type Type

	// HeaderLength is either 8 or 16.
	HeaderLength uint8

	// Length is the total box length, header included.
	// Zero means that the box extends to the end of the enclosing box or file.
	Length uint64

	// Offset is the position of the header.
	Offset int64
}

// NewHeader returns the header of a box with the given payload size,
// switching to the extended form when the total does not fit 32 bits.
func NewHeader(t Type, payloadSize uint64) Header {
	if payloadSize+SmallHeaderLength > math.MaxUint32 {
		return Header{
			Type:         t,
			HeaderLength: LargeHeaderLength,
			Length:       payloadSize + LargeHeaderLength,
		}
	}

	return Header{
		Type:         t,
		HeaderLength: SmallHeaderLength,
		Length:       payloadSize + SmallHeaderLength,
	}
}

// ExtendsToEnd returns whether the box runs to the end of its container.
func (h Header) ExtendsToEnd() bool {
	return h.Length == 0
}

// PayloadOffset returns the position of the first payload byte.
func (h Header) PayloadOffset() int64 {
	return h.Offset + int64(h.HeaderLength)
}

// End returns the position after the last byte of the box.
// limit is the end of the enclosing box or file.
func (h Header) End(limit int64) int64 {
	if h.ExtendsToEnd() {
		return limit
	}
	return h.Offset + int64(h.Length)
}

// PayloadSize returns the payload size. limit is used when the box extends to the end.
func (h Header) PayloadSize(limit int64) int64 {
	return h.End(limit) - h.PayloadOffset()
}

// Encode encodes the header.
func (h Header) Encode() []byte {
	if h.HeaderLength == LargeHeaderLength {
		buf := make([]byte, LargeHeaderLength)
		binary.BigEndian.PutUint32(buf, 1)
		copy(buf[4:], h.Type[:])
		binary.BigEndian.PutUint64(buf[8:], h.Length)
		return buf
	}

	buf := make([]byte, SmallHeaderLength)
	binary.BigEndian.PutUint32(buf, uint32(h.Length))
	copy(buf[4:], h.Type[:])
	return buf
}

// Write writes the encoded header.
func (h Header) Write(w io.Writer) error {
	_, err := w.Write(h.Encode())
	return err
}

// String implements fmt.Stringer.
func (h Header) String() string {
	if h.ExtendsToEnd() {
		return fmt.Sprintf("%s @%d (to end)", h.Type, h.Offset)
	}
	return fmt.Sprintf("%s @%d len=%d", h.Type, h.Offset, h.Length)
}

// ReadHeader decodes the box header that starts at offset.
func ReadHeader(src *bytesource.Source, offset int64) (Header, error) {
	if offset == src.Size() {
		return Header{}, ErrNoMoreBoxes
	}
	if offset < 0 || offset > src.Size() {
		return Header{}, fmt.Errorf("box header at %d: %w", offset, bytesource.ErrTruncated)
	}

	r := src.ReadSeeker()

	_, err := r.Seek(offset, io.SeekStart)
	if err != nil {
		return Header{}, err
	}

	bi, err := gomp4.ReadBoxInfo(r)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, fmt.Errorf("box header at %d: %w", offset, bytesource.ErrTruncated)
		}
		return Header{}, fmt.Errorf("box header at %d: %v: %w", offset, err, ErrFormat)
	}

	h := Header{
		Type:         Type(bi.Type),
		HeaderLength: uint8(bi.HeaderSize),
		Length:       bi.Size,
		Offset:       offset,
	}

	if bi.ExtendToEOF {
		h.Length = 0
		return h, nil
	}

	if h.Length < uint64(h.HeaderLength) {
		return Header{}, fmt.Errorf("box %s at %d: length %d shorter than header: %w",
			h.Type, offset, h.Length, ErrFormat)
	}

	return h, nil
}

// Child decodes a header located at offset relative to the payload of parent.
func Child(src *bytesource.Source, parent Header, offset int64) (Header, error) {
	return ReadHeader(src, parent.PayloadOffset()+offset)
}
