// Package mj2 contains a Motion JPEG 2000 muxer.
package mj2

import (
	"errors"
	"fmt"
	"io"
	"math"

	"code.cloudfoundry.org/bytefmt"
	gomp4 "github.com/abema/go-mp4"
	"github.com/bluenviron/mediacommon/v2/pkg/formats/fmp4/seekablebuffer"

	"github.com/bluenviron/mj2wrap/internal/box"
	"github.com/bluenviron/mj2wrap/internal/bytesource"
	"github.com/bluenviron/mj2wrap/internal/codestream"
	"github.com/bluenviron/mj2wrap/internal/logger"
)

type sessionState int

const (
	stateInit sessionState = iota
	stateHeaderBoxesWritten
	statePayloadOpen
	statePayloadClosed
	stateStructureWritten
	stateDone
	stateFailed
)

func ioError(err error) error {
	if errors.Is(err, ErrIO) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}

// Session writes codestreams into a MJ2 container.
//
// The media data box is opened with a zero length, and its length is
// written when the session is closed, therefore the destination must be seekable.
type Session struct {
	opts Options
	w    *mp4Writer

	state      sessionState
	err        error
	mdatOffset int64
	end        int64
	geometry   *codestream.Geometry
	samples    []Sample
}

// Open writes the signature and file type boxes and opens the media data box.
func Open(w io.WriteSeeker, opts Options) (*Session, error) {
	s := &Session{
		opts: opts.withDefaults(),
		w:    newMP4Writer(w),
	}

	err := s.writeHeaderBoxes()
	if err != nil {
		return nil, s.fail(ioError(err))
	}
	s.state = stateHeaderBoxesWritten

	err = s.openPayload()
	if err != nil {
		return nil, s.fail(ioError(err))
	}
	s.state = statePayloadOpen

	return s, nil
}

func (s *Session) writeHeaderBoxes() error {
	_, err := s.w.writeBox(&Signature{ // <jP  />
		Signature: signature,
	})
	if err != nil {
		return err
	}

	_, err = s.w.writeBox(&gomp4.Ftyp{ // <ftyp/>
		MajorBrand:   [4]byte{'m', 'j', 'p', '2'},
		MinorVersion: 0,
		CompatibleBrands: []gomp4.CompatibleBrandElem{
			{CompatibleBrand: [4]byte{'m', 'j', 'p', '2'}},
		},
	})
	return err
}

func (s *Session) openPayload() error {
	var err error
	s.mdatOffset, err = s.w.offset()
	if err != nil {
		return err
	}

	// the length is unknown until the session is closed
	err = s.w.writeHeader(box.Header{
		Type:         box.TypeMediaData,
		HeaderLength: box.SmallHeaderLength,
	})
	if err != nil {
		return err
	}

	s.end = s.mdatOffset + box.SmallHeaderLength
	return nil
}

func (s *Session) fail(err error) error {
	s.state = stateFailed
	s.err = err
	return err
}

func (s *Session) checkOpen() error {
	switch s.state {
	case statePayloadOpen:
		return nil

	case stateFailed:
		return fmt.Errorf("session failed: %w", s.err)
	}
	return ErrSessionClosed
}

// Append writes a codestream into the media data box.
func (s *Session) Append(cs []byte) (Sample, error) {
	return s.AppendFrom(bytesource.FromBytes(cs))
}

// AppendFrom writes a codestream read from a source into the media data box.
// The first codestream is validated and provides the track geometry.
func (s *Session) AppendFrom(src *bytesource.Source) (Sample, error) {
	err := s.checkOpen()
	if err != nil {
		return Sample{}, err
	}

	size := uint64(src.Size()) + box.SmallHeaderLength
	if uint64(s.end)+size > math.MaxUint32 {
		return Sample{}, s.fail(fmt.Errorf("sample %d: %w", len(s.samples), ErrPayloadTooLarge))
	}

	if s.geometry == nil {
		region := codestream.WholeSource(src)

		err = codestream.Validate(region)
		if err != nil {
			return Sample{}, s.fail(err)
		}

		var g *codestream.Geometry
		g, err = codestream.ExtractGeometry(region, s.opts.Log)
		if err != nil {
			return Sample{}, s.fail(err)
		}

		// track and image headers hold 16-bit dimensions
		if g.ComponentWidth(0) > math.MaxUint16 || g.ComponentHeight(0) > math.MaxUint16 {
			return Sample{}, s.fail(fmt.Errorf("image size %dx%d exceeds %d: %w",
				g.ComponentWidth(0), g.ComponentHeight(0), math.MaxUint16, codestream.ErrFormat))
		}

		s.geometry = g
	}

	err = s.w.writeHeader(box.NewHeader(box.TypeCodestream, uint64(src.Size())))
	if err != nil {
		return Sample{}, s.fail(ioError(err))
	}

	n, err := io.CopyN(s.w.w, src.ReadSeeker(), src.Size())
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Sample{}, s.fail(fmt.Errorf("sample %d: %d of %d bytes read: %w",
				len(s.samples), n, src.Size(), bytesource.ErrTruncated))
		}
		return Sample{}, s.fail(ioError(err))
	}

	sa := Sample{
		Offset: s.end,
		Size:   uint32(size),
	}
	s.samples = append(s.samples, sa)
	s.end = sa.End()

	s.opts.Log.Log(logger.Debug, "sample %d: offset %d, size %d", len(s.samples)-1, sa.Offset, sa.Size)

	return sa, nil
}

// Close writes the length of the media data box and the movie box.
func (s *Session) Close() (*Track, error) {
	err := s.checkOpen()
	if err != nil {
		return nil, err
	}

	if len(s.samples) == 0 {
		return nil, s.fail(ErrEmptyInput)
	}

	allowance := structureAllowance(len(s.samples))
	if s.opts.MaxStructureSize != 0 && allowance > s.opts.MaxStructureSize {
		return nil, s.fail(fmt.Errorf("%s needed, %s allowed: %w",
			bytefmt.ByteSize(allowance), bytefmt.ByteSize(s.opts.MaxStructureSize), ErrAllocation))
	}

	track := &Track{
		Geometry:      s.geometry,
		BPC:           s.geometry.BPC(),
		FrameRate:     s.opts.FrameRate,
		Samples:       s.samples,
		PayloadOffset: s.mdatOffset,
		PayloadLength: uint64(s.end - s.mdatOffset),
	}

	err = s.closePayload(track.PayloadLength)
	if err != nil {
		return nil, s.fail(ioError(err))
	}
	s.state = statePayloadClosed

	err = s.writeStructure(track, allowance)
	if err != nil {
		return nil, s.fail(err)
	}
	s.state = stateStructureWritten

	s.opts.Log.Log(logger.Info, "%d samples, %dx%d, %d components, media data %s",
		len(track.Samples), track.Width(), track.Height(), len(track.Geometry.Components),
		bytefmt.ByteSize(track.PayloadLength))

	s.state = stateDone
	return track, nil
}

func (s *Session) closePayload(length uint64) error {
	err := s.w.rewriteHeader(s.mdatOffset, box.Header{
		Type:         box.TypeMediaData,
		HeaderLength: box.SmallHeaderLength,
		Length:       length,
	})
	if err != nil {
		return err
	}

	_, err = s.w.w.Seek(s.end, io.SeekStart)
	return err
}

func (s *Session) writeStructure(track *Track, allowance uint64) error {
	var buf seekablebuffer.Buffer
	buf.Grow(int(allowance))

	err := track.marshalMoov(newMP4Writer(&buf))
	if err != nil {
		return err
	}

	_, err = s.w.w.Write(buf.Bytes())
	if err != nil {
		return ioError(err)
	}

	return nil
}
