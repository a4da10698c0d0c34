package codestream

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/bluenviron/mj2wrap/internal/bytesource"
	"github.com/bluenviron/mj2wrap/internal/logger"
)

const (
	sizFixedLength     = 38
	sizComponentLength = 3
	maxPrecision       = 38
)

// findSIZ returns the position of the SIZ marker code.
// A 0xFF that is not followed by 0x51 is itself a candidate for the next test.
func findSIZ(region Region) (int64, error) {
	sec, err := region.Section()
	if err != nil {
		return 0, err
	}

	br := bufio.NewReader(sec.ReadSeeker())
	prevFF := false

	for pos := int64(0); ; pos++ {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, fmt.Errorf("SIZ marker not found: %w", ErrFormat)
			}
			return 0, err
		}

		if prevFF && b == byte(CodeSIZ&0xFF) {
			return pos - 1, nil
		}

		prevFF = (b == 0xFF)
	}
}

// ExtractGeometry finds the SIZ marker of a codestream and decodes the image geometry.
func ExtractGeometry(region Region, log logger.Writer) (*Geometry, error) {
	log = logger.Or(log)

	pos, err := findSIZ(region)
	if err != nil {
		return nil, err
	}

	lsizPos := pos + 2

	lsiz, err := region.uint16At(lsizPos)
	if err != nil {
		return nil, fmt.Errorf("SIZ length: %w", err)
	}

	if lsizPos+int64(lsiz) > region.Length {
		return nil, fmt.Errorf("SIZ segment of %d bytes at %d crosses the end of %d bytes: %w",
			lsiz, pos, region.Length, bytesource.ErrTruncated)
	}

	if lsiz < sizFixedLength {
		return nil, fmt.Errorf("SIZ segment too short (%d): %w", lsiz, ErrFormat)
	}

	m := Bind(region, CodeSIZ, lsizPos, lsiz)

	g, err := decodeSIZ(m)
	if err != nil {
		return nil, err
	}

	log.Log(logger.Debug, "SIZ marker at %d: %dx%d, %d components",
		pos, g.Width(), g.Height(), len(g.Components))

	return g, nil
}

func decodeSIZ(m Marker) (*Geometry, error) {
	// Lsiz (2), Rsiz (2)
	rel := int64(4)

	var g Geometry
	for _, dst := range []*uint32{&g.X1, &g.Y1, &g.X0, &g.Y0} {
		v, err := m.U32(rel)
		if err != nil {
			return nil, err
		}
		*dst = v
		rel += 4
	}

	// XTsiz, YTsiz, XTOsiz, YTOsiz
	rel += 16

	csiz, err := m.U16(rel)
	if err != nil {
		return nil, err
	}
	rel += 2

	if csiz == 0 {
		return nil, fmt.Errorf("SIZ has no components: %w", ErrFormat)
	}

	if int(m.Length) != sizFixedLength+sizComponentLength*int(csiz) {
		return nil, fmt.Errorf("SIZ length %d does not match %d components: %w",
			m.Length, csiz, ErrFormat)
	}

	if g.X1 <= g.X0 || g.Y1 <= g.Y0 {
		return nil, fmt.Errorf("invalid image area (%d,%d)-(%d,%d): %w",
			g.X0, g.Y0, g.X1, g.Y1, ErrFormat)
	}

	g.Components = make([]Component, csiz)

	for i := range g.Components {
		var buf [sizComponentLength]uint8
		for j := range buf {
			buf[j], err = m.U8(rel)
			if err != nil {
				return nil, err
			}
			rel++
		}

		c := Component{
			Precision: (buf[0] & 0x7F) + 1,
			Signed:    (buf[0] >> 7) != 0,
			DX:        buf[1],
			DY:        buf[2],
		}

		if c.Precision > maxPrecision {
			return nil, fmt.Errorf("component %d has precision %d: %w", i, c.Precision, ErrFormat)
		}

		if c.DX == 0 || c.DY == 0 {
			return nil, fmt.Errorf("component %d has subsampling %dx%d: %w", i, c.DX, c.DY, ErrFormat)
		}

		g.Components[i] = c
	}

	return &g, nil
}
