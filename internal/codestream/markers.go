package codestream

import (
	"fmt"
	"iter"

	"github.com/bluenviron/mj2wrap/internal/bytesource"
)

func (r Region) uint16At(pos int64) (uint16, error) {
	if pos+2 > r.Length {
		return 0, fmt.Errorf("read at %d of %d bytes: %w", pos, r.Length, bytesource.ErrTruncated)
	}
	return r.Source.Uint16At(r.Offset + pos)
}

// Markers returns the marker segments of the main header, from SOC up to
// and including the first SOT, SOD or EOC. Payloads are not read.
func Markers(region Region) iter.Seq2[Marker, error] {
	return func(yield func(Marker, error) bool) {
		v, err := region.uint16At(0)
		if err != nil {
			yield(Marker{}, err)
			return
		}

		if Code(v) != CodeSOC {
			yield(Marker{}, fmt.Errorf("codestream starts with 0x%04X instead of SOC: %w", v, ErrFormat))
			return
		}

		if !yield(Bind(region, CodeSOC, 2, 0), nil) {
			return
		}

		pos := int64(2)

		for {
			v, err = region.uint16At(pos)
			if err != nil {
				yield(Marker{}, err)
				return
			}

			code := Code(v)
			if v < 0xFF00 {
				yield(Marker{}, fmt.Errorf("invalid marker 0x%04X at %d: %w", v, pos, ErrFormat))
				return
			}
			pos += 2

			var m Marker

			if code.HasLength() {
				var l uint16
				l, err = region.uint16At(pos)
				if err != nil {
					yield(Marker{}, err)
					return
				}

				if l < 2 {
					yield(Marker{}, fmt.Errorf("%s at %d has length %d: %w", code, pos-2, l, ErrFormat))
					return
				}

				if pos+int64(l) > region.Length {
					yield(Marker{}, fmt.Errorf("%s at %d crosses the end: %w", code, pos-2, bytesource.ErrTruncated))
					return
				}

				m = Bind(region, code, pos, l)
				pos += int64(l)
			} else {
				m = Bind(region, code, pos, 0)
			}

			if !yield(m, nil) {
				return
			}

			switch code {
			case CodeSOT, CodeSOD, CodeEOC:
				return
			}
		}
	}
}
