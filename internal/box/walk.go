package box

import (
	"fmt"
	"iter"

	"github.com/bluenviron/mj2wrap/internal/bytesource"
)

func readHeaderWithin(src *bytesource.Source, offset int64, end int64) (Header, error) {
	if offset+SmallHeaderLength > end {
		return Header{}, fmt.Errorf("box header at %d crosses end %d: %w", offset, end, bytesource.ErrTruncated)
	}

	h, err := ReadHeader(src, offset)
	if err != nil {
		return Header{}, err
	}

	if h.PayloadOffset() > end || h.End(end) > end {
		return Header{}, fmt.Errorf("box %s at %d crosses end %d: %w", h.Type, offset, end, bytesource.ErrTruncated)
	}

	return h, nil
}

// Walk returns the sibling boxes stored between start and end.
// The sequence is lazy and can be restarted by calling Walk again.
// It stops after a box that extends to end, or after yielding an error.
func Walk(src *bytesource.Source, start int64, end int64) iter.Seq2[Header, error] {
	return func(yield func(Header, error) bool) {
		off := start

		for off < end {
			h, err := readHeaderWithin(src, off, end)
			if err != nil {
				yield(Header{}, err)
				return
			}

			if !yield(h, nil) {
				return
			}

			if h.ExtendsToEnd() {
				return
			}

			off = h.End(end)
		}
	}
}

// Children returns the boxes contained in the payload of parent.
// end is the end of the box that encloses parent.
func Children(src *bytesource.Source, parent Header, end int64) iter.Seq2[Header, error] {
	return Walk(src, parent.PayloadOffset(), parent.End(end))
}

// Collect reads all headers of a sequence.
func Collect(seq iter.Seq2[Header, error]) ([]Header, error) {
	var out []Header
	for h, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// Find descends from the boxes between start and end following a type path,
// and returns the header of the first match of the last element.
func Find(src *bytesource.Source, start int64, end int64, path ...Type) (Header, error) {
	if len(path) == 0 {
		return Header{}, fmt.Errorf("empty box path")
	}

	var match Header

	for i, t := range path {
		if i > 0 {
			start, end = match.PayloadOffset(), match.End(end)
		}

		found := false

		for h, err := range Walk(src, start, end) {
			if err != nil {
				return Header{}, err
			}
			if h.Type == t {
				match = h
				found = true
				break
			}
		}

		if !found {
			return Header{}, fmt.Errorf("%s: %w", pathString(path[:i+1]), ErrNotFound)
		}
	}

	return match, nil
}

func pathString(path []Type) string {
	s := ""
	for i, t := range path {
		if i > 0 {
			s += "/"
		}
		s += t.String()
	}
	return s
}
