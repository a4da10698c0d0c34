package core

import (
	"fmt"
	"io"
	"strings"

	"github.com/bluenviron/mj2wrap/internal/box"
	"github.com/bluenviron/mj2wrap/internal/bytesource"
	"github.com/bluenviron/mj2wrap/internal/codestream"
	"github.com/bluenviron/mj2wrap/internal/logger"
	"github.com/bluenviron/mj2wrap/internal/mj2"
)

type dumper struct {
	w   io.Writer
	src *bytesource.Source
	log logger.Writer
}

func (p *Core) dump(fpath string) error {
	src, closer, err := bytesource.Open(fpath)
	if err != nil {
		return err
	}
	defer closer.Close()

	d := &dumper{
		w:   p.stdout,
		src: src,
		log: p,
	}

	// bare codestream
	if soc, err2 := src.Uint16At(0); err2 == nil && codestream.Code(soc) == codestream.CodeSOC {
		d.codestream(codestream.WholeSource(src), 0)
		return nil
	}

	return d.boxes(0, src.Size(), 0)
}

func (d *dumper) printf(depth int, format string, args ...any) {
	fmt.Fprintf(d.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (d *dumper) boxes(start int64, end int64, depth int) error {
	for h, err := range box.Walk(d.src, start, end) {
		if err != nil {
			return err
		}

		d.printf(depth, "%s", h)

		boxEnd := h.End(end)

		switch {
		case box.IsContainer(h.Type), h.Type == box.TypeMediaData:
			err = d.boxes(h.PayloadOffset(), boxEnd, depth+1)

		// version, flags, entry count
		case h.Type == box.TypeSampleDesc:
			err = d.boxes(h.PayloadOffset()+8, boxEnd, depth+1)

		case h.Type == box.TypeMJ2SampleEntry:
			err = d.boxes(h.PayloadOffset()+mj2.VisualSampleEntrySize, boxEnd, depth+1)

		case h.Type == box.TypeCodestream:
			var region codestream.Region
			region, err = codestream.NewRegion(d.src, h.PayloadOffset(), boxEnd-h.PayloadOffset())
			if err == nil {
				d.codestream(region, depth+1)
			}
		}

		if err != nil {
			return fmt.Errorf("%s: %w", h, err)
		}
	}

	return nil
}

// errors are printed, only the first codestream of a file is checked when muxing.
func (d *dumper) codestream(region codestream.Region, depth int) {
	for m, err := range codestream.Markers(region) {
		if err != nil {
			d.printf(depth, "error: %v", err)
			return
		}
		d.printf(depth, "%s", m)
	}

	g, err := codestream.ExtractGeometry(region, d.log)
	if err != nil {
		d.printf(depth, "error: %v", err)
		return
	}

	d.printf(depth, "image %dx%d at (%d,%d), %d components, bpc %d",
		g.Width(), g.Height(), g.X0, g.Y0, len(g.Components), g.BPC())

	for i, c := range g.Components {
		d.printf(depth+1, "component %d: %dx%d, %d bits, signed %v",
			i, g.ComponentWidth(i), g.ComponentHeight(i), c.Precision, c.Signed)
	}
}
