package mj2

import (
	"io"

	gomp4 "github.com/abema/go-mp4"

	"github.com/bluenviron/mj2wrap/internal/box"
)

type mp4Writer struct {
	w *gomp4.Writer
}

func newMP4Writer(w io.WriteSeeker) *mp4Writer {
	return &mp4Writer{
		w: gomp4.NewWriter(w),
	}
}

func (w *mp4Writer) offset() (int64, error) {
	return w.w.Seek(0, io.SeekCurrent)
}

func (w *mp4Writer) writeBoxStart(b gomp4.IImmutableBox) (int64, error) {
	bi := &gomp4.BoxInfo{
		Type: b.GetType(),
	}
	var err error
	bi, err = w.w.StartBox(bi)
	if err != nil {
		return 0, err
	}

	_, err = gomp4.Marshal(w.w, b, gomp4.Context{})
	if err != nil {
		return 0, err
	}

	return int64(bi.Offset), nil
}

func (w *mp4Writer) writeBoxEnd() error {
	_, err := w.w.EndBox()
	return err
}

func (w *mp4Writer) writeBox(b gomp4.IImmutableBox) (int64, error) {
	off, err := w.writeBoxStart(b)
	if err != nil {
		return 0, err
	}

	err = w.writeBoxEnd()
	if err != nil {
		return 0, err
	}

	return off, nil
}

// writeRawBox writes a box whose payload is already encoded.
func (w *mp4Writer) writeRawBox(typ box.Type, payload []byte) (int64, error) {
	bi, err := w.w.StartBox(&gomp4.BoxInfo{
		Type: typ.BoxType(),
	})
	if err != nil {
		return 0, err
	}

	_, err = w.w.Write(payload)
	if err != nil {
		return 0, err
	}

	err = w.writeBoxEnd()
	if err != nil {
		return 0, err
	}

	return int64(bi.Offset), nil
}

func (w *mp4Writer) writeHeader(h box.Header) error {
	return h.Write(w.w)
}

// rewriteHeader overwrites the header at off and restores the position.
func (w *mp4Writer) rewriteHeader(off int64, h box.Header) error {
	prevOff, err := w.offset()
	if err != nil {
		return err
	}

	_, err = w.w.Seek(off, io.SeekStart)
	if err != nil {
		return err
	}

	err = w.writeHeader(h)
	if err != nil {
		return err
	}

	_, err = w.w.Seek(prevOff, io.SeekStart)
	if err != nil {
		return err
	}

	return nil
}
