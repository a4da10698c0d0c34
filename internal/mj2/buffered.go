package mj2

import (
	"io"

	"github.com/aler9/writerseeker"
)

// BufferedSession is a Session that writes into a non-seekable destination.
// The container is kept in memory until Close.
type BufferedSession struct {
	*Session

	ws *writerseeker.WriterSeeker
	w  io.Writer
}

// OpenBuffered opens a Session that writes into w when closed.
func OpenBuffered(w io.Writer, opts Options) (*BufferedSession, error) {
	ws := &writerseeker.WriterSeeker{}

	s, err := Open(ws, opts)
	if err != nil {
		return nil, err
	}

	return &BufferedSession{
		Session: s,
		ws:      ws,
		w:       w,
	}, nil
}

// Close completes the container and copies it into the destination.
// Nothing is written when the session fails.
func (s *BufferedSession) Close() (*Track, error) {
	track, err := s.Session.Close()
	if err != nil {
		return nil, err
	}

	_, err = s.w.Write(s.ws.Bytes())
	if err != nil {
		return nil, ioError(err)
	}

	return track, nil
}
