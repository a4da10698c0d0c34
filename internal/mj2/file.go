package mj2

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/bluenviron/mj2wrap/internal/bytesource"
	"github.com/bluenviron/mj2wrap/internal/logger"
)

// FileSession is a Session that writes into a file.
// The container is written into a temporary sibling file that is moved
// into place by Close, and removed on failure.
type FileSession struct {
	*Session

	f        *os.File
	fpath    string
	partPath string
	closed   bool
}

// CreateFile opens a Session that writes into fpath.
func CreateFile(fpath string, opts Options) (*FileSession, error) {
	partPath := fmt.Sprintf("%s.%s.part", fpath, uuid.New())

	f, err := os.Create(partPath)
	if err != nil {
		return nil, ioError(err)
	}

	s, err := Open(f, opts)
	if err != nil {
		f.Close()
		os.Remove(partPath)
		return nil, err
	}

	return &FileSession{
		Session:  s,
		f:        f,
		fpath:    fpath,
		partPath: partPath,
	}, nil
}

// Append writes a codestream. The file is removed on failure.
func (s *FileSession) Append(cs []byte) (Sample, error) {
	sa, err := s.Session.Append(cs)
	if err != nil {
		s.Abort()
		return Sample{}, err
	}
	return sa, nil
}

// AppendFrom writes a codestream read from a source. The file is removed on failure.
func (s *FileSession) AppendFrom(src *bytesource.Source) (Sample, error) {
	sa, err := s.Session.AppendFrom(src)
	if err != nil {
		s.Abort()
		return Sample{}, err
	}
	return sa, nil
}

// Close completes the container and moves it into place.
func (s *FileSession) Close() (*Track, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}

	track, err := s.Session.Close()
	if err != nil {
		s.Abort()
		return nil, err
	}

	s.closed = true

	err = s.f.Close()
	if err != nil {
		os.Remove(s.partPath)
		return nil, ioError(err)
	}

	err = os.Rename(s.partPath, s.fpath)
	if err != nil {
		os.Remove(s.partPath)
		return nil, ioError(err)
	}

	return track, nil
}

// Abort discards the container.
func (s *FileSession) Abort() {
	if s.closed {
		return
	}
	s.closed = true

	if s.Session.state != stateFailed {
		s.Session.fail(errors.New("aborted"))
	}

	s.f.Close()

	err := os.Remove(s.partPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		s.opts.Log.Log(logger.Warn, "unable to remove %s: %v", s.partPath, err)
	}
}
