package mj2

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/bluenviron/mj2wrap/internal/bytesource"
	"github.com/bluenviron/mj2wrap/internal/logger"
)

// SequencePath returns the path of the i-th codestream of a sequence.
func SequencePath(basename string, ext string, i int) string {
	return fmt.Sprintf("%s_%05d.%s", basename, i, ext)
}

// WrapSequence muxes the codestreams basename_00000.<ext>, basename_00001.<ext> ...
// up to the first missing one into out.
// Either out is written entirely or it is not written at all.
func WrapSequence(ctx context.Context, basename string, out string, opts Options) (*Track, error) {
	opts = opts.withDefaults()

	s, err := CreateFile(out, opts)
	if err != nil {
		return nil, err
	}

	for i := 0; ; i++ {
		err = ctx.Err()
		if err != nil {
			s.Abort()
			return nil, err
		}

		fpath := SequencePath(basename, opts.InputExtension, i)

		var done bool
		done, err = wrapFile(s, fpath)
		if err != nil {
			s.Abort()
			return nil, fmt.Errorf("%s: %w", fpath, err)
		}

		if done {
			opts.Log.Log(logger.Debug, "%s not found, %d codestreams read", fpath, i)
			break
		}
	}

	return s.Close()
}

func wrapFile(s *FileSession, fpath string) (bool, error) {
	src, closer, err := bytesource.Open(fpath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, ioError(err)
	}
	defer closer.Close()

	_, err = s.Session.AppendFrom(src)
	return false, err
}
