package core

import (
	"code.cloudfoundry.org/bytefmt"

	"github.com/bluenviron/mj2wrap/internal/logger"
	"github.com/bluenviron/mj2wrap/internal/mj2"
)

func (p *Core) wrap(basename string, output string) error {
	opts := p.conf.Options(p)

	p.Log(logger.Info, "wrapping %s at %d fps into %s",
		mj2.SequencePath(basename, opts.InputExtension, 0), opts.FrameRate, output)

	track, err := mj2.WrapSequence(p.ctx, basename, output, opts)
	if err != nil {
		return err
	}

	p.Log(logger.Info, "%s: %d frames, %dx%d, %d components, %s of media data",
		output, len(track.Samples), track.Width(), track.Height(),
		len(track.Geometry.Components), bytefmt.ByteSize(track.PayloadLength))

	return nil
}
