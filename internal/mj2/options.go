package mj2

import (
	"github.com/bluenviron/mj2wrap/internal/logger"
)

// Default values of Options.
const (
	DefaultFrameRate      = 25
	DefaultInputExtension = "j2k"
)

const (
	structureBaseSize      = 10000
	structureSizePerSample = 20
)

// Options are muxing options.
type Options struct {
	// samples per second. It defaults to 25.
	FrameRate uint32

	// maximum size of the movie structure. Zero means no limit.
	MaxStructureSize uint64

	// extension of input files of WrapSequence. It defaults to "j2k".
	InputExtension string

	// destination of diagnostics.
	Log logger.Writer
}

func (o Options) withDefaults() Options {
	if o.FrameRate == 0 {
		o.FrameRate = DefaultFrameRate
	}
	if o.InputExtension == "" {
		o.InputExtension = DefaultInputExtension
	}
	o.Log = logger.Or(o.Log)
	return o
}

// structureAllowance returns the worst-case size of the movie structure.
func structureAllowance(sampleCount int) uint64 {
	return structureBaseSize + structureSizePerSample*uint64(sampleCount)
}
