package mj2

import (
	"fmt"

	gomp4 "github.com/abema/go-mp4"

	"github.com/bluenviron/mj2wrap/internal/box"
	"github.com/bluenviron/mj2wrap/internal/codestream"
)

const (
	movieTimescale = 1000
	trackID        = 1
)

// Sample is a codestream stored in the media data box.
type Sample struct {
	// absolute position of the jp2c box.
	Offset int64

	// size of the jp2c box, header included.
	Size uint32
}

// End returns the position after the sample.
func (s Sample) End() int64 {
	return s.Offset + int64(s.Size)
}

// Track is the video track of a MJ2 container.
type Track struct {
	Geometry  *codestream.Geometry
	BPC       uint8
	FrameRate uint32
	Samples   []Sample

	// position and total length of the media data box.
	PayloadOffset int64
	PayloadLength uint64
}

// Width returns the track width.
func (t *Track) Width() uint32 {
	return t.Geometry.ComponentWidth(0)
}

// Height returns the track height.
func (t *Track) Height() uint32 {
	return t.Geometry.ComponentHeight(0)
}

// ColorSpace returns the enumerated color space.
func (t *Track) ColorSpace() uint32 {
	if len(t.Geometry.Components) > 2 {
		return ColorSpaceSRGB
	}
	return ColorSpaceGreyscale
}

// Validate checks that samples are ordered, contiguous
// and fill the media data box.
func (t *Track) Validate() error {
	return validateSamples(t.Samples, t.PayloadOffset, t.PayloadLength)
}

func validateSamples(samples []Sample, payloadOffset int64, payloadLength uint64) error {
	if len(samples) == 0 {
		return ErrEmptyInput
	}

	next := payloadOffset + box.SmallHeaderLength

	for i, sa := range samples {
		if sa.Offset != next {
			return fmt.Errorf("sample %d starts at %d instead of %d: %w", i, sa.Offset, next, box.ErrFormat)
		}
		next = sa.End()
	}

	if uint64(next-payloadOffset) != payloadLength {
		return fmt.Errorf("samples end at %d, media data ends at %d: %w",
			next, payloadOffset+int64(payloadLength), box.ErrFormat)
	}

	return nil
}

func (t *Track) duration() uint32 {
	return uint32((uint64(len(t.Samples)) * movieTimescale) / uint64(t.FrameRate))
}

func (t *Track) marshalMoov(w *mp4Writer) error {
	/*
		|moov|
		|    |mvhd|
		|    |trak|
		|    |    |tkhd|
		|    |    |mdia|
		|    |    |    |mdhd|
		|    |    |    |hdlr|
		|    |    |    |minf|
		|    |    |    |    |vmhd|
		|    |    |    |    |dinf|
		|    |    |    |    |    |dref|
		|    |    |    |    |    |    |url|
		|    |    |    |    |stbl|
		|    |    |    |    |    |stsd|
		|    |    |    |    |    |    |mjp2|
		|    |    |    |    |    |    |    |jp2h|
		|    |    |    |    |    |    |    |    |ihdr|
		|    |    |    |    |    |    |    |    |bpcc| (mixed depths)
		|    |    |    |    |    |    |    |    |colr|
		|    |    |    |    |    |    |    |fiel|
		|    |    |    |    |    |stts|
		|    |    |    |    |    |stsc|
		|    |    |    |    |    |stsz|
		|    |    |    |    |    |stco|
	*/

	_, err := w.writeBoxStart(&gomp4.Moov{}) // <moov>
	if err != nil {
		return err
	}

	_, err = w.writeBox(&gomp4.Mvhd{ // <mvhd/>
		Timescale:   movieTimescale,
		DurationV0:  t.duration(),
		Rate:        65536,
		Volume:      256,
		Matrix:      [9]int32{0x00010000, 0, 0, 0, 0x00010000, 0, 0, 0, 0x40000000},
		NextTrackID: trackID + 1,
	})
	if err != nil {
		return err
	}

	err = t.marshalTrak(w)
	if err != nil {
		return err
	}

	return w.writeBoxEnd() // </moov>
}

func (t *Track) marshalTrak(w *mp4Writer) error {
	_, err := w.writeBoxStart(&gomp4.Trak{}) // <trak>
	if err != nil {
		return err
	}

	_, err = w.writeBox(&gomp4.Tkhd{ // <tkhd/>
		FullBox: gomp4.FullBox{
			Flags: [3]byte{0, 0, 3},
		},
		TrackID:    trackID,
		DurationV0: t.duration(),
		Width:      t.Width() * 65536,
		Height:     t.Height() * 65536,
		Matrix:     [9]int32{0x10000, 0, 0, 0, 0x10000, 0, 0, 0, 0x40000000},
	})
	if err != nil {
		return err
	}

	_, err = w.writeBoxStart(&gomp4.Mdia{}) // <mdia>
	if err != nil {
		return err
	}

	_, err = w.writeBox(&gomp4.Mdhd{ // <mdhd/>
		Timescale:  t.FrameRate,
		DurationV0: uint32(len(t.Samples)),
		Language:   [3]byte{'u', 'n', 'd'},
	})
	if err != nil {
		return err
	}

	_, err = w.writeBox(&gomp4.Hdlr{ // <hdlr/>
		HandlerType: [4]byte{'v', 'i', 'd', 'e'},
		Name:        "VideoHandler",
	})
	if err != nil {
		return err
	}

	_, err = w.writeBoxStart(&gomp4.Minf{}) // <minf>
	if err != nil {
		return err
	}

	_, err = w.writeBox(&gomp4.Vmhd{ // <vmhd/>
		FullBox: gomp4.FullBox{
			Flags: [3]byte{0, 0, 1},
		},
	})
	if err != nil {
		return err
	}

	_, err = w.writeBoxStart(&gomp4.Dinf{}) // <dinf>
	if err != nil {
		return err
	}

	_, err = w.writeBoxStart(&gomp4.Dref{ // <dref>
		EntryCount: 1,
	})
	if err != nil {
		return err
	}

	_, err = w.writeBox(&gomp4.Url{ // <url/>
		FullBox: gomp4.FullBox{
			Flags: [3]byte{0, 0, 1},
		},
	})
	if err != nil {
		return err
	}

	err = w.writeBoxEnd() // </dref>
	if err != nil {
		return err
	}

	err = w.writeBoxEnd() // </dinf>
	if err != nil {
		return err
	}

	err = t.marshalStbl(w)
	if err != nil {
		return err
	}

	err = w.writeBoxEnd() // </minf>
	if err != nil {
		return err
	}

	err = w.writeBoxEnd() // </mdia>
	if err != nil {
		return err
	}

	return w.writeBoxEnd() // </trak>
}

func (t *Track) marshalStbl(w *mp4Writer) error {
	_, err := w.writeBoxStart(&gomp4.Stbl{}) // <stbl>
	if err != nil {
		return err
	}

	_, err = w.writeBoxStart(&gomp4.Stsd{ // <stsd>
		EntryCount: 1,
	})
	if err != nil {
		return err
	}

	err = t.marshalSampleEntry(w)
	if err != nil {
		return err
	}

	err = w.writeBoxEnd() // </stsd>
	if err != nil {
		return err
	}

	_, err = w.writeBox(&gomp4.Stts{ // <stts/>
		EntryCount: 1,
		Entries: []gomp4.SttsEntry{{
			SampleCount: uint32(len(t.Samples)),
			SampleDelta: 1,
		}},
	})
	if err != nil {
		return err
	}

	// one sample per chunk
	_, err = w.writeBox(&gomp4.Stsc{ // <stsc/>
		EntryCount: 1,
		Entries: []gomp4.StscEntry{{
			FirstChunk:             1,
			SamplesPerChunk:        1,
			SampleDescriptionIndex: 1,
		}},
	})
	if err != nil {
		return err
	}

	sampleSizes := make([]uint32, len(t.Samples))
	chunkOffsets := make([]uint32, len(t.Samples))

	for i, sa := range t.Samples {
		sampleSizes[i] = sa.Size
		chunkOffsets[i] = uint32(sa.Offset)
	}

	_, err = w.writeBox(&gomp4.Stsz{ // <stsz/>
		SampleSize:  0,
		SampleCount: uint32(len(sampleSizes)),
		EntrySize:   sampleSizes,
	})
	if err != nil {
		return err
	}

	_, err = w.writeBox(&gomp4.Stco{ // <stco/>
		EntryCount:  uint32(len(chunkOffsets)),
		ChunkOffset: chunkOffsets,
	})
	if err != nil {
		return err
	}

	return w.writeBoxEnd() // </stbl>
}

func (t *Track) marshalSampleEntry(w *mp4Writer) error {
	var compressorName [32]byte
	compressorName[0] = byte(copy(compressorName[1:], "Motion JPEG2000"))

	_, err := w.writeBoxStart(&gomp4.VisualSampleEntry{ // <mjp2>
		SampleEntry: gomp4.SampleEntry{
			AnyTypeBox: gomp4.AnyTypeBox{
				Type: box.TypeMJ2SampleEntry.BoxType(),
			},
			DataReferenceIndex: 1,
		},
		Width:           uint16(t.Width()),
		Height:          uint16(t.Height()),
		Horizresolution: 4718592,
		Vertresolution:  4718592,
		FrameCount:      1,
		Compressorname:  compressorName,
		Depth:           24,
		PreDefined3:     -1,
	})
	if err != nil {
		return err
	}

	_, err = w.writeBoxStart(&Jp2h{}) // <jp2h>
	if err != nil {
		return err
	}

	_, err = w.writeBox(&Ihdr{ // <ihdr/>
		Height:        t.Height(),
		Width:         t.Width(),
		NumComponents: uint16(len(t.Geometry.Components)),
		BPC:           t.BPC,
		Compression:   compressionJPEG2000,
	})
	if err != nil {
		return err
	}

	if t.BPC == codestream.MixedBPC {
		bpcs := make([]uint8, len(t.Geometry.Components))
		for i := range bpcs {
			bpcs[i] = t.Geometry.ComponentBPC(i)
		}

		_, err = w.writeBox(&Bpcc{ // <bpcc/>
			BitsPerComponent: bpcs,
		})
		if err != nil {
			return err
		}
	}

	_, err = w.writeRawBox(box.TypeColorSpec, marshalColr(t.ColorSpace())) // <colr/>
	if err != nil {
		return err
	}

	err = w.writeBoxEnd() // </jp2h>
	if err != nil {
		return err
	}

	_, err = w.writeBox(&Fiel{ // <fiel/>
		FieldCount: 1,
	})
	if err != nil {
		return err
	}

	return w.writeBoxEnd() // </mjp2>
}
