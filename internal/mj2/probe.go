package mj2

import (
	"fmt"

	gomp4 "github.com/abema/go-mp4"

	"github.com/bluenviron/mj2wrap/internal/box"
	"github.com/bluenviron/mj2wrap/internal/bytesource"
)

// VisualSampleEntrySize is the size of the fields of a visual sample entry, before its child boxes.
const VisualSampleEntrySize = 78

// TrackInfo contains the properties of a MJ2 container.
type TrackInfo struct {
	Width         uint32
	Height        uint32
	NumComponents uint16
	BPC           uint8

	// bit depth of each component, filled when BPC is mixed.
	ComponentBPC []uint8

	ColorSpace uint32
	FrameRate  uint32
	Samples    []Sample

	// position and total length of the media data box.
	PayloadOffset int64
	PayloadLength uint64
}

type prober struct {
	src *bytesource.Source
	end int64
}

func (p *prober) unmarshal(h box.Header, dst gomp4.IBox) error {
	sec, err := p.src.Section(h.PayloadOffset(), h.PayloadSize(p.end))
	if err != nil {
		return err
	}

	_, err = gomp4.Unmarshal(sec.ReadSeeker(), uint64(sec.Size()), dst, gomp4.Context{})
	if err != nil {
		return fmt.Errorf("%s: %w", h.Type, err)
	}
	return nil
}

func (p *prober) find(path ...box.Type) (box.Header, error) {
	return box.Find(p.src, 0, p.end, path...)
}

func findChild(children []box.Header, typ box.Type) (box.Header, bool) {
	for _, h := range children {
		if h.Type == typ {
			return h, true
		}
	}
	return box.Header{}, false
}

// Probe reads back the structure of a MJ2 container.
func Probe(src *bytesource.Source) (*TrackInfo, error) {
	p := &prober{
		src: src,
		end: src.Size(),
	}

	top, err := box.Collect(box.Walk(src, 0, p.end))
	if err != nil {
		return nil, err
	}

	err = p.checkFileType(top)
	if err != nil {
		return nil, err
	}

	mdat, ok := findChild(top, box.TypeMediaData)
	if !ok {
		return nil, fmt.Errorf("%s: %w", box.TypeMediaData, box.ErrNotFound)
	}

	ti := &TrackInfo{
		PayloadOffset: mdat.Offset,
		PayloadLength: uint64(mdat.End(p.end) - mdat.Offset),
	}

	err = p.readTrack(ti)
	if err != nil {
		return nil, err
	}

	err = p.readSampleEntry(ti)
	if err != nil {
		return nil, err
	}

	err = validateSamples(ti.Samples, ti.PayloadOffset, ti.PayloadLength)
	if err != nil {
		return nil, err
	}

	return ti, nil
}

func (p *prober) checkFileType(top []box.Header) error {
	if len(top) < 2 || top[0].Type != box.TypeSignature || top[1].Type != box.TypeFileType {
		return fmt.Errorf("missing signature and file type boxes: %w", box.ErrFormat)
	}

	var sig Signature
	err := p.unmarshal(top[0], &sig)
	if err != nil {
		return err
	}

	if sig.Signature != signature {
		return fmt.Errorf("invalid signature %x: %w", sig.Signature, box.ErrFormat)
	}

	var ftyp gomp4.Ftyp
	err = p.unmarshal(top[1], &ftyp)
	if err != nil {
		return err
	}

	if ftyp.MajorBrand != [4]byte{'m', 'j', 'p', '2'} {
		return fmt.Errorf("unsupported brand %q: %w", ftyp.MajorBrand[:], box.ErrFormat)
	}

	return nil
}

func stblPath(typ box.Type) []box.Type {
	return []box.Type{
		box.TypeMovie, box.TypeTrack, box.TypeMedia,
		box.TypeMediaInfo, box.TypeSampleTable, typ,
	}
}

func (p *prober) readTrack(ti *TrackInfo) error {
	var tkhd gomp4.Tkhd
	err := p.unmarshalPath(&tkhd, box.TypeMovie, box.TypeTrack, box.TypeTrackHeader)
	if err != nil {
		return err
	}

	ti.Width = tkhd.Width >> 16
	ti.Height = tkhd.Height >> 16

	var mdhd gomp4.Mdhd
	err = p.unmarshalPath(&mdhd, box.TypeMovie, box.TypeTrack, box.TypeMedia, box.TypeMediaHeader)
	if err != nil {
		return err
	}

	var stts gomp4.Stts
	err = p.unmarshalPath(&stts, stblPath(box.TypeTimeToSample)...)
	if err != nil {
		return err
	}

	if len(stts.Entries) == 0 || stts.Entries[0].SampleDelta == 0 {
		return fmt.Errorf("empty time to sample table: %w", box.ErrFormat)
	}
	ti.FrameRate = mdhd.Timescale / stts.Entries[0].SampleDelta

	var stsz gomp4.Stsz
	err = p.unmarshalPath(&stsz, stblPath(box.TypeSampleSize)...)
	if err != nil {
		return err
	}

	var stco gomp4.Stco
	err = p.unmarshalPath(&stco, stblPath(box.TypeChunkOffset)...)
	if err != nil {
		return err
	}

	if len(stco.ChunkOffset) != len(stsz.EntrySize) {
		return fmt.Errorf("%d chunks for %d samples: %w",
			len(stco.ChunkOffset), len(stsz.EntrySize), box.ErrFormat)
	}

	ti.Samples = make([]Sample, len(stsz.EntrySize))
	for i, size := range stsz.EntrySize {
		ti.Samples[i] = Sample{
			Offset: int64(stco.ChunkOffset[i]),
			Size:   size,
		}
	}

	return nil
}

func (p *prober) unmarshalPath(dst gomp4.IBox, path ...box.Type) error {
	h, err := p.find(path...)
	if err != nil {
		return err
	}
	return p.unmarshal(h, dst)
}

func (p *prober) readSampleEntry(ti *TrackInfo) error {
	stsd, err := p.find(stblPath(box.TypeSampleDesc)...)
	if err != nil {
		return err
	}

	// version, flags, entry count
	entry, err := box.Child(p.src, stsd, 8)
	if err != nil {
		return err
	}

	if entry.Type != box.TypeMJ2SampleEntry {
		return fmt.Errorf("unsupported sample entry %s: %w", entry.Type, box.ErrFormat)
	}

	entryEnd := entry.End(p.end)
	jp2h, err := box.Find(p.src, entry.PayloadOffset()+VisualSampleEntrySize, entryEnd, box.TypeJP2Header)
	if err != nil {
		return err
	}

	children, err := box.Collect(box.Children(p.src, jp2h, entryEnd))
	if err != nil {
		return err
	}

	h, ok := findChild(children, box.TypeImageHeader)
	if !ok {
		return fmt.Errorf("%s: %w", box.TypeImageHeader, box.ErrNotFound)
	}

	var ihdr Ihdr
	err = p.unmarshal(h, &ihdr)
	if err != nil {
		return err
	}

	ti.NumComponents = ihdr.NumComponents
	ti.BPC = ihdr.BPC

	if h, ok = findChild(children, box.TypeBitsPerComp); ok {
		var bpcc Bpcc
		err = p.unmarshal(h, &bpcc)
		if err != nil {
			return err
		}
		ti.ComponentBPC = bpcc.BitsPerComponent
	}

	if h, ok = findChild(children, box.TypeColorSpec); ok {
		ti.ColorSpace, err = p.readColr(h)
		if err != nil {
			return err
		}
	}

	return nil
}

func (p *prober) readColr(h box.Header) (uint32, error) {
	payload, err := p.src.BytesAt(h.PayloadOffset(), int(h.PayloadSize(p.end)))
	if err != nil {
		return 0, err
	}

	// only enumerated color spaces are described
	if len(payload) < 7 || payload[0] != colorMethodEnumerated {
		return 0, nil
	}

	return uint32(payload[3])<<24 | uint32(payload[4])<<16 | uint32(payload[5])<<8 | uint32(payload[6]), nil
}
