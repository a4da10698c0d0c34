package mj2

import (
	gomp4 "github.com/abema/go-mp4"

	"github.com/bluenviron/mj2wrap/internal/box"
)

// JP2 color spaces.
const (
	ColorSpaceSRGB      = 16
	ColorSpaceGreyscale = 17
)

const (
	// ihdr compression type of JPEG 2000
	compressionJPEG2000 = 7

	// colr method of enumerated color spaces
	colorMethodEnumerated = 1
)

var signature = [4]byte{0x0d, 0x0a, 0x87, 0x0a}

func init() { //nolint:gochecknoinits
	gomp4.AddBoxDef(&Signature{})
	gomp4.AddBoxDef(&Jp2h{})
	gomp4.AddBoxDef(&Ihdr{})
	gomp4.AddBoxDef(&Bpcc{})
	gomp4.AddBoxDef(&Fiel{})
	gomp4.AddAnyTypeBoxDef(&gomp4.VisualSampleEntry{}, box.TypeMJ2SampleEntry.BoxType())
}

// Signature is a JPEG 2000 signature box.
type Signature struct {
	gomp4.Box
	Signature [4]byte `mp4:"0,size=8"`
}

// GetType implements gomp4.IBox.
func (*Signature) GetType() gomp4.BoxType {
	return box.TypeSignature.BoxType()
}

// Jp2h is a JP2 header box. It only contains other boxes.
type Jp2h struct {
	gomp4.Box
}

// GetType implements gomp4.IBox.
func (*Jp2h) GetType() gomp4.BoxType {
	return box.TypeJP2Header.BoxType()
}

// Ihdr is a JP2 image header box.
type Ihdr struct {
	gomp4.Box
	Height            uint32 `mp4:"0,size=32"`
	Width             uint32 `mp4:"1,size=32"`
	NumComponents     uint16 `mp4:"2,size=16"`
	BPC               uint8  `mp4:"3,size=8"`
	Compression       uint8  `mp4:"4,size=8"`
	UnknownColorSpace uint8  `mp4:"5,size=8"`
	IPR               uint8  `mp4:"6,size=8"`
}

// GetType implements gomp4.IBox.
func (*Ihdr) GetType() gomp4.BoxType {
	return box.TypeImageHeader.BoxType()
}

// Bpcc is a JP2 bits per component box.
type Bpcc struct {
	gomp4.Box
	BitsPerComponent []uint8 `mp4:"0,size=8"`
}

// GetType implements gomp4.IBox.
func (*Bpcc) GetType() gomp4.BoxType {
	return box.TypeBitsPerComp.BoxType()
}

// Fiel is a MJ2 field coding box.
type Fiel struct {
	gomp4.Box
	FieldCount uint8 `mp4:"0,size=8"`
	FieldOrder uint8 `mp4:"1,size=8"`
}

// GetType implements gomp4.IBox.
func (*Fiel) GetType() gomp4.BoxType {
	return box.TypeFieldCoding.BoxType()
}

// colr has the same type of the ISO color box known by go-mp4,
// therefore it is encoded by hand.
func marshalColr(colorSpace uint32) []byte {
	return []byte{
		colorMethodEnumerated,
		0, // precedence
		0, // approximation
		byte(colorSpace >> 24),
		byte(colorSpace >> 16),
		byte(colorSpace >> 8),
		byte(colorSpace),
	}
}
