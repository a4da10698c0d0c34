package box

import (
	"fmt"

	gomp4 "github.com/abema/go-mp4"
)

// Type is a 4-byte box type. It is compared byte by byte and never
// assumed to be printable.
type Type [4]byte

// TypeFromString converts a 4-character string into a Type.
func TypeFromString(s string) Type {
	var t Type
	copy(t[:], s)
	return t
}

// String implements fmt.Stringer.
func (t Type) String() string {
	for _, c := range t {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%02x%02x%02x%02x", t[0], t[1], t[2], t[3])
		}
	}
	return string(t[:])
}

// BoxType converts the type into its go-mp4 counterpart.
func (t Type) BoxType() gomp4.BoxType {
	return gomp4.BoxType(t)
}

// JP2 / MJ2 box types.
var (
	TypeSignature      = TypeFromString("jP  ") // JPEG 2000 signature
	TypeFileType       = TypeFromString("ftyp")
	TypeMediaData      = TypeFromString("mdat")
	TypeCodestream     = TypeFromString("jp2c") // contiguous codestream
	TypeJP2Header      = TypeFromString("jp2h") // superbox
	TypeImageHeader    = TypeFromString("ihdr")
	TypeColorSpec      = TypeFromString("colr")
	TypeBitsPerComp    = TypeFromString("bpcc")
	TypeFieldCoding    = TypeFromString("fiel")
	TypeMJ2SampleEntry = TypeFromString("mjp2")
	TypeFree           = TypeFromString("free")
	TypeSkip           = TypeFromString("skip")
	TypeUUID           = TypeFromString("uuid")
	TypeXML            = TypeFromString("xml ")
)

// ISO base media box types used by the movie structure.
var (
	TypeMovie         = TypeFromString("moov")
	TypeMovieHeader   = TypeFromString("mvhd")
	TypeTrack         = TypeFromString("trak")
	TypeTrackHeader   = TypeFromString("tkhd")
	TypeMedia         = TypeFromString("mdia")
	TypeMediaHeader   = TypeFromString("mdhd")
	TypeHandler       = TypeFromString("hdlr")
	TypeMediaInfo     = TypeFromString("minf")
	TypeVideoHeader   = TypeFromString("vmhd")
	TypeDataInfo      = TypeFromString("dinf")
	TypeDataRef       = TypeFromString("dref")
	TypeSampleTable   = TypeFromString("stbl")
	TypeSampleDesc    = TypeFromString("stsd")
	TypeTimeToSample  = TypeFromString("stts")
	TypeSampleToChunk = TypeFromString("stsc")
	TypeSampleSize    = TypeFromString("stsz")
	TypeChunkOffset   = TypeFromString("stco")
)

// IsContainer returns whether boxes of this type hold only child boxes.
func IsContainer(t Type) bool {
	switch t {
	case TypeJP2Header, TypeMovie, TypeTrack, TypeMedia,
		TypeMediaInfo, TypeDataInfo, TypeSampleTable:
		return true
	}
	return false
}
