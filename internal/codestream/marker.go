package codestream

import "fmt"

// Code is a marker code.
type Code uint16

// Marker codes.
const (
	CodeSOC Code = 0xFF4F // start of codestream
	CodeSIZ Code = 0xFF51 // image and tile size
	CodeCOD Code = 0xFF52
	CodeCOC Code = 0xFF53
	CodeTLM Code = 0xFF55
	CodePLM Code = 0xFF57
	CodePLT Code = 0xFF58
	CodeQCD Code = 0xFF5C
	CodeQCC Code = 0xFF5D
	CodeRGN Code = 0xFF5E
	CodePOC Code = 0xFF5F
	CodePPM Code = 0xFF60
	CodePPT Code = 0xFF61
	CodeCRG Code = 0xFF63
	CodeCOM Code = 0xFF64
	CodeSOT Code = 0xFF90 // start of tile-part
	CodeSOP Code = 0xFF91
	CodeEPH Code = 0xFF92
	CodeSOD Code = 0xFF93 // start of data
	CodeEOC Code = 0xFFD9 // end of codestream
)

var codeNames = map[Code]string{
	CodeSOC: "SOC",
	CodeSIZ: "SIZ",
	CodeCOD: "COD",
	CodeCOC: "COC",
	CodeTLM: "TLM",
	CodePLM: "PLM",
	CodePLT: "PLT",
	CodeQCD: "QCD",
	CodeQCC: "QCC",
	CodeRGN: "RGN",
	CodePOC: "POC",
	CodePPM: "PPM",
	CodePPT: "PPT",
	CodeCRG: "CRG",
	CodeCOM: "COM",
	CodeSOT: "SOT",
	CodeSOP: "SOP",
	CodeEPH: "EPH",
	CodeSOD: "SOD",
	CodeEOC: "EOC",
}

// String implements fmt.Stringer.
func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("0x%04X", uint16(c))
}

// HasLength returns whether the marker is followed by a length field.
func (c Code) HasLength() bool {
	switch {
	case c == CodeSOC, c == CodeSOD, c == CodeEOC, c == CodeEPH:
		return false

	case c >= 0xFF30 && c <= 0xFF3F:
		return false
	}
	return true
}

// Marker is a marker segment of a codestream.
// It holds no bytes, reads are performed on the referenced region when needed.
type Marker struct {
	Region Region
	Code   Code

	// Offset is the position of the segment payload, relative to the region.
	// For segments with a length field, the payload starts with it.
	Offset int64

	// Length is the payload length, zero for markers without a length field.
	Length uint16
}

// Bind allocates a Marker. It performs no reads.
func Bind(region Region, code Code, offset int64, length uint16) Marker {
	return Marker{
		Region: region,
		Code:   code,
		Offset: offset,
		Length: length,
	}
}

func (m Marker) abs(rel int64) int64 {
	return m.Region.Offset + m.Offset + rel
}

// U8 reads a byte at rel bytes from the start of the payload.
// Reads are not checked against Length.
func (m Marker) U8(rel int64) (uint8, error) {
	return m.Region.Source.Uint8At(m.abs(rel))
}

// U16 reads a big-endian 16-bit value at rel bytes from the start of the payload.
func (m Marker) U16(rel int64) (uint16, error) {
	return m.Region.Source.Uint16At(m.abs(rel))
}

// U32 reads a big-endian 32-bit value at rel bytes from the start of the payload.
func (m Marker) U32(rel int64) (uint32, error) {
	return m.Region.Source.Uint32At(m.abs(rel))
}

// String implements fmt.Stringer.
func (m Marker) String() string {
	return fmt.Sprintf("%s @%d len=%d", m.Code, m.Offset, m.Length)
}
