package test

import "encoding/binary"

// Component is a component of a test codestream.
type Component struct {
	Precision uint8
	Signed    bool
	DX        uint8
	DY        uint8
}

// RGB8 are three unsigned 8-bit components.
var RGB8 = []Component{
	{Precision: 8, DX: 1, DY: 1},
	{Precision: 8, DX: 1, DY: 1},
	{Precision: 8, DX: 1, DY: 1},
}

// Gray12 is a single unsigned 12-bit component.
var Gray12 = []Component{
	{Precision: 12, DX: 1, DY: 1},
}

// YUV420Mixed are 4:2:0 components with a signed chroma of different depth.
var YUV420Mixed = []Component{
	{Precision: 10, DX: 1, DY: 1},
	{Precision: 9, Signed: true, DX: 2, DY: 2},
	{Precision: 9, Signed: true, DX: 2, DY: 2},
}

// SIZSegment returns a SIZ marker segment, marker code included.
func SIZSegment(width uint32, height uint32, comps []Component) []byte {
	buf := make([]byte, 2+38+3*len(comps))

	binary.BigEndian.PutUint16(buf[0:], 0xFF51)
	binary.BigEndian.PutUint16(buf[2:], uint16(38+3*len(comps)))
	// Rsiz = 0
	binary.BigEndian.PutUint32(buf[6:], width)
	binary.BigEndian.PutUint32(buf[10:], height)
	// XOsiz, YOsiz = 0
	binary.BigEndian.PutUint32(buf[22:], width)
	binary.BigEndian.PutUint32(buf[26:], height)
	// XTOsiz, YTOsiz = 0
	binary.BigEndian.PutUint16(buf[38:], uint16(len(comps)))

	for i, c := range comps {
		ssiz := c.Precision - 1
		if c.Signed {
			ssiz |= 0x80
		}
		buf[40+3*i] = ssiz
		buf[41+3*i] = c.DX
		buf[42+3*i] = c.DY
	}

	return buf
}

// Codestream returns a codestream of exactly size bytes, made of SOC, SIZ,
// a COM segment that fills the remaining space, and EOC.
func Codestream(width uint32, height uint32, comps []Component, size int) []byte {
	buf := []byte{0xFF, 0x4F}
	buf = append(buf, SIZSegment(width, height, comps)...)

	lcom := size - len(buf) - 4
	if lcom < 4 {
		panic("codestream size too small")
	}

	com := make([]byte, 2+lcom)
	binary.BigEndian.PutUint16(com[0:], 0xFF64)
	binary.BigEndian.PutUint16(com[2:], uint16(lcom))
	binary.BigEndian.PutUint16(com[4:], 1) // Latin-1 text
	for i := 6; i < len(com); i++ {
		com[i] = 'x'
	}
	buf = append(buf, com...)

	return append(buf, 0xFF, 0xD9)
}
