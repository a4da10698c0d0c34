package codestream

// MixedBPC is the bit depth value used when components do not share
// precision and sign.
const MixedBPC = 255

// Component contains the parameters of an image component.
type Component struct {
	// bit depth, 1 to 38
	Precision uint8
	Signed    bool

	// subsampling factors
	DX uint8
	DY uint8
}

// BPC returns the packed bit depth, (signed << 7) | (precision - 1).
func (c Component) BPC() uint8 {
	v := c.Precision - 1
	if c.Signed {
		v |= 0x80
	}
	return v
}

// Geometry contains the image geometry stored in the SIZ marker.
type Geometry struct {
	// reference grid
	X0 uint32
	Y0 uint32
	X1 uint32
	Y1 uint32

	Components []Component
}

// Width returns the image width on the reference grid.
func (g *Geometry) Width() uint32 {
	return g.X1 - g.X0
}

// Height returns the image height on the reference grid.
func (g *Geometry) Height() uint32 {
	return g.Y1 - g.Y0
}

func ceilDiv(a uint32, b uint8) uint32 {
	return (a + uint32(b) - 1) / uint32(b)
}

// ComponentWidth returns the width of the sample grid of a component.
func (g *Geometry) ComponentWidth(i int) uint32 {
	return ceilDiv(g.Width(), g.Components[i].DX)
}

// ComponentHeight returns the height of the sample grid of a component.
func (g *Geometry) ComponentHeight(i int) uint32 {
	return ceilDiv(g.Height(), g.Components[i].DY)
}

// ComponentBPC returns the packed bit depth of a component.
func (g *Geometry) ComponentBPC(i int) uint8 {
	return g.Components[i].BPC()
}

// BPC returns the packed bit depth shared by all components,
// or MixedBPC when they differ.
func (g *Geometry) BPC() uint8 {
	first := g.Components[0]

	for _, c := range g.Components[1:] {
		if c.Precision != first.Precision || c.Signed != first.Signed {
			return MixedBPC
		}
	}

	return first.BPC()
}
