package codestream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bluenviron/mj2wrap/internal/bytesource"
	"github.com/bluenviron/mj2wrap/internal/test"
)

func TestMarkers(t *testing.T) {
	region := FromBytes(test.Codestream(64, 48, test.RGB8, 100))

	var markers []Marker
	for m, err := range Markers(region) {
		require.NoError(t, err)
		markers = append(markers, m)
	}

	require.Equal(t, []Marker{
		Bind(region, CodeSOC, 2, 0),
		Bind(region, CodeSIZ, 4, 47),
		Bind(region, CodeCOM, 53, 45),
		Bind(region, CodeEOC, 100, 0),
	}, markers)

	siz := markers[1]

	lsiz, err := siz.U16(0)
	require.NoError(t, err)
	require.Equal(t, uint16(47), lsiz)

	xsiz, err := siz.U32(4)
	require.NoError(t, err)
	require.Equal(t, uint32(64), xsiz)

	ssiz, err := siz.U8(38)
	require.NoError(t, err)
	require.Equal(t, uint8(7), ssiz)
}

func TestMarkersStopAtTilePart(t *testing.T) {
	buf := []byte{0xFF, 0x4F}
	buf = append(buf, test.SIZSegment(8, 8, test.Gray12)...)
	buf = append(buf,
		0xFF, 0x90, 0x00, 0x0a, 0, 0, 0, 0, 0, 0, 0, 1,
		0xFF, 0x93, 0xAA, 0xBB)

	var codes []Code
	for m, err := range Markers(FromBytes(buf)) {
		require.NoError(t, err)
		codes = append(codes, m.Code)
	}
	require.Equal(t, []Code{CodeSOC, CodeSIZ, CodeSOT}, codes)
}

func TestMarkersErrors(t *testing.T) {
	for _, ca := range []struct {
		name string
		byts []byte
		err  error
	}{
		{
			"no SOC",
			[]byte{0xFF, 0x51, 0x00, 0x02},
			ErrFormat,
		},
		{
			"empty",
			nil,
			bytesource.ErrTruncated,
		},
		{
			"not a marker",
			[]byte{0xFF, 0x4F, 0x12, 0x34},
			ErrFormat,
		},
		{
			"invalid length",
			[]byte{0xFF, 0x4F, 0xFF, 0x64, 0x00, 0x01},
			ErrFormat,
		},
		{
			"segment crosses the end",
			[]byte{0xFF, 0x4F, 0xFF, 0x64, 0x00, 0x10, 0x00},
			bytesource.ErrTruncated,
		},
		{
			"main header not terminated",
			[]byte{0xFF, 0x4F, 0xFF, 0x64, 0x00, 0x02},
			bytesource.ErrTruncated,
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			var err error
			for _, err = range Markers(FromBytes(ca.byts)) {
				if err != nil {
					break
				}
			}
			require.ErrorIs(t, err, ca.err)
		})
	}
}

func TestMarkerReadOutsideSource(t *testing.T) {
	m := Bind(FromBytes([]byte{0xFF, 0x4F, 0xFF, 0x51}), CodeSIZ, 4, 47)

	_, err := m.U32(4)
	require.ErrorIs(t, err, bytesource.ErrTruncated)
}

func TestCodeString(t *testing.T) {
	require.Equal(t, "SIZ", CodeSIZ.String())
	require.Equal(t, "0xFF30", Code(0xFF30).String())
	require.False(t, Code(0xFF30).HasLength())
	require.True(t, CodeCOM.HasLength())
}

func TestValidate(t *testing.T) {
	err := Validate(FromBytes(test.Codestream(64, 48, test.RGB8, 100)))
	require.NoError(t, err)

	for _, byts := range [][]byte{
		make([]byte, 100),
		{0xFF, 0x4F, 0xFF, 0x52},
		{0xFF},
		nil,
	} {
		err = Validate(FromBytes(byts))
		require.ErrorIs(t, err, ErrInvalidCodestream)
	}
}
