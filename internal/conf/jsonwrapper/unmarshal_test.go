package jsonwrapper_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bluenviron/mj2wrap/internal/conf"
	"github.com/bluenviron/mj2wrap/internal/conf/jsonwrapper"
	"github.com/bluenviron/mj2wrap/internal/logger"
)

type sequence struct {
	Basename  string `json:"basename"`
	FrameRate uint32 `json:"frameRate"`
}

type batch struct {
	Output    string     `json:"output"`
	Sequences []sequence `json:"sequences"`
	Exclude   *[]string  `json:"exclude"`
}

func TestUnmarshalConf(t *testing.T) {
	var c conf.Conf
	err := jsonwrapper.Unmarshal([]byte(`{"frameRate": 30, "logDestinations": ["file"]}`), &c)
	require.NoError(t, err)

	require.Equal(t, uint32(30), c.FrameRate)
	require.Equal(t, conf.LogDestinations{logger.DestinationFile}, c.LogDestinations)
	require.Equal(t, "j2k", c.InputExtension)
}

func TestUnmarshalErrors(t *testing.T) {
	for _, ca := range []struct {
		name string
		byts string
		err  string
	}{
		{
			"unknown parameter",
			`{"frameRate": 30, "logLevl": "debug"}`,
			"unknown parameter 'logLevl'",
		},
		{
			"null destinations",
			`{"logDestinations": null}`,
			"'logDestinations' cannot be null",
		},
		{
			"invalid json",
			`{"frameRate": `,
			"unexpected end of JSON input",
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			var c conf.Conf
			err := jsonwrapper.Unmarshal([]byte(ca.byts), &c)
			require.EqualError(t, err, ca.err)
		})
	}
}

func TestUnmarshalNestedUnknownParameter(t *testing.T) {
	var b batch
	err := jsonwrapper.Unmarshal([]byte(`{"sequences": [{"basename": "a"}, {"basename": "b", "fps": 30}]}`), &b)
	require.EqualError(t, err, "unknown parameter 'sequences[1].fps'")
}

func TestUnmarshalPreventSliceReuse(t *testing.T) {
	b := batch{
		Output: "out.mj2",
		Sequences: []sequence{
			{Basename: "old1", FrameRate: 24},
			{Basename: "old2", FrameRate: 30},
		},
	}

	err := jsonwrapper.Unmarshal([]byte(`{"sequences": [{"basename": "new1"}]}`), &b)
	require.NoError(t, err)

	require.Equal(t, batch{
		Output:    "out.mj2",
		Sequences: []sequence{{Basename: "new1"}},
	}, b)
}

func TestUnmarshalNullSlice(t *testing.T) {
	var b batch
	err := jsonwrapper.Unmarshal([]byte(`{"sequences": null}`), &b)
	require.EqualError(t, err, "'sequences' cannot be null")

	b = batch{Exclude: &[]string{"frame_00003.j2k"}}
	err = jsonwrapper.Unmarshal([]byte(`{"exclude": null}`), &b)
	require.NoError(t, err)
	require.Nil(t, b.Exclude)
}
