package conf

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bluenviron/mj2wrap/internal/logger"
	"github.com/bluenviron/mj2wrap/internal/mj2"
)

func writeTempFile(t *testing.T, byts []byte) string {
	fpath := filepath.Join(t.TempDir(), "mj2wrap.yml")
	err := os.WriteFile(fpath, byts, 0o644)
	require.NoError(t, err)
	return fpath
}

func TestConfFromFile(t *testing.T) {
	fpath := writeTempFile(t, []byte("logLevel: debug\n"+
		"logDestinations: [stdout, file]\n"+
		"logFile: /tmp/wrap.log\n"+
		"frameRate: 24\n"+
		"maxStructureSize: 1M\n"+
		"inputExtension: jpc\n"))

	conf, confPath, err := Load(fpath, nil)
	require.NoError(t, err)
	require.Equal(t, fpath, confPath)

	require.Equal(t, &Conf{
		LogLevel:         LogLevel(logger.Debug),
		LogDestinations:  LogDestinations{logger.DestinationStdout, logger.DestinationFile},
		LogFile:          "/tmp/wrap.log",
		FrameRate:        24,
		MaxStructureSize: 1024 * 1024,
		InputExtension:   "jpc",
	}, conf)

	require.Equal(t, mj2.Options{
		FrameRate:        24,
		MaxStructureSize: 1024 * 1024,
		InputExtension:   "jpc",
		Log:              logger.Discard,
	}, conf.Options(logger.Discard))
}

func TestConfDefaults(t *testing.T) {
	conf, confPath, err := Load("", []string{filepath.Join(t.TempDir(), "missing.yml")})
	require.NoError(t, err)
	require.Equal(t, "", confPath)

	require.Equal(t, &Conf{
		LogLevel:        LogLevel(logger.Info),
		LogDestinations: LogDestinations{logger.DestinationStdout},
		LogFile:         "mj2wrap.log",
		FrameRate:       mj2.DefaultFrameRate,
		InputExtension:  mj2.DefaultInputExtension,
	}, conf)

	l := conf.Logger()
	require.Equal(t, logger.Info, l.Level)
	require.Equal(t, []logger.Destination{logger.DestinationStdout}, l.Destinations)
}

func TestConfDefaultPath(t *testing.T) {
	fpath := writeTempFile(t, []byte("frameRate: 50\n"))

	conf, confPath, err := Load("", []string{"/nonexisting/mj2wrap.yml", fpath})
	require.NoError(t, err)
	require.Equal(t, fpath, confPath)
	require.Equal(t, uint32(50), conf.FrameRate)
	require.Equal(t, mj2.DefaultInputExtension, conf.InputExtension)
}

func TestConfEmptyFile(t *testing.T) {
	fpath := writeTempFile(t, []byte("\n"))

	conf, _, err := Load(fpath, nil)
	require.NoError(t, err)
	require.Equal(t, uint32(mj2.DefaultFrameRate), conf.FrameRate)
}

func TestConfFromEnv(t *testing.T) {
	fpath := writeTempFile(t, []byte("frameRate: 24\n"))

	t.Setenv("MJ2WRAP_FRAMERATE", "30")
	t.Setenv("MJ2WRAP_LOGLEVEL", "warn")
	t.Setenv("MJ2WRAP_LOGDESTINATIONS", "stdout,file")
	t.Setenv("MJ2WRAP_LOGSTRUCTURED", "yes")
	t.Setenv("MJ2WRAP_MAXSTRUCTURESIZE", "64KB")

	conf, _, err := Load(fpath, nil)
	require.NoError(t, err)

	require.Equal(t, uint32(30), conf.FrameRate)
	require.Equal(t, LogLevel(logger.Warn), conf.LogLevel)
	require.Equal(t, LogDestinations{logger.DestinationStdout, logger.DestinationFile}, conf.LogDestinations)
	require.True(t, conf.LogStructured)
	require.Equal(t, StringSize(64*1024), conf.MaxStructureSize)
}

func TestConfErrors(t *testing.T) {
	for _, ca := range []struct {
		name string
		conf string
		err  string
	}{
		{
			"non existent parameter",
			`invalid: param`,
			"unknown parameter 'invalid'",
		},
		{
			"zero frame rate",
			`frameRate: 0`,
			"'frameRate' must be greater than zero",
		},
		{
			"empty extension",
			`inputExtension: ""`,
			"'inputExtension' must not be empty",
		},
		{
			"dotted extension",
			`inputExtension: .j2k`,
			"'inputExtension' must not start with a dot",
		},
		{
			"file destination without file",
			"logDestinations: [file]\n" +
				"logFile: \"\"",
			"'logFile' must be set when logging to file",
		},
		{
			"duplicate destination",
			`logDestinations: [stdout, stdout]`,
			"log destination set twice",
		},
		{
			"invalid destination",
			`logDestinations: [syslog]`,
			"invalid log destination: syslog",
		},
		{
			"invalid log level",
			`logLevel: verbose`,
			"invalid log level: 'verbose'",
		},
		{
			"invalid size",
			`maxStructureSize: lots`,
			"byte quantity must be a positive integer",
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			fpath := writeTempFile(t, []byte(ca.conf))

			_, _, err := Load(fpath, nil)
			require.ErrorContains(t, err, ca.err)
		})
	}
}

func TestConfMarshal(t *testing.T) {
	conf, _, err := Load("", nil)
	require.NoError(t, err)

	byts, err := json.Marshal(conf)
	require.NoError(t, err)

	require.JSONEq(t, `{
		"logLevel": "info",
		"logDestinations": ["stdout"],
		"logStructured": false,
		"logFile": "mj2wrap.log",
		"frameRate": 25,
		"maxStructureSize": "0",
		"inputExtension": "j2k"
	}`, string(byts))

	var conf2 Conf
	err = json.Unmarshal(byts, &conf2)
	require.NoError(t, err)
	require.Equal(t, conf, &conf2)
}
