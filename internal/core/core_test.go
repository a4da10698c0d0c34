package core

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bluenviron/mj2wrap/internal/test"
)

func writeConf(t *testing.T, dir string, extra string) (string, string) {
	logPath := filepath.Join(dir, "mj2wrap.log")
	confPath := filepath.Join(dir, "mj2wrap.yml")

	err := os.WriteFile(confPath, []byte("logLevel: debug\n"+
		"logDestinations: [file]\n"+
		"logFile: "+logPath+"\n"+
		extra), 0o644)
	require.NoError(t, err)

	return confPath, logPath
}

func TestWrapAndDump(t *testing.T) {
	dir := t.TempDir()
	confPath, logPath := writeConf(t, dir, "")

	base, err := test.WriteSequence(dir, "frame", "j2k", [][]byte{
		test.Codestream(64, 48, test.RGB8, 100),
		test.Codestream(64, 48, test.RGB8, 100),
	})
	require.NoError(t, err)

	out := filepath.Join(dir, "out.mj2")

	var stdout bytes.Buffer
	code := Run(context.Background(), []string{"--conf", confPath, "wrap", base, out}, &stdout)
	require.Equal(t, 0, code)
	require.Empty(t, stdout.String())
	require.FileExists(t, out)

	logs, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(logs), "2 frames, 64x48, 3 components, 224B of media data")

	stdout.Reset()
	code = Run(context.Background(), []string{"--conf", confPath, "dump", out}, &stdout)
	require.Equal(t, 0, code)

	dump := stdout.String()
	require.Contains(t, dump, "jP   @0 len=12\n")
	require.Contains(t, dump, "ftyp @12 len=20\n")
	require.Contains(t, dump, "mdat @32 len=224\n")
	require.Contains(t, dump, "  jp2c @40 len=108\n")
	require.Contains(t, dump, "    SIZ @4 len=47\n")
	require.Contains(t, dump, "    image 64x48 at (0,0), 3 components, bpc 7\n")
	require.Contains(t, dump, "      component 2: 64x48, 8 bits, signed false\n")
	require.Contains(t, dump, "moov @256")
	require.Contains(t, dump, "            mjp2 @")
	require.Contains(t, dump, "                ihdr @")
}

func TestWrapFrameRateFlag(t *testing.T) {
	dir := t.TempDir()
	confPath, logPath := writeConf(t, dir, "frameRate: 24\n")

	base, err := test.WriteSequence(dir, "frame", "j2k", [][]byte{
		test.Codestream(16, 16, test.Gray12, 64),
	})
	require.NoError(t, err)

	var stdout bytes.Buffer
	code := Run(context.Background(), []string{
		"--conf", confPath, "wrap", "--frame-rate", "30", base, filepath.Join(dir, "out.mj2"),
	}, &stdout)
	require.Equal(t, 0, code)

	logs, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(logs), "at 30 fps")
}

func TestWrapFailure(t *testing.T) {
	dir := t.TempDir()
	confPath, logPath := writeConf(t, dir, "")

	out := filepath.Join(dir, "out.mj2")

	var stdout bytes.Buffer
	code := Run(context.Background(), []string{"--conf", confPath, "wrap", filepath.Join(dir, "missing"), out}, &stdout)
	require.Equal(t, 1, code)
	require.NoFileExists(t, out)

	logs, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(logs), "no codestreams")
}

func TestDumpCodestream(t *testing.T) {
	dir := t.TempDir()
	confPath, _ := writeConf(t, dir, "")

	fpath := filepath.Join(dir, "frame.j2k")
	err := os.WriteFile(fpath, test.Codestream(33, 17, test.YUV420Mixed, 120), 0o644)
	require.NoError(t, err)

	var stdout bytes.Buffer
	code := Run(context.Background(), []string{"--conf", confPath, "dump", fpath}, &stdout)
	require.Equal(t, 0, code)

	require.Equal(t, "SOC @2 len=0\n"+
		"SIZ @4 len=47\n"+
		"COM @53 len=65\n"+
		"EOC @120 len=0\n"+
		"image 33x17 at (0,0), 3 components, bpc 255\n"+
		"  component 0: 33x17, 10 bits, signed false\n"+
		"  component 1: 17x9, 9 bits, signed true\n"+
		"  component 2: 17x9, 9 bits, signed true\n", stdout.String())
}

func TestRunErrors(t *testing.T) {
	t.Run("invalid arguments", func(t *testing.T) {
		var stdout bytes.Buffer
		code := Run(context.Background(), []string{"unknown"}, &stdout)
		require.Equal(t, 1, code)
		require.Contains(t, stdout.String(), "ERR: ")
	})

	t.Run("invalid configuration", func(t *testing.T) {
		dir := t.TempDir()
		confPath, _ := writeConf(t, dir, "frameRate: 0\n")

		var stdout bytes.Buffer
		code := Run(context.Background(), []string{"--conf", confPath, "dump", confPath}, &stdout)
		require.Equal(t, 1, code)
		require.Equal(t, "ERR: 'frameRate' must be greater than zero\n", stdout.String())
	})

	t.Run("missing file", func(t *testing.T) {
		dir := t.TempDir()
		confPath, logPath := writeConf(t, dir, "")

		var stdout bytes.Buffer
		code := Run(context.Background(), []string{"--conf", confPath, "dump", filepath.Join(dir, "missing")}, &stdout)
		require.Equal(t, 1, code)

		logs, err := os.ReadFile(logPath)
		require.NoError(t, err)
		require.Contains(t, string(logs), "no such file or directory")
	})
}
