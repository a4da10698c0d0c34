package mj2

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bluenviron/mj2wrap/internal/bytesource"
	"github.com/bluenviron/mj2wrap/internal/codestream"
	"github.com/bluenviron/mj2wrap/internal/test"
)

func dirEntries(t *testing.T, dir string) []string {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

func probeFile(t *testing.T, fpath string) *TrackInfo {
	src, closer, err := bytesource.Open(fpath)
	require.NoError(t, err)
	defer closer.Close()

	ti, err := Probe(src)
	require.NoError(t, err)
	return ti
}

func TestFileSession(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.mj2")

	s, err := CreateFile(out, Options{Log: test.NilLogger})
	require.NoError(t, err)

	_, err = os.Stat(out)
	require.ErrorIs(t, err, os.ErrNotExist)

	for range 3 {
		_, err = s.Append(test.Codestream(64, 48, test.RGB8, 100))
		require.NoError(t, err)
	}

	track, err := s.Close()
	require.NoError(t, err)
	require.Equal(t, []string{"out.mj2"}, dirEntries(t, dir))

	ti := probeFile(t, out)
	require.Equal(t, track.Samples, ti.Samples)
	require.Equal(t, uint64(332), ti.PayloadLength)

	_, err = s.Close()
	require.ErrorIs(t, err, ErrSessionClosed)
}

func TestFileSessionFailures(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		dir := t.TempDir()

		s, err := CreateFile(filepath.Join(dir, "out.mj2"), Options{})
		require.NoError(t, err)

		_, err = s.Close()
		require.ErrorIs(t, err, ErrEmptyInput)
		require.Empty(t, dirEntries(t, dir))
	})

	t.Run("invalid codestream", func(t *testing.T) {
		dir := t.TempDir()

		s, err := CreateFile(filepath.Join(dir, "out.mj2"), Options{})
		require.NoError(t, err)

		_, err = s.Append([]byte{1, 2, 3, 4})
		require.ErrorIs(t, err, codestream.ErrInvalidCodestream)
		require.Empty(t, dirEntries(t, dir))
	})

	t.Run("abort", func(t *testing.T) {
		dir := t.TempDir()

		s, err := CreateFile(filepath.Join(dir, "out.mj2"), Options{})
		require.NoError(t, err)

		_, err = s.Append(test.Codestream(64, 48, test.RGB8, 100))
		require.NoError(t, err)

		s.Abort()
		require.Empty(t, dirEntries(t, dir))

		_, err = s.Close()
		require.ErrorIs(t, err, ErrSessionClosed)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := CreateFile(filepath.Join(t.TempDir(), "missing", "out.mj2"), Options{})
		require.ErrorIs(t, err, ErrIO)
	})
}

func TestWrapSequence(t *testing.T) {
	dir := t.TempDir()

	frames := [][]byte{
		test.Codestream(64, 48, test.RGB8, 100),
		test.Codestream(64, 48, test.RGB8, 150),
		test.Codestream(64, 48, test.RGB8, 120),
	}

	base, err := test.WriteSequence(dir, "frame", "j2k", frames)
	require.NoError(t, err)

	// gaps end the sequence
	_, err = test.WriteSequence(dir, "gap", "j2k", frames)
	require.NoError(t, err)
	require.NoError(t, os.Rename(
		filepath.Join(dir, "gap_00002.j2k"),
		filepath.Join(dir, "frame_00004.j2k")))

	out := filepath.Join(dir, "out.mj2")

	track, err := WrapSequence(context.Background(), base, out, Options{})
	require.NoError(t, err)
	require.Equal(t, []Sample{
		{Offset: 40, Size: 108},
		{Offset: 148, Size: 158},
		{Offset: 306, Size: 128},
	}, track.Samples)

	ti := probeFile(t, out)
	require.Equal(t, track.Samples, ti.Samples)
	require.Equal(t, uint32(64), ti.Width)
}

func TestWrapSequenceExtension(t *testing.T) {
	dir := t.TempDir()

	base, err := test.WriteSequence(dir, "frame", "jpc", [][]byte{
		test.Codestream(8, 8, test.Gray12, 64),
	})
	require.NoError(t, err)

	out := filepath.Join(dir, "out.mj2")

	_, err = WrapSequence(context.Background(), base, out, Options{})
	require.ErrorIs(t, err, ErrEmptyInput)
	require.NoFileExists(t, out)

	track, err := WrapSequence(context.Background(), base, out, Options{InputExtension: "jpc"})
	require.NoError(t, err)
	require.Len(t, track.Samples, 1)
	require.FileExists(t, out)
}

func TestWrapSequenceFailures(t *testing.T) {
	t.Run("invalid codestream", func(t *testing.T) {
		dir := t.TempDir()

		base, err := test.WriteSequence(dir, "frame", "j2k", [][]byte{{1, 2, 3, 4}})
		require.NoError(t, err)

		out := filepath.Join(dir, "out.mj2")

		_, err = WrapSequence(context.Background(), base, out, Options{})
		require.ErrorIs(t, err, codestream.ErrInvalidCodestream)
		require.Equal(t, []string{"frame_00000.j2k"}, dirEntries(t, dir))
	})

	t.Run("canceled", func(t *testing.T) {
		dir := t.TempDir()

		base, err := test.WriteSequence(dir, "frame", "j2k", [][]byte{
			test.Codestream(64, 48, test.RGB8, 100),
		})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		out := filepath.Join(dir, "out.mj2")

		_, err = WrapSequence(ctx, base, out, Options{})
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, []string{"frame_00000.j2k"}, dirEntries(t, dir))
	})

	t.Run("unreadable input", func(t *testing.T) {
		dir := t.TempDir()

		require.NoError(t, os.Mkdir(filepath.Join(dir, "frame_00000.j2k"), 0o755))

		_, err := WrapSequence(context.Background(), filepath.Join(dir, "frame"),
			filepath.Join(dir, "out.mj2"), Options{})
		require.Error(t, err)
		require.NoFileExists(t, filepath.Join(dir, "out.mj2"))
	})
}
