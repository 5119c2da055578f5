package region

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFile_CreateWriteFlushReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cds.bin")
	r, err := Create(path, 3*int64(os.Getpagesize())+100)
	require.NoError(t, err)
	require.Equal(t, path, r.Path())

	_, err = r.WriteAt([]byte("begin"), 0)
	require.NoError(t, err)
	_, err = r.WriteAt([]byte("end"), r.Size()-3)
	require.NoError(t, err)
	require.Equal(t, 2, r.Pending())

	require.NoError(t, r.Flush())
	require.Zero(t, r.Pending())
	require.NoError(t, r.Close())
	require.NoError(t, r.Close(), "double close is a no-op")

	r, err = Open(path)
	require.NoError(t, err)
	defer r.Close()

	got := make([]byte, 5)
	_, err = r.ReadAt(got, 0)
	require.NoError(t, err)
	require.Equal(t, []byte("begin"), got)

	got = make([]byte, 3)
	_, err = r.ReadAt(got, r.Size()-3)
	require.NoError(t, err)
	require.Equal(t, []byte("end"), got)
}

func TestFile_CloseFlushes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cds.bin")
	r, err := Create(path, 8192)
	require.NoError(t, err)
	_, err = r.WriteAt([]byte{0xA5}, 5000)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 8192)
	require.Equal(t, byte(0xA5), data[5000])
}

func TestFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Create(filepath.Join(dir, "zero.bin"), 0)
	require.Error(t, err)

	_, err = Open(filepath.Join(dir, "missing.bin"))
	require.Error(t, err)

	empty := filepath.Join(dir, "empty.bin")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = Open(empty)
	require.Error(t, err)

	r, err := Create(filepath.Join(dir, "small.bin"), 128)
	require.NoError(t, err)
	_, err = r.WriteAt(make([]byte, 10), 120)
	require.ErrorIs(t, err, ErrOutOfRange)
	require.Zero(t, r.Pending(), "rejected writes are not tracked")

	require.NoError(t, r.Close())
	_, err = r.ReadAt(make([]byte, 1), 0)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, r.Flush(), ErrClosed)
}

var _ Region = (*File)(nil)
var _ Region = (*Memory)(nil)
var _ Flusher = (*File)(nil)
