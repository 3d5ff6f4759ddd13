package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherstation/internal/weather"
)

func TestFileStoreLoadEmpty(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Load()
	assert.ErrorIs(t, err, ErrNoData)
}

func TestFileStoreRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	var status weather.CategorySet
	status.Add(weather.CategoryCurrent, weather.CategoryDaily)
	meta := Meta{Day: 200, Hour: 14, Status: status}

	require.NoError(t, s.Save(meta, map[string][]byte{
		BlobCurrent: []byte(`{"temp":21.5}`),
		BlobDaily:   []byte(`[]`),
	}))

	snap, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, meta, snap.Meta)
	assert.Equal(t, []byte(`{"temp":21.5}`), snap.Blobs[BlobCurrent])
	assert.Equal(t, []byte(`[]`), snap.Blobs[BlobDaily])
	assert.NotContains(t, snap.Blobs, BlobHourly)
}

func TestFileStorePartialSaveKeepsOtherBlobs(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(Meta{Day: 10, Hour: 1}, map[string][]byte{
		BlobHourly: []byte(`["slots"]`),
	}))

	// A later save that names only the current blob must not disturb the
	// hourly payload written earlier.
	require.NoError(t, s.Save(Meta{Day: 10, Hour: 2}, map[string][]byte{
		BlobCurrent: []byte(`{}`),
	}))

	snap, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Meta.Hour)
	assert.Equal(t, []byte(`["slots"]`), snap.Blobs[BlobHourly])
	assert.Equal(t, []byte(`{}`), snap.Blobs[BlobCurrent])
}

func TestFileStoreCorruptMetaReadsAsEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "meta.json"), []byte("not json"), 0o644))

	_, err = s.Load()
	assert.ErrorIs(t, err, ErrNoData)
}

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(BackendFile, dir)
	require.NoError(t, err)
	s.Close()

	s, err = Open(BackendSQLite, filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	s.Close()

	_, err = Open("redis", "")
	assert.Error(t, err)
}
