package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentStore_WriteAndList(t *testing.T) {
	store, err := NewSegmentStore(filepath.Join(t.TempDir(), "chunks"))
	require.NoError(t, err)

	// Written out of order; List must sort numerically.
	require.NoError(t, store.Write(12, []byte("c")))
	require.NoError(t, store.Write(2, []byte("a")))
	require.NoError(t, store.Write(7, []byte("b")))

	segments, err := store.List()
	require.NoError(t, err)
	require.Len(t, segments, 3)

	assert.Equal(t, 2, segments[0].Seq)
	assert.Equal(t, 7, segments[1].Seq)
	assert.Equal(t, 12, segments[2].Seq)
	assert.Equal(t, "000002.ts", filepath.Base(segments[0].Path))
}

func TestSegmentStore_ListIgnoresForeignFiles(t *testing.T) {
	store, err := NewSegmentStore(filepath.Join(t.TempDir(), "chunks"))
	require.NoError(t, err)

	require.NoError(t, store.Write(0, []byte("a")))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "file_list.txt"), []byte("x"), 0o644))

	segments, err := store.List()
	require.NoError(t, err)
	assert.Len(t, segments, 1)
}

func TestSegmentStore_NewWipesPreviousAttempt(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "chunks")

	first, err := NewSegmentStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Write(0, []byte("stale")))

	second, err := NewSegmentStore(dir)
	require.NoError(t, err)

	segments, err := second.List()
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestSegmentStore_Clear(t *testing.T) {
	store, err := NewSegmentStore(filepath.Join(t.TempDir(), "chunks"))
	require.NoError(t, err)
	require.NoError(t, store.Write(0, []byte("a")))

	require.NoError(t, store.Clear())

	_, statErr := os.Stat(store.Dir())
	assert.True(t, os.IsNotExist(statErr))
}
