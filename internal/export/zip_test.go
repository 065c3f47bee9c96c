package export

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lecture_notes.md"), []byte("# Notes"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "slides"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slides", "frame_0001.png"), []byte("png"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, Zip(dir, &buf))

	reader, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	names := map[string]string{}
	for _, f := range reader.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		names[f.Name] = string(data)
	}

	assert.Equal(t, map[string]string{
		"lecture_notes.md":      "# Notes",
		"slides/frame_0001.png": "png",
	}, names)
}

func TestZip_MissingDir(t *testing.T) {
	var buf bytes.Buffer
	err := Zip(filepath.Join(t.TempDir(), "nope"), &buf)
	assert.Error(t, err)
}
