package vision

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeFrame renders a striped test image; vertical and horizontal stripes
// hash far apart, identical patterns hash identically.
func writeFrame(t *testing.T, path string, horizontal bool) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			band := x / 8
			if horizontal {
				band = y / 8
			}
			c := color.RGBA{255, 255, 255, 255}
			if band%2 == 0 {
				c = color.RGBA{0, 0, 0, 255}
			}
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestDeduplicateFrames(t *testing.T) {
	framesDir := t.TempDir()
	slidesDir := filepath.Join(t.TempDir(), "slides")

	// Two copies of the same slide, then a visually different one.
	writeFrame(t, filepath.Join(framesDir, "frame_0001.png"), false)
	writeFrame(t, filepath.Join(framesDir, "frame_0002.png"), false)
	writeFrame(t, filepath.Join(framesDir, "frame_0003.png"), true)

	svc := NewService("tesseract", nil, DefaultHashThreshold, discardLogger())

	unique, err := svc.DeduplicateFrames(framesDir, slidesDir)
	require.NoError(t, err)
	require.Len(t, unique, 2)

	assert.Equal(t, "frame_0001.png", filepath.Base(unique[0]))
	assert.Equal(t, "frame_0003.png", filepath.Base(unique[1]))

	// Kept slides are real copies in the slides directory.
	for _, slide := range unique {
		assert.Equal(t, slidesDir, filepath.Dir(slide))
		_, statErr := os.Stat(slide)
		assert.NoError(t, statErr)
	}
}

func TestDeduplicateFrames_EmptyDir(t *testing.T) {
	svc := NewService("tesseract", nil, 0, discardLogger())

	unique, err := svc.DeduplicateFrames(t.TempDir(), filepath.Join(t.TempDir(), "slides"))
	require.NoError(t, err)
	assert.Empty(t, unique)
}

func TestDeduplicateFrames_SkipsUndecodableFrames(t *testing.T) {
	framesDir := t.TempDir()
	writeFrame(t, filepath.Join(framesDir, "frame_0001.png"), false)
	require.NoError(t, os.WriteFile(filepath.Join(framesDir, "frame_0002.png"), []byte("not a png"), 0o644))

	svc := NewService("tesseract", nil, DefaultHashThreshold, discardLogger())

	unique, err := svc.DeduplicateFrames(framesDir, filepath.Join(t.TempDir(), "slides"))
	require.NoError(t, err)
	assert.Len(t, unique, 1)
}

// fakeOCRRunner answers tesseract invocations from a canned map; unknown
// slides fail.
type fakeOCRRunner struct {
	texts map[string]string
}

func (r *fakeOCRRunner) Run(ctx context.Context, name string, args ...string) error { return nil }

func (r *fakeOCRRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	text, ok := r.texts[filepath.Base(args[0])]
	if !ok {
		return "", fmt.Errorf("tesseract: exit status 1")
	}
	return text + "\n", nil
}

func TestOCRSlides(t *testing.T) {
	runner := &fakeOCRRunner{texts: map[string]string{
		"frame_0001.png": "Slide one text",
		"frame_0003.png": "Slide three text",
	}}
	svc := NewService("tesseract", runner, 0, discardLogger())

	slides := []string{"/x/frame_0001.png", "/x/frame_0002.png", "/x/frame_0003.png"}
	results, err := svc.OCRSlides(context.Background(), slides)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "Slide one text", results[0].Text)
	// A failed slide yields empty text, not a stage failure.
	assert.Empty(t, results[1].Text)
	assert.Equal(t, "Slide three text", results[2].Text)
}

func TestContext(t *testing.T) {
	slides := []SlideText{
		{Name: "frame_0001.png", Text: "Intro"},
		{Name: "frame_0002.png", Text: ""},
		{Name: "frame_0003.png", Text: "Graphs"},
	}

	out := Context(slides)
	assert.Equal(t, "[Slide frame_0001.png]: Intro\n[Slide frame_0003.png]: Graphs", out)
}
