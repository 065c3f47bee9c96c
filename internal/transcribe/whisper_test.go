package transcribe

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records the whisper invocation and drops the expected txt
// artifact into the output directory.
type fakeRunner struct {
	args       []string
	transcript string
	outputDir  string
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	r.args = append([]string{name}, args...)
	return os.WriteFile(filepath.Join(r.outputDir, "audio.txt"), []byte(r.transcript), 0o644)
}

func TestTranscribe(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "audio.wav")
	require.NoError(t, os.WriteFile(audio, []byte("wav"), 0o644))

	runner := &fakeRunner{transcript: "hello lecture\n", outputDir: dir}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService("whisper", runner, logger)

	text, err := svc.Transcribe(context.Background(), audio, dir, "medium")
	require.NoError(t, err)

	assert.Equal(t, "hello lecture", text)
	assert.Equal(t, "whisper", runner.args[0])
	assert.Equal(t, audio, runner.args[1])
	assert.Contains(t, runner.args, "--model")
	assert.Contains(t, runner.args, "medium")
	assert.Contains(t, runner.args, "--output_format")
}

func TestTranscribe_DefaultModel(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "audio.wav")
	require.NoError(t, os.WriteFile(audio, []byte("wav"), 0o644))

	runner := &fakeRunner{transcript: "t", outputDir: dir}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService("", runner, logger)

	_, err := svc.Transcribe(context.Background(), audio, dir, "")
	require.NoError(t, err)
	assert.Contains(t, runner.args, DefaultModel)
}

func TestTranscribe_MissingAudio(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService("whisper", &fakeRunner{}, logger)

	_, err := svc.Transcribe(context.Background(), "/nope/audio.wav", t.TempDir(), "turbo")
	assert.ErrorContains(t, err, "audio file not found")
}
