package media

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner abstracts external process execution for testability.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// OutputRunner additionally captures stdout, for tools whose result is their
// output rather than a file.
type OutputRunner interface {
	Runner
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner executes commands via os/exec, folding combined output into the
// returned error so tool diagnostics survive into job error details.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}

// FFmpeg wraps the ffmpeg binary for the handful of operations the service
// needs. All operations are lossless or fixed-parameter; nothing here
// re-encodes video.
type FFmpeg struct {
	binary string
	runner Runner
}

// NewFFmpeg creates an ffmpeg wrapper. An empty binary falls back to "ffmpeg"
// on PATH.
func NewFFmpeg(binary string, runner Runner) *FFmpeg {
	if binary == "" {
		binary = "ffmpeg"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &FFmpeg{binary: binary, runner: runner}
}

// ConcatSegments stream-copies the files named in listFile (ffmpeg concat
// demuxer syntax) into a single output file without re-encoding.
func (f *FFmpeg) ConcatSegments(ctx context.Context, listFile, output string) error {
	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		"-y", output,
	}
	if err := f.runner.Run(ctx, f.binary, args...); err != nil {
		return fmt.Errorf("concat segments: %w", err)
	}
	return nil
}

// ExtractAudio produces a mono 16 kHz PCM WAV from the source video, the
// input format whisper expects.
func (f *FFmpeg) ExtractAudio(ctx context.Context, video, wavOut string) error {
	args := []string{
		"-i", video,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		"-y", wavOut,
	}
	if err := f.runner.Run(ctx, f.binary, args...); err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}
	return nil
}

// ExtractFrames samples one frame every intervalSec seconds into the numbered
// output pattern (e.g. frame_%04d.png).
func (f *FFmpeg) ExtractFrames(ctx context.Context, video, pattern string, intervalSec int) error {
	if intervalSec <= 0 {
		intervalSec = 10
	}
	args := []string{
		"-i", video,
		"-vf", fmt.Sprintf("fps=1/%d", intervalSec),
		"-vsync", "vfr",
		"-y", pattern,
	}
	if err := f.runner.Run(ctx, f.binary, args...); err != nil {
		return fmt.Errorf("extract frames: %w", err)
	}
	return nil
}
