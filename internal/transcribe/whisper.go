package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/veranemoloko/lecture-companion/internal/media"
)

// DefaultModel is used when a job does not select a transcription model.
const DefaultModel = "turbo"

// Service wraps the whisper CLI. It is constructed once at startup and passed
// into the orchestrator; model selection happens per call.
type Service struct {
	binary string
	runner media.Runner
	logger *slog.Logger
}

// NewService creates a whisper wrapper. An empty binary falls back to
// "whisper" on PATH.
func NewService(binary string, runner media.Runner, logger *slog.Logger) *Service {
	if binary == "" {
		binary = "whisper"
	}
	if runner == nil {
		runner = media.ExecRunner{}
	}
	return &Service{binary: binary, runner: runner, logger: logger}
}

// Transcribe runs whisper over a 16 kHz mono WAV and returns the transcript
// text. Whisper writes its txt artifact next to the other outputs in
// outputDir; the file is read back and returned.
func (s *Service) Transcribe(ctx context.Context, audioPath, outputDir, model string) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("audio file not found: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}

	s.logger.Info("transcribing audio", "audio", audioPath, "model", model)

	args := []string{
		audioPath,
		"--model", model,
		"--language", "en",
		"--task", "transcribe",
		"--temperature", "0",
		"--best_of", "5",
		"--beam_size", "5",
		"--output_format", "txt",
		"--output_dir", outputDir,
		"--verbose", "False",
	}
	if err := s.runner.Run(ctx, s.binary, args...); err != nil {
		return "", fmt.Errorf("whisper: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	txtPath := filepath.Join(outputDir, base+".txt")
	data, err := os.ReadFile(txtPath)
	if err != nil {
		return "", fmt.Errorf("read transcript output: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
