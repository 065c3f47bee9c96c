package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/veranemoloko/lecture-companion/internal/domain"
	apperrors "github.com/veranemoloko/lecture-companion/internal/errors"
	"github.com/veranemoloko/lecture-companion/internal/execpool"
	"github.com/veranemoloko/lecture-companion/internal/media"
	"github.com/veranemoloko/lecture-companion/internal/metrics"
	"github.com/veranemoloko/lecture-companion/internal/notes"
	"github.com/veranemoloko/lecture-companion/internal/textutil"
	"github.com/veranemoloko/lecture-companion/internal/vision"
)

// frameInterval is the fixed sampling interval for slide capture, in seconds.
const frameInterval = 10

// StageEvent is one structured progress event emitted by a pipeline stage.
// Current and Total describe the fractional position inside the stage; the
// worker maps them into the stage's band of the unified percentage.
type StageEvent struct {
	Stage   string
	Current int
	Total   int
	Message string
}

// ProgressFunc receives stage events during a pipeline run.
type ProgressFunc func(StageEvent)

// Transcriber turns extracted audio into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, outputDir, model string) (string, error)
}

// SlideCapturer deduplicates extracted frames and OCRs the survivors.
type SlideCapturer interface {
	DeduplicateFrames(framesDir, slidesDir string) ([]string, error)
	OCRSlides(ctx context.Context, slides []string) ([]vision.SlideText, error)
}

// NoteSynthesizer produces the structured note artifacts.
type NoteSynthesizer interface {
	GenerateNotes(ctx context.Context, model, transcript, slidesContext string, progress func(done, total int, message string)) (notes.Result, error)
}

// Result describes a completed pipeline run.
type Result struct {
	OutputDir     string
	TranscriptLen int
	SlideCount    int
}

// Orchestrator executes the content-extraction pipeline for one job: audio
// extraction, transcription, slide capture, and note synthesis, each
// independently skippable. Heavy tool invocations go through the shared
// execution pool.
type Orchestrator struct {
	outputBase  string
	ffmpeg      *media.FFmpeg
	transcriber Transcriber
	capturer    SlideCapturer
	synthesizer NoteSynthesizer
	pool        *execpool.Pool
	logger      *slog.Logger
	now         func() time.Time
}

// NewOrchestrator wires the pipeline's collaborators together.
func NewOrchestrator(outputBase string, ffmpeg *media.FFmpeg, transcriber Transcriber, capturer SlideCapturer, synthesizer NoteSynthesizer, pool *execpool.Pool, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		outputBase:  outputBase,
		ffmpeg:      ffmpeg,
		transcriber: transcriber,
		capturer:    capturer,
		synthesizer: synthesizer,
		pool:        pool,
		logger:      logger,
		now:         time.Now,
	}
}

// Run executes the pipeline for one job. Any unrecoverable stage failure
// aborts the remaining stages; artifacts already written stay on disk.
func (o *Orchestrator) Run(ctx context.Context, req domain.ProcessRequest, progress ProgressFunc) (Result, error) {
	emit := func(stage string, current, total int, message string) {
		if progress != nil {
			progress(StageEvent{Stage: stage, Current: current, Total: total, Message: message})
		}
	}

	if _, err := os.Stat(req.VideoPath); err != nil {
		return Result{}, fmt.Errorf("%w: %s", apperrors.ErrVideoNotFound, req.VideoPath)
	}

	safeTitle := textutil.SanitizeTitle(req.Title)
	if safeTitle == "" {
		safeTitle = "lecture"
	}
	outputDir := filepath.Join(o.outputBase, fmt.Sprintf("%s_%s", o.now().Format("2006-01-02"), safeTitle))
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}

	o.logger.Info("pipeline started", "title", req.Title, "output_dir", outputDir)
	emit("init", 0, 100, "Initializing...")

	transcript, err := o.runTranscription(ctx, req, outputDir, emit)
	if err != nil {
		return Result{}, err
	}

	slidesContext, slideCount, err := o.runSlideCapture(ctx, req, outputDir, emit)
	if err != nil {
		return Result{}, err
	}

	if !req.SkipNotes && transcript != "" {
		if err := o.runNoteSynthesis(ctx, req, outputDir, transcript, slidesContext, emit); err != nil {
			return Result{}, err
		}
	}

	emit("complete", 100, 100, "Processing complete!")
	return Result{OutputDir: outputDir, TranscriptLen: len(transcript), SlideCount: slideCount}, nil
}

func (o *Orchestrator) runTranscription(ctx context.Context, req domain.ProcessRequest, outputDir string, emit func(string, int, int, string)) (string, error) {
	transcriptPath := filepath.Join(outputDir, "transcript.txt")

	if req.SkipTranscription {
		// A rerun with transcription skipped still feeds existing output
		// into note synthesis.
		if data, err := os.ReadFile(transcriptPath); err == nil {
			return string(data), nil
		}
		return "", nil
	}

	started := time.Now()
	emit("transcription", 10, 100, "Extracting audio...")

	audioPath := filepath.Join(outputDir, "audio.wav")
	if _, err := os.Stat(audioPath); err != nil {
		err := o.pool.Run(ctx, func() error {
			return o.ffmpeg.ExtractAudio(ctx, req.VideoPath, audioPath)
		})
		if err != nil {
			return "", fmt.Errorf("transcription stage: %w", err)
		}
	}

	emit("transcription", 30, 100, "Transcribing audio (Whisper)...")

	var transcript string
	err := o.pool.Run(ctx, func() error {
		var err error
		transcript, err = o.transcriber.Transcribe(ctx, audioPath, outputDir, req.WhisperModel)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("transcription stage: %w", err)
	}

	if err := os.WriteFile(transcriptPath, []byte(transcript), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}

	metrics.StageDuration.WithLabelValues("transcription").Observe(time.Since(started).Seconds())
	return transcript, nil
}

func (o *Orchestrator) runSlideCapture(ctx context.Context, req domain.ProcessRequest, outputDir string, emit func(string, int, int, string)) (string, int, error) {
	if req.SkipFrames {
		return "", 0, nil
	}

	started := time.Now()
	emit("frames", 50, 100, "Extracting frames...")

	framesDir := filepath.Join(outputDir, "frames")
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("frames stage: %w", err)
	}
	err := o.pool.Run(ctx, func() error {
		return o.ffmpeg.ExtractFrames(ctx, req.VideoPath, filepath.Join(framesDir, "frame_%04d.png"), frameInterval)
	})
	if err != nil {
		return "", 0, fmt.Errorf("frames stage: %w", err)
	}

	if req.SkipSlideAnalysis {
		return "", 0, nil
	}

	emit("frames", 60, 100, "Analyzing slides...")
	unique, err := o.capturer.DeduplicateFrames(framesDir, filepath.Join(outputDir, "slides"))
	if err != nil {
		return "", 0, fmt.Errorf("frames stage: %w", err)
	}

	emit("frames", 70, 100, "OCRing slides...")
	var ocr []vision.SlideText
	err = o.pool.Run(ctx, func() error {
		var err error
		ocr, err = o.capturer.OCRSlides(ctx, unique)
		return err
	})
	if err != nil {
		return "", 0, fmt.Errorf("frames stage: %w", err)
	}

	// Raw frames are only an intermediate; the deduplicated slides keep
	// the images worth keeping.
	if err := os.RemoveAll(framesDir); err != nil {
		o.logger.Warn("failed to remove raw frames", "dir", framesDir, "error", err)
	}

	metrics.StageDuration.WithLabelValues("frames").Observe(time.Since(started).Seconds())
	return vision.Context(ocr), len(unique), nil
}

func (o *Orchestrator) runNoteSynthesis(ctx context.Context, req domain.ProcessRequest, outputDir, transcript, slidesContext string, emit func(string, int, int, string)) error {
	started := time.Now()
	emit("notes", 0, 100, "Generating notes (LLM)...")

	var result notes.Result
	err := o.pool.Run(ctx, func() error {
		var err error
		result, err = o.synthesizer.GenerateNotes(ctx, req.OllamaModel, transcript, slidesContext, func(done, total int, message string) {
			emit("notes", done, total, message)
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("notes stage: %w", err)
	}

	artifacts := map[string]string{
		"lecture_notes.md": result.Notes,
		"summary.md":       result.Summary,
		"qa_cards.md":      result.QA,
	}
	if result.Announcements != "" {
		artifacts["announcements.md"] = result.Announcements
	}
	for name, content := range artifacts {
		if err := os.WriteFile(filepath.Join(outputDir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}

	metrics.StageDuration.WithLabelValues("notes").Observe(time.Since(started).Seconds())
	return nil
}
