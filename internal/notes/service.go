package notes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultModel is used when a job does not select a synthesis model.
const DefaultModel = "gpt-oss:20b"

// slidesContextLimit caps the slide-context block included in prompts.
const slidesContextLimit = 5000

// Generator is the completion capability the service needs from its model
// client.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Result holds the synthesized note artifacts. Announcements may be empty
// when the lecture contained none.
type Result struct {
	Notes         string
	Summary       string
	QA            string
	Announcements string
}

// Service synthesizes structured lecture notes from a transcript and slide
// context via a language model.
type Service struct {
	client Generator
	logger *slog.Logger
}

// NewService creates a notes service around the given model client.
func NewService(client Generator, logger *slog.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// GenerateNotes produces full notes, an executive summary, Q&A flashcards,
// and announcements. Long transcripts are first condensed through the
// knowledge-base builder so every synthesis pass stays within bounded input.
// progress is called between passes with (done, total, message).
func (s *Service) GenerateNotes(ctx context.Context, model, transcript, slidesContext string, progress func(done, total int, message string)) (Result, error) {
	if model == "" {
		model = DefaultModel
	}
	report := func(done, total int, message string) {
		if progress != nil {
			progress(done, total, message)
		}
	}

	source := transcript
	if len(transcript) > chunkThreshold {
		s.logger.Info("condensing long transcript", "chars", len(transcript))
		report(0, 4, "Condensing transcript...")
		kb, err := s.BuildKnowledgeBase(ctx, model, transcript, nil)
		if err != nil {
			return Result{}, err
		}
		source = kb
	}

	if len(slidesContext) > slidesContextLimit {
		slidesContext = slidesContext[:slidesContextLimit]
	}

	var result Result
	var err error

	report(0, 4, "Generating notes...")
	if result.Notes, err = s.client.Generate(ctx, model, notesPrompt(source, slidesContext)); err != nil {
		return Result{}, fmt.Errorf("generate notes: %w", err)
	}

	report(1, 4, "Generating summary...")
	if result.Summary, err = s.client.Generate(ctx, model, summaryPrompt(source)); err != nil {
		return Result{}, fmt.Errorf("generate summary: %w", err)
	}

	report(2, 4, "Generating Q&A cards...")
	if result.QA, err = s.client.Generate(ctx, model, qaPrompt(source)); err != nil {
		return Result{}, fmt.Errorf("generate qa cards: %w", err)
	}

	report(3, 4, "Extracting announcements...")
	announcements, err := s.client.Generate(ctx, model, announcementsPrompt(source))
	if err != nil {
		return Result{}, fmt.Errorf("extract announcements: %w", err)
	}
	if trimmed := strings.TrimSpace(announcements); !strings.EqualFold(trimmed, "NONE") {
		result.Announcements = trimmed
	}

	report(4, 4, "Notes generated")
	return result, nil
}
