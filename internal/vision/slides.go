package vision

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/corona10/goimagehash"
	"golang.org/x/sync/errgroup"

	"github.com/veranemoloko/lecture-companion/internal/media"
)

const (
	// DefaultHashThreshold is the pHash distance below which two adjacent
	// frames count as the same slide.
	DefaultHashThreshold = 5

	// ocrParallelism bounds concurrent tesseract invocations.
	ocrParallelism = 2
)

// SlideText pairs a slide image name with its OCR'd text, in slide order.
type SlideText struct {
	Name string
	Text string
}

// Service captures slides from extracted frames: perceptual deduplication
// followed by OCR on the surviving unique frames.
type Service struct {
	tesseract string
	runner    media.OutputRunner
	threshold int
	logger    *slog.Logger
}

// NewService creates a vision service. An empty binary falls back to
// "tesseract" on PATH; threshold <= 0 uses the default.
func NewService(tesseract string, runner media.OutputRunner, threshold int, logger *slog.Logger) *Service {
	if tesseract == "" {
		tesseract = "tesseract"
	}
	if runner == nil {
		runner = media.ExecRunner{}
	}
	if threshold <= 0 {
		threshold = DefaultHashThreshold
	}
	return &Service{tesseract: tesseract, runner: runner, threshold: threshold, logger: logger}
}

// DeduplicateFrames walks the frame_*.png files in framesDir in order,
// keeping a frame only when its perceptual hash differs from the last kept
// frame by at least the threshold. Kept frames are copied into slidesDir.
// Frames that fail to decode are skipped, not fatal.
func (s *Service) DeduplicateFrames(framesDir, slidesDir string) ([]string, error) {
	frames, err := listFrames(framesDir)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(slidesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create slides dir: %w", err)
	}

	var unique []string
	var lastHash *goimagehash.ImageHash

	for _, frame := range frames {
		hash, err := hashFrame(frame)
		if err != nil {
			s.logger.Warn("failed to hash frame", "frame", frame, "error", err)
			continue
		}

		if lastHash != nil {
			distance, err := hash.Distance(lastHash)
			if err == nil && distance < s.threshold {
				continue
			}
		}

		dest := filepath.Join(slidesDir, filepath.Base(frame))
		if err := copyFile(frame, dest); err != nil {
			return nil, fmt.Errorf("copy slide: %w", err)
		}
		unique = append(unique, dest)
		lastHash = hash
	}

	s.logger.Info("deduplicated frames", "frames", len(frames), "slides", len(unique))
	return unique, nil
}

// OCRSlides extracts text from each slide with tesseract, at most two at a
// time. A failed slide yields empty text rather than failing the stage.
func (s *Service) OCRSlides(ctx context.Context, slides []string) ([]SlideText, error) {
	results := make([]SlideText, len(slides))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ocrParallelism)

	for i, slide := range slides {
		i, slide := i, slide
		g.Go(func() error {
			text, err := s.runner.Output(ctx, s.tesseract, slide, "stdout")
			if err != nil {
				s.logger.Warn("ocr failed", "slide", slide, "error", err)
				text = ""
			}
			results[i] = SlideText{
				Name: filepath.Base(slide),
				Text: strings.TrimSpace(text),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Context flattens OCR results into the slide-context block fed to note
// synthesis.
func Context(slides []SlideText) string {
	var b strings.Builder
	for _, slide := range slides {
		if slide.Text == "" {
			continue
		}
		fmt.Fprintf(&b, "[Slide %s]: %s\n", slide.Name, slide.Text)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func listFrames(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "frame_*.png"))
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

func hashFrame(path string) (*goimagehash.ImageHash, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}
	return goimagehash.PerceptionHash(img)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
