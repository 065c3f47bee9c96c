package recordings

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/veranemoloko/lecture-companion/internal/domain"
	apperrors "github.com/veranemoloko/lecture-companion/internal/errors"
	"github.com/veranemoloko/lecture-companion/internal/status"
	"github.com/veranemoloko/lecture-companion/internal/textutil"
)

// Artifacts holds content URLs for the generated files that exist on disk.
type Artifacts struct {
	Notes         string `json:"notes,omitempty"`
	Summary       string `json:"summary,omitempty"`
	QACards       string `json:"qa_cards,omitempty"`
	Slides        string `json:"slides,omitempty"`
	Transcript    string `json:"transcript,omitempty"`
	Announcements string `json:"announcements,omitempty"`
}

// Recording is one merged card in the listing: a processed output folder, a
// downloaded video, an in-flight job, or any overlay of those matched by
// normalized title.
type Recording struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	Date      string     `json:"date"`
	Path      string     `json:"path,omitempty"`
	VideoPath string     `json:"videoPath,omitempty"`
	Processed bool       `json:"processed"`
	Progress  float64    `json:"progress"`
	Message   string     `json:"message,omitempty"`
	Artifacts *Artifacts `json:"artifacts,omitempty"`
}

// Service builds the merged recording listing and removes recordings. Title
// matching between downloads, processes, and folders is fuzzy (normalized
// containment) and therefore best-effort: similarly named recordings can
// merge into one card.
type Service struct {
	outputDir string
	videoDir  string
	store     *status.Store
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a recordings service over the output tree.
func NewService(outputDir, videoDir string, store *status.Store, logger *slog.Logger) *Service {
	return &Service{outputDir: outputDir, videoDir: videoDir, store: store, logger: logger, now: time.Now}
}

// List merges processed outputs, downloaded videos, and live job status into
// one card per normalized title, newest first.
func (s *Service) List() []Recording {
	byTitle := make(map[string]*Recording)

	s.collectProcessed(byTitle)
	s.collectDownloaded(byTitle)
	s.overlayActive(byTitle)

	out := make([]Recording, 0, len(byTitle))
	for _, rec := range byTitle {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// collectProcessed scans output folders named YYYY-MM-DD_Title.
func (s *Service) collectProcessed(byTitle map[string]*Recording) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == "videos" {
			continue
		}
		date, safeTitle, ok := strings.Cut(entry.Name(), "_")
		if !ok {
			continue
		}

		folder := filepath.Join(s.outputDir, entry.Name())
		artifacts := s.scanArtifacts(entry.Name(), folder)
		processed := artifacts.Notes != ""

		recStatus := "downloaded"
		if processed {
			recStatus = "complete"
		}

		normalized := textutil.NormalizeTitle(safeTitle)
		byTitle[normalized] = &Recording{
			ID:        entry.Name(),
			Title:     strings.ReplaceAll(safeTitle, "_", " "),
			Status:    recStatus,
			Date:      date,
			Path:      folder,
			VideoPath: s.findVideo(normalized),
			Processed: processed,
			Artifacts: artifacts,
		}
	}
}

// collectDownloaded adds videos that have no processed output yet.
func (s *Service) collectDownloaded(byTitle map[string]*Recording) {
	entries, err := os.ReadDir(s.videoDir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		normalized := textutil.NormalizeTitle(entry.Name())
		if _, exists := byTitle[normalized]; exists {
			continue
		}

		videoFile := filepath.Join(s.videoDir, entry.Name(), "full_video.mp4")
		info, err := os.Stat(videoFile)
		if err != nil {
			continue
		}

		byTitle[normalized] = &Recording{
			ID:        entry.Name(),
			Title:     strings.ReplaceAll(entry.Name(), "_", " "),
			Status:    "downloaded",
			Date:      info.ModTime().Format("2006-01-02"),
			VideoPath: videoFile,
		}
	}
}

// overlayActive folds live download and process status on top of the disk
// scan.
func (s *Service) overlayActive(byTitle map[string]*Recording) {
	for _, dl := range s.store.Downloads() {
		if dl.Title == "" {
			continue
		}
		if dl.Status == domain.DownloadPending || dl.Status == domain.DownloadDownloading {
			s.updateCard(byTitle, dl.Title, "downloading", dl.Progress, dl.Message)
		}
	}

	for _, proc := range s.store.Processes() {
		if proc.Title == "" {
			continue
		}
		s.updateCard(byTitle, proc.Title, string(proc.Status), proc.Progress, proc.Message)
	}
}

func (s *Service) updateCard(byTitle map[string]*Recording, title, recStatus string, progress float64, message string) {
	normalized := textutil.NormalizeTitle(title)

	rec, ok := byTitle[normalized]
	if !ok {
		for key, candidate := range byTitle {
			if textutil.TitlesMatch(key, normalized) {
				rec = candidate
				break
			}
		}
	}
	if rec == nil {
		byTitle[normalized] = &Recording{
			ID:       title,
			Title:    title,
			Status:   recStatus,
			Date:     s.now().Format("2006-01-02"),
			Progress: progress,
			Message:  message,
		}
		return
	}

	rec.Status = recStatus
	rec.Progress = progress
	if message != "" {
		rec.Message = message
	}
}

func (s *Service) scanArtifacts(folderName, folder string) *Artifacts {
	link := func(name string) string {
		if _, err := os.Stat(filepath.Join(folder, name)); err != nil {
			return ""
		}
		return fmt.Sprintf("/content/%s/%s", folderName, name)
	}

	artifacts := &Artifacts{
		Notes:         link("lecture_notes.md"),
		Summary:       link("summary.md"),
		QACards:       link("qa_cards.md"),
		Transcript:    link("transcript.txt"),
		Announcements: link("announcements.md"),
	}
	if _, err := os.Stat(filepath.Join(folder, "slides")); err == nil {
		artifacts.Slides = fmt.Sprintf("/content/%s/slides/", folderName)
	}
	return artifacts
}

func (s *Service) findVideo(normalized string) string {
	entries, err := os.ReadDir(s.videoDir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if textutil.TitlesMatch(entry.Name(), normalized) {
			videoFile := filepath.Join(s.videoDir, entry.Name(), "full_video.mp4")
			if _, err := os.Stat(videoFile); err == nil {
				return videoFile
			}
		}
	}
	return ""
}

// Delete removes a recording's video folder and processed output folder.
// The identifier must be a plain folder name; anything resembling a path is
// rejected. Returns the paths actually deleted.
func (s *Service) Delete(recordingID string) ([]string, error) {
	if err := ValidateID(recordingID); err != nil {
		return nil, err
	}

	var deleted []string
	for _, dir := range []string{s.videoDir, s.outputDir} {
		target := filepath.Join(dir, recordingID)
		if target == filepath.Join(s.outputDir, "videos") {
			continue
		}
		if info, err := os.Stat(target); err == nil && info.IsDir() {
			if err := os.RemoveAll(target); err != nil {
				return deleted, fmt.Errorf("delete %s: %w", target, err)
			}
			deleted = append(deleted, target)
		}
	}

	if len(deleted) == 0 {
		return nil, apperrors.ErrJobNotFound
	}

	s.logger.Info("recording deleted", "recording_id", recordingID, "paths", deleted)
	return deleted, nil
}

// Resolve finds the processed output folder for a recording identifier,
// rejecting traversal attempts.
func (s *Service) Resolve(recordingID string) (string, error) {
	if err := ValidateID(recordingID); err != nil {
		return "", err
	}

	target := filepath.Join(s.outputDir, recordingID)
	if info, err := os.Stat(target); err == nil && info.IsDir() && recordingID != "videos" {
		return target, nil
	}
	return "", apperrors.ErrJobNotFound
}

// ValidateID rejects recording identifiers that could escape the output
// tree. Identifiers are folder names, never paths.
func ValidateID(recordingID string) error {
	if recordingID == "" ||
		strings.Contains(recordingID, "..") ||
		strings.ContainsAny(recordingID, `/\`) {
		return fmt.Errorf("invalid recording id: %q", recordingID)
	}
	return nil
}
