package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/veranemoloko/lecture-companion/internal/config"
	"github.com/veranemoloko/lecture-companion/internal/domain"
	"github.com/veranemoloko/lecture-companion/internal/downloader"
	"github.com/veranemoloko/lecture-companion/internal/metrics"
	"github.com/veranemoloko/lecture-companion/internal/status"
	"github.com/veranemoloko/lecture-companion/internal/textutil"
)

// defaultEndChunk bounds the probe when the capture side supplied no chunk
// hint; the engine's failure-pattern detection stops the walk early.
const defaultEndChunk = 100

// detectedChunkBuffer is added past the hinted chunk in case the hint lagged
// the live stream.
const detectedChunkBuffer = 10

// DownloadService accepts download requests, owns the DownloadJob status
// records, and runs the chunked download engine asynchronously.
type DownloadService struct {
	store  *status.Store
	engine *downloader.Engine
	cfg    *config.Config
	logger *slog.Logger
}

// NewDownloadService creates a download service.
func NewDownloadService(store *status.Store, engine *downloader.Engine, cfg *config.Config, logger *slog.Logger) *DownloadService {
	return &DownloadService{store: store, engine: engine, cfg: cfg, logger: logger}
}

// Start registers a new download job and launches the transfer in the
// background, returning the generated job identifier immediately.
func (s *DownloadService) Start(req domain.DownloadRequest) string {
	id := uuid.New().String()

	s.store.PutDownload(domain.DownloadJob{
		ID:      id,
		Title:   req.Title,
		Status:  domain.DownloadPending,
		Message: "Initializing...",
	})
	metrics.DownloadsStarted.Inc()

	go s.run(context.Background(), id, req)

	s.logger.Info("download accepted", "download_id", id, "title", req.Title)
	return id
}

func (s *DownloadService) run(ctx context.Context, id string, req domain.DownloadRequest) {
	s.store.UpdateDownload(id, func(job *domain.DownloadJob) {
		job.Status = domain.DownloadDownloading
		job.Message = "Preparing download..."
	})

	safeTitle := textutil.SanitizeTitle(req.Title)
	if safeTitle == "" {
		safeTitle = "lecture_" + id[:8]
	}
	outputDir := filepath.Join(s.cfg.VideoDir(), safeTitle)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		s.fail(id, fmt.Errorf("create output dir: %w", err))
		return
	}

	startChunk, endChunk := s.chunkRange(req)
	s.store.UpdateDownload(id, func(job *domain.DownloadJob) {
		job.Message = fmt.Sprintf("Downloading chunks %d-%d...", startChunk, endChunk)
	})

	// Segment fetching owns 0-90 of the progress bar; assembly takes it to
	// 100 on success.
	progress := func(done, total int, message string) {
		s.store.UpdateDownload(id, func(job *domain.DownloadJob) {
			if total > 0 {
				job.Progress = float64(done) / float64(total) * 90
			}
			job.Message = message
		})
	}

	result, err := s.engine.Download(ctx, outputDir, req.StreamInfo, startChunk, endChunk, progress)
	if err != nil {
		s.fail(id, err)
		return
	}

	s.store.UpdateDownload(id, func(job *domain.DownloadJob) {
		job.Status = domain.DownloadComplete
		job.Progress = 100
		job.Message = fmt.Sprintf("Download complete (%d/%d chunks)", result.Fetched, result.Requested)
		job.Path = result.Path
	})
	metrics.DownloadsCompleted.Inc()
	s.logger.Info("download complete", "download_id", id, "path", result.Path,
		"fetched", result.Fetched, "requested", result.Requested)
}

func (s *DownloadService) fail(id string, err error) {
	s.store.UpdateDownload(id, func(job *domain.DownloadJob) {
		job.Status = domain.DownloadError
		job.Message = fmt.Sprintf("Download failed: %v", err)
		job.Error = err.Error()
	})
	metrics.DownloadsFailed.Inc()
	s.logger.Error("download failed", "download_id", id, "error", err)
}

// chunkRange derives the inclusive chunk range from the optional time bounds
// and the detected-chunk hint, using the fixed per-chunk duration.
func (s *DownloadService) chunkRange(req domain.DownloadRequest) (int, int) {
	startChunk := 0
	endChunk := defaultEndChunk

	if req.StreamInfo.DetectedChunk > 0 {
		endChunk = req.StreamInfo.DetectedChunk + detectedChunkBuffer
	}
	if req.StartTime != nil {
		startChunk = *req.StartTime / s.cfg.ChunkDuration
	}
	if req.EndTime != nil {
		endChunk = *req.EndTime / s.cfg.ChunkDuration
	}
	if endChunk < startChunk {
		endChunk = startChunk
	}
	return startChunk, endChunk
}
