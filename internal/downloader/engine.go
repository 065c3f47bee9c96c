package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/veranemoloko/lecture-companion/internal/domain"
	apperrors "github.com/veranemoloko/lecture-companion/internal/errors"
	"github.com/veranemoloko/lecture-companion/internal/execpool"
	"github.com/veranemoloko/lecture-companion/internal/media"
	"github.com/veranemoloko/lecture-companion/internal/metrics"
	"github.com/veranemoloko/lecture-companion/internal/storage"
)

const (
	// chunkNameFormat is the CDN's segment naming scheme, appended to the
	// stream base URL: data000037.ts.
	chunkNameFormat = "data%06d.ts"

	// consecutive403Limit aborts a segment permanently; repeated 403s mean
	// the signed window walked past the end of the stream, not a fault.
	consecutive403Limit = 3

	// abortThreshold stops the whole download after this many consecutive
	// whole-segment failures, returning whatever is already staged.
	abortThreshold = 10

	// progressEvery keeps status-store writes coarse.
	progressEvery = 10
)

// ProgressFunc receives coarse download progress updates.
type ProgressFunc func(done, total int, message string)

// Result describes a finished download.
type Result struct {
	Path      string
	Fetched   int
	Requested int
}

// Engine fetches numbered stream segments over HTTP, stages them on disk, and
// assembles them into a single playable file. Transient faults are absorbed
// here; callers only see overall success or failure.
type Engine struct {
	client  *http.Client
	ffmpeg  *media.FFmpeg
	pool    *execpool.Pool
	logger  *slog.Logger
	retries int
	backoff time.Duration
	timeout time.Duration
}

// Option customizes the engine.
type Option func(*Engine)

// WithRetryBackoff overrides the fixed delay between fetch attempts.
func WithRetryBackoff(d time.Duration) Option {
	return func(e *Engine) { e.backoff = d }
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Engine) {
		if client != nil {
			e.client = client
		}
	}
}

// NewEngine constructs a download engine. retries is the per-segment attempt
// budget and timeout the per-request deadline.
func NewEngine(ffmpeg *media.FFmpeg, pool *execpool.Pool, retries int, timeout time.Duration, logger *slog.Logger, opts ...Option) *Engine {
	if retries <= 0 {
		retries = 3
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	e := &Engine{
		client:  &http.Client{},
		ffmpeg:  ffmpeg,
		pool:    pool,
		logger:  logger,
		retries: retries,
		backoff: time.Second,
		timeout: timeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Download fetches segments [startChunk, endChunk] sequentially, staging them
// under outputDir/chunks, then assembles the staged segments into
// outputDir/full_video.mp4. It succeeds if at least one segment was
// retrieved; the staging area survives an assembly failure for diagnosis.
func (e *Engine) Download(ctx context.Context, outputDir string, info domain.StreamInfo, startChunk, endChunk int, progress ProgressFunc) (Result, error) {
	store, err := storage.NewSegmentStore(filepath.Join(outputDir, "chunks"))
	if err != nil {
		return Result{}, err
	}

	total := endChunk - startChunk + 1
	fetched := 0
	consecutiveFailures := 0

	for seq := startChunk; seq <= endChunk; seq++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		if err := e.fetchSegment(ctx, store, info, seq); err != nil {
			consecutiveFailures++
			metrics.SegmentsFailed.Inc()
			if errors.Is(err, apperrors.ErrEndOfStream) {
				e.logger.Info("segment looks past end of stream", "segment", seq)
			} else {
				e.logger.Warn("segment failed after retries", "segment", seq, "error", err)
			}
			if consecutiveFailures >= abortThreshold {
				e.logger.Warn("stopping download after consecutive failures",
					"failures", consecutiveFailures, "last_segment", seq)
				break
			}
			continue
		}

		consecutiveFailures = 0
		fetched++
		metrics.SegmentsFetched.Inc()
		if fetched%progressEvery == 0 && progress != nil {
			progress(fetched, total, fmt.Sprintf("Downloaded %d/%d chunks", fetched, total))
		}
	}

	if progress != nil {
		progress(fetched, total, fmt.Sprintf("Downloaded %d chunks", fetched))
	}

	if fetched == 0 {
		return Result{Requested: total}, apperrors.ErrNoSegments
	}

	path, err := e.assemble(ctx, store, outputDir)
	if err != nil {
		return Result{Fetched: fetched, Requested: total}, err
	}

	if err := store.Clear(); err != nil {
		e.logger.Warn("failed to remove staging dir", "dir", store.Dir(), "error", err)
	}

	return Result{Path: path, Fetched: fetched, Requested: total}, nil
}

// fetchSegment attempts one segment up to the retry budget with a fixed
// backoff. A 403 counts toward the end-of-stream pattern; three in a row stop
// the segment without further attempts. Other HTTP errors and transport
// faults are treated as transient.
func (e *Engine) fetchSegment(ctx context.Context, store *storage.SegmentStore, info domain.StreamInfo, seq int) error {
	segmentURL := info.BaseURL + fmt.Sprintf(chunkNameFormat, seq)
	forbidden := 0

	for attempt := 1; attempt <= e.retries; attempt++ {
		data, statusCode, err := e.get(ctx, segmentURL, info)
		if err == nil && statusCode == http.StatusOK {
			return store.Write(seq, data)
		}

		if statusCode == http.StatusForbidden {
			forbidden++
			if forbidden >= consecutive403Limit {
				return fmt.Errorf("segment %d: %w", seq, apperrors.ErrEndOfStream)
			}
		} else {
			forbidden = 0
		}

		if attempt == e.retries {
			if err == nil {
				err = fmt.Errorf("unexpected status code: %d", statusCode)
			}
			return fmt.Errorf("segment %d failed after %d attempts: %w", seq, e.retries, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(e.backoff):
		}
	}

	return fmt.Errorf("segment %d failed", seq)
}

func (e *Engine) get(ctx context.Context, rawURL string, info domain.StreamInfo) ([]byte, int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	query := url.Values{}
	query.Set("Key-Pair-Id", info.KeyPairID)
	query.Set("Policy", info.Policy)
	query.Set("Signature", info.Signature)
	req.URL.RawQuery = query.Encode()

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return data, resp.StatusCode, nil
}

// assemble concatenates the staged segments in ascending sequence order via a
// lossless stream copy. The concat list uses segment file names relative to
// the staging directory.
func (e *Engine) assemble(ctx context.Context, store *storage.SegmentStore, outputDir string) (string, error) {
	segments, err := store.List()
	if err != nil {
		return "", err
	}
	if len(segments) == 0 {
		return "", apperrors.ErrNoSegments
	}

	listFile := filepath.Join(store.Dir(), "file_list.txt")
	var list []byte
	for _, seg := range segments {
		list = append(list, fmt.Sprintf("file '%s'\n", filepath.Base(seg.Path))...)
	}
	if err := os.WriteFile(listFile, list, 0o644); err != nil {
		return "", fmt.Errorf("write concat list: %w", err)
	}

	e.logger.Info("merging segments", "count", len(segments))

	output := filepath.Join(outputDir, "full_video.mp4")
	err = e.pool.Run(ctx, func() error {
		return e.ffmpeg.ConcatSegments(ctx, listFile, output)
	})
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(output); err != nil {
		return "", fmt.Errorf("assembly produced no output: %w", err)
	}
	return output, nil
}
