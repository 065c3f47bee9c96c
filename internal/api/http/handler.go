package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/veranemoloko/lecture-companion/internal/domain"
	apperrors "github.com/veranemoloko/lecture-companion/internal/errors"
	"github.com/veranemoloko/lecture-companion/internal/validation"
)

// DownloadStarter accepts download requests for asynchronous execution.
type DownloadStarter interface {
	Start(req domain.DownloadRequest) string
}

// ProcessEnqueuer validates and enqueues processing requests.
type ProcessEnqueuer interface {
	Enqueue(req domain.ProcessRequest) (string, int, error)
	QueueState() domain.QueueResponse
}

// StatusReader exposes job records to the polling endpoints.
type StatusReader interface {
	GetDownload(id string) (domain.DownloadJob, error)
	GetProcess(id string) (domain.ProcessJob, error)
}

// JobHandler handles the download and process job endpoints.
type JobHandler struct {
	downloads DownloadStarter
	processes ProcessEnqueuer
	statuses  StatusReader
	validator *validator.Validate
	logger    *slog.Logger
}

// NewJobHandler creates a JobHandler with the provided services and logger.
func NewJobHandler(downloads DownloadStarter, processes ProcessEnqueuer, statuses StatusReader, logger *slog.Logger) *JobHandler {
	return &JobHandler{
		downloads: downloads,
		processes: processes,
		statuses:  statuses,
		validator: validation.New(),
		logger:    logger,
	}
}

// CreateDownload handles POST /download: validates the stream locator and
// starts the transfer asynchronously.
func (h *JobHandler) CreateDownload(w http.ResponseWriter, r *http.Request) {
	var req domain.DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := h.downloads.Start(req)

	writeJSON(w, http.StatusOK, domain.DownloadResponse{
		DownloadID: id,
		Message:    "Download started",
	})
}

// GetDownloadStatus handles GET /status/{downloadID}.
func (h *JobHandler) GetDownloadStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "downloadID")

	job, err := h.statuses.GetDownload(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "download not found")
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// CreateProcess handles POST /process: checks the video path exists, then
// enqueues and returns the queue position.
func (h *JobHandler) CreateProcess(w http.ResponseWriter, r *http.Request) {
	var req domain.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, position, err := h.processes.Enqueue(req)
	if err != nil {
		if errors.Is(err, apperrors.ErrVideoNotFound) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to enqueue job", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, domain.ProcessResponse{
		ProcessID: id,
		Message:   "Job queued successfully",
		Position:  position,
	})
}

// GetProcessStatus handles GET /process/{processID}.
func (h *JobHandler) GetProcessStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "processID")

	job, err := h.statuses.GetProcess(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "process not found")
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// GetQueue handles GET /queue: pending entries plus job history.
func (h *JobHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.processes.QueueState())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
