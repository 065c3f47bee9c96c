package http

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/veranemoloko/lecture-companion/internal/export"
	"github.com/veranemoloko/lecture-companion/internal/recordings"
	"github.com/veranemoloko/lecture-companion/internal/search"
)

// whisperModels is the fixed set of transcription model choices offered to
// clients.
var whisperModels = []string{"turbo", "large-v3", "medium", "small"}

// ModelLister returns the synthesis models available on the local model
// server.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// ContentHandler handles the recording listing, search, export, and model
// discovery endpoints.
type ContentHandler struct {
	recordings   *recordings.Service
	search       *search.Service
	models       ModelLister
	defaultModel string
	logger       *slog.Logger
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(rec *recordings.Service, srch *search.Service, models ModelLister, defaultModel string, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		recordings:   rec,
		search:       srch,
		models:       models,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

// ListRecordings handles GET /recordings.
func (h *ContentHandler) ListRecordings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]recordings.Recording{
		"recordings": h.recordings.List(),
	})
}

// DeleteRecording handles DELETE /recordings/{recordingID}.
func (h *ContentHandler) DeleteRecording(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "recordingID")

	if err := recordings.ValidateID(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid recording ID")
		return
	}

	deleted, err := h.recordings.Delete(id)
	if err != nil {
		if len(deleted) == 0 {
			writeError(w, http.StatusNotFound, "recording not found")
			return
		}
		h.logger.Error("failed to delete recording", "recording_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": deleted,
	})
}

// SearchContent handles GET /search?q=.
func (h *ContentHandler) SearchContent(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if len(query) < 2 {
		writeError(w, http.StatusBadRequest, "query must be at least 2 characters")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]search.Match{
		"results": h.search.Search(query),
	})
}

// ListModels handles GET /models: the fixed whisper choices plus whatever the
// local model server reports, with a fallback when it is unreachable.
func (h *ContentHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	ollamaModels, err := h.models.ListModels(r.Context())
	if err != nil || len(ollamaModels) == 0 {
		if err != nil {
			h.logger.Warn("failed to list ollama models", "error", err)
		}
		ollamaModels = []string{h.defaultModel}
	}

	writeJSON(w, http.StatusOK, map[string][]string{
		"whisper": whisperModels,
		"ollama":  ollamaModels,
	})
}

// ExportRecording handles GET /export/{recordingID}, streaming a zip of the
// recording's artifacts.
func (h *ContentHandler) ExportRecording(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "recordingID")

	dir, err := h.recordings.Resolve(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "recording not found")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(dir)+".zip"))

	if err := export.Zip(dir, w); err != nil {
		// Headers are already on the wire; all we can do is log.
		h.logger.Error("export failed", "recording_id", id, "error", err)
	}
}
