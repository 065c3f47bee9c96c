package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates the HTTP router with configured routes, middleware, and
// handlers: the versioned API, static serving of generated artifacts, health
// check, and Prometheus metrics endpoint.
func NewRouter(jobs *JobHandler, content *ContentHandler, outputDir string, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/download", jobs.CreateDownload)
		r.Get("/status/{downloadID}", jobs.GetDownloadStatus)

		r.Post("/process", jobs.CreateProcess)
		r.Get("/process/{processID}", jobs.GetProcessStatus)
		r.Get("/queue", jobs.GetQueue)

		r.Get("/models", content.ListModels)
		r.Get("/recordings", content.ListRecordings)
		r.Delete("/recordings/{recordingID}", content.DeleteRecording)
		r.Get("/search", content.SearchContent)
		r.Get("/export/{recordingID}", content.ExportRecording)
	})

	r.Handle("/content/*", http.StripPrefix("/content/", http.FileServer(http.Dir(outputDir))))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
