package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	h "github.com/veranemoloko/lecture-companion/internal/api/http"
	cfgpkg "github.com/veranemoloko/lecture-companion/internal/config"
	"github.com/veranemoloko/lecture-companion/internal/downloader"
	"github.com/veranemoloko/lecture-companion/internal/execpool"
	"github.com/veranemoloko/lecture-companion/internal/media"
	"github.com/veranemoloko/lecture-companion/internal/notes"
	"github.com/veranemoloko/lecture-companion/internal/pipeline"
	"github.com/veranemoloko/lecture-companion/internal/queue"
	"github.com/veranemoloko/lecture-companion/internal/recordings"
	"github.com/veranemoloko/lecture-companion/internal/search"
	svc "github.com/veranemoloko/lecture-companion/internal/service"
	"github.com/veranemoloko/lecture-companion/internal/status"
	"github.com/veranemoloko/lecture-companion/internal/transcribe"
	"github.com/veranemoloko/lecture-companion/internal/vision"
	"github.com/veranemoloko/lecture-companion/internal/worker"
)

func main() {

	cfg, err := cfgpkg.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	cfgpkg.SetupLogger(cfg)
	slog.Info("configuration loaded successfully")

	logger := slog.Default()
	runner := media.ExecRunner{}

	statusStore := status.NewStore()
	jobQueue := queue.New()
	pool := execpool.New(cfg.HeavyOpSlots)

	ffmpeg := media.NewFFmpeg(cfg.FFmpegPath, runner)
	transcriber := transcribe.NewService(cfg.WhisperPath, runner, logger)
	visionSvc := vision.NewService(cfg.TesseractPath, runner, vision.DefaultHashThreshold, logger)
	ollama := notes.NewOllamaClient(cfg.OllamaBaseURL)
	notesSvc := notes.NewService(ollama, logger)

	engine := downloader.NewEngine(ffmpeg, pool, cfg.ChunkRetries, cfg.ChunkTimeout, logger)
	downloadService := svc.NewDownloadService(statusStore, engine, cfg, logger)
	processService := svc.NewProcessService(statusStore, jobQueue, logger)

	orchestrator := pipeline.NewOrchestrator(cfg.OutputDir, ffmpeg, transcriber, visionSvc, notesSvc, pool, logger)
	jobWorker := worker.New(jobQueue, statusStore, orchestrator, logger)

	recordingsSvc := recordings.NewService(cfg.OutputDir, cfg.VideoDir(), statusStore, logger)
	searchSvc := search.NewService(cfg.OutputDir)

	jobHandler := h.NewJobHandler(downloadService, processService, statusStore, logger)
	contentHandler := h.NewContentHandler(recordingsSvc, searchSvc, ollama, cfg.OllamaModel, logger)

	router := h.NewRouter(jobHandler, contentHandler, cfg.OutputDir, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  cfg.HTTPTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go jobWorker.Run(ctx)

	go func() {
		slog.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	} else {
		slog.Info("server stopped gracefully")
	}
}
