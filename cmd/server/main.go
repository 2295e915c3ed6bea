package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/lawgest/internal/api"
	"github.com/dgallion1/lawgest/internal/chunker"
	"github.com/dgallion1/lawgest/internal/config"
	"github.com/dgallion1/lawgest/internal/index"
	"github.com/dgallion1/lawgest/internal/pipeline"
	"github.com/dgallion1/lawgest/internal/qa"
	"github.com/dgallion1/lawgest/internal/storage"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage.
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := storage.Migrate(db); err != nil {
		log.Error("migrate database", "error", err)
		os.Exit(1)
	}
	uploads := storage.NewUploadRepo(db)
	runs := storage.NewRunRepo(db)
	files := storage.NewFileStore(cfg.DataDir)

	// Vector index.
	embedder := index.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.EmbeddingSize)
	store, err := index.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Error("connect qdrant", "error", err)
		os.Exit(1)
	}
	indexer := index.NewIndexer(embedder, store, cfg.QdrantCollection, cfg.EmbedBatchSize, log)
	if err := indexer.EnsureCollection(ctx); err != nil {
		log.Error("ensure collection", "collection", cfg.QdrantCollection, "error", err)
		os.Exit(1)
	}

	// Answers.
	claude := qa.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	reviewer := pipeline.NewReviewer(indexer, claude, cfg.QATopK, cfg.MaxConcurrentAnswer, log)

	// Learn pipeline.
	chunkCfg := chunker.Config{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap}
	worker := pipeline.NewWorker(uploads, files, indexer, log.With("component", "worker"), chunkCfg, cfg.PDFFallbackPdftotext)
	orch := pipeline.NewOrchestrator(pipeline.Options{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
	}, worker, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(api.Deps{
		Uploads:  uploads,
		Runs:     runs,
		Files:    files,
		Jobs:     orch,
		Reviewer: reviewer,
		Index:    indexer,
		Claude:   claude,
	}, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // process answers a whole range
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		claude.Close()
		embedder.Close()
		if err := store.Close(); err != nil {
			log.Warn("close qdrant", "error", err)
		}
	}()

	log.Info("starting lawgest", "port", cfg.Port, "collection", cfg.QdrantCollection)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
